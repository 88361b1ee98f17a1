package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/himanishpuri/audiomatch/pkg/audiomatch"
	"github.com/himanishpuri/audiomatch/pkg/logger"
	"github.com/himanishpuri/audiomatch/pkg/utils"
)

const maxUploadBytes = 100 << 20

// Server encapsulates the HTTP server and its dependencies
type Server struct {
	service audiomatch.Service
	config  *ServerConfig
	log     audiomatch.Logger
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	DBPath         string
	TempDir        string
	History        bool
	RequestTimeout time.Duration
	AllowedOrigins []string
}

func NewServer(service audiomatch.Service, config *ServerConfig, log audiomatch.Logger) *Server {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Server{
		service: service,
		config:  config,
		log:     log,
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// statusFor maps a service error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, audiomatch.ErrInvalidInput),
		errors.Is(err, audiomatch.ErrMalformedSpectrum),
		errors.Is(err, audiomatch.ErrDegenerateInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, audiomatch.ErrResource):
		return http.StatusBadRequest
	case errors.Is(err, audiomatch.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, audiomatch.ErrHistoryDisabled):
		return http.StatusNotImplemented
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"history": s.config.History,
		"time":    time.Now().Format(time.RFC3339),
	})
}

// saveFormFile stores one multipart field under the temp dir.
func (s *Server) saveFormFile(r *http.Request, field string) (path, name string, err error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", "", fmt.Errorf("%s file is required", field)
	}
	defer file.Close()

	return s.saveUpload(file, header)
}

func (s *Server) saveUpload(file multipart.File, header *multipart.FileHeader) (string, string, error) {
	name := filepath.Base(header.Filename)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if stem == "" || stem == "." || stem == string(filepath.Separator) {
		stem = "upload"
	}

	path, err := utils.SaveUpload(s.config.TempDir, stem, name, file)
	if err != nil {
		return "", "", err
	}
	return path, name, nil
}

// handleMatchFiles handles POST /api/match (multipart audio_a, audio_b)
func (s *Server) handleMatchFiles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.RequestTimeout)
		defer cancel()
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		s.log.Errorf("Failed to parse form: %v", err)
		s.respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}
	defer r.MultipartForm.RemoveAll()

	debug, _ := strconv.ParseBool(r.FormValue("debug"))
	record, _ := strconv.ParseBool(r.FormValue("record"))

	pathA, nameA, err := s.saveFormFile(r, "audio_a")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer s.removeUpload(pathA)

	pathB, nameB, err := s.saveFormFile(r, "audio_b")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer s.removeUpload(pathB)

	s.log.Infof("Comparing uploads %s and %s", nameA, nameB)

	var (
		res audiomatch.Result
		rec *audiomatch.Record
	)
	if record {
		res, rec, err = s.service.MatchAndRecord(ctx, pathA, pathB)
	} else {
		res, err = s.service.Match(ctx, pathA, pathB)
	}
	if err != nil {
		status := statusFor(err)
		s.log.Warnf("Comparison failed (%d): %v", status, err)
		s.respondError(w, status, fmt.Sprintf("Failed to compare files: %v", err))
		return
	}

	resp := newMatchResponse(res, nameA, nameB, debug)
	if rec != nil {
		resp.RecordID = rec.ID
		if len(rec.Earlier) > 0 {
			resp.Earlier = newRecordDTOs(rec.Earlier)
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) removeUpload(path string) {
	if err := utils.DeleteFile(path); err != nil {
		s.log.Warnf("Failed to remove upload %s: %v", path, err)
	}
}

// handleListHistory handles GET /api/history?limit=N
func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	records, err := s.service.History(limit)
	if err != nil {
		s.log.Errorf("Failed to list history: %v", err)
		s.respondError(w, statusFor(err), "Failed to retrieve history")
		return
	}

	total, err := s.service.HistorySize()
	if err != nil {
		s.log.Errorf("Failed to count history: %v", err)
		s.respondError(w, statusFor(err), "Failed to retrieve history")
		return
	}

	s.respondJSON(w, http.StatusOK, HistoryResponse{
		Records: newRecordDTOs(records),
		Count:   len(records),
		Total:   total,
	})
}

// handleGetRecord handles GET /api/history/{id}
func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request, id string) {
	rec, err := s.service.Lookup(id)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusNotFound {
			s.respondError(w, status, fmt.Sprintf("Record %s not found", id))
			return
		}
		s.log.Errorf("Failed to read record %s: %v", id, err)
		s.respondError(w, status, "Failed to retrieve record")
		return
	}

	s.respondJSON(w, http.StatusOK, newRecordDTO(*rec))
}

// handleDeleteRecord handles DELETE /api/history/{id}
func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.service.Forget(id); err != nil {
		status := statusFor(err)
		if status == http.StatusNotFound {
			s.respondError(w, status, fmt.Sprintf("Record %s not found", id))
			return
		}
		s.log.Errorf("Failed to delete record %s: %v", id, err)
		s.respondError(w, status, "Failed to delete record")
		return
	}

	s.respondJSON(w, http.StatusOK, DeleteRecordResponse{
		Message: "Record deleted successfully",
		ID:      id,
	})
}

// handleMatch routes requests to /api/match
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.handleMatchFiles(w, r)
}

// handleHistory routes requests to /api/history
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.handleListHistory(w, r)
}

// handleHistoryRecord routes requests to /api/history/{id}
func (s *Server) handleHistoryRecord(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/history/")
	if id == "" || strings.Contains(id, "/") {
		s.respondError(w, http.StatusBadRequest, "Record ID required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetRecord(w, r, id)
	case http.MethodDelete:
		s.handleDeleteRecord(w, r, id)
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
