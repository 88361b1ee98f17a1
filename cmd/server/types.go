package main

import (
	"time"

	"github.com/himanishpuri/audiomatch/pkg/audiomatch"
)

// MatchResponse is the response for POST /api/match
type MatchResponse struct {
	Matched           bool    `json:"matched"`
	Score             float64 `json:"score"`
	Threshold         float64 `json:"threshold"`
	FileA             string  `json:"file_a"`
	FileB             string  `json:"file_b"`
	DurationA         float64 `json:"duration_a"`
	DurationB         float64 `json:"duration_b"`
	PeakOffsetSeconds float64 `json:"peak_offset_seconds"`
	RecordID          string  `json:"record_id,omitempty"`

	// Earlier lists stored comparisons of the same contents when recording.
	Earlier []RecordDTO `json:"earlier,omitempty"`

	// Debug is only set when the request asked for it.
	Debug *DebugDTO `json:"debug,omitempty"`
}

// DebugDTO carries the raw scoring inputs.
type DebugDTO struct {
	MaxOffset          int     `json:"max_offset"`
	MinDuration        float64 `json:"min_duration"`
	PeakOffset         int     `json:"peak_offset"`
	ChunksA            int     `json:"chunks_a"`
	ChunksB            int     `json:"chunks_b"`
	SharedFingerprints int     `json:"shared_fingerprints"`
	HistogramPairs     int     `json:"histogram_pairs"`
	HistogramOffsets   int     `json:"histogram_offsets"`
}

func newMatchResponse(res audiomatch.Result, fileA, fileB string, debug bool) MatchResponse {
	resp := MatchResponse{
		Matched:           res.Matched(),
		Score:             res.Score,
		Threshold:         res.Threshold,
		FileA:             fileA,
		FileB:             fileB,
		DurationA:         res.DurationA,
		DurationB:         res.DurationB,
		PeakOffsetSeconds: res.PeakOffsetSeconds,
	}
	if debug {
		maxOffset, minDuration := res.Debug()
		resp.Debug = &DebugDTO{
			MaxOffset:          maxOffset,
			MinDuration:        minDuration,
			PeakOffset:         res.PeakOffset,
			ChunksA:            res.ChunksA,
			ChunksB:            res.ChunksB,
			SharedFingerprints: res.SharedFingerprints,
			HistogramPairs:     res.HistogramPairs,
			HistogramOffsets:   res.HistogramOffsets,
		}
	}
	return resp
}

// RecordDTO represents a stored comparison in API responses
type RecordDTO struct {
	ID          string    `json:"id"`
	LabelA      string    `json:"label_a"`
	LabelB      string    `json:"label_b"`
	DigestA     string    `json:"digest_a,omitempty"`
	DigestB     string    `json:"digest_b,omitempty"`
	Score       float64   `json:"score"`
	MaxOffset   int       `json:"max_offset"`
	MinDuration float64   `json:"min_duration"`
	Matched     bool      `json:"matched"`
	CreatedAt   time.Time `json:"created_at"`
}

func newRecordDTO(rec audiomatch.Record) RecordDTO {
	return RecordDTO{
		ID:          rec.ID,
		LabelA:      rec.LabelA,
		LabelB:      rec.LabelB,
		DigestA:     rec.DigestA,
		DigestB:     rec.DigestB,
		Score:       rec.Score,
		MaxOffset:   rec.MaxOffset,
		MinDuration: rec.MinDuration,
		Matched:     rec.Matched,
		CreatedAt:   rec.CreatedAt,
	}
}

func newRecordDTOs(records []audiomatch.Record) []RecordDTO {
	dtos := make([]RecordDTO, len(records))
	for i, rec := range records {
		dtos[i] = newRecordDTO(rec)
	}
	return dtos
}

// HistoryResponse is the response for GET /api/history
type HistoryResponse struct {
	Records []RecordDTO `json:"records"`
	Count   int         `json:"count"`
	// Total is the number of stored records, regardless of limit.
	Total int64 `json:"total"`
}

// DeleteRecordResponse is the response for DELETE /api/history/{id}
type DeleteRecordResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
