package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/himanishpuri/audiomatch/pkg/audiomatch"
	"github.com/himanishpuri/audiomatch/pkg/logger"
)

var (
	port           int
	dbPath         string
	tempDir        string
	window         string
	threshold      float64
	noHistory      bool
	requestTimeout time.Duration
	allowedOrigins string
)

func init() {
	flag.IntVar(&port, "port", 8080, "HTTP server port")
	flag.StringVar(&dbPath, "db", getEnvOrDefault("AUDIOMATCH_DB_PATH", "audiomatch.sqlite3"), "Path to the SQLite history database")
	flag.StringVar(&tempDir, "temp", getEnvOrDefault("AUDIOMATCH_TEMP_DIR", os.TempDir()), "Directory for uploads and transcoded files")
	flag.StringVar(&window, "window", getEnvOrDefault("AUDIOMATCH_WINDOW", "rectangular"), "Window applied before the FFT: rectangular, hamming or hann")
	flag.Float64Var(&threshold, "threshold", 0, "Score must be strictly above this to count as a match")
	flag.BoolVar(&noHistory, "no-history", false, "Disable the match history endpoints")
	flag.DurationVar(&requestTimeout, "request-timeout", 3*time.Minute, "Timeout for one comparison request")
	flag.StringVar(&allowedOrigins, "origins", "*", "Comma-separated list of allowed CORS origins (use * for all)")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseOrigins(v string) []string {
	if v == "*" {
		return []string{"*"}
	}
	origins := strings.Split(v, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return origins
}

func main() {
	_ = godotenv.Load()
	flag.Parse()

	log := logger.GetLogger()

	opts := []audiomatch.Option{
		audiomatch.WithTempDir(tempDir),
		audiomatch.WithWindow(window),
		audiomatch.WithScoreThreshold(threshold),
		audiomatch.WithLogger(log),
	}
	if !noHistory {
		opts = append(opts, audiomatch.WithDBPath(dbPath))
	}

	service, err := audiomatch.NewService(opts...)
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}

	config := &ServerConfig{
		Port:           port,
		DBPath:         dbPath,
		TempDir:        tempDir,
		History:        !noHistory,
		RequestTimeout: requestTimeout,
		AllowedOrigins: parseOrigins(allowedOrigins),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = NewServer(service, config, log).Run(ctx)
	stop()

	if cerr := service.Close(); cerr != nil {
		log.Errorf("Failed to close service: %v", cerr)
	}
	if err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.setupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Infof("audiomatch server starting on %s", srv.Addr)
	if s.config.History {
		s.log.Infof("   History database: %s", s.config.DBPath)
	}
	s.log.Infof("   CORS origins: %v", s.config.AllowedOrigins)
	s.log.Infof("   GET    /health")
	s.log.Infof("   POST   /api/match            - compare audio_a with audio_b")
	s.log.Infof("   GET    /api/history          - recent comparisons")
	s.log.Infof("   DELETE /api/history/{id}     - delete one comparison")

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Infof("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
