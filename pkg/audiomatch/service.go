package audiomatch

import (
	"context"
	"fmt"

	"github.com/himanishpuri/audiomatch/internal/audio"
	"github.com/himanishpuri/audiomatch/internal/match"
	"github.com/himanishpuri/audiomatch/pkg/logger"
)

// matchService is the default implementation of the Service interface.
type matchService struct {
	matcher *match.Matcher
	history History
	log     Logger
	config  *Config
}

func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}

	mcfg, err := cfg.matchConfig()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	hist := cfg.History
	if hist == nil && cfg.DBPath != "" {
		hist, err = NewSQLiteHistory(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open history: %w", err)
		}
	}

	opener := audio.FileOpener{TempDir: cfg.TempDir, TranscodeRate: cfg.TranscodeRate}

	return &matchService{
		matcher: match.NewMatcher(mcfg, opener),
		history: hist,
		log:     cfg.Logger,
		config:  cfg,
	}, nil
}

func (s *matchService) Match(ctx context.Context, pathA, pathB string) (Result, error) {
	s.log.Infof("Comparing %s and %s", pathA, pathB)

	res, err := s.matcher.Match(ctx, pathA, pathB)
	if err != nil {
		s.log.Errorf("Comparison failed: %v", err)
		return Result{}, err
	}

	s.log.Debugf("chunks=%d/%d shared=%d max_offset=%d peak_offset=%d min_duration=%.3f",
		res.ChunksA, res.ChunksB, res.SharedFingerprints, res.MaxOffset, res.PeakOffset, res.MinDuration)
	s.log.Infof("Score %.3f (threshold %.3f), matched=%t", res.Score, res.Threshold, res.Matched())
	return res, nil
}

func (s *matchService) MatchAndRecord(ctx context.Context, pathA, pathB string) (Result, *Record, error) {
	if s.history == nil {
		return Result{}, nil, ErrHistoryDisabled
	}

	res, err := s.Match(ctx, pathA, pathB)
	if err != nil {
		return Result{}, nil, err
	}

	rec := s.newRecord(res)
	rec.Earlier = s.earlier(rec)
	if err := s.history.Save(rec); err != nil {
		return res, nil, fmt.Errorf("failed to record match: %w", err)
	}
	s.log.Infof("Recorded match %s", rec.ID)
	return res, rec, nil
}

// earlier looks up stored comparisons of the same contents. A failed lookup
// is logged and reported as none.
func (s *matchService) earlier(rec *Record) []Record {
	if rec.DigestA == "" || rec.DigestB == "" {
		return nil
	}
	prev, err := s.history.FindByDigests(rec.DigestA, rec.DigestB)
	if err != nil {
		s.log.Warnf("Failed to look up earlier comparisons: %v", err)
		return nil
	}
	if len(prev) > 0 {
		s.log.Infof("Same contents compared %d time(s) before", len(prev))
	}
	return prev
}

func (s *matchService) newRecord(res Result) *Record {
	rec := &Record{
		PathA:       res.PathA,
		PathB:       res.PathB,
		LabelA:      audio.Label(res.PathA),
		LabelB:      audio.Label(res.PathB),
		MaxOffset:   res.MaxOffset,
		PeakOffset:  res.PeakOffset,
		MinDuration: res.MinDuration,
		Score:       res.Score,
		Threshold:   res.Threshold,
		Matched:     res.Matched(),
	}

	var err error
	if rec.DigestA, err = audio.Digest(res.PathA); err != nil {
		s.log.Warnf("Failed to digest %s: %v", res.PathA, err)
	}
	if rec.DigestB, err = audio.Digest(res.PathB); err != nil {
		s.log.Warnf("Failed to digest %s: %v", res.PathB, err)
	}
	return rec
}

func (s *matchService) History(limit int) ([]Record, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	return s.history.List(limit)
}

func (s *matchService) HistorySize() (int64, error) {
	if s.history == nil {
		return 0, ErrHistoryDisabled
	}
	return s.history.Count()
}

func (s *matchService) Lookup(id string) (*Record, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	return s.history.Get(id)
}

func (s *matchService) Forget(id string) error {
	if s.history == nil {
		return ErrHistoryDisabled
	}
	if err := s.history.Delete(id); err != nil {
		return err
	}
	s.log.Infof("Deleted match record %s", id)
	return nil
}

func (s *matchService) Close() error {
	if s.history == nil {
		return nil
	}
	return s.history.Close()
}
