package match

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/himanishpuri/audiomatch/internal/audio"
	"github.com/himanishpuri/audiomatch/internal/fingerprint"
	"github.com/himanishpuri/audiomatch/internal/model"
)

// FingerprintPair fingerprints both files as independent tasks and waits for
// both. The first failure cancels the other task and is returned; no partial
// result is produced. All task goroutines have exited when it returns.
func FingerprintPair(ctx context.Context, opener audio.Opener, pathA, pathB string, cfg Config) (*model.FileFingerprint, *model.FileFingerprint, error) {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var results [2]*model.FileFingerprint
	for i, path := range [2]string{pathA, pathB} {
		i, path := i, path
		g.Go(func() error {
			taskCtx := gctx
			if cfg.TaskTimeout > 0 {
				var cancel context.CancelFunc
				taskCtx, cancel = context.WithTimeout(gctx, cfg.TaskTimeout)
				defer cancel()
			}

			ff, err := fingerprint.FingerprintFile(taskCtx, opener, path, cfg.Fingerprint)
			if err != nil {
				return fmt.Errorf("fingerprinting file %d: %w", i+1, err)
			}
			results[i] = ff
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return results[0], results[1], nil
}

// Matcher runs the full two-file pipeline.
type Matcher struct {
	cfg    Config
	opener audio.Opener
}

func NewMatcher(cfg Config, opener audio.Opener) *Matcher {
	if opener == nil {
		opener = audio.FileOpener{}
	}
	return &Matcher{cfg: cfg, opener: opener}
}

func (m *Matcher) Config() Config { return m.cfg }

// Match fingerprints pathA and pathB concurrently, then scores them.
func (m *Matcher) Match(ctx context.Context, pathA, pathB string) (Result, error) {
	if err := m.cfg.Fingerprint.Validate(); err != nil {
		return Result{}, err
	}

	a, b, err := FingerprintPair(ctx, m.opener, pathA, pathB, m.cfg)
	if err != nil {
		return Result{}, err
	}
	return Compare(a, b, m.cfg)
}
