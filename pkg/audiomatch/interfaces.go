package audiomatch

import "context"

type Service interface {
	// Match fingerprints both files concurrently and scores them.
	Match(ctx context.Context, pathA, pathB string) (Result, error)
	// MatchAndRecord runs Match and stores the outcome in the history. The
	// returned record lists earlier comparisons of the same two contents.
	MatchAndRecord(ctx context.Context, pathA, pathB string) (Result, *Record, error)
	History(limit int) ([]Record, error)
	HistorySize() (int64, error)
	Lookup(id string) (*Record, error)
	Forget(id string) error
	Close() error
}

// History persists past comparisons.
type History interface {
	Save(rec *Record) error
	List(limit int) ([]Record, error)
	Get(id string) (*Record, error)
	// FindByDigests returns records for the two digests in either order,
	// newest first.
	FindByDigests(digestA, digestB string) ([]Record, error)
	Count() (int64, error)
	Delete(id string) error
	Close() error
}

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}
