package audiomatch

import (
	"github.com/himanishpuri/audiomatch/internal/storage"
)

// sqliteHistory adapts storage.DBClient to the History interface.
type sqliteHistory struct {
	db *storage.DBClient
}

// NewSQLiteHistory opens (or creates) a SQLite history file. An empty path
// falls back to AUDIOMATCH_DB_PATH, then to storage.DefaultDBFile.
func NewSQLiteHistory(dbPath string) (History, error) {
	var (
		db  *storage.DBClient
		err error
	)
	if dbPath == "" {
		db, err = storage.NewDBClient()
	} else {
		db, err = storage.NewDBClientWithPath(dbPath)
	}
	if err != nil {
		return nil, err
	}
	return &sqliteHistory{db: db}, nil
}

func (s *sqliteHistory) Save(rec *Record) error {
	row := toRow(rec)
	if err := s.db.RecordMatch(row); err != nil {
		return err
	}
	rec.ID = row.ID
	rec.CreatedAt = row.CreatedAt
	return nil
}

func (s *sqliteHistory) List(limit int) ([]Record, error) {
	rows, err := s.db.ListMatches(limit)
	if err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

func (s *sqliteHistory) Get(id string) (*Record, error) {
	row, err := s.db.GetMatch(id)
	if err != nil {
		return nil, err
	}
	rec := fromRow(row)
	return &rec, nil
}

func (s *sqliteHistory) FindByDigests(digestA, digestB string) ([]Record, error) {
	rows, err := s.db.FindByDigests(digestA, digestB)
	if err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

func (s *sqliteHistory) Count() (int64, error) {
	return s.db.CountMatches()
}

func (s *sqliteHistory) Delete(id string) error {
	return s.db.DeleteMatch(id)
}

func (s *sqliteHistory) Close() error {
	return s.db.Close()
}

func toRow(r *Record) *storage.MatchRecord {
	return &storage.MatchRecord{
		ID:          r.ID,
		PathA:       r.PathA,
		PathB:       r.PathB,
		LabelA:      r.LabelA,
		LabelB:      r.LabelB,
		DigestA:     r.DigestA,
		DigestB:     r.DigestB,
		MaxOffset:   r.MaxOffset,
		PeakOffset:  r.PeakOffset,
		MinDuration: r.MinDuration,
		Score:       r.Score,
		Threshold:   r.Threshold,
		Matched:     r.Matched,
		CreatedAt:   r.CreatedAt,
	}
}

func fromRows(rows []storage.MatchRecord) []Record {
	out := make([]Record, len(rows))
	for i := range rows {
		out[i] = fromRow(&rows[i])
	}
	return out
}

func fromRow(m *storage.MatchRecord) Record {
	return Record{
		ID:          m.ID,
		PathA:       m.PathA,
		PathB:       m.PathB,
		LabelA:      m.LabelA,
		LabelB:      m.LabelB,
		DigestA:     m.DigestA,
		DigestB:     m.DigestB,
		MaxOffset:   m.MaxOffset,
		PeakOffset:  m.PeakOffset,
		MinDuration: m.MinDuration,
		Score:       m.Score,
		Threshold:   m.Threshold,
		Matched:     m.Matched,
		CreatedAt:   m.CreatedAt,
	}
}
