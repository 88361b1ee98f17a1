package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const DefaultDBFile = "audiomatch.sqlite3"
const errDBClientNil = "db client is nil"

// DefaultListLimit caps ListMatches when the caller passes a non-positive limit.
const DefaultListLimit = 50

// ErrNotFound is returned when a match record does not exist.
var ErrNotFound = errors.New("match record not found")

type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

// MatchRecord is one stored comparison. Digests identify file content so
// repeated comparisons of renamed files can be found.
type MatchRecord struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	PathA       string    `json:"path_a"`
	PathB       string    `json:"path_b"`
	LabelA      string    `json:"label_a"`
	LabelB      string    `json:"label_b"`
	DigestA     string    `gorm:"index:idx_digests,priority:1" json:"digest_a"`
	DigestB     string    `gorm:"index:idx_digests,priority:2" json:"digest_b"`
	MaxOffset   int       `json:"max_offset"`
	PeakOffset  int       `json:"peak_offset"`
	MinDuration float64   `json:"min_duration"`
	Score       float64   `json:"score"`
	Threshold   float64   `json:"threshold"`
	Matched     bool      `gorm:"index:idx_matched" json:"matched"`
	CreatedAt   time.Time `gorm:"index:idx_created_at" json:"created_at"`
}

func NewDBClient() (*DBClient, error) {
	dbPath := os.Getenv("AUDIOMATCH_DB_PATH")
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	return NewDBClientWithPath(dbPath)
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&MatchRecord{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// RecordMatch stores rec, assigning an ID and creation time when unset.
func (c *DBClient) RecordMatch(rec *MatchRecord) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if err := c.DB.Create(rec).Error; err != nil {
		return fmt.Errorf("creating match record: %w", err)
	}
	return nil
}

// ListMatches returns the newest records first.
func (c *DBClient) ListMatches(limit int) ([]MatchRecord, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var rows []MatchRecord
	if err := c.DB.Order("created_at DESC").Order("id").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing match records: %w", err)
	}
	return rows, nil
}

func (c *DBClient) GetMatch(id string) (*MatchRecord, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	var rec MatchRecord
	err := c.DB.Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying match record: %w", err)
	}
	return &rec, nil
}

// FindByDigests returns earlier comparisons of the same two contents, in
// either order, newest first.
func (c *DBClient) FindByDigests(digestA, digestB string) ([]MatchRecord, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	var rows []MatchRecord
	err := c.DB.
		Where("(digest_a = ? AND digest_b = ?) OR (digest_a = ? AND digest_b = ?)", digestA, digestB, digestB, digestA).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("querying by digests: %w", err)
	}
	return rows, nil
}

func (c *DBClient) DeleteMatch(id string) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}

	res := c.DB.Where("id = ?", id).Delete(&MatchRecord{})
	if res.Error != nil {
		return fmt.Errorf("deleting match record: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (c *DBClient) CountMatches() (int64, error) {
	if c == nil || c.DB == nil {
		return 0, errors.New(errDBClientNil)
	}

	var n int64
	if err := c.DB.Model(&MatchRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("counting match records: %w", err)
	}
	return n, nil
}
