package audiomatch

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/himanishpuri/audiomatch/internal/audiotest"
	"github.com/himanishpuri/audiomatch/pkg/logger"
)

func newTestService(t *testing.T, opts ...Option) Service {
	t.Helper()
	opts = append([]Option{WithLogger(logger.Discard())}, opts...)
	svc, err := NewService(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestServiceMatchSameFile(t *testing.T) {
	dir := t.TempDir()
	tone := audiotest.WriteWAV(t, dir, "tone.wav", audiotest.Sine(440, 44100, 1.0), 44100, 1)

	svc := newTestService(t)
	res, err := svc.Match(context.Background(), tone, tone)
	require.NoError(t, err)

	assert.True(t, res.Matched())
	assert.Equal(t, 43, res.MaxOffset)
	assert.InDelta(t, 43.0, res.Score, 1e-9)
}

func TestServiceStereoAndMonoCopiesMatch(t *testing.T) {
	dir := t.TempDir()
	samples := audiotest.Noise(3, 22050, 1.0)
	mono := audiotest.WriteWAV(t, dir, "mono.wav", samples, 22050, 1)
	stereo := audiotest.WriteWAV(t, dir, "stereo.wav", samples, 22050, 2)

	svc := newTestService(t)
	res, err := svc.Match(context.Background(), mono, stereo)
	require.NoError(t, err)

	assert.Equal(t, res.ChunksA, res.MaxOffset)
	assert.True(t, res.Matched())
}

func TestServiceThresholdOption(t *testing.T) {
	dir := t.TempDir()
	tone := audiotest.WriteWAV(t, dir, "tone.wav", audiotest.Sine(440, 44100, 1.0), 44100, 1)

	svc := newTestService(t, WithScoreThreshold(43))
	res, err := svc.Match(context.Background(), tone, tone)
	require.NoError(t, err)
	assert.False(t, res.Matched(), "score equal to the threshold is not a match")
}

func TestServiceInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"zero buckets", WithBuckets(0)},
		{"too many buckets", WithBuckets(17)},
		{"zero bucket size", WithBucketSize(0)},
		{"zero chunk size", WithNormalChunkSize(0)},
		{"negative reference rate", WithNormalSampleRate(-1)},
		{"unknown window", WithWindow("kaiser")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewService(WithLogger(logger.Discard()), tt.opt)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestServiceMissingFile(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Match(context.Background(), "/nonexistent/a.wav", "/nonexistent/b.wav")
	assert.ErrorIs(t, err, ErrResource)
}

func TestServiceHistoryDisabled(t *testing.T) {
	svc := newTestService(t)

	_, _, err := svc.MatchAndRecord(context.Background(), "a.wav", "b.wav")
	assert.ErrorIs(t, err, ErrHistoryDisabled)
	_, err = svc.History(10)
	assert.ErrorIs(t, err, ErrHistoryDisabled)
	_, err = svc.HistorySize()
	assert.ErrorIs(t, err, ErrHistoryDisabled)
	_, err = svc.Lookup("x")
	assert.ErrorIs(t, err, ErrHistoryDisabled)
	assert.ErrorIs(t, svc.Forget("x"), ErrHistoryDisabled)
}

func TestServiceHistoryRoundTrip(t *testing.T) {
	dir := t.TempDir()
	tone := audiotest.WriteWAV(t, dir, "tone.wav", audiotest.Sine(440, 44100, 1.0), 44100, 1)
	noise := audiotest.WriteWAV(t, dir, "noise.wav", audiotest.Noise(1, 44100, 1.0), 44100, 1)

	svc := newTestService(t, WithDBPath(filepath.Join(dir, "db", "history.sqlite3")))

	res, rec, err := svc.MatchAndRecord(context.Background(), tone, tone)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, res.Score, rec.Score)
	assert.True(t, rec.Matched)
	assert.Equal(t, "tone.wav", rec.LabelA)
	assert.Len(t, rec.DigestA, 16)
	assert.Equal(t, rec.DigestA, rec.DigestB)
	assert.Empty(t, rec.Earlier)

	_, rec2, err := svc.MatchAndRecord(context.Background(), tone, noise)
	require.NoError(t, err)
	assert.NotEqual(t, rec.DigestA, rec2.DigestB)
	assert.Empty(t, rec2.Earlier)

	records, err := svc.History(10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	size, err := svc.HistorySize()
	require.NoError(t, err)
	assert.Equal(t, int64(2), size)

	got, err := svc.Lookup(rec2.ID)
	require.NoError(t, err)
	assert.Equal(t, rec2.LabelB, got.LabelB)
	assert.Equal(t, rec2.Score, got.Score)

	require.NoError(t, svc.Forget(rec.ID))
	records, err = svc.History(10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec2.ID, records[0].ID)

	assert.ErrorIs(t, svc.Forget(rec.ID), ErrRecordNotFound)
	_, err = svc.Lookup(rec.ID)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestServiceReportsEarlierComparisons(t *testing.T) {
	dir := t.TempDir()
	tone := audiotest.WriteWAV(t, dir, "tone.wav", audiotest.Sine(440, 44100, 1.0), 44100, 1)
	noise := audiotest.WriteWAV(t, dir, "noise.wav", audiotest.Noise(1, 44100, 1.0), 44100, 1)
	renamed := audiotest.WriteWAV(t, dir, "renamed.wav", audiotest.Sine(440, 44100, 1.0), 44100, 1)

	svc := newTestService(t, WithDBPath(filepath.Join(dir, "history.sqlite3")))
	ctx := context.Background()

	_, first, err := svc.MatchAndRecord(ctx, tone, noise)
	require.NoError(t, err)
	assert.Empty(t, first.Earlier)

	// Same contents under another name and in the other order.
	_, second, err := svc.MatchAndRecord(ctx, noise, renamed)
	require.NoError(t, err)
	require.Len(t, second.Earlier, 1)
	assert.Equal(t, first.ID, second.Earlier[0].ID)

	_, third, err := svc.MatchAndRecord(ctx, renamed, noise)
	require.NoError(t, err)
	require.Len(t, third.Earlier, 2)
	assert.Equal(t, second.ID, third.Earlier[0].ID, "newest first")
}

func TestNewSQLiteHistoryDefaultPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env", "history.sqlite3")
	t.Setenv("AUDIOMATCH_DB_PATH", path)

	hist, err := NewSQLiteHistory("")
	require.NoError(t, err)
	defer hist.Close()

	n, err := hist.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.FileExists(t, path)
}

// memHistory is an in-memory History for option tests.
type memHistory struct {
	saved   []Record
	lookups int
	closed  bool
}

func (m *memHistory) Save(rec *Record) error {
	rec.ID = "mem-1"
	rec.CreatedAt = time.Now()
	m.saved = append(m.saved, *rec)
	return nil
}

func (m *memHistory) List(limit int) ([]Record, error) { return m.saved, nil }

func (m *memHistory) Get(id string) (*Record, error) {
	for i := range m.saved {
		if m.saved[i].ID == id {
			return &m.saved[i], nil
		}
	}
	return nil, ErrRecordNotFound
}

func (m *memHistory) FindByDigests(digestA, digestB string) ([]Record, error) {
	m.lookups++
	return nil, nil
}

func (m *memHistory) Count() (int64, error) { return int64(len(m.saved)), nil }

func (m *memHistory) Delete(id string) error { return errors.New("not supported") }

func (m *memHistory) Close() error {
	m.closed = true
	return nil
}

func TestServiceWithHistory(t *testing.T) {
	dir := t.TempDir()
	tone := audiotest.WriteWAV(t, dir, "tone.wav", audiotest.Sine(440, 44100, 1.0), 44100, 1)

	hist := &memHistory{}
	svc, err := NewService(WithLogger(logger.Discard()), WithHistory(hist), WithDBPath(filepath.Join(dir, "unused.sqlite3")))
	require.NoError(t, err)

	_, rec, err := svc.MatchAndRecord(context.Background(), tone, tone)
	require.NoError(t, err)
	assert.Equal(t, "mem-1", rec.ID)
	assert.Len(t, hist.saved, 1)
	assert.Equal(t, 1, hist.lookups)

	require.NoError(t, svc.Close())
	assert.True(t, hist.closed)
	assert.NoFileExists(t, filepath.Join(dir, "unused.sqlite3"))
}
