package report

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport(id string) *Report {
	return &Report{
		ID:      id,
		Kind:    Run,
		Started: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		State:   "content",
		Missing: []string{"rsync"},
		InstallStep: []Step{
			{Label: "download wp-cli.phar", Command: "curl ...", ExitCode: 0},
			{Label: "move wp-cli.phar", Command: "sudo mv ...", ExitCode: 1, Failed: true, Output: "Permission denied"},
		},
		Checks: []Check{
			{Side: "source", Name: "core", Passed: true, Message: "ok"},
			{Side: "destination", Name: "database", Passed: false, Message: "destination ./dst has no reachable database", Detail: "Error: no db"},
		},
		Error: "preflight failed",
	}
}

// countingStore records calls to the backing store.
type countingStore struct {
	reports map[string]*Report
	loads   int
	saves   int
	saveErr error
}

func (c *countingStore) Save(r *Report) error {
	c.saves++
	if c.saveErr != nil {
		return c.saveErr
	}
	if c.reports == nil {
		c.reports = map[string]*Report{}
	}
	c.reports[r.ID] = r
	return nil
}

func (c *countingStore) Load(id string) (*Report, error) {
	c.loads++
	if r, ok := c.reports[id]; ok {
		return r, nil
	}
	return nil, errors.New("not found")
}

func TestDiagnostics(t *testing.T) {
	diags := Diagnostics(sampleReport("r1"))
	require.Len(t, diags, 3)

	assert.Equal(t, "dependency", diags[0].Source)
	assert.Equal(t, "rsync", diags[0].Subject)

	assert.Equal(t, "install", diags[1].Source)
	assert.Equal(t, "move wp-cli.phar", diags[1].Subject)
	assert.Equal(t, "Permission denied", diags[1].Detail)

	assert.Equal(t, "preflight", diags[2].Source)
	assert.Equal(t, "destination/database", diags[2].Subject)
}

func TestBySource(t *testing.T) {
	r := sampleReport("r1")
	assert.Len(t, BySource(r, ""), 3)
	assert.Len(t, BySource(r, "preflight"), 1)
	assert.Empty(t, BySource(r, "nothing"))
}

func TestReportOK(t *testing.T) {
	assert.False(t, sampleReport("r1").OK())
	assert.True(t, (&Report{ID: "r2"}).OK())
}

func TestDiskStore_RoundTrip(t *testing.T) {
	s := NewDiskStore(filepath.Join(t.TempDir(), "runs"))

	want := sampleReport("abc")
	require.NoError(t, s.Save(want))

	got, err := s.Load("abc")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDiskStore_LoadMissing(t *testing.T) {
	s := NewDiskStore(t.TempDir())
	_, err := s.Load("missing")
	require.Error(t, err)
}

func TestDiskStore_RejectsPathIDs(t *testing.T) {
	s := NewDiskStore(t.TempDir())
	_, err := s.Load("../etc/passwd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid report id")
}

func TestDiskStore_Latest(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "runs")
	s := NewDiskStore(dir)

	_, err := s.Latest()
	require.ErrorIs(t, err, ErrNoReports)

	require.NoError(t, s.Save(sampleReport("older")))
	require.NoError(t, s.Save(sampleReport("newer")))

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "older.json"), past, past))

	id, err := s.Latest()
	require.NoError(t, err)
	assert.Equal(t, "newer", id)
}

func TestLRUStore_ServesFromCache(t *testing.T) {
	back := &countingStore{}
	s := NewLRUStore(2, back)

	require.NoError(t, s.Save(sampleReport("a")))
	assert.Equal(t, 1, back.saves)

	_, err := s.Load("a")
	require.NoError(t, err)
	assert.Equal(t, 0, back.loads)
}

func TestLRUStore_Evicts(t *testing.T) {
	back := &countingStore{}
	s := NewLRUStore(2, back)

	require.NoError(t, s.Save(sampleReport("a")))
	require.NoError(t, s.Save(sampleReport("b")))
	_, _ = s.Load("a") // a is now most recent
	require.NoError(t, s.Save(sampleReport("c")))

	assert.Equal(t, 2, s.Len())

	_, err := s.Load("a")
	require.NoError(t, err)
	assert.Equal(t, 0, back.loads)

	_, err = s.Load("b")
	require.NoError(t, err)
	assert.Equal(t, 1, back.loads, "b was evicted and reloaded")
}

func TestLRUStore_MissPropagatesError(t *testing.T) {
	s := NewLRUStore(0, &countingStore{})
	_, err := s.Load("nope")
	require.Error(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestLRUStore_FailedSaveIsNotCached(t *testing.T) {
	back := &countingStore{saveErr: errors.New("disk full")}
	s := NewLRUStore(2, back)

	require.EqualError(t, s.Save(sampleReport("a")), "disk full")
	assert.Equal(t, 0, s.Len())
}
