package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/frhel/wp-migrate-sync/internal/filelock"
)

// ErrNoReports is returned by Latest when the directory holds no reports.
var ErrNoReports = errors.New("no reports found")

// DiskStore writes reports as JSON files into a directory.
type DiskStore struct {
	dir string
}

// NewDiskStore creates a DiskStore rooted at dir. The directory is
// created on the first Save.
func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{dir: dir}
}

// Dir returns the directory reports are written to.
func (s *DiskStore) Dir() string {
	return s.dir
}

// Save writes a report atomically while holding its lock file.
func (s *DiskStore) Save(r *Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling report %s: %w", r.ID, err)
	}
	if err := filelock.LockAndWrite(s.path(r.ID), data, 0o644); err != nil {
		return fmt.Errorf("writing report %s: %w", r.ID, err)
	}
	return nil
}

// Load reads a report from disk.
func (s *DiskStore) Load(id string) (*Report, error) {
	if strings.ContainsAny(id, `/\`) {
		return nil, fmt.Errorf("invalid report id %q", id)
	}
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return nil, fmt.Errorf("reading report %s: %w", id, err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshalling report %s: %w", id, err)
	}
	return &r, nil
}

// Latest returns the id of the most recently written report.
func (s *DiskStore) Latest() (string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoReports
		}
		return "", fmt.Errorf("listing reports: %w", err)
	}

	var (
		latest string
		newest int64
	)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if mod := info.ModTime().UnixNano(); latest == "" || mod > newest {
			latest, newest = strings.TrimSuffix(name, ".json"), mod
		}
	}
	if latest == "" {
		return "", ErrNoReports
	}
	return latest, nil
}

func (s *DiskStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}
