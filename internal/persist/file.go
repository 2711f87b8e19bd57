package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mlstage/mlstage/internal/logger"
)

// FileAdapter persists snapshots as one JSON file, the server-side analog
// of the dashboard's single localStorage key.
type FileAdapter struct {
	path string
	log  *logger.Logger
}

// NewFileAdapter creates a file-backed adapter writing to path. The parent
// directory is created on first save if needed.
func NewFileAdapter(path string, log *logger.Logger) *FileAdapter {
	if log == nil {
		log = logger.GetDefault()
	}
	return &FileAdapter{path: path, log: log}
}

// Load reads the snapshot file. A missing file starts empty; corrupt
// content is logged and also starts empty rather than failing startup.
func (a *FileAdapter) Load() (*Snapshot, error) {
	raw, err := os.ReadFile(a.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Empty(), nil
		}
		return nil, fmt.Errorf("failed to read snapshot %s: %w", a.path, err)
	}

	snap := Empty()
	if err := json.Unmarshal(raw, snap); err != nil {
		a.log.WithError(err).WithField("path", a.path).
			Warn("Snapshot file is corrupt, starting with empty store")
		return Empty(), nil
	}
	return snap, nil
}

// Save writes the snapshot atomically: marshal, write to a temp file in
// the same directory, then rename over the target. A crash mid-write can
// never leave a torn snapshot behind.
func (a *FileAdapter) Save(snap *Snapshot) error {
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	dir := filepath.Dir(a.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, a.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}
