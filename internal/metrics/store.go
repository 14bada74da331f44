package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"promptforge/internal/logging"
)

// Store persists batch snapshots as JSON files under the workspace's
// .promptforge/metrics directory, one file per batch ID, so metrics survive
// the process that composed them.
type Store struct {
	dir string
}

// NewStore creates a store rooted at the given workspace directory.
func NewStore(workspace string) *Store {
	return &Store{dir: filepath.Join(workspace, ".promptforge", "metrics")}
}

// SaveBatch writes one batch snapshot, overwriting any previous snapshot
// for the same batch ID.
func (s *Store) SaveBatch(bm BatchMetrics) error {
	if bm.BatchID == "" {
		return fmt.Errorf("batch ID is required")
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}

	data, err := json.MarshalIndent(bm, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal batch metrics: %w", err)
	}
	path := filepath.Join(s.dir, bm.BatchID+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write batch metrics: %w", err)
	}
	return nil
}

// LoadAll reads every persisted batch snapshot. A missing directory yields
// an empty slice; an unreadable or malformed file is skipped with a warning
// rather than failing the whole load.
func (s *Store) LoadAll() ([]BatchMetrics, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read metrics directory: %w", err)
	}

	var out []BatchMetrics
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			logging.Metrics("Skipping unreadable metrics file %s: %v", entry.Name(), err)
			continue
		}
		var bm BatchMetrics
		if err := json.Unmarshal(data, &bm); err != nil {
			logging.Metrics("Skipping malformed metrics file %s: %v", entry.Name(), err)
			continue
		}
		out = append(out, bm)
	}
	return out, nil
}
