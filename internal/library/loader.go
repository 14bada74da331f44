// Runtime corpus ingestion for prompt components. The ingestion collaborator
// that extracts components from free-text reference prompts emits either
// YAML documents or a SQLite database; this loader maps both onto the
// component record shape and populates the in-memory database. Ingestion is
// idempotent and guarded, so repeated initialization calls are no-ops once
// complete.
package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"promptforge/internal/component"
	"promptforge/internal/logging"

	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"
)

// componentRecord is the on-disk shape of one extracted component.
type componentRecord struct {
	ID          string   `yaml:"id" json:"id"`
	Category    string   `yaml:"category" json:"category"`
	Slot        string   `yaml:"slot" json:"slot"`
	Description string   `yaml:"description" json:"description"`
	Text        string   `yaml:"text" json:"text"`
	Tags        []string `yaml:"tags" json:"tags"`
	Brand       string   `yaml:"brand,omitempty" json:"brand,omitempty"`
	Metadata    string   `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// corpusDocument is the top-level YAML structure of a corpus file.
type corpusDocument struct {
	Components []componentRecord `yaml:"components"`
}

// Loader populates a Database from corpus files. One loader guards one
// database's ingestion lifecycle.
type Loader struct {
	db   *Database
	done atomic.Bool
}

// NewLoader creates a loader for the given database.
func NewLoader(db *Database) *Loader {
	return &Loader{db: db}
}

// Loaded reports whether ingestion has already completed.
func (l *Loader) Loaded() bool {
	return l.done.Load()
}

// Initialize ingests the corpus at path, which may be a directory of YAML
// files, a single .yaml/.yml file, or a SQLite database (.db/.sqlite).
// Returns the number of components stored. Subsequent calls are no-ops.
func (l *Loader) Initialize(ctx context.Context, path string) (int, error) {
	if !l.done.CompareAndSwap(false, true) {
		logging.Boot("Corpus ingestion already complete, skipping %s", path)
		return 0, nil
	}

	timer := logging.StartTimer(logging.CategoryBoot, "Loader.Initialize")
	defer timer.StopWithInfo()

	info, err := os.Stat(path)
	if err != nil {
		l.done.Store(false)
		return 0, fmt.Errorf("corpus path %s: %w", path, err)
	}

	var stored int
	switch {
	case info.IsDir():
		stored, err = l.loadDirectory(ctx, path)
	case isSQLitePath(path):
		stored, err = l.loadSQLite(ctx, path)
	default:
		stored, err = l.loadYAMLFile(path)
	}

	if err != nil {
		l.done.Store(false)
		return stored, err
	}

	logging.Boot("Corpus ingestion complete: %d components from %s", stored, path)
	return stored, nil
}

func isSQLitePath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// loadDirectory walks a directory and loads every YAML file found.
func (l *Loader) loadDirectory(ctx context.Context, dirPath string) (int, error) {
	total := 0
	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		stored, loadErr := l.loadYAMLFile(path)
		if loadErr != nil {
			logging.Get(logging.CategoryBoot).Warn("Failed to load %s: %v", path, loadErr)
			return nil // Continue processing other files
		}
		total += stored
		return nil
	})
	if err != nil {
		return total, fmt.Errorf("failed to walk corpus directory %s: %w", dirPath, err)
	}
	return total, nil
}

// loadYAMLFile parses one corpus document and adds its components.
func (l *Loader) loadYAMLFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read corpus file %s: %w", path, err)
	}

	var doc corpusDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("failed to parse corpus file %s: %w", path, err)
	}

	stored := 0
	for _, rec := range doc.Components {
		c, err := rec.toComponent()
		if err != nil {
			logging.Get(logging.CategoryBoot).Warn("Skipping record %q in %s: %v", rec.ID, filepath.Base(path), err)
			continue
		}
		if err := l.db.Add(c); err != nil {
			logging.Get(logging.CategoryBoot).Warn("Skipping component %q: %v", rec.ID, err)
			continue
		}
		stored++
	}

	logging.Boot("Loaded %d/%d components from %s", stored, len(doc.Components), filepath.Base(path))
	return stored, nil
}

// loadSQLite reads components from a corpus database emitted by the
// ingestion collaborator. Expected schema: a components table with id,
// category, slot, description, text, tags (JSON array), brand, metadata
// columns.
func (l *Loader) loadSQLite(ctx context.Context, path string) (int, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return 0, fmt.Errorf("failed to open corpus database %s: %w", path, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
		SELECT id, category, slot, description, text, tags, brand, metadata
		FROM components`)
	if err != nil {
		return 0, fmt.Errorf("failed to query corpus database %s: %w", path, err)
	}
	defer rows.Close()

	stored := 0
	for rows.Next() {
		var rec componentRecord
		var tagsJSON, brand, metadata sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Category, &rec.Slot, &rec.Description,
			&rec.Text, &tagsJSON, &brand, &metadata); err != nil {
			return stored, fmt.Errorf("failed to scan corpus row: %w", err)
		}
		if tagsJSON.Valid && tagsJSON.String != "" {
			if err := json.Unmarshal([]byte(tagsJSON.String), &rec.Tags); err != nil {
				logging.Get(logging.CategoryBoot).Warn("Bad tags for %q: %v", rec.ID, err)
			}
		}
		rec.Brand = brand.String
		rec.Metadata = metadata.String

		c, err := rec.toComponent()
		if err != nil {
			logging.Get(logging.CategoryBoot).Warn("Skipping record %q: %v", rec.ID, err)
			continue
		}
		if err := l.db.Add(c); err != nil {
			logging.Get(logging.CategoryBoot).Warn("Skipping component %q: %v", rec.ID, err)
			continue
		}
		stored++
	}
	if err := rows.Err(); err != nil {
		return stored, fmt.Errorf("corpus database iteration failed: %w", err)
	}

	return stored, nil
}

// toComponent maps a raw record onto the component type, resolving the
// metadata variant for the record's slot.
func (r componentRecord) toComponent() (*component.Component, error) {
	slot := component.SlotType(r.Slot)
	if !slot.Valid() {
		return nil, fmt.Errorf("unknown slot type %q", r.Slot)
	}

	c := &component.Component{
		ID:          r.ID,
		Category:    r.Category,
		Slot:        slot,
		Description: r.Description,
		Text:        r.Text,
		Tags:        r.Tags,
		Brand:       r.Brand,
	}

	if meta, ok := component.MetadataFor(slot, r.Metadata); ok {
		c.Meta = meta
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
