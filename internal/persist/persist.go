// Package persist reads and writes the whole-state snapshot files: the
// occupancy table (zone index key → ordered vehicle list) and the history
// sequence. Files are UTF-8 JSON, written via a temp file and an atomic
// rename so a crash mid-write never corrupts the previous snapshot.
package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"vehicle-storage-backend/internal/model"
)

// Files persists snapshots to a pair of JSON files.
type Files struct {
	dataPath    string
	historyPath string
}

// NewFiles creates a file-backed persister.
func NewFiles(dataPath, historyPath string) *Files {
	return &Files{dataPath: dataPath, historyPath: historyPath}
}

// LoadOccupancy reads the occupancy table. A missing file yields an empty
// table; an unreadable one is an error so a corrupt snapshot is never
// silently replaced by an empty state.
func (f *Files) LoadOccupancy() (map[string][]*model.Vehicle, error) {
	occupancy := make(map[string][]*model.Vehicle)
	if err := loadJSON(f.dataPath, &occupancy); err != nil {
		return nil, err
	}
	return occupancy, nil
}

// LoadHistory reads the history sequence, oldest first.
func (f *Files) LoadHistory() ([]*model.HistoryEntry, error) {
	var history []*model.HistoryEntry
	if err := loadJSON(f.historyPath, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// SaveOccupancy writes the full occupancy table.
func (f *Files) SaveOccupancy(zones map[string][]*model.Vehicle) error {
	return saveJSON(f.dataPath, zones)
}

// SaveHistory writes the full history sequence.
func (f *Files) SaveHistory(entries []*model.HistoryEntry) error {
	if entries == nil {
		entries = []*model.HistoryEntry{}
	}
	return saveJSON(f.historyPath, entries)
}

func loadJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

func saveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
