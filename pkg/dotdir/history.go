package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mnemosyneco/keep/pkg/scheduler"
)

const (
	historyFile = "history.json"
)

// LoadHistory loads the persisted optimization history from a target
// .keep/history.json. Returns nil, nil if no history exists yet.
// If overrideDir is non-empty, it is used instead of the default ~/.keep/
// location.
func (m *Manager) LoadHistory(overrideDir string) ([]scheduler.HistoryRecord, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, historyFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading optimization history: %w", err)
	}

	var records []scheduler.HistoryRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing optimization history: %w", err)
	}

	return records, nil
}

// SaveHistory persists the optimization history to a target .keep/history.json,
// overwriting any previous snapshot.
func (m *Manager) SaveHistory(records []scheduler.HistoryRecord, overrideDir string) error {
	if records == nil {
		return errors.New("cannot save nil history")
	}

	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling optimization history: %w", err)
	}

	path := filepath.Join(dir, historyFile)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing optimization history: %w", err)
	}

	return nil
}

// AppendHistory merges new runs into the persisted history, keeping at most
// limit entries (zero means unbounded).
func (m *Manager) AppendHistory(runs []scheduler.HistoryRecord, limit int, overrideDir string) error {
	records, err := m.LoadHistory(overrideDir)
	if err != nil {
		return err
	}

	records = append(records, runs...)
	if records == nil {
		records = []scheduler.HistoryRecord{}
	}
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}

	return m.SaveHistory(records, overrideDir)
}

// ClearHistory removes the persisted optimization history.
// Returns nil if the file doesn't exist (already cleared).
func (m *Manager) ClearHistory(overrideDir string) error {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, historyFile)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("removing optimization history: %w", err)
	}

	return nil
}
