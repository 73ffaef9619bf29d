package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nix-mox/moxlint/internal/domain"
)

const historyFile = ".moxlint/history/runs.json"

// maxEntries bounds the file; the oldest runs are dropped first.
const maxEntries = 200

// FileHistory implements domain.LintHistory using JSON file storage.
type FileHistory struct{}

func New() *FileHistory {
	return &FileHistory{}
}

func (h *FileHistory) Save(root string, entry domain.LintSummary) error {
	entries, err := h.Load(root)
	if err != nil {
		return err
	}

	entries = append(entries, entry)
	if len(entries) > maxEntries {
		entries = entries[len(entries)-maxEntries:]
	}

	fp := filepath.Join(root, historyFile)
	if err := os.MkdirAll(filepath.Dir(fp), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(fp, data, 0644)
}

func (h *FileHistory) Load(root string) ([]domain.LintSummary, error) {
	fp := filepath.Join(root, historyFile)

	data, err := os.ReadFile(fp)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []domain.LintSummary
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", historyFile, err)
	}

	return entries, nil
}
