package repl

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// baseHistory is the name of the history file beneath the cache directory.
const baseHistory = "history.utf8"

// maxHistoryEntries caps both the in-memory ring and the persisted file.
const maxHistoryEntries = 1000

// historyPath locates the history file beneath the cache directory.
func historyPath(cacheDir string) string {
	return filepath.Join(cacheDir, baseHistory)
}

// History records submitted input lines in memory and mirrors them to a
// file so they survive across sessions.
type History struct {
	path    string
	entries []string
	mu      sync.Mutex
}

// NewHistory creates a History persisted at the given path.
func NewHistory(path string) *History {
	return &History{path: path}
}

// Load reads persisted entries from the history file. A missing file is not
// an error.
func (h *History) Load() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	data, err := os.ReadFile(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return err
	}

	h.entries = h.entries[:0]

	for line := range strings.Lines(string(data)) {
		line = strings.TrimRight(line, "\n")
		if line != "" {
			h.entries = append(h.entries, line)
		}
	}

	h.trim()

	return nil
}

// Write appends an input line to the history and persists it. Consecutive
// duplicates are dropped. It returns the new entry count.
func (h *History) Write(line string) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	line = strings.TrimSpace(line)
	if line == "" {
		return len(h.entries), nil
	}

	if n := len(h.entries); n > 0 && h.entries[n-1] == line {
		return n, nil
	}

	h.entries = append(h.entries, line)
	h.trim()

	return len(h.entries), h.flush()
}

// Entry returns the entry at the given index, oldest first.
func (h *History) Entry(index int) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if index < 0 || index >= len(h.entries) {
		return "", ErrOutOfBounds
	}

	return h.entries[index], nil
}

// Len returns the number of entries held.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.entries)
}

// trim discards the oldest entries beyond the cap. Callers must hold mu.
func (h *History) trim() {
	if over := len(h.entries) - maxHistoryEntries; over > 0 {
		h.entries = h.entries[over:]
	}
}

// flush rewrites the history file from the in-memory entries. Callers must
// hold mu.
func (h *History) flush() error {
	if h.path == "" {
		return nil
	}

	data := strings.Join(h.entries, "\n") + "\n"

	return os.WriteFile(h.path, []byte(data), 0o600)
}
