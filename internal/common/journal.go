package common

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// JournalEntry records one NVCAP calculation. Heads maps "tv" and
// "head1".."head4" to the 1-based display numbers placed on them.
type JournalEntry struct {
	ROM        string           `json:"rom"`
	ROMSha256  string           `json:"romSha256"`
	DCBVersion string           `json:"dcbVersion,omitempty"`
	Heads      map[string][]int `json:"heads,omitempty"`
	NVCAP      string           `json:"nvcap"`
	Ts         time.Time        `json:"ts"`
}

// Bytes decodes the recorded NVCAP hex string.
func (e JournalEntry) Bytes() ([]byte, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(e.NVCAP), " ", "")
	if clean == "" {
		return nil, nil
	}
	return hex.DecodeString(clean)
}

// Journal provides append-only access to a JSONL calculation history.
type Journal struct {
	path string
	mu   sync.Mutex
}

// NewJournal returns a Journal that writes to the provided path.
func NewJournal(path string) *Journal {
	return &Journal{path: path}
}

// Path returns the backing file path for the journal.
func (j *Journal) Path() string {
	if j == nil {
		return ""
	}
	return j.path
}

// Append writes a new entry as a single JSON line.
func (j *Journal) Append(entry JournalEntry) error {
	if j == nil {
		return errors.New("nil journal")
	}
	if entry.NVCAP == "" {
		return errors.New("journal entry missing nvcap")
	}
	if entry.Ts.IsZero() {
		entry.Ts = time.Now().UTC()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	dir := filepath.Dir(j.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	f, err := os.OpenFile(j.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		return err
	}
	return f.Sync()
}

// ReadJournal loads every entry from the supplied JSONL file.
func ReadJournal(path string) ([]JournalEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	var entries []JournalEntry
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry JournalEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, fmt.Errorf("decode journal entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
