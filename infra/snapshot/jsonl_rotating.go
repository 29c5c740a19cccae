package snapshot

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	core "github.com/kilianp07/minesched/core/snapshot"
)

const (
	opSave   = "save"
	opDelete = "delete"
)

// journalEntry is one line of the JSONL journal.
type journalEntry struct {
	Op       string         `json:"op"`
	ID       string         `json:"id"`
	Snapshot *core.Snapshot `json:"snapshot,omitempty"`
}

// RotatingJSONLStore journals snapshot operations to a JSONL file with
// automatic rotation. Reads replay the rotated files oldest first; snapshots
// whose save lines were rotated out are gone.
type RotatingJSONLStore struct {
	mu     sync.Mutex
	logger *lumberjack.Logger
	path   string
}

// NewRotatingJSONLStore creates a store with rotation options in megabytes and days.
func NewRotatingJSONLStore(path string, maxSizeMB, maxBackups, maxAgeDays int) (*RotatingJSONLStore, error) {
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   false,
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &RotatingJSONLStore{logger: lj, path: path}, nil
}

func (s *RotatingJSONLStore) append(e journalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return json.NewEncoder(s.logger).Encode(e)
}

// Save journals the snapshot.
func (s *RotatingJSONLStore) Save(ctx context.Context, snap core.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.append(journalEntry{Op: opSave, ID: snap.ID, Snapshot: &snap})
}

// Get replays the journal and returns the snapshot.
func (s *RotatingJSONLStore) Get(ctx context.Context, id string) (core.Snapshot, error) {
	state, err := s.replay(ctx)
	if err != nil {
		return core.Snapshot{}, err
	}
	snap, ok := state[id]
	if !ok {
		return core.Snapshot{}, core.ErrNotFound
	}
	return snap, nil
}

// List returns summaries matching q, newest first.
func (s *RotatingJSONLStore) List(ctx context.Context, q core.Query) ([]core.Snapshot, error) {
	state, err := s.replay(ctx)
	if err != nil {
		return nil, err
	}
	all := make([]core.Snapshot, 0, len(state))
	for _, snap := range state {
		if q.Match(snap) {
			all = append(all, snap.Summary())
		}
	}
	core.SortNewestFirst(all)
	return q.Page(all), nil
}

// Delete journals a tombstone for id.
func (s *RotatingJSONLStore) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.append(journalEntry{Op: opDelete, ID: id})
}

// files returns rotated backups oldest first followed by the active file.
func (s *RotatingJSONLStore) files() ([]string, error) {
	ext := filepath.Ext(s.path)
	prefix := strings.TrimSuffix(s.path, ext)
	backups, err := filepath.Glob(prefix + "-*" + ext)
	if err != nil {
		return nil, err
	}
	sort.Strings(backups)
	return append(backups, s.path), nil
}

func (s *RotatingJSONLStore) replay(ctx context.Context) (map[string]core.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	files, err := s.files()
	if err != nil {
		return nil, err
	}
	state := make(map[string]core.Snapshot)
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		file, err := os.Open(f)
		if err != nil {
			continue
		}
		scanner := bufio.NewScanner(file)
		scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
		for scanner.Scan() {
			var e journalEntry
			if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
				continue
			}
			switch e.Op {
			case opSave:
				if e.Snapshot != nil {
					state[e.ID] = *e.Snapshot
				}
			case opDelete:
				delete(state, e.ID)
			}
		}
		_ = file.Close()
	}
	return state, nil
}

// Close closes the underlying writer.
func (s *RotatingJSONLStore) Close() error {
	return s.logger.Close()
}
