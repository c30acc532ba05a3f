// Package store persists action sequences as JSON files under the user
// config directory, one file per sequence keyed by its id.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mj1618/autodoc-cli/internal/model"
)

// Store reads and writes saved sequences.
type Store struct {
	dir string
}

// Open returns a store rooted at dir, creating it if needed. An empty dir
// selects the default location under the user config directory.
func Open(dir string) (*Store, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config directory: %w", err)
		}
		dir = filepath.Join(base, "autodoc-cli", "sequences")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create sequence directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes the sequence to disk. Saving an existing id overwrites it.
func (s *Store) Save(seq *model.ActionSequence) error {
	if seq.ID == "" {
		return fmt.Errorf("sequence has no id")
	}
	data, err := json.MarshalIndent(seq, "", "  ")
	if err != nil {
		return fmt.Errorf("encode sequence: %w", err)
	}
	path := s.path(seq.ID)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Load reads one sequence by id.
func (s *Store) Load(id string) (*model.ActionSequence, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("sequence %q not found", id)
		}
		return nil, fmt.Errorf("read sequence %q: %w", id, err)
	}
	var seq model.ActionSequence
	if err := json.Unmarshal(data, &seq); err != nil {
		return nil, fmt.Errorf("decode sequence %q: %w", id, err)
	}
	return &seq, nil
}

// List returns all saved sequences, newest first.
func (s *Store) List() ([]*model.ActionSequence, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list sequences: %w", err)
	}
	var out []*model.ActionSequence
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		seq, err := s.Load(strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			// Skip unreadable entries rather than failing the whole list.
			continue
		}
		out = append(out, seq)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Delete removes a saved sequence.
func (s *Store) Delete(id string) error {
	if err := os.Remove(s.path(id)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("sequence %q not found", id)
		}
		return fmt.Errorf("delete sequence %q: %w", id, err)
	}
	return nil
}

// Resolve finds a sequence by exact id, id prefix, or exact name.
func (s *Store) Resolve(ref string) (*model.ActionSequence, error) {
	if seq, err := s.Load(ref); err == nil {
		return seq, nil
	}
	all, err := s.List()
	if err != nil {
		return nil, err
	}
	var matches []*model.ActionSequence
	for _, seq := range all {
		if strings.HasPrefix(seq.ID, ref) || seq.Name == ref {
			matches = append(matches, seq)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no sequence matches %q", ref)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%d sequences match %q; use the full id", len(matches), ref)
	}
}

func (s *Store) path(id string) string {
	// Ids are uuids we generate, but never trust them as path components.
	id = strings.ReplaceAll(id, string(filepath.Separator), "-")
	id = strings.ReplaceAll(id, "..", "-")
	return filepath.Join(s.dir, id+".json")
}
