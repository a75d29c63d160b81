package orchestrator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Store writes completed iterations to the project's state directory,
// one timestamp-keyed JSON file each. There is no schema version; the
// record only ever grows additive fields.
type Store struct {
	dir string
}

// NewStore builds a store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory iterations are written to.
func (s *Store) Dir() string { return s.dir }

// Save writes the iteration as indented JSON and returns the file path.
// The filename carries the iteration ID alongside the timestamp; the
// timestamp alone is second-granular and two runs can finish inside the
// same second.
func (s *Store) Save(iter *Iteration) (string, error) {
	data, err := json.MarshalIndent(iter, "", "  ")
	if err != nil {
		return "", fmt.Errorf("store: encode iteration %s: %w", iter.ID, err)
	}
	name := fmt.Sprintf("iteration_%s_%s.json", iter.Timestamp.Format("20060102_150405"), shortID(iter.ID))
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("store: write %s: %w", path, err)
	}
	return path, nil
}

// shortID trims an iteration ID to its leading segment, enough to keep
// same-second filenames distinct without making them unwieldy.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// LoadAll reads every saved iteration, oldest first by filename. Files
// that fail to decode are skipped rather than failing the whole load.
func (s *Store) LoadAll() ([]*Iteration, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", s.dir, err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "iteration_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var out []*Iteration
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			return nil, fmt.Errorf("store: read %s: %w", name, err)
		}
		var iter Iteration
		if err := json.Unmarshal(data, &iter); err != nil {
			continue
		}
		out = append(out, &iter)
	}
	return out, nil
}
