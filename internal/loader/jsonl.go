package loader

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mesh-intelligence/lineage/internal/store"
	"github.com/mesh-intelligence/lineage/pkg/types"
)

const jsonlExt = ".jsonl"

// JSONL is a Backend over a directory holding one <table>.jsonl file per
// table.
type JSONL struct {
	base
}

// NewJSONL creates a detached JSONL backend.
func NewJSONL(opts ...Option) *JSONL {
	return &JSONL{base: newBase(opts)}
}

// Attach binds the backend to config.DataDir, creating it if needed. An
// empty DataDir means the working directory.
func (j *JSONL) Attach(config types.Config) error {
	dir := config.DataDir
	if dir == "" {
		dir = "."
	}
	return j.attach(config, dir, dir)
}

// Load reads every .jsonl file of the directory into a fresh Store.
func (j *JSONL) Load() (types.Store, error) {
	dir, err := j.resolved()
	if err != nil {
		return nil, err
	}
	paths, err := filepath.Glob(filepath.Join(dir, "*"+jsonlExt))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	sort.Strings(paths)

	s := store.New()
	for _, path := range paths {
		table := strings.TrimSuffix(filepath.Base(path), jsonlExt)
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		_, err = ReadJSONL(f, s, table, j.logger)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}
	j.logger.Debug("jsonl loaded", "dir", dir, "tables", len(paths))
	return s, nil
}

// Save writes one file per table of s and removes .jsonl files of tables s
// does not have.
func (j *JSONL) Save(s types.Store) error {
	dir, err := j.resolved()
	if err != nil {
		return err
	}
	keep := make(map[string]bool)
	for _, name := range s.TableNames() {
		path := filepath.Join(dir, name+jsonlExt)
		if err := writeAtomic(path, func(w *bufio.Writer) error {
			return WriteJSONL(w, s.GetTable(name))
		}); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		keep[path] = true
	}

	stale, err := filepath.Glob(filepath.Join(dir, "*"+jsonlExt))
	if err != nil {
		return fmt.Errorf("listing %s: %w", dir, err)
	}
	for _, path := range stale {
		if keep[path] {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", path, err)
		}
	}
	return nil
}

// ReadJSONL reads JSON objects, one per line, into table of s and returns
// the number of rows added. Blank lines, malformed lines and rows without a
// positive id are skipped.
func ReadJSONL(r io.Reader, s *store.Store, table string, logger *slog.Logger) (int, error) {
	added := 0
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for n := 1; scanner.Scan(); n++ {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		dec := json.NewDecoder(bytes.NewReader(line))
		dec.UseNumber()
		var row map[string]any
		if err := dec.Decode(&row); err != nil || row == nil {
			logger.Debug("skipping malformed line", "table", table, "line", n)
			continue
		}
		if putRow(s, logger, table, row, fmt.Sprintf("line %d", n)) {
			added++
		}
	}
	if err := scanner.Err(); err != nil {
		return added, fmt.Errorf("scanning %s: %w", table, err)
	}
	return added, nil
}

// WriteJSONL writes every row of t, in id order, as one JSON object per line.
func WriteJSONL(w io.Writer, t types.Table) error {
	enc := json.NewEncoder(w)
	for id, rec := range t.All() {
		if err := enc.Encode(rowOf(id, rec)); err != nil {
			return fmt.Errorf("encoding %s/%d: %w", t.Name(), id, err)
		}
	}
	return nil
}

var _ types.Backend = (*JSONL)(nil)
