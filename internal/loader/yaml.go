package loader

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/lineage/internal/store"
	"github.com/mesh-intelligence/lineage/pkg/types"
)

// DefaultYAMLFile is the fixture name used when DataDir is a directory.
const DefaultYAMLFile = "lineage.yaml"

// fixture is the YAML document layout:
//
//	tables:
//	  person:
//	    - id: 1
//	      name: Anna
type fixture struct {
	Tables map[string][]map[string]any `yaml:"tables"`
}

// YAML is a Backend over a single YAML fixture file.
type YAML struct {
	base
}

// NewYAML creates a detached YAML backend.
func NewYAML(opts ...Option) *YAML {
	return &YAML{base: newBase(opts)}
}

// Attach binds the backend to a fixture. A DataDir ending in .yaml or .yml
// names the file itself; otherwise the file is DefaultYAMLFile inside it.
func (y *YAML) Attach(config types.Config) error {
	path := config.DataDir
	if path == "" {
		path = "."
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".yaml" && ext != ".yml" {
		path = filepath.Join(path, DefaultYAMLFile)
	}
	return y.attach(config, path, filepath.Dir(path))
}

// Load reads the fixture into a fresh Store. A missing file is an empty
// Store.
func (y *YAML) Load() (types.Store, error) {
	path, err := y.resolved()
	if err != nil {
		return nil, err
	}
	s := store.New()
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	if err := ReadYAML(f, s, y.logger); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return s, nil
}

// Save replaces the fixture with the contents of s.
func (y *YAML) Save(s types.Store) error {
	path, err := y.resolved()
	if err != nil {
		return err
	}
	return writeAtomic(path, func(w *bufio.Writer) error {
		return WriteYAML(w, s)
	})
}

// ReadYAML decodes a fixture document into s. Rows are added table by table
// in document order; rows without a positive id are skipped.
func ReadYAML(r io.Reader, s *store.Store, logger *slog.Logger) error {
	var doc fixture
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return fmt.Errorf("decoding fixture: %w", err)
	}
	for table, rows := range doc.Tables {
		s.GetTable(table)
		for i, row := range rows {
			putRow(s, logger, table, row, fmt.Sprintf("row %d", i+1))
		}
	}
	return nil
}

// WriteYAML encodes every table of s as a fixture document.
func WriteYAML(w io.Writer, s types.Store) error {
	doc := fixture{Tables: make(map[string][]map[string]any)}
	for _, name := range s.TableNames() {
		rows := []map[string]any{}
		for id, rec := range s.GetTable(name).All() {
			rows = append(rows, rowOf(id, rec))
		}
		doc.Tables[name] = rows
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding fixture: %w", err)
	}
	return enc.Close()
}

var _ types.Backend = (*YAML)(nil)
