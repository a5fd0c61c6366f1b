package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/lineage/internal/dates"
	"github.com/mesh-intelligence/lineage/internal/loader"
	"github.com/mesh-intelligence/lineage/internal/relation"
	"github.com/mesh-intelligence/lineage/internal/sqlite"
	"github.com/mesh-intelligence/lineage/internal/tree"
	"github.com/mesh-intelligence/lineage/pkg/types"
)

// engine bundles the resolvers a command works with.
type engine struct {
	settings settings
	logger   *slog.Logger
	store    types.Store
	dates    *dates.Resolver
	rel      *relation.Resolver
	builder  *tree.Builder
	namer    tree.Namer
}

// newBackend returns the backend registered under name.
func newBackend(name string, logger *slog.Logger) (types.Backend, error) {
	switch name {
	case types.BackendSQLite:
		return sqlite.NewBackend(sqlite.WithLogger(logger)), nil
	case types.BackendJSONL:
		return loader.NewJSONL(loader.WithLogger(logger)), nil
	case types.BackendYAML:
		return loader.NewYAML(loader.WithLogger(logger)), nil
	default:
		return nil, userError("unknown backend %q", name)
	}
}

// loadStore attaches the configured backend, loads a snapshot and detaches.
func loadStore(cfg types.Config, logger *slog.Logger) (types.Store, error) {
	b, err := newBackend(cfg.Backend, logger)
	if err != nil {
		return nil, err
	}
	if err := b.Attach(cfg); err != nil {
		return nil, sysError("attach %s backend: %w", cfg.Backend, err)
	}
	defer b.Detach()

	s, err := b.Load()
	if err != nil {
		return nil, sysError("load %s backend: %w", cfg.Backend, err)
	}
	return s, nil
}

// rowCounter is implemented by backends that can count what they persisted.
type rowCounter interface {
	Counts() (map[string]int, error)
}

// saved summarises a saved snapshot.
type saved struct {
	tables int
	rows   int
}

// saveStore attaches the backend described by cfg and writes s to it. The
// summary comes from the backend when it can count its rows, and from s
// otherwise.
func saveStore(cfg types.Config, s types.Store, logger *slog.Logger) (saved, error) {
	b, err := newBackend(cfg.Backend, logger)
	if err != nil {
		return saved{}, err
	}
	if err := b.Attach(cfg); err != nil {
		return saved{}, sysError("attach %s backend: %w", cfg.Backend, err)
	}
	defer b.Detach()

	if err := b.Save(s); err != nil {
		return saved{}, sysError("save %s backend: %w", cfg.Backend, err)
	}
	if c, ok := b.(rowCounter); ok {
		counts, err := c.Counts()
		if err != nil {
			return saved{}, sysError("count %s backend: %w", cfg.Backend, err)
		}
		var sum saved
		for _, n := range counts {
			sum.tables++
			sum.rows += n
		}
		return sum, nil
	}
	var sum saved
	for _, name := range s.TableNames() {
		sum.tables++
		sum.rows += s.GetTable(name).Len()
	}
	return sum, nil
}

// commandLogger resolves settings and builds the logger for cmd.
func (f *rootFlags) commandLogger(cmd *cobra.Command) (settings, *slog.Logger, error) {
	s, err := f.resolve()
	if err != nil {
		return settings{}, nil, err
	}
	logger, err := newLogger(cmd.ErrOrStderr(), s.logLevel)
	if err != nil {
		return settings{}, nil, err
	}
	return s, logger, nil
}

// engineHooks lets a host observe the engine. Observer receives every
// inconsistency alongside the log; OnBuild receives every assembled tree.
type engineHooks struct {
	Observer relation.Observer
	OnBuild  func(tree.Tree)
}

// openEngine loads the configured store and wires the resolvers over it.
func (f *rootFlags) openEngine(cmd *cobra.Command, hooks engineHooks) (*engine, error) {
	s, logger, err := f.commandLogger(cmd)
	if err != nil {
		return nil, err
	}
	st, err := loadStore(s.config, logger)
	if err != nil {
		return nil, err
	}
	return newEngine(s, logger, st, hooks)
}

func newEngine(s settings, logger *slog.Logger, st types.Store, hooks engineHooks) (*engine, error) {
	d := dates.NewResolver(st, dates.WithLogger(logger))
	observer := relation.Tee(relation.LogObserver(logger), hooks.Observer)
	rel := relation.New(st, relation.WithDates(d), relation.WithObserver(observer))
	opts := []tree.Option{tree.WithLogger(logger)}
	if hooks.OnBuild != nil {
		opts = append(opts, tree.WithBuildHook(hooks.OnBuild))
	}
	b, err := tree.NewBuilder(rel, s.config.EffectiveDepth(), opts...)
	if err != nil {
		return nil, userError("%w", err)
	}
	return &engine{
		settings: s,
		logger:   logger,
		store:    st,
		dates:    d,
		rel:      rel,
		builder:  b,
		namer:    tree.StoreNamer(st),
	}, nil
}

// label formats a person as "Name (id)", or "#id" when unnamed.
func (e *engine) label(id types.ID) string {
	if name := e.namer(id); name != "" {
		return name + " (" + id.String() + ")"
	}
	return "#" + id.String()
}
