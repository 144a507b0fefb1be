// Package expense probes the document store's candidate expense
// collections for a group's field-expense entries. Several legacy
// schema layouts coexist in production data, so sources are tried in
// declared priority order and the first non-empty one wins.
package expense

import (
	"context"

	"go.uber.org/zap"

	"github.com/solandes-viajes/cost-console/internal/model"
)

// Reader is the slice of the document store a source reads from.
type Reader interface {
	ReadExpenseDocs(ctx context.Context, groupID, path string) ([]model.ExpenseEntry, error)
}

// Source is one capability-typed reader of expense entries.
type Source interface {
	Name() string
	Read(ctx context.Context, groupID string) ([]model.ExpenseEntry, error)
}

// DefaultPaths lists the candidate storage paths in priority order,
// newest layout first.
func DefaultPaths() []string {
	return []string{
		"group_expenses",
		"expenses",
		"legacy/expense_docs",
	}
}

// StoreSource reads one collection path from the document store.
type StoreSource struct {
	reader Reader
	path   string
}

// NewStoreSource creates a source over a single collection path.
func NewStoreSource(r Reader, path string) *StoreSource {
	return &StoreSource{reader: r, path: path}
}

func (s *StoreSource) Name() string { return s.path }

func (s *StoreSource) Read(ctx context.Context, groupID string) ([]model.ExpenseEntry, error) {
	return s.reader.ReadExpenseDocs(ctx, groupID, s.path)
}

// Prober tries each source in order and returns the first non-empty
// result. A read failure on one source degrades to "nothing found
// there" and probing continues; it never aborts the group.
type Prober struct {
	sources []Source
}

// NewProber creates a prober over the given sources, consulted in order.
func NewProber(sources ...Source) *Prober {
	return &Prober{sources: sources}
}

// NewStoreProber creates a prober over the default store paths.
func NewStoreProber(r Reader) *Prober {
	paths := DefaultPaths()
	sources := make([]Source, 0, len(paths))
	for _, p := range paths {
		sources = append(sources, NewStoreSource(r, p))
	}
	return NewProber(sources...)
}

// First returns the first non-empty source's entries, or nil when every
// source is empty or failing.
func (p *Prober) First(ctx context.Context, groupID string) []model.ExpenseEntry {
	for _, src := range p.sources {
		entries, err := src.Read(ctx, groupID)
		if err != nil {
			zap.L().Warn("expense: source read failed",
				zap.String("source", src.Name()),
				zap.String("group_id", groupID),
				zap.Error(err),
			)
			continue
		}
		if len(entries) > 0 {
			return entries
		}
	}
	return nil
}
