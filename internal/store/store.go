package store

import (
	"context"

	"github.com/solandes-viajes/cost-console/internal/model"
)

// Store defines the document-store surface the cost engine depends on.
// The store offers read/write-by-key and full-collection scans; the only
// write guarantee is last-write-wins per document field.
type Store interface {
	// Catalog
	ListDestinations(ctx context.Context) ([]string, error)
	ListServices(ctx context.Context, destination string) ([]model.ServiceRecord, error)
	ReplaceServices(ctx context.Context, destination string, services []model.ServiceRecord) error

	// Groups
	GetGroup(ctx context.Context, id string) (*model.GroupRecord, error)
	ListGroups(ctx context.Context) ([]model.GroupRecord, error)
	PutGroup(ctx context.Context, g model.GroupRecord) error
	PutGroups(ctx context.Context, groups []model.GroupRecord) error

	// Expense documents, path-keyed to model the legacy collection layouts.
	ReadExpenseDocs(ctx context.Context, groupID, path string) ([]model.ExpenseEntry, error)
	PutExpenseDocs(ctx context.Context, groupID, path string, entries []model.ExpenseEntry) error

	// Overrides
	GetOverrides(ctx context.Context, groupID string) (map[string]model.OverrideRecord, error)
	MergeOverride(ctx context.Context, groupID, lineID string, patch model.OverridePatch) (*model.OverrideRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
