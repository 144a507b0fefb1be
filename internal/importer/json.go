package importer

import (
	"encoding/json"
	"os"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/solandes-viajes/cost-console/internal/model"
)

// ReadGroupsJSON parses a JSON array of group records.
func ReadGroupsJSON(path string) ([]model.GroupRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "importer: read %s", path)
	}

	var groups []model.GroupRecord
	if err := json.Unmarshal(data, &groups); err != nil {
		return nil, eris.Wrapf(err, "importer: parse %s", path)
	}
	for i, g := range groups {
		if g.ID == "" {
			return nil, eris.Errorf("importer: group %d has no id", i)
		}
	}
	return groups, nil
}

// ExpenseDoc pairs a group with one expense collection's entries.
type ExpenseDoc struct {
	GroupID string               `json:"group_id"`
	Path    string               `json:"path,omitempty"` // defaults to the primary collection
	Entries []model.ExpenseEntry `json:"entries"`
}

// ReadExpensesJSON parses a JSON array of expense documents.
func ReadExpensesJSON(path string) ([]ExpenseDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "importer: read %s", path)
	}

	var docs []ExpenseDoc
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, eris.Wrapf(err, "importer: parse %s", path)
	}
	for i, d := range docs {
		if d.GroupID == "" {
			return nil, eris.Errorf("importer: expense doc %d has no group id", i)
		}
		// Entries arriving without an id get one assigned, so later
		// re-imports of corrected documents stay addressable.
		for j := range d.Entries {
			if d.Entries[j].ID == "" {
				d.Entries[j].ID = uuid.NewString()
			}
		}
	}
	return docs, nil
}
