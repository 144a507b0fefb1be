package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadGroupsJSON(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "groups.json", `[
		{
			"id": "G1",
			"name": "Colegio San Martín",
			"destination": "Bariloche",
			"adults": 2,
			"students": 38,
			"start_date": "2026-09-10",
			"end_date": "2026-09-13",
			"meal_plan": "MP",
			"itinerary": {
				"2026-09-11": [{"service_id": "RAFT-01", "activity": "Rafting"}]
			}
		},
		{"id": "G2", "destination": "Mendoza"}
	]`)

	groups, err := ReadGroupsJSON(path)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "G1", groups[0].ID)
	assert.Equal(t, 40, groups[0].Pax())
	require.Len(t, groups[0].Itinerary["2026-09-11"], 1)
	assert.Equal(t, "RAFT-01", groups[0].Itinerary["2026-09-11"][0].ServiceID)
}

func TestReadGroupsJSON_MissingID(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "groups.json", `[{"destination": "Bariloche"}]`)
	_, err := ReadGroupsJSON(path)
	assert.Error(t, err)
}

func TestReadGroupsJSON_Malformed(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "groups.json", `{"not": "an array"}`)
	_, err := ReadGroupsJSON(path)
	assert.Error(t, err)
}

func TestReadExpensesJSON(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "expenses.json", `[
		{
			"group_id": "G1",
			"entries": [
				{"doc_type": "EXPENSE", "concept": "Fuel", "approved_amount": 300, "currency": "ARS"},
				{"concept": "Tolls", "approved_amount": 100}
			]
		},
		{"group_id": "G2", "path": "legacy/expense_docs", "entries": []}
	]`)

	docs, err := ReadExpensesJSON(path)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "G1", docs[0].GroupID)
	assert.Empty(t, docs[0].Path)
	require.Len(t, docs[0].Entries, 2)
	assert.InDelta(t, 300, docs[0].Entries[0].ApprovedAmount, 0.001)
	assert.Equal(t, "legacy/expense_docs", docs[1].Path)

	// Entries without an id get one assigned.
	assert.NotEmpty(t, docs[0].Entries[0].ID)
	assert.NotEmpty(t, docs[0].Entries[1].ID)
	assert.NotEqual(t, docs[0].Entries[0].ID, docs[0].Entries[1].ID)
}

func TestReadExpensesJSON_MissingGroupID(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "expenses.json", `[{"entries": []}]`)
	_, err := ReadExpensesJSON(path)
	assert.Error(t, err)
}
