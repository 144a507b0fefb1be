package expense

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solandes-viajes/cost-console/internal/model"
)

type fakeReader struct {
	docs  map[string][]model.ExpenseEntry // keyed by path
	fails map[string]bool
	reads []string
}

func (r *fakeReader) ReadExpenseDocs(_ context.Context, _, path string) ([]model.ExpenseEntry, error) {
	r.reads = append(r.reads, path)
	if r.fails[path] {
		return nil, eris.Errorf("read %s failed", path)
	}
	return r.docs[path], nil
}

func TestProber_FirstNonEmptyWins(t *testing.T) {
	t.Parallel()

	reader := &fakeReader{
		docs: map[string][]model.ExpenseEntry{
			"expenses": {{ApprovedAmount: 100}},
		},
	}
	prober := NewStoreProber(reader)

	entries := prober.First(context.Background(), "G1")
	require.Len(t, entries, 1)
	assert.InDelta(t, 100, entries[0].ApprovedAmount, 0.001)

	// The probe stops at the first hit; the legacy path is untouched.
	assert.Equal(t, []string{"group_expenses", "expenses"}, reader.reads)
}

func TestProber_FailingSourceSkipped(t *testing.T) {
	t.Parallel()

	reader := &fakeReader{
		docs: map[string][]model.ExpenseEntry{
			"legacy/expense_docs": {{ApprovedAmount: 42}},
		},
		fails: map[string]bool{"group_expenses": true},
	}
	prober := NewStoreProber(reader)

	entries := prober.First(context.Background(), "G1")
	require.Len(t, entries, 1)
	assert.InDelta(t, 42, entries[0].ApprovedAmount, 0.001)
}

func TestProber_AllEmpty(t *testing.T) {
	t.Parallel()

	prober := NewStoreProber(&fakeReader{})
	assert.Nil(t, prober.First(context.Background(), "G1"))
}

func TestDefaultPaths_Order(t *testing.T) {
	t.Parallel()

	paths := DefaultPaths()
	require.NotEmpty(t, paths)
	assert.Equal(t, "group_expenses", paths[0])
}
