// Package catalog builds the per-session service lookup index used to
// resolve itinerary activities against destination catalogs.
package catalog

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/solandes-viajes/cost-console/internal/model"
)

// Reader is the slice of the document store the index is built from.
type Reader interface {
	ListDestinations(ctx context.Context) ([]string, error)
	ListServices(ctx context.Context, destination string) ([]model.ServiceRecord, error)
}

// Index maps normalized service identifiers, names and aliases to
// catalog records, per destination. It is an immutable snapshot built
// once per session and passed into every calculator call.
type Index struct {
	order  []string
	byDest map[string]map[string]model.ServiceRecord
}

// Normalize converts a lookup key to its canonical comparable form:
// uppercased, trimmed, inner whitespace collapsed to single spaces.
func Normalize(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

// Build reads every destination's service definitions and indexes each
// record under its normalized id, canonical name and aliases. A
// destination with no catalog data is skipped without error.
func Build(ctx context.Context, r Reader) (*Index, error) {
	dests, err := r.ListDestinations(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: list destinations")
	}

	idx := &Index{byDest: make(map[string]map[string]model.ServiceRecord)}
	for _, dest := range dests {
		services, err := r.ListServices(ctx, dest)
		if err != nil {
			return nil, eris.Wrapf(err, "catalog: list services for %s", dest)
		}
		idx.addDestination(dest, services)
	}

	zap.L().Debug("catalog: index built",
		zap.Int("destinations", len(idx.order)),
	)
	return idx, nil
}

// NewIndex builds an index directly from in-memory records, preserving
// the given destination declaration order.
func NewIndex(destinations []string, services map[string][]model.ServiceRecord) *Index {
	idx := &Index{byDest: make(map[string]map[string]model.ServiceRecord)}
	for _, dest := range destinations {
		idx.addDestination(dest, services[dest])
	}
	return idx
}

func (idx *Index) addDestination(dest string, services []model.ServiceRecord) {
	key := Normalize(dest)
	if key == "" || len(services) == 0 {
		return
	}
	m, ok := idx.byDest[key]
	if !ok {
		m = make(map[string]model.ServiceRecord)
		idx.byDest[key] = m
		idx.order = append(idx.order, key)
	}
	for _, svc := range services {
		for _, k := range serviceKeys(svc) {
			if _, exists := m[k]; !exists {
				m[k] = svc
			}
		}
	}
}

func serviceKeys(svc model.ServiceRecord) []string {
	keys := make([]string, 0, 2+len(svc.Aliases))
	for _, raw := range append([]string{svc.ID, svc.CanonicalName}, svc.Aliases...) {
		if k := Normalize(raw); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// Destinations returns the normalized destination keys in declaration order.
func (idx *Index) Destinations() []string {
	return append([]string(nil), idx.order...)
}

// Resolve finds a service record by id or free-text name. The hinted
// destination is consulted first; on a miss every destination is scanned
// in declaration order, id before text. Returns nil when nothing
// matches anywhere.
func (idx *Index) Resolve(destinationHint, serviceID, activityText string) *model.ServiceRecord {
	dest := Normalize(destinationHint)
	id := Normalize(serviceID)
	text := Normalize(activityText)

	if m, ok := idx.byDest[dest]; ok {
		if rec, ok := lookup(m, id, text); ok {
			return rec
		}
	}

	for _, key := range []string{id, text} {
		if key == "" {
			continue
		}
		for _, d := range idx.order {
			if rec, ok := idx.byDest[d][key]; ok {
				return &rec
			}
		}
	}
	return nil
}

func lookup(m map[string]model.ServiceRecord, keys ...string) (*model.ServiceRecord, bool) {
	for _, k := range keys {
		if k == "" {
			continue
		}
		if rec, ok := m[k]; ok {
			return &rec, true
		}
	}
	return nil, false
}
