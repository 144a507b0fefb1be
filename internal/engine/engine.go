// Package engine wires the cost pipeline together: catalog index build,
// per-group calculators, line building, override lookup and
// reconciliation.
package engine

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/solandes-viajes/cost-console/internal/calc"
	"github.com/solandes-viajes/cost-console/internal/catalog"
	"github.com/solandes-viajes/cost-console/internal/expense"
	"github.com/solandes-viajes/cost-console/internal/lines"
	"github.com/solandes-viajes/cost-console/internal/model"
	"github.com/solandes-viajes/cost-console/internal/rates"
	"github.com/solandes-viajes/cost-console/internal/reconcile"
	"github.com/solandes-viajes/cost-console/internal/store"
)

// Engine evaluates group costs against one store and one rate table.
type Engine struct {
	store         store.Store
	rates         rates.Table
	convert       rates.Converter
	gate          reconcile.Gate
	prober        *expense.Prober
	maxConcurrent int
}

// Option customizes an Engine.
type Option func(*Engine)

// WithConverter swaps the currency conversion hook.
func WithConverter(c rates.Converter) Option {
	return func(e *Engine) { e.convert = c }
}

// WithMaxConcurrentGroups bounds EvaluateAll's parallelism.
func WithMaxConcurrentGroups(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxConcurrent = n
		}
	}
}

// WithProber replaces the expense-source prober.
func WithProber(p *expense.Prober) Option {
	return func(e *Engine) { e.prober = p }
}

// New creates an Engine over the given store, rate table and review
// unlock secret.
func New(st store.Store, rt rates.Table, reviewSecret string, opts ...Option) *Engine {
	e := &Engine{
		store:         st,
		rates:         rt,
		convert:       rates.Identity,
		gate:          reconcile.NewGate(reviewSecret),
		prober:        expense.NewStoreProber(st),
		maxConcurrent: 4,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BuildIndex builds the session's catalog snapshot.
func (e *Engine) BuildIndex(ctx context.Context) (*catalog.Index, error) {
	return catalog.Build(ctx, e.store)
}

// Evaluate computes one group's evaluation, building a fresh index.
func (e *Engine) Evaluate(ctx context.Context, groupID string) (*model.Evaluation, error) {
	idx, err := e.BuildIndex(ctx)
	if err != nil {
		return nil, err
	}
	g, err := e.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return e.EvaluateGroup(ctx, idx, *g)
}

// EvaluateGroup runs the full per-group pipeline against a prebuilt
// index. The four calculators have no data dependency on each other and
// run concurrently; reconciliation waits for the line list and the
// override fetch.
func (e *Engine) EvaluateGroup(ctx context.Context, idx *catalog.Index, g model.GroupRecord) (*model.Evaluation, error) {
	pax := g.Pax()
	dr := calc.RangeOf(g)

	var (
		activities calc.Result
		hotel      calc.HotelResult
		coord      calc.Result
		expenses   calc.Result
		overrides  map[string]model.OverrideRecord
	)

	grp, gCtx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		activities = calc.Activities(g, idx, pax, e.convert)
		return nil
	})
	grp.Go(func() error {
		hotel = calc.HotelMeals(g, e.rates, pax, dr, e.convert)
		return nil
	})
	grp.Go(func() error {
		coord = calc.Coordinator(g, e.rates, pax, dr, e.convert)
		return nil
	})
	grp.Go(func() error {
		expenses = calc.ApprovedExpenses(gCtx, g.ID, e.prober, e.convert)
		return nil
	})
	grp.Go(func() error {
		var err error
		overrides, err = e.store.GetOverrides(gCtx, g.ID)
		return err
	})
	if err := grp.Wait(); err != nil {
		return nil, eris.Wrapf(err, "engine: evaluate group %s", g.ID)
	}

	lineList := lines.Build(g, idx, e.rates, pax, dr, lines.SummaryInputs{
		CoordinatorTotal:      coord.Subtotal,
		ApprovedExpensesTotal: expenses.Subtotal,
	})

	base := activities.Subtotal + hotel.Total() + coord.Subtotal + expenses.Subtotal
	outcome := reconcile.Reconcile(base, lineList, overrides, e.convert)

	summary := model.GroupCostSummary{
		GroupID:               g.ID,
		GroupName:             g.Name,
		Destination:           g.Destination,
		Pax:                   pax,
		Nights:                dr.Nights,
		ActivitiesTotal:       activities.Subtotal,
		HotelTotal:            hotel.Lodging,
		MealsExtraTotal:       hotel.MealsExtra,
		CoordinatorTotal:      coord.Subtotal,
		ApprovedExpensesTotal: expenses.Subtotal,
		GrandTotalBase:        base,
		GrandTotalFinal:       outcome.FinalTotal,
		Overridden:            outcome.Overridden,
	}
	if pax > 0 {
		summary.PerPax = summary.GrandTotalFinal / float64(pax)
	}

	summary.Alerts = append(summary.Alerts, activities.Alerts...)
	summary.Alerts = append(summary.Alerts, hotel.Alerts...)
	summary.Alerts = append(summary.Alerts, coord.Alerts...)
	summary.Alerts = append(summary.Alerts, expenses.Alerts...)

	zap.L().Debug("engine: group evaluated",
		zap.String("group_id", g.ID),
		zap.Float64("total_base", summary.GrandTotalBase),
		zap.Float64("total_final", summary.GrandTotalFinal),
		zap.Bool("overridden", summary.Overridden),
		zap.Int("alerts", len(summary.Alerts)),
	)

	return &model.Evaluation{
		Summary:   summary,
		Lines:     lineList,
		Overrides: overrides,
	}, nil
}

// EvaluateAll evaluates every stored group with bounded concurrency.
// Groups are self-contained; one group's failure is logged and skipped,
// never blocking the others. Results come back in store order.
func (e *Engine) EvaluateAll(ctx context.Context) ([]model.Evaluation, error) {
	idx, err := e.BuildIndex(ctx)
	if err != nil {
		return nil, err
	}
	groups, err := e.store.ListGroups(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*model.Evaluation, len(groups))
	var mu sync.Mutex

	grp := new(errgroup.Group)
	grp.SetLimit(e.maxConcurrent)
	for i, g := range groups {
		grp.Go(func() error {
			ev, err := e.EvaluateGroup(ctx, idx, g)
			if err != nil {
				zap.L().Error("engine: group evaluation failed",
					zap.String("group_id", g.ID),
					zap.Error(err),
				)
				return nil
			}
			mu.Lock()
			results[i] = ev
			mu.Unlock()
			return nil
		})
	}
	grp.Wait() //nolint:errcheck

	evals := make([]model.Evaluation, 0, len(results))
	for _, ev := range results {
		if ev != nil {
			evals = append(evals, *ev)
		}
	}
	return evals, nil
}

// ApplyOverride runs the review gate and merges the patch into the
// line's override record. On a write failure nothing advances; the
// caller keeps showing the field as dirty.
func (e *Engine) ApplyOverride(ctx context.Context, groupID, lineID string, patch model.OverridePatch, unlockSecret string) (*model.OverrideRecord, error) {
	if patch.Empty() {
		return nil, eris.New("engine: empty override patch")
	}

	overrides, err := e.store.GetOverrides(ctx, groupID)
	if err != nil {
		return nil, eris.Wrapf(err, "engine: load overrides for %s", groupID)
	}
	var current *model.OverrideRecord
	if rec, ok := overrides[lineID]; ok {
		current = &rec
	}

	if err := e.gate.Check(current, patch, unlockSecret); err != nil {
		return nil, err
	}

	rec, err := e.store.MergeOverride(ctx, groupID, lineID, patch)
	if err != nil {
		return nil, eris.Wrapf(err, "engine: merge override %s", lineID)
	}

	zap.L().Info("engine: override merged",
		zap.String("group_id", groupID),
		zap.String("line_id", lineID),
		zap.String("updated_by", rec.UpdatedBy),
		zap.Bool("reviewed", rec.Reviewed),
	)
	return rec, nil
}
