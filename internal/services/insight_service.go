// Package services orchestrates the insights pipeline: it loads a plan's
// records, runs the pure engine over them and assembles the dashboard
// payload the HTTP and worker layers serve.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"scadenze/internal/core"
	"scadenze/internal/insights"
)

// Windows and quotas for the dashboard pipeline.
const (
	historyWindowMonths  = 6
	upcomingWindowMonths = 3
	forecastWindowMonths = 4
	perPeriodLimit       = 50

	mixLimit       = 6
	mixMaxExpenses = 3
	mixMaxDebts    = 2
)

// Store is the persistence surface the service needs. *storage.SQLiteRepository
// satisfies it.
type Store interface {
	GetPlan(ctx context.Context, id string) (core.BudgetPlan, error)
	ListObligations(ctx context.Context, planID string, year, month int) ([]core.Obligation, error)
	ListObligationsWindow(ctx context.Context, planID string, from, to core.Period) ([]core.Obligation, error)
	MonthlyObligationTotals(ctx context.Context, planID string, from, to core.Period) (map[core.Period]float64, error)
	MonthlyIncomeTotals(ctx context.Context, planID string, from, to core.Period) (map[core.Period]float64, error)
	ListOpenDebts(ctx context.Context, planID string) ([]core.Debt, error)
	GetAllocationSnapshot(ctx context.Context, planID string, year, month int) (*core.AllocationSnapshot, error)
}

// Dashboard is the assembled insight payload for one plan. Recap is nil
// when the previous month predates the plan and holds no records.
type Dashboard struct {
	Plan     core.BudgetPlan        `json:"plan"`
	Recap    *core.RecapSummary     `json:"recap"`
	Upcoming []core.UpcomingPayment `json:"upcoming"`
	Tips     []core.Tip             `json:"tips"`
}

type InsightService struct {
	store Store
	now   func() time.Time
}

// NewInsightService wires the pipeline. A nil clock means the wall clock.
func NewInsightService(store Store, now func() time.Time) *InsightService {
	if now == nil {
		now = time.Now
	}
	return &InsightService{store: store, now: now}
}

// Dashboard builds the full insight payload for a plan.
func (s *InsightService) Dashboard(ctx context.Context, planID string) (Dashboard, error) {
	return s.build(ctx, planID, mixLimit)
}

// Upcoming returns just the mixed upcoming-payment list, with an optional
// override of the default length.
func (s *InsightService) Upcoming(ctx context.Context, planID string, limit int) ([]core.UpcomingPayment, error) {
	if limit <= 0 {
		limit = mixLimit
	}
	d, err := s.build(ctx, planID, limit)
	if err != nil {
		return nil, err
	}
	return d.Upcoming, nil
}

// PeriodRecap computes the recap for a named calendar month.
func (s *InsightService) PeriodRecap(ctx context.Context, planID string, year, month int) (core.RecapSummary, error) {
	if month < 1 || month > 12 {
		return core.RecapSummary{}, fmt.Errorf("recap for %d-%d: %w", year, month, core.ErrInvalidMonth)
	}

	plan, err := s.store.GetPlan(ctx, planID)
	if err != nil {
		return core.RecapSummary{}, fmt.Errorf("load plan: %w", err)
	}
	obligations, err := s.store.ListObligations(ctx, planID, year, month)
	if err != nil {
		return core.RecapSummary{}, fmt.Errorf("load obligations: %w", err)
	}

	ctxPeriod := insights.PeriodContext{Year: year, Month: month, PayDate: plan.PayDate}
	return insights.ComputeRecap(obligations, ctxPeriod), nil
}

func (s *InsightService) build(ctx context.Context, planID string, limit int) (Dashboard, error) {
	plan, err := s.store.GetPlan(ctx, planID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("load plan: %w", err)
	}

	now := s.now().UTC()
	current := core.PeriodOf(now)
	prev := current.AddMonths(-1)

	// The next payday drives debt and allocation items: this month's pay
	// date unless it has already passed.
	payPeriod := current
	payday := insights.PayDateIn(payPeriod, plan.PayDate)
	if insights.DaysUntil(payday, now) < 0 {
		payPeriod = current.AddMonths(1)
		payday = insights.PayDateIn(payPeriod, plan.PayDate)
	}

	windowFrom := current.AddMonths(-(historyWindowMonths - 1))
	windowTo := current.AddMonths(forecastWindowMonths - 1)
	forecastFrom, forecastTo := current, windowTo

	var (
		windowRows   []core.Obligation
		billTotals   map[core.Period]float64
		incomeTotals map[core.Period]float64
		debts        []core.Debt
		alloc        *core.AllocationSnapshot
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		windowRows, err = s.store.ListObligationsWindow(gctx, planID, windowFrom, windowTo)
		if err != nil {
			return fmt.Errorf("load obligation window: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		billTotals, err = s.store.MonthlyObligationTotals(gctx, planID, forecastFrom, forecastTo)
		if err != nil {
			return fmt.Errorf("load bill totals: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		incomeTotals, err = s.store.MonthlyIncomeTotals(gctx, planID, forecastFrom, forecastTo)
		if err != nil {
			return fmt.Errorf("load income totals: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		debts, err = s.store.ListOpenDebts(gctx, planID)
		if err != nil {
			return fmt.Errorf("load open debts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		alloc, err = s.store.GetAllocationSnapshot(gctx, planID, payPeriod.Year, payPeriod.Month)
		if err != nil {
			return fmt.Errorf("load allocation: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	rowsByPeriod := make(map[core.Period][]core.Obligation)
	for _, o := range windowRows {
		rowsByPeriod[o.Period()] = append(rowsByPeriod[o.Period()], o)
	}

	forecasts := make([]core.ForecastPoint, 0, forecastWindowMonths)
	for i := 0; i < forecastWindowMonths; i++ {
		p := current.AddMonths(i)
		forecasts = append(forecasts, core.ForecastPoint{
			Year:        p.Year,
			Month:       p.Month,
			IncomeTotal: incomeTotals[p],
			BillsTotal:  billTotals[p],
		})
	}

	recap := s.recapFor(plan, prev, rowsByPeriod[prev])

	expenses := s.upcomingExpenses(plan, now, current, rowsByPeriod)
	debtItems := s.debtUpcoming(debts, payday, now)
	allocation := s.allocationUpcoming(plan, alloc, current, payPeriod, now)

	mixed := insights.MixUpcoming(insights.MixInput{
		Expenses:    expenses,
		Debts:       debtItems,
		Allocation:  allocation,
		Limit:       limit,
		MaxExpenses: mixMaxExpenses,
		MaxDebts:    mixMaxDebts,
	})

	var tips []core.Tip
	if recap != nil {
		history := make([]core.Obligation, 0, len(windowRows))
		for i := 0; i < historyWindowMonths; i++ {
			p := current.AddMonths(-i)
			history = append(history, rowsByPeriod[p]...)
		}
		tips = insights.PrioritizeTips(insights.GenerateTips(insights.TipInput{
			Recap:     *recap,
			Current:   rowsByPeriod[current],
			Ctx:       insights.PeriodContext{Year: current.Year, Month: current.Month, PayDate: plan.PayDate},
			Now:       now,
			Forecasts: forecasts,
			History:   history,
		}), 0)
	}

	slog.DebugContext(ctx, "Dashboard assembled",
		"plan_id", plan.ID,
		"upcoming", len(mixed),
		"tips", len(tips),
		"recap_suppressed", recap == nil)

	return Dashboard{
		Plan:     plan,
		Recap:    recap,
		Upcoming: mixed,
		Tips:     tips,
	}, nil
}

// recapFor suppresses the recap when the previous month predates the plan
// and has nothing recorded; a brand-new plan should not open with an empty
// "you paid nothing" summary.
func (s *InsightService) recapFor(plan core.BudgetPlan, prev core.Period, prevRows []core.Obligation) *core.RecapSummary {
	if prev.Before(core.PeriodOf(plan.CreatedAt.UTC())) && len(prevRows) == 0 {
		return nil
	}
	summary := insights.ComputeRecap(prevRows, insights.PeriodContext{
		Year:    prev.Year,
		Month:   prev.Month,
		PayDate: plan.PayDate,
	})
	return &summary
}

// upcomingExpenses ranks the next few months of bills, dropping paid items.
func (s *InsightService) upcomingExpenses(plan core.BudgetPlan, now time.Time, current core.Period, rowsByPeriod map[core.Period][]core.Obligation) []core.UpcomingPayment {
	var all []core.UpcomingPayment
	for i := 0; i < upcomingWindowMonths; i++ {
		p := current.AddMonths(i)
		monthly := insights.ComputeUpcoming(rowsByPeriod[p], insights.UpcomingContext{
			PeriodContext: insights.PeriodContext{Year: p.Year, Month: p.Month, PayDate: plan.PayDate},
			Now:           now,
			Limit:         perPeriodLimit,
		})
		for _, u := range monthly {
			if u.Status == core.StatusPaid {
				continue
			}
			all = append(all, u)
		}
	}
	return insights.RankUpcoming(all)
}

// debtUpcoming turns open debt lines into upcoming payments due on the
// next payday.
func (s *InsightService) debtUpcoming(debts []core.Debt, payday time.Time, now time.Time) []core.UpcomingPayment {
	days := insights.DaysUntil(payday, now)

	items := make([]core.UpcomingPayment, 0, len(debts))
	for _, d := range debts {
		amount := core.FiniteAmount(d.Amount)
		if !(amount > 0) {
			continue
		}
		items = append(items, core.UpcomingPayment{
			ID:           "debt:" + d.ID,
			Kind:         core.KindDebt,
			Name:         d.Name,
			Amount:       amount,
			PaidAmount:   0,
			Status:       core.StatusUnpaid,
			DueDate:      payday,
			DaysUntilDue: days,
			Urgency:      insights.UrgencyFor(core.StatusUnpaid, days),
			Debt:         &core.DebtDetail{InterestRate: d.InterestRate},
		})
	}
	return insights.RankUpcoming(items)
}

// allocationUpcoming aggregates the payday month's allocation into a single
// upcoming item, nil when nothing is allocated.
func (s *InsightService) allocationUpcoming(plan core.BudgetPlan, alloc *core.AllocationSnapshot, current, payPeriod core.Period, now time.Time) *core.UpcomingPayment {
	if alloc == nil {
		return nil
	}
	total := alloc.Total()
	if !(total > 0) {
		return nil
	}

	due := insights.PayDateIn(payPeriod, plan.PayDate)
	days := insights.DaysUntil(due, now)
	return &core.UpcomingPayment{
		ID:           fmt.Sprintf("allocation:%s:%d-%d", plan.ID, current.Year, current.Month),
		Kind:         core.KindAllocation,
		Name:         alloc.DisplayName(),
		Amount:       total,
		PaidAmount:   0,
		Status:       core.StatusUnpaid,
		DueDate:      due,
		DaysUntilDue: days,
		Urgency:      insights.UrgencyFor(core.StatusUnpaid, days),
	}
}
