package insights

import (
	"sort"
	"time"

	"scadenze/internal/core"
)

// UpcomingContext extends the period context with the injected clock and an
// optional cap on the returned list (0 means uncapped).
type UpcomingContext struct {
	PeriodContext
	Now   time.Time
	Limit int
}

// rankBand places one status/urgency bucket on the ordering scale. Smaller
// scores sort earlier; bands that track distance add daysUntilDue to the
// base so items inside a band keep calendar order.
type rankBand struct {
	Base    int
	AddDays bool
}

// rankPolicy is the full ordering table: overdue first, then due today,
// then due within a week, then unpaid-later, with paid items pushed to the
// very end regardless of urgency.
var rankPolicy = struct {
	Paid    rankBand
	Overdue rankBand
	Today   rankBand
	Soon    rankBand
	Later   rankBand
}{
	Paid:    rankBand{Base: 10000, AddDays: true},
	Overdue: rankBand{Base: -1000, AddDays: true},
	Today:   rankBand{Base: -500},
	Soon:    rankBand{Base: 0, AddDays: true},
	Later:   rankBand{Base: 100, AddDays: true},
}

func (b rankBand) score(daysUntilDue int) int {
	if b.AddDays {
		return b.Base + daysUntilDue
	}
	return b.Base
}

// Score returns the ordering score for an upcoming payment. Exposed so the
// ranking policy can be unit-tested independently of list construction.
func Score(u core.UpcomingPayment) int {
	if u.Status == core.StatusPaid {
		return rankPolicy.Paid.score(u.DaysUntilDue)
	}
	switch u.Urgency {
	case core.UrgencyOverdue:
		return rankPolicy.Overdue.score(u.DaysUntilDue)
	case core.UrgencyToday:
		return rankPolicy.Today.score(u.DaysUntilDue)
	case core.UrgencySoon:
		return rankPolicy.Soon.score(u.DaysUntilDue)
	default:
		return rankPolicy.Later.score(u.DaysUntilDue)
	}
}

// ComputeUpcoming builds the ranked upcoming-payment list for one period.
// Obligations with no resolvable due date are skipped: they cannot be
// scheduled. Ties keep input order.
func ComputeUpcoming(obligations []core.Obligation, ctx UpcomingContext) []core.UpcomingPayment {
	upcoming := make([]core.UpcomingPayment, 0, len(obligations))

	for _, o := range obligations {
		amount := core.FiniteAmount(o.Amount)
		if !(amount > 0) {
			continue
		}
		due, ok := ResolveDueDate(o, ctx.PeriodContext)
		if !ok {
			continue
		}

		status := ClassifyObligation(o)
		days := DaysUntil(due, ctx.Now)

		upcoming = append(upcoming, core.UpcomingPayment{
			ID:           o.ID,
			Kind:         core.KindExpense,
			Name:         o.Name,
			Amount:       amount,
			PaidAmount:   core.FiniteAmount(o.PaidAmount),
			Status:       status,
			DueDate:      due,
			DaysUntilDue: days,
			Urgency:      UrgencyFor(status, days),
		})
	}

	sortByScore(upcoming, false)
	return capList(upcoming, ctx.Limit)
}

// RankUpcoming re-sorts an already-built list by score, breaking ties by
// descending amount. Used when items from several periods or sources are
// merged.
func RankUpcoming(items []core.UpcomingPayment) []core.UpcomingPayment {
	ranked := make([]core.UpcomingPayment, len(items))
	copy(ranked, items)
	sortByScore(ranked, true)
	return ranked
}

func sortByScore(items []core.UpcomingPayment, amountTieBreak bool) {
	sort.SliceStable(items, func(i, j int) bool {
		si, sj := Score(items[i]), Score(items[j])
		if si != sj {
			return si < sj
		}
		if amountTieBreak {
			return items[i].Amount > items[j].Amount
		}
		return false
	})
}

func capList(items []core.UpcomingPayment, limit int) []core.UpcomingPayment {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
