package insights

import (
	"scadenze/internal/core"
)

// ComputeRecap summarizes how one past period's obligations were paid.
// Zero-amount records are skipped. A non-paid obligation whose due date
// falls on or before the period's last day counts toward the missed-due
// bucket in addition to its partial/unpaid bucket. When no due date can be
// resolved the obligation is assumed due within the period, which errs on
// the side of counting it as missed.
func ComputeRecap(obligations []core.Obligation, ctx PeriodContext) core.RecapSummary {
	summary := core.RecapSummary{Label: ctx.Period().Label()}
	periodEnd := endOfMonth(ctx.Year, ctx.Month)

	for _, o := range obligations {
		amount := core.FiniteAmount(o.Amount)
		if !(amount > 0) {
			continue
		}

		paidAmount := core.FiniteAmount(o.PaidAmount)
		status := ClassifyObligation(o)
		due, ok := ResolveDueDate(o, ctx)
		dueByEndOfMonth := !ok || !due.After(periodEnd)

		summary.TotalCount++
		summary.TotalAmount += amount

		if status == core.StatusPaid {
			summary.PaidCount++
			summary.PaidAmount += amount
			continue
		}

		remaining := amount - paidAmount
		if remaining < 0 {
			remaining = 0
		}

		if status == core.StatusPartial {
			summary.PartialCount++
			summary.PartialAmount += remaining
		} else {
			summary.UnpaidCount++
			summary.UnpaidAmount += amount
		}

		if dueByEndOfMonth {
			summary.MissedDueCount++
			summary.MissedDueAmount += remaining
		}
	}

	return summary
}
