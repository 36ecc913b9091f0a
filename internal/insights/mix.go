package insights

import "scadenze/internal/core"

// MixInput merges ranked upcoming payments from the three sources. The
// expense and debt slices must already be in rank order (best first).
type MixInput struct {
	Expenses   []core.UpcomingPayment
	Debts      []core.UpcomingPayment
	Allocation *core.UpcomingPayment

	Limit       int
	MaxExpenses int
	MaxDebts    int
}

// MixUpcoming selects up to Limit payments while guaranteeing each source
// its quota: the top MaxExpenses expenses, the top MaxDebts debts and at
// most one allocation item are reserved first, so a flood of urgent bills
// cannot crowd the debts out of the final list. Unused quota is backfilled
// from the next-ranked expenses, then debts. The combined set is re-ranked
// by score (descending amount on ties) before truncation.
func MixUpcoming(in MixInput) []core.UpcomingPayment {
	maxExpenses := max(in.MaxExpenses, 0)
	maxDebts := max(in.MaxDebts, 0)

	selected := make([]core.UpcomingPayment, 0, in.Limit)
	selected = append(selected, takeFirst(in.Expenses, maxExpenses)...)
	selected = append(selected, takeFirst(in.Debts, maxDebts)...)
	if in.Allocation != nil {
		selected = append(selected, *in.Allocation)
	}

	if remaining := in.Limit - len(selected); remaining > 0 {
		selected = append(selected, slice(in.Expenses, maxExpenses, remaining)...)
	}
	if remaining := in.Limit - len(selected); remaining > 0 {
		selected = append(selected, slice(in.Debts, maxDebts, remaining)...)
	}

	return capList(RankUpcoming(selected), in.Limit)
}

func takeFirst(items []core.UpcomingPayment, n int) []core.UpcomingPayment {
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}

func slice(items []core.UpcomingPayment, from, count int) []core.UpcomingPayment {
	if from >= len(items) {
		return nil
	}
	end := from + count
	if end > len(items) {
		end = len(items)
	}
	return items[from:end]
}
