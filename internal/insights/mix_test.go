package insights

import (
	"testing"

	"scadenze/internal/core"
)

func unpaidLater(id string, amount float64, days int) core.UpcomingPayment {
	return core.UpcomingPayment{
		ID:           id,
		Kind:         core.KindExpense,
		Amount:       amount,
		Status:       core.StatusUnpaid,
		Urgency:      core.UrgencyLater,
		DaysUntilDue: days,
	}
}

func overdueExpense(id string, amount float64, days int) core.UpcomingPayment {
	return core.UpcomingPayment{
		ID:           id,
		Kind:         core.KindExpense,
		Amount:       amount,
		Status:       core.StatusUnpaid,
		Urgency:      core.UrgencyOverdue,
		DaysUntilDue: days,
	}
}

func debtItem(id string, amount float64, days int) core.UpcomingPayment {
	u := unpaidLater(id, amount, days)
	u.Kind = core.KindDebt
	return u
}

func countKind(items []core.UpcomingPayment, kind core.PaymentKind) int {
	n := 0
	for _, u := range items {
		if u.Kind == kind {
			n++
		}
	}
	return n
}

func TestMixUpcomingQuotas(t *testing.T) {
	// Five urgent expenses must not crowd out the two debts.
	in := MixInput{
		Expenses: []core.UpcomingPayment{
			overdueExpense("e1", 100, -5),
			overdueExpense("e2", 90, -4),
			overdueExpense("e3", 80, -3),
			overdueExpense("e4", 70, -2),
			overdueExpense("e5", 60, -1),
		},
		Debts: []core.UpcomingPayment{
			debtItem("d1", 200, 20),
			debtItem("d2", 150, 25),
		},
		Limit:       6,
		MaxExpenses: 3,
		MaxDebts:    2,
	}

	got := MixUpcoming(in)

	if len(got) != 6 {
		t.Fatalf("got %d payments, want 6", len(got))
	}
	if n := countKind(got, core.KindDebt); n != 2 {
		t.Errorf("debts in mix = %d, want 2", n)
	}
	if n := countKind(got, core.KindExpense); n != 4 {
		t.Errorf("expenses in mix = %d, want 4", n)
	}
	// Overdue expenses outrank the far-off debts after the re-sort.
	wantOrder := []string{"e1", "e2", "e3", "e4", "d1", "d2"}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Errorf("position %d: ID = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestMixUpcomingAllocation(t *testing.T) {
	alloc := core.UpcomingPayment{
		ID:           "allocation:plan:2026-1",
		Kind:         core.KindAllocation,
		Amount:       300,
		Status:       core.StatusUnpaid,
		Urgency:      core.UrgencySoon,
		DaysUntilDue: 2,
	}
	in := MixInput{
		Expenses:    []core.UpcomingPayment{unpaidLater("e1", 50, 10)},
		Allocation:  &alloc,
		Limit:       6,
		MaxExpenses: 3,
		MaxDebts:    2,
	}

	got := MixUpcoming(in)
	if len(got) != 2 {
		t.Fatalf("got %d payments, want 2", len(got))
	}
	if got[0].ID != alloc.ID {
		t.Errorf("first = %s, want the allocation item", got[0].ID)
	}
}

func TestMixUpcomingBackfill(t *testing.T) {
	in := MixInput{
		Expenses: []core.UpcomingPayment{
			unpaidLater("e1", 10, 10),
			unpaidLater("e2", 10, 11),
			unpaidLater("e3", 10, 12),
			unpaidLater("e4", 10, 13),
			unpaidLater("e5", 10, 14),
		},
		Debts:       []core.UpcomingPayment{debtItem("d1", 10, 15)},
		Limit:       6,
		MaxExpenses: 3,
		MaxDebts:    2,
	}

	// Quota takes e1-e3 and d1; backfill pulls e4 and e5.
	got := MixUpcoming(in)
	if len(got) != 6 {
		t.Fatalf("got %d payments, want 6", len(got))
	}
	wantOrder := []string{"e1", "e2", "e3", "e4", "e5", "d1"}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Errorf("position %d: ID = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestMixUpcomingTieBreakByAmount(t *testing.T) {
	in := MixInput{
		Expenses:    []core.UpcomingPayment{unpaidLater("cheap", 5, 10)},
		Debts:       []core.UpcomingPayment{debtItem("pricey", 500, 10)},
		Limit:       6,
		MaxExpenses: 3,
		MaxDebts:    2,
	}

	got := MixUpcoming(in)
	if len(got) != 2 {
		t.Fatalf("got %d payments, want 2", len(got))
	}
	if got[0].ID != "pricey" {
		t.Errorf("first = %s, want the larger amount on equal scores", got[0].ID)
	}
}

func TestMixUpcomingRespectsLimit(t *testing.T) {
	in := MixInput{
		Expenses: []core.UpcomingPayment{
			unpaidLater("e1", 10, 10),
			unpaidLater("e2", 10, 11),
			unpaidLater("e3", 10, 12),
		},
		Debts: []core.UpcomingPayment{
			debtItem("d1", 10, 15),
			debtItem("d2", 10, 16),
		},
		Limit:       3,
		MaxExpenses: 3,
		MaxDebts:    2,
	}

	got := MixUpcoming(in)
	if len(got) != 3 {
		t.Fatalf("got %d payments, want 3", len(got))
	}
}
