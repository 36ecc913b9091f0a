package memory

import (
	"context"
	"testing"

	"scadenze/internal/core"
)

func TestAppendRecap(t *testing.T) {
	store := New()
	ctx := context.Background()

	recap := core.RecapSummary{Label: "January 2026", TotalCount: 3, TotalAmount: 990}
	ref, err := store.AppendRecap(ctx, "Household", recap)
	if err != nil {
		t.Fatalf("AppendRecap() error = %v", err)
	}
	if ref != "mem:1" {
		t.Errorf("ref = %q, want mem:1", ref)
	}

	if _, err := store.AppendRecap(ctx, "Household", recap); err != nil {
		t.Fatalf("AppendRecap() error = %v", err)
	}

	rows := store.Rows()
	if len(rows) != 2 {
		t.Fatalf("Rows() has %d entries, want 2", len(rows))
	}
	if rows[0].PlanName != "Household" || rows[0].Recap.Label != "January 2026" {
		t.Errorf("first row = %+v", rows[0])
	}

	// Rows returns a copy, not the backing slice.
	rows[0].PlanName = "mutated"
	if store.Rows()[0].PlanName != "Household" {
		t.Error("Rows() exposed internal state")
	}
}
