package core

import (
	"math"
	"testing"
	"time"
)

func TestPeriodAddMonths(t *testing.T) {
	cases := []struct {
		p    Period
		n    int
		want Period
	}{
		{Period{2026, 1}, -1, Period{2025, 12}},
		{Period{2026, 1}, 1, Period{2026, 2}},
		{Period{2025, 11}, 3, Period{2026, 2}},
		{Period{2026, 6}, 0, Period{2026, 6}},
		{Period{2026, 3}, -15, Period{2024, 12}},
	}
	for i, tc := range cases {
		if got := tc.p.AddMonths(tc.n); got != tc.want {
			t.Errorf("case %d: AddMonths(%d) = %v, want %v", i, tc.n, got, tc.want)
		}
	}
}

func TestPeriodBefore(t *testing.T) {
	if !(Period{2025, 12}).Before(Period{2026, 1}) {
		t.Error("December 2025 should come before January 2026")
	}
	if (Period{2026, 1}).Before(Period{2026, 1}) {
		t.Error("a period is not before itself")
	}
	if (Period{2026, 2}).Before(Period{2026, 1}) {
		t.Error("February is not before January of the same year")
	}
}

func TestPeriodLabel(t *testing.T) {
	if got := (Period{2026, 1}).Label(); got != "January 2026" {
		t.Errorf("Label() = %q, want %q", got, "January 2026")
	}
}

func TestObligationValidate(t *testing.T) {
	due := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	good := Obligation{ID: "b1", Name: "Rent", Amount: 850, Year: 2026, Month: 1, DueDate: &due}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Obligation{
		{Name: "", Amount: 10, Year: 2026, Month: 1},
		{Name: "Rent", Amount: -1, Year: 2026, Month: 1},
		{Name: "Rent", Amount: math.NaN(), Year: 2026, Month: 1},
		{Name: "Rent", Amount: 10, Year: 2026, Month: 0},
		{Name: "Rent", Amount: 10, Year: 2026, Month: 13},
	}
	for i, o := range bads {
		if err := o.Validate(); err == nil {
			t.Errorf("case %d expected error", i)
		}
	}
}

func TestAllocationSnapshotTotal(t *testing.T) {
	snap := AllocationSnapshot{
		Allowance:  100,
		Savings:    200,
		Emergency:  math.NaN(), // malformed contribution degrades to 0
		Investment: 50,
		Custom:     []AllocationItem{{Name: "Holiday pot", Amount: 25}},
	}
	if got := snap.Total(); got != 375 {
		t.Errorf("Total() = %v, want 375", got)
	}
}

func TestAllocationSnapshotDisplayName(t *testing.T) {
	single := AllocationSnapshot{Savings: 120}
	if got := single.DisplayName(); got != "Savings contribution" {
		t.Errorf("DisplayName() = %q, want the single part's name", got)
	}

	multi := AllocationSnapshot{Savings: 120, Allowance: 80}
	if got := multi.DisplayName(); got != "Income sacrifice" {
		t.Errorf("DisplayName() = %q, want %q", got, "Income sacrifice")
	}

	empty := AllocationSnapshot{}
	if got := empty.DisplayName(); got != "Income sacrifice" {
		t.Errorf("DisplayName() = %q, want %q", got, "Income sacrifice")
	}
}
