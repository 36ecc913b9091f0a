package insights

import (
	"testing"

	"scadenze/internal/core"
)

func TestInferTipPriority(t *testing.T) {
	tests := []struct {
		name string
		tip  core.Tip
		want int
	}{
		{
			name: "neutral text gets the base",
			tip:  core.Tip{Title: "Review your plan", Detail: "Check each bill once a month."},
			want: 45,
		},
		{
			name: "urgency keyword",
			tip:  core.Tip{Title: "Overdue rent", Detail: ""},
			want: 79,
		},
		{
			name: "urgency plus immediacy",
			tip:  core.Tip{Title: "Pay the overdue bill today", Detail: ""},
			want: 85,
		},
		{
			name: "debt keyword",
			tip:  core.Tip{Title: "Pay down the card", Detail: "High interest costs add up."},
			want: 59,
		},
		{
			name: "savings keyword",
			tip:  core.Tip{Title: "Set up autopay", Detail: ""},
			want: 53,
		},
		{
			name: "all four bonuses clamp at 100",
			tip:  core.Tip{Title: "Missed minimum payment", Detail: "Pay the credit card now and set aside a buffer."},
			want: 100,
		},
		{
			name: "case insensitive",
			tip:  core.Tip{Title: "OVERDUE BILLS", Detail: ""},
			want: 79,
		},
		{
			name: "explicit priority wins",
			tip:  core.Tip{Title: "Overdue rent", Priority: 10},
			want: 10,
		},
		{
			name: "explicit priority clamped high",
			tip:  core.Tip{Title: "x", Priority: 250},
			want: 100,
		},
		{
			name: "explicit priority clamped low",
			tip:  core.Tip{Title: "x", Priority: -5},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferTipPriority(tt.tip); got != tt.want {
				t.Errorf("InferTipPriority() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPrioritizeTips(t *testing.T) {
	tips := []core.Tip{
		{Title: "Review your plan"},
		{Title: "Overdue rent"},
		{Title: "Set up autopay"},
	}

	got := PrioritizeTips(tips, 0)

	wantTitles := []string{"Overdue rent", "Set up autopay", "Review your plan"}
	for i, title := range wantTitles {
		if got[i].Title != title {
			t.Errorf("position %d: %q, want %q", i, got[i].Title, title)
		}
	}
	for i, tip := range got {
		if tip.Priority < 1 || tip.Priority > 100 {
			t.Errorf("position %d: priority %d outside [1, 100]", i, tip.Priority)
		}
	}

	// The input keeps its zero priorities.
	if tips[0].Priority != 0 {
		t.Errorf("PrioritizeTips mutated its input")
	}
}

func TestPrioritizeTipsStableOnTies(t *testing.T) {
	tips := []core.Tip{
		{Title: "a", Priority: 45},
		{Title: "b", Priority: 45},
		{Title: "c", Priority: 45},
	}
	got := PrioritizeTips(tips, 0)
	for i, title := range []string{"a", "b", "c"} {
		if got[i].Title != title {
			t.Errorf("position %d: %q, want %q (ties must keep input order)", i, got[i].Title, title)
		}
	}
}

func TestPrioritizeTipsLimit(t *testing.T) {
	tips := []core.Tip{
		{Title: "a", Priority: 90},
		{Title: "b", Priority: 80},
		{Title: "c", Priority: 70},
	}
	got := PrioritizeTips(tips, 2)
	if len(got) != 2 {
		t.Fatalf("got %d tips, want 2", len(got))
	}
	if got[0].Title != "a" || got[1].Title != "b" {
		t.Errorf("kept %q, %q; want the two highest", got[0].Title, got[1].Title)
	}

	if got := PrioritizeTips(nil, 3); got != nil {
		t.Errorf("PrioritizeTips(nil) = %v, want nil", got)
	}
}
