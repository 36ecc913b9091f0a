package insights

import (
	"reflect"
	"strings"
	"testing"

	"scadenze/internal/core"
)

func tipTitles(tips []core.Tip) []string {
	titles := make([]string, len(tips))
	for i, tip := range tips {
		titles[i] = tip.Title
	}
	return titles
}

func findTip(t *testing.T, tips []core.Tip, title string) core.Tip {
	t.Helper()
	for _, tip := range tips {
		if tip.Title == title {
			return tip
		}
	}
	t.Fatalf("tip %q not found in %v", title, tipTitles(tips))
	return core.Tip{}
}

func hasTip(tips []core.Tip, title string) bool {
	for _, tip := range tips {
		if tip.Title == title {
			return true
		}
	}
	return false
}

func TestGenerateTipsSuppressedWhenClean(t *testing.T) {
	in := TipInput{
		Recap: core.RecapSummary{TotalCount: 5, PaidCount: 5, TotalAmount: 500, PaidAmount: 500},
		Ctx:   PeriodContext{Year: 2026, Month: 2, PayDate: 25},
		Now:   date(2026, 2, 10),
		Forecasts: []core.ForecastPoint{
			{Year: 2026, Month: 3, IncomeTotal: 1000, BillsTotal: 1500},
		},
		History: []core.Obligation{
			{Name: "Electric", Amount: 60, Year: 2025, Month: 12},
		},
	}
	if got := GenerateTips(in); got != nil {
		t.Errorf("clean recap produced tips: %v", tipTitles(got))
	}
}

func TestGenerateTipsBaseline(t *testing.T) {
	in := TipInput{
		Recap: core.RecapSummary{TotalCount: 1, UnpaidCount: 1, UnpaidAmount: 30, MissedDueCount: 1, MissedDueAmount: 30},
		Ctx:   PeriodContext{Year: 2026, Month: 2, PayDate: 25},
		Now:   date(2026, 2, 10),
	}

	got := GenerateTips(in)
	for _, title := range []string{
		"Pay on payday (or the day after)",
		"Add reminders + autopay for the basics",
		"Build a tiny 'bills buffer'",
	} {
		if !hasTip(got, title) {
			t.Errorf("missing baseline tip %q, have %v", title, tipTitles(got))
		}
	}
	if hasTip(got, "Prioritize overdue bills first") {
		t.Errorf("overdue tip present with no current overdue bills")
	}
}

func TestGenerateTipsOverdueAmount(t *testing.T) {
	in := TipInput{
		Recap: core.RecapSummary{MissedDueCount: 1, MissedDueAmount: 20},
		Ctx:   PeriodContext{Year: 2026, Month: 2, PayDate: 25},
		Now:   date(2026, 2, 10),
		Current: []core.Obligation{
			{Name: "Electric", Amount: 100, PaidAmount: 40, DueDate: datePtr(2026, 2, 5)},
			{Name: "Water", Amount: 30, DueDate: datePtr(2026, 2, 20)},
		},
	}

	got := GenerateTips(in)
	tip := findTip(t, got, "Prioritize overdue bills first")
	if !strings.Contains(tip.Detail, "£60.00") {
		t.Errorf("overdue tip detail = %q, want remaining £60.00", tip.Detail)
	}
}

func TestGenerateTipsRecurringMiss(t *testing.T) {
	in := TipInput{
		Recap: core.RecapSummary{MissedDueCount: 1, MissedDueAmount: 60},
		Ctx:   PeriodContext{Year: 2026, Month: 1, PayDate: 25},
		Now:   date(2026, 1, 10),
		History: []core.Obligation{
			{Name: "Electric", Amount: 60, Year: 2025, Month: 11},
			{Name: "Electric", Amount: 60, Year: 2025, Month: 12},
			{Name: "Rent", Amount: 900, Paid: true, Year: 2025, Month: 11},
			{Name: "Rent", Amount: 900, Paid: true, Year: 2025, Month: 12},
		},
	}

	got := GenerateTips(in)
	tip := findTip(t, got, "You often miss Electric")
	if !strings.Contains(tip.Detail, "missed 2 times") {
		t.Errorf("recurring-miss detail = %q, want the miss count", tip.Detail)
	}
}

func TestGenerateTipsRecurringMissNeedsTwoPeriods(t *testing.T) {
	in := TipInput{
		Recap: core.RecapSummary{MissedDueCount: 2},
		Ctx:   PeriodContext{Year: 2026, Month: 1, PayDate: 25},
		Now:   date(2026, 1, 10),
		History: []core.Obligation{
			{Name: "Electric", Amount: 60, Year: 2025, Month: 12},
			{Name: "Electric", Amount: 60, Year: 2025, Month: 12},
		},
	}
	got := GenerateTips(in)
	if hasTip(got, "You often miss Electric") {
		t.Errorf("recurring-miss tip fired from a single period")
	}
}

func TestGenerateTipsDueDateClustering(t *testing.T) {
	history := make([]core.Obligation, 0, 6)
	for m := 7; m <= 12; m++ {
		history = append(history, core.Obligation{
			Name: "Rent", Amount: 900, Paid: true,
			DueDate: datePtr(2025, m, 3), Year: 2025, Month: m,
		})
	}
	in := TipInput{
		Recap:   core.RecapSummary{UnpaidCount: 1, UnpaidAmount: 30},
		Ctx:     PeriodContext{Year: 2026, Month: 1, PayDate: 25},
		Now:     date(2026, 1, 10),
		History: history,
	}

	got := GenerateTips(in)
	if !hasTip(got, "Many bills are due before payday") {
		t.Errorf("clustering tip missing, have %v", tipTitles(got))
	}
}

func TestGenerateTipsPartialHabit(t *testing.T) {
	in := TipInput{
		Recap: core.RecapSummary{PartialCount: 1, PartialAmount: 20},
		Ctx:   PeriodContext{Year: 2026, Month: 1, PayDate: 25},
		Now:   date(2026, 1, 10),
		History: []core.Obligation{
			{Name: "a", Amount: 100, PaidAmount: 50, DueDate: datePtr(2025, 11, 28), Year: 2025, Month: 11},
			{Name: "b", Amount: 100, PaidAmount: 50, DueDate: datePtr(2025, 11, 28), Year: 2025, Month: 11},
			{Name: "c", Amount: 100, PaidAmount: 50, DueDate: datePtr(2025, 12, 28), Year: 2025, Month: 12},
			{Name: "d", Amount: 100, DueDate: datePtr(2025, 12, 28), Year: 2025, Month: 12},
		},
	}

	got := GenerateTips(in)
	if !hasTip(got, "You often pay partially") {
		t.Errorf("partial-habit tip missing, have %v", tipTitles(got))
	}
}

func TestGenerateTipsForecasts(t *testing.T) {
	in := TipInput{
		Recap: core.RecapSummary{MissedDueCount: 1, MissedDueAmount: 80},
		Ctx:   PeriodContext{Year: 2026, Month: 1, PayDate: 25},
		Now:   date(2026, 1, 10),
		Forecasts: []core.ForecastPoint{
			{Year: 2026, Month: 1, IncomeTotal: 2000, BillsTotal: 1900},
			{Year: 2026, Month: 2, IncomeTotal: 2600, BillsTotal: 1900},
			{Year: 2026, Month: 3, IncomeTotal: 1500, BillsTotal: 1700},
		},
	}

	got := GenerateTips(in)

	catchUp := findTip(t, got, "Use higher-income months to catch up")
	if !strings.Contains(catchUp.Detail, "February 2026") {
		t.Errorf("catch-up detail = %q, want the stronger month named", catchUp.Detail)
	}
	if !strings.Contains(catchUp.Detail, "£80.00") {
		t.Errorf("catch-up detail = %q, want suggested amount £80.00", catchUp.Detail)
	}

	caution := findTip(t, got, "Watch for tight months ahead")
	if !strings.Contains(caution.Detail, "March 2026") {
		t.Errorf("caution detail = %q, want the tight month named", caution.Detail)
	}
}

func TestGenerateTipsNoCatchUpWithoutArrears(t *testing.T) {
	in := TipInput{
		Recap: core.RecapSummary{UnpaidCount: 1, UnpaidAmount: 30},
		Ctx:   PeriodContext{Year: 2026, Month: 1, PayDate: 25},
		Now:   date(2026, 1, 10),
		Forecasts: []core.ForecastPoint{
			{Year: 2026, Month: 1, IncomeTotal: 2000, BillsTotal: 1900},
			{Year: 2026, Month: 2, IncomeTotal: 2600, BillsTotal: 1900},
		},
	}
	got := GenerateTips(in)
	if hasTip(got, "Use higher-income months to catch up") {
		t.Errorf("catch-up tip fired with nothing overdue or missed")
	}
}

func TestGenerateTipsOverdueOutranksHousekeeping(t *testing.T) {
	in := TipInput{
		Recap: core.RecapSummary{MissedDueCount: 1, MissedDueAmount: 60},
		Ctx:   PeriodContext{Year: 2026, Month: 2, PayDate: 25},
		Now:   date(2026, 2, 10),
		Current: []core.Obligation{
			{Name: "Electric", Amount: 60, DueDate: datePtr(2026, 2, 5)},
		},
		Forecasts: []core.ForecastPoint{
			{Year: 2026, Month: 2, IncomeTotal: 2000, BillsTotal: 1900},
			{Year: 2026, Month: 3, IncomeTotal: 1500, BillsTotal: 1700},
		},
	}

	ranked := PrioritizeTips(GenerateTips(in), 0)

	pos := func(title string) int {
		for i, tip := range ranked {
			if tip.Title == title {
				return i
			}
		}
		t.Fatalf("tip %q not found in %v", title, tipTitles(ranked))
		return -1
	}

	if pos("Prioritize overdue bills first") > pos("Pay on payday (or the day after)") {
		t.Errorf("overdue tip ranked below housekeeping: %v", tipTitles(ranked))
	}
	caution := findTip(t, ranked, "Watch for tight months ahead")
	if caution.Priority != 79 {
		t.Errorf("caution priority = %d, want 79", caution.Priority)
	}
}

func TestGenerateTipsDeterministic(t *testing.T) {
	in := TipInput{
		Recap: core.RecapSummary{MissedDueCount: 2, MissedDueAmount: 120},
		Ctx:   PeriodContext{Year: 2026, Month: 1, PayDate: 25},
		Now:   date(2026, 1, 10),
		History: []core.Obligation{
			{Name: "Electric", Amount: 60, Year: 2025, Month: 11},
			{Name: "Water", Amount: 60, Year: 2025, Month: 11},
			{Name: "Electric", Amount: 60, Year: 2025, Month: 12},
			{Name: "Water", Amount: 60, Year: 2025, Month: 12},
		},
	}

	first := GenerateTips(in)
	for i := 0; i < 10; i++ {
		if again := GenerateTips(in); !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs:\n%v\nvs\n%v", i, tipTitles(first), tipTitles(again))
		}
	}
}
