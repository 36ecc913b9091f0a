package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"scadenze/internal/amqp"
	"scadenze/internal/core"
	"scadenze/internal/sheets/memory"
)

type fakeStore struct {
	plans       []core.BudgetPlan
	obligations map[string][]core.Obligation // keyed "plan/year/month"
}

func (f *fakeStore) GetPlan(_ context.Context, id string) (core.BudgetPlan, error) {
	for _, p := range f.plans {
		if p.ID == id {
			return p, nil
		}
	}
	return core.BudgetPlan{}, core.ErrPlanNotFound
}

func (f *fakeStore) ListPlans(_ context.Context) ([]core.BudgetPlan, error) {
	return f.plans, nil
}

func (f *fakeStore) ListObligations(_ context.Context, planID string, year, month int) ([]core.Obligation, error) {
	return f.obligations[fmt.Sprintf("%s/%d/%d", planID, year, month)], nil
}

type fakePublisher struct {
	published []amqp.RecapExportMessage
	failPlan  string
}

func (f *fakePublisher) PublishRecapExport(_ context.Context, planID string, year, month int) error {
	if planID == f.failPlan {
		return errors.New("broker unavailable")
	}
	f.published = append(f.published, amqp.RecapExportMessage{PlanID: planID, Year: year, Month: month})
	return nil
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y, m, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func TestHandleExportMessage(t *testing.T) {
	store := &fakeStore{
		plans: []core.BudgetPlan{{ID: "plan-1", Name: "Household", PayDate: 25}},
		obligations: map[string][]core.Obligation{
			"plan-1/2026/1": {
				{ID: "rent", Name: "Rent", Amount: 900, Paid: true, Year: 2026, Month: 1},
				{ID: "electric", Name: "Electric", Amount: 60, DueDate: datePtr(2026, 1, 10), Year: 2026, Month: 1},
			},
		},
	}
	exporter := memory.New()
	w := NewExportWorker(store, exporter)

	msg := &amqp.RecapExportMessage{PlanID: "plan-1", Year: 2026, Month: 1}
	if err := w.HandleExportMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleExportMessage() error = %v", err)
	}

	rows := exporter.Rows()
	if len(rows) != 1 {
		t.Fatalf("exported %d rows, want 1", len(rows))
	}
	got := rows[0]
	if got.PlanName != "Household" {
		t.Errorf("PlanName = %q, want Household", got.PlanName)
	}
	if got.Recap.Label != "January 2026" {
		t.Errorf("Label = %q, want January 2026", got.Recap.Label)
	}
	if got.Recap.TotalCount != 2 || got.Recap.MissedDueCount != 1 || got.Recap.MissedDueAmount != 60 {
		t.Errorf("recap = %+v, want 2 bills with 1 missed for 60", got.Recap)
	}
}

func TestHandleExportMessageUnknownPlan(t *testing.T) {
	w := NewExportWorker(&fakeStore{}, memory.New())
	msg := &amqp.RecapExportMessage{PlanID: "nope", Year: 2026, Month: 1}
	if err := w.HandleExportMessage(context.Background(), msg); !errors.Is(err, core.ErrPlanNotFound) {
		t.Errorf("HandleExportMessage() error = %v, want ErrPlanNotFound", err)
	}
}

func TestRunDigestScan(t *testing.T) {
	store := &fakeStore{
		plans: []core.BudgetPlan{
			{ID: "plan-1", Name: "Household"},
			{ID: "plan-2", Name: "Side business"},
		},
	}
	pub := &fakePublisher{}

	err := RunDigestScan(context.Background(), store, pub, date(2026, 2, 1))
	if err != nil {
		t.Fatalf("RunDigestScan() error = %v", err)
	}

	if len(pub.published) != 2 {
		t.Fatalf("published %d messages, want 2", len(pub.published))
	}
	for _, msg := range pub.published {
		if msg.Year != 2026 || msg.Month != 1 {
			t.Errorf("message period = %d-%d, want previous month 2026-1", msg.Year, msg.Month)
		}
	}
}

func TestRunDigestScanYearRollover(t *testing.T) {
	store := &fakeStore{plans: []core.BudgetPlan{{ID: "plan-1"}}}
	pub := &fakePublisher{}

	if err := RunDigestScan(context.Background(), store, pub, date(2026, 1, 3)); err != nil {
		t.Fatalf("RunDigestScan() error = %v", err)
	}
	msg := pub.published[0]
	if msg.Year != 2025 || msg.Month != 12 {
		t.Errorf("message period = %d-%d, want 2025-12", msg.Year, msg.Month)
	}
}

func TestRunDigestScanPartialFailure(t *testing.T) {
	store := &fakeStore{
		plans: []core.BudgetPlan{
			{ID: "plan-1"},
			{ID: "plan-2"},
		},
	}
	pub := &fakePublisher{failPlan: "plan-1"}

	err := RunDigestScan(context.Background(), store, pub, date(2026, 2, 1))
	if err == nil {
		t.Fatal("RunDigestScan() succeeded, want partial-failure error")
	}
	if len(pub.published) != 1 || pub.published[0].PlanID != "plan-2" {
		t.Errorf("published = %+v, want the healthy plan to go through", pub.published)
	}
}
