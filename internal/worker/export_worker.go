// Package worker consumes recap-export messages and appends the digests
// to the configured export target.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"scadenze/internal/amqp"
	"scadenze/internal/core"
	"scadenze/internal/insights"
	"scadenze/internal/sheets"
)

// Store is the slice of persistence the worker needs.
type Store interface {
	GetPlan(ctx context.Context, id string) (core.BudgetPlan, error)
	ListPlans(ctx context.Context) ([]core.BudgetPlan, error)
	ListObligations(ctx context.Context, planID string, year, month int) ([]core.Obligation, error)
}

// Publisher enqueues recap-export work. *amqp.Client satisfies it.
type Publisher interface {
	PublishRecapExport(ctx context.Context, planID string, year, month int) error
}

// ExportWorker turns one export message into one exported digest row.
type ExportWorker struct {
	store    Store
	exporter sheets.RecapExporter
}

func NewExportWorker(store Store, exporter sheets.RecapExporter) *ExportWorker {
	return &ExportWorker{store: store, exporter: exporter}
}

// HandleExportMessage loads the plan's records for the requested month,
// recomputes the recap and appends it. The message carries no amounts, so
// redelivery always exports current numbers.
func (w *ExportWorker) HandleExportMessage(ctx context.Context, msg *amqp.RecapExportMessage) error {
	plan, err := w.store.GetPlan(ctx, msg.PlanID)
	if err != nil {
		return fmt.Errorf("get plan: %w", err)
	}

	obligations, err := w.store.ListObligations(ctx, msg.PlanID, msg.Year, msg.Month)
	if err != nil {
		return fmt.Errorf("list obligations: %w", err)
	}

	recap := insights.ComputeRecap(obligations, insights.PeriodContext{
		Year:    msg.Year,
		Month:   msg.Month,
		PayDate: plan.PayDate,
	})

	ref, err := w.exporter.AppendRecap(ctx, plan.Name, recap)
	if err != nil {
		return fmt.Errorf("append recap: %w", err)
	}

	slog.InfoContext(ctx, "Recap digest exported",
		"plan_id", plan.ID,
		"year", msg.Year,
		"month", msg.Month,
		"sheets_ref", ref,
		"total_count", recap.TotalCount,
		"missed_count", recap.MissedDueCount)

	return nil
}

// RunDigestScan publishes an export message for every plan's previous
// month. Intended to run once per period close; failures on one plan do
// not stop the others.
func RunDigestScan(ctx context.Context, store Store, publisher Publisher, now time.Time) error {
	plans, err := store.ListPlans(ctx)
	if err != nil {
		return fmt.Errorf("list plans: %w", err)
	}

	prev := core.PeriodOf(now.UTC()).AddMonths(-1)

	var failed int
	for _, plan := range plans {
		if err := publisher.PublishRecapExport(ctx, plan.ID, prev.Year, prev.Month); err != nil {
			slog.ErrorContext(ctx, "Failed to publish digest message",
				"plan_id", plan.ID,
				"year", prev.Year,
				"month", prev.Month,
				"error", err)
			failed++
		}
	}

	slog.InfoContext(ctx, "Digest scan completed",
		"plans", len(plans),
		"failed", failed,
		"year", prev.Year,
		"month", prev.Month)

	if failed > 0 {
		return fmt.Errorf("digest scan: %d of %d plans failed to publish", failed, len(plans))
	}
	return nil
}
