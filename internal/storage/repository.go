// Package storage persists budget plans and their obligation records in
// SQLite. All reads return core types; the insights engine never touches
// the database directly.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"scadenze/internal/core"

	_ "modernc.org/sqlite"
)

// dueDateLayout is how nullable obligation due dates are stored.
const dueDateLayout = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// GetPlan loads one budget plan. Returns core.ErrPlanNotFound when the id
// is unknown.
func (r *SQLiteRepository) GetPlan(ctx context.Context, id string) (core.BudgetPlan, error) {
	var plan core.BudgetPlan
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, pay_date, created_at FROM budget_plans WHERE id = ?`, id)
	if err := row.Scan(&plan.ID, &plan.Name, &plan.PayDate, &plan.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.BudgetPlan{}, fmt.Errorf("plan %s: %w", id, core.ErrPlanNotFound)
		}
		return core.BudgetPlan{}, fmt.Errorf("get plan: %w", err)
	}
	return plan, nil
}

func (r *SQLiteRepository) ListPlans(ctx context.Context) ([]core.BudgetPlan, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, pay_date, created_at FROM budget_plans ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var plans []core.BudgetPlan
	for rows.Next() {
		var plan core.BudgetPlan
		if err := rows.Scan(&plan.ID, &plan.Name, &plan.PayDate, &plan.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, plan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plans: %w", err)
	}
	return plans, nil
}

// ListObligations returns one period's obligations in insertion order.
func (r *SQLiteRepository) ListObligations(ctx context.Context, planID string, year, month int) ([]core.Obligation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, amount, paid, paid_amount, due_date, year, month
		 FROM obligations
		 WHERE plan_id = ? AND year = ? AND month = ?
		 ORDER BY created_at, id`,
		planID, year, month)
	if err != nil {
		return nil, fmt.Errorf("list obligations: %w", err)
	}
	defer rows.Close()
	return scanObligations(rows)
}

// ListObligationsWindow returns obligations for every period in [from, to],
// inclusive, ordered by period.
func (r *SQLiteRepository) ListObligationsWindow(ctx context.Context, planID string, from, to core.Period) ([]core.Obligation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, amount, paid, paid_amount, due_date, year, month
		 FROM obligations
		 WHERE plan_id = ? AND (year * 100 + month) BETWEEN ? AND ?
		 ORDER BY year, month, created_at, id`,
		planID, periodKey(from), periodKey(to))
	if err != nil {
		return nil, fmt.Errorf("list obligations window: %w", err)
	}
	defer rows.Close()
	return scanObligations(rows)
}

// MonthlyObligationTotals sums obligation amounts per period over [from, to].
func (r *SQLiteRepository) MonthlyObligationTotals(ctx context.Context, planID string, from, to core.Period) (map[core.Period]float64, error) {
	return r.monthlyTotals(ctx, "obligations", planID, from, to)
}

// MonthlyIncomeTotals sums income amounts per period over [from, to].
func (r *SQLiteRepository) MonthlyIncomeTotals(ctx context.Context, planID string, from, to core.Period) (map[core.Period]float64, error) {
	return r.monthlyTotals(ctx, "incomes", planID, from, to)
}

func (r *SQLiteRepository) monthlyTotals(ctx context.Context, table, planID string, from, to core.Period) (map[core.Period]float64, error) {
	// table is one of two compile-time constants, never user input.
	rows, err := r.db.QueryContext(ctx,
		`SELECT year, month, COALESCE(SUM(amount), 0)
		 FROM `+table+`
		 WHERE plan_id = ? AND (year * 100 + month) BETWEEN ? AND ?
		 GROUP BY year, month`,
		planID, periodKey(from), periodKey(to))
	if err != nil {
		return nil, fmt.Errorf("monthly totals from %s: %w", table, err)
	}
	defer rows.Close()

	totals := make(map[core.Period]float64)
	for rows.Next() {
		var p core.Period
		var total float64
		if err := rows.Scan(&p.Year, &p.Month, &total); err != nil {
			return nil, fmt.Errorf("scan monthly total: %w", err)
		}
		totals[p] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate monthly totals: %w", err)
	}
	return totals, nil
}

// ListOpenDebts returns the plan's unpaid debt lines with a balance still
// owing, largest balance first.
func (r *SQLiteRepository) ListOpenDebts(ctx context.Context, planID string) ([]core.Debt, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, amount, current_balance, interest_rate, paid
		 FROM debts
		 WHERE plan_id = ? AND paid = 0 AND current_balance > 0
		 ORDER BY current_balance DESC, id`,
		planID)
	if err != nil {
		return nil, fmt.Errorf("list open debts: %w", err)
	}
	defer rows.Close()

	var debts []core.Debt
	for rows.Next() {
		var d core.Debt
		if err := rows.Scan(&d.ID, &d.Name, &d.Amount, &d.CurrentBalance, &d.InterestRate, &d.Paid); err != nil {
			return nil, fmt.Errorf("scan debt: %w", err)
		}
		debts = append(debts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate debts: %w", err)
	}
	return debts, nil
}

// GetAllocationSnapshot loads one month's allocation with its custom items.
// Returns nil when the month has no allocation row.
func (r *SQLiteRepository) GetAllocationSnapshot(ctx context.Context, planID string, year, month int) (*core.AllocationSnapshot, error) {
	snap := &core.AllocationSnapshot{Year: year, Month: month}
	row := r.db.QueryRowContext(ctx,
		`SELECT allowance, savings, emergency, investment
		 FROM allocations
		 WHERE plan_id = ? AND year = ? AND month = ?`,
		planID, year, month)
	if err := row.Scan(&snap.Allowance, &snap.Savings, &snap.Emergency, &snap.Investment); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get allocation: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT name, amount FROM custom_allocations
		 WHERE plan_id = ? AND year = ? AND month = ?
		 ORDER BY id`,
		planID, year, month)
	if err != nil {
		return nil, fmt.Errorf("list custom allocations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item core.AllocationItem
		if err := rows.Scan(&item.Name, &item.Amount); err != nil {
			return nil, fmt.Errorf("scan custom allocation: %w", err)
		}
		snap.Custom = append(snap.Custom, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate custom allocations: %w", err)
	}
	return snap, nil
}

// CreatePlan inserts a budget plan. Used by seeding and tests.
func (r *SQLiteRepository) CreatePlan(ctx context.Context, plan core.BudgetPlan) error {
	createdAt := plan.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budget_plans (id, name, pay_date, created_at) VALUES (?, ?, ?, ?)`,
		plan.ID, plan.Name, plan.PayDate, createdAt)
	if err != nil {
		return fmt.Errorf("create plan: %w", err)
	}
	slog.InfoContext(ctx, "Budget plan created", "plan_id", plan.ID, "pay_date", plan.PayDate)
	return nil
}

// AddObligation inserts one obligation row after validating it.
func (r *SQLiteRepository) AddObligation(ctx context.Context, planID string, o core.Obligation) error {
	if err := o.Validate(); err != nil {
		return fmt.Errorf("add obligation: %w", err)
	}
	var due any
	if o.DueDate != nil {
		due = o.DueDate.UTC().Format(dueDateLayout)
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO obligations (id, plan_id, name, amount, paid, paid_amount, due_date, year, month)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, planID, o.Name, o.Amount, o.Paid, o.PaidAmount, due, o.Year, o.Month)
	if err != nil {
		return fmt.Errorf("add obligation: %w", err)
	}
	return nil
}

// AddIncome inserts one income row.
func (r *SQLiteRepository) AddIncome(ctx context.Context, planID, id, name string, amount float64, year, month int) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO incomes (id, plan_id, name, amount, year, month) VALUES (?, ?, ?, ?, ?, ?)`,
		id, planID, name, amount, year, month)
	if err != nil {
		return fmt.Errorf("add income: %w", err)
	}
	return nil
}

// AddDebt inserts one debt line.
func (r *SQLiteRepository) AddDebt(ctx context.Context, planID string, d core.Debt) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO debts (id, plan_id, name, amount, current_balance, interest_rate, paid)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.ID, planID, d.Name, d.Amount, d.CurrentBalance, d.InterestRate, d.Paid)
	if err != nil {
		return fmt.Errorf("add debt: %w", err)
	}
	return nil
}

// PutAllocation upserts one month's allocation and replaces its custom items.
func (r *SQLiteRepository) PutAllocation(ctx context.Context, planID string, snap core.AllocationSnapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin allocation tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO allocations (plan_id, year, month, allowance, savings, emergency, investment)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (plan_id, year, month) DO UPDATE SET
		   allowance = excluded.allowance,
		   savings = excluded.savings,
		   emergency = excluded.emergency,
		   investment = excluded.investment`,
		planID, snap.Year, snap.Month, snap.Allowance, snap.Savings, snap.Emergency, snap.Investment)
	if err != nil {
		return fmt.Errorf("upsert allocation: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM custom_allocations WHERE plan_id = ? AND year = ? AND month = ?`,
		planID, snap.Year, snap.Month)
	if err != nil {
		return fmt.Errorf("clear custom allocations: %w", err)
	}
	for _, item := range snap.Custom {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO custom_allocations (plan_id, year, month, name, amount) VALUES (?, ?, ?, ?, ?)`,
			planID, snap.Year, snap.Month, item.Name, item.Amount)
		if err != nil {
			return fmt.Errorf("insert custom allocation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit allocation tx: %w", err)
	}
	return nil
}

func scanObligations(rows *sql.Rows) ([]core.Obligation, error) {
	var obligations []core.Obligation
	for rows.Next() {
		var o core.Obligation
		var due sql.NullString
		if err := rows.Scan(&o.ID, &o.Name, &o.Amount, &o.Paid, &o.PaidAmount, &due, &o.Year, &o.Month); err != nil {
			return nil, fmt.Errorf("scan obligation: %w", err)
		}
		if due.Valid {
			t, err := time.ParseInLocation(dueDateLayout, due.String, time.UTC)
			if err != nil {
				return nil, fmt.Errorf("parse due date %q: %w", due.String, err)
			}
			o.DueDate = &t
		}
		obligations = append(obligations, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate obligations: %w", err)
	}
	return obligations, nil
}

// periodKey flattens a period for range comparisons in SQL.
func periodKey(p core.Period) int {
	return p.Year*100 + p.Month
}
