package core

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	StatusPaid    PaymentStatus = "paid"
	StatusPartial PaymentStatus = "partial"
	StatusUnpaid  PaymentStatus = "unpaid"
)

const (
	UrgencyOverdue Urgency = "overdue"
	UrgencyToday   Urgency = "today"
	UrgencySoon    Urgency = "soon"
	UrgencyLater   Urgency = "later"
)

const (
	KindExpense    PaymentKind = "expense"
	KindDebt       PaymentKind = "debt"
	KindAllocation PaymentKind = "allocation"
)

type (
	// PaymentStatus is derived from an Obligation's amounts, never stored.
	PaymentStatus string

	// Urgency classifies how soon an unpaid obligation is due.
	Urgency string

	// PaymentKind tags the source of an upcoming payment.
	PaymentKind string

	// Period identifies one calendar month of obligations.
	Period struct {
		Year  int
		Month int // 1-12
	}

	// Obligation is a single payable item for a period. Records are owned by
	// the store; the insights engine only ever sees read-only snapshots.
	Obligation struct {
		ID         string
		Name       string
		Amount     float64
		Paid       bool
		PaidAmount float64
		DueDate    *time.Time // explicit due date, optional
		Year       int
		Month      int // 1-12
	}

	// BudgetPlan holds the per-plan settings the insights pipeline needs.
	BudgetPlan struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		PayDate   int       `json:"payDate"` // day of month income arrives, 1-31
		CreatedAt time.Time `json:"createdAt"`
	}

	// Debt is an open debt line with a monthly payment amount.
	Debt struct {
		ID             string
		Name           string
		Amount         float64 // monthly payment
		CurrentBalance float64
		InterestRate   float64 // annual percentage, 0 if unknown
		Paid           bool
	}

	// AllocationItem is one named slice of the monthly income sacrifice.
	AllocationItem struct {
		Name   string
		Amount float64
	}

	// AllocationSnapshot aggregates a month's allowance, savings, emergency
	// and investment contributions plus any custom items.
	AllocationSnapshot struct {
		Year       int
		Month      int
		Allowance  float64
		Savings    float64
		Emergency  float64
		Investment float64
		Custom     []AllocationItem
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidMonth  = errors.New("invalid month")
	ErrEmptyName     = errors.New("empty name")
	ErrPlanNotFound  = errors.New("budget plan not found")
)

// AddMonths returns the period n calendar months away, handling year rollover.
func (p Period) AddMonths(n int) Period {
	t := time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	return Period{Year: t.Year(), Month: int(t.Month())}
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: int(t.Month())}
}

// Before reports whether p is strictly earlier than other.
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}

// Label returns the human-readable "<MonthName> <Year>" form.
func (p Period) Label() string {
	return time.Month(p.Month).String() + " " + strconv.Itoa(p.Year)
}

func (o Obligation) Validate() error {
	if strings.TrimSpace(o.Name) == "" {
		return ErrEmptyName
	}
	if math.IsNaN(o.Amount) || math.IsInf(o.Amount, 0) || o.Amount < 0 {
		return ErrInvalidAmount
	}
	if o.Month < 1 || o.Month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Period returns the calendar month the obligation belongs to.
func (o Obligation) Period() Period {
	return Period{Year: o.Year, Month: o.Month}
}

func (s AllocationSnapshot) Total() float64 {
	total := FiniteAmount(s.Allowance) + FiniteAmount(s.Savings) +
		FiniteAmount(s.Emergency) + FiniteAmount(s.Investment)
	for _, item := range s.Custom {
		total += FiniteAmount(item.Amount)
	}
	return total
}

// DisplayName returns the label for the aggregated allocation payment: the
// single part's own name when exactly one part exists, "Income sacrifice"
// otherwise.
func (s AllocationSnapshot) DisplayName() string {
	parts := s.parts()
	if len(parts) == 1 {
		return parts[0]
	}
	return "Income sacrifice"
}

func (s AllocationSnapshot) parts() []string {
	var names []string
	if FiniteAmount(s.Allowance) > 0 {
		names = append(names, "Monthly allowance")
	}
	if FiniteAmount(s.Savings) > 0 {
		names = append(names, "Savings contribution")
	}
	if FiniteAmount(s.Emergency) > 0 {
		names = append(names, "Emergency fund")
	}
	if FiniteAmount(s.Investment) > 0 {
		names = append(names, "Investments")
	}
	for _, item := range s.Custom {
		name := strings.TrimSpace(item.Name)
		if FiniteAmount(item.Amount) > 0 && name != "" {
			names = append(names, name)
		}
	}
	return names
}
