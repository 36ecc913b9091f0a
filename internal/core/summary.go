package core

import "time"

// UpcomingPayment is a derived, per-invocation view of an obligation (or a
// synthetic debt/allocation item) scheduled for payment. Never persisted.
type UpcomingPayment struct {
	ID           string        `json:"id"`
	Kind         PaymentKind   `json:"kind"`
	Name         string        `json:"name"`
	Amount       float64       `json:"amount"`
	PaidAmount   float64       `json:"paidAmount"`
	Status       PaymentStatus `json:"status"`
	DueDate      time.Time     `json:"dueDate"`
	DaysUntilDue int           `json:"daysUntilDue"`
	Urgency      Urgency       `json:"urgency"`

	// Debt carries kind-specific detail; nil unless Kind == KindDebt.
	Debt *DebtDetail `json:"debt,omitempty"`
}

// DebtDetail holds the fields only debt-sourced payments carry.
type DebtDetail struct {
	InterestRate float64 `json:"interestRate"`
}

// RecapSummary aggregates how one past period's obligations were paid.
// An obligation can count in the missed-due bucket as well as the partial
// or unpaid bucket.
type RecapSummary struct {
	Label           string  `json:"label"`
	TotalCount      int     `json:"totalCount"`
	TotalAmount     float64 `json:"totalAmount"`
	PaidCount       int     `json:"paidCount"`
	PaidAmount      float64 `json:"paidAmount"`
	PartialCount    int     `json:"partialCount"`
	PartialAmount   float64 `json:"partialAmount"` // amount still owed across partial items
	UnpaidCount     int     `json:"unpaidCount"`
	UnpaidAmount    float64 `json:"unpaidAmount"`
	MissedDueCount  int     `json:"missedDueCount"`
	MissedDueAmount float64 `json:"missedDueAmount"`
}

// ForecastPoint is a projected month supplied by the store: total expected
// income against total billed obligations.
type ForecastPoint struct {
	Year        int
	Month       int
	IncomeTotal float64
	BillsTotal  float64
}

// Net returns projected income minus projected bills.
func (f ForecastPoint) Net() float64 {
	return FiniteAmount(f.IncomeTotal) - FiniteAmount(f.BillsTotal)
}

// Period returns the calendar month the forecast refers to.
func (f ForecastPoint) Period() Period {
	return Period{Year: f.Year, Month: f.Month}
}

// Tip is a short heuristic suggestion. Priority 1-100; zero means "infer
// from the tip text".
type Tip struct {
	Title    string `json:"title"`
	Detail   string `json:"detail"`
	Priority int    `json:"priority"`
}
