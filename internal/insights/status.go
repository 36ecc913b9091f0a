package insights

import "scadenze/internal/core"

// paidEpsilon guards the float comparison between paid amount and amount so
// a payment short by a fraction of a penny still classifies as paid.
const paidEpsilon = 0.005

// Classify derives the tri-state payment status from an obligation's
// amounts. Total and deterministic: the same inputs always agree.
func Classify(amount float64, paid bool, paidAmount float64) core.PaymentStatus {
	amount = core.FiniteAmount(amount)
	paidAmount = core.FiniteAmount(paidAmount)
	if paid || amount <= 0 || paidAmount >= amount-paidEpsilon {
		return core.StatusPaid
	}
	if paidAmount > 0 {
		return core.StatusPartial
	}
	return core.StatusUnpaid
}

// ClassifyObligation is Classify applied to an obligation snapshot.
func ClassifyObligation(o core.Obligation) core.PaymentStatus {
	return Classify(o.Amount, o.Paid, o.PaidAmount)
}

// UrgencyFor buckets an upcoming payment by how soon it is due. Paid items
// need no action and always rank "later".
func UrgencyFor(status core.PaymentStatus, daysUntilDue int) core.Urgency {
	if status == core.StatusPaid {
		return core.UrgencyLater
	}
	switch {
	case daysUntilDue < 0:
		return core.UrgencyOverdue
	case daysUntilDue == 0:
		return core.UrgencyToday
	case daysUntilDue <= 7:
		return core.UrgencySoon
	default:
		return core.UrgencyLater
	}
}
