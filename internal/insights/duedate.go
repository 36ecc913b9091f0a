// Package insights turns raw obligation snapshots into a recap of the
// previous period, a ranked list of upcoming payments and a prioritized set
// of suggestions. Every function is a pure transformation of its inputs:
// callers inject "now", nothing here reads a clock, performs I/O or keeps
// state between invocations.
package insights

import (
	"time"

	"scadenze/internal/core"
)

// PeriodContext carries the calendar month under consideration and the
// plan's pay date, used as the due-date fallback.
type PeriodContext struct {
	Year    int
	Month   int // 1-12
	PayDate int // day of month, 1-31
}

// Period returns the context's calendar month.
func (ctx PeriodContext) Period() core.Period {
	return core.Period{Year: ctx.Year, Month: ctx.Month}
}

// ResolveDueDate computes an obligation's effective due date. An explicit
// due date wins; otherwise the pay date is clamped into the period's
// calendar and used as the fallback. The second return is false when no
// date can be resolved (month outside 1-12 or pay date below 1); callers
// each apply their own policy for that case.
func ResolveDueDate(o core.Obligation, ctx PeriodContext) (time.Time, bool) {
	if o.DueDate != nil {
		return dateOnly(*o.DueDate), true
	}
	if ctx.Month < 1 || ctx.Month > 12 {
		return time.Time{}, false
	}
	if ctx.PayDate < 1 {
		return time.Time{}, false
	}
	day := ctx.PayDate
	if last := daysInMonth(ctx.Year, ctx.Month); day > last {
		day = last
	}
	return time.Date(ctx.Year, time.Month(ctx.Month), day, 0, 0, 0, 0, time.UTC), true
}

// DaysUntil returns the whole-day distance from now's calendar day to due.
// Negative when due is in the past.
func DaysUntil(due, now time.Time) int {
	d := dateOnly(due).Sub(dateOnly(now))
	return int(d / (24 * time.Hour))
}

// PayDateIn returns the pay date clamped into the given period's calendar.
func PayDateIn(p core.Period, payDate int) time.Time {
	day := payDate
	if day < 1 {
		day = 1
	}
	if last := daysInMonth(p.Year, p.Month); day > last {
		day = last
	}
	return time.Date(p.Year, time.Month(p.Month), day, 0, 0, 0, 0, time.UTC)
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysInMonth(year, month int) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func endOfMonth(year, month int) time.Time {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC)
}
