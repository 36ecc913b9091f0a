package insights

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"scadenze/internal/core"
)

// Thresholds for the history-driven heuristics.
const (
	recurringMissMinCount   = 2   // times one bill must be missed
	recurringMissMinPeriods = 2   // distinct periods needed in history
	clusteringMinKnownDays  = 6   // bills with a known due day
	clusteringMinRatio      = 0.6 // share due before payday
	partialHabitMinNotPaid  = 4   // non-paid bills needed in history
	partialHabitMinRatio    = 0.5 // share of them paid partially
	catchUpMinHeadroom      = 50  // currency units a month must clear by
)

// TipInput gathers everything the generator looks at. History obligations
// are tagged with their own year/month; forecasts may include the current
// period, which is excluded from candidate selection.
type TipInput struct {
	Recap     core.RecapSummary
	Current   []core.Obligation
	Ctx       PeriodContext
	Now       time.Time
	Forecasts []core.ForecastPoint
	History   []core.Obligation
}

// GenerateTips synthesizes suggestions from the previous period's recap,
// the current obligations and the plan's history and forecasts. When the
// recap shows no trouble (nothing missed, nothing unpaid or partial) it
// returns nothing at all. Priorities are left at zero; PrioritizeTips
// infers and orders them.
func GenerateTips(in TipInput) []core.Tip {
	var tips []core.Tip

	needsHelp := in.Recap.MissedDueCount > 0 || in.Recap.UnpaidCount+in.Recap.PartialCount > 0
	if !needsHelp {
		return tips
	}

	tips = append(tips, historyTips(in)...)

	overdueRemaining := currentOverdueRemaining(in.Current, in.Ctx, in.Now)
	if overdueRemaining > 0 {
		tips = append(tips, core.Tip{
			Title: "Prioritize overdue bills first",
			Detail: "Start with anything overdue. Even partial payments help reduce late fees. " +
				"Remaining overdue: " + core.FormatGBP(overdueRemaining) + ".",
		})
	}

	tips = append(tips,
		core.Tip{
			Title:  "Pay on payday (or the day after)",
			Detail: "If possible, schedule bill payments right after your pay date so you don't accidentally spend it elsewhere.",
		},
		core.Tip{
			Title:  "Add reminders + autopay for the basics",
			Detail: "Turn on reminders 3 days before due dates (and on the day). Use autopay for rent/mortgage/utilities if you can.",
		},
		core.Tip{
			Title:  "Build a tiny 'bills buffer'",
			Detail: "Aim for a small buffer (even £25-£50) so one unexpected spend doesn't cause a missed bill.",
		},
	)

	tips = append(tips, forecastTips(in, overdueRemaining)...)

	return tips
}

// missStat tracks how often one bill was missed and what is still owed on it.
type missStat struct {
	count          int
	totalRemaining float64
}

// historyTips looks for recurring patterns across the plan's recent months.
func historyTips(in TipInput) []core.Tip {
	if len(in.History) == 0 {
		return nil
	}

	periods := make(map[core.Period]struct{})
	missedByName := make(map[string]missStat)
	var partialCount, notPaidCount int
	var dueBeforePayDate, dueWithKnownDay int

	for _, o := range in.History {
		periods[o.Period()] = struct{}{}

		amount := core.FiniteAmount(o.Amount)
		if !(amount > 0) {
			continue
		}

		paidAmount := core.FiniteAmount(o.PaidAmount)
		status := ClassifyObligation(o)
		if status != core.StatusPaid {
			notPaidCount++
		}
		if status == core.StatusPartial {
			partialCount++
		}

		// Each history row resolves against its own period.
		ownCtx := PeriodContext{Year: o.Year, Month: o.Month, PayDate: in.Ctx.PayDate}
		due, ok := ResolveDueDate(o, ownCtx)
		if ok {
			dueWithKnownDay++
			if due.Day() < in.Ctx.PayDate {
				dueBeforePayDate++
			}
		}

		if status == core.StatusPaid {
			continue
		}
		dueByEndOfMonth := !ok || !due.After(endOfMonth(o.Year, o.Month))
		if !dueByEndOfMonth {
			continue
		}

		name := strings.TrimSpace(o.Name)
		if name == "" {
			name = "(Unnamed bill)"
		}
		stat := missedByName[name]
		stat.count++
		remaining := amount - paidAmount
		if remaining > 0 {
			stat.totalRemaining += remaining
		}
		missedByName[name] = stat
	}

	var tips []core.Tip

	if name, stat, ok := topMissed(missedByName); ok &&
		stat.count >= recurringMissMinCount && len(periods) >= recurringMissMinPeriods {
		tips = append(tips, core.Tip{
			Title: fmt.Sprintf("You often miss %s", name),
			Detail: fmt.Sprintf("%s was missed %d times in your recent history. "+
				"Consider autopay (if available) or a recurring reminder 3 days before the due date.", name, stat.count),
		})
	}

	if dueWithKnownDay >= clusteringMinKnownDays {
		if ratio := float64(dueBeforePayDate) / float64(dueWithKnownDay); ratio >= clusteringMinRatio {
			tips = append(tips, core.Tip{
				Title: "Many bills are due before payday",
				Detail: "A lot of your bills fall before your pay date. If possible, move due dates to just after payday " +
					"or set a 'bills pot' transfer on payday to cover them.",
			})
		}
	}

	if notPaidCount >= partialHabitMinNotPaid {
		if ratio := float64(partialCount) / float64(notPaidCount); ratio >= partialHabitMinRatio {
			tips = append(tips, core.Tip{
				Title: "You often pay partially",
				Detail: "If partial payments are common, try splitting large bills into 2 payments (payday + mid-month) " +
					"so they don't pile up near the due date.",
			})
		}
	}

	return tips
}

// topMissed picks the bill missed most often, breaking ties by the larger
// outstanding amount and then by name so the choice is deterministic.
func topMissed(missed map[string]missStat) (string, missStat, bool) {
	names := make([]string, 0, len(missed))
	for name := range missed {
		names = append(names, name)
	}
	if len(names) == 0 {
		return "", missStat{}, false
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := missed[names[i]], missed[names[j]]
		if a.count != b.count {
			return a.count > b.count
		}
		if a.totalRemaining != b.totalRemaining {
			return a.totalRemaining > b.totalRemaining
		}
		return names[i] < names[j]
	})
	return names[0], missed[names[0]], true
}

// currentOverdueRemaining sums what is still owed on current obligations
// whose due date has already passed.
func currentOverdueRemaining(current []core.Obligation, ctx PeriodContext, now time.Time) float64 {
	var total float64
	for _, o := range current {
		amount := core.FiniteAmount(o.Amount)
		if !(amount > 0) {
			continue
		}
		if ClassifyObligation(o) == core.StatusPaid {
			continue
		}
		due, ok := ResolveDueDate(o, ctx)
		if !ok {
			continue
		}
		if DaysUntil(due, now) < 0 {
			if remaining := amount - core.FiniteAmount(o.PaidAmount); remaining > 0 {
				total += remaining
			}
		}
	}
	return total
}

// forecastTips compares projected months: a clearly stronger month becomes
// a catch-up suggestion, a negative month a caution.
func forecastTips(in TipInput, overdueRemaining float64) []core.Tip {
	if len(in.Forecasts) == 0 {
		return nil
	}

	current := in.Ctx.Period()
	var currentNet float64
	for _, f := range in.Forecasts {
		if f.Period() == current {
			currentNet = f.Net()
			break
		}
	}

	var best, tight *core.ForecastPoint
	for i := range in.Forecasts {
		f := in.Forecasts[i]
		if f.Period() == current {
			continue
		}
		if best == nil || f.Net() > best.Net() {
			best = &in.Forecasts[i]
		}
		if tight == nil || f.Net() < tight.Net() {
			tight = &in.Forecasts[i]
		}
	}

	var tips []core.Tip

	if best != nil && best.Net() > currentNet+catchUpMinHeadroom &&
		(overdueRemaining > 0 || in.Recap.MissedDueAmount > 0) {
		headroom := best.Net() - currentNet
		if headroom < 0 {
			headroom = 0
		}
		outstanding := overdueRemaining
		if outstanding == 0 {
			outstanding = in.Recap.MissedDueAmount
		}
		suggested := outstanding
		if headroom < suggested {
			suggested = headroom
		}
		if suggested < 0 {
			suggested = 0
		}
		tips = append(tips, core.Tip{
			Title: "Use higher-income months to catch up",
			Detail: fmt.Sprintf("%s looks stronger after bills (about %s more than this month). "+
				"If you can, consider paying an extra ~%s toward overdue/missed bills then.",
				best.Period().Label(), core.FormatGBP(headroom), core.FormatGBP(suggested)),
		})
	}

	if tight != nil && tight.Net() < 0 {
		tips = append(tips, core.Tip{
			Title: "Watch for tight months ahead",
			Detail: fmt.Sprintf("%s projects a negative gap after bills. "+
				"Consider pre-paying 1-2 smaller bills in the prior month or trimming discretionary spend early.",
				tight.Period().Label()),
		})
	}

	return tips
}
