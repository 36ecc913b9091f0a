package insights

import (
	"regexp"
	"sort"
	"strings"

	"scadenze/internal/core"
)

// tipBasePriority is the starting score for every tip whose priority is
// not supplied explicitly.
const tipBasePriority = 45

// priorityRule adds a bonus when the tip text matches its pattern. Rules
// are cumulative; the final priority is clamped to [1, 100].
type priorityRule struct {
	name    string
	bonus   int
	pattern *regexp.Regexp
}

// priorityRules is the keyword-bonus table. Tips about overdue or missed
// payments outrank debt guidance, which outranks savings housekeeping;
// immediacy words nudge a tip slightly further up.
var priorityRules = []priorityRule{
	{
		name:    "urgency",
		bonus:   34,
		pattern: regexp.MustCompile(`overdue|late fee|missed|over limit|minimum payment|due within 7 days|due today|negative gap|short by`),
	},
	{
		name:    "debt",
		bonus:   14,
		pattern: regexp.MustCompile(`debt|apr|interest|pay down|minimum|credit`),
	},
	{
		name:    "savings",
		bonus:   8,
		pattern: regexp.MustCompile(`save|savings|buffer|set aside|autopay|reminder`),
	},
	{
		name:    "immediacy",
		bonus:   6,
		pattern: regexp.MustCompile(`today|now|this week|within 7 days|first`),
	},
}

// InferTipPriority returns a tip's explicit priority when set, otherwise
// scores its combined title and detail against the keyword table.
func InferTipPriority(t core.Tip) int {
	if t.Priority != 0 {
		return clampPriority(t.Priority)
	}
	text := strings.ToLower(t.Title + " " + t.Detail)
	score := tipBasePriority
	for _, rule := range priorityRules {
		if rule.pattern.MatchString(text) {
			score += rule.bonus
		}
	}
	return clampPriority(score)
}

// PrioritizeTips fills in missing priorities and orders tips from most to
// least pressing. Equal priorities keep their original order. A positive
// limit truncates the result after sorting.
func PrioritizeTips(tips []core.Tip, limit int) []core.Tip {
	if len(tips) == 0 {
		return nil
	}

	ranked := make([]core.Tip, len(tips))
	copy(ranked, tips)
	for i := range ranked {
		ranked[i].Priority = InferTipPriority(ranked[i])
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Priority > ranked[j].Priority
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func clampPriority(p int) int {
	if p < 1 {
		return 1
	}
	if p > 100 {
		return 100
	}
	return p
}
