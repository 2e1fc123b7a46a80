package windowing

import (
	"fmt"
	"os"

	"github.com/petasbytes/go-agent-context/memory"
)

// Stats summarizes the result of fitting a selection into a budget.
//
// Fields:
// - Total: estimated tokens for included turns only.
// - Budget: the input token budget used.
// - Included: number of turns kept.
// - Skipped: number of older turns dropped.
// - OverBudgetNewest: true when the newest turn alone exceeds Budget.
type Stats struct {
	Total            int
	Budget           int
	Included         int
	Skipped          int
	OverBudgetNewest bool
}

// Fit returns the longest suffix of turns (oldest→newest) whose estimated cost
// stays within budget. Order is never changed and turns are never truncated.
//
// Rules:
// - Include turns scanning newest→oldest while total ≤ budget; stop at the first that does not fit.
// - If the newest turn alone exceeds budget, return an empty window and set OverBudgetNewest.
// - If budget ≤ 0, return an empty window (OverBudgetNewest set when any turns exist).
func Fit(turns []memory.Turn, budget int, c TokenCounter) ([]memory.Turn, Stats) {
	if len(turns) == 0 {
		return nil, Stats{Budget: budget}
	}
	if budget <= 0 {
		return nil, Stats{Budget: budget, Skipped: len(turns), OverBudgetNewest: true}
	}

	total := 0
	start := len(turns)
	for i := len(turns) - 1; i >= 0; i-- {
		cost := c.Count(turns[i])
		if start == len(turns) && cost > budget {
			vlogf("reason=over_budget_newest_turn budget=%d cost=%d", budget, cost)
			return nil, Stats{Budget: budget, Skipped: len(turns), OverBudgetNewest: true}
		}
		if total+cost > budget {
			break
		}
		total += cost
		start = i
	}

	if start > 0 {
		vlogf("dropped=%d kept=%d total=%d budget=%d", start, len(turns)-start, total, budget)
	}
	return turns[start:], Stats{
		Total:    total,
		Budget:   budget,
		Included: len(turns) - start,
		Skipped:  start,
	}
}

// minimal verbose logging when AGT_VERBOSE_WINDOW_LOGS=1
var verbose = os.Getenv("AGT_VERBOSE_WINDOW_LOGS") == "1"

func vlogf(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[windowing] "+format+"\n", args...)
	}
}
