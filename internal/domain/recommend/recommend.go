// Package recommend generates ranked, deduplicated recommendations
// from risk scores and the raw input values that produced them. The
// rule table is declarative so priority and tie-break behavior stay
// auditable and independently testable.
package recommend

import (
	"fmt"
	"sort"

	"github.com/predictwell/riskcore/internal/domain/assessment"
	"github.com/predictwell/riskcore/internal/domain/types"
)

// Engine evaluates the rule table against one prediction. It holds
// read-only state and is safe for concurrent use.
type Engine struct {
	rules      []Rule
	thresholds types.ThresholdSet
}

// New creates an Engine over the v1 rule table.
func New(thresholds types.ThresholdSet) *Engine {
	return &Engine{rules: Rules, thresholds: thresholds}
}

// Recommend produces the ordered recommendation list for a prediction.
// Each rule fires at most once; its priority is the weight of the
// maximum triggering tier times the number of distinct elevated
// diseases it mitigates. Ordering is priority descending, then category
// precedence, then ID, so identical inputs always produce identical
// output. When nothing fires the preventive fallback set is returned.
func (e *Engine) Recommend(pred *types.RiskPrediction, a *assessment.Assessment) []types.Recommendation {
	var recs []types.Recommendation

	for _, rule := range e.rules {
		rec, ok := e.evaluate(rule, pred, a)
		if ok {
			recs = append(recs, rec)
		}
	}

	if len(recs) == 0 {
		out := make([]types.Recommendation, len(preventive))
		copy(out, preventive)
		return out
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Priority != recs[j].Priority {
			return recs[i].Priority > recs[j].Priority
		}
		if pi, pj := recs[i].Category.Precedence(), recs[j].Category.Precedence(); pi != pj {
			return pi < pj
		}
		return recs[i].ID < recs[j].ID
	})
	return recs
}

// evaluate checks one rule: gather the elevated diseases it mitigates,
// take the maximum tier across them, gate on MinTier and the input
// condition.
func (e *Engine) evaluate(rule Rule, pred *types.RiskPrediction, a *assessment.Assessment) (types.Recommendation, bool) {
	maxTier := types.Tier("")
	elevated := 0
	for _, d := range rule.Diseases {
		th := e.thresholds[d]
		score := pred.Score(d)
		if !th.Elevated(score) {
			continue
		}
		elevated++
		tier := th.Tier(score)
		if tier.Weight() > maxTier.Weight() || maxTier == "" {
			maxTier = tier
		}
	}
	if elevated == 0 {
		return types.Recommendation{}, false
	}
	if rule.MinTier != "" && maxTier.Weight() < rule.MinTier.Weight() {
		return types.Recommendation{}, false
	}

	text := rule.Text
	if rule.Condition != nil {
		ok, args := rule.Condition(a)
		if !ok {
			return types.Recommendation{}, false
		}
		if len(args) > 0 {
			text = fmt.Sprintf(rule.Text, args...)
		}
	}

	return types.Recommendation{
		ID:       rule.ID,
		Category: rule.Category,
		Priority: maxTier.Weight() * elevated,
		Text:     text,
	}, true
}
