package autofill

import (
	"context"
	"fmt"
)

// deterministicConfidence is the fixed trust level of rule-matched fills.
const deterministicConfidence = 0.75

// DeterministicPlanner is the rule tier: alias-match each field, look the
// canonical key up in the resolved value map, and emit one action per unique
// field name.
type DeterministicPlanner struct {
	Policy Policy
}

func (p *DeterministicPlanner) Plan(ctx context.Context, req *PlanRequest) (*FillPlanResult, error) {
	res := newResult(TierDeterministic)
	skip := p.Policy.SkipSet()
	seen := make(map[string]bool)

	for i := range req.Fields {
		fd := &req.Fields[i]

		key, matchedLabel, ok := req.Index.MatchField(fd)
		if ok && skip[Normalize(key)] {
			// Skip-set keys never appear in any output list.
			continue
		}
		if !ok {
			continue
		}

		name := computeFieldName(fd, matchedLabel, key)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		value := req.Values[key]
		if value == "" {
			reason := fmt.Sprintf("No data available for %s", key)
			if fd.LikelyEssay {
				reason = fmt.Sprintf("Free-form answer required for %s; write it yourself", key)
			}
			res.Suggestions = append(res.Suggestions, Suggestion{
				Field:  name,
				Reason: reason,
			})
			continue
		}

		selector := resolveSelector(fd)
		if selector == "" {
			res.Blocked = append(res.Blocked, name)
			continue
		}

		verb := ActionFill
		if fd.ControlType == "select" {
			verb = ActionSelect
		}
		action := FillAction{
			Field:      name,
			FieldID:    fd.FieldID,
			Label:      matchedLabel,
			Selector:   selector,
			Action:     verb,
			Value:      value,
			Confidence: deterministicConfidence,
		}
		res.Actions = append(res.Actions, action)
		res.Filled = append(res.Filled, FilledEntry{
			Field:      name,
			Value:      value,
			Confidence: deterministicConfidence,
		})
	}

	return res, nil
}
