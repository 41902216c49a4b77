package autofill

import (
	"context"
)

// DefaultPlanner is the last tier: a hardcoded plan built only from clearly
// non-sensitive profile values, each with its own fixed confidence. EEO
// categories are always reported blocked, never filled. It guarantees a
// non-empty result whenever the profile carries any data at all.
type DefaultPlanner struct{}

// defaultPlanEntries pairs each safe canonical key with its confidence.
// Order matters: it is the order actions are emitted in.
var defaultPlanEntries = []struct {
	key        string
	confidence float64
}{
	{KeyFirstName, 0.98},
	{KeyLastName, 0.98},
	{KeyFullName, 0.95},
	{KeyEmail, 0.95},
	{KeyPhone, 0.9},
	{KeyCurrentLocation, 0.85},
	{KeyLinkedInURL, 0.8},
	{KeyGitHubURL, 0.75},
	{KeyWebsite, 0.7},
	{KeyCurrentCompany, 0.7},
	{KeyCurrentTitle, 0.7},
	{KeySchool, 0.65},
	{KeyDegree, 0.65},
	{KeyYearsExperience, 0.6},
}

// defaultBlocked names the categories the safe plan refuses to touch.
var defaultBlocked = []string{"EEO", "veteran_status", "disability"}

func (p *DefaultPlanner) Plan(ctx context.Context, req *PlanRequest) (*FillPlanResult, error) {
	res := newResult(TierDefault)

	for _, entry := range defaultPlanEntries {
		value := req.Values[entry.key]
		if value == "" {
			continue
		}
		action := FillAction{
			Field:      entry.key,
			Action:     ActionFill,
			Value:      value,
			Confidence: entry.confidence,
		}
		res.Actions = append(res.Actions, action)
		res.Filled = append(res.Filled, FilledEntry{
			Field:      entry.key,
			Value:      value,
			Confidence: entry.confidence,
		})
	}

	if len(res.Filled) == 0 {
		// No profile data at all: stay empty rather than reporting
		// blocked categories for a form we know nothing about.
		return res, nil
	}

	res.Blocked = append(res.Blocked, defaultBlocked...)
	return res, nil
}
