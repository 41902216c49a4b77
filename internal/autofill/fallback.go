package autofill

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Generator is the external generative model capability. Implementations
// return the raw response text; callers must defensively parse it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// FallbackPlanner is the generative tier: it serializes the candidate fields
// and profile values into a structured prompt and parses a fill_plan array
// from the model's response. Model failures and garbled output contribute
// nothing; the chain then moves on to the safe-default tier.
type FallbackPlanner struct {
	Generator Generator
	Policy    Policy
	// MaxFields caps how many descriptors go into one request.
	MaxFields int
	// Timeout bounds one generative call; zero means no bound beyond the
	// caller's context.
	Timeout time.Duration
}

func (p *FallbackPlanner) Plan(ctx context.Context, req *PlanRequest) (*FillPlanResult, error) {
	if p.Generator == nil || len(req.Fields) == 0 {
		return newResult(TierFallback), nil
	}

	prompt, err := p.buildPrompt(req)
	if err != nil {
		return nil, fmt.Errorf("build fallback prompt: %w", err)
	}

	genCtx := ctx
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	raw, err := p.Generator.Generate(genCtx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate fill plan: %w", err)
	}

	items := extractFillPlan(raw)
	actions := DecodeFillActions(items)
	if len(actions) == 0 {
		return newResult(TierFallback), nil
	}

	return p.assemble(actions, req.Index), nil
}

func (p *FallbackPlanner) buildPrompt(req *PlanRequest) (string, error) {
	limit := p.MaxFields
	if limit <= 0 {
		limit = 40
	}
	fields := req.Fields
	if len(fields) > limit {
		fields = fields[:limit]
	}

	type promptField struct {
		FieldID     string `json:"field_id"`
		Label       string `json:"label"`
		Question    string `json:"question"`
		ControlType string `json:"control_type"`
		Selector    string `json:"selector"`
		Required    bool   `json:"required"`
	}
	pf := make([]promptField, 0, len(fields))
	for i := range fields {
		fd := &fields[i]
		pf = append(pf, promptField{
			FieldID:     fd.FieldID,
			Label:       fd.Label,
			Question:    fd.QuestionText,
			ControlType: fd.ControlType,
			Selector:    resolveSelector(fd),
			Required:    fd.Required,
		})
	}

	payload := map[string]interface{}{
		"fields":  pf,
		"profile": req.Values,
	}
	if req.Job != nil {
		payload["job"] = req.Job
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("You are filling a job application form for a candidate.\n")
	b.WriteString("Given the form fields and the candidate profile below, respond with JSON only:\n")
	b.WriteString(`{"fill_plan": [{"field": "...", "field_id": "...", "label": "...", "selector": "...", "action": "fill|select|check|uncheck|skip", "value": "...", "confidence": 0.0, "requires_user_review": false}]}` + "\n")
	b.WriteString("Rules: never invent answers for EEO, veteran, disability, or legal attestation questions; ")
	b.WriteString("set requires_user_review for anything uncertain; use action \"skip\" for fields you cannot answer.\n\n")
	b.Write(body)
	return b.String(), nil
}

// extractFillPlan tolerates the model wrapping its JSON in code fences or
// prose: it looks for fill_plan at the top level first, then inside the first
// JSON object found in the text.
func extractFillPlan(raw string) gjson.Result {
	if items := gjson.Get(raw, "fill_plan"); items.Exists() {
		return items
	}
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	if items := gjson.Get(trimmed, "fill_plan"); items.Exists() {
		return items
	}
	if start := strings.Index(trimmed, "{"); start >= 0 {
		if end := strings.LastIndex(trimmed, "}"); end > start {
			return gjson.Get(trimmed[start:end+1], "fill_plan")
		}
	}
	return gjson.Result{}
}

// assemble applies the skip rules to model output and rebuilds the plan
// lists from what survives.
func (p *FallbackPlanner) assemble(actions []FillAction, index *AliasIndex) *FillPlanResult {
	res := newResult(TierFallback)
	skip := p.Policy.SkipSet()

	for _, a := range actions {
		if a.Action == ActionSkip {
			continue
		}
		if p.matchesSkipSet(&a, index, skip) {
			continue
		}
		name := a.Field
		if name == "" {
			name = a.FieldID
		}
		if name == "" {
			name = a.Selector
		}
		if a.RequiresUserReview {
			res.Blocked = append(res.Blocked, name)
			continue
		}
		if a.Value == "" {
			res.Suggestions = append(res.Suggestions, Suggestion{
				Field:  name,
				Reason: "Model proposed no value",
			})
			continue
		}
		res.Actions = append(res.Actions, a)
		res.Filled = append(res.Filled, FilledEntry{
			Field:      name,
			Value:      a.Value,
			Confidence: a.Confidence,
		})
	}

	return res
}

// matchesSkipSet re-canonicalizes a plan item's own identity texts; the model
// is not trusted to honor the skip rules.
func (p *FallbackPlanner) matchesSkipSet(a *FillAction, index *AliasIndex, skip map[string]bool) bool {
	if index == nil || len(skip) == 0 {
		return false
	}
	for _, text := range []string{a.Label, a.Field, a.FieldID, a.Selector} {
		if text == "" {
			continue
		}
		if key, ok := index.Match(text); ok && skip[Normalize(key)] {
			return true
		}
	}
	return false
}
