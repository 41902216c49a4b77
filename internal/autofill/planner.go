package autofill

import (
	"context"
	"fmt"
	"strings"

	"applynerd-mcp-server/internal/profile"

	"github.com/rs/zerolog"
)

// PlanRequest carries everything one planning pass needs.
type PlanRequest struct {
	Fields  []FieldDescriptor
	Index   *AliasIndex
	Values  map[string]string
	Profile *profile.Profile
	Job     *JobContext
}

// Planner is one tier of the fill-plan strategy. A tier that has nothing to
// contribute returns an empty (non-nil) result; errors are reserved for
// infrastructure failures the caller may want to log.
type Planner interface {
	Plan(ctx context.Context, req *PlanRequest) (*FillPlanResult, error)
}

// Chain runs the tiers in trust order: deterministic rules first, the
// generative fallback only when rules filled nothing, and the safe-default
// plan only when both prior tiers decided nothing at all. With zero candidate
// fields no tier runs.
type Chain struct {
	Deterministic Planner
	Fallback      Planner // nil disables the generative tier
	Default       Planner
	Log           zerolog.Logger
}

func (c *Chain) Plan(ctx context.Context, req *PlanRequest) (*FillPlanResult, error) {
	if len(req.Fields) == 0 {
		return newResult(""), nil
	}

	result, err := c.Deterministic.Plan(ctx, req)
	if err != nil {
		return nil, err
	}
	result.Tier = TierDeterministic

	if len(result.Filled) == 0 && c.Fallback != nil {
		fb, fbErr := c.Fallback.Plan(ctx, req)
		if fbErr != nil {
			c.Log.Warn().Err(fbErr).Msg("fallback planner failed; continuing")
		} else if fb != nil && !fb.Empty() {
			fb.Tier = TierFallback
			result = fb
		}
	}

	if result.Empty() && c.Default != nil {
		def, defErr := c.Default.Plan(ctx, req)
		if defErr != nil {
			return nil, defErr
		}
		if def != nil && !def.Empty() {
			def.Tier = TierDefault
			result = def
		}
	}

	return result, nil
}

func newResult(tier string) *FillPlanResult {
	return &FillPlanResult{
		Filled:      []FilledEntry{},
		Suggestions: []Suggestion{},
		Blocked:     []string{},
		Actions:     []FillAction{},
		Tier:        tier,
	}
}

// computeFieldName picks the stable identity a field is deduplicated and
// reported under: field id, name, raw id, matched label, canonical key, first
// non-empty.
func computeFieldName(fd *FieldDescriptor, matchedLabel, key string) string {
	for _, s := range []string{fd.FieldID, fd.Name, fd.RawID, matchedLabel, key} {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// resolveSelector derives an executable selector for a field, or "" when
// none can be built.
func resolveSelector(fd *FieldDescriptor) string {
	if fd.Locators.Selector != "" {
		return fd.Locators.Selector
	}
	if fd.RawID != "" {
		return "#" + cssEscape(fd.RawID)
	}
	if fd.FieldID != "" {
		return fmt.Sprintf("[data-af-field=%q]", fd.FieldID)
	}
	if fd.Name != "" {
		return fmt.Sprintf("[name=%q]", fd.Name)
	}
	return ""
}

// cssEscape quotes characters that are unsafe inside an id selector.
func cssEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteString(fmt.Sprintf("\\%c", r))
		}
	}
	return b.String()
}
