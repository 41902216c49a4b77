package mcp

import (
	"context"
	"fmt"

	"applynerd-mcp-server/internal/autofill"
	"applynerd-mcp-server/internal/browser"
	"applynerd-mcp-server/internal/config"
	"applynerd-mcp-server/internal/profile"
	"applynerd-mcp-server/internal/trace"
)

// AnalyzePageTool discovers fillable fields without building a plan.
type AnalyzePageTool struct {
	registry *browser.Registry
	service  *autofill.Service
}

func (t *AnalyzePageTool) Name() string { return "analyze-page" }
func (t *AnalyzePageTool) Description() string {
	return `Scan the application page for fillable fields across all frames.

WHAT IT DOES:
- Runs the field extractor in the main frame and every reachable iframe
  (Greenhouse/Lever style embeds included)
- Returns one descriptor per control: prompts, labels, constraints,
  control type, and a stable selector

WHEN TO USE:
- Inspecting an unfamiliar form before filling
- Debugging why a field was or was not matched
- Feeding descriptors back into autofill via the fields argument

Returns: {session_id, count, fields: [descriptor...]}`
}
func (t *AnalyzePageTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"session_id": map[string]interface{}{
				"type":        "string",
				"description": "Live session whose page to scan",
			},
		},
		"required": []string{"session_id"},
	}
}
func (t *AnalyzePageTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	sessionID := getStringArg(args, "session_id")
	if sessionID == "" {
		return nil, fmt.Errorf("session_id is required")
	}

	var fields []autofill.FieldDescriptor
	err := t.registry.WithPage(ctx, sessionID, func(p browser.PageHandle) error {
		var scanErr error
		fields, scanErr = t.service.Discover.Discover(ctx, p)
		return scanErr
	})
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"session_id": sessionID,
		"count":      len(fields),
		"fields":     fields,
	}, nil
}

// AutofillTool runs the full pipeline: discover, match, plan, and optionally
// execute against the live page.
type AutofillTool struct {
	registry *browser.Registry
	service  *autofill.Service
	recorder *trace.Recorder
	cfg      config.Config
}

func (t *AutofillTool) Name() string { return "autofill" }
func (t *AutofillTool) Description() string {
	return `Fill a job application form from a stored profile.

PIPELINE:
1. Discover fields across all frames (or use supplied descriptors)
2. Match labels to canonical profile keys via the alias dictionary
3. Build a fill plan: rule tier first, generative tier only when the
   rules fill nothing, safe defaults as the last resort
4. With execute=true, apply the plan to the page one action at a time;
   a failed action never aborts the rest

SAFETY:
- Demographic and self-identification questions are never answered by
  the generative tier, and only by rule when explicitly configured
- Items needing human judgment land in blocked, not in the form

Returns: {session_id, tier, plan: {filled, suggestions, blocked, actions}, field_count}`
}
func (t *AutofillTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"session_id": map[string]interface{}{
				"type":        "string",
				"description": "Live session whose page to fill",
			},
			"profile_id": map[string]interface{}{
				"type":        "string",
				"description": "Stored profile to fill from",
			},
			"execute": map[string]interface{}{
				"type":        "boolean",
				"description": "Apply the plan to the page (default: plan only)",
			},
			"allow_fallback": map[string]interface{}{
				"type":        "boolean",
				"description": "Permit the generative tier for this run (default: server config)",
			},
			"job": map[string]interface{}{
				"type":        "object",
				"description": "Optional job context {company, title, url, description} for generative answers",
			},
			"fields": map[string]interface{}{
				"type":        "array",
				"description": "Optional field descriptors (from analyze-page) that replace live discovery",
			},
		},
		"required": []string{"session_id", "profile_id"},
	}
}
func (t *AutofillTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	sessionID := getStringArg(args, "session_id")
	profileID := getStringArg(args, "profile_id")
	if sessionID == "" || profileID == "" {
		return nil, fmt.Errorf("session_id and profile_id are required")
	}
	execute := getBoolArg(args, "execute", false)
	allowFallback := getBoolArg(args, "allow_fallback", t.cfg.Planner.AllowFallback)

	if t.recorder != nil {
		if err := t.recorder.BeginRun(sessionID); err != nil {
			return nil, fmt.Errorf("start trace: %w", err)
		}
	}

	var result *autofill.RunResult
	err := t.registry.WithPage(ctx, sessionID, func(p browser.PageHandle) error {
		opts := autofill.RunOptions{
			SessionID:     sessionID,
			ProfileID:     profileID,
			Page:          p,
			Fields:        fieldsArg(args),
			Job:           jobContextArg(args),
			AllowFallback: allowFallback,
		}
		if execute {
			opts.Actuator = p.Actuator()
		}
		var runErr error
		result, runErr = t.service.Run(ctx, opts)
		return runErr
	})

	if t.recorder != nil {
		if err != nil {
			t.recorder.EndRun(sessionID, map[string]interface{}{"error": err.Error()})
		} else {
			t.recorder.Record(trace.EventFieldsFound, sessionID, map[string]int{"count": len(result.Fields)})
			t.recorder.Record(trace.EventPlanBuilt, sessionID, map[string]interface{}{
				"tier":    result.Plan.Tier,
				"actions": len(result.Plan.Actions),
			})
			t.recorder.EndRun(sessionID, map[string]interface{}{
				"filled":  len(result.Plan.Filled),
				"blocked": len(result.Plan.Blocked),
			})
		}
	}
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"session_id":  sessionID,
		"tier":        result.Plan.Tier,
		"plan":        result.Plan,
		"field_count": len(result.Fields),
	}, nil
}

// ListProfilesTool lists stored applicant profiles.
type ListProfilesTool struct {
	profiles *profile.FileStore
}

func (t *ListProfilesTool) Name() string { return "list-profiles" }
func (t *ListProfilesTool) Description() string {
	return `List the applicant profiles available for autofill.

Use the returned ids as the profile_id argument to autofill.

Returns: {profiles: [id...]}`
}
func (t *ListProfilesTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}
func (t *ListProfilesTool) Execute(_ context.Context, _ map[string]interface{}) (interface{}, error) {
	if t.profiles == nil {
		return map[string]interface{}{"profiles": []string{}}, nil
	}
	return map[string]interface{}{"profiles": t.profiles.ProfileIDs()}, nil
}
