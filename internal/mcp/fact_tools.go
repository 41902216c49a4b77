package mcp

import (
	"context"
	"fmt"

	"applynerd-mcp-server/internal/facts"
)

// QueryFactsTool runs a Mangle query over the recorded fill audit trail.
type QueryFactsTool struct {
	engine *facts.Engine
}

func (t *QueryFactsTool) Name() string { return "query-facts" }
func (t *QueryFactsTool) Description() string {
	return `Query the fill audit trail with a Mangle goal.

Every run records what happened as facts:
- field_found(Session, Ref, Prompt, Control, Index)
- field_matched(Session, Ref, Key)
- value_resolved(Session, Key, Value)
- plan_tier(Session, Tier, Actions)
- action_applied(Session, Ref, Verb, Value)
- action_failed(Session, Ref, Verb, Error)
- action_skipped(Session, Ref, Reason)
- session_status(Session, Status, Url)

EXAMPLES:
- action_failed(Session, Ref, Verb, Error).
- field_matched("apply-1", Ref, Key).
- plan_tier(Session, "fallback", Actions).

Returns: {query, count, results: [{bindings}]}`
}
func (t *QueryFactsTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Mangle goal, e.g. action_failed(Session, Ref, Verb, Error).",
			},
		},
		"required": []string{"query"},
	}
}
func (t *QueryFactsTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	query := getStringArg(args, "query")
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	results, err := t.engine.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"query":   query,
		"count":   len(results),
		"results": results,
	}, nil
}

// DiagnoseRunTool evaluates the built-in derived predicates over a session's
// audit trail and summarizes what went wrong.
type DiagnoseRunTool struct {
	engine *facts.Engine
}

func (t *DiagnoseRunTool) Name() string { return "diagnose-run" }
func (t *DiagnoseRunTool) Description() string {
	return `Diagnose a fill run from its audit trail.

WHAT IT CHECKS:
- degraded_session: sessions with at least one failed action
- nondeterministic_run: runs answered by the generative or default tier
- raw failure facts for the session, with the error text

WHEN TO USE:
- After an autofill run with blocked or missing fields
- Before re-running with allow_fallback or a fixed profile

Returns: {session_id, degraded, nondeterministic, failures: [...]}`
}
func (t *DiagnoseRunTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"session_id": map[string]interface{}{
				"type":        "string",
				"description": "Session whose run to diagnose",
			},
		},
		"required": []string{"session_id"},
	}
}
func (t *DiagnoseRunTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	sessionID := getStringArg(args, "session_id")
	if sessionID == "" {
		return nil, fmt.Errorf("session_id is required")
	}

	degraded := false
	if derived, err := t.engine.Evaluate(ctx, "degraded_session"); err == nil {
		for _, f := range derived {
			if len(f.Args) > 0 && fmt.Sprintf("%v", f.Args[0]) == sessionID {
				degraded = true
				break
			}
		}
	}

	nondeterministic := false
	if derived, err := t.engine.Evaluate(ctx, "nondeterministic_run"); err == nil {
		for _, f := range derived {
			if len(f.Args) > 0 && fmt.Sprintf("%v", f.Args[0]) == sessionID {
				nondeterministic = true
				break
			}
		}
	}

	var failures []map[string]interface{}
	for _, f := range t.engine.FactsByPredicate(facts.PredActionFailed) {
		if len(f.Args) < 4 || fmt.Sprintf("%v", f.Args[0]) != sessionID {
			continue
		}
		failures = append(failures, map[string]interface{}{
			"field": f.Args[1],
			"verb":  f.Args[2],
			"error": f.Args[3],
		})
	}

	return map[string]interface{}{
		"session_id":       sessionID,
		"degraded":         degraded,
		"nondeterministic": nondeterministic,
		"failures":         failures,
	}, nil
}
