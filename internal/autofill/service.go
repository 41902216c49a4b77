package autofill

import (
	"context"
	"fmt"
	"strconv"

	"applynerd-mcp-server/internal/facts"
	"applynerd-mcp-server/internal/profile"

	"github.com/rs/zerolog"
)

// Application session statuses. The autofill engine only ever performs the
// transition to FILLED; the rest belong to the outer application layer.
const (
	StatusOpen      = "OPEN"
	StatusAnalyzed  = "ANALYZED"
	StatusFilled    = "FILLED"
	StatusSubmitted = "SUBMITTED"
	StatusAbandoned = "ABANDONED"
	StatusError     = "ERROR"
)

// StatusStore mutates the externally-owned application session record.
type StatusStore interface {
	SetStatus(ctx context.Context, sessionID, status string) error
}

// Service orchestrates one fill run: discovery, canonicalization, value
// resolution, the planner chain, and optional execution, with the audit
// trail emitted along the way.
type Service struct {
	Profiles profile.Store
	Aliases  profile.AliasOverrideStore
	Policy   Policy
	Discover *Discoverer

	Fallback Planner // generative tier; nil disables it globally
	Status   StatusStore
	Facts    *facts.Engine
	Log      zerolog.Logger
}

// RunOptions selects what a single fill run operates on.
type RunOptions struct {
	SessionID string
	ProfileID string
	// Page provides discovery; ignored when Fields is supplied.
	Page Page
	// Fields, when non-nil, is an externally supplied descriptor list that
	// replaces discovery entirely.
	Fields []FieldDescriptor
	// Actuator, when set, causes the plan to be executed against the page.
	Actuator Actuator
	Job      *JobContext
	// AllowFallback gates the generative tier for this run.
	AllowFallback bool
}

// RunResult is the exposed outcome: the final plan plus the descriptors it
// was built from.
type RunResult struct {
	Plan   *FillPlanResult   `json:"plan"`
	Fields []FieldDescriptor `json:"fields"`
}

// Run executes the full autofill pipeline for one session.
func (s *Service) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	prof, err := s.Profiles.GetProfile(ctx, opts.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	fields := opts.Fields
	if fields == nil {
		if opts.Page == nil {
			return nil, fmt.Errorf("no live page available for session %s; start it first", opts.SessionID)
		}
		fields, err = s.Discover.Discover(ctx, opts.Page)
		if err != nil {
			return nil, fmt.Errorf("field discovery: %w", err)
		}
	}
	s.emitDiscovered(ctx, opts.SessionID, fields)

	var overrides []profile.AliasOverride
	if s.Aliases != nil {
		if overrides, err = s.Aliases.ListCustomAliases(ctx); err != nil {
			s.Log.Warn().Err(err).Msg("alias overrides unavailable; using built-ins only")
			overrides = nil
		}
	}
	index := BuildAliasIndex(overrides)
	values := ResolveValues(prof, s.Policy)
	s.emitMatches(ctx, opts.SessionID, fields, index)
	s.emitResolved(ctx, opts.SessionID, values)

	req := &PlanRequest{
		Fields:  fields,
		Index:   index,
		Values:  values,
		Profile: prof,
		Job:     opts.Job,
	}

	chain := &Chain{
		Deterministic: &DeterministicPlanner{Policy: s.Policy},
		Default:       &DefaultPlanner{},
		Log:           s.Log,
	}
	if opts.AllowFallback {
		chain.Fallback = s.Fallback
	}

	plan, err := chain.Plan(ctx, req)
	if err != nil {
		return nil, err
	}
	if s.Facts != nil {
		s.Facts.Emit(ctx, facts.PredPlanTier, opts.SessionID, plan.Tier, strconv.Itoa(len(plan.Actions)))
		for _, sug := range plan.Suggestions {
			s.Facts.Emit(ctx, facts.PredActionSkipped, opts.SessionID, sug.Field, sug.Reason)
		}
	}

	if opts.Actuator != nil && len(plan.Actions) > 0 {
		exec := &Executor{Actuator: opts.Actuator, Log: s.Log}
		report := exec.Execute(ctx, plan.Actions)
		plan = s.reconcile(ctx, opts.SessionID, plan, report)

		if s.Status != nil && len(report.Applied) > 0 {
			if err := s.Status.SetStatus(ctx, opts.SessionID, StatusFilled); err != nil {
				s.Log.Warn().Err(err).Str("session", opts.SessionID).Msg("status update failed")
			}
		}
	}

	return &RunResult{Plan: plan, Fields: fields}, nil
}

// reconcile folds the execution report back into the plan: filled reflects
// what was actually applied, failures join blocked.
func (s *Service) reconcile(ctx context.Context, sessionID string, plan *FillPlanResult, report *ExecReport) *FillPlanResult {
	out := newResult(plan.Tier)
	out.Suggestions = plan.Suggestions
	out.Actions = plan.Actions

	out.Blocked = append(out.Blocked, plan.Blocked...)
	for _, name := range report.Blocked {
		out.Blocked = append(out.Blocked, name)
		if s.Facts != nil {
			s.Facts.Emit(ctx, facts.PredActionFailed, sessionID, name, "", "action failed or needs review")
		}
	}
	for _, a := range report.Applied {
		out.Filled = append(out.Filled, FilledEntry{
			Field:      fieldNameOf(&a),
			Value:      a.Value,
			Confidence: a.Confidence,
		})
		if s.Facts != nil {
			s.Facts.Emit(ctx, facts.PredActionApplied, sessionID, fieldNameOf(&a), a.Action, a.Value)
		}
	}
	return out
}

func (s *Service) emitDiscovered(ctx context.Context, sessionID string, fields []FieldDescriptor) {
	if s.Facts == nil {
		return
	}
	for i := range fields {
		fd := &fields[i]
		ref := fd.FieldID
		if ref == "" {
			ref = computeFieldName(fd, fd.Label, "")
		}
		s.Facts.Emit(ctx, facts.PredFieldFound, sessionID, ref, fd.QuestionText, fd.ControlType, strconv.Itoa(fd.Index))
	}
}

// emitResolved records every canonical key the profile yielded a value for.
// Only key names and values that are headed for the form anyway; nothing the
// policy withheld shows up here, because ResolveValues already applied it.
func (s *Service) emitResolved(ctx context.Context, sessionID string, values map[string]string) {
	if s.Facts == nil {
		return
	}
	for _, key := range CanonicalKeys {
		if v := values[key]; v != "" {
			s.Facts.Emit(ctx, facts.PredValueResolved, sessionID, key, v)
		}
	}
}

func (s *Service) emitMatches(ctx context.Context, sessionID string, fields []FieldDescriptor, index *AliasIndex) {
	if s.Facts == nil {
		return
	}
	for i := range fields {
		fd := &fields[i]
		if key, _, ok := index.MatchField(fd); ok {
			ref := fd.FieldID
			if ref == "" {
				ref = computeFieldName(fd, fd.Label, key)
			}
			s.Facts.Emit(ctx, facts.PredFieldMatched, sessionID, ref, key)
		}
	}
}
