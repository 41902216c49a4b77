package facts

import (
	"context"
	"testing"
	"time"

	"applynerd-mcp-server/internal/config"
)

func testConfig() config.FactsConfig {
	return config.FactsConfig{
		Enable:          true,
		SchemaPath:      "../../schemas/autofill.mg",
		FactBufferLimit: 1000,
	}
}

func TestEngineLoadSchema(t *testing.T) {
	engine, err := NewEngine(testConfig())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	if !engine.Ready() {
		t.Fatal("engine not ready after schema load")
	}
}

func TestEngineDisabledIsNoop(t *testing.T) {
	engine, err := NewEngine(config.FactsConfig{Enable: false})
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	if !engine.Ready() {
		t.Fatal("disabled engine should report ready")
	}

	engine.Emit(context.Background(), PredSessionStatus, "sess-1", "active", "https://example.com")
	if got := len(engine.Facts()); got != 0 {
		t.Errorf("expected no buffered facts when disabled, got %d", got)
	}
}

func TestEngineEmitAndIndex(t *testing.T) {
	engine, err := NewEngine(testConfig())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	ctx := context.Background()
	engine.Emit(ctx, PredFieldFound, "sess-1", "input#first_name", "First Name", "text", "0")
	engine.Emit(ctx, PredFieldFound, "sess-1", "input#email", "Email", "text", "0")
	engine.Emit(ctx, PredFieldMatched, "sess-1", "input#email", "email")

	if got := len(engine.Facts()); got != 3 {
		t.Fatalf("expected 3 buffered facts, got %d", got)
	}
	found := engine.FactsByPredicate(PredFieldFound)
	if len(found) != 2 {
		t.Errorf("expected 2 field_found facts, got %d", len(found))
	}
	matched := engine.FactsByPredicate(PredFieldMatched)
	if len(matched) != 1 {
		t.Errorf("expected 1 field_matched fact, got %d", len(matched))
	}
	if matched[0].Args[2] != "email" {
		t.Errorf("unexpected matched key: %v", matched[0].Args[2])
	}
}

func TestEngineBufferTrim(t *testing.T) {
	cfg := testConfig()
	cfg.FactBufferLimit = 5
	engine, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		engine.Emit(ctx, PredActionApplied, "sess-1", "ref", "input", "v")
	}

	if got := len(engine.Facts()); got != 5 {
		t.Errorf("expected buffer trimmed to 5, got %d", got)
	}
	// Index must stay consistent after the trim.
	if got := len(engine.FactsByPredicate(PredActionApplied)); got != 5 {
		t.Errorf("expected 5 indexed facts after trim, got %d", got)
	}
}

func TestEngineQueryBinding(t *testing.T) {
	engine, err := NewEngine(testConfig())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	ctx := context.Background()
	engine.Emit(ctx, PredActionFailed, "sess-1", "select#state", "select", "option not found")
	engine.Emit(ctx, PredActionApplied, "sess-1", "input#email", "input", "aisha@example.com")

	results, err := engine.Query(ctx, `action_failed(Session, Ref, Kind, Error).`)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 binding, got %d", len(results))
	}
	if results[0]["Ref"] != "select#state" {
		t.Errorf("unexpected Ref binding: %v", results[0]["Ref"])
	}
	if results[0]["Error"] != "option not found" {
		t.Errorf("unexpected Error binding: %v", results[0]["Error"])
	}
}

func TestEngineDerivedDegradedSession(t *testing.T) {
	engine, err := NewEngine(testConfig())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	ctx := context.Background()
	engine.Emit(ctx, PredActionFailed, "sess-9", "input#phone", "input", "element detached")

	derived, err := engine.Evaluate(ctx, "degraded_session")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if len(derived) != 1 {
		t.Fatalf("expected 1 degraded_session fact, got %d", len(derived))
	}
	if derived[0].Args[0] != "sess-9" {
		t.Errorf("unexpected session binding: %v", derived[0].Args[0])
	}
}

func TestEngineDerivedNondeterministicRun(t *testing.T) {
	engine, err := NewEngine(testConfig())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	ctx := context.Background()
	engine.Emit(ctx, PredPlanTier, "sess-4", "fallback", "3")
	engine.Emit(ctx, PredPlanTier, "sess-5", "deterministic", "2")
	engine.Emit(ctx, PredPlanTier, "sess-6", "safe-default", "4")

	derived, err := engine.Evaluate(ctx, "nondeterministic_run")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if len(derived) != 2 {
		t.Fatalf("expected 2 nondeterministic_run facts, got %d", len(derived))
	}
	tiers := map[string]string{}
	for _, f := range derived {
		tiers[f.Args[0].(string)] = f.Args[1].(string)
	}
	if tiers["sess-4"] != "fallback" {
		t.Errorf("expected sess-4 flagged as fallback, got %q", tiers["sess-4"])
	}
	if tiers["sess-6"] != "safe-default" {
		t.Errorf("expected sess-6 flagged as safe-default, got %q", tiers["sess-6"])
	}
	if _, ok := tiers["sess-5"]; ok {
		t.Error("deterministic run must not be flagged")
	}
}

func TestEngineQueryTemporal(t *testing.T) {
	engine, err := NewEngine(testConfig())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	ctx := context.Background()
	start := time.Now().Add(-time.Second)
	engine.Emit(ctx, PredSessionStatus, "sess-1", "active", "https://jobs.example.com/apply")

	within := engine.QueryTemporal(PredSessionStatus, start, time.Now().Add(time.Second))
	if len(within) != 1 {
		t.Errorf("expected 1 fact inside window, got %d", len(within))
	}
	outside := engine.QueryTemporal(PredSessionStatus, time.Now().Add(time.Hour), time.Time{})
	if len(outside) != 0 {
		t.Errorf("expected 0 facts after future bound, got %d", len(outside))
	}
}
