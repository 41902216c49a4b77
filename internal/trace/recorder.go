// Package trace writes per-run fill traces as JSONL, one file per run, so a
// failed application can be replayed step by step after the fact.
package trace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"applynerd-mcp-server/internal/config"

	"github.com/google/uuid"
)

const maxKeptTraces = 10

// Event is one line in a run trace.
type Event struct {
	Timestamp time.Time   `json:"ts"`
	Type      string      `json:"type"`
	RunID     string      `json:"run_id,omitempty"`
	SessionID string      `json:"session_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// Run event types.
const (
	EventRunStarted   = "run_started"
	EventFieldsFound  = "fields_found"
	EventPlanBuilt    = "plan_built"
	EventActionResult = "action_result"
	EventRunFinished  = "run_finished"
)

// Recorder keeps one open trace file per fill run.
type Recorder struct {
	mu      sync.Mutex
	dir     string
	enabled bool
	file    *os.File
	encoder *json.Encoder
	runID   string
}

// NewRecorder creates the trace directory when recording is enabled. A
// disabled recorder is a no-op and always safe to call.
func NewRecorder(cfg config.TraceConfig) (*Recorder, error) {
	r := &Recorder{enabled: cfg.Enable, dir: cfg.Dir}
	if !r.enabled {
		return r, nil
	}
	if r.dir == "" {
		r.dir = "data/traces"
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create trace dir: %w", err)
	}
	return r, nil
}

// BeginRun opens a fresh trace file for a fill run, pruning old traces.
func (r *Recorder) BeginRun(sessionID string) error {
	if !r.enabled {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file != nil {
		_ = r.file.Close()
		r.file = nil
		r.encoder = nil
	}
	if err := r.prune(); err != nil {
		return fmt.Errorf("prune traces: %w", err)
	}

	name := fmt.Sprintf("fill_%s_%d.jsonl", sessionID, time.Now().UnixMilli())
	f, err := os.Create(filepath.Join(r.dir, name))
	if err != nil {
		return err
	}
	r.file = f
	r.encoder = json.NewEncoder(f)
	r.runID = uuid.NewString()
	r.encodeLocked(Event{Timestamp: time.Now(), Type: EventRunStarted, SessionID: sessionID})
	return nil
}

// Record appends one event to the open trace. Dropped silently when no run
// is open; tracing must never fail a fill.
func (r *Recorder) Record(eventType, sessionID string, data interface{}) {
	if !r.enabled {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.encodeLocked(Event{
		Timestamp: time.Now(),
		Type:      eventType,
		SessionID: sessionID,
		Data:      data,
	})
}

// EndRun records the closing event and closes the trace file.
func (r *Recorder) EndRun(sessionID string, summary interface{}) {
	if !r.enabled {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.encodeLocked(Event{Timestamp: time.Now(), Type: EventRunFinished, SessionID: sessionID, Data: summary})
	if r.file != nil {
		_ = r.file.Close()
		r.file = nil
		r.encoder = nil
	}
}

func (r *Recorder) encodeLocked(evt Event) {
	if r.encoder == nil {
		return
	}
	evt.RunID = r.runID
	_ = r.encoder.Encode(evt)
}

// prune keeps only the newest traces, leaving room for the incoming one.
func (r *Recorder) prune() error {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return err
	}

	type trace struct {
		name string
		mod  time.Time
	}
	var traces []trace
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".jsonl" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		traces = append(traces, trace{e.Name(), info.ModTime()})
	}

	sort.Slice(traces, func(i, j int) bool {
		return traces[i].mod.After(traces[j].mod)
	})

	for i := maxKeptTraces - 1; i < len(traces); i++ {
		_ = os.Remove(filepath.Join(r.dir, traces[i].name))
	}
	return nil
}

// Close finishes any open trace.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file != nil {
		err := r.file.Close()
		r.file = nil
		r.encoder = nil
		return err
	}
	return nil
}
