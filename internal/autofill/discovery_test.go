package autofill

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
)

// fakeFrame replays canned descriptor JSON or fails, counting evaluations.
type fakeFrame struct {
	url    string
	fields []FieldDescriptor
	fail   bool
	evals  int
}

func (f *fakeFrame) Eval(ctx context.Context, js string, args ...interface{}) ([]byte, error) {
	f.evals++
	if f.fail {
		return nil, errors.New("frame detached")
	}
	return json.Marshal(f.fields)
}

func (f *fakeFrame) URL() string  { return f.url }
func (f *fakeFrame) Name() string { return "" }

type fakePage struct {
	frames []Frame
	err    error
}

func (p *fakePage) Frames(ctx context.Context) ([]Frame, error) { return p.frames, p.err }

func namedField(id int, name string) FieldDescriptor {
	return FieldDescriptor{
		FieldID:     fmt.Sprintf("af-%d", id),
		Tag:         "input",
		ControlType: "text",
		Name:        name,
		Label:       name,
	}
}

func TestDiscoverJoinsFrames(t *testing.T) {
	page := &fakePage{frames: []Frame{
		&fakeFrame{url: "https://jobs.example.com/apply", fields: []FieldDescriptor{namedField(0, "first_name"), namedField(1, "email")}},
		&fakeFrame{url: "https://widget.example.com/eeo", fields: []FieldDescriptor{namedField(0, "gender")}},
	}}
	d := &Discoverer{MaxFields: 300, Log: zerolog.Nop()}

	fields, err := d.Discover(context.Background(), page)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(fields) != 3 {
		t.Fatalf("expected 3 fields across frames, got %d", len(fields))
	}
	// The iframe reuses af-0; its field must survive with its own frame URL.
	byName := map[string]FieldDescriptor{}
	for _, fd := range fields {
		byName[fd.Name] = fd
	}
	if fd, ok := byName["gender"]; !ok {
		t.Error("iframe field sharing an id with the main frame was dropped")
	} else if fd.FrameURL != "https://widget.example.com/eeo" {
		t.Errorf("iframe field carries wrong frame url: %q", fd.FrameURL)
	}
	// Indexes are reassigned over the combined list.
	for i, fd := range fields {
		if fd.Index != i {
			t.Errorf("field %d has index %d", i, fd.Index)
		}
	}
}

func TestDiscoverIsolatesFrameFailure(t *testing.T) {
	broken := &fakeFrame{url: "https://ads.example.com", fail: true}
	page := &fakePage{frames: []Frame{
		&fakeFrame{url: "https://jobs.example.com/apply", fields: []FieldDescriptor{namedField(0, "email")}},
		broken,
	}}
	d := &Discoverer{MaxFields: 300, Log: zerolog.Nop()}

	fields, err := d.Discover(context.Background(), page)
	if err != nil {
		t.Fatalf("one broken frame must not fail the scan: %v", err)
	}
	if len(fields) != 1 {
		t.Errorf("expected fields from healthy frame only, got %d", len(fields))
	}
}

func TestDiscoverRetriesMainFrameWhenAllFail(t *testing.T) {
	main := &fakeFrame{url: "https://jobs.example.com/apply", fail: true}
	sub := &fakeFrame{url: "https://widget.example.com", fail: true}
	page := &fakePage{frames: []Frame{main, sub}}
	d := &Discoverer{MaxFields: 300, Log: zerolog.Nop()}

	fields, err := d.Discover(context.Background(), page)
	if err != nil {
		t.Fatalf("total frame failure must degrade to empty, not error: %v", err)
	}
	if len(fields) != 0 {
		t.Errorf("expected no fields, got %d", len(fields))
	}
	if main.evals != 2 {
		t.Errorf("main frame should be retried once after total failure, evals=%d", main.evals)
	}
	if sub.evals != 1 {
		t.Errorf("sub frame should not be retried, evals=%d", sub.evals)
	}
}

func TestDiscoverCapsFieldCount(t *testing.T) {
	many := make([]FieldDescriptor, 20)
	for i := range many {
		many[i] = namedField(i, fmt.Sprintf("q_%d", i))
	}
	page := &fakePage{frames: []Frame{&fakeFrame{url: "https://jobs.example.com", fields: many}}}
	d := &Discoverer{MaxFields: 5, Log: zerolog.Nop()}

	fields, err := d.Discover(context.Background(), page)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(fields) != 5 {
		t.Errorf("expected cap of 5, got %d", len(fields))
	}
}

func TestDiscoverDeduplicates(t *testing.T) {
	dup := namedField(0, "email")
	page := &fakePage{frames: []Frame{
		&fakeFrame{url: "https://jobs.example.com", fields: []FieldDescriptor{dup, dup}},
	}}
	d := &Discoverer{MaxFields: 300, Log: zerolog.Nop()}

	fields, err := d.Discover(context.Background(), page)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(fields) != 1 {
		t.Errorf("expected duplicate collapsed, got %d", len(fields))
	}
}

func TestDecodeFieldDescriptorsDropsMalformed(t *testing.T) {
	raw := []byte(`[
		{"field_id": "af-0", "name": "email", "control_type": "text", "label": "Email"},
		"just a string",
		{"required": true},
		{"field_id": "af-1", "question_text": "Why us?", "control_type": "textarea",
		 "constraints": {"max_words": 250}, "prompt_candidates": [{"source": "label", "text": "Why us?", "score": 10}]}
	]`)
	fields := DecodeFieldDescriptors(raw)
	if len(fields) != 2 {
		t.Fatalf("expected 2 valid descriptors, got %d", len(fields))
	}
	if fields[1].Constraints.MaxWords != 250 {
		t.Errorf("constraints not decoded: %+v", fields[1].Constraints)
	}
	if len(fields[1].PromptCandidates) != 1 || fields[1].PromptCandidates[0].Score != 10 {
		t.Errorf("prompt candidates not decoded: %+v", fields[1].PromptCandidates)
	}
}

func TestDecodeFieldDescriptorsNonArray(t *testing.T) {
	for _, raw := range []string{`{}`, `"x"`, `not json`, ``} {
		if got := DecodeFieldDescriptors([]byte(raw)); got != nil {
			t.Errorf("expected nil for %q, got %+v", raw, got)
		}
	}
}
