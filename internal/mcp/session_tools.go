package mcp

import (
	"context"
	"encoding/base64"
	"fmt"

	"applynerd-mcp-server/internal/autofill"
	"applynerd-mcp-server/internal/browser"
)

// GoTool opens (or re-navigates) the live browser session for an application.
type GoTool struct {
	registry *browser.Registry
}

func (t *GoTool) Name() string { return "application-go" }
func (t *GoTool) Description() string {
	return `Open a live browser on a job application page, or re-navigate an existing one.

CALL THIS FIRST for any application. Each session id owns exactly one
browser and page; repeating the call with the same id reuses them and
only navigates, so it is always safe to call again.

WHEN TO USE:
- Starting work on a new job posting
- Moving an existing session to another page of the same application
- Recovering after the page was navigated away manually

After the page loads the first fillable field is focused, ready for
analyze-page or autofill.

Returns: {session: {id, url, streaming, created_at, last_active}}`
}
func (t *GoTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"session_id": map[string]interface{}{
				"type":        "string",
				"description": "Application session id owning the browser",
			},
			"url": map[string]interface{}{
				"type":        "string",
				"description": "Job application page to open",
			},
		},
		"required": []string{"session_id", "url"},
	}
}
func (t *GoTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	sessionID := getStringArg(args, "session_id")
	url := getStringArg(args, "url")
	if sessionID == "" || url == "" {
		return nil, fmt.Errorf("session_id and url are required")
	}

	info, err := t.registry.Go(ctx, sessionID, url)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"session": info}, nil
}

// StopSessionTool closes a session's browser without touching its record.
type StopSessionTool struct {
	registry *browser.Registry
}

func (t *StopSessionTool) Name() string { return "application-stop" }
func (t *StopSessionTool) Description() string {
	return `Close the live browser for an application session.

WHEN TO USE:
- Done working on an application for now (state lives in the tracker, not the browser)
- Freeing resources after a batch of fills
- The page is wedged and you want a clean restart via application-go

Streams are cancelled first, then the page and browser close. Stopping
does not change the application status; use mark-submitted for that.

Returns: {status: "stopped"}`
}
func (t *StopSessionTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"session_id": map[string]interface{}{
				"type":        "string",
				"description": "Session to stop",
			},
		},
		"required": []string{"session_id"},
	}
}
func (t *StopSessionTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	sessionID := getStringArg(args, "session_id")
	if sessionID == "" {
		return nil, fmt.Errorf("session_id is required")
	}
	if err := t.registry.Stop(ctx, sessionID); err != nil {
		return nil, err
	}
	return map[string]interface{}{"status": "stopped"}, nil
}

// ListSessionsTool reports every live application session.
type ListSessionsTool struct {
	registry *browser.Registry
}

func (t *ListSessionsTool) Name() string { return "list-applications" }
func (t *ListSessionsTool) Description() string {
	return `List live application browser sessions.

USE THIS FIRST to see which applications already have a browser open
before calling application-go, and to find ids for the other tools.

Returns: {sessions: [{id, url, streaming, created_at, last_active}]}`
}
func (t *ListSessionsTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}
func (t *ListSessionsTool) Execute(_ context.Context, _ map[string]interface{}) (interface{}, error) {
	return map[string]interface{}{"sessions": t.registry.List()}, nil
}

// ScreenshotTool captures the session's current page.
type ScreenshotTool struct {
	registry *browser.Registry
}

func (t *ScreenshotTool) Name() string { return "screenshot" }
func (t *ScreenshotTool) Description() string {
	return `Capture a screenshot of an application session's page.

WHEN TO USE:
- Verifying what the form looks like before or after a fill
- Checking for validation errors the plan could not see
- Documenting a submitted application

Returns: {session_id, image_base64} (PNG).`
}
func (t *ScreenshotTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"session_id": map[string]interface{}{
				"type":        "string",
				"description": "Session to capture",
			},
		},
		"required": []string{"session_id"},
	}
}
func (t *ScreenshotTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	sessionID := getStringArg(args, "session_id")
	if sessionID == "" {
		return nil, fmt.Errorf("session_id is required")
	}
	data, err := t.registry.Screenshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"session_id":   sessionID,
		"image_base64": base64.StdEncoding.EncodeToString(data),
	}, nil
}

// StreamScreenshotsTool captures a short burst of periodic screenshots.
type StreamScreenshotsTool struct {
	registry *browser.Registry
}

func (t *StreamScreenshotsTool) Name() string { return "stream-screenshots" }
func (t *StreamScreenshotsTool) Description() string {
	return `Capture a burst of periodic screenshots from an application session.

Attaches a live screenshot stream to the session's page, collects up to
max_frames frames at the configured capture interval, then detaches. The
stream is independent of the page: disconnecting never touches the session,
and stopping the session ends any attached stream first.

WHEN TO USE:
- Watching a fill run progress across a multi-step form
- Capturing a page that re-renders after client-side validation
- Single still image needed? Use 'screenshot' instead

Returns: {session_id, frame_count, frames_base64: [...]} (PNG frames).`
}
func (t *StreamScreenshotsTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"session_id": map[string]interface{}{
				"type":        "string",
				"description": "Session to stream from",
			},
			"max_frames": map[string]interface{}{
				"type":        "integer",
				"description": "Frames to collect before detaching (default 3, max 10)",
			},
		},
		"required": []string{"session_id"},
	}
}
func (t *StreamScreenshotsTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	sessionID := getStringArg(args, "session_id")
	if sessionID == "" {
		return nil, fmt.Errorf("session_id is required")
	}
	maxFrames := getIntArg(args, "max_frames", 3)
	if maxFrames < 1 {
		maxFrames = 1
	}
	if maxFrames > 10 {
		maxFrames = 10
	}

	frames, detach, err := t.registry.AttachStream(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer detach()

	encoded := make([]string, 0, maxFrames)
	for shot := range frames {
		encoded = append(encoded, base64.StdEncoding.EncodeToString(shot))
		if len(encoded) >= maxFrames {
			break
		}
	}
	if len(encoded) == 0 {
		return nil, fmt.Errorf("stream for session %s ended before any frame was captured", sessionID)
	}
	return map[string]interface{}{
		"session_id":    sessionID,
		"frame_count":   len(encoded),
		"frames_base64": encoded,
	}, nil
}

// MarkSubmittedTool records a submit and tears the browser down.
type MarkSubmittedTool struct {
	registry *browser.Registry
	service  *autofill.Service
}

func (t *MarkSubmittedTool) Name() string { return "mark-submitted" }
func (t *MarkSubmittedTool) Description() string {
	return `Mark an application as submitted and close its browser.

CALL AFTER the human has reviewed the filled form and pressed submit.
The engine never submits on its own; this tool only records the outcome.

WHAT IT DOES:
- Sets the application status to SUBMITTED
- Closes the session's page and browser

Returns: {session_id, status: "SUBMITTED"}`
}
func (t *MarkSubmittedTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"session_id": map[string]interface{}{
				"type":        "string",
				"description": "Session that was submitted",
			},
		},
		"required": []string{"session_id"},
	}
}
func (t *MarkSubmittedTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	sessionID := getStringArg(args, "session_id")
	if sessionID == "" {
		return nil, fmt.Errorf("session_id is required")
	}

	if t.service != nil && t.service.Status != nil {
		if err := t.service.Status.SetStatus(ctx, sessionID, autofill.StatusSubmitted); err != nil {
			return nil, fmt.Errorf("record submit: %w", err)
		}
	}
	if err := t.registry.MarkSubmitted(ctx, sessionID); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"session_id": sessionID,
		"status":     autofill.StatusSubmitted,
	}, nil
}
