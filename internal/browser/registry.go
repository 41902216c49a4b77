// Package browser owns the live browser sessions behind application fills:
// one browser and one page per session id, created on demand, reused on
// repeat navigation, and torn down on submit or stop.
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"applynerd-mcp-server/internal/autofill"
	"applynerd-mcp-server/internal/config"
	"applynerd-mcp-server/internal/facts"

	"github.com/rs/zerolog"
)

// PageHandle is the live-page surface the registry hands out. It doubles as
// the discovery Page and exposes the actuator for plan execution.
type PageHandle interface {
	autofill.Page
	Navigate(ctx context.Context, url string) error
	FocusFirstField(ctx context.Context) error
	Screenshot(ctx context.Context) ([]byte, error)
	Actuator() autofill.Actuator
	Close() error
}

// BrowserHandle owns one launched browser process.
type BrowserHandle interface {
	NewPage(ctx context.Context, url string) (PageHandle, error)
	Close() error
}

// Launcher creates a browser for one session. Injectable so tests can run
// without Chrome.
type Launcher func(ctx context.Context) (BrowserHandle, error)

// SessionInfo is the lightweight metadata exposed to listings.
type SessionInfo struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	Status     string    `json:"status"`
	Streaming  bool      `json:"streaming"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
}

type session struct {
	id string

	// mu serializes all operations against this session's page. Two
	// concurrent autofills on one page would interleave DOM mutations.
	mu      sync.Mutex
	browser BrowserHandle
	page    PageHandle

	// metaMu guards the listing metadata. Separate from mu so a status
	// write issued from inside a page operation does not deadlock on the
	// page lock it already holds.
	metaMu     sync.Mutex
	url        string
	status     string
	lastActive time.Time

	createdAt time.Time

	streamMu sync.Mutex
	streams  map[int]context.CancelFunc
	streamID int
}

// Registry keeps at most one live browser+page pair per session id.
type Registry struct {
	cfg    config.BrowserConfig
	log    zerolog.Logger
	launch Launcher
	engine *facts.Engine

	mu       sync.RWMutex
	sessions map[string]*session
}

func NewRegistry(cfg config.BrowserConfig, log zerolog.Logger, engine *facts.Engine) *Registry {
	r := &Registry{
		cfg:      cfg,
		log:      log,
		engine:   engine,
		sessions: make(map[string]*session),
	}
	r.launch = func(ctx context.Context) (BrowserHandle, error) {
		return launchRod(ctx, cfg)
	}
	return r
}

// NewRegistryWithLauncher is the test seam: same registry, custom launcher.
func NewRegistryWithLauncher(cfg config.BrowserConfig, log zerolog.Logger, engine *facts.Engine, launch Launcher) *Registry {
	r := NewRegistry(cfg, log, engine)
	r.launch = launch
	return r
}

// get returns the tracked session struct, creating the record if needed. The
// browser itself is only launched inside Go, under the session lock.
func (r *Registry) get(id string, create bool) (*session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok && create {
		s = &session{
			id:        id,
			status:    autofill.StatusOpen,
			createdAt: time.Now(),
			streams:   make(map[int]context.CancelFunc),
		}
		r.sessions[id] = s
		ok = true
	}
	return s, ok
}

func (r *Registry) drop(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Go starts or reuses the live session for an id and navigates it. A repeat
// call for a live id reuses the existing page and only re-navigates; the
// one-pair-per-id invariant is enforced here.
func (r *Registry) Go(ctx context.Context, id, url string) (SessionInfo, error) {
	if id == "" || url == "" {
		return SessionInfo{}, fmt.Errorf("session id and url are required")
	}

	s, _ := r.get(id, true)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.page == nil {
		browser, err := r.launch(ctx)
		if err != nil {
			r.drop(id)
			return SessionInfo{}, fmt.Errorf("launch browser: %w", err)
		}
		page, err := browser.NewPage(ctx, url)
		if err != nil {
			_ = browser.Close()
			r.drop(id)
			return SessionInfo{}, fmt.Errorf("open page: %w", err)
		}
		s.browser = browser
		s.page = page
		r.log.Info().Str("session", id).Str("url", url).Msg("session started")
	} else {
		if err := s.page.Navigate(ctx, url); err != nil {
			return SessionInfo{}, fmt.Errorf("navigate: %w", err)
		}
		r.log.Info().Str("session", id).Str("url", url).Msg("session reused")
	}

	if err := s.page.FocusFirstField(ctx); err != nil {
		r.log.Debug().Err(err).Str("session", id).Msg("focus first field failed")
	}

	s.metaMu.Lock()
	s.url = url
	s.lastActive = time.Now()
	s.metaMu.Unlock()
	if r.engine != nil {
		r.engine.Emit(ctx, facts.PredSessionStatus, id, "live", url)
	}
	return r.info(s), nil
}

// WithPage runs fn against the session's live page under the per-session
// lock, so fills and navigations on one session never interleave.
func (r *Registry) WithPage(ctx context.Context, id string, fn func(PageHandle) error) error {
	s, ok := r.get(id, false)
	if !ok {
		return fmt.Errorf("no live page for session %s; start it first", id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.page == nil {
		return fmt.Errorf("no live page for session %s; start it first", id)
	}
	s.metaMu.Lock()
	s.lastActive = time.Now()
	s.metaMu.Unlock()
	return fn(s.page)
}

// Screenshot captures the session's page.
func (r *Registry) Screenshot(ctx context.Context, id string) ([]byte, error) {
	var data []byte
	err := r.WithPage(ctx, id, func(p PageHandle) error {
		var shotErr error
		data, shotErr = p.Screenshot(ctx)
		return shotErr
	})
	return data, err
}

// Stop tears a session down: streams first, then page, then browser, in that
// order. Close errors are swallowed; cleanup is best effort.
func (r *Registry) Stop(ctx context.Context, id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("session not found: %s", id)
	}

	s.cancelAllStreams()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.page != nil {
		if err := s.page.Close(); err != nil {
			r.log.Debug().Err(err).Str("session", id).Msg("page close failed")
		}
		s.page = nil
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			r.log.Debug().Err(err).Str("session", id).Msg("browser close failed")
		}
		s.browser = nil
	}
	if r.engine != nil {
		s.metaMu.Lock()
		url := s.url
		s.metaMu.Unlock()
		r.engine.Emit(ctx, facts.PredSessionStatus, id, "stopped", url)
	}
	r.log.Info().Str("session", id).Msg("session stopped")
	return nil
}

// MarkSubmitted records the submit and tears the session down.
func (r *Registry) MarkSubmitted(ctx context.Context, id string) error {
	if r.engine != nil {
		r.engine.Emit(ctx, facts.PredSessionStatus, id, "submitted", "")
	}
	return r.Stop(ctx, id)
}

// SetStatus records the application status on the session's metadata. The
// fill service drives the transition to FILLED through this, from inside a
// page operation, so only the metadata lock is taken here.
func (r *Registry) SetStatus(ctx context.Context, id, status string) error {
	s, ok := r.get(id, false)
	if !ok {
		return fmt.Errorf("session not found: %s", id)
	}
	s.metaMu.Lock()
	s.status = status
	s.metaMu.Unlock()
	if r.engine != nil {
		r.engine.Emit(ctx, facts.PredSessionStatus, id, status, "")
	}
	return nil
}

// Live reports whether a session currently has a page.
func (r *Registry) Live(id string) bool {
	s, ok := r.get(id, false)
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page != nil
}

// List returns metadata for all tracked sessions.
func (r *Registry) List() []SessionInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]SessionInfo, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, r.info(s))
	}
	return out
}

// Shutdown stops every session.
func (r *Registry) Shutdown(ctx context.Context) {
	r.mu.RLock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	for _, id := range ids {
		_ = r.Stop(ctx, id)
	}
}

func (r *Registry) info(s *session) SessionInfo {
	s.streamMu.Lock()
	streaming := len(s.streams) > 0
	s.streamMu.Unlock()
	s.metaMu.Lock()
	defer s.metaMu.Unlock()
	return SessionInfo{
		ID:         s.id,
		URL:        s.url,
		Status:     s.status,
		Streaming:  streaming,
		CreatedAt:  s.createdAt,
		LastActive: s.lastActive,
	}
}
