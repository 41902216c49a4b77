package browser

import (
	"context"
	"errors"
	"sync"
	"testing"

	"applynerd-mcp-server/internal/autofill"
	"applynerd-mcp-server/internal/config"

	"github.com/rs/zerolog"
)

type fakePage struct {
	mu        sync.Mutex
	navigated []string
	focused   int
	shots     int
	closed    bool
	navErr    error
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.navErr != nil {
		return p.navErr
	}
	p.navigated = append(p.navigated, url)
	return nil
}

func (p *fakePage) FocusFirstField(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.focused++
	return nil
}

func (p *fakePage) Screenshot(ctx context.Context) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, errors.New("page closed")
	}
	p.shots++
	return []byte("png"), nil
}

func (p *fakePage) Frames(ctx context.Context) ([]autofill.Frame, error) { return nil, nil }
func (p *fakePage) Actuator() autofill.Actuator                          { return nil }

func (p *fakePage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

type fakeBrowser struct {
	page   *fakePage
	closed bool
}

func (b *fakeBrowser) NewPage(ctx context.Context, url string) (PageHandle, error) {
	b.page = &fakePage{navigated: []string{url}}
	return b.page, nil
}

func (b *fakeBrowser) Close() error {
	b.closed = true
	return nil
}

type fakeLauncher struct {
	mu       sync.Mutex
	launches int
	browsers []*fakeBrowser
	err      error
}

func (l *fakeLauncher) launch(ctx context.Context) (BrowserHandle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	l.launches++
	b := &fakeBrowser{}
	l.browsers = append(l.browsers, b)
	return b, nil
}

func newTestRegistry(t *testing.T) (*Registry, *fakeLauncher) {
	t.Helper()
	fl := &fakeLauncher{}
	cfg := config.DefaultConfig().Browser
	r := NewRegistryWithLauncher(cfg, zerolog.Nop(), nil, fl.launch)
	return r, fl
}

func TestGoStartsSessionOnce(t *testing.T) {
	r, fl := newTestRegistry(t)
	ctx := context.Background()

	info, err := r.Go(ctx, "apply-1", "https://jobs.example.com/123")
	if err != nil {
		t.Fatalf("Go: %v", err)
	}
	if info.ID != "apply-1" || info.URL != "https://jobs.example.com/123" {
		t.Errorf("unexpected info: %+v", info)
	}
	if fl.launches != 1 {
		t.Fatalf("launches = %d, want 1", fl.launches)
	}
	page := fl.browsers[0].page
	if page.focused != 1 {
		t.Errorf("focused = %d, want 1", page.focused)
	}
}

func TestRepeatGoReusesSession(t *testing.T) {
	r, fl := newTestRegistry(t)
	ctx := context.Background()

	if _, err := r.Go(ctx, "apply-1", "https://jobs.example.com/123"); err != nil {
		t.Fatalf("first Go: %v", err)
	}
	if _, err := r.Go(ctx, "apply-1", "https://jobs.example.com/456"); err != nil {
		t.Fatalf("second Go: %v", err)
	}

	if fl.launches != 1 {
		t.Fatalf("launches = %d, want 1 (repeat go must reuse the pair)", fl.launches)
	}
	if got := len(r.List()); got != 1 {
		t.Fatalf("live sessions = %d, want 1", got)
	}
	page := fl.browsers[0].page
	want := []string{"https://jobs.example.com/123", "https://jobs.example.com/456"}
	if len(page.navigated) != len(want) {
		t.Fatalf("navigations = %v, want %v", page.navigated, want)
	}
	for i, u := range want {
		if page.navigated[i] != u {
			t.Errorf("navigation %d = %q, want %q", i, page.navigated[i], u)
		}
	}
}

func TestDistinctSessionsGetDistinctBrowsers(t *testing.T) {
	r, fl := newTestRegistry(t)
	ctx := context.Background()

	if _, err := r.Go(ctx, "apply-1", "https://a.example.com"); err != nil {
		t.Fatalf("Go: %v", err)
	}
	if _, err := r.Go(ctx, "apply-2", "https://b.example.com"); err != nil {
		t.Fatalf("Go: %v", err)
	}
	if fl.launches != 2 {
		t.Errorf("launches = %d, want 2", fl.launches)
	}
	if got := len(r.List()); got != 2 {
		t.Errorf("live sessions = %d, want 2", got)
	}
}

func TestGoRejectsEmptyArgs(t *testing.T) {
	r, _ := newTestRegistry(t)
	if _, err := r.Go(context.Background(), "", "https://a.example.com"); err == nil {
		t.Error("expected error for empty session id")
	}
	if _, err := r.Go(context.Background(), "apply-1", ""); err == nil {
		t.Error("expected error for empty url")
	}
}

func TestSetStatusInsidePageOperation(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	if _, err := r.Go(ctx, "app-1", "https://jobs.example.com/apply"); err != nil {
		t.Fatalf("Go failed: %v", err)
	}

	// The fill service sets FILLED while still holding the page; the
	// status write must not wait on the page lock.
	err := r.WithPage(ctx, "app-1", func(p PageHandle) error {
		return r.SetStatus(ctx, "app-1", autofill.StatusFilled)
	})
	if err != nil {
		t.Fatalf("WithPage failed: %v", err)
	}

	infos := r.List()
	if len(infos) != 1 || infos[0].Status != autofill.StatusFilled {
		t.Errorf("expected status %q on listing, got %+v", autofill.StatusFilled, infos)
	}
}

func TestListConcurrentWithStatusWrites(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	if _, err := r.Go(ctx, "app-1", "https://jobs.example.com/apply"); err != nil {
		t.Fatalf("Go failed: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_ = r.SetStatus(ctx, "app-1", autofill.StatusFilled)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if infos := r.List(); len(infos) != 1 {
				t.Errorf("expected 1 session, got %d", len(infos))
				return
			}
		}
	}()
	wg.Wait()
}

func TestStopTearsDownInOrder(t *testing.T) {
	r, fl := newTestRegistry(t)
	ctx := context.Background()

	if _, err := r.Go(ctx, "apply-1", "https://a.example.com"); err != nil {
		t.Fatalf("Go: %v", err)
	}
	if err := r.Stop(ctx, "apply-1"); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	b := fl.browsers[0]
	if !b.page.closed {
		t.Error("page not closed")
	}
	if !b.closed {
		t.Error("browser not closed")
	}
	if len(r.List()) != 0 {
		t.Error("session still listed after stop")
	}
	if err := r.Stop(ctx, "apply-1"); err == nil {
		t.Error("expected error stopping an unknown session")
	}
}

func TestWithPageRequiresLiveSession(t *testing.T) {
	r, _ := newTestRegistry(t)
	err := r.WithPage(context.Background(), "ghost", func(PageHandle) error { return nil })
	if err == nil {
		t.Fatal("expected error for unknown session")
	}
}

func TestScreenshot(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()
	if _, err := r.Go(ctx, "apply-1", "https://a.example.com"); err != nil {
		t.Fatalf("Go: %v", err)
	}
	data, err := r.Screenshot(ctx, "apply-1")
	if err != nil {
		t.Fatalf("Screenshot: %v", err)
	}
	if string(data) != "png" {
		t.Errorf("unexpected screenshot payload %q", data)
	}
}

func TestLaunchFailureSurfaces(t *testing.T) {
	fl := &fakeLauncher{err: errors.New("no chrome")}
	r := NewRegistryWithLauncher(config.DefaultConfig().Browser, zerolog.Nop(), nil, fl.launch)
	if _, err := r.Go(context.Background(), "apply-1", "https://a.example.com"); err == nil {
		t.Fatal("expected launch error")
	}
	// A failed launch must not leave a zombie entry claiming to be live.
	if r.Live("apply-1") {
		t.Error("session reported live after failed launch")
	}
}

func TestAttachStreamDetachCancels(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()
	if _, err := r.Go(ctx, "apply-1", "https://a.example.com"); err != nil {
		t.Fatalf("Go: %v", err)
	}
	frames, detach, err := r.AttachStream(ctx, "apply-1")
	if err != nil {
		t.Fatalf("AttachStream: %v", err)
	}
	infos := r.List()
	if len(infos) != 1 || !infos[0].Streaming {
		t.Errorf("expected session to report streaming, got %+v", infos)
	}
	detach()
	for range frames {
		// Drain until the goroutine observes the cancel and closes.
	}
}

func TestShutdownStopsEverything(t *testing.T) {
	r, fl := newTestRegistry(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		if _, err := r.Go(ctx, id, "https://"+id+".example.com"); err != nil {
			t.Fatalf("Go %s: %v", id, err)
		}
	}
	r.Shutdown(ctx)
	if len(r.List()) != 0 {
		t.Error("sessions remain after shutdown")
	}
	for _, b := range fl.browsers {
		if !b.closed {
			t.Error("browser left open after shutdown")
		}
	}
}
