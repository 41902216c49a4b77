package browser

import (
	"context"
	"fmt"

	"applynerd-mcp-server/internal/autofill"
	"applynerd-mcp-server/internal/config"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// launchRod starts (or attaches to) Chrome and opens a fresh incognito
// context for the session.
func launchRod(ctx context.Context, cfg config.BrowserConfig) (BrowserHandle, error) {
	controlURL := cfg.DebuggerURL
	var cleanup func()
	if controlURL == "" {
		l := launcher.New().Headless(cfg.IsHeadless())
		if cfg.Bin != "" {
			l = l.Bin(cfg.Bin)
		}
		url, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch chrome: %w", err)
		}
		controlURL = url
		cleanup = l.Kill
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		if cleanup != nil {
			cleanup()
		}
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}

	incognito, err := b.Incognito()
	if err != nil {
		_ = b.Close()
		if cleanup != nil {
			cleanup()
		}
		return nil, fmt.Errorf("incognito context: %w", err)
	}
	return &rodBrowser{cfg: cfg, browser: b, incognito: incognito, cleanup: cleanup}, nil
}

type rodBrowser struct {
	cfg       config.BrowserConfig
	browser   *rod.Browser
	incognito *rod.Browser
	cleanup   func()
}

func (b *rodBrowser) NewPage(ctx context.Context, url string) (PageHandle, error) {
	page, err := b.incognito.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             b.cfg.GetViewportWidth(),
		Height:            b.cfg.GetViewportHeight(),
		DeviceScaleFactor: 1.0,
		Mobile:            false,
	}).Call(page); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("set viewport: %w", err)
	}
	p := &rodPage{cfg: b.cfg, page: page}
	if err := p.Navigate(ctx, url); err != nil {
		_ = page.Close()
		return nil, err
	}
	return p, nil
}

func (b *rodBrowser) Close() error {
	err := b.browser.Close()
	if b.cleanup != nil {
		b.cleanup()
	}
	return err
}

type rodPage struct {
	cfg  config.BrowserConfig
	page *rod.Page
}

func (p *rodPage) Navigate(ctx context.Context, url string) error {
	page := p.page.Context(ctx).Timeout(p.cfg.NavigationTimeout())
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("wait for load of %s: %w", url, err)
	}
	return nil
}

func (p *rodPage) FocusFirstField(ctx context.Context) error {
	_, err := p.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:           autofill.FocusFirstFieldJS,
		ByValue:      true,
		AwaitPromise: true,
	})
	return err
}

func (p *rodPage) Screenshot(ctx context.Context) ([]byte, error) {
	return p.page.Context(ctx).Screenshot(false, nil)
}

func (p *rodPage) Close() error {
	return p.page.Close()
}
