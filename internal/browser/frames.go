package browser

import (
	"context"
	"errors"

	"applynerd-mcp-server/internal/autofill"

	"github.com/go-rod/rod"
)

// Frames returns the main frame plus every reachable iframe. Frames the
// driver cannot enter (cross-origin restrictions, detached nodes) are
// skipped rather than failing the scan.
func (p *rodPage) Frames(ctx context.Context) ([]autofill.Frame, error) {
	page := p.page.Context(ctx)
	frames := []autofill.Frame{newRodFrame(page)}

	elements, err := page.Elements("iframe")
	if err != nil {
		return frames, nil
	}
	for _, el := range elements {
		sub, err := el.Frame()
		if err != nil || sub == nil {
			continue
		}
		frames = append(frames, newRodFrame(sub.Context(ctx)))
	}
	return frames, nil
}

type rodFrame struct {
	page *rod.Page
	url  string
	name string
}

func newRodFrame(page *rod.Page) *rodFrame {
	f := &rodFrame{page: page}
	if info, err := page.Info(); err == nil && info != nil {
		f.url = info.URL
		f.name = info.Title
	}
	return f
}

func (f *rodFrame) URL() string  { return f.url }
func (f *rodFrame) Name() string { return f.name }

func (f *rodFrame) Eval(ctx context.Context, js string, args ...interface{}) ([]byte, error) {
	res, err := f.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:           js,
		JSArgs:       args,
		ByValue:      true,
		AwaitPromise: true,
	})
	if err != nil {
		return nil, err
	}
	if res == nil || res.Value.Nil() {
		return nil, errors.New("script returned no value")
	}
	return res.Value.MarshalJSON()
}
