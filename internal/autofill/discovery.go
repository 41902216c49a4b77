package autofill

import (
	"context"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Frame is one scannable script context of a live page. The main frame is
// always index 0 of Page.Frames.
type Frame interface {
	// Eval runs a script payload in the frame's context and returns the raw
	// JSON result.
	Eval(ctx context.Context, js string, args ...interface{}) ([]byte, error)
	URL() string
	Name() string
}

// Page is the slice of browser surface discovery needs.
type Page interface {
	Frames(ctx context.Context) ([]Frame, error)
}

// Discoverer scans a live page's frames for fillable controls.
type Discoverer struct {
	MaxFields int
	Log       zerolog.Logger
}

// Discover runs the extractor in every frame concurrently and joins the
// results. A frame that fails contributes zero fields; only if every frame
// fails is the main frame retried alone. The combined result is capped at
// MaxFields, deduplicated by frame plus field id.
func (d *Discoverer) Discover(ctx context.Context, page Page) ([]FieldDescriptor, error) {
	frames, err := page.Frames(ctx)
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, nil
	}

	limit := d.MaxFields
	if limit <= 0 {
		limit = 300
	}

	perFrame := make([][]FieldDescriptor, len(frames))
	var okCount int
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, fr := range frames {
		i, fr := i, fr
		g.Go(func() error {
			raw, evalErr := fr.Eval(gctx, ExtractorJS, limit, fr.URL(), fr.Name())
			if evalErr != nil {
				d.Log.Warn().Err(evalErr).Str("frame", fr.URL()).Msg("frame scan failed")
				return nil
			}
			fields := DecodeFieldDescriptors(raw)
			mu.Lock()
			perFrame[i] = fields
			okCount++
			mu.Unlock()
			return nil
		})
	}
	// Workers only return nil; the group is used for join + ctx plumbing.
	_ = g.Wait()

	if okCount == 0 {
		raw, evalErr := frames[0].Eval(ctx, ExtractorJS, limit, frames[0].URL(), frames[0].Name())
		if evalErr != nil {
			return nil, nil
		}
		perFrame[0] = DecodeFieldDescriptors(raw)
	}

	out := make([]FieldDescriptor, 0, limit)
	seen := make(map[string]bool)
	for frameIdx, fields := range perFrame {
		// Extractor ids restart at af-0 in every frame, so the dedupe key
		// carries the frame index, never just the id.
		prefix := strconv.Itoa(frameIdx)
		for _, fd := range fields {
			if len(out) >= limit {
				return out, nil
			}
			key := prefix + "\x00" + fd.FieldID
			if fd.FieldID == "" {
				key = prefix + "\x00" + fd.Name + "\x00" + fd.RawID
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			fd.Index = len(out)
			if fd.FrameURL == "" && frameIdx < len(frames) {
				fd.FrameURL = frames[frameIdx].URL()
			}
			out = append(out, fd)
		}
	}
	return out, nil
}
