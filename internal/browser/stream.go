package browser

import (
	"context"
	"fmt"
	"time"
)

// AttachStream starts pushing periodic screenshots of a session's page. Each
// connection gets its own channel and cancel; streams are always cancelled
// before the page closes, never after.
func (r *Registry) AttachStream(ctx context.Context, id string) (<-chan []byte, func(), error) {
	s, ok := r.get(id, false)
	if !ok {
		return nil, nil, fmt.Errorf("no live page for session %s; start it first", id)
	}

	streamCtx, cancel := context.WithCancel(ctx)
	s.streamMu.Lock()
	s.streamID++
	key := s.streamID
	s.streams[key] = cancel
	s.streamMu.Unlock()

	detach := func() {
		s.streamMu.Lock()
		if c, ok := s.streams[key]; ok {
			delete(s.streams, key)
			c()
		}
		s.streamMu.Unlock()
	}

	interval := r.cfg.StreamInterval()
	frames := make(chan []byte, 1)
	go func() {
		defer close(frames)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-streamCtx.Done():
				return
			case <-ticker.C:
				shot, err := r.Screenshot(streamCtx, id)
				if err != nil {
					// Page gone or closing; the stream ends quietly.
					r.log.Debug().Err(err).Str("session", id).Msg("stream capture failed")
					return
				}
				select {
				case frames <- shot:
				default:
					// Slow consumer, drop the frame.
				}
			}
		}
	}()
	return frames, detach, nil
}

func (s *session) cancelAllStreams() {
	s.streamMu.Lock()
	for key, cancel := range s.streams {
		delete(s.streams, key)
		cancel()
	}
	s.streamMu.Unlock()
}
