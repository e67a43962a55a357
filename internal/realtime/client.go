package realtime

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/gorilla/websocket"
)

const (
	minBackoff = 500 * time.Millisecond
	maxBackoff = 30 * time.Second
)

// Subscribe connects to the change socket at url and sends one Event per
// burst of notifications on the returned channel. Bursts are coalesced with
// the debounce window plus up to half of it in random jitter, so consoles
// sharing a server do not refetch in lockstep. Lost connections are retried
// with exponential backoff; after a reconnect an Event is sent, since changes
// may have been missed. The channel is closed once ctx ends.
func Subscribe(ctx context.Context, url string, debounce time.Duration, logger *slog.Logger) <-chan Event {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	raw := make(chan Event, 1)
	out := make(chan Event, 1)

	go connectLoop(ctx, url, raw, logger)
	go debounceLoop(raw, out, debounce)
	return out
}

func connectLoop(ctx context.Context, url string, raw chan<- Event, logger *slog.Logger) {
	defer close(raw)
	dialer := &websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	backoff := minBackoff
	connected := false

	for {
		conn, _, err := dialer.DialContext(ctx, url, nil)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Debug("change socket unavailable", "url", url, "retry_in", backoff, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}

		backoff = minBackoff
		logger.Debug("change socket connected", "url", url)
		if connected {
			notify(raw, Event{Type: TypeContentChanged})
		}
		connected = true

		readLoop(ctx, conn, raw)
		if ctx.Err() != nil {
			return
		}
		logger.Debug("change socket lost", "url", url)
	}
}

// readLoop forwards content.changed events until the connection fails or
// ctx ends.
func readLoop(ctx context.Context, conn *websocket.Conn, raw chan<- Event) {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
		case <-stop:
		}
		_ = conn.Close()
	}()

	for {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			return
		}
		if ev.Type == TypeContentChanged {
			notify(raw, ev)
		}
	}
}

func debounceLoop(raw <-chan Event, out chan<- Event, debounce time.Duration) {
	defer close(out)
	var timer *time.Timer
	jitterRange := int64(debounce / 2)

	for {
		select {
		case _, ok := <-raw:
			if !ok {
				if timer != nil {
					timer.Stop()
				}
				return
			}
			d := debounce
			if jitterRange > 0 {
				d += time.Duration(rand.Int64N(jitterRange))
			}
			if timer == nil {
				timer = time.NewTimer(d)
			} else {
				timer.Reset(d)
			}
		case <-timerChan(timer):
			timer = nil
			notify(out, Event{Type: TypeContentChanged})
		}
	}
}

func notify(ch chan<- Event, ev Event) {
	select {
	case ch <- ev:
	default:
	}
}

// timerChan returns the timer's channel, or a nil channel if timer is nil.
func timerChan(t *time.Timer) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.C
}
