// Package scheduler runs periodic recomputation with an owned cancellation
// handle.
package scheduler

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval replaces a non-positive interval passed to Every.
const DefaultInterval = time.Minute

// Handle controls a running schedule. It is acquired when a consumer
// becomes active and must be stopped on teardown.
type Handle struct {
	cancel  context.CancelFunc
	trigger chan struct{}
	done    chan struct{}
	once    sync.Once
}

// Every runs fn immediately and then once per interval until ctx is
// cancelled or Stop is called. Runs never overlap. A non-positive interval
// falls back to DefaultInterval.
func Every(ctx context.Context, interval time.Duration, fn func(context.Context)) *Handle {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{
		cancel:  cancel,
		trigger: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}

	go h.loop(ctx, interval, fn)
	return h
}

func (h *Handle) loop(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	defer close(h.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	fn(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		case <-h.trigger:
			fn(ctx)
			ticker.Reset(interval)
		}
	}
}

// Trigger requests an immediate run, used when inputs change. Requests
// made while one is already pending are coalesced.
func (h *Handle) Trigger() {
	select {
	case h.trigger <- struct{}{}:
	default:
	}
}

// Stop cancels the schedule and waits for an in-flight run to return.
// It is safe to call more than once.
func (h *Handle) Stop() {
	h.once.Do(h.cancel)
	<-h.done
}

// Done is closed once the schedule has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}
