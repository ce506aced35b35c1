package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	log "github.com/freundallein/queuewatch/chassis/logging"
	"github.com/freundallein/queuewatch/chassis/metrics"
)

// ErrQueryFailed wraps errors of the existence check. The wait is not retried.
var ErrQueryFailed = errors.New("existence query failed")

// Reason - how a wait ended
type Reason int

const (
	reasonUnknown Reason = iota
	TimedOut
	ResourceGone
	Cancelled
	// QueryFailed is returned together with an error wrapping ErrQueryFailed.
	QueryFailed
)

func (r Reason) String() string {
	switch r {
	case TimedOut:
		return "timed_out"
	case ResourceGone:
		return "resource_gone"
	case Cancelled:
		return "cancelled"
	case QueryFailed:
		return "query_failed"
	default:
		return "unknown"
	}
}

// ListFunc returns the ids of every existing resource.
type ListFunc func(ctx context.Context) ([]string, error)

type sleepFunc func(ctx context.Context, d time.Duration) error

// Option ...
type Option func(*PollingWatcher)

// WithCancelSignal sets the predicate sampled once per tick.
func WithCancelSignal(cancelled func() bool) Option {
	return func(w *PollingWatcher) {
		if cancelled != nil {
			w.cancelled = cancelled
		}
	}
}

// WithProgress sets where the per tick progress dot is written.
func WithProgress(out io.Writer) Option {
	return func(w *PollingWatcher) {
		if out != nil {
			w.progress = out
		}
	}
}

// PollingWatcher blocks until a resource disappears from a listing,
// the deadline is used up, or the cancel signal fires.
type PollingWatcher struct {
	list      ListFunc
	cancelled func() bool
	progress  io.Writer
	sleep     sleepFunc
}

// NewPollingWatcher ...
func NewPollingWatcher(list ListFunc, opts ...Option) *PollingWatcher {
	w := &PollingWatcher{
		list:      list,
		cancelled: func() bool { return false },
		progress:  io.Discard,
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// pollState lives for a single Wait call.
type pollState struct {
	target   string
	interval int
	maxTicks int
	ticks    int
	found    bool
}

// Wait checks every pollInterval seconds whether target is still listed,
// for at most ceil(maxSeconds/pollInterval) ticks. A pollInterval <= 0 means 1 second.
// The timeout is counted in ticks, slow queries stretch the real elapsed time.
func (w *PollingWatcher) Wait(ctx context.Context, target string, maxSeconds int, pollInterval int) (Reason, error) {
	if pollInterval <= 0 {
		pollInterval = 1
	}
	st := &pollState{
		target:   target,
		interval: pollInterval,
		found:    true,
	}
	if maxSeconds > 0 {
		st.maxTicks = (maxSeconds + pollInterval - 1) / pollInterval
	}
	reason, err := w.run(ctx, st)

	fields := log.Fields{
		"event":  "wait_finished",
		"queue":  target,
		"reason": reason.String(),
		"ticks":  st.ticks,
	}
	if err != nil {
		log.WithFields(fields).Warn(err)
	} else {
		log.WithFields(fields).Debug("wait finished")
	}
	metrics.ObserveWatch(reason.String(), st.ticks)
	return reason, err
}

func (w *PollingWatcher) run(ctx context.Context, st *pollState) (Reason, error) {
	interval := time.Duration(st.interval) * time.Second
	for st.ticks < st.maxTicks {
		fmt.Fprint(w.progress, ".")
		if err := w.sleep(ctx, interval); err != nil {
			return Cancelled, nil
		}
		st.ticks++
		if w.cancelled() {
			return Cancelled, nil
		}
		ids, err := w.list(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return Cancelled, nil
			}
			return QueryFailed, fmt.Errorf("%w: %w", ErrQueryFailed, err)
		}
		st.found = contains(ids, st.target)
		if !st.found {
			return ResourceGone, nil
		}
	}
	return TimedOut, nil
}

func contains(ids []string, target string) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
