package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/erptask/taskdeck/internal/core/domain"
	"github.com/erptask/taskdeck/internal/core/ports"
	"github.com/erptask/taskdeck/internal/core/reconcile"
	"github.com/erptask/taskdeck/internal/metrics"
)

// fetchFunc produces the authoritative contents of a view's collection.
type fetchFunc[T reconcile.Entity] func(ctx context.Context) ([]T, error)

// envelopeFunc applies one push envelope to a view. It is only ever invoked
// from the view's single dispatch goroutine, so applications never interleave.
type envelopeFunc func(ctx context.Context, env domain.Envelope)

// liveView is the shared reconciler pattern behind the dashboard,
// notifications, and audit views: one initial authoritative fetch, one
// dedicated event channel, and a bounded keyed collection mutated only by
// merge rules or full refetches.
//
// A generation counter suppresses stale results: any fetch started before
// Close (or before a later restart) is discarded instead of applied.
type liveView[T reconcile.Entity] struct {
	name   string
	dialer ports.EventDialer
	log    zerolog.Logger

	mu     sync.Mutex
	gen    uint64
	closed bool
	items  *reconcile.Collection[T]
	ch     ports.EventChannel
	done   chan struct{}
}

func newLiveView[T reconcile.Entity](name string, maxLen int, dialer ports.EventDialer, log zerolog.Logger) liveView[T] {
	return liveView[T]{
		name:   name,
		dialer: dialer,
		log:    log.With().Str("view", name).Logger(),
		items:  reconcile.New[T](maxLen),
		done:   make(chan struct{}),
	}
}

// start performs the initial fetch, opens the view's event channel, and
// launches the dispatch loop. A fetch failure is returned to the caller; a
// dial failure is logged and the view keeps serving the fetched snapshot
// without live updates (best-effort delivery, no reconnect).
func (v *liveView[T]) start(ctx context.Context, fetch fetchFunc[T], handle envelopeFunc) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return domain.ErrChannelClosed
	}
	gen := v.gen
	v.mu.Unlock()

	items, err := fetch(ctx)
	if err != nil {
		return fmt.Errorf("%s: initial fetch: %w", v.name, err)
	}
	if !v.replaceAll(gen, items, "start") {
		// Torn down while the fetch was in flight; the result is discarded.
		close(v.done)
		return nil
	}

	ch, err := v.dialer.Dial(ctx)
	if err != nil {
		v.log.Warn().Err(err).Msg("live channel unavailable, view is fetch-only")
		close(v.done)
		return nil
	}

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		_ = ch.Close()
		close(v.done)
		return nil
	}
	v.ch = ch
	v.mu.Unlock()

	go v.loop(ctx, ch, handle)
	return nil
}

// loop is the view's single logical thread: envelopes are applied strictly in
// arrival order, each to completion, with no batching or reordering.
func (v *liveView[T]) loop(ctx context.Context, ch ports.EventChannel, handle envelopeFunc) {
	defer close(v.done)
	for env := range ch.Events() {
		v.mu.Lock()
		closed := v.closed
		v.mu.Unlock()
		if closed {
			break // no dispatch after Close, even for buffered frames
		}
		handle(ctx, env)
	}
	v.log.Debug().Msg("event channel drained")
}

// Close disposes the view: the channel is shut, no further envelopes are
// dispatched, and any in-flight fetch result is discarded. Idempotent.
func (v *liveView[T]) Close() error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil
	}
	v.closed = true
	v.gen++
	ch := v.ch
	v.mu.Unlock()

	if ch != nil {
		return ch.Close()
	}
	return nil
}

// Done is closed once the dispatch loop has fully stopped. Views that never
// connected close it at start.
func (v *liveView[T]) Done() <-chan struct{} { return v.done }

// Snapshot returns a render-safe copy of the collection.
func (v *liveView[T]) Snapshot() []T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.items.Snapshot()
}

// Len returns the number of retained entities.
func (v *liveView[T]) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.items.Len()
}

func (v *liveView[T]) upsert(e T) {
	v.mu.Lock()
	inserted := v.items.Upsert(e)
	size := v.items.Len()
	v.mu.Unlock()

	action := "replace"
	if inserted {
		action = "insert"
	}
	metrics.ReconcileAppliedTotal.WithLabelValues(v.name, action).Inc()
	metrics.CollectionSize.WithLabelValues(v.name).Set(float64(size))
}

func (v *liveView[T]) remove(id int) {
	v.mu.Lock()
	removed := v.items.Remove(id)
	size := v.items.Len()
	v.mu.Unlock()

	action := "noop"
	if removed {
		action = "remove"
	}
	metrics.ReconcileAppliedTotal.WithLabelValues(v.name, action).Inc()
	metrics.CollectionSize.WithLabelValues(v.name).Set(float64(size))
}

// replaceAll swaps the collection for an authoritative snapshot unless the
// view was closed or restarted since gen was read. Reports whether applied.
func (v *liveView[T]) replaceAll(gen uint64, items []T, trigger string) bool {
	v.mu.Lock()
	if v.closed || v.gen != gen {
		v.mu.Unlock()
		return false
	}
	v.items.Replace(items)
	size := v.items.Len()
	v.mu.Unlock()

	metrics.RefetchTotal.WithLabelValues(v.name, trigger).Inc()
	metrics.CollectionSize.WithLabelValues(v.name).Set(float64(size))
	return true
}

// refetch runs fetch and applies the result with stale suppression. Failures
// are logged, not surfaced: background sync errors must not disrupt the view.
func (v *liveView[T]) refetch(ctx context.Context, fetch fetchFunc[T], trigger string) {
	v.mu.Lock()
	gen := v.gen
	closed := v.closed
	v.mu.Unlock()
	if closed {
		return
	}

	items, err := fetch(ctx)
	if err != nil {
		v.log.Warn().Err(err).Str("trigger", trigger).Msg("refetch failed")
		return
	}
	v.replaceAll(gen, items, trigger)
}

// decodeEnvelope unmarshals an envelope payload. Malformed frames are logged
// and dropped without mutating any collection.
func decodeEnvelope[P any](log zerolog.Logger, env domain.Envelope, out *P) bool {
	if err := json.Unmarshal(env.Data, out); err != nil {
		log.Warn().Err(err).Str("type", env.Type).Msg("malformed envelope payload")
		metrics.EventsDroppedTotal.WithLabelValues("malformed").Inc()
		return false
	}
	return true
}
