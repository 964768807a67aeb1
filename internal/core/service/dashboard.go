package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/erptask/taskdeck/internal/core/domain"
	"github.com/erptask/taskdeck/internal/core/ports"
	"github.com/erptask/taskdeck/internal/metrics"
)

// DashboardView maintains the task list plus the server-computed aggregate
// stats. The list merges task-changed/removed envelopes incrementally; the
// stats block is always refetched, never derived client-side, because partial
// state (tasks of other users, escalation side effects) makes a local
// recomputation ambiguous.
type DashboardView struct {
	liveView[domain.Task]
	api ports.TaskAPI

	statsMu sync.Mutex
	stats   domain.DashboardStats
}

func NewDashboardView(api ports.TaskAPI, dialer ports.EventDialer, log zerolog.Logger) *DashboardView {
	return &DashboardView{
		liveView: newLiveView[domain.Task]("dashboard", 0, dialer, log),
		api:      api,
	}
}

// Start fetches tasks and stats, then subscribes to push events.
func (v *DashboardView) Start(ctx context.Context) error {
	if err := v.start(ctx, v.fetchTasks, v.handle); err != nil {
		return err
	}
	v.refreshStats(ctx)
	return nil
}

// Stats returns the latest server-computed aggregate block.
func (v *DashboardView) Stats() domain.DashboardStats {
	v.statsMu.Lock()
	defer v.statsMu.Unlock()
	return v.stats
}

func (v *DashboardView) fetchTasks(ctx context.Context) ([]domain.Task, error) {
	return v.api.ListTasks(ctx, ports.TaskFilter{})
}

func (v *DashboardView) handle(ctx context.Context, env domain.Envelope) {
	switch env.Type {
	case domain.EventTaskChanged:
		var t domain.Task
		if !decodeEnvelope(v.log, env, &t) {
			return
		}
		v.upsert(t)
		v.refreshStats(ctx)

	case domain.EventTaskRemoved:
		var r domain.Removal
		if !decodeEnvelope(v.log, env, &r) {
			return
		}
		v.remove(r.ID)
		v.refreshStats(ctx)

	case domain.EventTasksRefresh:
		// Coarse signal without a full entity payload: refetch everything
		// rather than guess at a partial merge.
		v.refetch(ctx, v.fetchTasks, "coarse_event")
		v.refreshStats(ctx)

	default:
		metrics.EventsDroppedTotal.WithLabelValues("filtered").Inc()
	}
}

// refreshStats reloads the aggregate block. Failures are logged, not
// surfaced: a stale stats header must not take the dashboard down.
func (v *DashboardView) refreshStats(ctx context.Context) {
	v.mu.Lock()
	closed := v.closed
	v.mu.Unlock()
	if closed {
		return
	}

	stats, err := v.api.DashboardStats(ctx)
	if err != nil {
		v.log.Warn().Err(err).Msg("stats refresh failed")
		return
	}

	v.mu.Lock()
	closed = v.closed
	v.mu.Unlock()
	if closed {
		return // stale result after teardown
	}

	v.statsMu.Lock()
	v.stats = *stats
	v.statsMu.Unlock()
}
