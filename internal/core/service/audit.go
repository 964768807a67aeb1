package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/erptask/taskdeck/internal/core/domain"
	"github.com/erptask/taskdeck/internal/core/ports"
	"github.com/erptask/taskdeck/internal/metrics"
)

// auditCap bounds the audit trail view to the backend's default page size.
const auditCap = 100

// AuditView maintains the most recent audit entries in reverse-chronological
// order. The feed is append-only: audit-appended envelopes prepend, nothing
// is ever removed except by cap eviction or refetch. An optional entity-type
// filter (task, user, notification) drops non-matching envelopes without
// mutating state; changing the filter refetches.
type AuditView struct {
	liveView[domain.AuditEntry]
	api ports.AuditAPI

	filterMu   sync.Mutex
	entityType string
}

func NewAuditView(api ports.AuditAPI, dialer ports.EventDialer, log zerolog.Logger) *AuditView {
	return &AuditView{
		liveView: newLiveView[domain.AuditEntry]("audit", auditCap, dialer, log),
		api:      api,
	}
}

// Start fetches the authoritative trail and subscribes to push events.
func (v *AuditView) Start(ctx context.Context) error {
	return v.start(ctx, v.fetch, v.handle)
}

// Filter returns the active entity-type filter ("" = all).
func (v *AuditView) Filter() string {
	v.filterMu.Lock()
	defer v.filterMu.Unlock()
	return v.entityType
}

// SetFilter switches the entity-type filter and refetches, since entries
// dropped while a filter was active cannot be reconstructed locally.
func (v *AuditView) SetFilter(ctx context.Context, entityType string) {
	v.filterMu.Lock()
	changed := v.entityType != entityType
	v.entityType = entityType
	v.filterMu.Unlock()

	if changed {
		v.refetch(ctx, v.fetch, "filter_change")
	}
}

func (v *AuditView) fetch(ctx context.Context) ([]domain.AuditEntry, error) {
	return v.api.ListAuditLogs(ctx, ports.AuditFilter{
		EntityType: v.Filter(),
		Limit:      auditCap,
	})
}

func (v *AuditView) handle(_ context.Context, env domain.Envelope) {
	if env.Type != domain.EventAuditAppended {
		metrics.EventsDroppedTotal.WithLabelValues("filtered").Inc()
		return
	}

	var e domain.AuditEntry
	if !decodeEnvelope(v.log, env, &e) {
		return
	}
	if f := v.Filter(); f != "" && e.EntityType != f {
		metrics.EventsDroppedTotal.WithLabelValues("filtered").Inc()
		return
	}
	v.upsert(e)
}
