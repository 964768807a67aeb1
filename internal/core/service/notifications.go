package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/erptask/taskdeck/internal/core/domain"
	"github.com/erptask/taskdeck/internal/core/ports"
	"github.com/erptask/taskdeck/internal/metrics"
)

// notificationsCap matches the backend's list endpoint, which returns at most
// the 50 most recent notifications.
const notificationsCap = 50

// NotificationsView maintains the current user's most recent notifications
// from an initial fetch plus notification-changed/removed push envelopes.
// The unread count is derived from the collection (the single source of
// truth), with interval polling kept only as a fallback refresh.
type NotificationsView struct {
	liveView[domain.Notification]
	api    ports.NotificationAPI
	userID int
	poll   time.Duration

	quit     chan struct{}
	stopOnce sync.Once
}

func NewNotificationsView(api ports.NotificationAPI, dialer ports.EventDialer, userID int, poll time.Duration, log zerolog.Logger) *NotificationsView {
	return &NotificationsView{
		liveView: newLiveView[domain.Notification]("notifications", notificationsCap, dialer, log),
		api:      api,
		userID:   userID,
		poll:     poll,
		quit:     make(chan struct{}),
	}
}

// Start fetches the authoritative list, subscribes to push events, and (when
// polling is enabled) launches the fallback unread-count probe.
func (v *NotificationsView) Start(ctx context.Context) error {
	if err := v.start(ctx, v.fetch, v.handle); err != nil {
		return err
	}
	if v.poll > 0 {
		go v.pollLoop(ctx)
	}
	return nil
}

// Close stops the poll loop and disposes the event channel. Idempotent.
func (v *NotificationsView) Close() error {
	v.stopOnce.Do(func() { close(v.quit) })
	return v.liveView.Close()
}

// UnreadCount is derived from the reconciled collection.
func (v *NotificationsView) UnreadCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.items.Count(func(n domain.Notification) bool { return !n.IsRead })
}

// MarkRead flags the given notifications as read on the backend and folds the
// result into the collection so the unread count settles immediately.
func (v *NotificationsView) MarkRead(ctx context.Context, ids []int) error {
	if err := v.api.MarkRead(ctx, ids); err != nil {
		return err
	}
	v.mu.Lock()
	for _, id := range ids {
		if n, ok := v.items.Get(id); ok {
			n.IsRead = true
			v.items.Upsert(n)
		}
	}
	v.mu.Unlock()
	return nil
}

func (v *NotificationsView) fetch(ctx context.Context) ([]domain.Notification, error) {
	return v.api.ListNotifications(ctx, false)
}

func (v *NotificationsView) handle(ctx context.Context, env domain.Envelope) {
	switch env.Type {
	case domain.EventNotificationChanged:
		var n domain.Notification
		if !decodeEnvelope(v.log, env, &n) {
			return
		}
		// The broadcast socket carries every user's notifications; only the
		// viewer's own mutate this collection.
		if n.UserID != v.userID {
			metrics.EventsDroppedTotal.WithLabelValues("filtered").Inc()
			return
		}
		v.upsert(n)

	case domain.EventNotificationRemoved:
		var r domain.Removal
		if !decodeEnvelope(v.log, env, &r) {
			return
		}
		v.remove(r.ID)

	default:
		metrics.EventsDroppedTotal.WithLabelValues("filtered").Inc()
	}
}

// pollLoop is the fallback authority check: when the backend's unread count
// disagrees with the derived one (a push was lost), the whole list is
// refetched. Poll failures are background noise, logged and ignored.
func (v *NotificationsView) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(v.poll)
	defer ticker.Stop()

	for {
		select {
		case <-v.quit:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			server, err := v.api.UnreadCount(ctx)
			if err != nil {
				v.log.Debug().Err(err).Msg("unread-count poll failed")
				continue
			}
			if server != v.UnreadCount() {
				v.refetch(ctx, v.fetch, "poll_drift")
			}
		}
	}
}
