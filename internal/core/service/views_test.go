package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/erptask/taskdeck/internal/core/domain"
	"github.com/erptask/taskdeck/internal/core/ports"
	"github.com/erptask/taskdeck/pkg/logger"
)

// ── test doubles ──────────────────────────────────────────────────────────────

type stubChannel struct {
	events chan domain.Envelope
	once   sync.Once
	closed chan struct{}
}

func newStubChannel() *stubChannel {
	return &stubChannel{
		events: make(chan domain.Envelope, 16),
		closed: make(chan struct{}),
	}
}

func (c *stubChannel) Events() <-chan domain.Envelope { return c.events }

func (c *stubChannel) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *stubChannel) push(t *testing.T, envType string, payload any) {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	c.events <- domain.Envelope{Type: envType, Data: raw}
}

type stubDialer struct {
	ch  *stubChannel
	err error
}

func (d *stubDialer) Dial(_ context.Context) (ports.EventChannel, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.ch, nil
}

type stubNotifAPI struct {
	mu        sync.Mutex
	list      []domain.Notification
	unread    int
	listCalls int
	marked    []int
}

func (a *stubNotifAPI) ListNotifications(_ context.Context, _ bool) ([]domain.Notification, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listCalls++
	out := make([]domain.Notification, len(a.list))
	copy(out, a.list)
	return out, nil
}

func (a *stubNotifAPI) UnreadCount(_ context.Context) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.unread, nil
}

func (a *stubNotifAPI) MarkRead(_ context.Context, ids []int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.marked = append(a.marked, ids...)
	return nil
}

func (a *stubNotifAPI) MarkAllRead(_ context.Context) error               { return nil }
func (a *stubNotifAPI) DeleteNotification(_ context.Context, _ int) error { return nil }
func (a *stubNotifAPI) Broadcast(_ context.Context, _ ports.BroadcastInput) error {
	return nil
}

func (a *stubNotifAPI) calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.listCalls
}

type stubTaskAPI struct {
	mu         sync.Mutex
	tasks      []domain.Task
	stats      domain.DashboardStats
	statsCalls int
	block      chan struct{} // when set, ListTasks parks until closed
}

func (a *stubTaskAPI) ListTasks(_ context.Context, _ ports.TaskFilter) ([]domain.Task, error) {
	if a.block != nil {
		<-a.block
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.Task, len(a.tasks))
	copy(out, a.tasks)
	return out, nil
}

func (a *stubTaskAPI) DashboardStats(_ context.Context) (*domain.DashboardStats, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.statsCalls++
	s := a.stats
	return &s, nil
}

func (a *stubTaskAPI) MyTasks(_ context.Context) ([]domain.Task, error)      { return nil, nil }
func (a *stubTaskAPI) GetTask(_ context.Context, _ int) (*domain.Task, error) { return nil, nil }
func (a *stubTaskAPI) CreateTask(_ context.Context, _ ports.CreateTaskInput) (*domain.Task, error) {
	return nil, nil
}
func (a *stubTaskAPI) UpdateTask(_ context.Context, _ int, _ ports.UpdateTaskInput) (*domain.Task, error) {
	return nil, nil
}
func (a *stubTaskAPI) UpdateTaskStatus(_ context.Context, _ int, _ domain.TaskStatus) error {
	return nil
}
func (a *stubTaskAPI) DeleteTask(_ context.Context, _ int) error               { return nil }
func (a *stubTaskAPI) ManagerStats(_ context.Context) (*domain.ManagerStats, error) {
	return nil, nil
}
func (a *stubTaskAPI) HighRiskTasks(_ context.Context) ([]domain.Task, error) { return nil, nil }
func (a *stubTaskAPI) OverdueTasks(_ context.Context) ([]domain.Task, error)  { return nil, nil }

func (a *stubTaskAPI) setTasks(tasks []domain.Task) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tasks = tasks
}

type stubAuditAPI struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
	filters []ports.AuditFilter
}

func (a *stubAuditAPI) ListAuditLogs(_ context.Context, f ports.AuditFilter) ([]domain.AuditEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.filters = append(a.filters, f)
	out := make([]domain.AuditEntry, len(a.entries))
	copy(out, a.entries)
	return out, nil
}

func (a *stubAuditAPI) MyActivity(_ context.Context, _ int) ([]domain.AuditEntry, error) {
	return nil, nil
}

// waitFor polls cond until it holds or the deadline expires. Push dispatch is
// asynchronous, so assertions on collection state go through here.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met within deadline")
}

func readNotification(id int) domain.Notification {
	return domain.Notification{ID: id, Type: "reminder", Message: "m", UserID: 7, IsRead: true}
}

// ── notifications view ────────────────────────────────────────────────────────

// Three read items, a push for a new unread one, then its removal: the
// collection and the derived unread count track exactly.
func TestNotificationsView_UnreadLifecycle(t *testing.T) {
	api := &stubNotifAPI{list: []domain.Notification{
		readNotification(3), readNotification(2), readNotification(1),
	}}
	ch := newStubChannel()
	v := NewNotificationsView(api, &stubDialer{ch: ch}, 7, 0, logger.Nop())

	if err := v.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer v.Close()

	if v.Len() != 3 || v.UnreadCount() != 0 {
		t.Fatalf("unexpected initial state: len=%d unread=%d", v.Len(), v.UnreadCount())
	}

	ch.push(t, domain.EventNotificationChanged, domain.Notification{
		ID: 4, Type: "alert", Message: "new", UserID: 7, IsRead: false,
	})
	waitFor(t, func() bool { return v.Len() == 4 && v.UnreadCount() == 1 })

	if snap := v.Snapshot(); snap[0].ID != 4 {
		t.Fatalf("new notification must be at the front, got id %d", snap[0].ID)
	}

	ch.push(t, domain.EventNotificationRemoved, domain.Removal{ID: 4})
	waitFor(t, func() bool { return v.Len() == 3 && v.UnreadCount() == 0 })
}

func TestNotificationsView_FiltersOtherUsers(t *testing.T) {
	api := &stubNotifAPI{list: []domain.Notification{readNotification(1)}}
	ch := newStubChannel()
	v := NewNotificationsView(api, &stubDialer{ch: ch}, 7, 0, logger.Nop())

	if err := v.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer v.Close()

	// Someone else's notification, then one of ours: when ours lands, the
	// foreign one must not have been merged (strict arrival order).
	ch.push(t, domain.EventNotificationChanged, domain.Notification{ID: 50, UserID: 99})
	ch.push(t, domain.EventNotificationChanged, domain.Notification{ID: 2, UserID: 7})
	waitFor(t, func() bool { return v.Len() == 2 })

	if _, ok := func() (domain.Notification, bool) {
		for _, n := range v.Snapshot() {
			if n.ID == 50 {
				return n, true
			}
		}
		return domain.Notification{}, false
	}(); ok {
		t.Fatalf("foreign notification leaked into the view")
	}
}

func TestNotificationsView_MarkReadSettlesLocally(t *testing.T) {
	api := &stubNotifAPI{list: []domain.Notification{
		{ID: 1, UserID: 7, IsRead: false},
		{ID: 2, UserID: 7, IsRead: false},
	}}
	ch := newStubChannel()
	v := NewNotificationsView(api, &stubDialer{ch: ch}, 7, 0, logger.Nop())

	if err := v.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer v.Close()

	if err := v.MarkRead(context.Background(), []int{1}); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if v.UnreadCount() != 1 {
		t.Fatalf("expected unread 1 after marking, got %d", v.UnreadCount())
	}
	if len(api.marked) != 1 || api.marked[0] != 1 {
		t.Fatalf("backend not told: %v", api.marked)
	}
}

// The interval poll is a fallback authority: a count mismatch (lost push)
// triggers a full refetch, not a second source of truth.
func TestNotificationsView_PollDriftRefetches(t *testing.T) {
	api := &stubNotifAPI{list: []domain.Notification{readNotification(1)}, unread: 2}
	ch := newStubChannel()
	v := NewNotificationsView(api, &stubDialer{ch: ch}, 7, 5*time.Millisecond, logger.Nop())

	if err := v.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer v.Close()

	waitFor(t, func() bool { return api.calls() >= 2 })
}

// ── dashboard view ────────────────────────────────────────────────────────────

func taskWith(id int, title string) domain.Task {
	return domain.Task{ID: id, Title: title, Status: domain.StatusPending, Priority: domain.PriorityMedium}
}

func TestDashboardView_IncrementalMerge(t *testing.T) {
	api := &stubTaskAPI{tasks: []domain.Task{taskWith(1, "one"), taskWith(2, "two")}}
	ch := newStubChannel()
	v := NewDashboardView(api, &stubDialer{ch: ch}, logger.Nop())

	if err := v.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer v.Close()

	// Update in place: position preserved.
	ch.push(t, domain.EventTaskChanged, taskWith(2, "two v2"))
	waitFor(t, func() bool {
		snap := v.Snapshot()
		return len(snap) == 2 && snap[1].Title == "two v2"
	})

	// New task: prepended.
	ch.push(t, domain.EventTaskChanged, taskWith(3, "three"))
	waitFor(t, func() bool {
		snap := v.Snapshot()
		return len(snap) == 3 && snap[0].ID == 3
	})

	ch.push(t, domain.EventTaskRemoved, domain.Removal{ID: 1})
	waitFor(t, func() bool { return v.Len() == 2 })
}

func TestDashboardView_CoarseEventRefetches(t *testing.T) {
	api := &stubTaskAPI{tasks: []domain.Task{taskWith(1, "one")}}
	ch := newStubChannel()
	v := NewDashboardView(api, &stubDialer{ch: ch}, logger.Nop())

	if err := v.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer v.Close()

	api.setTasks([]domain.Task{taskWith(1, "one"), taskWith(2, "two"), taskWith(3, "three")})
	ch.push(t, domain.EventTasksRefresh, struct{}{})
	waitFor(t, func() bool { return v.Len() == 3 })
}

// ── audit view ────────────────────────────────────────────────────────────────

func auditEntry(id int, entityType string) domain.AuditEntry {
	return domain.AuditEntry{ID: id, Action: "updated", EntityType: entityType, Timestamp: time.Now()}
}

func TestAuditView_AppendAndFilter(t *testing.T) {
	api := &stubAuditAPI{entries: []domain.AuditEntry{auditEntry(2, "task"), auditEntry(1, "task")}}
	ch := newStubChannel()
	v := NewAuditView(api, &stubDialer{ch: ch}, logger.Nop())

	if err := v.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer v.Close()

	v.SetFilter(context.Background(), "task")

	// Mismatching entity type is ignored without mutation; the matching one
	// behind it proves the mismatch was processed and dropped.
	ch.push(t, domain.EventAuditAppended, auditEntry(3, "user"))
	ch.push(t, domain.EventAuditAppended, auditEntry(4, "task"))
	waitFor(t, func() bool {
		snap := v.Snapshot()
		return len(snap) == 3 && snap[0].ID == 4
	})
	for _, e := range v.Snapshot() {
		if e.EntityType != "task" {
			t.Fatalf("filtered entry leaked: %+v", e)
		}
	}
}

func TestAuditView_FilterChangeRefetches(t *testing.T) {
	api := &stubAuditAPI{entries: []domain.AuditEntry{auditEntry(1, "task")}}
	ch := newStubChannel()
	v := NewAuditView(api, &stubDialer{ch: ch}, logger.Nop())

	if err := v.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer v.Close()

	v.SetFilter(context.Background(), "user")

	api.mu.Lock()
	n := len(api.filters)
	last := api.filters[n-1]
	api.mu.Unlock()
	if n != 2 || last.EntityType != "user" {
		t.Fatalf("expected refetch with new filter, got %d fetches, last=%+v", n, last)
	}
}

// ── shared lifecycle ──────────────────────────────────────────────────────────

func TestLiveView_CloseStopsDispatch(t *testing.T) {
	api := &stubNotifAPI{list: []domain.Notification{readNotification(1)}}
	ch := newStubChannel()
	v := NewNotificationsView(api, &stubDialer{ch: ch}, 7, 0, logger.Nop())

	if err := v.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := v.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := v.Close(); err != nil {
		t.Fatalf("second close must be a no-op: %v", err)
	}

	// A frame buffered after teardown must never be dispatched.
	ch.push(t, domain.EventNotificationChanged, domain.Notification{ID: 9, UserID: 7})
	close(ch.events)
	<-v.Done()
	if v.Len() != 1 {
		t.Fatalf("envelope dispatched after close: len=%d", v.Len())
	}
}

func TestLiveView_DialFailureIsFetchOnly(t *testing.T) {
	api := &stubNotifAPI{list: []domain.Notification{readNotification(1)}}
	v := NewNotificationsView(api, &stubDialer{err: errors.New("socket down")}, 7, 0, logger.Nop())

	if err := v.Start(context.Background()); err != nil {
		t.Fatalf("dial failure must not fail start: %v", err)
	}
	defer v.Close()

	if v.Len() != 1 {
		t.Fatalf("fetched snapshot missing: len=%d", v.Len())
	}
}

func TestLiveView_StaleFetchSuppressed(t *testing.T) {
	block := make(chan struct{})
	api := &stubTaskAPI{tasks: []domain.Task{taskWith(1, "one")}, block: block}
	ch := newStubChannel()
	v := NewDashboardView(api, &stubDialer{ch: ch}, logger.Nop())

	started := make(chan error, 1)
	go func() { started <- v.Start(context.Background()) }()

	// Tear the view down while the initial fetch is still parked, then let
	// the fetch complete: its result must be discarded.
	time.Sleep(10 * time.Millisecond)
	if err := v.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	close(block)

	if err := <-started; err != nil {
		t.Fatalf("start: %v", err)
	}
	if v.Len() != 0 {
		t.Fatalf("stale fetch mutated a closed view: len=%d", v.Len())
	}
}
