package ports

import (
	"context"
	"time"

	"github.com/erptask/taskdeck/internal/core/domain"
)

// AuthAPI is the authentication slice of the REST gateway.
type AuthAPI interface {
	// Login exchanges credentials for a bearer token plus the resolved profile.
	Login(ctx context.Context, email, password string) (*domain.Credential, error)
	// Me resolves the profile behind the current token.
	Me(ctx context.Context) (*domain.User, error)
}

// TaskFilter carries the optional query parameters of the task list endpoint.
type TaskFilter struct {
	Status     string // optional: filter by task status
	Priority   string // optional: filter by priority band
	AssignedTo int    // optional: 0 = no filter
}

// CreateTaskInput is the payload for creating a task.
type CreateTaskInput struct {
	Title         string    `json:"title" validate:"required"`
	Description   string    `json:"description,omitempty"`
	Priority      string    `json:"priority,omitempty"`
	DueDate       time.Time `json:"due_date" validate:"required"`
	AssignedTo    int       `json:"assigned_to" validate:"required,gt=0"`
	DependencyIDs []int     `json:"dependency_ids,omitempty"`
}

// UpdateTaskInput is a partial update; nil fields are left untouched.
type UpdateTaskInput struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	Status      *string    `json:"status,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	AssignedTo  *int       `json:"assigned_to,omitempty"`
}

// TaskAPI is the task slice of the REST gateway.
type TaskAPI interface {
	ListTasks(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	MyTasks(ctx context.Context) ([]domain.Task, error)
	GetTask(ctx context.Context, id int) (*domain.Task, error)
	CreateTask(ctx context.Context, in CreateTaskInput) (*domain.Task, error)
	UpdateTask(ctx context.Context, id int, in UpdateTaskInput) (*domain.Task, error)
	UpdateTaskStatus(ctx context.Context, id int, status domain.TaskStatus) error
	DeleteTask(ctx context.Context, id int) error
	DashboardStats(ctx context.Context) (*domain.DashboardStats, error)
	ManagerStats(ctx context.Context) (*domain.ManagerStats, error)
	HighRiskTasks(ctx context.Context) ([]domain.Task, error)
	OverdueTasks(ctx context.Context) ([]domain.Task, error)
}

// BroadcastInput carries a message sent to all users, or to one recipient
// when RecipientEmail is set. The client imposes no role guard here; the
// backend is authoritative.
type BroadcastInput struct {
	Type           string `json:"type" validate:"required"`
	Message        string `json:"message" validate:"required"`
	Channel        string `json:"channel,omitempty"`
	RecipientEmail string `json:"recipient_email,omitempty" validate:"omitempty,email"`
}

// NotificationAPI is the notification slice of the REST gateway.
type NotificationAPI interface {
	ListNotifications(ctx context.Context, unreadOnly bool) ([]domain.Notification, error)
	UnreadCount(ctx context.Context) (int, error)
	MarkRead(ctx context.Context, ids []int) error
	MarkAllRead(ctx context.Context) error
	DeleteNotification(ctx context.Context, id int) error
	Broadcast(ctx context.Context, in BroadcastInput) error
}

// AuditFilter carries the query parameters of the audit list endpoint.
type AuditFilter struct {
	Action     string // optional
	EntityType string // optional: task, user, notification
	UserID     int    // optional: 0 = no filter
	Days       int    // lookback window; backend defaults to 7
	Limit      int    // backend defaults to 100, caps at 500
}

// AuditAPI is the audit slice of the REST gateway.
type AuditAPI interface {
	ListAuditLogs(ctx context.Context, filter AuditFilter) ([]domain.AuditEntry, error)
	MyActivity(ctx context.Context, days int) ([]domain.AuditEntry, error)
}

// UserAPI is the user-management slice of the REST gateway (admin surface).
type UserAPI interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	GetUser(ctx context.Context, id int) (*domain.User, error)
}
