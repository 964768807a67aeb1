package domain

import "time"

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusOverdue    TaskStatus = "overdue"
	StatusEscalated  TaskStatus = "escalated"
)

// TaskPriority is the user-assigned priority band.
type TaskPriority string

const (
	PriorityLow      TaskPriority = "low"
	PriorityMedium   TaskPriority = "medium"
	PriorityHigh     TaskPriority = "high"
	PriorityCritical TaskPriority = "critical"
)

// Task is the core work item pushed over the live channel and listed by the
// dashboard. Optional joined fields (assignee, creator) are populated only by
// the full REST representation, never by push payloads.
type Task struct {
	ID              int          `json:"id"`
	Title           string       `json:"title"`
	Description     string       `json:"description,omitempty"`
	Priority        TaskPriority `json:"priority"`
	Status          TaskStatus   `json:"status"`
	DueDate         time.Time    `json:"due_date"`
	ConfidenceScore float64      `json:"confidence_score"`
	PriorityScore   float64      `json:"priority_score"`
	IsEscalated     bool         `json:"is_escalated"`
	AssignedTo      int          `json:"assigned_to"`
	CreatedBy       int          `json:"created_by"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
	CompletedAt     *time.Time   `json:"completed_at,omitempty"`
	Assignee        *User        `json:"assignee,omitempty"`
	Creator         *User        `json:"creator,omitempty"`
}

// EntityID implements reconcile.Entity.
func (t Task) EntityID() int { return t.ID }

// DashboardStats is the aggregate header block of the dashboard view.
// It is server-computed; the client refetches rather than deriving it.
type DashboardStats struct {
	TotalTasks int `json:"total_tasks"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Overdue    int `json:"overdue"`
	HighRisk   int `json:"high_risk"`
}

// ManagerStats is the extended aggregate view available to managers and admins.
type ManagerStats struct {
	TotalTasks         int              `json:"total_tasks"`
	OverdueTasks       int              `json:"overdue_tasks"`
	HighRiskTasks      int              `json:"high_risk_tasks"`
	OverloadedUsers    int              `json:"overloaded_users"`
	TasksPerUser       map[string]int   `json:"tasks_per_user"`
	StatusDistribution map[string]int   `json:"status_distribution"`
	CompletionTrend    []map[string]any `json:"completion_trend"`
}
