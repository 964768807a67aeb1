package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/erptask/taskdeck/internal/core/domain"
	"github.com/erptask/taskdeck/internal/core/ports"
)

func (c *Client) ListTasks(ctx context.Context, filter ports.TaskFilter) ([]domain.Task, error) {
	q := url.Values{}
	if filter.Status != "" {
		q.Set("status_filter", filter.Status)
	}
	if filter.Priority != "" {
		q.Set("priority_filter", filter.Priority)
	}
	if filter.AssignedTo > 0 {
		q.Set("assigned_to", strconv.Itoa(filter.AssignedTo))
	}

	var tasks []domain.Task
	if err := c.do(ctx, "tasks.list", http.MethodGet, "/api/tasks/", q, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) MyTasks(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := c.do(ctx, "tasks.mine", http.MethodGet, "/api/tasks/my-tasks", nil, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) GetTask(ctx context.Context, id int) (*domain.Task, error) {
	var task domain.Task
	path := fmt.Sprintf("/api/tasks/%d", id)
	if err := c.do(ctx, "tasks.get", http.MethodGet, path, nil, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) CreateTask(ctx context.Context, in ports.CreateTaskInput) (*domain.Task, error) {
	var task domain.Task
	if err := c.do(ctx, "tasks.create", http.MethodPost, "/api/tasks/", nil, in, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) UpdateTask(ctx context.Context, id int, in ports.UpdateTaskInput) (*domain.Task, error) {
	var task domain.Task
	path := fmt.Sprintf("/api/tasks/%d", id)
	if err := c.do(ctx, "tasks.update", http.MethodPut, path, nil, in, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) UpdateTaskStatus(ctx context.Context, id int, status domain.TaskStatus) error {
	path := fmt.Sprintf("/api/tasks/%d/status", id)
	body := map[string]string{"status": string(status)}
	return c.do(ctx, "tasks.status", http.MethodPatch, path, nil, body, nil)
}

func (c *Client) DeleteTask(ctx context.Context, id int) error {
	path := fmt.Sprintf("/api/tasks/%d", id)
	return c.do(ctx, "tasks.delete", http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) DashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	var stats domain.DashboardStats
	if err := c.do(ctx, "tasks.dashboard_stats", http.MethodGet, "/api/tasks/dashboard-stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) ManagerStats(ctx context.Context) (*domain.ManagerStats, error) {
	var stats domain.ManagerStats
	if err := c.do(ctx, "tasks.manager_stats", http.MethodGet, "/api/tasks/manager-stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) HighRiskTasks(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := c.do(ctx, "tasks.high_risk", http.MethodGet, "/api/tasks/high-risk", nil, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) OverdueTasks(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := c.do(ctx, "tasks.overdue", http.MethodGet, "/api/tasks/overdue", nil, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}
