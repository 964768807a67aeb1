package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/erptask/taskdeck/internal/core/domain"
	"github.com/erptask/taskdeck/internal/core/ports"
)

func (c *Client) ListNotifications(ctx context.Context, unreadOnly bool) ([]domain.Notification, error) {
	q := url.Values{}
	if unreadOnly {
		q.Set("unread_only", "true")
	}

	var items []domain.Notification
	if err := c.do(ctx, "notifications.list", http.MethodGet, "/api/notifications/", q, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var resp struct {
		UnreadCount int `json:"unread_count"`
	}
	if err := c.do(ctx, "notifications.unread", http.MethodGet, "/api/notifications/unread-count", nil, nil, &resp); err != nil {
		return 0, err
	}
	return resp.UnreadCount, nil
}

func (c *Client) MarkRead(ctx context.Context, ids []int) error {
	body := map[string][]int{"notification_ids": ids}
	return c.do(ctx, "notifications.mark_read", http.MethodPost, "/api/notifications/mark-read", nil, body, nil)
}

func (c *Client) MarkAllRead(ctx context.Context) error {
	return c.do(ctx, "notifications.mark_all_read", http.MethodPost, "/api/notifications/mark-all-read", nil, struct{}{}, nil)
}

func (c *Client) DeleteNotification(ctx context.Context, id int) error {
	path := fmt.Sprintf("/api/notifications/%d", id)
	return c.do(ctx, "notifications.delete", http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) Broadcast(ctx context.Context, in ports.BroadcastInput) error {
	return c.do(ctx, "notifications.broadcast", http.MethodPost, "/api/notifications/send-to-all", nil, in, nil)
}
