package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/erptask/taskdeck/internal/core/domain"
	"github.com/erptask/taskdeck/internal/core/ports"
)

func (c *Client) ListAuditLogs(ctx context.Context, filter ports.AuditFilter) ([]domain.AuditEntry, error) {
	q := url.Values{}
	if filter.Action != "" {
		q.Set("action", filter.Action)
	}
	if filter.EntityType != "" {
		q.Set("entity_type", filter.EntityType)
	}
	if filter.UserID > 0 {
		q.Set("user_id", strconv.Itoa(filter.UserID))
	}
	if filter.Days > 0 {
		q.Set("days", strconv.Itoa(filter.Days))
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}

	var entries []domain.AuditEntry
	if err := c.do(ctx, "audit.list", http.MethodGet, "/api/audit/", q, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) MyActivity(ctx context.Context, days int) ([]domain.AuditEntry, error) {
	q := url.Values{}
	if days > 0 {
		q.Set("days", strconv.Itoa(days))
	}

	var entries []domain.AuditEntry
	if err := c.do(ctx, "audit.my_activity", http.MethodGet, "/api/audit/my-activity", q, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
