package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/erptask/taskdeck/internal/core/domain"
)

func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := c.do(ctx, "users.list", http.MethodGet, "/api/users/", nil, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) GetUser(ctx context.Context, id int) (*domain.User, error) {
	var user domain.User
	path := fmt.Sprintf("/api/users/%d", id)
	if err := c.do(ctx, "users.get", http.MethodGet, path, nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
