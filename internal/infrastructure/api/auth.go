package api

import (
	"context"
	"net/http"

	"github.com/erptask/taskdeck/internal/core/domain"
)

// tokenResponse is the backend's login envelope.
type tokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        domain.User `json:"user"`
}

// Login exchanges credentials for a bearer token and the resolved profile.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.Credential, error) {
	body := map[string]string{"email": email, "password": password}

	var resp tokenResponse
	if err := c.do(ctx, "auth.login", http.MethodPost, "/api/users/login", nil, body, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, &domain.APIError{Status: http.StatusBadGateway, Detail: "login response missing token"}
	}
	return &domain.Credential{Token: resp.AccessToken, User: resp.User}, nil
}

// Me resolves the profile behind the current token.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, "auth.me", http.MethodGet, "/api/users/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
