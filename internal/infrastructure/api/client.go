// Package api implements the REST gateway client: the single HTTP entry
// point to the task backend. It attaches the bearer credential, classifies
// failures into the domain error taxonomy, and triggers forced session
// expiry when the backend rejects the token.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/erptask/taskdeck/internal/core/domain"
	"github.com/erptask/taskdeck/internal/core/ports"
	"github.com/erptask/taskdeck/internal/metrics"
)

// Client is the gateway. It implements ports.AuthAPI, ports.TaskAPI,
// ports.NotificationAPI, ports.AuditAPI, and ports.UserAPI.
type Client struct {
	base  *url.URL
	http  *http.Client
	creds ports.CredentialStore
	log   zerolog.Logger

	// onAuthExpired fires once per 401 before the call returns. Wired to
	// Session.ForceExpire so expiry is handled centrally, never per call site.
	onAuthExpired func()
}

func NewClient(baseURL string, timeout time.Duration, creds ports.CredentialStore, log zerolog.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("api: parse base url: %w", err)
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		base:  u,
		http:  &http.Client{Timeout: timeout},
		creds: creds,
		log:   log,
	}, nil
}

// OnAuthExpired registers the forced-expiry hook.
func (c *Client) OnAuthExpired(hook func()) { c.onAuthExpired = hook }

// detailEnvelope is the backend's error body: {"detail": "<message>"}.
type detailEnvelope struct {
	Detail string `json:"detail"`
}

// do issues one request and decodes the response into out (nil = discard).
// endpoint is the logical name used for metrics, path is relative to the
// base URL.
func (c *Client) do(ctx context.Context, endpoint, method, path string, query url.Values, body, out any) error {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode request: %w", err)
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), payload)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	hadToken := false
	if cred := c.creds.Get(); cred != nil {
		req.Header.Set("Authorization", "Bearer "+cred.Token)
		hadToken = true
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.GatewayRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GatewayRequestsTotal.WithLabelValues(endpoint, "transport").Inc()
		return fmt.Errorf("api: %s: %w: %v", endpoint, domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent:
		metrics.GatewayRequestsTotal.WithLabelValues(endpoint, "ok").Inc()
		return nil

	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				metrics.GatewayRequestsTotal.WithLabelValues(endpoint, "transport").Inc()
				return fmt.Errorf("api: %s: decode response: %w: %v", endpoint, domain.ErrTransport, err)
			}
		}
		metrics.GatewayRequestsTotal.WithLabelValues(endpoint, "ok").Inc()
		return nil

	case resp.StatusCode == http.StatusUnauthorized:
		metrics.GatewayRequestsTotal.WithLabelValues(endpoint, "auth_expired").Inc()
		// A 401 against an attached token means the session expired; a 401
		// without one is an ordinary rejection (bad login) and must not
		// clear an unrelated session.
		if hadToken {
			c.log.Warn().Str("endpoint", endpoint).Msg("token rejected, expiring session")
			if c.onAuthExpired != nil {
				c.onAuthExpired()
			}
		}
		return &domain.APIError{Status: resp.StatusCode, Detail: readDetail(resp.Body)}

	default:
		metrics.GatewayRequestsTotal.WithLabelValues(endpoint, "api_error").Inc()
		return &domain.APIError{Status: resp.StatusCode, Detail: readDetail(resp.Body)}
	}
}

// readDetail pulls the human-readable message out of an error body. A body
// that isn't the expected envelope yields an empty detail, never an error.
func readDetail(r io.Reader) string {
	var env detailEnvelope
	if err := json.NewDecoder(io.LimitReader(r, 64<<10)).Decode(&env); err != nil {
		return ""
	}
	return env.Detail
}
