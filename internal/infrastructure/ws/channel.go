// Package ws implements the live event channel: one WebSocket connection per
// consumer view against the backend's broadcast endpoint. Delivery is
// best-effort, at most once; a dropped connection silently stops updates
// until the consumer remounts. There is no automatic reconnect.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/erptask/taskdeck/internal/core/domain"
	"github.com/erptask/taskdeck/internal/core/ports"
	"github.com/erptask/taskdeck/internal/metrics"
)

// eventBuffer absorbs bursts (e.g. an agent sweep touching many tasks)
// without blocking the read loop.
const eventBuffer = 64

var knownTypes = map[string]struct{}{
	domain.EventTaskChanged:         {},
	domain.EventTaskRemoved:         {},
	domain.EventNotificationChanged: {},
	domain.EventNotificationRemoved: {},
	domain.EventAuditAppended:       {},
	domain.EventTasksRefresh:        {},
}

// Dialer opens one Channel per consumer view.
type Dialer struct {
	url string
	log zerolog.Logger
}

func NewDialer(wsURL string, log zerolog.Logger) *Dialer {
	return &Dialer{url: wsURL, log: log}
}

// DeriveURL maps the REST base URL onto the broadcast endpoint:
// http(s)://host[:port] → ws(s)://host[:port]/ws.
func DeriveURL(apiBase string) (string, error) {
	u, err := url.Parse(apiBase)
	if err != nil {
		return "", fmt.Errorf("ws: parse api url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws"
	u.RawQuery = ""
	return u.String(), nil
}

// Dial opens the connection and starts the read loop.
func (d *Dialer) Dial(ctx context.Context) (ports.EventChannel, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, d.url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("ws: dial %s: %w", d.url, err)
	}

	ch := &Channel{
		conn:   conn,
		events: make(chan domain.Envelope, eventBuffer),
		quit:   make(chan struct{}),
		log:    d.log,
	}
	go ch.readLoop()
	return ch, nil
}

// Channel is one live connection. Events() is closed when the connection
// drops or Close is called; nothing is delivered after that.
type Channel struct {
	conn   *websocket.Conn
	events chan domain.Envelope
	quit   chan struct{}
	once   sync.Once
	log    zerolog.Logger
}

func (c *Channel) Events() <-chan domain.Envelope { return c.events }

// Close disposes the connection. Idempotent; safe from any goroutine and on
// every teardown path.
func (c *Channel) Close() error {
	var err error
	c.once.Do(func() {
		close(c.quit)
		err = c.conn.Close()
	})
	return err
}

// readLoop is the channel's suspension point: it parks on the next frame,
// parses it into an Envelope, and hands it to the consumer in arrival order.
// Connection errors end the loop without crashing the consumer.
func (c *Channel) readLoop() {
	defer close(c.events)
	defer c.Close()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.quit: // deliberate close, not an error
			default:
				c.log.Warn().Err(err).Msg("live channel disconnected")
			}
			return
		}

		var env domain.Envelope
		if err := json.Unmarshal(raw, &env); err != nil || env.Type == "" {
			c.log.Warn().Err(err).Msg("unparseable push frame")
			metrics.EventsDroppedTotal.WithLabelValues("malformed").Inc()
			continue
		}

		if _, ok := knownTypes[env.Type]; !ok {
			metrics.EventsReceivedTotal.WithLabelValues("unknown").Inc()
			metrics.EventsDroppedTotal.WithLabelValues("unknown_type").Inc()
			continue
		}
		metrics.EventsReceivedTotal.WithLabelValues(env.Type).Inc()

		select {
		case c.events <- env:
		case <-c.quit:
			return
		}
	}
}
