package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jpillora/backoff"
)

const (
	writeTimeout = 10 * time.Second
	pongTimeout  = 90 * time.Second
)

// Config identifies the bot to the recommendation feed.
type Config struct {
	URL       string
	Player    string
	Version   string
	SessionID string
}

// Client maintains the websocket connection to the recommendation feed,
// reconnecting with backoff when it drops. Decoded events come out of
// Events(); outbound frames go through Send.
type Client struct {
	cfg    Config
	logger *slog.Logger
	dialer *websocket.Dialer

	events   chan Event
	outbound chan Envelope
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		cfg:      cfg,
		logger:   logger,
		dialer:   websocket.DefaultDialer,
		events:   make(chan Event, 128),
		outbound: make(chan Envelope, 64),
	}
}

func (c *Client) Events() <-chan Event {
	return c.events
}

// Send queues an outbound frame. The payload is JSON encoded into the
// envelope's data field. Frames queued while disconnected go out after the
// next successful dial.
func (c *Client) Send(msgType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s payload: %w", msgType, err)
	}
	select {
	case c.outbound <- Envelope{Type: msgType, Data: string(data)}:
		return nil
	default:
		return fmt.Errorf("outbound feed queue full, dropping %s", msgType)
	}
}

func (c *Client) endpoint() (string, error) {
	u, err := url.Parse(c.cfg.URL)
	if err != nil {
		return "", fmt.Errorf("feed url: %w", err)
	}
	q := u.Query()
	q.Set("player", c.cfg.Player)
	q.Set("version", c.cfg.Version)
	q.Set("SId", c.cfg.SessionID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Run dials the feed and pumps messages until the context is cancelled.
// Connection drops are retried with exponential backoff.
func (c *Client) Run(ctx context.Context) error {
	endpoint, err := c.endpoint()
	if err != nil {
		return err
	}

	b := &backoff.Backoff{
		Min:    time.Second,
		Max:    time.Minute,
		Factor: 2,
		Jitter: true,
	}
	for {
		conn, _, err := c.dialer.DialContext(ctx, endpoint, nil)
		if err != nil {
			wait := b.Duration()
			c.logger.Warn("Feed connection failed",
				slog.Any("error", err),
				slog.Duration("retry_in", wait),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
				continue
			}
		}
		b.Reset()
		c.logger.Info("Connected to recommendation feed", slog.String("player", c.cfg.Player))

		err = c.pump(ctx, conn)
		conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warn("Feed connection lost", slog.Any("error", err))
	}
}

func (c *Client) pump(ctx context.Context, conn *websocket.Conn) error {
	conn.SetReadDeadline(time.Now().Add(pongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	readErr := make(chan error, 1)
	go func() {
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			conn.SetReadDeadline(time.Now().Add(pongTimeout))
			events, err := Decode(raw)
			if err != nil {
				c.logger.Debug("Dropping undecodable feed frame", slog.Any("error", err))
				continue
			}
			for _, e := range events {
				select {
				case c.events <- e:
				default:
					c.logger.Warn("Feed event buffer full, dropping event")
				}
			}
		}
	}()

	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			return ctx.Err()
		case err := <-readErr:
			return err
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return err
			}
		case env := <-c.outbound:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(env); err != nil {
				return err
			}
		}
	}
}
