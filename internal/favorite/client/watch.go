package client

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Event is a favorite change pushed by the server to every session of the
// user.
type Event struct {
	Type   string    `json:"type"`
	MaidID string    `json:"maid_id"`
	At     time.Time `json:"at"`
}

// Watch streams favorite changes until ctx ends or the connection drops.
// fn runs on the reading goroutine.
func (c *Client) Watch(ctx context.Context, fn func(Event)) error {
	u, err := url.Parse(c.baseURL + "/api/v1/ws/favorites")
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	q := u.Query()
	q.Set("token", c.token)
	u.RawQuery = q.Encode()

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(err.Error())}
		}
		return err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		conn.Close()
	})
	defer stop()

	for {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}
		fn(ev)
	}
}
