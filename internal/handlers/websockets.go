package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"filling_line/internal/tags"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12
	defaultInterval  = 1 * time.Second
	maxInterval      = 10 * time.Second
	maxIntervalMilli = 10_000
)

// Message types pushed to subscribers.
const (
	wsTypeTags    = "tags"
	wsTypeChanges = "changes"
)

type wsEnvelope struct {
	Type    string      `json:"type"`
	Version uint64      `json:"version,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// CheckOrigin is left open; browser origins are filtered by the CORS layer.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// subscription tracks what one client has already been sent.
type subscription struct {
	conn    *websocket.Conn
	version uint64
	sent    tags.Values
}

// wsConnect streams the address space: one full "tags" message on connect,
// then a "changes" message per interval carrying only tags whose value moved.
func (h *Handler) wsConnect(c *gin.Context) {
	interval := h.parseInterval(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go h.startReader(conn, done)

	ticker := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ping.Stop()
	}()

	sub := &subscription{conn: conn}
	ctx := c.Request.Context()
	if err := h.sendFull(ctx, sub); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed_initial", "err", err)
		}
		return
	}

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		case <-ticker.C:
			if err := h.sendChanges(ctx, sub); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err)
				}
				return
			}
		}
	}
}

// parseInterval reads ?interval=2s or ?interval_ms=2000 with bounds.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= maxInterval {
			return d
		}
	}
	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 && v <= maxIntervalMilli {
			return time.Duration(v) * time.Millisecond
		}
	}
	return defaultInterval
}

// startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if h.log != nil {
				h.log.Infow("ws_read_closed", "err", err)
			}
			return
		}
	}
}

func (h *Handler) sendFull(ctx context.Context, sub *subscription) error {
	f, err := h.services.Monitoring.GetTags(ctx)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_get_tags_failed", "err", err)
		}
		return err
	}
	sub.version, sub.sent = f.Version, f.Values
	return sub.write(wsEnvelope{Type: wsTypeTags, Version: f.Version, Data: f.Map()})
}

// sendChanges writes nothing when the frame has not advanced or no tag
// differs from what the client last received.
func (h *Handler) sendChanges(ctx context.Context, sub *subscription) error {
	f, err := h.services.Monitoring.GetTags(ctx)
	if err != nil {
		return err
	}
	if f.Version <= sub.version {
		return nil
	}
	changed := tags.Diff(&sub.sent, &f.Values)
	sub.version, sub.sent = f.Version, f.Values
	if len(changed) == 0 {
		return nil
	}
	data := make(map[string]tags.Value, len(changed))
	for _, id := range changed {
		data[id.Name()] = f.Values[id]
	}
	return sub.write(wsEnvelope{Type: wsTypeChanges, Version: f.Version, Data: data})
}

func (s *subscription) write(env wsEnvelope) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(env)
}
