package ws

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"watchparty/internal/app"
	"watchparty/internal/domain"
	"watchparty/internal/metrics"
)

var ErrBackpressure = errors.New("backpressure")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Controller struct {
	Coord      *app.Coordinator
	ReadLimit  int64
	PingPeriod time.Duration
}

func NewController(coord *app.Coordinator, readLimit int64, pingPeriod time.Duration) *Controller {
	return &Controller{
		Coord:      coord,
		ReadLimit:  readLimit,
		PingPeriod: pingPeriod,
	}
}

type wsConn struct {
	conn *websocket.Conn
	send chan app.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(f app.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// Handle upgrades the request and runs the connection's pumps. Each
// websocket connection gets a fresh connection id.
func (ctl *Controller) Handle(ctx context.Context, c *gin.Context) {
	cid := domain.ConnID(uuid.NewString())
	log.Info().Str("module", "ws").Str("cid", string(cid)).
		Str("client", c.GetString("client_token")).Msg("new connection")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("upgrade")
		return
	}
	if ctl.ReadLimit > 0 {
		conn.SetReadLimit(ctl.ReadLimit)
	}

	wc := &wsConn{conn: conn, send: make(chan app.Frame, 32)}
	ctx, cancel := context.WithCancel(ctx)
	ctl.Coord.Registry.Bind(cid, wc)
	metrics.ConnectionsOpen.Inc()

	go ctl.writePump(ctx, wc)
	go ctl.readPump(ctx, cancel, cid, wc)
}
