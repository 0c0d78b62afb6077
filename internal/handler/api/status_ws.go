package api

import (
	"net/http"
	"time"

	"StockPulse/internal/usecase"
	xlogger "StockPulse/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

// StatusWSHandler streams cache status transitions to browser clients so
// views can re-render on pending/success/error without polling.
type StatusWSHandler struct {
	logger   *xlogger.Logger
	dash     *usecase.Dashboard
	upgrader websocket.Upgrader
}

func NewStatusWSHandler(logger *xlogger.Logger, dash *usecase.Dashboard) *StatusWSHandler {
	return &StatusWSHandler{
		logger: logger,
		dash:   dash,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (h *StatusWSHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/status", h.Stream)
}

func (h *StatusWSHandler) Stream(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	id, events := h.dash.Subscribe()
	defer h.dash.Unsubscribe(id)

	// Drain client frames so close handshakes are noticed.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	for {
		select {
		case evt, ok := <-events:
			if !ok {
				return nil
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(evt); err != nil {
				h.logger.Debug("status ws write failed", xlogger.Error(err))
				return nil
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		case <-clientGone:
			return nil
		case <-c.Request().Context().Done():
			return nil
		}
	}
}
