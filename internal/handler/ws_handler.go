package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/campusflow/compass-backend/internal/config"
	"github.com/campusflow/compass-backend/internal/middleware"
	ws "github.com/campusflow/compass-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams snapshot and plan events to monitoring clients.
type WSHandler struct {
	rdb      *redis.Client
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(rdb *redis.Client, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rdb:      rdb,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// MonitorStream godoc
// WS /ws/v1/monitor
// Upgrades to WebSocket and pushes snapshot publications and plan
// computations as they happen.
func (h *WSHandler) MonitorStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("account", claims.AccountName).Logger()
	wsLog.Info().Msg("Monitor client connected")

	reqCtx := c.Request.Context()
	sub := h.rdb.Subscribe(reqCtx,
		config.CacheKey.SnapshotEventChannel(),
		config.CacheKey.PlanEventChannel(),
	)
	defer sub.Close()

	// Reader goroutine: the client only ever sends pings and subscribe
	// requests; a read error ends the stream.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var msg ws.SubscribeRequest
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				} else {
					wsLog.Debug().Msg("Connection closed")
				}
				return
			}
			if msg.Action == ws.ActionPing {
				ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
			}
		}
	}()

	events := sub.Channel()
	for {
		select {
		case <-reqCtx.Done():
			wsLog.Info().Msg("Monitor client disconnected")
			return
		case <-done:
			return
		case msg, ok := <-events:
			if !ok {
				return
			}
			event := ws.EventPlan
			if msg.Channel == config.CacheKey.SnapshotEventChannel() {
				event = ws.EventSnapshot
			}
			if err := ws.WriteTyped(conn, ws.TopicEvent{Event: event, Payload: msg.Payload}); err != nil {
				wsLog.Debug().Err(err).Msg("Write failed, dropping client")
				return
			}
		}
	}
}
