// Package webchat serves the live chat transport over WebSocket. Each
// connection is bound to one conversation; turns run through the
// conversation service exactly as the REST path does.
package webchat

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/LionGab/lyla-erl/internal/conversation"
	"github.com/LionGab/lyla-erl/internal/identity"
	"github.com/LionGab/lyla-erl/pkg/logging"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

// Handler upgrades chat connections and pumps turns through the service.
type Handler struct {
	service  *conversation.Service
	logger   *logging.Logger
	upgrader websocket.Upgrader
}

func NewHandler(service *conversation.Service, logger *logging.Logger, allowedOrigins []string) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	allowAny := false
	allow := map[string]struct{}{}
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAny = true
			continue
		}
		allow[o] = struct{}{}
	}
	return &Handler{
		service: service,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				if allowAny {
					return true
				}
				_, ok := allow[r.Header.Get("Origin")]
				return ok
			},
		},
	}
}

type inbound struct {
	Type string                 `json:"type"` // "message"
	Data conversation.SendInput `json:"data"`
}

type outbound struct {
	Type      string `json:"type"` // "reply", "error"
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Serve handles GET /ws/chat/{conversationID}.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	email, _ := identity.UserEmailFromContext(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go h.pingLoop(conn, done)

	for {
		var in inbound
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read failed", "conversation_id", conversationID, "error", err)
			}
			return
		}
		if in.Type != "message" {
			h.writeError(conn, "tipo de mensagem desconhecido")
			continue
		}

		result, err := h.service.SendMessage(r.Context(), email, conversationID, in.Data)
		if err != nil {
			h.writeError(conn, conversation.Classify(err).UserMessage())
			continue
		}
		h.write(conn, outbound{Type: "reply", Data: result, Timestamp: time.Now().UnixMilli()})
	}
}

func (h *Handler) pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (h *Handler) write(conn *websocket.Conn, msg outbound) {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.Warn("websocket write failed", "error", err)
	}
}

func (h *Handler) writeError(conn *websocket.Conn, msg string) {
	h.write(conn, outbound{Type: "error", Error: msg, Timestamp: time.Now().UnixMilli()})
}
