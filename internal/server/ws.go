package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	ws "github.com/Suyash56/quizzy-pop/pkg/http/ws"
)

// WSUpgrader handles WebSocket upgrades. Origin checking stays permissive
// because watchers are anonymous and the socket is read-mostly.
var WSUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// NewWSHandler serves /ws/sessions. A client watches sessions either via
// the session_id query parameter or with watch_session messages; events
// for watched sessions arrive as server messages.
func NewWSHandler(hub *ws.Hub, logger zerolog.Logger) http.HandlerFunc {
	logger = logger.With().Str("component", "session_ws").Logger()

	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := WSUpgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}

		conn := ws.NewConnection(raw, logger)
		connID := hub.RegisterConnection(conn)

		if q := r.URL.Query().Get("session_id"); q != "" {
			if sessionID, err := uuid.Parse(q); err == nil {
				hub.WatchSession(sessionID, connID)
				sendAck(conn, sessionID, "")
			} else {
				sendError(conn, "", "session_id must be a UUID")
			}
		}

		go conn.WritePump()
		go func() {
			defer hub.UnregisterConnection(connID)
			conn.ReadPump(func(msg ws.Message) error {
				return handleClientMessage(hub, conn, connID, msg)
			})
		}()
	}
}

func handleClientMessage(hub *ws.Hub, conn *ws.Connection, connID uuid.UUID, msg ws.Message) error {
	switch msg.Type {
	case ws.TypeWatchSession:
		var payload ws.WatchSessionPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			sendError(conn, msg.RequestID, "invalid watch_session payload")
			return nil
		}
		sessionID, err := uuid.Parse(payload.SessionID)
		if err != nil {
			sendError(conn, msg.RequestID, "session_id must be a UUID")
			return nil
		}
		hub.WatchSession(sessionID, connID)
		sendAck(conn, sessionID, msg.RequestID)
	case ws.TypePing:
		conn.Send(ws.Message{Type: ws.TypePong, RequestID: msg.RequestID})
	default:
		sendError(conn, msg.RequestID, "unknown message type")
	}
	return nil
}

func sendAck(conn *ws.Connection, sessionID uuid.UUID, requestID string) {
	payload, _ := json.Marshal(ws.WatchAckPayload{SessionID: sessionID.String()})
	conn.Send(ws.Message{Type: ws.TypeWatchAck, Payload: payload, RequestID: requestID})
}

func sendError(conn *ws.Connection, requestID, message string) {
	payload, _ := json.Marshal(ws.ErrorPayload{Code: "invalid_payload", Message: message})
	conn.Send(ws.Message{Type: ws.TypeError, Payload: payload, RequestID: requestID})
}
