package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"quiz-arena/domain/event"
	"quiz-arena/services"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Server upgrades HTTP requests to WebSocket connections and bridges them
// to the game service. Each connection gets an ephemeral id, a sink
// registered on join, and a write pump serializing outbound frames.
type Server struct {
	log        *slog.Logger
	service    services.IGameService
	upgrader   websocket.Upgrader
	validate   *validator.Validate
	bufferSize int
}

func NewServer(log *slog.Logger, service services.IGameService, bufferSize int) *Server {
	return &Server{
		log:     log,
		service: service,
		upgrader: websocket.Upgrader{
			// The original server accepted any origin; auth is out of scope.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		validate:   validator.New(),
		bufferSize: bufferSize,
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	connID := uuid.NewString()
	sink := NewConnSink(s.bufferSize)
	done := make(chan struct{})

	go s.writePump(conn, sink, done)

	defer func() {
		s.service.Disconnect(connID)
		close(done)
		_ = conn.Close()
		s.log.Debug("Connection closed", "conn_id", connID)
	}()

	for {
		var envelope Envelope
		if err := conn.ReadJSON(&envelope); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("Unexpected close", "conn_id", connID, "error", err)
			}
			return
		}
		s.dispatch(connID, sink, envelope)
	}
}

// dispatch decodes one envelope and routes it to the service. Malformed
// payloads answer with an error frame instead of dropping the connection.
func (s *Server) dispatch(connID string, sink *ConnSink, envelope Envelope) {
	switch envelope.Event {
	case "create-room", "join-room":
		var payload joinPayload
		if !s.decode(sink, envelope.Data, &payload) {
			return
		}
		s.service.JoinRoom(connID, roomID(payload.RoomID), payload.Username, sink)
	case "submit-answer":
		var payload submitAnswerPayload
		if !s.decode(sink, envelope.Data, &payload) {
			return
		}
		s.service.SubmitAnswer(connID, roomID(payload.RoomID), payload.Answer)
	case "time-up":
		var payload timeUpPayload
		if !s.decode(sink, envelope.Data, &payload) {
			return
		}
		s.service.TimeUp(connID, roomID(payload.RoomID))
	default:
		s.log.Debug(fmt.Sprintf("Unknown inbound event %q", envelope.Event))
	}
}

// decode validates the payload; rejections flow through the sink so the
// write pump stays the only writer on the socket.
func (s *Server) decode(sink *ConnSink, raw json.RawMessage, payload any) bool {
	if err := json.Unmarshal(raw, payload); err != nil {
		s.reject(sink, "Malformed payload")
		return false
	}
	if err := s.validate.Struct(payload); err != nil {
		s.reject(sink, "Invalid payload")
		return false
	}
	return true
}

func (s *Server) reject(sink *ConnSink, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := sink.Consume(ctx, event.ErrorNotice{Text: text}); err != nil {
		s.log.Debug("Failed to report payload error", "error", err)
	}
}

// writePump serializes outbound frames for one connection. WriteJSON is
// not safe for concurrent use, so this goroutine is the socket's only
// writer.
func (s *Server) writePump(conn *websocket.Conn, sink *ConnSink, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case evt := <-sink.Events:
			frame, ok := toFrame(evt)
			if !ok {
				continue
			}
			if err := conn.WriteJSON(frame); err != nil {
				s.log.Debug("Failed to push frame", "error", err)
				return
			}
		}
	}
}
