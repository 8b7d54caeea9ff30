package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/segmentio/kafka-go"

	"github.com/rafidm/socialnet/pkg/auth"
	"github.com/rafidm/socialnet/pkg/chat"
	"github.com/rafidm/socialnet/pkg/model"
	"github.com/rafidm/socialnet/pkg/room"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now
	},
}

// server ties the hub to the message store: it accepts connections, and
// for each inbound send event persists the message before asking the hub
// to fan it out.
type server struct {
	hub      *Hub
	store    chat.Store
	producer *kafka.Writer // nil disables the conversation-index stream
}

func newServer(hub *Hub, store chat.Store, producer *kafka.Writer) *server {
	return &server{hub: hub, store: store, producer: producer}
}

// serveWs handles websocket requests from the peer. The room token comes
// from the roomId query parameter and must name a conversation the
// authenticated user takes part in.
func (s *server) serveWs(w http.ResponseWriter, r *http.Request) {
	tokenString := r.Header.Get("Authorization")
	if tokenString == "" {
		// Query param fallback for clients that cannot set headers.
		tokenString = r.URL.Query().Get("token")
	}
	if tokenString == "" {
		log.Println("Unauthorized: No token provided")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	claims, err := auth.ValidateToken(tokenString)
	if err != nil {
		log.Printf("Unauthorized: Invalid token: %v", err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	userID := claims.UserID

	roomID := r.URL.Query().Get("roomId")
	if roomID == "" {
		http.Error(w, "roomId query parameter required", http.StatusBadRequest)
		return
	}
	if _, _, err := room.Parse(roomID); err != nil {
		http.Error(w, "Invalid room token", http.StatusBadRequest)
		return
	}
	if !room.HasParticipant(roomID, userID) {
		http.Error(w, "Not a participant of this room", http.StatusForbidden)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}

	client := &Client{
		hub:    s.hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		ID:     uuid.NewString(),
		UserID: userID,
		RoomID: roomID,
	}
	s.hub.Join(client)

	go client.writePump()
	go s.readPump(client)
}

// readPump pumps send events from the websocket connection into the
// ingest path. It owns the connection's lifecycle: when the read side
// fails the client leaves its room and the socket closes.
func (s *server) readPump(c *Client) {
	defer func() {
		s.hub.Leave(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error: %v", err)
			}
			break
		}

		var ev model.SendEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			s.sendError(c, "validation", "malformed frame")
			continue
		}
		s.handleSend(c, ev)
	}
}

// handleSend is the message ingest path: validate, persist, then fan out.
// Persistence happens before any broadcast; a failed persist reports to
// the sender only and nothing reaches the room.
func (s *server) handleSend(c *Client, ev model.SendEvent) {
	if err := chat.ValidateSend(ev.SenderID, ev.RecipientID, ev.Text); err != nil {
		s.sendError(c, "validation", err.Error())
		return
	}
	if ev.SenderID != c.UserID {
		s.sendError(c, "forbidden", "sender_id must be the authenticated user")
		return
	}
	if room.Resolve(ev.SenderID, ev.RecipientID) != c.RoomID {
		s.sendError(c, "invalid_room", "recipient does not belong to this room")
		return
	}

	msg, err := s.store.Append(context.Background(), ev.SenderID, ev.RecipientID, ev.Text)
	if err != nil {
		if errors.Is(err, chat.ErrValidation) {
			s.sendError(c, "validation", err.Error())
			return
		}
		log.Printf("Failed to persist message from %s: %v", c.UserID, err)
		s.sendError(c, "store_unavailable", "message was not saved")
		return
	}

	payload, err := json.Marshal(model.MessageEvent{Type: model.TypeMessage, Message: *msg})
	if err != nil {
		log.Printf("Failed to marshal message %d: %v", msg.ID, err)
		return
	}
	s.hub.Broadcast(c.RoomID, payload)

	s.publish(msg)
}

// publish streams the persisted message to Kafka for the conversation
// indexer. The message is already stored and delivered; a publish failure
// is logged and the indexer catches up from a later message.
func (s *server) publish(msg *model.Message) {
	if s.producer == nil {
		return
	}
	value, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal message %d for Kafka: %v", msg.ID, err)
		return
	}
	err = s.producer.WriteMessages(context.Background(), kafka.Message{
		Key:   []byte(room.Resolve(msg.SenderID, msg.RecipientID)),
		Value: value,
		Time:  msg.CreatedAt,
	})
	if err != nil {
		log.Printf("Failed to publish message %d to Kafka: %v", msg.ID, err)
	}
}

// sendError reports a failure to the offending connection only.
func (s *server) sendError(c *Client, code, message string) {
	payload, err := json.Marshal(model.ErrorEvent{Type: model.TypeError, Code: code, Error: message})
	if err != nil {
		log.Printf("Failed to marshal error event: %v", err)
		return
	}
	if !c.trySend(payload) {
		log.Printf("Could not deliver %s error to client %s", code, c.UserID)
	}
}
