package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/rafidm/socialnet/pkg/db"
	"github.com/rafidm/socialnet/pkg/model"
	"github.com/rafidm/socialnet/pkg/room"
	"github.com/rafidm/socialnet/pkg/snowflake"
)

// ScyllaStore persists messages in ScyllaDB. Messages partition by the
// conversation's room token and cluster ascending on the snowflake id, so a
// partition scan reads a conversation back in chronological order.
type ScyllaStore struct {
	session *db.Session
	ids     *snowflake.Node
}

func NewScyllaStore(session *db.Session, ids *snowflake.Node) *ScyllaStore {
	return &ScyllaStore{session: session, ids: ids}
}

func (s *ScyllaStore) Append(ctx context.Context, senderID, recipientID, text string) (*model.Message, error) {
	if err := ValidateSend(senderID, recipientID, text); err != nil {
		return nil, err
	}

	msg := &model.Message{
		ID:          s.ids.Generate(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Text:        text,
		CreatedAt:   time.Now(),
	}

	query := `INSERT INTO messages (conversation_id, id, sender_id, recipient_id, text, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	token := room.Resolve(senderID, recipientID)
	if err := s.session.Query(query, token, msg.ID, msg.SenderID, msg.RecipientID, msg.Text, msg.CreatedAt).WithContext(ctx).Exec(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return msg, nil
}

func (s *ScyllaStore) ListConversation(ctx context.Context, userA, userB string) ([]model.Message, error) {
	token := room.Resolve(userA, userB)

	query := `SELECT id, sender_id, recipient_id, text, created_at FROM messages WHERE conversation_id = ?`
	iter := s.session.Query(query, token).WithContext(ctx).Iter()

	var messages []model.Message
	var m model.Message
	for iter.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Text, &m.CreatedAt) {
		messages = append(messages, m)
	}

	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return messages, nil
}
