package chat

import (
	"context"
	"sync"
	"time"

	"github.com/rafidm/socialnet/pkg/model"
	"github.com/rafidm/socialnet/pkg/room"
	"github.com/rafidm/socialnet/pkg/snowflake"
)

// MemoryStore keeps messages in process memory, grouped by room token.
// It backs tests and any deployment that has no cluster to talk to.
type MemoryStore struct {
	mu            sync.RWMutex
	conversations map[string][]model.Message
	ids           *snowflake.Node

	// Fail forces every Append to report the store as unavailable.
	Fail bool
}

func NewMemoryStore() *MemoryStore {
	ids, err := snowflake.NewNode(1)
	if err != nil {
		panic(err) // node id 1 is always in range
	}
	return &MemoryStore{
		conversations: make(map[string][]model.Message),
		ids:           ids,
	}
}

func (s *MemoryStore) Append(ctx context.Context, senderID, recipientID, text string) (*model.Message, error) {
	if err := ValidateSend(senderID, recipientID, text); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Fail {
		return nil, ErrUnavailable
	}

	msg := model.Message{
		ID:          s.ids.Generate(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Text:        text,
		CreatedAt:   time.Now(),
	}

	token := room.Resolve(senderID, recipientID)
	s.conversations[token] = append(s.conversations[token], msg)

	return &msg, nil
}

func (s *MemoryStore) ListConversation(ctx context.Context, userA, userB string) ([]model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Appends carry increasing snowflake ids, so insertion order is
	// already chronological.
	stored := s.conversations[room.Resolve(userA, userB)]
	messages := make([]model.Message, len(stored))
	copy(messages, stored)
	return messages, nil
}
