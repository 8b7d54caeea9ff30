// Package chat owns the durable record of direct messages. The store is
// append-only: messages get their id and timestamp at persistence time and
// are never changed afterwards.
package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/rafidm/socialnet/pkg/model"
)

var (
	// ErrValidation marks a send request with missing or empty fields.
	ErrValidation = errors.New("invalid message")

	// ErrUnavailable marks a failure to reach the persistence layer. The
	// message was not stored and must not be broadcast.
	ErrUnavailable = errors.New("message store unavailable")
)

// Store persists direct messages and reads them back per conversation.
type Store interface {
	// Append validates, persists and returns the message, with generated
	// id and timestamp filled in. A single atomic write; on error nothing
	// is stored.
	Append(ctx context.Context, senderID, recipientID, text string) (*model.Message, error)

	// ListConversation returns every message exchanged between the two
	// users, in either direction, ordered by creation time ascending.
	// The argument order does not matter.
	ListConversation(ctx context.Context, userA, userB string) ([]model.Message, error)
}

var validate = validator.New()

type sendInput struct {
	SenderID    string `validate:"required"`
	RecipientID string `validate:"required"`
	Text        string `validate:"required"`
}

// ValidateSend checks the required fields of a send request. Append runs
// the same check; callers that need to reject before other work (for
// example before resolving a room) can run it up front.
func ValidateSend(senderID, recipientID, text string) error {
	in := sendInput{SenderID: senderID, RecipientID: recipientID, Text: text}
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}
