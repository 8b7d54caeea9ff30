package main

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/rafidm/socialnet/pkg/db"
	"github.com/rafidm/socialnet/pkg/model"
)

// Consumer tails the persisted-message stream and keeps the conversation
// index current: one user_conversations row per direction and an unread
// counter for the recipient. The gateway already persisted and delivered
// each message; this pipeline only derives per-user views from it.
type Consumer struct {
	reader *kafka.Reader
	db     *db.Session
}

func NewConsumer(brokers []string, topic string, groupID string, session *db.Session) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})

	return &Consumer{reader: r, db: session}
}

func (c *Consumer) Consume(ctx context.Context) {
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("Error reading message: %v. Retrying in 1s...", err)
			time.Sleep(1 * time.Second)
			continue
		}

		var msg model.Message
		if err := json.Unmarshal(m.Value, &msg); err != nil {
			log.Printf("Failed to unmarshal message: %v", err)
			continue
		}
		if msg.SenderID == "" || msg.RecipientID == "" {
			log.Printf("Skipping message %d with missing participants", msg.ID)
			continue
		}

		c.index(ctx, &msg)
	}
}

func (c *Consumer) index(ctx context.Context, msg *model.Message) {
	// Both participants see the conversation bump to the top of their
	// list.
	query := `INSERT INTO user_conversations (user_id, other_user_id, last_updated) VALUES (?, ?, ?)`
	if err := c.db.Query(query, msg.SenderID, msg.RecipientID, msg.CreatedAt).WithContext(ctx).Exec(); err != nil {
		log.Printf("Failed to update conversation for %s: %v", msg.SenderID, err)
	}
	if err := c.db.Query(query, msg.RecipientID, msg.SenderID, msg.CreatedAt).WithContext(ctx).Exec(); err != nil {
		log.Printf("Failed to update conversation for %s: %v", msg.RecipientID, err)
	}

	// Only the recipient accrues unread messages.
	query = `UPDATE conversation_counters SET unread_count = unread_count + 1 WHERE user_id = ? AND other_user_id = ?`
	if err := c.db.Query(query, msg.RecipientID, msg.SenderID).WithContext(ctx).Exec(); err != nil {
		log.Printf("Failed to increment unread count for %s: %v", msg.RecipientID, err)
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
