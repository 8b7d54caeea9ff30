package main

import (
	"context"
	"log"

	"github.com/rafidm/socialnet/pkg/config"
	"github.com/rafidm/socialnet/pkg/db"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	session, err := db.NewSession(cfg.ScyllaHosts, cfg.Keyspace)
	if err != nil {
		log.Fatalf("Failed to connect to ScyllaDB: %v", err)
	}
	defer session.Close()

	consumer := NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, "conversation-indexer-group", session)
	defer consumer.Close()

	log.Println("Starting conversation indexer...")
	consumer.Consume(context.Background())
}
