package main

import (
	"log"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/rafidm/socialnet/pkg/auth"
	"github.com/rafidm/socialnet/pkg/chat"
	"github.com/rafidm/socialnet/pkg/config"
	"github.com/rafidm/socialnet/pkg/db"
	"github.com/rafidm/socialnet/pkg/snowflake"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	auth.SetSecret(cfg.JWTSecret)

	session, err := db.NewSession(cfg.ScyllaHosts, cfg.Keyspace)
	if err != nil {
		log.Fatalf("Failed to connect to ScyllaDB: %v", err)
	}
	defer session.Close()

	ids, err := snowflake.NewNode(cfg.NodeID)
	if err != nil {
		log.Fatalf("Failed to initialize snowflake node: %v", err)
	}
	store := chat.NewScyllaStore(session, ids)

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	producer := &kafka.Writer{
		Addr:     kafka.TCP(cfg.KafkaBrokers...),
		Topic:    cfg.KafkaTopic,
		Balancer: &kafka.LeastBytes{},
	}
	defer producer.Close()

	hub := NewHub(rdb)
	srv := newServer(hub, store, producer)

	http.HandleFunc("/ws", srv.serveWs)

	log.Printf("Gateway Service Starting on %s...", cfg.GatewayAddr)
	if err := http.ListenAndServe(cfg.GatewayAddr, nil); err != nil {
		log.Fatal(err)
	}
}
