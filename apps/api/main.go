package main

import (
	"log"
	"net/http"

	"github.com/redis/go-redis/v9"

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

	// Public endpoint
	http.Handle("/login", CORSMiddleware(http.HandlerFunc(LoginHandler)))

	// Protected endpoints
	http.Handle("/history", CORSMiddleware(AuthMiddleware(NewHistoryHandler(store))))
	http.Handle("/rooms/", CORSMiddleware(AuthMiddleware(NewPresenceHandler(rdb))))
	http.Handle("/conversations", CORSMiddleware(AuthMiddleware(ConversationsHandler(session))))
	http.Handle("/conversations/read", CORSMiddleware(AuthMiddleware(ReadHandler(session))))

	log.Printf("API Service Starting on %s...", cfg.APIAddr)
	if err := http.ListenAndServe(cfg.APIAddr, nil); err != nil {
		log.Fatal(err)
	}
}
