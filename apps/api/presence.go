package main

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/redis/go-redis/v9"
)

// PresenceHandler reports which users currently hold a live connection
// into a room. Route: /rooms/{id}/users.
type PresenceHandler struct {
	redis *redis.Client
}

func NewPresenceHandler(rdb *redis.Client) *PresenceHandler {
	return &PresenceHandler{redis: rdb}
}

func (h *PresenceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	pathParts := strings.Split(r.URL.Path, "/")
	if len(pathParts) < 4 || pathParts[3] != "users" {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}
	roomID := pathParts[2]

	users, err := h.redis.SMembers(r.Context(), "room:"+roomID+":users").Result()
	if err != nil {
		log.Printf("Failed to fetch presence for room %s: %v", roomID, err)
		http.Error(w, "Failed to fetch presence", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(users)
}
