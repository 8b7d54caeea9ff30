package main

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/rafidm/socialnet/pkg/auth"
	"github.com/rafidm/socialnet/pkg/chat"
	"github.com/rafidm/socialnet/pkg/model"
)

// HistoryHandler serves a conversation's full message history, oldest
// first, independent of any live room.
type HistoryHandler struct {
	store chat.Store
}

func NewHistoryHandler(store chat.Store) *HistoryHandler {
	return &HistoryHandler{store: store}
}

func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(auth.UserKey).(*auth.Claims)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	peerID := r.URL.Query().Get("user_id")
	if peerID == "" {
		http.Error(w, "user_id query parameter required", http.StatusBadRequest)
		return
	}

	messages, err := h.store.ListConversation(r.Context(), claims.UserID, peerID)
	if err != nil {
		log.Printf("Failed to list conversation: %v", err)
		http.Error(w, "Failed to retrieve history", http.StatusInternalServerError)
		return
	}
	if messages == nil {
		messages = []model.Message{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messages)
}

type LoginRequest struct {
	UserID string `json:"user_id"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

// LoginHandler mints a token for the given user id. Identity verification
// lives with the external user service; this endpoint only turns an
// already-authenticated id into a bearer token.
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.UserID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	token, err := auth.GenerateToken(req.UserID)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(LoginResponse{Token: token})
}
