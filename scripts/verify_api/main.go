package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
)

type LoginResponse struct {
	Token string `json:"token"`
}

// Smoke-checks a running API service: logs in, then reads a conversation.
func main() {
	apiAddr := flag.String("api", "http://localhost:8081", "api service address")
	userID := flag.String("user", "test_user", "user id to log in as")
	peerID := flag.String("peer", "test_peer", "conversation peer")
	flag.Parse()

	// 1. Login
	reqBody, _ := json.Marshal(map[string]string{"user_id": *userID})
	resp, err := http.Post(*apiAddr+"/login", "application/json", bytes.NewBuffer(reqBody))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	var loginResp LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Token: %s...\n", loginResp.Token[:10])

	// 2. Get conversation history with the peer
	log.Printf("Fetching history with %s...", *peerID)
	req, _ := http.NewRequest("GET", *apiAddr+"/history?user_id="+*peerID, nil)
	req.Header.Add("Authorization", "Bearer "+loginResp.Token)

	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		log.Fatal("History request failed:", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	log.Printf("History: %s", string(body))
}
