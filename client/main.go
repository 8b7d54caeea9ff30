package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rafidm/socialnet/pkg/model"
	"github.com/rafidm/socialnet/pkg/profile"
	"github.com/rafidm/socialnet/pkg/room"
)

type loginResponse struct {
	Token string `json:"token"`
}

func login(apiAddr, userID string) (string, error) {
	reqBody, _ := json.Marshal(map[string]string{"user_id": userID})
	resp, err := http.Post(apiAddr+"/login", "application/json", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("login failed: %s", string(body))
	}

	var loginResp loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return "", err
	}

	return loginResp.Token, nil
}

// displayName asks the profile service for the peer's name, falling back
// to the raw id when the service is unreachable.
func displayName(profileAddr, userID string) string {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	p, err := profile.NewClient(profileAddr).GetProfile(ctx, userID)
	if err != nil {
		return userID
	}
	if name := p.FullName(); name != "" {
		return name
	}
	return userID
}

func main() {
	serverAddr := flag.String("addr", "localhost:8080", "gateway service address")
	apiAddr := flag.String("api", "http://localhost:8081", "api service address")
	profileAddr := flag.String("profiles", "http://localhost:3002", "profile service address")
	userID := flag.String("user", "", "your user id")
	peerID := flag.String("dm", "", "user id to message")
	flag.Parse()

	if *userID == "" || *peerID == "" {
		log.Fatal("both -user and -dm are required")
	}

	roomID := room.Resolve(*userID, *peerID)
	peerName := displayName(*profileAddr, *peerID)

	// 1. Login to get token
	log.Printf("Logging in as %s...", *userID)
	token, err := login(*apiAddr, *userID)
	if err != nil {
		log.Fatal("Login failed: ", err)
	}

	// 2. Connect to the gateway with the room token
	u := url.URL{Scheme: "ws", Host: *serverAddr, Path: "/ws"}
	q := u.Query()
	q.Set("roomId", roomID)
	u.RawQuery = q.Encode()
	log.Printf("connecting to %s", u.String())

	header := http.Header{}
	header.Add("Authorization", "Bearer "+token)

	c, _, err := websocket.DefaultDialer.Dial(u.String(), header)
	if err != nil {
		log.Fatal("dial: ", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// 3. Print inbound frames
	go func() {
		defer close(done)
		for {
			_, raw, err := c.ReadMessage()
			if err != nil {
				log.Println("read: ", err)
				return
			}

			var frame struct {
				Type model.EventType `json:"type"`
				model.Message
				Error string `json:"error"`
			}
			if err := json.Unmarshal(raw, &frame); err != nil {
				log.Printf("Received raw: %s", raw)
				continue
			}

			switch frame.Type {
			case model.TypeError:
				fmt.Printf("\r[error] %s\n> ", frame.Error)
			case model.TypeMessage:
				name := peerName
				if frame.SenderID == *userID {
					name = "you"
				}
				fmt.Printf("\r%s (%s): %s\n> ", name, frame.CreatedAt.Format("15:04"), frame.Text)
			}
		}
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	// 4. Read from stdin and send messages
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		fmt.Print("> ")
		for scanner.Scan() {
			text := scanner.Text()
			if text == "" {
				fmt.Print("> ")
				continue
			}

			if text == "/quit" {
				close(interrupt)
				break
			}

			ev := model.SendEvent{
				Type:        model.TypeMessage,
				SenderID:    *userID,
				RecipientID: *peerID,
				Text:        text,
			}
			if err := c.WriteJSON(ev); err != nil {
				log.Println("write: ", err)
				break
			}
			fmt.Print("> ")
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("interrupt")

			// Cleanly close the connection by sending a close message and then
			// waiting (with timeout) for the server to close the connection.
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("write close: ", err)
				return
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		}
	}
}
