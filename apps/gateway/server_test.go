package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafidm/socialnet/pkg/auth"
	"github.com/rafidm/socialnet/pkg/chat"
	"github.com/rafidm/socialnet/pkg/model"
	"github.com/rafidm/socialnet/pkg/room"
)

// frame is the union of everything the gateway can send back.
type frame struct {
	Type model.EventType `json:"type"`
	model.Message
	Code   string `json:"code"`
	ErrMsg string `json:"error"`
}

type testGateway struct {
	srv   *server
	store *chat.MemoryStore
	http  *httptest.Server
}

func newTestGateway(t *testing.T) *testGateway {
	t.Helper()
	store := chat.NewMemoryStore()
	srv := newServer(NewHub(nil), store, nil)
	ts := httptest.NewServer(http.HandlerFunc(srv.serveWs))
	t.Cleanup(ts.Close)
	return &testGateway{srv: srv, store: store, http: ts}
}

func (g *testGateway) wsURL(roomID string) string {
	u := "ws" + strings.TrimPrefix(g.http.URL, "http")
	return u + "?roomId=" + url.QueryEscape(roomID)
}

// connect dials the gateway as userID into roomID and waits until the hub
// has registered the connection.
func (g *testGateway) connect(t *testing.T, userID, roomID string) *websocket.Conn {
	t.Helper()
	token, err := auth.GenerateToken(userID)
	require.NoError(t, err)

	before := g.srv.hub.RoomSize(roomID)

	header := http.Header{}
	header.Add("Authorization", "Bearer "+token)
	conn, _, err := websocket.DefaultDialer.Dial(g.wsURL(roomID), header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool {
		return g.srv.hub.RoomSize(roomID) > before
	}, time.Second, 5*time.Millisecond)

	return conn
}

func send(t *testing.T, conn *websocket.Conn, senderID, recipientID, text string) {
	t.Helper()
	ev := model.SendEvent{Type: model.TypeMessage, SenderID: senderID, RecipientID: recipientID, Text: text}
	require.NoError(t, conn.WriteJSON(ev))
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func assertSilent(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, os.IsTimeout(err), "expected read timeout, got %v", err)
}

func TestServeWs_RequiresToken(t *testing.T) {
	g := newTestGateway(t)

	_, resp, err := websocket.DefaultDialer.Dial(g.wsURL(room.Resolve("u1", "u2")), nil)
	require.Error(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServeWs_RequiresRoomID(t *testing.T) {
	g := newTestGateway(t)
	token, err := auth.GenerateToken("u1")
	require.NoError(t, err)

	header := http.Header{}
	header.Add("Authorization", "Bearer "+token)

	u := "ws" + strings.TrimPrefix(g.http.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(u, header)
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(u+"?roomId=general", header)
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServeWs_RejectsNonParticipant(t *testing.T) {
	g := newTestGateway(t)
	token, err := auth.GenerateToken("u3")
	require.NoError(t, err)

	header := http.Header{}
	header.Add("Authorization", "Bearer "+token)
	_, resp, err := websocket.DefaultDialer.Dial(g.wsURL(room.Resolve("u1", "u2")), header)
	require.Error(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

// The full exchange: u1 and u2 share a room, u3/u4 sit in an unrelated
// one. A message from u1 reaches both room members (sender included),
// lands in the store exactly once, and never leaks to the other room.
func TestGateway_MessageExchange(t *testing.T) {
	g := newTestGateway(t)
	token := room.Resolve("u1", "u2")

	a := g.connect(t, "u1", token)
	b := g.connect(t, "u2", token)
	other := g.connect(t, "u3", room.Resolve("u3", "u4"))

	send(t, a, "u1", "u2", "hi")

	for _, conn := range []*websocket.Conn{a, b} {
		f := readFrame(t, conn)
		assert.Equal(t, model.TypeMessage, f.Type)
		assert.Equal(t, "u1", f.SenderID)
		assert.Equal(t, "u2", f.RecipientID)
		assert.Equal(t, "hi", f.Text)
		assert.NotZero(t, f.ID)
		assert.False(t, f.CreatedAt.IsZero())
	}

	assertSilent(t, other)

	messages, err := g.store.ListConversation(context.Background(), "u1", "u2")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "hi", messages[0].Text)
	assert.Equal(t, "u1", messages[0].SenderID)
	assert.Equal(t, "u2", messages[0].RecipientID)
}

func TestGateway_EmptyTextRejectedToSenderOnly(t *testing.T) {
	g := newTestGateway(t)
	token := room.Resolve("u1", "u2")

	a := g.connect(t, "u1", token)
	b := g.connect(t, "u2", token)

	send(t, a, "u1", "u2", "")

	f := readFrame(t, a)
	assert.Equal(t, model.TypeError, f.Type)
	assert.Equal(t, "validation", f.Code)

	assertSilent(t, b)

	messages, err := g.store.ListConversation(context.Background(), "u1", "u2")
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestGateway_SpoofedSenderRejected(t *testing.T) {
	g := newTestGateway(t)
	token := room.Resolve("u1", "u2")

	a := g.connect(t, "u1", token)
	b := g.connect(t, "u2", token)

	send(t, a, "u2", "u1", "pretending to be u2")

	f := readFrame(t, a)
	assert.Equal(t, model.TypeError, f.Type)
	assert.Equal(t, "forbidden", f.Code)

	assertSilent(t, b)
}

func TestGateway_RecipientOutsideRoomRejected(t *testing.T) {
	g := newTestGateway(t)

	a := g.connect(t, "u1", room.Resolve("u1", "u2"))

	send(t, a, "u1", "u3", "wrong room")

	f := readFrame(t, a)
	assert.Equal(t, model.TypeError, f.Type)
	assert.Equal(t, "invalid_room", f.Code)

	messages, err := g.store.ListConversation(context.Background(), "u1", "u3")
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestGateway_StoreFailureReportedToSenderOnly(t *testing.T) {
	g := newTestGateway(t)
	token := room.Resolve("u1", "u2")

	a := g.connect(t, "u1", token)
	b := g.connect(t, "u2", token)

	g.store.Fail = true
	send(t, a, "u1", "u2", "doomed")

	f := readFrame(t, a)
	assert.Equal(t, model.TypeError, f.Type)
	assert.Equal(t, "store_unavailable", f.Code)

	assertSilent(t, b)
}

func TestGateway_DisconnectedMemberDoesNotBreakBroadcast(t *testing.T) {
	g := newTestGateway(t)
	token := room.Resolve("u1", "u2")

	a := g.connect(t, "u1", token)
	b := g.connect(t, "u2", token)

	b.Close()
	require.Eventually(t, func() bool {
		return g.srv.hub.RoomSize(token) == 1
	}, time.Second, 5*time.Millisecond)

	send(t, a, "u1", "u2", "still here")

	f := readFrame(t, a)
	assert.Equal(t, model.TypeMessage, f.Type)
	assert.Equal(t, "still here", f.Text)
}

func TestGateway_MalformedFrameRejected(t *testing.T) {
	g := newTestGateway(t)

	a := g.connect(t, "u1", room.Resolve("u1", "u2"))
	require.NoError(t, a.WriteMessage(websocket.TextMessage, []byte("not json")))

	f := readFrame(t, a)
	assert.Equal(t, model.TypeError, f.Type)
	assert.Equal(t, "validation", f.Code)
}
