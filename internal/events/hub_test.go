package events_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/snackbot/economy-engine/internal/events"
)

func TestBroadcastReachesSubscriber(t *testing.T) {
	hub := events.NewHub()
	go hub.Run()

	wsSrv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer wsSrv.Close()

	url := "ws" + strings.TrimPrefix(wsSrv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Let the hub register the connection before broadcasting.
	time.Sleep(50 * time.Millisecond)

	hub.Broadcast(events.Event{
		Type:    "wager",
		Account: "alice",
		Game:    "slots",
		Outcome: "won",
		Amount:  "10",
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var got events.Event
	if err := json.Unmarshal(msg, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Type != "wager" || got.Account != "alice" || got.Game != "slots" {
		t.Errorf("unexpected event: %+v", got)
	}
	if got.ID == "" {
		t.Error("broadcast should assign an event id")
	}
}

func TestBroadcastWithoutSubscribersDoesNotBlock(t *testing.T) {
	hub := events.NewHub()
	// Run is intentionally not started; the buffered channel absorbs the
	// events and Broadcast drops once it fills.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for n := 0; n < 1000; n++ {
			hub.Broadcast(events.Event{Type: "trade"})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Broadcast blocked")
	}
}
