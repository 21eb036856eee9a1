// file: internal/realtime/events_test.go
// version: 2.0.0
// guid: a0b1c2d3-e4f5-6a7b-8c9d-0e1f2a3b4c5d

package realtime

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestNewClient(t *testing.T) {
	client := NewClient("test-client-1")
	if client.ID != "test-client-1" {
		t.Errorf("Expected ID 'test-client-1', got '%s'", client.ID)
	}
	if client.Channel == nil {
		t.Error("Client channel is nil")
	}
	if client.Sessions == nil {
		t.Error("Client sessions map is nil")
	}
}

func TestClient_SubscribeUnsubscribe(t *testing.T) {
	client := NewClient("c")
	client.Subscribe("session-1")
	if !client.IsSubscribed("session-1") {
		t.Error("client did not subscribe to session-1")
	}
	client.Unsubscribe("session-1")
	if client.IsSubscribed("session-1") {
		t.Error("client is still subscribed to session-1")
	}
}

func TestBroadcast_SessionRouting(t *testing.T) {
	hub := NewEventHub()
	all := NewClient("all")
	follower := NewClient("follower")
	follower.Subscribe("s1")
	other := NewClient("other")
	other.Subscribe("s2")
	hub.RegisterClient(all)
	hub.RegisterClient(follower)
	hub.RegisterClient(other)
	defer hub.UnregisterClient("all")
	defer hub.UnregisterClient("follower")
	defer hub.UnregisterClient("other")

	n := hub.SendMatchDecision("s1", map[string]any{"decision": "AUTO_ACCEPT"})
	if n != 2 {
		t.Fatalf("expected 2 recipients, got %d", n)
	}
	if len(other.Channel) != 0 {
		t.Error("client following another session should not receive the event")
	}
	ev := <-follower.Channel
	if ev.Type != EventMatchDecided || ev.Data["decision"] != "AUTO_ACCEPT" {
		t.Errorf("unexpected event %+v", ev)
	}

	if n := hub.SendBankReloaded(2, 10); n != 3 {
		t.Errorf("bank reload should reach every client, got %d", n)
	}
}

func TestBroadcast_FullChannelDrops(t *testing.T) {
	hub := NewEventHub()
	c := NewClient("slow")
	hub.RegisterClient(c)
	defer hub.UnregisterClient("slow")

	for i := 0; i < cap(c.Channel); i++ {
		hub.SendMatchConfirmed("", nil)
	}
	if n := hub.SendMatchConfirmed("", nil); n != 0 {
		t.Errorf("expected event to be dropped, delivered to %d", n)
	}
}

func TestUnregisterClient(t *testing.T) {
	hub := NewEventHub()
	hub.RegisterClient(NewClient("x"))
	if hub.GetClientCount() != 1 {
		t.Fatal("expected 1 client")
	}
	hub.UnregisterClient("x")
	hub.UnregisterClient("x")
	if hub.GetClientCount() != 0 {
		t.Fatal("expected 0 clients")
	}
}

func TestHandleSSE_SendsConnectionAndEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewEventHub()
	router := gin.New()
	router.GET("/events", hub.HandleSSE)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/events?session=s1", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		router.ServeHTTP(w, req)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for hub.GetClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	hub.SendMatchDecision("s1", map[string]any{"decision": "SUGGEST"})
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, string(EventConnection)) {
		t.Errorf("expected connection event, got %q", body)
	}
	if !strings.Contains(body, "SUGGEST") {
		t.Errorf("expected match event, got %q", body)
	}
}

func TestHandleSSE_OutlivesWriteTimeout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewEventHub()
	router := gin.New()
	router.GET("/events", hub.HandleSSE)

	srv := httptest.NewUnstartedServer(router)
	srv.Config.WriteTimeout = 300 * time.Millisecond
	srv.Start()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/events")
	if err != nil {
		t.Fatalf("GET /events: %v", err)
	}
	defer resp.Body.Close()
	reader := bufio.NewReader(resp.Body)

	line, err := reader.ReadString('\n')
	if err != nil || !strings.Contains(line, string(EventConnection)) {
		t.Fatalf("expected connection event, got %q (%v)", line, err)
	}

	time.Sleep(600 * time.Millisecond)
	if n := hub.SendBankReloaded(2, 5); n != 1 {
		t.Fatalf("expected 1 client to receive the event, got %d", n)
	}

	for {
		line, err = reader.ReadString('\n')
		if err != nil {
			t.Fatalf("stream closed before the event arrived: %v", err)
		}
		if strings.TrimSpace(line) != "" {
			break
		}
	}
	if !strings.Contains(line, string(EventBankReloaded)) {
		t.Errorf("expected %s event, got %q", EventBankReloaded, line)
	}
}
