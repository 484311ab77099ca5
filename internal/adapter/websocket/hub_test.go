package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/internal/adapter/queue"
	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/internal/mocks"
)

type fakeConn struct {
	mu        sync.Mutex
	written   chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{written: make(chan []byte, 16), closed: make(chan struct{})}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	<-c.closed
	return 0, nil, errors.New("closed")
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	select {
	case <-c.closed:
		return errors.New("closed")
	default:
	}
	c.written <- data
	return nil
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func waitClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.Clients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, got %d", n, h.Clients())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func alertPayload(t *testing.T, stationID string) []byte {
	t.Helper()
	data, err := json.Marshal(queue.AlertEvent{Alert: domain.Alert{ID: "alert-" + stationID, StationID: stationID, Type: domain.AlertTypeLowStock}})
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestHub_RoutesByStation(t *testing.T) {
	// Arrange
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub(zap.NewNop())
	go hub.Run(ctx)

	mq := mocks.NewMockMessageQueue()
	if err := hub.Subscribe(mq); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	stationOne, everything := newFakeConn(), newFakeConn()
	go hub.Serve(stationOne, "manager-1", "station-1")
	go hub.Serve(everything, "admin", "")
	waitClients(t, hub, 2)

	// Act
	if err := mq.Deliver(queue.SubjectAlertCreated, alertPayload(t, "station-2")); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if err := mq.Deliver(queue.SubjectAlertUpdated, alertPayload(t, "station-1")); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	// Assert
	var msg FeedMessage
	select {
	case data := <-stationOne.written:
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("decode: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("station client got nothing")
	}
	if msg.Event != queue.SubjectAlertUpdated || msg.Alert.Alert.StationID != "station-1" {
		t.Errorf("station client got the wrong event: %+v", msg)
	}

	for i := 0; i < 2; i++ {
		select {
		case <-everything.written:
		case <-time.After(2 * time.Second):
			t.Fatalf("unfiltered client got %d of 2 events", i)
		}
	}
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub(zap.NewNop())
	go hub.Run(ctx)

	c := newFakeConn()
	served := make(chan struct{})
	go func() {
		hub.Serve(c, "manager-1", "")
		close(served)
	}()
	waitClients(t, hub, 1)

	c.Close()

	select {
	case <-served:
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after disconnect")
	}
	waitClients(t, hub, 0)
}

func TestHub_RejectsMalformedEvent(t *testing.T) {
	hub := NewHub(zap.NewNop())

	if err := hub.forward(queue.SubjectAlertCreated, []byte("{")); err == nil {
		t.Fatal("expected decode error")
	}
}
