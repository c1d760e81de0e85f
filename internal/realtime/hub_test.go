package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nanopro-wms/backend/pkg/config"
	"github.com/nanopro-wms/backend/pkg/db/models"
	"github.com/nanopro-wms/backend/pkg/enums"
)

func newTestClient(hub *Hub) *Client {
	return &Client{hub: hub, send: make(chan []byte, 8)}
}

func TestHubBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	first := newTestClient(hub)
	second := newTestClient(hub)
	hub.register <- first
	hub.register <- second

	hub.Broadcast([]byte(`{"table":"separacao"}`))

	for _, client := range []*Client{first, second} {
		select {
		case frame := <-client.send:
			if string(frame) != `{"table":"separacao"}` {
				t.Fatalf("unexpected frame %s", frame)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for broadcast")
		}
	}
}

func TestHubUnregisterClosesSendChannel(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := newTestClient(hub)
	hub.register <- client
	hub.unregister <- client

	select {
	case _, open := <-client.send:
		if open {
			t.Fatal("expected send channel closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel close")
	}

	// Broadcasts after unregister must not panic on the closed channel.
	hub.Broadcast([]byte("x"))

	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("expected zero clients")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

type stubOutbox struct {
	pending   []models.OutboxEvent
	published []uuid.UUID
}

func (s *stubOutbox) FetchPending(limit int) ([]models.OutboxEvent, error) {
	events := s.pending
	s.pending = nil
	return events, nil
}

func (s *stubOutbox) MarkPublished(id uuid.UUID) error {
	s.published = append(s.published, id)
	return nil
}

func (s *stubOutbox) MarkFailed(id uuid.UUID, cause error) error { return nil }

func TestDispatcherDrainsOutboxToHub(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := newTestClient(hub)
	hub.register <- client

	eventID := uuid.New()
	repo := &stubOutbox{pending: []models.OutboxEvent{{
		ID:        eventID,
		Table:     enums.TableSeparacao,
		EventType: enums.ChangeInsert,
		Payload:   []byte(`{"eventType":"INSERT"}`),
		Status:    enums.OutboxStatusPending,
	}}}
	dispatcher := NewDispatcher(repo, hub, config.RealtimeConfig{}, nil)

	dispatcher.drain(ctx)

	select {
	case frame := <-client.send:
		if string(frame) != `{"eventType":"INSERT"}` {
			t.Fatalf("unexpected frame %s", frame)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for dispatched event")
	}
	if len(repo.published) != 1 || repo.published[0] != eventID {
		t.Fatalf("expected event marked published got %v", repo.published)
	}
}
