package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"matchwell/backend/internal/dispatch"
	"matchwell/backend/internal/hub"
)

type memoryRepo struct {
	mu    sync.Mutex
	items map[uint][]Notification
	err   error
}

func (m *memoryRepo) Push(_ context.Context, n Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.items == nil {
		m.items = map[uint][]Notification{}
	}
	m.items[n.UserID] = append([]Notification{n}, m.items[n.UserID]...)
	return nil
}

func (m *memoryRepo) List(_ context.Context, userID uint, limit int64) ([]Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.items[userID]
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func TestSink_Accepts(t *testing.T) {
	s := NewSink(nil, nil)
	tests := []struct {
		kind dispatch.Kind
		want bool
	}{
		{dispatch.KindNotification, true},
		{dispatch.KindEmail, false},
		{dispatch.KindPoints, false},
		{dispatch.KindInterestStats, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := s.Accepts(tt.kind); got != tt.want {
				t.Errorf("Accepts(%s) = %v, want %v", tt.kind, got, tt.want)
			}
		})
	}
}

func TestSink_StoresAndStreams(t *testing.T) {
	repo := &memoryRepo{}
	h := hub.NewHub()
	stream := make(hub.Client, 1)
	h.Subscribe(2, stream)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	err := NewSink(repo, h).Handle(context.Background(), dispatch.Event{
		Kind:       dispatch.KindNotification,
		Topic:      dispatch.TopicNewInterest,
		ActorID:    1,
		TargetID:   2,
		InterestID: "i-1",
		Payload:    map[string]any{"interest_id": "i-1", "from_user_id": uint(1)},
		OccurredAt: at,
	})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	stored, _ := repo.List(context.Background(), 2, 0)
	if len(stored) != 1 {
		t.Fatalf("stored %d notifications, want 1", len(stored))
	}
	n := stored[0]
	if n.Kind != dispatch.TopicNewInterest || n.UserID != 2 || !n.CreatedAt.Equal(at) || n.ID == "" || n.Read {
		t.Errorf("stored notification = %+v", n)
	}

	select {
	case msg := <-stream:
		var got struct {
			Type    string       `json:"type"`
			Payload Notification `json:"payload"`
		}
		if err := json.Unmarshal(msg, &got); err != nil {
			t.Fatalf("unmarshal stream message: %v", err)
		}
		if got.Type != dispatch.TopicNewInterest || got.Payload.ID != n.ID {
			t.Errorf("streamed %+v, want notification %s", got, n.ID)
		}
	default:
		t.Error("nothing streamed to recipient")
	}
}

func TestSink_RepositoryFailureSkipsStream(t *testing.T) {
	repo := &memoryRepo{err: errors.New("redis down")}
	h := hub.NewHub()
	stream := make(hub.Client, 1)
	h.Subscribe(2, stream)

	err := NewSink(repo, h).Handle(context.Background(), dispatch.Event{Kind: dispatch.KindNotification, Topic: "x", TargetID: 2})
	if err == nil {
		t.Fatal("Handle() error = nil, want repository error")
	}
	select {
	case msg := <-stream:
		t.Errorf("streamed %s after failed store", msg)
	default:
	}
}

func TestKey(t *testing.T) {
	if got := key(42); got != "notif:42" {
		t.Errorf("key(42) = %q", got)
	}
}
