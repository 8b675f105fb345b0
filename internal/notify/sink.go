package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	"matchwell/backend/internal/dispatch"
	"matchwell/backend/internal/hub"
)

// Sink stores notification events and pushes them to the recipient's open streams.
// Either dependency may be nil.
type Sink struct {
	repo Repository
	hub  *hub.Hub
}

func NewSink(repo Repository, h *hub.Hub) *Sink {
	return &Sink{repo: repo, hub: h}
}

func (s *Sink) Name() string { return "notifications" }

func (s *Sink) Accepts(kind dispatch.Kind) bool { return kind == dispatch.KindNotification }

func (s *Sink) Handle(ctx context.Context, ev dispatch.Event) error {
	at := ev.OccurredAt
	if at.IsZero() {
		at = time.Now()
	}
	n := Notification{
		ID:        uuid.NewString(),
		UserID:    ev.TargetID,
		Kind:      ev.Topic,
		Payload:   ev.Payload,
		CreatedAt: at,
	}
	if s.repo != nil {
		if err := s.repo.Push(ctx, n); err != nil {
			return err
		}
	}
	if s.hub != nil {
		return s.hub.Publish(n.UserID, hub.Event{Type: n.Kind, Payload: n})
	}
	return nil
}
