package interest

import (
	"context"

	"matchwell/backend/internal/dispatch"
	"matchwell/backend/internal/models"
)

// Engagement points per response.
const (
	PointsInterestAccepted = 10
	PointsInterestRejected = 2
)

func (e *Engine) emit(ctx context.Context, ev dispatch.Event) {
	if e.events == nil {
		return
	}
	ev.OccurredAt = e.now()
	e.events.Dispatch(ctx, ev)
}

func (e *Engine) notify(ctx context.Context, topic string, in *models.Interest, from, to uint, payload map[string]any) {
	if payload == nil {
		payload = map[string]any{}
	}
	payload["interest_id"] = in.ID
	payload["from_user_id"] = from
	e.emit(ctx, dispatch.Event{
		Kind:       dispatch.KindNotification,
		Topic:      topic,
		ActorID:    from,
		TargetID:   to,
		InterestID: in.ID,
		Payload:    payload,
	})
}

func (e *Engine) email(ctx context.Context, topic string, in *models.Interest, from uint, to *models.Profile, payload map[string]any) {
	if to == nil || to.Email == "" {
		return
	}
	if payload == nil {
		payload = map[string]any{}
	}
	payload["to_email"] = to.Email
	payload["to_name"] = to.FullName
	e.emit(ctx, dispatch.Event{
		Kind:       dispatch.KindEmail,
		Topic:      topic,
		ActorID:    from,
		TargetID:   to.UserID,
		InterestID: in.ID,
		Payload:    payload,
	})
}

func (e *Engine) emitNewInterest(ctx context.Context, in *models.Interest, sender, receiver *models.Profile) {
	e.emit(ctx, dispatch.Event{Kind: dispatch.KindInterestStats, ActorID: in.SenderID, TargetID: in.ReceiverID, InterestID: in.ID})

	payload := map[string]any{"from_name": sender.FullName}
	if in.Message != nil {
		payload["message"] = *in.Message
	}
	e.notify(ctx, dispatch.TopicNewInterest, in, in.SenderID, in.ReceiverID, payload)
	e.email(ctx, dispatch.TopicNewInterest, in, in.SenderID, receiver, map[string]any{"from_name": sender.FullName})
}

// emitMutual notifies the original sender (in.ReceiverID) that their interest is now mutual.
func (e *Engine) emitMutual(ctx context.Context, in *models.Interest, sender, original *models.Profile) {
	e.emit(ctx, dispatch.Event{Kind: dispatch.KindInterestStats, ActorID: in.SenderID, TargetID: in.ReceiverID, InterestID: in.ID})
	e.emit(ctx, dispatch.Event{Kind: dispatch.KindMutualMatch, ActorID: in.SenderID, TargetID: in.ReceiverID, InterestID: in.ID})

	e.notify(ctx, dispatch.TopicMutualMatch, in, in.SenderID, in.ReceiverID, map[string]any{"from_name": sender.FullName})
	e.email(ctx, dispatch.TopicMutualMatch, in, in.SenderID, original, map[string]any{"from_name": sender.FullName})
}

func (e *Engine) emitAccepted(ctx context.Context, in *models.Interest, sender *models.Profile, action Action) {
	e.emit(ctx, dispatch.Event{Kind: dispatch.KindMutualMatch, ActorID: in.ReceiverID, TargetID: in.SenderID, InterestID: in.ID})

	e.notify(ctx, dispatch.TopicInterestAccepted, in, in.ReceiverID, in.SenderID, nil)
	e.email(ctx, dispatch.TopicInterestAccepted, in, in.ReceiverID, sender, nil)

	if action == ActionAccept {
		e.emit(ctx, dispatch.Event{
			Kind:       dispatch.KindPoints,
			Topic:      dispatch.TopicInterestAccepted,
			ActorID:    in.ReceiverID,
			InterestID: in.ID,
			Payload:    map[string]any{"points": PointsInterestAccepted},
		})
	}
}

func (e *Engine) emitRejected(ctx context.Context, in *models.Interest) {
	e.notify(ctx, dispatch.TopicInterestRejected, in, in.ReceiverID, in.SenderID, nil)
	e.emit(ctx, dispatch.Event{
		Kind:       dispatch.KindPoints,
		Topic:      dispatch.TopicInterestRejected,
		ActorID:    in.ReceiverID,
		InterestID: in.ID,
		Payload:    map[string]any{"points": PointsInterestRejected},
	})
}

func (e *Engine) emitWithdrawn(ctx context.Context, in *models.Interest, previous models.InterestStatus) {
	topic := dispatch.TopicInterestWithdrawn
	if previous == models.StatusAccepted {
		topic = dispatch.TopicConnectionWithdrawn
	}
	e.notify(ctx, topic, in, in.SenderID, in.ReceiverID, nil)
}
