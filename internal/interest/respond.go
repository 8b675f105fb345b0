package interest

import (
	"context"
	"errors"

	"matchwell/backend/internal/models"
)

// Action is a response to an existing interest.
type Action string

const (
	ActionAccept     Action = "accept"
	ActionReject     Action = "reject"
	ActionReconsider Action = "reconsider"
	ActionWithdraw   Action = "withdraw"
)

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	switch a {
	case ActionAccept, ActionReject, ActionReconsider, ActionWithdraw:
		return true
	}
	return false
}

// bySender reports whether a is performed by the interest's sender rather than its receiver.
func (a Action) bySender() bool { return a == ActionWithdraw }

// RespondToReceived applies action to the interest by actorID.
//
//	accept      receiver, approved, pending|rejected -> accepted
//	reject      receiver, pending -> rejected
//	reconsider  receiver, approved, rejected -> accepted
//	withdraw    sender, accepted -> withdrawn; pending|rejected -> deleted
//
// Reconsider checks only the receiver's approval; the sender is not re-checked.
func (e *Engine) RespondToReceived(ctx context.Context, interestID string, actorID uint, action Action) (*Result, error) {
	if actorID == 0 {
		return nil, ErrUnauthorized
	}
	if !action.Valid() {
		return nil, newError(ReasonInvalidAction, "unknown action %q", action)
	}

	current, err := e.store.Get(ctx, interestID)
	if errors.Is(err, ErrNoRecord) {
		return nil, newError(ReasonNotFound, "interest not found")
	}
	if err != nil {
		return nil, passthrough("load interest", err)
	}

	if action.bySender() {
		if current.SenderID != actorID {
			return nil, newError(ReasonForbidden, "only the sender can %s this interest", action)
		}
	} else if current.ReceiverID != actorID {
		return nil, newError(ReasonForbidden, "only the receiver can %s this interest", action)
	}

	var sender *models.Profile
	if action == ActionAccept || action == ActionReconsider {
		ok, err := e.approved(ctx, actorID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &Error{
				Reason:        ReasonVerificationRequired,
				Message:       "your profile must be approved to accept interests",
				WouldBeMutual: true,
			}
		}
		sender, err = e.profileOf(ctx, current.SenderID, newError(ReasonNotFound, "sender profile not found"))
		if err != nil {
			return nil, err
		}
	}

	var result *Result
	var previous models.InterestStatus
	err = e.store.WithinPair(ctx, current.SenderID, current.ReceiverID, func(tx Tx) error {
		in, err := tx.Get(ctx, interestID)
		if errors.Is(err, ErrNoRecord) {
			return newError(ReasonNotFound, "interest not found")
		}
		if err != nil {
			return err
		}
		previous = in.Status
		result, err = e.transition(ctx, tx, in, action)
		return err
	})
	if err != nil {
		return nil, passthrough("respond to interest", err)
	}

	switch action {
	case ActionAccept, ActionReconsider:
		result.Contact = contactOf(sender)
		e.emitAccepted(ctx, result.Interest, sender, action)
	case ActionReject:
		e.emitRejected(ctx, result.Interest)
	case ActionWithdraw:
		e.emitWithdrawn(ctx, result.Interest, previous)
	}
	return result, nil
}

func invalidTransition(action Action, from models.InterestStatus) *Error {
	return newError(ReasonInvalidTransition, "cannot %s an interest that is %s", action, from)
}

// transition applies action inside the pair's atomic unit.
func (e *Engine) transition(ctx context.Context, tx Tx, in *models.Interest, action Action) (*Result, error) {
	now := e.now()
	setStatus := func(status models.InterestStatus) (*Result, error) {
		if err := tx.UpdateStatus(ctx, in.ID, status, now); err != nil {
			return nil, err
		}
		in.Status = status
		in.UpdatedAt = now
		return &Result{Interest: in, Mutual: status == models.StatusAccepted}, nil
	}

	switch action {
	case ActionAccept:
		if in.Status != models.StatusPending && in.Status != models.StatusRejected {
			return nil, invalidTransition(action, in.Status)
		}
		return setStatus(models.StatusAccepted)

	case ActionReconsider:
		if in.Status != models.StatusRejected {
			return nil, invalidTransition(action, in.Status)
		}
		return setStatus(models.StatusAccepted)

	case ActionReject:
		if in.Status != models.StatusPending {
			return nil, invalidTransition(action, in.Status)
		}
		if err := tx.UpsertDeclined(ctx, models.DeclinedMarker{
			UserID:         in.ReceiverID,
			DeclinedUserID: in.SenderID,
			Source:         models.DeclineSourceInterestRejected,
		}); err != nil {
			return nil, err
		}
		return setStatus(models.StatusRejected)

	case ActionWithdraw:
		switch in.Status {
		case models.StatusAccepted:
			if err := tx.UpsertDeclined(ctx, models.DeclinedMarker{
				UserID:         in.SenderID,
				DeclinedUserID: in.ReceiverID,
				Source:         models.DeclineSourceConnectionWithdrawn,
			}); err != nil {
				return nil, err
			}
			return setStatus(models.StatusWithdrawn)

		case models.StatusPending, models.StatusRejected:
			// The marker must exist before the row goes away.
			if err := tx.UpsertDeclined(ctx, models.DeclinedMarker{
				UserID:         in.SenderID,
				DeclinedUserID: in.ReceiverID,
				Source:         models.DeclineSourceInterestWithdrawn,
			}); err != nil {
				return nil, err
			}
			if err := tx.Delete(ctx, in.ID); err != nil {
				return nil, err
			}
			return &Result{Interest: in, Deleted: true}, nil
		}
		return nil, invalidTransition(action, in.Status)
	}

	return nil, newError(ReasonInvalidAction, "unknown action %q", action)
}
