// Package interest implements the interest lifecycle: expressing interest, mutual match
// detection, responses (accept, reject, reconsider, withdraw) and the received/sent views.
package interest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"matchwell/backend/internal/models"
)

// Contact is the counterpart's private contact information, revealed only as the result of
// a transition into accepted.
type Contact struct {
	UserID    uint   `json:"user_id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
}

func contactOf(p *models.Profile) *Contact {
	if p == nil {
		return nil
	}
	return &Contact{
		UserID:    p.UserID,
		Name:      p.FullName,
		Email:     p.Email,
		Phone:     p.Phone,
		Instagram: p.Instagram,
		Facebook:  p.Facebook,
		LinkedIn:  p.LinkedIn,
	}
}

// Result is the outcome of a lifecycle operation.
type Result struct {
	Interest *models.Interest `json:"interest,omitempty"`
	Mutual   bool             `json:"mutual"`
	Deleted  bool             `json:"deleted"`
	Contact  *Contact         `json:"contact,omitempty"`
}

// MutualStatus describes both directions between a viewer and another user.
type MutualStatus struct {
	TargetUserID     uint                   `json:"target_user_id"`
	SentByMe         bool                   `json:"sent_by_me"`
	ReceivedFromThem bool                   `json:"received_from_them"`
	Mutual           bool                   `json:"mutual"`
	SentStatus       *models.InterestStatus `json:"sent_status,omitempty"`
	ReceivedStatus   *models.InterestStatus `json:"received_status,omitempty"`
	SentAt           *time.Time             `json:"sent_at,omitempty"`
	ReceivedAt       *time.Time             `json:"received_at,omitempty"`
}

// Engine runs the interest state machine against a Store.
type Engine struct {
	store    Store
	profiles Profiles
	oracle   ApprovalOracle
	events   Publisher

	now   func() time.Time
	newID func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an Engine. events may be nil, in which case side effects are discarded.
func NewEngine(store Store, profiles Profiles, oracle ApprovalOracle, events Publisher, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		profiles: profiles,
		oracle:   oracle,
		events:   events,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) profileOf(ctx context.Context, userID uint, missing *Error) (*models.Profile, error) {
	p, err := e.profiles.ByUserID(ctx, userID)
	if errors.Is(err, ErrNoRecord) {
		return nil, missing
	}
	if err != nil {
		return nil, fmt.Errorf("load profile of user %d: %w", userID, err)
	}
	return p, nil
}

func (e *Engine) approved(ctx context.Context, userID uint) (bool, error) {
	status, err := e.oracle.ApprovalStatus(ctx, userID)
	if errors.Is(err, ErrNoRecord) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("approval status of user %d: %w", userID, err)
	}
	return status == models.ApprovalApproved, nil
}

// passthrough returns lifecycle errors unchanged and wraps storage failures.
func passthrough(op string, err error) error {
	var lifecycleErr *Error
	if errors.As(err, &lifecycleErr) {
		return lifecycleErr
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Express records senderID's interest in receiverID. If receiverID already sent an interest
// to senderID, in any status, the pair becomes a mutual match: both rows end accepted, which
// requires senderID's own profile to be approved.
func (e *Engine) Express(ctx context.Context, senderID, receiverID uint, message string) (*Result, error) {
	if senderID == 0 {
		return nil, ErrUnauthorized
	}
	if senderID == receiverID {
		return nil, newError(ReasonForbidden, "cannot express interest in yourself")
	}

	sender, err := e.profileOf(ctx, senderID, newError(ReasonNotFound, "create your profile before expressing interest"))
	if err != nil {
		return nil, err
	}
	receiver, err := e.profileOf(ctx, receiverID, newError(ReasonNotFound, "profile not found"))
	if err != nil {
		return nil, err
	}
	if !receiver.Available() {
		return nil, newError(ReasonNotFound, "profile not available")
	}

	var msg *string
	if trimmed := strings.TrimSpace(message); trimmed != "" {
		msg = &trimmed
	}

	var result *Result
	err = e.store.WithinPair(ctx, senderID, receiverID, func(tx Tx) error {
		existing, err := tx.FindPair(ctx, senderID, receiverID)
		if err == nil {
			return &Error{Reason: ReasonDuplicateInterest, Message: "interest already expressed", Existing: existing}
		}
		if !errors.Is(err, ErrNoRecord) {
			return err
		}

		reverse, err := tx.FindPair(ctx, receiverID, senderID)
		if errors.Is(err, ErrNoRecord) {
			in := &models.Interest{
				ID:         e.newID(),
				SenderID:   senderID,
				ReceiverID: receiverID,
				Message:    msg,
				Status:     models.StatusPending,
				CreatedAt:  e.now(),
			}
			if err := tx.Create(ctx, in); err != nil {
				return err
			}
			result = &Result{Interest: in}
			return nil
		}
		if err != nil {
			return err
		}

		ok, err := e.approved(ctx, senderID)
		if err != nil {
			return err
		}
		if !ok {
			return &Error{
				Reason:        ReasonVerificationRequired,
				Message:       "your profile must be approved to complete a mutual match",
				WouldBeMutual: true,
			}
		}

		now := e.now()
		if err := tx.UpdateStatus(ctx, reverse.ID, models.StatusAccepted, now); err != nil {
			return err
		}
		in := &models.Interest{
			ID:         e.newID(),
			SenderID:   senderID,
			ReceiverID: receiverID,
			Message:    msg,
			Status:     models.StatusAccepted,
			CreatedAt:  now,
		}
		if err := tx.Create(ctx, in); err != nil {
			return err
		}
		result = &Result{Interest: in, Mutual: true, Contact: contactOf(receiver)}
		return nil
	})
	if errors.Is(err, ErrPairExists) {
		dup := newError(ReasonDuplicateInterest, "interest already expressed")
		if existing, ferr := e.store.FindPair(ctx, senderID, receiverID); ferr == nil {
			dup.Existing = existing
		}
		return nil, dup
	}
	if err != nil {
		return nil, passthrough("express interest", err)
	}

	if result.Mutual {
		e.emitMutual(ctx, result.Interest, sender, receiver)
	} else {
		e.emitNewInterest(ctx, result.Interest, sender, receiver)
	}
	return result, nil
}

// ListReceived returns interests received by userID, newest first. For the pending view,
// interests from users that userID has also sent an interest to are left out: that pair is
// resolved through the mutual path.
func (e *Engine) ListReceived(ctx context.Context, userID uint, status models.InterestStatus) ([]models.Interest, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	if status != "" && !status.Valid() {
		return nil, newError(ReasonInvalidAction, "unknown status filter %q", status)
	}

	received, err := e.store.ListByReceiver(ctx, userID, status)
	if err != nil {
		return nil, fmt.Errorf("list received interests: %w", err)
	}
	if status != "" && status != models.StatusPending {
		return received, nil
	}

	sent, err := e.store.ListBySender(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sent interests: %w", err)
	}
	sentTo := make(map[uint]struct{}, len(sent))
	for _, in := range sent {
		sentTo[in.ReceiverID] = struct{}{}
	}

	filtered := received[:0]
	for _, in := range received {
		if _, ok := sentTo[in.SenderID]; ok && in.Status == models.StatusPending {
			continue
		}
		filtered = append(filtered, in)
	}
	return filtered, nil
}

// ListSent returns interests sent by userID that are not accepted, newest first. Accepted
// interests are connections.
func (e *Engine) ListSent(ctx context.Context, userID uint) ([]models.Interest, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	sent, err := e.store.ListBySender(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sent interests: %w", err)
	}
	out := sent[:0]
	for _, in := range sent {
		if in.Status != models.StatusAccepted {
			out = append(out, in)
		}
	}
	return out, nil
}

// CheckMutual reports the interests between viewerID and the owner of targetProfileID.
func (e *Engine) CheckMutual(ctx context.Context, viewerID, targetProfileID uint) (*MutualStatus, error) {
	if viewerID == 0 {
		return nil, ErrUnauthorized
	}
	profile, err := e.profiles.ByID(ctx, targetProfileID)
	if errors.Is(err, ErrNoRecord) {
		return nil, newError(ReasonNotFound, "profile not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load profile %d: %w", targetProfileID, err)
	}

	status := &MutualStatus{TargetUserID: profile.UserID}

	sent, err := e.store.FindPair(ctx, viewerID, profile.UserID)
	switch {
	case err == nil:
		status.SentByMe = true
		status.SentStatus = &sent.Status
		status.SentAt = &sent.CreatedAt
	case !errors.Is(err, ErrNoRecord):
		return nil, fmt.Errorf("find sent interest: %w", err)
	}

	received, err := e.store.FindPair(ctx, profile.UserID, viewerID)
	switch {
	case err == nil:
		status.ReceivedFromThem = true
		status.ReceivedStatus = &received.Status
		status.ReceivedAt = &received.CreatedAt
	case !errors.Is(err, ErrNoRecord):
		return nil, fmt.Errorf("find received interest: %w", err)
	}

	status.Mutual = (status.SentByMe && status.ReceivedFromThem) ||
		(sent != nil && sent.Status == models.StatusAccepted) ||
		(received != nil && received.Status == models.StatusAccepted)
	return status, nil
}
