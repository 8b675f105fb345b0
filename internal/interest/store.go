package interest

import (
	"context"
	"errors"
	"time"

	"matchwell/backend/internal/dispatch"
	"matchwell/backend/internal/models"
)

// ErrNoRecord is returned by stores when a looked-up interest does not exist.
var ErrNoRecord = errors.New("interest record not found")

// ErrPairExists is returned by Tx.Create when the (sender, receiver) pair already has a row.
var ErrPairExists = errors.New("interest pair already exists")

// Tx is the view of the store inside a pair-scoped atomic unit. Writes made through a Tx are
// applied together or not at all.
type Tx interface {
	Get(ctx context.Context, id string) (*models.Interest, error)
	// FindPair returns ErrNoRecord when sender has no interest in receiver.
	FindPair(ctx context.Context, senderID, receiverID uint) (*models.Interest, error)
	Create(ctx context.Context, in *models.Interest) error
	UpdateStatus(ctx context.Context, id string, status models.InterestStatus, at time.Time) error
	Delete(ctx context.Context, id string) error
	UpsertDeclined(ctx context.Context, marker models.DeclinedMarker) error
}

// Store persists interests and declined markers.
type Store interface {
	// WithinPair runs fn as one atomic unit, serialized against every other WithinPair call
	// for the same unordered {a, b} pair. If fn returns an error nothing it wrote is kept.
	WithinPair(ctx context.Context, a, b uint, fn func(tx Tx) error) error

	Get(ctx context.Context, id string) (*models.Interest, error)
	FindPair(ctx context.Context, senderID, receiverID uint) (*models.Interest, error)
	// ListByReceiver returns interests received by receiverID, newest first. An empty status
	// returns every status.
	ListByReceiver(ctx context.Context, receiverID uint, status models.InterestStatus) ([]models.Interest, error)
	// ListBySender returns every interest sent by senderID, newest first.
	ListBySender(ctx context.Context, senderID uint) ([]models.Interest, error)
	// Declined returns the marker userID holds against declinedUserID, or ErrNoRecord.
	Declined(ctx context.Context, userID, declinedUserID uint) (*models.DeclinedMarker, error)
}

// Profiles resolves users and profiles. It is the read side of the external profile service.
type Profiles interface {
	// ByUserID returns ErrNoRecord when the user has no profile.
	ByUserID(ctx context.Context, userID uint) (*models.Profile, error)
	// ByID returns ErrNoRecord when the profile does not exist.
	ByID(ctx context.Context, profileID uint) (*models.Profile, error)
}

// ApprovalOracle reports whether a user's profile is currently approved.
type ApprovalOracle interface {
	ApprovalStatus(ctx context.Context, userID uint) (models.ApprovalStatus, error)
}

// Publisher accepts best-effort side effects. Implementations must not block.
type Publisher interface {
	Dispatch(ctx context.Context, ev dispatch.Event)
}
