package models

import "time"

// InterestStatus defines the lifecycle state of an interest.
type InterestStatus string

const (
	// StatusPending means the interest was sent and the receiver has not answered yet.
	StatusPending InterestStatus = "pending"

	// StatusAccepted means both sides are connected and contact details are shared.
	StatusAccepted InterestStatus = "accepted"

	// StatusRejected means the receiver declined. The receiver may still reconsider.
	StatusRejected InterestStatus = "rejected"

	// StatusWithdrawn means the sender withdrew an accepted connection. Terminal.
	StatusWithdrawn InterestStatus = "withdrawn"
)

// Valid reports whether s is one of the known statuses.
func (s InterestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}

// Interest is a one-directional expression of interest from one user to another.
// The (SenderID, ReceiverID) pair is unique.
type Interest struct {
	ID         string         `gorm:"primaryKey;size:36" json:"id"`
	SenderID   uint           `gorm:"not null;uniqueIndex:idx_interest_pair,priority:1" json:"sender_id"`
	ReceiverID uint           `gorm:"not null;uniqueIndex:idx_interest_pair,priority:2;index" json:"receiver_id"`
	Message    *string        `gorm:"type:text" json:"message,omitempty"`
	Status     InterestStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Declined marker sources.
const (
	DeclineSourceConnectionWithdrawn = "connection_withdrawn"
	DeclineSourceInterestWithdrawn   = "interest_withdrawn"
	DeclineSourceInterestRejected    = "interest_rejected"
)

// DeclinedMarker records that UserID does not want to see DeclinedUserID in their feed.
// Markers are upserted and never deleted by the interest lifecycle.
type DeclinedMarker struct {
	UserID               uint   `gorm:"primaryKey"`
	DeclinedUserID       uint   `gorm:"primaryKey"`
	Source               string `gorm:"size:50"`
	HiddenFromReconsider bool   `gorm:"not null;default:false"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
