package models

import "time"

// ApprovalStatus is the moderation state of a profile.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Profile is the matchmaking profile owned by an account. Most fields are maintained by the
// profile service; the interest and ranking code only reads them, except ReferralBoostStart.
type Profile struct {
	ID             uint           `gorm:"primaryKey"`
	UserID         uint           `gorm:"uniqueIndex;not null"`
	FullName       string         `gorm:"size:255;not null"`
	Email          string         `gorm:"size:255"`
	Phone          string         `gorm:"size:50"`
	Instagram      string         `gorm:"size:255"`
	Facebook       string         `gorm:"size:255"`
	LinkedIn       string         `gorm:"size:255"`
	ApprovalStatus ApprovalStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	IsActive       bool           `gorm:"not null;default:true"`
	IsSuspended    bool           `gorm:"not null;default:false"`

	ReferralCode       *string `gorm:"size:32;uniqueIndex"`
	ReferredBy         *string `gorm:"size:32;index"`
	ReferralBoostStart *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Available reports whether the profile can receive interests and appear in feeds.
func (p *Profile) Available() bool {
	return p.IsActive && !p.IsSuspended && p.ApprovalStatus == ApprovalApproved
}

// MatchScore is a compatibility score computed upstream for a (viewer, candidate) pair.
type MatchScore struct {
	ViewerID    uint    `gorm:"primaryKey"`
	CandidateID uint    `gorm:"primaryKey"`
	Percentage  float64 `gorm:"not null"`
	UpdatedAt   time.Time
}
