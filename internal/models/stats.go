package models

import "time"

// InterestStats holds lifetime interest counters for a user.
type InterestStats struct {
	UserID        uint  `gorm:"primaryKey"`
	Sent          int64 `gorm:"not null;default:0"`
	Received      int64 `gorm:"not null;default:0"`
	MutualMatches int64 `gorm:"not null;default:0"`
	UpdatedAt     time.Time
}

// PointsEntry is one engagement award. (UserID, Kind, InterestID) is unique so a replayed
// award does not count twice.
type PointsEntry struct {
	ID         uint   `gorm:"primaryKey"`
	UserID     uint   `gorm:"not null;uniqueIndex:idx_points_award,priority:1"`
	Kind       string `gorm:"size:50;not null;uniqueIndex:idx_points_award,priority:2"`
	InterestID string `gorm:"size:36;not null;uniqueIndex:idx_points_award,priority:3"`
	Points     int    `gorm:"not null"`
	CreatedAt  time.Time
}
