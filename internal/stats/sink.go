// Package stats persists lifetime interest counters and engagement points.
package stats

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"matchwell/backend/internal/dispatch"
	"matchwell/backend/internal/models"
)

// Sink handles interest stats, mutual match and points events.
type Sink struct {
	db *gorm.DB
}

// NewSink creates a Sink.
func NewSink(db *gorm.DB) *Sink {
	return &Sink{db: db}
}

func (s *Sink) Name() string { return "stats" }

func (s *Sink) Accepts(kind dispatch.Kind) bool {
	switch kind {
	case dispatch.KindInterestStats, dispatch.KindMutualMatch, dispatch.KindPoints:
		return true
	}
	return false
}

func (s *Sink) Handle(ctx context.Context, ev dispatch.Event) error {
	switch ev.Kind {
	case dispatch.KindInterestStats:
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := increment(tx, ev.ActorID, "sent"); err != nil {
				return err
			}
			return increment(tx, ev.TargetID, "received")
		})
	case dispatch.KindMutualMatch:
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := increment(tx, ev.ActorID, "mutual_matches"); err != nil {
				return err
			}
			return increment(tx, ev.TargetID, "mutual_matches")
		})
	case dispatch.KindPoints:
		return s.award(ctx, ev)
	}
	return nil
}

// increment adds one to column for userID, creating the row on first use.
func increment(tx *gorm.DB, userID uint, column string) error {
	row := models.InterestStats{UserID: userID, UpdatedAt: time.Now().UTC()}
	switch column {
	case "sent":
		row.Sent = 1
	case "received":
		row.Received = 1
	case "mutual_matches":
		row.MutualMatches = 1
	default:
		return fmt.Errorf("unknown stats column %q", column)
	}

	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			column:       gorm.Expr("interest_stats."+column+" + 1"),
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("increment %s for user %d: %w", column, userID, err)
	}
	return nil
}

func (s *Sink) award(ctx context.Context, ev dispatch.Event) error {
	points, _ := ev.Payload["points"].(int)
	if points == 0 {
		return nil
	}
	entry := models.PointsEntry{
		UserID:     ev.ActorID,
		Kind:       ev.Topic,
		InterestID: ev.InterestID,
		Points:     points,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("award %s points to user %d: %w", ev.Topic, ev.ActorID, err)
	}
	return nil
}

// Totals returns the lifetime counters of userID. A user without activity gets zeros.
func (s *Sink) Totals(ctx context.Context, userID uint) (models.InterestStats, error) {
	var row models.InterestStats
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Limit(1).Find(&row).Error
	row.UserID = userID
	return row, err
}

// Points returns the sum of userID's engagement awards.
func (s *Sink) Points(ctx context.Context, userID uint) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).
		Model(&models.PointsEntry{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(points), 0)").
		Scan(&total).Error
	return total, err
}
