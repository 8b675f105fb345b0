package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"matchwell/backend/internal/interest"
	"matchwell/backend/internal/models"
)

// InterestStore is the postgres interest.Store.
type InterestStore struct {
	db *gorm.DB
}

// NewInterestStore creates an InterestStore.
func NewInterestStore(db *gorm.DB) *InterestStore {
	return &InterestStore{db: db}
}

// pairLockKey maps the unordered pair to one advisory lock key.
func pairLockKey(a, b uint) int64 {
	if a > b {
		a, b = b, a
	}
	return int64(uint64(a)<<32 | uint64(b)&0xffffffff)
}

// WithinPair runs fn in a transaction holding a transaction-scoped advisory lock on the pair,
// so concurrent writers for the same two users queue up behind each other.
func (s *InterestStore) WithinPair(ctx context.Context, a, b uint, fn func(tx interest.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", pairLockKey(a, b)).Error; err != nil {
			return fmt.Errorf("lock interest pair: %w", err)
		}
		return fn(&interestTx{db: tx})
	})
}

func (s *InterestStore) Get(ctx context.Context, id string) (*models.Interest, error) {
	return getInterest(s.db.WithContext(ctx), id)
}

func (s *InterestStore) FindPair(ctx context.Context, senderID, receiverID uint) (*models.Interest, error) {
	return findPair(s.db.WithContext(ctx), senderID, receiverID)
}

func (s *InterestStore) ListByReceiver(ctx context.Context, receiverID uint, status models.InterestStatus) ([]models.Interest, error) {
	query := s.db.WithContext(ctx).Where("receiver_id = ?", receiverID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var out []models.Interest
	if err := query.Order("created_at DESC").Order("id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *InterestStore) ListBySender(ctx context.Context, senderID uint) ([]models.Interest, error) {
	var out []models.Interest
	err := s.db.WithContext(ctx).
		Where("sender_id = ?", senderID).
		Order("created_at DESC").Order("id DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *InterestStore) Declined(ctx context.Context, userID, declinedUserID uint) (*models.DeclinedMarker, error) {
	var m models.DeclinedMarker
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND declined_user_id = ?", userID, declinedUserID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, interest.ErrNoRecord
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func getInterest(db *gorm.DB, id string) (*models.Interest, error) {
	var in models.Interest
	err := db.Where("id = ?", id).First(&in).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, interest.ErrNoRecord
	}
	if err != nil {
		return nil, err
	}
	return &in, nil
}

func findPair(db *gorm.DB, senderID, receiverID uint) (*models.Interest, error) {
	var in models.Interest
	err := db.Where("sender_id = ? AND receiver_id = ?", senderID, receiverID).First(&in).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, interest.ErrNoRecord
	}
	if err != nil {
		return nil, err
	}
	return &in, nil
}

type interestTx struct {
	db *gorm.DB
}

func (t *interestTx) Get(ctx context.Context, id string) (*models.Interest, error) {
	return getInterest(t.db.WithContext(ctx), id)
}

func (t *interestTx) FindPair(ctx context.Context, senderID, receiverID uint) (*models.Interest, error) {
	return findPair(t.db.WithContext(ctx), senderID, receiverID)
}

func (t *interestTx) Create(ctx context.Context, in *models.Interest) error {
	err := t.db.WithContext(ctx).Create(in).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return interest.ErrPairExists
	}
	return err
}

func (t *interestTx) UpdateStatus(ctx context.Context, id string, status models.InterestStatus, at time.Time) error {
	result := t.db.WithContext(ctx).
		Model(&models.Interest{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": at})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return interest.ErrNoRecord
	}
	return nil
}

func (t *interestTx) Delete(ctx context.Context, id string) error {
	result := t.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Interest{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return interest.ErrNoRecord
	}
	return nil
}

func (t *interestTx) UpsertDeclined(ctx context.Context, marker models.DeclinedMarker) error {
	return t.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "declined_user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"source", "hidden_from_reconsider", "updated_at"}),
	}).Create(&marker).Error
}
