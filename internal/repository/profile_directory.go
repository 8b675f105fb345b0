package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"matchwell/backend/internal/interest"
	"matchwell/backend/internal/models"
)

// ProfileDirectory reads profiles for the interest engine and answers approval queries.
type ProfileDirectory struct {
	db *gorm.DB
}

// NewProfileDirectory creates a ProfileDirectory.
func NewProfileDirectory(db *gorm.DB) *ProfileDirectory {
	return &ProfileDirectory{db: db}
}

func (d *ProfileDirectory) first(ctx context.Context, query string, arg any) (*models.Profile, error) {
	var p models.Profile
	err := d.db.WithContext(ctx).Where(query, arg).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, interest.ErrNoRecord
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (d *ProfileDirectory) ByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	return d.first(ctx, "user_id = ?", userID)
}

func (d *ProfileDirectory) ByID(ctx context.Context, profileID uint) (*models.Profile, error) {
	return d.first(ctx, "id = ?", profileID)
}

// ApprovalStatus returns the approval status of userID's profile.
func (d *ProfileDirectory) ApprovalStatus(ctx context.Context, userID uint) (models.ApprovalStatus, error) {
	var p models.Profile
	err := d.db.WithContext(ctx).Select("approval_status").Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", interest.ErrNoRecord
	}
	if err != nil {
		return "", err
	}
	return p.ApprovalStatus, nil
}

// SetApprovalStatus updates a profile's approval status.
func (d *ProfileDirectory) SetApprovalStatus(ctx context.Context, profileID uint, status models.ApprovalStatus) error {
	result := d.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ?", profileID).
		Update("approval_status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return interest.ErrNoRecord
	}
	return nil
}
