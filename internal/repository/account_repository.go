package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"matchwell/backend/internal/interest"
	"matchwell/backend/internal/models"
)

// ErrEmailTaken is returned by Register when the email is already registered.
var ErrEmailTaken = errors.New("email already registered")

// AccountRepository stores login identities and their profiles.
type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Register creates account and its profile in one transaction. The profile's UserID is set to
// the new account id.
func (r *AccountRepository) Register(ctx context.Context, account *models.Account, profile *models.Profile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Account{}).Where("email = ?", account.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrEmailTaken
		}
		if err := tx.Omit("Profile").Create(account).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailTaken
			}
			return err
		}
		profile.UserID = account.ID
		return tx.Create(profile).Error
	})
}

func (r *AccountRepository) ByEmail(ctx context.Context, email string) (*models.Account, error) {
	var a models.Account
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, interest.ErrNoRecord
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Role returns the role of account id.
func (r *AccountRepository) Role(ctx context.Context, id uint) (string, error) {
	var a models.Account
	err := r.db.WithContext(ctx).Select("role").First(&a, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", interest.ErrNoRecord
	}
	if err != nil {
		return "", err
	}
	return a.Role, nil
}
