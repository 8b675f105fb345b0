package models

import "gorm.io/gorm"

// Account is a login identity. Its ID is the user id used across interests and profiles.
type Account struct {
	gorm.Model
	Email        string `gorm:"size:255;unique;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Role         string `gorm:"size:50;not null;default:'user';index"`

	Profile *Profile `gorm:"foreignKey:UserID"`
}
