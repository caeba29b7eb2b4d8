package models

import "time"

// User represents an application user. Owns every other entity.
type User struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Email           string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	FirstName       string    `gorm:"size:100" json:"first_name"`
	LastName        string    `gorm:"size:100" json:"last_name"`
	Password        string    `gorm:"size:255;not null" json:"-"` // bcrypt hash
	DefaultCurrency Currency  `gorm:"size:3;not null;default:NGN" json:"default_currency"`
	CreatedAt       time.Time `json:"created_at"`
	Synced          bool      `gorm:"not null;default:false" json:"-"`
}
