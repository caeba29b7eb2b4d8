package models

import "time"

// Income is money received. It has no category link.
type Income struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uint      `gorm:"index;not null" json:"user_id"`
	Amount   float64   `gorm:"not null" json:"amount"`
	Source   string    `gorm:"size:255;not null" json:"source"`
	Type     *string   `gorm:"size:64" json:"type"` // free text, e.g. "cash" or "card"
	Currency Currency  `gorm:"size:3;not null;default:NGN" json:"currency"`
	Date     time.Time `gorm:"index;not null" json:"date"`
	Synced   bool      `gorm:"not null;default:false" json:"-"`
}

// TableName keeps the singular table name used by existing databases.
func (Income) TableName() string { return "income" }
