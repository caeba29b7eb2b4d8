package models

import "time"

// Spending is a single outgoing payment.
type Spending struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	Amount     float64   `gorm:"not null" json:"amount"`
	Notes      *string   `gorm:"type:text" json:"notes"`
	ItemName   *string   `gorm:"size:255" json:"item_name"`
	Currency   Currency  `gorm:"size:3;not null;default:NGN" json:"currency"`
	Date       time.Time `gorm:"index;not null" json:"date"`
	CategoryID *uint     `gorm:"index" json:"category_id"`
	IsDeleted  bool      `gorm:"not null;default:false" json:"is_deleted"`
	Synced     bool      `gorm:"not null;default:false" json:"-"`
}

// TableName keeps the singular table name used by existing databases.
func (Spending) TableName() string { return "spending" }
