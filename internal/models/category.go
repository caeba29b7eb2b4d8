package models

// Category groups spending. Soft-deleted through IsDeleted.
type Category struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	UserID       uint   `gorm:"index;not null" json:"user_id"`
	CategoryName string `gorm:"size:100;index;not null" json:"category_name"`
	IsDeleted    bool   `gorm:"not null;default:false" json:"is_deleted"`
	Synced       bool   `gorm:"not null;default:false" json:"-"`
}
