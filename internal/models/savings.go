package models

import "time"

// SavingsGoal is a target amount to save. Its progress is the sum of its
// contributions and is never stored.
type SavingsGoal struct {
	ID                   uint                  `gorm:"primaryKey" json:"id"`
	UserID               uint                  `gorm:"index;not null" json:"user_id"`
	GoalName             string                `gorm:"size:255;not null" json:"goal_name"`
	TargetAmount         float64               `gorm:"not null" json:"target_amount"`
	Currency             Currency              `gorm:"size:3;not null;default:NGN" json:"currency"`
	Deadline             *time.Time            `json:"deadline"`
	CreatedAt            time.Time             `json:"created_at"`
	Synced               bool                  `gorm:"not null;default:false" json:"-"`
	SavingsContributions []SavingsContribution `gorm:"foreignKey:GoalID" json:"savings_contributions"`
}

// SavingsContribution adds money to a goal. UserID duplicates the goal's
// owner so ownership checks need no join.
type SavingsContribution struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	GoalID   uint      `gorm:"index;not null" json:"goal_id"`
	UserID   uint      `gorm:"index;not null" json:"user_id"`
	Amount   float64   `gorm:"not null" json:"amount"`
	Currency Currency  `gorm:"size:3;not null;default:NGN" json:"currency"`
	Date     time.Time `gorm:"index;not null" json:"date"`
	Synced   bool      `gorm:"not null;default:false" json:"-"`
}
