package storage

import (
	"context"
	"fmt"
	"strings"

	"fintrack/internal/apperr"
	"fintrack/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func contributionsByID(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

func normalizeGoal(g *models.SavingsGoal) {
	g.CreatedAt = g.CreatedAt.UTC()
	if g.Deadline != nil {
		d := g.Deadline.UTC()
		g.Deadline = &d
	}
	if g.SavingsContributions == nil {
		g.SavingsContributions = []models.SavingsContribution{}
	}
	for i := range g.SavingsContributions {
		g.SavingsContributions[i].Date = g.SavingsContributions[i].Date.UTC()
	}
}

// ListSavingsGoals returns the user's goals with their contributions.
func (s *Store) ListSavingsGoals(ctx context.Context, userID uint, page Page) ([]models.SavingsGoal, error) {
	page = s.clamp(page)
	goals := []models.SavingsGoal{}
	err := s.conn(ctx).Scopes(ownedBy(userID), paginate(page)).
		Preload("SavingsContributions", contributionsByID).
		Order("id ASC").
		Find(&goals).Error
	if err != nil {
		return nil, translate(err, "list savings goals", "")
	}
	for i := range goals {
		normalizeGoal(&goals[i])
	}
	return goals, nil
}

// CreateSavingsGoal stores g for userID with no contributions.
func (s *Store) CreateSavingsGoal(ctx context.Context, userID uint, g *models.SavingsGoal) error {
	g.GoalName = strings.TrimSpace(g.GoalName)
	if g.GoalName == "" {
		return apperr.Validation(apperr.FieldError{Field: "goal_name", Message: "goal_name is required", Tag: "required"})
	}
	err := s.Transaction(ctx, func(tx *Store) error {
		cur, err := tx.currencyFor(ctx, userID, g.Currency)
		if err != nil {
			return err
		}
		g.ID = 0
		g.UserID = userID
		g.Currency = cur
		g.SavingsContributions = nil
		if g.Deadline != nil {
			d := g.Deadline.UTC()
			g.Deadline = &d
		}
		return translate(tx.conn(ctx).Create(g).Error, "insert savings goal", "")
	})
	if err != nil {
		return err
	}
	normalizeGoal(g)
	return nil
}

func (s *Store) ownedGoal(ctx context.Context, userID, goalID uint, preload bool) (*models.SavingsGoal, error) {
	var g models.SavingsGoal
	q := s.conn(ctx).Scopes(ownedBy(userID)).Where("id = ?", goalID)
	if preload {
		q = q.Preload("SavingsContributions", contributionsByID)
	}
	if err := q.First(&g).Error; err != nil {
		return nil, translate(err, "get savings goal", "Savings goal not found")
	}
	normalizeGoal(&g)
	return &g, nil
}

// GoalProgress is a goal plus figures derived from its contributions.
type GoalProgress struct {
	models.SavingsGoal
	CurrentAmount     float64 `json:"current_amount"`
	RemainingAmount   float64 `json:"remaining_amount"`
	PercentComplete   float64 `json:"percent_complete"`
	ContributionCount int     `json:"contribution_count"`
}

// GetSavingsGoalProgress loads an owned goal and sums its contributions.
// Remaining never goes below zero; percent is capped at 100.
func (s *Store) GetSavingsGoalProgress(ctx context.Context, userID, goalID uint) (*GoalProgress, error) {
	g, err := s.ownedGoal(ctx, userID, goalID, true)
	if err != nil {
		return nil, err
	}

	current := decimal.Zero
	for _, c := range g.SavingsContributions {
		current = current.Add(decimal.NewFromFloat(c.Amount))
	}
	target := decimal.NewFromFloat(g.TargetAmount)
	remaining := decimal.Max(target.Sub(current), decimal.Zero)

	percent := decimal.NewFromInt(100)
	if target.IsPositive() {
		percent = decimal.Min(current.Div(target).Mul(decimal.NewFromInt(100)), percent)
	}

	return &GoalProgress{
		SavingsGoal:       *g,
		CurrentAmount:     current.InexactFloat64(),
		RemainingAmount:   remaining.InexactFloat64(),
		PercentComplete:   percent.Round(2).InexactFloat64(),
		ContributionCount: len(g.SavingsContributions),
	}, nil
}

// CreateContribution adds c to a goal owned by userID. The currency defaults
// to the goal's and must match it when given.
func (s *Store) CreateContribution(ctx context.Context, userID, goalID uint, c *models.SavingsContribution) error {
	return s.Transaction(ctx, func(tx *Store) error {
		g, err := tx.ownedGoal(ctx, userID, goalID, false)
		if err != nil {
			return err
		}
		if c.Currency == "" {
			c.Currency = g.Currency
		}
		if c.Currency != g.Currency {
			return apperr.Invalid(fmt.Sprintf("Contribution currency must match goal currency %s", g.Currency))
		}
		c.ID = 0
		c.GoalID = g.ID
		c.UserID = userID
		c.Date = tx.stamp(c.Date)
		return translate(tx.conn(ctx).Create(c).Error, "insert contribution", "")
	})
}
