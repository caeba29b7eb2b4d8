package storage

import (
	"context"

	"fintrack/internal/models"
)

// ListIncome returns the user's income, newest first.
func (s *Store) ListIncome(ctx context.Context, userID uint, page Page) ([]models.Income, error) {
	page = s.clamp(page)
	income := []models.Income{}
	err := s.conn(ctx).Scopes(ownedBy(userID), paginate(page)).
		Order("date DESC, id DESC").
		Find(&income).Error
	if err != nil {
		return nil, translate(err, "list income", "")
	}
	for i := range income {
		income[i].Date = income[i].Date.UTC()
	}
	return income, nil
}

// CreateIncome stores in for userID. Currency falls back to the user's
// default and a zero date to now.
func (s *Store) CreateIncome(ctx context.Context, userID uint, in *models.Income) error {
	return s.Transaction(ctx, func(tx *Store) error {
		cur, err := tx.currencyFor(ctx, userID, in.Currency)
		if err != nil {
			return err
		}
		in.ID = 0
		in.UserID = userID
		in.Currency = cur
		in.Date = tx.stamp(in.Date)
		return translate(tx.conn(ctx).Create(in).Error, "insert income", "")
	})
}
