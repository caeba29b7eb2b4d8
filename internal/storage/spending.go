package storage

import (
	"context"
	"time"

	"fintrack/internal/apperr"
	"fintrack/internal/models"

	"gorm.io/gorm"
)

// DefaultSpendingWindow is how far back a spending listing reaches when no
// start date is given.
const DefaultSpendingWindow = 7 * 24 * time.Hour

// SpendingFilter selects spending by calendar day, inclusive on both ends.
type SpendingFilter struct {
	StartDate  time.Time
	EndDate    time.Time
	CategoryID *uint
	Page       Page
}

// NewSpendingFilter resolves optional start and end dates against now:
// end defaults to today and start to end minus seven days. Both are
// truncated to the start of their UTC day.
func NewSpendingFilter(start, end *time.Time, now time.Time) (SpendingFilter, error) {
	var f SpendingFilter
	if end != nil {
		f.EndDate = startOfDay(*end)
	} else {
		f.EndDate = startOfDay(now)
	}
	if start != nil {
		f.StartDate = startOfDay(*start)
	} else {
		f.StartDate = startOfDay(f.EndDate.Add(-DefaultSpendingWindow))
	}
	if start != nil && end != nil && f.StartDate.After(f.EndDate) {
		return f, apperr.Invalid("start_date cannot be after end_date")
	}
	return f, nil
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// window limits a spending query to [start 00:00, end+1 00:00).
func (f SpendingFilter) window(db *gorm.DB) *gorm.DB {
	return db.Where("date >= ? AND date < ?", f.StartDate, f.EndDate.AddDate(0, 0, 1))
}

func (s *Store) liveSpending(ctx context.Context, userID uint) *gorm.DB {
	return s.conn(ctx).Model(&models.Spending{}).Scopes(ownedBy(userID)).Where("is_deleted = ?", false)
}

// ListSpending returns the user's non-deleted spending inside the filter
// window, newest first.
func (s *Store) ListSpending(ctx context.Context, userID uint, f SpendingFilter) ([]models.Spending, error) {
	page := s.clamp(f.Page)
	q := s.liveSpending(ctx, userID).Scopes(f.window, paginate(page))
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	spending := []models.Spending{}
	if err := q.Order("date DESC, id DESC").Find(&spending).Error; err != nil {
		return nil, translate(err, "list spending", "")
	}
	normalizeSpending(spending)
	return spending, nil
}

func normalizeSpending(rows []models.Spending) {
	for i := range rows {
		rows[i].Date = rows[i].Date.UTC()
	}
}

// CreateSpending stores sp for userID. A category, when given, must be a live
// category of the same user.
func (s *Store) CreateSpending(ctx context.Context, userID uint, sp *models.Spending) error {
	return s.Transaction(ctx, func(tx *Store) error {
		if sp.CategoryID != nil {
			if _, err := tx.activeCategory(ctx, userID, *sp.CategoryID); err != nil {
				return err
			}
		}
		cur, err := tx.currencyFor(ctx, userID, sp.Currency)
		if err != nil {
			return err
		}
		sp.ID = 0
		sp.UserID = userID
		sp.Currency = cur
		sp.IsDeleted = false
		sp.Date = tx.stamp(sp.Date)
		return translate(tx.conn(ctx).Create(sp).Error, "insert spending", "")
	})
}

// SpendingPatch holds spending fields to change. Nil fields are left alone.
type SpendingPatch struct {
	Amount     *float64
	Notes      *string
	ItemName   *string
	Currency   *models.Currency
	Date       *time.Time
	CategoryID *uint
}

// UpdateSpending applies patch to a live spending row owned by userID.
func (s *Store) UpdateSpending(ctx context.Context, userID, id uint, patch SpendingPatch) (*models.Spending, error) {
	var sp models.Spending
	err := s.Transaction(ctx, func(tx *Store) error {
		if err := tx.liveSpending(ctx, userID).Where("id = ?", id).First(&sp).Error; err != nil {
			return translate(err, "get spending", "Spending not found")
		}

		m := map[string]any{"synced": false}
		if patch.Amount != nil {
			m["amount"] = *patch.Amount
		}
		if patch.Notes != nil {
			m["notes"] = *patch.Notes
		}
		if patch.ItemName != nil {
			m["item_name"] = *patch.ItemName
		}
		if patch.Currency != nil {
			if !patch.Currency.Valid() {
				return apperr.Validation(apperr.FieldError{Field: "currency", Message: "unsupported currency", Tag: "currency"})
			}
			m["currency"] = *patch.Currency
		}
		if patch.Date != nil {
			m["date"] = patch.Date.UTC()
		}
		if patch.CategoryID != nil {
			if _, err := tx.activeCategory(ctx, userID, *patch.CategoryID); err != nil {
				return err
			}
			m["category_id"] = *patch.CategoryID
		}

		if err := tx.conn(ctx).Model(&sp).Updates(m).Error; err != nil {
			return translate(err, "update spending", "")
		}
		return translate(tx.conn(ctx).First(&sp, sp.ID).Error, "reload spending", "Spending not found")
	})
	if err != nil {
		return nil, err
	}
	sp.Date = sp.Date.UTC()
	return &sp, nil
}

// SoftDeleteSpending hides an owned spending row from listings. Deleting an
// already deleted row succeeds.
func (s *Store) SoftDeleteSpending(ctx context.Context, userID, id uint) error {
	return s.Transaction(ctx, func(tx *Store) error {
		res := tx.conn(ctx).Model(&models.Spending{}).Scopes(ownedBy(userID)).
			Where("id = ?", id).
			Updates(map[string]any{"is_deleted": true, "synced": false})
		if res.Error != nil {
			return translate(res.Error, "delete spending", "")
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("Spending not found")
		}
		return nil
	})
}

// ExportSpending returns every live spending row in the filter window, oldest
// first, with the names of the categories they reference. Pagination is
// ignored.
func (s *Store) ExportSpending(ctx context.Context, userID uint, f SpendingFilter) ([]models.Spending, map[uint]string, error) {
	q := s.liveSpending(ctx, userID).Scopes(f.window)
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	rows := []models.Spending{}
	if err := q.Order("date ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, nil, translate(err, "export spending", "")
	}
	normalizeSpending(rows)
	names, err := s.categoryNames(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return rows, names, nil
}

// categoryNames maps every category id of the user, deleted ones included, to
// its name.
func (s *Store) categoryNames(ctx context.Context, userID uint) (map[uint]string, error) {
	var cats []models.Category
	if err := s.conn(ctx).Scopes(ownedBy(userID)).Find(&cats).Error; err != nil {
		return nil, translate(err, "list category names", "")
	}
	names := make(map[uint]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.CategoryName
	}
	return names, nil
}
