package storage

import (
	"context"
	"strings"

	"fintrack/internal/apperr"
	"fintrack/internal/models"
)

// ListCategories returns the user's non-deleted categories, oldest first.
func (s *Store) ListCategories(ctx context.Context, userID uint, page Page) ([]models.Category, error) {
	page = s.clamp(page)
	categories := []models.Category{}
	err := s.conn(ctx).Scopes(ownedBy(userID), paginate(page)).
		Where("is_deleted = ?", false).
		Order("id ASC").
		Find(&categories).Error
	if err != nil {
		return nil, translate(err, "list categories", "")
	}
	return categories, nil
}

func (s *Store) CreateCategory(ctx context.Context, userID uint, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation(apperr.FieldError{Field: "category_name", Message: "category_name is required", Tag: "required"})
	}
	c := &models.Category{UserID: userID, CategoryName: name}
	err := s.Transaction(ctx, func(tx *Store) error {
		return translate(tx.conn(ctx).Create(c).Error, "insert category", "")
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// SoftDeleteCategory marks an owned category deleted. Spending rows keep
// their category_id. Deleting an already deleted category succeeds.
func (s *Store) SoftDeleteCategory(ctx context.Context, userID, id uint) error {
	return s.Transaction(ctx, func(tx *Store) error {
		res := tx.conn(ctx).Model(&models.Category{}).Scopes(ownedBy(userID)).
			Where("id = ?", id).
			Updates(map[string]any{"is_deleted": true, "synced": false})
		if res.Error != nil {
			return translate(res.Error, "delete category", "")
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("Category not found")
		}
		return nil
	})
}

// activeCategory checks that id names a live category owned by userID.
func (s *Store) activeCategory(ctx context.Context, userID, id uint) (*models.Category, error) {
	var c models.Category
	err := s.conn(ctx).Scopes(ownedBy(userID)).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&c).Error
	if err != nil {
		return nil, translate(err, "get category", "Category not found")
	}
	return &c, nil
}
