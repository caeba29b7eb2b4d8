package storage

import (
	"context"
	"fmt"
	"strings"

	"fintrack/internal/apperr"
	"fintrack/internal/models"
)

// NormalizeEmail lowercases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser stores a new user. u.Password must already be a hash.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	u.Email = NormalizeEmail(u.Email)
	if u.DefaultCurrency == "" {
		u.DefaultCurrency = models.DefaultCurrency
	}

	return s.Transaction(ctx, func(tx *Store) error {
		var n int64
		if err := tx.conn(ctx).Model(&models.User{}).Where("email = ?", u.Email).Count(&n).Error; err != nil {
			return translate(err, "check email", "")
		}
		if n > 0 {
			return userExists(u.Email)
		}
		return tx.insertUser(ctx, u)
	})
}

// insertUser writes u. The unique index on email settles registrations that
// both passed the count check.
func (s *Store) insertUser(ctx context.Context, u *models.User) error {
	if err := s.conn(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return userExists(u.Email)
		}
		return translate(err, "insert user", "")
	}
	return nil
}

func userExists(email string) *apperr.Error {
	return apperr.AlreadyExists(fmt.Sprintf("User with email %s already exists", email))
}

// GetUserByEmail looks a user up by address, ignoring case.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.conn(ctx).Where("email = ?", NormalizeEmail(email)).First(&u).Error
	if err != nil {
		return nil, translate(err, "get user by email", "User not found")
	}
	return &u, nil
}

func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.conn(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err, "get user", "User not found")
	}
	return &u, nil
}

// UserPatch holds profile fields to change. Nil fields are left alone.
type UserPatch struct {
	FirstName       *string
	LastName        *string
	DefaultCurrency *models.Currency
}

func (p UserPatch) updates() map[string]any {
	m := map[string]any{}
	if p.FirstName != nil {
		m["first_name"] = strings.TrimSpace(*p.FirstName)
	}
	if p.LastName != nil {
		m["last_name"] = strings.TrimSpace(*p.LastName)
	}
	if p.DefaultCurrency != nil {
		m["default_currency"] = *p.DefaultCurrency
	}
	return m
}

// UpdateUserProfile applies patch to the user and returns the stored row.
func (s *Store) UpdateUserProfile(ctx context.Context, userID uint, patch UserPatch) (*models.User, error) {
	if patch.DefaultCurrency != nil && !patch.DefaultCurrency.Valid() {
		return nil, apperr.Validation(apperr.FieldError{Field: "default_currency", Message: "unsupported currency", Tag: "currency"})
	}
	var u models.User
	err := s.Transaction(ctx, func(tx *Store) error {
		if err := tx.conn(ctx).First(&u, userID).Error; err != nil {
			return translate(err, "get user", "User not found")
		}
		m := patch.updates()
		if len(m) == 0 {
			return nil
		}
		m["synced"] = false
		if err := tx.conn(ctx).Model(&u).Updates(m).Error; err != nil {
			return translate(err, "update user", "")
		}
		return translate(tx.conn(ctx).First(&u, userID).Error, "reload user", "User not found")
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUserPassword replaces the stored hash.
func (s *Store) UpdateUserPassword(ctx context.Context, userID uint, hash string) error {
	return s.Transaction(ctx, func(tx *Store) error {
		res := tx.conn(ctx).Model(&models.User{}).Where("id = ?", userID).
			Updates(map[string]any{"password": hash, "synced": false})
		if res.Error != nil {
			return translate(res.Error, "update password", "")
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("User not found")
		}
		return nil
	})
}
