// Package storage is the access-scoped repository. Every query and mutation
// on an owned entity is predicated on the caller's user id.
package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"fintrack/internal/apperr"
	applog "fintrack/internal/log"
	"fintrack/internal/models"

	"gorm.io/gorm"
)

const (
	DefaultPageSize = 100
	MaxPageSize     = 500
)

// Options tunes a Store.
type Options struct {
	DefaultLimit int
	MaxLimit     int
	Now          func() time.Time
}

// Store wraps a gorm handle. The zero value is not usable; call New.
type Store struct {
	db           *gorm.DB
	defaultLimit int
	maxLimit     int
	now          func() time.Time
}

// New returns a Store over db.
func New(db *gorm.DB, opts Options) *Store {
	s := &Store{
		db:           db,
		defaultLimit: opts.DefaultLimit,
		maxLimit:     opts.MaxLimit,
		now:          opts.Now,
	}
	if s.maxLimit <= 0 {
		s.maxLimit = MaxPageSize
	}
	if s.defaultLimit <= 0 {
		s.defaultLimit = DefaultPageSize
	}
	if s.defaultLimit > s.maxLimit {
		s.defaultLimit = s.maxLimit
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Now returns the store's current time in UTC.
func (s *Store) Now() time.Time {
	return s.now().UTC()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return apperr.Storage("get sql db", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return apperr.Storage("ping database", err)
	}
	return nil
}

func (s *Store) with(tx *gorm.DB) *Store {
	cp := *s
	cp.db = tx
	return &cp
}

// Transaction runs fn inside one database transaction. Any error returned by
// fn rolls the transaction back and is returned unchanged; a failed begin or
// commit is reported as a storage error. Storage errors are logged.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	var fnErr error
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(s.with(tx))
		return fnErr
	})
	if fnErr != nil {
		err = fnErr
	} else if err != nil {
		err = translate(err, "commit transaction", "")
	}
	if apperr.IsKind(err, apperr.KindStorage) {
		applog.FromContext(ctx).WithComponent(applog.ComponentStorage).
			ErrorContext(ctx, "transaction failed", applog.FieldError, err)
	}
	return err
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Page is offset pagination.
type Page struct {
	Skip  int
	Limit int
}

func (s *Store) clamp(p Page) Page {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 {
		p.Limit = s.defaultLimit
	}
	if p.Limit > s.maxLimit {
		p.Limit = s.maxLimit
	}
	return p
}

func paginate(p Page) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.Skip).Limit(p.Limit)
	}
}

// ownedBy scopes a query to rows of the given user.
func ownedBy(userID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

// translate maps gorm and driver errors to domain failures. notFound is the
// client message used when no row matched; empty means a miss is a storage
// failure.
func translate(err error, op, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound) && notFound != "":
		return apperr.NotFound(notFound)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperr.Wrap(apperr.KindInvalid, "referenced record does not exist", err)
	case isUniqueViolation(err):
		return apperr.Wrap(apperr.KindAlreadyExists, "record already exists", err)
	}
	var e *apperr.Error
	if errors.As(err, &e) {
		return e
	}
	return apperr.Storage(op, err)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// currencyFor returns c, or the user's default currency when c is empty.
func (s *Store) currencyFor(ctx context.Context, userID uint, c models.Currency) (models.Currency, error) {
	if c != "" {
		if !c.Valid() {
			return "", apperr.Validation(apperr.FieldError{Field: "currency", Message: "unsupported currency", Tag: "currency"})
		}
		return c, nil
	}
	var u models.User
	if err := s.conn(ctx).Select("default_currency").First(&u, userID).Error; err != nil {
		return "", translate(err, "load default currency", "User not found")
	}
	if !u.DefaultCurrency.Valid() {
		return models.DefaultCurrency, nil
	}
	return u.DefaultCurrency, nil
}

// stamp returns t in UTC, or now when t is zero.
func (s *Store) stamp(t time.Time) time.Time {
	if t.IsZero() {
		return s.Now()
	}
	return t.UTC()
}

// MarkSynced flags a row as delivered to sync consumers.
func (s *Store) MarkSynced(ctx context.Context, entity string, id uint) error {
	table, ok := models.EntityTables[entity]
	if !ok {
		return apperr.Invalid("unknown entity " + entity)
	}
	res := s.conn(ctx).Table(table).Where("id = ?", id).Update("synced", true)
	if res.Error != nil {
		return translate(res.Error, "mark synced", "")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(entity + " not found")
	}
	return nil
}
