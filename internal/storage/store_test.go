package storage

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/apperr"
	"fintrack/internal/config"
	"fintrack/internal/database"
	applog "fintrack/internal/log"
	"fintrack/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

type StoreSuite struct {
	suite.Suite
	db    *gorm.DB
	store *Store
	ctx   context.Context
	alice *models.User
	bob   *models.User
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	path := filepath.Join(s.T().TempDir(), "test.db")
	s.Require().NoError(database.Migrate(path))
	db, err := database.Init(config.DatabaseConfig{Path: path})
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = database.Close(db) })

	s.db = db
	s.ctx = context.Background()
	s.store = New(db, Options{DefaultLimit: 100, MaxLimit: 500, Now: func() time.Time { return fixedNow }})

	s.alice = s.createUser("alice@example.com", models.CurrencyUSD)
	s.bob = s.createUser("bob@example.com", models.CurrencyNGN)
}

func (s *StoreSuite) createUser(email string, cur models.Currency) *models.User {
	u := &models.User{Email: email, FirstName: "Test", LastName: "User", Password: "hash", DefaultCurrency: cur}
	s.Require().NoError(s.store.CreateUser(s.ctx, u))
	s.Require().NotZero(u.ID)
	return u
}

func (s *StoreSuite) spend(userID uint, amount float64, at time.Time) *models.Spending {
	sp := &models.Spending{Amount: amount, Date: at}
	s.Require().NoError(s.store.CreateSpending(s.ctx, userID, sp))
	return sp
}

func (s *StoreSuite) requireKind(err error, kind apperr.Kind) {
	s.Require().Error(err)
	s.Truef(apperr.IsKind(err, kind), "want %s, got %v", kind, err)
}

func (s *StoreSuite) TestCreateUserDuplicateEmail() {
	err := s.store.CreateUser(s.ctx, &models.User{Email: "ALICE@example.com ", Password: "x"})
	s.requireKind(err, apperr.KindAlreadyExists)
	s.Equal("User with email alice@example.com already exists", apperr.As(err).Message)

	var n int64
	s.Require().NoError(s.db.Model(&models.User{}).Count(&n).Error)
	s.EqualValues(2, n)
}

func (s *StoreSuite) TestInsertUserUniqueIndexDecides() {
	// skip the count check, as a concurrent registration that lost the race would
	err := s.store.Transaction(s.ctx, func(tx *Store) error {
		return tx.insertUser(s.ctx, &models.User{Email: "alice@example.com", Password: "x", DefaultCurrency: models.CurrencyNGN})
	})
	s.requireKind(err, apperr.KindAlreadyExists)
	s.Equal("User with email alice@example.com already exists", apperr.As(err).Message)

	raw := s.db.Create(&models.User{Email: "bob@example.com", Password: "x", DefaultCurrency: models.CurrencyNGN}).Error
	s.Require().Error(raw)
	s.True(isUniqueViolation(raw))
	s.requireKind(translate(raw, "insert user", ""), apperr.KindAlreadyExists)

	var n int64
	s.Require().NoError(s.db.Model(&models.User{}).Count(&n).Error)
	s.EqualValues(2, n)
}

func (s *StoreSuite) TestGetUserByEmailIgnoresCase() {
	u, err := s.store.GetUserByEmail(s.ctx, "Alice@Example.COM")
	s.Require().NoError(err)
	s.Equal(s.alice.ID, u.ID)
	s.Equal(models.CurrencyUSD, u.DefaultCurrency)

	_, err = s.store.GetUserByEmail(s.ctx, "nobody@example.com")
	s.requireKind(err, apperr.KindNotFound)
}

func (s *StoreSuite) TestUpdateUserProfileAndPassword() {
	first := "Alicia"
	eur := models.CurrencyEUR
	u, err := s.store.UpdateUserProfile(s.ctx, s.alice.ID, UserPatch{FirstName: &first, DefaultCurrency: &eur})
	s.Require().NoError(err)
	s.Equal("Alicia", u.FirstName)
	s.Equal("User", u.LastName)
	s.Equal(models.CurrencyEUR, u.DefaultCurrency)

	bad := models.Currency("JPY")
	_, err = s.store.UpdateUserProfile(s.ctx, s.alice.ID, UserPatch{DefaultCurrency: &bad})
	s.requireKind(err, apperr.KindValidation)

	s.Require().NoError(s.store.UpdateUserPassword(s.ctx, s.alice.ID, "new-hash"))
	got, err := s.store.GetUser(s.ctx, s.alice.ID)
	s.Require().NoError(err)
	s.Equal("new-hash", got.Password)

	s.requireKind(s.store.UpdateUserPassword(s.ctx, 9999, "h"), apperr.KindNotFound)
}

func (s *StoreSuite) TestCategoriesAreIsolatedAndSoftDeleted() {
	food, err := s.store.CreateCategory(s.ctx, s.alice.ID, " Food ")
	s.Require().NoError(err)
	s.Equal("Food", food.CategoryName)
	_, err = s.store.CreateCategory(s.ctx, s.bob.ID, "Rent")
	s.Require().NoError(err)

	list, err := s.store.ListCategories(s.ctx, s.alice.ID, Page{})
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(food.ID, list[0].ID)

	s.requireKind(s.store.SoftDeleteCategory(s.ctx, s.bob.ID, food.ID), apperr.KindNotFound)
	s.Require().NoError(s.store.SoftDeleteCategory(s.ctx, s.alice.ID, food.ID))
	s.Require().NoError(s.store.SoftDeleteCategory(s.ctx, s.alice.ID, food.ID))

	list, err = s.store.ListCategories(s.ctx, s.alice.ID, Page{})
	s.Require().NoError(err)
	s.Empty(list)
	s.NotNil(list)

	_, err = s.store.CreateCategory(s.ctx, s.alice.ID, "   ")
	s.requireKind(err, apperr.KindValidation)
}

func (s *StoreSuite) TestIncomeDefaultsAndIsolation() {
	in := &models.Income{Amount: 1200.5, Source: "salary"}
	s.Require().NoError(s.store.CreateIncome(s.ctx, s.alice.ID, in))
	s.Equal(models.CurrencyUSD, in.Currency)
	s.Equal(fixedNow, in.Date)
	s.Equal(s.alice.ID, in.UserID)

	gbp := &models.Income{Amount: 10, Source: "gift", Currency: models.CurrencyGBP, Date: fixedNow.Add(-time.Hour)}
	s.Require().NoError(s.store.CreateIncome(s.ctx, s.alice.ID, gbp))

	list, err := s.store.ListIncome(s.ctx, s.alice.ID, Page{})
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(in.ID, list[0].ID)
	s.Equal(models.CurrencyGBP, list[1].Currency)

	bobs, err := s.store.ListIncome(s.ctx, s.bob.ID, Page{})
	s.Require().NoError(err)
	s.Empty(bobs)

	paged, err := s.store.ListIncome(s.ctx, s.alice.ID, Page{Skip: 1, Limit: 1})
	s.Require().NoError(err)
	s.Require().Len(paged, 1)
	s.Equal(gbp.ID, paged[0].ID)
}

func (s *StoreSuite) TestSpendingDefaultWindowBoundaries() {
	today := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	inside := s.spend(s.alice.ID, 1, today.AddDate(0, 0, -7).Add(23*time.Hour+59*time.Minute))
	startEdge := s.spend(s.alice.ID, 2, today.AddDate(0, 0, -7))
	s.spend(s.alice.ID, 3, today.AddDate(0, 0, -8).Add(23*time.Hour+59*time.Minute+59*time.Second))
	lateToday := s.spend(s.alice.ID, 4, today.Add(23*time.Hour+59*time.Minute))
	s.spend(s.alice.ID, 5, today.AddDate(0, 0, 1))

	f, err := NewSpendingFilter(nil, nil, fixedNow)
	s.Require().NoError(err)
	s.Equal(today, f.EndDate)
	s.Equal(today.AddDate(0, 0, -7), f.StartDate)

	list, err := s.store.ListSpending(s.ctx, s.alice.ID, f)
	s.Require().NoError(err)
	ids := make([]uint, 0, len(list))
	for _, sp := range list {
		ids = append(ids, sp.ID)
	}
	s.Equal([]uint{lateToday.ID, inside.ID, startEdge.ID}, ids)
}

func (s *StoreSuite) TestSpendingCategoryMustBeOwned() {
	bobCat, err := s.store.CreateCategory(s.ctx, s.bob.ID, "Bills")
	s.Require().NoError(err)

	sp := &models.Spending{Amount: 9, CategoryID: &bobCat.ID}
	s.requireKind(s.store.CreateSpending(s.ctx, s.alice.ID, sp), apperr.KindNotFound)

	own, err := s.store.CreateCategory(s.ctx, s.alice.ID, "Food")
	s.Require().NoError(err)
	sp = &models.Spending{Amount: 9, CategoryID: &own.ID}
	s.Require().NoError(s.store.CreateSpending(s.ctx, s.alice.ID, sp))
	s.Equal(models.CurrencyUSD, sp.Currency)

	start := fixedNow
	f, err := NewSpendingFilter(&start, &start, fixedNow)
	s.Require().NoError(err)
	f.CategoryID = &own.ID
	list, err := s.store.ListSpending(s.ctx, s.alice.ID, f)
	s.Require().NoError(err)
	s.Len(list, 1)
}

func (s *StoreSuite) TestUpdateAndSoftDeleteSpending() {
	sp := s.spend(s.alice.ID, 20, fixedNow)

	amount := 25.5
	note := "lunch"
	eur := models.CurrencyEUR
	updated, err := s.store.UpdateSpending(s.ctx, s.alice.ID, sp.ID, SpendingPatch{Amount: &amount, Notes: &note, Currency: &eur})
	s.Require().NoError(err)
	s.Equal(25.5, updated.Amount)
	s.Require().NotNil(updated.Notes)
	s.Equal("lunch", *updated.Notes)
	s.Equal(models.CurrencyEUR, updated.Currency)
	s.Nil(updated.ItemName)

	_, err = s.store.UpdateSpending(s.ctx, s.bob.ID, sp.ID, SpendingPatch{Amount: &amount})
	s.requireKind(err, apperr.KindNotFound)

	s.requireKind(s.store.SoftDeleteSpending(s.ctx, s.bob.ID, sp.ID), apperr.KindNotFound)
	s.Require().NoError(s.store.SoftDeleteSpending(s.ctx, s.alice.ID, sp.ID))
	s.Require().NoError(s.store.SoftDeleteSpending(s.ctx, s.alice.ID, sp.ID))
	s.requireKind(s.store.SoftDeleteSpending(s.ctx, s.alice.ID, 9999), apperr.KindNotFound)

	f, err := NewSpendingFilter(nil, nil, fixedNow)
	s.Require().NoError(err)
	list, err := s.store.ListSpending(s.ctx, s.alice.ID, f)
	s.Require().NoError(err)
	s.Empty(list)

	var raw models.Spending
	s.Require().NoError(s.db.First(&raw, sp.ID).Error)
	s.True(raw.IsDeleted)

	_, err = s.store.UpdateSpending(s.ctx, s.alice.ID, sp.ID, SpendingPatch{Amount: &amount})
	s.requireKind(err, apperr.KindNotFound)
}

func (s *StoreSuite) TestSavingsGoalsAndContributions() {
	goal := &models.SavingsGoal{GoalName: "Laptop", TargetAmount: 1000}
	s.Require().NoError(s.store.CreateSavingsGoal(s.ctx, s.alice.ID, goal))
	s.Equal(models.CurrencyUSD, goal.Currency)
	s.NotNil(goal.SavingsContributions)
	s.Empty(goal.SavingsContributions)

	for _, amt := range []float64{100.1, 200.2} {
		c := &models.SavingsContribution{Amount: amt}
		s.Require().NoError(s.store.CreateContribution(s.ctx, s.alice.ID, goal.ID, c))
		s.Equal(goal.Currency, c.Currency)
		s.Equal(s.alice.ID, c.UserID)
	}

	goals, err := s.store.ListSavingsGoals(s.ctx, s.alice.ID, Page{})
	s.Require().NoError(err)
	s.Require().Len(goals, 1)
	s.Len(goals[0].SavingsContributions, 2)

	progress, err := s.store.GetSavingsGoalProgress(s.ctx, s.alice.ID, goal.ID)
	s.Require().NoError(err)
	s.Equal(300.3, progress.CurrentAmount)
	s.Equal(699.7, progress.RemainingAmount)
	s.Equal(30.03, progress.PercentComplete)
	s.Equal(2, progress.ContributionCount)

	_, err = s.store.GetSavingsGoalProgress(s.ctx, s.bob.ID, goal.ID)
	s.requireKind(err, apperr.KindNotFound)

	mismatch := &models.SavingsContribution{Amount: 1, Currency: models.CurrencyNGN}
	s.requireKind(s.store.CreateContribution(s.ctx, s.alice.ID, goal.ID, mismatch), apperr.KindInvalid)
}

func (s *StoreSuite) TestContributionToForeignOrMissingGoal() {
	goal := &models.SavingsGoal{GoalName: "Car", TargetAmount: 5000}
	s.Require().NoError(s.store.CreateSavingsGoal(s.ctx, s.bob.ID, goal))

	err := s.store.CreateContribution(s.ctx, s.alice.ID, goal.ID, &models.SavingsContribution{Amount: 5})
	s.requireKind(err, apperr.KindNotFound)
	s.Equal("Savings goal not found", apperr.As(err).Message)

	err = s.store.CreateContribution(s.ctx, s.alice.ID, 424242, &models.SavingsContribution{Amount: 5})
	s.requireKind(err, apperr.KindNotFound)

	var n int64
	s.Require().NoError(s.db.Model(&models.SavingsContribution{}).Count(&n).Error)
	s.Zero(n)
}

func (s *StoreSuite) TestSpendingSummaryGroupsByCurrency() {
	food, err := s.store.CreateCategory(s.ctx, s.alice.ID, "Food")
	s.Require().NoError(err)

	day := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
	s.Require().NoError(s.store.CreateIncome(s.ctx, s.alice.ID, &models.Income{Amount: 100, Source: "job", Date: day}))
	s.Require().NoError(s.store.CreateSpending(s.ctx, s.alice.ID, &models.Spending{Amount: 0.1, Date: day, CategoryID: &food.ID}))
	s.Require().NoError(s.store.CreateSpending(s.ctx, s.alice.ID, &models.Spending{Amount: 0.2, Date: day, CategoryID: &food.ID}))
	s.Require().NoError(s.store.CreateSpending(s.ctx, s.alice.ID, &models.Spending{Amount: 5, Date: day, Currency: models.CurrencyNGN}))
	// outside the month
	s.Require().NoError(s.store.CreateSpending(s.ctx, s.alice.ID, &models.Spending{Amount: 50, Date: day.AddDate(0, 1, 0)}))

	sum, err := s.store.SpendingSummary(s.ctx, s.alice.ID, day)
	s.Require().NoError(err)
	s.Equal("2024-03", sum.Month)
	s.Require().Len(sum.Totals, 2)
	s.Equal(models.CurrencyNGN, sum.Totals[0].Currency)
	s.Equal(5.0, sum.Totals[0].Spending)
	s.Equal(models.CurrencyUSD, sum.Totals[1].Currency)
	s.Equal(0.3, sum.Totals[1].Spending)
	s.Equal(99.7, sum.Totals[1].Balance)

	s.Require().Len(sum.ByCategory, 2)
	s.Equal("Food", sum.ByCategory[0].Category)
	s.Equal(UncategorizedLabel, sum.ByCategory[1].Category)
	s.Nil(sum.ByCategory[1].CategoryID)
}

func (s *StoreSuite) TestExportSpendingIncludesCategoryNames() {
	food, err := s.store.CreateCategory(s.ctx, s.alice.ID, "Food")
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateSpending(s.ctx, s.alice.ID, &models.Spending{Amount: 3, Date: fixedNow, CategoryID: &food.ID}))
	s.Require().NoError(s.store.CreateSpending(s.ctx, s.alice.ID, &models.Spending{Amount: 4, Date: fixedNow.Add(-time.Hour)}))

	f, err := NewSpendingFilter(nil, nil, fixedNow)
	s.Require().NoError(err)
	f.Page = Page{Limit: 1}
	rows, names, err := s.store.ExportSpending(s.ctx, s.alice.ID, f)
	s.Require().NoError(err)
	s.Require().Len(rows, 2)
	s.Equal(4.0, rows[0].Amount)
	s.Equal("Food", names[food.ID])
}

func (s *StoreSuite) TestMarkSynced() {
	sp := s.spend(s.alice.ID, 1, fixedNow)
	s.Require().NoError(s.store.MarkSynced(s.ctx, models.EntitySpending, sp.ID))

	var raw models.Spending
	s.Require().NoError(s.db.First(&raw, sp.ID).Error)
	s.True(raw.Synced)

	s.requireKind(s.store.MarkSynced(s.ctx, "ledger", 1), apperr.KindInvalid)
	s.requireKind(s.store.MarkSynced(s.ctx, models.EntitySpending, 9999), apperr.KindNotFound)
}

func TestNewSpendingFilter(t *testing.T) {
	now := time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)

	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	f, err := NewSpendingFilter(&start, &end, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), f.StartDate)
	assert.Equal(t, end, f.EndDate)

	_, err = NewSpendingFilter(&end, &start, now)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalid))
	assert.Equal(t, "start_date cannot be after end_date", apperr.As(err).Message)

	f, err = NewSpendingFilter(nil, &end, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 27, 0, 0, 0, 0, time.UTC), f.StartDate)
}

func TestClampPage(t *testing.T) {
	s := New(nil, Options{DefaultLimit: 100, MaxLimit: 500})
	assert.Equal(t, Page{Skip: 0, Limit: 100}, s.clamp(Page{Skip: -3}))
	assert.Equal(t, Page{Skip: 10, Limit: 500}, s.clamp(Page{Skip: 10, Limit: 10000}))
	assert.Equal(t, Page{Skip: 0, Limit: 7}, s.clamp(Page{Limit: 7}))

	small := New(nil, Options{DefaultLimit: 100, MaxLimit: 20})
	assert.Equal(t, Page{Limit: 20}, small.clamp(Page{}))
	assert.Equal(t, Page{Limit: 20}, small.clamp(Page{Limit: 50}))

	defaults := New(nil, Options{})
	assert.Equal(t, Page{Limit: DefaultPageSize}, defaults.clamp(Page{}))
	assert.Equal(t, Page{Limit: MaxPageSize}, defaults.clamp(Page{Limit: 10000}))
}

func TestStartOfDay(t *testing.T) {
	in := time.Date(2024, 1, 1, 23, 59, 59, 999, time.FixedZone("X", -3600))
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), startOfDay(in))
}

func TestTransactionLogsStorageFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "closed.db")
	require.NoError(t, database.Migrate(path))
	db, err := database.Init(config.DatabaseConfig{Path: path})
	require.NoError(t, err)
	require.NoError(t, database.Close(db))

	var buf bytes.Buffer
	ctx := applog.NewContext(context.Background(), applog.New(applog.Config{Output: &buf}))
	called := false
	err = New(db, Options{}).Transaction(ctx, func(*Store) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
	assert.True(t, apperr.IsKind(err, apperr.KindStorage))
	assert.Contains(t, buf.String(), "component=storage")
	assert.Contains(t, buf.String(), "transaction failed")
}

func TestTransactionDoesNotLogDomainErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "domain.db")
	require.NoError(t, database.Migrate(path))
	db, err := database.Init(config.DatabaseConfig{Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	var buf bytes.Buffer
	ctx := applog.NewContext(context.Background(), applog.New(applog.Config{Output: &buf}))
	err = New(db, Options{}).Transaction(ctx, func(*Store) error {
		return apperr.NotFound("Spending not found")
	})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	assert.Empty(t, buf.String())
}
