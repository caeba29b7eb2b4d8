package storage

import (
	"context"
	"sort"
	"time"

	"fintrack/internal/models"

	"github.com/shopspring/decimal"
)

// MonthLayout is the format of the month query parameter.
const MonthLayout = "2006-01"

// UncategorizedLabel names spending without a category in summaries.
const UncategorizedLabel = "Uncategorized"

// CurrencyTotal sums one currency over the month.
type CurrencyTotal struct {
	Currency models.Currency `json:"currency"`
	Income   float64         `json:"income"`
	Spending float64         `json:"spending"`
	Balance  float64         `json:"balance"`
}

// DailyTotal sums one currency over one UTC day.
type DailyTotal struct {
	Date     string          `json:"date"`
	Currency models.Currency `json:"currency"`
	Income   float64         `json:"income"`
	Spending float64         `json:"spending"`
	Balance  float64         `json:"balance"`
}

// CategoryTotal sums spending of one currency in one category.
type CategoryTotal struct {
	CategoryID *uint           `json:"category_id"`
	Category   string          `json:"category"`
	Currency   models.Currency `json:"currency"`
	Spending   float64         `json:"spending"`
}

// MonthlySummary is income and spending for a calendar month, grouped by
// currency. Amounts in different currencies are never added together.
type MonthlySummary struct {
	Month      string          `json:"month"`
	Totals     []CurrencyTotal `json:"totals"`
	Daily      []DailyTotal    `json:"daily"`
	ByCategory []CategoryTotal `json:"by_category"`
}

type flow struct {
	income, spending decimal.Decimal
}

func (f *flow) balance() decimal.Decimal {
	return f.income.Sub(f.spending)
}

// SpendingSummary aggregates the user's income and live spending for the
// month containing month.
func (s *Store) SpendingSummary(ctx context.Context, userID uint, month time.Time) (*MonthlySummary, error) {
	month = month.UTC()
	start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var income []models.Income
	if err := s.conn(ctx).Scopes(ownedBy(userID)).
		Where("date >= ? AND date < ?", start, end).
		Find(&income).Error; err != nil {
		return nil, translate(err, "summary income", "")
	}
	var spending []models.Spending
	if err := s.liveSpending(ctx, userID).
		Where("date >= ? AND date < ?", start, end).
		Find(&spending).Error; err != nil {
		return nil, translate(err, "summary spending", "")
	}
	names, err := s.categoryNames(ctx, userID)
	if err != nil {
		return nil, err
	}

	type dayKey struct {
		date     string
		currency models.Currency
	}
	type catKey struct {
		id       uint
		currency models.Currency
	}
	totals := map[models.Currency]*flow{}
	daily := map[dayKey]*flow{}
	byCat := map[catKey]decimal.Decimal{}

	get := func(m map[models.Currency]*flow, c models.Currency) *flow {
		f, ok := m[c]
		if !ok {
			f = &flow{}
			m[c] = f
		}
		return f
	}
	getDay := func(k dayKey) *flow {
		f, ok := daily[k]
		if !ok {
			f = &flow{}
			daily[k] = f
		}
		return f
	}

	for _, in := range income {
		amt := decimal.NewFromFloat(in.Amount)
		t := get(totals, in.Currency)
		t.income = t.income.Add(amt)
		d := getDay(dayKey{in.Date.UTC().Format(time.DateOnly), in.Currency})
		d.income = d.income.Add(amt)
	}
	for _, sp := range spending {
		amt := decimal.NewFromFloat(sp.Amount)
		t := get(totals, sp.Currency)
		t.spending = t.spending.Add(amt)
		d := getDay(dayKey{sp.Date.UTC().Format(time.DateOnly), sp.Currency})
		d.spending = d.spending.Add(amt)

		var id uint
		if sp.CategoryID != nil {
			id = *sp.CategoryID
		}
		k := catKey{id, sp.Currency}
		byCat[k] = byCat[k].Add(amt)
	}

	out := &MonthlySummary{
		Month:      start.Format(MonthLayout),
		Totals:     make([]CurrencyTotal, 0, len(totals)),
		Daily:      make([]DailyTotal, 0, len(daily)),
		ByCategory: make([]CategoryTotal, 0, len(byCat)),
	}
	for c, f := range totals {
		out.Totals = append(out.Totals, CurrencyTotal{
			Currency: c,
			Income:   f.income.InexactFloat64(),
			Spending: f.spending.InexactFloat64(),
			Balance:  f.balance().InexactFloat64(),
		})
	}
	for k, f := range daily {
		out.Daily = append(out.Daily, DailyTotal{
			Date:     k.date,
			Currency: k.currency,
			Income:   f.income.InexactFloat64(),
			Spending: f.spending.InexactFloat64(),
			Balance:  f.balance().InexactFloat64(),
		})
	}
	for k, amt := range byCat {
		ct := CategoryTotal{Category: UncategorizedLabel, Currency: k.currency, Spending: amt.InexactFloat64()}
		if k.id != 0 {
			id := k.id
			ct.CategoryID = &id
			ct.Category = names[id]
		}
		out.ByCategory = append(out.ByCategory, ct)
	}

	sort.Slice(out.Totals, func(i, j int) bool { return out.Totals[i].Currency < out.Totals[j].Currency })
	sort.Slice(out.Daily, func(i, j int) bool {
		if out.Daily[i].Date != out.Daily[j].Date {
			return out.Daily[i].Date < out.Daily[j].Date
		}
		return out.Daily[i].Currency < out.Daily[j].Currency
	})
	sort.Slice(out.ByCategory, func(i, j int) bool {
		a, b := out.ByCategory[i], out.ByCategory[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Currency < b.Currency
	})
	return out, nil
}
