package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Currency is an ISO 4217 code from the supported set. Amounts are never
// converted between currencies.
type Currency string

const (
	CurrencyNGN Currency = "NGN"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

// DefaultCurrency is used when a user registers without choosing one.
const DefaultCurrency = CurrencyNGN

// Currencies lists every supported currency.
var Currencies = []Currency{CurrencyNGN, CurrencyUSD, CurrencyEUR, CurrencyGBP}

// Valid reports whether c is one of the supported currencies.
func (c Currency) Valid() bool {
	for _, v := range Currencies {
		if c == v {
			return true
		}
	}
	return false
}

// ParseCurrency accepts any casing and surrounding whitespace.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unsupported currency %q", s)
	}
	return c, nil
}

// Value implements driver.Valuer.
func (c Currency) Value() (driver.Value, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("unsupported currency %q", string(c))
	}
	return string(c), nil
}

// Scan implements sql.Scanner.
func (c *Currency) Scan(src any) error {
	switch v := src.(type) {
	case string:
		*c = Currency(v)
	case []byte:
		*c = Currency(v)
	case nil:
		*c = ""
	default:
		return fmt.Errorf("scan currency: unexpected type %T", src)
	}
	return nil
}
