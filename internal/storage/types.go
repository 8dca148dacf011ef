package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// RateRecord is one currency quoted by the NBU for one date.
// Rate is the number of hryvnias per one unit of the foreign currency.
type RateRecord struct {
	RegulatorCode int             `json:"r030"`
	Description   string          `json:"txt"`
	Rate          decimal.Decimal `json:"rate"`
	CurrencyCode  string          `json:"cc"`
	ExchangeDate  string          `json:"exchangedate"`
}

// RateSet is a whole published snapshot. Freshness is judged for the set, never per record.
type RateSet []RateRecord

var errEmptySnapshot = errors.New("empty rate snapshot")

// DecodeRates parses a raw NBU document (or a cache record, which holds the same bytes).
func DecodeRates(data []byte) (RateSet, error) {
	var rates RateSet
	if err := json.Unmarshal(data, &rates); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rates: %w", err)
	}
	if len(rates) == 0 {
		return nil, errEmptySnapshot
	}
	for i, r := range rates {
		if strings.TrimSpace(r.CurrencyCode) == "" {
			return nil, fmt.Errorf("record %d: missing currency code", i)
		}
		if r.Rate.IsNegative() {
			return nil, fmt.Errorf("record %d (%s): negative rate %s", i, r.CurrencyCode, r.Rate)
		}
	}
	return rates, nil
}

// DatedOn reports whether every record carries the given date.
// An empty set is never considered dated.
func (rs RateSet) DatedOn(date string) bool {
	if len(rs) == 0 {
		return false
	}
	for _, r := range rs {
		if r.ExchangeDate != date {
			return false
		}
	}
	return true
}

// Dates returns the distinct exchange dates in the order they first appear.
func (rs RateSet) Dates() []string {
	seen := make(map[string]struct{}, 1)
	var out []string
	for _, r := range rs {
		if _, ok := seen[r.ExchangeDate]; ok {
			continue
		}
		seen[r.ExchangeDate] = struct{}{}
		out = append(out, r.ExchangeDate)
	}
	return out
}
