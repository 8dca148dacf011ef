package service

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type ConvertReq struct {
	From   string
	To     string
	Amount decimal.Decimal
}

// Validate checks the request without touching the network or the cache.
func (r ConvertReq) Validate() error {
	if normalizeCode(r.From) == "" || normalizeCode(r.To) == "" {
		return fmt.Errorf("%w: currency code is empty", ErrInvalidArguments)
	}
	if r.Amount.IsNegative() {
		return fmt.Errorf("%w: amount %s is negative", ErrInvalidArguments, r.Amount)
	}
	return nil
}

// maxAmount and maxFractionDigits bound the amount to a 96-bit decimal with scale 28.
var maxAmount = decimal.RequireFromString("79228162514264337593543950335")

const maxFractionDigits = 28

// ParseAmount accepts a non-negative decimal such as "100", "12.5" or "12,5".
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: amount is empty", ErrInvalidArguments)
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	if strings.ContainsAny(s, "eE") {
		return decimal.Zero, fmt.Errorf("%w: amount %q uses exponent notation", ErrInvalidArguments, s)
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount %q is not a number", ErrInvalidArguments, s)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: amount %s is negative", ErrInvalidArguments, amount)
	}
	if amount.GreaterThan(maxAmount) {
		return decimal.Zero, fmt.Errorf("%w: amount exceeds %s", ErrInvalidArguments, maxAmount)
	}
	if -amount.Exponent() > maxFractionDigits {
		return decimal.Zero, fmt.Errorf("%w: amount has more than %d fractional digits", ErrInvalidArguments, maxFractionDigits)
	}
	return amount, nil
}
