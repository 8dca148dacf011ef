package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/omerorhan/rate-converter/internal/storage"
)

// CrossRate is the result of converting between two currencies.
type CrossRate struct {
	Rate      decimal.Decimal
	Converted decimal.Decimal
}

// Convert resolves both codes against the snapshot in a single pass and computes
// rate = sourceRate / targetRate and converted = amount * rate.
func Convert(rates storage.RateSet, from, to string, amount decimal.Decimal) (CrossRate, error) {
	from = normalizeCode(from)
	to = normalizeCode(to)

	var sourceRate, targetRate decimal.Decimal
	var haveSource, haveTarget bool

	if from == BaseCurrency {
		sourceRate, haveSource = decimal.NewFromInt(1), true
	}
	if to == BaseCurrency {
		targetRate, haveTarget = decimal.NewFromInt(1), true
	}

	for _, r := range rates {
		if haveSource && haveTarget {
			break
		}
		code := normalizeCode(r.CurrencyCode)
		if code == BaseCurrency {
			continue
		}
		if !haveSource && code == from {
			sourceRate, haveSource = r.Rate, true
		}
		if !haveTarget && code == to {
			targetRate, haveTarget = r.Rate, true
		}
	}

	if !haveSource {
		return CrossRate{}, fmt.Errorf("%w: %s", ErrUnknownCurrency, from)
	}
	if !haveTarget {
		return CrossRate{}, fmt.Errorf("%w: %s", ErrUnknownCurrency, to)
	}
	if sourceRate.IsZero() {
		return CrossRate{}, fmt.Errorf("%w: %s", ErrZeroRate, from)
	}
	if targetRate.IsZero() {
		return CrossRate{}, fmt.Errorf("%w: %s", ErrZeroRate, to)
	}

	rate := sourceRate.Div(targetRate)
	return CrossRate{
		Rate:      rate,
		Converted: amount.Mul(rate),
	}, nil
}
