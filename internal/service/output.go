package service

import (
	"github.com/shopspring/decimal"
)

type ConvertResp struct {
	From      string
	To        string
	Amount    decimal.Decimal
	Rate      decimal.Decimal
	Converted decimal.Decimal
	Date      string
	Source    Source
}
