package service

import (
	"time"

	"github.com/omerorhan/rate-converter/internal/storage"
)

// BaseCurrency is the hryvnia: implicit rate 1, never listed in the NBU snapshot.
const BaseCurrency = "UAH"

// DateLayout renders dates the way the NBU writes "exchangedate" (dd.MM.yyyy).
const DateLayout = "02.01.2006"

const DefaultRatesURL = "https://bank.gov.ua/NBUStatService/v1/statdirectory/exchange?json"

const DefaultTimezone = "Europe/Kyiv"

const DefaultHTTPTimeout = 10 * time.Second

// Source tells where a snapshot came from.
type Source string

const (
	SourceCache  Source = "cache"
	SourceRemote Source = "remote"
)

type RateRecord = storage.RateRecord
type RateSet = storage.RateSet
