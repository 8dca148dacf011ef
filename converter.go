package converter

import (
	"context"

	"github.com/omerorhan/rate-converter/internal/service"
	"github.com/omerorhan/rate-converter/internal/storage"
)

// Client provides a clean public API for the rate converter
type Client struct {
	service *service.ConverterService
}

// NewClient creates a new rate converter client
func NewClient(options ...ServiceOption) (*Client, error) {
	svc, err := service.NewConverterService(options...)
	if err != nil {
		return nil, err
	}

	return &Client{
		service: svc,
	}, nil
}

// Convert converts req.Amount from req.From to req.To using today's NBU rates,
// fetching them only when the cached snapshot is missing or stale.
func (c *Client) Convert(ctx context.Context, req ConvertReq) (*ConvertResp, error) {
	return c.service.Convert(ctx, req)
}

// Today returns the date a snapshot must carry to be considered fresh.
func (c *Client) Today() string {
	return c.service.Today()
}

// Close releases the cache store
func (c *Client) Close() error {
	return c.service.Close()
}

// ParseAmount parses a non-negative decimal amount as typed on a command line.
var ParseAmount = service.ParseAmount

// Service options (re-exported for convenience)
type ServiceOption = service.ServiceOption

// Re-export service options for clean API
var (
	WithRatesURL          = service.WithRatesURL
	WithHTTPTimeout       = service.WithHTTPTimeout
	WithCachePath         = service.WithCachePath
	WithRedisConfig       = service.WithRedisConfig
	WithTimezone          = service.WithTimezone
	WithStrictPersistence = service.WithStrictPersistence
	WithLogging           = service.WithLogging
	WithLogger            = service.WithLogger
	WithClock             = service.WithClock
	WithFetcher           = service.WithFetcher
	WithStore             = service.WithStore
	WithMetrics           = service.WithMetrics
	WithRunID             = service.WithRunID
	WithLockWait          = service.WithLockWait
)

// Re-export common types for convenience
type (
	ConvertReq  = service.ConvertReq
	ConvertResp = service.ConvertResp
	RateRecord  = storage.RateRecord
	RateSet     = storage.RateSet
	Fetcher     = service.Fetcher
	FetcherFunc = service.FetcherFunc
	Source      = service.Source
)

// Error kinds, matchable with errors.Is
var (
	ErrInvalidArguments = service.ErrInvalidArguments
	ErrUnknownCurrency  = service.ErrUnknownCurrency
	ErrTransport        = service.ErrTransport
	ErrPersistence      = service.ErrPersistence
	ErrMalformedData    = service.ErrMalformedData
	ErrZeroRate         = service.ErrZeroRate
)
