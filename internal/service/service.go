package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/omerorhan/rate-converter/internal/metrics"
	"github.com/omerorhan/rate-converter/internal/storage"
)

// ConverterService converts amounts using today's NBU snapshot.
type ConverterService struct {
	cache     *RateCache
	store     storage.Store
	ownsStore bool
	opts      *ServiceOptions
	logger    *slog.Logger
	metrics   *metrics.ConverterMetrics
}

// ServiceOptions provides configuration for the converter service
type ServiceOptions struct {
	RatesURL          string        `json:"ratesUrl"`
	HTTPTimeout       time.Duration `json:"httpTimeout"`
	CachePath         string        `json:"cachePath"`
	RedisAddr         string        `json:"redisAddr"`
	RedisKey          string        `json:"redisKey"`
	Timezone          string        `json:"timezone"`
	StrictPersistence bool          `json:"strictPersistence"`
	EnableLogging     bool          `json:"enableLogging"`
	LockWait          time.Duration `json:"lockWait"`

	Clock   func() time.Time          `json:"-"`
	Logger  *slog.Logger              `json:"-"`
	Fetcher Fetcher                   `json:"-"`
	Store   storage.Store             `json:"-"`
	Metrics *metrics.ConverterMetrics `json:"-"`
	RunID   string                    `json:"-"`
}

// DefaultServiceOptions returns sensible default options
func DefaultServiceOptions() *ServiceOptions {
	return &ServiceOptions{
		RatesURL:      DefaultRatesURL,
		HTTPTimeout:   DefaultHTTPTimeout,
		CachePath:     storage.DefaultCachePath,
		Timezone:      DefaultTimezone,
		EnableLogging: true,
		LockWait:      2 * time.Second,
		Clock:         time.Now,
	}
}

// ServiceOption is a function that configures service options
type ServiceOption func(*ServiceOptions)

// WithRatesURL sets the NBU endpoint
func WithRatesURL(url string) ServiceOption {
	return func(opts *ServiceOptions) {
		opts.RatesURL = url
	}
}

// WithHTTPTimeout bounds the single rates request
func WithHTTPTimeout(timeout time.Duration) ServiceOption {
	return func(opts *ServiceOptions) {
		opts.HTTPTimeout = timeout
	}
}

// WithCachePath sets the cache file used by the default file store
func WithCachePath(path string) ServiceOption {
	return func(opts *ServiceOptions) {
		opts.CachePath = path
	}
}

// WithRedisConfig stores the snapshot in Redis instead of a file
func WithRedisConfig(addr, key string) ServiceOption {
	return func(opts *ServiceOptions) {
		opts.RedisAddr = addr
		opts.RedisKey = key
	}
}

// WithTimezone sets the zone "today" is computed in
func WithTimezone(name string) ServiceOption {
	return func(opts *ServiceOptions) {
		opts.Timezone = name
	}
}

// WithStrictPersistence makes a failed cache write after a fetch fatal
func WithStrictPersistence(strict bool) ServiceOption {
	return func(opts *ServiceOptions) {
		opts.StrictPersistence = strict
	}
}

// WithLogging enables/disables logging
func WithLogging(enabled bool) ServiceOption {
	return func(opts *ServiceOptions) {
		opts.EnableLogging = enabled
	}
}

func WithLogger(logger *slog.Logger) ServiceOption {
	return func(opts *ServiceOptions) {
		opts.Logger = logger
	}
}

// WithClock injects the source of "now"
func WithClock(clock func() time.Time) ServiceOption {
	return func(opts *ServiceOptions) {
		opts.Clock = clock
	}
}

// WithFetcher replaces the HTTP fetcher
func WithFetcher(f Fetcher) ServiceOption {
	return func(opts *ServiceOptions) {
		opts.Fetcher = f
	}
}

// WithStore replaces the default file store
func WithStore(s storage.Store) ServiceOption {
	return func(opts *ServiceOptions) {
		opts.Store = s
	}
}

func WithMetrics(m *metrics.ConverterMetrics) ServiceOption {
	return func(opts *ServiceOptions) {
		opts.Metrics = m
	}
}

// WithRunID tags log lines and the refresh lock with a run identifier
func WithRunID(id string) ServiceOption {
	return func(opts *ServiceOptions) {
		opts.RunID = id
	}
}

func WithLockWait(d time.Duration) ServiceOption {
	return func(opts *ServiceOptions) {
		opts.LockWait = d
	}
}

// NewConverterService creates a new converter service
func NewConverterService(options ...ServiceOption) (*ConverterService, error) {
	opts := DefaultServiceOptions()

	// Apply options
	for _, option := range options {
		option(opts)
	}

	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	if opts.HTTPTimeout <= 0 {
		opts.HTTPTimeout = DefaultHTTPTimeout
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if !opts.EnableLogging {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("component", "converter", "run_id", opts.RunID)

	store := opts.Store
	ownsStore := store == nil
	if store == nil {
		if opts.RedisAddr != "" {
			ctx, cancel := context.WithTimeout(context.Background(), opts.HTTPTimeout)
			defer cancel()
			rs, err := storage.NewRedisStore(ctx, opts.RedisAddr, storage.WithKey(opts.RedisKey))
			if err != nil {
				return nil, fmt.Errorf("failed to create Redis store: %w", err)
			}
			store = rs
		} else {
			store = storage.NewFileStore(opts.CachePath)
		}
	}

	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = NewHTTPFetcher(opts.RatesURL, opts.HTTPTimeout)
	}

	loc := loadLocation(opts.Timezone)
	clock := opts.Clock
	cache, err := NewRateCache(RateCacheConfig{
		Store:             store,
		Fetcher:           fetcher,
		Today:             func() string { return formatDate(clock(), loc) },
		Logger:            logger,
		Metrics:           opts.Metrics,
		StrictPersistence: opts.StrictPersistence,
		Owner:             opts.RunID,
		LockWait:          opts.LockWait,
	})
	if err != nil {
		return nil, err
	}

	return &ConverterService{
		cache:     cache,
		store:     store,
		ownsStore: ownsStore,
		opts:      opts,
		logger:    logger,
		metrics:   opts.Metrics,
	}, nil
}

// Today returns the current date in DateLayout, in the configured zone.
func (s *ConverterService) Today() string {
	return s.cache.today()
}

// Convert validates req, obtains a fresh snapshot and converts req.Amount.
func (s *ConverterService) Convert(ctx context.Context, req ConvertReq) (*ConvertResp, error) {
	if err := req.Validate(); err != nil {
		s.metrics.Conversion(metrics.OutcomeInvalidArgs)
		return nil, err
	}

	today := s.Today()
	rates, source, err := s.cache.ObtainRatesFor(ctx, today)
	if err != nil {
		s.metrics.Conversion(metrics.OutcomeError)
		return nil, err
	}

	cross, err := Convert(rates, req.From, req.To, req.Amount)
	if err != nil {
		if errors.Is(err, ErrInvalidArguments) {
			s.metrics.Conversion(metrics.OutcomeInvalidArgs)
		} else {
			s.metrics.Conversion(metrics.OutcomeError)
		}
		return nil, err
	}
	s.metrics.Conversion(metrics.OutcomeSuccess)

	resp := &ConvertResp{
		From:      normalizeCode(req.From),
		To:        normalizeCode(req.To),
		Amount:    req.Amount,
		Rate:      cross.Rate,
		Converted: cross.Converted,
		Date:      today,
		Source:    source,
	}
	s.logger.Debug("converted", "from", resp.From, "to", resp.To, "rate", resp.Rate.String(), "source", string(source))
	return resp, nil
}

// Close releases the store if the service opened it; an injected store stays
// open for its owner.
func (s *ConverterService) Close() error {
	if !s.ownsStore {
		return nil
	}
	return s.store.Close()
}
