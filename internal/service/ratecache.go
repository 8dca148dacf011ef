package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/omerorhan/rate-converter/internal/metrics"
	"github.com/omerorhan/rate-converter/internal/storage"
)

// RateCache hands out a snapshot dated today, touching the network only when the
// persisted snapshot is missing or stale.
type RateCache struct {
	store    storage.Store
	fetcher  Fetcher
	today    func() string
	logger   *slog.Logger
	metrics  *metrics.ConverterMetrics
	strict   bool
	owner    string
	lockWait time.Duration
}

type RateCacheConfig struct {
	Store   storage.Store
	Fetcher Fetcher
	// Today renders the current date in DateLayout.
	Today   func() string
	Logger  *slog.Logger
	Metrics *metrics.ConverterMetrics
	// StrictPersistence aborts the run when a fetched snapshot cannot be written.
	StrictPersistence bool
	// Owner identifies this process when the store supports locking.
	Owner string
	// LockWait is how long to wait for another process that holds the refresh lock.
	LockWait time.Duration
}

func NewRateCache(cfg RateCacheConfig) (*RateCache, error) {
	if cfg.Store == nil {
		return nil, errors.New("rate cache: store is required")
	}
	if cfg.Fetcher == nil {
		return nil, errors.New("rate cache: fetcher is required")
	}
	if cfg.Today == nil {
		return nil, errors.New("rate cache: today func is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &RateCache{
		store:    cfg.Store,
		fetcher:  cfg.Fetcher,
		today:    cfg.Today,
		logger:   logger,
		metrics:  cfg.Metrics,
		strict:   cfg.StrictPersistence,
		owner:    cfg.Owner,
		lockWait: cfg.LockWait,
	}, nil
}

// ObtainFreshRates returns the cached snapshot when every record is dated today,
// otherwise fetches, persists and returns a new one.
func (rc *RateCache) ObtainFreshRates(ctx context.Context) (storage.RateSet, Source, error) {
	return rc.ObtainRatesFor(ctx, rc.today())
}

// ObtainRatesFor is ObtainFreshRates with "today" fixed by the caller, so the date a
// snapshot was checked against is the date reported with the result.
func (rc *RateCache) ObtainRatesFor(ctx context.Context, today string) (storage.RateSet, Source, error) {
	exists, err := rc.store.Exists(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if !exists {
		rc.metrics.CacheLookup(metrics.CacheMiss)
		rc.logger.Info("no cached rates, fetching", "today", today)
		rates, err := rc.refresh(ctx, today)
		return rates, SourceRemote, err
	}

	rates, err := rc.readCached(ctx)
	if err != nil {
		return nil, "", err
	}
	if rates.DatedOn(today) {
		rc.metrics.CacheLookup(metrics.CacheHit)
		rc.logger.Debug("cached rates are fresh", "today", today, "currencies", len(rates))
		return rates, SourceCache, nil
	}

	rc.metrics.CacheLookup(metrics.CacheStale)
	rc.logger.Info("cached rates are stale, fetching", "today", today, "cached_dates", rates.Dates())
	rates, err = rc.refresh(ctx, today)
	return rates, SourceRemote, err
}

func (rc *RateCache) readCached(ctx context.Context) (storage.RateSet, error) {
	data, err := rc.store.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	rates, err := storage.DecodeRates(data)
	if err != nil {
		return nil, fmt.Errorf("%w: cached snapshot: %w", ErrMalformedData, err)
	}
	return rates, nil
}

// refresh serialises the fetch behind the store's lock when the store is shared.
func (rc *RateCache) refresh(ctx context.Context, today string) (storage.RateSet, error) {
	locker, ok := rc.store.(storage.Locker)
	if !ok {
		return rc.fetchAndPersist(ctx, today)
	}

	acquired, err := locker.Lock(ctx, rc.owner, 0)
	if err != nil {
		rc.logger.Warn("refresh lock unavailable, fetching without it", "error", err)
		return rc.fetchAndPersist(ctx, today)
	}
	if acquired {
		defer func() {
			if err := locker.Unlock(context.WithoutCancel(ctx), rc.owner); err != nil {
				rc.logger.Warn("failed to release refresh lock", "error", err)
			}
		}()
		return rc.fetchAndPersist(ctx, today)
	}

	// Another process is refreshing; give it a chance to publish today's snapshot.
	rc.logger.Info("refresh in progress elsewhere, waiting", "wait", rc.lockWait)
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrTransport, ctx.Err())
	case <-time.After(rc.lockWait):
	}
	if rates, err := rc.readCached(ctx); err == nil && rates.DatedOn(today) {
		rc.logger.Info("picked up rates refreshed by another process")
		return rates, nil
	}
	return rc.fetchAndPersist(ctx, today)
}

// fetchAndPersist validates the fetched body before persisting it, so a broken
// response never replaces a readable snapshot.
func (rc *RateCache) fetchAndPersist(ctx context.Context, today string) (storage.RateSet, error) {
	start := time.Now()
	body, err := rc.fetcher.Fetch(ctx)
	rc.metrics.ObserveFetch(time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	rates, err := storage.DecodeRates(body)
	if err != nil {
		return nil, fmt.Errorf("%w: fetched snapshot: %w", ErrMalformedData, err)
	}
	if !rates.DatedOn(today) {
		rc.logger.Warn("fetched rates are not dated today", "today", today, "dates", rates.Dates())
	}

	if err := rc.store.Write(ctx, body); err != nil {
		rc.metrics.CacheWriteFailed()
		if rc.strict {
			return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
		}
		rc.logger.Warn("failed to persist fetched rates, continuing with them in memory", "error", err)
		return rates, nil
	}

	rc.logger.Info("fetched and cached rates", "currencies", len(rates), "bytes", len(body))
	return rates, nil
}
