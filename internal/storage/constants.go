package storage

const (
	DefaultCachePath = "cache.json"
	DefaultRedisKey  = "rate-converter:nbu_rates"

	refreshLockSuffix = ":refresh_lock"
)
