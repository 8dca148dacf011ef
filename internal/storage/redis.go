package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the snapshot under a single Redis key so several hosts can share it.
type RedisStore struct {
	client *redis.Client
	key    string
	opts   *StoreOptions
}

// RedisOption is a function that configures the Redis store
type RedisOption func(*RedisStore)

// WithStoreOptions sets TTLs for the snapshot and the refresh lock
func WithStoreOptions(opts *StoreOptions) RedisOption {
	return func(rs *RedisStore) {
		if opts != nil {
			rs.opts = opts
		}
	}
}

// WithKey overrides the key the snapshot is stored under
func WithKey(key string) RedisOption {
	return func(rs *RedisStore) {
		if key != "" {
			rs.key = key
		}
	}
}

// NewRedisStore connects to addr, which is either a redis:// / rediss:// URL or
// the tcp://host:port/db and unix:///path forms.
func NewRedisStore(ctx context.Context, addr string, options ...RedisOption) (*RedisStore, error) {
	redisOpts, err := parseRedisURL(addr)
	if err != nil {
		return nil, err
	}
	return NewRedisStoreWithClient(ctx, redis.NewClient(redisOpts), options...)
}

// NewRedisStoreWithClient wraps an existing client and checks the connection.
func NewRedisStoreWithClient(ctx context.Context, client *redis.Client, options ...RedisOption) (*RedisStore, error) {
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	rs := &RedisStore{
		client: client,
		key:    DefaultRedisKey,
		opts:   DefaultStoreOptions(),
	}
	for _, option := range options {
		option(rs)
	}
	return rs, nil
}

func parseRedisURL(addr string) (*redis.Options, error) {
	u, err := url.Parse(addr)
	if err != nil {
		return nil, fmt.Errorf("can't parse url for redis: %w", err)
	}
	switch u.Scheme {
	case "redis", "rediss":
		return redis.ParseURL(addr)
	case "tcp", "unix":
	default:
		return nil, fmt.Errorf("unsupported redis scheme %q", u.Scheme)
	}

	var passwd string
	if u.User != nil {
		passwd, _ = u.User.Password()
	}
	opts := &redis.Options{
		Network:  u.Scheme,
		Addr:     u.Host,
		Password: passwd,
	}
	if u.Scheme == "unix" {
		opts.Addr = u.Path
		return opts, nil
	}
	if 1 < len(u.Path) {
		db, err := strconv.Atoi(u.Path[1:])
		if err != nil {
			return nil, fmt.Errorf("can't convert string into int for redis db; %s; %s", err.Error(), addr)
		}
		opts.DB = db
	}
	return opts, nil
}

func (rs *RedisStore) Key() string { return rs.key }

func (rs *RedisStore) Exists(ctx context.Context) (bool, error) {
	n, err := rs.client.Exists(ctx, rs.key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check snapshot in Redis: %w", err)
	}
	return n > 0, nil
}

func (rs *RedisStore) Read(ctx context.Context) ([]byte, error) {
	data, err := rs.client.Get(ctx, rs.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get snapshot from Redis: %w", err)
	}
	return data, nil
}

// Write replaces the snapshot; SET is atomic so readers never see a partial value.
func (rs *RedisStore) Write(ctx context.Context, data []byte) error {
	if err := rs.client.Set(ctx, rs.key, data, rs.opts.DefaultTTL).Err(); err != nil {
		return fmt.Errorf("failed to store snapshot in Redis: %w", err)
	}
	return nil
}

// Lock takes the refresh lock with SET NX so only one process re-fetches at a time.
func (rs *RedisStore) Lock(ctx context.Context, owner string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = rs.opts.LockTTL
	}
	ok, err := rs.client.SetNX(ctx, rs.key+refreshLockSuffix, owner, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire refresh lock: %w", err)
	}
	return ok, nil
}

// unlockScript deletes the lock only while it still carries the caller's owner id.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Unlock releases the refresh lock only if owner still holds it.
func (rs *RedisStore) Unlock(ctx context.Context, owner string) error {
	if err := unlockScript.Run(ctx, rs.client, []string{rs.key + refreshLockSuffix}, owner).Err(); err != nil {
		return fmt.Errorf("failed to release refresh lock: %w", err)
	}
	return nil
}

func (rs *RedisStore) Close() error {
	return rs.client.Close()
}

var (
	_ Store  = (*RedisStore)(nil)
	_ Locker = (*RedisStore)(nil)
)
