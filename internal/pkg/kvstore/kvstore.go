package kvstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/shopauth/internal/pkg/clock"
)

const (
	// DriverRedis selects the native Redis driver.
	DriverRedis = "redis"
	// DriverREST selects the Upstash-compatible REST driver.
	DriverREST = "rest"
	// DriverMemory selects the in-process driver.
	DriverMemory = "memory"
)

var (
	// ErrNil is returned by Get when the key is absent or expired.
	ErrNil = errors.New("kvstore: key not found")

	// ErrUnknownDriver indicates an unsupported store driver.
	ErrUnknownDriver = errors.New("kvstore: unknown driver")
)

// Store is the key-value contract shared by every driver.
type Store interface {
	io.Closer

	// Set writes value under key, replacing any previous value, expiring after ttl.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Get returns the value under key or ErrNil.
	Get(ctx context.Context, key string) (string, error)
	// Del removes key. Removing a missing key is not an error.
	Del(ctx context.Context, key string) error
	// CompareAndDelete removes key only when it currently holds expected,
	// as a single atomic step. It reports whether the key was removed.
	CompareAndDelete(ctx context.Context, key, expected string) (bool, error)
}

// compareAndDeleteScript is shared by the Redis and REST drivers.
const compareAndDeleteScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) else return 0 end`

// FactoryOptions groups configuration for store drivers.
type FactoryOptions struct {
	// Redis configures the Redis driver.
	Redis RedisOptions
	// REST configures the REST driver.
	REST RESTOptions
	// Clock drives expiry in the memory driver.
	Clock clock.Clocker
}

// RedisOptions configures the Redis driver.
type RedisOptions struct {
	// URL is a redis:// or rediss:// connection string.
	URL string
	// Client, when set, is used instead of dialing URL.
	Client *redis.Client
}

// NewFromDriver constructs a Store implementation by driver name.
func NewFromDriver(ctx context.Context, driver string, opts FactoryOptions) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverRedis:
		if opts.Redis.Client != nil {
			return NewRedisWithClient(opts.Redis.Client), nil
		}
		return NewRedis(ctx, opts.Redis.URL)
	case DriverREST:
		return NewREST(opts.REST)
	case DriverMemory:
		return NewMemory(opts.Clock), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}
