package config

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shandysiswandi/shopauth/internal/pkg/goerror"
)

// Config defines a set of methods for retrieving configuration values of various types.
// Implementations return the zero value for missing keys; callers that need a
// value to be present use Require.
type Config interface {
	io.Closer

	// IsSet reports whether the key has a non-empty value.
	IsSet(key string) bool

	// GetBool retrieves the configuration value associated with the given key as a bool.
	GetBool(key string) bool

	// GetInt retrieves the configuration value associated with the given key as an int.
	GetInt(key string) int

	// GetInt32 retrieves the configuration value associated with the given key as an int32.
	GetInt32(key string) int32

	// GetFloat64 retrieves the configuration value associated with the given key as a float64.
	GetFloat64(key string) float64

	// GetString retrieves the configuration value associated with the given key as a string.
	GetString(key string) string

	// GetSecond retrieves the configuration value associated with the given key as seconds.
	GetSecond(key string) time.Duration

	// GetMinute retrieves the configuration value associated with the given key as minutes.
	GetMinute(key string) time.Duration

	// GetBinary retrieves the configuration value associated with the given key as a byte slice.
	// Configuration value is stored as base64 encoded.
	GetBinary(key string) []byte

	// GetArray retrieves the configuration value associated with the given key as a slice of strings.
	// Configuration value is stored with format <element1>,<element2>,...
	// Empty elements are dropped.
	GetArray(key string) []string
}

// Require returns a configuration error naming every key in keys that has no value.
func Require(cfg Config, keys ...string) error {
	var missing []string
	for _, key := range keys {
		if !cfg.IsSet(key) {
			missing = append(missing, key)
		}
	}

	if len(missing) == 0 {
		return nil
	}

	return goerror.NewConfiguration(fmt.Errorf("%w: %s", goerror.ErrConfiguration, strings.Join(missing, ", ")))
}
