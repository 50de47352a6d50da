package cache

import (
	"context"
	"encoding"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("key not found in cache")
	ErrInvalidValue = errors.New("invalid value for cache")
	ErrClosed       = errors.New("cache is closed")
	ErrInvalidKey   = errors.New("invalid cache key")
)

// Cache is a small key/value store. The session layer uses it to persist the
// bearer token between process runs.
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	Get(ctx context.Context, key string, value interface{}) error

	Delete(ctx context.Context, key string) error

	Clear(ctx context.Context) error

	Close() error
}

type Options struct {
	DefaultTTL time.Duration

	RedisURL string

	RedisPassword string

	RedisDB int

	FilePath string
}

func DefaultOptions() Options {
	return Options{
		DefaultTTL: 7 * 24 * time.Hour,
	}
}

// Encode converts a value accepted by Set into bytes.
func Encode(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case encoding.BinaryMarshaler:
		return v.MarshalBinary()
	default:
		return nil, ErrInvalidValue
	}
}

// Decode stores raw into value, which must be a *string, *[]byte or a
// BinaryUnmarshaler.
func Decode(raw []byte, value interface{}) error {
	switch v := value.(type) {
	case *string:
		*v = string(raw)
	case *[]byte:
		*v = append((*v)[:0], raw...)
	case encoding.BinaryUnmarshaler:
		return v.UnmarshalBinary(raw)
	default:
		return ErrInvalidValue
	}
	return nil
}

// ValidKey rejects empty keys.
func ValidKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	return nil
}
