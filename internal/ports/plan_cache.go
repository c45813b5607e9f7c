package ports

import (
	"context"
	"errors"
)

// ErrCacheMiss is returned by PlanCache.Get when no entry exists for the key.
var ErrCacheMiss = errors.New("plan cache: miss")

// Optional store for serialized optimization responses keyed by request fingerprint.
type PlanCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, payload []byte) error
}
