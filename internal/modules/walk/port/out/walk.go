package out

import (
	"context"

	"pacer/internal/modules/walk/domain"
)

// KVStore is durable string storage keyed by name.
type KVStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

type Exporter interface {
	Format() string
	Export(ctx context.Context, path string, records []domain.WalkRecord) error
}
