// Package cache holds the report result caches. Entries are JSON encoded so
// callers always receive their own copy of a cached report.
package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ReportCache stores built reports per pharmacy with a TTL. Invalidating a
// pharmacy drops all of its entries at once and moves it to a new generation.
// Set takes the generation read before the report was built; a report built
// from a generation the pharmacy has since left is never served.
type ReportCache interface {
	Get(ctx context.Context, pharmacyID uuid.UUID, key string, dest any) (bool, error)
	Generation(ctx context.Context, pharmacyID uuid.UUID) (int64, error)
	Set(ctx context.Context, pharmacyID uuid.UUID, gen int64, key string, value any) error
	InvalidatePharmacy(ctx context.Context, pharmacyID uuid.UUID) error
	Close() error
}

func encode(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return data, nil
}

func decode(data []byte, dest any) error {
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode cached report: %w", err)
	}
	return nil
}
