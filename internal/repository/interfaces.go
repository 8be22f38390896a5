package repository

import (
	"context"

	"staymap/internal/domain/entities"
)

// ListingRepository is the read-only listing store. GetByID returns
// (nil, nil) for an unknown id; errors are reserved for genuine store
// failures.
type ListingRepository interface {
	GetByID(ctx context.Context, id int64) (*entities.Listing, error)
	// LocatedIDs returns the ids of every listing with coordinates, in
	// ascending id order.
	LocatedIDs(ctx context.Context) ([]int64, error)
	Count(ctx context.Context) (int, error)
}

// CalendarRepository is the read-only per-date availability/price store.
// Get returns (nil, nil) when no entry exists for the pair.
type CalendarRepository interface {
	Get(ctx context.Context, listingID int64, date string) (*entities.CalendarEntry, error)
	// EntriesOn returns every entry for one date keyed by listing id, so
	// date-scoped queries never touch unrelated dates.
	EntriesOn(ctx context.Context, date string) (map[int64]*entities.CalendarEntry, error)
	Count(ctx context.Context) (int, error)
}
