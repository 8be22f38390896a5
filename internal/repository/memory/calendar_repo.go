package memory

import (
	"context"

	"staymap/internal/domain/entities"
)

// CalendarRepository stores availability/price records with two indices:
//   - byListing: listingID → date → entry (point lookup by composite key)
//   - byDate:    date → listingID → entry (date-scoped scans)
//
// The dual-index pattern mirrors the need for fast lookups by two different
// keys; both indices are populated once at construction and never mutated,
// so reads need no locking.
type CalendarRepository struct {
	byListing map[int64]map[string]*entities.CalendarEntry
	byDate    map[string]map[int64]*entities.CalendarEntry
	count     int
}

// NewCalendarRepository indexes the given entries. At most one entry is
// kept per (listingID, date) pair; when the source data carries duplicates
// the last row wins, which is deterministic for a given input order.
func NewCalendarRepository(entries []entities.CalendarEntry) *CalendarRepository {
	byListing := make(map[int64]map[string]*entities.CalendarEntry)
	byDate := make(map[string]map[int64]*entities.CalendarEntry)

	for i := range entries {
		e := entries[i]

		dates, exists := byListing[e.ListingID]
		if !exists {
			dates = make(map[string]*entities.CalendarEntry)
			byListing[e.ListingID] = dates
		}
		dates[e.Date] = &e

		ids, exists := byDate[e.Date]
		if !exists {
			ids = make(map[int64]*entities.CalendarEntry)
			byDate[e.Date] = ids
		}
		ids[e.ListingID] = &e
	}

	count := 0
	for _, dates := range byListing {
		count += len(dates)
	}

	return &CalendarRepository{
		byListing: byListing,
		byDate:    byDate,
		count:     count,
	}
}

// Get returns the entry for (listingID, date), or (nil, nil) if absent.
// The date must be in entities.DateFormat.
func (r *CalendarRepository) Get(ctx context.Context, listingID int64, date string) (*entities.CalendarEntry, error) {
	dates, exists := r.byListing[listingID]
	if !exists {
		return nil, nil
	}
	entry, exists := dates[date]
	if !exists {
		return nil, nil
	}
	return entry, nil
}

// EntriesOn returns all entries for one date keyed by listing id. The
// returned map is shared and must not be modified; it may be nil when the
// date has no entries.
func (r *CalendarRepository) EntriesOn(ctx context.Context, date string) (map[int64]*entities.CalendarEntry, error) {
	return r.byDate[date], nil
}

// Count returns the number of distinct (listingID, date) entries.
func (r *CalendarRepository) Count(ctx context.Context) (int, error) {
	return r.count, nil
}
