package memory

import (
	"context"
	"sort"

	"staymap/internal/domain/entities"
)

// ListingRepository is an in-memory listing store built once from the
// loaded dataset and immutable afterwards. Construction precedes serving
// traffic, so it is not concurrency-safe; reads are safe from any number
// of goroutines because nothing mutates after NewListingRepository returns.
type ListingRepository struct {
	byID       map[int64]*entities.Listing
	locatedIDs []int64 // ascending, listings with coordinates only
}

// NewListingRepository indexes the given listings by id. A duplicate id
// keeps the last occurrence, matching load order.
func NewListingRepository(listings []entities.Listing) *ListingRepository {
	byID := make(map[int64]*entities.Listing, len(listings))
	for i := range listings {
		l := listings[i]
		byID[l.ID] = &l
	}

	locatedIDs := make([]int64, 0, len(byID))
	for id, l := range byID {
		if l.HasLocation() {
			locatedIDs = append(locatedIDs, id)
		}
	}
	sort.Slice(locatedIDs, func(i, j int) bool { return locatedIDs[i] < locatedIDs[j] })

	return &ListingRepository{
		byID:       byID,
		locatedIDs: locatedIDs,
	}
}

// GetByID returns the listing with the given id, or (nil, nil) if absent.
func (r *ListingRepository) GetByID(ctx context.Context, id int64) (*entities.Listing, error) {
	listing, exists := r.byID[id]
	if !exists {
		return nil, nil
	}
	return listing, nil
}

// LocatedIDs returns the ids of all listings with coordinates, ascending.
// The returned slice is shared and must not be modified.
func (r *ListingRepository) LocatedIDs(ctx context.Context) ([]int64, error) {
	return r.locatedIDs, nil
}

// Count returns the total number of listings, located or not.
func (r *ListingRepository) Count(ctx context.Context) (int, error) {
	return len(r.byID), nil
}
