package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync/atomic"

	"staymap/internal/domain/entities"
	"staymap/internal/geo"
	"staymap/internal/repository"
)

// Snapshot bundles the spatial index with the two stores built from one
// dataset load. Every component inside is immutable, so a snapshot can be
// shared by any number of concurrent queries.
type Snapshot struct {
	Index    *geo.Index
	Listings repository.ListingRepository
	Calendar repository.CalendarRepository
}

// ListingPoint is the map-overview projection of a located listing.
type ListingPoint struct {
	ID   int64   `json:"id"`
	Name string  `json:"name"`
	Lon  float64 `json:"lon"`
	Lat  float64 `json:"lat"`
}

// RectangleQuery carries the parameters of a bounding-box search. MinRating
// and MaxPrice arrive pre-defaulted by the boundary (0 and +Inf); Date is
// mandatory there, so the engine assumes a normalized date.
type RectangleQuery struct {
	Box       entities.BoundingBox
	Date      string
	MinRating float64
	MaxPrice  float64
}

// SearchResult is one rectangle-search hit: the listing joined with its
// calendar price for the queried date.
type SearchResult struct {
	ID           int64    `json:"id"`
	URL          string   `json:"url,omitempty"`
	Name         string   `json:"name"`
	Lat          float64  `json:"lat"`
	Lon          float64  `json:"lon"`
	Rating       *float64 `json:"rating"`
	Accommodates int      `json:"accommodates,omitempty"`
	Price        float64  `json:"price"`
}

// NearestResult is the winner of a nearest-higher-rated search.
type NearestResult struct {
	ID             int64    `json:"id"`
	URL            string   `json:"url,omitempty"`
	Name           string   `json:"name"`
	Lat            float64  `json:"lat"`
	Lon            float64  `json:"lon"`
	Rating         *float64 `json:"rating"`
	DistanceMeters float64  `json:"distance_meters"`
}

// QueryService is the query engine: it composes the spatial index with the
// listing and calendar stores and owns all filtering, ordering and
// tie-break logic. The current snapshot sits behind an atomic pointer so a
// reload swaps the whole dataset without blocking in-flight readers: they
// finish against the old snapshot, new requests see the new one.
type QueryService struct {
	snapshot atomic.Pointer[Snapshot]
}

// NewQueryService creates the engine serving the given snapshot.
func NewQueryService(snap *Snapshot) *QueryService {
	s := &QueryService{}
	s.snapshot.Store(snap)
	return s
}

// Swap atomically replaces the dataset. The old snapshot is never mutated,
// only released to the garbage collector once in-flight queries drain.
func (s *QueryService) Swap(snap *Snapshot) {
	s.snapshot.Store(snap)
}

// ListListings returns up to limit located listings projected for the map
// overview, in ascending id order.
func (s *QueryService) ListListings(ctx context.Context, limit int) ([]ListingPoint, error) {
	snap := s.snapshot.Load()

	ids, err := snap.Listings.LocatedIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing located ids: %w", err)
	}
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	points := make([]ListingPoint, 0, len(ids))
	for _, id := range ids {
		l, err := snap.Listings.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("listing %d: %w", id, err)
		}
		if !l.HasLocation() {
			continue
		}
		points = append(points, ListingPoint{
			ID:   l.ID,
			Name: l.Name,
			Lon:  l.Location.Longitude,
			Lat:  l.Location.Latitude,
		})
	}
	return points, nil
}

// SearchRectangle returns every listing inside the box that is available on
// the date at a price within budget and rated at or above the floor.
// Results are de-duplicated by listing id and ordered by ascending id.
// Unrated listings never match: a rating floor of zero still requires a
// rating to compare against.
func (s *QueryService) SearchRectangle(ctx context.Context, q RectangleQuery) ([]SearchResult, error) {
	snap := s.snapshot.Load()

	ids, err := snap.Index.RangeQuery(q.Box)
	if err != nil {
		return nil, fmt.Errorf("range query: %w", err)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	// One date-scoped fetch instead of a per-listing probe keeps the join
	// proportional to the candidate set, not the whole calendar.
	entries, err := snap.Calendar.EntriesOn(ctx, q.Date)
	if err != nil {
		return nil, fmt.Errorf("calendar entries for %s: %w", q.Date, err)
	}

	results := make([]SearchResult, 0)
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		entry := entries[id]
		if entry == nil || !entry.Available || entry.Price > q.MaxPrice {
			continue
		}
		l, err := snap.Listings.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("listing %d: %w", id, err)
		}
		if l == nil || !l.HasLocation() {
			continue
		}
		if l.Rating == nil || *l.Rating < q.MinRating {
			continue
		}
		results = append(results, SearchResult{
			ID:           l.ID,
			URL:          l.URL,
			Name:         l.Name,
			Lat:          l.Location.Latitude,
			Lon:          l.Location.Longitude,
			Rating:       l.Rating,
			Accommodates: l.Accommodates,
			Price:        entry.Price,
		})
	}
	return results, nil
}

// NearestHigherRated finds the listing nearest to the reference, by
// geodesic distance, among listings rated strictly above the reference.
// An unrated reference compares as negative infinity, so any rated listing
// qualifies; unrated candidates never do.
func (s *QueryService) NearestHigherRated(ctx context.Context, refID int64) (*NearestResult, error) {
	snap := s.snapshot.Load()

	ref, err := snap.Listings.GetByID(ctx, refID)
	if err != nil {
		return nil, fmt.Errorf("reference listing %d: %w", refID, err)
	}
	if ref == nil || !ref.HasLocation() {
		return nil, ErrListingNotFound
	}

	refRating := math.Inf(-1)
	if ref.Rating != nil {
		refRating = *ref.Rating
	}

	accept := func(id int64) bool {
		c, err := snap.Listings.GetByID(ctx, id)
		if err != nil || c == nil || c.Rating == nil {
			return false
		}
		return *c.Rating > refRating
	}

	neighbor, err := snap.Index.NearestExcluding(ref.Location.Latitude, ref.Location.Longitude, refID, accept)
	if err != nil {
		return nil, fmt.Errorf("nearest search from %d: %w", refID, err)
	}
	if neighbor == nil {
		return nil, ErrNoHigherRated
	}

	winner, err := snap.Listings.GetByID(ctx, neighbor.ID)
	if err != nil || winner == nil || !winner.HasLocation() {
		return nil, fmt.Errorf("nearest candidate %d vanished from store: %w", neighbor.ID, err)
	}

	return &NearestResult{
		ID:             winner.ID,
		URL:            winner.URL,
		Name:           winner.Name,
		Lat:            winner.Location.Latitude,
		Lon:            winner.Location.Longitude,
		Rating:         winner.Rating,
		DistanceMeters: neighbor.Meters,
	}, nil
}

// Stats reports snapshot sizes for startup and reload logging.
func (s *QueryService) Stats(ctx context.Context) (listings, calendarEntries, indexed int) {
	snap := s.snapshot.Load()
	listings, _ = snap.Listings.Count(ctx)
	calendarEntries, _ = snap.Calendar.Count(ctx)
	indexed = snap.Index.Size()
	return listings, calendarEntries, indexed
}
