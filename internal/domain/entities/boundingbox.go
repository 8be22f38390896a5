package entities

import "fmt"

// BoundingBox is an axis-aligned rectangle in longitude/latitude space with
// closed (inclusive) bounds. A degenerate box with equal min/max denotes a
// point and is legal.
type BoundingBox struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

// Validate checks the min ≤ max invariant on both axes.
func (b BoundingBox) Validate() error {
	if b.MinLat > b.MaxLat {
		return fmt.Errorf("bounding box min_lat %v exceeds max_lat %v", b.MinLat, b.MaxLat)
	}
	if b.MinLon > b.MaxLon {
		return fmt.Errorf("bounding box min_lng %v exceeds max_lng %v", b.MinLon, b.MaxLon)
	}
	return nil
}

// Contains reports whether the point lies within the closed bounds.
// Membership is a planar comparison on raw degrees; boxes are small enough
// that geodesic precision does not change the outcome, unlike nearest
// neighbor ranking.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat &&
		lon >= b.MinLon && lon <= b.MaxLon
}
