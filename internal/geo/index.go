// Package geo provides the R-Tree backed spatial index for listings.
// The index answers bounding-box range queries and filtered nearest-neighbor
// queries; nearest-neighbor ranking uses geodesic distance in meters.
package geo

import (
	"fmt"
	"math"

	"github.com/dhconnelly/rtreego"

	"staymap/internal/domain/entities"
	"staymap/pkg/utils"
)

const (
	// R-Tree shape parameters, tuned for point data.
	dimensions  = 2
	minChildren = 25
	maxChildren = 50

	// Indexed points are stored as tiny rects; query rects are matched by
	// intersection and then post-filtered against exact bounds, so the
	// inflation never leaks into results.
	pointTolerance = 1e-6

	// Floor for query rect edge lengths; rtreego rejects non-positive
	// lengths, and degenerate (point) boxes are legal queries.
	minRectLength = 1e-9

	// Starting radius for the expanding nearest-neighbor search.
	initialRadiusMeters = 1000.0

	// Growth factor between expansion rounds.
	radiusGrowth = 8.0
)

// Point is one indexed listing position.
type Point struct {
	ID  int64
	Lat float64
	Lon float64
}

// Neighbor is a nearest-neighbor result with its geodesic distance.
type Neighbor struct {
	ID     int64
	Meters float64
}

// spatialItem wraps a Point to satisfy rtreego.Spatial.
type spatialItem struct {
	point Point
	rect  *rtreego.Rect
}

func (si *spatialItem) Bounds() *rtreego.Rect {
	return si.rect
}

// Index is an immutable R-Tree over listing locations. It is built once at
// load time and never mutated afterwards, so concurrent readers need no
// locking; dataset replacement happens by swapping in a whole new Index.
type Index struct {
	tree *rtreego.Rtree
	size int
}

// NewIndex builds an index over the given points. Axis order inside the
// tree is (lat, lon).
func NewIndex(points []Point) *Index {
	tree := rtreego.NewTree(dimensions, minChildren, maxChildren)
	size := 0
	for _, p := range points {
		rtPoint := rtreego.Point{p.Lat, p.Lon}
		tree.Insert(&spatialItem{point: p, rect: rtPoint.ToRect(pointTolerance)})
		size++
	}
	return &Index{tree: tree, size: size}
}

// Size returns the number of indexed points.
func (ix *Index) Size() int {
	return ix.size
}

// RangeQuery returns the ids of every indexed point inside the closed
// bounding box. Result order is unspecified; callers that promise an order
// sort the ids themselves.
func (ix *Index) RangeQuery(box entities.BoundingBox) ([]int64, error) {
	items, err := ix.searchRect(box.MinLat, box.MinLon, box.MaxLat, box.MaxLon)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		// Exact inclusive check: the tree matches on inflated rects.
		if box.Contains(item.point.Lat, item.point.Lon) {
			ids = append(ids, item.point.ID)
		}
	}
	return ids, nil
}

// NearestExcluding returns the point nearest to the origin by geodesic
// distance, among points accepted by the filter and distinct from exclude.
// Equidistant candidates resolve to the lowest id. Returns (nil, nil) when
// no candidate qualifies.
//
// The search expands a candidate box outward from the origin: a box sized
// for radius r is a superset of the geodesic disk of radius r, so once a
// winner is found within the scanned radius no closer candidate can exist
// outside the box. A winner beyond the scanned radius triggers one rescan
// at exactly its distance before being accepted.
func (ix *Index) NearestExcluding(lat, lon float64, exclude int64, accept func(id int64) bool) (*Neighbor, error) {
	radius := initialRadiusMeters
	for {
		best, err := ix.scanRadius(lat, lon, radius, exclude, accept)
		if err != nil {
			return nil, err
		}
		if best != nil {
			if best.Meters <= radius || radius >= utils.HalfCircumferenceMeters {
				return best, nil
			}
			// Box corners reach beyond the radius; widen to cover the
			// full disk at the candidate's distance and take the min.
			return ix.scanRadius(lat, lon, best.Meters, exclude, accept)
		}
		if radius >= utils.HalfCircumferenceMeters {
			return nil, nil
		}
		radius = math.Min(radius*radiusGrowth, utils.HalfCircumferenceMeters)
	}
}

// scanRadius scans every indexed point inside a box guaranteed to contain
// the geodesic disk of the given radius and returns the closest accepted
// candidate, or nil if the box holds none.
func (ix *Index) scanRadius(lat, lon, radiusMeters float64, exclude int64, accept func(id int64) bool) (*Neighbor, error) {
	minLat, minLon, maxLat, maxLon := coveringBox(lat, lon, radiusMeters)
	items, err := ix.searchRect(minLat, minLon, maxLat, maxLon)
	if err != nil {
		return nil, err
	}

	var best *Neighbor
	for _, item := range items {
		p := item.point
		if p.ID == exclude {
			continue
		}
		if accept != nil && !accept(p.ID) {
			continue
		}
		d := utils.HaversineMeters(lat, lon, p.Lat, p.Lon)
		if best == nil || d < best.Meters || (d == best.Meters && p.ID < best.ID) {
			best = &Neighbor{ID: p.ID, Meters: d}
		}
	}
	return best, nil
}

func (ix *Index) searchRect(minLat, minLon, maxLat, maxLon float64) ([]*spatialItem, error) {
	latLen := math.Max(maxLat-minLat, minRectLength)
	lonLen := math.Max(maxLon-minLon, minRectLength)
	bounds, err := rtreego.NewRect(rtreego.Point{minLat, minLon}, []float64{latLen, lonLen})
	if err != nil {
		return nil, fmt.Errorf("building query rect: %w", err)
	}

	results := ix.tree.SearchIntersect(bounds)
	items := make([]*spatialItem, 0, len(results))
	for _, result := range results {
		item, ok := result.(*spatialItem)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// coveringBox returns lat/lon bounds that contain every point within the
// given geodesic radius of the origin. Longitude widening uses the most
// extreme latitude of the band; near the poles or across the date line the
// box falls back to the full longitude range rather than wrapping.
func coveringBox(lat, lon, radiusMeters float64) (minLat, minLon, maxLat, maxLon float64) {
	latDeg := radiusMeters / utils.EarthRadiusMeters * 180 / math.Pi
	minLat = math.Max(lat-latDeg, -90)
	maxLat = math.Min(lat+latDeg, 90)

	extremeLat := math.Max(math.Abs(minLat), math.Abs(maxLat))
	cosLat := math.Cos(extremeLat * math.Pi / 180)
	if cosLat <= 0 || minLat == -90 || maxLat == 90 {
		return minLat, -180, maxLat, 180
	}

	lonDeg := latDeg / cosLat
	if lonDeg >= 180 || lon-lonDeg < -180 || lon+lonDeg > 180 {
		return minLat, -180, maxLat, 180
	}
	return minLat, lon - lonDeg, maxLat, lon + lonDeg
}
