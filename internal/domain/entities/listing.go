package entities

// Location represents a geographic coordinate pair in WGS84 degrees.
// It is a small immutable value type and is passed by value throughout.
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// NewLocation creates a Location value from latitude and longitude.
func NewLocation(lat, lon float64) Location {
	return Location{
		Latitude:  lat,
		Longitude: lon,
	}
}

// Listing is a location-tagged catalog entry. Location and Rating are
// pointers because the source data leaves both blank for some listings:
// a nil Location keeps the listing out of every spatial query (it is still
// retrievable by id), and a nil Rating means "unrated".
type Listing struct {
	ID           int64     `json:"id"`
	URL          string    `json:"url,omitempty"`
	Name         string    `json:"name"`
	Location     *Location `json:"location,omitempty"`
	Accommodates int       `json:"accommodates,omitempty"`
	Rating       *float64  `json:"rating,omitempty"`
}

// HasLocation reports whether the listing carries coordinates.
func (l *Listing) HasLocation() bool {
	return l != nil && l.Location != nil
}
