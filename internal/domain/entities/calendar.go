package entities

import "time"

// DateFormat is the wire and storage format for calendar dates.
const DateFormat = "2006-01-02"

// CalendarEntry is one availability/price record for a listing on a single
// date. Date is kept in DateFormat form; the (ListingID, Date) pair is the
// composite key and at most one entry exists per pair after loading.
type CalendarEntry struct {
	ListingID int64   `json:"listing_id"`
	Date      string  `json:"date"`
	Available bool    `json:"available"`
	Price     float64 `json:"price"`
}

// ParseDate validates raw against DateFormat and returns the normalized
// form. A normalized date round-trips exactly, so it is safe as a map key.
func ParseDate(raw string) (string, error) {
	t, err := time.Parse(DateFormat, raw)
	if err != nil {
		return "", err
	}
	return t.Format(DateFormat), nil
}
