// Package loader reads the cleaned listings and calendar CSVs and builds
// an immutable dataset snapshot for the query engine.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"staymap/internal/domain/entities"
	"staymap/internal/geo"
	"staymap/internal/repository/memory"
	"staymap/internal/services"
)

// LoadSnapshot reads both CSVs and assembles the index and stores. The
// returned snapshot is fully built before it is returned, so swapping it
// into the engine is safe at any time.
func LoadSnapshot(listingsPath, calendarPath string) (*services.Snapshot, error) {
	listings, err := LoadListings(listingsPath)
	if err != nil {
		return nil, fmt.Errorf("loading listings: %w", err)
	}
	entries, err := LoadCalendar(calendarPath)
	if err != nil {
		return nil, fmt.Errorf("loading calendar: %w", err)
	}
	return BuildSnapshot(listings, entries), nil
}

// BuildSnapshot indexes the given records. Listings without coordinates
// stay out of the spatial index but remain in the listing store.
func BuildSnapshot(listings []entities.Listing, entries []entities.CalendarEntry) *services.Snapshot {
	points := make([]geo.Point, 0, len(listings))
	for _, l := range listings {
		if l.Location == nil {
			continue
		}
		points = append(points, geo.Point{
			ID:  l.ID,
			Lat: l.Location.Latitude,
			Lon: l.Location.Longitude,
		})
	}

	return &services.Snapshot{
		Index:    geo.NewIndex(points),
		Listings: memory.NewListingRepository(listings),
		Calendar: memory.NewCalendarRepository(entries),
	}
}

// LoadListings parses the cleaned listings CSV. Columns are resolved by
// header name, so column order and extra columns do not matter. Blank
// latitude/longitude yields a nil location; blank rating yields nil.
func LoadListings(path string) ([]entities.Listing, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}
	cols := columnIndex(header)
	for _, required := range []string{"id", "name"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%s: missing required column %q", path, required)
		}
	}

	var listings []entities.Listing
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line+1, err)
		}
		line++

		id, err := strconv.ParseInt(field(record, cols, "id"), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: bad id: %w", path, line, err)
		}

		l := entities.Listing{
			ID:   id,
			URL:  field(record, cols, "listing_url"),
			Name: field(record, cols, "name"),
		}

		if raw := field(record, cols, "accommodates"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: bad accommodates %q: %w", path, line, raw, err)
			}
			l.Accommodates = n
		}

		latRaw := field(record, cols, "latitude")
		lonRaw := field(record, cols, "longitude")
		if latRaw != "" && lonRaw != "" {
			lat, err := strconv.ParseFloat(latRaw, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: bad latitude %q: %w", path, line, latRaw, err)
			}
			lon, err := strconv.ParseFloat(lonRaw, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: bad longitude %q: %w", path, line, lonRaw, err)
			}
			loc := entities.NewLocation(lat, lon)
			l.Location = &loc
		}

		if raw := field(record, cols, "review_scores_rating"); raw != "" {
			rating, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: bad rating %q: %w", path, line, raw, err)
			}
			l.Rating = &rating
		}

		listings = append(listings, l)
	}
	return listings, nil
}

// LoadCalendar parses the cleaned calendar CSV. Rows without a price (the
// listing is blocked with no quote) are skipped. Prices may still carry
// currency formatting and availability may still be t/f; both raw forms
// are tolerated.
func LoadCalendar(path string) ([]entities.CalendarEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}
	cols := columnIndex(header)
	for _, required := range []string{"listing_id", "date", "available"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%s: missing required column %q", path, required)
		}
	}

	var entries []entities.CalendarEntry
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line+1, err)
		}
		line++

		listingID, err := strconv.ParseInt(field(record, cols, "listing_id"), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: bad listing_id: %w", path, line, err)
		}

		date, err := entities.ParseDate(field(record, cols, "date"))
		if err != nil {
			return nil, fmt.Errorf("%s line %d: bad date: %w", path, line, err)
		}

		available, err := parseAvailability(field(record, cols, "available"))
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}

		priceRaw := field(record, cols, "price")
		if priceRaw == "" {
			continue
		}
		price, err := parsePrice(priceRaw)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}

		entries = append(entries, entities.CalendarEntry{
			ListingID: listingID,
			Date:      date,
			Available: available,
			Price:     price,
		})
	}
	return entries, nil
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return cols
}

func field(record []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func parseAvailability(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "t", "true":
		return true, nil
	case "f", "false", "":
		return false, nil
	}
	return false, fmt.Errorf("bad availability %q", raw)
}

// parsePrice accepts both the cleaned numeric form and the raw source
// form with a currency symbol and thousands separators ("$1,234.00").
func parsePrice(raw string) (float64, error) {
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(raw)
	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("bad price %q: %w", raw, err)
	}
	if price < 0 {
		return 0, fmt.Errorf("negative price %q", raw)
	}
	return price, nil
}
