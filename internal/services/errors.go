package services

import "errors"

// Sentinel errors surfaced by the query engine. The two not-found cases are
// distinct on purpose: callers remediate a bad reference id differently
// from an empty neighbor search.
var (
	// ErrListingNotFound means the reference listing id does not exist,
	// or exists without coordinates and therefore has no neighbors.
	ErrListingNotFound = errors.New("reference listing not found")

	// ErrNoHigherRated means the reference resolved fine but no listing
	// anywhere carries a strictly higher rating.
	ErrNoHigherRated = errors.New("no higher-rated neighbor found")
)
