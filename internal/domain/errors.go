package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyFeed is returned when a feed parsed cleanly but yielded no
	// usable rows; usually a wrong link rather than a quiet question.
	ErrEmptyFeed = errors.New("no valid submissions found in the feed")
	// ErrCatalogEmpty is returned when an uploaded catalog has no rows.
	ErrCatalogEmpty = errors.New("catalog is empty")
	// ErrCatalogNoValidRows is returned when a catalog has rows but none
	// carries a complete index/link/answer triple.
	ErrCatalogNoValidRows = errors.New("no valid questions found in catalog")
	// ErrNoQuestion indicates there is no active question (catalog not
	// loaded, or position out of range).
	ErrNoQuestion = errors.New("no question selected")
	// ErrScoringInFlight indicates a scoring pass is already running;
	// callers must serialize triggers.
	ErrScoringInFlight = errors.New("a scoring pass is already in progress")
	// ErrCatalogReloaded indicates the catalog was replaced while a fetch
	// was in flight; the stale result is discarded, never stored.
	ErrCatalogReloaded = errors.New("catalog reloaded during scoring, result discarded")
)

// FetchError reports a failed feed download. Status carries the HTTP status
// text or the transport error message.
type FetchError struct {
	Link   string
	Status string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch feed %s: %s", e.Link, e.Status)
}

// ParseError reports malformed tabular data from the CSV parser.
type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string {
	return "failed to parse feed data: " + e.Msg
}
