package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ItineraryItem is a single place on a trip's itinerary.
//
// All items of a trip live in one flat ordered list; "day N" and the
// Places-to-Visit backlog are derived views of that list. When
// InPlacesToVisit is true the Date field is a placeholder (always the trip's
// start date) and carries no display meaning.
type ItineraryItem struct {
	ID              uuid.UUID
	PlaceName       string
	Date            time.Time
	Notes           string
	Latitude        float64
	Longitude       float64
	InPlacesToVisit bool
}

// validate enforces the field-level rules for an itinerary item.
// Date-range checks against the trip happen in Trip.validate, which knows
// the trip's date range.
func (it ItineraryItem) validate() error {
	if strings.TrimSpace(it.PlaceName) == "" {
		return fmt.Errorf("%w: place name is required", ErrValidation)
	}
	if it.Latitude < -90 || it.Latitude > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90", ErrValidation)
	}
	if it.Longitude < -180 || it.Longitude > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180", ErrValidation)
	}
	return nil
}

// DateOnly truncates t to midnight UTC. All trip and item dates are stored
// and compared at day granularity.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
