// Package domain contains the core types and the trip aggregate for the
// Wayfarer trip planner. This package has zero I/O dependencies and is
// imported by every other internal package (repo, service, handler).
//
// Trip is an immutable aggregate: every transition method takes the current
// value and returns a new, fully validated value or an error — never a
// half-updated aggregate. Callers must treat a Trip as read-only and replace
// it wholesale with the transition result.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Trip is the aggregate root: trip details, members, invites, and the flat
// ordered itinerary item list.
//
// OwnerID is the primary owner. The primary owner always appears exactly once
// in Members with RoleOwner; ownership transfer (LeaveTrip with a successor)
// is the only way OwnerID changes.
type Trip struct {
	ID         uuid.UUID
	OwnerID    uuid.UUID
	Name       string
	StartDate  time.Time
	EndDate    time.Time
	Visibility Visibility
	Members    []TripMembership
	Invites    []TripInvite
	Items      []ItineraryItem
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewTrip constructs a trip with the primary owner as its sole OWNER member
// and no items or invites. Dates are truncated to day granularity.
func NewTrip(ownerID uuid.UUID, name string, start, end time.Time, visibility Visibility) (Trip, error) {
	if !visibility.Valid() {
		return Trip{}, fmt.Errorf("%w: visibility must be PUBLIC or PRIVATE", ErrValidation)
	}
	t := Trip{
		OwnerID:    ownerID,
		Name:       name,
		StartDate:  DateOnly(start),
		EndDate:    DateOnly(end),
		Visibility: visibility,
		Members:    []TripMembership{{UserID: ownerID, Role: RoleOwner}},
	}
	if err := t.validate(); err != nil {
		return Trip{}, err
	}
	return t, nil
}

// clone returns a deep copy of the trip so transitions never alias the
// caller's slices.
func (t Trip) clone() Trip {
	next := t
	next.Members = append([]TripMembership(nil), t.Members...)
	next.Invites = append([]TripInvite(nil), t.Invites...)
	next.Items = append([]ItineraryItem(nil), t.Items...)
	return next
}

// validate checks every aggregate invariant. It runs after each transition;
// a transition whose result fails validation is rejected as a whole.
func (t Trip) validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: trip name is required", ErrValidation)
	}
	if t.EndDate.Before(t.StartDate) {
		return fmt.Errorf("%w: end date must not be before start date", ErrValidation)
	}
	if len(t.Members) == 0 {
		return fmt.Errorf("%w: trip must have at least one member", ErrInvariant)
	}

	primarySeen := false
	userIDs := make(map[uuid.UUID]struct{}, len(t.Members))
	for _, m := range t.Members {
		if !m.Role.Valid() {
			return fmt.Errorf("%w: unknown role %q", ErrValidation, m.Role)
		}
		if _, dup := userIDs[m.UserID]; dup {
			return fmt.Errorf("%w: user %s is a member twice", ErrInvariant, m.UserID)
		}
		userIDs[m.UserID] = struct{}{}
		if m.UserID == t.OwnerID {
			if m.Role != RoleOwner {
				return fmt.Errorf("%w: primary owner must hold the OWNER role", ErrInvariant)
			}
			primarySeen = true
		}
	}
	if !primarySeen {
		return fmt.Errorf("%w: primary owner must be a member", ErrInvariant)
	}

	emails := make(map[string]struct{}, len(t.Invites))
	for _, inv := range t.Invites {
		key := NormalizeEmail(inv.Email)
		if key == "" {
			return fmt.Errorf("%w: invite email is required", ErrValidation)
		}
		if _, dup := emails[key]; dup {
			return fmt.Errorf("%w: duplicate invite for %s", ErrInvariant, key)
		}
		emails[key] = struct{}{}
		if !inv.Role.Valid() {
			return fmt.Errorf("%w: unknown role %q", ErrValidation, inv.Role)
		}
		if !inv.Status.Valid() {
			return fmt.Errorf("%w: unknown invite status %q", ErrValidation, inv.Status)
		}
	}

	itemIDs := make(map[uuid.UUID]struct{}, len(t.Items))
	for _, it := range t.Items {
		if err := it.validate(); err != nil {
			return err
		}
		if _, dup := itemIDs[it.ID]; dup {
			return fmt.Errorf("%w: duplicate itinerary item %s", ErrInvariant, it.ID)
		}
		itemIDs[it.ID] = struct{}{}
		if !it.InPlacesToVisit && !t.containsDate(it.Date) {
			return fmt.Errorf("%w: item date %s is outside the trip range", ErrValidation, it.Date.Format("2006-01-02"))
		}
	}

	return nil
}

// containsDate reports whether d falls within [StartDate, EndDate].
func (t Trip) containsDate(d time.Time) bool {
	return !d.Before(t.StartDate) && !d.After(t.EndDate)
}

// RoleOf returns the role userID holds on the trip, or false if they are not
// a member.
func (t Trip) RoleOf(userID uuid.UUID) (Role, bool) {
	for _, m := range t.Members {
		if m.UserID == userID {
			return m.Role, true
		}
	}
	return "", false
}

// AddItineraryItem appends item to the end of the flat itinerary list.
// Backlog items get their placeholder date forced to the trip start date;
// dated items must fall within the trip range.
func (t Trip) AddItineraryItem(item ItineraryItem) (Trip, error) {
	item.Date = DateOnly(item.Date)
	if item.InPlacesToVisit {
		item.Date = t.StartDate
	}
	next := t.clone()
	next.Items = append(next.Items, item)
	if err := next.validate(); err != nil {
		return Trip{}, err
	}
	return next, nil
}

// UpdateItineraryItem replaces the fields of the item with the given id,
// keeping its position in the flat list. Returns ErrNotFound if the id is
// absent.
func (t Trip) UpdateItineraryItem(id uuid.UUID, item ItineraryItem) (Trip, error) {
	idx := t.itemIndex(id)
	if idx < 0 {
		return Trip{}, fmt.Errorf("%w: itinerary item %s", ErrNotFound, id)
	}
	item.ID = id
	item.Date = DateOnly(item.Date)
	if item.InPlacesToVisit {
		item.Date = t.StartDate
	}
	next := t.clone()
	next.Items[idx] = item
	if err := next.validate(); err != nil {
		return Trip{}, err
	}
	return next, nil
}

// RemoveItineraryItem deletes the item with the given id from the flat list.
// Returns ErrNotFound if the id is absent.
func (t Trip) RemoveItineraryItem(id uuid.UUID) (Trip, error) {
	idx := t.itemIndex(id)
	if idx < 0 {
		return Trip{}, fmt.Errorf("%w: itinerary item %s", ErrNotFound, id)
	}
	next := t.clone()
	next.Items = append(next.Items[:idx], next.Items[idx+1:]...)
	if err := next.validate(); err != nil {
		return Trip{}, err
	}
	return next, nil
}

// UpdateDetails changes the trip's name, date range, and visibility.
//
// When the new range excludes a dated item, that item is silently converted
// to a Places-to-Visit entry with its date reset to the new start date —
// items never become invalid, they fall back to the backlog. Relative order
// among converted items is preserved. Backlog placeholder dates follow the
// new start date.
func (t Trip) UpdateDetails(name string, start, end time.Time, visibility Visibility) (Trip, error) {
	if !visibility.Valid() {
		return Trip{}, fmt.Errorf("%w: visibility must be PUBLIC or PRIVATE", ErrValidation)
	}
	next := t.clone()
	next.Name = name
	next.StartDate = DateOnly(start)
	next.EndDate = DateOnly(end)
	next.Visibility = visibility
	if next.EndDate.Before(next.StartDate) {
		return Trip{}, fmt.Errorf("%w: end date must not be before start date", ErrValidation)
	}
	for i, it := range next.Items {
		if !it.InPlacesToVisit && !next.containsDate(it.Date) {
			it.InPlacesToVisit = true
		}
		if it.InPlacesToVisit {
			it.Date = next.StartDate
		}
		next.Items[i] = it
	}
	if err := next.validate(); err != nil {
		return Trip{}, err
	}
	return next, nil
}

// itemIndex returns the position of the item with the given id in the flat
// list, or -1.
func (t Trip) itemIndex(id uuid.UUID) int {
	for i, it := range t.Items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
