package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// MoveItem repositions an itinerary item within the flat list, moving it
// between day buckets and the Places-to-Visit backlog or reordering it within
// its current bucket. Cross-container moves and same-container reorders share
// this one algorithm.
//
// targetDay selects the destination container: nil means the backlog,
// otherwise day targetDay (1-indexed, must not run past the trip's end date).
// beforeID and afterID are mutually exclusive anchors naming an existing item
// of the destination container; the moved item is inserted immediately before
// or after the anchor. With no anchor the item is appended after the last
// item already in the destination container — or at the very end of the whole
// list when the container is empty.
func (t Trip) MoveItem(itemID uuid.UUID, targetDay *int, beforeID, afterID *uuid.UUID) (Trip, error) {
	if beforeID != nil && afterID != nil {
		return Trip{}, fmt.Errorf("%w: beforeItemId and afterItemId are mutually exclusive", ErrValidation)
	}

	idx := t.itemIndex(itemID)
	if idx < 0 {
		return Trip{}, fmt.Errorf("%w: itinerary item %s", ErrNotFound, itemID)
	}

	// Destination container: (toBacklog, targetDate).
	toBacklog := targetDay == nil
	targetDate := t.StartDate
	if !toBacklog {
		if *targetDay < 1 {
			return Trip{}, fmt.Errorf("%w: day number must be at least 1", ErrValidation)
		}
		targetDate = t.DayDate(*targetDay)
		if targetDate.After(t.EndDate) {
			return Trip{}, fmt.Errorf("%w: day %d is past the end of the trip", ErrValidation, *targetDay)
		}
	}

	moved := t.Items[idx]
	moved.InPlacesToVisit = toBacklog
	moved.Date = targetDate

	// Remove first; the remaining list defines all position candidates.
	remaining := make([]ItineraryItem, 0, len(t.Items)-1)
	remaining = append(remaining, t.Items[:idx]...)
	remaining = append(remaining, t.Items[idx+1:]...)

	inTarget := func(it ItineraryItem) bool {
		if toBacklog {
			return it.InPlacesToVisit
		}
		return !it.InPlacesToVisit && it.Date.Equal(targetDate)
	}

	insertAt, err := moveInsertIndex(remaining, inTarget, beforeID, afterID)
	if err != nil {
		return Trip{}, err
	}

	items := make([]ItineraryItem, 0, len(t.Items))
	items = append(items, remaining[:insertAt]...)
	items = append(items, moved)
	items = append(items, remaining[insertAt:]...)

	next := t.clone()
	next.Items = items
	if err := next.validate(); err != nil {
		return Trip{}, err
	}
	return next, nil
}

// moveInsertIndex resolves the insertion position in the post-removal list.
// Anchors must exist and belong to the destination container; an anchorless
// move lands after the last item already in that container.
func moveInsertIndex(remaining []ItineraryItem, inTarget func(ItineraryItem) bool, beforeID, afterID *uuid.UUID) (int, error) {
	if beforeID != nil {
		i, err := anchorIndex(remaining, *beforeID, inTarget)
		if err != nil {
			return 0, err
		}
		return i, nil
	}
	if afterID != nil {
		i, err := anchorIndex(remaining, *afterID, inTarget)
		if err != nil {
			return 0, err
		}
		return i + 1, nil
	}
	// No anchor: append to the end of the destination container, which is the
	// end of the whole list only when the container is empty.
	last := -1
	for i, it := range remaining {
		if inTarget(it) {
			last = i
		}
	}
	if last < 0 {
		return len(remaining), nil
	}
	return last + 1, nil
}

// anchorIndex locates an anchor item and validates that it belongs to the
// destination container. An anchor in some other day (or on the wrong side of
// the backlog boundary) would make the request meaningless, so it is rejected.
func anchorIndex(remaining []ItineraryItem, anchor uuid.UUID, inTarget func(ItineraryItem) bool) (int, error) {
	for i, it := range remaining {
		if it.ID != anchor {
			continue
		}
		if !inTarget(it) {
			return 0, fmt.Errorf("%w: anchor item %s is not in the target container", ErrValidation, anchor)
		}
		return i, nil
	}
	return 0, fmt.Errorf("%w: anchor item %s", ErrNotFound, anchor)
}
