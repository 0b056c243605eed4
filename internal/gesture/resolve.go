// Package gesture converts drag-and-drop gestures over the rendered
// itinerary into the anchor-based move commands the trip aggregate accepts.
//
// It is pure — no I/O, no clock — and exists so every client surface speaks
// the exact vocabulary of Trip.MoveItem instead of inventing its own
// positioning scheme. A gesture that would not change anything resolves to
// nil, and the caller must not issue a request for it.
package gesture

import (
	"errors"

	"github.com/google/uuid"
)

// ErrItemNotFound is returned when the dragged item or the drop target item
// is not present on the board.
var ErrItemNotFound = errors.New("gesture: item not on board")

// ErrDayOutOfRange is returned when a surface drop names a day the board
// does not have.
var ErrDayOutOfRange = errors.New("gesture: day out of range")

// Board is the itinerary as currently rendered: ordered item ids per day
// container plus the Places-to-Visit backlog. Days[0] is day 1.
type Board struct {
	Days    [][]uuid.UUID
	Backlog []uuid.UUID
}

// Drop describes where the dragged item was released: onto another item, or
// onto the empty surface of a container.
type Drop struct {
	onItem  *uuid.UUID
	day     int
	backlog bool
}

// DropOnItem targets the position currently held by id.
func DropOnItem(id uuid.UUID) Drop { return Drop{onItem: &id} }

// DropOnDay targets the empty surface of day n (1-indexed): append to that day.
func DropOnDay(n int) Drop { return Drop{day: n} }

// DropOnBacklog targets the empty surface of the Places-to-Visit container.
func DropOnBacklog() Drop { return Drop{backlog: true} }

// Move is the resolved command, shaped exactly like the server's move
// request: TargetDay nil means the backlog; at most one anchor is set.
type Move struct {
	TargetDay *int
	BeforeID  *uuid.UUID
	AfterID   *uuid.UUID
}

// container identifies one bucket on the board. day is 0 for the backlog.
type container struct {
	backlog bool
	day     int
}

// Resolve maps a drag of dragged to the given drop into a Move command, or
// nil when the gesture leaves the item where it already is.
func Resolve(b Board, dragged uuid.UUID, drop Drop) (*Move, error) {
	src, srcIdx, ok := b.locate(dragged)
	if !ok {
		return nil, ErrItemNotFound
	}

	var dst container
	var dstIdx int
	switch {
	case drop.onItem != nil:
		target, targetIdx, ok := b.locate(*drop.onItem)
		if !ok {
			return nil, ErrItemNotFound
		}
		dst = target
		// Position of the target item in the post-removal list: removing the
		// dragged item from a spot above it shifts it up by one.
		dstIdx = targetIdx
		if dst == src && srcIdx < targetIdx {
			dstIdx--
		}
	case drop.backlog:
		dst = container{backlog: true}
		dstIdx = len(b.without(dst, dragged))
	default:
		if drop.day < 1 || drop.day > len(b.Days) {
			return nil, ErrDayOutOfRange
		}
		dst = container{day: drop.day}
		dstIdx = len(b.without(dst, dragged))
	}

	// Same container, same position: nothing to do.
	if dst == src && dstIdx == srcIdx {
		return nil, nil
	}

	mv := &Move{}
	if !dst.backlog {
		day := dst.day
		mv.TargetDay = &day
	}
	rest := b.without(dst, dragged)
	switch {
	case dstIdx < len(rest):
		id := rest[dstIdx]
		mv.BeforeID = &id
	case len(rest) > 0:
		id := rest[len(rest)-1]
		mv.AfterID = &id
	}
	return mv, nil
}

// locate finds the container holding id and its index within it.
func (b Board) locate(id uuid.UUID) (container, int, bool) {
	for d, items := range b.Days {
		for i, it := range items {
			if it == id {
				return container{day: d + 1}, i, true
			}
		}
	}
	for i, it := range b.Backlog {
		if it == id {
			return container{backlog: true}, i, true
		}
	}
	return container{}, 0, false
}

// without returns the item list of c with dragged filtered out — the
// destination list as it will look once the dragged item has been lifted.
func (b Board) without(c container, dragged uuid.UUID) []uuid.UUID {
	var items []uuid.UUID
	if c.backlog {
		items = b.Backlog
	} else {
		items = b.Days[c.day-1]
	}
	out := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		if it != dragged {
			out = append(out, it)
		}
	}
	return out
}
