package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skoglund/wayfarer/backend/internal/domain"
)

// ---- helpers ---------------------------------------------------------------

var (
	tripStart = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tripEnd   = time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC)
)

// newTrip builds a valid three-day trip owned by a fresh user.
func newTrip(t *testing.T) domain.Trip {
	t.Helper()
	trip, err := domain.NewTrip(uuid.New(), "Norway Roadtrip", tripStart, tripEnd, domain.VisibilityPrivate)
	require.NoError(t, err)
	trip.ID = uuid.New()
	return trip
}

// item builds a dated itinerary item for the given trip day (1-indexed).
func item(name string, day int) domain.ItineraryItem {
	return domain.ItineraryItem{
		ID:        uuid.New(),
		PlaceName: name,
		Date:      tripStart.AddDate(0, 0, day-1),
		Latitude:  60.39,
		Longitude: 5.32,
	}
}

// backlogItem builds a Places-to-Visit item.
func backlogItem(name string) domain.ItineraryItem {
	it := item(name, 1)
	it.InPlacesToVisit = true
	return it
}

// mustAdd appends items to a trip, failing the test on any error.
func mustAdd(t *testing.T, trip domain.Trip, items ...domain.ItineraryItem) domain.Trip {
	t.Helper()
	var err error
	for _, it := range items {
		trip, err = trip.AddItineraryItem(it)
		require.NoError(t, err)
	}
	return trip
}

// itemNames projects the flat list to place names, for order assertions.
func itemNames(trip domain.Trip) []string {
	names := make([]string, len(trip.Items))
	for i, it := range trip.Items {
		names[i] = it.PlaceName
	}
	return names
}

// ---- construction ----------------------------------------------------------

func TestNewTrip_OwnerIsSoleOwnerMember(t *testing.T) {
	ownerID := uuid.New()
	trip, err := domain.NewTrip(ownerID, "Weekend", tripStart, tripEnd, domain.VisibilityPublic)

	require.NoError(t, err)
	require.Len(t, trip.Members, 1)
	assert.Equal(t, ownerID, trip.OwnerID)
	assert.Equal(t, ownerID, trip.Members[0].UserID)
	assert.Equal(t, domain.RoleOwner, trip.Members[0].Role)
	assert.Empty(t, trip.Items)
	assert.Empty(t, trip.Invites)
}

func TestNewTrip_EndBeforeStart(t *testing.T) {
	_, err := domain.NewTrip(uuid.New(), "Backwards", tripEnd, tripStart, domain.VisibilityPrivate)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestNewTrip_BlankName(t *testing.T) {
	_, err := domain.NewTrip(uuid.New(), "   ", tripStart, tripEnd, domain.VisibilityPrivate)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ---- itinerary items -------------------------------------------------------

func TestAddItineraryItem_AppendsToEnd(t *testing.T) {
	trip := mustAdd(t, newTrip(t), item("Bryggen", 1), item("Fløyen", 2))

	assert.Equal(t, []string{"Bryggen", "Fløyen"}, itemNames(trip))
}

func TestAddItineraryItem_DateOutsideRange(t *testing.T) {
	_, err := newTrip(t).AddItineraryItem(item("Too Late", 5))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAddItineraryItem_BacklogDateForcedToStart(t *testing.T) {
	it := backlogItem("Someday")
	it.Date = time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC) // ignored placeholder

	trip, err := newTrip(t).AddItineraryItem(it)

	require.NoError(t, err)
	assert.True(t, trip.Items[0].Date.Equal(tripStart))
	assert.True(t, trip.Items[0].InPlacesToVisit)
}

func TestAddItineraryItem_InvalidCoordinates(t *testing.T) {
	it := item("Nowhere", 1)
	it.Latitude = 91

	_, err := newTrip(t).AddItineraryItem(it)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAddItineraryItem_DuplicateID(t *testing.T) {
	a := item("A", 1)
	trip := mustAdd(t, newTrip(t), a)

	_, err := trip.AddItineraryItem(a)
	assert.ErrorIs(t, err, domain.ErrInvariant)
}

func TestUpdateItineraryItem_KeepsPosition(t *testing.T) {
	a, b := item("A", 1), item("B", 1)
	trip := mustAdd(t, newTrip(t), a, b)

	renamed := a
	renamed.PlaceName = "A2"
	trip, err := trip.UpdateItineraryItem(a.ID, renamed)

	require.NoError(t, err)
	assert.Equal(t, []string{"A2", "B"}, itemNames(trip))
}

func TestUpdateItineraryItem_NotFound(t *testing.T) {
	_, err := newTrip(t).UpdateItineraryItem(uuid.New(), item("X", 1))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRemoveItineraryItem_OK(t *testing.T) {
	a, b := item("A", 1), item("B", 2)
	trip := mustAdd(t, newTrip(t), a, b)

	trip, err := trip.RemoveItineraryItem(a.ID)

	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, itemNames(trip))
}

func TestRemoveItineraryItem_NotFound(t *testing.T) {
	_, err := newTrip(t).RemoveItineraryItem(uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- transitions never mutate the receiver ---------------------------------

func TestTransitions_DoNotMutateOriginal(t *testing.T) {
	a := item("A", 1)
	trip := mustAdd(t, newTrip(t), a)

	_, err := trip.RemoveItineraryItem(a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, itemNames(trip), "original aggregate must be untouched")

	day := 2
	_, err = trip.MoveItem(a.ID, &day, nil, nil)
	require.NoError(t, err)
	assert.True(t, trip.Items[0].Date.Equal(tripStart), "original item date must be untouched")
}

// ---- UpdateDetails ---------------------------------------------------------

func TestUpdateDetails_ShrinkMovesOutOfRangeItemsToBacklog(t *testing.T) {
	a, b, c, d := item("A", 1), item("B", 2), item("C", 2), item("D", 3)
	trip := mustAdd(t, newTrip(t), a, b, c, d)

	// Shrink to a single day: B, C, and D fall out of range.
	newStart := tripStart
	shrunk, err := trip.UpdateDetails(trip.Name, newStart, newStart, trip.Visibility)
	require.NoError(t, err)

	backlog := shrunk.PlacesToVisit()
	require.Len(t, backlog, 3)
	assert.Equal(t, "B", backlog[0].PlaceName)
	assert.Equal(t, "C", backlog[1].PlaceName)
	assert.Equal(t, "D", backlog[2].PlaceName)
	for _, it := range backlog {
		assert.True(t, it.Date.Equal(newStart), "backlog date must be reset to the new start date")
	}

	days := shrunk.Days()
	require.Len(t, days, 1)
	require.Len(t, days[0].Items, 1)
	assert.Equal(t, "A", days[0].Items[0].PlaceName)
}

func TestUpdateDetails_ShiftRebasesBacklogPlaceholderDates(t *testing.T) {
	trip := mustAdd(t, newTrip(t), backlogItem("Someday"))

	newStart := tripStart.AddDate(0, 0, 7)
	newEnd := tripEnd.AddDate(0, 0, 7)
	shifted, err := trip.UpdateDetails(trip.Name, newStart, newEnd, trip.Visibility)

	require.NoError(t, err)
	assert.True(t, shifted.Items[0].Date.Equal(newStart))
}

func TestUpdateDetails_InvalidRange(t *testing.T) {
	trip := newTrip(t)
	_, err := trip.UpdateDetails(trip.Name, tripEnd, tripStart, trip.Visibility)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
