package domain

import (
	"time"
)

// Day is a derived view of the itinerary: all dated items falling on one
// calendar day of the trip, in flat-list order. Days are never stored — they
// are recomputed from the flat item list on every read, so the list and the
// buckets cannot drift apart.
type Day struct {
	Number int
	Date   time.Time
	Items  []ItineraryItem
}

// DayCount returns the number of calendar days the trip spans, inclusive.
func (t Trip) DayCount() int {
	return int(t.EndDate.Sub(t.StartDate).Hours()/24) + 1
}

// DayDate returns the calendar date of day n (1-indexed).
func (t Trip) DayDate(n int) time.Time {
	return t.StartDate.AddDate(0, 0, n-1)
}

// Days projects the flat item list into one bucket per trip day.
// Every day of the trip is present, empty or not. Together with
// PlacesToVisit this partitions the full item list: no overlap, no omission.
func (t Trip) Days() []Day {
	days := make([]Day, t.DayCount())
	for i := range days {
		days[i] = Day{Number: i + 1, Date: t.DayDate(i + 1), Items: []ItineraryItem{}}
	}
	for _, it := range t.Items {
		if it.InPlacesToVisit {
			continue
		}
		n := t.dayNumberOf(it.Date)
		if n >= 1 && n <= len(days) {
			days[n-1].Items = append(days[n-1].Items, it)
		}
	}
	return days
}

// PlacesToVisit projects the flat item list into the backlog bucket: every
// item flagged InPlacesToVisit, in flat-list order.
func (t Trip) PlacesToVisit() []ItineraryItem {
	out := []ItineraryItem{}
	for _, it := range t.Items {
		if it.InPlacesToVisit {
			out = append(out, it)
		}
	}
	return out
}

// dayNumberOf returns the 1-indexed trip day a date falls on.
func (t Trip) dayNumberOf(d time.Time) int {
	return int(d.Sub(t.StartDate).Hours()/24) + 1
}
