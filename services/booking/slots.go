package booking

import (
	"time"

	"genzhealth/models"
)

const (
	slotDays      = 7
	firstSlotHour = 9
	lastSlotHour  = 17 // exclusive
	lunchHour     = 12
	slotLength    = time.Hour
)

// SlotGrid is the set of bookable start times: hourly on weekdays in the clinic's
// time zone.
type SlotGrid struct {
	Location *time.Location
}

func NewSlotGrid(loc *time.Location) SlotGrid {
	if loc == nil {
		loc = time.UTC
	}
	return SlotGrid{Location: loc}
}

// OnGrid reports whether t is the exact start of a slot.
func (g SlotGrid) OnGrid(t time.Time) bool {
	local := t.In(g.Location)
	if local.Minute() != 0 || local.Second() != 0 || local.Nanosecond() != 0 {
		return false
	}
	if local.Weekday() == time.Saturday || local.Weekday() == time.Sunday {
		return false
	}
	h := local.Hour()
	return h >= firstSlotHour && h < lastSlotHour && h != lunchHour
}

// WindowEnd is midnight, in the clinic zone, after the last day Slots(from) covers.
func (g SlotGrid) WindowEnd(from time.Time) time.Time {
	local := from.In(g.Location)
	return time.Date(local.Year(), local.Month(), local.Day()+slotDays, 0, 0, 0, 0, g.Location)
}

// Slots returns every grid slot over the seven calendar days starting at from's
// date, skipping slots that have already started.
func (g SlotGrid) Slots(from time.Time) []models.AvailableSlot {
	local := from.In(g.Location)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, g.Location)

	var slots []models.AvailableSlot
	for d := 0; d < slotDays; d++ {
		current := day.AddDate(0, 0, d)
		if current.Weekday() == time.Saturday || current.Weekday() == time.Sunday {
			continue
		}
		for h := firstSlotHour; h < lastSlotHour; h++ {
			if h == lunchHour {
				continue
			}
			start := time.Date(current.Year(), current.Month(), current.Day(), h, 0, 0, 0, g.Location)
			if !start.After(from) {
				continue
			}
			slots = append(slots, models.AvailableSlot{
				Start: start,
				End:   start.Add(slotLength),
				Title: "Available",
			})
		}
	}
	return slots
}
