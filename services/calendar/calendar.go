// Package calendar computes bookable time slots. It is pure computation over
// the configured business hours: no storage, no clock of its own, no package
// state - callers pass "now" explicitly.
package calendar

import (
	"fmt"
	"time"
)

// Config describes the booking window a business operates under.
type Config struct {
	StartHour      int            // first bookable hour, e.g. 9 for 09:00
	EndHour        int            // exclusive end hour, e.g. 17 (last slot before 17:00)
	SlotMinutes    int            // slot granularity in minutes
	ClosedWeekdays []time.Weekday // weekdays with no service at all
	MaxDaysAhead   int            // booking horizon in days from today
}

// GenerateDailySlots returns every slot label between startHour:00 (inclusive)
// and endHour:00 (exclusive) at the given step. Minute arithmetic is used
// throughout so a step that does not divide 60 evenly still produces the
// trailing slots of each hour.
func GenerateDailySlots(startHour, endHour, stepMinutes int) []string {
	if stepMinutes <= 0 || endHour <= startHour {
		return nil
	}
	var slots []string
	for m := startHour * 60; m < endHour*60; m += stepMinutes {
		slots = append(slots, fmt.Sprintf("%02d:%02d", m/60, m%60))
	}
	return slots
}

// DailySlots returns the full slot set for one day under this config.
func (c Config) DailySlots() []string {
	return GenerateDailySlots(c.StartHour, c.EndHour, c.SlotMinutes)
}

// MinutesOf converts an "HH:MM" label to minutes from midnight. Labels are
// produced by GenerateDailySlots and are assumed well-formed; anything else
// maps to -1 so it sorts before every real slot.
func MinutesOf(label string) int {
	var h, m int
	if _, err := fmt.Sscanf(label, "%d:%d", &h, &m); err != nil {
		return -1
	}
	return h*60 + m
}

// CeilToStep rounds minutes up to the next step boundary.
func CeilToStep(minutes, stepMinutes int) int {
	if stepMinutes <= 0 {
		return minutes
	}
	return ((minutes + stepMinutes - 1) / stepMinutes) * stepMinutes
}

// AvailableSlots filters the full slot set down to what can still be offered:
// slots already taken are removed, and when date is today, so is every slot
// starting before now rounded up to the next step boundary. A slot that has
// already begun is never offered.
func AvailableSlots(all []string, taken map[string]struct{}, date string, now time.Time, stepMinutes int) []string {
	threshold := -1
	if date == DateOf(now) {
		threshold = CeilToStep(now.Hour()*60+now.Minute(), stepMinutes)
	}

	available := make([]string, 0, len(all))
	for _, slot := range all {
		if _, ok := taken[slot]; ok {
			continue
		}
		if MinutesOf(slot) < threshold {
			continue
		}
		available = append(available, slot)
	}
	return available
}
