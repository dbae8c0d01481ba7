package usecases

import (
	"strconv"
	"time"
)

// Working-hours defaults applied when a shop has no settings rows.
const (
	defaultWorkStart    = "09:00"
	defaultWorkEnd      = "20:00"
	defaultSlotInterval = 30
)

// Slot is one bookable time. Busy slots stay visible in the keyboard but
// are not selectable.
type Slot struct {
	Time string
	Busy bool
}

// ComputeSlots enumerates slots between work_start and work_end at
// slot_interval minutes, marking the ones held by the chosen barber's
// non-terminal bookings. Malformed settings fall back to the defaults.
func ComputeSlots(settings map[string]string, busyTimes []string) []Slot {
	start := parseClock(settings[SettingWorkStart], defaultWorkStart)
	end := parseClock(settings[SettingWorkEnd], defaultWorkEnd)
	interval := parseInterval(settings[SettingSlotInterval])

	busy := make(map[string]bool, len(busyTimes))
	for _, t := range busyTimes {
		busy[t] = true
	}

	var slots []Slot
	for curr := start; curr.Before(end); curr = curr.Add(time.Duration(interval) * time.Minute) {
		t := curr.Format("15:04")
		slots = append(slots, Slot{Time: t, Busy: busy[t]})
	}
	return slots
}

// Settings keys, mirrored from the store schema so the flow can read the
// plain map GetSettings returns.
const (
	SettingWorkStart    = "work_start"
	SettingWorkEnd      = "work_end"
	SettingSlotInterval = "slot_interval"
)

func parseClock(value, fallback string) time.Time {
	if value == "" {
		value = fallback
	}
	t, err := time.Parse("15:04", value)
	if err != nil {
		t, _ = time.Parse("15:04", fallback)
	}
	return t
}

func parseInterval(value string) int {
	if value == "" {
		return defaultSlotInterval
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultSlotInterval
	}
	return n
}
