package usecases

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeSlotsDefaults(t *testing.T) {
	slots := ComputeSlots(map[string]string{}, nil)

	// 09:00 .. 20:00 at 30 minutes = 22 slots, end exclusive.
	assert.Len(t, slots, 22)
	assert.Equal(t, "09:00", slots[0].Time)
	assert.Equal(t, "19:30", slots[len(slots)-1].Time)
	for _, s := range slots {
		assert.False(t, s.Busy)
	}
}

func TestComputeSlotsWindow(t *testing.T) {
	settings := map[string]string{
		SettingWorkStart:    "09:00",
		SettingWorkEnd:      "11:00",
		SettingSlotInterval: "30",
	}
	slots := ComputeSlots(settings, nil)

	var times []string
	for _, s := range slots {
		times = append(times, s.Time)
	}
	assert.Equal(t, []string{"09:00", "09:30", "10:00", "10:30"}, times)
}

func TestComputeSlotsBusyMarking(t *testing.T) {
	settings := map[string]string{
		SettingWorkStart:    "09:00",
		SettingWorkEnd:      "10:30",
		SettingSlotInterval: "30",
	}
	slots := ComputeSlots(settings, []string{"09:30", "18:00"})

	assert.Equal(t, []Slot{
		{Time: "09:00", Busy: false},
		{Time: "09:30", Busy: true},
		{Time: "10:00", Busy: false},
	}, slots)
}

func TestComputeSlotsMalformedSettings(t *testing.T) {
	settings := map[string]string{
		SettingWorkStart:    "morning",
		SettingWorkEnd:      "11:00",
		SettingSlotInterval: "-5",
	}
	slots := ComputeSlots(settings, nil)

	// Bad start and interval fall back to 09:00 / 30.
	assert.Equal(t, "09:00", slots[0].Time)
	assert.Len(t, slots, 4)
}

func TestComputeSlotsEmptyWindow(t *testing.T) {
	settings := map[string]string{
		SettingWorkStart: "20:00",
		SettingWorkEnd:   "09:00",
	}
	assert.Empty(t, ComputeSlots(settings, nil))
}
