package models

import (
	"fmt"
	"time"
)

// SlotType distinguishes teaching periods from breaks and assemblies.
type SlotType string

const (
	SlotRegular      SlotType = "regular"
	SlotBreak        SlotType = "break"
	SlotAssembly     SlotType = "assembly"
	SlotCoCurricular SlotType = "co_curricular"
)

// clockLayouts accepts "HH:MM" as well as the "HH:MM:SS" form Postgres returns for TIME columns.
var clockLayouts = []string{"15:04", "15:04:05"}

func parseClock(raw string) (time.Time, error) {
	var err error
	for _, layout := range clockLayouts {
		var t time.Time
		if t, err = time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// TimeSlot is a wall-clock period within a school day.
type TimeSlot struct {
	ID              string   `db:"id" json:"id"`
	StartTime       string   `db:"start_time" json:"start_time"`
	EndTime         string   `db:"end_time" json:"end_time"`
	DurationMinutes int      `db:"duration_minutes" json:"duration_minutes"`
	SlotType        SlotType `db:"slot_type" json:"slot_type"`
}

// IsAssignable reports whether subjects may be placed in the slot.
func (t TimeSlot) IsAssignable() bool {
	return t.SlotType == SlotRegular
}

// Label renders the slot as "HH:MM-HH:MM".
func (t TimeSlot) Label() string {
	return t.StartTime + "-" + t.EndTime
}

// Validate checks the HH:MM bounds and that DurationMinutes agrees with them.
func (t TimeSlot) Validate() error {
	start, err := parseClock(t.StartTime)
	if err != nil {
		return fmt.Errorf("time slot %s: invalid start_time %q", t.ID, t.StartTime)
	}
	end, err := parseClock(t.EndTime)
	if err != nil {
		return fmt.Errorf("time slot %s: invalid end_time %q", t.ID, t.EndTime)
	}
	if !end.After(start) {
		return fmt.Errorf("time slot %s: end_time must be after start_time", t.ID)
	}
	if minutes := int(end.Sub(start).Minutes()); minutes != t.DurationMinutes {
		return fmt.Errorf("time slot %s: duration_minutes %d does not match %d", t.ID, t.DurationMinutes, minutes)
	}
	return nil
}

// StartMinutes is the start time in minutes after midnight, or -1 when StartTime does not parse.
func (t TimeSlot) StartMinutes() int {
	start, err := parseClock(t.StartTime)
	if err != nil {
		return -1
	}
	return start.Hour()*60 + start.Minute()
}

// StartsBefore orders slots by wall-clock start ("9:00" before "10:00"), then by ID.
func (t TimeSlot) StartsBefore(other TimeSlot) bool {
	a, b := t.StartMinutes(), other.StartMinutes()
	if a != b {
		return a < b
	}
	return t.ID < other.ID
}
