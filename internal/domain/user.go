package domain

import "time"

// Mode is the category under which a country was subscribed.
type Mode string

const (
	ModeBusiness Mode = "business"
	ModeEmployee Mode = "employee"
	ModeCustom   Mode = "custom"
)

// ParseMode returns the mode for s, or false if s is not a known mode.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeBusiness, ModeEmployee, ModeCustom:
		return Mode(s), true
	}
	return "", false
}

// Label returns a human-readable name for the mode, used in alert headers.
func (m Mode) Label() string {
	switch m {
	case ModeBusiness:
		return "Business presence"
	case ModeEmployee:
		return "Employee presence"
	default:
		return "Watchlist"
	}
}

// Subscription is one (country, mode) entry of a user's watch list.
type Subscription struct {
	Country string
	Mode    Mode
}

// User represents per-chat preferences.
type User struct {
	ChatID      int64
	Username    string
	TZ          string
	AlertPreset string
	MuteUntil   *time.Time // calendar day (UTC midnight), nullable
	CreatedAt   time.Time  // UTC
}

// Location resolves the user's timezone, falling back to UTC for any
// invalid or empty zone name.
func (u *User) Location() *time.Location {
	loc, err := time.LoadLocation(u.TZ)
	if err != nil {
		return time.UTC
	}
	return loc
}

// MutedOn reports whether alerts are suppressed on the given local day.
// The mute window is inclusive: today == mute_until still suppresses.
func (u *User) MutedOn(today time.Time) bool {
	if u.MuteUntil == nil {
		return false
	}
	return !today.After(*u.MuteUntil)
}

// AlertDays returns the alert-day set for the user's preset.
// Unknown or empty presets fall back to the standard set.
func (u *User) AlertDays() []int {
	return PresetDays(u.AlertPreset)
}

// Alert presets. "standard" is the default for new users.
const (
	PresetStandard = "standard"
	PresetWeekly   = "weekly"
	PresetEve      = "eve"
)

var presetDays = map[string][]int{
	PresetStandard: {14, 7, 3, 1},
	PresetWeekly:   {7, 1},
	PresetEve:      {1},
}

// PresetDays resolves a preset name to its alert-day set.
func PresetDays(name string) []int {
	if days, ok := presetDays[name]; ok {
		return days
	}
	return presetDays[PresetStandard]
}

// KnownPreset reports whether name is a recognized preset.
func KnownPreset(name string) bool {
	_, ok := presetDays[name]
	return ok
}

// PresetNames lists presets in menu order.
func PresetNames() []string {
	return []string{PresetStandard, PresetWeekly, PresetEve}
}
