package domain

import (
	"strconv"
	"strings"
)

// CallbackKind tags a decoded callback-query payload.
type CallbackKind int

const (
	CbUnknown CallbackKind = iota
	CbMode                 // open country picker for a mode
	CbAdd                  // subscribe to a country
	CbPage                 // flip picker page
	CbRemove               // remove subscription by list index
	CbTimezone             // set timezone
	CbPreset               // set alert preset
	CbMute                 // mute for N days
	CbUnmute
	CbSettingsTZ   // open timezone picker
	CbSettingsFreq // open preset picker
	CbNoop         // inert button (page indicator)
)

// Callback is the tagged form of a button payload, decoded once at the
// boundary. Only the fields relevant to Kind are set.
type Callback struct {
	Kind     CallbackKind
	Mode     Mode
	Country  string
	Page     int
	Index    int
	Zone     string
	Preset   string
	MuteDays int
}

// ParseCallback decodes a colon-delimited callback payload. Malformed or
// unrecognized payloads decode to CbUnknown and are ignored upstream.
func ParseCallback(data string) Callback {
	switch data {
	case "mute_7":
		return Callback{Kind: CbMute, MuteDays: 7}
	case "mute_30":
		return Callback{Kind: CbMute, MuteDays: 30}
	case "unmute":
		return Callback{Kind: CbUnmute}
	case "settings_tz":
		return Callback{Kind: CbSettingsTZ}
	case "settings_freq":
		return Callback{Kind: CbSettingsFreq}
	case "noop":
		return Callback{Kind: CbNoop}
	}

	parts := strings.Split(data, ":")
	switch parts[0] {
	case "mode":
		if len(parts) != 2 {
			break
		}
		if m, ok := ParseMode(parts[1]); ok {
			return Callback{Kind: CbMode, Mode: m}
		}
	case "add":
		if len(parts) != 3 {
			break
		}
		m, ok := ParseMode(parts[1])
		if !ok || !KnownCountry(parts[2]) {
			break
		}
		return Callback{Kind: CbAdd, Mode: m, Country: parts[2]}
	case "page":
		if len(parts) != 3 {
			break
		}
		m, ok := ParseMode(parts[1])
		if !ok {
			break
		}
		p, err := strconv.Atoi(parts[2])
		if err != nil || p < 0 {
			break
		}
		return Callback{Kind: CbPage, Mode: m, Page: p}
	case "remove":
		if len(parts) != 2 {
			break
		}
		i, err := strconv.Atoi(parts[1])
		if err != nil || i < 0 {
			break
		}
		return Callback{Kind: CbRemove, Index: i}
	case "tz":
		// Zone names contain no colons; reject anything that would.
		if len(parts) != 2 || parts[1] == "" {
			break
		}
		return Callback{Kind: CbTimezone, Zone: parts[1]}
	case "preset":
		if len(parts) != 2 || !KnownPreset(parts[1]) {
			break
		}
		return Callback{Kind: CbPreset, Preset: parts[1]}
	}
	return Callback{Kind: CbUnknown}
}
