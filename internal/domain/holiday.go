package domain

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-day format used across cache, dedup keys and
// rendered messages.
const DateLayout = "2006-01-02"

// Holiday is a normalized public-holiday record.
type Holiday struct {
	Date        string `json:"date"` // YYYY-MM-DD
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Day parses the holiday's calendar day.
func (h Holiday) Day() (time.Time, error) {
	return time.Parse(DateLayout, h.Date)
}

// Today truncates now to a calendar day in the given location. The returned
// value is a UTC-midnight representation of that local day, suitable for
// whole-day arithmetic against parsed holiday dates.
func Today(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// DayDelta returns holiday − today in whole days. Both arguments must be
// day-truncated values as produced by Today and Holiday.Day.
func DayDelta(holiday, today time.Time) int {
	return int(holiday.Sub(today) / (24 * time.Hour))
}

// DedupKey identifies one (user, country, mode, holiday occurrence, lead-time)
// notification. Presence of the key in the sent log means it was delivered.
func DedupKey(chatID int64, country string, mode Mode, date string, delta int) string {
	return fmt.Sprintf("%d-%s-%s-%s-%d", chatID, country, mode, date, delta)
}

// NormalizeTZ validates an IANA zone name and returns its canonical form.
func NormalizeTZ(tz string) (string, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return "", err
	}
	return loc.String(), nil
}
