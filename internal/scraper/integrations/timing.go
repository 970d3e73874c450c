package integrations

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
}

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"01/02/2006 15:04",
	"01/02/2006 3:04 PM",
}

// ParseTimestamp parses upstream timestamps. Strings without a zone are read in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// ReconcileTiming returns an end time and a duration in minutes such that
// end - start == duration exactly.
//
// An end after start wins and the duration is recomputed from it (whole minutes).
// Otherwise duration is used, then fallback.
func ReconcileTiming(start time.Time, end *time.Time, duration, fallback int) (time.Time, int) {
	if end != nil && end.After(start) {
		d := int(end.Sub(start) / time.Minute)
		if d > 0 {
			return start.Add(time.Duration(d) * time.Minute), d
		}
	}
	if duration <= 0 {
		duration = fallback
	}
	if duration < 0 {
		duration = 0
	}
	return start.Add(time.Duration(duration) * time.Minute), duration
}

var clockRe = regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})\s*(AM|PM|a\.m\.|p\.m\.)?`)

// ParseClock reads "9:00 AM", "18:30" or a range such as "9:00 - 9:50 AM" and places the
// times on day's calendar date in day's location. end is nil when the text has one time.
func ParseClock(text string, day time.Time) (start time.Time, end *time.Time, ok bool) {
	matches := clockRe.FindAllStringSubmatch(text, 2)
	if len(matches) == 0 {
		return time.Time{}, nil, false
	}

	first := matches[0]
	var second []string
	if len(matches) > 1 {
		second = matches[1]
	}

	startMer := meridiem(first[3])
	endMer := ""
	if second != nil {
		endMer = meridiem(second[3])
		if startMer == "" {
			startMer = endMer
		}
		if endMer == "" {
			endMer = startMer
		}
	}

	s, ok := clockOn(day, first[1], first[2], startMer)
	if !ok {
		return time.Time{}, nil, false
	}
	if second == nil {
		return s, nil, true
	}
	e, ok := clockOn(day, second[1], second[2], endMer)
	if !ok {
		return s, nil, true
	}
	// "11:30 - 12:20 PM" style ranges crossing noon.
	if !e.After(s) && startMer == endMer && startMer != "" {
		if alt, ok := clockOn(day, first[1], first[2], flip(startMer)); ok && e.After(alt) {
			s = alt
		}
	}
	if !e.After(s) {
		return s, nil, true
	}
	return s, &e, true
}

func meridiem(s string) string {
	s = strings.ToUpper(strings.ReplaceAll(s, ".", ""))
	switch s {
	case "AM", "PM":
		return s
	}
	return ""
}

func flip(m string) string {
	if m == "AM" {
		return "PM"
	}
	return "AM"
}

func clockOn(day time.Time, hh, mm, mer string) (time.Time, bool) {
	h, err := strconv.Atoi(hh)
	if err != nil {
		return time.Time{}, false
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m > 59 {
		return time.Time{}, false
	}
	switch mer {
	case "PM":
		if h < 12 {
			h += 12
		}
	case "AM":
		if h == 12 {
			h = 0
		}
	}
	if h > 23 {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, day.Location()), true
}

// ScheduleWindow returns local midnights for days consecutive days starting on date's
// calendar day in loc.
func ScheduleWindow(date time.Time, loc *time.Location, days int) []time.Time {
	if loc == nil {
		loc = time.UTC
	}
	if days <= 0 {
		days = 1
	}
	local := date.In(loc)
	first := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	out := make([]time.Time, days)
	for i := range out {
		out[i] = first.AddDate(0, 0, i)
	}
	return out
}
