// Package mockgen produces deterministic synthetic schedules for brands whose upstream
// is unavailable or unconfigured.
package mockgen

import (
	"hash/fnv"
	"math/rand/v2"
	"time"

	"github.com/Vodeneev/exerciser/internal/pkg/config"
	"github.com/Vodeneev/exerciser/internal/scraper/integrations"
)

// Session is one generated class. Platforms convert it into their own raw record shape so
// generated data goes through the same Normalize as live data.
type Session struct {
	StudioID       string
	ClassName      string
	Instructor     string
	Level          string
	Start          time.Time
	Duration       int
	Capacity       int
	SpotsAvailable int
}

const lastStartHour = 21

// Day generates the sessions of one location for one local calendar day.
// The same brand catalog, studio and day always give the same sessions.
func Day(bc config.BrandConfig, studioID string, day time.Time) []Session {
	if len(bc.ClassTypes) == 0 {
		return nil
	}
	loc := bc.Location()
	local := day.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	rng := rand.New(rand.NewPCG(seed(studioID, midnight)))

	perDay := bc.ClassesPerDay
	if perDay <= 0 {
		perDay = 6
	}
	count := perDay + rng.IntN(3)
	step := bc.HourStep
	if step <= 0 {
		step = 2
	}
	capacity := bc.Capacity
	if capacity <= 0 {
		capacity = 20
	}

	out := make([]Session, 0, count)
	for i := 0; i < count; i++ {
		hour := bc.FirstHour + i*step
		if hour > lastStartHour {
			break
		}
		minute := 0
		if rng.IntN(2) == 1 {
			minute = 30
		}

		ct := bc.ClassTypes[rng.IntN(len(bc.ClassTypes))]
		duration := ct.Duration
		if duration <= 0 {
			duration = bc.DefaultDuration
		}
		instructor := "TBD"
		if len(bc.Instructors) > 0 {
			instructor = bc.Instructors[rng.IntN(len(bc.Instructors))]
		}

		out = append(out, Session{
			StudioID:       studioID,
			ClassName:      ct.Name,
			Instructor:     instructor,
			Level:          ct.Level,
			Start:          time.Date(midnight.Year(), midnight.Month(), midnight.Day(), hour, minute, 0, 0, loc),
			Duration:       duration,
			Capacity:       capacity,
			SpotsAvailable: rng.IntN(capacity + 1),
		})
	}
	return out
}

// Window generates sessions for every day of the brand's window starting at date.
func Window(bc config.BrandConfig, studioID string, date time.Time) []Session {
	var out []Session
	for _, day := range integrations.ScheduleWindow(date, bc.Location(), bc.WindowDays) {
		out = append(out, Day(bc, studioID, day)...)
	}
	return out
}

func seed(studioID string, day time.Time) (uint64, uint64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(studioID))
	_, _ = h.Write([]byte{'|'})
	_, _ = h.Write([]byte(day.Format("2006-01-02")))
	s := h.Sum64()
	return s, s ^ 0x9e3779b97f4a7c15
}
