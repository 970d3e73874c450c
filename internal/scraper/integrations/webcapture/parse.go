package webcapture

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/Vodeneev/exerciser/internal/pkg/models"
	"github.com/Vodeneev/exerciser/internal/scraper/integrations"
	"github.com/Vodeneev/exerciser/internal/scraper/integrations/clubready"
	"github.com/Vodeneev/exerciser/internal/scraper/integrations/mindbody"
)

const maxWrapperDepth = 5

var (
	nameKeys       = []string{"className", "class_name", "name", "title"}
	startKeys      = []string{"startTime", "start_time", "startDateTime", "StartDateTime", "StartTime", "start", "datetime"}
	endKeys        = []string{"endTime", "end_time", "endDateTime", "EndDateTime", "EndTime", "end"}
	instructorKeys = []string{"instructor", "instructorName", "instructor_name", "teacher", "staff", "coach"}
	durationKeys   = []string{"duration", "durationMinutes", "length"}
	capacityKeys   = []string{"capacity", "maxCapacity", "MaxCapacity"}
	spotsKeys      = []string{"spotsAvailable", "spots_available", "availableSpots", "openSpots", "available"}
	levelKeys      = []string{"level", "difficulty", "difficultyLevel"}
	bookingKeys    = []string{"bookingUrl", "booking_url", "url", "link"}
	wrapperKeys    = []string{"data", "classes", "schedule", "results", "items", "sessions"}
)

// ParseCaptured extracts classes from intercepted responses. Known platform payloads
// (MINDBODY and ClubReady "Classes") are read with their own mappings; anything else is
// searched for arrays of class-like objects, descending into data/classes/schedule wrappers.
func ParseCaptured(responses []CapturedResponse, studioID string, loc *time.Location, defaultDuration int) []Record {
	var out []Record
	for _, resp := range responses {
		body := bytes.TrimSpace(resp.Body)
		if len(body) == 0 {
			continue
		}
		url := strings.ToLower(resp.URL)
		switch {
		case strings.Contains(url, "mindbody") && hasClasses(body):
			out = append(out, parseMindbody(body, studioID, loc, defaultDuration)...)
		case strings.Contains(url, "clubready") && hasClasses(body):
			out = append(out, parseClubReady(body, studioID, loc, defaultDuration)...)
		default:
			var v any
			if err := json.Unmarshal(body, &v); err != nil {
				continue
			}
			out = append(out, walk(v, studioID, loc, 0)...)
		}
	}
	for i := range out {
		out[i].Tier = models.TierCaptured
	}
	return out
}

func hasClasses(body []byte) bool {
	var probe struct {
		Classes json.RawMessage `json:"Classes"`
	}
	return json.Unmarshal(body, &probe) == nil && len(probe.Classes) > 0 && probe.Classes[0] == '['
}

func parseMindbody(body []byte, studioID string, loc *time.Location, defaultDuration int) []Record {
	var resp mindbody.ClassesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil
	}
	for i := range resp.Classes {
		resp.Classes[i].StudioID = studioID
	}
	return fromClasses(mindbody.Normalize(resp.Classes, loc, defaultDuration, ""))
}

func parseClubReady(body []byte, studioID string, loc *time.Location, defaultDuration int) []Record {
	var resp clubready.ScheduleResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil
	}
	for i := range resp.Classes {
		resp.Classes[i].StudioID = studioID
	}
	return fromClasses(clubready.Normalize(resp.Classes, loc, defaultDuration, ""))
}

func fromClasses(classes []models.FitnessClass) []Record {
	out := make([]Record, 0, len(classes))
	for _, c := range classes {
		end := c.EndTime
		out = append(out, Record{
			StudioID:       c.StudioID,
			Name:           c.ClassName,
			Instructor:     c.Instructor,
			Level:          deref(c.Level),
			Description:    deref(c.Description),
			BookingURL:     deref(c.BookingURL),
			Start:          c.StartTime,
			End:            &end,
			Duration:       c.Duration,
			Capacity:       c.Capacity,
			SpotsAvailable: c.SpotsAvailable,
		})
	}
	return out
}

func walk(v any, studioID string, loc *time.Location, depth int) []Record {
	if depth > maxWrapperDepth {
		return nil
	}
	switch t := v.(type) {
	case []any:
		var out []Record
		for _, item := range t {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if r, ok := recordFromObject(obj, studioID, loc); ok {
				out = append(out, r)
				continue
			}
			out = append(out, walk(obj, studioID, loc, depth+1)...)
		}
		return out
	case map[string]any:
		var out []Record
		for _, k := range wrapperKeys {
			if inner, ok := lookup(t, k); ok {
				out = append(out, walk(inner, studioID, loc, depth+1)...)
			}
		}
		return out
	}
	return nil
}

func recordFromObject(obj map[string]any, studioID string, loc *time.Location) (Record, bool) {
	name := stringField(obj, nameKeys)
	startText := stringField(obj, startKeys)
	if name == "" || startText == "" {
		return Record{}, false
	}
	start, err := integrations.ParseTimestamp(startText, loc)
	if err != nil {
		return Record{}, false
	}
	r := Record{
		StudioID:       studioID,
		Name:           name,
		Instructor:     stringField(obj, instructorKeys),
		Level:          stringField(obj, levelKeys),
		Description:    stringField(obj, []string{"description"}),
		BookingURL:     stringField(obj, bookingKeys),
		Start:          start,
		Duration:       intValue(obj, durationKeys),
		Capacity:       intField(obj, capacityKeys),
		SpotsAvailable: intField(obj, spotsKeys),
	}
	if endText := stringField(obj, endKeys); endText != "" {
		if end, err := integrations.ParseTimestamp(endText, loc); err == nil {
			r.End = &end
		}
	}
	return r, true
}

// lookup finds key case-insensitively.
func lookup(obj map[string]any, key string) (any, bool) {
	if v, ok := obj[key]; ok {
		return v, true
	}
	for k, v := range obj {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

func stringField(obj map[string]any, keys []string) string {
	for _, k := range keys {
		v, ok := lookup(obj, k)
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				return s
			}
		case map[string]any:
			if s := stringField(t, []string{"name", "displayName", "fullName"}); s != "" {
				return s
			}
		}
	}
	return ""
}

func intField(obj map[string]any, keys []string) *int {
	for _, k := range keys {
		v, ok := lookup(obj, k)
		if !ok {
			continue
		}
		switch t := v.(type) {
		case float64:
			n := int(t)
			return &n
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
				return &n
			}
		}
	}
	return nil
}

func intValue(obj map[string]any, keys []string) int {
	if p := intField(obj, keys); p != nil {
		return *p
	}
	return 0
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
