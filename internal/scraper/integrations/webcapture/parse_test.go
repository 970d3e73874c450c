package webcapture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vodeneev/exerciser/internal/pkg/models"
)

func TestParseCaptured_Mindbody(t *testing.T) {
	resp := CapturedResponse{
		URL: "https://widgets.mindbodyonline.com/api/classes",
		Body: []byte(`{"Classes":[{"Id":7,"ClassDescription":{"Name":"Reformer Flow","Level":"All Levels"},
			"Staff":{"DisplayName":"Sarah Johnson"},"StartDateTime":"2026-03-02T09:00:00","EndDateTime":"2026-03-02T09:50:00",
			"MaxCapacity":12,"TotalBooked":4}]}`),
	}

	got := ParseCaptured([]CapturedResponse{resp}, "club-pilates-sf-marina", time.UTC, 50)
	require.Len(t, got, 1)
	r := got[0]
	assert.Equal(t, "Reformer Flow", r.Name)
	assert.Equal(t, "Sarah Johnson", r.Instructor)
	assert.Equal(t, 50, r.Duration)
	assert.Equal(t, 8, *r.SpotsAvailable)
	assert.Equal(t, models.TierCaptured, r.Tier)
	assert.Equal(t, "club-pilates-sf-marina", r.StudioID)
}

func TestParseCaptured_ClubReady(t *testing.T) {
	resp := CapturedResponse{
		URL:  "https://www.clubready.com/api/current/json/reply/GetClassScheduleRequestV2",
		Body: []byte(`{"Classes":[{"ClassId":1,"ClassName":"Rhythm Ride","InstructorName":"Jess","StartTime":"2026-03-02T07:00:00Z","Duration":45}]}`),
	}

	got := ParseCaptured([]CapturedResponse{resp}, "s", time.UTC, 50)
	require.Len(t, got, 1)
	assert.Equal(t, "Rhythm Ride", got[0].Name)
	assert.Equal(t, 45, got[0].Duration)
}

func TestParseCaptured_GenericShapes(t *testing.T) {
	responses := []CapturedResponse{
		{URL: "https://site/api/a", Body: []byte(`[{"title":"Boxing 101","start":"2026-03-02T18:00:00Z","instructor":{"name":"Marco"},"spotsAvailable":"5"}]`)},
		{URL: "https://site/api/b", Body: []byte(`{"data":{"schedule":{"classes":[{"className":"Row 45","startTime":"2026-03-02T07:00:00Z","endTime":"2026-03-02T07:45:00Z","capacity":20}]}}}`)},
		{URL: "https://site/api/c", Body: []byte(`{"user":{"name":"not a class"}}`)},
		{URL: "https://site/api/d", Body: []byte(`not json`)},
		{URL: "https://site/api/e", Body: []byte(`[{"name":"no start"}]`)},
	}

	got := ParseCaptured(responses, "s", time.UTC, 50)
	require.Len(t, got, 2)

	assert.Equal(t, "Boxing 101", got[0].Name)
	assert.Equal(t, "Marco", got[0].Instructor)
	assert.Equal(t, 5, *got[0].SpotsAvailable)

	assert.Equal(t, "Row 45", got[1].Name)
	require.NotNil(t, got[1].End)
	assert.Equal(t, 20, *got[1].Capacity)
}

func TestNormalize_ReconcilesTiming(t *testing.T) {
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 1, 9, 45, 0, 0, time.UTC)
	raw := []Record{
		{StudioID: "s", Name: "A", Start: start, Duration: 50},
		{StudioID: "s", Name: "B", Start: start, End: &end, Duration: 50},
		{StudioID: "s", Name: "", Start: start},
	}

	got := Normalize(raw, 55, "https://book")
	require.Len(t, got, 2)
	assert.Equal(t, time.Date(2024, 1, 1, 9, 50, 0, 0, time.UTC), got[0].EndTime)
	assert.Equal(t, 45, got[1].Duration)
	assert.Equal(t, "TBD", got[0].Instructor)
	assert.Equal(t, "https://book", *got[0].BookingURL)
	for _, c := range got {
		assert.True(t, c.DurationConsistent())
	}
}
