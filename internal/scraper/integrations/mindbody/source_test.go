package mindbody

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vodeneev/exerciser/internal/pkg/config"
	"github.com/Vodeneev/exerciser/internal/pkg/models"
	"github.com/Vodeneev/exerciser/internal/scraper/integrations"
)

func brand(sites ...string) config.BrandConfig {
	bc := config.BrandConfig{
		Name:            "barre3",
		Brand:           "barre3",
		Timezone:        "America/Los_Angeles",
		WindowDays:      7,
		DefaultDuration: 60,
		Capacity:        25,
		FirstHour:       6,
		HourStep:        2,
		ClassesPerDay:   6,
		ClassTypes:      []config.ClassType{{Name: "barre3 Signature", Level: "All Levels", Duration: 60}},
		Instructors:     []string{"Emma Thompson"},
	}
	for _, s := range sites {
		bc.Locations = append(bc.Locations, config.LocationConfig{StudioID: "barre3-" + s, SiteID: s})
	}
	return bc
}

func TestClient_Pagination(t *testing.T) {
	var pages atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, classesPath, r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("Api-Key"))
		assert.Equal(t, "-99", r.Header.Get("SiteId"))
		pages.Add(1)

		offset, _ := strconv.Atoi(r.URL.Query().Get("Offset"))
		n := 2
		if offset >= 2 {
			n = 1
		}
		fmt.Fprintf(w, `{"PaginationResponse":{"TotalResults":3,"PageSize":%d},"Classes":[`, n)
		for i := 0; i < n; i++ {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"Id":%d,"Name":"c%d","StartDateTime":"2024-01-01T09:00:00"}`, offset+i, offset+i)
		}
		fmt.Fprint(w, "]}")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", srv.Client(), "")
	got, err := c.GetClasses(context.Background(), "-99", time.Now(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, int32(2), pages.Load())
}

func TestSource_Fallbacks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("SiteId") == "2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"PaginationResponse":{"TotalResults":1},"Classes":[
			{"Id":1,"ClassDescription":{"Name":"barre3 Strength","Level":{"Id":2,"Name":"Intermediate"}},
			 "Staff":{"DisplayName":"Ashley"},"StartDateTime":"2024-01-01T09:00:00","EndDateTime":"2024-01-01T10:00:00",
			 "MaxCapacity":20,"TotalBooked":5}]}`))
	}))
	defer srv.Close()

	src := NewSource(NewClient(srv.URL, "key", srv.Client(), ""), brand("1", "2"), integrations.RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond})
	res := integrations.Run(context.Background(), integrations.Info{Brand: "barre3"}, integrations.Source[Class](src), time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	require.Equal(t, models.StatusSuccess, res.Status)
	assert.Equal(t, models.TierAPI, res.Tier)

	var live *models.FitnessClass
	generated := 0
	for i, c := range res.Classes {
		assert.True(t, c.DurationConsistent(), c.ID)
		if c.StudioID == "barre3-1" {
			live = &res.Classes[i]
		} else {
			generated++
		}
	}
	require.NotNil(t, live)
	assert.Equal(t, "barre3 Strength", live.ClassName)
	assert.Equal(t, "Ashley", live.Instructor)
	assert.Equal(t, 60, live.Duration)
	assert.Equal(t, 15, *live.SpotsAvailable)
	assert.Equal(t, "Intermediate", *live.Level)
	assert.Equal(t, "https://clients.mindbodyonline.com/classic/ws?studioid=1", *live.BookingURL)
	assert.Greater(t, generated, 0)
}

func TestSource_MissingKey(t *testing.T) {
	src := NewSource(NewClient("http://127.0.0.1:1", "", nil, ""), brand("1"), integrations.RetryConfig{MaxRetries: 3, BaseDelay: time.Second})

	start := time.Now()
	res := integrations.Run(context.Background(), integrations.Info{Brand: "barre3"}, integrations.Source[Class](src), time.Now())

	require.Equal(t, models.StatusSuccess, res.Status)
	assert.Equal(t, models.TierMock, res.Tier)
	assert.NotEmpty(t, res.Classes)
	assert.Less(t, time.Since(start), time.Second, "missing credentials must not be retried")
}

func TestNormalize(t *testing.T) {
	capacity := 10
	raw := []Class{
		{Name: "Fallback Name", StartDateTime: "2024-01-01T09:00:00Z", Duration: 50, MaxCapacity: &capacity, StudioID: "s"},
		{Name: "Cancelled", StartDateTime: "2024-01-01T10:00:00Z", IsCanceled: true, StudioID: "s"},
		{Name: "No start", StudioID: "s"},
		{Staff: &Staff{FirstName: "Kim", LastName: "Lee"}, Name: "Staff Names", StartDateTime: "2024-01-01T11:00:00Z", StudioID: "s", BookingURL: "https://x"},
	}

	got := Normalize(raw, time.UTC, 55, "")
	require.Len(t, got, 2)

	assert.Equal(t, time.Date(2024, 1, 1, 9, 50, 0, 0, time.UTC), got[0].EndTime)
	assert.Equal(t, "TBD", got[0].Instructor)
	assert.Nil(t, got[0].SpotsAvailable, "bookings unknown")
	assert.Equal(t, 10, *got[0].Capacity)

	assert.Equal(t, "Kim Lee", got[1].Instructor)
	assert.Equal(t, 55, got[1].Duration)
	assert.Equal(t, "https://x", *got[1].BookingURL)
}
