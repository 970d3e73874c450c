package cards

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func TestFromHTML_ClassItems(t *testing.T) {
	html := `<html><body>
	<div class="schedule-item"><h3>ignored, lower priority selector</h3></div>
	<div class="class-item">
		<h3>Reformer Flow</h3>
		<span class="class-time">9:00 AM - 9:50 AM</span>
		<span class="instructor-name">Sarah Johnson</span>
		<span class="level">Level 1</span>
		<a href="/book/123">Book</a>
	</div>
	<div class="class-item">
		<strong>Cardio Sculpt</strong>
		<time>6:30 PM</time>
		<span class="duration">50 min</span>
	</div>
	<div class="class-item"><h3>No time here</h3></div>
	</body></html>`

	got, err := FromHTML(html, day)
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "Reformer Flow", first.Name)
	assert.Equal(t, "Sarah Johnson", first.Instructor)
	assert.Equal(t, "Level 1", first.Level)
	assert.Equal(t, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), first.Start)
	require.NotNil(t, first.End)
	assert.Equal(t, time.Date(2026, 3, 2, 9, 50, 0, 0, time.UTC), *first.End)
	assert.Equal(t, "/book/123", first.BookingURL)

	second := got[1]
	assert.Equal(t, "Cardio Sculpt", second.Name)
	assert.Equal(t, time.Date(2026, 3, 2, 18, 30, 0, 0, time.UTC), second.Start)
	assert.Nil(t, second.End)
	assert.Equal(t, 50, second.Duration)
	assert.Empty(t, second.Instructor)
}

func TestFromHTML_FallsThroughSelectors(t *testing.T) {
	html := `<ul>
		<li class="class-row"><span class="title">Power Yoga</span><span class="start-time">07:15</span><span class="teacher">Lin</span></li>
	</ul>`

	got, err := FromHTML(html, day)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Power Yoga", got[0].Name)
	assert.Equal(t, "Lin", got[0].Instructor)
	assert.Equal(t, 7, got[0].Start.Hour())
	assert.Equal(t, 15, got[0].Start.Minute())
}

func TestFromHTML_NoCards(t *testing.T) {
	got, err := FromHTML(`<html><body><p>Closed for the holidays</p></body></html>`, day)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFromHTML_SkipsSelectorWithoutReadableCards(t *testing.T) {
	html := `<html><body>
	<div class="class-item"><h3>Featured: Intro Offer</h3></div>
	<div class="schedule-item"><h4>Vinyasa Flow</h4><span class="time">7:00 AM - 8:15 AM</span></div>
	<div class="schedule-item"><h4>Yin</h4><span class="time">6:00 PM</span></div>
	</body></html>`

	got, err := FromHTML(html, day)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Vinyasa Flow", got[0].Name)
	assert.Equal(t, "Yin", got[1].Name)
	assert.Equal(t, 18, got[1].Start.Hour())
}
