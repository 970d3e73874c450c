// Package cards extracts class cards from rendered schedule HTML.
package cards

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Vodeneev/exerciser/internal/scraper/integrations"
)

// CardSelectors are tried in order; the first one that yields a readable card wins.
var CardSelectors = []string{
	".class-item",
	".schedule-item",
	`[class*="class-card"]`,
	`[class*="schedule-row"]`,
	`li[class*="class"]`,
	".booking-item",
}

const (
	nameSelector       = `h1, h2, h3, h4, strong, [class*="title"], [class*="name"]`
	timeSelector       = `[class*="time"], time, .start-time`
	instructorSelector = `[class*="instructor"], [class*="teacher"], [class*="staff"]`
	levelSelector      = `[class*="level"]`
	durationSelector   = `[class*="duration"]`
)

var durationRe = regexp.MustCompile(`(?i)(\d{2,3})\s*(min|minutes|mins)\b`)

// Card is one class card as read from the page.
type Card struct {
	Name       string
	Instructor string
	Level      string
	TimeText   string
	Start      time.Time
	End        *time.Time
	Duration   int // minutes, 0 when the card does not say
	BookingURL string
}

// FromReader parses an HTML document and extracts cards placed on day.
func FromReader(r io.Reader, day time.Time) ([]Card, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return Extract(doc.Selection, day), nil
}

// FromHTML is FromReader for a string.
func FromHTML(html string, day time.Time) ([]Card, error) {
	return FromReader(strings.NewReader(html), day)
}

// Extract reads cards under root. Cards without a name or a readable start time are dropped.
func Extract(root *goquery.Selection, day time.Time) []Card {
	for _, sel := range CardSelectors {
		nodes := root.Find(sel)
		if nodes.Length() == 0 {
			continue
		}
		var out []Card
		nodes.Each(func(_ int, s *goquery.Selection) {
			if c, ok := readCard(s, day); ok {
				out = append(out, c)
			}
		})
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

func readCard(s *goquery.Selection, day time.Time) (Card, bool) {
	name := firstText(s, nameSelector)
	timeText := firstText(s, timeSelector)
	if timeText == "" {
		if t, ok := s.Find("time").Attr("datetime"); ok {
			timeText = t
		}
	}
	if name == "" || timeText == "" {
		return Card{}, false
	}

	c := Card{
		Name:       name,
		Instructor: firstText(s, instructorSelector),
		Level:      firstText(s, levelSelector),
		TimeText:   timeText,
	}

	if t, err := integrations.ParseTimestamp(timeText, day.Location()); err == nil {
		c.Start = t
	} else {
		start, end, ok := integrations.ParseClock(timeText, day)
		if !ok {
			return Card{}, false
		}
		c.Start, c.End = start, end
	}

	if m := durationRe.FindStringSubmatch(firstText(s, durationSelector) + " " + cleanText(s.Text())); m != nil {
		fmt.Sscanf(m[1], "%d", &c.Duration)
	}
	if href, ok := s.Find("a[href]").First().Attr("href"); ok {
		c.BookingURL = strings.TrimSpace(href)
	}
	return c, true
}

// firstText returns the text of the first non-empty element matching any comma-separated
// selector, tried in the listed order.
func firstText(s *goquery.Selection, selector string) string {
	for _, sel := range strings.Split(selector, ",") {
		sel = strings.TrimSpace(sel)
		if sel == "" {
			continue
		}
		var found string
		s.Find(sel).EachWithBreak(func(_ int, n *goquery.Selection) bool {
			found = cleanText(n.Text())
			return found == ""
		})
		if found != "" {
			return found
		}
	}
	return ""
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
