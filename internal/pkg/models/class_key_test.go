package models

import (
	"errors"
	"testing"
	"time"
)

func TestClassID(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	ms := "1772442000000"

	tests := []struct {
		name      string
		studioID  string
		className string
		expected  string
	}{
		{"single word", "club-pilates-sf-marina", "Restore", "club-pilates-sf-marina-" + ms + "-Restore"},
		{"spaces", "cyclebar-sf-soma", "Rhythm Ride", "cyclebar-sf-soma-" + ms + "-Rhythm-Ride"},
		{"whitespace runs", "barre3-berkeley", "Center  +\tBalance", "barre3-berkeley-" + ms + "-Center-+-Balance"},
		{"trimmed", " f45-sf-soma ", " Hollywood ", "f45-sf-soma-" + ms + "-Hollywood"},
	}

	for _, tt := range tests {
		got := ClassID(tt.studioID, start, tt.className)
		if got != tt.expected {
			t.Errorf("%s: ClassID(%q, %q) = %q, want %q", tt.name, tt.studioID, tt.className, got, tt.expected)
		}
	}
}

func TestClassID_SameInstantDifferentZone(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	utc := time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC)
	local := utc.In(la)

	if ClassID("s", utc, "Flow") != ClassID("s", local, "Flow") {
		t.Errorf("ClassID should depend on the instant, not the zone")
	}
}

func TestFitnessClass_DurationConsistent(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	ok := FitnessClass{StartTime: start, EndTime: start.Add(50 * time.Minute), Duration: 50}
	if !ok.DurationConsistent() {
		t.Errorf("expected consistent duration")
	}
	bad := FitnessClass{StartTime: start, EndTime: start.Add(45 * time.Minute), Duration: 50}
	if bad.DurationConsistent() {
		t.Errorf("expected inconsistent duration")
	}
}

func TestNewScrapeLog(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	ok := NewScrapeLog(ScrapeResult{Brand: "CycleBar", Status: StatusSuccess, Message: "Successfully fetched 3 classes", ClassCount: 3}, now)
	if ok.Status != "success" || ok.ClassCount != 3 || ok.ErrorDetails != nil {
		t.Errorf("unexpected success log: %+v", ok)
	}
	if ok.Message == nil || *ok.Message != "Successfully fetched 3 classes" {
		t.Errorf("unexpected message: %v", ok.Message)
	}

	failed := NewScrapeLog(ScrapeResult{Brand: "CycleBar", Status: StatusError, Message: "boom", Err: errors.New("boom")}, now)
	if failed.ErrorDetails == nil || *failed.ErrorDetails != "boom" {
		t.Errorf("expected error details, got %v", failed.ErrorDetails)
	}
	if !failed.CompletedAt.Equal(now) {
		t.Errorf("CompletedAt = %v, want %v", failed.CompletedAt, now)
	}
}

func TestOptionalString(t *testing.T) {
	if OptionalString("") != nil {
		t.Errorf("blank string should map to nil")
	}
	if p := OptionalString("x"); p == nil || *p != "x" {
		t.Errorf("OptionalString(x) = %v", p)
	}
}
