package models

import (
	"strconv"
	"strings"
	"time"
)

// ClassID builds the derived identifier of a session.
//
// The same studio, start instant and class name always give the same id, so a re-fetch of an
// unchanged session collides with the stored row instead of duplicating it.
// Format: <studioID>-<start unix millis>-<class name, whitespace runs replaced by '-'>
func ClassID(studioID string, startTime time.Time, className string) string {
	return strings.TrimSpace(studioID) + "-" +
		strconv.FormatInt(startTime.UTC().UnixMilli(), 10) + "-" +
		classNameKey(className)
}

func classNameKey(s string) string {
	return strings.Join(strings.Fields(s), "-")
}
