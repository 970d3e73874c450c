package webcapture

import "strings"

var captureTokens = []string{"/api", "/schedule", "/class", "/booking", ".json"}

var excludedTokens = []string{"google", "analytics", "facebook", "tracking", "doubleclick"}

// ShouldCapture reports whether a response URL looks like schedule data. extra adds
// brand-specific tokens such as booking platform host names.
func ShouldCapture(url string, extra []string) bool {
	u := strings.ToLower(url)
	for _, t := range excludedTokens {
		if strings.Contains(u, t) {
			return false
		}
	}
	for _, t := range captureTokens {
		if strings.Contains(u, t) {
			return true
		}
	}
	for _, t := range extra {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" && strings.Contains(u, t) {
			return true
		}
	}
	return false
}

// IsJSON reports whether a response MIME type carries JSON.
func IsJSON(mimeType string) bool {
	return strings.Contains(strings.ToLower(mimeType), "json")
}
