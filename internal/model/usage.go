package model

import "time"

// UsageEntry records one resolved query for editorial analytics.
type UsageEntry struct {
	Timestamp       time.Time `json:"timestamp"`
	SessionID       string    `json:"sessionId"`
	Query           string    `json:"query"`
	ResponseLength  int       `json:"responseLength"`
	SourcesFound    int       `json:"sourcesFound"`
	HasCallToAction bool      `json:"hasCallToAction"`
}
