package model

import (
	"strings"
	"time"
)

// articleTimeFormats lists the timestamp layouts the content API has been
// observed to return. RFC3339 is tried first.
var articleTimeFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000000Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ArticleTime wraps time.Time with lenient JSON parsing for the content API's
// inconsistent created_at formats.
type ArticleTime struct {
	time.Time
}

func (t *ArticleTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	var lastErr error
	for _, layout := range articleTimeFormats {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed
			return nil
		}
		lastErr = err
	}
	return lastErr
}

func (t ArticleTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Format(time.RFC3339) + `"`), nil
}

// Article is one result row from the keyword-indexed content API.
// ID is unique within the backend and serves as the dedup key across pages;
// CreatedAt orders results newest-first.
type Article struct {
	ID        int         `json:"id"`
	Title     string      `json:"title"`
	CreatedAt ArticleTime `json:"created_at"`
	Path      string      `json:"link_note"`
}

// SearchKeywords is the output of keyword extraction. An empty Primary means
// the query was too generic to search: skip the keyword backend entirely
// rather than flood it with noise.
type SearchKeywords struct {
	Primary string `json:"primary"`
}
