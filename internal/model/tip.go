package model

import "time"

// TipStatus tracks a tip record through capture and submission.
type TipStatus string

const (
	TipStatusCollecting    TipStatus = "collecting"
	TipStatusReadyToSubmit TipStatus = "ready_to_submit"
	TipStatusSubmitted     TipStatus = "submitted"
	TipStatusFailed        TipStatus = "failed"
)

// Terminal reports whether the status ends the tip lifecycle. Terminal
// records are immutable.
func (s TipStatus) Terminal() bool {
	return s == TipStatusSubmitted || s == TipStatusFailed
}

// TipCategory is the editorial desk a tip is routed to.
type TipCategory string

const (
	CategoryAccident  TipCategory = "accident"
	CategoryCrime     TipCategory = "crime"
	CategoryPolitics  TipCategory = "politics"
	CategoryCommunity TipCategory = "community"
	CategoryBusiness  TipCategory = "business"
	CategoryOther     TipCategory = "other"
)

// TipUrgency grades how quickly the newsroom should look at a tip.
type TipUrgency string

const (
	UrgencyLow    TipUrgency = "low"
	UrgencyMedium TipUrgency = "medium"
	UrgencyHigh   TipUrgency = "high"
)

// TipFields is the structured tip record filled by slot extraction.
// Every string field always carries a value: extraction substitutes a
// placeholder when a slot cannot be filled, never an empty string.
type TipFields struct {
	What              string      `json:"what"`
	When              string      `json:"when"`
	Where             string      `json:"where"`
	Who               string      `json:"who"`
	How               string      `json:"how"`
	AdditionalDetails string      `json:"additionalDetails"`
	ContactInfo       string      `json:"contactInfo,omitempty"`
	Urgency           TipUrgency  `json:"urgency"`
	Category          TipCategory `json:"category"`
}

// TipRecord is a captured citizen news tip. It is owned by the session until
// submission and immutable once Status is terminal.
type TipRecord struct {
	ID              string    `json:"id"`
	CreatedAt       time.Time `json:"createdAt"`
	OriginalMessage string    `json:"originalMessage"`
	Fields          TipFields `json:"fields"`
	Status          TipStatus `json:"status"`
	SubmissionID    string    `json:"submissionId,omitempty"`
}

// SubmissionResult is the uniform outcome of the submission pipeline,
// regardless of which channel carried the tip.
type SubmissionResult struct {
	Success      bool   `json:"success"`
	SubmissionID string `json:"submissionId,omitempty"`
	Message      string `json:"message"`
	Error        string `json:"error,omitempty"`
}
