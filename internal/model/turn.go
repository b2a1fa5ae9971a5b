package model

// Speaker identifies who produced a conversation turn.
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// Source is a cited article reference. URI is the dedup key; sources
// without a URI are non-actionable and dropped before merging.
type Source struct {
	URI   string `json:"uri,omitempty"`
	Title string `json:"title,omitempty"`
}

// ConversationTurn is a single immutable entry in a session transcript.
// Sequence is assigned by the owning session and is append-only.
type ConversationTurn struct {
	Sequence int      `json:"sequence"`
	Speaker  Speaker  `json:"speaker"`
	Text     string   `json:"text"`
	Sources  []Source `json:"sources,omitempty"`
}

// GroundedAnswer is the result of one grounded-generation call: free text
// plus zero or more cited sources, already filtered to the publisher domain.
type GroundedAnswer struct {
	Text    string
	Sources []Source
}

// Answer is the merged retrieval result presented to the caller.
type Answer struct {
	Text       string   `json:"text"`
	Sources    []Source `json:"sources,omitempty"`
	Unanswered bool     `json:"unanswered"`
}

// LastUserText returns the text of the most recent user turn, or "" when the
// transcript contains no user turns.
func LastUserText(transcript []ConversationTurn) string {
	for i := len(transcript) - 1; i >= 0; i-- {
		if transcript[i].Speaker == SpeakerUser {
			return transcript[i].Text
		}
	}
	return ""
}
