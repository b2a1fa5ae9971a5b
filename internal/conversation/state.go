package conversation

import (
	"strings"

	"github.com/eleco-media/amaike/internal/model"
	"github.com/eleco-media/amaike/internal/textnorm"
)

// CompletionSentinel prefixes the assistant's final interview reply. It is
// consumed by the pipeline and never shown to the user.
const CompletionSentinel = "[INFO_RECIBIDA]"

// markerWindow is how many trailing assistant turns are scanned for
// interview-ongoing markers.
const markerWindow = 3

// State is the derived conversation state.
type State int

const (
	// StateIdle is normal Q&A; retrieval results are presented as-is.
	StateIdle State = iota
	// StateInterviewOngoing means the assistant is collecting a tip; cited
	// sources are suppressed in the presented reply.
	StateInterviewOngoing
	// StateInterviewComplete means the latest assistant reply carries the
	// completion sentinel: extract the tip and hand it to submission.
	StateInterviewComplete
)

func (s State) String() string {
	switch s {
	case StateInterviewOngoing:
		return "interview_ongoing"
	case StateInterviewComplete:
		return "interview_complete"
	default:
		return "idle"
	}
}

// Classifier computes the conversation state from a transcript tail.
type Classifier struct {
	markers Markers
}

// NewClassifier creates a classifier over the given marker sets.
func NewClassifier(markers Markers) *Classifier {
	return &Classifier{markers: markers}
}

// Classify derives the state from the transcript. It is a pure function of
// its input: classification is idempotent and replayable.
func (c *Classifier) Classify(transcript []model.ConversationTurn) State {
	assistant := trailingAssistantTurns(transcript, markerWindow)
	if len(assistant) == 0 {
		return StateIdle
	}

	latest := assistant[len(assistant)-1]
	if strings.HasPrefix(strings.TrimSpace(latest.Text), CompletionSentinel) {
		return StateInterviewComplete
	}

	for _, turn := range assistant {
		if textnorm.HasAny(turn.Text, c.markers.InterviewOngoing) {
			return StateInterviewOngoing
		}
	}
	return StateIdle
}

// StripSentinel removes the completion sentinel prefix from assistant text.
func StripSentinel(text string) string {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, CompletionSentinel) {
		return strings.TrimSpace(strings.TrimPrefix(trimmed, CompletionSentinel))
	}
	return text
}

// trailingAssistantTurns returns up to n most recent assistant turns in
// transcript order.
func trailingAssistantTurns(transcript []model.ConversationTurn, n int) []model.ConversationTurn {
	var out []model.ConversationTurn
	for i := len(transcript) - 1; i >= 0 && len(out) < n; i-- {
		if transcript[i].Speaker == model.SpeakerAssistant {
			out = append(out, transcript[i])
		}
	}
	// reverse back to transcript order
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
