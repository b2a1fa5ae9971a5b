// Package conversation derives the interview state machine from the
// transcript. State is never stored: it is recomputed from text markers each
// turn, so re-scanning the same transcript always yields the same state.
package conversation

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/eleco-media/amaike/internal/model"
	"github.com/eleco-media/amaike/internal/textnorm"
)

// Markers holds the assistant phrase sets that drive state classification.
// They are tunable configuration, not code: editorial can adjust the persona
// wording and update these without touching orchestration logic.
type Markers struct {
	InterviewStart   []string `yaml:"interview_start"`
	InterviewOngoing []string `yaml:"interview_ongoing"`
}

// DefaultMarkers returns the phrase sets matching the built-in persona
// instruction.
func DefaultMarkers() Markers {
	return Markers{
		InterviewStart: []string{
			"¿podrías contarme un poco más?",
			"¿qué fue exactamente lo que pasó?",
		},
		InterviewOngoing: []string{
			"¿podrías contarme un poco más?",
			"¿qué fue exactamente lo que pasó?",
			"¿cuándo ocurrió",
			"¿dónde exactamente",
			"¿cómo sucedió",
			"gracias por tu aporte",
			"es muy valioso para nosotros",
			"para poder entender mejor",
		},
	}
}

// LoadMarkers reads marker sets from a YAML file. An empty path returns the
// defaults; fields left empty in the file keep their default values.
func LoadMarkers(path string) (Markers, error) {
	defaults := DefaultMarkers()
	if path == "" {
		return defaults, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Markers{}, eris.Wrapf(err, "conversation: read markers file %s", path)
	}

	var m Markers
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Markers{}, eris.Wrap(err, "conversation: unmarshal markers")
	}

	if len(m.InterviewStart) == 0 {
		m.InterviewStart = defaults.InterviewStart
	}
	if len(m.InterviewOngoing) == 0 {
		m.InterviewOngoing = defaults.InterviewOngoing
	}
	return m, nil
}

// StartIndex returns the index of the earliest assistant turn containing an
// interview-start marker, or -1 when the transcript has none.
func (m Markers) StartIndex(transcript []model.ConversationTurn) int {
	for i, turn := range transcript {
		if turn.Speaker != model.SpeakerAssistant {
			continue
		}
		if textnorm.HasAny(turn.Text, m.InterviewStart) {
			return i
		}
	}
	return -1
}
