// Package tips captures structured citizen news tips from an interview
// transcript and submits them to the newsroom.
package tips

import (
	"regexp"
	"strings"

	"github.com/eleco-media/amaike/internal/conversation"
	"github.com/eleco-media/amaike/internal/model"
	"github.com/eleco-media/amaike/internal/textnorm"
)

// Placeholder fills any slot the patterns could not extract. Downstream code
// relies on every field carrying a value.
const Placeholder = "Información no especificada"

// Slot patterns anchor on the interrogative word and stop at the next one.
// They run against the concatenated user turns of the interview.
var (
	whatPattern  = regexp.MustCompile(`(?i)(?:qué|que)\s+(.+?)(?:\s+cuándo|\s+dónde|\s+quién|$)`)
	whenPattern  = regexp.MustCompile(`(?i)(?:cuándo|cuando)\s+(.+?)(?:\s+dónde|\s+quién|\s+cómo|$)`)
	wherePattern = regexp.MustCompile(`(?i)(?:dónde|donde)\s+(.+?)(?:\s+quién|\s+cómo|$)`)
	whoPattern   = regexp.MustCompile(`(?i)(?:quién|quien)\s+(.+?)(?:\s+cómo|$)`)
	howPattern   = regexp.MustCompile(`(?i)(?:cómo|como)\s+(.+?)$`)
)

// categoryTable routes a tip to an editorial desk by first keyword match.
// Order matters: scanning stops at the first category with a hit.
var categoryTable = []struct {
	category model.TipCategory
	keywords []string
}{
	{model.CategoryAccident, []string{"accidente", "choque", "colisión", "atropello"}},
	{model.CategoryCrime, []string{"robo", "asalto", "delito", "crimen"}},
	{model.CategoryPolitics, []string{"municipio", "intendente", "concejal", "elección"}},
	{model.CategoryCommunity, []string{"barrio", "vecino", "comunidad", "evento"}},
	{model.CategoryBusiness, []string{"comercio", "negocio", "empresa", "local"}},
}

var urgencyTable = []struct {
	urgency  model.TipUrgency
	keywords []string
}{
	{model.UrgencyHigh, []string{"urgente", "emergencia", "inmediato", "ahora"}},
	{model.UrgencyMedium, []string{"reciente", "ayer", "hoy", "esta semana"}},
}

// SlotExtractor fills a tip record from the user turns of an interview.
// Extraction is best-effort: it never fails, every slot falls back to a
// placeholder.
type SlotExtractor struct {
	markers  conversation.Markers
	locality string
}

// NewSlotExtractor creates an extractor. locality is the default answer for
// the where slot when nothing better is found.
func NewSlotExtractor(markers conversation.Markers, locality string) *SlotExtractor {
	return &SlotExtractor{markers: markers, locality: locality}
}

// Extract fills a TipFields value from the transcript. It returns nil only
// when the transcript has no user turns.
func (e *SlotExtractor) Extract(transcript []model.ConversationTurn) *model.TipFields {
	userTurns := make([]model.ConversationTurn, 0, len(transcript))
	for _, turn := range transcript {
		if turn.Speaker == model.SpeakerUser {
			userTurns = append(userTurns, turn)
		}
	}
	if len(userTurns) == 0 {
		return nil
	}

	start := e.markers.StartIndex(transcript)
	if start < 0 {
		// No interview ever started: the latest user turn is the whole story.
		last := userTurns[len(userTurns)-1].Text
		return &model.TipFields{
			What:              last,
			When:              Placeholder,
			Where:             e.locality,
			Who:               Placeholder,
			How:               Placeholder,
			AdditionalDetails: last,
			Urgency:           model.UrgencyMedium,
			Category:          model.CategoryOther,
		}
	}

	var parts []string
	for _, turn := range transcript[start:] {
		if turn.Speaker == model.SpeakerUser {
			parts = append(parts, turn.Text)
		}
	}
	blob := strings.Join(parts, " ")
	if blob == "" {
		// interview started but the user has not replied yet
		blob = userTurns[len(userTurns)-1].Text
	}

	return &model.TipFields{
		What:              slot(whatPattern, blob, firstSentence(blob)),
		When:              slot(whenPattern, blob, Placeholder),
		Where:             slot(wherePattern, blob, e.locality),
		Who:               slot(whoPattern, blob, Placeholder),
		How:               slot(howPattern, blob, Placeholder),
		AdditionalDetails: blob,
		Urgency:           classifyUrgency(blob),
		Category:          classifyCategory(blob),
	}
}

func slot(pattern *regexp.Regexp, blob, fallback string) string {
	m := pattern.FindStringSubmatch(blob)
	if m == nil || strings.TrimSpace(m[1]) == "" {
		return fallback
	}
	return strings.TrimSpace(m[1])
}

func firstSentence(blob string) string {
	s := strings.TrimSpace(strings.SplitN(blob, ".", 2)[0])
	if s == "" {
		return Placeholder
	}
	return s
}

func classifyCategory(blob string) model.TipCategory {
	for _, row := range categoryTable {
		if textnorm.HasAny(blob, row.keywords) {
			return row.category
		}
	}
	return model.CategoryOther
}

func classifyUrgency(blob string) model.TipUrgency {
	for _, row := range urgencyTable {
		if textnorm.HasAny(blob, row.keywords) {
			return row.urgency
		}
	}
	return model.UrgencyLow
}
