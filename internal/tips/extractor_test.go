package tips

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eleco-media/amaike/internal/conversation"
	"github.com/eleco-media/amaike/internal/model"
)

func newExtractor() *SlotExtractor {
	return NewSlotExtractor(conversation.DefaultMarkers(), "Tandil")
}

func turns(entries ...model.ConversationTurn) []model.ConversationTurn {
	return entries
}

func user(seq int, text string) model.ConversationTurn {
	return model.ConversationTurn{Sequence: seq, Speaker: model.SpeakerUser, Text: text}
}

func assistant(seq int, text string) model.ConversationTurn {
	return model.ConversationTurn{Sequence: seq, Speaker: model.SpeakerAssistant, Text: text}
}

func TestExtract_NoUserTurns(t *testing.T) {
	got := newExtractor().Extract(turns(
		assistant(1, "¡Hola! Soy AmAIke."),
	))
	assert.Nil(t, got)
}

func TestExtract_NoInterviewUsesLastUserTurn(t *testing.T) {
	got := newExtractor().Extract(turns(
		user(1, "¿Cuándo juega Santamarina?"),
		assistant(2, "Santamarina juega el domingo."),
		user(3, "Se cayó un árbol en la plaza"),
	))

	require.NotNil(t, got)
	assert.Equal(t, "Se cayó un árbol en la plaza", got.What)
	assert.Equal(t, Placeholder, got.When)
	assert.Equal(t, "Tandil", got.Where)
	assert.Equal(t, Placeholder, got.Who)
	assert.Equal(t, Placeholder, got.How)
	assert.Equal(t, model.UrgencyMedium, got.Urgency)
	assert.Equal(t, model.CategoryOther, got.Category)
}

func TestExtract_InterviewFillsSlots(t *testing.T) {
	got := newExtractor().Extract(turns(
		user(1, "Vi un choque en el centro"),
		assistant(2, "Gracias por tu aporte, ¿podrías contarme un poco más? ¿Qué fue exactamente lo que pasó?"),
		user(3, "Hubo un choque un auto chocó contra un poste cuando era de madrugada dónde Av. Rivadavia y Belgrano quién un vecino del barrio cómo por el hielo en la calle"),
	))

	require.NotNil(t, got)
	assert.NotEqual(t, Placeholder, got.What)
	assert.Contains(t, got.When, "era de madrugada")
	assert.Contains(t, got.Where, "Av. Rivadavia y Belgrano")
	assert.Contains(t, got.Who, "un vecino del barrio")
	assert.Contains(t, got.How, "por el hielo en la calle")
	assert.Equal(t, model.CategoryAccident, got.Category)
}

func TestExtract_EveryFieldAlwaysPopulated(t *testing.T) {
	transcripts := [][]model.ConversationTurn{
		turns(user(1, "hola")),
		turns(
			user(1, "pasó algo"),
			assistant(2, "¿Podrías contarme un poco más?"),
		),
		turns(
			user(1, "x"),
			assistant(2, "¿Qué fue exactamente lo que pasó?"),
			user(3, "nada en particular"),
		),
	}

	for _, transcript := range transcripts {
		got := newExtractor().Extract(transcript)
		require.NotNil(t, got)
		assert.NotEmpty(t, got.What)
		assert.NotEmpty(t, got.When)
		assert.NotEmpty(t, got.Where)
		assert.NotEmpty(t, got.Who)
		assert.NotEmpty(t, got.How)
		assert.NotEmpty(t, got.AdditionalDetails)
		assert.NotEmpty(t, got.Urgency)
		assert.NotEmpty(t, got.Category)
	}
}

func TestExtract_AdditionalDetailsKeepsFullBlob(t *testing.T) {
	got := newExtractor().Extract(turns(
		user(1, "Hubo un robo"),
		assistant(2, "¿Podrías contarme un poco más?"),
		user(3, "Entraron a un comercio de la calle Pinto"),
		user(4, "Fue esta madrugada, se llevaron la caja"),
	))

	require.NotNil(t, got)
	assert.Contains(t, got.AdditionalDetails, "comercio de la calle Pinto")
	assert.Contains(t, got.AdditionalDetails, "se llevaron la caja")
}

func TestClassifyCategory(t *testing.T) {
	tests := []struct {
		blob string
		want model.TipCategory
	}{
		{"hubo una colisión en la ruta 226", model.CategoryAccident},
		{"un asalto a mano armada", model.CategoryCrime},
		{"el intendente anunció obras", model.CategoryPolitics},
		{"los vecinos organizaron una colecta", model.CategoryCommunity},
		{"cerró una empresa textil", model.CategoryBusiness},
		{"se cayó un árbol", model.CategoryOther},
		// accident outranks business when both match
		{"un choque frente a un comercio", model.CategoryAccident},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyCategory(tt.blob), tt.blob)
	}
}

func TestClassifyUrgency(t *testing.T) {
	tests := []struct {
		blob string
		want model.TipUrgency
	}{
		{"es una emergencia, vengan ahora", model.UrgencyHigh},
		{"pasó ayer a la tarde", model.UrgencyMedium},
		{"hace unos meses", model.UrgencyLow},
		{"ES URGENTE", model.UrgencyHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyUrgency(tt.blob), tt.blob)
	}
}
