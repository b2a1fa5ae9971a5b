package gemini

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/eleco-media/amaike/internal/model"
)

type fakeGenerator struct {
	resp     *genai.GenerateContentResponse
	err      error
	contents []*genai.Content
	cfg      *genai.GenerateContentConfig
}

func (f *fakeGenerator) generate(_ context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.contents = contents
	f.cfg = cfg
	return f.resp, f.err
}

func groundedResponse(text string, uris ...string) *genai.GenerateContentResponse {
	chunks := make([]*genai.GroundingChunk, len(uris))
	for i, uri := range uris {
		chunks[i] = &genai.GroundingChunk{Web: &genai.GroundingChunkWeb{URI: uri, Title: "título"}}
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:           &genai.Content{Parts: []*genai.Part{{Text: text}}},
			GroundingMetadata: &genai.GroundingMetadata{GroundingChunks: chunks},
		}},
	}
}

func TestAsk_FiltersForeignSources(t *testing.T) {
	gen := &fakeGenerator{resp: groundedResponse("Santamarina ganó. Puedes leer más en: https://www.eleco.com.ar/x",
		"https://www.eleco.com.ar/deportes/nota",
		"https://otrodiario.com/nota",
		"https://eleco.com.ar/policiales/nota",
		"",
	)}
	c := &genClient{gen: gen, origin: defaultOrigin, system: SystemInstruction}

	ans, err := c.Ask(context.Background(), []model.ConversationTurn{
		{Sequence: 1, Speaker: model.SpeakerUser, Text: "¿Cuándo juega Santamarina?"},
	})

	require.NoError(t, err)
	require.Len(t, ans.Sources, 2)
	assert.Equal(t, "https://www.eleco.com.ar/deportes/nota", ans.Sources[0].URI)
	assert.Equal(t, "https://eleco.com.ar/policiales/nota", ans.Sources[1].URI)
}

func TestAsk_MapsRolesAndEnablesSearch(t *testing.T) {
	gen := &fakeGenerator{resp: groundedResponse("hola")}
	c := &genClient{gen: gen, origin: defaultOrigin, system: SystemInstruction}

	_, err := c.Ask(context.Background(), []model.ConversationTurn{
		{Sequence: 1, Speaker: model.SpeakerAssistant, Text: "¿Sobre qué te gustaría consultar?"},
		{Sequence: 2, Speaker: model.SpeakerUser, Text: "hola"},
	})

	require.NoError(t, err)
	require.Len(t, gen.contents, 2)
	assert.Equal(t, string(genai.RoleModel), gen.contents[0].Role)
	assert.Equal(t, string(genai.RoleUser), gen.contents[1].Role)
	require.NotNil(t, gen.cfg)
	require.Len(t, gen.cfg.Tools, 1)
	assert.NotNil(t, gen.cfg.Tools[0].GoogleSearch)
	assert.NotNil(t, gen.cfg.SystemInstruction)
}

func TestAsk_GenerateError(t *testing.T) {
	gen := &fakeGenerator{err: eris.New("quota exceeded")}
	c := &genClient{gen: gen, origin: defaultOrigin}

	_, err := c.Ask(context.Background(), []model.ConversationTurn{
		{Sequence: 1, Speaker: model.SpeakerUser, Text: "hola"},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "grounded generate")
}

func TestAsk_NoGroundingMetadata(t *testing.T) {
	gen := &fakeGenerator{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: "respuesta breve"}}}}},
	}}
	c := &genClient{gen: gen, origin: defaultOrigin}

	ans, err := c.Ask(context.Background(), []model.ConversationTurn{
		{Sequence: 1, Speaker: model.SpeakerUser, Text: "hola"},
	})

	require.NoError(t, err)
	assert.Equal(t, "respuesta breve", ans.Text)
	assert.Empty(t, ans.Sources)
}

func TestComplete(t *testing.T) {
	gen := &fakeGenerator{resp: groundedResponse(`{"primary": "santamarina"}`)}
	c := &genClient{gen: gen, origin: defaultOrigin}

	out, err := c.Complete(context.Background(), "extract keywords")

	require.NoError(t, err)
	assert.Equal(t, `{"primary": "santamarina"}`, out)
	assert.Nil(t, gen.cfg) // no search grounding for completions
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), "", "gemini-2.5-flash")
	require.Error(t, err)
}
