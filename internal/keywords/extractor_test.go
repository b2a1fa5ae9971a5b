package keywords

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"

	"github.com/eleco-media/amaike/internal/model"
	"github.com/eleco-media/amaike/pkg/anthropic"
)

type stubCompleter struct {
	response string
	err      error
}

func (s *stubCompleter) Complete(_ context.Context, _ string) (string, error) {
	return s.response, s.err
}

func TestExtract_AIPath(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
		query    string
		want     string
	}{
		{
			name:     "clean_json",
			response: `{"primary": "santamarina"}`,
			query:    "¿Cuándo juega Santamarina?",
			want:     "santamarina",
		},
		{
			name:     "json_with_prose",
			response: "Claro, aquí está el resultado:\n{\"primary\": \"pedersoli\"}\nEspero que sirva.",
			query:    "¿Qué pasó con Pedersoli?",
			want:     "pedersoli",
		},
		{
			name:     "json_in_fence",
			response: "```json\n{\"primary\": \"san martín\"}\n```",
			query:    "Accidente en San Martín",
			want:     "san martín",
		},
		{
			name:     "empty_primary_is_valid",
			response: `{"primary": ""}`,
			query:    "Noticias del municipio",
			want:     "",
		},
		{
			name:     "uppercase_normalized",
			response: `{"primary": " Santamarina "}`,
			query:    "¿Cuándo juega Santamarina?",
			want:     "santamarina",
		},
		{
			name:     "malformed_falls_back_to_heuristic",
			response: "no puedo ayudar con eso",
			query:    "¿Qué pasó con Pedersoli?",
			want:     "pedersoli",
		},
		{
			name:     "wrong_shape_falls_back",
			response: `{"keyword": "santamarina"}`,
			query:    "¿Cuándo juega Santamarina?",
			want:     "santamarina",
		},
		{
			name:  "completer_error_falls_back",
			err:   eris.New("quota exceeded"),
			query: "¿Qué pasó con Pedersoli?",
			want:  "pedersoli",
		},
		{
			name:  "error_and_generic_query_yields_empty",
			err:   eris.New("quota exceeded"),
			query: "¿qué pasó ayer en la ciudad?",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(&stubCompleter{response: tt.response, err: tt.err})
			got := e.Extract(context.Background(), tt.query)
			assert.Equal(t, model.SearchKeywords{Primary: tt.want}, got)
		})
	}
}

func TestHeuristic(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"¿Cuándo juega Santamarina?", "santamarina"},
		{"¿Qué pasó con Pedersoli?", "pedersoli"},
		{"¿Dónde queda el club?", ""},             // no capitalized candidate
		{"Información sobre el municipio", ""},    // denylisted
		{"Noticias de hoy", ""},                   // denylisted
		{"habló el intendente ayer", ""},          // nothing capitalized
		{"El sábado chocaron en Rivadavia", "rivadavia"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := heuristic(tt.query)
			assert.Equal(t, tt.want, got.Primary)
		})
	}
}

func TestExtract_NilCompleterUsesHeuristic(t *testing.T) {
	e := New(nil)
	got := e.Extract(context.Background(), "¿Cuándo juega Santamarina?")
	assert.Equal(t, "santamarina", got.Primary)
}

type stubAnthropicClient struct {
	resp *anthropic.MessageResponse
	err  error
}

func (s *stubAnthropicClient) CreateMessage(_ context.Context, _ anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	return s.resp, s.err
}

func TestAnthropicCompleter(t *testing.T) {
	client := &stubAnthropicClient{resp: &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: `{"primary": "manazzoni"}`}},
	}}

	e := New(NewAnthropicCompleter(client, "claude-haiku-4-5-20251001"))
	got := e.Extract(context.Background(), "Información sobre Juan Manazzoni")

	assert.Equal(t, "manazzoni", got.Primary)
}
