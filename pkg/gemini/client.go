// Package gemini wraps the Gemini generate API for domain-grounded answers.
// Replies are produced with the GoogleSearch tool enabled and cited sources
// are hard-filtered to the publisher origin before they leave this package.
package gemini

import (
	"context"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"google.golang.org/genai"

	"github.com/eleco-media/amaike/internal/model"
)

const defaultOrigin = "https://www.eleco.com.ar"

// Client produces grounded answers and plain completions.
type Client interface {
	// Ask runs one grounded-generation call over the full turn history.
	Ask(ctx context.Context, transcript []model.ConversationTurn) (*model.GroundedAnswer, error)
	// Complete runs a single-prompt call without search grounding.
	Complete(ctx context.Context, prompt string) (string, error)
}

// Option configures the client.
type Option func(*genClient)

// WithAllowedOrigin overrides the publisher origin used for source filtering.
func WithAllowedOrigin(origin string) Option {
	return func(c *genClient) {
		c.origin = origin
	}
}

// WithSystemInstruction overrides the default persona instruction.
func WithSystemInstruction(system string) Option {
	return func(c *genClient) {
		c.system = system
	}
}

// generator is the narrow slice of the SDK this package calls, extracted so
// tests can substitute canned responses.
type generator interface {
	generate(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type sdkGenerator struct {
	client *genai.Client
	model  string
}

func (g *sdkGenerator) generate(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
}

type genClient struct {
	gen    generator
	origin string
	system string
}

// NewClient creates a Gemini client for the given API key and model.
func NewClient(ctx context.Context, apiKey, modelName string, opts ...Option) (Client, error) {
	if apiKey == "" {
		return nil, eris.New("gemini: api key is required")
	}

	sdkClient, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, eris.Wrap(err, "gemini: create client")
	}

	c := &genClient{
		gen:    &sdkGenerator{client: sdkClient, model: modelName},
		origin: defaultOrigin,
		system: SystemInstruction,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *genClient) Ask(ctx context.Context, transcript []model.ConversationTurn) (*model.GroundedAnswer, error) {
	contents := make([]*genai.Content, 0, len(transcript))
	for _, turn := range transcript {
		role := genai.Role(genai.RoleUser)
		if turn.Speaker == model.SpeakerAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, role))
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(c.system, genai.RoleUser),
		Tools:             []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}

	resp, err := c.gen.generate(ctx, contents, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "gemini: grounded generate")
	}

	return &model.GroundedAnswer{
		Text:    resp.Text(),
		Sources: c.filterSources(resp),
	}, nil
}

func (c *genClient) Complete(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	resp, err := c.gen.generate(ctx, contents, nil)
	if err != nil {
		return "", eris.Wrap(err, "gemini: generate completion")
	}
	return resp.Text(), nil
}

// filterSources keeps only grounding chunks pointing at the publisher site.
// Chunks without a usable URI are non-actionable and dropped silently.
func (c *genClient) filterSources(resp *genai.GenerateContentResponse) []model.Source {
	if len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}

	host := originHost(c.origin)
	var sources []model.Source
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		uri := chunk.Web.URI
		if !strings.HasPrefix(uri, c.origin) && !strings.Contains(uri, host) {
			continue
		}
		sources = append(sources, model.Source{URI: uri, Title: chunk.Web.Title})
	}
	return sources
}

func originHost(origin string) string {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return origin
	}
	return strings.TrimPrefix(u.Host, "www.")
}
