package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/eleco-media/amaike/internal/assistant"
	"github.com/eleco-media/amaike/internal/conversation"
	"github.com/eleco-media/amaike/internal/keywords"
	"github.com/eleco-media/amaike/internal/retrieval"
	"github.com/eleco-media/amaike/internal/store"
	"github.com/eleco-media/amaike/internal/tips"
	anthropicpkg "github.com/eleco-media/amaike/pkg/anthropic"
	"github.com/eleco-media/amaike/pkg/contentapi"
	"github.com/eleco-media/amaike/pkg/gemini"
)

// env holds the wired collaborators shared by the commands.
type env struct {
	store   store.Store
	factory assistant.Factory
	markers conversation.Markers
}

func (e *env) Close() {
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			zap.L().Warn("close store", zap.Error(err))
		}
	}
}

// initEnv wires clients, store and assistant factory from configuration.
func initEnv(ctx context.Context) (*env, error) {
	markers, err := conversation.LoadMarkers(cfg.Markers.File)
	if err != nil {
		return nil, eris.Wrap(err, "load markers")
	}

	answers, err := gemini.NewClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model,
		gemini.WithAllowedOrigin(cfg.Publisher.Origin),
	)
	if err != nil {
		return nil, eris.Wrap(err, "init gemini client")
	}

	search := contentapi.NewClient(
		contentapi.WithBaseURL(cfg.ContentAPI.BaseURL),
		contentapi.WithRateLimit(cfg.ContentAPI.RatePerSec, cfg.ContentAPI.RateBurst),
	)

	completer, err := initCompleter(answers)
	if err != nil {
		return nil, err
	}
	extractor := keywords.New(completer)

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	orchOpts := []retrieval.Option{retrieval.WithPageSize(cfg.ContentAPI.PageSize)}
	if cfg.Retrieval.ValidateSources && completer != nil {
		orchOpts = append(orchOpts, retrieval.WithValidator(completer))
	}
	orch := retrieval.New(answers, search, extractor, cfg.Publisher.Origin, cfg.Retrieval, orchOpts...)

	classifier := conversation.NewClassifier(markers)
	slots := tips.NewSlotExtractor(markers, cfg.Publisher.Locality)
	pipeline := tips.NewPipeline(cfg.Tips)

	factory := func() *assistant.Assistant {
		return assistant.New(orch, classifier, slots, pipeline, st)
	}

	return &env{store: st, factory: factory, markers: markers}, nil
}

// initCompleter picks the completion backend for keyword extraction and
// source validation. The heuristic provider disables the AI path entirely.
func initCompleter(answers gemini.Client) (keywords.Completer, error) {
	switch cfg.Keywords.Provider {
	case "gemini":
		return answers, nil
	case "anthropic":
		if cfg.Anthropic.Key == "" {
			return nil, eris.New("keywords provider anthropic requires an api key")
		}
		return keywords.NewAnthropicCompleter(anthropicpkg.NewClient(cfg.Anthropic.Key), cfg.Anthropic.Model), nil
	case "heuristic":
		return nil, nil
	default:
		return nil, eris.Errorf("unknown keywords provider %q", cfg.Keywords.Provider)
	}
}
