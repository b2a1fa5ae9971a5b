// Package retrieval fans a user query out to the grounded-answer capability
// and the keyword article API, isolates each branch's failure, and merges the
// results into a single answer.
package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/eleco-media/amaike/internal/config"
	"github.com/eleco-media/amaike/internal/keywords"
	"github.com/eleco-media/amaike/internal/model"
	"github.com/eleco-media/amaike/internal/textnorm"
	"github.com/eleco-media/amaike/pkg/contentapi"
	"github.com/eleco-media/amaike/pkg/gemini"
)

// Apology is the only user-visible error text: it is returned when both
// retrieval branches fail. Partial failures degrade silently.
const Apology = "Lo siento, ha ocurrido un error al procesar tu solicitud. Por favor, intenta de nuevo más tarde."

// noInfoFallback stands in when the grounded branch failed and the keyword
// branch ran clean but produced nothing.
const noInfoFallback = "No he encontrado información específica sobre tu consulta en el contenido de El Eco de Tandil. Te invito a explorar las últimas noticias directamente en nuestro sitio: https://www.eleco.com.ar"

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithValidator enables the fail-open source-validation pass using the given
// completer.
func WithValidator(v keywords.Completer) Option {
	return func(o *Orchestrator) {
		o.validator = v
	}
}

// WithPageSize overrides how many articles the keyword branch requests.
func WithPageSize(n int) Option {
	return func(o *Orchestrator) {
		o.pageSize = n
	}
}

// Orchestrator resolves a transcript into a merged answer.
type Orchestrator struct {
	answers   gemini.Client
	search    contentapi.Client
	extractor *keywords.Extractor
	validator keywords.Completer
	origin    string
	pageSize  int
	cfg       config.RetrievalConfig
}

// New creates an orchestrator. origin is the publisher origin used to build
// article URIs and to recognize embedded links.
func New(answers gemini.Client, search contentapi.Client, extractor *keywords.Extractor, origin string, cfg config.RetrievalConfig, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		answers:   answers,
		search:    search,
		extractor: extractor,
		origin:    origin,
		pageSize:  10,
		cfg:       cfg,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Resolve runs both retrieval branches concurrently and merges their results.
// It never returns an error: total failure yields the fixed apology text.
func (o *Orchestrator) Resolve(ctx context.Context, transcript []model.ConversationTurn) *model.Answer {
	query := model.LastUserText(transcript)

	var (
		grounded    *model.GroundedAnswer
		groundedErr error
		articles    []model.Article
		searchErr   error
	)

	// Settle-all join: branch errors are captured, never returned to the
	// group, so one failing branch cannot cancel the other.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		grounded, groundedErr = o.answers.Ask(gctx, transcript)
		if groundedErr != nil {
			zap.L().Warn("retrieval: grounded branch failed", zap.Error(groundedErr))
		}
		return nil
	})
	g.Go(func() error {
		kw := o.extractor.Extract(gctx, query)
		if kw.Primary == "" {
			zap.L().Debug("retrieval: no keyword, skipping article search", zap.String("query", query))
			return nil
		}
		resp, err := o.search.Search(gctx, kw.Primary, 1, o.pageSize)
		if err != nil {
			searchErr = err
			zap.L().Warn("retrieval: keyword branch failed",
				zap.String("keyword", kw.Primary),
				zap.Error(err),
			)
			return nil
		}
		articles = resp.Data
		return nil
	})
	_ = g.Wait()

	if groundedErr != nil && searchErr != nil {
		zap.L().Error("retrieval: both branches failed",
			zap.NamedError("grounded", groundedErr),
			zap.NamedError("search", searchErr),
		)
		return &model.Answer{Text: Apology, Unanswered: true}
	}

	keywordSources := o.articleSources(articles)

	var text string
	var sources []model.Source
	switch {
	case groundedErr == nil:
		text = grounded.Text
		sources = mergeSources(grounded.Sources, keywordSources)
	case len(keywordSources) > 0:
		// keyword-only degradation: the branch is a source signal, so the
		// accompanying text stays a neutral count.
		n := len(keywordSources)
		plural := ""
		if n > 1 {
			plural = "s"
		}
		text = fmt.Sprintf("He encontrado %d artículo%s relacionado%s con tu consulta en El Eco de Tandil.", n, plural, plural)
		sources = keywordSources
	default:
		text = noInfoFallback
	}

	if o.validator != nil && o.cfg.ValidateSources && len(sources) > 0 {
		sources = o.validateSources(ctx, query, sources)
	}

	return &model.Answer{
		Text:       text,
		Sources:    sources,
		Unanswered: o.unanswered(text, sources),
	}
}

// articleSources maps keyword articles to sources, newest first.
func (o *Orchestrator) articleSources(articles []model.Article) []model.Source {
	if len(articles) == 0 {
		return nil
	}
	sorted := make([]model.Article, len(articles))
	copy(sorted, articles)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt.Time)
	})

	out := make([]model.Source, 0, len(sorted))
	for _, a := range sorted {
		out = append(out, model.Source{URI: o.origin + a.Path, Title: a.Title})
	}
	return out
}

// mergeSources concatenates grounded then keyword sources and deduplicates by
// URI keeping the first occurrence, so grounded sources win ties. Sources
// without a URI are non-actionable and dropped.
func mergeSources(grounded, keyword []model.Source) []model.Source {
	seen := make(map[string]struct{}, len(grounded)+len(keyword))
	var out []model.Source
	for _, list := range [][]model.Source{grounded, keyword} {
		for _, s := range list {
			if s.URI == "" {
				continue
			}
			if _, dup := seen[s.URI]; dup {
				continue
			}
			seen[s.URI] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// unanswered applies the composite confidence heuristic: no sources, an
// explicit not-found phrase, or a short reply with neither citation phrase
// nor an embedded site link. All thresholds come from configuration.
func (o *Orchestrator) unanswered(text string, sources []model.Source) bool {
	if len(sources) == 0 {
		return true
	}
	if textnorm.HasAny(text, o.cfg.NotFoundPhrases) {
		return true
	}
	short := len([]rune(text)) < o.cfg.MinAnsweredLength
	uncited := !strings.Contains(text, o.cfg.CitationPhrase) && !strings.Contains(text, o.origin)
	return short && uncited
}

// validateSources asks the validator which sources answer the query, racing
// the call against the configured timeout. Any failure keeps all sources:
// validation is fail-open, never fail-closed.
func (o *Orchestrator) validateSources(ctx context.Context, query string, sources []model.Source) []model.Source {
	timeout := time.Duration(o.cfg.ValidationTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	vctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	raw, err := o.validator.Complete(vctx, validationPrompt(query, sources))
	if err != nil {
		zap.L().Debug("retrieval: source validation skipped", zap.Error(err))
		return sources
	}

	var verdict struct {
		Keep []int `json:"keep"`
	}
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return sources
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &verdict); err != nil {
		zap.L().Debug("retrieval: unparseable validation verdict", zap.String("response", raw))
		return sources
	}

	kept := make([]model.Source, 0, len(verdict.Keep))
	for _, idx := range verdict.Keep {
		if idx >= 1 && idx <= len(sources) {
			kept = append(kept, sources[idx-1])
		}
	}
	if len(kept) == 0 {
		// an empty verdict is indistinguishable from a confused validator
		return sources
	}
	return kept
}

func validationPrompt(query string, sources []model.Source) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Consulta del usuario: %q\n\nFuentes candidatas:\n", query)
	for i, s := range sources {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, s.Title, s.URI)
	}
	b.WriteString("\nDevuelve solo JSON {\"keep\": [números de las fuentes relevantes a la consulta]}.")
	return b.String()
}
