// Package keywords turns a free-text user query into zero or one canonical
// search keyword for the article API. The keyword backend matches with a
// substring filter, so an empty keyword is always preferred over a noisy one:
// a bad keyword returns irrelevant articles with false confidence.
package keywords

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/eleco-media/amaike/internal/model"
	"github.com/eleco-media/amaike/internal/textnorm"
)

// Completer produces one text completion for one prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// denylist holds folded forms of interrogatives and generic nouns that never
// make useful substring keywords.
var denylist = map[string]struct{}{
	"que":         {},
	"quien":       {},
	"cuando":      {},
	"donde":       {},
	"como":        {},
	"porque":      {},
	"informacion": {},
	"noticias":    {},
	"municipio":   {},
	"gobierno":    {},
}

// Extractor extracts search keywords, preferring an AI completer and falling
// back to a capitalized-token heuristic. Extract never returns an error.
type Extractor struct {
	completer Completer // nil disables the AI path
}

// New creates an extractor. Pass a nil completer for heuristic-only mode.
func New(completer Completer) *Extractor {
	return &Extractor{completer: completer}
}

// Extract returns the primary keyword for query, or an empty keyword when the
// query is too generic to search. Internal failures degrade silently to the
// heuristic.
func (e *Extractor) Extract(ctx context.Context, query string) model.SearchKeywords {
	if e.completer == nil {
		return heuristic(query)
	}

	raw, err := e.completer.Complete(ctx, extractionPrompt(query))
	if err != nil {
		zap.L().Warn("keywords: ai extraction failed, using heuristic", zap.Error(err))
		return heuristic(query)
	}

	kw, err := parseKeywords(raw)
	if err != nil {
		zap.L().Debug("keywords: unparseable ai response, using heuristic",
			zap.String("response", raw),
			zap.Error(err),
		)
		return heuristic(query)
	}
	return kw
}

// parseKeywords locates a JSON object in the completion and validates its
// shape. The completer sometimes wraps the object in prose or code fences.
func parseKeywords(raw string) (model.SearchKeywords, error) {
	cleaned := cleanJSON(raw)

	var fields map[string]any
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return model.SearchKeywords{}, eris.Wrap(err, "keywords: unmarshal response")
	}

	primary, ok := fields["primary"].(string)
	if !ok {
		return model.SearchKeywords{}, eris.New("keywords: response missing primary string")
	}

	return model.SearchKeywords{Primary: strings.ToLower(strings.TrimSpace(primary))}, nil
}

// heuristic keeps the first token longer than 3 runes that starts uppercase
// and is not a denylisted interrogative or generic noun.
func heuristic(query string) model.SearchKeywords {
	for _, tok := range strings.Fields(query) {
		word := strings.Trim(tok, "¿?¡!.,;:\"'()")
		if utf8.RuneCountInString(word) <= 3 {
			continue
		}
		first, _ := utf8.DecodeRuneInString(word)
		if !unicode.IsUpper(first) {
			continue
		}
		if _, denied := denylist[textnorm.Fold(word)]; denied {
			continue
		}
		return model.SearchKeywords{Primary: strings.ToLower(word)}
	}
	return model.SearchKeywords{}
}

// cleanJSON attempts to extract a JSON object from text that may contain
// markdown code fences or other wrapping.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}

func extractionPrompt(query string) string {
	return fmt.Sprintf(`Eres un experto en extracción de palabras clave para búsquedas por subcadena en una base de noticias.

CONSULTA: %q

La palabra clave se usa en un filtro LIKE: solo nombres propios, lugares, instituciones, equipos o eventos son útiles. Nunca verbos ("juega", "pasó", "dice") ni palabras genéricas ("calle", "información", "noticias", "municipio", "gobierno"). Si la consulta es muy genérica, devuelve primary vacío. Preserva nombres completos ("San Martín", "Juan Manazzoni"). Solo 1 palabra clave principal.

EJEMPLOS:
- "¿Cuándo juega Santamarina?" -> {"primary": "santamarina"}
- "¿Qué pasó con Pedersoli?" -> {"primary": "pedersoli"}
- "Accidente en San Martín" -> {"primary": "san martín"}
- "Noticias del municipio" -> {"primary": ""}
- "¿Cómo está el Hospital Santamarina?" -> {"primary": "hospital santamarina"}

RESPUESTA (solo JSON con la forma {"primary": "..."}, sin explicaciones):`, query)
}
