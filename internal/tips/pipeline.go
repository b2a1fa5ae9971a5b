package tips

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/eleco-media/amaike/internal/config"
	"github.com/eleco-media/amaike/internal/model"
)

// SubmissionPayload is the JSON body of the primary intake POST. The fallback
// channel carries the same fields, human-readably formatted.
type SubmissionPayload struct {
	TipID           string          `json:"tipId"`
	CollectedData   model.TipFields `json:"collectedData"`
	OriginalMessage string          `json:"originalMessage"`
	Timestamp       string          `json:"timestamp"`
	UserAgent       string          `json:"userAgent"`
}

// FallbackChannel delivers a tip when the primary intake endpoint fails.
// Deliver returns the submission id assigned by the channel.
type FallbackChannel interface {
	Deliver(ctx context.Context, payload SubmissionPayload, body string) (string, error)
}

// PipelineOption configures the pipeline.
type PipelineOption func(*Pipeline)

// WithHTTPClient replaces the HTTP client used for the primary submission.
func WithHTTPClient(c *http.Client) PipelineOption {
	return func(p *Pipeline) {
		p.httpClient = c
	}
}

// WithFallback replaces the fallback channel.
func WithFallback(f FallbackChannel) PipelineOption {
	return func(p *Pipeline) {
		p.fallback = f
	}
}

// Pipeline validates and submits tip records: primary intake endpoint first,
// fallback channel when that fails. It is not idempotent; callers must guard
// against re-submitting a terminal record.
type Pipeline struct {
	httpClient *http.Client
	intakeURL  string
	apiKey     string
	userAgent  string
	fallback   FallbackChannel
}

// NewPipeline creates a pipeline from configuration. The default fallback
// posts to the configured webhook, or logs the formatted tip when no webhook
// is set.
func NewPipeline(cfg config.TipsConfig, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		intakeURL:  cfg.IntakeURL,
		apiKey:     cfg.APIKey,
		userAgent:  cfg.UserAgent,
	}
	if cfg.FallbackWebhookURL != "" {
		p.fallback = &webhookFallback{
			httpClient: p.httpClient,
			url:        cfg.FallbackWebhookURL,
			address:    cfg.FallbackAddress,
		}
	} else {
		p.fallback = &logFallback{address: cfg.FallbackAddress}
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Validate checks that the slots journalists need carry enough text. It
// aggregates every violation into one error so the user can fix them all at
// once. Validation failure must happen before any network call.
func Validate(fields model.TipFields) error {
	runes := func(s string) int { return utf8.RuneCountInString(strings.TrimSpace(s)) }

	var violations []string
	if runes(fields.What) < 10 {
		violations = append(violations, "La descripción de lo que pasó es muy breve. Por favor, proporciona más detalles.")
	}
	if runes(fields.When) < 5 {
		violations = append(violations, "La información sobre cuándo ocurrió es necesaria.")
	}
	if runes(fields.Where) < 5 {
		violations = append(violations, "La ubicación es importante para los periodistas.")
	}
	if runes(fields.Who) < 3 {
		violations = append(violations, "Información sobre quién estuvo involucrado es necesaria.")
	}
	if len(violations) == 0 {
		return nil
	}
	return eris.New("tips: " + strings.Join(violations, " "))
}

// Submit runs the full pipeline over tip and mutates its status. Validation
// failure leaves the record untouched so the user can complete it; transport
// failure of both channels marks it failed.
func (p *Pipeline) Submit(ctx context.Context, tip *model.TipRecord) *model.SubmissionResult {
	if err := Validate(tip.Fields); err != nil {
		return &model.SubmissionResult{
			Success: false,
			Message: "La información recopilada no es completa. Por favor, proporciona más detalles.",
			Error:   err.Error(),
		}
	}

	payload := SubmissionPayload{
		TipID:           tip.ID,
		CollectedData:   tip.Fields,
		OriginalMessage: tip.OriginalMessage,
		Timestamp:       tip.CreatedAt.UTC().Format(time.RFC3339),
		UserAgent:       p.userAgent,
	}

	id, err := p.submitPrimary(ctx, payload)
	if err == nil {
		tip.Status = model.TipStatusSubmitted
		tip.SubmissionID = id
		return &model.SubmissionResult{
			Success:      true,
			SubmissionID: id,
			Message:      "Tip enviado exitosamente",
		}
	}
	zap.L().Warn("tips: primary submission failed, using fallback",
		zap.String("tip_id", tip.ID),
		zap.Error(err),
	)

	id, err = p.fallback.Deliver(ctx, payload, FormatFallbackBody(payload))
	if err != nil {
		tip.Status = model.TipStatusFailed
		zap.L().Error("tips: fallback submission failed",
			zap.String("tip_id", tip.ID),
			zap.Error(err),
		)
		return &model.SubmissionResult{
			Success: false,
			Message: "Error al enviar el tip. Por favor, inténtalo de nuevo.",
			Error:   err.Error(),
		}
	}

	tip.Status = model.TipStatusSubmitted
	tip.SubmissionID = id
	return &model.SubmissionResult{
		Success:      true,
		SubmissionID: id,
		Message:      "Tip enviado por email a la redacción",
	}
}

func (p *Pipeline) submitPrimary(ctx context.Context, payload SubmissionPayload) (string, error) {
	if p.intakeURL == "" {
		return "", eris.New("tips: no intake endpoint configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", eris.Wrap(err, "tips: marshal payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.intakeURL, bytes.NewReader(body))
	if err != nil {
		return "", eris.Wrap(err, "tips: build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "tips: execute request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return "", eris.Errorf("tips: intake endpoint returned %d", resp.StatusCode)
	}

	var parsed struct {
		SubmissionID string `json:"submissionId"`
		ID           string `json:"id"`
		Message      string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", eris.Wrap(err, "tips: decode response")
	}

	id := parsed.SubmissionID
	if id == "" {
		id = parsed.ID
	}
	if id == "" {
		return "", eris.New("tips: intake response missing submission id")
	}
	return id, nil
}

// FormatSummary renders the collected slots as the newsroom reads them.
func FormatSummary(fields model.TipFields) string {
	var b strings.Builder
	b.WriteString("INFORMACIÓN RECOPILADA:\n")
	fmt.Fprintf(&b, "• Qué pasó: %s\n", fields.What)
	fmt.Fprintf(&b, "• Cuándo: %s\n", fields.When)
	fmt.Fprintf(&b, "• Dónde: %s\n", fields.Where)
	fmt.Fprintf(&b, "• Quién estuvo involucrado: %s\n", fields.Who)
	fmt.Fprintf(&b, "• Cómo sucedió: %s\n", fields.How)
	fmt.Fprintf(&b, "• Detalles adicionales: %s\n", fields.AdditionalDetails)
	fmt.Fprintf(&b, "• Urgencia: %s\n", fields.Urgency)
	fmt.Fprintf(&b, "• Categoría: %s", fields.Category)
	if fields.ContactInfo != "" {
		fmt.Fprintf(&b, "\n• Información de contacto: %s", fields.ContactInfo)
	}
	return b.String()
}

// FormatFallbackBody renders the full tip as the secondary-channel message.
func FormatFallbackBody(payload SubmissionPayload) string {
	var b strings.Builder
	b.WriteString("NUEVO TIP DE NOTICIA RECIBIDO\n\n")
	fmt.Fprintf(&b, "ID del Tip: %s\n", payload.TipID)
	fmt.Fprintf(&b, "Fecha: %s\n", payload.Timestamp)
	fmt.Fprintf(&b, "Mensaje original: %s\n\n", payload.OriginalMessage)
	b.WriteString(FormatSummary(payload.CollectedData))
	b.WriteString("\n\n---\nEnviado desde AmAIke - Asistente de El Eco de Tandil")
	return b.String()
}

// fallbackID builds the distinctly-prefixed id the secondary channel assigns,
// so callers can tell which channel carried a tip.
func fallbackID() string {
	return fmt.Sprintf("email_%d", time.Now().UnixMilli())
}

// webhookFallback posts the formatted tip to a relay that mails it to the
// newsroom address.
type webhookFallback struct {
	httpClient *http.Client
	url        string
	address    string
}

func (w *webhookFallback) Deliver(ctx context.Context, payload SubmissionPayload, body string) (string, error) {
	msg, err := json.Marshal(map[string]string{
		"to":      w.address,
		"subject": "Nuevo tip de noticia: " + payload.TipID,
		"body":    body,
	})
	if err != nil {
		return "", eris.Wrap(err, "tips: marshal fallback message")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(msg))
	if err != nil {
		return "", eris.Wrap(err, "tips: build fallback request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "tips: execute fallback request")
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", eris.Errorf("tips: fallback webhook returned %d", resp.StatusCode)
	}
	return fallbackID(), nil
}

// logFallback writes the formatted tip to the log. It stands in for a real
// secondary transport in environments without a mail relay.
type logFallback struct {
	address string
}

func (l *logFallback) Deliver(_ context.Context, payload SubmissionPayload, body string) (string, error) {
	zap.L().Info("tips: delivering tip via log fallback",
		zap.String("address", l.address),
		zap.String("tip_id", payload.TipID),
		zap.String("body", body),
	)
	return fallbackID(), nil
}
