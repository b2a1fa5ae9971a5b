// Package assistant ties retrieval, state classification and tip capture
// together into one conversational surface shared by the CLI and the HTTP
// API.
package assistant

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/eleco-media/amaike/internal/conversation"
	"github.com/eleco-media/amaike/internal/model"
	"github.com/eleco-media/amaike/internal/retrieval"
	"github.com/eleco-media/amaike/internal/store"
	"github.com/eleco-media/amaike/internal/tips"
)

// ErrSuperseded is returned when a newer user send arrived while a request
// was in flight. The stale result must be discarded, never presented.
var ErrSuperseded = eris.New("assistant: request superseded")

// Reply is the presented outcome of one user turn.
type Reply struct {
	Text       string           `json:"text"`
	Sources    []model.Source   `json:"sources,omitempty"`
	State      string           `json:"state"`
	Unanswered bool             `json:"unanswered"`
	Tip        *model.TipRecord `json:"tip,omitempty"`
}

// Assistant runs one conversation session end to end.
type Assistant struct {
	orch       *retrieval.Orchestrator
	classifier *conversation.Classifier
	extractor  *tips.SlotExtractor
	pipeline   *tips.Pipeline
	archive    store.Store // optional
	session    *conversation.Session
}

// New creates an assistant with a fresh session. archive may be nil when no
// persistence is configured.
func New(orch *retrieval.Orchestrator, classifier *conversation.Classifier, extractor *tips.SlotExtractor, pipeline *tips.Pipeline, archive store.Store) *Assistant {
	return &Assistant{
		orch:       orch,
		classifier: classifier,
		extractor:  extractor,
		pipeline:   pipeline,
		archive:    archive,
		session:    conversation.NewSession(),
	}
}

// SessionID returns the session identifier.
func (a *Assistant) SessionID() string {
	return a.session.ID
}

// Greeting returns the fixed opening turn of the session.
func (a *Assistant) Greeting() string {
	return conversation.Greeting
}

// HandleMessage appends the user turn, resolves it and composes the reply
// according to the derived conversation state. A completion superseded by a
// newer send returns ErrSuperseded and leaves no assistant turn behind.
func (a *Assistant) HandleMessage(ctx context.Context, text string) (*Reply, error) {
	a.session.Append(model.SpeakerUser, text, nil)
	reqID := a.session.BeginRequest()

	answer := a.orch.Resolve(ctx, a.session.Transcript())
	if !a.session.IsCurrent(reqID) {
		zap.L().Debug("assistant: discarding stale completion",
			zap.String("session_id", a.session.ID),
			zap.Int64("request_id", reqID),
		)
		return nil, ErrSuperseded
	}

	// the raw text, sentinel included, goes into the transcript so that
	// classification stays replayable from the turns alone
	a.session.Append(model.SpeakerAssistant, answer.Text, answer.Sources)
	transcript := a.session.Transcript()
	state := a.classifier.Classify(transcript)

	reply := &Reply{
		Text:       answer.Text,
		State:      state.String(),
		Unanswered: answer.Unanswered,
	}

	switch state {
	case conversation.StateInterviewComplete:
		reply.Text = conversation.StripSentinel(answer.Text)
		reply.Tip = a.captureTip(ctx, transcript)
	case conversation.StateInterviewOngoing:
		// an interview collects a tip, it does not cite articles
	default:
		reply.Sources = answer.Sources
	}

	a.logUsage(ctx, text, reply)
	return reply, nil
}

// SubmitTip runs the submission pipeline over tip and records the outcome.
// Terminal records are rejected before any network call: the pipeline is not
// idempotent and re-submission would double-deliver.
func (a *Assistant) SubmitTip(ctx context.Context, tip *model.TipRecord) (*model.SubmissionResult, error) {
	if tip.Status.Terminal() {
		return nil, eris.Errorf("assistant: tip %s already %s", tip.ID, tip.Status)
	}

	result := a.pipeline.Submit(ctx, tip)

	if a.archive != nil && tip.Status.Terminal() {
		if err := a.archive.UpdateTipStatus(ctx, tip.ID, tip.Status, tip.SubmissionID); err != nil {
			zap.L().Warn("assistant: record submission outcome",
				zap.String("tip_id", tip.ID),
				zap.Error(err),
			)
		}
	}
	return result, nil
}

func (a *Assistant) captureTip(ctx context.Context, transcript []model.ConversationTurn) *model.TipRecord {
	fields := a.extractor.Extract(transcript)
	if fields == nil {
		return nil
	}

	tip := &model.TipRecord{
		ID:              uuid.New().String(),
		CreatedAt:       time.Now().UTC(),
		OriginalMessage: model.LastUserText(transcript),
		Fields:          *fields,
		Status:          model.TipStatusReadyToSubmit,
	}

	if a.archive != nil {
		if err := a.archive.SaveTip(ctx, tip); err != nil {
			zap.L().Warn("assistant: archive captured tip",
				zap.String("tip_id", tip.ID),
				zap.Error(err),
			)
		}
	}
	return tip
}

func (a *Assistant) logUsage(ctx context.Context, query string, reply *Reply) {
	a.session.CountQuery()
	if a.archive == nil {
		return
	}
	entry := model.UsageEntry{
		Timestamp:       time.Now().UTC(),
		SessionID:       a.session.ID,
		Query:           query,
		ResponseLength:  len(reply.Text),
		SourcesFound:    len(reply.Sources),
		HasCallToAction: reply.Unanswered,
	}
	if err := a.archive.LogUsage(ctx, entry); err != nil {
		zap.L().Debug("assistant: write usage entry", zap.Error(err))
	}
}
