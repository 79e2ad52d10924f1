package bot

import (
	"context"
	"errors"

	"fedcase/internal/cases"
	"fedcase/internal/gateway"
	"fedcase/internal/metrics"

	"github.com/rs/zerolog/log"
)

func (b *Bot) handleCallback(ctx context.Context, cb *gateway.Callback) {
	if err := b.gw.AnswerCallback(ctx, cb.ID); err != nil {
		log.Warn().Err(err).Str("callback", cb.ID).Msg("bot: answer callback failed")
	}

	if kind, yes, ok := parseEvidenceChoice(cb.Token); ok {
		b.handleEvidenceChoice(ctx, cb, kind, yes)
		return
	}

	if action, ok := parseAction(cb.Token); ok {
		b.handleModerationAction(ctx, cb, action)
		return
	}

	log.Warn().Str("token", cb.Token).Msg("bot: unknown callback token ignored")
}

// handleEvidenceChoice resolves the yes/no prompt after a draft is
// started. "No" finalizes and commits immediately.
func (b *Bot) handleEvidenceChoice(ctx context.Context, cb *gateway.Callback, kind cases.Kind, yes bool) {
	if yes {
		b.notify.EvidenceRequested(ctx, cb.Chat)
		return
	}

	draft, err := b.drafts.Finalize(cb.Chat)
	if err != nil {
		b.notify.NoActiveDraft(ctx, cb.Chat)
		return
	}
	// The prompt carried the draft's kind, but the draft itself is
	// authoritative if the two ever disagree.
	if draft.Kind != kind {
		log.Warn().
			Str("prompt_kind", string(kind)).
			Str("draft_kind", string(draft.Kind)).
			Msg("bot: evidence choice kind mismatch")
	}
	b.commitDraft(ctx, cb.Chat, draft)
}

// handleModerationAction executes a parsed verb_kind_id token. Sudo
// only: the buttons are only ever shown to moderators, but the gate is
// re-checked here since tokens arrive from the wire.
func (b *Bot) handleModerationAction(ctx context.Context, cb *gateway.Callback, action Action) {
	if !b.policy.IsSudo(cb.From, b.ctrl.Snapshot()) {
		return
	}

	switch action.Verb {
	case ActionApprove, ActionReject:
		decision := cases.DecisionApprove
		if action.Verb == ActionReject {
			decision = cases.DecisionReject
		}
		if _, err := b.ctrl.Decide(action.Kind, action.CaseID, decision); err != nil {
			b.reportActionError(ctx, cb, action, err)
			return
		}
		metrics.DecisionsTotal.WithLabelValues(string(action.Kind), string(decision)).Inc()
		b.notify.Decided(ctx, cb.Chat, cb.MessageID, action.Kind, action.CaseID, decision)

	case ActionEvidence:
		refs, err := b.ctrl.EvidenceFor(action.Kind, action.CaseID)
		if err != nil {
			b.reportActionError(ctx, cb, action, err)
			return
		}
		b.notify.Evidence(ctx, cb.Chat, refs)

	case ActionDelete:
		if err := b.ctrl.Remove(action.Kind, action.CaseID); err != nil {
			b.reportActionError(ctx, cb, action, err)
			return
		}
		metrics.CasesDeletedTotal.WithLabelValues(string(action.Kind)).Inc()
		b.notify.Deleted(ctx, cb.Chat, cb.MessageID, action.Kind)
	}
}

func (b *Bot) reportActionError(ctx context.Context, cb *gateway.Callback, action Action, err error) {
	if errors.Is(err, cases.ErrCaseNotFound) {
		b.notify.CaseGone(ctx, cb.Chat, cb.MessageID, action.Kind)
		return
	}
	log.Error().Err(err).
		Str("verb", string(action.Verb)).
		Str("kind", string(action.Kind)).
		Str("case_id", action.CaseID).
		Msg("bot: moderation action failed")
	b.notify.SubmitFailed(ctx, cb.Chat)
}

// handleMedia attaches submitted media to the sender's active draft.
// Media sent with no draft in progress is ignored.
func (b *Bot) handleMedia(ctx context.Context, m *gateway.Media) {
	if _, ok := b.drafts.Active(m.Chat); !ok {
		return
	}

	ref, err := b.gw.FetchFile(ctx, m.FileID)
	if err != nil {
		log.Error().Err(err).Str("file_id", m.FileID).Msg("bot: evidence fetch failed")
		b.notify.SubmitFailed(ctx, m.Chat)
		return
	}

	if err := b.drafts.AppendEvidence(m.Chat, ref); err != nil {
		// Draft vanished between the check and the append.
		b.notify.NoActiveDraft(ctx, m.Chat)
		return
	}
	b.notify.EvidenceReceived(ctx, m.Chat)
}
