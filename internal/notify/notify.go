// Package notify formats and routes every outbound message through
// the messaging gateway. Sends happen after persistence and are
// fire-and-forget: failures are logged, never retried.
package notify

import (
	"context"
	"path/filepath"
	"strings"

	"fedcase/internal/cases"
	"fedcase/internal/gateway"
	"fedcase/internal/metrics"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Evidence file extensions forwarded as photos vs videos.
var (
	imageExts = map[string]bool{
		".jpg": true, ".jpeg": true, ".png": true, ".heic": true,
		".webp": true, ".gif": true, ".heif": true, ".raw": true,
	}
	videoExts = map[string]bool{
		".mp4": true, ".mov": true, ".avi": true, ".mkv": true,
	}
)

// Dispatcher sends formatted messages through a gateway.
type Dispatcher struct {
	gw             gateway.Gateway
	broadcastLimit int
}

// NewDispatcher creates a dispatcher. broadcastLimit bounds concurrent
// broadcast sends; values below 1 mean no concurrency.
func NewDispatcher(gw gateway.Gateway, broadcastLimit int) *Dispatcher {
	if broadcastLimit < 1 {
		broadcastLimit = 1
	}
	return &Dispatcher{gw: gw, broadcastLimit: broadcastLimit}
}

func (d *Dispatcher) send(ctx context.Context, chatID int64, html string) {
	if err := d.gw.SendMessage(ctx, chatID, html); err != nil {
		log.Warn().Err(err).Int64("chat", chatID).Msg("notify: send failed")
	}
}

// Welcome greets a newly started user.
func (d *Dispatcher) Welcome(ctx context.Context, chatID int64) {
	d.send(ctx, chatID, welcomeText())
}

// Usage shows the command form for filing a case of the given kind.
func (d *Dispatcher) Usage(ctx context.Context, chatID int64, kind cases.Kind) {
	d.send(ctx, chatID, usageText(kind))
}

// BlacklistDenied tells a blacklisted filer they may not file.
func (d *Dispatcher) BlacklistDenied(ctx context.Context, chatID int64, kind cases.Kind) {
	d.send(ctx, chatID, blacklistedText(kind))
}

// DraftInProgress tells the filer a draft already exists.
func (d *Dispatcher) DraftInProgress(ctx context.Context, chatID int64, kind cases.Kind) {
	d.send(ctx, chatID, draftInProgressText(kind))
}

// EvidencePrompt asks whether the filer wants to attach evidence.
func (d *Dispatcher) EvidencePrompt(ctx context.Context, chatID int64, kind cases.Kind) {
	if err := d.gw.SendChoice(ctx, chatID, evidencePromptText(), evidenceButtons(kind)); err != nil {
		log.Warn().Err(err).Int64("chat", chatID).Msg("notify: evidence prompt failed")
	}
}

// EvidenceRequested asks the filer to send media.
func (d *Dispatcher) EvidenceRequested(ctx context.Context, chatID int64) {
	d.send(ctx, chatID, evidenceRequestText())
}

// EvidenceReceived confirms one media file was attached.
func (d *Dispatcher) EvidenceReceived(ctx context.Context, chatID int64) {
	d.send(ctx, chatID, evidenceReceivedText())
}

// Submitted confirms a committed case.
func (d *Dispatcher) Submitted(ctx context.Context, chatID int64, kind cases.Kind) {
	d.send(ctx, chatID, submittedText(kind))
}

// Discarded confirms a cancelled draft.
func (d *Dispatcher) Discarded(ctx context.Context, chatID int64) {
	d.send(ctx, chatID, discardedText())
}

// NoActiveDraft hints that there is nothing to finalize or cancel.
func (d *Dispatcher) NoActiveDraft(ctx context.Context, chatID int64) {
	d.send(ctx, chatID, noActiveDraftText())
}

// SubmitFailed reports a failed durable write. The mutation was not
// applied.
func (d *Dispatcher) SubmitFailed(ctx context.Context, chatID int64) {
	d.send(ctx, chatID, submitFailedText())
}

// PermissionDenied is the generic denial shown for owner-only actions.
// It leaks no internal detail.
func (d *Dispatcher) PermissionDenied(ctx context.Context, chatID int64) {
	d.send(ctx, chatID, permissionDeniedText())
}

// InvalidUserID rejects a non-numeric id argument.
func (d *Dispatcher) InvalidUserID(ctx context.Context, chatID int64) {
	d.send(ctx, chatID, invalidUserIDText())
}

// CaseCard sends one case summary with its moderation buttons.
func (d *Dispatcher) CaseCard(ctx context.Context, chatID int64, c cases.Case) {
	if err := d.gw.SendChoice(ctx, chatID, caseCardText(c), caseCardButtons(c)); err != nil {
		log.Warn().Err(err).Int64("chat", chatID).Str("case_id", c.ID).Msg("notify: case card failed")
	}
}

func (d *Dispatcher) edit(ctx context.Context, chatID int64, messageID int, html string) {
	if err := d.gw.EditMessage(ctx, chatID, messageID, html); err != nil {
		log.Warn().Err(err).Int64("chat", chatID).Msg("notify: edit failed")
	}
}

// Decided replaces a case card with the decision outcome.
func (d *Dispatcher) Decided(ctx context.Context, chatID int64, messageID int, kind cases.Kind, caseID string, decision cases.Decision) {
	d.edit(ctx, chatID, messageID, decidedText(kind, caseID, decision))
}

// Deleted replaces a case card with a deletion confirmation.
func (d *Dispatcher) Deleted(ctx context.Context, chatID int64, messageID int, kind cases.Kind) {
	d.edit(ctx, chatID, messageID, deletedText(kind))
}

// CaseGone replaces a case card whose case no longer exists.
func (d *Dispatcher) CaseGone(ctx context.Context, chatID int64, messageID int, kind cases.Kind) {
	d.edit(ctx, chatID, messageID, caseGoneText(kind))
}

// Evidence forwards a case's evidence files, or reports that none were
// provided. Images and videos are distinguished by extension.
func (d *Dispatcher) Evidence(ctx context.Context, chatID int64, refs []string) {
	if len(refs) == 0 {
		d.send(ctx, chatID, noEvidenceText())
		return
	}
	for _, ref := range refs {
		ext := strings.ToLower(filepath.Ext(ref))
		switch {
		case imageExts[ext]:
			if err := d.gw.SendPhoto(ctx, chatID, ref, "🖼 <b>Evidence Image</b>"); err != nil {
				log.Warn().Err(err).Str("ref", ref).Msg("notify: evidence photo failed")
			}
		case videoExts[ext]:
			if err := d.gw.SendVideo(ctx, chatID, ref, "🎥 <b>Evidence Video</b>"); err != nil {
				log.Warn().Err(err).Str("ref", ref).Msg("notify: evidence video failed")
			}
		default:
			d.send(ctx, chatID, unsupportedEvidenceText(ref))
		}
	}
}

// Roster confirmations.

func (d *Dispatcher) SudoAdded(ctx context.Context, chatID, userID int64, added bool) {
	if added {
		d.send(ctx, chatID, sudoAddedText(userID))
		return
	}
	d.send(ctx, chatID, sudoAlreadyText(userID))
}

func (d *Dispatcher) SudoRemoved(ctx context.Context, chatID, userID int64, removed bool) {
	if removed {
		d.send(ctx, chatID, sudoRemovedText(userID))
		return
	}
	d.send(ctx, chatID, sudoNotFoundText(userID))
}

func (d *Dispatcher) Blacklisted(ctx context.Context, chatID, userID int64) {
	d.send(ctx, chatID, blacklistAddedText(userID))
}

func (d *Dispatcher) Unblacklisted(ctx context.Context, chatID, userID int64, removed bool) {
	if removed {
		d.send(ctx, chatID, blacklistRemovedText(userID))
		return
	}
	d.send(ctx, chatID, blacklistNotFoundText(userID))
}

func (d *Dispatcher) BlacklistList(ctx context.Context, chatID int64, ids []int64) {
	d.send(ctx, chatID, blacklistListText(ids))
}

// Direct sends an admin message to a user and reports the outcome to
// the sender.
func (d *Dispatcher) Direct(ctx context.Context, senderChat, userID int64, text string) {
	if err := d.gw.SendMessage(ctx, userID, directMessageText(text)); err != nil {
		log.Warn().Err(err).Int64("user", userID).Msg("notify: direct message failed")
		d.send(ctx, senderChat, directFailedText(err))
		return
	}
	d.send(ctx, senderChat, directSentText(userID))
}

// DirectUsage rejects a malformed /message invocation.
func (d *Dispatcher) DirectUsage(ctx context.Context, chatID int64) {
	d.send(ctx, chatID, directUsageText())
}

// BroadcastDenied is the visible denial for non-owner broadcast.
func (d *Dispatcher) BroadcastDenied(ctx context.Context, chatID int64) {
	d.send(ctx, chatID, broadcastDeniedText())
}

// BroadcastEmpty rejects a broadcast with no message.
func (d *Dispatcher) BroadcastEmpty(ctx context.Context, chatID int64) {
	d.send(ctx, chatID, broadcastEmptyText())
}

// Broadcast fans the message out to every registered user with bounded
// concurrency. Individual failures are logged and counted but never
// abort the fan-out.
func (d *Dispatcher) Broadcast(ctx context.Context, users []int64, message string) (sent, failed int) {
	formatted := broadcastText(message)

	results := make([]bool, len(users))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(d.broadcastLimit)

	for i, userID := range users {
		g.Go(func() error {
			if err := d.gw.SendMessage(gCtx, userID, formatted); err != nil {
				log.Warn().Err(err).Int64("user", userID).Msg("notify: broadcast send failed")
				metrics.BroadcastFailuresTotal.Inc()
				return nil
			}
			results[i] = true
			metrics.BroadcastDeliveriesTotal.Inc()
			return nil
		})
	}
	g.Wait()

	for _, ok := range results {
		if ok {
			sent++
		} else {
			failed++
		}
	}
	return sent, failed
}

// BroadcastDone reports the fan-out outcome to the owner.
func (d *Dispatcher) BroadcastDone(ctx context.Context, chatID int64, sent, failed int) {
	d.send(ctx, chatID, broadcastDoneText(sent, failed))
}
