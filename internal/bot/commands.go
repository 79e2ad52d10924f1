package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"fedcase/internal/cases"
	"fedcase/internal/gateway"
	"fedcase/internal/metrics"

	"github.com/rs/zerolog/log"
)

func (b *Bot) handleCommand(ctx context.Context, cmd *gateway.Command) {
	switch cmd.Verb {
	case "start":
		b.cmdStart(ctx, cmd)
	case "report":
		b.cmdFile(ctx, cmd, cases.KindReport)
	case "appeal":
		b.cmdFile(ctx, cmd, cases.KindAppeal)
	case "done":
		b.cmdDone(ctx, cmd)
	case "cancel":
		b.cmdCancel(ctx, cmd)
	case "viewreports":
		b.cmdViewCases(ctx, cmd, cases.KindReport)
	case "viewappeals":
		b.cmdViewCases(ctx, cmd, cases.KindAppeal)
	case "addsudo":
		b.cmdAddSudo(ctx, cmd)
	case "removesudo":
		b.cmdRemoveSudo(ctx, cmd)
	case "blacklist":
		b.cmdBlacklist(ctx, cmd)
	case "unblacklist":
		b.cmdUnblacklist(ctx, cmd)
	case "viewblacklist":
		b.cmdViewBlacklist(ctx, cmd)
	case "message":
		b.cmdMessage(ctx, cmd)
	case "broadcast":
		b.cmdBroadcast(ctx, cmd)
	default:
		// Unknown commands are ignored.
	}
}

// cmdStart registers the user for broadcasts and sends the welcome.
// Private chats only.
func (b *Bot) cmdStart(ctx context.Context, cmd *gateway.Command) {
	if cmd.ChatType != gateway.ChatPrivate {
		return
	}

	if _, err := b.ctrl.RegisterUser(cmd.From); err != nil {
		log.Error().Err(err).Int64("user", cmd.From).Msg("bot: failed to register user")
	}
	b.notify.Welcome(ctx, cmd.Chat)
}

// cmdFile starts a report or appeal draft. Private chats only; the
// blacklist is checked before anything else.
func (b *Bot) cmdFile(ctx context.Context, cmd *gateway.Command, kind cases.Kind) {
	if cmd.ChatType != gateway.ChatPrivate {
		return
	}

	if b.policy.IsBlacklisted(cmd.From, b.ctrl.Snapshot()) {
		b.notify.BlacklistDenied(ctx, cmd.Chat, kind)
		return
	}

	if len(cmd.Args) < 2 {
		b.notify.Usage(ctx, cmd.Chat, kind)
		return
	}

	subjectID := cmd.Args[0]
	reason := strings.Join(cmd.Args[1:], " ")

	err := b.drafts.Start(cmd.Chat, kind, subjectID, reason)
	switch {
	case err == nil:
		b.notify.EvidencePrompt(ctx, cmd.Chat, kind)
	default:
		var inProgress *cases.DraftInProgressError
		if errors.As(err, &inProgress) {
			b.notify.DraftInProgress(ctx, cmd.Chat, inProgress.Kind)
			return
		}
		b.notify.Usage(ctx, cmd.Chat, kind)
	}
}

// cmdDone finalizes the active draft and commits it as a case.
func (b *Bot) cmdDone(ctx context.Context, cmd *gateway.Command) {
	draft, err := b.drafts.Finalize(cmd.Chat)
	if err != nil {
		b.notify.NoActiveDraft(ctx, cmd.Chat)
		return
	}
	b.commitDraft(ctx, cmd.Chat, draft)
}

// commitDraft persists a finalized draft. On a failed save the user is
// told the submission did not go through; nothing was mutated.
func (b *Bot) commitDraft(ctx context.Context, chatID int64, draft cases.Draft) {
	c, err := b.ctrl.Commit(draft.Kind, draft)
	if err != nil {
		log.Error().Err(err).Int64("actor", draft.ActorID).Msg("bot: commit failed")
		b.notify.SubmitFailed(ctx, chatID)
		return
	}
	metrics.CasesSubmittedTotal.WithLabelValues(string(c.Kind)).Inc()
	b.notify.Submitted(ctx, chatID, c.Kind)
}

// cmdCancel discards the active draft, if any.
func (b *Bot) cmdCancel(ctx context.Context, cmd *gateway.Command) {
	if _, ok := b.drafts.Active(cmd.Chat); !ok {
		b.notify.NoActiveDraft(ctx, cmd.Chat)
		return
	}
	b.drafts.Discard(cmd.Chat)
	b.notify.Discarded(ctx, cmd.Chat)
}

// cmdViewCases sends one card per case of the given kind. Sudo only;
// denial is silent.
func (b *Bot) cmdViewCases(ctx context.Context, cmd *gateway.Command, kind cases.Kind) {
	if !b.policy.IsSudo(cmd.From, b.ctrl.Snapshot()) {
		return
	}
	for _, c := range b.ctrl.ListByStatus(kind, "") {
		b.notify.CaseCard(ctx, cmd.Chat, c)
	}
}

// parseIDArg extracts a digits-only user id from the first argument.
func parseIDArg(args []string) (int64, bool) {
	if len(args) == 0 || !cases.IsDigits(args[0]) {
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// cmdAddSudo grants moderator privilege. Owner only; visible denial.
func (b *Bot) cmdAddSudo(ctx context.Context, cmd *gateway.Command) {
	if !b.policy.IsOwner(cmd.From) {
		b.notify.PermissionDenied(ctx, cmd.Chat)
		return
	}

	userID, ok := parseIDArg(cmd.Args)
	if !ok {
		b.notify.InvalidUserID(ctx, cmd.Chat)
		return
	}

	added, err := b.ctrl.AddSudo(userID)
	if err != nil {
		log.Error().Err(err).Int64("user", userID).Msg("bot: addsudo failed")
		b.notify.SubmitFailed(ctx, cmd.Chat)
		return
	}
	b.notify.SudoAdded(ctx, cmd.Chat, userID, added)
}

// cmdRemoveSudo revokes moderator privilege. Owner only; visible
// denial.
func (b *Bot) cmdRemoveSudo(ctx context.Context, cmd *gateway.Command) {
	if !b.policy.IsOwner(cmd.From) {
		b.notify.PermissionDenied(ctx, cmd.Chat)
		return
	}

	userID, ok := parseIDArg(cmd.Args)
	if !ok {
		b.notify.InvalidUserID(ctx, cmd.Chat)
		return
	}

	removed, err := b.ctrl.RemoveSudo(userID)
	if err != nil {
		log.Error().Err(err).Int64("user", userID).Msg("bot: removesudo failed")
		b.notify.SubmitFailed(ctx, cmd.Chat)
		return
	}
	b.notify.SudoRemoved(ctx, cmd.Chat, userID, removed)
}

// cmdBlacklist bars a user from filing. Sudo only; silent denial.
func (b *Bot) cmdBlacklist(ctx context.Context, cmd *gateway.Command) {
	if !b.policy.IsSudo(cmd.From, b.ctrl.Snapshot()) {
		return
	}

	userID, ok := parseIDArg(cmd.Args)
	if !ok {
		return
	}

	if _, err := b.ctrl.Blacklist(userID); err != nil {
		log.Error().Err(err).Int64("user", userID).Msg("bot: blacklist failed")
		b.notify.SubmitFailed(ctx, cmd.Chat)
		return
	}
	b.notify.Blacklisted(ctx, cmd.Chat, userID)
}

// cmdUnblacklist lifts the filing bar. Sudo only; silent denial.
func (b *Bot) cmdUnblacklist(ctx context.Context, cmd *gateway.Command) {
	if !b.policy.IsSudo(cmd.From, b.ctrl.Snapshot()) {
		return
	}

	userID, ok := parseIDArg(cmd.Args)
	if !ok {
		return
	}

	removed, err := b.ctrl.Unblacklist(userID)
	if err != nil {
		log.Error().Err(err).Int64("user", userID).Msg("bot: unblacklist failed")
		b.notify.SubmitFailed(ctx, cmd.Chat)
		return
	}
	b.notify.Unblacklisted(ctx, cmd.Chat, userID, removed)
}

// cmdViewBlacklist lists barred users. Sudo only; silent denial.
func (b *Bot) cmdViewBlacklist(ctx context.Context, cmd *gateway.Command) {
	snapshot := b.ctrl.Snapshot()
	if !b.policy.IsSudo(cmd.From, snapshot) {
		return
	}
	b.notify.BlacklistList(ctx, cmd.Chat, snapshot.Blacklist)
}

// cmdMessage sends a direct admin message to a user. Sudo only;
// silent denial.
func (b *Bot) cmdMessage(ctx context.Context, cmd *gateway.Command) {
	if !b.policy.IsSudo(cmd.From, b.ctrl.Snapshot()) {
		return
	}

	userID, ok := parseIDArg(cmd.Args)
	if !ok || len(cmd.Args) < 2 {
		b.notify.DirectUsage(ctx, cmd.Chat)
		return
	}

	b.notify.Direct(ctx, cmd.Chat, userID, strings.Join(cmd.Args[1:], " "))
}

// cmdBroadcast fans a message out to the user registry. Owner only;
// visible denial.
func (b *Bot) cmdBroadcast(ctx context.Context, cmd *gateway.Command) {
	if !b.policy.IsOwner(cmd.From) {
		b.notify.BroadcastDenied(ctx, cmd.Chat)
		return
	}

	message := strings.Join(cmd.Args, " ")
	if strings.TrimSpace(message) == "" {
		b.notify.BroadcastEmpty(ctx, cmd.Chat)
		return
	}

	snapshot := b.ctrl.Snapshot()
	sent, failed := b.notify.Broadcast(ctx, snapshot.Users, message)

	log.Info().Int("sent", sent).Int("failed", failed).Msg("bot: broadcast complete")
	b.notify.BroadcastDone(ctx, cmd.Chat, sent, failed)
}
