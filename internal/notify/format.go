package notify

import (
	"fmt"
	"strings"

	"fedcase/internal/cases"
	"fedcase/internal/gateway"
)

// Message formatting is kept in pure functions so the exact HTML the
// bot emits is snapshot-tested.

func welcomeText() string {
	return "🚀 <b>Welcome to Covalent Federation Bot</b>\n\n" +
		"This bot helps you report users for a Federation ban and submit appeals for unbans.\n\n" +
		"📌 <b>How to Use</b>\n" +
		"➖ <code>/report &lt;user_id&gt; &lt;reason&gt;</code> – Report a user for misconduct\n" +
		"➖ <code>/appeal &lt;user_id&gt; &lt;reason&gt;</code> – Request a review of your ban\n\n" +
		"⚠️ <b>Important Notes</b>\n" +
		"❌ False reports may result in a blacklist from using this bot.\n" +
		"📸 Ensure you provide a valid reason with supporting evidence.\n\n" +
		"💬 Need help? Contact us at <b>@CovalentOS</b>."
}

func usageText(kind cases.Kind) string {
	return fmt.Sprintf("⚠️ <b>Usage:</b> <code>/%s &lt;user_id&gt; &lt;reason&gt;</code>", kind)
}

func blacklistedText(kind cases.Kind) string {
	verb := "reporting"
	if kind == cases.KindAppeal {
		verb = "appealing"
	}
	return fmt.Sprintf("🚫 <b>You are blacklisted from %s.</b>", verb)
}

func draftInProgressText(kind cases.Kind) string {
	return fmt.Sprintf(
		"⚠️ <b>You already have a %s in progress.</b>\nFinish it with <code>/done</code> or discard it with <code>/cancel</code>.",
		kind,
	)
}

func evidencePromptText() string {
	return "📌 <b>Do you want to submit evidence?</b>"
}

func evidenceButtons(kind cases.Kind) [][]gateway.Button {
	return [][]gateway.Button{{
		{Label: "✅ Yes", Token: string(kind) + "_evidence_yes"},
		{Label: "❌ No", Token: string(kind) + "_evidence_no"},
	}}
}

func evidenceRequestText() string {
	return "📸 <b>Send your evidence</b> (images/videos)."
}

func evidenceReceivedText() string {
	return "📥 <b>Evidence received.</b> Send more or type <code>/done</code> if finished."
}

func submittedText(kind cases.Kind) string {
	return fmt.Sprintf("✅ <b>Your %s has been submitted!</b>", kind)
}

func discardedText() string {
	return "🗑️ <b>Draft discarded.</b>"
}

func noActiveDraftText() string {
	return "ℹ️ <b>No report or appeal in progress.</b> Start one with <code>/report</code> or <code>/appeal</code>."
}

func submitFailedText() string {
	return "⚠️ <b>Could not save your submission.</b> Please try again later."
}

func permissionDeniedText() string {
	return "❌ You do not have permission to perform this action!"
}

func invalidUserIDText() string {
	return "❌ Invalid input. Please provide a valid user ID."
}

// titleKind renders a kind for card headings ("Report"/"Appeal").
func titleKind(kind cases.Kind) string {
	return strings.ToUpper(string(kind[:1])) + string(kind[1:])
}

func caseCardText(c cases.Case) string {
	byLabel, subjectLabel := "Reported By", "Reported User"
	if c.Kind == cases.KindAppeal {
		byLabel, subjectLabel = "Appealed By", "Appealed User"
	}
	return fmt.Sprintf(
		"📝 <b>%s ID:</b> <code>%s</code>\n"+
			"👤 <b>%s:</b> <code>%d</code>\n"+
			"👤 <b>%s:</b> <code>%s</code>\n"+
			"📌 <b>Reason:</b> %s\n"+
			"📌 <b>Status:</b> <code>%s</code>",
		titleKind(c.Kind), c.ID, byLabel, c.ActorID, subjectLabel, c.SubjectID, c.Reason, c.Status,
	)
}

func caseCardButtons(c cases.Case) [][]gateway.Button {
	kind, id := string(c.Kind), c.ID
	return [][]gateway.Button{
		{
			{Label: "✅ Approve", Token: "approve_" + kind + "_" + id},
			{Label: "❌ Reject", Token: "reject_" + kind + "_" + id},
		},
		{{Label: "📂 Check Evidence", Token: "evidence_" + kind + "_" + id}},
		{{Label: "🗑 Delete", Token: "delete_" + kind + "_" + id}},
	}
}

func decidedText(kind cases.Kind, caseID string, d cases.Decision) string {
	return fmt.Sprintf(
		"✅ <b>%s ID:</b> <code>%s</code> has been <b>%sd</b>.",
		titleKind(kind), caseID, d,
	)
}

func deletedText(kind cases.Kind) string {
	return fmt.Sprintf("🗑️ <b>%s deleted successfully.</b>", titleKind(kind))
}

func caseGoneText(kind cases.Kind) string {
	return fmt.Sprintf("❌ <b>%s no longer exists.</b>", titleKind(kind))
}

func noEvidenceText() string {
	return "❌ <b>No evidence provided</b> for this request."
}

func unsupportedEvidenceText(ref string) string {
	return fmt.Sprintf("⚠️ <b>Unsupported file format:</b> <code>%s</code>", ref)
}

func sudoAddedText(userID int64) string {
	return fmt.Sprintf("✅ <b>User %d added as sudo user.</b>", userID)
}

func sudoAlreadyText(userID int64) string {
	return fmt.Sprintf("⚠️ <b>User %d is already a sudo user.</b>", userID)
}

func sudoRemovedText(userID int64) string {
	return fmt.Sprintf("❌ <b>Sudo user removed!</b>\n👤 <b>User ID:</b> <code>%d</code>", userID)
}

func sudoNotFoundText(userID int64) string {
	return fmt.Sprintf("❌ <b>User ID:</b> <code>%d</code> is not a sudo user.", userID)
}

func blacklistAddedText(userID int64) string {
	return fmt.Sprintf("🚫 <b>User Blacklisted</b>\n👤 <b>User ID:</b> <code>%d</code>", userID)
}

func blacklistRemovedText(userID int64) string {
	return fmt.Sprintf("✅ <b>User Removed from Blacklist</b>\n👤 <b>User ID:</b> <code>%d</code>", userID)
}

func blacklistNotFoundText(userID int64) string {
	return fmt.Sprintf("ℹ️ <b>User Not Found in Blacklist</b>\n👤 <b>User ID:</b> <code>%d</code>", userID)
}

func blacklistListText(ids []int64) string {
	if len(ids) == 0 {
		return "✅ <b>No users are blacklisted.</b>"
	}
	lines := make([]string, 0, len(ids))
	for _, id := range ids {
		lines = append(lines, fmt.Sprintf("👤 <code>%d</code>", id))
	}
	return "📜 <b>Blacklisted Users:</b>\n" + strings.Join(lines, "\n")
}

func directMessageText(text string) string {
	return "📩 <b>Message from Admin:</b>\n\n" + text
}

func directSentText(userID int64) string {
	return fmt.Sprintf("✅ <b>Message Sent!</b>\n👤 <b>User ID:</b> <code>%d</code>", userID)
}

func directFailedText(err error) string {
	return fmt.Sprintf("⚠️ <b>Failed to Send Message</b>\n💬 <b>Error:</b> <code>%s</code>", err)
}

func directUsageText() string {
	return "❌ <b>Invalid Usage!</b>\n📝 <b>Usage:</b> <code>/message &lt;user_id&gt; &lt;text&gt;</code>"
}

func broadcastText(message string) string {
	return fmt.Sprintf("💬 <b>Broadcast Message:</b>\n\n<b>%s</b>\n\n", message)
}

func broadcastDoneText(sent, failed int) string {
	if failed > 0 {
		return fmt.Sprintf("📤 Broadcast sent to %d users (%d failed).", sent, failed)
	}
	return "📤 Broadcast sent successfully!"
}

func broadcastDeniedText() string {
	return "You are not authorized to use this command."
}

func broadcastEmptyText() string {
	return "Please provide a message to broadcast."
}
