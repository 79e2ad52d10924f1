// Package gateway defines the messaging transport contract consumed
// by the bot. The concrete transport (Telegram) lives in a subpackage;
// the bot only sees semantic updates and send capabilities.
package gateway

import "context"

// ChatType distinguishes private conversations from group chats.
type ChatType string

const (
	ChatPrivate    ChatType = "private"
	ChatGroup      ChatType = "group"
	ChatSupergroup ChatType = "supergroup"
	ChatChannel    ChatType = "channel"
)

// Command is a slash command sent by a user.
type Command struct {
	Verb     string
	Args     []string
	From     int64
	Chat     int64
	ChatType ChatType
}

// Callback is an inline-choice press. Token carries the semantic
// action string attached to the button.
type Callback struct {
	ID        string
	Token     string
	From      int64
	Chat      int64
	MessageID int
}

// Media is a photo or video submission.
type Media struct {
	From   int64
	Chat   int64
	FileID string
}

// Update is a tagged union of the inbound event kinds. Exactly one
// field is non-nil.
type Update struct {
	Command  *Command
	Callback *Callback
	Media    *Media
}

// Button is one inline choice. Pressing it yields a Callback carrying
// Token.
type Button struct {
	Label string
	Token string
}

// Gateway is the messaging transport. All outbound text is HTML.
type Gateway interface {
	// Updates starts delivering inbound updates until ctx is
	// cancelled. The channel is closed on shutdown.
	Updates(ctx context.Context) (<-chan Update, error)

	SendMessage(ctx context.Context, chatID int64, html string) error
	SendChoice(ctx context.Context, chatID int64, html string, buttons [][]Button) error
	EditMessage(ctx context.Context, chatID int64, messageID int, html string) error
	SendPhoto(ctx context.Context, chatID int64, path, caption string) error
	SendVideo(ctx context.Context, chatID int64, path, caption string) error
	AnswerCallback(ctx context.Context, callbackID string) error

	// FetchFile downloads the media behind fileID and returns a local
	// file reference suitable for storing as case evidence.
	FetchFile(ctx context.Context, fileID string) (string, error)
}
