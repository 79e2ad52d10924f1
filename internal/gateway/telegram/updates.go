package telegram

import (
	"context"
	"strings"
	"time"

	"fedcase/internal/gateway"

	"github.com/rs/zerolog/log"
)

// Bot API update wire types, limited to the fields the bot consumes.
type wireUser struct {
	ID int64 `json:"id"`
}

type wireChat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

type wirePhotoSize struct {
	FileID string `json:"file_id"`
}

type wireVideo struct {
	FileID string `json:"file_id"`
}

type wireMessage struct {
	MessageID int             `json:"message_id"`
	From      *wireUser       `json:"from"`
	Chat      wireChat        `json:"chat"`
	Text      string          `json:"text"`
	Photo     []wirePhotoSize `json:"photo"`
	Video     *wireVideo      `json:"video"`
}

type wireCallbackQuery struct {
	ID      string       `json:"id"`
	From    wireUser     `json:"from"`
	Data    string       `json:"data"`
	Message *wireMessage `json:"message"`
}

type wireUpdate struct {
	UpdateID      int64              `json:"update_id"`
	Message       *wireMessage       `json:"message"`
	CallbackQuery *wireCallbackQuery `json:"callback_query"`
}

// Updates long-polls getUpdates and translates Bot API updates into
// gateway updates until ctx is cancelled.
func (c *Client) Updates(ctx context.Context) (<-chan gateway.Update, error) {
	out := make(chan gateway.Update)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			batch, err := c.getUpdates(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Warn().Err(err).Msg("telegram: getUpdates failed, retrying")
				select {
				case <-ctx.Done():
					return
				case <-time.After(3 * time.Second):
				}
				continue
			}

			for _, wu := range batch {
				if wu.UpdateID >= c.offset {
					c.offset = wu.UpdateID + 1
				}
				u, ok := translate(wu)
				if !ok {
					continue
				}
				select {
				case <-ctx.Done():
					return
				case out <- u:
				}
			}
		}
	}()

	return out, nil
}

func (c *Client) getUpdates(ctx context.Context) ([]wireUpdate, error) {
	var batch []wireUpdate
	err := c.call(ctx, "getUpdates", map[string]interface{}{
		"offset":          c.offset,
		"timeout":         pollTimeout,
		"allowed_updates": []string{"message", "callback_query"},
	}, &batch)
	return batch, err
}

// translate maps a Bot API update onto the gateway's tagged union.
// Updates the bot has no use for are dropped.
func translate(wu wireUpdate) (gateway.Update, bool) {
	if cq := wu.CallbackQuery; cq != nil && cq.Message != nil {
		return gateway.Update{Callback: &gateway.Callback{
			ID:        cq.ID,
			Token:     cq.Data,
			From:      cq.From.ID,
			Chat:      cq.Message.Chat.ID,
			MessageID: cq.Message.MessageID,
		}}, true
	}

	msg := wu.Message
	if msg == nil || msg.From == nil {
		return gateway.Update{}, false
	}

	if strings.HasPrefix(msg.Text, "/") {
		verb, args := splitCommand(msg.Text)
		return gateway.Update{Command: &gateway.Command{
			Verb:     verb,
			Args:     args,
			From:     msg.From.ID,
			Chat:     msg.Chat.ID,
			ChatType: gateway.ChatType(msg.Chat.Type),
		}}, true
	}

	if fileID := mediaFileID(msg); fileID != "" {
		return gateway.Update{Media: &gateway.Media{
			From:   msg.From.ID,
			Chat:   msg.Chat.ID,
			FileID: fileID,
		}}, true
	}

	return gateway.Update{}, false
}

// splitCommand parses "/verb@botname arg arg" into a lowercase verb
// and its arguments.
func splitCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	verb := strings.TrimPrefix(fields[0], "/")
	if at := strings.Index(verb, "@"); at != -1 {
		verb = verb[:at]
	}
	return strings.ToLower(verb), fields[1:]
}

// mediaFileID picks the file id of a photo (largest size last per the
// Bot API) or video, or "" when the message carries neither.
func mediaFileID(msg *wireMessage) string {
	if len(msg.Photo) > 0 {
		return msg.Photo[len(msg.Photo)-1].FileID
	}
	if msg.Video != nil {
		return msg.Video.FileID
	}
	return ""
}
