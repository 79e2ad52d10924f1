package bot

import (
	"context"
	"fmt"
	"sync"

	"fedcase/internal/gateway"
)

// fakeGateway records every outbound call for assertions and serves
// canned inbound behavior. Used by the bot tests.
type fakeGateway struct {
	mu sync.Mutex

	messages []fakeMessage
	choices  []fakeChoice
	edits    []fakeEdit
	photos   []fakeFile
	videos   []fakeFile
	answered []string
	fetched  []string

	// failChats makes SendMessage fail for the listed chat ids.
	failChats map[int64]bool
}

type fakeMessage struct {
	Chat int64
	HTML string
}

type fakeChoice struct {
	Chat    int64
	HTML    string
	Buttons [][]gateway.Button
}

type fakeEdit struct {
	Chat      int64
	MessageID int
	HTML      string
}

type fakeFile struct {
	Chat    int64
	Path    string
	Caption string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{failChats: make(map[int64]bool)}
}

func (g *fakeGateway) Updates(ctx context.Context) (<-chan gateway.Update, error) {
	ch := make(chan gateway.Update)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

func (g *fakeGateway) SendMessage(ctx context.Context, chatID int64, html string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failChats[chatID] {
		return fmt.Errorf("chat %d unreachable", chatID)
	}
	g.messages = append(g.messages, fakeMessage{Chat: chatID, HTML: html})
	return nil
}

func (g *fakeGateway) SendChoice(ctx context.Context, chatID int64, html string, buttons [][]gateway.Button) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.choices = append(g.choices, fakeChoice{Chat: chatID, HTML: html, Buttons: buttons})
	return nil
}

func (g *fakeGateway) EditMessage(ctx context.Context, chatID int64, messageID int, html string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.edits = append(g.edits, fakeEdit{Chat: chatID, MessageID: messageID, HTML: html})
	return nil
}

func (g *fakeGateway) SendPhoto(ctx context.Context, chatID int64, path, caption string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.photos = append(g.photos, fakeFile{Chat: chatID, Path: path, Caption: caption})
	return nil
}

func (g *fakeGateway) SendVideo(ctx context.Context, chatID int64, path, caption string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.videos = append(g.videos, fakeFile{Chat: chatID, Path: path, Caption: caption})
	return nil
}

func (g *fakeGateway) AnswerCallback(ctx context.Context, callbackID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.answered = append(g.answered, callbackID)
	return nil
}

func (g *fakeGateway) FetchFile(ctx context.Context, fileID string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fetched = append(g.fetched, fileID)
	return "evidence/" + fileID + ".jpg", nil
}

// messagesFor returns the HTML of every plain message sent to a chat.
func (g *fakeGateway) messagesFor(chatID int64) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []string
	for _, m := range g.messages {
		if m.Chat == chatID {
			out = append(out, m.HTML)
		}
	}
	return out
}

var _ gateway.Gateway = (*fakeGateway)(nil)
