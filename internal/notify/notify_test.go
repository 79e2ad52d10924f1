package notify

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"fedcase/internal/gateway"

	"github.com/stretchr/testify/assert"
)

type stubGateway struct {
	mu sync.Mutex

	messages  map[int64][]string
	photos    []string
	videos    []string
	failChats map[int64]bool
}

func newStubGateway() *stubGateway {
	return &stubGateway{
		messages:  make(map[int64][]string),
		failChats: make(map[int64]bool),
	}
}

func (g *stubGateway) Updates(ctx context.Context) (<-chan gateway.Update, error) {
	return nil, nil
}

func (g *stubGateway) SendMessage(ctx context.Context, chatID int64, html string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failChats[chatID] {
		return fmt.Errorf("chat %d unreachable", chatID)
	}
	g.messages[chatID] = append(g.messages[chatID], html)
	return nil
}

func (g *stubGateway) SendChoice(ctx context.Context, chatID int64, html string, buttons [][]gateway.Button) error {
	return g.SendMessage(ctx, chatID, html)
}

func (g *stubGateway) EditMessage(ctx context.Context, chatID int64, messageID int, html string) error {
	return g.SendMessage(ctx, chatID, html)
}

func (g *stubGateway) SendPhoto(ctx context.Context, chatID int64, path, caption string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.photos = append(g.photos, path)
	return nil
}

func (g *stubGateway) SendVideo(ctx context.Context, chatID int64, path, caption string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.videos = append(g.videos, path)
	return nil
}

func (g *stubGateway) AnswerCallback(ctx context.Context, callbackID string) error { return nil }

func (g *stubGateway) FetchFile(ctx context.Context, fileID string) (string, error) {
	return "", nil
}

var _ gateway.Gateway = (*stubGateway)(nil)

func TestBroadcastCountsOutcomes(t *testing.T) {
	gw := newStubGateway()
	gw.failChats[222] = true
	gw.failChats[444] = true
	d := NewDispatcher(gw, 4)

	sent, failed := d.Broadcast(context.Background(), []int64{111, 222, 333, 444, 555}, "hello")

	assert.Equal(t, 3, sent)
	assert.Equal(t, 2, failed)
	assert.Len(t, gw.messages[111], 1)
	assert.Empty(t, gw.messages[222])
}

func TestBroadcastNoUsers(t *testing.T) {
	gw := newStubGateway()
	d := NewDispatcher(gw, 4)

	sent, failed := d.Broadcast(context.Background(), nil, "hello")

	assert.Zero(t, sent)
	assert.Zero(t, failed)
}

func TestBroadcastLimitFloor(t *testing.T) {
	gw := newStubGateway()
	d := NewDispatcher(gw, 0)

	sent, _ := d.Broadcast(context.Background(), []int64{1, 2, 3}, "hello")
	assert.Equal(t, 3, sent)
}

func TestEvidenceRoutesByExtension(t *testing.T) {
	gw := newStubGateway()
	d := NewDispatcher(gw, 1)

	refs := []string{
		"evidence/a.jpg",
		"evidence/b.PNG",
		"evidence/c.mp4",
		"evidence/d.txt",
	}
	d.Evidence(context.Background(), 555, refs)

	assert.Equal(t, []string{"evidence/a.jpg", "evidence/b.PNG"}, gw.photos)
	assert.Equal(t, []string{"evidence/c.mp4"}, gw.videos)

	msgs := gw.messages[555]
	assert.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "Unsupported file format")
	assert.Contains(t, msgs[0], "evidence/d.txt")
}

func TestEvidenceEmpty(t *testing.T) {
	gw := newStubGateway()
	d := NewDispatcher(gw, 1)

	d.Evidence(context.Background(), 555, nil)

	msgs := gw.messages[555]
	assert.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "No evidence provided")
}

func TestDirectReportsOutcome(t *testing.T) {
	gw := newStubGateway()
	d := NewDispatcher(gw, 1)

	d.Direct(context.Background(), 555, 777, "your appeal was reviewed")
	assert.Contains(t, gw.messages[777][0], "your appeal was reviewed")
	assert.Contains(t, gw.messages[555][0], "Message Sent")

	gw.failChats[888] = true
	d.Direct(context.Background(), 555, 888, "hello")
	assert.Contains(t, gw.messages[555][1], "Failed to Send Message")
}
