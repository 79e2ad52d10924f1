// Package bot routes inbound gateway updates to the case workflow:
// access checks, draft mutations, lifecycle operations, and the
// notifications that confirm them.
package bot

import (
	"context"

	"fedcase/internal/access"
	"fedcase/internal/cases"
	"fedcase/internal/gateway"
	"fedcase/internal/metrics"
	"fedcase/internal/notify"

	"github.com/rs/zerolog/log"
)

// Bot wires the gateway to the case workflow.
type Bot struct {
	gw     gateway.Gateway
	ctrl   *cases.Controller
	drafts *cases.DraftManager
	policy access.Policy
	notify *notify.Dispatcher
}

// New creates a bot with all dependencies injected.
func New(gw gateway.Gateway, ctrl *cases.Controller, drafts *cases.DraftManager, policy access.Policy, dispatcher *notify.Dispatcher) *Bot {
	return &Bot{
		gw:     gw,
		ctrl:   ctrl,
		drafts: drafts,
		policy: policy,
		notify: dispatcher,
	}
}

// Run processes updates until ctx is cancelled. Updates are handled
// one at a time: each read-modify-write cycle completes before the
// next begins, which is the serialization the store model requires.
func (b *Bot) Run(ctx context.Context) error {
	updates, err := b.gw.Updates(ctx)
	if err != nil {
		return err
	}

	log.Info().Msg("bot: processing updates")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			b.handle(ctx, u)
		}
	}
}

func (b *Bot) handle(ctx context.Context, u gateway.Update) {
	switch {
	case u.Command != nil:
		metrics.UpdatesTotal.WithLabelValues("command").Inc()
		log.Debug().
			Str("verb", u.Command.Verb).
			Int64("from", u.Command.From).
			Str("chat_type", string(u.Command.ChatType)).
			Msg("bot: command")
		b.handleCommand(ctx, u.Command)
	case u.Callback != nil:
		metrics.UpdatesTotal.WithLabelValues("callback").Inc()
		log.Debug().
			Str("token", u.Callback.Token).
			Int64("from", u.Callback.From).
			Msg("bot: callback")
		b.handleCallback(ctx, u.Callback)
	case u.Media != nil:
		metrics.UpdatesTotal.WithLabelValues("media").Inc()
		b.handleMedia(ctx, u.Media)
	}
}
