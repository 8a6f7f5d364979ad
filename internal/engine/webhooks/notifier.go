package webhooks

import (
	"context"

	"github.com/rs/zerolog/log"
)

type Sender interface {
	Send(ctx context.Context, rawURL string, event *Event) DispatchResult
}

// Notifier runs the notification phase of a mutating request: resolve the
// destination, load the recipient's preferences, build the event and send it.
// It never fails the caller; the result is only informational.
type Notifier struct {
	resolver    *Resolver
	preferences *PreferenceResolver
	sender      Sender
}

func NewNotifier(resolver *Resolver, preferences *PreferenceResolver, sender Sender) *Notifier {
	return &Notifier{
		resolver:    resolver,
		preferences: preferences,
		sender:      sender,
	}
}

func (n *Notifier) Notify(ctx context.Context, category Category, action Action, c Context) (result DispatchResult) {
	logger := log.With().Str("action", string(action)).Str("category", string(category)).Logger()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("recovered from panic in webhook notification")
			result = DispatchResult{}
		}
	}()

	// The primary response may be written before delivery finishes; only the
	// dispatcher timeout bounds the attempt.
	ctx = context.WithoutCancel(ctx)

	recipient := c.Recipient()
	url := n.resolver.Resolve(ctx, category, recipient)
	if url == "" {
		logger.Debug().Msg("no webhook destination configured, skipping")
		return DispatchResult{}
	}

	c.Preferences = n.preferences.Get(ctx, recipient)

	event, err := BuildPayload(action, c)
	if err != nil {
		logger.Error().Err(err).Msg("failed to build webhook payload")
		return DispatchResult{}
	}

	result = n.sender.Send(ctx, url, event)
	logger.Info().
		Str("url", url).
		Str("recipient", recipient).
		Bool("success", result.Success).
		Bool("user_notified", result.UserNotified).
		Msg("webhook dispatched")
	return result
}
