// Package ledger implements the group expense workflow: resolving users from
// device identifiers, forming groups through join codes, and approving
// expenses once a strict majority of a group's members endorses them.
//
// Every mutation is announced to the group's room through a notify.Publisher.
// Publishing is best-effort: a failed notification is logged and never undoes
// or fails the mutation it describes.
package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmynk/splitvote/internal/metrics"
	"github.com/mmynk/splitvote/internal/notify"
)

const (
	DefaultStoreTimeout     = 5 * time.Second
	DefaultJoinCodeLength   = 6
	DefaultJoinCodeAttempts = 5
)

// Options configures the ledger components. Zero values select defaults.
type Options struct {
	// StoreTimeout bounds every operation's storage calls.
	StoreTimeout time.Duration

	// JoinCodeLength is the length of generated join codes.
	JoinCodeLength int

	// JoinCodeAttempts is how many join codes CreateGroup tries before giving up.
	JoinCodeAttempts int

	// JoinCodes overrides join code generation.
	JoinCodes JoinCodeGenerator

	// Policy decides who may approve join requests. Defaults to AllowAnyCaller.
	Policy JoinPolicy

	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.StoreTimeout <= 0 {
		o.StoreTimeout = DefaultStoreTimeout
	}
	if o.JoinCodeLength <= 0 {
		o.JoinCodeLength = DefaultJoinCodeLength
	}
	if o.JoinCodeAttempts <= 0 {
		o.JoinCodeAttempts = DefaultJoinCodeAttempts
	}
	if o.JoinCodes == nil {
		length := o.JoinCodeLength
		o.JoinCodes = func() (string, error) { return GenerateJoinCode(length) }
	}
	if o.Policy == nil {
		o.Policy = AllowAnyCaller
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// core holds what every component shares: the storage deadline, the logger
// and the notification channel.
type core struct {
	timeout   time.Duration
	logger    *slog.Logger
	publisher notify.Publisher
}

func newCore(opts Options, publisher notify.Publisher) core {
	if publisher == nil {
		publisher = notify.Discard
	}
	return core{timeout: opts.StoreTimeout, logger: opts.Logger, publisher: publisher}
}

// bounded returns a context that expires after the storage timeout.
func (c core) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

// publish announces evt to room, logging and swallowing any failure.
func (c core) publish(room string, evt notify.Event) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordNotification(evt.Name, metrics.OutcomeFailed)
			c.logger.Error("Notification publisher panicked", "room", room, "event", evt.Name, "panic", r)
		}
	}()

	if err := c.publisher.Publish(room, evt); err != nil {
		metrics.RecordNotification(evt.Name, metrics.OutcomeFailed)
		c.logger.Warn("Notification failed", "room", room, "event", evt.Name, "error", err)
	}
}
