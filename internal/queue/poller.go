package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/huecmd/internal/hue"
)

// Sender delivers a raw command to the bridge
type Sender interface {
	Send(ctx context.Context, method, path, body string) (*hue.Response, error)
}

// Options configures a Poller
type Options struct {
	Username     string
	MaxMessages  int
	WaitTime     time.Duration
	PollInterval time.Duration
}

// Poller receives light commands from a queue and sends them to the bridge.
//
// Each cycle receives a batch, sends every message in order, deletes the
// whole batch and sleeps for PollInterval. Messages are deleted whatever the
// bridge answered, so a crash between sending and deleting redelivers them.
type Poller struct {
	queue  Queue
	sender Sender
	opts   Options
}

// NewPoller creates a new Poller
func NewPoller(q Queue, sender Sender, opts Options) *Poller {
	if opts.MaxMessages <= 0 {
		opts.MaxMessages = 10
	}
	return &Poller{
		queue:  q,
		sender: sender,
		opts:   opts,
	}
}

// Run polls until a receive fails or ctx is cancelled, both of which end
// the loop without error. Errors other than malformed messages stop the
// loop before the current batch is deleted and are returned.
func (p *Poller) Run(ctx context.Context) error {
	log.Info().Str("queue", p.queue.URL()).Msg("Monitoring queue for light commands - Ctrl-C to stop")

	for {
		messages, err := p.queue.Receive(ctx, p.opts.MaxMessages, p.opts.WaitTime)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var re *ReceiveError
			if errors.As(err, &re) && re.StatusCode != 0 {
				log.Info().Int("status", re.StatusCode).Msg("Queue returned non-OK status, stopping")
			} else {
				log.Info().Err(err).Msg("Queue receive failed, stopping")
			}
			return nil
		}

		if len(messages) > 0 {
			messagesReceived.Add(float64(len(messages)))
			if err := p.processBatch(ctx, messages); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}

		if !sleep(ctx, p.opts.PollInterval) {
			return nil
		}
	}
}

func (p *Poller) processBatch(ctx context.Context, messages []Message) error {
	for _, msg := range messages {
		err := p.handle(ctx, msg)
		if errors.Is(err, ErrMalformedMessage) {
			messagesMalformed.Inc()
			log.Warn().Err(err).Str("message_id", msg.ID).Msg("Skipping malformed message")
			continue
		}
		if err != nil {
			return err
		}
	}

	for _, msg := range messages {
		if err := p.queue.Delete(ctx, msg); err != nil {
			return fmt.Errorf("failed to delete message %s: %w", msg.ID, err)
		}
		messagesDeleted.Inc()
	}

	log.Debug().Int("count", len(messages)).Msg("Batch processed")
	return nil
}

func (p *Poller) handle(ctx context.Context, msg Message) error {
	log.Info().Str("message_id", msg.ID).Str("body", msg.Body).Msg("Message received")

	cmd, err := ParseCommand(msg.Body, p.opts.Username)
	if err != nil {
		return err
	}

	log.Info().Str("action", cmd.Action).Str("path", cmd.Path).Str("body", cmd.Body).Msg("Sending light command")
	_, err = p.sender.Send(ctx, cmd.Action, cmd.Path, cmd.Body)
	return err
}

// sleep waits for d, returning false if ctx ends first
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
