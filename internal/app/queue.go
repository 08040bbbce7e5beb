package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/huecmd/internal/config"
	"github.com/dokzlo13/huecmd/internal/queue"
	"github.com/dokzlo13/huecmd/internal/queue/spool"
	"github.com/dokzlo13/huecmd/internal/queue/sqs"
)

// OpenQueue opens the queue backend selected by queue.driver.
// The returned func releases the backend.
func OpenQueue(ctx context.Context, cfg *config.Config) (queue.Queue, func(), error) {
	switch cfg.Queue.Driver {
	case "sqs":
		if cfg.Hue.Queue == "" {
			return nil, nil, fmt.Errorf("hue.queue is not configured")
		}
		q, err := sqs.Open(ctx, cfg.Hue.Queue, cfg.Queue.Region, cfg.Queue.Endpoint)
		if err != nil {
			return nil, nil, err
		}
		return q, func() {}, nil

	case "spool":
		s, err := spool.Open(cfg.Queue.Path, cfg.Queue.VisibilityTimeout.Duration())
		if err != nil {
			return nil, nil, err
		}
		return s, func() {
			if err := s.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close spool")
			}
		}, nil

	default:
		return nil, nil, fmt.Errorf("unknown queue driver %q", cfg.Queue.Driver)
	}
}
