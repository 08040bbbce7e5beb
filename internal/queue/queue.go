// Package queue polls a message queue for light commands and forwards them
// to the bridge.
package queue

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Message is a single received queue message
type Message struct {
	ID            string
	Body          string
	ReceiptHandle string
}

// Queue is a message queue holding light commands
type Queue interface {
	// URL identifies the queue in logs
	URL() string
	// Receive waits up to wait for at most max messages
	Receive(ctx context.Context, max int, wait time.Duration) ([]Message, error)
	// Delete removes a received message
	Delete(ctx context.Context, msg Message) error
	// Send enqueues a message body
	Send(ctx context.Context, body string) error
}

// ReceiveError reports a non-OK answer from the queue service
type ReceiveError struct {
	StatusCode int // 0 when the service never answered
	Err        error
}

func (e *ReceiveError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("queue receive failed with HTTP status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("queue receive failed: %v", e.Err)
}

func (e *ReceiveError) Unwrap() error {
	return e.Err
}

// IsReceiveError reports whether err came from a failed receive
func IsReceiveError(err error) bool {
	var re *ReceiveError
	return errors.As(err, &re)
}
