package queue

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/dokzlo13/huecmd/internal/hue"
)

type fakeQueue struct {
	batches  [][]Message
	failWith error
	receives int
	deleted  []Message
}

func (q *fakeQueue) URL() string { return "fake://lights" }

func (q *fakeQueue) Receive(ctx context.Context, max int, wait time.Duration) ([]Message, error) {
	q.receives++
	if len(q.batches) == 0 {
		if q.failWith != nil {
			return nil, q.failWith
		}
		return nil, &ReceiveError{StatusCode: http.StatusForbidden, Err: errors.New("denied")}
	}
	batch := q.batches[0]
	q.batches = q.batches[1:]
	return batch, nil
}

func (q *fakeQueue) Delete(ctx context.Context, msg Message) error {
	q.deleted = append(q.deleted, msg)
	return nil
}

func (q *fakeQueue) Send(ctx context.Context, body string) error { return nil }

type sentCommand struct {
	Method, Path, Body string
}

type fakeSender struct {
	sent   []sentCommand
	status int
	err    error
}

func (s *fakeSender) Send(ctx context.Context, method, path, body string) (*hue.Response, error) {
	s.sent = append(s.sent, sentCommand{method, path, body})
	if s.err != nil {
		return nil, s.err
	}
	status := s.status
	if status == 0 {
		status = http.StatusOK
	}
	return &hue.Response{Method: method, Path: path, StatusCode: status}, nil
}

func testOptions() Options {
	return Options{Username: "secret", MaxMessages: 10, WaitTime: time.Millisecond}
}

func TestPoller_DispatchesAndDeletes(t *testing.T) {
	q := &fakeQueue{batches: [][]Message{{
		{ID: "1", Body: `PUT|/api/username/lights/1/state|{"on":true}`, ReceiptHandle: "r1"},
	}}}
	s := &fakeSender{}

	if err := NewPoller(q, s, testOptions()).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(s.sent) != 1 {
		t.Fatalf("sent %d commands, want 1", len(s.sent))
	}
	want := sentCommand{"PUT", "/api/secret/lights/1/state", `{"on":true}`}
	if s.sent[0] != want {
		t.Errorf("sent %+v, want %+v", s.sent[0], want)
	}
	if len(q.deleted) != 1 || q.deleted[0].ReceiptHandle != "r1" {
		t.Errorf("deleted = %+v, want r1", q.deleted)
	}
}

func TestPoller_DeletesWholeBatchRegardlessOfOutcome(t *testing.T) {
	batch := []Message{
		{ID: "1", Body: "GET|/api/username/lights/1"},
		{ID: "2", Body: "garbage"},
		{ID: "3", Body: `PUT|/api/username/lights/9/state|{"on":false}`},
	}
	q := &fakeQueue{batches: [][]Message{batch}}
	s := &fakeSender{status: http.StatusNotFound}

	if err := NewPoller(q, s, testOptions()).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(s.sent) != 2 {
		t.Errorf("sent %d commands, want 2 (malformed skipped)", len(s.sent))
	}
	if len(q.deleted) != len(batch) {
		t.Errorf("deleted %d messages, want %d", len(q.deleted), len(batch))
	}
	for i, msg := range q.deleted {
		if msg.ID != batch[i].ID {
			t.Errorf("deleted[%d] = %s, want %s", i, msg.ID, batch[i].ID)
		}
	}
}

func TestPoller_ProcessesMessagesInOrderAcrossBatches(t *testing.T) {
	q := &fakeQueue{batches: [][]Message{
		{{ID: "a", Body: "GET|/a"}, {ID: "b", Body: "GET|/b"}},
		{},
		{{ID: "c", Body: "GET|/c"}},
	}}
	s := &fakeSender{}

	if err := NewPoller(q, s, testOptions()).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var paths []string
	for _, c := range s.sent {
		paths = append(paths, c.Path)
	}
	if len(paths) != 3 || paths[0] != "/a" || paths[1] != "/b" || paths[2] != "/c" {
		t.Errorf("sent paths = %v, want [/a /b /c]", paths)
	}
	// Three batches plus the failing receive that ends the loop
	if q.receives != 4 {
		t.Errorf("receives = %d, want 4", q.receives)
	}
}

func TestPoller_ReceiveFailureStopsLoop(t *testing.T) {
	q := &fakeQueue{}
	s := &fakeSender{}

	if err := NewPoller(q, s, testOptions()).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	if q.receives != 1 {
		t.Errorf("receives = %d, want exactly 1", q.receives)
	}
	if len(s.sent) != 0 {
		t.Errorf("sent %d commands, want 0", len(s.sent))
	}
}

func TestPoller_SendErrorStopsBeforeDelete(t *testing.T) {
	q := &fakeQueue{batches: [][]Message{{
		{ID: "1", Body: "GET|/api/username/lights/1"},
		{ID: "2", Body: "GET|/api/username/lights/2"},
	}}}
	sendErr := errors.New("connection refused")
	s := &fakeSender{err: sendErr}

	err := NewPoller(q, s, testOptions()).Run(context.Background())
	if !errors.Is(err, sendErr) {
		t.Fatalf("Run() error = %v, want %v", err, sendErr)
	}
	if len(s.sent) != 1 {
		t.Errorf("sent %d commands, want 1", len(s.sent))
	}
	if len(q.deleted) != 0 {
		t.Errorf("deleted %d messages, want 0", len(q.deleted))
	}
}

func TestPoller_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	q := &fakeQueue{failWith: context.Canceled}
	if err := NewPoller(q, &fakeSender{}, testOptions()).Run(ctx); err != nil {
		t.Errorf("Run() error = %v, want nil on cancellation", err)
	}
}

func TestPoller_CancelDuringSleep(t *testing.T) {
	q := &fakeQueue{batches: [][]Message{{}}}
	opts := testOptions()
	opts.PollInterval = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- NewPoller(q, &fakeSender{}, opts).Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancellation")
	}
	if q.receives != 1 {
		t.Errorf("receives = %d, want 1", q.receives)
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		raw     string
		want    Command
		wantErr bool
	}{
		{
			raw:  `PUT|/api/username/lights/1/state|{"on":true}`,
			want: Command{Action: "PUT", Path: "/api/u1/lights/1/state", Body: `{"on":true}`},
		},
		{
			raw:  "GET|/api/username/lights/4",
			want: Command{Action: "GET", Path: "/api/u1/lights/4"},
		},
		{
			raw:  "PUT|/api/username/lights/1/state|",
			want: Command{Action: "PUT", Path: "/api/u1/lights/1/state"},
		},
		{raw: "", wantErr: true},
		{raw: "PUT", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseCommand(tt.raw, "u1")
		if tt.wantErr {
			if !errors.Is(err, ErrMalformedMessage) {
				t.Errorf("ParseCommand(%q) error = %v, want ErrMalformedMessage", tt.raw, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseCommand(%q) error = %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseCommand(%q) = %+v, want %+v", tt.raw, got, tt.want)
		}
	}
}

func TestReceiveError(t *testing.T) {
	err := error(&ReceiveError{StatusCode: 503, Err: errors.New("unavailable")})
	if !IsReceiveError(err) {
		t.Error("IsReceiveError() = false")
	}
	if IsReceiveError(errors.New("other")) {
		t.Error("IsReceiveError() = true for a plain error")
	}
}
