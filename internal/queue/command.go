package queue

import (
	"errors"
	"fmt"
	"strings"
)

// UsernamePlaceholder is replaced by the configured username in message paths
const UsernamePlaceholder = "username"

// ErrMalformedMessage is returned for message bodies that are not ACTION|PATH[|BODY]
var ErrMalformedMessage = errors.New("malformed light command")

// Command is a parsed light command message
type Command struct {
	Action string
	Path   string
	Body   string
}

func (c Command) String() string {
	return fmt.Sprintf("%s %s %s", c.Action, c.Path, c.Body)
}

// ParseCommand splits a message body into action, path and optional body,
// substituting the username placeholder in the path
func ParseCommand(raw, username string) (Command, error) {
	parts := strings.Split(raw, "|")
	if len(parts) < 2 {
		return Command{}, fmt.Errorf("%w: %q", ErrMalformedMessage, raw)
	}

	cmd := Command{
		Action: parts[0],
		Path:   strings.ReplaceAll(parts[1], UsernamePlaceholder, username),
	}
	if len(parts) > 2 {
		cmd.Body = parts[2]
	}
	return cmd, nil
}
