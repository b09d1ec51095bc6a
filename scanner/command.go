package scanner

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrIncorrectInput is returned for operator messages that are not scan commands
var ErrIncorrectInput = errors.New("incorrect input")

// IncorrectInputWarning is emitted when an operator message is dropped
const IncorrectInputWarning = "Incorrect input, ignoring."

// Command is an operator request to start or stop scanning.
type Command struct {
	Scan bool
}

// ParseCommand accepts {"payload":{"scan":true|false}}. Any other shape,
// including a non-boolean scan value, is ErrIncorrectInput.
func ParseCommand(raw []byte) (Command, error) {
	var msg struct {
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrIncorrectInput, err)
	}

	var payload map[string]json.RawMessage
	if len(msg.Payload) == 0 || json.Unmarshal(msg.Payload, &payload) != nil || payload == nil {
		return Command{}, fmt.Errorf("%w: payload is not an object", ErrIncorrectInput)
	}

	scanRaw, ok := payload["scan"]
	if !ok {
		return Command{}, fmt.Errorf("%w: payload has no scan field", ErrIncorrectInput)
	}

	var scan bool
	if err := json.Unmarshal(scanRaw, &scan); err != nil || string(scanRaw) == "null" {
		return Command{}, fmt.Errorf("%w: scan must be true or false", ErrIncorrectInput)
	}
	return Command{Scan: scan}, nil
}
