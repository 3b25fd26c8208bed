package schema

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// NewSessionID generates a web session ID in format session-{nanoid(10)}.
// Used when a browser client does not supply its own session identifier.
func NewSessionID() (string, error) {
	id, err := gonanoid.New(10)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("session-%s", id), nil
}

// NewRunID generates a generation run ID in format GEN-{nanoid(10)}.
// Attached to output metadata so result files can be traced to a run.
func NewRunID() (string, error) {
	id, err := gonanoid.New(10)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("GEN-%s", id), nil
}
