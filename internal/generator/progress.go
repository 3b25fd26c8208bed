package generator

import "fmt"

// EventType identifies a progress notice kind.
type EventType string

const (
	EventAttemptStart  EventType = "attempt_start"
	EventAttemptFailed EventType = "attempt_failed"
	EventWaiting       EventType = "waiting"
	EventSucceeded     EventType = "succeeded"
)

// Event is one progress notice emitted by the retry loop. Notices are a
// side channel: whether anything is subscribed never affects control flow
// or outcomes.
type Event struct {
	Type        EventType
	Attempt     int // 1-based
	MaxAttempts int
	Temperature float64
	Records     int   // populated on success
	Err         error // populated on failure
}

// Message renders the event as a human-readable progress notice.
func (e Event) Message() string {
	switch e.Type {
	case EventAttemptStart:
		if e.Attempt == 1 {
			return "Generating test cases..."
		}
		return fmt.Sprintf("Retry attempt %d of %d...", e.Attempt, e.MaxAttempts)
	case EventAttemptFailed:
		return fmt.Sprintf("Attempt %d failed: %v", e.Attempt, e.Err)
	case EventWaiting:
		return "Waiting before retry..."
	case EventSucceeded:
		if e.Attempt > 1 {
			return fmt.Sprintf("Generated %d test cases on attempt %d", e.Records, e.Attempt)
		}
		return fmt.Sprintf("Generated %d test cases", e.Records)
	}
	return string(e.Type)
}

// Notifier receives progress notices from a generation run.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Event)

// Notify implements Notifier.
func (f NotifierFunc) Notify(e Event) {
	f(e)
}
