package hooks

import "fmt"

// Event is a fixed lifecycle point at which hooks may fire.
type Event string

const (
	EventSessionStart Event = "session.start"
	EventSessionEnd   Event = "session.end"
	EventToolPre      Event = "tool.pre"
	EventToolPost     Event = "tool.post"
	EventCompact      Event = "compact"
	EventError        Event = "error"
)

var knownEvents = map[Event]bool{
	EventSessionStart: true,
	EventSessionEnd:   true,
	EventToolPre:      true,
	EventToolPost:     true,
	EventCompact:      true,
	EventError:        true,
}

// ParseEvent validates an event name from configuration.
func ParseEvent(s string) (Event, error) {
	ev := Event(s)
	if !knownEvents[ev] {
		return "", fmt.Errorf("unknown hook event: %q", s)
	}
	return ev, nil
}

// isToolEvent reports whether matchers apply to this event.
func isToolEvent(ev Event) bool {
	return ev == EventToolPre || ev == EventToolPost
}
