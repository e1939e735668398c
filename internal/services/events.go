package services

import (
	"errors"

	"github.com/Conceptual-Machines/prdgen-api/internal/llm"
)

// EventType identifies the kind of stream event sent to a client
type EventType string

const (
	EventFragment EventType = "fragment"
	EventError    EventType = "error"
	EventDone     EventType = "done"
)

// Event is one item in a generation stream
type Event struct {
	Type    EventType
	Text    string // fragment text, set for EventFragment
	Message string // error message, set for EventError
}

// EventSink receives transcoded events in order. A non-nil error stops the
// stream; no further events are delivered.
type EventSink func(Event) error

// FragmentSource runs a generation, emitting document text through emit
type FragmentSource func(emit llm.FragmentFunc) error

// sinkError marks an error as coming from the sink rather than the source
type sinkError struct {
	err error
}

func (e *sinkError) Error() string { return e.err.Error() }
func (e *sinkError) Unwrap() error { return e.err }

// Relay drives source, forwarding each fragment to sink and closing the
// stream with exactly one terminal event: done on success, error on failure.
// Nothing is emitted after the terminal event. When the sink itself fails
// (client disconnected), the source is aborted and no terminal event is
// attempted; the sink's error is returned.
func Relay(source FragmentSource, sink EventSink) error {
	err := source(func(text string) error {
		if sErr := sink(Event{Type: EventFragment, Text: text}); sErr != nil {
			return &sinkError{err: sErr}
		}
		return nil
	})

	if err != nil {
		var sErr *sinkError
		if errors.As(err, &sErr) {
			return sErr.err
		}
		_ = sink(Event{Type: EventError, Message: err.Error()})
		return err
	}

	return sink(Event{Type: EventDone})
}
