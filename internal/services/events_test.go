package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/prdgen-api/internal/llm"
)

// collectSink records every event it receives
func collectSink(events *[]Event) EventSink {
	return func(e Event) error {
		*events = append(*events, e)
		return nil
	}
}

func TestRelayForwardsFragmentsThenDone(t *testing.T) {
	source := func(emit llm.FragmentFunc) error {
		for _, text := range []string{"# Title", "\n\nBody ", "text"} {
			if err := emit(text); err != nil {
				return err
			}
		}
		return nil
	}

	var events []Event
	err := Relay(source, collectSink(&events))
	require.NoError(t, err)

	require.Len(t, events, 4)
	for i, want := range []string{"# Title", "\n\nBody ", "text"} {
		assert.Equal(t, EventFragment, events[i].Type)
		assert.Equal(t, want, events[i].Text)
	}
	assert.Equal(t, EventDone, events[3].Type)
}

func TestRelayEmptyStreamStillEmitsDone(t *testing.T) {
	source := func(_ llm.FragmentFunc) error { return nil }

	var events []Event
	err := Relay(source, collectSink(&events))
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, EventDone, events[0].Type)
}

func TestRelaySourceFailureEmitsSingleErrorEvent(t *testing.T) {
	streamErr := &llm.TransportError{Provider: "openai", Err: errors.New("boom")}
	source := func(emit llm.FragmentFunc) error {
		if err := emit("partial "); err != nil {
			return err
		}
		return streamErr
	}

	var events []Event
	err := Relay(source, collectSink(&events))
	require.Error(t, err)
	assert.ErrorIs(t, err, streamErr)

	// One fragment, then the error terminates the stream; no done event
	require.Len(t, events, 2)
	assert.Equal(t, EventFragment, events[0].Type)
	assert.Equal(t, "partial ", events[0].Text)
	assert.Equal(t, EventError, events[1].Type)
	assert.Contains(t, events[1].Message, "openai stream failed")
	assert.Contains(t, events[1].Message, "boom")
}

func TestRelayImmediateFailureEmitsOnlyErrorEvent(t *testing.T) {
	source := func(_ llm.FragmentFunc) error {
		return errors.New("no capacity")
	}

	var events []Event
	err := Relay(source, collectSink(&events))
	require.Error(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, EventError, events[0].Type)
	assert.Equal(t, "no capacity", events[0].Message)
}

func TestRelaySinkAbortStopsSourceWithoutErrorEvent(t *testing.T) {
	clientGone := errors.New("client disconnected")
	emitted := 0

	source := func(emit llm.FragmentFunc) error {
		for _, text := range []string{"a", "b", "c"} {
			if err := emit(text); err != nil {
				// Providers propagate the callback error unwrapped
				return err
			}
			emitted++
		}
		return nil
	}

	var events []Event
	sink := func(e Event) error {
		events = append(events, e)
		if len(events) == 2 {
			return clientGone
		}
		return nil
	}

	err := Relay(source, sink)
	require.Error(t, err)
	assert.ErrorIs(t, err, clientGone)

	// Source stopped at the failed fragment; no error or done event followed
	assert.Equal(t, 1, emitted)
	require.Len(t, events, 2)
	assert.Equal(t, EventFragment, events[0].Type)
	assert.Equal(t, EventFragment, events[1].Type)
}
