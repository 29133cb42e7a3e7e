package core

import (
	"errors"
	"fmt"
)

// ErrUnknownName is returned when parsing an enum from an unrecognized string
var ErrUnknownName = errors.New("unknown name")

// EventID names a UI interaction that maps to one sound cue
type EventID string

const (
	EventTap        EventID = "ui.tap"
	EventSelect     EventID = "ui.select"
	EventNavigate   EventID = "nav.switch"
	EventGallopStep EventID = "slider.gallop"
	EventHomeEnter  EventID = "home.enter"
	EventSuccess    EventID = "result.success"
	EventPageTurn   EventID = "page.turn"
	EventError      EventID = "error"
	EventStamp      EventID = "success.stamp"
	EventWhinny     EventID = "horse.whinny"
)

var allEvents = []EventID{
	EventTap,
	EventSelect,
	EventNavigate,
	EventGallopStep,
	EventHomeEnter,
	EventSuccess,
	EventPageTurn,
	EventError,
	EventStamp,
	EventWhinny,
}

func (e EventID) String() string { return string(e) }

// Known reports whether e is a recognized event
func (e EventID) Known() bool {
	for _, k := range allEvents {
		if k == e {
			return true
		}
	}
	return false
}

// ParseEvent validates an event name
func ParseEvent(s string) (EventID, error) {
	e := EventID(s)
	if !e.Known() {
		return "", fmt.Errorf("%w: event %q", ErrUnknownName, s)
	}
	return e, nil
}

// Events returns every recognized event id
func Events() []EventID {
	out := make([]EventID, len(allEvents))
	copy(out, allEvents)
	return out
}

// Strike distinguishes the two material hit intensities
type Strike int

const (
	StrikeTap Strike = iota
	StrikeSelect
)

func (s Strike) String() string {
	if s == StrikeSelect {
		return "select"
	}
	return "tap"
}
