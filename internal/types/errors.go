package types

import (
	"errors"
	"fmt"
)

// ErrInvalidPlace is returned when a place name is empty or too long to be looked up.
var ErrInvalidPlace = errors.New("invalid place name")

// NetworkError reports an upstream that was unreachable or answered with a non-success status.
type NetworkError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e == nil {
		return "network error"
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: upstream returned HTTP %d", e.Op, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op + ": network error"
}

func (e *NetworkError) Unwrap() error { return e.Err }

// EmptyResultError reports an upstream that answered but returned nothing usable.
type EmptyResultError struct {
	Op     string
	Reason string
}

func (e *EmptyResultError) Error() string {
	if e == nil {
		return "empty result"
	}
	return fmt.Sprintf("%s: empty result: %s", e.Op, e.Reason)
}

// ParseHeuristicMiss reports a narrative section the parser could not find.
// It is a soft error: the slot is left absent.
type ParseHeuristicMiss struct {
	Slot SectionSlot
}

func (e ParseHeuristicMiss) Error() string {
	return fmt.Sprintf("narrative section %q not found", e.Slot)
}
