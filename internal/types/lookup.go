package types

import (
	"time"

	"github.com/google/uuid"
)

// LookupState is the state of one search or detail-page trigger.
type LookupState string

const (
	LookupIdle    LookupState = "idle"
	LookupLoading LookupState = "loading"
	LookupSuccess LookupState = "success"
	LookupError   LookupState = "error"
)

// Terminal reports whether no further transition is allowed.
func (s LookupState) Terminal() bool {
	return s == LookupSuccess || s == LookupError
}

// CanTransition reports whether moving from s to next is a legal step of
// idle -> loading -> {success, error}.
func (s LookupState) CanTransition(next LookupState) bool {
	switch s {
	case LookupIdle:
		return next == LookupLoading
	case LookupLoading:
		return next == LookupSuccess || next == LookupError
	default:
		return false
	}
}

// Lookup tracks one aggregation triggered through the API.
type Lookup struct {
	ID         uuid.UUID          `json:"id"`
	Place      string             `json:"place"`
	State      LookupState        `json:"state"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt *time.Time         `json:"finished_at,omitempty"`
	Record     *DestinationRecord `json:"record,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// StartLookupRequest is the body of POST /api/v1/lookups.
type StartLookupRequest struct {
	Place string `json:"place" example:"Paris"`
}
