package attendance

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrRecordNotFound = errors.New("attendance record not found")

	// ErrInvalidPayload: the scanned content is not a well-formed scan URL or
	// lacks a session identifier. Detected before any collaborator call.
	ErrInvalidPayload = errors.New("scanned code is not a valid attendance link")

	// ErrUnauthenticated: no logged-in student at scan time.
	ErrUnauthenticated = errors.New("user not authenticated")

	// ErrScanInProgress: a previous scan of this scanner has not finished yet.
	// Guards against duplicate submissions from rapid repeated scans.
	ErrScanInProgress = errors.New("a scan is already being processed")
)

// RejectedError is an explicit rejection by the attendance marker (session not
// active, already marked, not enrolled...). Msg is surfaced to the user verbatim.
type RejectedError struct {
	Msg string
}

func (e *RejectedError) Error() string { return e.Msg }

// TransportError is an infrastructure failure (network, timeout) reaching the
// attendance marker; users get a generic message.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "could not reach the attendance service" }
func (e *TransportError) Unwrap() error { return e.Err }

// MarkRequest is one attempt to record a student's presence at a session.
// Ephemeral: owned by the scan handler for the duration of one call.
type MarkRequest struct {
	SessionID string `json:"session_id"`
	StudentID string `json:"student_id"`
}

// Marker records attendance. Implemented by the first-party Service and by
// the remote-function client; the Scanner does not care which.
type Marker interface {
	MarkAttendance(ctx context.Context, req MarkRequest) error
}

// Record is a persisted attendance entry.
type Record struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	StudentID string    `json:"student_id"`
	MarkedAt  time.Time `json:"marked_at"` // UTC

	// display metadata, populated on reads; no invariants
	StudentName string `json:"student_name,omitempty"`
}
