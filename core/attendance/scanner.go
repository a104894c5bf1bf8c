package attendance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
)

// Scanner turns a decoded QR payload into a recorded attendance entry via a
// Marker collaborator.
//
// One scan at a time: a scan arriving while another is in flight fails with
// ErrScanInProgress rather than queueing, so rapid repeated scans of the same
// code cannot double-submit. No retries are performed at any stage; every
// failure is terminal for that attempt and needs a new scan.
type Scanner struct {
	marker  Marker
	timeout time.Duration
	logger  core.Logger

	mu   sync.Mutex
	busy bool
}

func NewScanner(marker Marker, conf *core.Config, logger core.Logger) *Scanner {
	return &Scanner{
		marker:  marker,
		timeout: conf.Attendance.MarkTimeout,
		logger:  logger,
	}
}

// HandleScan processes one scan attempt: parse the payload, check the
// authenticated student, submit to the marker. `done` is invoked exactly once
// on success (callers use it to close the scanning UI / refresh views).
//
// Returned errors are the client-visible taxonomy: ErrInvalidPayload,
// ErrUnauthenticated, ErrScanInProgress, *RejectedError (marker message
// verbatim) or *TransportError.
func (s *Scanner) HandleScan(ctx context.Context, payload, studentID string, done func()) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrScanInProgress
	}
	s.busy = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	sessID, err := ExtractSessionID(payload)
	if err != nil {
		return err
	}
	if studentID == "" {
		return ErrUnauthenticated
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.marker.MarkAttendance(ctx, MarkRequest{SessionID: sessID, StudentID: studentID}); err != nil {
		switch cause := errors.Cause(err).(type) {
		case *RejectedError:
			return cause
		case *TransportError:
			return cause
		}
		s.logger.Error(fmt.Sprintf("marking attendance for session %s: %v", sessID, err), err)
		return &TransportError{Err: err}
	}

	if done != nil {
		done()
	}
	return nil
}
