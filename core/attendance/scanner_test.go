package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
)

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Warn(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
func (nopLogger) Fatal(msg string, args ...interface{}) {}

// markerMock counts calls and returns a canned error.
type markerMock struct {
	calls   int
	lastReq MarkRequest
	err     error
	block   chan struct{} // when set, MarkAttendance blocks until closed
	entered chan struct{}
}

func (m *markerMock) MarkAttendance(ctx context.Context, req MarkRequest) error {
	m.calls++
	m.lastReq = req
	if m.entered != nil {
		close(m.entered)
		m.entered = nil
	}
	if m.block != nil {
		<-m.block
	}
	return m.err
}

func newTestScanner(marker Marker) *Scanner {
	conf := &core.Config{Attendance: core.AttendanceConfig{MarkTimeout: time.Second}}
	return NewScanner(marker, conf, nopLogger{})
}

func TestScannerHandleScan(t *testing.T) {
	payload := "https://app.example/attend/abc123"

	t.Run("invalid payload short-circuits", func(t *testing.T) {
		marker := new(markerMock)
		err := newTestScanner(marker).HandleScan(context.Background(), "not a url", "stud1", nil)
		if err != ErrInvalidPayload {
			t.Errorf("HandleScan() error = %v, want %v", err, ErrInvalidPayload)
		}
		if marker.calls != 0 {
			t.Errorf("marker called %d times, want 0", marker.calls)
		}
	})

	t.Run("unauthenticated short-circuits", func(t *testing.T) {
		marker := new(markerMock)
		err := newTestScanner(marker).HandleScan(context.Background(), payload, "", nil)
		if err != ErrUnauthenticated {
			t.Errorf("HandleScan() error = %v, want %v", err, ErrUnauthenticated)
		}
		if marker.calls != 0 {
			t.Errorf("marker called %d times, want 0", marker.calls)
		}
	})

	t.Run("success fires done exactly once", func(t *testing.T) {
		marker := new(markerMock)
		var doneCalls int
		err := newTestScanner(marker).HandleScan(context.Background(), payload, "stud1", func() { doneCalls++ })
		if err != nil {
			t.Fatalf("HandleScan() failed: %v", err)
		}
		if doneCalls != 1 {
			t.Errorf("done called %d times, want 1", doneCalls)
		}
		if marker.calls != 1 {
			t.Errorf("marker called %d times, want 1", marker.calls)
		}
		if want := (MarkRequest{SessionID: "abc123", StudentID: "stud1"}); marker.lastReq != want {
			t.Errorf("marker request = %+v, want %+v", marker.lastReq, want)
		}
	})

	t.Run("rejection passed through verbatim", func(t *testing.T) {
		marker := &markerMock{err: &RejectedError{Msg: "Already marked present"}}
		var doneCalls int
		err := newTestScanner(marker).HandleScan(context.Background(), payload, "stud1", func() { doneCalls++ })
		rej, ok := err.(*RejectedError)
		if !ok {
			t.Fatalf("HandleScan() error = %T(%v), want *RejectedError", err, err)
		}
		if rej.Msg != "Already marked present" {
			t.Errorf("message = %q, want %q", rej.Msg, "Already marked present")
		}
		if doneCalls != 0 {
			t.Errorf("done called %d times, want 0", doneCalls)
		}
	})

	t.Run("unexpected marker error maps to transport error", func(t *testing.T) {
		marker := &markerMock{err: errors.New("boom")}
		err := newTestScanner(marker).HandleScan(context.Background(), payload, "stud1", nil)
		if _, ok := err.(*TransportError); !ok {
			t.Errorf("HandleScan() error = %T(%v), want *TransportError", err, err)
		}
	})

	t.Run("overlapping scans rejected", func(t *testing.T) {
		marker := &markerMock{
			block:   make(chan struct{}),
			entered: make(chan struct{}),
		}
		scanner := newTestScanner(marker)

		firstDone := make(chan error, 1)
		go func() { firstDone <- scanner.HandleScan(context.Background(), payload, "stud1", nil) }()
		<-marker.entered // first scan is in flight

		if err := scanner.HandleScan(context.Background(), payload, "stud1", nil); err != ErrScanInProgress {
			t.Errorf("HandleScan() error = %v, want %v", err, ErrScanInProgress)
		}

		close(marker.block)
		if err := <-firstDone; err != nil {
			t.Errorf("first HandleScan() failed: %v", err)
		}

		// scanner is free again after the first scan settles
		if err := scanner.HandleScan(context.Background(), payload, "stud1", nil); err != nil {
			t.Errorf("follow-up HandleScan() failed: %v", err)
		}
	})
}
