package attendance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/trezcool/mahudhurio/core"
)

func TestResolveErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "nested context error preferred",
			body: `{"error":"function failed","context":"{\"error\":\"Already marked present\"}"}`,
			want: "Already marked present",
		},
		{name: "top-level error", body: `{"error":"Session is not active"}`, want: "Session is not active"},
		{name: "message fallback", body: `{"message":"bad request"}`, want: "bad request"},
		{
			name: "unparseable context falls back to error",
			body: `{"error":"function failed","context":"not json"}`,
			want: "function failed",
		},
		{
			name: "context without error field falls back",
			body: `{"error":"function failed","context":"{\"detail\":42}"}`,
			want: "function failed",
		},
		{name: "empty object", body: `{}`, want: genericRejectedMsg},
		{name: "not json", body: `<html>502</html>`, want: genericRejectedMsg},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveErrorMessage([]byte(tt.body)); got != tt.want {
				t.Errorf("ResolveErrorMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func newTestHTTPMarker(url string) *httpMarker {
	conf := &core.Config{
		Attendance: core.AttendanceConfig{MarkFuncURL: url, MarkTimeout: time.Second},
	}
	return NewHTTPMarker(conf, nopLogger{})
}

func TestHTTPMarker(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		err := newTestHTTPMarker(srv.URL).MarkAttendance(context.Background(), MarkRequest{SessionID: "s1", StudentID: "u1"})
		if err != nil {
			t.Errorf("MarkAttendance() failed: %v", err)
		}
	})

	t.Run("rejection carries resolved message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"function failed","context":"{\"error\":\"Already marked present\"}"}`))
		}))
		defer srv.Close()

		err := newTestHTTPMarker(srv.URL).MarkAttendance(context.Background(), MarkRequest{SessionID: "s1", StudentID: "u1"})
		rej, ok := err.(*RejectedError)
		if !ok {
			t.Fatalf("MarkAttendance() error = %T(%v), want *RejectedError", err, err)
		}
		if rej.Msg != "Already marked present" {
			t.Errorf("message = %q, want %q", rej.Msg, "Already marked present")
		}
	})

	t.Run("server error is a transport error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		err := newTestHTTPMarker(srv.URL).MarkAttendance(context.Background(), MarkRequest{SessionID: "s1", StudentID: "u1"})
		if _, ok := err.(*TransportError); !ok {
			t.Errorf("MarkAttendance() error = %T(%v), want *TransportError", err, err)
		}
	})

	t.Run("unreachable function is a transport error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // immediately: nothing is listening anymore

		err := newTestHTTPMarker(srv.URL).MarkAttendance(context.Background(), MarkRequest{SessionID: "s1", StudentID: "u1"})
		if _, ok := err.(*TransportError); !ok {
			t.Errorf("MarkAttendance() error = %T(%v), want *TransportError", err, err)
		}
	})
}
