package session

import (
	"testing"
	"time"

	"github.com/trezcool/mahudhurio/core"
)

var testConf = &core.Config{
	FrontendBaseURL: "https://app.example",
	TimeZone:        "UTC",
}

func testSession() Session {
	return Session{
		ID:          "abc123",
		CourseID:    "cs101",
		Name:        "Lecture 1",
		SessionDate: time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		StartTime:   "09:00",
		EndTime:     "10:30",
	}
}

func TestSessionInstants(t *testing.T) {
	sess := testSession()

	wantStart := time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2024, time.January, 15, 10, 30, 0, 0, time.UTC)
	if got := sess.StartsAt(time.UTC); !got.Equal(wantStart) {
		t.Errorf("StartsAt() = %v, want %v", got, wantStart)
	}
	if got := sess.EndsAt(time.UTC); !got.Equal(wantEnd) {
		t.Errorf("EndsAt() = %v, want %v", got, wantEnd)
	}
}

func TestServiceScanURL(t *testing.T) {
	svc := NewService(nil, testConf, nil)
	sess := testSession()

	want := "https://app.example/attend/abc123"
	if got := svc.ScanURL(sess); got != want {
		t.Errorf("ScanURL() = %q, want %q", got, want)
	}
	// stable: same session, same URL
	if got := svc.ScanURL(sess); got != want {
		t.Errorf("ScanURL() second call = %q, want %q", got, want)
	}
}

func TestServiceScanView(t *testing.T) {
	svc := NewService(nil, testConf, nil)
	sess := testSession()

	start := sess.StartsAt(time.UTC)
	end := sess.EndsAt(time.UTC)

	tests := []struct {
		name         string
		now          time.Time
		wantStatus   Status
		wantReason   string
		wantBoundary *time.Time
	}{
		{name: "active", now: start.Add(time.Minute), wantStatus: StatusActive},
		{name: "upcoming", now: start.Add(-time.Hour), wantStatus: StatusUpcoming, wantReason: ReasonNotStarted, wantBoundary: &start},
		{name: "expired", now: end.Add(time.Hour), wantStatus: StatusExpired, wantReason: ReasonEnded, wantBoundary: &end},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := svc.ScanView(sess, tt.now)
			if err != nil {
				t.Fatalf("ScanView() failed: %v", err)
			}
			if view.Status != tt.wantStatus {
				t.Errorf("Status = %v, want %v", view.Status, tt.wantStatus)
			}
			if view.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", view.Reason, tt.wantReason)
			}
			if view.ScanURL != svc.ScanURL(sess) {
				t.Errorf("ScanURL = %q, want %q", view.ScanURL, svc.ScanURL(sess))
			}
			if len(view.QRCodePNG) == 0 {
				t.Error("QRCodePNG is empty")
			}
			if tt.wantBoundary == nil {
				if view.Boundary != nil {
					t.Errorf("Boundary = %v, want nil", view.Boundary)
				}
			} else if view.Boundary == nil || !view.Boundary.Equal(*tt.wantBoundary) {
				t.Errorf("Boundary = %v, want %v", view.Boundary, tt.wantBoundary)
			}
			if got := svc.IsScannable(sess, tt.now); got != (tt.wantStatus == StatusActive) {
				t.Errorf("IsScannable() = %v, want %v", got, tt.wantStatus == StatusActive)
			}
		})
	}
}
