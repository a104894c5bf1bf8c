package session

import (
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	start := time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.January, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name       string
		start, end time.Time
		now        time.Time
		want       Status
	}{
		{name: "mid window", start: start, end: end, now: start.Add(30 * time.Minute), want: StatusActive},
		{name: "one second early", start: start, end: end, now: start.Add(-time.Second), want: StatusUpcoming},
		{name: "exactly start", start: start, end: end, now: start, want: StatusActive},
		{name: "exactly end", start: start, end: end, now: end, want: StatusActive},
		{name: "one second late", start: start, end: end, now: end.Add(time.Second), want: StatusExpired},
		{name: "way before", start: start, end: end, now: start.Add(-24 * time.Hour), want: StatusUpcoming},
		{name: "way after", start: start, end: end, now: end.Add(24 * time.Hour), want: StatusExpired},
		{name: "zero duration at instant", start: start, end: start, now: start, want: StatusActive},
		{name: "zero duration before", start: start, end: start, now: start.Add(-time.Nanosecond), want: StatusUpcoming},
		{name: "zero duration after", start: start, end: start, now: start.Add(time.Nanosecond), want: StatusExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.start, tt.end, tt.now); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
			// no hidden state: re-evaluation yields the same result
			if got := Classify(tt.start, tt.end, tt.now); got != tt.want {
				t.Errorf("Classify() second call = %v, want %v", got, tt.want)
			}
		})
	}
}

// the three outcomes partition a window's timeline: exactly one holds at any instant
func TestClassifyPartitions(t *testing.T) {
	start := time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)

	for now := start.Add(-2 * time.Minute); now.Before(end.Add(2 * time.Minute)); now = now.Add(13 * time.Second) {
		got := Classify(start, end, now)
		var want Status
		switch {
		case now.Before(start):
			want = StatusUpcoming
		case now.After(end):
			want = StatusExpired
		default:
			want = StatusActive
		}
		if got != want {
			t.Fatalf("Classify(%v) = %v, want %v", now, got, want)
		}
	}
}
