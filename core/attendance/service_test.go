package attendance_test

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/course"
	"github.com/trezcool/mahudhurio/core/session"
	inmemdb "github.com/trezcool/mahudhurio/storage/database/inmem"
	testutil "github.com/trezcool/mahudhurio/tests"
)

type markFixture struct {
	svc     attendance.ServiceInterface
	attRepo attendance.Repository
	sess    session.Session
	student string
}

func setupMarkFixture(t *testing.T) markFixture {
	t.Helper()

	conf := &core.Config{FrontendBaseURL: "https://app.example", TimeZone: "UTC"}
	logger := testutil.Logger{}
	db := inmemdb.New()

	usrRepo := inmemdb.NewUserRepository(db)
	crsRepo := inmemdb.NewCourseRepository(db)
	sessRepo := inmemdb.NewSessionRepository(db)
	attRepo := inmemdb.NewAttendanceRepository(db)

	crsSvc := course.NewService(crsRepo, logger)
	sessSvc := session.NewService(sessRepo, conf, logger)
	svc := attendance.NewService(attRepo, sessSvc, crsSvc, logger)

	student := testutil.CreateUser(t, usrRepo, "Jane Student", "janestud", "jane@test.cd", "", []string{"student:"}, true)
	crs := testutil.CreateCourse(t, crsRepo, "cs101", "Intro to CS")
	sess := testutil.CreateSession(t, sessRepo, crs.ID, "Lecture 1",
		time.Date(2022, 3, 14, 0, 0, 0, 0, time.UTC), "09:00", "10:30")
	testutil.Enroll(t, crsRepo, crs.ID, student.ID)

	return markFixture{svc: svc, attRepo: attRepo, sess: sess, student: student.ID}
}

func at(hour, min int) func() time.Time {
	return func() time.Time {
		return time.Date(2022, 3, 14, hour, min, 0, 0, time.UTC)
	}
}

func TestServiceMarkAttendance(t *testing.T) {
	ctx := context.Background()

	t.Run("marks during the session window", func(t *testing.T) {
		fix := setupMarkFixture(t)
		defer attendance.SetNowFunc(at(9, 30))()

		err := fix.svc.MarkAttendance(ctx, attendance.MarkRequest{SessionID: fix.sess.ID, StudentID: fix.student})
		if err != nil {
			t.Fatalf("MarkAttendance() failed: %v", err)
		}
		rec, err := fix.attRepo.GetRecord(ctx, fix.sess.ID, fix.student)
		if err != nil {
			t.Fatalf("GetRecord() failed: %v", err)
		}
		if rec.SessionID != fix.sess.ID || rec.StudentID != fix.student {
			t.Errorf("record = %+v, want session %s / student %s", rec, fix.sess.ID, fix.student)
		}
	})

	t.Run("marks at the exact window boundaries", func(t *testing.T) {
		for name, now := range map[string]func() time.Time{"start": at(9, 0), "end": at(10, 30)} {
			t.Run(name, func(t *testing.T) {
				fix := setupMarkFixture(t)
				defer attendance.SetNowFunc(now)()

				err := fix.svc.MarkAttendance(ctx, attendance.MarkRequest{SessionID: fix.sess.ID, StudentID: fix.student})
				if err != nil {
					t.Errorf("MarkAttendance() failed: %v", err)
				}
			})
		}
	})

	rejections := []struct {
		name    string
		now     func() time.Time
		prep    func(t *testing.T, fix markFixture)
		req     func(fix markFixture) attendance.MarkRequest
		wantMsg string
	}{
		{
			name:    "unknown session",
			now:     at(9, 30),
			req:     func(fix markFixture) attendance.MarkRequest { return attendance.MarkRequest{SessionID: "nope", StudentID: fix.student} },
			wantMsg: "Session not found",
		},
		{
			name:    "before the window",
			now:     at(8, 59),
			req:     func(fix markFixture) attendance.MarkRequest { return attendance.MarkRequest{SessionID: fix.sess.ID, StudentID: fix.student} },
			wantMsg: "Session has not started yet",
		},
		{
			name:    "after the window",
			now:     at(10, 31),
			req:     func(fix markFixture) attendance.MarkRequest { return attendance.MarkRequest{SessionID: fix.sess.ID, StudentID: fix.student} },
			wantMsg: "Session has already ended",
		},
		{
			name:    "not enrolled",
			now:     at(9, 30),
			req:     func(fix markFixture) attendance.MarkRequest { return attendance.MarkRequest{SessionID: fix.sess.ID, StudentID: "stranger"} },
			wantMsg: "You are not enrolled in this course",
		},
		{
			name: "already marked",
			now:  at(9, 30),
			prep: func(t *testing.T, fix markFixture) {
				testutil.MarkPresent(t, fix.attRepo, fix.sess.ID, fix.student)
			},
			req:     func(fix markFixture) attendance.MarkRequest { return attendance.MarkRequest{SessionID: fix.sess.ID, StudentID: fix.student} },
			wantMsg: "Already marked present",
		},
	}
	for _, tt := range rejections {
		t.Run(tt.name, func(t *testing.T) {
			fix := setupMarkFixture(t)
			defer attendance.SetNowFunc(tt.now)()
			if tt.prep != nil {
				tt.prep(t, fix)
			}

			err := fix.svc.MarkAttendance(ctx, tt.req(fix))
			rej, ok := err.(*attendance.RejectedError)
			if !ok {
				t.Fatalf("MarkAttendance() error = %T(%v), want *RejectedError", err, err)
			}
			if rej.Msg != tt.wantMsg {
				t.Errorf("message = %q, want %q", rej.Msg, tt.wantMsg)
			}
		})
	}

	t.Run("marking twice rejects the second attempt", func(t *testing.T) {
		fix := setupMarkFixture(t)
		defer attendance.SetNowFunc(at(9, 30))()

		req := attendance.MarkRequest{SessionID: fix.sess.ID, StudentID: fix.student}
		if err := fix.svc.MarkAttendance(ctx, req); err != nil {
			t.Fatalf("first MarkAttendance() failed: %v", err)
		}
		err := fix.svc.MarkAttendance(ctx, req)
		rej, ok := err.(*attendance.RejectedError)
		if !ok {
			t.Fatalf("second MarkAttendance() error = %T(%v), want *RejectedError", err, err)
		}
		if rej.Msg != "Already marked present" {
			t.Errorf("message = %q, want %q", rej.Msg, "Already marked present")
		}
	})
}
