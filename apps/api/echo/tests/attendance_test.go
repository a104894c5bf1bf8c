package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/user"
	testutil "github.com/trezcool/mahudhurio/tests"
)

func scanBody(t *testing.T, payload string) []byte {
	return marchallObj(t, map[string]string{"payload": payload})
}

func Test_attendanceApi_scan(t *testing.T) {
	env := setup(t)
	now := time.Now().UTC()

	student := testutil.CreateUser(t, env.usrRepo, "Sam Student", "samstud", "sam@test.cd", "", user.StudentRoles, true)
	outsider := testutil.CreateUser(t, env.usrRepo, "Olu Outsider", "oluout", "olu@test.cd", "", user.StudentRoles, true)
	lecturer := testutil.CreateUser(t, env.usrRepo, "Lea Lecturer", "lealect", "lea@test.cd", "", user.LecturerRoles, true)
	studentToken := getToken(t, env.conf, student)
	outsiderToken := getToken(t, env.conf, outsider)
	lecturerToken := getToken(t, env.conf, lecturer)

	crs := testutil.CreateCourse(t, env.crsRepo, "cs101", "Intro to CS")
	activeSess := testutil.CreateSession(t, env.sessRepo, crs.ID, "Lecture 1",
		today(now), clockPlus(now, -time.Hour), clockPlus(now, time.Hour))
	upcomingSess := testutil.CreateSession(t, env.sessRepo, crs.ID, "Lecture 2",
		today(now), clockPlus(now, 30*time.Minute), clockPlus(now, time.Hour))
	testutil.Enroll(t, env.crsRepo, crs.ID, student.ID)
	testutil.Enroll(t, env.crsRepo, crs.ID, outsider.ID)

	scanURL := env.conf.FrontendBaseURL + "/attend/" + activeSess.ID

	t.Run("marks an enrolled student during an active session", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/attendance/scan", studentToken, scanBody(t, scanURL))
		env.server.ServeHTTP(rec, req)

		tt := httpTest{
			wantCode: http.StatusOK,
			wantData: marchallObj(t, map[string]string{"success": "Attendance marked successfully!"}),
		}
		checkCodeAndData(t, tt, rec)

		rec2, err := env.attRepo.GetRecord(context.Background(), activeSess.ID, student.ID)
		if err != nil {
			t.Fatalf("GetRecord() failed: %v", err)
		}
		if rec2.MarkedAt.IsZero() {
			t.Error("marked_at not set")
		}
	})

	t.Run("accepts the session_id query param form", func(t *testing.T) {
		payload := "https://any.example/scan?session_id=" + activeSess.ID
		req, rec := newAuthRequest(http.MethodPost, "/v1/attendance/scan", outsiderToken, scanBody(t, payload))
		env.server.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
	})

	rejections := []httpTest{
		{
			name:     "second scan is already marked",
			token:    studentToken,
			body:     scanBody(t, scanURL),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "Already marked present"}),
		},
		{
			name:     "unknown session",
			token:    studentToken,
			body:     scanBody(t, env.conf.FrontendBaseURL+"/attend/nope"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "Session not found"}),
		},
		{
			name:     "session not started",
			token:    studentToken,
			body:     scanBody(t, env.conf.FrontendBaseURL+"/attend/"+upcomingSess.ID),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "Session has not started yet"}),
		},
		{
			name:     "payload is not a link",
			token:    studentToken,
			body:     scanBody(t, "hello there"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "scanned code is not a valid attendance link"}),
		},
		{
			name:     "no token",
			body:     scanBody(t, scanURL),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "lecturers cannot scan",
			token:    lecturerToken,
			body:     scanBody(t, scanURL),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
	}
	for _, tt := range rejections {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/attendance/scan", tt.token, tt.body)
			env.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("not enrolled", func(t *testing.T) {
		stranger := testutil.CreateUser(t, env.usrRepo, "Sia Stranger", "siastr", "sia@test.cd", "", user.StudentRoles, true)
		req, rec := newAuthRequest(http.MethodPost, "/v1/attendance/scan", getToken(t, env.conf, stranger), scanBody(t, scanURL))
		env.server.ServeHTTP(rec, req)

		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "You are not enrolled in this course"}),
		}
		checkCodeAndData(t, tt, rec)
	})
}

func Test_attendanceApi_records(t *testing.T) {
	env := setup(t)
	now := time.Now().UTC()

	student := testutil.CreateUser(t, env.usrRepo, "Sam Student", "samstud", "sam@test.cd", "", user.StudentRoles, true)
	other := testutil.CreateUser(t, env.usrRepo, "Omar Other", "omaroth", "omar@test.cd", "", user.StudentRoles, true)
	lecturer := testutil.CreateUser(t, env.usrRepo, "Lea Lecturer", "lealect", "lea@test.cd", "", user.LecturerRoles, true)

	crs := testutil.CreateCourse(t, env.crsRepo, "cs101", "Intro to CS")
	sess := testutil.CreateSession(t, env.sessRepo, crs.ID, "Lecture 1",
		today(now), clockPlus(now, -time.Hour), clockPlus(now, time.Hour))
	testutil.MarkPresent(t, env.attRepo, sess.ID, student.ID)
	testutil.MarkPresent(t, env.attRepo, sess.ID, other.ID)

	getRecords := func(t *testing.T, path, token string) []attendance.Record {
		t.Helper()
		req, rec := newAuthRequest(http.MethodGet, path, token)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var recs []attendance.Record
		if err := json.Unmarshal(rec.Body.Bytes(), &recs); err != nil {
			t.Fatalf("unmarshalling response failed: %v", err)
		}
		return recs
	}

	t.Run("students see only their own records", func(t *testing.T) {
		recs := getRecords(t, "/v1/attendance/records", getToken(t, env.conf, student))
		if len(recs) != 1 || recs[0].StudentID != student.ID {
			t.Errorf("records = %+v, want only %s's", recs, student.Username)
		}
	})

	t.Run("no records yields an empty list", func(t *testing.T) {
		fresh := testutil.CreateUser(t, env.usrRepo, "Nia New", "nianew", "nia@test.cd", "", user.StudentRoles, true)
		recs := getRecords(t, "/v1/attendance/records", getToken(t, env.conf, fresh))
		if len(recs) != 0 {
			t.Errorf("records = %+v, want none", recs)
		}
	})

	t.Run("lecturers list a session's register", func(t *testing.T) {
		recs := getRecords(t, "/v1/sessions/"+sess.ID+"/attendance", getToken(t, env.conf, lecturer))
		if len(recs) != 2 {
			t.Fatalf("records = %+v, want 2", recs)
		}
		for _, r := range recs {
			if r.StudentName == "" {
				t.Errorf("record %s has no student_name", r.ID)
			}
		}
	})
}
