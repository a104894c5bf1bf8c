package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/trezcool/mahudhurio/core/session"
	"github.com/trezcool/mahudhurio/core/user"
	testutil "github.com/trezcool/mahudhurio/tests"
)

// clockPlus shifts now by d and formats it as a session wall-clock time,
// clamped to today so windows never cross midnight.
func clockPlus(now time.Time, d time.Duration) string {
	t := now.Add(d)
	if t.Day() != now.Day() {
		if d > 0 {
			return "23:59"
		}
		return "00:00"
	}
	return t.Format("15:04")
}

func today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func Test_sessionApi(t *testing.T) {
	env := setup(t)
	now := time.Now().UTC()

	lecturer := testutil.CreateUser(t, env.usrRepo, "Lea Lecturer", "lealect", "lea@test.cd", "", user.LecturerRoles, true)
	student := testutil.CreateUser(t, env.usrRepo, "Sam Student", "samstud", "sam@test.cd", "", user.StudentRoles, true)
	lecturerToken := getToken(t, env.conf, lecturer)
	studentToken := getToken(t, env.conf, student)

	crs := testutil.CreateCourse(t, env.crsRepo, "cs101", "Intro to CS")
	activeSess := testutil.CreateSession(t, env.sessRepo, crs.ID, "Lecture 1",
		today(now), clockPlus(now, -time.Hour), clockPlus(now, time.Hour))
	upcomingSess := testutil.CreateSession(t, env.sessRepo, crs.ID, "Lecture 2",
		today(now), clockPlus(now, 30*time.Minute), clockPlus(now, time.Hour))

	forbidden := marchallObj(t, httpErr{Error: "permission denied"})
	notFound := marchallObj(t, httpErr{Error: "not found"})

	gateTests := []httpTest{
		{name: "query: no token", method: http.MethodGet, path: "/v1/sessions", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "create: student forbidden", method: http.MethodPost, path: "/v1/sessions", token: studentToken, wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "update: student forbidden", method: http.MethodPut, path: "/v1/sessions/" + activeSess.ID, token: studentToken, wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "destroy: student forbidden", method: http.MethodDelete, path: "/v1/sessions/" + activeSess.ID, token: studentToken, wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "scan view: student forbidden", method: http.MethodGet, path: "/v1/sessions/" + activeSess.ID + "/qr", token: studentToken, wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "attendance: student forbidden", method: http.MethodGet, path: "/v1/sessions/" + activeSess.ID + "/attendance", token: studentToken, wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "retrieve: unknown session", method: http.MethodGet, path: "/v1/sessions/nope", token: lecturerToken, wantCode: http.StatusNotFound, wantData: notFound},
		{name: "scan view: unknown session", method: http.MethodGet, path: "/v1/sessions/nope/qr", token: lecturerToken, wantCode: http.StatusNotFound, wantData: notFound},
	}
	for _, tt := range gateTests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("create", func(t *testing.T) {
		body := marchallObj(t, session.NewSession{
			CourseID:    crs.ID,
			Name:        "Lecture 3",
			SessionDate: "2026-09-07",
			StartTime:   "09:00",
			EndTime:     "10:30",
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/sessions", lecturerToken, body)
		env.server.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var sess session.Session
		if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
			t.Fatalf("unmarshalling response failed: %v", err)
		}
		if sess.ID == "" {
			t.Error("ID not set")
		}
		if sess.CourseID != crs.ID || sess.Name != "Lecture 3" || sess.StartTime != "09:00" || sess.EndTime != "10:30" {
			t.Errorf("session = %+v", sess)
		}
		if !sess.CreatedBy.Valid || sess.CreatedBy.String != lecturer.ID {
			t.Errorf("created_by = %v, want %v", sess.CreatedBy, lecturer.ID)
		}
	})

	t.Run("create: end before start", func(t *testing.T) {
		body := marchallObj(t, session.NewSession{
			CourseID:    crs.ID,
			Name:        "Backwards",
			SessionDate: "2026-09-07",
			StartTime:   "10:30",
			EndTime:     "09:00",
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/sessions", lecturerToken, body)
		env.server.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusBadRequest, rec.Body.String())
		}
	})

	t.Run("retrieve decorates live status", func(t *testing.T) {
		for sessID, wantStatus := range map[string]session.Status{
			activeSess.ID:   session.StatusActive,
			upcomingSess.ID: session.StatusUpcoming,
		} {
			req, rec := newAuthRequest(http.MethodGet, "/v1/sessions/"+sessID, studentToken)
			env.server.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
			}
			var detail struct {
				ID     string         `json:"id"`
				Status session.Status `json:"status"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
				t.Fatalf("unmarshalling response failed: %v", err)
			}
			if detail.ID != sessID || detail.Status != wantStatus {
				t.Errorf("detail = %+v, want status %v", detail, wantStatus)
			}
		}
	})

	t.Run("update", func(t *testing.T) {
		sess := testutil.CreateSession(t, env.sessRepo, crs.ID, "Old Name", today(now), "09:00", "10:30")
		body := marchallObj(t, session.UpdateSession{Name: "New Name"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/sessions/"+sess.ID, lecturerToken, body)
		env.server.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var updated session.Session
		if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
			t.Fatalf("unmarshalling response failed: %v", err)
		}
		if updated.Name != "New Name" || updated.StartTime != "09:00" || updated.EndTime != "10:30" {
			t.Errorf("session = %+v", updated)
		}
	})

	t.Run("destroy", func(t *testing.T) {
		sess := testutil.CreateSession(t, env.sessRepo, crs.ID, "Doomed", today(now), "09:00", "10:30")
		req, rec := newAuthRequest(http.MethodDelete, "/v1/sessions/"+sess.ID, lecturerToken)
		env.server.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		req, rec = newAuthRequest(http.MethodGet, "/v1/sessions/"+sess.ID, lecturerToken)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("retrieve after destroy: code = %v; wantCode %v", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("query filters by course", func(t *testing.T) {
		other := testutil.CreateCourse(t, env.crsRepo, "ma201", "Linear Algebra")
		testutil.CreateSession(t, env.sessRepo, other.ID, "Algebra 1", today(now), "11:00", "12:00")

		req, rec := newAuthRequest(http.MethodGet, "/v1/sessions?course_id="+other.ID, studentToken)
		env.server.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var sessions []session.Session
		if err := json.Unmarshal(rec.Body.Bytes(), &sessions); err != nil {
			t.Fatalf("unmarshalling response failed: %v", err)
		}
		if len(sessions) != 1 || sessions[0].Name != "Algebra 1" {
			t.Errorf("sessions = %+v, want the one algebra session", sessions)
		}
		if sessions[0].CourseName != "Linear Algebra" {
			t.Errorf("course_name = %q, want %q", sessions[0].CourseName, "Linear Algebra")
		}
	})
}

func Test_sessionApi_scanView(t *testing.T) {
	env := setup(t)
	now := time.Now().UTC()

	lecturer := testutil.CreateUser(t, env.usrRepo, "Lea Lecturer", "lealect", "lea@test.cd", "", user.LecturerRoles, true)
	token := getToken(t, env.conf, lecturer)
	crs := testutil.CreateCourse(t, env.crsRepo, "cs101", "Intro to CS")

	get := func(t *testing.T, sessID string) session.ScanView {
		t.Helper()
		req, rec := newAuthRequest(http.MethodGet, "/v1/sessions/"+sessID+"/qr", token)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var view session.ScanView
		if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
			t.Fatalf("unmarshalling response failed: %v", err)
		}
		return view
	}

	t.Run("active session", func(t *testing.T) {
		sess := testutil.CreateSession(t, env.sessRepo, crs.ID, "Live",
			today(now), clockPlus(now, -time.Hour), clockPlus(now, time.Hour))
		view := get(t, sess.ID)

		if view.Status != session.StatusActive {
			t.Errorf("status = %v, want %v", view.Status, session.StatusActive)
		}
		if want := env.conf.FrontendBaseURL + "/attend/" + sess.ID; view.ScanURL != want {
			t.Errorf("scan_url = %q, want %q", view.ScanURL, want)
		}
		if len(view.QRCodePNG) == 0 {
			t.Error("qr_png is empty")
		}
		if view.Reason != "" || view.Boundary != nil {
			t.Errorf("active view carries gating info: reason %q, boundary %v", view.Reason, view.Boundary)
		}
	})

	t.Run("upcoming session", func(t *testing.T) {
		sess := testutil.CreateSession(t, env.sessRepo, crs.ID, "Later",
			today(now), clockPlus(now, 30*time.Minute), clockPlus(now, time.Hour))
		view := get(t, sess.ID)

		if view.Status != session.StatusUpcoming {
			t.Errorf("status = %v, want %v", view.Status, session.StatusUpcoming)
		}
		if view.Reason != session.ReasonNotStarted {
			t.Errorf("reason = %q, want %q", view.Reason, session.ReasonNotStarted)
		}
		if view.Boundary == nil {
			t.Error("boundary is nil, want the session start")
		}
		if len(view.QRCodePNG) == 0 {
			t.Error("qr_png is empty; the code is rendered regardless of status")
		}
	})

	t.Run("expired session", func(t *testing.T) {
		sess := testutil.CreateSession(t, env.sessRepo, crs.ID, "Gone",
			today(now), clockPlus(now, -2*time.Hour), clockPlus(now, -time.Hour))
		view := get(t, sess.ID)

		if view.Status != session.StatusExpired {
			t.Errorf("status = %v, want %v", view.Status, session.StatusExpired)
		}
		if view.Reason != session.ReasonEnded {
			t.Errorf("reason = %q, want %q", view.Reason, session.ReasonEnded)
		}
		if view.Boundary == nil {
			t.Error("boundary is nil, want the session end")
		}
	})
}
