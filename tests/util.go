package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/course"
	"github.com/trezcool/mahudhurio/core/session"
	"github.com/trezcool/mahudhurio/core/user"
)

// Logger discards everything; tests that assert on log output use their own.
type Logger struct{}

func (Logger) Debug(msg string, args ...interface{}) {}
func (Logger) Info(msg string, args ...interface{})  {}
func (Logger) Warn(msg string, args ...interface{})  {}
func (Logger) Error(msg string, args ...interface{}) {}
func (Logger) Fatal(msg string, args ...interface{}) {}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		ID:        uuid.New().String(),
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	usr.SetActive(isActive)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateCourse(t *testing.T, repo course.Repository, code, name string) course.Course {
	t.Helper()

	now := time.Now().UTC()
	crs, err := repo.CreateCourse(context.Background(), course.Course{
		ID:        uuid.New().String(),
		Code:      code,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}

// CreateSession creates a session on date with a startTime-endTime window ("HH:MM").
func CreateSession(t *testing.T, repo session.Repository, courseID, name string, date time.Time, startTime, endTime string) session.Session {
	t.Helper()

	now := time.Now().UTC()
	sess, err := repo.CreateSession(context.Background(), session.Session{
		ID:          uuid.New().String(),
		CourseID:    courseID,
		Name:        name,
		SessionDate: date,
		StartTime:   startTime,
		EndTime:     endTime,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreateSession() failed: %v", err)
	}
	return sess
}

func Enroll(t *testing.T, repo course.Repository, courseID, studentID string) course.Enrollment {
	t.Helper()

	enr, err := repo.CreateEnrollment(context.Background(), course.Enrollment{
		ID:        uuid.New().String(),
		CourseID:  courseID,
		StudentID: studentID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Enroll() failed: %v", err)
	}
	return enr
}

func MarkPresent(t *testing.T, repo attendance.Repository, sessionID, studentID string) attendance.Record {
	t.Helper()

	rec, err := repo.CreateRecord(context.Background(), attendance.Record{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		StudentID: studentID,
		MarkedAt:  time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("MarkPresent() failed: %v", err)
	}
	return rec
}
