package attendance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/course"
	"github.com/trezcool/mahudhurio/core/session"
)

var nowFunc = time.Now // mockable

// rejection messages; passed through to students verbatim
const (
	msgSessionNotFound = "Session not found"
	msgNotStarted      = "Session has not started yet"
	msgEnded           = "Session has already ended"
	msgNotEnrolled     = "You are not enrolled in this course"
	msgAlreadyMarked   = "Already marked present"
)

type (
	Repository interface {
		CreateRecord(ctx context.Context, rec Record) (Record, error)
		GetRecord(ctx context.Context, sessionID, studentID string) (Record, error)
		QueryRecordsBySession(ctx context.Context, sessionID string) ([]Record, error)
		QueryRecordsByStudent(ctx context.Context, studentID string) ([]Record, error)
	}

	ServiceInterface interface {
		Marker
		QueryBySession(ctx context.Context, sessionID string) ([]Record, error)
		QueryByStudent(ctx context.Context, studentID string) ([]Record, error)
	}

	// service is the first-party attendance marker: the authority on whether a
	// scan may be recorded. It enforces the session window, enrollment and
	// duplicate-prevention rules.
	service struct {
		repo    Repository
		sessSvc session.ServiceInterface
		crsSvc  course.ServiceInterface
		logger  core.Logger
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository, sessSvc session.ServiceInterface, crsSvc course.ServiceInterface, logger core.Logger) *service {
	return &service{
		repo:    repo,
		sessSvc: sessSvc,
		crsSvc:  crsSvc,
		logger:  logger,
	}
}

// MarkAttendance validates and records one attendance entry.
// Business rejections come back as *RejectedError; anything else is an
// internal error for the caller to wrap.
func (svc *service) MarkAttendance(ctx context.Context, req MarkRequest) error {
	sess, err := svc.sessSvc.GetByID(ctx, req.SessionID)
	if err != nil {
		if errors.Cause(err) == session.ErrNotFound {
			return &RejectedError{Msg: msgSessionNotFound}
		}
		return errors.Wrap(err, "finding session")
	}

	switch svc.sessSvc.StatusOf(sess, nowFunc()) {
	case session.StatusUpcoming:
		return &RejectedError{Msg: msgNotStarted}
	case session.StatusExpired:
		return &RejectedError{Msg: msgEnded}
	}

	enrolled, err := svc.crsSvc.IsEnrolled(ctx, sess.CourseID, req.StudentID)
	if err != nil {
		return errors.Wrap(err, "checking enrollment")
	}
	if !enrolled {
		return &RejectedError{Msg: msgNotEnrolled}
	}

	if _, err = svc.repo.GetRecord(ctx, req.SessionID, req.StudentID); err == nil {
		return &RejectedError{Msg: msgAlreadyMarked}
	} else if errors.Cause(err) != ErrRecordNotFound {
		return errors.Wrap(err, "checking existing record")
	}

	rec := Record{
		ID:        uuid.New().String(),
		SessionID: req.SessionID,
		StudentID: req.StudentID,
		MarkedAt:  nowFunc().UTC(),
	}
	if _, err = svc.repo.CreateRecord(ctx, rec); err != nil {
		return errors.Wrap(err, "creating record")
	}
	return nil
}

func (svc *service) QueryBySession(ctx context.Context, sessionID string) ([]Record, error) {
	return svc.repo.QueryRecordsBySession(ctx, sessionID)
}

func (svc *service) QueryByStudent(ctx context.Context, studentID string) ([]Record, error) {
	return svc.repo.QueryRecordsByStudent(ctx, studentID)
}
