package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/trezcool/mahudhurio/core"
)

var (
	// errors
	ErrNotFound = errors.New("session not found")

	// gating reasons shown in place of a scannable QR code
	ReasonNotStarted = "Session Not Started"
	ReasonEnded      = "Session Ended"

	qrSize = 256
)

type (
	Repository interface {
		CreateSession(ctx context.Context, sess Session) (Session, error)
		QuerySessions(ctx context.Context, filter QueryFilter) ([]Session, error)
		GetSessionByID(ctx context.Context, id string) (Session, error)
		UpdateSession(ctx context.Context, sess Session) (Session, error)
		DeleteSessionsByID(ctx context.Context, ids ...string) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, ns NewSession, createdBy string) (Session, error)
		Query(ctx context.Context, filter QueryFilter) ([]Session, error)
		GetByID(ctx context.Context, id string) (Session, error)
		Update(ctx context.Context, id string, us UpdateSession) (Session, error)
		Delete(ctx context.Context, ids ...string) error

		StatusOf(sess Session, now time.Time) Status
		IsScannable(sess Session, now time.Time) bool
		ScanURL(sess Session) string
		ScanView(sess Session, now time.Time) (ScanView, error)
	}

	service struct {
		repo   Repository
		conf   *core.Config
		logger core.Logger
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository, conf *core.Config, logger core.Logger) *service {
	return &service{
		repo:   repo,
		conf:   conf,
		logger: logger,
	}
}

func (svc *service) Create(ctx context.Context, ns NewSession, createdBy string) (Session, error) {
	now := time.Now().UTC()
	date, err := time.ParseInLocation(dateLayout, ns.SessionDate, svc.conf.Location())
	if err != nil {
		return Session{}, core.NewValidationError(errors.New("invalid session_date"))
	}
	sess := Session{
		ID:          uuid.New().String(),
		CourseID:    ns.CourseID,
		Name:        ns.Name,
		SessionDate: date,
		StartTime:   ns.StartTime,
		EndTime:     ns.EndTime,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if createdBy != "" {
		sess.CreatedBy.SetValid(createdBy)
	}
	return svc.repo.CreateSession(ctx, sess)
}

func (svc *service) Query(ctx context.Context, filter QueryFilter) ([]Session, error) {
	return svc.repo.QuerySessions(ctx, filter)
}

func (svc *service) GetByID(ctx context.Context, id string) (Session, error) {
	return svc.repo.GetSessionByID(ctx, id)
}

func (svc *service) Update(ctx context.Context, id string, us UpdateSession) (Session, error) {
	date, err := time.ParseInLocation(dateLayout, us.SessionDate, svc.conf.Location())
	if err != nil {
		return Session{}, core.NewValidationError(errors.New("invalid session_date"))
	}
	sess := Session{
		ID:          id,
		Name:        us.Name,
		SessionDate: date,
		StartTime:   us.StartTime,
		EndTime:     us.EndTime,
		UpdatedAt:   time.Now().UTC(),
	}
	return svc.repo.UpdateSession(ctx, sess)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteSessionsByID(ctx, ids...)
}

// StatusOf classifies sess against now; both sides are resolved in the
// configured location.
func (svc *service) StatusOf(sess Session, now time.Time) Status {
	loc := svc.conf.Location()
	return Classify(sess.StartsAt(loc), sess.EndsAt(loc), now.In(loc))
}

// IsScannable reports whether the session's QR code currently marks attendance.
func (svc *service) IsScannable(sess Session, now time.Time) bool {
	return svc.StatusOf(sess, now) == StatusActive
}

// ScanURL builds the absolute URL embedded in the session's QR code.
// Stable for a given session; carries nothing but the session id — the
// attendance service is the authority on whether marking succeeds.
func (svc *service) ScanURL(sess Session) string {
	return svc.conf.FrontendBaseURL + "/attend/" + sess.ID
}

// ScanView is what a lecturer dashboard renders for a session: the QR code of
// the scan URL, plus gating info when the session is not active.
type ScanView struct {
	Status    Status     `json:"status"`
	ScanURL   string     `json:"scan_url"`
	QRCodePNG []byte     `json:"qr_png"` // base64 over JSON
	Reason    string     `json:"reason,omitempty"`
	Boundary  *time.Time `json:"boundary,omitempty"`
}

// ScanView renders sess's QR code and derives its gating state at now.
// The PNG is produced regardless of status; obscuring a non-active code is a
// presentation concern. Reason/Boundary carry the overlay text and the
// relevant window edge (start if upcoming, end if expired).
func (svc *service) ScanView(sess Session, now time.Time) (ScanView, error) {
	scanURL := svc.ScanURL(sess)
	png, err := qrcode.Encode(scanURL, qrcode.Medium, qrSize)
	if err != nil {
		return ScanView{}, errors.Wrap(err, "encoding QR code")
	}

	view := ScanView{
		Status:    svc.StatusOf(sess, now),
		ScanURL:   scanURL,
		QRCodePNG: png,
	}
	loc := svc.conf.Location()
	switch view.Status {
	case StatusUpcoming:
		view.Reason = ReasonNotStarted
		startsAt := sess.StartsAt(loc)
		view.Boundary = &startsAt
	case StatusExpired:
		view.Reason = ReasonEnded
		endsAt := sess.EndsAt(loc)
		view.Boundary = &endsAt
	}
	return view, nil
}
