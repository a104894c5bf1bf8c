package echoapi

import (
	"net/http"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/session"
)

type sessionApi struct {
	svc      session.ServiceInterface
	attSvc   attendance.ServiceInterface
	validate *validator.Validate
}

func registerSessionAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := sessionApi{
		svc:      deps.SessionSvc,
		attSvc:   deps.AttendanceSvc,
		validate: deps.Validate,
	}

	sg := g.Group("/sessions", jwt)
	sg.POST("", api.create, staffMiddleware())
	sg.GET("", api.query)
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update, staffMiddleware())
	sg.DELETE("/:id", api.destroy, staffMiddleware())

	// lecturer dashboard: live QR code + gating state
	sg.GET("/:id/qr", api.scanView, staffMiddleware())
	sg.GET("/:id/attendance", api.queryAttendance, staffMiddleware())
}

// Handlers

func (api *sessionApi) create(ctx echo.Context) error {
	var data session.NewSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSession")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	sess, err := api.svc.Create(ctx.Request().Context(), data, claims.Subject)
	if err != nil {
		return errors.Wrap(err, "creating session")
	}
	return ctx.JSON(http.StatusCreated, sess)
}

func (api *sessionApi) query(ctx echo.Context) error {
	filter := new(session.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []session.Session{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	sessions, err := api.svc.Query(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying sessions")
	}
	orderSessions(sessions, ordering.Orderings)
	if sessions == nil {
		sessions = []session.Session{}
	}
	return ctx.JSON(http.StatusOK, sessions)
}

func orderSessions(sessions []session.Session, orderings []core.DBOrdering) {
	// last ordering first so the first requested field ends up dominant
	for k := len(orderings) - 1; k >= 0; k-- {
		ord := orderings[k]
		sort.SliceStable(sessions, func(i, j int) bool {
			var less bool
			switch ord.Field {
			case "name":
				less = sessions[i].Name < sessions[j].Name
			case "session_date":
				less = sessions[i].SessionDate.Before(sessions[j].SessionDate)
			case "start_time":
				less = sessions[i].StartTime < sessions[j].StartTime
			case "created_at":
				less = sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
			default:
				return false
			}
			if ord.Ascending {
				return less
			}
			return !less
		})
	}
}

func (api *sessionApi) getSession(ctx echo.Context) (session.Session, error) {
	sess, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == session.ErrNotFound {
			return session.Session{}, errHttpNotFound
		}
		return session.Session{}, errors.Wrap(err, "finding session by ID")
	}
	return sess, nil
}

func (api *sessionApi) retrieve(ctx echo.Context) error {
	sess, err := api.getSession(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SessionDetail{
		Session: sess,
		Status:  api.svc.StatusOf(sess, time.Now()),
	})
}

func (api *sessionApi) update(ctx echo.Context) error {
	orig, err := api.getSession(ctx)
	if err != nil {
		return err
	}

	var data session.UpdateSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSession")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, orig); err != nil {
		return err
	}

	sess, err := api.svc.Update(ctx.Request().Context(), orig.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating session")
	}
	return ctx.JSON(http.StatusOK, sess)
}

func (api *sessionApi) destroy(ctx echo.Context) error {
	sess, err := api.getSession(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), sess.ID); err != nil {
		return errors.Wrap(err, "deleting session")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *sessionApi) scanView(ctx echo.Context) error {
	sess, err := api.getSession(ctx)
	if err != nil {
		return err
	}

	view, err := api.svc.ScanView(sess, time.Now())
	if err != nil {
		return errors.Wrap(err, "building scan view")
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *sessionApi) queryAttendance(ctx echo.Context) error {
	sess, err := api.getSession(ctx)
	if err != nil {
		return err
	}

	recs, err := api.attSvc.QueryBySession(ctx.Request().Context(), sess.ID)
	if err != nil {
		return errors.Wrap(err, "querying attendance records")
	}
	if recs == nil {
		recs = []attendance.Record{}
	}
	return ctx.JSON(http.StatusOK, recs)
}

// SessionDetail decorates a session with its live status.
type SessionDetail struct {
	session.Session
	Status session.Status `json:"status"`
}
