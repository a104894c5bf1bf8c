package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/attendance"
)

var scanSuccessMsg = "Attendance marked successfully!"

type attendanceApi struct {
	svc      attendance.ServiceInterface
	scanner  *attendance.Scanner
	validate *validator.Validate
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := attendanceApi{
		svc:      deps.AttendanceSvc,
		scanner:  deps.Scanner,
		validate: deps.Validate,
	}

	ag := g.Group("/attendance", jwt)
	ag.POST("/scan", api.scan, studentMiddleware())
	ag.GET("/records", api.queryOwnRecords, studentMiddleware())
}

// Handlers

// scan records the student's presence from a scanned QR payload.
// Rejections carry the marker's message verbatim; infrastructure failures get
// a generic message and a 502.
func (api *attendanceApi) scan(ctx echo.Context) error {
	var data ScanRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ScanRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	err = api.scanner.HandleScan(ctx.Request().Context(), data.Payload, claims.Subject, nil)
	if err != nil {
		switch cause := errors.Cause(err).(type) {
		case *attendance.RejectedError:
			return echo.NewHTTPError(http.StatusBadRequest, cause.Msg)
		case *attendance.TransportError:
			return echo.NewHTTPError(http.StatusBadGateway, cause.Error())
		}
		switch errors.Cause(err) {
		case attendance.ErrInvalidPayload:
			return core.NewValidationError(err)
		case attendance.ErrUnauthenticated:
			return errUnauthorized
		case attendance.ErrScanInProgress:
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return errors.Wrap(err, "handling scan")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: scanSuccessMsg})
}

func (api *attendanceApi) queryOwnRecords(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	recs, err := api.svc.QueryByStudent(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying attendance records")
	}
	if recs == nil {
		recs = []attendance.Record{}
	}
	return ctx.JSON(http.StatusOK, recs)
}

type ScanRequest struct {
	Payload string `json:"payload" validate:"required"`
}

func (sr *ScanRequest) Validate(validate *validator.Validate) error {
	sr.Payload = core.CleanString(sr.Payload)
	return validate.Struct(sr)
}
