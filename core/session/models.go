package session

import (
	"context"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mahudhurio/core"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Session is a single class meeting during which attendance may be marked.
//
// SessionDate is a calendar date; StartTime/EndTime are wall-clock "HH:MM"
// strings. They only become comparable instants through StartsAt/EndsAt with
// an explicit location.
type Session struct {
	ID          string      `json:"id"`
	CourseID    string      `json:"course_id"`
	Name        string      `json:"name"`
	SessionDate time.Time   `json:"session_date"`
	StartTime   string      `json:"start_time"`
	EndTime     string      `json:"end_time"`
	CreatedBy   null.String `json:"created_by,omitempty"`
	CreatedAt   time.Time   `json:"created_at"` // UTC
	UpdatedAt   time.Time   `json:"updated_at"` // UTC

	// display metadata, populated on reads; no invariants
	CourseName string `json:"course_name,omitempty"`
}

// StartsAt combines SessionDate and StartTime into an instant in loc.
func (s Session) StartsAt(loc *time.Location) time.Time {
	return combine(s.SessionDate, s.StartTime, loc)
}

// EndsAt combines SessionDate and EndTime into an instant in loc.
func (s Session) EndsAt(loc *time.Location) time.Time {
	return combine(s.SessionDate, s.EndTime, loc)
}

func combine(date time.Time, wallClock string, loc *time.Location) time.Time {
	t, err := time.ParseInLocation(timeLayout, wallClock, loc)
	if err != nil {
		// validation guarantees HH:MM; a bad stored value degrades to midnight
		t = time.Time{}
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, loc)
}

// NewSession contains information needed to create a new Session.
type NewSession struct {
	CourseID    string `json:"course_id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	SessionDate string `json:"session_date" validate:"required,datetime=2006-01-02"`
	StartTime   string `json:"start_time" validate:"required,timehhmm"`
	EndTime     string `json:"end_time" validate:"required,timehhmm"`
}

func (ns *NewSession) Validate(ctx context.Context, validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.CourseID = core.CleanString(ns.CourseID)
	return validate.Struct(ns)
}

// UpdateSession defines what information may be provided to modify an existing Session.
type UpdateSession struct {
	Name        string `json:"name"`
	SessionDate string `json:"session_date" validate:"omitempty,datetime=2006-01-02"`
	StartTime   string `json:"start_time" validate:"omitempty,timehhmm"`
	EndTime     string `json:"end_time" validate:"omitempty,timehhmm"`
}

func (us *UpdateSession) Validate(ctx context.Context, validate *validator.Validate, orig Session) error {
	if name := core.CleanString(us.Name); name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}
	if us.SessionDate == "" {
		us.SessionDate = orig.SessionDate.Format(dateLayout)
	}
	if us.StartTime == "" {
		us.StartTime = orig.StartTime
	}
	if us.EndTime == "" {
		us.EndTime = orig.EndTime
	}
	return validate.Struct(us)
}

type QueryFilter struct {
	CourseID  string    `query:"course_id"`
	CreatedBy string    `query:"created_by"`
	DateFrom  time.Time `query:"date_from"`
	DateTo    time.Time `query:"date_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.CourseID == "" && qf.CreatedBy == "" && qf.DateFrom.IsZero() && qf.DateTo.IsZero()
}

var (
	sessionWindowTag  = "sessionwindow"
	sessionWindowText = "end_time must be after start_time"
)

// InitValidators registers this package's custom validators & translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(sessionStructValidation, NewSession{})
	validate.RegisterStructValidation(sessionStructValidation, UpdateSession{})
	core.RegisterCustomTranslation(validate, translator, sessionWindowTag, sessionWindowText)
}

// sessionStructValidation enforces the start < end invariant on session windows.
func sessionStructValidation(sl validator.StructLevel) {
	var startStr, endStr string
	switch s := sl.Current().Interface().(type) {
	case NewSession:
		startStr, endStr = s.StartTime, s.EndTime
	case UpdateSession:
		startStr, endStr = s.StartTime, s.EndTime
	}
	if startStr == "" || endStr == "" {
		return // field-level validators report these
	}
	start, err1 := time.Parse(timeLayout, startStr)
	end, err2 := time.Parse(timeLayout, endStr)
	if err1 != nil || err2 != nil {
		return
	}
	if !end.After(start) {
		sl.ReportError(endStr, "end_time", "EndTime", sessionWindowTag, "")
	}
}
