package course

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mahudhurio/core"
)

type Department struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

type Semester struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartsOn  time.Time `json:"starts_on"`
	EndsOn    time.Time `json:"ends_on"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

type Course struct {
	ID           string      `json:"id"`
	Code         string      `json:"code"`
	Name         string      `json:"name"`
	DepartmentID null.String `json:"department_id,omitempty"`
	SemesterID   null.String `json:"semester_id,omitempty"`
	LecturerID   null.String `json:"lecturer_id,omitempty"`
	CreatedAt    time.Time   `json:"created_at"` // UTC
	UpdatedAt    time.Time   `json:"updated_at"` // UTC
}

type Enrollment struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"course_id"`
	StudentID string    `json:"student_id"`
	CreatedAt time.Time `json:"created_at"` // UTC

	// display metadata, populated on reads
	CourseCode  string `json:"course_code,omitempty"`
	StudentName string `json:"student_name,omitempty"`
}

type NewDepartment struct {
	Code string `json:"code" validate:"required,alphanum_"`
	Name string `json:"name" validate:"required"`
}

func (nd *NewDepartment) Validate(ctx context.Context, validate *validator.Validate) error {
	nd.Code = core.CleanString(nd.Code, true /* lower */)
	nd.Name = core.CleanString(nd.Name)
	return validate.Struct(nd)
}

type NewSemester struct {
	Name     string `json:"name" validate:"required"`
	StartsOn string `json:"starts_on" validate:"required,datetime=2006-01-02"`
	EndsOn   string `json:"ends_on" validate:"required,datetime=2006-01-02"`
}

func (ns *NewSemester) Validate(ctx context.Context, validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	return validate.Struct(ns)
}

type NewCourse struct {
	Code         string `json:"code" validate:"required,alphanum_"`
	Name         string `json:"name" validate:"required"`
	DepartmentID string `json:"department_id"`
	SemesterID   string `json:"semester_id"`
	LecturerID   string `json:"lecturer_id"`
}

func (nc *NewCourse) Validate(ctx context.Context, validate *validator.Validate) error {
	nc.Code = core.CleanString(nc.Code, true /* lower */)
	nc.Name = core.CleanString(nc.Name)
	return validate.Struct(nc)
}

type UpdateCourse struct {
	Code         string `json:"code" validate:"omitempty,alphanum_"`
	Name         string `json:"name"`
	DepartmentID string `json:"department_id"`
	SemesterID   string `json:"semester_id"`
	LecturerID   string `json:"lecturer_id"`
}

func (uc *UpdateCourse) Validate(ctx context.Context, validate *validator.Validate, orig Course) error {
	if code := core.CleanString(uc.Code, true /* lower */); code != "" {
		uc.Code = code
	} else {
		uc.Code = orig.Code
	}
	if name := core.CleanString(uc.Name); name != "" {
		uc.Name = name
	} else {
		uc.Name = orig.Name
	}
	return validate.Struct(uc)
}

type NewEnrollment struct {
	CourseID  string `json:"course_id" validate:"required"`
	StudentID string `json:"student_id" validate:"required"`
}

func (ne *NewEnrollment) Validate(ctx context.Context, validate *validator.Validate) error {
	ne.CourseID = core.CleanString(ne.CourseID)
	ne.StudentID = core.CleanString(ne.StudentID)
	return validate.Struct(ne)
}

type QueryFilter struct {
	Search       string `query:"search"`
	DepartmentID string `query:"department_id"`
	SemesterID   string `query:"semester_id"`
	LecturerID   string `query:"lecturer_id"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.DepartmentID == "" && qf.SemesterID == "" && qf.LecturerID == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
