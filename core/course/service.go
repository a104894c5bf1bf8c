package course

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mahudhurio/core"
)

var (
	// errors
	ErrNotFound           = errors.New("course not found")
	ErrDepartmentNotFound = errors.New("department not found")
	ErrSemesterNotFound   = errors.New("semester not found")
	ErrCodeExists         = errors.New("a course with this code already exists")
	ErrAlreadyEnrolled    = errors.New("student is already enrolled in this course")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
)

type (
	Repository interface {
		CreateDepartment(ctx context.Context, dep Department) (Department, error)
		QueryAllDepartments(ctx context.Context) ([]Department, error)

		CreateSemester(ctx context.Context, sem Semester) (Semester, error)
		QueryAllSemesters(ctx context.Context) ([]Semester, error)

		CheckCourseCodeUniqueness(ctx context.Context, code string, excludedCourses ...Course) error
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		QueryCourses(ctx context.Context, filter QueryFilter) ([]Course, error)
		GetCourseByID(ctx context.Context, id string) (Course, error)
		UpdateCourse(ctx context.Context, crs Course) (Course, error)
		DeleteCoursesByID(ctx context.Context, ids ...string) error

		CreateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)
		QueryEnrollmentsByCourse(ctx context.Context, courseID string) ([]Enrollment, error)
		QueryEnrollmentsByStudent(ctx context.Context, studentID string) ([]Enrollment, error)
		IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error)
		DeleteEnrollment(ctx context.Context, courseID, studentID string) error
	}

	ServiceInterface interface {
		CreateDepartment(ctx context.Context, nd NewDepartment) (Department, error)
		QueryDepartments(ctx context.Context) ([]Department, error)

		CreateSemester(ctx context.Context, ns NewSemester) (Semester, error)
		QuerySemesters(ctx context.Context) ([]Semester, error)

		CheckCodeUniqueness(ctx context.Context, code string, exclCourses ...Course) error
		CreateCourse(ctx context.Context, nc NewCourse) (Course, error)
		QueryCourses(ctx context.Context, filter QueryFilter) ([]Course, error)
		GetCourseByID(ctx context.Context, id string) (Course, error)
		UpdateCourse(ctx context.Context, id string, uc UpdateCourse) (Course, error)
		DeleteCourses(ctx context.Context, ids ...string) error

		Enroll(ctx context.Context, ne NewEnrollment) (Enrollment, error)
		QueryEnrollmentsByCourse(ctx context.Context, courseID string) ([]Enrollment, error)
		QueryEnrollmentsByStudent(ctx context.Context, studentID string) ([]Enrollment, error)
		IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error)
		Unenroll(ctx context.Context, courseID, studentID string) error
	}

	service struct {
		repo   Repository
		logger core.Logger
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository, logger core.Logger) *service {
	return &service{
		repo:   repo,
		logger: logger,
	}
}

func (svc *service) CreateDepartment(ctx context.Context, nd NewDepartment) (Department, error) {
	dep := Department{
		ID:        uuid.New().String(),
		Code:      nd.Code,
		Name:      nd.Name,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateDepartment(ctx, dep)
}

func (svc *service) QueryDepartments(ctx context.Context) ([]Department, error) {
	return svc.repo.QueryAllDepartments(ctx)
}

func (svc *service) CreateSemester(ctx context.Context, ns NewSemester) (Semester, error) {
	startsOn, err := time.Parse("2006-01-02", ns.StartsOn)
	if err != nil {
		return Semester{}, core.NewValidationError(errors.New("invalid starts_on"))
	}
	endsOn, err := time.Parse("2006-01-02", ns.EndsOn)
	if err != nil {
		return Semester{}, core.NewValidationError(errors.New("invalid ends_on"))
	}
	if !endsOn.After(startsOn) {
		return Semester{}, core.NewValidationError(
			nil, core.FieldError{Field: "ends_on", Error: "ends_on must be after starts_on"})
	}
	sem := Semester{
		ID:        uuid.New().String(),
		Name:      ns.Name,
		StartsOn:  startsOn,
		EndsOn:    endsOn,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateSemester(ctx, sem)
}

func (svc *service) QuerySemesters(ctx context.Context) ([]Semester, error) {
	return svc.repo.QueryAllSemesters(ctx)
}

func (svc *service) CheckCodeUniqueness(ctx context.Context, code string, exclCourses ...Course) error {
	if err := svc.repo.CheckCourseCodeUniqueness(ctx, code, exclCourses...); err != nil {
		if errors.Cause(err) == ErrCodeExists {
			return core.NewValidationError(err, core.FieldError{Field: "code", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) CreateCourse(ctx context.Context, nc NewCourse) (Course, error) {
	if err := svc.CheckCodeUniqueness(ctx, nc.Code); err != nil {
		return Course{}, err
	}
	now := time.Now().UTC()
	crs := Course{
		ID:        uuid.New().String(),
		Code:      nc.Code,
		Name:      nc.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if nc.DepartmentID != "" {
		crs.DepartmentID = null.StringFrom(nc.DepartmentID)
	}
	if nc.SemesterID != "" {
		crs.SemesterID = null.StringFrom(nc.SemesterID)
	}
	if nc.LecturerID != "" {
		crs.LecturerID = null.StringFrom(nc.LecturerID)
	}
	return svc.repo.CreateCourse(ctx, crs)
}

func (svc *service) QueryCourses(ctx context.Context, filter QueryFilter) ([]Course, error) {
	return svc.repo.QueryCourses(ctx, filter)
}

func (svc *service) GetCourseByID(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *service) UpdateCourse(ctx context.Context, id string, uc UpdateCourse) (Course, error) {
	orig, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if uc.Code != orig.Code {
		if err := svc.CheckCodeUniqueness(ctx, uc.Code, orig); err != nil {
			return Course{}, err
		}
	}
	crs := Course{
		ID:        id,
		Code:      uc.Code,
		Name:      uc.Name,
		UpdatedAt: time.Now().UTC(),
	}
	if uc.DepartmentID != "" {
		crs.DepartmentID = null.StringFrom(uc.DepartmentID)
	} else {
		crs.DepartmentID = orig.DepartmentID
	}
	if uc.SemesterID != "" {
		crs.SemesterID = null.StringFrom(uc.SemesterID)
	} else {
		crs.SemesterID = orig.SemesterID
	}
	if uc.LecturerID != "" {
		crs.LecturerID = null.StringFrom(uc.LecturerID)
	} else {
		crs.LecturerID = orig.LecturerID
	}
	return svc.repo.UpdateCourse(ctx, crs)
}

func (svc *service) DeleteCourses(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteCoursesByID(ctx, ids...)
}

func (svc *service) Enroll(ctx context.Context, ne NewEnrollment) (Enrollment, error) {
	if _, err := svc.repo.GetCourseByID(ctx, ne.CourseID); err != nil {
		return Enrollment{}, err
	}
	enrolled, err := svc.repo.IsEnrolled(ctx, ne.CourseID, ne.StudentID)
	if err != nil {
		return Enrollment{}, err
	}
	if enrolled {
		return Enrollment{}, core.NewValidationError(ErrAlreadyEnrolled)
	}
	enr := Enrollment{
		ID:        uuid.New().String(),
		CourseID:  ne.CourseID,
		StudentID: ne.StudentID,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateEnrollment(ctx, enr)
}

func (svc *service) QueryEnrollmentsByCourse(ctx context.Context, courseID string) ([]Enrollment, error) {
	return svc.repo.QueryEnrollmentsByCourse(ctx, courseID)
}

func (svc *service) QueryEnrollmentsByStudent(ctx context.Context, studentID string) ([]Enrollment, error) {
	return svc.repo.QueryEnrollmentsByStudent(ctx, studentID)
}

func (svc *service) IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error) {
	return svc.repo.IsEnrolled(ctx, courseID, studentID)
}

func (svc *service) Unenroll(ctx context.Context, courseID, studentID string) error {
	return svc.repo.DeleteEnrollment(ctx, courseID, studentID)
}
