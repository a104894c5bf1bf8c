package sqlxrepos

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mahudhurio/core/course"
)

type departmentRow struct {
	ID        string    `db:"id"`
	Code      string    `db:"code"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

type semesterRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	StartsOn  time.Time `db:"starts_on"`
	EndsOn    time.Time `db:"ends_on"`
	CreatedAt time.Time `db:"created_at"`
}

type courseRow struct {
	ID           string      `db:"id"`
	Code         string      `db:"code"`
	Name         string      `db:"name"`
	DepartmentID null.String `db:"department_id"`
	SemesterID   null.String `db:"semester_id"`
	LecturerID   null.String `db:"lecturer_id"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

func (row courseRow) toCourse() course.Course {
	return course.Course{
		ID:           row.ID,
		Code:         row.Code,
		Name:         row.Name,
		DepartmentID: row.DepartmentID,
		SemesterID:   row.SemesterID,
		LecturerID:   row.LecturerID,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

type enrollmentRow struct {
	ID          string      `db:"id"`
	CourseID    string      `db:"course_id"`
	StudentID   string      `db:"student_id"`
	CreatedAt   time.Time   `db:"created_at"`
	CourseCode  null.String `db:"course_code"`
	StudentName null.String `db:"student_name"`
}

func (row enrollmentRow) toEnrollment() course.Enrollment {
	return course.Enrollment{
		ID:          row.ID,
		CourseID:    row.CourseID,
		StudentID:   row.StudentID,
		CreatedAt:   row.CreatedAt,
		CourseCode:  row.CourseCode.String,
		StudentName: row.StudentName.String,
	}
}

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *sqlx.DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CreateDepartment(ctx context.Context, dep course.Department) (course.Department, error) {
	query := `INSERT INTO department (id, code, name, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := repo.db.ExecContext(ctx, query, dep.ID, dep.Code, dep.Name, dep.CreatedAt); err != nil {
		return course.Department{}, errors.Wrap(err, "creating department")
	}
	return dep, nil
}

func (repo *courseRepository) QueryAllDepartments(ctx context.Context) ([]course.Department, error) {
	var rows []departmentRow
	query := `SELECT id, code, name, created_at FROM department ORDER BY code`
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying departments")
	}
	deps := make([]course.Department, 0, len(rows))
	for _, row := range rows {
		deps = append(deps, course.Department(row))
	}
	return deps, nil
}

func (repo *courseRepository) CreateSemester(ctx context.Context, sem course.Semester) (course.Semester, error) {
	query := `INSERT INTO semester (id, name, starts_on, ends_on, created_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := repo.db.ExecContext(ctx, query, sem.ID, sem.Name, sem.StartsOn, sem.EndsOn, sem.CreatedAt); err != nil {
		return course.Semester{}, errors.Wrap(err, "creating semester")
	}
	return sem, nil
}

func (repo *courseRepository) QueryAllSemesters(ctx context.Context) ([]course.Semester, error) {
	var rows []semesterRow
	query := `SELECT id, name, starts_on, ends_on, created_at FROM semester ORDER BY starts_on DESC`
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying semesters")
	}
	sems := make([]course.Semester, 0, len(rows))
	for _, row := range rows {
		sems = append(sems, course.Semester(row))
	}
	return sems, nil
}

func (repo *courseRepository) CheckCourseCodeUniqueness(ctx context.Context, code string, excludedCourses ...course.Course) error {
	query := `SELECT COUNT(*) FROM course WHERE code = $1`
	args := []interface{}{code}
	if len(excludedCourses) > 0 {
		ids := make([]string, 0, len(excludedCourses))
		for _, crs := range excludedCourses {
			ids = append(ids, crs.ID)
		}
		query += " AND NOT (id = ANY($2))"
		args = append(args, pq.Array(ids))
	}

	var count int
	if err := repo.db.GetContext(ctx, &count, query, args...); err != nil {
		return errors.Wrap(err, "checking course code uniqueness")
	}
	if count > 0 {
		return course.ErrCodeExists
	}
	return nil
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	query := `
INSERT INTO course (id, code, name, department_id, semester_id, lecturer_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := repo.db.ExecContext(ctx, query,
		crs.ID, crs.Code, crs.Name, crs.DepartmentID, crs.SemesterID, crs.LecturerID, crs.CreatedAt, crs.UpdatedAt)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "creating course")
	}
	return crs, nil
}

func (repo *courseRepository) QueryCourses(ctx context.Context, filter course.QueryFilter) ([]course.Course, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(val interface{}) string {
		args = append(args, val)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		conds = append(conds, "(code ILIKE "+p+" OR name ILIKE "+p+")")
	}
	if filter.DepartmentID != "" {
		conds = append(conds, "department_id = "+arg(filter.DepartmentID))
	}
	if filter.SemesterID != "" {
		conds = append(conds, "semester_id = "+arg(filter.SemesterID))
	}
	if filter.LecturerID != "" {
		conds = append(conds, "lecturer_id = "+arg(filter.LecturerID))
	}

	query := `SELECT * FROM course`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY code"

	var rows []courseRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.toCourse())
	}
	return courses, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	var row courseRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM course WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "getting course")
	}
	return row.toCourse(), nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	var (
		sets []string
		args []interface{}
	)
	set := func(col string, val interface{}) {
		args = append(args, val)
		sets = append(sets, col+" = $"+strconv.Itoa(len(args)))
	}

	// only save set fields
	if crs.Code != "" {
		set("code", crs.Code)
	}
	if crs.Name != "" {
		set("name", crs.Name)
	}
	if crs.DepartmentID.Valid {
		set("department_id", crs.DepartmentID)
	}
	if crs.SemesterID.Valid {
		set("semester_id", crs.SemesterID)
	}
	if crs.LecturerID.Valid {
		set("lecturer_id", crs.LecturerID)
	}
	if !crs.UpdatedAt.IsZero() {
		set("updated_at", crs.UpdatedAt)
	}
	if len(sets) == 0 {
		return repo.GetCourseByID(ctx, crs.ID)
	}

	args = append(args, crs.ID)
	query := `UPDATE course SET ` + strings.Join(sets, ", ") + ` WHERE id = $` + strconv.Itoa(len(args)) + ` RETURNING *`

	var row courseRow
	if err := repo.db.GetContext(ctx, &row, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	return row.toCourse(), nil
}

func (repo *courseRepository) DeleteCoursesByID(ctx context.Context, ids ...string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM course WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting courses")
	}
	return nil
}

func (repo *courseRepository) CreateEnrollment(ctx context.Context, enr course.Enrollment) (course.Enrollment, error) {
	query := `INSERT INTO enrollment (id, course_id, student_id, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := repo.db.ExecContext(ctx, query, enr.ID, enr.CourseID, enr.StudentID, enr.CreatedAt); err != nil {
		return course.Enrollment{}, errors.Wrap(err, "creating enrollment")
	}
	return enr, nil
}

const enrollmentSelect = `
SELECT e.id, e.course_id, e.student_id, e.created_at, c.code AS course_code, u.name AS student_name
FROM enrollment e
LEFT JOIN course c ON c.id = e.course_id
LEFT JOIN "user" u ON u.id = e.student_id`

func (repo *courseRepository) queryEnrollments(ctx context.Context, cond string, args ...interface{}) ([]course.Enrollment, error) {
	var rows []enrollmentRow
	query := enrollmentSelect + " WHERE " + cond + " ORDER BY e.created_at DESC"
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	enrs := make([]course.Enrollment, 0, len(rows))
	for _, row := range rows {
		enrs = append(enrs, row.toEnrollment())
	}
	return enrs, nil
}

func (repo *courseRepository) QueryEnrollmentsByCourse(ctx context.Context, courseID string) ([]course.Enrollment, error) {
	return repo.queryEnrollments(ctx, "e.course_id = $1", courseID)
}

func (repo *courseRepository) QueryEnrollmentsByStudent(ctx context.Context, studentID string) ([]course.Enrollment, error) {
	return repo.queryEnrollments(ctx, "e.student_id = $1", studentID)
}

func (repo *courseRepository) IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM enrollment WHERE course_id = $1 AND student_id = $2`
	if err := repo.db.GetContext(ctx, &count, query, courseID, studentID); err != nil {
		return false, errors.Wrap(err, "checking enrollment")
	}
	return count > 0, nil
}

func (repo *courseRepository) DeleteEnrollment(ctx context.Context, courseID, studentID string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM enrollment WHERE course_id = $1 AND student_id = $2`, courseID, studentID)
	if err != nil {
		return errors.Wrap(err, "deleting enrollment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.ErrEnrollmentNotFound
	}
	return nil
}
