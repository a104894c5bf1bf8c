package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/mahudhurio/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CreateDepartment(ctx context.Context, dep course.Department) (course.Department, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.departments[dep.ID] = &dep
	return dep, nil
}

func (repo *courseRepository) QueryAllDepartments(ctx context.Context) ([]course.Department, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	deps := make([]course.Department, 0, len(repo.db.departments))
	for _, dep := range repo.db.departments {
		deps = append(deps, *dep)
	}
	sort.Slice(deps, func(i, j int) bool { return deps[i].Code < deps[j].Code })
	return deps, nil
}

func (repo *courseRepository) CreateSemester(ctx context.Context, sem course.Semester) (course.Semester, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.semesters[sem.ID] = &sem
	return sem, nil
}

func (repo *courseRepository) QueryAllSemesters(ctx context.Context) ([]course.Semester, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	sems := make([]course.Semester, 0, len(repo.db.semesters))
	for _, sem := range repo.db.semesters {
		sems = append(sems, *sem)
	}
	sort.Slice(sems, func(i, j int) bool { return sems[i].StartsOn.After(sems[j].StartsOn) })
	return sems, nil
}

func (repo *courseRepository) queryCourses() []course.Course {
	courses := make([]course.Course, 0, len(repo.db.courses))
	for _, crs := range repo.db.courses {
		courses = append(courses, *crs)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Code < courses[j].Code })
	return courses
}

func isExcludedCourse(crs course.Course, excludedCourses []course.Course) bool {
	for _, exclCrs := range excludedCourses {
		if crs.ID == exclCrs.ID {
			return true
		}
	}
	return false
}

func (repo *courseRepository) CheckCourseCodeUniqueness(ctx context.Context, code string, excludedCourses ...course.Course) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, crs := range repo.queryCourses() {
		if isExcludedCourse(crs, excludedCourses) {
			continue
		}
		if code != "" && crs.Code == code {
			return course.ErrCodeExists
		}
	}
	return nil
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.courses[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) QueryCourses(ctx context.Context, filter course.QueryFilter) ([]course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	match := func(crs course.Course) bool {
		if filter.Search != "" {
			search := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(crs.Code), search) &&
				!strings.Contains(strings.ToLower(crs.Name), search) {
				return false
			}
		}
		if filter.DepartmentID != "" && crs.DepartmentID.String != filter.DepartmentID {
			return false
		}
		if filter.SemesterID != "" && crs.SemesterID.String != filter.SemesterID {
			return false
		}
		if filter.LecturerID != "" && crs.LecturerID.String != filter.LecturerID {
			return false
		}
		return true
	}

	var courses []course.Course
	for _, crs := range repo.queryCourses() {
		if match(crs) {
			courses = append(courses, crs)
		}
	}
	return courses, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if crs, ok := repo.db.courses[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	// only save set fields
	orig, ok := repo.db.courses[crs.ID]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	if crs.Code != "" {
		orig.Code = crs.Code
	}
	if crs.Name != "" {
		orig.Name = crs.Name
	}
	if crs.DepartmentID.Valid {
		orig.DepartmentID = crs.DepartmentID
	}
	if crs.SemesterID.Valid {
		orig.SemesterID = crs.SemesterID
	}
	if crs.LecturerID.Valid {
		orig.LecturerID = crs.LecturerID
	}
	if !crs.UpdatedAt.IsZero() {
		orig.UpdatedAt = crs.UpdatedAt
	}
	return *orig, nil
}

func (repo *courseRepository) DeleteCoursesByID(ctx context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, id := range ids {
		delete(repo.db.courses, id)
	}
	return nil
}

func (repo *courseRepository) CreateEnrollment(ctx context.Context, enr course.Enrollment) (course.Enrollment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.enrollments[enr.ID] = &enr
	return enr, nil
}

func (repo *courseRepository) queryEnrollments() []course.Enrollment {
	enrs := make([]course.Enrollment, 0, len(repo.db.enrollments))
	for _, enr := range repo.db.enrollments {
		enrs = append(enrs, *enr)
	}
	sort.Slice(enrs, func(i, j int) bool { return enrs[i].CreatedAt.After(enrs[j].CreatedAt) })
	return enrs
}

func (repo *courseRepository) QueryEnrollmentsByCourse(ctx context.Context, courseID string) ([]course.Enrollment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var enrs []course.Enrollment
	for _, enr := range repo.queryEnrollments() {
		if enr.CourseID == courseID {
			if usr, ok := repo.db.users[enr.StudentID]; ok {
				enr.StudentName = usr.Name
			}
			enrs = append(enrs, enr)
		}
	}
	return enrs, nil
}

func (repo *courseRepository) QueryEnrollmentsByStudent(ctx context.Context, studentID string) ([]course.Enrollment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var enrs []course.Enrollment
	for _, enr := range repo.queryEnrollments() {
		if enr.StudentID == studentID {
			if crs, ok := repo.db.courses[enr.CourseID]; ok {
				enr.CourseCode = crs.Code
			}
			enrs = append(enrs, enr)
		}
	}
	return enrs, nil
}

func (repo *courseRepository) IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, enr := range repo.db.enrollments {
		if enr.CourseID == courseID && enr.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (repo *courseRepository) DeleteEnrollment(ctx context.Context, courseID, studentID string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for id, enr := range repo.db.enrollments {
		if enr.CourseID == courseID && enr.StudentID == studentID {
			delete(repo.db.enrollments, id)
			return nil
		}
	}
	return course.ErrEnrollmentNotFound
}
