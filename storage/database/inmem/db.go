// Package inmemdb provides map-backed repositories for tests and local hacking.
package inmemdb

import (
	"sync"

	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/course"
	"github.com/trezcool/mahudhurio/core/session"
	"github.com/trezcool/mahudhurio/core/user"
)

type DB struct {
	mutex sync.RWMutex

	users       map[string]*user.User
	sessions    map[string]*session.Session
	departments map[string]*course.Department
	semesters   map[string]*course.Semester
	courses     map[string]*course.Course
	enrollments map[string]*course.Enrollment
	records     map[string]*attendance.Record
}

func New() *DB {
	db := new(DB)
	db.Reset()
	return db
}

func (db *DB) Reset() {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	db.users = make(map[string]*user.User)
	db.sessions = make(map[string]*session.Session)
	db.departments = make(map[string]*course.Department)
	db.semesters = make(map[string]*course.Semester)
	db.courses = make(map[string]*course.Course)
	db.enrollments = make(map[string]*course.Enrollment)
	db.records = make(map[string]*attendance.Record)
}
