package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/mahudhurio/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) query() []attendance.Record {
	recs := make([]attendance.Record, 0, len(repo.db.records))
	for _, rec := range repo.db.records {
		recs = append(recs, *rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].MarkedAt.Before(recs[j].MarkedAt) })
	return recs
}

func (repo *attendanceRepository) CreateRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.records[rec.ID] = &rec
	return rec, nil
}

func (repo *attendanceRepository) GetRecord(ctx context.Context, sessionID, studentID string) (attendance.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, rec := range repo.db.records {
		if rec.SessionID == sessionID && rec.StudentID == studentID {
			return *rec, nil
		}
	}
	return attendance.Record{}, attendance.ErrRecordNotFound
}

func (repo *attendanceRepository) QueryRecordsBySession(ctx context.Context, sessionID string) ([]attendance.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var recs []attendance.Record
	for _, rec := range repo.query() {
		if rec.SessionID == sessionID {
			if usr, ok := repo.db.users[rec.StudentID]; ok {
				rec.StudentName = usr.Name
			}
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

func (repo *attendanceRepository) QueryRecordsByStudent(ctx context.Context, studentID string) ([]attendance.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var recs []attendance.Record
	for _, rec := range repo.query() {
		if rec.StudentID == studentID {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}
