package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mahudhurio/core/attendance"
)

type recordRow struct {
	ID          string      `db:"id"`
	SessionID   string      `db:"session_id"`
	StudentID   string      `db:"student_id"`
	MarkedAt    time.Time   `db:"marked_at"`
	StudentName null.String `db:"student_name"`
}

func (row recordRow) toRecord() attendance.Record {
	return attendance.Record{
		ID:          row.ID,
		SessionID:   row.SessionID,
		StudentID:   row.StudentID,
		MarkedAt:    row.MarkedAt,
		StudentName: row.StudentName.String,
	}
}

const recordSelect = `
SELECT r.id, r.session_id, r.student_id, r.marked_at, u.name AS student_name
FROM attendance_record r
LEFT JOIN "user" u ON u.id = r.student_id`

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *sqlx.DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) CreateRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	query := `INSERT INTO attendance_record (id, session_id, student_id, marked_at) VALUES ($1, $2, $3, $4)`
	if _, err := repo.db.ExecContext(ctx, query, rec.ID, rec.SessionID, rec.StudentID, rec.MarkedAt); err != nil {
		return attendance.Record{}, errors.Wrap(err, "creating attendance record")
	}
	return rec, nil
}

func (repo *attendanceRepository) GetRecord(ctx context.Context, sessionID, studentID string) (attendance.Record, error) {
	var row recordRow
	query := recordSelect + " WHERE r.session_id = $1 AND r.student_id = $2"
	if err := repo.db.GetContext(ctx, &row, query, sessionID, studentID); err != nil {
		if err == sql.ErrNoRows {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, errors.Wrap(err, "getting attendance record")
	}
	return row.toRecord(), nil
}

func (repo *attendanceRepository) queryRecords(ctx context.Context, cond string, args ...interface{}) ([]attendance.Record, error) {
	var rows []recordRow
	query := recordSelect + " WHERE " + cond + " ORDER BY r.marked_at"
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying attendance records")
	}
	recs := make([]attendance.Record, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, row.toRecord())
	}
	return recs, nil
}

func (repo *attendanceRepository) QueryRecordsBySession(ctx context.Context, sessionID string) ([]attendance.Record, error) {
	return repo.queryRecords(ctx, "r.session_id = $1", sessionID)
}

func (repo *attendanceRepository) QueryRecordsByStudent(ctx context.Context, studentID string) ([]attendance.Record, error) {
	return repo.queryRecords(ctx, "r.student_id = $1", studentID)
}
