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

	"github.com/trezcool/mahudhurio/core/session"
)

type sessionRow struct {
	ID          string      `db:"id"`
	CourseID    string      `db:"course_id"`
	Name        string      `db:"name"`
	SessionDate time.Time   `db:"session_date"`
	StartTime   string      `db:"start_time"`
	EndTime     string      `db:"end_time"`
	CreatedBy   null.String `db:"created_by"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
	CourseName  null.String `db:"course_name"`
}

func (row sessionRow) toSession() session.Session {
	return session.Session{
		ID:          row.ID,
		CourseID:    row.CourseID,
		Name:        row.Name,
		SessionDate: row.SessionDate,
		StartTime:   row.StartTime,
		EndTime:     row.EndTime,
		CreatedBy:   row.CreatedBy,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
		CourseName:  row.CourseName.String,
	}
}

const sessionSelect = `
SELECT s.id, s.course_id, s.name, s.session_date, s.start_time, s.end_time,
       s.created_by, s.created_at, s.updated_at, c.name AS course_name
FROM session s
LEFT JOIN course c ON c.id = s.course_id`

type sessionRepository struct {
	db *sqlx.DB
}

var _ session.Repository = (*sessionRepository)(nil)

func NewSessionRepository(db *sqlx.DB) *sessionRepository {
	return &sessionRepository{db: db}
}

func (repo *sessionRepository) CreateSession(ctx context.Context, sess session.Session) (session.Session, error) {
	query := `
INSERT INTO session (id, course_id, name, session_date, start_time, end_time, created_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := repo.db.ExecContext(ctx, query,
		sess.ID, sess.CourseID, sess.Name, sess.SessionDate, sess.StartTime, sess.EndTime,
		sess.CreatedBy, sess.CreatedAt, sess.UpdatedAt)
	if err != nil {
		return session.Session{}, errors.Wrap(err, "creating session")
	}
	return sess, nil
}

func (repo *sessionRepository) QuerySessions(ctx context.Context, filter session.QueryFilter) ([]session.Session, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(val interface{}) string {
		args = append(args, val)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.CourseID != "" {
		conds = append(conds, "s.course_id = "+arg(filter.CourseID))
	}
	if filter.CreatedBy != "" {
		conds = append(conds, "s.created_by = "+arg(filter.CreatedBy))
	}
	if !filter.DateFrom.IsZero() {
		conds = append(conds, "s.session_date >= "+arg(filter.DateFrom))
	}
	if !filter.DateTo.IsZero() {
		conds = append(conds, "s.session_date <= "+arg(filter.DateTo))
	}

	query := sessionSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY s.session_date DESC, s.start_time DESC"

	var rows []sessionRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying sessions")
	}
	sessions := make([]session.Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, row.toSession())
	}
	return sessions, nil
}

func (repo *sessionRepository) GetSessionByID(ctx context.Context, id string) (session.Session, error) {
	var row sessionRow
	if err := repo.db.GetContext(ctx, &row, sessionSelect+" WHERE s.id = $1", id); err != nil {
		if err == sql.ErrNoRows {
			return session.Session{}, session.ErrNotFound
		}
		return session.Session{}, errors.Wrap(err, "getting session")
	}
	return row.toSession(), nil
}

func (repo *sessionRepository) UpdateSession(ctx context.Context, sess session.Session) (session.Session, error) {
	var (
		sets []string
		args []interface{}
	)
	set := func(col string, val interface{}) {
		args = append(args, val)
		sets = append(sets, col+" = $"+strconv.Itoa(len(args)))
	}

	// only save set fields
	if sess.Name != "" {
		set("name", sess.Name)
	}
	if !sess.SessionDate.IsZero() {
		set("session_date", sess.SessionDate)
	}
	if sess.StartTime != "" {
		set("start_time", sess.StartTime)
	}
	if sess.EndTime != "" {
		set("end_time", sess.EndTime)
	}
	if !sess.UpdatedAt.IsZero() {
		set("updated_at", sess.UpdatedAt)
	}
	if len(sets) == 0 {
		return repo.GetSessionByID(ctx, sess.ID)
	}

	args = append(args, sess.ID)
	query := `UPDATE session SET ` + strings.Join(sets, ", ") + ` WHERE id = $` + strconv.Itoa(len(args))

	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return session.Session{}, errors.Wrap(err, "updating session")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return session.Session{}, session.ErrNotFound
	}
	return repo.GetSessionByID(ctx, sess.ID)
}

func (repo *sessionRepository) DeleteSessionsByID(ctx context.Context, ids ...string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM session WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting sessions")
	}
	return nil
}
