package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/mahudhurio/core/session"
)

type sessionRepository struct {
	db *DB
}

var _ session.Repository = (*sessionRepository)(nil)

func NewSessionRepository(db *DB) *sessionRepository {
	return &sessionRepository{db: db}
}

func (repo *sessionRepository) query() []session.Session {
	sessions := make([]session.Session, 0, len(repo.db.sessions))
	for _, sess := range repo.db.sessions {
		sessions = append(sessions, *sess)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].SessionDate.After(sessions[j].SessionDate)
	})
	return sessions
}

func (repo *sessionRepository) CreateSession(ctx context.Context, sess session.Session) (session.Session, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.sessions[sess.ID] = &sess
	return sess, nil
}

func (repo *sessionRepository) QuerySessions(ctx context.Context, filter session.QueryFilter) ([]session.Session, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	match := func(sess session.Session) bool {
		if filter.CourseID != "" && sess.CourseID != filter.CourseID {
			return false
		}
		if filter.CreatedBy != "" && sess.CreatedBy.String != filter.CreatedBy {
			return false
		}
		if !filter.DateFrom.IsZero() && sess.SessionDate.Before(filter.DateFrom) {
			return false
		}
		if !filter.DateTo.IsZero() && sess.SessionDate.After(filter.DateTo) {
			return false
		}
		return true
	}

	var sessions []session.Session
	for _, sess := range repo.query() {
		if match(sess) {
			if crs, ok := repo.db.courses[sess.CourseID]; ok {
				sess.CourseName = crs.Name
			}
			sessions = append(sessions, sess)
		}
	}
	return sessions, nil
}

func (repo *sessionRepository) GetSessionByID(ctx context.Context, id string) (session.Session, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if sess, ok := repo.db.sessions[id]; ok {
		res := *sess
		if crs, ok := repo.db.courses[res.CourseID]; ok {
			res.CourseName = crs.Name
		}
		return res, nil
	}
	return session.Session{}, session.ErrNotFound
}

func (repo *sessionRepository) UpdateSession(ctx context.Context, sess session.Session) (session.Session, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	// only save set fields
	orig, ok := repo.db.sessions[sess.ID]
	if !ok {
		return session.Session{}, session.ErrNotFound
	}
	if sess.Name != "" {
		orig.Name = sess.Name
	}
	if !sess.SessionDate.IsZero() {
		orig.SessionDate = sess.SessionDate
	}
	if sess.StartTime != "" {
		orig.StartTime = sess.StartTime
	}
	if sess.EndTime != "" {
		orig.EndTime = sess.EndTime
	}
	if !sess.UpdatedAt.IsZero() {
		orig.UpdatedAt = sess.UpdatedAt
	}
	return *orig, nil
}

func (repo *sessionRepository) DeleteSessionsByID(ctx context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, id := range ids {
		delete(repo.db.sessions, id)
	}
	return nil
}
