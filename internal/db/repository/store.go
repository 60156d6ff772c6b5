package repository

import (
	"context"
	"database/sql"

	"worktime/internal/db"
	"worktime/internal/domain"
)

// repoSet groups the per-pair repositories over one DBTX.
type repoSet struct {
	events    *EventRepo
	sessions  *SessionRepo
	summaries *SummaryRepo
	audit     *AuditRepo
}

func newRepoSet(q DBTX) repoSet {
	return repoSet{
		events:    NewEventRepo(q),
		sessions:  NewSessionRepo(q),
		summaries: NewSummaryRepo(q),
		audit:     NewAuditRepo(q),
	}
}

func (r repoSet) Events() domain.EventRepository      { return r.events }
func (r repoSet) Sessions() domain.SessionRepository  { return r.sessions }
func (r repoSet) Summaries() domain.SummaryRepository { return r.summaries }
func (r repoSet) Audit() domain.AuditRepository       { return r.audit }

// Store is the root unit of work over the write pool. Outside a
// transaction its repositories run directly on the pool; InTx hands
// the caller a transaction-scoped view of the same repositories.
type Store struct {
	repoSet
	pool *sql.DB
}

var _ domain.UnitOfWork = (*Store)(nil)

// NewStore builds a Store over the single-connection write pool.
func NewStore(pool *sql.DB) *Store {
	return &Store{repoSet: newRepoSet(pool), pool: pool}
}

// InTx runs fn with repositories bound to one transaction. The write
// pool holds a single connection, so transactions fully serialize.
func (s *Store) InTx(ctx context.Context, fn func(tx domain.RepoSet) error) error {
	return db.InTx(ctx, s.pool, func(tx *sql.Tx) error {
		return fn(newRepoSet(tx))
	})
}
