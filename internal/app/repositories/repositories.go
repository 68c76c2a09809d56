package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/learnway/member/internal/app/models"
	"github.com/learnway/member/internal/db"
)

// DBTX is the query surface shared by *pgxpool.Pool and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// MemberRepository defines member persistence
type MemberRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Member, error)
	FindByMemberID(ctx context.Context, memberID string) (*models.Member, error)
	ExistsByMemberID(ctx context.Context, memberID string) (bool, error)
	Create(ctx context.Context, member *models.Member) (int64, error)
	Update(ctx context.Context, member *models.Member) error
	UpdateNote(ctx context.Context, id int64, note string) error
	FindAll(ctx context.Context, offset, limit uint64) ([]*models.Member, int64, error)
	FindByNameContaining(ctx context.Context, fragment string, offset, limit uint64) ([]*models.Member, int64, error)
}

// TargetUniRepository defines target university persistence
type TargetUniRepository interface {
	FindByMember(ctx context.Context, memberPK int64) ([]*models.TargetUni, error)
	FindByMembers(ctx context.Context, memberPKs []int64) (map[int64][]*models.TargetUni, error)
	Create(ctx context.Context, uni *models.TargetUni) (int64, error)
	UpdateName(ctx context.Context, id int64, name string) error
}

// ConsultantRepository is the consultant side of the login id namespace
type ConsultantRepository interface {
	ExistsByConsultantID(ctx context.Context, consultantID string) (bool, error)
}

// Store groups the repositories and runs units of work against them
type Store interface {
	Members() MemberRepository
	TargetUnis() TargetUniRepository
	Consultants() ConsultantRepository

	// WithTransaction runs fn with a Store bound to one transaction.
	// Inside a transaction it reuses the current one.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

// Repositories holds all the repository instances
type Repositories struct {
	members     *PgMemberRepository
	targetUnis  *PgTargetUniRepository
	consultants *PgConsultantRepository
	pg          *db.PostgresDB // nil when bound to a transaction
}

// NewRepositories initializes all repositories on the connection pool
func NewRepositories(pg *db.PostgresDB) *Repositories {
	r := newRepositories(pg.Pool)
	r.pg = pg
	return r
}

func newRepositories(conn DBTX) *Repositories {
	return &Repositories{
		members:     NewMemberRepository(conn),
		targetUnis:  NewTargetUniRepository(conn),
		consultants: NewConsultantRepository(conn),
	}
}

func (r *Repositories) Members() MemberRepository         { return r.members }
func (r *Repositories) TargetUnis() TargetUniRepository   { return r.targetUnis }
func (r *Repositories) Consultants() ConsultantRepository { return r.consultants }

// WithTransaction implements Store
func (r *Repositories) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	if r.pg == nil {
		return fn(ctx, r)
	}
	return r.pg.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, newRepositories(tx))
	})
}

func statementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}
