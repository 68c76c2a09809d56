package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/learnway/member/internal/app/models"
	"github.com/learnway/member/internal/pkg/apperrors"
	"github.com/learnway/member/internal/pkg/dberrors"
	"github.com/learnway/member/internal/pkg/logger"
)

const membersTable = "members"

var memberColumns = []string{
	"id", "member_id", "member_pw", "member_name", "member_birth", "member_phone",
	"member_telecom", "member_role", "member_email", "member_gender", "member_school",
	"member_grade", "member_address", "member_detailadd", "member_image", "member_note",
	"created_at", "updated_at",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// PgMemberRepository handles member database operations
type PgMemberRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewMemberRepository creates a new PgMemberRepository
func NewMemberRepository(db DBTX) *PgMemberRepository {
	return &PgMemberRepository{
		db: db,
		sb: statementBuilder(),
	}
}

func scanMember(row pgx.Row) (*models.Member, error) {
	m := &models.Member{}
	var telecom, role, gender string
	err := row.Scan(
		&m.ID, &m.MemberID, &m.Password, &m.Name, &m.Birth, &m.Phone,
		&telecom, &role, &m.Email, &gender, &m.School,
		&m.Grade, &m.Address, &m.DetailAddress, &m.Image, &m.Note,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Telecom = models.Telecom(telecom)
	m.Role = models.Role(role)
	m.Gender = models.Gender(gender)
	return m, nil
}

func (r *PgMemberRepository) findOne(ctx context.Context, where squirrel.Eq) (*models.Member, error) {
	sql, args, err := r.sb.Select(memberColumns...).
		From(membersTable).
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build find member query: %w", err)
	}

	member, err := scanMember(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrMemberNotFound
		}
		logger.Error().Err(err).Interface("where", where).Msg("Error scanning member row")
		return nil, fmt.Errorf("error getting member: %w", err)
	}
	return member, nil
}

// FindByID retrieves a member by internal id
func (r *PgMemberRepository) FindByID(ctx context.Context, id int64) (*models.Member, error) {
	return r.findOne(ctx, squirrel.Eq{"id": id})
}

// FindByMemberID retrieves a member by login id
func (r *PgMemberRepository) FindByMemberID(ctx context.Context, memberID string) (*models.Member, error) {
	return r.findOne(ctx, squirrel.Eq{"member_id": memberID})
}

// ExistsByMemberID checks if a login id is used by a member
func (r *PgMemberRepository) ExistsByMemberID(ctx context.Context, memberID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM members WHERE member_id = $1)`, memberID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking member id: %w", err)
	}
	return exists, nil
}

func (r *PgMemberRepository) insertQuery(m *models.Member) squirrel.InsertBuilder {
	return r.sb.Insert(membersTable).
		Columns(
			"member_id", "member_pw", "member_name", "member_birth", "member_phone",
			"member_telecom", "member_role", "member_email", "member_gender", "member_school",
			"member_grade", "member_address", "member_detailadd", "member_image", "member_note",
		).
		Values(
			m.MemberID, m.Password, m.Name, m.Birth, m.Phone,
			string(m.Telecom), string(m.Role), m.Email, string(m.Gender), m.School,
			m.Grade, m.Address, m.DetailAddress, m.Image, m.Note,
		).
		Suffix("RETURNING id")
}

// Create inserts a member and returns its internal id
func (r *PgMemberRepository) Create(ctx context.Context, m *models.Member) (int64, error) {
	sql, args, err := r.insertQuery(m).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create member query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsDuplicateConstraintError(err, dberrors.MemberIDUnique) {
			return 0, apperrors.NewFieldError("username", apperrors.ErrDuplicateIdentity, "member id already in use")
		}
		logger.Error().Err(err).Str("memberId", m.MemberID).Msg("Error executing create member query")
		return 0, fmt.Errorf("error creating member: %w", err)
	}
	return id, nil
}

func (r *PgMemberRepository) updateQuery(m *models.Member) squirrel.UpdateBuilder {
	return r.sb.Update(membersTable).
		SetMap(map[string]interface{}{
			"member_pw":        m.Password,
			"member_name":      m.Name,
			"member_birth":     m.Birth,
			"member_phone":     m.Phone,
			"member_telecom":   string(m.Telecom),
			"member_email":     m.Email,
			"member_gender":    string(m.Gender),
			"member_school":    m.School,
			"member_grade":     m.Grade,
			"member_address":   m.Address,
			"member_detailadd": m.DetailAddress,
			"member_image":     m.Image,
			"updated_at":       time.Now(),
		}).
		Where(squirrel.Eq{"id": m.ID})
}

// Update overwrites the mutable columns of a member
func (r *PgMemberRepository) Update(ctx context.Context, m *models.Member) error {
	sql, args, err := r.updateQuery(m).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update member query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("id", m.ID).Msg("Error executing update member query")
		return fmt.Errorf("error updating member: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrMemberNotFound
	}
	return nil
}

// UpdateNote replaces the admin note of a member
func (r *PgMemberRepository) UpdateNote(ctx context.Context, id int64, note string) error {
	sql, args, err := r.sb.Update(membersTable).
		Set("member_note", note).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update note query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating member note: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrMemberNotFound
	}
	return nil
}

// FindAll returns a page of members ordered by id and the total count
func (r *PgMemberRepository) FindAll(ctx context.Context, offset, limit uint64) ([]*models.Member, int64, error) {
	return r.findPage(ctx, nil, offset, limit)
}

// FindByNameContaining returns a page of members whose name contains fragment, ignoring case
func (r *PgMemberRepository) FindByNameContaining(ctx context.Context, fragment string, offset, limit uint64) ([]*models.Member, int64, error) {
	return r.findPage(ctx, nameContains(fragment), offset, limit)
}

func nameContains(fragment string) squirrel.Sqlizer {
	return squirrel.ILike{"member_name": "%" + likeEscaper.Replace(fragment) + "%"}
}

func (r *PgMemberRepository) pageQuery(where squirrel.Sqlizer, offset, limit uint64) squirrel.SelectBuilder {
	q := r.sb.Select(memberColumns...).From(membersTable)
	if where != nil {
		q = q.Where(where)
	}
	return q.OrderBy("id ASC").Offset(offset).Limit(limit)
}

func (r *PgMemberRepository) countQuery(where squirrel.Sqlizer) squirrel.SelectBuilder {
	q := r.sb.Select("COUNT(*)").From(membersTable)
	if where != nil {
		q = q.Where(where)
	}
	return q
}

func (r *PgMemberRepository) findPage(ctx context.Context, where squirrel.Sqlizer, offset, limit uint64) ([]*models.Member, int64, error) {
	countSQL, countArgs, err := r.countQuery(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count members query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting members")
		return nil, 0, fmt.Errorf("error counting members: %w", err)
	}

	sql, args, err := r.pageQuery(where, offset, limit).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list members query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list members query")
		return nil, 0, fmt.Errorf("error querying members: %w", err)
	}
	defer rows.Close()

	members := []*models.Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning member row: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating member rows: %w", err)
	}

	return members, total, nil
}
