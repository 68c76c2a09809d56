package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/learnway/member/internal/app/models"
	"github.com/learnway/member/internal/pkg/apperrors"
	"github.com/learnway/member/internal/pkg/dberrors"
	"github.com/learnway/member/internal/pkg/logger"
)

const targetUnisTable = "target_unis"

// PgTargetUniRepository handles target university database operations
type PgTargetUniRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewTargetUniRepository creates a new PgTargetUniRepository
func NewTargetUniRepository(db DBTX) *PgTargetUniRepository {
	return &PgTargetUniRepository{
		db: db,
		sb: statementBuilder(),
	}
}

func (r *PgTargetUniRepository) selectQuery(where squirrel.Eq) squirrel.SelectBuilder {
	return r.sb.Select("id", "member_id", "uni_name", "uni_rank").
		From(targetUnisTable).
		Where(where).
		OrderBy("member_id ASC", "uni_rank ASC")
}

func (r *PgTargetUniRepository) query(ctx context.Context, where squirrel.Eq) ([]*models.TargetUni, error) {
	sql, args, err := r.selectQuery(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build target university query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing target university query")
		return nil, fmt.Errorf("error querying target universities: %w", err)
	}
	defer rows.Close()

	unis := []*models.TargetUni{}
	for rows.Next() {
		t := &models.TargetUni{}
		if err := rows.Scan(&t.ID, &t.MemberID, &t.Name, &t.Rank); err != nil {
			return nil, fmt.Errorf("error scanning target university row: %w", err)
		}
		unis = append(unis, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating target university rows: %w", err)
	}
	return unis, nil
}

// FindByMember returns the member's target universities ordered by rank
func (r *PgTargetUniRepository) FindByMember(ctx context.Context, memberPK int64) ([]*models.TargetUni, error) {
	return r.query(ctx, squirrel.Eq{"member_id": memberPK})
}

// FindByMembers groups the target universities of several members by member
func (r *PgTargetUniRepository) FindByMembers(ctx context.Context, memberPKs []int64) (map[int64][]*models.TargetUni, error) {
	grouped := make(map[int64][]*models.TargetUni, len(memberPKs))
	if len(memberPKs) == 0 {
		return grouped, nil
	}

	unis, err := r.query(ctx, squirrel.Eq{"member_id": memberPKs})
	if err != nil {
		return nil, err
	}
	for _, t := range unis {
		grouped[t.MemberID] = append(grouped[t.MemberID], t)
	}
	return grouped, nil
}

// Create inserts a target university and returns its id
func (r *PgTargetUniRepository) Create(ctx context.Context, uni *models.TargetUni) (int64, error) {
	sql, args, err := r.sb.Insert(targetUnisTable).
		Columns("member_id", "uni_name", "uni_rank").
		Values(uni.MemberID, uni.Name, uni.Rank).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create target university query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsDuplicateConstraintError(err, dberrors.TargetUniRankKey) {
			return 0, apperrors.ErrTargetUniRankTaken
		}
		logger.Error().Err(err).Int64("memberPk", uni.MemberID).Int("rank", uni.Rank).Msg("Error creating target university")
		return 0, fmt.Errorf("error creating target university: %w", err)
	}
	return id, nil
}

// UpdateName renames the institution of an existing row
func (r *PgTargetUniRepository) UpdateName(ctx context.Context, id int64, name string) error {
	sql, args, err := r.sb.Update(targetUnisTable).
		Set("uni_name", name).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update target university query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating target university: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError(fmt.Sprintf("target university %d not found", id))
	}
	return nil
}
