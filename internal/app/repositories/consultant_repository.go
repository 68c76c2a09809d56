package repositories

import (
	"context"
	"fmt"
)

// PgConsultantRepository reads the consultants table
type PgConsultantRepository struct {
	db DBTX
}

// NewConsultantRepository creates a new PgConsultantRepository
func NewConsultantRepository(db DBTX) *PgConsultantRepository {
	return &PgConsultantRepository{db: db}
}

// ExistsByConsultantID checks if a login id is used by a consultant
func (r *PgConsultantRepository) ExistsByConsultantID(ctx context.Context, consultantID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM consultants WHERE consultant_id = $1)`, consultantID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking consultant id: %w", err)
	}
	return exists, nil
}
