package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gfranca/atelieagenda/internal/db"
	"github.com/gfranca/atelieagenda/internal/model"
)

type BlockRepository struct {
	pool *db.Pool
}

func NewBlockRepository(pool *db.Pool) *BlockRepository {
	return &BlockRepository{pool: pool}
}

// Overlapping returns every block intersecting [from, to), both
// professional-specific and business-wide (professional_id NULL).
func (r *BlockRepository) Overlapping(ctx context.Context, from, to time.Time) ([]model.Block, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, COALESCE(professional_id::text, ''), starts_at, ends_at, COALESCE(reason, ''), created_at
		FROM blocks
		WHERE starts_at < $2 AND ends_at > $1
		ORDER BY starts_at ASC
	`, from, to)
	if err != nil {
		return nil, err
	}
	return scanBlocks(rows)
}

func (r *BlockRepository) Create(ctx context.Context, block *model.Block) (string, error) {
	id := uuid.NewString()
	var professionalID any
	if block.ProfessionalID != "" {
		professionalID = block.ProfessionalID
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO blocks (id, professional_id, starts_at, ends_at, reason)
		VALUES ($1, $2, $3, $4, $5)
	`, id, professionalID, block.StartsAt, block.EndsAt, block.Reason)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *BlockRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM blocks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanBlocks(rows pgx.Rows) ([]model.Block, error) {
	defer rows.Close()
	var out []model.Block
	for rows.Next() {
		var b model.Block
		if err := rows.Scan(&b.ID, &b.ProfessionalID, &b.StartsAt, &b.EndsAt, &b.Reason, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}
