package storage

import (
	"context"

	"github.com/gfranca/atelieagenda/internal/db"
	"github.com/gfranca/atelieagenda/internal/model"
)

type CatalogRepository struct {
	pool *db.Pool
}

func NewCatalogRepository(pool *db.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

func (r *CatalogRepository) ListServices(ctx context.Context) ([]model.Service, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, name, COALESCE(duration_minutes, 0), COALESCE(price::text, ''), COALESCE(description, ''), created_at
		FROM services
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Service
	for rows.Next() {
		var s model.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.DurationMinutes, &s.Price, &s.Description, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// ListProfessionals returns active professionals, optionally only those who
// offer the given service.
func (r *CatalogRepository) ListProfessionals(ctx context.Context, serviceID string) ([]model.Professional, error) {
	query := `
		SELECT id::text, name, is_active
		FROM professionals
		WHERE is_active
		ORDER BY name ASC
	`
	args := []any{}
	if serviceID != "" {
		query = `
			SELECT p.id::text, p.name, p.is_active
			FROM professionals p
			JOIN service_professionals sp ON sp.professional_id = p.id
			WHERE p.is_active AND sp.service_id = $1
			ORDER BY p.name ASC
		`
		args = append(args, serviceID)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Professional
	for rows.Next() {
		var p model.Professional
		if err := rows.Scan(&p.ID, &p.Name, &p.IsActive); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// ServiceDurations returns duration_minutes keyed by service id. Missing ids
// are simply absent from the map; the caller decides how to degrade.
func (r *CatalogRepository) ServiceDurations(ctx context.Context, serviceIDs []string) (map[string]int, error) {
	durations := make(map[string]int, len(serviceIDs))
	if len(serviceIDs) == 0 {
		return durations, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, COALESCE(duration_minutes, 0)
		FROM services
		WHERE id = ANY($1)
	`, serviceIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var mins int
		if err := rows.Scan(&id, &mins); err != nil {
			return nil, err
		}
		durations[id] = mins
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return durations, nil
}

// OfferedPairs returns the set of (service, professional) combinations that
// exist in service_professionals, keyed "serviceID|professionalID".
func (r *CatalogRepository) OfferedPairs(ctx context.Context, serviceIDs, professionalIDs []string) (map[string]struct{}, error) {
	pairs := map[string]struct{}{}
	if len(serviceIDs) == 0 || len(professionalIDs) == 0 {
		return pairs, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT service_id::text, professional_id::text
		FROM service_professionals
		WHERE service_id = ANY($1) AND professional_id = ANY($2)
	`, serviceIDs, professionalIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var serviceID, professionalID string
		if err := rows.Scan(&serviceID, &professionalID); err != nil {
			return nil, err
		}
		pairs[serviceID+"|"+professionalID] = struct{}{}
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return pairs, nil
}
