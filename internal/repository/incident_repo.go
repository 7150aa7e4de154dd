package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"resqlink-backend/internal/models"
)

type IncidentRepo struct {
	pool *pgxpool.Pool
}

func NewIncidentRepo(pool *pgxpool.Pool) *IncidentRepo {
	return &IncidentRepo{pool: pool}
}

func (r *IncidentRepo) Create(ctx context.Context, inc *models.Incident) error {
	query := `
		INSERT INTO incidents (id, user_id, type, description, location, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	inc.ID = uuid.New()
	inc.Status = models.IncidentOpen
	return r.pool.QueryRow(ctx, query,
		inc.ID, inc.UserID, inc.Type, inc.Description, inc.Location, inc.Status,
	).Scan(&inc.CreatedAt)
}

func (r *IncidentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	inc := &models.Incident{}
	var resolvedAt pgtype.Timestamptz
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, type, description, location, status, created_at, resolved_at
		FROM incidents WHERE id = $1
	`, id).Scan(
		&inc.ID, &inc.UserID, &inc.Type, &inc.Description, &inc.Location,
		&inc.Status, &inc.CreatedAt, &resolvedAt,
	)
	if err != nil {
		return nil, err
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time
		inc.ResolvedAt = &t
	}
	return inc, nil
}

// GetOpenByUser returns the user's currently open incident, if any.
func (r *IncidentRepo) GetOpenByUser(ctx context.Context, userID uuid.UUID) (*models.Incident, error) {
	inc := &models.Incident{}
	var resolvedAt pgtype.Timestamptz
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, type, description, location, status, created_at, resolved_at
		FROM incidents WHERE user_id = $1 AND status = $2
		ORDER BY created_at DESC LIMIT 1
	`, userID, models.IncidentOpen).Scan(
		&inc.ID, &inc.UserID, &inc.Type, &inc.Description, &inc.Location,
		&inc.Status, &inc.CreatedAt, &resolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return inc, nil
}

func (r *IncidentRepo) Resolve(ctx context.Context, id, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE incidents SET status = $1, resolved_at = NOW() WHERE id = $2 AND user_id = $3",
		models.IncidentResolved, id, userID,
	)
	return err
}
