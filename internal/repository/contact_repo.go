package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"resqlink-backend/internal/models"
)

type ContactRepo struct {
	pool *pgxpool.Pool
}

func NewContactRepo(pool *pgxpool.Pool) *ContactRepo {
	return &ContactRepo{pool: pool}
}

// ListByUser returns the user's contacts, primary contacts first. Linked app
// users contribute their profile email.
func (r *ContactRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.EmergencyContact, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ec.id, ec.user_id, ec.name, ec.phone, ec.relationship, ec.is_primary,
		       ec.is_app_user, ec.app_user_id, p.email, ec.created_at
		FROM emergency_contacts ec
		LEFT JOIN profiles p ON p.id = ec.app_user_id
		WHERE ec.user_id = $1
		ORDER BY ec.is_primary DESC, ec.name
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := make([]models.EmergencyContact, 0)
	for rows.Next() {
		var c models.EmergencyContact
		if err := rows.Scan(
			&c.ID, &c.UserID, &c.Name, &c.Phone, &c.Relationship, &c.IsPrimary,
			&c.IsAppUser, &c.AppUserID, &c.Email, &c.CreatedAt,
		); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}

	return contacts, rows.Err()
}

func (r *ContactRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.EmergencyContact, error) {
	c := &models.EmergencyContact{}
	err := r.pool.QueryRow(ctx, `
		SELECT ec.id, ec.user_id, ec.name, ec.phone, ec.relationship, ec.is_primary,
		       ec.is_app_user, ec.app_user_id, p.email, ec.created_at
		FROM emergency_contacts ec
		LEFT JOIN profiles p ON p.id = ec.app_user_id
		WHERE ec.id = $1
	`, id).Scan(
		&c.ID, &c.UserID, &c.Name, &c.Phone, &c.Relationship, &c.IsPrimary,
		&c.IsAppUser, &c.AppUserID, &c.Email, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *ContactRepo) Create(ctx context.Context, c *models.EmergencyContact) error {
	query := `
		INSERT INTO emergency_contacts (id, user_id, name, phone, relationship, is_primary, is_app_user, app_user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`

	c.ID = uuid.New()
	return r.pool.QueryRow(ctx, query,
		c.ID, c.UserID, c.Name, c.Phone, c.Relationship, c.IsPrimary, c.IsAppUser, c.AppUserID,
	).Scan(&c.CreatedAt)
}

func (r *ContactRepo) Update(ctx context.Context, c *models.EmergencyContact) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE emergency_contacts SET name = $1, phone = $2, relationship = $3, is_primary = $4
		 WHERE id = $5 AND user_id = $6`,
		c.Name, c.Phone, c.Relationship, c.IsPrimary, c.ID, c.UserID,
	)
	return err
}

func (r *ContactRepo) Delete(ctx context.Context, id, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM emergency_contacts WHERE id = $1 AND user_id = $2", id, userID)
	return err
}

// FindLink reports whether the user already has a contact linked to the
// given app user.
func (r *ContactRepo) FindLink(ctx context.Context, userID, appUserID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM emergency_contacts WHERE user_id = $1 AND app_user_id = $2)",
		userID, appUserID,
	).Scan(&exists)
	return exists, err
}
