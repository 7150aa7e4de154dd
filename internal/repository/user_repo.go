package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"resqlink-backend/internal/models"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// Create inserts the user row. The matching profile row is materialized by
// the on_user_created trigger, not by this call.
func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, full_name, phone, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	user.ID = uuid.New()
	user.IsActive = true

	return r.pool.QueryRow(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.FullName, user.Phone, user.IsVerified,
	).Scan(&user.CreatedAt)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, email, password_hash, full_name, phone, is_verified, is_active, created_at, last_login_at
		FROM users WHERE email = $1`

	err := r.pool.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FullName, &user.Phone,
		&user.IsVerified, &user.IsActive, &user.CreatedAt, &user.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, email, password_hash, full_name, phone, is_verified, is_active, created_at, last_login_at
		FROM users WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FullName, &user.Phone,
		&user.IsVerified, &user.IsActive, &user.CreatedAt, &user.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepo) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	p := &models.Profile{}
	query := `SELECT id, full_name, email, phone FROM profiles WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.FullName, &p.Email, &p.Phone)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *UserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, fullName, phone string) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE profiles SET full_name = $1, phone = $2 WHERE id = $3",
		fullName, phone, id,
	)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		"UPDATE users SET full_name = $1, phone = $2 WHERE id = $3",
		fullName, phone, id,
	)
	return err
}

// SearchProfiles finds registered users by email, for linking a contact to
// an existing account. The requesting user is excluded.
func (r *UserRepo) SearchProfiles(ctx context.Context, requesterID uuid.UUID, emailQuery string, limit int) ([]models.Profile, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, full_name, email, phone
		FROM profiles
		WHERE email ILIKE '%' || $1 || '%' AND id <> $2
		ORDER BY email
		LIMIT $3
	`, emailQuery, requesterID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]models.Profile, 0)
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.ID, &p.FullName, &p.Email, &p.Phone); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}

	return profiles, rows.Err()
}

func (r *UserRepo) UpdateLastLogin(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "UPDATE users SET last_login_at = $1 WHERE id = $2", time.Now(), userID)
	return err
}

func (r *UserRepo) Delete(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM users WHERE id = $1", userID)
	return err
}

// ListUsersWithoutContacts returns active users who have not saved a single
// emergency contact, for the preparedness reminder.
func (r *UserRepo) ListUsersWithoutContacts(ctx context.Context) ([]models.Profile, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.full_name, p.email, p.phone
		FROM profiles p
		JOIN users u ON u.id = p.id
		WHERE u.is_active = TRUE
		  AND NOT EXISTS (SELECT 1 FROM emergency_contacts ec WHERE ec.user_id = p.id)
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]models.Profile, 0)
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.ID, &p.FullName, &p.Email, &p.Phone); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}

	return profiles, rows.Err()
}
