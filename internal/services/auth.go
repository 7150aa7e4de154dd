package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"resqlink-backend/internal/middleware"
	"resqlink-backend/internal/models"
)

// userStore is the slice of the user repository the coordinator needs.
type userStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, fullName, phone string) error
	UpdateLastLogin(ctx context.Context, userID uuid.UUID) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

// refreshStore holds opaque refresh tokens.
type refreshStore interface {
	Save(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error
	Lookup(ctx context.Context, token string) (uuid.UUID, error)
	Delete(ctx context.Context, token string) error
}

// authEvents is the auth-state-change feed. Every sign-in and sign-out is
// published so other connected clients of the same user observe it.
type authEvents interface {
	Publish(ctx context.Context, userID uuid.UUID, event string)
}

// AuthService is the single source of truth for who is signed in and what
// their profile is. No session is ever issued half-built: identity and
// profile must both resolve before tokens exist.
type AuthService struct {
	users  userStore
	tokens refreshStore
	events authEvents
	jwt    *middleware.JWTAuth
}

func NewAuthService(users userStore, tokens refreshStore, events authEvents, jwt *middleware.JWTAuth) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		events: events,
		jwt:    jwt,
	}
}

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegex = regexp.MustCompile(`^\+?[\d\s-]{10,}$`)
)

const refreshTokenTTL = 7 * 24 * time.Hour

// SignIn authenticates with email and password. Exactly one profile fetch
// follows a successful credential check; if it fails the whole operation
// fails and no tokens are issued.
func (s *AuthService) SignIn(ctx context.Context, req models.SignInRequest) (*models.Session, *models.AuthTokens, error) {
	if req.Email == "" || req.Password == "" {
		return nil, nil, &ValidationError{Cause: CauseRequired, Message: "Please enter both email and password"}
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, &AuthError{Cause: CauseInvalidCredentials, Message: "Invalid email or password. Please try again."}
		}
		return nil, nil, &AuthError{Cause: CauseUnknown, Message: "Failed to sign in. Please try again."}
	}

	if !user.IsVerified {
		return nil, nil, &AuthError{Cause: CauseEmailNotConfirmed, Message: "Please confirm your email address before signing in"}
	}

	if !user.IsActive {
		return nil, nil, &AuthError{Cause: CauseUnknown, Message: "Account is deactivated"}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, nil, &AuthError{Cause: CauseInvalidCredentials, Message: "Invalid email or password. Please try again."}
	}

	profile, err := s.users.GetProfile(ctx, user.ID)
	if err != nil {
		// Credentials were valid, but without a profile the session would be
		// half-built. Refuse it entirely.
		return nil, nil, &AuthError{Cause: CauseProfileFetchFailed, Message: "Failed to load user profile"}
	}

	s.users.UpdateLastLogin(ctx, user.ID)

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.events.Publish(ctx, user.ID, models.AuthSignedIn)

	return &models.Session{UserID: user.ID, Profile: profile}, tokens, nil
}

// SignUp validates in a fixed order: presence, password strength, email
// shape, phone shape. The profile row is materialized asynchronously by a
// database trigger; the fetch after registration is best effort and a miss
// does not fail the sign-up.
func (s *AuthService) SignUp(ctx context.Context, req models.SignUpRequest) (*models.Session, *models.AuthTokens, error) {
	if req.FullName == "" || req.Email == "" || req.Phone == "" || req.Password == "" {
		return nil, nil, &ValidationError{Cause: CauseRequired, Message: "All fields are required"}
	}
	if len(req.Password) < 6 {
		return nil, nil, &ValidationError{Cause: CauseWeakPassword, Message: "Password must be at least 6 characters long"}
	}
	if !emailRegex.MatchString(req.Email) {
		return nil, nil, &ValidationError{Cause: CauseBadEmail, Message: "Please enter a valid email address"}
	}
	if !phoneRegex.MatchString(req.Phone) {
		return nil, nil, &ValidationError{Cause: CauseBadPhone, Message: "Please enter a valid phone number"}
	}

	// Check uniqueness
	_, err := s.users.GetByEmail(ctx, req.Email)
	if err == nil {
		return nil, nil, &ConflictError{Message: "Email already in use"}
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, &AuthError{Cause: CauseUnknown, Message: "Failed to complete registration. Please try again."}
	}

	// Hash password (bcrypt cost 12)
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Phone:        req.Phone,
		IsVerified:   true,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, &AuthError{Cause: CauseUnknown, Message: "Failed to create account. Please try again."}
	}

	// The trigger may not have materialized the profile yet; tolerate that.
	profile, err := s.users.GetProfile(ctx, user.ID)
	if err != nil {
		profile = nil
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.events.Publish(ctx, user.ID, models.AuthSignedIn)

	return &models.Session{UserID: user.ID, Profile: profile}, tokens, nil
}

// SignOut invalidates the refresh token. Local state is untouched if the
// store call fails.
func (s *AuthService) SignOut(ctx context.Context, userID uuid.UUID, refreshToken string) error {
	if err := s.tokens.Delete(ctx, refreshToken); err != nil {
		return &AuthError{Cause: CauseUnknown, Message: "Failed to sign out. Please try again."}
	}

	s.events.Publish(ctx, userID, models.AuthSignedOut)
	return nil
}

// DeleteAccount removes the user and everything cascading from it, then
// announces the sign-out so every open connection of the account closes.
func (s *AuthService) DeleteAccount(ctx context.Context, userID uuid.UUID, refreshToken string) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		return &AuthError{Cause: CauseUnknown, Message: "Failed to delete account. Please try again."}
	}

	if refreshToken != "" {
		s.tokens.Delete(ctx, refreshToken)
	}

	s.events.Publish(ctx, userID, models.AuthSignedOut)
	return nil
}

// Refresh rotates a refresh token into a fresh token pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.AuthTokens, error) {
	userID, err := s.tokens.Lookup(ctx, refreshToken)
	if err != nil {
		return nil, &AuthError{Cause: CauseInvalidCredentials, Message: "Invalid or expired refresh token. Please sign in again."}
	}

	// Delete old token (rotation)
	s.tokens.Delete(ctx, refreshToken)

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, &AuthError{Cause: CauseUnknown, Message: "Failed to refresh session"}
	}

	if !user.IsActive {
		return nil, &AuthError{Cause: CauseUnknown, Message: "Account is deactivated"}
	}

	return s.issueTokens(ctx, user)
}

// CurrentSession resolves the session projection for an authenticated user.
func (s *AuthService) CurrentSession(ctx context.Context, userID uuid.UUID) (*models.Session, error) {
	profile, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		return nil, &ProfileFetchError{Err: err}
	}
	return &models.Session{UserID: userID, Profile: profile}, nil
}

// UpdateProfile changes the name and phone of the signed-in user.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req models.UpdateProfileRequest) (*models.Profile, error) {
	if req.FullName == "" || req.Phone == "" {
		return nil, &ValidationError{Cause: CauseRequired, Message: "All fields are required"}
	}
	if !phoneRegex.MatchString(req.Phone) {
		return nil, &ValidationError{Cause: CauseBadPhone, Message: "Please enter a valid phone number"}
	}

	if err := s.users.UpdateProfile(ctx, userID, req.FullName, req.Phone); err != nil {
		return nil, err
	}

	profile, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		return nil, &ProfileFetchError{Err: err}
	}
	return profile, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*models.AuthTokens, error) {
	accessToken, err := s.jwt.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := generateToken(64)
	if err != nil {
		return nil, err
	}

	if err := s.tokens.Save(ctx, refreshToken, user.ID, refreshTokenTTL); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &models.AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    900,
	}, nil
}

func generateToken(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
