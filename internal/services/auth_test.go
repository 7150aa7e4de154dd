package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"resqlink-backend/internal/middleware"
	"resqlink-backend/internal/models"
)

type stubUserStore struct {
	users      map[string]*models.User
	profiles   map[uuid.UUID]*models.Profile
	profileErr error
	createErr  error
	deleteErr  error

	// materializeProfiles mimics the database trigger that builds a profile
	// row alongside every new user.
	materializeProfiles bool

	getByEmailCalls int
	lastLoginCalls  int
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{
		users:    make(map[string]*models.User),
		profiles: make(map[uuid.UUID]*models.Profile),
	}
}

func (s *stubUserStore) Create(ctx context.Context, user *models.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	user.ID = uuid.New()
	s.users[user.Email] = user
	if s.materializeProfiles {
		s.profiles[user.ID] = &models.Profile{
			ID:       user.ID,
			FullName: user.FullName,
			Email:    user.Email,
			Phone:    user.Phone,
		}
	}
	return nil
}

func (s *stubUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.getByEmailCalls++
	user, ok := s.users[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (s *stubUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	for _, user := range s.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *stubUserStore) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	if s.profileErr != nil {
		return nil, s.profileErr
	}
	profile, ok := s.profiles[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return profile, nil
}

func (s *stubUserStore) UpdateProfile(ctx context.Context, id uuid.UUID, fullName, phone string) error {
	if profile, ok := s.profiles[id]; ok {
		profile.FullName = fullName
		profile.Phone = phone
	}
	return nil
}

func (s *stubUserStore) UpdateLastLogin(ctx context.Context, userID uuid.UUID) error {
	s.lastLoginCalls++
	return nil
}

func (s *stubUserStore) Delete(ctx context.Context, userID uuid.UUID) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	for email, user := range s.users {
		if user.ID == userID {
			delete(s.users, email)
		}
	}
	delete(s.profiles, userID)
	return nil
}

type stubRefreshStore struct {
	saved     map[string]uuid.UUID
	deleteErr error
	deleted   []string
}

func newStubRefreshStore() *stubRefreshStore {
	return &stubRefreshStore{saved: make(map[string]uuid.UUID)}
}

func (s *stubRefreshStore) Save(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	s.saved[token] = userID
	return nil
}

func (s *stubRefreshStore) Lookup(ctx context.Context, token string) (uuid.UUID, error) {
	userID, ok := s.saved[token]
	if !ok {
		return uuid.Nil, errors.New("token not found")
	}
	return userID, nil
}

func (s *stubRefreshStore) Delete(ctx context.Context, token string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, token)
	delete(s.saved, token)
	return nil
}

type stubEvents struct {
	published []string
}

func (s *stubEvents) Publish(ctx context.Context, userID uuid.UUID, event string) {
	s.published = append(s.published, event)
}

func newTestAuthService() (*AuthService, *stubUserStore, *stubRefreshStore, *stubEvents) {
	users := newStubUserStore()
	tokens := newStubRefreshStore()
	events := &stubEvents{}
	svc := NewAuthService(users, tokens, events, middleware.NewJWTAuth("test-secret"))
	return svc, users, tokens, events
}

func seedUser(users *stubUserStore, email, password string) *models.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     "Jane Doe",
		Phone:        "+1 555-123-4567",
		IsVerified:   true,
		IsActive:     true,
	}
	users.users[email] = user
	users.profiles[user.ID] = &models.Profile{
		ID:       user.ID,
		FullName: user.FullName,
		Email:    user.Email,
		Phone:    user.Phone,
	}
	return user
}

func TestSignInRequiresBothFields(t *testing.T) {
	svc, users, _, events := newTestAuthService()

	cases := []models.SignInRequest{
		{Email: "", Password: ""},
		{Email: "jane@example.com", Password: ""},
		{Email: "", Password: "secret1"},
	}

	for _, req := range cases {
		_, _, err := svc.SignIn(context.Background(), req)
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Cause != CauseRequired {
			t.Fatalf("SignIn(%q, %q): expected required-field validation error, got %v", req.Email, req.Password, err)
		}
	}

	if users.getByEmailCalls != 0 {
		t.Fatalf("expected no lookup before validation, got %d calls", users.getByEmailCalls)
	}
	if len(events.published) != 0 {
		t.Fatalf("expected no auth events, got %v", events.published)
	}
}

func TestSignInUnknownEmail(t *testing.T) {
	svc, _, _, _ := newTestAuthService()

	_, _, err := svc.SignIn(context.Background(), models.SignInRequest{Email: "nobody@example.com", Password: "secret1"})
	var aerr *AuthError
	if !errors.As(err, &aerr) || aerr.Cause != CauseInvalidCredentials {
		t.Fatalf("expected invalid-credentials error, got %v", err)
	}
}

func TestSignInWrongPassword(t *testing.T) {
	svc, users, tokens, events := newTestAuthService()
	seedUser(users, "jane@example.com", "secret1")

	_, _, err := svc.SignIn(context.Background(), models.SignInRequest{Email: "jane@example.com", Password: "wrong"})
	var aerr *AuthError
	if !errors.As(err, &aerr) || aerr.Cause != CauseInvalidCredentials {
		t.Fatalf("expected invalid-credentials error, got %v", err)
	}
	if len(tokens.saved) != 0 {
		t.Fatalf("expected no refresh token on failed sign-in")
	}
	if len(events.published) != 0 {
		t.Fatalf("expected no auth events on failed sign-in")
	}
}

func TestSignInUnconfirmedEmail(t *testing.T) {
	svc, users, _, _ := newTestAuthService()
	user := seedUser(users, "jane@example.com", "secret1")
	user.IsVerified = false

	_, _, err := svc.SignIn(context.Background(), models.SignInRequest{Email: "jane@example.com", Password: "secret1"})
	var aerr *AuthError
	if !errors.As(err, &aerr) || aerr.Cause != CauseEmailNotConfirmed {
		t.Fatalf("expected email-not-confirmed error, got %v", err)
	}
}

func TestSignInProfileFetchFailureIssuesNoTokens(t *testing.T) {
	svc, users, tokens, events := newTestAuthService()
	seedUser(users, "jane@example.com", "secret1")
	users.profileErr = errors.New("profiles table unavailable")

	session, authTokens, err := svc.SignIn(context.Background(), models.SignInRequest{Email: "jane@example.com", Password: "secret1"})
	var aerr *AuthError
	if !errors.As(err, &aerr) || aerr.Cause != CauseProfileFetchFailed {
		t.Fatalf("expected profile-fetch-failed error, got %v", err)
	}
	if session != nil || authTokens != nil {
		t.Fatalf("expected no session or tokens when the profile fetch fails")
	}
	if len(tokens.saved) != 0 {
		t.Fatalf("expected no refresh token stored when the profile fetch fails")
	}
	if len(events.published) != 0 {
		t.Fatalf("expected no auth event when the profile fetch fails")
	}
}

func TestSignInSuccess(t *testing.T) {
	svc, users, tokens, events := newTestAuthService()
	user := seedUser(users, "jane@example.com", "secret1")

	session, authTokens, err := svc.SignIn(context.Background(), models.SignInRequest{Email: "jane@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if session.UserID != user.ID {
		t.Fatalf("expected session for user %s, got %s", user.ID, session.UserID)
	}
	if session.Profile == nil || session.Profile.FullName != "Jane Doe" {
		t.Fatalf("expected resolved profile in session, got %+v", session.Profile)
	}
	if authTokens.AccessToken == "" || authTokens.RefreshToken == "" {
		t.Fatalf("expected both tokens to be issued")
	}
	if _, ok := tokens.saved[authTokens.RefreshToken]; !ok {
		t.Fatalf("expected refresh token to be persisted")
	}
	if users.lastLoginCalls != 1 {
		t.Fatalf("expected last-login update, got %d calls", users.lastLoginCalls)
	}
	if len(events.published) != 1 || events.published[0] != models.AuthSignedIn {
		t.Fatalf("expected one signed_in event, got %v", events.published)
	}
}

func TestSignUpValidationOrder(t *testing.T) {
	valid := models.SignUpRequest{
		FullName: "Jane Doe",
		Email:    "jane@example.com",
		Phone:    "+1 555-123-4567",
		Password: "secret1",
	}

	tests := []struct {
		name      string
		mutate    func(*models.SignUpRequest)
		wantCause string
	}{
		{"missing name", func(r *models.SignUpRequest) { r.FullName = "" }, CauseRequired},
		{"missing email", func(r *models.SignUpRequest) { r.Email = "" }, CauseRequired},
		{"missing phone", func(r *models.SignUpRequest) { r.Phone = "" }, CauseRequired},
		{"missing password", func(r *models.SignUpRequest) { r.Password = "" }, CauseRequired},
		{"short password", func(r *models.SignUpRequest) { r.Password = "abc" }, CauseWeakPassword},
		{"bad email", func(r *models.SignUpRequest) { r.Email = "not-an-email" }, CauseBadEmail},
		{"bad phone", func(r *models.SignUpRequest) { r.Phone = "12345" }, CauseBadPhone},
		// Password strength is checked before email shape.
		{"short password and bad email", func(r *models.SignUpRequest) {
			r.Password = "abc"
			r.Email = "not-an-email"
		}, CauseWeakPassword},
		// Email shape is checked before phone shape.
		{"bad email and bad phone", func(r *models.SignUpRequest) {
			r.Email = "not-an-email"
			r.Phone = "12345"
		}, CauseBadEmail},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, users, _, _ := newTestAuthService()

			req := valid
			tc.mutate(&req)

			_, _, err := svc.SignUp(context.Background(), req)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if verr.Cause != tc.wantCause {
				t.Fatalf("expected cause %q, got %q", tc.wantCause, verr.Cause)
			}
			if users.getByEmailCalls != 0 {
				t.Fatalf("expected no store access on validation failure")
			}
		})
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	svc, users, _, _ := newTestAuthService()
	seedUser(users, "jane@example.com", "secret1")

	_, _, err := svc.SignUp(context.Background(), models.SignUpRequest{
		FullName: "Jane Doe",
		Email:    "jane@example.com",
		Phone:    "+1 555-123-4567",
		Password: "secret1",
	})
	var cerr *ConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected conflict error for duplicate email, got %v", err)
	}
}

func TestSignUpToleratesMissingProfile(t *testing.T) {
	svc, _, tokens, events := newTestAuthService()

	// The stub never materializes a profile row, mirroring the trigger race.
	session, authTokens, err := svc.SignUp(context.Background(), models.SignUpRequest{
		FullName: "Jane Doe",
		Email:    "jane@example.com",
		Phone:    "+1 555-123-4567",
		Password: "secret1",
	})
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	if session.Profile != nil {
		t.Fatalf("expected nil profile in the trigger race window, got %+v", session.Profile)
	}
	if authTokens.RefreshToken == "" {
		t.Fatalf("expected tokens despite missing profile")
	}
	if len(tokens.saved) != 1 {
		t.Fatalf("expected one stored refresh token, got %d", len(tokens.saved))
	}
	if len(events.published) != 1 || events.published[0] != models.AuthSignedIn {
		t.Fatalf("expected one signed_in event, got %v", events.published)
	}
}

func TestSignUpReturnsMaterializedProfile(t *testing.T) {
	svc, users, _, _ := newTestAuthService()
	users.materializeProfiles = true

	session, _, err := svc.SignUp(context.Background(), models.SignUpRequest{
		FullName: "Jane Doe",
		Email:    "jane@example.com",
		Phone:    "+1 555-123-4567",
		Password: "secret1",
	})
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	if session.Profile == nil {
		t.Fatalf("expected the materialized profile in the session")
	}
	if session.Profile.FullName != "Jane Doe" {
		t.Fatalf("expected profile full name %q, got %q", "Jane Doe", session.Profile.FullName)
	}
	if session.Profile.Email != "jane@example.com" {
		t.Fatalf("expected profile email %q, got %q", "jane@example.com", session.Profile.Email)
	}
}

func TestDeleteAccountSignsOutEverywhere(t *testing.T) {
	svc, users, tokens, events := newTestAuthService()
	user := seedUser(users, "jane@example.com", "secret1")
	tokens.saved["some-token"] = user.ID

	if err := svc.DeleteAccount(context.Background(), user.ID, "some-token"); err != nil {
		t.Fatalf("DeleteAccount failed: %v", err)
	}
	if _, ok := users.users["jane@example.com"]; ok {
		t.Fatalf("expected user row removed")
	}
	if len(tokens.saved) != 0 {
		t.Fatalf("expected refresh token revoked, got %d remaining", len(tokens.saved))
	}
	if len(events.published) != 1 || events.published[0] != models.AuthSignedOut {
		t.Fatalf("expected one signed_out event, got %v", events.published)
	}
}

func TestDeleteAccountFailureEmitsNoEvent(t *testing.T) {
	svc, users, _, events := newTestAuthService()
	user := seedUser(users, "jane@example.com", "secret1")
	users.deleteErr = errors.New("database unavailable")

	err := svc.DeleteAccount(context.Background(), user.ID, "")
	var aerr *AuthError
	if !errors.As(err, &aerr) || aerr.Cause != CauseUnknown {
		t.Fatalf("expected unknown-cause auth error, got %v", err)
	}
	if len(events.published) != 0 {
		t.Fatalf("expected no auth events on failed deletion, got %v", events.published)
	}
}

func TestSignOutFailureLeavesSession(t *testing.T) {
	svc, _, tokens, events := newTestAuthService()
	tokens.deleteErr = errors.New("redis unavailable")

	err := svc.SignOut(context.Background(), uuid.New(), "some-token")
	var aerr *AuthError
	if !errors.As(err, &aerr) || aerr.Cause != CauseUnknown {
		t.Fatalf("expected unknown-cause auth error, got %v", err)
	}
	if len(events.published) != 0 {
		t.Fatalf("expected no signed_out event on failure, got %v", events.published)
	}
}

func TestSignOutSuccess(t *testing.T) {
	svc, _, tokens, events := newTestAuthService()
	userID := uuid.New()
	tokens.saved["some-token"] = userID

	if err := svc.SignOut(context.Background(), userID, "some-token"); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}
	if len(tokens.saved) != 0 {
		t.Fatalf("expected refresh token removed")
	}
	if len(events.published) != 1 || events.published[0] != models.AuthSignedOut {
		t.Fatalf("expected one signed_out event, got %v", events.published)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, users, tokens, _ := newTestAuthService()
	user := seedUser(users, "jane@example.com", "secret1")
	tokens.saved["old-token"] = user.ID

	authTokens, err := svc.Refresh(context.Background(), "old-token")
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if _, ok := tokens.saved["old-token"]; ok {
		t.Fatalf("expected old refresh token to be deleted")
	}
	if _, ok := tokens.saved[authTokens.RefreshToken]; !ok {
		t.Fatalf("expected new refresh token to be stored")
	}
	if authTokens.RefreshToken == "old-token" {
		t.Fatalf("expected a fresh refresh token")
	}
}

func TestRefreshUnknownToken(t *testing.T) {
	svc, _, _, _ := newTestAuthService()

	_, err := svc.Refresh(context.Background(), "missing")
	var aerr *AuthError
	if !errors.As(err, &aerr) || aerr.Cause != CauseInvalidCredentials {
		t.Fatalf("expected invalid-credentials error, got %v", err)
	}
}
