package services

// Validation causes, checked client-side before any network or store call.
const (
	CauseRequired     = "required"
	CauseWeakPassword = "weak-password"
	CauseBadEmail     = "bad-email"
	CauseBadPhone     = "bad-phone"
)

// Auth causes, mapped from the identity backend into a closed set.
const (
	CauseEmailNotConfirmed  = "email-not-confirmed"
	CauseInvalidCredentials = "invalid-credentials"
	CauseProfileFetchFailed = "profile-fetch-failed"
	CauseUnknown            = "unknown"
)

type ValidationError struct {
	Cause   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

type AuthError struct {
	Cause   string
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// ProfileFetchError reports that the profile row was missing or unreadable
// after the identity itself resolved.
type ProfileFetchError struct {
	Err error
}

func (e *ProfileFetchError) Error() string { return "failed to load user profile" }
func (e *ProfileFetchError) Unwrap() error { return e.Err }

type ConflictError struct{ Message string }

func (e *ConflictError) Error() string { return e.Message }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

type ForbiddenError struct{ Message string }

func (e *ForbiddenError) Error() string { return e.Message }

type RateLimitError struct{ Message string }

func (e *RateLimitError) Error() string { return e.Message }

// CapabilityUnavailableError reports a missing optional capability (voice
// input/output). Non-fatal: handlers surface it as a notice.
type CapabilityUnavailableError struct{ Capability string }

func (e *CapabilityUnavailableError) Error() string {
	return e.Capability + " is not supported on this runtime"
}
