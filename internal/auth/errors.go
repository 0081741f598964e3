package auth

import "errors"

var (
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrMalformedToken   = errors.New("malformed token")
	ErrMissingClaim     = errors.New("missing required claim")
)

// AuthError is a token verification failure. Kind is one of the Err* sentinels
// above; errors.Is matches both Kind and the underlying cause.
type AuthError struct {
	Kind error
	Err  error
}

func newAuthError(kind, err error) *AuthError {
	return &AuthError{Kind: kind, Err: err}
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Err.Error()
}

func (e *AuthError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
