package auth

import (
	"context"
	"testing"
	"time"

	"drawroom/internal/config"
	"drawroom/internal/database"
	"drawroom/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func newTestService() *Service {
	return NewService(database.NewMemoryDB(), config.JWTConfig{Secret: testSecret, ExpiresIn: time.Hour})
}

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestService_Verify(t *testing.T) {
	svc := newTestService()

	valid, err := svc.GenerateToken("user-1")
	require.NoError(t, err)

	tests := []struct {
		name     string
		token    string
		wantUser string
		wantKind error
	}{
		{
			name:     "valid token",
			token:    valid,
			wantUser: "user-1",
		},
		{
			name:     "numeric user id claim",
			token:    signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"userId": 42}),
			wantUser: "42",
		},
		{
			name:     "empty token",
			token:    "",
			wantKind: ErrMalformedToken,
		},
		{
			name:     "garbage",
			token:    "not-a-jwt",
			wantKind: ErrMalformedToken,
		},
		{
			name:     "wrong secret",
			token:    signToken(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"userId": "user-1"}),
			wantKind: ErrInvalidSignature,
		},
		{
			name:     "expired",
			token:    signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"userId": "user-1", "exp": time.Now().Add(-time.Hour).Unix()}),
			wantKind: ErrInvalidSignature,
		},
		{
			name:     "missing claim",
			token:    signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"sub": "user-1"}),
			wantKind: ErrMissingClaim,
		},
		{
			name:     "empty claim",
			token:    signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"userId": ""}),
			wantKind: ErrMissingClaim,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID, err := svc.Verify(tt.token)
			if tt.wantKind == nil {
				require.NoError(t, err)
				assert.Equal(t, tt.wantUser, userID)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantKind)
			var authErr *AuthError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, tt.wantKind, authErr.Kind)
			assert.Empty(t, userID)
		})
	}
}

func TestService_VerifyReportsTimeValidity(t *testing.T) {
	svc := newTestService()

	tests := []struct {
		name    string
		claims  jwt.MapClaims
		cause   error
		message string
	}{
		{
			name:    "expired",
			claims:  jwt.MapClaims{"userId": "user-1", "exp": time.Now().Add(-time.Hour).Unix()},
			cause:   jwt.ErrTokenExpired,
			message: "token expired",
		},
		{
			name:    "not yet valid",
			claims:  jwt.MapClaims{"userId": "user-1", "nbf": time.Now().Add(time.Hour).Unix()},
			cause:   jwt.ErrTokenNotValidYet,
			message: "token not valid yet",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(signToken(t, jwt.SigningMethodHS256, testSecret, tt.claims))
			require.Error(t, err)

			var authErr *AuthError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, ErrInvalidSignature, authErr.Kind)
			assert.ErrorIs(t, err, tt.cause)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestService_SignupAndSignin(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	user, err := svc.Signup(ctx, &models.SignupRequest{Email: "ann@example.com", Password: "password123", Name: " Ann "})
	require.NoError(t, err)
	assert.Equal(t, "Ann", user.Name)
	assert.NotEqual(t, "password123", user.PasswordHash)

	_, err = svc.Signup(ctx, &models.SignupRequest{Email: "ann@example.com", Password: "password123", Name: "Ann"})
	assert.ErrorIs(t, err, ErrUserExists)

	token, err := svc.Signin(ctx, &models.SigninRequest{Email: "ann@example.com", Password: "password123"})
	require.NoError(t, err)

	userID, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	_, err = svc.Signin(ctx, &models.SigninRequest{Email: "ann@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Signin(ctx, &models.SigninRequest{Email: "nobody@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_SignupValidation(t *testing.T) {
	svc := newTestService()

	tests := []struct {
		name string
		req  models.SignupRequest
	}{
		{name: "missing name", req: models.SignupRequest{Email: "a@b.co", Password: "password123"}},
		{name: "bad email", req: models.SignupRequest{Email: "nope", Password: "password123", Name: "A"}},
		{name: "short password", req: models.SignupRequest{Email: "a@b.co", Password: "short", Name: "A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signup(context.Background(), &tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
