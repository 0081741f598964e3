package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"drawroom/internal/config"
	"drawroom/internal/database"
	"drawroom/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// UserIDClaim is the claim carrying the authenticated user's id.
const UserIDClaim = "userId"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidInput       = errors.New("invalid input")
)

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

type Service struct {
	users     database.UserRepository
	secret    []byte
	expiresIn time.Duration
	now       func() time.Time
}

func NewService(users database.UserRepository, cfg config.JWTConfig) *Service {
	return &Service{
		users:     users,
		secret:    cfg.Secret,
		expiresIn: cfg.ExpiresIn,
		now:       time.Now,
	}
}

func (s *Service) Signup(ctx context.Context, req *models.SignupRequest) (*models.User, error) {
	if err := validateSignupRequest(req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, req.Email, string(hash), req.Name)
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *Service) Signin(ctx context.Context, req *models.SigninRequest) (string, error) {
	if req.Email == "" || req.Password == "" {
		return "", ErrInvalidCredentials
	}

	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.GenerateToken(user.ID)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

func (s *Service) GenerateToken(userID string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		UserIDClaim: userID,
		"iat":       now.Unix(),
	}
	if s.expiresIn > 0 {
		claims["exp"] = now.Add(s.expiresIn).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks the token signature and returns its userId claim. Failures
// are *AuthError values matching ErrMalformedToken, ErrInvalidSignature or
// ErrMissingClaim. Expired and not-yet-valid tokens fail as ErrInvalidSignature
// with the jwt cause (jwt.ErrTokenExpired, jwt.ErrTokenNotValidYet) wrapped.
func (s *Service) Verify(tokenString string) (string, error) {
	if strings.TrimSpace(tokenString) == "" {
		return "", newAuthError(ErrMalformedToken, errors.New("empty token"))
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return "", newAuthError(ErrMalformedToken, err)
		}
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", newAuthError(ErrInvalidSignature, fmt.Errorf("token expired: %w", err))
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return "", newAuthError(ErrInvalidSignature, fmt.Errorf("token not valid yet: %w", err))
		}
		return "", newAuthError(ErrInvalidSignature, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", newAuthError(ErrInvalidSignature, errors.New("invalid token"))
	}

	userID, ok := userIDFromClaims(claims)
	if !ok {
		return "", newAuthError(ErrMissingClaim, fmt.Errorf("claim %q not found", UserIDClaim))
	}
	return userID, nil
}

func userIDFromClaims(claims jwt.MapClaims) (string, bool) {
	switch v := claims[UserIDClaim].(type) {
	case string:
		return v, v != ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		return "", false
	}
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func validateSignupRequest(req *models.SignupRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)

	if req.Name == "" || req.Email == "" || req.Password == "" {
		return fmt.Errorf("%w: missing required fields", ErrInvalidInput)
	}
	if !emailRegex.MatchString(req.Email) {
		return fmt.Errorf("%w: invalid email format", ErrInvalidInput)
	}
	if len(req.Password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters long", ErrInvalidInput)
	}
	return nil
}
