package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nazh/votelink/internal/apperrors"
)

const (
	defaultAccessTokenTTL = 1 * time.Hour
	defaultSigningMethod  = "HS256"

	operatorSubject = "operator"
)

// Interface to create or compare password hashes
type PasswordHasher interface {
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

var DefaultHasher PasswordHasher = BcryptHasher{}

type Config struct {
	// Secret key to sign access tokens
	// Required to be set
	SecretKey string

	// Bcrypt hash of the operator password (see cmd/gensecret)
	// Required to be set
	PasswordHash string

	// Access token lifetime, default is used when zero
	AccessTTL time.Duration

	// Hasher to compare passwords, bcrypt if nil
	Hasher PasswordHasher
}

// Service authenticates the single operator account: password login
// issues a short-lived JWT, Auth verifies it on admin requests.
type Service struct {
	key          string
	alg          jwt.SigningMethod
	passwordHash string
	accessTTL    time.Duration
	hasher       PasswordHasher
}

func NewService(cfg Config) (*Service, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}
	if cfg.PasswordHash == "" {
		return nil, errors.New("operator password hash must not be empty")
	}

	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = defaultAccessTokenTTL
	}
	if cfg.Hasher == nil {
		cfg.Hasher = DefaultHasher
	}

	return &Service{
		key:          cfg.SecretKey,
		alg:          jwt.GetSigningMethod(defaultSigningMethod),
		passwordHash: cfg.PasswordHash,
		accessTTL:    cfg.AccessTTL,
		hasher:       cfg.Hasher,
	}, nil
}

// Login checks the operator password and returns a signed access token
func (s *Service) Login(ctx context.Context, password string) (token string, expiresAt time.Time, err error) {
	if err := s.hasher.Compare(s.passwordHash, password); err != nil {
		return "", time.Time{}, apperrors.ErrOperatorUnauthorized
	}

	now := time.Now().Truncate(time.Second)
	expiresAt = now.Add(s.accessTTL)

	accessToken := jwt.NewWithClaims(
		s.alg,
		jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   operatorSubject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	)

	token, err = accessToken.SignedString([]byte(s.key))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("error while signing access token. Err: %w", err)
	}

	return token, expiresAt, nil
}

// Auth validates the bearer token on a request
func (s *Service) Auth(ctx context.Context, r *http.Request) error {
	header := r.Header.Get("Authorization")
	bearer, found := strings.CutPrefix(header, "Bearer ")
	if !found || bearer == "" {
		return apperrors.ErrOperatorUnauthorized
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(
		bearer,
		claims,
		func(t *jwt.Token) (any, error) {
			return []byte(s.key), nil
		},
		jwt.WithValidMethods([]string{s.alg.Alg()}),
	)
	if err != nil || claims.Subject != operatorSubject {
		return apperrors.ErrOperatorUnauthorized
	}

	return nil
}
