package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nazh/votelink/internal/apperrors"
)

func mustService(t *testing.T, cfg Config) *Service {
	t.Helper()
	s, err := NewService(cfg)
	require.NoError(t, err)
	return s
}

func operatorConfig(t *testing.T, password string) Config {
	t.Helper()
	hash, err := DefaultHasher.Hash(password)
	require.NoError(t, err)
	return Config{SecretKey: "signing-key", PasswordHash: hash}
}

func TestNewService(t *testing.T) {
	t.Parallel()

	t.Run("requires secret key", func(t *testing.T) {
		_, err := NewService(Config{PasswordHash: "hash"})
		require.Error(t, err)
	})

	t.Run("requires password hash", func(t *testing.T) {
		_, err := NewService(Config{SecretKey: "key"})
		require.Error(t, err)
	})
}

func TestService_Login(t *testing.T) {
	t.Parallel()

	service := mustService(t, operatorConfig(t, "correct horse"))

	t.Run("valid password issues token", func(t *testing.T) {
		token, expiresAt, err := service.Login(t.Context(), "correct horse")

		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.WithinDuration(t, time.Now().Add(defaultAccessTokenTTL), expiresAt, 5*time.Second)
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		_, _, err := service.Login(t.Context(), "not the password")

		assert.ErrorIs(t, err, apperrors.ErrOperatorUnauthorized)
	})

	t.Run("issued token passes auth", func(t *testing.T) {
		token, _, err := service.Login(t.Context(), "correct horse")
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/api/admin/tokens", nil)
		r.Header.Set("Authorization", "Bearer "+token)

		assert.NoError(t, service.Auth(t.Context(), r))
	})
}

func TestService_Auth(t *testing.T) {
	t.Parallel()

	service := mustService(t, operatorConfig(t, "correct horse"))

	signed := func(t *testing.T, key string, claims jwt.RegisteredClaims) string {
		t.Helper()
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
		require.NoError(t, err)
		return token
	}

	operatorClaims := func(ttl time.Duration) jwt.RegisteredClaims {
		now := time.Now()
		return jwt.RegisteredClaims{
			Subject:   operatorSubject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		}
	}

	tests := []struct {
		name    string
		header  string
		wantErr error
	}{
		{
			name:    "valid bearer token",
			header:  "Bearer " + signed(t, "signing-key", operatorClaims(time.Hour)),
			wantErr: nil,
		},
		{
			name:    "missing header",
			header:  "",
			wantErr: apperrors.ErrOperatorUnauthorized,
		},
		{
			name:    "not a bearer header",
			header:  "Basic b3BlcmF0b3I6aHVudGVyMg==",
			wantErr: apperrors.ErrOperatorUnauthorized,
		},
		{
			name:    "garbage token",
			header:  "Bearer not.a.jwt",
			wantErr: apperrors.ErrOperatorUnauthorized,
		},
		{
			name:    "token signed with another key",
			header:  "Bearer " + signed(t, "other-key", operatorClaims(time.Hour)),
			wantErr: apperrors.ErrOperatorUnauthorized,
		},
		{
			name:    "expired token",
			header:  "Bearer " + signed(t, "signing-key", operatorClaims(-time.Hour)),
			wantErr: apperrors.ErrOperatorUnauthorized,
		},
		{
			name: "wrong subject",
			header: "Bearer " + signed(t, "signing-key", jwt.RegisteredClaims{
				Subject:   "customer",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			}),
			wantErr: apperrors.ErrOperatorUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/admin/tokens", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}

			err := service.Auth(t.Context(), r)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
