package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cleanapi/cleanapi/internal/config"
	"github.com/cleanapi/cleanapi/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret  = "test-secret-that-is-long-enough-for-testing"
	wrongSecret = "wrong-secret-that-is-long-enough-for-testing"
)

var fixedTime = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestJWTService(t *testing.T, secret string, skewSeconds int, now func() time.Time) JWTService {
	t.Helper()
	svc, err := NewJWTServiceWithClock(config.AuthConfig{
		JWTSecret:            secret,
		TokenLifetimeMinutes: 60,
		ClockSkewSeconds:     skewSeconds,
	}, now)
	require.NoError(t, err)
	return svc
}

func at(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func TestNewJWTService(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     config.AuthConfig
		wantErr string
	}{
		{
			name: "valid",
			cfg:  config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 60},
		},
		{
			name:    "missing secret",
			cfg:     config.AuthConfig{TokenLifetimeMinutes: 60},
			wantErr: "at least 32 characters",
		},
		{
			name:    "short secret",
			cfg:     config.AuthConfig{JWTSecret: "too-short", TokenLifetimeMinutes: 60},
			wantErr: "at least 32 characters",
		},
		{
			name:    "zero lifetime",
			cfg:     config.AuthConfig{JWTSecret: testSecret},
			wantErr: "lifetime",
		},
		{
			name:    "negative skew",
			cfg:     config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 1, ClockSkewSeconds: -1},
			wantErr: "clock skew",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, err := NewJWTService(tt.cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.NotNil(t, svc)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGenerateToken_ClaimsRoundTrip(t *testing.T) {
	t.Parallel()

	svc := newTestJWTService(t, testSecret, 0, at(fixedTime))
	userID := uuid.New()

	token, expiresAt, err := svc.GenerateToken(context.Background(), userID, "apitest01")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, fixedTime.Add(time.Hour).Unix(), expiresAt.Unix())

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, "apitest01", claims.ClientID)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, expiresAt.Unix(), claims.ExpiresAt.Unix())
	_, err = uuid.Parse(claims.ID)
	assert.NoError(t, err, "jti must be a uuid")

	identity := claims.Identity()
	assert.Equal(t, domain.Identity{
		UserID:    userID,
		ClientID:  "apitest01",
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt,
	}, identity)
}

func TestGenerateToken_UniqueTokenIDs(t *testing.T) {
	t.Parallel()

	svc := newTestJWTService(t, testSecret, 0, at(fixedTime))
	userID := uuid.New()

	a, _, err := svc.GenerateToken(context.Background(), userID, "c1")
	require.NoError(t, err)
	b, _, err := svc.GenerateToken(context.Background(), userID, "c1")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	lifetime := time.Hour

	issue := func(t *testing.T, secret string) string {
		t.Helper()
		token, _, err := newTestJWTService(t, secret, 0, at(fixedTime)).
			GenerateToken(context.Background(), userID, "apitest01")
		require.NoError(t, err)
		return token
	}

	tests := []struct {
		name    string
		token   func(t *testing.T) string
		secret  string
		skew    int
		now     time.Time
		wantErr error
	}{
		{
			name:   "valid token",
			token:  func(t *testing.T) string { return issue(t, testSecret) },
			secret: testSecret,
			now:    fixedTime.Add(30 * time.Minute),
		},
		{
			name:   "one second before expiry",
			token:  func(t *testing.T) string { return issue(t, testSecret) },
			secret: testSecret,
			now:    fixedTime.Add(lifetime - time.Second),
		},
		{
			name:    "exactly at expiry",
			token:   func(t *testing.T) string { return issue(t, testSecret) },
			secret:  testSecret,
			now:     fixedTime.Add(lifetime),
			wantErr: ErrExpiredToken,
		},
		{
			name:    "expired token",
			token:   func(t *testing.T) string { return issue(t, testSecret) },
			secret:  testSecret,
			now:     fixedTime.Add(lifetime + time.Hour),
			wantErr: ErrExpiredToken,
		},
		{
			name:   "expired within configured leeway",
			token:  func(t *testing.T) string { return issue(t, testSecret) },
			secret: testSecret,
			skew:   60,
			now:    fixedTime.Add(lifetime + 30*time.Second),
		},
		{
			name:    "invalid signature",
			token:   func(t *testing.T) string { return issue(t, testSecret) },
			secret:  wrongSecret,
			now:     fixedTime,
			wantErr: ErrInvalidToken,
		},
		{
			name:    "expired and invalid signature reports expired",
			token:   func(t *testing.T) string { return issue(t, testSecret) },
			secret:  wrongSecret,
			now:     fixedTime.Add(lifetime + time.Minute),
			wantErr: ErrExpiredToken,
		},
		{
			name: "tampered payload",
			token: func(t *testing.T) string {
				parts := strings.Split(issue(t, testSecret), ".")
				other := strings.Split(issue(t, wrongSecret), ".")
				return parts[0] + "." + other[1] + "." + parts[2]
			},
			secret:  testSecret,
			now:     fixedTime,
			wantErr: ErrInvalidToken,
		},
		{
			name:    "malformed token",
			token:   func(*testing.T) string { return "this.is.not.a.valid.jwt.token" },
			secret:  testSecret,
			now:     fixedTime,
			wantErr: ErrMalformedToken,
		},
		{
			name:    "empty token",
			token:   func(*testing.T) string { return "" },
			secret:  testSecret,
			now:     fixedTime,
			wantErr: ErrMalformedToken,
		},
		{
			name: "wrong algorithm",
			token: func(t *testing.T) string {
				claims := jwt.RegisteredClaims{
					Subject:   userID.String(),
					ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
				}
				signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
				require.NoError(t, err)
				return signed
			},
			secret:  testSecret,
			now:     fixedTime,
			wantErr: ErrInvalidToken,
		},
		{
			name: "missing expiry",
			token: func(t *testing.T) string {
				claims := jwt.RegisteredClaims{Subject: userID.String()}
				signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
				require.NoError(t, err)
				return signed
			},
			secret:  testSecret,
			now:     fixedTime,
			wantErr: ErrInvalidToken,
		},
		{
			name: "subject is not a user id",
			token: func(t *testing.T) string {
				claims := jwt.RegisteredClaims{
					Subject:   "admin",
					ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
				}
				signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
				require.NoError(t, err)
				return signed
			},
			secret:  testSecret,
			now:     fixedTime,
			wantErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			token := tt.token(t)
			svc := newTestJWTService(t, tt.secret, tt.skew, at(tt.now))

			claims, err := svc.ValidateToken(context.Background(), token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, userID, claims.UserID)
		})
	}
}

func TestValidateToken_ErrorKinds(t *testing.T) {
	t.Parallel()

	assert.Equal(t, domain.KindTokenMalformed, domain.KindOf(ErrMalformedToken))
	assert.Equal(t, domain.KindTokenInvalidSignature, domain.KindOf(ErrInvalidToken))
	assert.Equal(t, domain.KindTokenExpired, domain.KindOf(ErrExpiredToken))
	assert.Equal(t, domain.KindTokenMissing, domain.KindOf(ErrMissingToken))
	assert.Equal(t, domain.KindInvalidCredentials, domain.KindOf(ErrInvalidCredentials))
}
