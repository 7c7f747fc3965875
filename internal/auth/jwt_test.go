package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/isdelr/auth-api/internal/config"
	"github.com/isdelr/auth-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUser = models.User{ID: "user-123", Name: "Alice Smith", Email: "alice@example.com"}

func newTestTokenService(secret string, opts ...TokenOption) *TokenService {
	return NewTokenService(&config.Config{TokenSecret: secret}, opts...)
}

// tamper flips one character in the middle of the signature segment.
func tamper(token string) string {
	sigStart := strings.LastIndex(token, ".") + 1
	i := sigStart + (len(token)-sigStart)/2
	replacement := byte('A')
	if token[i] == 'A' {
		replacement = 'B'
	}
	return token[:i] + string(replacement) + token[i+1:]
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	t.Parallel()
	s := newTestTokenService("super-secret")

	tok, err := s.Issue(testUser, 0)
	require.NoError(t, err)

	claims, err := s.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "Alice Smith", claims.Name)
	assert.Nil(t, claims.ExpiresAt, "login tokens carry no expiry")
}

func TestTokenService_ResetTokenExpires(t *testing.T) {
	t.Parallel()
	issuedAt := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	now := issuedAt
	s := newTestTokenService("super-secret", WithClock(func() time.Time { return now }))

	tok, err := s.Issue(testUser, 2*time.Minute)
	require.NoError(t, err)

	now = issuedAt.Add(119 * time.Second)
	_, err = s.Verify(tok)
	require.NoError(t, err)

	now = issuedAt.Add(2*time.Minute + time.Second)
	_, err = s.Verify(tok)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestTokenService_RejectsTamperedSignature(t *testing.T) {
	t.Parallel()
	s := newTestTokenService("super-secret")

	tok, err := s.Issue(testUser, time.Hour)
	require.NoError(t, err)

	_, err = s.Verify(tamper(tok))
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Every other character in the final position must fail, including
	// those that only differ in the unused trailing bits.
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	last := len(tok) - 1
	for i := 0; i < len(alphabet); i++ {
		if alphabet[i] == tok[last] {
			continue
		}
		_, err = s.Verify(tok[:last] + string(alphabet[i]))
		assert.ErrorIs(t, err, ErrInvalidToken, "last character %q", alphabet[i])
	}
}

func TestTokenService_RejectsWrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := newTestTokenService("right-secret").Issue(testUser, time.Hour)
	require.NoError(t, err)

	_, err = newTestTokenService("wrong-secret").Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_RejectsMalformedAndForeignAlgorithms(t *testing.T) {
	t.Parallel()
	s := newTestTokenService("k")

	_, err := s.Verify("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = s.Verify("")
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "user-123"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = s.Verify(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMiddleware(t *testing.T) {
	t.Parallel()
	s := newTestTokenService("super-secret")
	valid, err := s.Issue(testUser, 0)
	require.NoError(t, err)

	var seen *Claims
	protected := s.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name     string
		header   string
		value    string
		wantCode int
	}{
		{"missing token", "", "", http.StatusUnauthorized},
		{"garbage token", TokenHeader, "garbage", http.StatusUnauthorized},
		{"tampered token", TokenHeader, tamper(valid), http.StatusUnauthorized},
		{"auth-token header", TokenHeader, valid, http.StatusOK},
		{"bearer fallback", "Authorization", "Bearer " + valid, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()

			protected.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode == http.StatusOK {
				require.NotNil(t, seen)
				assert.Equal(t, "user-123", seen.UserID)
			} else {
				assert.Nil(t, seen)
				assert.Contains(t, rec.Body.String(), "error")
			}
		})
	}
}
