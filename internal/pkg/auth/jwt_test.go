// internal/pkg/auth/jwt_test.go
package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront-backend/internal/config"
)

func testManager(secret string) *JWTManager {
	cfg := &config.Config{}
	cfg.App.Name = "storefront-api"
	cfg.JWT.Secret = secret
	return NewJWTManager(cfg)
}

// mintToken produces a token the way the identity service does; this service
// never issues tokens itself.
func mintToken(t *testing.T, secret, ownerRef, tokenType string) string {
	t.Helper()
	now := time.Now().UTC()
	claims := &Claims{
		OwnerRef:  ownerRef,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestValidateAccessToken(t *testing.T) {
	t.Parallel()

	token := mintToken(t, "test-secret", "alice", "access")
	claims, err := testManager("test-secret").ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.OwnerRef)
	assert.Equal(t, "access", claims.TokenType)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	token := mintToken(t, "secret-a", "alice", "access")
	_, err := testManager("secret-b").ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsNonAccessToken(t *testing.T) {
	t.Parallel()

	token := mintToken(t, "test-secret", "alice", "refresh")
	_, err := testManager("test-secret").ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsMissingOwnerRef(t *testing.T) {
	t.Parallel()

	token := mintToken(t, "test-secret", "", "access")
	_, err := testManager("test-secret").ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := testManager("test-secret").ValidateAccessToken("not-a-token")
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc.def.ghi", ExtractTokenFromHeader("Bearer abc.def.ghi"))
	assert.Equal(t, "", ExtractTokenFromHeader("abc.def.ghi"))
	assert.Equal(t, "", ExtractTokenFromHeader(""))
	assert.Equal(t, "", ExtractTokenFromHeader("Bearer "))
}
