package limitedlogin_test

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BobDickinson/lib-facebook/internal/limitedlogin"
)

const testAppID = "123456789"
const testIssuer = "https://www.facebook.com"

type tokenClaims struct {
	jwt.Claims
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Picture string `json:"picture,omitempty"`
	Nonce   string `json:"nonce,omitempty"`
}

func defaultClaims() tokenClaims {
	return tokenClaims{
		Claims: jwt.Claims{
			Issuer:   testIssuer,
			Subject:  "10224488",
			Audience: jwt.Audience{testAppID},
			Expiry:   jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
		Name:  "Pat Example",
		Email: "pat@example.com",
		Nonce: "nonce-1",
	}
}

func startJWKSServer(t *testing.T, key *rsa.PrivateKey) *httptest.Server {
	t.Helper()

	keySet := jose.JSONWebKeySet{
		Keys: []jose.JSONWebKey{{
			Key:       key.Public(),
			KeyID:     "test-key",
			Algorithm: string(jose.RS256),
			Use:       "sig",
		}},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(keySet)
	}))
	t.Cleanup(server.Close)

	return server
}

func signToken(t *testing.T, key *rsa.PrivateKey, claims tokenClaims) string {
	t.Helper()

	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.RS256, Key: key},
		(&jose.SignerOptions{}).WithHeader("kid", "test-key"),
	)
	require.NoError(t, err)

	raw, err := jwt.Signed(signer).Claims(claims).Serialize()
	require.NoError(t, err)

	return raw
}

func TestValidator_Validate(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	server := startJWKSServer(t, key)

	expired := defaultClaims()
	expired.Expiry = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	wrongIssuer := defaultClaims()
	wrongIssuer.Issuer = "https://attacker.example.com"

	wrongAudience := defaultClaims()
	wrongAudience.Audience = jwt.Audience{"987654321"}

	tests := []struct {
		name      string
		token     string
		nonce     string
		errAssert assert.ErrorAssertionFunc
		want      limitedlogin.Profile
	}{
		{
			name:      "Valid token",
			token:     signToken(t, key, defaultClaims()),
			nonce:     "nonce-1",
			errAssert: assert.NoError,
			want: limitedlogin.Profile{
				UserID: "10224488",
				Name:   "Pat Example",
				Email:  "pat@example.com",
			},
		},
		{
			name:      "Nonce not checked when not expected",
			token:     signToken(t, key, defaultClaims()),
			nonce:     "",
			errAssert: assert.NoError,
			want: limitedlogin.Profile{
				UserID: "10224488",
				Name:   "Pat Example",
				Email:  "pat@example.com",
			},
		},
		{
			name:      "Wrong signing key",
			token:     signToken(t, otherKey, defaultClaims()),
			nonce:     "nonce-1",
			errAssert: assert.Error,
		},
		{
			name:      "Expired token",
			token:     signToken(t, key, expired),
			nonce:     "nonce-1",
			errAssert: assert.Error,
		},
		{
			name:      "Wrong issuer",
			token:     signToken(t, key, wrongIssuer),
			nonce:     "nonce-1",
			errAssert: assert.Error,
		},
		{
			name:      "Wrong audience",
			token:     signToken(t, key, wrongAudience),
			nonce:     "nonce-1",
			errAssert: assert.Error,
		},
		{
			name:  "Nonce mismatch",
			token: signToken(t, key, defaultClaims()),
			nonce: "other-nonce",
			errAssert: func(t assert.TestingT, err error, args ...any) bool {
				return assert.ErrorIs(t, err, limitedlogin.ErrNonceMismatch, args...)
			},
		},
		{
			name:      "Garbage token",
			token:     "not-a-jwt",
			nonce:     "",
			errAssert: assert.Error,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator := limitedlogin.NewValidator(
				testAppID,
				limitedlogin.WithJWKSURL(server.URL),
			)

			profile, err := validator.Validate(t.Context(), tt.token, tt.nonce)
			if !tt.errAssert(t, err, "Validator.Validate() error = %v", err) || err != nil {
				return
			}
			assert.Equal(t, tt.want, profile)
		})
	}
}

func TestValidator_JWKSUnreachable(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	validator := limitedlogin.NewValidator(
		testAppID,
		limitedlogin.WithJWKSURL("http://127.0.0.1:1/jwks"),
	)

	_, err = validator.Validate(t.Context(), signToken(t, key, defaultClaims()), "")
	assert.Error(t, err)
}
