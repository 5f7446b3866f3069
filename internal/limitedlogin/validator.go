// Package limitedlogin validates the OIDC authentication tokens issued by
// Facebook Limited Login. A native binding hands the application a signed
// JWT instead of a classic access token; the server side verifies it
// against Facebook's published key set before trusting any claim in it.
package limitedlogin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
)

const DefaultIssuer = "https://www.facebook.com"
const DefaultJWKSURL = "https://limited.facebook.com/.well-known/oauth/openid-configuration/jwks/"

var ErrNonceMismatch = errors.New("nonce mismatch")

// Profile is the verified identity carried by an authentication token.
type Profile struct {
	UserID  string
	Name    string
	Email   string
	Picture string
}

type Validator struct {
	appID      string
	issuer     string
	jwksURL    string
	httpClient *http.Client
	sigAlgs    []jose.SignatureAlgorithm
}

type Option func(*Validator)

func WithIssuer(issuer string) Option {
	return func(v *Validator) { v.issuer = issuer }
}

func WithJWKSURL(jwksURL string) Option {
	return func(v *Validator) { v.jwksURL = jwksURL }
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(v *Validator) { v.httpClient = httpClient }
}

func NewValidator(appID string, opts ...Option) *Validator {
	v := &Validator{
		appID:      appID,
		issuer:     DefaultIssuer,
		jwksURL:    DefaultJWKSURL,
		httpClient: http.DefaultClient,
		sigAlgs:    []jose.SignatureAlgorithm{jose.RS256},
	}
	for _, opt := range opts {
		opt(v)
	}

	return v
}

// Validate verifies the token signature against Facebook's key set, checks
// issuer, audience, expiry and nonce, and returns the verified profile.
func (v *Validator) Validate(ctx context.Context, rawToken, expectedNonce string) (Profile, error) {
	token, err := jwt.ParseSigned(rawToken, v.sigAlgs)
	if err != nil {
		return Profile{}, fmt.Errorf("parsing authentication token: %w", err)
	}

	keySet, err := v.getKeySet(ctx)
	if err != nil {
		return Profile{}, fmt.Errorf("getting the facebook key set: %w", err)
	}

	type customClaims struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Picture string `json:"picture"`
		Nonce   string `json:"nonce"`
	}

	var standardClaims jwt.Claims
	var custom customClaims
	if err := token.Claims(keySet, &standardClaims, &custom); err != nil {
		return Profile{}, fmt.Errorf("verifying token claims: %w", err)
	}

	if err := standardClaims.Validate(jwt.Expected{
		Issuer:      v.issuer,
		AnyAudience: jwt.Audience{v.appID},
		Time:        time.Now(),
	}); err != nil {
		return Profile{}, fmt.Errorf("validating token claims: %w", err)
	}

	if expectedNonce != "" && custom.Nonce != expectedNonce {
		return Profile{}, ErrNonceMismatch
	}

	return Profile{
		UserID:  standardClaims.Subject,
		Name:    custom.Name,
		Email:   custom.Email,
		Picture: custom.Picture,
	}, nil
}

func (v *Validator) getKeySet(ctx context.Context) (*jose.JSONWebKeySet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.jwksURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating a new HTTP request: %w", err)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing an http request: %w", err)
	}
	defer resp.Body.Close()

	var keySet jose.JSONWebKeySet
	if err := json.NewDecoder(resp.Body).Decode(&keySet); err != nil {
		return nil, fmt.Errorf("decoding keyset response: %w", err)
	}

	return &keySet, nil
}
