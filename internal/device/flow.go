// Package device implements the Facebook device login flow: the only way to
// obtain a user access token on a machine without a native Facebook binding
// or an embeddable browser. The application shows the user a short code,
// the user confirms it at the verification URI on another device, and the
// application polls until the login completes.
package device

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	slogctx "github.com/veqryn/slog-context"

	"github.com/BobDickinson/lib-facebook/internal/fberr"
	"github.com/BobDickinson/lib-facebook/internal/graph"
)

// Graph API error subcodes returned by device/login_status while the login
// has not finished.
const (
	subcodePending  = 1349174
	subcodeSlowDown = 1349172
	subcodeExpired  = 1349152
)

var ErrCodeExpired = errors.New("device login code expired before the user authorized it")

// Code is the response of POST /device/login.
type Code struct {
	Code            string `json:"code"`
	UserCode        string `json:"user_code"`
	VerificationURI string `json:"verification_uri"`
	ExpiresIn       int    `json:"expires_in"`
	Interval        int    `json:"interval"`
}

// Token is the successful response of POST /device/login_status.
type Token struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// Expiry converts the relative expires_in into an absolute time. A zero
// expires_in means the token does not expire.
func (t Token) Expiry() time.Time {
	if t.ExpiresIn <= 0 {
		return time.Time{}
	}
	return time.Now().Add(time.Duration(t.ExpiresIn) * time.Second)
}

type Flow struct {
	graph          *graph.Client
	appAccessToken string
	interval       time.Duration
}

type Option func(*Flow)

// WithPollInterval overrides the poll interval suggested by the API.
func WithPollInterval(interval time.Duration) Option {
	return func(f *Flow) { f.interval = interval }
}

func NewFlow(graphClient *graph.Client, appID, clientToken string, opts ...Option) *Flow {
	f := &Flow{
		graph:          graphClient,
		appAccessToken: graph.AppAccessToken(appID, clientToken),
	}
	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Start requests a device login code for the given permission scope.
func (f *Flow) Start(ctx context.Context, scope []string) (Code, error) {
	params := url.Values{}
	if len(scope) > 0 {
		params.Set("scope", strings.Join(scope, ","))
	}

	result, err := f.graph.Do(ctx, http.MethodPost, "device/login", params, f.appAccessToken)
	if err != nil {
		return Code{}, fmt.Errorf("requesting device login code: %w", err)
	}
	if !result.OK() {
		return Code{}, fmt.Errorf("requesting device login code: %w", decodeError(result.Body))
	}

	var code Code
	if err := json.Unmarshal([]byte(result.Body), &code); err != nil {
		return Code{}, fmt.Errorf("decoding device login code: %w", err)
	}

	slogctx.Debug(ctx, "Obtained a device login code",
		"user_code", code.UserCode, "verification_uri", code.VerificationURI, "expires_in", code.ExpiresIn)

	return code, nil
}

// Poll blocks until the user authorizes the code, the code expires, the
// user declines, or the context is cancelled.
func (f *Flow) Poll(ctx context.Context, code Code) (Token, error) {
	interval := f.interval
	if interval <= 0 {
		interval = time.Duration(code.Interval) * time.Second
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}

	for {
		select {
		case <-ctx.Done():
			return Token{}, ctx.Err()
		case <-time.After(interval):
		}

		params := url.Values{}
		params.Set("code", code.Code)

		result, err := f.graph.Do(ctx, http.MethodPost, "device/login_status", params, f.appAccessToken)
		if err != nil {
			return Token{}, fmt.Errorf("polling device login status: %w", err)
		}

		if result.OK() {
			var token Token
			if err := json.Unmarshal([]byte(result.Body), &token); err != nil {
				return Token{}, fmt.Errorf("decoding device login token: %w", err)
			}
			if token.AccessToken == "" {
				return Token{}, errors.New("device login status returned no access token")
			}

			return token, nil
		}

		graphErr := decodeError(result.Body)

		var ge *fberr.GraphError
		if errors.As(graphErr, &ge) {
			switch ge.Subcode {
			case subcodePending:
				continue
			case subcodeSlowDown:
				interval += interval / 2
				slogctx.Debug(ctx, "Device login polling too fast, backing off", "interval", interval)
				continue
			case subcodeExpired:
				return Token{}, ErrCodeExpired
			}
		}

		return Token{}, fmt.Errorf("device login failed: %w", graphErr)
	}
}

func decodeError(body string) error {
	var env fberr.Envelope
	if err := json.Unmarshal([]byte(body), &env); err != nil || env.Err.Message == "" {
		return &fberr.GraphError{
			Message: body,
			Type:    fberr.CallErrorType,
			Code:    fberr.CallErrorCode,
		}
	}
	ge := env.Err

	return &ge
}
