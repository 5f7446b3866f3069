// Package facebook wraps a Facebook Graph API connector behind a session
// object that normalizes success and error event shapes, tracks login
// state, and enforces single-request-in-flight discipline. Production
// embeds plug in their native binding as a Connector; desktop environments
// without one use the Graph HTTP connector.
package facebook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	slogctx "github.com/veqryn/slog-context"

	"github.com/BobDickinson/lib-facebook/internal/fberr"
	"github.com/BobDickinson/lib-facebook/pkg/facebook/tokenstore"
)

// Session tracks the login state of one Facebook application and funnels
// every operation through a single pending-request slot. At most one
// operation may be outstanding; a second call is rejected synchronously
// rather than queued.
type Session struct {
	appID     string
	connector Connector
	tokens    tokenstore.Repository

	mu          sync.Mutex
	loggedIn    bool
	accessToken string
	tokenExpiry time.Time
	permissions []string
	pending     *PendingRequest
}

type Option func(*Session)

// WithTokenRepository persists the access token across processes so a
// session can be resumed without logging in again.
func WithTokenRepository(repo tokenstore.Repository) Option {
	return func(s *Session) { s.tokens = repo }
}

func NewSession(appID string, connector Connector, opts ...Option) *Session {
	s := &Session{
		appID:     appID,
		connector: connector,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// IsLoggedIn reports the current login state. No side effects.
func (s *Session) IsLoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loggedIn
}

// AccessToken returns the token of the active session, or the empty string
// when not logged in.
func (s *Session) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.accessToken
}

// Resume loads a persisted token from the token repository and restores the
// logged-in state if the token has not expired. It reports whether a
// session was restored. Without a token repository it is a no-op.
func (s *Session) Resume(ctx context.Context) (bool, error) {
	if s.tokens == nil {
		return false, nil
	}

	rec, err := s.tokens.Load(ctx, s.appID)
	if err != nil {
		if errors.Is(err, tokenstore.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("loading persisted token: %w", err)
	}

	if !rec.Expiry.IsZero() && time.Now().After(rec.Expiry) {
		slogctx.Debug(ctx, "Persisted token has expired", "app_id", s.appID)
		return false, nil
	}

	s.mu.Lock()
	s.loggedIn = true
	s.accessToken = rec.AccessToken
	s.tokenExpiry = rec.Expiry
	s.permissions = rec.Permissions
	s.mu.Unlock()

	slogctx.Debug(ctx, "Resumed a persisted session", "app_id", s.appID)

	return true, nil
}

// Login starts a login flow for the given permissions. It fails
// synchronously if the application ID is unset or another request is
// pending; the outcome is otherwise delivered to the listener as a
// session-type event.
func (s *Session) Login(ctx context.Context, permissions []string, listener Listener) error {
	if s.appID == "" {
		return fberr.ErrAppIDNotSet
	}

	pending := &PendingRequest{
		ID:        uuid.NewString(),
		Type:      EventSession,
		Method:    "login",
		Listener:  listener,
		CreatedAt: time.Now(),
	}

	if err := s.setPending(pending); err != nil {
		return err
	}

	slogctx.Debug(ctx, "Starting login", "app_id", s.appID, "request_id", pending.ID, "permissions", permissions)

	// recorded before the connector call so a synchronous completion
	// persists the right permission set
	s.mu.Lock()
	s.permissions = permissions
	s.mu.Unlock()

	req := LoginRequest{AppID: s.appID, Permissions: permissions}
	if err := s.connector.Login(ctx, req, s.complete); err != nil {
		s.clearPending(pending.ID)
		return fmt.Errorf("starting login: %w", err)
	}

	return nil
}

// Request performs a Graph API call. It fails synchronously while another
// request is pending or when not logged in; the outcome is otherwise
// delivered to the listener as a request-type event.
func (s *Session) Request(ctx context.Context, path, method string, params map[string]string, listener Listener) error {
	token, err := s.requireLogin()
	if err != nil {
		return err
	}

	pending := &PendingRequest{
		ID:        uuid.NewString(),
		Type:      EventRequest,
		Path:      path,
		Method:    method,
		Params:    toValues(params),
		Listener:  listener,
		CreatedAt: time.Now(),
	}

	if err := s.setPending(pending); err != nil {
		return err
	}

	slogctx.Debug(ctx, "Starting Graph request", "request_id", pending.ID, "path", path, "method", method)

	req := GraphRequest{
		Path:        path,
		Method:      method,
		Params:      pending.Params,
		AccessToken: token,
	}
	if err := s.connector.Request(ctx, req, s.complete); err != nil {
		s.clearPending(pending.ID)
		return fmt.Errorf("starting graph request: %w", err)
	}

	return nil
}

// ShowDialog presents a native dialog. Same guards as Request; connectors
// without dialog support reject the call synchronously.
func (s *Session) ShowDialog(ctx context.Context, action string, params map[string]string, listener Listener) error {
	token, err := s.requireLogin()
	if err != nil {
		return err
	}

	pending := &PendingRequest{
		ID:        uuid.NewString(),
		Type:      EventDialog,
		Path:      action,
		Method:    "dialog",
		Params:    toValues(params),
		Listener:  listener,
		CreatedAt: time.Now(),
	}

	if err := s.setPending(pending); err != nil {
		return err
	}

	slogctx.Debug(ctx, "Showing dialog", "request_id", pending.ID, "action", action)

	req := DialogRequest{Action: action, Params: pending.Params, AccessToken: token}
	if err := s.connector.Dialog(ctx, req, s.complete); err != nil {
		s.clearPending(pending.ID)
		if errors.Is(err, fberr.ErrDialogUnsupported) {
			return err
		}
		return fmt.Errorf("showing dialog: %w", err)
	}

	return nil
}

// Logout terminates the active session. Same guards as Request; the outcome
// is delivered to the listener as a session-type event with the logout
// phase.
func (s *Session) Logout(ctx context.Context, listener Listener) error {
	token, err := s.requireLogin()
	if err != nil {
		return err
	}

	pending := &PendingRequest{
		ID:        uuid.NewString(),
		Type:      EventSession,
		Method:    "logout",
		Listener:  listener,
		CreatedAt: time.Now(),
	}

	if err := s.setPending(pending); err != nil {
		return err
	}

	slogctx.Debug(ctx, "Starting logout", "request_id", pending.ID)

	if err := s.connector.Logout(ctx, LogoutRequest{AccessToken: token}, s.complete); err != nil {
		s.clearPending(pending.ID)
		return fmt.Errorf("starting logout: %w", err)
	}

	return nil
}

func (s *Session) requireLogin() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		return "", fberr.ErrRequestPending
	}
	if !s.loggedIn {
		return "", fberr.ErrNotLoggedIn
	}

	return s.accessToken, nil
}

func (s *Session) setPending(pending *PendingRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		return fberr.ErrRequestPending
	}
	s.pending = pending

	return nil
}

func (s *Session) clearPending(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil && s.pending.ID == id {
		s.pending = nil
	}
}

// complete translates a connector completion into the normalized
// ResponseEvent shape, updates the login state for session-phase events,
// clears the pending slot and invokes the listener. A completion arriving
// with no pending request recorded is unrecoverable API misuse and panics.
func (s *Session) complete(ctx context.Context, raw RawEvent) {
	s.mu.Lock()
	pending := s.pending
	if pending == nil {
		s.mu.Unlock()
		panic("facebook: completion delivered with no pending request")
	}
	s.pending = nil

	if raw.Type == EventSession && !raw.IsError {
		switch raw.Phase {
		case PhaseLogin:
			s.loggedIn = true
			s.accessToken = raw.Token
			s.tokenExpiry = raw.Expiration
		case PhaseLogout:
			s.loggedIn = false
			s.accessToken = ""
			s.tokenExpiry = time.Time{}
		}
	}
	permissions := s.permissions
	s.mu.Unlock()

	event := normalize(raw)
	event.Request = pending

	if raw.Type == EventSession && !raw.IsError {
		s.persistTokenChange(ctx, raw, permissions)
	}

	slogctx.Debug(ctx, "Delivering response event",
		"request_id", pending.ID, "type", event.Type, "phase", event.Phase, "is_error", event.IsError)

	if pending.Listener != nil {
		pending.Listener(event)
	}
}

func (s *Session) persistTokenChange(ctx context.Context, raw RawEvent, permissions []string) {
	if s.tokens == nil {
		return
	}

	switch raw.Phase {
	case PhaseLogin:
		rec := tokenstore.Record{
			AppID:       s.appID,
			AccessToken: raw.Token,
			Expiry:      raw.Expiration,
			Permissions: permissions,
		}
		if err := s.tokens.Store(ctx, rec); err != nil {
			slogctx.Warn(ctx, "Could not persist access token", "app_id", s.appID, "error", err)
		}
	case PhaseLogout:
		if err := s.tokens.Delete(ctx, s.appID); err != nil && !errors.Is(err, tokenstore.ErrNotFound) {
			slogctx.Warn(ctx, "Could not delete persisted token", "app_id", s.appID, "error", err)
		}
	}
}

// normalize reduces the three error classes to one caller-visible shape:
// connection failures are wrapped into the {error:{message,type,code}}
// envelope, JSON bodies starting with "{" are decoded, and a decoded error
// field is promoted to IsError.
func normalize(raw RawEvent) ResponseEvent {
	event := ResponseEvent{
		Type:        raw.Type,
		Phase:       raw.Phase,
		IsError:     raw.IsError,
		ResponseRaw: raw.Response,
	}

	body := strings.TrimSpace(raw.Response)
	if raw.IsError && !strings.HasPrefix(body, "{") {
		env := fberr.NewCallError(raw.Response)
		body = fberr.MarshalEnvelope(env)
	}

	if strings.HasPrefix(body, "{") {
		var decoded map[string]any
		if err := json.Unmarshal([]byte(body), &decoded); err == nil {
			event.Response = decoded
			if _, ok := decoded["error"]; ok {
				event.IsError = true
			}
		}
	}

	return event
}

func toValues(params map[string]string) url.Values {
	if params == nil {
		return nil
	}
	values := make(url.Values, len(params))
	for k, v := range params {
		values[k] = []string{v}
	}

	return values
}
