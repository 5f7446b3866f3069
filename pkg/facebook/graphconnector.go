package facebook

import (
	"context"
	"errors"

	slogctx "github.com/veqryn/slog-context"

	"github.com/BobDickinson/lib-facebook/internal/device"
	"github.com/BobDickinson/lib-facebook/internal/fberr"
	"github.com/BobDickinson/lib-facebook/internal/graph"
)

// GraphConnector is the fallback Connector for environments without a
// native Facebook binding. Requests go straight to the Graph API over
// HTTP; login either uses a developer-supplied access token or runs the
// device login flow; dialogs need native UI and are rejected.
type GraphConnector struct {
	client      *graph.Client
	accessToken string
	deviceFlow  *device.Flow
	onCode      func(device.Code)
}

type GraphConnectorOption func(*GraphConnector)

// WithAccessToken supplies a fixed developer access token; login then
// completes immediately without any user interaction.
func WithAccessToken(token string) GraphConnectorOption {
	return func(c *GraphConnector) { c.accessToken = token }
}

// WithDeviceFlow enables interactive device login. onCode is invoked with
// the user code and verification URI to present to the user.
func WithDeviceFlow(flow *device.Flow, onCode func(device.Code)) GraphConnectorOption {
	return func(c *GraphConnector) {
		c.deviceFlow = flow
		c.onCode = onCode
	}
}

func NewGraphConnector(client *graph.Client, opts ...GraphConnectorOption) *GraphConnector {
	c := &GraphConnector{client: client}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *GraphConnector) Login(ctx context.Context, req LoginRequest, deliver DeliverFunc) error {
	if c.accessToken != "" {
		deliver(ctx, RawEvent{
			Type:  EventSession,
			Phase: PhaseLogin,
			Token: c.accessToken,
		})

		return nil
	}

	if c.deviceFlow == nil {
		return fberr.ErrNoAccessToken
	}

	go func() {
		code, err := c.deviceFlow.Start(ctx, req.Permissions)
		if err != nil {
			deliver(ctx, loginFailure(ctx, err))
			return
		}

		if c.onCode != nil {
			c.onCode(code)
		}

		token, err := c.deviceFlow.Poll(ctx, code)
		if err != nil {
			deliver(ctx, loginFailure(ctx, err))
			return
		}

		deliver(ctx, RawEvent{
			Type:       EventSession,
			Phase:      PhaseLogin,
			Token:      token.AccessToken,
			Expiration: token.Expiry(),
		})
	}()

	return nil
}

func (c *GraphConnector) Request(ctx context.Context, req GraphRequest, deliver DeliverFunc) error {
	go func() {
		result, err := c.client.Do(ctx, req.Method, req.Path, req.Params, req.AccessToken)
		if err != nil {
			deliver(ctx, RawEvent{
				Type:     EventRequest,
				IsError:  true,
				Response: err.Error(),
			})

			return
		}

		deliver(ctx, RawEvent{
			Type:     EventRequest,
			IsError:  !result.OK(),
			Response: result.Body,
		})
	}()

	return nil
}

// Dialog always fails: dialogs are native UI and have no Graph API
// equivalent.
func (c *GraphConnector) Dialog(_ context.Context, _ DialogRequest, _ DeliverFunc) error {
	return fberr.ErrDialogUnsupported
}

// Logout synthesizes a logout event. The token itself is not revoked; the
// Graph API keeps it valid until its natural expiry.
func (c *GraphConnector) Logout(ctx context.Context, _ LogoutRequest, deliver DeliverFunc) error {
	deliver(ctx, RawEvent{
		Type:  EventSession,
		Phase: PhaseLogout,
	})

	return nil
}

func loginFailure(ctx context.Context, err error) RawEvent {
	if errors.Is(err, context.Canceled) {
		slogctx.Debug(ctx, "Device login cancelled")
		return RawEvent{
			Type:  EventSession,
			Phase: PhaseLoginCancelled,
		}
	}

	slogctx.Warn(ctx, "Device login failed", "error", err)

	return RawEvent{
		Type:     EventSession,
		Phase:    PhaseLoginFailed,
		IsError:  true,
		Response: err.Error(),
	}
}
