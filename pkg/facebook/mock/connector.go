package connectormock

import (
	"context"

	"github.com/BobDickinson/lib-facebook/pkg/facebook"
)

type ConnectorOption func(*Connector)

// Connector is a scripted facebook.Connector for tests. Each operation
// either fails with the configured error or delivers the configured event
// synchronously. Undelivered operations leave the pending slot occupied,
// which is itself useful for flood-protection tests.
type Connector struct {
	loginEvent, requestEvent, dialogEvent, logoutEvent *facebook.RawEvent
	loginErr, requestErr, dialogErr, logoutErr         error

	calls        []string
	lastLogin    facebook.LoginRequest
	lastRequest  facebook.GraphRequest
	lastDialog   facebook.DialogRequest
	lastLogout   facebook.LogoutRequest
	lastDelivers []facebook.DeliverFunc
	prevDeliver  facebook.DeliverFunc
}

func WithLoginEvent(ev facebook.RawEvent) ConnectorOption {
	return func(c *Connector) { c.loginEvent = &ev }
}
func WithRequestEvent(ev facebook.RawEvent) ConnectorOption {
	return func(c *Connector) { c.requestEvent = &ev }
}
func WithDialogEvent(ev facebook.RawEvent) ConnectorOption {
	return func(c *Connector) { c.dialogEvent = &ev }
}
func WithLogoutEvent(ev facebook.RawEvent) ConnectorOption {
	return func(c *Connector) { c.logoutEvent = &ev }
}
func WithLoginError(err error) ConnectorOption {
	return func(c *Connector) { c.loginErr = err }
}
func WithRequestError(err error) ConnectorOption {
	return func(c *Connector) { c.requestErr = err }
}
func WithDialogError(err error) ConnectorOption {
	return func(c *Connector) { c.dialogErr = err }
}
func WithLogoutError(err error) ConnectorOption {
	return func(c *Connector) { c.logoutErr = err }
}

var _ = facebook.Connector(&Connector{})

func NewConnector(opts ...ConnectorOption) *Connector {
	c := &Connector{}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Connector) Login(ctx context.Context, req facebook.LoginRequest, deliver facebook.DeliverFunc) error {
	c.calls = append(c.calls, "login")
	c.lastLogin = req
	c.prevDeliver = deliver
	if c.loginErr != nil {
		return c.loginErr
	}
	if c.loginEvent != nil {
		deliver(ctx, *c.loginEvent)
		return nil
	}
	c.lastDelivers = append(c.lastDelivers, deliver)

	return nil
}

func (c *Connector) Request(ctx context.Context, req facebook.GraphRequest, deliver facebook.DeliverFunc) error {
	c.calls = append(c.calls, "request")
	c.lastRequest = req
	c.prevDeliver = deliver
	if c.requestErr != nil {
		return c.requestErr
	}
	if c.requestEvent != nil {
		deliver(ctx, *c.requestEvent)
		return nil
	}
	c.lastDelivers = append(c.lastDelivers, deliver)

	return nil
}

func (c *Connector) Dialog(ctx context.Context, req facebook.DialogRequest, deliver facebook.DeliverFunc) error {
	c.calls = append(c.calls, "dialog")
	c.lastDialog = req
	c.prevDeliver = deliver
	if c.dialogErr != nil {
		return c.dialogErr
	}
	if c.dialogEvent != nil {
		deliver(ctx, *c.dialogEvent)
		return nil
	}
	c.lastDelivers = append(c.lastDelivers, deliver)

	return nil
}

func (c *Connector) Logout(ctx context.Context, req facebook.LogoutRequest, deliver facebook.DeliverFunc) error {
	c.calls = append(c.calls, "logout")
	c.lastLogout = req
	c.prevDeliver = deliver
	if c.logoutErr != nil {
		return c.logoutErr
	}
	if c.logoutEvent != nil {
		deliver(ctx, *c.logoutEvent)
		return nil
	}
	c.lastDelivers = append(c.lastDelivers, deliver)

	return nil
}

// Calls lists the operations invoked on the connector, in order.
func (c *Connector) Calls() []string { return c.calls }

// LastLogin returns the request of the most recent Login call.
func (c *Connector) LastLogin() facebook.LoginRequest { return c.lastLogin }

// LastRequest returns the request of the most recent Request call.
func (c *Connector) LastRequest() facebook.GraphRequest { return c.lastRequest }

// LastDialog returns the request of the most recent Dialog call.
func (c *Connector) LastDialog() facebook.DialogRequest { return c.lastDialog }

// LastLogout returns the request of the most recent Logout call.
func (c *Connector) LastLogout() facebook.LogoutRequest { return c.lastLogout }

// Deliver completes the oldest accepted-but-undelivered operation with the
// given event, simulating an asynchronous native binding. With nothing
// outstanding it replays the most recent completion path, which lets tests
// exercise the no-pending-request invariant.
func (c *Connector) Deliver(ctx context.Context, ev facebook.RawEvent) {
	deliver := c.prevDeliver
	if len(c.lastDelivers) > 0 {
		deliver = c.lastDelivers[0]
		c.lastDelivers = c.lastDelivers[1:]
	}
	deliver(ctx, ev)
}
