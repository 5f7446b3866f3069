package facebook

import (
	"context"
	"net/url"
)

// DeliverFunc hands a completion back to the session wrapper. A connector
// calls it exactly once per accepted operation.
type DeliverFunc func(ctx context.Context, ev RawEvent)

// LoginRequest describes a login attempt.
type LoginRequest struct {
	AppID       string
	Permissions []string
}

// GraphRequest describes a Graph API call.
type GraphRequest struct {
	Path        string
	Method      string
	Params      url.Values
	AccessToken string
}

// DialogRequest describes a native dialog invocation.
type DialogRequest struct {
	Action      string
	Params      url.Values
	AccessToken string
}

// LogoutRequest carries the token of the session being terminated.
type LogoutRequest struct {
	AccessToken string
}

// Connector is the seam between the session wrapper and whatever performs
// the actual work: a native platform binding in production embeds, or the
// Graph HTTP fallback when no native binding exists.
//
// A nil error from a method means the operation was accepted and exactly one
// RawEvent will be delivered. A non-nil error means the operation was
// rejected synchronously and no event will follow.
type Connector interface {
	Login(ctx context.Context, req LoginRequest, deliver DeliverFunc) error
	Request(ctx context.Context, req GraphRequest, deliver DeliverFunc) error
	Dialog(ctx context.Context, req DialogRequest, deliver DeliverFunc) error
	Logout(ctx context.Context, req LogoutRequest, deliver DeliverFunc) error
}
