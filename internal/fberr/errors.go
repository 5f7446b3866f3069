// Package fberr defines the error vocabulary shared by the session wrapper,
// the Graph HTTP client, and the connectors. Usage errors are sentinels
// returned synchronously to the caller; Graph API and connection failures are
// normalized into the same error envelope delivered through response events.
package fberr

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrAppIDNotSet = errors.New("facebook application ID is not set")
var ErrRequestPending = errors.New("another request is already pending")
var ErrNotLoggedIn = errors.New("not logged in")
var ErrDialogUnsupported = errors.New("dialogs are not supported by this connector")
var ErrNoAccessToken = errors.New("no access token available")

// CallErrorCode is the code assigned to connection-level failures that
// carry no Graph API error object.
const CallErrorCode = -1

// CallErrorType is the error type assigned to connection-level failures.
const CallErrorType = "CallError"

// GraphError is the error object returned by the Graph API, or synthesized
// from a connection failure. It marshals to the exact wire shape so callers
// can treat both classes uniformly.
type GraphError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
	Subcode int    `json:"error_subcode,omitempty"`
	TraceID string `json:"fbtrace_id,omitempty"`
}

func (e *GraphError) Error() string {
	if e.Type == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (%s, code %d)", e.Message, e.Type, e.Code)
}

// Envelope is the normalized error body {"error": {...}} used both on the
// wire and in decoded response payloads.
type Envelope struct {
	Err GraphError `json:"error"`
}

// NewCallError wraps a connection-level failure string into the same
// envelope used for Graph API errors.
func NewCallError(message string) Envelope {
	return Envelope{Err: GraphError{
		Message: message,
		Type:    CallErrorType,
		Code:    CallErrorCode,
	}}
}

// MarshalEnvelope renders the envelope as a JSON body. Marshalling the flat
// error struct cannot fail.
func MarshalEnvelope(env Envelope) string {
	b, _ := json.Marshal(env)
	return string(b)
}
