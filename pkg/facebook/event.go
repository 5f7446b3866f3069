package facebook

import (
	"net/url"
	"time"
)

// EventType classifies a response event by the operation that produced it.
type EventType string

const (
	EventSession EventType = "session"
	EventRequest EventType = "request"
	EventDialog  EventType = "dialog"
)

// Phase is the session lifecycle phase carried by session-type events.
type Phase string

const (
	PhaseLogin          Phase = "login"
	PhaseLoginFailed    Phase = "loginFailed"
	PhaseLoginCancelled Phase = "loginCancelled"
	PhaseLogout         Phase = "logout"
)

// Listener receives the normalized outcome of a single operation. It is
// invoked exactly once per accepted call.
type Listener func(ResponseEvent)

// PendingRequest is the transient record of the one in-flight operation.
// It exists from the moment an operation is accepted until its response
// event is delivered, and doubles as the flood-protection slot: a second
// operation is rejected while one is recorded.
type PendingRequest struct {
	ID        string
	Type      EventType
	Path      string
	Method    string
	Params    url.Values
	Listener  Listener
	CreatedAt time.Time
}

// RawEvent is the untranslated completion a Connector delivers to the
// session wrapper. Response holds the raw body on success, a Graph error
// JSON body, or a bare failure string for connection-level errors.
type RawEvent struct {
	Type       EventType
	Phase      Phase
	IsError    bool
	Response   string
	Token      string
	Expiration time.Time
}

// ResponseEvent is the normalized outcome handed to the listener.
//
// Response holds the decoded JSON payload for bodies starting with "{",
// or the {error:{message,type,code}} envelope for connection-level
// failures. ResponseRaw always retains the original wire string.
type ResponseEvent struct {
	Type        EventType
	Phase       Phase
	IsError     bool
	Response    any
	ResponseRaw string
	Request     *PendingRequest
}
