package fberr_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BobDickinson/lib-facebook/internal/fberr"
)

func TestGraphError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *fberr.GraphError
		wantMsg string
	}{
		{
			name:    "Full graph error",
			err:     &fberr.GraphError{Message: "Invalid OAuth access token.", Type: "OAuthException", Code: 190},
			wantMsg: "Invalid OAuth access token. (OAuthException, code 190)",
		},
		{
			name:    "Untyped error",
			err:     &fberr.GraphError{Message: "connection reset"},
			wantMsg: "connection reset",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestNewCallError(t *testing.T) {
	env := fberr.NewCallError("dial tcp: connection refused")

	assert.Equal(t, "dial tcp: connection refused", env.Err.Message)
	assert.Equal(t, fberr.CallErrorType, env.Err.Type)
	assert.Equal(t, fberr.CallErrorCode, env.Err.Code)
}

func TestMarshalEnvelope(t *testing.T) {
	body := fberr.MarshalEnvelope(fberr.NewCallError(`failure with "quotes"`))

	var decoded fberr.Envelope
	require.NoError(t, json.Unmarshal([]byte(body), &decoded))
	assert.Equal(t, `failure with "quotes"`, decoded.Err.Message)
	assert.Equal(t, "CallError", decoded.Err.Type)
	assert.Equal(t, -1, decoded.Err.Code)
}

func TestEnvelope_WireShape(t *testing.T) {
	var env fberr.Envelope
	require.NoError(t, json.Unmarshal([]byte(
		`{"error":{"message":"denied","type":"OAuthException","code":10,"error_subcode":460,"fbtrace_id":"AbCdEf"}}`,
	), &env))

	assert.Equal(t, "denied", env.Err.Message)
	assert.Equal(t, "OAuthException", env.Err.Type)
	assert.Equal(t, 10, env.Err.Code)
	assert.Equal(t, 460, env.Err.Subcode)
	assert.Equal(t, "AbCdEf", env.Err.TraceID)
}
