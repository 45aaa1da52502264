package plugin

import (
	"encoding/json"

	"github.com/cleared-dev/nu_plugin_beancount/internal/value"
)

// JSON-RPC 2.0 message types.

// Response is a JSON-RPC 2.0 response.
// Result must NOT have omitempty; a nil result is still a reply.
type Response struct {
	JSONRPC string    `json:"jsonrpc"`
	Result  any       `json:"result"`
	Error   *RPCError `json:"error,omitempty"`
	ID      any       `json:"id"`
}

type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

const (
	codeParseError     = -32700
	codeInvalidParams  = -32602
	codeMethodNotFound = -32601
	codeCommandFailed  = -32000
)

type rawMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      any             `json:"id,omitempty"`
}

// Signature describes one command offered to the host.
type Signature struct {
	Name     string `json:"name"`
	Usage    string `json:"usage"`
	Category string `json:"category"`
}

// CategoryFormats groups commands that convert from or to text formats.
const CategoryFormats = "Formats"

// EvaluatedCall carries the host's view of the command invocation.
type EvaluatedCall struct {
	Head value.Span `json:"head"`
}

// RunParams is the shape of params for the run method.
type RunParams struct {
	Name  string        `json:"name"`
	Call  EvaluatedCall `json:"call"`
	Input value.Value   `json:"input"`
}

// LabeledError is the error shape shown to host users.
type LabeledError struct {
	Label string      `json:"label"`
	Msg   string      `json:"msg"`
	Span  *value.Span `json:"span,omitempty"`
}

func (e *LabeledError) Error() string {
	return e.Label + ": " + e.Msg
}
