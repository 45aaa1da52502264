package plugin

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/nu_plugin_beancount/internal/value"
)

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
	ID      any    `json:"id,omitempty"`
}

type reply struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int          `json:"code"`
		Message string       `json:"message"`
		Data    LabeledError `json:"data"`
	} `json:"error"`
	ID any `json:"id"`
}

func newPlugin() *FromBeancount {
	return NewFromBeancount("from beancount", "Convert from beancount to structured data")
}

func request(t *testing.T, id int, method string, params any) string {
	t.Helper()
	data, err := json.Marshal(rpcRequest{JSONRPC: "2.0", Method: method, Params: params, ID: id})
	require.NoError(t, err)
	return string(data) + "\n"
}

func runRequest(t *testing.T, id int, input value.Value) string {
	t.Helper()
	return request(t, id, "run", RunParams{
		Name:  "from beancount",
		Call:  EvaluatedCall{Head: value.Span{Start: 100, End: 114}},
		Input: input,
	})
}

func serve(t *testing.T, lines ...string) []reply {
	t.Helper()
	var out bytes.Buffer
	srv := NewServer(newPlugin(), strings.NewReader(strings.Join(lines, "")), &out)
	require.NoError(t, srv.Serve(context.Background()))

	var replies []reply
	sc := bufio.NewScanner(&out)
	for sc.Scan() {
		var r reply
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r), sc.Text())
		replies = append(replies, r)
	}
	return replies
}

func TestServer_Signature(t *testing.T) {
	replies := serve(t, request(t, 1, "signature", nil))
	require.Len(t, replies, 1)
	require.Nil(t, replies[0].Error)

	var sigs []Signature
	require.NoError(t, json.Unmarshal(replies[0].Result, &sigs))
	require.Len(t, sigs, 1)
	assert.Equal(t, "from beancount", sigs[0].Name)
	assert.Equal(t, CategoryFormats, sigs[0].Category)
	assert.Equal(t, "Convert from beancount to structured data", sigs[0].Usage)
	assert.InDelta(t, 1, replies[0].ID, 0)
}

func TestServer_Run(t *testing.T) {
	input := value.String("2014-12-26 balance Liabilities:US:CreditCard   -3492.02 USD", value.Span{Start: 0, End: 60})
	replies := serve(t, runRequest(t, 7, input))
	require.Len(t, replies, 1)
	require.Nil(t, replies[0].Error)

	var result value.Value
	require.NoError(t, json.Unmarshal(replies[0].Result, &result))
	assert.Equal(t, value.Span{Start: 100, End: 114}, result.Span())

	list, err := result.AsList()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, value.Span{Start: 0, End: 60}, list[0].Span())

	directive, _ := list[0].Get("directive")
	s, err := directive.AsString()
	require.NoError(t, err)
	assert.Equal(t, "balance", s)

	amount, _ := list[0].Get("amount")
	usd, ok := amount.Get("USD")
	require.True(t, ok)
	f, err := usd.AsFloat()
	require.NoError(t, err)
	assert.InDelta(t, -3492.02, f, 1e-9)
}

func TestServer_RunEmptyInput(t *testing.T) {
	replies := serve(t, runRequest(t, 1, value.String("", value.Unknown())))
	require.Len(t, replies, 1)
	require.Nil(t, replies[0].Error)

	var result value.Value
	require.NoError(t, json.Unmarshal(replies[0].Result, &result))
	list, err := result.AsList()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestServer_RunInvalidBeancount(t *testing.T) {
	span := value.Span{Start: 5, End: 25}
	replies := serve(t, runRequest(t, 2, value.String("include \"a\"\nnot beancount", span)))
	require.Len(t, replies, 1)
	require.NotNil(t, replies[0].Error)
	assert.JSONEq(t, "null", string(replies[0].Result))

	e := replies[0].Error
	assert.Equal(t, codeCommandFailed, e.Code)
	assert.Equal(t, "Invalid beancount input", e.Data.Label)
	assert.Contains(t, e.Data.Msg, "Error while parsing beancount file")
	require.NotNil(t, e.Data.Span)
	assert.Equal(t, span, *e.Data.Span)
}

func TestServer_RunNonStringInput(t *testing.T) {
	replies := serve(t, runRequest(t, 3, value.Float(1, value.Span{Start: 1, End: 2})))
	require.Len(t, replies, 1)
	require.NotNil(t, replies[0].Error)
	assert.Equal(t, "Unsupported input", replies[0].Error.Data.Label)
}

func TestServer_RunUnknownCommand(t *testing.T) {
	line := request(t, 4, "run", RunParams{Name: "from ledger", Input: value.String("", value.Unknown())})
	replies := serve(t, line)
	require.Len(t, replies, 1)
	require.NotNil(t, replies[0].Error)
	assert.Equal(t, codeMethodNotFound, replies[0].Error.Code)
}

func TestServer_RunMissingParams(t *testing.T) {
	replies := serve(t, request(t, 5, "run", nil))
	require.Len(t, replies, 1)
	require.NotNil(t, replies[0].Error)
	assert.Equal(t, codeInvalidParams, replies[0].Error.Code)
}

func TestServer_RunNullParams(t *testing.T) {
	replies := serve(t, `{"jsonrpc":"2.0","method":"run","params":null,"id":10}`+"\n")
	require.Len(t, replies, 1)
	require.NotNil(t, replies[0].Error)
	assert.Equal(t, codeInvalidParams, replies[0].Error.Code)
}

func TestServer_UnknownMethod(t *testing.T) {
	replies := serve(t, request(t, 6, "teleport", nil))
	require.Len(t, replies, 1)
	require.NotNil(t, replies[0].Error)
	assert.Equal(t, codeMethodNotFound, replies[0].Error.Code)
	assert.Contains(t, replies[0].Error.Message, "teleport")
}

func TestServer_MalformedLineKeepsServing(t *testing.T) {
	replies := serve(t, "{not json\n", "\n", request(t, 8, "signature", nil))
	require.Len(t, replies, 2)
	require.NotNil(t, replies[0].Error)
	assert.Equal(t, codeParseError, replies[0].Error.Code)
	assert.Nil(t, replies[1].Error)
}

func TestServer_ShutdownStopsLoop(t *testing.T) {
	shutdown := request(t, 0, "shutdown", nil)
	replies := serve(t, request(t, 1, "signature", nil), shutdown, request(t, 2, "signature", nil))
	assert.Len(t, replies, 1)
}

func TestServer_LastLineWithoutNewline(t *testing.T) {
	line := strings.TrimSuffix(request(t, 9, "signature", nil), "\n")
	replies := serve(t, line)
	assert.Len(t, replies, 1)
}

func TestServer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	srv := NewServer(newPlugin(), strings.NewReader(""), &bytes.Buffer{})
	assert.ErrorIs(t, srv.Serve(ctx), context.Canceled)
}

func TestServer_CancelWhileWaiting(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	var out bytes.Buffer
	srv := NewServer(newPlugin(), pr, &out)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	assert.Empty(t, out.String())
}

func TestFromBeancount_Run(t *testing.T) {
	p := newPlugin()
	head := value.Span{Start: 1, End: 2}
	result, err := p.Run("from beancount", EvaluatedCall{Head: head}, value.String(`include "path/to/file.beancount"`, value.Unknown()))
	require.NoError(t, err)

	list, err := result.AsList()
	require.NoError(t, err)
	require.Len(t, list, 1)
	path, _ := list[0].Get("path")
	s, err := path.AsString()
	require.NoError(t, err)
	assert.Equal(t, "path/to/file.beancount", s)
}

func TestFromBeancount_RunErrors(t *testing.T) {
	p := newPlugin()

	_, err := p.Run("from csv", EvaluatedCall{}, value.String("", value.Unknown()))
	assert.ErrorIs(t, err, ErrUnknownCommand)

	_, err = p.Run("from beancount", EvaluatedCall{}, value.String("???", value.Unknown()))
	var labeled *LabeledError
	require.ErrorAs(t, err, &labeled)
	assert.Equal(t, "Invalid beancount input", labeled.Label)
}
