package plugin

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cleared-dev/nu_plugin_beancount/internal/logger"
)

// Server answers newline-delimited JSON-RPC requests from a host. Requests
// are handled one at a time in arrival order.
type Server struct {
	plugin Plugin
	reader *bufio.Reader
	out    io.Writer
	mu     sync.Mutex
}

// NewServer creates a Server reading requests from in and writing
// responses to out.
func NewServer(p Plugin, in io.Reader, out io.Writer) *Server {
	return &Server{plugin: p, reader: bufio.NewReader(in), out: out}
}

// Serve runs until a shutdown notification, end of input, or ctx is done.
// Reaching end of input is not an error. Cancelling ctx returns at once,
// even while waiting for the next request.
func (s *Server) Serve(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Debug().Msg("plugin server started")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	lines := make(chan readResult)
	go s.readLines(ctx, lines)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var r readResult
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r = <-lines:
		}

		if strings.TrimSpace(r.line) != "" {
			if stop := s.handleLine(log, r.line); stop {
				log.Debug().Msg("shutdown requested")
				return nil
			}
		}
		if errors.Is(r.err, io.EOF) {
			log.Debug().Msg("input closed")
			return nil
		}
		if r.err != nil {
			return fmt.Errorf("reading request: %w", r.err)
		}
	}
}

type readResult struct {
	line string
	err  error
}

// readLines feeds Serve one line at a time. It stops after the first read
// error or once Serve has returned; a read already blocked on the input
// ends when the input is closed.
func (s *Server) readLines(ctx context.Context, out chan<- readResult) {
	for {
		line, err := s.reader.ReadString('\n')
		select {
		case out <- readResult{line: line, err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}

// handleLine processes one request and reports whether the server should stop.
func (s *Server) handleLine(log zerolog.Logger, line string) bool {
	var msg rawMessage
	if err := json.Unmarshal([]byte(line), &msg); err != nil {
		log.Warn().Err(err).Msg("malformed request")
		s.reply(log, Response{JSONRPC: "2.0", Error: &RPCError{Code: codeParseError, Message: "parse error: " + err.Error()}})
		return false
	}

	callID := uuid.NewString()
	log = log.With().Str("call_id", callID).Str("method", msg.Method).Logger()
	start := time.Now()
	defer func() {
		log.Debug().Dur("elapsed", time.Since(start)).Msg("request handled")
	}()

	switch msg.Method {
	case "shutdown":
		return true
	case "signature":
		s.reply(log, Response{JSONRPC: "2.0", Result: s.plugin.Signature(), ID: msg.ID})
	case "run":
		s.reply(log, s.run(log, msg))
	default:
		s.reply(log, Response{
			JSONRPC: "2.0",
			Error:   &RPCError{Code: codeMethodNotFound, Message: "unknown method: " + msg.Method},
			ID:      msg.ID,
		})
	}
	return false
}

func (s *Server) run(log zerolog.Logger, msg rawMessage) Response {
	var params RunParams
	if len(msg.Params) == 0 || bytes.Equal(bytes.TrimSpace(msg.Params), []byte("null")) {
		return Response{JSONRPC: "2.0", Error: &RPCError{Code: codeInvalidParams, Message: "run requires params"}, ID: msg.ID}
	}
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return Response{JSONRPC: "2.0", Error: &RPCError{Code: codeInvalidParams, Message: err.Error()}, ID: msg.ID}
	}

	result, err := s.plugin.Run(params.Name, params.Call, params.Input)
	if err == nil {
		return Response{JSONRPC: "2.0", Result: result, ID: msg.ID}
	}

	log.Info().Err(err).Str("command", params.Name).Msg("command failed")
	if errors.Is(err, ErrUnknownCommand) {
		return Response{JSONRPC: "2.0", Error: &RPCError{Code: codeMethodNotFound, Message: err.Error()}, ID: msg.ID}
	}
	rpcErr := &RPCError{Code: codeCommandFailed, Message: err.Error()}
	var labeled *LabeledError
	if errors.As(err, &labeled) {
		rpcErr.Data = labeled
	}
	return Response{JSONRPC: "2.0", Error: rpcErr, ID: msg.ID}
}

func (s *Server) reply(log zerolog.Logger, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		log.Error().Err(err).Msg("encoding response")
		data, _ = json.Marshal(Response{
			JSONRPC: "2.0",
			Error:   &RPCError{Code: codeCommandFailed, Message: "encoding response: " + err.Error()},
			ID:      resp.ID,
		})
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.out, "%s\n", data); err != nil {
		log.Error().Err(err).Msg("writing response")
	}
}
