// Package lsp implements the server side of the Language Server Protocol:
// Content-Length-framed JSON-RPC over stdio, a method dispatcher, the wire
// type catalogue, and URI<->path mapping. The framing and request
// correlation are grounded in the same shape as a hand-rolled LSP client
// transport, inverted to read from an editor instead of driving one.
package lsp

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// Envelope is the outer JSON-RPC 2.0 shape shared by requests, responses,
// and notifications. Fields are pointers/omitempty so marshaling only emits
// the members that apply to a given message kind.
type Envelope struct {
	JSONRPC string          `json:"jsonrpc,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ResponseError  `json:"error,omitempty"`
}

// ResponseError is the JSON-RPC error object.
type ResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Transport owns framed reads/writes over a pair of stdio-shaped streams
// and the pending-request bookkeeping for server-initiated requests this
// process sends to the editor (e.g. the readFile request behind
// workspace/didChangeWatchedFiles).
type Transport struct {
	r *bufio.Reader
	w io.Writer

	writeMu sync.Mutex

	counter int64

	pendingMu sync.Mutex
	pending   map[string]pendingRequest

	closed int32
}

type pendingRequest struct {
	onResult func(json.RawMessage)
	onError  func(*ResponseError)
}

// NewTransport wraps r/w for framed JSON-RPC traffic.
func NewTransport(r io.Reader, w io.Writer) *Transport {
	return &Transport{
		r:       bufio.NewReader(r),
		w:       w,
		pending: make(map[string]pendingRequest),
	}
}

// ReadMessage blocks for the next framed message and returns its decoded
// envelope. It returns io.EOF when the stream ends before a header block
// completes, whether or not any header line was read, matching a readline
// loop that tolerates \n, \r\n, and EOF-without-a-trailing-newline.
func (t *Transport) ReadMessage() (*Envelope, error) {
	length := -1
	sawHeader := false
	for {
		line, err := t.readHeaderLine()
		if err != nil {
			if err == io.EOF && !sawHeader {
				return nil, io.EOF
			}
			return nil, err
		}
		if line == "" {
			break
		}
		sawHeader = true
		if v, ok := strings.CutPrefix(line, "Content-Length:"); ok {
			n, convErr := strconv.Atoi(strings.TrimSpace(v))
			if convErr != nil || n < 0 {
				return nil, fmt.Errorf("lsp: invalid Content-Length header %q", line)
			}
			length = n
		}
	}
	if length < 0 {
		return nil, fmt.Errorf("lsp: message had no Content-Length header")
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(t.r, body); err != nil {
		return nil, fmt.Errorf("lsp: reading message body: %w", err)
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("lsp: parsing message body: %w", err)
	}
	return &env, nil
}

// readHeaderLine reads one header line, tolerating "\n" and "\r\n"
// terminators, and returns it with the terminator stripped.
func (t *Transport) readHeaderLine() (string, error) {
	line, err := t.r.ReadString('\n')
	if err != nil {
		if err == io.EOF && line == "" {
			return "", io.EOF
		}
		if err != io.EOF {
			return "", err
		}
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// writeMessage frames and writes env.
func (t *Transport) writeMessage(env *Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return err
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if _, err := fmt.Fprintf(t.w, "Content-Length: %d\r\n\r\n", len(body)); err != nil {
		return err
	}
	_, err = t.w.Write(body)
	return err
}

// SendResult replies to a client request with result, stripping the
// method/params fields the inbound envelope carried.
func (t *Transport) SendResult(id json.RawMessage, result json.RawMessage) error {
	return t.writeMessage(&Envelope{JSONRPC: "2.0", ID: id, Result: result})
}

// SendError replies to a client request with an error envelope.
func (t *Transport) SendError(id json.RawMessage, code int, message string) error {
	return t.writeMessage(&Envelope{JSONRPC: "2.0", ID: id, Error: &ResponseError{Code: code, Message: message}})
}

// SendNotification sends a server-initiated notification (no id, no reply
// expected).
func (t *Transport) SendNotification(method string, params any) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return err
	}
	return t.writeMessage(&Envelope{JSONRPC: "2.0", Method: method, Params: raw})
}

// SendRequest sends a server-initiated request carrying a generated
// "ruby-typer-req-<n>" id, and registers onResult/onError to fire exactly
// once when a reply with a matching id is dispatched via HandleReply.
func (t *Transport) SendRequest(method string, params any, onResult func(json.RawMessage), onError func(*ResponseError)) error {
	id := fmt.Sprintf("ruby-typer-req-%d", atomic.AddInt64(&t.counter, 1))
	raw, err := json.Marshal(params)
	if err != nil {
		return err
	}

	t.pendingMu.Lock()
	t.pending[id] = pendingRequest{onResult: onResult, onError: onError}
	t.pendingMu.Unlock()

	idJSON, _ := json.Marshal(id)
	return t.writeMessage(&Envelope{JSONRPC: "2.0", ID: idJSON, Method: method, Params: raw})
}

// HandleReply consumes env if it carries a "result" or "error" matching a
// pending request's id, invoking the registered callback exactly once and
// discarding the pending entry. It reports whether env was a reply (and so
// has already been fully handled) as opposed to a fresh inbound message the
// caller must dispatch itself.
func (t *Transport) HandleReply(env *Envelope) bool {
	if env.Result == nil && env.Error == nil {
		return false
	}
	if len(env.ID) == 0 {
		return true
	}
	var id string
	if err := json.Unmarshal(env.ID, &id); err != nil {
		return true
	}

	t.pendingMu.Lock()
	p, ok := t.pending[id]
	if ok {
		delete(t.pending, id)
	}
	t.pendingMu.Unlock()
	if !ok {
		return true
	}

	if env.Error != nil {
		if p.onError != nil {
			p.onError(env.Error)
		}
	} else if p.onResult != nil {
		p.onResult(env.Result)
	}
	return true
}
