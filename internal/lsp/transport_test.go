package lsp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"
)

func frame(body string) string {
	return fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(body), body)
}

func TestReadMessageParsesFramedBody(t *testing.T) {
	body := `{"jsonrpc":"2.0","id":"1","method":"initialize","params":{"rootUri":"file:///w"}}`
	tr := NewTransport(bytes.NewBufferString(frame(body)), &bytes.Buffer{})

	env, err := tr.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if env.Method != "initialize" {
		t.Fatalf("expected method initialize, got %q", env.Method)
	}
}

func TestReadMessageToleratesLFOnlyHeaders(t *testing.T) {
	body := `{"method":"exit"}`
	raw := fmt.Sprintf("Content-Length: %d\n\n%s", len(body), body)
	tr := NewTransport(bytes.NewBufferString(raw), &bytes.Buffer{})

	env, err := tr.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if env.Method != "exit" {
		t.Fatalf("expected method exit, got %q", env.Method)
	}
}

func TestReadMessageReturnsErrorOnEmptyStream(t *testing.T) {
	tr := NewTransport(&bytes.Buffer{}, &bytes.Buffer{})
	if _, err := tr.ReadMessage(); err == nil {
		t.Fatal("expected an error on empty stream")
	}
}

func TestSendRequestAndHandleReplyInvokesCallbackOnce(t *testing.T) {
	var out bytes.Buffer
	tr := NewTransport(&bytes.Buffer{}, &out)

	calls := 0
	var gotResult json.RawMessage
	err := tr.SendRequest("readFile", map[string]string{"x": "y"}, func(r json.RawMessage) {
		calls++
		gotResult = r
	}, func(*ResponseError) {
		t.Fatal("onError should not be called")
	})
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}

	// The transport's first generated id is deterministic.
	id, _ := json.Marshal("ruby-typer-req-1")
	reply := &Envelope{ID: id, Result: mustMarshal(map[string]string{"ok": "yes"})}
	if !tr.HandleReply(reply) {
		t.Fatal("expected HandleReply to report handling the reply")
	}
	if calls != 1 {
		t.Fatalf("expected callback invoked exactly once, got %d", calls)
	}
	if string(gotResult) != string(mustMarshal(map[string]string{"ok": "yes"})) {
		t.Fatalf("unexpected result payload: %s", gotResult)
	}

	// A second reply with the same id is still recognized as a reply (so the
	// caller won't try to dispatch it as a fresh request), but the pending
	// entry was already consumed and its callback does not fire again.
	reply2 := &Envelope{ID: id, Result: mustMarshal(map[string]string{"ok": "no"})}
	if !tr.HandleReply(reply2) {
		t.Fatal("expected HandleReply to still report the envelope as a reply")
	}
	if calls != 1 {
		t.Fatal("pending entry should not be invoked twice")
	}
}

func TestHandleReplyReturnsFalseForFreshRequestEnvelope(t *testing.T) {
	tr := NewTransport(&bytes.Buffer{}, &bytes.Buffer{})
	env := &Envelope{Method: "initialize"}
	if tr.HandleReply(env) {
		t.Fatal("expected a method-carrying envelope not to be treated as a reply")
	}
}

func mustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
