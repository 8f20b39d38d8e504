package exchange

import (
	"bufio"
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/inverno-io/gohttpcore/internal/config"
	"github.com/inverno-io/gohttpcore/internal/httpx"
	"github.com/inverno-io/gohttpcore/internal/obslog"
	"github.com/inverno-io/gohttpcore/internal/router"
	"github.com/inverno-io/gohttpcore/internal/routing"
	"github.com/inverno-io/gohttpcore/internal/ws"
)

func ok(ctx context.Context, req *httpx.Request) (*httpx.Response, error) {
	h := httpx.NewHeader()
	h.Set("Content-Length", "2")
	return &httpx.Response{StatusCode: 200, Status: "OK", Header: h, Body: strings.NewReader("ok")}, nil
}

func newTestEngine(t *testing.T) (*Engine, *router.Router) {
	t.Helper()
	rt := router.New()
	cfg := config.Default()
	return New(rt, cfg, obslog.New(), nil), rt
}

func serveOnPipe(t *testing.T, e *Engine) (client net.Conn) {
	t.Helper()
	client, server := net.Pipe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = e.Serve(context.Background(), server)
	}()
	t.Cleanup(func() {
		client.Close()
		<-done
	})
	return client
}

func TestServeSimpleGET(t *testing.T) {
	e, rt := newTestEngine(t)
	rt.Add(routing.Route{Path: "/ping", Method: "GET", Resource: ok})

	client := serveOnPipe(t, e)
	client.SetDeadline(time.Now().Add(2 * time.Second))

	if _, err := io.WriteString(client, "GET /ping HTTP/1.1\r\nHost: x\r\nConnection: close\r\n\r\n"); err != nil {
		t.Fatal(err)
	}

	resp, err := http.ReadResponse(bufio.NewReader(client), nil)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "ok" {
		t.Fatalf("expected body %q, got %q", "ok", body)
	}
}

func TestServeMethodNotAllowed(t *testing.T) {
	e, rt := newTestEngine(t)
	rt.Add(routing.Route{Path: "/ping", Method: "GET", Resource: ok})

	client := serveOnPipe(t, e)
	client.SetDeadline(time.Now().Add(2 * time.Second))

	io.WriteString(client, "POST /ping HTTP/1.1\r\nHost: x\r\nConnection: close\r\n\r\n")

	resp, err := http.ReadResponse(bufio.NewReader(client), nil)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 405 {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
	if allow := resp.Header.Get("Allow"); allow != "GET" {
		t.Fatalf("expected Allow: GET, got %q", allow)
	}
}

func TestServePipelinedKeepAlive(t *testing.T) {
	e, rt := newTestEngine(t)
	rt.Add(routing.Route{Path: "/ping", Method: "GET", Resource: ok})

	client := serveOnPipe(t, e)
	client.SetDeadline(time.Now().Add(2 * time.Second))

	go func() {
		io.WriteString(client, "GET /ping HTTP/1.1\r\nHost: x\r\n\r\n")
		io.WriteString(client, "GET /ping HTTP/1.1\r\nHost: x\r\nConnection: close\r\n\r\n")
	}()

	br := bufio.NewReader(client)
	for i := 0; i < 2; i++ {
		resp, err := http.ReadResponse(br, nil)
		if err != nil {
			t.Fatalf("read response %d: %v", i, err)
		}
		io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != 200 {
			t.Fatalf("response %d: expected 200, got %d", i, resp.StatusCode)
		}
	}
}

func TestServeChunkedRequestBody(t *testing.T) {
	e, rt := newTestEngine(t)
	var gotBody string
	echo := func(ctx context.Context, req *httpx.Request) (*httpx.Response, error) {
		b, _ := io.ReadAll(req.Body)
		gotBody = string(b)
		h := httpx.NewHeader()
		h.Set("Content-Length", "0")
		return &httpx.Response{StatusCode: 200, Status: "OK", Header: h}, nil
	}
	rt.Add(routing.Route{Path: "/echo", Method: "POST", Resource: echo})

	client := serveOnPipe(t, e)
	client.SetDeadline(time.Now().Add(2 * time.Second))

	req := "POST /echo HTTP/1.1\r\nHost: x\r\nTransfer-Encoding: chunked\r\nConnection: close\r\n\r\n" +
		"5\r\nhello\r\n0\r\n\r\n"
	io.WriteString(client, req)

	resp, err := http.ReadResponse(bufio.NewReader(client), nil)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	resp.Body.Close()
	if gotBody != "hello" {
		t.Fatalf("expected body %q, got %q", "hello", gotBody)
	}
}

func TestServeWebSocketUpgrade(t *testing.T) {
	e, rt := newTestEngine(t)
	handled := make(chan struct{})
	wsHandler := func(ctx context.Context, sess *ws.Session) error {
		close(handled)
		return nil
	}
	rt.Add(routing.Route{Path: "/chat", Method: "GET", WSHandler: wsHandler})

	client := serveOnPipe(t, e)
	client.SetDeadline(time.Now().Add(2 * time.Second))

	req := "GET /chat HTTP/1.1\r\nHost: x\r\nUpgrade: websocket\r\nConnection: Upgrade\r\n" +
		"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\nSec-WebSocket-Version: 13\r\n\r\n"
	io.WriteString(client, req)

	resp, err := http.ReadResponse(bufio.NewReader(client), nil)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	if resp.StatusCode != 101 {
		t.Fatalf("expected 101, got %d", resp.StatusCode)
	}

	select {
	case <-handled:
	case <-time.After(2 * time.Second):
		t.Fatal("WSHandler was never invoked")
	}
}
