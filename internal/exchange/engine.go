// Package exchange is the per-connection exchange engine: it drives one
// accepted net.Conn through the request/response lifecycle (READING_HEAD,
// RUNNING_HANDLER, WRITING_HEAD, WRITING_BODY, WRITING_TAIL, DONE/FAILED),
// supports HTTP/1.1 pipelining and keep-alive, and hands a connection off
// to a WebSocket session handler when a route negotiates an upgrade.
//
// No teacher file implements a connection loop directly — the teacher
// repo stops at the message-model layer — so this package is original
// code written in the teacher's idiom (context-aware blocking calls,
// sentinel errors, no panics) gluing internal/httpx, internal/ws,
// internal/wsframe, and internal/routing together behind net.Conn.
package exchange

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"

	"github.com/inverno-io/gohttpcore/errtaxonomy"
	"github.com/inverno-io/gohttpcore/internal/config"
	"github.com/inverno-io/gohttpcore/internal/httpx"
	"github.com/inverno-io/gohttpcore/internal/metrics"
	"github.com/inverno-io/gohttpcore/internal/netx"
	"github.com/inverno-io/gohttpcore/internal/obslog"
	"github.com/inverno-io/gohttpcore/internal/routing"
	"github.com/inverno-io/gohttpcore/internal/ws"
	"github.com/inverno-io/gohttpcore/internal/wsframe"
)

// State names one stage of an exchange's lifecycle.
type State int

const (
	StateReadingHead State = iota
	StateRunningHandler
	StateWritingHead
	StateWritingBody
	StateWritingTail
	StateDone
	StateFailed
	StateWebSocketHandshake
)

func (s State) String() string {
	switch s {
	case StateReadingHead:
		return "READING_HEAD"
	case StateRunningHandler:
		return "RUNNING_HANDLER"
	case StateWritingHead:
		return "WRITING_HEAD"
	case StateWritingBody:
		return "WRITING_BODY"
	case StateWritingTail:
		return "WRITING_TAIL"
	case StateDone:
		return "DONE"
	case StateFailed:
		return "FAILED"
	case StateWebSocketHandshake:
		return "WEBSOCKET_HANDSHAKE"
	default:
		return "UNKNOWN"
	}
}

// Resolver is the subset of router.Router the engine depends on, kept as
// an interface so tests can supply a fake routing table.
type Resolver interface {
	Resolve(in routing.Input) (routing.Resource, error)
	ResolveRoute(in routing.Input) (routing.Route, error)
}

// Engine holds the dependencies shared by every connection it serves.
type Engine struct {
	Resolver Resolver
	Config   config.Config
	Log      *obslog.Logger
	Metrics  *metrics.Metrics
}

// New builds an Engine.
func New(resolver Resolver, cfg config.Config, log *obslog.Logger, m *metrics.Metrics) *Engine {
	return &Engine{Resolver: resolver, Config: cfg, Log: log, Metrics: m}
}

var requestLimits = httpx.ParseLimits{MaxLineBytes: 8192, MaxHeaderBytes: 1 << 16}

// Serve drives one accepted connection to completion: it parses and
// dispatches requests in a pipelined loop, honoring keep-alive, until the
// peer closes the connection, a fatal protocol error occurs, or a route
// upgrades to WebSocket and hands the connection to its Handler. Serve
// always closes conn before returning.
func (e *Engine) Serve(ctx context.Context, conn net.Conn) error {
	defer conn.Close()

	connID := obslog.NewExchangeID()
	connLog := e.Log.WithConn(connID)
	cr := netx.NewCRLFFastReader(conn)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		keepAlive, err := e.serveOne(ctx, conn, cr, connLog)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if !keepAlive {
			return nil
		}
	}
}

// serveOne runs exactly one exchange: read a request, resolve and invoke
// its handler (or hand off to WebSocket), write the response, and report
// whether the connection should stay open for another exchange.
func (e *Engine) serveOne(ctx context.Context, conn net.Conn, cr *netx.CRLFFastReader, connLog *obslog.Logger) (keepAlive bool, err error) {
	exchangeID := obslog.NewExchangeID()
	elog := connLog.WithExchange(exchangeID)
	state := StateReadingHead
	if e.Metrics != nil {
		e.Metrics.ExchangesStarted.Inc()
	}
	finish := func(s State) {
		state = s
		if e.Metrics != nil {
			e.Metrics.ExchangesTerminal.WithLabelValues(strings.ToLower(s.String())).Inc()
		}
	}

	req, err := httpx.ParseRequest(cr, requestLimits)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return false, io.EOF
		}
		elog.Error(err, "parse request")
		e.writeBestEffort(ctx, conn, errorResponse(errtaxonomy.BadRequest{Reason: err.Error()}))
		finish(StateFailed)
		return false, err
	}
	req = req.WithContext(ctx)

	bodyReader, _, err := httpx.NewBodyReader(ctx, req, cr.Reader(), int64(e.Config.MaxFrameSize))
	if err != nil {
		e.writeBestEffort(ctx, conn, errorResponse(err))
		finish(StateFailed)
		return false, err
	}
	req.Body = bodyReader
	defer drainBody(req.Body)

	state = StateRunningHandler
	elog.StateTransition(StateReadingHead.String(), state.String())

	in, inErr := buildInput(req)

	if inErr == nil && isWebSocketUpgrade(req) {
		if route, rerr := e.Resolver.ResolveRoute(in); rerr == nil && route.WSHandler != nil {
			state = StateWebSocketHandshake
			elog.StateTransition(StateRunningHandler.String(), state.String())
			err := e.handleUpgrade(ctx, conn, cr, req, route, elog)
			finish(StateDone)
			return false, err
		}
	}

	var resp *httpx.Response
	switch {
	case inErr != nil:
		resp = errorResponse(inErr)
	default:
		resource, rerr := e.Resolver.Resolve(in)
		if rerr != nil {
			resp = errorResponse(rerr)
		} else {
			var herr error
			resp, herr = resource(req.Context(), req)
			if herr != nil {
				resp = errorResponse(herr)
			}
		}
	}
	if resp == nil {
		resp = errorResponse(errors.New("exchange: handler returned a nil response"))
	}

	state = StateWritingHead
	elog.StateTransition(StateRunningHandler.String(), state.String())

	keepAlive = decideKeepAlive(req, resp)
	applyFraming(resp, keepAlive)

	state = StateWritingBody
	if err := httpx.WriteResponse(ctx, conn, resp); err != nil {
		elog.Error(err, "write response")
		finish(StateFailed)
		return false, err
	}

	state = StateWritingTail
	finish(StateDone)
	elog.StateTransition(StateWritingBody.String(), StateDone.String())
	return keepAlive, nil
}

// writeBestEffort attempts to send resp but swallows any write error —
// used when the connection is already being abandoned and a second
// failure carries no new information.
func (e *Engine) writeBestEffort(ctx context.Context, conn net.Conn, resp *httpx.Response) {
	_ = httpx.WriteResponse(ctx, conn, resp)
}

// drainBody discards any unread request body so a pipelined connection's
// next request starts at the right byte offset, then closes it.
func drainBody(r io.ReadCloser) {
	if r == nil {
		return
	}
	_, _ = io.Copy(io.Discard, r)
	_ = r.Close()
}

func errorResponse(err error) *httpx.Response {
	status := errtaxonomy.StatusFor(err)
	h := httpx.NewHeader()
	if re, ok := err.(errtaxonomy.RoutingError); ok {
		re.ApplyHeaders(&h)
	}
	h.Set("Content-Length", "0")
	return &httpx.Response{StatusCode: status.Code, Status: status.Reason, Header: h}
}

// buildInput derives the routing.Input from a parsed request's URL and
// negotiation headers.
func buildInput(req *httpx.Request) (routing.Input, error) {
	in := routing.Input{
		Path:   req.URL.Path,
		Method: req.Method,
		Query:  req.URL.Query(),
	}
	if ct := req.Header.Get("Content-Type"); ct != "" {
		mt, err := httpx.ParseMediaType(ct)
		if err != nil {
			return routing.Input{}, errtaxonomy.BadRequest{Reason: "invalid Content-Type"}
		}
		in.ContentType = mt
		in.HasContentType = true
	}
	if accept := req.Header.Get("Accept"); accept != "" {
		mts, err := httpx.ParseAcceptList(accept)
		if err != nil {
			return routing.Input{}, errtaxonomy.BadRequest{Reason: "invalid Accept"}
		}
		in.Accept = mts
	}
	if al := req.Header.Get("Accept-Language"); al != "" {
		ranges, err := httpx.ParseAcceptLanguage(al)
		if err != nil {
			return routing.Input{}, errtaxonomy.BadRequest{Reason: "invalid Accept-Language"}
		}
		in.AcceptLanguage = ranges
	}
	return in, nil
}

func isWebSocketUpgrade(req *httpx.Request) bool {
	return headerTokenContains(req.Header.Get("Upgrade"), "websocket") &&
		headerTokenContains(req.Header.Get("Connection"), "upgrade")
}

func headerTokenContains(value, token string) bool {
	for _, part := range strings.Split(value, ",") {
		if strings.EqualFold(strings.TrimSpace(part), token) {
			return true
		}
	}
	return false
}

// decideKeepAlive applies the HTTP/1.x persistence rules: HTTP/1.0
// defaults to close unless the client asked for keep-alive; either side
// naming "close" wins; otherwise HTTP/1.1 defaults to persistent.
func decideKeepAlive(req *httpx.Request, resp *httpx.Response) bool {
	reqConn := req.Header.Get("Connection")
	if headerTokenContains(reqConn, "close") {
		return false
	}
	if req.ProtoMajor == 1 && req.ProtoMinor == 0 && !headerTokenContains(reqConn, "keep-alive") {
		return false
	}
	if headerTokenContains(resp.Header.Get("Connection"), "close") {
		return false
	}
	return true
}

// applyFraming ensures the response is self-delimiting (Content-Length or
// chunked) so pipelining stays in sync, and stamps the Connection header
// to match the keep-alive decision.
func applyFraming(resp *httpx.Response, keepAlive bool) {
	if resp.Header.Get("Content-Length") == "" && !strings.EqualFold(resp.Header.Get("Transfer-Encoding"), "chunked") {
		if resp.Body == nil {
			resp.Header.Set("Content-Length", "0")
		} else {
			resp.Header.Set("Transfer-Encoding", "chunked")
		}
	}
	if !keepAlive {
		resp.Header.Set("Connection", "close")
	} else if resp.Header.Get("Connection") == "" {
		resp.Header.Set("Connection", "keep-alive")
	}
}

// handleUpgrade completes the WebSocket handshake and hands the
// connection's raw frame stream to route.WSHandler, which owns the
// connection until it returns.
func (e *Engine) handleUpgrade(ctx context.Context, conn net.Conn, cr *netx.CRLFFastReader, req *httpx.Request, route routing.Route, elog *obslog.Logger) error {
	if err := ws.ValidateUpgradeRequest(req); err != nil {
		e.writeBestEffort(ctx, conn, errorResponse(errtaxonomy.BadRequest{Reason: err.Error()}))
		return err
	}

	offered := ws.ParseOfferedSubprotocols(req.Header.Get("Sec-WebSocket-Protocol"))
	subprotocol, err := ws.SelectSubprotocol(offered, e.Config.WSSubprotocols, false)
	if err != nil {
		e.writeBestEffort(ctx, conn, errorResponse(errtaxonomy.BadRequest{Reason: err.Error()}))
		return err
	}

	h := httpx.NewHeader()
	h.Set("Upgrade", "websocket")
	h.Set("Connection", "Upgrade")
	h.Set("Sec-WebSocket-Accept", ws.AcceptKey(req.Header.Get("Sec-WebSocket-Key")))
	if subprotocol != "" {
		h.Set("Sec-WebSocket-Protocol", subprotocol)
	}
	resp := &httpx.Response{
		StatusCode: httpx.StatusSwitchingProtocols.Code,
		Status:     httpx.StatusSwitchingProtocols.Reason,
		Header:     h,
	}
	if err := httpx.WriteResponse(ctx, conn, resp); err != nil {
		return err
	}

	reader := wsframe.NewReader(cr.Reader(), int64(e.Config.MaxFrameSize), true)
	writer := wsframe.NewWriter(conn, false)
	outbound := ws.NewOutbound(writer, e.Config.MaxFrameSize)

	// The close frame is sent through writer directly rather than through
	// outbound: CLOSE is a control frame exempt from Outbound's
	// frame-vs-message mode exclusivity, and routing it through Outbound
	// would wrongly bind the session's send mode as a side effect of
	// closing.
	closeDance := ws.NewCloseDance(func(code uint16, reason string) error {
		return writer.WriteFrame(wsframe.Frame{
			Fin: true, Opcode: wsframe.OpClose, Payload: ws.EncodeClosePayload(code, reason),
		}, [4]byte{})
	}, nil)
	inbound := ws.NewInbound(reader, func(payload []byte) error {
		return outbound.SendPong(payload, [4]byte{})
	})

	sess := &ws.Session{Inbound: inbound, Outbound: outbound, Close: closeDance, Subprotocol: subprotocol}
	elog.StateTransition(StateWebSocketHandshake.String(), StateRunningHandler.String())
	return route.WSHandler(ctx, sess)
}
