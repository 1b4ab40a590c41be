package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tg383520/geo-quiz/internal/app"
	"github.com/tg383520/geo-quiz/internal/domain"
	"github.com/tg383520/geo-quiz/internal/viewport"
)

const (
	defaultFrameRate = 60
	keepAliveEvery   = 30 * time.Second
	sendBuffer       = 32
)

// MessageCounter observes WebSocket traffic by message type.
type MessageCounter interface {
	Inbound(msgType string)
	Outbound(msgType string)
}

type nopCounter struct{}

func (nopCounter) Inbound(string)  {}
func (nopCounter) Outbound(string) {}

// HandlerOptions tunes the WebSocket handler. Zero values use defaults.
type HandlerOptions struct {
	Logger    *zap.Logger
	Counter   MessageCounter
	FrameRate int
}

type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
	log      *zap.Logger
	counter  MessageCounter
	frame    time.Duration
}

func NewWSHandler(service *app.QuizService, opts HandlerOptions) *WSHandler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Counter == nil {
		opts.Counter = nopCounter{}
	}
	if opts.FrameRate <= 0 {
		opts.FrameRate = defaultFrameRate
	}
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log:     opts.Logger,
		counter: opts.Counter,
		frame:   time.Second / time.Duration(opts.FrameRate),
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type startPayload struct {
	Mode  domain.Mode  `json:"mode"`
	Style domain.Style `json:"style"`
}

type answerPayload struct {
	Option string `json:"option"`
}

type answerTextPayload struct {
	Text string `json:"text"`
}

type pointerPayload struct {
	Button viewport.Button `json:"button"`
	X      float64         `json:"x"`
	Y      float64         `json:"y"`
}

type touchPayload struct {
	Points []viewport.Point `json:"points"`
}

type wheelPayload struct {
	DeltaY float64 `json:"deltaY"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

type resizePayload struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type alertPayload struct {
	Message string `json:"message"`
}

type menuPayload struct {
	Screen domain.Screen `json:"screen"`
}

// conn is the per-connection state shared by the read loop and its helpers.
type conn struct {
	h       *WSHandler
	session *app.Session
	send    chan outboundMessage[any]
	done    chan struct{} // closed when the writer stops
}

func (c *conn) emit(msgType string, payload any) {
	select {
	case c.send <- outboundMessage[any]{Type: msgType, Payload: payload}:
		c.h.counter.Outbound(msgType)
	case <-c.done:
	}
}

func (c *conn) fail(err error) {
	if app.IsSilent(err) {
		return
	}
	c.emit("error", errorPayload{Code: errorCode(err), Message: err.Error()})
}

// ServeWS upgrades HTTP requests to websockets and gives each connection its own quiz session.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer ws.Close()

	session := h.service.OpenSession()
	defer h.service.CloseSession(session.ID())
	log := h.log.With(zap.String("session", session.ID()))

	statuses, cancelStatus := h.service.SubscribeStatus()
	defer cancelStatus()

	c := &conn{
		h:       h,
		session: session,
		send:    make(chan outboundMessage[any], sendBuffer),
		done:    make(chan struct{}),
	}
	closeSignals := make(chan struct{})

	// Single writer: no other goroutine touches ws for writing.
	go func() {
		defer close(c.done)
		for msg := range c.send {
			if err := ws.WriteJSON(msg); err != nil {
				log.Debug("ws write error", zap.Error(err))
				return
			}
		}
	}()

	var helpers sync.WaitGroup
	helpers.Add(2)
	go func() {
		defer helpers.Done()
		h.forwardStatus(c, statuses, closeSignals)
	}()
	go func() {
		defer helpers.Done()
		h.frameLoop(r.Context(), c, closeSignals)
	}()

	for {
		var inbound inboundMessage
		if err := ws.ReadJSON(&inbound); err != nil {
			break
		}
		h.counter.Inbound(inbound.Type)
		h.dispatch(c, inbound)
	}

	close(closeSignals)
	helpers.Wait()
	close(c.send)
	<-c.done
	log.Debug("ws connection closed")
}

func (h *WSHandler) forwardStatus(c *conn, statuses <-chan app.StatusView, closeSignals <-chan struct{}) {
	for {
		select {
		case st, ok := <-statuses:
			if !ok {
				return
			}
			if st.State == app.StatusFailed {
				c.emit("fatal", alertPayload{Message: st.Message})
				continue
			}
			c.emit("status", st)
		case <-closeSignals:
			return
		}
	}
}

// frameLoop pushes viewport frames while an animation runs and keeps the
// session's liveness marker fresh.
func (h *WSHandler) frameLoop(ctx context.Context, c *conn, closeSignals <-chan struct{}) {
	frames := time.NewTicker(h.frame)
	defer frames.Stop()
	keepAlive := time.NewTicker(keepAliveEvery)
	defer keepAlive.Stop()

	for {
		select {
		case now := <-frames.C:
			if mv, changed := c.session.Tick(now); changed {
				c.emit("viewport", mv)
			}
		case <-keepAlive.C:
			h.service.KeepAlive(ctx, c.session.ID())
		case <-closeSignals:
			return
		}
	}
}

func decode[T any](c *conn, raw json.RawMessage) (T, bool) {
	var v T
	if len(raw) == 0 {
		return v, true
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		c.emit("error", errorPayload{Code: "bad_payload", Message: "invalid payload"})
		return v, false
	}
	return v, true
}

func (h *WSHandler) dispatch(c *conn, in inboundMessage) {
	s := c.session
	switch in.Type {
	case "start":
		p, ok := decode[startPayload](c, in.Payload)
		if !ok {
			return
		}
		view, err := s.Start(p.Mode, p.Style)
		h.replyQuestion(c, view, err)
	case "playAgain":
		view, err := s.PlayAgain()
		h.replyQuestion(c, view, err)
	case "answer":
		p, ok := decode[answerPayload](c, in.Payload)
		if !ok {
			return
		}
		fb, err := s.AnswerOption(p.Option)
		if err != nil {
			c.fail(err)
			return
		}
		c.emit("feedback", fb)
	case "answerText":
		p, ok := decode[answerTextPayload](c, in.Payload)
		if !ok {
			return
		}
		fb, err := s.AnswerText(p.Text)
		if err != nil {
			c.fail(err)
			return
		}
		c.emit("feedback", fb)
	case "mapClick":
		p, ok := decode[viewport.Point](c, in.Payload)
		if !ok {
			return
		}
		fb, answered, err := s.ClickMap(p)
		if err != nil {
			c.fail(err)
			return
		}
		if answered {
			c.emit("feedback", fb)
		}
	case "pointerDown":
		p, ok := decode[pointerPayload](c, in.Payload)
		if !ok {
			return
		}
		if err := s.PointerDown(p.Button, viewport.Point{X: p.X, Y: p.Y}); err != nil {
			c.fail(err)
		}
	case "pointerMove":
		p, ok := decode[viewport.Point](c, in.Payload)
		if !ok {
			return
		}
		mv, changed, err := s.PointerMove(p)
		h.replyViewport(c, mv, changed, err)
	case "pointerUp":
		if err := s.PointerUp(); err != nil {
			c.fail(err)
		}
	case "touch":
		p, ok := decode[touchPayload](c, in.Payload)
		if !ok {
			return
		}
		mv, changed, err := s.Touch(p.Points)
		h.replyViewport(c, mv, changed, err)
	case "wheel":
		p, ok := decode[wheelPayload](c, in.Payload)
		if !ok {
			return
		}
		// frames follow from the frame loop
		if _, err := s.Wheel(p.DeltaY, viewport.Point{X: p.X, Y: p.Y}); err != nil {
			c.fail(err)
		}
	case "zoomReset":
		if err := s.ResetZoom(); err != nil {
			c.fail(err)
		}
	case "resize":
		p, ok := decode[resizePayload](c, in.Payload)
		if !ok {
			return
		}
		s.Resize(p.Width, p.Height)
	case "next":
		view, res, err := s.Next()
		if err != nil {
			c.fail(err)
			return
		}
		if res != nil {
			c.emit("results", res)
			return
		}
		c.emit("question", view)
	case "quit":
		s.Quit()
		c.emit("menu", menuPayload{Screen: domain.ScreenStart})
	default:
		c.emit("error", errorPayload{Code: "unsupported", Message: "unsupported message type"})
	}
}

func (h *WSHandler) replyQuestion(c *conn, view domain.QuestionView, err error) {
	switch {
	case errors.Is(err, domain.ErrInsufficientData):
		c.emit("alert", alertPayload{Message: "Not enough country data for this quiz."})
		c.emit("menu", menuPayload{Screen: domain.ScreenStart})
	case err != nil:
		c.fail(err)
	default:
		c.emit("question", view)
	}
}

func (h *WSHandler) replyViewport(c *conn, mv domain.MapView, changed bool, err error) {
	if err != nil {
		c.fail(err)
		return
	}
	if changed {
		c.emit("viewport", mv)
	}
}

var errorCodes = []struct {
	err  error
	code string
}{
	{domain.ErrNotReady, "not_ready"},
	{domain.ErrInsufficientData, "insufficient_data"},
	{domain.ErrUnknownMode, "unknown_mode"},
	{domain.ErrUnsupportedStyle, "unsupported_style"},
	{domain.ErrNoActiveQuestion, "no_active_question"},
	{domain.ErrAlreadyAnswered, "already_answered"},
	{domain.ErrNotAnswered, "not_answered"},
	{domain.ErrWrongInput, "wrong_input"},
	{domain.ErrNoMap, "no_map"},
	{domain.ErrSessionNotFound, "session_not_found"},
}

func errorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return "internal"
}
