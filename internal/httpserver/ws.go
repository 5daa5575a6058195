// internal/httpserver/ws.go
//
// WebSocket render surface.
// The browser draws only what the server sends and reports two events back.
//
// Server → client:
//   display_grid {categories:[{title, cells}]}
//   update_cell  {col, row, text}
//   show_loading / hide_loading
//   show_error   {message}
//
// Client → server:
//   cell_click {col, row}
//   reset
//   ping       (answered with pong)

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/jeopardy/internal/game"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 64
)

// Message types.
const (
	MsgDisplayGrid = "display_grid"
	MsgUpdateCell  = "update_cell"
	MsgShowLoading = "show_loading"
	MsgHideLoading = "hide_loading"
	MsgShowError   = "show_error"
	MsgPong        = "pong"

	MsgCellClick = "cell_click"
	MsgReset     = "reset"
	MsgPing      = "ping"
)

var errBadCell = errors.New("malformed cell coordinates")

// Envelope is the wire format in both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// CellPayload addresses one cell; also used for update_cell.
type CellPayload struct {
	Col  *int   `json:"col"`
	Row  *int   `json:"row"`
	Text string `json:"text,omitempty"`
}

// ErrorPayload carries a user-facing message.
type ErrorPayload struct {
	Message string `json:"message"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// resolveCell turns a cell_click payload into board coordinates.
// Bounds are checked later against the live board.
func resolveCell(raw json.RawMessage) (col, row int, err error) {
	var p CellPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return 0, 0, fmt.Errorf("%w: %v", errBadCell, err)
	}
	if p.Col == nil || p.Row == nil {
		return 0, 0, fmt.Errorf("%w: col and row are required", errBadCell)
	}
	return *p.Col, *p.Row, nil
}

// wsSurface implements game.Surface over one connection.
type wsSurface struct {
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	logger zerolog.Logger

	mu     sync.Mutex
	closed bool
}

func newWSSurface(conn *websocket.Conn, logger zerolog.Logger) *wsSurface {
	return &wsSurface{
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

func (s *wsSurface) DisplayGrid(v game.GridView) { s.emit(MsgDisplayGrid, v) }

func (s *wsSurface) UpdateCell(col, row int, text string) {
	s.emit(MsgUpdateCell, CellPayload{Col: &col, Row: &row, Text: text})
}

func (s *wsSurface) ShowLoading() { s.emit(MsgShowLoading, nil) }

func (s *wsSurface) HideLoading() { s.emit(MsgHideLoading, nil) }

func (s *wsSurface) ShowError(msg string) { s.emit(MsgShowError, ErrorPayload{Message: msg}) }

// emit queues a message; it never blocks the controller.
func (s *wsSurface) emit(typ string, payload any) {
	env := Envelope{Type: typ}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			s.logger.Error().Err(err).Str("type", typ).Msg("encode payload")
			return
		}
		env.Payload = raw
	}
	data, err := json.Marshal(env)
	if err != nil {
		s.logger.Error().Err(err).Str("type", typ).Msg("encode envelope")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.send <- data:
	default:
		s.logger.Warn().Str("type", typ).Msg("send buffer full, message dropped")
	}
}

func (s *wsSurface) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.done)
	_ = s.conn.Close()
}

// writePump drains the send queue and keeps the connection alive with pings.
func (s *wsSurface) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.close()
	}()

	for {
		select {
		case <-s.done:
			return
		case msg := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump feeds events to the controller one at a time. Builds run inline,
// so no click can reach a board that is still loading.
func (s *wsSurface) readPump(ctx context.Context, ctrl *game.Controller) {
	defer s.close()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		ctrl.Touch()
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Debug().Err(err).Msg("websocket read")
			}
			return
		}
		s.handle(ctx, ctrl, data)
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}

func (s *wsSurface) handle(ctx context.Context, ctrl *game.Controller, data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		s.logger.Warn().Err(err).Msg("invalid message")
		return
	}

	switch env.Type {
	case MsgCellClick:
		col, row, err := resolveCell(env.Payload)
		if err != nil {
			s.logger.Warn().Err(err).Msg("click dropped")
			return
		}
		// Invalid targets are already logged by the controller.
		_, _ = ctrl.Click(col, row)
	case MsgReset:
		if err := ctrl.Reset(ctx); errors.Is(err, game.ErrBusy) {
			s.logger.Debug().Msg("reset ignored while loading")
		}
	case MsgPing:
		ctrl.Touch()
		s.emit(MsgPong, nil)
	default:
		s.logger.Warn().Str("type", env.Type).Msg("unknown message type")
	}
}

// handleWS upgrades the request and binds it to the caller's session.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.controller(w, r)
	if err != nil {
		log.Error().Err(err).Msg("resolve session")
		http.Error(w, `{"error":"session_failed"}`, http.StatusInternalServerError)
		return
	}

	// Upgrade writes its own response, so a freshly issued cookie has to
	// travel in the handshake headers.
	var hdr http.Header
	if cookies := w.Header().Values("Set-Cookie"); len(cookies) > 0 {
		hdr = http.Header{"Set-Cookie": cookies}
	}
	conn, err := upgrader.Upgrade(w, r, hdr)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade")
		return
	}

	surface := newWSSurface(conn, log.With().Str("session", ctrl.ID).Logger())
	go surface.writePump()
	defer ctrl.Detach(surface)

	ctrl.Attach(surface)
	if snap := ctrl.Snapshot(); snap.Phase == game.PhaseIdle && snap.Error == "" {
		_ = ctrl.Start(r.Context())
	}
	surface.readPump(r.Context(), ctrl)
}

var _ game.Surface = (*wsSurface)(nil)
