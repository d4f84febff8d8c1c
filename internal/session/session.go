// Package session serves live reader sessions over WebSocket. Each
// connection owns one reader controller; the server pushes a snapshot after
// every transition.
package session

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/galatea-comics/galatea/internal/comic"
	"github.com/galatea-comics/galatea/internal/logging"
	"github.com/galatea-comics/galatea/internal/reader"
)

const writeTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// request is the incoming WebSocket message format.
type request struct {
	Type  string          `json:"type"`            // goto, next, prev, panel, retry or key
	Page  json.RawMessage `json:"page,omitempty"`  // goto: number or string
	Panel int             `json:"panel,omitempty"` // panel: 0-based index
	Key   string          `json:"key,omitempty"`   // key: key name
}

// response is the outgoing WebSocket message format.
type response struct {
	Type      string           `json:"type"` // session, snapshot, display or error
	SessionID string           `json:"session_id"`
	Snapshot  *reader.Snapshot `json:"snapshot,omitempty"`
	Display   *reader.Display  `json:"display,omitempty"`
	Content   string           `json:"content,omitempty"`
}

// Hub accepts reader connections.
type Hub struct {
	fetcher comic.Fetcher
	log     *zap.Logger

	mu       sync.Mutex
	sessions map[string]*conn
}

// New creates a hub whose sessions resolve pages with fetcher.
func New(fetcher comic.Fetcher, log *zap.Logger) *Hub {
	return &Hub{
		fetcher:  fetcher,
		log:      logging.OrNop(log),
		sessions: make(map[string]*conn),
	}
}

// RegisterRoutes mounts the session endpoint onto the given router.
func (h *Hub) RegisterRoutes(r chi.Router) {
	r.Get("/ws/reader", h.handleWebSocket)
}

// Active returns the number of open sessions.
func (h *Hub) Active() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// conn is one live session.
type conn struct {
	id      string
	ws      *websocket.Conn
	log     *zap.Logger
	ctrl    *reader.Controller
	display reader.Display

	writeMu sync.Mutex
}

func (h *Hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade", zap.Error(err))
		return
	}
	defer ws.Close()

	c := &conn{
		id:      uuid.NewString(),
		ws:      ws,
		display: reader.NewDisplay(),
	}
	c.log = h.log.With(zap.String("session", c.id))
	c.ctrl = reader.New(h.fetcher, reader.WithLogger(c.log), reader.WithListener(c.pushSnapshot))
	defer c.ctrl.Close()

	h.mu.Lock()
	h.sessions[c.id] = c
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.sessions, c.id)
		h.mu.Unlock()
	}()

	c.log.Info("reader session opened")
	c.send(response{Type: "session", SessionID: c.id})

	start := r.URL.Query().Get("page")
	if start == "" {
		start = "1"
	}
	c.ctrl.RequestRaw(start)

	c.readLoop()
	c.log.Info("reader session closed")
}

func (c *conn) readLoop() {
	for {
		_, msg, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("websocket read", zap.Error(err))
			}
			return
		}

		var req request
		if err := json.Unmarshal(msg, &req); err != nil {
			c.sendError("invalid message format")
			continue
		}
		c.handle(req)
	}
}

func (c *conn) handle(req request) {
	switch req.Type {
	case "goto":
		c.ctrl.RequestRaw(pageText(req.Page))
	case "next":
		c.ctrl.NextPanel()
	case "prev":
		c.ctrl.PrevPanel()
	case "panel":
		c.ctrl.SetPanelIndex(req.Panel)
	case "retry":
		c.ctrl.Retry()
	case "key":
		b, ok := reader.Lookup(req.Key)
		if !ok {
			c.sendError("unbound key: " + req.Key)
			return
		}
		reader.Apply(c.ctrl, &c.display, b)
		switch b.Command {
		case reader.CmdFullscreen, reader.CmdZoomIn, reader.CmdZoomOut:
			d := c.display
			c.send(response{Type: "display", SessionID: c.id, Display: &d})
		}
	default:
		c.sendError("unknown message type: " + req.Type)
	}
}

// pageText turns a goto page field into route text. Both 3 and "3" are
// accepted; anything else is passed through so the controller rejects it.
func pageText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// pushSnapshot is the controller listener. It only writes to the socket.
func (c *conn) pushSnapshot(s reader.Snapshot) {
	c.send(response{Type: "snapshot", SessionID: c.id, Snapshot: &s})
}

func (c *conn) send(resp response) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.ws.WriteJSON(resp); err != nil {
		c.log.Debug("websocket write", zap.Error(err))
	}
}

func (c *conn) sendError(message string) {
	c.send(response{Type: "error", SessionID: c.id, Content: message})
}
