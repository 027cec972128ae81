package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPongTimeout  = 60 * time.Second
	wsPingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The preview server is same-origin in practice but also used from
	// dev setups on other ports.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsEnvelope wraps every websocket message with its type
type wsEnvelope struct {
	Type string          `json:"type"` // "progress", "tile", "console", "error", "complete"
	Data json.RawMessage `json:"data,omitempty"`
}

// wsConn serializes writes to a websocket connection
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) sendJSON(msgType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return c.conn.WriteJSON(wsEnvelope{Type: msgType, Data: data})
}

// handleRenderWS streams a progressive render over a websocket. The
// request parameters ride in the query string, same as the SSE route;
// the socket exists for clients that want binary-friendly framing and
// server pings instead of SSE reconnect semantics.
func (s *Server) handleRenderWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ws := &wsConn{conn: conn}

	req, err := s.parseRenderRequest(r)
	if err != nil {
		ws.sendJSON("error", map[string]string{"message": err.Error()})
		return
	}

	// Reader goroutine: consume control frames and surface disconnects.
	// A hijacked connection's request context does not fire on close,
	// so the reader cancels the render instead.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	})
	disconnected := make(chan struct{})
	go func() {
		defer close(disconnected)
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Ping loop keeps intermediaries from idling out long renders.
	stopPings := make(chan struct{})
	defer close(stopPings)
	go func() {
		ticker := time.NewTicker(wsPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ws.mu.Lock()
				conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				err := conn.WriteMessage(websocket.PingMessage, nil)
				ws.mu.Unlock()
				if err != nil {
					return
				}
			case <-stopPings:
				return
			}
		}
	}()

	consoleChan := make(chan ConsoleMessage, 50)
	consoleDone := make(chan struct{})
	go func() {
		defer close(consoleDone)
		for {
			select {
			case msg := <-consoleChan:
				if err := ws.sendJSON("console", msg); err != nil {
					return
				}
			case <-disconnected:
				return
			case <-stopPings:
				return
			}
		}
	}()

	s.runRender(ctx, req, NewWebLogger(consoleChan), func(update ProgressUpdate) {
		ws.sendJSON("progress", update)
	}, func(update TileUpdate) {
		ws.sendJSON("tile", update)
	}, func(msg string) {
		ws.sendJSON("error", map[string]string{"message": msg})
	})

	ws.sendJSON("complete", map[string]string{"message": "Rendering completed"})

	ws.mu.Lock()
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"))
	ws.mu.Unlock()
}
