package handler

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/CageChen/filedesk/internal/watcher"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/puzpuzpuz/xsync/v4"
)

// writeWait bounds a single write so a stalled client cannot block broadcasts.
const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is wide open for the REST API as well
	},
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// wsClient serializes writes to one connection; gorilla allows a single
// concurrent writer.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}

// WSHandler pushes base directory changes to connected WebSocket clients
type WSHandler struct {
	clients *xsync.Map[*websocket.Conn, *wsClient]
}

// NewWSHandler creates a new WebSocket handler
func NewWSHandler() *WSHandler {
	return &WSHandler{
		clients: xsync.NewMap[*websocket.Conn, *wsClient](),
	}
}

// HandleWS handles WebSocket upgrade and connection
func (h *WSHandler) HandleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer func() {
		h.clients.Delete(conn)
		_ = conn.Close()
	}()

	h.clients.Store(conn, &wsClient{conn: conn})

	// Clients only listen; reading detects the disconnect.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// OnFileChange is called when a file change is detected
func (h *WSHandler) OnFileChange(event watcher.Event) {
	h.broadcast(WSMessage{
		Type: "fileChange",
		Payload: map[string]string{
			"event": event.Type.String(),
			"name":  event.Name,
		},
	})
}

// Clients returns the number of connected clients.
func (h *WSHandler) Clients() int {
	return h.clients.Size()
}

// CloseAll disconnects every client.
func (h *WSHandler) CloseAll() {
	closing := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server stopping")
	h.clients.Range(func(conn *websocket.Conn, client *wsClient) bool {
		_ = client.write(websocket.CloseMessage, closing)
		_ = conn.Close()
		h.clients.Delete(conn)
		return true
	})
}

func (h *WSHandler) broadcast(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.clients.Range(func(conn *websocket.Conn, client *wsClient) bool {
		if err := client.write(websocket.TextMessage, data); err != nil {
			h.clients.Delete(conn)
		}
		return true
	})
}
