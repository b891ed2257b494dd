// Package resultstream broadcasts every ResultQ1 the core emits to
// connected websocket clients, for live observability. It is additive to
// the core: nothing downstream of the pipeline depends on a client being
// connected, and results are never replayed or persisted.
package resultstream

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/maximbalsacq/aqiwindow/internal/ingest"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// Hub fans every published ResultQ1 out to every connected client.
type Hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]*client
}

// NewHub builds an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]*client)}
}

// HandleWS upgrades the request to a websocket and registers the
// connection until the client disconnects. Clients are read-only
// subscribers; any inbound message is drained and discarded.
func (h *Hub) HandleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("resultstream: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	cl := &client{conn: conn}
	h.mu.Lock()
	h.clients[conn] = cl
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Publish marshals result and pushes it to every connected client,
// dropping any client whose write fails.
func (h *Hub) Publish(result ingest.ResultQ1) {
	data, err := json.Marshal(toWireResult(result))
	if err != nil {
		log.Printf("resultstream: marshal error: %v", err)
		return
	}

	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for _, cl := range h.clients {
		clients = append(clients, cl)
	}
	h.mu.RUnlock()

	for _, cl := range clients {
		cl.writeMu.Lock()
		err := cl.conn.WriteMessage(websocket.TextMessage, data)
		cl.writeMu.Unlock()
		if err != nil {
			h.mu.Lock()
			delete(h.clients, cl.conn)
			h.mu.Unlock()
			cl.conn.Close()
		}
	}
}

// ClientCount reports the number of currently connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Router mounts the websocket endpoint on a gin engine, for callers that
// want to add their own routes alongside it.
func (h *Hub) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/ws/results", h.HandleWS)
	return r
}

type wireTopKCity struct {
	Position              int32  `json:"position"`
	City                  string `json:"city"`
	CurrentAQIP1          int32  `json:"current_aqip1"`
	CurrentAQIP2          int32  `json:"current_aqip2"`
	AverageAQIImprovement int32  `json:"average_aqi_improvement"`
}

type wireResult struct {
	BenchmarkID  int64          `json:"benchmark_id"`
	BatchSeqID   int64          `json:"batch_seq_id"`
	TopKImproved []wireTopKCity `json:"topkimproved"`
}

func toWireResult(r ingest.ResultQ1) wireResult {
	out := wireResult{BenchmarkID: r.BenchmarkID, BatchSeqID: r.BatchSeqID}
	out.TopKImproved = make([]wireTopKCity, len(r.TopKImproved))
	for i, c := range r.TopKImproved {
		out.TopKImproved[i] = wireTopKCity{
			Position:              c.Position,
			City:                  c.City,
			CurrentAQIP1:          c.CurrentAQIP1,
			CurrentAQIP2:          c.CurrentAQIP2,
			AverageAQIImprovement: c.AverageAQIImprovement,
		}
	}
	return out
}
