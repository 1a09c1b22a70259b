package v1

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	log "github.com/sirupsen/logrus"

	"github.com/mullak99/MCTools/extractor"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ProgressHub fans pregeneration progress events out to every connected
// websocket client. Writes to dead connections unregister them.
type ProgressHub struct {
	sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func NewProgressHub() *ProgressHub {
	return &ProgressHub{conns: make(map[*websocket.Conn]struct{})}
}

// Broadcast pushes one progress event to all connected clients.
func (h *ProgressHub) Broadcast(event extractor.ProgressEvent) {
	h.Lock()
	defer h.Unlock()

	for conn := range h.conns {
		if err := conn.WriteJSON(event); err != nil {
			log.WithError(err).Debug("dropping progress listener")
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

func (h *ProgressHub) register(conn *websocket.Conn) {
	h.Lock()
	h.conns[conn] = struct{}{}
	h.Unlock()
}

func (h *ProgressHub) unregister(conn *websocket.Conn) {
	h.Lock()
	if _, ok := h.conns[conn]; ok {
		conn.Close()
		delete(h.conns, conn)
	}
	h.Unlock()
}

func getPregenerateProgress(w http.ResponseWriter, r *http.Request, p httprouter.Params, ctx *context) (string, int) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Info("could not upgrade progress connection")
		return "getPregenerateProgress", http.StatusBadRequest
	}

	ctx.Progress.register(conn)

	// Consume (and discard) client frames until the peer goes away so that
	// close frames and pings are processed.
	go func() {
		defer ctx.Progress.unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	return "getPregenerateProgress", 0
}
