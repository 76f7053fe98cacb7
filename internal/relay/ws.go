package relay

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

var liveUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The API is already open to any origin; the live feed follows.
	CheckOrigin: func(r *http.Request) bool { return true },
}

var liveClientSeq atomic.Uint64

const (
	liveWriteWait  = 10 * time.Second
	livePingPeriod = 30 * time.Second
)

// HandleLive handles GET /api/live: upgrades to a websocket and streams the
// query payload to the client after every successful bridge ingest. Polling
// remains the primary transport; the feed is an optimization for dashboards
// that want updates without waiting out the poll interval.
func (api *API) HandleLive(w http.ResponseWriter, r *http.Request) {
	if api.hub == nil {
		http.Error(w, "live feed disabled", http.StatusNotFound)
		return
	}

	conn, err := liveUpgrader.Upgrade(w, r, nil)
	if err != nil {
		api.log.Warn("Live feed upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	id := fmt.Sprintf("%s#%d", r.RemoteAddr, liveClientSeq.Add(1))
	ch := make(chan []byte, 16)
	api.hub.Register(id, ch)
	api.log.Debug("Live feed client connected", "id", id)

	// Reader goroutine exists only to notice the peer going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	go api.writeLive(conn, id, ch, done)
}

func (api *API) writeLive(conn *websocket.Conn, id string, ch chan []byte, done chan struct{}) {
	ticker := time.NewTicker(livePingPeriod)
	defer func() {
		ticker.Stop()
		api.hub.Unregister(id)
		conn.Close()
		api.log.Debug("Live feed client disconnected", "id", id)
	}()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
