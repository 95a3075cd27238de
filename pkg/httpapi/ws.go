package httpapi

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/aminofox/loopcast/pkg/logger"
	"github.com/aminofox/loopcast/pkg/playout"
)

// scheduleDTO is the JSON shape served by GET /schedule and pushed over
// GET /schedule/ws, mirroring playout.Schedule but with wire-friendly
// field names.
type scheduleItemDTO struct {
	Vid          uint32 `json:"vid"`
	StartSeconds uint64 `json:"start_seconds"`
	EndSeconds   uint64 `json:"end_seconds"`
}

type scheduleDTOBody struct {
	Start    time.Time         `json:"start"`
	Duration uint64            `json:"duration_seconds"`
	Items    []scheduleItemDTO `json:"items"`
}

func scheduleDTO(s playout.Schedule) scheduleDTOBody {
	items := make([]scheduleItemDTO, len(s.Items))
	for i, it := range s.Items {
		items[i] = scheduleItemDTO{
			Vid:          it.Vid,
			StartSeconds: uint64(it.StartDuration.ToSeconds(s.Step)),
			EndSeconds:   uint64(it.EndDuration.ToSeconds(s.Step)),
		}
	}
	return scheduleDTOBody{
		Start:    s.Start,
		Duration: uint64(s.Duration.ToSeconds(s.Step)),
		Items:    items,
	}
}

// scheduleHub periodically pushes the channel's schedule to every
// connected /schedule/ws client (SPEC_FULL §13). Unlike the teacher's
// SignalingServer, loopcast's websocket traffic is one-way — the
// schedule is a read-only, process-lifetime view, so there is no room
// membership or message routing, only broadcast.
type scheduleHub struct {
	playlist *playout.Playlist
	logger   logger.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*websocket.Conn]chan []byte

	stopCh chan struct{}
}

func newScheduleHub(playlist *playout.Playlist, log logger.Logger) *scheduleHub {
	return &scheduleHub{
		playlist: playlist,
		logger:   log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]chan []byte),
		stopCh:  make(chan struct{}),
	}
}

func (s *Server) handleScheduleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.hub.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("httpapi: websocket upgrade failed", logger.Err(err))
		return
	}
	s.hub.register(conn)
}

func (h *scheduleHub) register(conn *websocket.Conn) {
	send := make(chan []byte, 4)

	h.mu.Lock()
	h.clients[conn] = send
	h.mu.Unlock()

	snapshot, _ := json.Marshal(scheduleDTO(h.playlist.Schedule()))
	send <- snapshot

	go h.writePump(conn, send)
	go h.readPump(conn)
}

// readPump drains and discards client frames purely to detect a closed
// connection — the protocol is push-only, so there is nothing to act on.
func (h *scheduleHub) readPump(conn *websocket.Conn) {
	defer h.unregister(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *scheduleHub) writePump(conn *websocket.Conn, send chan []byte) {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-send:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *scheduleHub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	if send, ok := h.clients[conn]; ok {
		close(send)
		delete(h.clients, conn)
	}
	h.mu.Unlock()
}

// run pushes a fresh snapshot to every connected client once a minute —
// the schedule itself never changes after Assemble, but a slow client
// may have missed the initial snapshot during a reconnect race, so a
// periodic refresh is simpler than tracking that precisely.
func (h *scheduleHub) run() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			snapshot, err := json.Marshal(scheduleDTO(h.playlist.Schedule()))
			if err != nil {
				continue
			}
			h.broadcast(snapshot)
		case <-h.stopCh:
			return
		}
	}
}

func (h *scheduleHub) broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn, send := range h.clients {
		select {
		case send <- msg:
		default:
			go h.unregister(conn)
		}
	}
}

func (h *scheduleHub) stop() {
	close(h.stopCh)
}
