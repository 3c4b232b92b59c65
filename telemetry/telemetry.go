// Package telemetry streams per-frame exposure statistics to websocket
// clients. The render thread only ever calls Publish, which never blocks.
package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"hdr-lighting/hdr"
)

const writeWait = 200 * time.Millisecond

// Sample is one frame's state as sent to clients.
type Sample struct {
	Frame    uint64  `json:"frame"`
	Operator string  `json:"operator"`
	Dynamic  bool    `json:"dynamic"`
	Bloom    bool    `json:"bloom"`
	Exposure float32 `json:"exposure"`
	Avg      float32 `json:"avg"`
	Min      float32 `json:"min"`
	Max      float32 `json:"max"`
}

// NewSample snapshots the state after a frame.
func NewSample(frame uint64, s *hdr.IlluminationState) Sample {
	return Sample{
		Frame:    frame,
		Operator: s.Operator.String(),
		Dynamic:  s.DynamicExposure,
		Bloom:    s.BloomEnabled,
		Exposure: s.Exposure,
		Avg:      s.AvgLuminance,
		Min:      s.MinLuminance,
		Max:      s.MaxLuminance,
	}
}

type Hub struct {
	updates chan Sample
	last    atomic.Pointer[Sample]

	mu      sync.Mutex
	clients map[*websocket.Conn]bool

	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		updates:  make(chan Sample, 1),
		clients:  map[*websocket.Conn]bool{},
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		log:      log,
	}
}

// Publish hands a sample to the broadcaster. If the previous sample has not
// been sent yet it is replaced.
func (h *Hub) Publish(s Sample) {
	h.last.Store(&s)
	select {
	case <-h.updates:
	default:
	}
	select {
	case h.updates <- s:
	default:
	}
}

// Last returns the most recently published sample.
func (h *Hub) Last() (Sample, bool) {
	p := h.last.Load()
	if p == nil {
		return Sample{}, false
	}
	return *p, true
}

// Run broadcasts published samples until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				c.Close()
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return
		case s := <-h.updates:
			h.broadcast(s)
		}
	}
}

func (h *Hub) broadcast(s Sample) {
	b, err := json.Marshal(s)
	if err != nil {
		h.log.Error().Err(err).Msg("marshal sample")
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			h.log.Debug().Err(err).Str("remote", c.RemoteAddr().String()).Msg("drop telemetry client")
			c.Close()
			delete(h.clients, c)
		}
	}
}

// HandleWS registers a client and sends it the latest sample straight away.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.mu.Lock()
	h.clients[conn] = true
	if s, ok := h.Last(); ok {
		b, _ := json.Marshal(s)
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteMessage(websocket.TextMessage, b)
	}
	h.mu.Unlock()
	h.log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("telemetry client connected")

	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.clients, conn)
			h.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	s, ok := h.Last()
	resp := map[string]any{"ok": true}
	if ok {
		resp["sample"] = s
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.HandleWS)
	mux.HandleFunc("/health", h.HandleHealth)
	return mux
}

// Serve runs the HTTP server and the broadcaster until ctx is cancelled.
func (h *Hub) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: h.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go h.Run(ctx)
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	h.log.Info().Str("addr", addr).Msg("telemetry listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
