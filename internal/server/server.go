// Package server pushes inventory snapshots to websocket clients and
// answers read-only catalog queries over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bazaarlens/bazaarlens-go/pkg/bazaarlens"
	"github.com/bazaarlens/bazaarlens-go/pkg/bazaarlens/catalog"
)

// MessageSyncItems is the envelope type of snapshot messages.
const MessageSyncItems = "sync-items"

const (
	clientBuffer   = 8
	writeTimeout   = 5 * time.Second
	readTimeout    = 60 * time.Second
	pingPeriod     = readTimeout * 9 / 10
	shutdownPeriod = 2 * time.Second
)

// Envelope is the websocket message format.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Server fans snapshots out to websocket clients.
//
// Publish never blocks: a client that falls behind by more than a few
// messages loses the oldest undelivered ones, and always receives the
// latest snapshot on connect.
type Server struct {
	log      *slog.Logger
	monsters *catalog.Monsters
	upgrader websocket.Upgrader

	readTimeout time.Duration
	pingPeriod  time.Duration

	mu      sync.Mutex
	clients map[chan []byte]struct{}
	latest  *bazaarlens.Snapshot
	payload []byte
}

// Option configures a Server.
type Option func(*Server)

// WithReadTimeout sets how long a client may stay silent, pong frames
// included, before it is dropped. Pings go out every 9/10 of d.
func WithReadTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.readTimeout = d
			s.pingPeriod = d * 9 / 10
		}
	}
}

// New returns a server. monsters may be nil, in which case the monster
// search endpoint reports 503.
func New(monsters *catalog.Monsters, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{
		log:      logger,
		monsters: monsters,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // local overlay pages
		},
		clients:     make(map[chan []byte]struct{}),
		readTimeout: readTimeout,
		pingPeriod:  pingPeriod,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Publish stores snap as the latest snapshot and sends it to every client.
func (s *Server) Publish(snap bazaarlens.Snapshot) error {
	b, err := json.Marshal(Envelope{Type: MessageSyncItems, Data: snap})
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = &snap
	s.payload = b
	for out := range s.clients {
		enqueue(out, b)
	}
	return nil
}

// enqueue sends b, dropping the oldest queued message if out is full.
func enqueue(out chan []byte, b []byte) {
	for {
		select {
		case out <- b:
			return
		default:
		}
		select {
		case <-out:
		default:
		}
	}
}

// Latest returns the most recently published snapshot.
func (s *Server) Latest() (bazaarlens.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		return bazaarlens.Snapshot{}, false
	}
	return *s.latest, true
}

// Clients returns the number of connected websocket clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Handler returns the HTTP routes:
//
//	GET /ws               websocket snapshot stream
//	GET /api/snapshot     latest snapshot as JSON
//	GET /api/monsters?q=  monster search
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.WSHandler())
	mux.HandleFunc("/api/snapshot", s.SnapshotHandler())
	mux.HandleFunc("/api/monsters", s.MonstersHandler())
	return mux
}

// ListenAndServe serves Handler on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.log.Info("listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownPeriod)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// WSHandler upgrades the connection and streams snapshot envelopes.
// Client messages are read and discarded.
func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			s.log.Debug("websocket upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		out := make(chan []byte, clientBuffer)
		s.mu.Lock()
		s.clients[out] = struct{}{}
		if s.payload != nil {
			out <- s.payload
		}
		s.mu.Unlock()
		s.log.Debug("client connected", "remote", r.RemoteAddr)

		defer func() {
			s.mu.Lock()
			delete(s.clients, out)
			s.mu.Unlock()
			s.log.Debug("client disconnected", "remote", r.RemoteAddr)
		}()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		writeErr := make(chan error, 1)
		go func() {
			ticker := time.NewTicker(s.pingPeriod)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					writeErr <- ctx.Err()
					return
				case b := <-out:
					_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						writeErr <- err
						return
					}
				case <-ticker.C:
					_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
					if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
						writeErr <- err
						return
					}
				}
			}
		}()

		// Overlay pages only listen; their pongs keep the connection alive.
		_ = conn.SetReadDeadline(time.Now().Add(s.readTimeout))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(s.readTimeout))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
			_ = conn.SetReadDeadline(time.Now().Add(s.readTimeout))
		}

		cancel()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
			time.Now().Add(time.Second))

		select {
		case <-writeErr:
		case <-time.After(500 * time.Millisecond):
		}
	}
}

// SnapshotHandler serves the latest snapshot, or an empty one before the
// first publish.
func (s *Server) SnapshotHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		snap, ok := s.Latest()
		if !ok {
			snap = bazaarlens.EmptySnapshot()
		}
		writeJSON(rw, snap)
	}
}

// MonstersHandler searches the monster catalog by the q parameter.
func (s *Server) MonstersHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if s.monsters == nil {
			http.Error(rw, "monster catalog not loaded", http.StatusServiceUnavailable)
			return
		}
		results := s.monsters.Search(r.URL.Query().Get("q"))
		if results == nil {
			results = []catalog.Monster{}
		}
		writeJSON(rw, results)
	}
}

func writeJSON(rw http.ResponseWriter, v any) {
	rw.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(rw).Encode(v)
}
