package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/neonronin/survivor/internal/config"
	"github.com/neonronin/survivor/internal/fx"
	"github.com/neonronin/survivor/internal/game"
	"github.com/neonronin/survivor/internal/persist"
	"github.com/neonronin/survivor/internal/system"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

const (
	contentMsgpack = "application/msgpack"
	clientQueue    = 8
	maxClientMsg   = 4 << 10

	defaultRunLimit = 10
	maxRunLimit     = 100
)

// frame is one stream message: the snapshot plus the effects drained since
// the previous frame.
type frame struct {
	Snapshot system.Snapshot `msgpack:"snapshot"`
	Effects  []fx.Command    `msgpack:"fx,omitempty"`
}

// clientMessage is what a connected client may send. Exactly one of the
// fields is acted on, in the order input, upgrade, pause.
type clientMessage struct {
	Input   *system.InputFrame `msgpack:"input,omitempty"`
	Upgrade string             `msgpack:"upgrade,omitempty"`
	Pause   *bool              `msgpack:"pause,omitempty"`
}

// runBoard lists the best finished runs.
type runBoard interface {
	Top(ctx context.Context, limit int) ([]persist.RunRecord, error)
}

// runView is one leaderboard row.
type runView struct {
	ID         string    `json:"id" msgpack:"id"`
	Class      string    `json:"class" msgpack:"class"`
	Map        string    `json:"map" msgpack:"map"`
	Score      int       `json:"score" msgpack:"score"`
	Kills      int       `json:"kills" msgpack:"kills"`
	Level      int       `json:"level" msgpack:"level"`
	Wave       int       `json:"wave" msgpack:"wave"`
	DurationMs int64     `json:"durationMs" msgpack:"durationMs"`
	EndedAt    time.Time `json:"endedAt" msgpack:"endedAt"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// streamServer serves snapshots over HTTP and a msgpack websocket stream,
// and feeds websocket input back into the session.
type streamServer struct {
	sess     *game.Session
	cfg      config.StreamConfig
	log      *zap.Logger
	upgrader websocket.Upgrader
	runs     runBoard // nil without a ledger database

	mu      sync.Mutex
	clients map[*client]struct{}
}

func newStreamServer(sess *game.Session, cfg config.StreamConfig, log *zap.Logger) *streamServer {
	return &streamServer{
		sess:    sess,
		cfg:     cfg,
		log:     log.Named("stream"),
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

func (s *streamServer) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/snapshot", s.handleSnapshot).Methods(http.MethodGet)
	r.HandleFunc("/api/upgrade/{id}", s.handleUpgrade).Methods(http.MethodPost)
	r.HandleFunc("/api/pause/{state:on|off}", s.handlePause).Methods(http.MethodPost)
	if s.runs != nil {
		r.HandleFunc("/api/runs", s.handleRuns).Methods(http.MethodGet)
	}
	r.HandleFunc("/ws", s.handleWS)
	return r
}

// Run serves until ctx is done, then shuts the listener down.
func (s *streamServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.BindAddress,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.closeAll()
	return srv.Shutdown(shutCtx)
}

func (s *streamServer) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Publish encodes one frame and queues it for every client. Slow clients
// miss frames rather than stall the tick.
func (s *streamServer) Publish(snap system.Snapshot, effects []fx.Command) {
	if s.Clients() == 0 {
		return
	}
	b, err := msgpack.Marshal(frame{Snapshot: snap, Effects: effects})
	if err != nil {
		s.log.Error("encode frame", zap.Error(err))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- b:
		default:
		}
	}
}

func (s *streamServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *streamServer) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	s.writeValue(w, r, s.sess.Snapshot())
}

func (s *streamServer) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.sess.ChooseUpgrade(id); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	s.writeValue(w, r, s.sess.Snapshot())
}

func (s *streamServer) handlePause(w http.ResponseWriter, r *http.Request) {
	s.sess.SetPaused(mux.Vars(r)["state"] == "on")
	s.writeValue(w, r, s.sess.Snapshot())
}

// handleRuns serves the leaderboard; ?limit= caps the rows (default 10).
func (s *streamServer) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunLimit
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxRunLimit)
	}
	recs, err := s.runs.Top(r.Context(), limit)
	if err != nil {
		s.log.Error("list runs", zap.Error(err))
		http.Error(w, "run ledger unavailable", http.StatusServiceUnavailable)
		return
	}
	out := make([]runView, len(recs))
	for i, rec := range recs {
		out[i] = runView{
			ID:         rec.ID.String(),
			Class:      rec.Class,
			Map:        rec.Map,
			Score:      rec.Score,
			Kills:      rec.Kills,
			Level:      rec.Level,
			Wave:       rec.Wave,
			DurationMs: rec.Duration.Milliseconds(),
			EndedAt:    rec.EndedAt,
		}
	}
	s.writeValue(w, r, out)
}

// writeValue answers in msgpack when the client asks for it, JSON otherwise.
func (s *streamServer) writeValue(w http.ResponseWriter, r *http.Request, v any) {
	if strings.Contains(r.Header.Get("Accept"), contentMsgpack) {
		b, err := msgpack.Marshal(v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentMsgpack)
		_, _ = w.Write(b)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Debug("write json", zap.Error(err))
	}
}

func (s *streamServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade", zap.Error(err))
		return
	}
	c := &client{conn: conn, send: make(chan []byte, clientQueue)}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	n := len(s.clients)
	s.mu.Unlock()
	s.log.Info("client attached", zap.String("remote", r.RemoteAddr), zap.Int("clients", n))

	go s.writePump(c)
	s.readPump(c)
}

func (s *streamServer) readPump(c *client) {
	defer s.drop(c)
	c.conn.SetReadLimit(maxClientMsg)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("client read", zap.Error(err))
			}
			return
		}
		var msg clientMessage
		if err := msgpack.Unmarshal(data, &msg); err != nil {
			s.log.Debug("bad client message", zap.Error(err))
			continue
		}
		switch {
		case msg.Input != nil:
			s.sess.SetInput(*msg.Input)
		case msg.Upgrade != "":
			if err := s.sess.ChooseUpgrade(msg.Upgrade); err != nil {
				s.log.Debug("client upgrade", zap.String("upgrade", msg.Upgrade), zap.Error(err))
			}
		case msg.Pause != nil:
			s.sess.SetPaused(*msg.Pause)
		}
	}
}

func (s *streamServer) writePump(c *client) {
	for b := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
		if err := c.conn.WriteMessage(websocket.BinaryMessage, b); err != nil {
			s.log.Debug("client write", zap.Error(err))
			c.conn.Close()
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.conn.Close()
}

// drop detaches c once; closing send ends its write pump.
func (s *streamServer) drop(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; !ok {
		return
	}
	delete(s.clients, c)
	close(c.send)
	s.log.Info("client detached", zap.Int("clients", len(s.clients)))
}

func (s *streamServer) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		delete(s.clients, c)
		close(c.send)
	}
}
