package network

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"snake-arena/game/types"
)

// Handler receives the player events of every session. *game.World
// satisfies it.
type Handler interface {
	Join(client types.ClientID) bool
	Leave(client types.ClientID) bool
	ChangeDirection(client types.ClientID, key string) bool
}

// Server accepts websocket players on /ws.
type Server struct {
	log      zerolog.Logger
	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[types.ClientID]*Session
	http     *http.Server
	closed   bool
}

func NewServer(logger zerolog.Logger) *Server {
	return &Server{
		log: logger.With().Str("component", "network").Logger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		sessions: make(map[types.ClientID]*Session),
	}
}

// Handler returns the HTTP routes of the server, delivering player events
// to h.
func (s *Server) Handler(h Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		s.serveWebSocket(h, w, r)
	})
	return mux
}

// ListenAndServe serves until Shutdown. It returns nil after a clean shutdown.
func (s *Server) ListenAndServe(addr string, h Handler) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.http = &http.Server{Addr: addr, Handler: s.Handler(h)}
	srv := s.http
	s.mu.Unlock()

	s.log.Info().Str("addr", addr).Msg("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) serveWebSocket(h Handler, w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	session := newSession(types.NewClientID(), conn, s.log)

	welcome, err := Encode(Message{Type: TypeWelcome, ID: string(session.ID)})
	if err != nil {
		s.log.Error().Err(err).Msg("welcome")
		conn.Close()
		return
	}
	session.Send(welcome)

	if !s.register(session) {
		session.Close()
		return
	}
	h.Join(session.ID)
	s.log.Info().Str("client", session.ID.Short()).Str("remote", r.RemoteAddr).Msg("session connected")

	go session.writePump()
	go session.readPump(h, s.unregister)
}

func (s *Server) register(session *Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.sessions[session.ID] = session
	return true
}

func (s *Server) unregister(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions[session.ID] == session {
		delete(s.sessions, session.ID)
	}
}

// Broadcast queues data on every session. Sessions that cannot keep up miss
// the message.
func (s *Server) Broadcast(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, session := range s.sessions {
		if err := session.Send(data); err != nil {
			s.log.Debug().Err(err).Msg("message dropped")
		}
	}
}

// Sessions is the number of connected clients.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Shutdown stops accepting connections and closes every session.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	srv := s.http
	sessions := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	s.mu.Unlock()

	var merr *multierror.Error
	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	for _, session := range sessions {
		if err := session.Close(); err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	return merr.ErrorOrNil()
}
