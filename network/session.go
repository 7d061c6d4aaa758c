package network

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"snake-arena/game/types"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendQueueSize  = 64
)

// Session is one connected websocket client.
type Session struct {
	ID types.ClientID

	conn *websocket.Conn
	send chan []byte
	log  zerolog.Logger

	closeOnce sync.Once
	done      chan struct{}
	closeErr  error
}

func newSession(id types.ClientID, conn *websocket.Conn, logger zerolog.Logger) *Session {
	return &Session{
		ID:   id,
		conn: conn,
		send: make(chan []byte, sendQueueSize),
		log:  logger.With().Str("client", id.Short()).Logger(),
		done: make(chan struct{}),
	}
}

// Send queues data without blocking. A full queue drops the message.
func (s *Session) Send(data []byte) error {
	select {
	case <-s.done:
		return &SessionError{Client: s.ID, Err: ErrSessionClosed}
	default:
	}

	select {
	case s.send <- data:
		return nil
	default:
		return &SessionError{Client: s.ID, Err: ErrSendQueueFull}
	}
}

// Close stops the write pump and closes the connection. Only the first call
// has any effect; later calls return the first result.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		if err := s.conn.Close(); err != nil {
			s.closeErr = &SessionError{Client: s.ID, Err: err}
		}
	})
	return s.closeErr
}

// readPump forwards client input to handler until the connection drops.
func (s *Session) readPump(handler Handler, unregister func(*Session)) {
	defer func() {
		unregister(s)
		handler.Leave(s.ID)
		s.Close()
		s.log.Info().Msg("session disconnected")
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.log.Warn().Err(err).Msg("read failed")
			}
			return
		}

		msg, err := Decode(data)
		if err != nil {
			s.log.Debug().Err(err).Msg("bad message ignored")
			continue
		}

		switch msg.Type {
		case TypeDirection:
			handler.ChangeDirection(s.ID, msg.Key)
		case TypeJoin:
			// Rejoin after the session's snake died
			handler.Join(s.ID)
		default:
			s.log.Debug().Str("type", msg.Type).Msg("unknown message type")
		}
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.Close()
	}()

	for {
		select {
		case <-s.done:
			return
		case data := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				s.log.Debug().Err(err).Msg("write failed")
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
