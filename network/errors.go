package network

import (
	"errors"
	"fmt"

	"snake-arena/game/types"
)

var (
	ErrSessionClosed = errors.New("session closed")
	ErrSendQueueFull = errors.New("send queue full")
)

// SessionError ties an error to the client whose session produced it.
type SessionError struct {
	Client types.ClientID
	Err    error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("session %s: %v", e.Client.Short(), e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}
