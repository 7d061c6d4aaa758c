package network

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Message types. Clients send TypeDirection and TypeJoin; everything else
// flows from the server.
const (
	TypeWelcome   = "welcome"
	TypeDirection = "dir"
	TypeJoin      = "join"
	TypeFrame     = "frame"
	TypeScore     = "score"
)

// Message is the msgpack envelope of every websocket message.
type Message struct {
	Type  string `msgpack:"t"`
	ID    string `msgpack:"id,omitempty"`
	Key   string `msgpack:"k,omitempty"`
	Frame *Frame `msgpack:"f,omitempty"`
	Score int    `msgpack:"s,omitempty"`
}

// Frame is one rendered tick: the container size and every drawn cell.
type Frame struct {
	Width  int    `msgpack:"w"`
	Height int    `msgpack:"h"`
	Cells  []Cell `msgpack:"c"`
}

type Cell struct {
	X int   `msgpack:"x"`
	Y int   `msgpack:"y"`
	R uint8 `msgpack:"r"`
	G uint8 `msgpack:"g"`
	B uint8 `msgpack:"b"`
}

func Encode(m Message) ([]byte, error) {
	data, err := msgpack.Marshal(&m)
	if err != nil {
		return nil, fmt.Errorf("encode %s message: %w", m.Type, err)
	}
	return data, nil
}

func Decode(data []byte) (Message, error) {
	var m Message
	if err := msgpack.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	return m, nil
}
