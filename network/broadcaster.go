package network

import (
	"sync"

	"github.com/rs/zerolog"

	"snake-arena/game/types"
)

// Target is where encoded messages are fanned out; *Server is one.
type Target interface {
	Broadcast(data []byte)
}

// Broadcaster is a render and score sink that streams every frame to the
// connected clients. Frames are accumulated between Clear and Render.
type Broadcaster struct {
	target Target
	bounds func() types.Grid
	log    zerolog.Logger

	mu    sync.Mutex
	cells []Cell
}

// NewBroadcaster sends to target. bounds reports the grid announced with each
// frame, normally the primary display's Container.
func NewBroadcaster(target Target, bounds func() types.Grid, logger zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		target: target,
		bounds: bounds,
		log:    logger.With().Str("component", "broadcaster").Logger(),
	}
}

func (b *Broadcaster) Container() types.Grid {
	return b.bounds()
}

func (b *Broadcaster) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cells = nil
}

func (b *Broadcaster) Draw(pos types.Position, color types.Color) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cells = append(b.cells, Cell{X: pos.X, Y: pos.Y, R: color.R, G: color.G, B: color.B})
}

func (b *Broadcaster) Render() {
	b.mu.Lock()
	cells := b.cells
	b.cells = nil
	b.mu.Unlock()

	grid := b.bounds()
	b.send(Message{Type: TypeFrame, Frame: &Frame{Width: grid.Width, Height: grid.Height, Cells: cells}})
}

func (b *Broadcaster) ResetScore() {
	b.send(Message{Type: TypeScore})
}

// UpdateScore tells every client the score of owner's snake; a client
// recognizes its own by the id from its welcome message.
func (b *Broadcaster) UpdateScore(owner types.ClientID, score int) {
	b.send(Message{Type: TypeScore, ID: string(owner), Score: score})
}

func (b *Broadcaster) send(m Message) {
	data, err := Encode(m)
	if err != nil {
		b.log.Error().Err(err).Msg("encode failed")
		return
	}
	b.target.Broadcast(data)
}
