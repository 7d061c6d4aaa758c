package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// HeaderRows is the number of rows at the top of the container reserved for
// the score line. The playfield starts below it.
const HeaderRows = 1

// Game constants
const (
	DefaultTickInterval     = 100 * time.Millisecond
	DefaultInitialLength    = 3
	DefaultFoodValue        = 1
	DefaultMaxSpawnAttempts = 256
)

// ClientID identifies the session that owns a snake.
type ClientID string

// NewClientID returns a fresh random identity.
func NewClientID() ClientID {
	return ClientID(uuid.NewString())
}

// Short returns the first eight characters, enough for logs and labels.
func (id ClientID) Short() string {
	if len(id) > 8 {
		return string(id[:8])
	}
	return string(id)
}

// Position is a cell on the grid.
type Position struct {
	X, Y int
}

// Add returns p moved by d.
func (p Position) Add(d Position) Position {
	return Position{X: p.X + d.X, Y: p.Y + d.Y}
}

// Grid represents the game container dimensions
type Grid struct {
	Width  int
	Height int
}

// Contains reports whether p lies on the playfield: x in [0, Width),
// y in [HeaderRows, Height).
func (g Grid) Contains(p Position) bool {
	return p.X >= 0 && p.X < g.Width && p.Y >= HeaderRows && p.Y < g.Height
}

// Cells is the number of playfield cells.
func (g Grid) Cells() int {
	rows := g.Height - HeaderRows
	if rows <= 0 || g.Width <= 0 {
		return 0
	}
	return rows * g.Width
}

// Direction is a cardinal heading.
type Direction int

const (
	Up Direction = iota
	Right
	Down
	Left
)

// Directions lists every heading in clockwise order.
var Directions = [4]Direction{Up, Right, Down, Left}

// Opposite returns the reverse heading.
func (d Direction) Opposite() Direction {
	return (d + 2) % 4
}

// Delta converts a Direction into a one-cell movement vector.
// Y grows downwards, matching screen coordinates.
func (d Direction) Delta() Position {
	switch d {
	case Up:
		return Position{X: 0, Y: -1}
	case Right:
		return Position{X: 1, Y: 0}
	case Down:
		return Position{X: 0, Y: 1}
	case Left:
		return Position{X: -1, Y: 0}
	default:
		return Position{}
	}
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	case Left:
		return "left"
	default:
		return "unknown"
	}
}

// ParseDirection maps an input key name to a heading. Arrow names, wasd and
// hjkl are recognized, case-insensitively.
func ParseDirection(key string) (Direction, bool) {
	switch strings.ToLower(key) {
	case "up", "w", "k":
		return Up, true
	case "right", "d", "l":
		return Right, true
	case "down", "s", "j":
		return Down, true
	case "left", "a", "h":
		return Left, true
	}
	return 0, false
}

// Color is an opaque RGB triple; sinks convert it to their own color type.
type Color struct {
	R, G, B uint8
}

// HeadColor marks the head segment of every snake.
var HeadColor = Color{R: 255, G: 255, B: 255}

// DefaultSnakePalette is the set snake colors are drawn from.
var DefaultSnakePalette = []Color{
	{R: 0, G: 200, B: 0},
	{R: 0, G: 120, B: 255},
	{R: 255, G: 200, B: 0},
	{R: 200, G: 0, B: 200},
	{R: 0, G: 200, B: 200},
	{R: 255, G: 120, B: 0},
}

// DefaultFoodPalette is the set food colors are drawn from.
var DefaultFoodPalette = []Color{
	{R: 220, G: 30, B: 30},
	{R: 255, G: 90, B: 160},
	{R: 255, G: 255, B: 90},
}
