package entity

import (
	"snake-arena/game/types"
)

// Snake is one player's body. Segments run head (index 0) to tail.
//
// A Snake has no lock of its own: it is owned by the World, which serializes
// every call under its mutex.
type Snake struct {
	Owner types.ClientID
	Color types.Color

	segments  []types.Position
	direction types.Direction
	pending   types.Direction
	score     int
	removed   bool
	onRemove  func(s *Snake, reason string)
}

// NewSnake lays out a snake of the given length with its head at head,
// the body trailing away from dir.
func NewSnake(owner types.ClientID, head types.Position, dir types.Direction, length int, color types.Color) *Snake {
	s := &Snake{
		Owner: owner,
		Color: color,
	}
	s.Place(head, dir, length)
	return s
}

// Place resets the body, heading and score without touching owner, color or
// the teardown hook.
func (s *Snake) Place(head types.Position, dir types.Direction, length int) {
	if length < 1 {
		length = 1
	}
	back := dir.Opposite().Delta()
	s.segments = make([]types.Position, 0, length+4)
	p := head
	for i := 0; i < length; i++ {
		s.segments = append(s.segments, p)
		p = p.Add(back)
	}
	s.direction = dir
	s.pending = dir
	s.score = 0
}

// OnRemove registers the teardown hook fired by Bye.
func (s *Snake) OnRemove(fn func(s *Snake, reason string)) {
	s.onRemove = fn
}

func (s *Snake) GetHead() types.Position {
	return s.segments[0]
}

// Segments returns a copy of the body, head first.
func (s *Snake) Segments() []types.Position {
	out := make([]types.Position, len(s.segments))
	copy(out, s.segments)
	return out
}

func (s *Snake) Len() int {
	return len(s.segments)
}

func (s *Snake) Direction() types.Direction {
	return s.direction
}

func (s *Snake) PendingDirection() types.Direction {
	return s.pending
}

func (s *Snake) Score() int {
	return s.score
}

func (s *Snake) Removed() bool {
	return s.removed
}

// ChangeDirection buffers dir for the next move. The exact reverse of the
// committed heading is rejected; anything else, the current heading
// included, replaces the pending one.
func (s *Snake) ChangeDirection(dir types.Direction) bool {
	if s.removed || dir == s.direction.Opposite() {
		return false
	}
	s.pending = dir
	return true
}

// NextHead is where the head lands on the next Move.
func (s *Snake) NextHead() types.Position {
	return s.segments[0].Add(s.pending.Delta())
}

// Move commits the pending heading and pushes the new head. The tail is kept
// when grow is set, so the body gains one segment.
func (s *Snake) Move(grow bool) types.Position {
	s.direction = s.pending
	head := s.segments[0].Add(s.direction.Delta())

	s.segments = append(s.segments, types.Position{})
	copy(s.segments[1:], s.segments[:len(s.segments)-1])
	s.segments[0] = head

	if !grow {
		s.segments = s.segments[:len(s.segments)-1]
	}
	return head
}

// IsAt reports whether any segment occupies p.
func (s *Snake) IsAt(p types.Position) bool {
	for _, seg := range s.segments {
		if seg == p {
			return true
		}
	}
	return false
}

// Hit reports whether the head has left the playfield.
func (s *Snake) Hit(grid types.Grid) bool {
	return !grid.Contains(s.segments[0])
}

// HitSnake reports whether the head lies on any segment of other. With
// other == s the head's own cell is skipped, so only a head re-entering the
// body counts.
func (s *Snake) HitSnake(other *Snake) bool {
	head := s.segments[0]
	start := 0
	if other == s {
		start = 1
	}
	for _, seg := range other.segments[start:] {
		if seg == head {
			return true
		}
	}
	return false
}

// Scored credits one food pickup worth value points.
func (s *Snake) Scored(value int) {
	s.score += value
}

// Bye marks the snake removed and fires the teardown hook with reason. Only
// the first call has any effect; it reports whether this call did the teardown.
func (s *Snake) Bye(reason string) bool {
	if s.removed {
		return false
	}
	s.removed = true
	if s.onRemove != nil {
		s.onRemove(s, reason)
	}
	return true
}
