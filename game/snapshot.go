package game

import (
	"snake-arena/game/manager"
	"snake-arena/game/types"
)

// SnakeView is a read-only copy of one snake.
type SnakeView struct {
	Owner     types.ClientID
	Segments  []types.Position
	Direction types.Direction
	Score     int
	Color     types.Color
}

func (v SnakeView) Head() types.Position {
	return v.Segments[0]
}

// Snapshot is a deep copy of the world taken between ticks.
type Snapshot struct {
	Tick      uint64
	Grid      types.Grid
	Snakes    []SnakeView
	Food      []types.Position
	HighScore int
	Leader    int
}

// Find returns the view of owner's snake.
func (s Snapshot) Find(owner types.ClientID) (SnakeView, bool) {
	for _, v := range s.Snakes {
		if v.Owner == owner {
			return v, true
		}
	}
	return SnakeView{}, false
}

// Occupied reports whether any snake segment covers p.
func (s Snapshot) Occupied(p types.Position) bool {
	for _, v := range s.Snakes {
		for _, seg := range v.Segments {
			if seg == p {
				return true
			}
		}
	}
	return false
}

// Snapshot copies the current state out from under the lock.
func (w *World) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	snakes := w.popMgr.GetSnakes()
	grid := w.renderer.Container()
	snap := Snapshot{
		Tick:      w.ticks,
		Grid:      grid,
		Snakes:    make([]SnakeView, 0, len(snakes)),
		HighScore: w.stateMgr.GetHighScore(),
		Leader:    manager.Leader(snakes),
	}
	for _, s := range snakes {
		snap.Snakes = append(snap.Snakes, SnakeView{
			Owner:     s.Owner,
			Segments:  s.Segments(),
			Direction: s.Direction(),
			Score:     s.Score(),
			Color:     s.Color,
		})
	}
	for _, f := range w.foodMgr.GetFoodList() {
		// Off-board food is pruned on the next tick
		if grid.Contains(f.Position) {
			snap.Food = append(snap.Food, f.Position)
		}
	}
	return snap
}
