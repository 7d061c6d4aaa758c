package manager

import (
	"snake-arena/game/entity"
	"snake-arena/game/types"
)

// CollisionType represents the type of collision
type CollisionType int

const (
	NoCollision CollisionType = iota
	WallCollision
	SelfCollision
	SnakeCollision
)

func (c CollisionType) String() string {
	switch c {
	case WallCollision:
		return "wall"
	case SelfCollision:
		return "self"
	case SnakeCollision:
		return "snake"
	default:
		return "none"
	}
}

// Collision is one fatal hit found by a sweep.
type Collision struct {
	Snake *entity.Snake
	Type  CollisionType
	Other *entity.Snake // nil for wall hits
}

type CollisionManager struct {
	snakeCollisions bool
}

// NewCollisionManager builds a manager; snakeCollisions toggles snake-vs-snake
// (and self) checks. Walls are always fatal.
func NewCollisionManager(snakeCollisions bool) *CollisionManager {
	return &CollisionManager{
		snakeCollisions: snakeCollisions,
	}
}

// isWallCollision checks if a position collides with walls
func (cm *CollisionManager) isWallCollision(pos types.Position, grid types.Grid) bool {
	return !grid.Contains(pos)
}

// Sweep walks snakes in order and returns every fatal collision, in the order
// found. Each snake produces at most one entry: the wall check runs first, then
// every other snake still alive in this sweep (itself included). A snake found
// dead earlier in the sweep is no longer an obstacle for later ones.
func (cm *CollisionManager) Sweep(grid types.Grid, snakes []*entity.Snake) []Collision {
	var hits []Collision
	dead := make(map[*entity.Snake]bool)

	for _, snake := range snakes {
		if snake.Hit(grid) {
			dead[snake] = true
			hits = append(hits, Collision{Snake: snake, Type: WallCollision})
			continue
		}
		if !cm.snakeCollisions {
			continue
		}

		for _, other := range snakes {
			if dead[other] {
				continue
			}
			if !snake.HitSnake(other) {
				continue
			}
			c := Collision{Snake: snake, Type: SnakeCollision, Other: other}
			if other == snake {
				c.Type = SelfCollision
			}
			dead[snake] = true
			hits = append(hits, c)
			break
		}
	}

	return hits
}

// ValidateSpawnPosition checks that pos is on the playfield and clear of
// every segment of every snake.
func (cm *CollisionManager) ValidateSpawnPosition(pos types.Position, grid types.Grid, snakes []*entity.Snake) bool {
	if cm.isWallCollision(pos, grid) {
		return false
	}

	for _, snake := range snakes {
		if snake.IsAt(pos) {
			return false
		}
	}

	return true
}
