package manager

import (
	"snake-arena/game/entity"
	"snake-arena/game/types"
)

// PopulationManager keeps the live snakes keyed by owner. The map enforces
// one snake per client; order keeps join order for sweeps and drawing.
type PopulationManager struct {
	byOwner map[types.ClientID]*entity.Snake
	order   []*entity.Snake
}

func NewPopulationManager() *PopulationManager {
	return &PopulationManager{
		byOwner: make(map[types.ClientID]*entity.Snake),
		order:   make([]*entity.Snake, 0),
	}
}

// AddSnake registers snake unless its owner already has one.
func (pm *PopulationManager) AddSnake(snake *entity.Snake) bool {
	if _, exists := pm.byOwner[snake.Owner]; exists {
		return false
	}
	pm.byOwner[snake.Owner] = snake
	pm.order = append(pm.order, snake)
	return true
}

func (pm *PopulationManager) Get(owner types.ClientID) (*entity.Snake, bool) {
	snake, ok := pm.byOwner[owner]
	return snake, ok
}

// RemoveSnake drops the snake owned by owner. The order slice is rebuilt
// rather than spliced so snapshots handed out earlier stay intact.
func (pm *PopulationManager) RemoveSnake(owner types.ClientID) (*entity.Snake, bool) {
	snake, ok := pm.byOwner[owner]
	if !ok {
		return nil, false
	}
	delete(pm.byOwner, owner)

	kept := make([]*entity.Snake, 0, len(pm.order))
	for _, s := range pm.order {
		if s != snake {
			kept = append(kept, s)
		}
	}
	pm.order = kept
	return snake, true
}

// GetSnakes returns the live snakes in join order.
func (pm *PopulationManager) GetSnakes() []*entity.Snake {
	return pm.order
}

func (pm *PopulationManager) Len() int {
	return len(pm.order)
}

// Clear removes every snake and returns them in join order.
func (pm *PopulationManager) Clear() []*entity.Snake {
	all := pm.order
	pm.byOwner = make(map[types.ClientID]*entity.Snake)
	pm.order = make([]*entity.Snake, 0)
	return all
}
