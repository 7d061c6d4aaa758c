package manager

import (
	"errors"

	"golang.org/x/exp/rand"

	"snake-arena/game/entity"
	"snake-arena/game/types"
)

// ErrNoFreeCell means no free playfield cell was found within the attempt
// budget. Callers skip spawning for this tick.
var ErrNoFreeCell = errors.New("no free cell for food")

// FoodManager owns the live food items and the spawn policy.
//
// Known limitations, kept on purpose: a new item may land on a cell that
// already holds food, and surplus food is never despawned when players leave.
// Food left outside a shrunken container is dropped, not kept as surplus.
type FoodManager struct {
	foodList     []entity.Food
	collisionMgr *CollisionManager
	rng          *rand.Rand
	palette      []types.Color
	maxAttempts  int
}

func NewFoodManager(collisionMgr *CollisionManager, rng *rand.Rand, palette []types.Color, maxAttempts int) *FoodManager {
	if maxAttempts < 1 {
		maxAttempts = types.DefaultMaxSpawnAttempts
	}
	if len(palette) == 0 {
		palette = types.DefaultFoodPalette
	}
	return &FoodManager{
		foodList:     make([]entity.Food, 0),
		collisionMgr: collisionMgr,
		rng:          rng,
		palette:      palette,
		maxAttempts:  maxAttempts,
	}
}

// Target is the desired food count for the given number of live snakes:
// one item per two snakes, rounded up.
func Target(liveSnakes int) int {
	return (liveSnakes + 1) / 2
}

// Update drops food the grid no longer contains, then spawns exactly the
// deficit between Target and the live food count. On starvation it stops
// early and returns ErrNoFreeCell along with the number of items it did place.
func (fm *FoodManager) Update(grid types.Grid, snakes []*entity.Snake) (int, error) {
	fm.Prune(grid)
	deficit := Target(len(snakes)) - len(fm.foodList)
	spawned := 0
	for ; spawned < deficit; spawned++ {
		pos, err := fm.GenerateFood(grid, snakes)
		if err != nil {
			return spawned, err
		}
		fm.AddFood(entity.NewFood(pos, fm.palette[fm.rng.Intn(len(fm.palette))]))
	}
	return spawned, nil
}

// GenerateFood picks a random playfield cell not covered by any snake
// segment, giving up after maxAttempts draws.
func (fm *FoodManager) GenerateFood(grid types.Grid, snakes []*entity.Snake) (types.Position, error) {
	rows := grid.Height - types.HeaderRows
	if grid.Width <= 0 || rows <= 0 {
		return types.Position{}, ErrNoFreeCell
	}

	for attempt := 0; attempt < fm.maxAttempts; attempt++ {
		food := types.Position{
			X: fm.rng.Intn(grid.Width),
			Y: types.HeaderRows + fm.rng.Intn(rows),
		}

		if fm.collisionMgr.ValidateSpawnPosition(food, grid, snakes) {
			return food, nil
		}
	}
	return types.Position{}, ErrNoFreeCell
}

// Prune removes every item outside grid's playfield and returns how many
// were dropped.
func (fm *FoodManager) Prune(grid types.Grid) int {
	kept := fm.foodList[:0]
	for _, f := range fm.foodList {
		if grid.Contains(f.Position) {
			kept = append(kept, f)
		}
	}
	dropped := len(fm.foodList) - len(kept)
	fm.foodList = kept
	return dropped
}

// Take removes one food item at pos and reports whether there was one.
func (fm *FoodManager) Take(pos types.Position) bool {
	for i, f := range fm.foodList {
		if f.Position == pos {
			fm.foodList = append(fm.foodList[:i], fm.foodList[i+1:]...)
			return true
		}
	}
	return false
}

// GetFoodList returns a copy of the live food, oldest first.
func (fm *FoodManager) GetFoodList() []entity.Food {
	out := make([]entity.Food, len(fm.foodList))
	copy(out, fm.foodList)
	return out
}

func (fm *FoodManager) AddFood(food entity.Food) {
	fm.foodList = append(fm.foodList, food)
}

func (fm *FoodManager) Len() int {
	return len(fm.foodList)
}

func (fm *FoodManager) Clear() {
	fm.foodList = fm.foodList[:0]
}
