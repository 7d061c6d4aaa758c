package game

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"

	"snake-arena/game/entity"
	"snake-arena/game/manager"
	"snake-arena/game/types"
)

// Teardown reasons besides the collision names ("wall", "self", "snake").
const (
	ReasonLeft    = "left"
	ReasonCleared = "cleared"
)

// Config holds the constants a World is built with. They are copied at
// construction and never change afterwards.
type Config struct {
	InitialLength    int
	FoodValue        int
	SnakePalette     []types.Color
	FoodPalette      []types.Color
	SnakeCollisions  bool
	MaxSpawnAttempts int
}

// DefaultConfig returns the standard game rules
func DefaultConfig() Config {
	return Config{
		InitialLength:    types.DefaultInitialLength,
		FoodValue:        types.DefaultFoodValue,
		SnakePalette:     types.DefaultSnakePalette,
		FoodPalette:      types.DefaultFoodPalette,
		SnakeCollisions:  true,
		MaxSpawnAttempts: types.DefaultMaxSpawnAttempts,
	}
}

// RemoveFunc is told about every snake that leaves the live set.
type RemoveFunc func(owner types.ClientID, reason string, score int)

// World owns the live snakes and food and advances them one tick at a time.
// Every exported method takes the World lock, so input events and ticks are
// applied atomically with respect to each other.
type World struct {
	mu sync.Mutex

	cfg      Config
	renderer Renderer
	rng      *rand.Rand
	log      zerolog.Logger
	onRemove RemoveFunc
	ticks    uint64

	collisionMgr *manager.CollisionManager
	foodMgr      *manager.FoodManager
	popMgr       *manager.PopulationManager
	stateMgr     *manager.StateManager
}

// NewWorld builds an empty World. scores may be nil; a nil rng is seeded
// from the clock.
func NewWorld(cfg Config, renderer Renderer, scores ScoreBoard, rng *rand.Rand, logger zerolog.Logger) *World {
	if cfg.InitialLength < 1 {
		cfg.InitialLength = types.DefaultInitialLength
	}
	if len(cfg.SnakePalette) == 0 {
		cfg.SnakePalette = types.DefaultSnakePalette
	}
	if cfg.MaxSpawnAttempts < 1 {
		cfg.MaxSpawnAttempts = types.DefaultMaxSpawnAttempts
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}
	if scores == nil {
		scores = MultiScoreBoard()
	}

	collisionMgr := manager.NewCollisionManager(cfg.SnakeCollisions)
	return &World{
		cfg:          cfg,
		renderer:     renderer,
		rng:          rng,
		log:          logger.With().Str("component", "world").Logger(),
		collisionMgr: collisionMgr,
		foodMgr:      manager.NewFoodManager(collisionMgr, rng, cfg.FoodPalette, cfg.MaxSpawnAttempts),
		popMgr:       manager.NewPopulationManager(),
		stateMgr:     manager.NewStateManager(scores),
	}
}

// OnRemove registers the collaborator notified when a snake is torn down.
// It runs with the World lock held and must not call back into the World.
func (w *World) OnRemove(fn RemoveFunc) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onRemove = fn
}

// Join gives client a new snake. A client that already owns a live snake is
// ignored and Join reports false.
func (w *World) Join(client types.ClientID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.popMgr.Get(client); exists {
		w.log.Debug().Str("client", client.Short()).Msg("duplicate join ignored")
		return false
	}

	grid := w.renderer.Container()
	color := w.cfg.SnakePalette[w.rng.Intn(len(w.cfg.SnakePalette))]
	snake := entity.NewSnake(client, w.startPosition(grid, nil), types.Right, w.cfg.InitialLength, color)
	snake.OnRemove(w.snakeRemoved)
	w.popMgr.AddSnake(snake)
	w.stateMgr.Joined(snake)

	w.log.Info().Str("client", client.Short()).Int("players", w.popMgr.Len()).Msg("player joined")
	return true
}

// Leave removes client's snake, if it has one.
func (w *World) Leave(client types.ClientID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	snake, ok := w.popMgr.RemoveSnake(client)
	if !ok {
		return false
	}
	snake.Bye(ReasonLeft)
	return true
}

// ChangeDirection forwards key to client's snake. Unknown clients, unknown
// keys and reversals are ignored.
func (w *World) ChangeDirection(client types.ClientID, key string) bool {
	dir, ok := types.ParseDirection(key)
	if !ok {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	snake, ok := w.popMgr.Get(client)
	if !ok {
		return false
	}
	return snake.ChangeDirection(dir)
}

// Tick advances the world one step: every snake moves (eating any food its
// new head lands on), fatal collisions are swept, food is topped up, and the
// frame is rendered.
func (w *World) Tick() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.ticks++
	grid := w.renderer.Container()

	snakes := w.popMgr.GetSnakes()
	for _, snake := range snakes {
		ate := w.foodMgr.Take(snake.NextHead())
		snake.Move(ate)
		if ate {
			snake.Scored(w.cfg.FoodValue)
			w.stateMgr.Scored(snake)
		}
	}

	for _, hit := range w.collisionMgr.Sweep(grid, snakes) {
		w.popMgr.RemoveSnake(hit.Snake.Owner)
		hit.Snake.Bye(hit.Type.String())
	}

	if _, err := w.foodMgr.Update(grid, w.popMgr.GetSnakes()); err != nil {
		w.log.Warn().Err(err).Uint64("tick", w.ticks).Msg("food spawn skipped")
	}

	w.render()
}

func (w *World) render() {
	w.renderer.Clear()
	for _, food := range w.foodMgr.GetFoodList() {
		w.renderer.Draw(food.Position, food.Color)
	}
	for _, snake := range w.popMgr.GetSnakes() {
		for i, seg := range snake.Segments() {
			color := snake.Color
			if i == 0 {
				color = types.HeadColor
			}
			w.renderer.Draw(seg, color)
		}
	}
	w.renderer.Render()
}

// Reset starts a fresh round: food is cleared, every live snake is placed
// again at its starting length with a zero score, and the score display is
// reset.
func (w *World) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.foodMgr.Clear()
	w.ticks = 0
	grid := w.renderer.Container()

	placed := make([]*entity.Snake, 0, w.popMgr.Len())
	for _, snake := range w.popMgr.GetSnakes() {
		snake.Place(w.startPosition(grid, placed), types.Right, w.cfg.InitialLength)
		placed = append(placed, snake)
	}

	w.stateMgr.Reset()
	w.render()
}

// Clear tears down every snake and drops all food.
func (w *World) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, snake := range w.popMgr.Clear() {
		snake.Bye(ReasonCleared)
	}
	w.foodMgr.Clear()
}

// Len is the number of live snakes.
func (w *World) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.popMgr.Len()
}

// snakeRemoved is the teardown hook of every snake created by Join.
func (w *World) snakeRemoved(snake *entity.Snake, reason string) {
	w.log.Info().
		Str("client", snake.Owner.Short()).
		Str("reason", reason).
		Int("score", snake.Score()).
		Int("players", w.popMgr.Len()).
		Msg("snake removed")
	if w.onRemove != nil {
		w.onRemove(snake.Owner, reason, snake.Score())
	}
}

// startPosition picks a head cell for a snake of the configured length
// heading right, with every body cell clear of the snakes already present.
// Joins check against the whole live set; Reset passes the snakes placed so far.
func (w *World) startPosition(grid types.Grid, placed []*entity.Snake) types.Position {
	length := w.cfg.InitialLength
	rows := grid.Height - types.HeaderRows
	fallback := types.Position{X: length - 1, Y: types.HeaderRows}
	if rows <= 0 || grid.Width < length {
		return fallback
	}

	others := placed
	if others == nil {
		others = w.popMgr.GetSnakes()
	}

	for attempt := 0; attempt < w.cfg.MaxSpawnAttempts; attempt++ {
		head := types.Position{
			X: length - 1 + w.rng.Intn(grid.Width-length+1),
			Y: types.HeaderRows + w.rng.Intn(rows),
		}
		if w.bodyClear(head, length, grid, others) {
			return head
		}
	}
	return fallback
}

func (w *World) bodyClear(head types.Position, length int, grid types.Grid, others []*entity.Snake) bool {
	back := types.Left.Delta()
	p := head
	for i := 0; i < length; i++ {
		if !w.collisionMgr.ValidateSpawnPosition(p, grid, others) {
			return false
		}
		p = p.Add(back)
	}
	return true
}
