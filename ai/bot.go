package ai

import (
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"

	"snake-arena/game"
	"snake-arena/game/types"
)

// World is the part of the game a bot pool plays against.
type World interface {
	Join(client types.ClientID) bool
	Leave(client types.ClientID) bool
	ChangeDirection(client types.ClientID, key string) bool
	Snapshot() game.Snapshot
}

type step struct {
	state  State
	action types.Direction
	score  int
}

// Bot is one computer player. It joins like any other client and steers
// only through direction changes.
type Bot struct {
	ID    types.ClientID
	Agent *QLearning

	last *step
}

// Pool drives a set of bots from loop observations.
type Pool struct {
	world World
	log   zerolog.Logger

	mu   sync.Mutex
	bots []*Bot
}

func NewPool(world World, n int, rng *rand.Rand, logger zerolog.Logger) *Pool {
	p := &Pool{
		world: world,
		log:   logger.With().Str("component", "bots").Logger(),
	}
	for i := 0; i < n; i++ {
		p.bots = append(p.bots, &Bot{
			ID:    types.NewClientID(),
			Agent: NewQLearning(rand.New(rand.NewSource(rng.Uint64()))),
		})
	}
	return p
}

// Bots returns the pool's client ids.
func (p *Pool) Bots() []types.ClientID {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]types.ClientID, len(p.bots))
	for i, b := range p.bots {
		ids[i] = b.ID
	}
	return ids
}

// JoinAll gives every bot a snake.
func (p *Pool) JoinAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, b := range p.bots {
		p.world.Join(b.ID)
	}
	p.log.Info().Int("bots", len(p.bots)).Msg("bots joined")
}

// LeaveAll removes every bot's snake.
func (p *Pool) LeaveAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, b := range p.bots {
		p.world.Leave(b.ID)
		b.last = nil
	}
}

// Observe learns from the last tick and submits each bot's next move. It is
// meant to run as a loop observer, outside the World lock.
func (p *Pool) Observe() {
	snap := p.world.Snapshot()

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, b := range p.bots {
		view, alive := snap.Find(b.ID)
		if !alive {
			if b.last != nil {
				b.Agent.Update(b.last.state, b.last.action, RewardDeath, State{}, true)
				b.Agent.GamesPlayed++
				b.last = nil
				p.log.Debug().Str("bot", b.ID.Short()).Int("games", b.Agent.GamesPlayed).Msg("bot died")
			}
			p.world.Join(b.ID)
			continue
		}

		state := observe(snap, view)
		if b.last != nil {
			ate := view.Score > b.last.score
			b.Agent.Update(b.last.state, b.last.action, Reward(b.last.state, state, ate, false), state, false)
		}

		action := b.Agent.GetAction(state)
		if action == view.Direction.Opposite() {
			action = view.Direction
		}
		p.world.ChangeDirection(b.ID, action.String())
		b.last = &step{state: state, action: action, score: view.Score}
	}
}

// observe builds the learner state for view's head.
func observe(snap game.Snapshot, view game.SnakeView) State {
	head := view.Head()

	var s State
	for _, dir := range types.Directions {
		next := head.Add(dir.Delta())
		s.DangerDirs[dir] = !snap.Grid.Contains(next) || snap.Occupied(next)
	}

	best := -1
	for _, food := range snap.Food {
		dx, dy := food.X-head.X, food.Y-head.Y
		dist := abs(dx) + abs(dy)
		if best < 0 || dist < best {
			best = dist
			s.FoodDir = [2]int{sign(dx), sign(dy)}
		}
	}
	if best > 0 {
		s.FoodDistance = best
	}
	return s
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
