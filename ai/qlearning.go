package ai

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"snake-arena/game/types"
)

// Rewards for one step.
const (
	RewardFood    = 1.0
	RewardDeath   = -1.0
	RewardCloser  = 0.5
	RewardFurther = -0.3
)

// State is what a bot sees from its head: the direction of the nearest food
// and whether each neighbouring cell is fatal.
type State struct {
	FoodDir      [2]int  // sign of dx, dy to the nearest food
	FoodDistance int     // Manhattan distance to the nearest food
	DangerDirs   [4]bool // indexed by types.Direction
}

func (s State) key() string {
	return fmt.Sprintf("%d,%d|%t,%t,%t,%t", s.FoodDir[0], s.FoodDir[1],
		s.DangerDirs[types.Up], s.DangerDirs[types.Right], s.DangerDirs[types.Down], s.DangerDirs[types.Left])
}

// QTable maps a state key to the value of each action.
type QTable map[string][4]float64

// QLearning is a tabular learner. It is not safe for concurrent use.
type QLearning struct {
	QTable       QTable
	LearningRate float64
	Discount     float64
	Epsilon      float64
	TotalReward  float64
	GamesPlayed  int

	rng *rand.Rand
}

func NewQLearning(rng *rand.Rand) *QLearning {
	return &QLearning{
		QTable:       make(QTable),
		LearningRate: 0.1,
		Discount:     0.9,
		Epsilon:      0.1,
		rng:          rng,
	}
}

// GetAction picks an action epsilon-greedily.
func (q *QLearning) GetAction(state State) types.Direction {
	if q.rng.Float64() < q.Epsilon {
		return types.Directions[q.rng.Intn(len(types.Directions))]
	}
	return q.bestAction(state)
}

func (q *QLearning) bestAction(state State) types.Direction {
	values := q.QTable[state.key()]
	best := types.Up
	bestValue := math.Inf(-1)
	for _, action := range types.Directions {
		if values[action] > bestValue {
			bestValue = values[action]
			best = action
		}
	}
	return best
}

// Update applies one Q-learning step. A terminal step has no future value.
func (q *QLearning) Update(state State, action types.Direction, reward float64, next State, terminal bool) {
	future := 0.0
	if !terminal {
		nextValues := q.QTable[next.key()]
		future = math.Inf(-1)
		for _, v := range nextValues {
			future = math.Max(future, v)
		}
	}

	key := state.key()
	values := q.QTable[key]
	values[action] += q.LearningRate * (reward + q.Discount*future - values[action])
	q.QTable[key] = values

	q.TotalReward += reward
}

// Reward scores the move from prev to next. ate and died take precedence
// over the distance shaping.
func Reward(prev, next State, ate, died bool) float64 {
	switch {
	case died:
		return RewardDeath
	case ate:
		return RewardFood
	case next.FoodDistance < prev.FoodDistance:
		return RewardCloser
	case next.FoodDistance > prev.FoodDistance:
		return RewardFurther
	}
	return 0
}
