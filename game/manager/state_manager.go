package manager

import (
	"snake-arena/game/entity"
	"snake-arena/game/types"
)

// ScoreSink receives score display updates. Every update names the snake
// owner the score belongs to.
type ScoreSink interface {
	ResetScore()
	UpdateScore(owner types.ClientID, score int)
}

// StateManager tracks derived score state. Per-snake scores are the only
// stored scores; the session high score only ever grows until Reset.
type StateManager struct {
	sink      ScoreSink
	highScore int
}

func NewStateManager(sink ScoreSink) *StateManager {
	return &StateManager{sink: sink}
}

// Scored pushes snake's new score to the sink.
func (sm *StateManager) Scored(snake *entity.Snake) {
	score := snake.Score()
	if score > sm.highScore {
		sm.highScore = score
	}
	if sm.sink != nil {
		sm.sink.UpdateScore(snake.Owner, score)
	}
}

// Joined announces a new snake's starting score.
func (sm *StateManager) Joined(snake *entity.Snake) {
	if sm.sink != nil {
		sm.sink.UpdateScore(snake.Owner, snake.Score())
	}
}

// Reset clears the session high score and the display.
func (sm *StateManager) Reset() {
	sm.highScore = 0
	if sm.sink != nil {
		sm.sink.ResetScore()
	}
}

func (sm *StateManager) GetHighScore() int {
	return sm.highScore
}

// Leader returns the best score among live snakes, 0 when none are alive.
func Leader(snakes []*entity.Snake) int {
	best := 0
	for _, s := range snakes {
		if s.Score() > best {
			best = s.Score()
		}
	}
	return best
}
