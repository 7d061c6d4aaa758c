package ui

import (
	"fmt"

	"snake-arena/game/types"
)

// scoreLine is the header state both displays share. Score follows the
// local player's snake only; Best is the highest score any snake reached
// since the last reset.
type scoreLine struct {
	local   types.ClientID
	score   int
	best    int
	players int
}

func (l *scoreLine) update(owner types.ClientID, score int) {
	if owner == l.local {
		l.score = score
	}
	if score > l.best {
		l.best = score
	}
}

func (l *scoreLine) reset() {
	l.score = 0
	l.best = 0
}

func (l *scoreLine) String() string {
	return fmt.Sprintf("Score: %d   Best: %d   Players: %d   [enter] start  [q] quit", l.score, l.best, l.players)
}
