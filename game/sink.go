package game

import (
	"snake-arena/game/types"
)

// Renderer is the display the World draws each frame into. Calls arrive
// with the World lock held, so implementations must not call back into the
// World.
type Renderer interface {
	// Container is the current drawable area, header row included.
	Container() types.Grid
	Clear()
	Draw(pos types.Position, color types.Color)
	// Render presents the frame built since Clear.
	Render()
}

// ScoreBoard receives per-snake score updates: one when a snake joins and
// one each time it eats. The same re-entrancy rule as Renderer applies.
type ScoreBoard interface {
	ResetScore()
	UpdateScore(owner types.ClientID, score int)
}

type multiRenderer []Renderer

// MultiRenderer fans frames out to every renderer. The container size is
// taken from the first one.
func MultiRenderer(renderers ...Renderer) Renderer {
	return multiRenderer(renderers)
}

func (m multiRenderer) Container() types.Grid {
	if len(m) == 0 {
		return types.Grid{}
	}
	return m[0].Container()
}

func (m multiRenderer) Clear() {
	for _, r := range m {
		r.Clear()
	}
}

func (m multiRenderer) Draw(pos types.Position, color types.Color) {
	for _, r := range m {
		r.Draw(pos, color)
	}
}

func (m multiRenderer) Render() {
	for _, r := range m {
		r.Render()
	}
}

type multiScoreBoard []ScoreBoard

// MultiScoreBoard fans score updates out to every board.
func MultiScoreBoard(boards ...ScoreBoard) ScoreBoard {
	return multiScoreBoard(boards)
}

func (m multiScoreBoard) ResetScore() {
	for _, b := range m {
		b.ResetScore()
	}
}

func (m multiScoreBoard) UpdateScore(owner types.ClientID, score int) {
	for _, b := range m {
		b.UpdateScore(owner, score)
	}
}

// Headless is a fixed-size Renderer that draws nothing, for servers
// without a local display.
type Headless struct {
	Grid types.Grid
}

func (h Headless) Container() types.Grid { return h.Grid }
func (h Headless) Clear() {}
func (h Headless) Draw(types.Position, types.Color) {}
func (h Headless) Render() {}
func (h Headless) ResetScore() {}
func (h Headless) UpdateScore(types.ClientID, int) {}
