package ui

import (
	"context"
	"sync"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/rs/zerolog"

	"snake-arena/game/types"
)

const (
	DefaultCellSize = 15
	borderPadding   = 10 // padding around game area
)

type cell struct {
	pos   types.Position
	color types.Color
}

// Window is a raylib render sink. Draw calls arrive from the tick goroutine
// and go to a back buffer; Render publishes it and Run, on the main thread,
// paints the published frame every display frame.
type Window struct {
	cellSize int32
	log      zerolog.Logger

	mu     sync.Mutex
	grid   types.Grid
	back   []cell
	front  []cell
	header scoreLine
}

// NewWindow opens the window. It must be called from the main goroutine,
// as must Run and Close.
func NewWindow(width, height, cellSize int32, title string, logger zerolog.Logger) *Window {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	rl.InitWindow(width, height, title)
	rl.SetWindowState(rl.FlagWindowResizable)
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)

	w := newWindow(cellSize, logger)
	w.UpdateDimensions(int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight()))
	return w
}

func newWindow(cellSize int32, logger zerolog.Logger) *Window {
	return &Window{
		cellSize: cellSize,
		log:      logger.With().Str("component", "window").Logger(),
	}
}

// UpdateDimensions recomputes the grid for a screen of the given pixel size.
func (w *Window) UpdateDimensions(screenWidth, screenHeight int32) {
	grid := gridFor(screenWidth, screenHeight, w.cellSize)

	w.mu.Lock()
	defer w.mu.Unlock()
	if grid != w.grid {
		w.log.Debug().Int("width", grid.Width).Int("height", grid.Height).Msg("grid resized")
	}
	w.grid = grid
}

func gridFor(screenWidth, screenHeight, cellSize int32) types.Grid {
	availableWidth := screenWidth - borderPadding*2
	availableHeight := screenHeight - borderPadding*2
	if availableWidth < 0 || availableHeight < 0 {
		return types.Grid{}
	}
	return types.Grid{
		Width:  int(availableWidth / cellSize),
		Height: int(availableHeight / cellSize),
	}
}

func (w *Window) Container() types.Grid {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.grid
}

func (w *Window) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.back = w.back[:0]
}

func (w *Window) Draw(pos types.Position, color types.Color) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.back = append(w.back, cell{pos, color})
}

func (w *Window) Render() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.front = append(w.front[:0], w.back...)
}

func (w *Window) ResetScore() {
	w.mu.Lock()
	w.header.reset()
	w.mu.Unlock()
}

func (w *Window) UpdateScore(owner types.ClientID, score int) {
	w.mu.Lock()
	w.header.update(owner, score)
	w.mu.Unlock()
}

// SetLocal picks the snake whose score the header shows.
func (w *Window) SetLocal(id types.ClientID) {
	w.mu.Lock()
	w.header.local = id
	w.header.score = 0
	w.mu.Unlock()
}

func (w *Window) SetPlayers(n int) {
	w.mu.Lock()
	w.header.players = n
	w.mu.Unlock()
}

// frame copies out what Run needs to paint one display frame.
func (w *Window) frame() (types.Grid, []cell, string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	cells := make([]cell, len(w.front))
	copy(cells, w.front)
	return w.grid, cells, w.header.String()
}

var windowKeys = []struct {
	key int32
	dir string
}{
	{rl.KeyUp, "up"}, {rl.KeyW, "w"}, {rl.KeyK, "k"},
	{rl.KeyRight, "right"}, {rl.KeyD, "d"}, {rl.KeyL, "l"},
	{rl.KeyDown, "down"}, {rl.KeyS, "s"}, {rl.KeyJ, "j"},
	{rl.KeyLeft, "left"}, {rl.KeyA, "a"}, {rl.KeyH, "h"},
}

// Run paints frames and polls the keyboard until ctx is cancelled or the
// window is closed. Closing the window counts as quit.
func (w *Window) Run(ctx context.Context, controls Controls) {
	for ctx.Err() == nil {
		if rl.WindowShouldClose() {
			controls.quit()
			return
		}

		if rl.IsKeyPressed(rl.KeyQ) || rl.IsKeyPressed(rl.KeyEscape) {
			controls.quit()
		}
		if rl.IsKeyPressed(rl.KeyEnter) || rl.IsKeyPressed(rl.KeySpace) {
			controls.start()
		}
		for _, k := range windowKeys {
			if rl.IsKeyPressed(k.key) {
				controls.steer(k.dir)
			}
		}

		if rl.IsWindowResized() {
			w.UpdateDimensions(int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight()))
		}

		w.draw()
	}
}

func (w *Window) draw() {
	grid, cells, header := w.frame()
	size := w.cellSize

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	offsetX := int32(borderPadding)
	offsetY := int32(borderPadding)
	totalWidth := size * int32(grid.Width)
	totalHeight := size * int32(grid.Height)

	// Playfield background, below the header row
	headerHeight := size * types.HeaderRows
	rl.DrawRectangle(offsetX-1, offsetY+headerHeight-1, totalWidth+2, totalHeight-headerHeight+2, rl.DarkGray)

	for _, c := range cells {
		rl.DrawRectangle(
			offsetX+int32(c.pos.X)*size,
			offsetY+int32(c.pos.Y)*size,
			size, size,
			rl.Color{R: c.color.R, G: c.color.G, B: c.color.B, A: 255})
	}

	fontSize := size - 2
	if fontSize < 10 {
		fontSize = 10
	}
	rl.DrawText(header, offsetX, offsetY, fontSize, rl.White)

	rl.EndDrawing()
}

func (w *Window) Close() error {
	rl.CloseWindow()
	return nil
}
