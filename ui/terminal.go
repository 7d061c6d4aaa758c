package ui

import (
	"context"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"snake-arena/game/types"
)

// Controls are the local-process callbacks a UI drives from keyboard input.
// Any of them may be nil.
type Controls struct {
	Steer func(key string)
	Start func()
	Quit  func()
}

func (c Controls) steer(key string) {
	if c.Steer != nil {
		c.Steer(key)
	}
}

func (c Controls) start() {
	if c.Start != nil {
		c.Start()
	}
}

func (c Controls) quit() {
	if c.Quit != nil {
		c.Quit()
	}
}

var (
	headerStyle = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorDarkSlateGray)
	cellRune    = tcell.RuneBlock
)

// Terminal renders the world into a tcell screen. Row 0 holds the score
// header, the rest of the screen is the playfield.
type Terminal struct {
	screen tcell.Screen
	log    zerolog.Logger

	mu     sync.Mutex
	header scoreLine
}

// NewTerminal initializes screen and takes it over until Close.
func NewTerminal(screen tcell.Screen, logger zerolog.Logger) (*Terminal, error) {
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	screen.SetStyle(tcell.StyleDefault)
	screen.HideCursor()
	screen.Clear()

	return &Terminal{
		screen: screen,
		log:    logger.With().Str("component", "terminal").Logger(),
	}, nil
}

func (t *Terminal) Container() types.Grid {
	w, h := t.screen.Size()
	return types.Grid{Width: w, Height: h}
}

func (t *Terminal) Clear() {
	t.screen.Clear()
}

func (t *Terminal) Draw(pos types.Position, color types.Color) {
	style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(color.R), int32(color.G), int32(color.B)))
	t.screen.SetContent(pos.X, pos.Y, cellRune, nil, style)
}

func (t *Terminal) Render() {
	t.drawHeader()
	t.screen.Show()
}

func (t *Terminal) ResetScore() {
	t.mu.Lock()
	t.header.reset()
	t.mu.Unlock()
}

func (t *Terminal) UpdateScore(owner types.ClientID, score int) {
	t.mu.Lock()
	t.header.update(owner, score)
	t.mu.Unlock()
}

// SetLocal picks the snake whose score the header shows.
func (t *Terminal) SetLocal(id types.ClientID) {
	t.mu.Lock()
	t.header.local = id
	t.header.score = 0
	t.mu.Unlock()
}

// SetPlayers updates the player count shown in the header from the next frame on.
func (t *Terminal) SetPlayers(n int) {
	t.mu.Lock()
	t.header.players = n
	t.mu.Unlock()
}

// Header is the text of row 0.
func (t *Terminal) Header() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.header.String()
}

func (t *Terminal) drawHeader() {
	w, _ := t.screen.Size()
	text := []rune(t.Header())
	for x := 0; x < w; x++ {
		r := ' '
		if x < len(text) {
			r = text[x]
		}
		t.screen.SetContent(x, 0, r, nil, headerStyle)
	}
}

// Run polls keyboard events and dispatches them to controls until ctx is
// cancelled or the screen is finalized.
func (t *Terminal) Run(ctx context.Context, controls Controls) {
	go func() {
		<-ctx.Done()
		_ = t.screen.PostEvent(tcell.NewEventInterrupt(nil))
	}()

	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventInterrupt:
			if ctx.Err() != nil {
				return
			}
		case *tcell.EventResize:
			t.screen.Sync()
		case *tcell.EventKey:
			t.handleKey(ev, controls)
		}
	}
}

func (t *Terminal) handleKey(ev *tcell.EventKey, controls Controls) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		controls.quit()
	case tcell.KeyEnter:
		controls.start()
	case tcell.KeyUp:
		controls.steer("up")
	case tcell.KeyDown:
		controls.steer("down")
	case tcell.KeyLeft:
		controls.steer("left")
	case tcell.KeyRight:
		controls.steer("right")
	case tcell.KeyRune:
		switch r := ev.Rune(); r {
		case 'q', 'Q':
			controls.quit()
		case ' ':
			controls.start()
		default:
			if _, ok := types.ParseDirection(string(r)); ok {
				controls.steer(string(r))
			}
		}
	}
}

// Close hands the terminal back to the shell.
func (t *Terminal) Close() error {
	t.screen.Fini()
	return nil
}
