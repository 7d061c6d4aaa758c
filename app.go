package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"

	"snake-arena/ai"
	"snake-arena/audio"
	"snake-arena/config"
	"snake-arena/game"
	"snake-arena/game/manager"
	"snake-arena/game/types"
	"snake-arena/network"
	"snake-arena/ui"
)

const (
	windowWidth     = 1280
	windowHeight    = 800
	shutdownTimeout = 2 * time.Second
)

// app wires the World to its displays, players and clock.
type app struct {
	cfg *config.Config
	log zerolog.Logger

	world *game.World
	loop  *game.GameLoop
	stats *manager.StatsManager

	terminal *ui.Terminal
	window   *ui.Window
	server   *network.Server
	chime    *audio.Chime
	bots     *ai.Pool

	local types.ClientID
}

func newApp(cfg *config.Config, logger zerolog.Logger) (*app, error) {
	a := &app{
		cfg:   cfg,
		log:   logger,
		stats: manager.NewStatsManager(),
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewSource(seed))

	var display game.Renderer
	var scores []game.ScoreBoard
	switch cfg.UI {
	case config.UITerminal:
		screen, err := tcell.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("create screen: %w", err)
		}
		a.terminal, err = ui.NewTerminal(screen, logger)
		if err != nil {
			return nil, err
		}
		display = a.terminal
		scores = append(scores, a.terminal)
	case config.UIWindow:
		a.window = ui.NewWindow(windowWidth, windowHeight, int32(cfg.CellSize), "Snake Arena", logger)
		display = a.window
		scores = append(scores, a.window)
	default:
		display = game.Headless{Grid: cfg.Grid()}
	}
	renderers := []game.Renderer{display}

	if cfg.Sound {
		chime := audio.NewChime(logger)
		if err := chime.Initialize(); err != nil {
			logger.Warn().Err(err).Msg("audio disabled")
		} else {
			a.chime = chime
			scores = append(scores, chime)
		}
	}

	if cfg.Listen != "" {
		a.server = network.NewServer(logger)
		broadcaster := network.NewBroadcaster(a.server, display.Container, logger)
		renderers = append(renderers, broadcaster)
		scores = append(scores, broadcaster)
	}

	a.world = game.NewWorld(cfg.Game(), game.MultiRenderer(renderers...), game.MultiScoreBoard(scores...), rng, logger)
	a.world.OnRemove(func(owner types.ClientID, reason string, score int) {
		a.stats.AddGame(score, reason)
	})

	a.loop = game.NewGameLoop(a.world, cfg.TickInterval, logger)
	a.loop.Observe(a.updatePlayers)

	if cfg.Bots > 0 {
		a.bots = ai.NewPool(a.world, cfg.Bots, rng, logger)
		a.loop.Observe(a.bots.Observe)
	}

	return a, nil
}

func (a *app) updatePlayers() {
	n := a.world.Len()
	if a.terminal != nil {
		a.terminal.SetPlayers(n)
	}
	if a.window != nil {
		a.window.SetPlayers(n)
	}
}

// run blocks until ctx is cancelled or a quit key is pressed.
func (a *app) run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.server != nil {
		go func() {
			if err := a.server.ListenAndServe(a.cfg.Listen, a.world); err != nil {
				a.log.Error().Err(err).Msg("network stopped")
				cancel()
			}
		}()
	}
	if a.bots != nil {
		a.bots.JoinAll()
	}

	if a.terminal == nil && a.window == nil {
		a.loop.Start()
		<-ctx.Done()
		return
	}

	a.local = types.NewClientID()
	if a.terminal != nil {
		a.terminal.SetLocal(a.local)
	}
	if a.window != nil {
		a.window.SetLocal(a.local)
	}
	a.world.Join(a.local)
	a.updatePlayers()
	a.world.Reset()

	controls := ui.Controls{
		Steer: func(key string) {
			a.world.ChangeDirection(a.local, key)
		},
		Start: func() {
			// A running game lets a dead local player back in.
			if !a.loop.Start() && a.world.Join(a.local) {
				a.updatePlayers()
			}
		},
		Quit: cancel,
	}

	if a.terminal != nil {
		a.terminal.Run(ctx, controls)
	} else {
		a.window.Run(ctx, controls)
	}
}

// shutdown stops the clock, tears down every snake and closes each
// collaborator, collecting their errors.
func (a *app) shutdown() error {
	a.loop.Stop()
	a.world.Clear()

	a.log.Info().
		Int("games", a.stats.GetGamesPlayed()).
		Float64("avg_score", a.stats.GetAverageScore()).
		Int("max_score", a.stats.GetMaxScore()).
		Interface("causes", a.stats.Causes()).
		Msg("session summary")

	var merr *multierror.Error
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(ctx); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("network: %w", err))
		}
	}
	if a.chime != nil {
		if err := a.chime.Close(); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("audio: %w", err))
		}
	}
	if a.terminal != nil {
		if err := a.terminal.Close(); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("terminal: %w", err))
		}
	}
	if a.window != nil {
		if err := a.window.Close(); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("window: %w", err))
		}
	}
	return merr.ErrorOrNil()
}

// closeDisplay gives the terminal back after a crash.
func (a *app) closeDisplay() {
	if a.terminal != nil {
		a.terminal.Close()
	}
}
