package game

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"snake-arena/game/types"
)

// LoopState is the clock state of a GameLoop.
type LoopState int

const (
	Stopped LoopState = iota
	Running
)

func (s LoopState) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// GameLoop drives World.Tick on a fixed interval. At most one ticker
// goroutine exists at a time.
type GameLoop struct {
	world    *World
	interval time.Duration
	log      zerolog.Logger

	mutex     sync.Mutex
	state     LoopState
	stopCh    chan struct{}
	doneCh    chan struct{}
	observers []func()
	onPanic   func(r interface{})
}

func NewGameLoop(world *World, interval time.Duration, logger zerolog.Logger) *GameLoop {
	if interval <= 0 {
		interval = types.DefaultTickInterval
	}
	return &GameLoop{
		world:    world,
		interval: interval,
		log:      logger.With().Str("component", "loop").Logger(),
	}
}

// Observe registers fn to run on the loop goroutine after every tick, once
// the World lock has been released. Observers may call into the World but
// must not call Stop. Observers added while running take effect on the next Start.
func (l *GameLoop) Observe(fn func()) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.observers = append(l.observers, fn)
}

// OnPanic registers fn to handle a panic raised by a tick or an observer.
// The loop is already stopped when fn runs. Without a handler the panic
// propagates and crashes the process.
func (l *GameLoop) OnPanic(fn func(r interface{})) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.onPanic = fn
}

// Start resets the world and begins ticking. It reports false, doing
// nothing, when the loop is already running.
func (l *GameLoop) Start() bool {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.state == Running {
		return false
	}

	l.world.Reset()
	l.state = Running
	l.stopCh = make(chan struct{})
	l.doneCh = make(chan struct{})

	observers := make([]func(), len(l.observers))
	copy(observers, l.observers)

	go l.run(l.stopCh, l.doneCh, observers, l.onPanic)

	l.log.Info().Dur("interval", l.interval).Msg("loop started")
	return true
}

// Stop halts the ticker and waits for an in-flight tick to finish. It
// reports false when the loop was not running.
func (l *GameLoop) Stop() bool {
	l.mutex.Lock()
	if l.state == Stopped {
		l.mutex.Unlock()
		return false
	}
	l.state = Stopped
	close(l.stopCh)
	done := l.doneCh
	l.mutex.Unlock()

	<-done
	l.log.Info().Msg("loop stopped")
	return true
}

func (l *GameLoop) State() LoopState {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.state
}

func (l *GameLoop) run(stop <-chan struct{}, done chan<- struct{}, observers []func(), onPanic func(interface{})) {
	defer close(done)
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		l.mutex.Lock()
		if l.doneCh == done {
			l.state = Stopped
		}
		l.mutex.Unlock()

		l.log.Error().Interface("panic", r).Msg("tick panicked, loop stopped")
		if onPanic == nil {
			panic(r)
		}
		onPanic(r)
	}()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			l.world.Tick()
			for _, fn := range observers {
				fn()
			}
		}
	}
}
