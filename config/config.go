package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"snake-arena/game"
	"snake-arena/game/types"
)

// UI modes
const (
	UITerminal = "terminal"
	UIWindow   = "window"
	UIHeadless = "headless"
)

// DefaultEnvFile is read when present; a missing file is not an error.
const DefaultEnvFile = ".env"

// Config holds everything fixed at startup.
type Config struct {
	UI string

	// Game rules
	TickInterval     time.Duration
	InitialLength    int
	FoodValue        int
	SnakeCollisions  bool
	MaxSpawnAttempts int
	Seed             uint64 // 0 seeds from the clock

	// Headless grid, header row included
	Width  int
	Height int

	// Window cell size in pixels
	CellSize int

	// Listen address for websocket players; empty disables the network
	Listen string

	Bots    int
	Sound   bool
	LogFile string
	Debug   bool
}

func Default() *Config {
	return &Config{
		UI:               UITerminal,
		TickInterval:     types.DefaultTickInterval,
		InitialLength:    types.DefaultInitialLength,
		FoodValue:        types.DefaultFoodValue,
		SnakeCollisions:  true,
		MaxSpawnAttempts: types.DefaultMaxSpawnAttempts,
		Width:            40,
		Height:           20,
		CellSize:         15,
		LogFile:          "snake-arena.log",
	}
}

// Load layers defaults, envFile, SNAKE_* environment variables and args,
// later sources winning. Process environment wins over envFile.
func Load(args []string, envFile string) (*Config, error) {
	fileEnv := map[string]string{}
	if envFile != "" {
		m, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			fileEnv = m
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("read %s: %w", envFile, err)
		}
	}

	return load(args, func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileEnv[key]
		return v, ok
	})
}

func load(args []string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}

	flags := flag.NewFlagSet("snake-arena", flag.ContinueOnError)
	flags.StringVar(&cfg.UI, "ui", cfg.UI, "display: terminal, window or headless")
	flags.DurationVar(&cfg.TickInterval, "tick", cfg.TickInterval, "time between game ticks")
	flags.IntVar(&cfg.InitialLength, "length", cfg.InitialLength, "initial snake length")
	flags.IntVar(&cfg.FoodValue, "food-value", cfg.FoodValue, "score per food item")
	flags.BoolVar(&cfg.SnakeCollisions, "collisions", cfg.SnakeCollisions, "snakes die on other snakes")
	flags.IntVar(&cfg.MaxSpawnAttempts, "spawn-attempts", cfg.MaxSpawnAttempts, "random cell tries per spawn")
	flags.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "random seed, 0 for the clock")
	flags.IntVar(&cfg.Width, "width", cfg.Width, "headless grid width")
	flags.IntVar(&cfg.Height, "height", cfg.Height, "headless grid height")
	flags.IntVar(&cfg.CellSize, "cell", cfg.CellSize, "window cell size in pixels")
	flags.StringVar(&cfg.Listen, "listen", cfg.Listen, "websocket listen address, empty to disable")
	flags.IntVar(&cfg.Bots, "bots", cfg.Bots, "number of bot players")
	flags.BoolVar(&cfg.Sound, "sound", cfg.Sound, "chime on score")
	flags.StringVar(&cfg.LogFile, "log", cfg.LogFile, "log file, empty to discard logs")
	flags.BoolVar(&cfg.Debug, "debug", cfg.Debug, "debug logging")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}
	boolean := func(key string, dst *bool) error {
		v, ok := lookup(key)
		if !ok {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = b
		return nil
	}

	str("SNAKE_UI", &c.UI)
	str("SNAKE_LISTEN", &c.Listen)
	str("SNAKE_LOG", &c.LogFile)

	if v, ok := lookup("SNAKE_TICK"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SNAKE_TICK: %w", err)
		}
		c.TickInterval = d
	}
	if v, ok := lookup("SNAKE_SEED"); ok {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("SNAKE_SEED: %w", err)
		}
		c.Seed = seed
	}

	for _, err := range []error{
		num("SNAKE_INITIAL_LENGTH", &c.InitialLength),
		num("SNAKE_FOOD_VALUE", &c.FoodValue),
		num("SNAKE_SPAWN_ATTEMPTS", &c.MaxSpawnAttempts),
		num("SNAKE_WIDTH", &c.Width),
		num("SNAKE_HEIGHT", &c.Height),
		num("SNAKE_CELL_SIZE", &c.CellSize),
		num("SNAKE_BOTS", &c.Bots),
		boolean("SNAKE_COLLISIONS", &c.SnakeCollisions),
		boolean("SNAKE_SOUND", &c.Sound),
		boolean("SNAKE_DEBUG", &c.Debug),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.UI {
	case UITerminal, UIWindow, UIHeadless:
	default:
		return fmt.Errorf("unknown ui %q", c.UI)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %v", c.TickInterval)
	}
	if c.InitialLength < 1 {
		return fmt.Errorf("initial length must be at least 1, got %d", c.InitialLength)
	}
	if c.FoodValue < 1 {
		return fmt.Errorf("food value must be at least 1, got %d", c.FoodValue)
	}
	if c.MaxSpawnAttempts < 1 {
		return fmt.Errorf("spawn attempts must be at least 1, got %d", c.MaxSpawnAttempts)
	}
	if c.Width < 2 || c.Height < types.HeaderRows+2 {
		return fmt.Errorf("grid %dx%d is too small", c.Width, c.Height)
	}
	if c.CellSize < 1 {
		return fmt.Errorf("cell size must be at least 1, got %d", c.CellSize)
	}
	if c.Bots < 0 {
		return fmt.Errorf("bots must not be negative, got %d", c.Bots)
	}
	return nil
}

// Game returns the World rules.
func (c *Config) Game() game.Config {
	cfg := game.DefaultConfig()
	cfg.InitialLength = c.InitialLength
	cfg.FoodValue = c.FoodValue
	cfg.SnakeCollisions = c.SnakeCollisions
	cfg.MaxSpawnAttempts = c.MaxSpawnAttempts
	return cfg
}

// Grid is the headless container.
func (c *Config) Grid() types.Grid {
	return types.Grid{Width: c.Width, Height: c.Height}
}
