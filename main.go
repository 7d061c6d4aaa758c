package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"snake-arena/config"
)

func main() {
	cfg, err := config.Load(os.Args[1:], config.DefaultEnvFile)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "snake-arena: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog, err := setupLogging(cfg.LogFile, cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "snake-arena: %v\n", err)
		os.Exit(1)
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("startup failed")
		closeLog()
		fmt.Fprintf(os.Stderr, "snake-arena: %v\n", err)
		os.Exit(1)
	}

	crash := func(r interface{}) {
		a.closeDisplay()
		logger.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("crashed")
		closeLog()
		fmt.Fprintf(os.Stderr, "snake-arena: panic: %v\n%s", r, debug.Stack())
		os.Exit(2)
	}
	// Ticks run on the loop goroutine, out of reach of the recover below
	a.loop.OnPanic(crash)
	defer func() {
		if r := recover(); r != nil {
			crash(r)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	a.run(ctx)
	stop()

	if err := a.shutdown(); err != nil {
		logger.Warn().Err(err).Msg("shutdown")
	}
	logger.Info().Msg("bye")
	closeLog()
	os.Exit(0)
}
