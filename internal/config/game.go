package config

import (
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/vancomm/sweeper/internal/mines"
)

type Game struct {
	Params      mines.Params
	GraceWindow time.Duration
	Tick        time.Duration
}

func lookupDuration(key string, fallback time.Duration) (time.Duration, error) {
	s, ok := os.LookupEnv(key)
	if !ok || s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("unable to parse %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %s", key, s)
	}
	return d, nil
}

func lookupString(key, fallback string) string {
	s, ok := os.LookupEnv(key)
	if !ok || s == "" {
		return fallback
	}
	return s
}

// NewGame reads the game defaults from SWEEP_* variables. r picks a username
// when SWEEP_USERNAME is unset.
func NewGame(r *rand.Rand) (*Game, error) {
	params, err := mines.ParseParams(
		lookupString("SWEEP_DIFFICULTY", mines.Easy.String()),
		lookupString("SWEEP_SIZE", mines.Small.String()),
		os.Getenv("SWEEP_USERNAME"),
		r,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to read game params: %w", err)
	}

	grace, err := lookupDuration("SWEEP_GRACE_WINDOW", mines.DefaultGraceWindow)
	if err != nil {
		return nil, err
	}

	tick, err := lookupDuration("SWEEP_TICK", time.Second)
	if err != nil {
		return nil, err
	}
	if tick == 0 {
		return nil, fmt.Errorf("SWEEP_TICK must be positive")
	}

	return &Game{
		Params:      params,
		GraceWindow: grace,
		Tick:        tick,
	}, nil
}
