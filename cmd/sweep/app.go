package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/sweeper/internal/config"
	"github.com/vancomm/sweeper/internal/mines"
	"github.com/vancomm/sweeper/internal/script"
)

type application struct {
	logger *slog.Logger
	stdin  io.Reader
	stdout io.Writer
}

func (app *application) Command() *cli.Command {
	return &cli.Command{
		Name:      "sweep",
		Usage:     "replay a gesture script against a fresh minefield",
		UsageText: "sweep [options] < moves.txt",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "difficulty",
				Usage: "easy, normal or hard (overrides SWEEP_DIFFICULTY)",
			},
			&cli.StringFlag{
				Name:  "size",
				Usage: "small, medium or large (overrides SWEEP_SIZE)",
			},
			&cli.StringFlag{
				Name:  "username",
				Usage: "name reported on victory (overrides SWEEP_USERNAME)",
			},
			&cli.StringFlag{
				Name:  "seed",
				Usage: "seed for mine placement, random when empty",
			},
			&cli.StringFlag{
				Name:  "script",
				Value: "-",
				Usage: "gesture file, - for stdin",
			},
			&cli.BoolFlag{
				Name:  "realtime",
				Usage: "advance the round timer with the wall clock",
			},
		},
		Action: app.run,
	}
}

func (app *application) seededRand(cmd *cli.Command) (*rand.Rand, error) {
	s := cmd.String("seed")
	if s == "" {
		return nil, nil
	}
	seed, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid seed %q: %w", s, err)
	}
	return rand.New(rand.NewPCG(seed, seed)), nil
}

func (app *application) params(cmd *cli.Command, r *rand.Rand) (*config.Game, error) {
	cfg, err := config.NewGame(r)
	if err != nil {
		return nil, err
	}
	if s := cmd.String("difficulty"); s != "" {
		if cfg.Params.Difficulty, err = mines.ParseDifficulty(s); err != nil {
			return nil, fmt.Errorf("%w: %w", mines.ErrInvalidParams, err)
		}
	}
	if s := cmd.String("size"); s != "" {
		if cfg.Params.Size, err = mines.ParseSize(s); err != nil {
			return nil, fmt.Errorf("%w: %w", mines.ErrInvalidParams, err)
		}
	}
	if s := cmd.String("username"); s != "" {
		cfg.Params.SetUsername(s, r)
	}
	return cfg, nil
}

func (app *application) openScript(name string) (io.ReadCloser, error) {
	if name == "" || name == "-" {
		return io.NopCloser(app.stdin), nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("unable to open script: %w", err)
	}
	return f, nil
}

// completionPrinter writes won rounds to stdout as JSON lines.
type completionPrinter struct {
	mu     sync.Mutex
	enc    *json.Encoder
	logger *slog.Logger
}

func (p *completionPrinter) Submit(_ context.Context, c mines.Completion) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enc.Encode(c); err != nil {
		p.logger.Error("unable to print completion", slog.Any("error", err))
	}
}

func stoppedClock() (<-chan time.Time, func()) {
	return nil, func() {}
}

func (app *application) run(ctx context.Context, cmd *cli.Command) error {
	r, err := app.seededRand(cmd)
	if err != nil {
		return err
	}
	cfg, err := app.params(cmd, r)
	if err != nil {
		return err
	}

	var ticks mines.TickSource = stoppedClock
	if cmd.Bool("realtime") {
		ticks = mines.WallClock(cfg.Tick)
	}

	opts := []mines.Option{
		mines.WithLogger(app.logger),
		mines.WithTicks(ticks),
		mines.WithGraceWindow(cfg.GraceWindow),
		mines.WithCompletionSink(&completionPrinter{
			enc:    json.NewEncoder(app.stdout),
			logger: app.logger,
		}),
		mines.WithRoundObserver(func(s mines.RoundState) {
			app.logger.Debug("round",
				slog.Int("round", s.Round),
				slog.String("status", s.Status.String()),
				slog.Int("cleared", s.Cleared),
				slog.Int("elapsed", s.Elapsed),
				slog.Bool("new_game_enabled", s.NewGameEnabled),
			)
		}),
	}
	if r != nil {
		opts = append(opts, mines.WithRand(r))
	}

	game, err := mines.New(cfg.Params, opts...)
	if err != nil {
		return fmt.Errorf("unable to create game: %w", err)
	}
	game.ObserveAll(func(row, column int, interaction mines.Interaction, kind mines.Kind) {
		app.logger.Debug("cell",
			slog.Int("row", row),
			slog.Int("column", column),
			slog.String("interaction", interaction.String()),
			slog.String("kind", kind.String()),
		)
	})

	app.logger.Info("starting game",
		slog.String("difficulty", cfg.Params.Difficulty.String()),
		slog.String("size", cfg.Params.Size.String()),
		slog.String("username", cfg.Params.Username),
	)

	src, err := app.openScript(cmd.String("script"))
	if err != nil {
		game.Close()
		return err
	}
	defer src.Close()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		defer cancel()
		applied, err := script.Run(gCtx, game, src)
		app.logger.Debug("script finished", slog.Int("applied", applied))
		return err
	})
	g.Go(func() error {
		<-gCtx.Done()
		game.Close()
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	state := game.State()
	app.logger.Info("game finished",
		slog.Int("round", state.Round),
		slog.String("status", state.Status.String()),
		slog.Int("cleared", state.Cleared),
		slog.Int("elapsed", state.Elapsed),
	)
	_, err = io.WriteString(app.stdout, game.String())
	return err
}
