package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/vancomm/sweeper/internal/config"
	"github.com/vancomm/sweeper/internal/mines"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "unable to load .env: %v\n", err)
	}

	logger := config.NewLogger(os.Stderr)
	mines.Log = logger

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	app := &application{
		logger: logger,
		stdin:  os.Stdin,
		stdout: os.Stdout,
	}
	if err := app.Command().Run(ctx, os.Args); err != nil {
		logger.Error("sweep failed", slog.Any("error", err))
		os.Exit(1)
	}
}
