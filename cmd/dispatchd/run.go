package main

import (
	"context"
	"fmt"
	"os"
	"time"
)

const stopTimeout = 30 * time.Second

// runner is the subset of *fx.App used to drive the process.
type runner interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Done() <-chan os.Signal
}

func run(ctx context.Context, app runner) error {
	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	select {
	case <-ctx.Done():
	case <-app.Done():
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	return nil
}
