package main

import (
	"context"
	"os"
	"os/signal"

	"kernelc/internal/cli"
	"kernelc/internal/config"
	"kernelc/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Fall back to defaults; a broken config must not block doctor
		cfg = nil
	}
	defer logger.Close()

	var ph cli.PanicHandler
	defer ph.Recover()

	// Interrupt cancels the context, which kills the compiler process
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := cli.New(cfg)
	if err := app.RunContext(ctx, os.Args); err != nil {
		stop()
		cli.NewErrorHandler(app.Verbose(), app.Debug()).Handle(err)
	}
}
