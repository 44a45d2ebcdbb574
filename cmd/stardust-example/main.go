// stardust-example is a minimal client built on pkg/facade: it connects to
// the active Stardust instance, logs the synthetic root and HMD node ids
// the server announces, creates startup settings rooted at the root node,
// and waits for a signal or the configured shutdown timeout before exiting.
// It exists to exercise the facade package
// the way a real client would, outside of its unit tests.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stardust-xr/stardust/internal/logger"
	"github.com/stardust-xr/stardust/pkg/config"
	"github.com/stardust-xr/stardust/pkg/facade"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.MustLoad(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Output: cfg.Logging.Output}); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := facade.Connect(ctx)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer client.Close()

	logger.Info("connected to stardust instance",
		logger.NodeID(client.Root.ID()),
		logger.Path(client.Root.Path()))
	logger.Info("hmd node announced",
		logger.NodeID(client.HMD.ID()),
		logger.Path(client.HMD.Path()))

	settings, err := facade.CreateStartupSettings(ctx, client)
	if err != nil {
		logger.Warn("startup settings unavailable", logger.Err(err))
	} else {
		defer settings.Close()
		if err := settings.SetRoot(client.Root); err != nil {
			logger.Warn("failed to set startup root", logger.Err(err))
		}
	}

	select {
	case <-ctx.Done():
	case <-time.After(cfg.ShutdownTimeout):
	}
	return nil
}
