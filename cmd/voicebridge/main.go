// Command voicebridge runs the core jitter-buffered voice bridge between
// side A and side B. Building the actual transport clients for either side
// (SIP registration, guild voice gateway handshake, credential exchange,
// ...) is explicitly out of this program's scope; wire a real
// bridge/adapters.SideA/SideB implementation in place of the fakes below
// to ship against a concrete transport.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"voicebridge/bridge"
	"voicebridge/bridge/adapters"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	configPath := "config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := bridge.LoadConfig(configPath)
	if err != nil {
		logger.Error("config error", "error", err)
		os.Exit(1)
	}
	if cfg.Verbose > 0 {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	sideA := adapters.NewFakeSideA[string]()
	sideB := adapters.NewFakeSideB[uint32]()
	defer sideA.Close()
	defer sideB.Close()

	br, err := bridge.New[string, uint32](cfg, sideA, sideB, logger)
	if err != nil {
		logger.Error("bridge init failed", "error", err)
		os.Exit(1)
	}

	logger.Info("voicebridge starting", "side_a_endpoint", cfg.SideAEndpoint)
	err = br.Start(ctx)

	logger.Info("shutting down...")
	if err != nil {
		logger.Error("bridge stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
