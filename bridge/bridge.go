package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"voicebridge/bridge/adapters"
	"voicebridge/bridge/jitter"
	"voicebridge/bridge/mixer"
	"voicebridge/bridge/opusdec"
	"voicebridge/bridge/pipeline"
)

// Bridge is the top-level orchestrator: it owns both mixers and both
// pipelines and wires them to the opaque side adapters. Config and
// adapters go in at construction; Start(ctx) blocks until cancellation or
// ingress failure, then shuts down cooperatively.
//
// AID and BID are side A's and side B's speaker-identity types
// respectively; the core only requires each to be comparable.
type Bridge[AID comparable, BID comparable] struct {
	cfg    Config
	logger *slog.Logger

	sideA adapters.SideA[AID]
	sideB adapters.SideB[BID]

	a2bMixer *mixer.AudioHandler[AID]
	b2aMixer *mixer.AudioHandler[BID]

	a2b *pipeline.PipelineA2B[AID]
	b2a *pipeline.PipelineB2A[BID]
}

// New builds a Bridge from validated config and the two side adapters.
// Constructing the adapters themselves (dialing a SIP endpoint, joining a
// guild voice channel, whatever transport is behind them) is the caller's
// responsibility; the core never reaches outside these interfaces.
func New[AID comparable, BID comparable](cfg Config, sideA adapters.SideA[AID], sideB adapters.SideB[BID], logger *slog.Logger) (*Bridge[AID, BID], error) {
	if logger == nil {
		logger = slog.Default()
	}

	volume := float32(cfg.Volume)
	newDecoder := func() (jitter.Decoder, error) { return opusdec.NewDecoder() }

	a2bMixer := mixer.New[AID](newDecoder, volume)
	b2aMixer := mixer.New[BID](newDecoder, volume)

	enc, err := opusdec.NewEncoder()
	if err != nil {
		return nil, fmt.Errorf("bridge: new encoder: %w", err)
	}

	return &Bridge[AID, BID]{
		cfg:      cfg,
		logger:   logger,
		sideA:    sideA,
		sideB:    sideB,
		a2bMixer: a2bMixer,
		b2aMixer: b2aMixer,
		a2b:      pipeline.NewPipelineA2B[AID](a2bMixer),
		b2a:      pipeline.NewPipelineB2A[BID](b2aMixer, sideA, enc, logger.With("component", "b2a")),
	}, nil
}

// PCMSource exposes the pull-mode A-to-B output side B's own voice stack
// is expected to drive directly.
func (b *Bridge[AID, BID]) PCMSource() adapters.PCMSource { return b.a2b }

// Start runs both ingress loops and the B-to-A pacer until ctx is
// canceled or one of the ingress streams ends, whichever comes first
// ("select-wins" graceful shutdown). A nil return means ctx was canceled
// normally (e.g. by the process signal handler); a non-nil return means an
// ingress stream ended unexpectedly.
func (b *Bridge[AID, BID]) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- pipeline.RunSideAIngress(runCtx, b.sideA, b.a2bMixer, b.logger.With("ingress", "a"))
	}()
	go func() {
		errCh <- pipeline.RunSideBIngress(runCtx, b.sideB, b.b2aMixer, b.logger.With("ingress", "b"))
	}()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		b.b2a.Run(runCtx)
	}()

	var result error
	select {
	case <-ctx.Done():
		b.logger.Info("bridge: shutdown requested")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			b.logger.Warn("bridge: ingress ended", "error", err)
			result = err
		}
	}

	cancel()
	wg.Wait()
	return result
}
