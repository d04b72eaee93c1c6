package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"voicebridge/bridge/adapters"
	"voicebridge/bridge/mixer"
)

// ErrIngressClosed is returned when a side's event stream closes, the
// transport-fatal condition that triggers top-level graceful shutdown.
var ErrIngressClosed = errors.New("pipeline: ingress stream closed")

// RunSideAIngress converts side's audio events into calls against m until
// ctx is canceled or the stream closes. Side A carries its originating
// client id directly on every event, so no speaking-state demux is needed
// here.
func RunSideAIngress[ID comparable](ctx context.Context, side adapters.SideA[ID], m *mixer.AudioHandler[ID], logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-side.Events():
			if !ok {
				return ErrIngressClosed
			}
			ingestAudio(ev, m, logger, "a2b")
		}
	}
}

// RunSideBIngress converts side's audio events into calls against m until
// ctx is canceled or the stream closes, and registers the out-of-band
// speaking-update and participant-left callbacks side B delivers outside
// the audio stream. The core keeps no SSRC->speaker map of its own, so a
// speaking update is observed only for logging; a participant-left tears
// the speaker's queue down directly.
func RunSideBIngress[ID comparable](ctx context.Context, side adapters.SideB[ID], m *mixer.AudioHandler[ID], logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	side.OnSpeakingUpdate(func(ssrc uint32, speaker ID) {
		logger.Debug("b2a speaking update", "ssrc", ssrc, "speaker", speaker)
	})
	side.OnParticipantLeft(func(speaker ID) {
		m.Remove(speaker)
		logger.Info("b2a speaker left", "speaker", speaker)
	})
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-side.Events():
			if !ok {
				return ErrIngressClosed
			}
			ingestAudio(ev, m, logger, "b2a")
		}
	}
}

func ingestAudio[ID comparable](ev adapters.AudioEvent[ID], m *mixer.AudioHandler[ID], logger *slog.Logger, label string) {
	if err := m.Ingest(ev.Speaker, ev.Sequence, ev.Payload); err != nil {
		logger.Debug(label+" ingest dropped packet", "speaker", ev.Speaker, "sequence", ev.Sequence, "error", err)
	}
}
