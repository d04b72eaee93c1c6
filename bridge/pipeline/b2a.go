package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"voicebridge/bridge/jitter"
	"voicebridge/bridge/mixer"
	"voicebridge/bridge/opusdec"
)

const tickInterval = 20 * time.Millisecond

// Sender is the egress contract PipelineB2A needs from side A: one Opus
// frame handed over per tick.
type Sender interface {
	Send(frame []byte) error
}

// PipelineB2A is the paced encoder/sender: every 20ms it fills a scratch
// PCM buffer from the B-to-A mixer, hands it to a dedicated blocking
// encode worker (the idiomatic analogue of a spawn_blocking task), and
// sends the resulting Opus frame to side A.
type PipelineB2A[ID comparable] struct {
	mixer  *mixer.AudioHandler[ID]
	sender Sender
	enc    *opusdec.Encoder
	logger *slog.Logger

	jobs chan []float32
	wg   sync.WaitGroup
}

// NewPipelineB2A wires m's output through enc to sender every 20ms.
func NewPipelineB2A[ID comparable](m *mixer.AudioHandler[ID], sender Sender, enc *opusdec.Encoder, logger *slog.Logger) *PipelineB2A[ID] {
	if logger == nil {
		logger = slog.Default()
	}
	return &PipelineB2A[ID]{
		mixer:  m,
		sender: sender,
		enc:    enc,
		logger: logger,
		jobs:   make(chan []float32, 1),
	}
}

// Run blocks, pacing at 20ms, until ctx is done.
func (p *PipelineB2A[ID]) Run(ctx context.Context) {
	p.wg.Add(1)
	go p.encodeWorker()
	defer func() {
		close(p.jobs)
		p.wg.Wait()
	}()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	frame := make([]float32, jitter.UsualFrameSamples*jitter.ChannelCount)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for i := range frame {
				frame[i] = 0
			}
			p.mixer.Fill(frame)

			job := append([]float32(nil), frame...)
			select {
			case p.jobs <- job:
			default:
				p.logger.Warn("b2a tick overrun: encode worker still busy, dropping frame")
			}
		}
	}
}

// encodeWorker is the single blocking CPU-bound goroutine performing the
// actual Opus encode, decoupled from the pacer so a slow encode never
// skews the 20ms tick.
func (p *PipelineB2A[ID]) encodeWorker() {
	defer p.wg.Done()
	for pcm := range p.jobs {
		data, err := p.enc.Encode(pcm)
		if err != nil {
			p.logger.Warn("b2a encode failed", "error", err)
			continue
		}
		if err := p.sender.Send(data); err != nil {
			p.logger.Warn("b2a send failed", "error", err)
		}
	}
}
