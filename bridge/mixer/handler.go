// Package mixer fans incoming per-speaker Opus packets into jitter queues
// and sums their decoded PCM into a single shared output buffer, mirroring
// tsclientlib's AudioHandler<Id>.
package mixer

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/stat"

	"voicebridge/bridge/jitter"
)

// DecoderFactory creates a fresh per-speaker Opus decoder when a queue is
// spun up for a previously-unseen speaker.
type DecoderFactory func() (jitter.Decoder, error)

// AudioHandler is the fan-in mixer: one JitterQueue per speaker, summed
// into a shared PCM buffer on every Fill.
type AudioHandler[ID comparable] struct {
	newDecoder DecoderFactory
	volume     float32

	mu                  sync.Mutex
	queues              map[ID]*jitter.Queue
	avgPrebufferSamples int
}

// New creates an empty mixer. newDecoder is called once per newly-seen
// speaker; volume is the default mixing volume applied to every new queue.
func New[ID comparable](newDecoder DecoderFactory, volume float32) *AudioHandler[ID] {
	return &AudioHandler[ID]{
		newDecoder: newDecoder,
		volume:     volume,
		queues:     make(map[ID]*jitter.Queue),
	}
}

// Ingest forwards a packet to speaker's queue, creating one (with a fresh
// decoder and this mixer's running prebuffer average) on first sight.
func (h *AudioHandler[ID]) Ingest(speaker ID, sequence uint16, payload []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if q, ok := h.queues[speaker]; ok {
		return q.Insert(sequence, payload)
	}

	dec, err := h.newDecoder()
	if err != nil {
		return fmt.Errorf("mixer: new decoder: %w", err)
	}
	q, err := jitter.NewQueue(dec, sequence, payload, h.volume)
	if err != nil {
		return err
	}
	q.SetInitialPrebuffer(h.avgPrebufferSamples)

	if len(h.queues) > 0 {
		mins := make([]float64, 0, len(h.queues))
		for _, existing := range h.queues {
			mins = append(mins, float64(existing.SizeMin()))
		}
		h.avgPrebufferSamples = jitter.UsualFrameSamples + int(stat.Mean(mins, nil))
	}

	h.queues[speaker] = q
	return nil
}

// Fill sums every active speaker's decoded PCM into buf, scaled by that
// speaker's volume. buf is NOT zeroed first. Speakers whose queues hit the
// consecutive-loss limit or drained their end-of-stream sentinel this pass
// are dropped and returned.
func (h *AudioHandler[ID]) Fill(buf []float32) []ID {
	h.mu.Lock()
	defer h.mu.Unlock()

	var gone []ID
	for id, q := range h.queues {
		if q.ConsecutiveLoss() >= jitter.MaxPacketLosses {
			gone = append(gone, id)
			continue
		}
		pcm, ended := q.Take(len(buf))
		vol := q.Volume()
		for i, s := range pcm {
			buf[i] += s * vol
		}
		if ended {
			gone = append(gone, id)
		}
	}
	for _, id := range gone {
		delete(h.queues, id)
	}
	return gone
}

// Remove tears down a speaker's queue outright, independent of the
// sentinel/loss-triggered removal paths in Fill — used when the transport
// reports a participant left explicitly.
func (h *AudioHandler[ID]) Remove(speaker ID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.queues, speaker)
}

// Len reports the number of currently active speaker queues.
func (h *AudioHandler[ID]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.queues)
}
