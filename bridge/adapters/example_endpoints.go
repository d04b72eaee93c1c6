package adapters

import (
	"fmt"

	resampler "github.com/tphakala/go-audio-resampler"

	"voicebridge/bridge/opusdec"
)

// RawPCMFrame is a chunk of interleaved int16 PCM at some side's native
// sample rate, handed in by a transport that does not itself speak Opus
// (e.g. an analog telephony gateway). It exists purely to give
// ExampleRawPCMSideB something concrete to resample and encode.
type RawPCMFrame struct {
	Speaker    uint64
	Sequence   uint16
	SampleRate int
	Channels   int
	Samples    []int16
}

// ExampleRawPCMSideB demonstrates the seam a side adapter would use if its
// transport delivered raw PCM at a non-48kHz native rate instead of
// already-encoded Opus: resample to the bridge's fixed 48kHz stereo
// operating rate, then encode, before handing an event to the core. The
// core's jitter/mixer path never resamples; this adapter is where that
// conversion belongs when a concrete transport needs it.
type ExampleRawPCMSideB struct {
	events chan AudioEvent[uint64]
	enc    *opusdec.Encoder
	rs     *resampler.Resampler
}

// NewExampleRawPCMSideB builds the adapter for a transport whose native PCM
// rate is sourceRate (mono or stereo, per sourceChannels).
func NewExampleRawPCMSideB(sourceRate, sourceChannels int) (*ExampleRawPCMSideB, error) {
	enc, err := opusdec.NewEncoder()
	if err != nil {
		return nil, fmt.Errorf("adapters: new encoder: %w", err)
	}
	rs, err := resampler.New(sourceRate, opusdec.SampleRate, sourceChannels, opusdec.Channels)
	if err != nil {
		return nil, fmt.Errorf("adapters: new resampler: %w", err)
	}
	return &ExampleRawPCMSideB{
		events: make(chan AudioEvent[uint64], 64),
		enc:    enc,
		rs:     rs,
	}, nil
}

func (a *ExampleRawPCMSideB) Events() <-chan AudioEvent[uint64] { return a.events }

// OnSpeakingUpdate is a no-op: a raw single-PCM-stream telephony gateway has
// exactly one implicit speaker and no out-of-band SSRC demux to announce.
func (a *ExampleRawPCMSideB) OnSpeakingUpdate(fn func(ssrc uint32, speaker uint64)) {}

// OnParticipantLeft is a no-op for the same reason; the stream's end is
// carried by Events() closing rather than an explicit notification.
func (a *ExampleRawPCMSideB) OnParticipantLeft(fn func(speaker uint64)) {}

// PushRawFrame resamples frame to 48kHz stereo, encodes it to Opus, and
// enqueues the result as an audio event. Intended to be called from
// whatever goroutine reads the underlying transport.
func (a *ExampleRawPCMSideB) PushRawFrame(frame RawPCMFrame) error {
	resampled, err := a.rs.Process(frame.Samples)
	if err != nil {
		return fmt.Errorf("adapters: resample: %w", err)
	}

	pcm := make([]float32, len(resampled))
	for i, s := range resampled {
		pcm[i] = float32(s) / 32768.0
	}
	payload, err := a.enc.Encode(pcm)
	if err != nil {
		return fmt.Errorf("adapters: encode: %w", err)
	}

	a.events <- AudioEvent[uint64]{
		Speaker:  frame.Speaker,
		Sequence: frame.Sequence,
		Payload:  payload,
	}
	return nil
}

// Close ends the ingress stream.
func (a *ExampleRawPCMSideB) Close() { close(a.events) }
