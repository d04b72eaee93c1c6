// Package opusdec binds the bridge's float32 PCM pipelines to
// gopkg.in/hraban/opus.v2, and parses the Opus TOC byte for buffer sizing.
package opusdec

import (
	"fmt"

	"gopkg.in/hraban/opus.v2"
)

const (
	// SampleRate is the bridge's fixed operating sample rate.
	SampleRate = 48000
	// Channels is the bridge's fixed channel count (stereo).
	Channels = 2
	// MaxFrameBytes is the largest Opus frame the wire format allows.
	MaxFrameBytes = 1275
)

// Decoder decodes Opus packets into stereo float32 PCM for one speaker's
// jitter queue, including FEC recovery and pure loss concealment. It wraps
// the library's int16 decode API (the call shape attested throughout the
// retrieved reference corpus) with an int16<->float32 conversion, since the
// jitter/mixer path runs entirely on float32 samples.
type Decoder struct {
	dec     *opus.Decoder
	scratch []int16
}

// NewDecoder creates a decoder for one speaker stream.
func NewDecoder() (*Decoder, error) {
	dec, err := opus.NewDecoder(SampleRate, Channels)
	if err != nil {
		return nil, fmt.Errorf("opusdec: new decoder: %w", err)
	}
	return &Decoder{dec: dec}, nil
}

func (d *Decoder) scratchFor(perChannelSamples int) []int16 {
	need := perChannelSamples * Channels
	if cap(d.scratch) < need {
		d.scratch = make([]int16, need)
	}
	return d.scratch[:need]
}

// Decode decodes payload into pcm (stereo interleaved), or, if payload is
// nil, runs pure packet-loss concealment for len(pcm)/Channels samples. It
// returns the number of per-channel samples produced.
func (d *Decoder) Decode(payload []byte, pcm []float32) (int, error) {
	perChannel := len(pcm) / Channels
	scratch := d.scratchFor(perChannel)
	n, err := d.dec.Decode(payload, scratch[:perChannel])
	if err != nil {
		return 0, fmt.Errorf("opusdec: decode: %w", err)
	}
	int16ToFloat32(pcm, scratch[:n*Channels])
	return n, nil
}

// DecodeFEC reconstructs the frame immediately preceding payload using
// Opus's embedded forward-error-correction redundancy. pcm must be sized to
// the expected (previous) frame's sample count; the library returns no
// count of its own for this call.
func (d *Decoder) DecodeFEC(payload []byte, pcm []float32) error {
	perChannel := len(pcm) / Channels
	scratch := d.scratchFor(perChannel)
	if err := d.dec.DecodeFEC(payload, scratch[:perChannel]); err != nil {
		return fmt.Errorf("opusdec: decode fec: %w", err)
	}
	int16ToFloat32(pcm, scratch[:perChannel*Channels])
	return nil
}

// Encoder encodes mixed float32 PCM into Opus frames for transmission.
type Encoder struct {
	enc     *opus.Encoder
	scratch []int16
}

// NewEncoder creates the bridge's single Opus encoder instance.
func NewEncoder() (*Encoder, error) {
	enc, err := opus.NewEncoder(SampleRate, Channels, opus.AppVoIP)
	if err != nil {
		return nil, fmt.Errorf("opusdec: new encoder: %w", err)
	}
	return &Encoder{enc: enc}, nil
}

// Encode encodes pcm (stereo interleaved float32) into an Opus frame of at
// most MaxFrameBytes.
func (e *Encoder) Encode(pcm []float32) ([]byte, error) {
	if cap(e.scratch) < len(pcm) {
		e.scratch = make([]int16, len(pcm))
	}
	scratch := e.scratch[:len(pcm)]
	float32ToInt16(scratch, pcm)

	data := make([]byte, MaxFrameBytes)
	n, err := e.enc.Encode(scratch, data)
	if err != nil {
		return nil, fmt.Errorf("opusdec: encode: %w", err)
	}
	return data[:n], nil
}

func int16ToFloat32(dst []float32, src []int16) {
	for i, s := range src {
		dst[i] = float32(s) / 32768.0
	}
}

func float32ToInt16(dst []int16, src []float32) {
	for i, f := range src {
		v := f * 32768.0
		switch {
		case v > 32767:
			v = 32767
		case v < -32768:
			v = -32768
		}
		dst[i] = int16(v)
	}
}
