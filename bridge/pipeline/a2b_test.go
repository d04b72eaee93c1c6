package pipeline

import (
	"testing"

	"voicebridge/bridge/jitter"
	"voicebridge/bridge/mixer"
)

type constDecoder struct{ value float32 }

func (d *constDecoder) Decode(payload []byte, pcm []float32) (int, error) {
	for i := range pcm {
		pcm[i] = d.value
	}
	return len(pcm) / jitter.ChannelCount, nil
}

func (d *constDecoder) DecodeFEC(payload []byte, pcm []float32) error {
	for i := range pcm {
		pcm[i] = d.value
	}
	return nil
}

func opusPayload(seq uint16) []byte {
	return []byte{31<<3 | 0, byte(seq)}
}

func TestPipelineA2BReadPCMZeroesThenFills(t *testing.T) {
	m := mixer.New[string](func() (jitter.Decoder, error) { return &constDecoder{value: 1}, nil }, 1.0)
	if err := m.Ingest("alice", 0, opusPayload(0)); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	p := NewPipelineA2B[string](m)
	buf := make([]float32, jitter.UsualFrameSamples*jitter.ChannelCount)
	for i := range buf {
		buf[i] = 42 // garbage the read must clear before filling
	}

	p.ReadPCM(buf)
	for i, v := range buf {
		if v != 1 {
			t.Fatalf("buf[%d] = %v, want 1 (decoder's constant output)", i, v)
		}
	}
}

func TestPipelineA2BReadPCMSilentWhenEmpty(t *testing.T) {
	m := mixer.New[string](func() (jitter.Decoder, error) { return &constDecoder{value: 1}, nil }, 1.0)
	p := NewPipelineA2B[string](m)
	buf := make([]float32, jitter.UsualFrameSamples*jitter.ChannelCount)
	for i := range buf {
		buf[i] = 7
	}
	p.ReadPCM(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("buf[%d] = %v, want 0 with no active speakers", i, v)
		}
	}
}
