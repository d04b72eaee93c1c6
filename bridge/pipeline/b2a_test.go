package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"voicebridge/bridge/jitter"
	"voicebridge/bridge/mixer"
	"voicebridge/bridge/opusdec"
)

type recordingSender struct {
	mu     sync.Mutex
	frames [][]byte
}

func (s *recordingSender) Send(frame []byte) error {
	cp := append([]byte(nil), frame...)
	s.mu.Lock()
	s.frames = append(s.frames, cp)
	s.mu.Unlock()
	return nil
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

func TestPipelineB2APacesAtTickIntervalAndRespectsFrameBudget(t *testing.T) {
	m := mixer.New[string](func() (jitter.Decoder, error) { return &constDecoder{value: 0.1}, nil }, 1.0)
	if err := m.Ingest("alice", 0, opusPayload(0)); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	enc, err := opusdec.NewEncoder()
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	sender := &recordingSender{}
	p := NewPipelineB2A[string](m, sender, enc, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 105*time.Millisecond)
	defer cancel()
	p.Run(ctx)

	if got := sender.count(); got < 3 {
		t.Fatalf("frames sent in ~105ms of 20ms ticks = %d, want >= 3", got)
	}
	for _, f := range sender.frames {
		if len(f) > opusdec.MaxFrameBytes {
			t.Fatalf("frame length %d exceeds MaxFrameBytes %d", len(f), opusdec.MaxFrameBytes)
		}
	}
}
