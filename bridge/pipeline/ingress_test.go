package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"voicebridge/bridge/adapters"
	"voicebridge/bridge/jitter"
	"voicebridge/bridge/mixer"
)

func TestRunSideAIngressForwardsAudioAndTeardown(t *testing.T) {
	side := adapters.NewFakeSideA[string]()
	m := mixer.New[string](func() (jitter.Decoder, error) { return &constDecoder{value: 1}, nil }, 1.0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- RunSideAIngress[string](ctx, side, m, nil) }()

	side.PushAudio("alice", 0, opusPayload(0))
	time.Sleep(20 * time.Millisecond)
	if m.Len() != 1 {
		t.Fatalf("Len() after audio event = %d, want 1", m.Len())
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("RunSideAIngress returned %v, want context.Canceled", err)
	}
}

func TestRunSideAIngressReturnsOnClose(t *testing.T) {
	side := adapters.NewFakeSideA[string]()
	m := mixer.New[string](func() (jitter.Decoder, error) { return &constDecoder{value: 1}, nil }, 1.0)

	done := make(chan error, 1)
	go func() { done <- RunSideAIngress[string](context.Background(), side, m, nil) }()

	side.Close()
	if err := <-done; !errors.Is(err, ErrIngressClosed) {
		t.Fatalf("RunSideAIngress returned %v, want ErrIngressClosed", err)
	}
}

func TestRunSideBIngressSpeakingUpdateIsObservedAndIgnoredForIngest(t *testing.T) {
	side := adapters.NewFakeSideB[uint32]()
	m := mixer.New[uint32](func() (jitter.Decoder, error) { return &constDecoder{value: 1}, nil }, 1.0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- RunSideBIngress[uint32](ctx, side, m, nil) }()

	// Give RunSideBIngress time to register its callbacks before the push.
	time.Sleep(20 * time.Millisecond)
	side.PushSpeakingUpdate(555, 7)
	time.Sleep(20 * time.Millisecond)
	if m.Len() != 0 {
		t.Fatalf("Len() after speaking update alone = %d, want 0 (no queue until audio arrives)", m.Len())
	}
}

func TestRunSideBIngressParticipantLeftTearsDownQueue(t *testing.T) {
	side := adapters.NewFakeSideB[uint32]()
	m := mixer.New[uint32](func() (jitter.Decoder, error) { return &constDecoder{value: 1}, nil }, 1.0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- RunSideBIngress[uint32](ctx, side, m, nil) }()

	side.PushAudio(7, 0, opusPayload(0))
	time.Sleep(20 * time.Millisecond)
	if m.Len() != 1 {
		t.Fatalf("Len() after audio event = %d, want 1", m.Len())
	}

	side.PushParticipantLeft(7)
	time.Sleep(20 * time.Millisecond)
	if m.Len() != 0 {
		t.Fatalf("Len() after participant left = %d, want 0", m.Len())
	}
}
