package adapters

import "sync"

// FakeSideA is a synthetic, in-memory stand-in for the VoIP-style leg, used
// by pipeline/bridge tests in place of a real transport. It is exported
// (not a _test.go file) so other packages' end-to-end tests can construct
// one directly.
type FakeSideA[ID comparable] struct {
	events chan AudioEvent[ID]

	mu   sync.Mutex
	sent [][]byte

	closeOnce sync.Once
	done      chan struct{}
}

// NewFakeSideA creates an empty fake side A with room for backlog events
// queued ahead of a test driving its pipeline.
func NewFakeSideA[ID comparable]() *FakeSideA[ID] {
	return &FakeSideA[ID]{
		events: make(chan AudioEvent[ID], 256),
		done:   make(chan struct{}),
	}
}

func (f *FakeSideA[ID]) Events() <-chan AudioEvent[ID] { return f.events }

// Send records frame for later inspection by the test, standing in for the
// wire transmission a real side A would perform.
func (f *FakeSideA[ID]) Send(frame []byte) error {
	cp := append([]byte(nil), frame...)
	f.mu.Lock()
	f.sent = append(f.sent, cp)
	f.mu.Unlock()
	return nil
}

// Sent returns a snapshot of every frame handed to Send so far.
func (f *FakeSideA[ID]) Sent() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.sent...)
}

// PushAudio enqueues one audio packet as if it had arrived over the wire.
func (f *FakeSideA[ID]) PushAudio(speaker ID, sequence uint16, payload []byte) {
	f.events <- AudioEvent[ID]{Speaker: speaker, Sequence: sequence, Payload: payload}
}

// Close ends the ingress stream, simulating a disconnect.
func (f *FakeSideA[ID]) Close() {
	f.closeOnce.Do(func() {
		close(f.events)
		close(f.done)
	})
}

// Done reports when the fake has been closed.
func (f *FakeSideA[ID]) Done() <-chan struct{} { return f.done }

// FakeSideB is a synthetic, in-memory stand-in for the guild-voice-style
// leg: many speakers demultiplexed by SSRC, with speaking-state updates and
// participant-left notifications delivered through registered callbacks
// rather than the audio channel, the same split adapters.SideB requires of
// a real transport.
type FakeSideB[ID comparable] struct {
	events chan AudioEvent[ID]

	mu         sync.Mutex
	onSpeaking func(ssrc uint32, speaker ID)
	onLeft     func(speaker ID)

	closeOnce sync.Once
}

// NewFakeSideB creates an empty fake side B.
func NewFakeSideB[ID comparable]() *FakeSideB[ID] {
	return &FakeSideB[ID]{events: make(chan AudioEvent[ID], 256)}
}

func (f *FakeSideB[ID]) Events() <-chan AudioEvent[ID] { return f.events }

func (f *FakeSideB[ID]) OnSpeakingUpdate(fn func(ssrc uint32, speaker ID)) {
	f.mu.Lock()
	f.onSpeaking = fn
	f.mu.Unlock()
}

func (f *FakeSideB[ID]) OnParticipantLeft(fn func(speaker ID)) {
	f.mu.Lock()
	f.onLeft = fn
	f.mu.Unlock()
}

// PushSpeakingUpdate announces the ssrc->speaker mapping ahead of that
// speaker's audio, invoking whatever callback RunSideBIngress registered,
// matching the out-of-band event a real transport sends before the first
// packet for a newly active SSRC.
func (f *FakeSideB[ID]) PushSpeakingUpdate(ssrc uint32, speaker ID) {
	f.mu.Lock()
	fn := f.onSpeaking
	f.mu.Unlock()
	if fn != nil {
		fn(ssrc, speaker)
	}
}

// PushAudio enqueues one audio packet for speaker.
func (f *FakeSideB[ID]) PushAudio(speaker ID, sequence uint16, payload []byte) {
	f.events <- AudioEvent[ID]{Speaker: speaker, Sequence: sequence, Payload: payload}
}

// PushParticipantLeft reports that speaker's session ended outright.
func (f *FakeSideB[ID]) PushParticipantLeft(speaker ID) {
	f.mu.Lock()
	fn := f.onLeft
	f.mu.Unlock()
	if fn != nil {
		fn(speaker)
	}
}

// Close ends the ingress stream.
func (f *FakeSideB[ID]) Close() {
	f.closeOnce.Do(func() { close(f.events) })
}
