// Package adapters defines the opaque transport contracts side A and side B
// are expected to satisfy, and the PCM/Opus egress surfaces the pipelines
// expose back to them. Nothing in this package talks to a real network; a
// concrete transport (SIP, a guild voice gateway, whatever) lives behind
// these interfaces, the same separation an endpoint wrapper gives a
// transport-specific client library.
package adapters

// AudioEvent is one voice packet from the ingress stream: Speaker at
// Sequence. A Payload of length <= 1 is the end-of-stream sentinel for that
// speaker.
type AudioEvent[ID comparable] struct {
	Speaker  ID
	Sequence uint16
	Payload  []byte
}

// SideA is the opaque collaborator carrying the VoIP-style leg: one
// identity per connected client, synchronous event delivery, and a
// per-20ms-tick Opus send.
type SideA[ID comparable] interface {
	// Events returns the ingress channel. Closed when the side disconnects.
	Events() <-chan AudioEvent[ID]
	// Send transmits one Opus frame (at most opusdec.MaxFrameBytes) to the
	// remote party. Called once per 20ms tick by PipelineB2A.
	Send(frame []byte) error
}

// SideB is the opaque collaborator carrying the guild-voice-style leg:
// many simultaneous speakers demultiplexed by SSRC, with speaking-state
// updates and participant-left notifications arriving out of band, kept
// distinct from the audio ingress stream rather than folded into it —
// separate event kinds delivered through separate mechanisms: a channel
// for the high-volume audio stream, registered callbacks for the rare
// out-of-band notifications.
type SideB[ID comparable] interface {
	// Events returns the audio ingress channel. Closed when the side
	// disconnects.
	Events() <-chan AudioEvent[ID]
	// OnSpeakingUpdate registers the callback invoked when the transport
	// announces which speaker a given SSRC belongs to, ahead of that
	// speaker's first audio packet.
	OnSpeakingUpdate(fn func(ssrc uint32, speaker ID))
	// OnParticipantLeft registers the callback invoked when the transport
	// reports a speaker's session ended outright, independent of any
	// sentinel or loss-triggered queue removal.
	OnParticipantLeft(fn func(speaker ID))
}

// PCMSource is the pull-mode egress contract side B's own voice stack
// drives: a synchronous, non-suspending fill of exactly len(buf) stereo
// interleaved float32 samples. PipelineA2B implements this; it is defined
// here, next to the other transport-facing contracts, so a fake side B in
// tests can depend on the interface rather than the concrete pipeline type.
type PCMSource interface {
	// ReadPCM fills buf entirely; underruns are silence, never short reads.
	ReadPCM(buf []float32)
}
