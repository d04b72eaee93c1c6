package adapters

import (
	"fmt"

	"github.com/pion/rtp"
)

// ShapeRTPOpus wraps an Opus payload in an RTP packet the way side A's real
// wire representation would: sequence number, timestamp, SSRC, payload.
func ShapeRTPOpus(payload []byte, sequence uint16, timestamp, ssrc uint32) ([]byte, error) {
	pkt := &rtp.Packet{
		Header: rtp.Header{
			Version:        2,
			PayloadType:    111, // conventional dynamic PT for Opus
			SequenceNumber: sequence,
			Timestamp:      timestamp,
			SSRC:           ssrc,
		},
		Payload: payload,
	}
	data, err := pkt.Marshal()
	if err != nil {
		return nil, fmt.Errorf("adapters: marshal rtp packet: %w", err)
	}
	return data, nil
}

// UnshapeRTPOpus parses an RTP packet back into its Opus payload and
// sequence number, discarding the RTP framing the core never needs.
func UnshapeRTPOpus(data []byte) (payload []byte, sequence uint16, err error) {
	var pkt rtp.Packet
	if err := pkt.Unmarshal(data); err != nil {
		return nil, 0, fmt.Errorf("adapters: unmarshal rtp packet: %w", err)
	}
	return pkt.Payload, pkt.SequenceNumber, nil
}

// PushAudioRTP shapes payload as an RTP packet and immediately unshapes it
// before enqueuing, exercising the same wire round-trip a real side-A
// transport would perform, for tests that want RTP-realistic fixtures
// instead of bare Opus payloads.
func (f *FakeSideA[ID]) PushAudioRTP(speaker ID, sequence uint16, timestamp, ssrc uint32, payload []byte) error {
	wire, err := ShapeRTPOpus(payload, sequence, timestamp, ssrc)
	if err != nil {
		return err
	}
	decoded, seq, err := UnshapeRTPOpus(wire)
	if err != nil {
		return err
	}
	f.PushAudio(speaker, seq, decoded)
	return nil
}
