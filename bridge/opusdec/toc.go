package opusdec

import "fmt"

// configFrameDurationMs10 gives the per-frame duration, in milliseconds * 10 (to stay
// integral), for each of the 32 possible Opus TOC configuration numbers, per
// RFC 6716 section 3.1. hraban/opus.v2 (and the underlying libopus C API it
// wraps) does not expose an equivalent of audiopus::packet::nb_samples, so
// this table is reproduced directly from the RFC rather than borrowed from a
// dependency.
var configFrameDurationMs10 = [32]int{
	// SILK-only, NB/MB/WB: configs 0-11, four durations each (10,20,40,60ms)
	100, 200, 400, 600, // 0-3 NB
	100, 200, 400, 600, // 4-7 MB
	100, 200, 400, 600, // 8-11 WB
	// Hybrid SWB/FB: configs 12-15, two durations each (10,20ms)
	100, 200, // 12-13 SWB
	100, 200, // 14-15 FB
	// CELT-only: configs 16-31, four durations each (2.5,5,10,20ms)
	25, 50, 100, 200, // 16-19 NB
	25, 50, 100, 200, // 20-23 WB
	25, 50, 100, 200, // 24-27 SWB
	25, 50, 100, 200, // 28-31 FB
}

// SampleCount returns the number of per-channel PCM samples the Opus packet
// whose first byte is toc will decode to, at the given sample rate. It
// parses only the TOC byte's config (5 bits) and frame-count-code (2 bits);
// for code 3 packets (arbitrary frame count, carried in the next byte) it
// assumes two frames, since the count byte is not available here.
func SampleCount(toc byte, sampleRate int) (int, error) {
	config := int(toc >> 3)
	frameCountCode := toc & 0x3

	var framesPerPacket int
	switch frameCountCode {
	case 0:
		framesPerPacket = 1
	case 1, 2:
		framesPerPacket = 2
	case 3:
		// The actual frame count is in the next byte of the packet, which
		// this helper does not have access to; 2 is a conservative,
		// commonly-correct estimate for VBR multi-frame packets used for
		// buffer sizing only (never for decode correctness).
		framesPerPacket = 2
	default:
		return 0, fmt.Errorf("opusdec: invalid frame count code %d", frameCountCode)
	}

	durMs10 := configFrameDurationMs10[config]
	samplesPerFrame := sampleRate * durMs10 / 10000
	return samplesPerFrame * framesPerPacket, nil
}
