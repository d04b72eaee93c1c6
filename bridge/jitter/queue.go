package jitter

import (
	"fmt"
	"slices"

	"voicebridge/bridge/opusdec"
)

const (
	// MaxPacketLosses is the number of consecutive concealment decodes
	// after which a queue is considered dead.
	MaxPacketLosses = 3
	// MaxBufferSize is the maximum number of per-channel samples a queue
	// may hold buffered, equivalent to 0.5s at 48kHz.
	MaxBufferSize = SampleRate / 2
	// MaxBufferPackets is the maximum number of pending packets a queue
	// may hold.
	MaxBufferPackets = 50
	// MaxBufferTime bounds how long a queue may sit in prebuffer before
	// the watchdog forces it to start playing regardless.
	MaxBufferTime = SampleRate / 2
	// SpeedChangeSteps controls how aggressively speed-up drains a queue:
	// one stereo sample is dropped every this many per-channel samples.
	SpeedChangeSteps = 100
	// UsualFrameSamples is one 20ms frame's worth of per-channel samples
	// at 48kHz.
	UsualFrameSamples = SampleRate / 50
	// SampleRate is the bridge's fixed operating sample rate.
	SampleRate = 48000
	// ChannelCount is the bridge's fixed channel count (stereo).
	ChannelCount = 2

	maxUsualFramesBuffered = MaxBufferSize / UsualFrameSamples
)

// Decoder is the Opus decoding surface a Queue needs. It is satisfied by
// *opusdec.Decoder; defined here so this package does not need to import
// the codec binding directly for its tests.
type Decoder interface {
	// Decode decodes payload into pcm (stereo, interleaved) and returns
	// the number of per-channel samples produced. A nil payload runs pure
	// packet-loss concealment for len(pcm)/ChannelCount samples.
	Decode(payload []byte, pcm []float32) (int, error)
	// DecodeFEC reconstructs the frame *before* payload using Opus's
	// forward-error-correction redundancy embedded in payload, filling
	// exactly len(pcm) samples.
	DecodeFEC(payload []byte, pcm []float32) error
}

type entry struct {
	sequence uint16
	payload  []byte
	samples  int // per-channel sample count; 0 for a sentinel
}

// Queue is a per-speaker jitter-buffered Opus decode queue. It reorders
// packets by their 16-bit wrapping sequence number, conceals loss using FEC
// or PLC, and adapts its own target depth to observed jitter.
type Queue struct {
	decoder Decoder
	volume  float32

	nextSeq uint16

	pending         []entry
	bufferedSamples int

	decoded    []float32
	decodedPos int

	lastFrameSamples int
	consecutiveLoss  int

	prebufferRemaining int
	prebufferedFor     int

	sizeMin *SlidingWindowExtreme
	sizeMax *SlidingWindowExtreme
}

// NewQueue creates a queue seeded with the first packet seen for a speaker.
func NewQueue(decoder Decoder, sequence uint16, payload []byte, volume float32) (*Queue, error) {
	samples, err := sampleCountOf(payload)
	if err != nil {
		return nil, fmt.Errorf("jitter: get packet sample count: %w", err)
	}
	if samples > MaxBufferSize {
		return nil, ErrTooManySamples
	}

	q := &Queue{
		decoder:          decoder,
		volume:           volume,
		nextSeq:          sequence,
		lastFrameSamples: samples,
		sizeMin:          NewSlidingWindowMin(),
		sizeMax:          NewSlidingWindowMax(),
	}
	q.observe(0)
	if err := q.Insert(sequence, payload); err != nil {
		return nil, err
	}
	return q, nil
}

// Volume returns the queue's mixing volume.
func (q *Queue) Volume() float32 { return q.volume }

// SetVolume updates the queue's mixing volume.
func (q *Queue) SetVolume(v float32) { q.volume = v }

// ConsecutiveLoss returns the number of concealment decodes performed in a
// row without an intervening successful non-FEC decode.
func (q *Queue) ConsecutiveLoss() int { return q.consecutiveLoss }

// SizeMin returns the current sliding-window minimum of observed buffer
// occupancy, in usual frames.
func (q *Queue) SizeMin() uint8 { return q.sizeMin.Get() }

// SetInitialPrebuffer sets the number of samples this queue must buffer
// before it starts producing audio. Called once, right after construction,
// by the owning mixer.
func (q *Queue) SetInitialPrebuffer(samples int) { q.prebufferRemaining = samples }

// Insert adds a packet to the pending buffer in sequence order.
func (q *Queue) Insert(sequence uint16, payload []byte) error {
	if len(q.pending) >= MaxBufferPackets {
		return ErrQueueFull
	}

	samples, err := sampleCountOf(payload)
	if err != nil {
		return fmt.Errorf("jitter: get packet sample count: %w", err)
	}
	if samples > MaxBufferSize {
		return ErrTooManySamples
	}

	if sequence-q.nextSeq > uint16(MaxBufferPackets) {
		return ErrTooLate
	}

	i := len(q.pending)
	for i > 0 && q.pending[i-1].sequence-sequence <= uint16(MaxBufferPackets) {
		i--
	}
	if i < len(q.pending) && q.pending[i].sequence == sequence {
		return ErrDuplicate
	}

	lastSeq := sequence
	if len(q.pending) > 0 {
		lastSeq = q.pending[len(q.pending)-1].sequence + 1
	}
	if lastSeq <= sequence {
		lost := sequence - lastSeq
		q.prebufferRemaining = subSat(q.prebufferRemaining, samples)
		q.prebufferRemaining = subSat(q.prebufferRemaining, int(lost)*q.lastFrameSamples)
	}

	q.bufferedSamples += samples
	q.pending = slices.Insert(q.pending, i, entry{sequence: sequence, payload: payload, samples: samples})
	return nil
}

// Take produces exactly length per-channel*ChannelCount float samples
// (stereo interleaved) unless the stream has ended, in which case it
// returns whatever was decoded before the sentinel and ended=true.
func (q *Queue) Take(length int) (pcm []float32, ended bool) {
	if q.prebufferRemaining > 0 {
		if q.prebufferedFor >= MaxBufferTime {
			q.prebufferRemaining = 0
			q.prebufferedFor = 0
		} else {
			q.prebufferedFor += length
			return nil, false
		}
	}

	if q.decodedPos > 0 {
		q.decoded = append(q.decoded[:0], q.decoded[q.decodedPos:]...)
	}
	q.decodedPos = len(q.decoded)

	for len(q.decoded) < length {
		more := q.decodeOne()
		if !more {
			return q.decoded, true
		}
		if q.lastFrameSamples == 0 {
			break
		}
		q.adapt()
	}

	if len(q.decoded) < length {
		q.decoded = append(q.decoded, make([]float32, length-len(q.decoded))...)
	}
	q.decodedPos = length
	return q.decoded[:length], false
}

// decodeOne pops (or conceals for) one front entry and decodes it into
// q.decoded. Returns false if the popped entry was the end-of-stream
// sentinel.
func (q *Queue) decodeOne() bool {
	if len(q.pending) == 0 {
		q.decodePacket(nil, false)
		return true
	}

	e := q.pending[0]
	q.pending = q.pending[1:]
	if len(e.payload) <= 1 {
		return false
	}

	q.bufferedSamples -= e.samples
	curSeq := q.nextSeq
	q.nextSeq++
	if e.sequence != curSeq {
		if e.sequence == q.nextSeq {
			q.decodePacket(&e, true)
		} else {
			q.decodePacket(nil, false)
		}
		q.bufferedSamples += e.samples
		q.pending = slices.Insert(q.pending, 0, e)
	} else {
		q.decodePacket(&e, false)
	}
	return true
}

// decodePacket runs one Opus decode (real, FEC, or PLC-concealment) and
// appends the result to q.decoded, updating loss/occupancy bookkeeping.
func (q *Queue) decodePacket(e *entry, fec bool) {
	var payload []byte
	requestedLen := q.lastFrameSamples
	if e != nil {
		payload = e.payload
		requestedLen = e.samples
	}
	q.consecutiveLoss++

	start := len(q.decoded)
	q.decoded = append(q.decoded, make([]float32, requestedLen*ChannelCount)...)

	var (
		actual int
		err    error
	)
	switch {
	case e != nil && fec:
		err = q.decoder.DecodeFEC(payload, q.decoded[start:])
		actual = requestedLen
	case e != nil:
		actual, err = q.decoder.Decode(payload, q.decoded[start:])
	default:
		actual, err = q.decoder.Decode(nil, q.decoded[start:])
	}
	if err != nil {
		// Decoder failure during concealment: the pre-zeroed scratch
		// already holds silence of the expected length.
		actual = requestedLen
	}

	q.lastFrameSamples = actual
	q.decoded = q.decoded[:start+actual*ChannelCount]

	if e != nil && !fec {
		q.consecutiveLoss = 0
	}

	q.observe(q.occupancy())
}

// occupancy estimates current buffer occupancy, in per-channel samples,
// including holes the sender has not yet filled.
func (q *Queue) occupancy() int {
	total := q.bufferedSamples
	if len(q.pending) > 0 {
		back := q.pending[len(q.pending)-1]
		gaps := int(back.sequence-q.nextSeq) + 1 - len(q.pending)
		total += gaps * q.lastFrameSamples
	}
	return total
}

// observe converts a per-channel sample count into usual frames and pushes
// it into both extreme trackers.
func (q *Queue) observe(totalSamples int) {
	frames := totalSamples / UsualFrameSamples
	if frames > 255 {
		return
	}
	v := uint8(frames)
	q.sizeMin.Push(v)
	q.sizeMax.Push(v)
}

// adapt runs the truncate/speed-up adaptation pass after a decode.
func (q *Queue) adapt() {
	min := int(q.sizeMin.Get())
	dev := int(q.sizeMax.Get()) - min
	switch {
	case min > maxUsualFramesBuffered:
		q.truncate(min)
	case min > dev:
		q.speedUp()
	}
}

// truncate discards pending entries from the front until only the most
// recent min+1 usual frames' worth remain, intentionally skipping over any
// holes rather than stretching silence.
func (q *Queue) truncate(min int) {
	threshold := (min + 1) * UsualFrameSamples
	keepSamples := 0
	keep := 0
	for i := len(q.pending) - 1; i >= 0; i-- {
		keepSamples += q.pending[i].samples
		if keepSamples >= threshold {
			break
		}
		keep++
	}
	drop := len(q.pending) - keep
	if drop > 0 {
		q.pending = q.pending[drop:]
	}
	total := 0
	for _, e := range q.pending {
		total += e.samples
	}
	q.bufferedSamples = total
	if len(q.pending) > 0 {
		q.nextSeq = q.pending[0].sequence
	}
}

// speedUp drops one stereo sample every SpeedChangeSteps per-channel
// samples from the frame just decoded.
func (q *Queue) speedUp() {
	frameStart := len(q.decoded) - q.lastFrameSamples*ChannelCount
	if frameStart < 0 {
		frameStart = 0
	}
	drops := q.lastFrameSamples / SpeedChangeSteps
	for i := 0; i < drops; i++ {
		idx := frameStart + i*(SpeedChangeSteps-1)*ChannelCount
		if idx+ChannelCount > len(q.decoded) {
			break
		}
		q.decoded = append(q.decoded[:idx], q.decoded[idx+ChannelCount:]...)
	}
}

func subSat(a, b int) int {
	if b >= a {
		return 0
	}
	return a - b
}

// sampleCountOf returns the per-channel sample count a payload decodes to:
// 0 for a sentinel (len <= 1), otherwise parsed from its Opus TOC byte.
func sampleCountOf(payload []byte) (int, error) {
	if len(payload) <= 1 {
		return 0, nil
	}
	return opusdec.SampleCount(payload[0], SampleRate)
}
