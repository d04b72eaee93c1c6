package pipeline

import (
	"voicebridge/bridge/adapters"
	"voicebridge/bridge/mixer"
)

// PipelineA2B is the pull-mode PCM source side B's own voice stack drives:
// a synchronous, non-suspending fill of the A-to-B mixer's current output.
// It implements adapters.PCMSource.
type PipelineA2B[ID comparable] struct {
	mixer *mixer.AudioHandler[ID]
}

// NewPipelineA2B wraps m as a pull-mode PCM source.
func NewPipelineA2B[ID comparable](m *mixer.AudioHandler[ID]) *PipelineA2B[ID] {
	return &PipelineA2B[ID]{mixer: m}
}

// ReadPCM zero-fills buf and sums every active speaker into it under the
// mixer's own lock. It never suspends: AudioHandler.Fill only decodes
// already-buffered Opus data and never blocks on I/O.
func (p *PipelineA2B[ID]) ReadPCM(buf []float32) {
	for i := range buf {
		buf[i] = 0
	}
	p.mixer.Fill(buf)
}

var _ adapters.PCMSource = (*PipelineA2B[string])(nil)
