// Package audiopool stores decoded audio file content behind stable,
// write-once indices so the audio thread can render from it without
// locking. Mutating operations (Add/Remove) run on the controller thread;
// RenderFromFile only ever reads, and never allocates.
package audiopool

import "math"

// Sample is one fully-decoded audio file: interleaved float32 samples at
// its native channel count and sample rate. Never mutated after Add.
type Sample struct {
	Data       []float32
	Channels   int
	SampleRate int
}

// Frames returns the number of sample frames (one value per channel).
func (s *Sample) Frames() int {
	if s.Channels == 0 {
		return 0
	}
	return len(s.Data) / s.Channels
}

// Pool maps stable indices to decoded Samples.
type Pool struct {
	samples []*Sample
}

// New creates an empty pool.
func New() *Pool {
	return &Pool{}
}

// Add stores a decoded sample and returns its stable index. Indices are
// assigned in insertion order and never reused, even across Remove, so a
// clip referencing an index either sees the original sample or a removed
// placeholder, never a different sample.
func (p *Pool) Add(s *Sample) int {
	p.samples = append(p.samples, s)
	return len(p.samples) - 1
}

// Remove clears the sample at index, replacing it with a placeholder so
// the index remains stable but renders silence.
func (p *Pool) Remove(index int) {
	if index < 0 || index >= len(p.samples) {
		return
	}
	p.samples[index] = nil
}

// Get returns the sample at index, or nil if out of range or removed.
func (p *Pool) Get(index int) *Sample {
	if index < 0 || index >= len(p.samples) {
		return nil
	}
	return p.samples[index]
}

// Len returns the number of slots in the pool (including removed ones).
func (p *Pool) Len() int { return len(p.samples) }

// RenderFromFile reads out.Channels-interleaved, out.SampleRate samples of
// the pool entry at index starting at positionSeconds, resampling with
// linear interpolation, converting channel count (mono<->stereo only),
// scaling by gain, and accumulating additively into out. Returns the
// number of frames actually produced before the source or out ran out.
// Performs no allocation; deterministic for a given (index, out length,
// positionSeconds, gain, outSampleRate, outChannels) so repeated reads are
// bit-identical.
func (p *Pool) RenderFromFile(index int, out []float32, positionSeconds float64, gain float32, outSampleRate, outChannels int) int {
	s := p.Get(index)
	if s == nil || outChannels <= 0 {
		return 0
	}

	outFrames := len(out) / outChannels
	srcFrames := s.Frames()
	if srcFrames == 0 {
		return 0
	}

	ratio := float64(s.SampleRate) / float64(outSampleRate)
	startFrame := positionSeconds * float64(s.SampleRate)

	produced := 0
	for i := 0; i < outFrames; i++ {
		srcPos := startFrame + float64(i)*ratio
		if srcPos < 0 || srcPos >= float64(srcFrames-1) {
			if srcPos >= float64(srcFrames-1) {
				break
			}
			continue
		}

		lo := int(math.Floor(srcPos))
		frac := float32(srcPos - float64(lo))

		for ch := 0; ch < outChannels; ch++ {
			srcCh := ch
			if s.Channels == 1 {
				srcCh = 0
			} else if srcCh >= s.Channels {
				srcCh = s.Channels - 1
			}
			a := s.Data[lo*s.Channels+srcCh]
			b := s.Data[(lo+1)*s.Channels+srcCh]
			v := (a + (b-a)*frac) * gain
			out[i*outChannels+ch] += v
		}
		produced++
	}
	return produced
}
