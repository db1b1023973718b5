// Package oscillator provides audio oscillators for synthesis.
package oscillator

import "math"

// Oscillator generates periodic waveforms from a phase accumulator,
// band-limiting the discontinuous edges of Saw/Square/Pulse with polyBLEP
// correction so they don't alias at audio frequencies.
type Oscillator struct {
	sampleRate float64
	frequency  float64
	phase      float64
	phaseInc   float64
}

// New creates a new oscillator.
func New(sampleRate float64) *Oscillator {
	o := &Oscillator{sampleRate: sampleRate}
	o.SetFrequency(440.0)
	return o
}

// SetFrequency sets the oscillator frequency.
func (o *Oscillator) SetFrequency(freq float64) {
	o.frequency = freq
	o.phaseInc = freq / o.sampleRate
}

// SetPhase sets the oscillator phase, wrapped to [0, 1).
func (o *Oscillator) SetPhase(phase float64) {
	o.phase = phase - math.Floor(phase)
}

// Reset resets the oscillator phase to 0.
func (o *Oscillator) Reset() {
	o.phase = 0.0
}

func (o *Oscillator) advance() {
	o.phase += o.phaseInc
	if o.phase >= 1.0 {
		o.phase -= math.Floor(o.phase)
	}
}

// polyBlep returns the polynomial band-limited step correction for a phase
// position t within one phaseInc-wide window of a discontinuity, zero
// elsewhere. Subtracting it from a naive sawtooth/square edge removes most
// of the aliasing energy the hard discontinuity would otherwise fold back
// into the audible band.
func polyBlep(t, dt float64) float64 {
	switch {
	case t < dt:
		t /= dt
		return t + t - t*t - 1
	case t > 1-dt:
		t = (t - 1) / dt
		return t*t + t + t + 1
	default:
		return 0
	}
}

// Sine generates a sine wave sample.
func (o *Oscillator) Sine() float32 {
	s := float32(math.Sin(2.0 * math.Pi * o.phase))
	o.advance()
	return s
}

// Saw generates a band-limited sawtooth sample.
func (o *Oscillator) Saw() float32 {
	s := 2.0*o.phase - 1.0
	s -= polyBlep(o.phase, o.phaseInc)
	o.advance()
	return float32(s)
}

// Square generates a band-limited square wave sample.
func (o *Oscillator) Square() float32 {
	var s float64
	if o.phase < 0.5 {
		s = 1.0
	} else {
		s = -1.0
	}
	s += polyBlep(o.phase, o.phaseInc)
	fallPhase := o.phase + 0.5
	fallPhase -= math.Floor(fallPhase)
	s -= polyBlep(fallPhase, o.phaseInc)
	o.advance()
	return float32(s)
}

// Pulse generates a band-limited pulse wave sample with variable width.
func (o *Oscillator) Pulse(width float64) float32 {
	var s float64
	if o.phase < width {
		s = 1.0
	} else {
		s = -1.0
	}
	s += polyBlep(o.phase, o.phaseInc)
	fallPhase := o.phase - width
	fallPhase -= math.Floor(fallPhase)
	s -= polyBlep(fallPhase, o.phaseInc)
	o.advance()
	return float32(s)
}

// Triangle generates a triangle wave sample.
func (o *Oscillator) Triangle() float32 {
	var s float32
	if o.phase < 0.5 {
		s = float32(4.0*o.phase - 1.0)
	} else {
		s = float32(3.0 - 4.0*o.phase)
	}
	o.advance()
	return s
}

// ProcessSine fills buffer with a sine wave, no allocations.
func (o *Oscillator) ProcessSine(buffer []float32) {
	for i := range buffer {
		buffer[i] = o.Sine()
	}
}

// ProcessSaw fills buffer with a band-limited sawtooth wave, no allocations.
func (o *Oscillator) ProcessSaw(buffer []float32) {
	for i := range buffer {
		buffer[i] = o.Saw()
	}
}

// ProcessSquare fills buffer with a band-limited square wave, no allocations.
func (o *Oscillator) ProcessSquare(buffer []float32) {
	for i := range buffer {
		buffer[i] = o.Square()
	}
}

// ProcessPulse fills buffer with a band-limited pulse wave, no allocations.
func (o *Oscillator) ProcessPulse(buffer []float32, width float64) {
	for i := range buffer {
		buffer[i] = o.Pulse(width)
	}
}

// ProcessTriangle fills buffer with a triangle wave, no allocations.
func (o *Oscillator) ProcessTriangle(buffer []float32) {
	for i := range buffer {
		buffer[i] = o.Triangle()
	}
}
