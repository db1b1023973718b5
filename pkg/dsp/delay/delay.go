// Package delay provides delay line implementations for audio effects.
package delay

// Line implements a delay line with first-order allpass fractional-delay
// interpolation, rather than plain linear interpolation between the two
// nearest samples: the allpass filter carries one sample of its own output
// as state, trading a short settling transient for a flatter frequency
// response across the fractional part of the delay.
type Line struct {
	buffer     []float32
	bufferSize int
	writePos   int
	sampleRate float64
	apState    float32
}

// New creates a new delay line with the specified maximum delay time.
func New(maxDelaySeconds, sampleRate float64) *Line {
	bufferSize := int(maxDelaySeconds*sampleRate) + 1
	return &Line{
		buffer:     make([]float32, bufferSize),
		bufferSize: bufferSize,
		sampleRate: sampleRate,
	}
}

// Reset clears the delay buffer and the interpolator state.
func (d *Line) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}
	d.writePos = 0
	d.apState = 0
}

// Write adds a sample to the delay line.
func (d *Line) Write(sample float32) {
	d.buffer[d.writePos] = sample
	d.writePos++
	if d.writePos >= d.bufferSize {
		d.writePos = 0
	}
}

// Read returns a delayed sample (delay in samples), interpolating the
// fractional part with a first-order allpass filter: a = frac/(2-frac),
// y = a*x1 + x0 - a*y_prev, where x0 is the older of the two neighbouring
// samples, so an integer delay returns x0 exactly.
func (d *Line) Read(delaySamples float64) float32 {
	readPos := float64(d.writePos) - delaySamples
	for readPos < 0 {
		readPos += float64(d.bufferSize)
	}

	intPos := int(readPos) % d.bufferSize
	frac := float32(readPos - float64(int(readPos)))

	x0 := d.buffer[intPos]
	x1 := d.buffer[(intPos+1)%d.bufferSize]

	a := frac / (2.0 - frac)
	out := a*x1 + x0 - a*d.apState
	d.apState = out
	return out
}
