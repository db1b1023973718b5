package modulation

import (
	"math"
)

// Chorus implements a multi-voice chorus effect. Each voice reads its own
// LFO-modulated delay line, and voice output is panned across the stereo
// field so additional voices widen the sound rather than just thickening it.
type Chorus struct {
	sampleRate float64

	rate     float64
	depth    float64
	delay    float64
	mix      float64
	feedback float64
	spread   float64
	voices   int

	delayLinesL     [][]float32
	delayLinesR     [][]float32
	apStateL        []float32
	apStateR        []float32
	delayIndex      int
	maxDelaySamples int

	lfos []*LFO

	feedbackL float32
	feedbackR float32
}

// NewChorus creates a new chorus effect.
func NewChorus(sampleRate float64) *Chorus {
	c := &Chorus{
		sampleRate: sampleRate,
		rate:       0.5,
		depth:      2.0,
		delay:      20.0,
		mix:        0.5,
		feedback:   0.0,
		spread:     1.0,
	}
	c.SetVoices(2)
	return c
}

// SetRate sets the LFO rate in Hz.
func (c *Chorus) SetRate(hz float64) {
	c.rate = clampFloat(hz, 0.01, 10.0)
	for _, lfo := range c.lfos {
		lfo.SetFrequency(c.rate)
	}
}

// SetDepth sets the modulation depth in milliseconds.
func (c *Chorus) SetDepth(ms float64) {
	c.depth = clampFloat(ms, 0.0, 10.0)
}

// SetDelay sets the base delay time in milliseconds.
func (c *Chorus) SetDelay(ms float64) {
	c.delay = clampFloat(ms, 1.0, 50.0)
	c.updateDelayLines()
}

// SetMix sets the wet/dry mix (0=dry, 1=wet).
func (c *Chorus) SetMix(mix float64) {
	c.mix = clampFloat(mix, 0.0, 1.0)
}

// SetFeedback sets the feedback amount.
func (c *Chorus) SetFeedback(feedback float64) {
	c.feedback = clampFloat(feedback, 0.0, 0.5)
}

// SetSpread sets the stereo spread.
func (c *Chorus) SetSpread(spread float64) {
	c.spread = clampFloat(spread, 0.0, 1.0)
}

// SetVoices sets the number of chorus voices (1-4), each with its own LFO
// phase offset so voices don't modulate in lockstep.
func (c *Chorus) SetVoices(voices int) {
	if voices < 1 {
		voices = 1
	}
	if voices > 4 {
		voices = 4
	}
	c.voices = voices

	c.lfos = make([]*LFO, c.voices)
	for i := 0; i < c.voices; i++ {
		c.lfos[i] = NewLFO(c.sampleRate)
		c.lfos[i].SetFrequency(c.rate)
		c.lfos[i].SetWaveform(WaveformSine)
		c.lfos[i].SetPhase(float64(i) / float64(c.voices))
	}

	c.updateDelayLines()
}

func (c *Chorus) updateDelayLines() {
	maxDelayMs := c.delay + c.depth
	c.maxDelaySamples = int(maxDelayMs * c.sampleRate / 1000.0 * 1.2)

	c.delayLinesL = make([][]float32, c.voices)
	c.delayLinesR = make([][]float32, c.voices)
	c.apStateL = make([]float32, c.voices)
	c.apStateR = make([]float32, c.voices)

	for i := 0; i < c.voices; i++ {
		c.delayLinesL[i] = make([]float32, c.maxDelaySamples)
		c.delayLinesR[i] = make([]float32, c.maxDelaySamples)
	}

	c.delayIndex = 0
	c.feedbackL = 0
	c.feedbackR = 0
}

// Process processes a mono input sample.
func (c *Chorus) Process(input float32) (outputL, outputR float32) {
	return c.ProcessStereo(input, input)
}

// readVoice fetches a fractionally-delayed sample from voice v using a
// first-order allpass interpolator (see pkg/dsp/delay), which holds up
// better than linear interpolation as multiple voices sweep their delay
// simultaneously.
func (c *Chorus) readVoice(line []float32, apState *float32, delaySamples float64) float32 {
	readPos := float64(c.delayIndex) - delaySamples
	if readPos < 0 {
		readPos += float64(c.maxDelaySamples)
	}

	readIdx := int(readPos)
	frac := float32(readPos - float64(readIdx))

	idx1 := readIdx % c.maxDelaySamples
	idx2 := (readIdx + 1) % c.maxDelaySamples

	a := frac / (2 - frac)
	out := a*line[idx2] + line[idx1] - a*(*apState)
	*apState = out
	return out
}

// ProcessStereo processes one stereo sample.
func (c *Chorus) ProcessStereo(inputL, inputR float32) (outputL, outputR float32) {
	outputL = inputL * float32(1.0-c.mix)
	outputR = inputR * float32(1.0-c.mix)

	delayInputL := inputL + c.feedbackL*float32(c.feedback)
	delayInputR := inputR + c.feedbackR*float32(c.feedback)

	for v := 0; v < c.voices; v++ {
		c.delayLinesL[v][c.delayIndex] = delayInputL
		c.delayLinesR[v][c.delayIndex] = delayInputR
	}

	var wetL, wetR float32

	for v := 0; v < c.voices; v++ {
		lfoVal := c.lfos[v].Process()

		delayMs := c.delay + c.depth*lfoVal
		delaySamples := delayMs * c.sampleRate / 1000.0
		delaySamples = math.Max(1.0, math.Min(float64(c.maxDelaySamples-1), delaySamples))

		sampleL := c.readVoice(c.delayLinesL[v], &c.apStateL[v], delaySamples)
		sampleR := c.readVoice(c.delayLinesR[v], &c.apStateR[v], delaySamples)

		if c.voices > 1 {
			pan := (float64(v)/float64(c.voices-1) - 0.5) * c.spread
			panL := float32(math.Cos((pan + 0.5) * math.Pi / 2))
			panR := float32(math.Sin((pan + 0.5) * math.Pi / 2))

			wetL += sampleL * panL / float32(c.voices)
			wetR += sampleR * panR / float32(c.voices)
		} else {
			wetL += sampleL
			wetR += sampleR
		}
	}

	c.feedbackL = wetL
	c.feedbackR = wetR

	outputL += wetL * float32(c.mix)
	outputR += wetR * float32(c.mix)

	c.delayIndex = (c.delayIndex + 1) % c.maxDelaySamples
	return outputL, outputR
}

// ProcessBuffer processes a mono buffer.
func (c *Chorus) ProcessBuffer(input, outputL, outputR []float32) {
	for i := range input {
		outputL[i], outputR[i] = c.Process(input[i])
	}
}

// ProcessStereoBuffer processes stereo buffers.
func (c *Chorus) ProcessStereoBuffer(inputL, inputR, outputL, outputR []float32) {
	for i := range inputL {
		outputL[i], outputR[i] = c.ProcessStereo(inputL[i], inputR[i])
	}
}

// Reset clears delay line and LFO state.
func (c *Chorus) Reset() {
	for v := 0; v < c.voices; v++ {
		for i := range c.delayLinesL[v] {
			c.delayLinesL[v][i] = 0
			c.delayLinesR[v][i] = 0
		}
		c.apStateL[v] = 0
		c.apStateR[v] = 0
	}

	for _, lfo := range c.lfos {
		lfo.Reset()
	}

	c.delayIndex = 0
	c.feedbackL = 0
	c.feedbackR = 0
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
