// Package reverb provides reverb algorithms for the effect chain.
package reverb

import (
	"math"
)

// Freeverb tuning constants (scaled for 44.1kHz).
const (
	numCombs     = 8
	numAllpasses = 4
	fixedGain    = 0.015
	scaleDamping = 0.4
	scaleRoom    = 0.28
	offsetRoom   = 0.7
	initialRoom  = 0.5
	initialDamp  = 0.5
	initialWet   = 1.0 / 3.0
	initialDry   = 0.0
	initialWidth = 1.0
	stereoSpread = 23

	freezeRoom = 1.0
	freezeDamp = 0.0
)

var combTuning = [numCombs]int{
	1116, 1188, 1277, 1356, 1422, 1491, 1557, 1617,
}

var allpassTuning = [numAllpasses]int{
	556, 441, 341, 225,
}

// combFilter is a feedback comb filter whose damping is a cascaded two-pole
// lowpass rather than the single one-pole smoother a plain Freeverb uses;
// the extra pole rolls off the high end of the tail a bit faster, which
// keeps long decays from turning metallic at high room-size settings.
type combFilter struct {
	buffer     []float32
	bufferIdx  int
	feedback   float64
	lpState1   float32
	lpState2   float32
	damp1      float64
	damp2      float64
}

func newCombFilter(delaySamples int) *combFilter {
	return &combFilter{
		buffer:   make([]float32, delaySamples),
		feedback: 0.5,
		damp1:    0.5,
		damp2:    0.5,
	}
}

func (c *combFilter) setFeedback(feedback float64) {
	c.feedback = math.Max(0.0, math.Min(1.0, feedback))
}

func (c *combFilter) setDamping(damping float64) {
	c.damp1 = damping
	c.damp2 = 1.0 - damping
}

func (c *combFilter) process(input float32) float32 {
	out := c.buffer[c.bufferIdx]

	c.lpState1 = float32(float64(out)*c.damp2 + float64(c.lpState1)*c.damp1)
	c.lpState2 = float32(float64(c.lpState1)*c.damp2 + float64(c.lpState2)*c.damp1)

	c.buffer[c.bufferIdx] = input + float32(c.feedback)*c.lpState2

	c.bufferIdx++
	if c.bufferIdx >= len(c.buffer) {
		c.bufferIdx = 0
	}
	return out
}

func (c *combFilter) reset() {
	for i := range c.buffer {
		c.buffer[i] = 0
	}
	c.bufferIdx = 0
	c.lpState1 = 0
	c.lpState2 = 0
}

// allpassFilter diffuses the comb output. A fixed feedback coefficient works
// for every delay length, so it isn't exposed as a parameter.
type allpassFilter struct {
	buffer    []float32
	bufferIdx int
	feedback  float64
}

func newAllpassFilter(delaySamples int) *allpassFilter {
	return &allpassFilter{
		buffer:   make([]float32, delaySamples),
		feedback: 0.5,
	}
}

func (a *allpassFilter) process(input float32) float32 {
	bufOut := a.buffer[a.bufferIdx]
	out := -input + bufOut
	a.buffer[a.bufferIdx] = input + float32(a.feedback)*bufOut

	a.bufferIdx++
	if a.bufferIdx >= len(a.buffer) {
		a.bufferIdx = 0
	}
	return out
}

func (a *allpassFilter) reset() {
	for i := range a.buffer {
		a.buffer[i] = 0
	}
	a.bufferIdx = 0
}

// Freeverb implements the Freeverb algorithm (Jezar at Dreampoint): parallel
// comb filters in series with allpass diffusers. The two inputs are summed
// to mono before the filters; the left and right filter banks use slightly
// different delay lengths, which is where the stereo width comes from.
type Freeverb struct {
	combL [numCombs]*combFilter
	combR [numCombs]*combFilter

	allpassL [numAllpasses]*allpassFilter
	allpassR [numAllpasses]*allpassFilter

	gain       float64
	roomSize   float64
	damping    float64
	wetLevel   float64
	dryLevel   float64
	width      float64
	mode       float64
	sampleRate float64

	wet1, wet2 float64
	dry        float64
}

// NewFreeverb creates a new Freeverb reverb instance.
func NewFreeverb(sampleRate float64) *Freeverb {
	f := &Freeverb{
		gain:       fixedGain,
		roomSize:   initialRoom,
		damping:    initialDamp,
		wetLevel:   initialWet,
		dryLevel:   initialDry,
		width:      initialWidth,
		sampleRate: sampleRate,
	}

	scale := sampleRate / 44100.0

	for i := 0; i < numCombs; i++ {
		f.combL[i] = newCombFilter(int(float64(combTuning[i]) * scale))
		f.combR[i] = newCombFilter(int(float64(combTuning[i]+stereoSpread) * scale))
	}

	for i := 0; i < numAllpasses; i++ {
		f.allpassL[i] = newAllpassFilter(int(float64(allpassTuning[i]) * scale))
		f.allpassR[i] = newAllpassFilter(int(float64(allpassTuning[i]+stereoSpread) * scale))
	}

	f.update()
	return f
}

// SetRoomSize sets the room size (0-1).
func (f *Freeverb) SetRoomSize(size float64) {
	f.roomSize = math.Max(0.0, math.Min(1.0, size))
	f.update()
}

// SetDamping sets the damping amount (0-1).
func (f *Freeverb) SetDamping(damping float64) {
	f.damping = math.Max(0.0, math.Min(1.0, damping))
	f.update()
}

// SetWetLevel sets the wet signal level (0-1).
func (f *Freeverb) SetWetLevel(level float64) {
	f.wetLevel = math.Max(0.0, math.Min(1.0, level))
	f.update()
}

// SetDryLevel sets the dry signal level (0-1).
func (f *Freeverb) SetDryLevel(level float64) {
	f.dryLevel = math.Max(0.0, math.Min(1.0, level))
	f.update()
}

// SetWidth sets the stereo width (0-1).
func (f *Freeverb) SetWidth(width float64) {
	f.width = math.Max(0.0, math.Min(1.0, width))
	f.update()
}

// SetMode sets freeze mode: 0 is normal decay, 1 sustains indefinitely.
func (f *Freeverb) SetMode(mode float64) {
	f.mode = math.Max(0.0, math.Min(1.0, mode))
	f.update()
}

func (f *Freeverb) update() {
	f.wet1 = f.wetLevel * (f.width/2.0 + 0.5)
	f.wet2 = f.wetLevel * ((1.0 - f.width) / 2.0)
	f.dry = f.dryLevel

	roomSize, damping := f.roomSize, f.damping
	if f.mode >= 0.5 {
		roomSize, damping = freezeRoom, freezeDamp
	}

	feedback := roomSize*scaleRoom + offsetRoom
	damp := damping * scaleDamping

	for i := 0; i < numCombs; i++ {
		f.combL[i].setFeedback(feedback)
		f.combR[i].setFeedback(feedback)
		f.combL[i].setDamping(damp)
		f.combR[i].setDamping(damp)
	}
}

// ProcessStereo processes one stereo sample through the reverb.
func (f *Freeverb) ProcessStereo(inputL, inputR float32) (outputL, outputR float32) {
	input := (inputL + inputR) * float32(f.gain)

	var outL, outR float32
	for i := 0; i < numCombs; i++ {
		outL += f.combL[i].process(input)
		outR += f.combR[i].process(input)
	}

	for i := 0; i < numAllpasses; i++ {
		outL = f.allpassL[i].process(outL)
		outR = f.allpassR[i].process(outR)
	}

	outputL = outL*float32(f.wet1) + outR*float32(f.wet2) + inputL*float32(f.dry)
	outputR = outR*float32(f.wet1) + outL*float32(f.wet2) + inputR*float32(f.dry)
	return outputL, outputR
}

// Process processes a mono input sample.
func (f *Freeverb) Process(input float32) float32 {
	outputL, _ := f.ProcessStereo(input, input)
	return outputL
}

// Reset clears all internal filter state.
func (f *Freeverb) Reset() {
	for i := 0; i < numCombs; i++ {
		f.combL[i].reset()
		f.combR[i].reset()
	}
	for i := 0; i < numAllpasses; i++ {
		f.allpassL[i].reset()
		f.allpassR[i].reset()
	}
}

// SetPresetSmallRoom configures a small room sound.
func (f *Freeverb) SetPresetSmallRoom() {
	f.SetRoomSize(0.3)
	f.SetDamping(0.75)
	f.SetWetLevel(0.25)
	f.SetDryLevel(0.75)
	f.SetWidth(0.5)
}

// SetPresetMediumHall configures a medium hall sound.
func (f *Freeverb) SetPresetMediumHall() {
	f.SetRoomSize(0.6)
	f.SetDamping(0.5)
	f.SetWetLevel(0.35)
	f.SetDryLevel(0.65)
	f.SetWidth(0.75)
}

// SetPresetLargeHall configures a large hall sound.
func (f *Freeverb) SetPresetLargeHall() {
	f.SetRoomSize(0.85)
	f.SetDamping(0.3)
	f.SetWetLevel(0.4)
	f.SetDryLevel(0.6)
	f.SetWidth(1.0)
}

// SetPresetCathedral configures a cathedral sound.
func (f *Freeverb) SetPresetCathedral() {
	f.SetRoomSize(0.95)
	f.SetDamping(0.1)
	f.SetWetLevel(0.5)
	f.SetDryLevel(0.5)
	f.SetWidth(1.0)
}
