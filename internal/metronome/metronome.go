// Package metronome generates a precomputed click track mixed into the
// master bus during playback, deterministic across runs so recordings
// and golden-output tests are reproducible.
package metronome

import "math"

const clickDurationMs = 10.0

// Metronome tracks beat position against a playhead in samples and mixes
// pre-generated woodblock-style clicks into an output buffer.
type Metronome struct {
	enabled bool
	bpm     float64
	tsNum   uint32
	tsDenom uint32
	lastBeat int64 // -1 = none yet

	highClick []float32 // accent, beat 1 of each measure
	lowClick  []float32 // every other beat

	clickPos        int
	playingHigh     bool
	justEnabled     bool
	sampleRate      int
}

// New builds a Metronome with its click samples pre-generated for
// sampleRate, disabled, at 120 BPM 4/4.
func New(sampleRate int) *Metronome {
	m := &Metronome{
		bpm:        120,
		tsNum:      4,
		tsDenom:    4,
		lastBeat:   -1,
		sampleRate: sampleRate,
	}
	m.highClick, m.lowClick = generateClicks(sampleRate)
	return m
}

// generateClicks synthesises the accent and normal click waveforms. The
// noise term is a deterministic function of sample index, not a random
// signal, so the click track is bit-identical across runs.
func generateClicks(sampleRate int) (high, low []float32) {
	n := int(float64(sampleRate) * clickDurationMs / 1000.0)
	high = make([]float32, n)
	low = make([]float32, n)

	for i := 0; i < n; i++ {
		t := float64(i) / float64(sampleRate)
		env := 1.0 - float64(i)/float64(n)
		env *= env
		noise := math.Sin(float64(i)*0.1) * 0.1

		h := 0.3*math.Sin(2*math.Pi*1200*t) + 0.2*math.Sin(2*math.Pi*2400*t)
		high[i] = float32((h + noise) * env * 0.5)

		l := 0.3*math.Sin(2*math.Pi*800*t) + 0.2*math.Sin(2*math.Pi*1600*t)
		low[i] = float32((l + noise) * env * 0.4)
	}
	return high, low
}

// SetEnabled toggles the metronome. Enabling mid-transport suppresses the
// click until the next beat boundary, rather than firing immediately on
// whatever beat is currently in progress.
func (m *Metronome) SetEnabled(enabled bool) {
	m.enabled = enabled
	if !enabled {
		m.lastBeat = -1
		m.clickPos = 0
		m.justEnabled = false
		return
	}
	m.justEnabled = true
	m.clickPos = len(m.highClick)
}

// UpdateTiming changes BPM and time signature; takes effect on the next
// beat-boundary check.
func (m *Metronome) UpdateTiming(bpm float64, num, denom uint32) {
	m.bpm = bpm
	m.tsNum = num
	m.tsDenom = denom
}

// Process mixes click samples into output (interleaved, channels-wide)
// for the block starting at playheadSamples, if enabled and playing.
func (m *Metronome) Process(output []float32, playheadSamples uint64, playing bool, sampleRate, channels int) {
	if !m.enabled || !playing {
		m.clickPos = 0
		return
	}

	frames := len(output) / channels
	beatsPerSecond := m.bpm / 60.0

	for frame := 0; frame < frames; frame++ {
		currentSample := playheadSamples + uint64(frame)
		currentTime := float64(currentSample) / float64(sampleRate)
		currentBeat := int64(math.Floor(currentTime * beatsPerSecond))

		if currentBeat != m.lastBeat && currentBeat >= 0 {
			m.lastBeat = currentBeat
			onCrossing := currentSample == 0 ||
				int64(math.Floor(float64(currentSample-1)/float64(sampleRate)*beatsPerSecond)) != currentBeat
			if !m.justEnabled || onCrossing {
				beatInMeasure := uint32(currentBeat) % m.tsNum
				m.playingHigh = beatInMeasure == 0
				m.clickPos = 0
			} else {
				m.clickPos = len(m.highClick)
			}
			m.justEnabled = false
		}

		click := m.lowClick
		if m.playingHigh {
			click = m.highClick
		}
		if m.clickPos < len(click) {
			s := click[m.clickPos]
			for ch := 0; ch < channels; ch++ {
				output[frame*channels+ch] += s
			}
			m.clickPos++
		}
	}
}

// Enabled reports whether the metronome is currently on.
func (m *Metronome) Enabled() bool { return m.enabled }
