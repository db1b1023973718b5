package nodes

import "github.com/justyntemme/lightningbeam-daw/pkg/graph"

const bpmParamSmoothing = iota

// BpmDetector estimates tempo from an audio input by measuring the
// interval between energy onsets (simple threshold-crossing of a
// rectified, smoothed envelope): the interval between the two most recent
// onsets gives the target tempo, which is smoothed once per block. It
// outputs the estimate as CV scaled bpm/1000 (120 BPM -> 0.12), matching
// the original detector's CV convention.
type BpmDetector struct {
	Base
	sampleRate float64

	envelope    float32
	lastOnset   bool
	samplesSinceOnset int
	intervalEstimate  float64 // samples between onsets
	smoothedBPM       float64
}

func NewBpmDetector(sampleRate float64) *BpmDetector {
	return &BpmDetector{
		Base: newBase("bpm_detector", graph.CategoryUtility,
			[]graph.Port{{Name: "in", Kind: graph.Audio}},
			[]graph.Port{{Name: "bpm_cv", Kind: graph.CV}},
			[]graph.ParamInfo{{ID: bpmParamSmoothing, Name: "smoothing", Min: 0, Max: 1, Default: 0.9, Unit: graph.UnitPercent}}),
		sampleRate:   sampleRate,
		smoothedBPM:  120,
	}
}

const bpmOnsetThreshold = 0.3
const bpmEnvelopeAttack = 0.3
const bpmEnvelopeRelease = 0.01

func (n *BpmDetector) Process(inputs []graph.Buffer, outputs []graph.Buffer, _, _ [][]graph.MIDIEvent, sampleRate float64) {
	out := outputs[0]
	smoothing := n.params.Get(bpmParamSmoothing)

	in := inputs[0]
	if len(in) == 0 {
		cv := float32(n.smoothedBPM / 1000.0)
		for i := range out {
			out[i] = cv
		}
		return
	}

	frames := len(in) / 2
	for i := 0; i < frames; i++ {
		rect := in[i*2]
		if rect < 0 {
			rect = -rect
		}
		r2 := in[i*2+1]
		if r2 < 0 {
			r2 = -r2
		}
		if r2 > rect {
			rect = r2
		}

		if rect > n.envelope {
			n.envelope += (rect - n.envelope) * bpmEnvelopeAttack
		} else {
			n.envelope += (rect - n.envelope) * bpmEnvelopeRelease
		}

		onset := n.envelope > bpmOnsetThreshold
		n.samplesSinceOnset++
		if onset && !n.lastOnset {
			if n.samplesSinceOnset > int(sampleRate*0.2) { // ignore intervals under 0.2 s (above 300 BPM)
				n.intervalEstimate = float64(n.samplesSinceOnset)
			}
			n.samplesSinceOnset = 0
		}
		n.lastOnset = onset
	}

	target := n.smoothedBPM
	if n.intervalEstimate > 0 {
		target = 60.0 * sampleRate / n.intervalEstimate
	}
	n.smoothedBPM = n.smoothedBPM*float64(smoothing) + target*(1-float64(smoothing))

	cv := float32(n.smoothedBPM / 1000.0)
	for i := range out {
		out[i] = cv
	}
}

func (n *BpmDetector) Reset() {
	n.envelope = 0
	n.lastOnset = false
	n.samplesSinceOnset = 0
	n.intervalEstimate = 0
	n.smoothedBPM = 120
}

func (n *BpmDetector) Clone() graph.Node {
	c := NewBpmDetector(n.sampleRate)
	c.params.Set(bpmParamSmoothing, n.params.Get(bpmParamSmoothing))
	return c
}
