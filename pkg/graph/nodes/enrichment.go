package nodes

import (
	"github.com/justyntemme/lightningbeam-daw/pkg/dsp/delay"
	"github.com/justyntemme/lightningbeam-daw/pkg/dsp/dynamics"
	"github.com/justyntemme/lightningbeam-daw/pkg/dsp/modulation"
	"github.com/justyntemme/lightningbeam-daw/pkg/dsp/reverb"
	"github.com/justyntemme/lightningbeam-daw/pkg/dsp/utility"
	"github.com/justyntemme/lightningbeam-daw/pkg/graph"
)

const (
	delayParamTime = iota
	delayParamFeedback
	delayParamMix
)

// Delay is a stereo feedback echo effect. Its time parameter is in
// seconds and does not follow the transport tempo.
type Delay struct {
	Base
	left, right   *delay.Line
	feedbackL     float32
	feedbackR     float32
	sampleRate    float64
}

func NewDelay(sampleRate float64) *Delay {
	return &Delay{
		Base: newBase("delay", graph.CategoryUtility,
			[]graph.Port{{Name: "in", Kind: graph.Audio}},
			[]graph.Port{{Name: "out", Kind: graph.Audio}},
			[]graph.ParamInfo{
				{ID: delayParamTime, Name: "time", Min: 0.001, Max: 2, Default: 0.25, Unit: graph.UnitSeconds},
				{ID: delayParamFeedback, Name: "feedback", Min: 0, Max: 0.95, Default: 0.3, Unit: graph.UnitPercent},
				{ID: delayParamMix, Name: "mix", Min: 0, Max: 1, Default: 0.4, Unit: graph.UnitPercent},
			}),
		left:       delay.New(2.0, sampleRate),
		right:      delay.New(2.0, sampleRate),
		sampleRate: sampleRate,
	}
}

func (n *Delay) Process(inputs []graph.Buffer, outputs []graph.Buffer, _ [][]graph.MIDIEvent, _ [][]graph.MIDIEvent, _ float64) {
	delaySamples := n.params.Get(delayParamTime) * n.sampleRate
	feedback := float32(n.params.Get(delayParamFeedback))
	mix := float32(n.params.Get(delayParamMix))

	in := inputs[0]
	out := outputs[0]
	frames := len(out) / 2
	for i := 0; i < frames; i++ {
		dl := n.left.Read(delaySamples)
		dr := n.right.Read(delaySamples)
		n.left.Write(in[i*2] + dl*feedback)
		n.right.Write(in[i*2+1] + dr*feedback)
		out[i*2] = in[i*2]*(1-mix) + dl*mix
		out[i*2+1] = in[i*2+1]*(1-mix) + dr*mix
	}
}

func (n *Delay) Reset() { n.left.Reset(); n.right.Reset() }
func (n *Delay) Clone() graph.Node {
	c := NewDelay(n.sampleRate)
	for _, info := range n.params.List() {
		c.params.Set(info.ID, n.params.Get(info.ID))
	}
	return c
}

const (
	chorusParamRate = iota
	chorusParamDepth
	chorusParamMix
)

// Chorus thickens a signal with detuned, delayed copies.
type Chorus struct {
	Base
	chorus     *modulation.Chorus
	sampleRate float64
}

func NewChorus(sampleRate float64) *Chorus {
	return &Chorus{
		Base: newBase("chorus", graph.CategoryModulation,
			[]graph.Port{{Name: "in", Kind: graph.Audio}},
			[]graph.Port{{Name: "out", Kind: graph.Audio}},
			[]graph.ParamInfo{
				{ID: chorusParamRate, Name: "rate", Min: 0.05, Max: 10, Default: 0.5, Unit: graph.UnitHz},
				{ID: chorusParamDepth, Name: "depth", Min: 0, Max: 10, Default: 3, Unit: graph.UnitRaw},
				{ID: chorusParamMix, Name: "mix", Min: 0, Max: 1, Default: 0.5, Unit: graph.UnitPercent},
			}),
		chorus:     modulation.NewChorus(sampleRate),
		sampleRate: sampleRate,
	}
}

func (n *Chorus) Process(inputs []graph.Buffer, outputs []graph.Buffer, _ [][]graph.MIDIEvent, _ [][]graph.MIDIEvent, _ float64) {
	n.chorus.SetRate(n.params.Get(chorusParamRate))
	n.chorus.SetDepth(n.params.Get(chorusParamDepth))
	n.chorus.SetMix(n.params.Get(chorusParamMix))

	in := inputs[0]
	out := outputs[0]
	frames := len(out) / 2
	for i := 0; i < frames; i++ {
		l, r := n.chorus.ProcessStereo(in[i*2], in[i*2+1])
		out[i*2] = l
		out[i*2+1] = r
	}
}

func (n *Chorus) Reset() { n.chorus.Reset() }
func (n *Chorus) Clone() graph.Node {
	c := NewChorus(n.sampleRate)
	for _, info := range n.params.List() {
		c.params.Set(info.ID, n.params.Get(info.ID))
	}
	return c
}

const (
	flangerParamRate = iota
	flangerParamDepth
	flangerParamFeedback
	flangerParamMix
)

// Flanger is a short modulated comb-filter sweep.
type Flanger struct {
	Base
	left, right *modulation.Flanger
	sampleRate  float64
}

func NewFlanger(sampleRate float64) *Flanger {
	return &Flanger{
		Base: newBase("flanger", graph.CategoryModulation,
			[]graph.Port{{Name: "in", Kind: graph.Audio}},
			[]graph.Port{{Name: "out", Kind: graph.Audio}},
			[]graph.ParamInfo{
				{ID: flangerParamRate, Name: "rate", Min: 0.02, Max: 10, Default: 0.25, Unit: graph.UnitHz},
				{ID: flangerParamDepth, Name: "depth", Min: 0, Max: 5, Default: 2, Unit: graph.UnitRaw},
				{ID: flangerParamFeedback, Name: "feedback", Min: -0.95, Max: 0.95, Default: 0.5, Unit: graph.UnitPercent},
				{ID: flangerParamMix, Name: "mix", Min: 0, Max: 1, Default: 0.5, Unit: graph.UnitPercent},
			}),
		left:       modulation.NewFlanger(sampleRate),
		right:      modulation.NewFlanger(sampleRate),
		sampleRate: sampleRate,
	}
}

func (n *Flanger) Process(inputs []graph.Buffer, outputs []graph.Buffer, _ [][]graph.MIDIEvent, _ [][]graph.MIDIEvent, _ float64) {
	rate := n.params.Get(flangerParamRate)
	depth := n.params.Get(flangerParamDepth)
	fb := n.params.Get(flangerParamFeedback)
	mix := n.params.Get(flangerParamMix)
	for _, f := range []*modulation.Flanger{n.left, n.right} {
		f.SetRate(rate)
		f.SetDepth(depth)
		f.SetFeedback(fb)
		f.SetMix(mix)
	}

	in := inputs[0]
	out := outputs[0]
	frames := len(out) / 2
	for i := 0; i < frames; i++ {
		out[i*2] = n.left.Process(in[i*2])
		out[i*2+1] = n.right.Process(in[i*2+1])
	}
}

func (n *Flanger) Reset() { n.left.Reset(); n.right.Reset() }
func (n *Flanger) Clone() graph.Node {
	c := NewFlanger(n.sampleRate)
	for _, info := range n.params.List() {
		c.params.Set(info.ID, n.params.Get(info.ID))
	}
	return c
}

const (
	phaserParamRate = iota
	phaserParamDepth
	phaserParamFeedback
	phaserParamMix
)

// Phaser sweeps a bank of all-pass filters for a notch-comb swirl.
type Phaser struct {
	Base
	phaser     *modulation.Phaser
	sampleRate float64
}

func NewPhaser(sampleRate float64) *Phaser {
	return &Phaser{
		Base: newBase("phaser", graph.CategoryModulation,
			[]graph.Port{{Name: "in", Kind: graph.Audio}},
			[]graph.Port{{Name: "out", Kind: graph.Audio}},
			[]graph.ParamInfo{
				{ID: phaserParamRate, Name: "rate", Min: 0.02, Max: 10, Default: 0.5, Unit: graph.UnitHz},
				{ID: phaserParamDepth, Name: "depth", Min: 0, Max: 1, Default: 0.7, Unit: graph.UnitPercent},
				{ID: phaserParamFeedback, Name: "feedback", Min: 0, Max: 0.95, Default: 0.3, Unit: graph.UnitPercent},
				{ID: phaserParamMix, Name: "mix", Min: 0, Max: 1, Default: 0.5, Unit: graph.UnitPercent},
			}),
		phaser:     modulation.NewPhaser(sampleRate),
		sampleRate: sampleRate,
	}
}

func (n *Phaser) Process(inputs []graph.Buffer, outputs []graph.Buffer, _ [][]graph.MIDIEvent, _ [][]graph.MIDIEvent, _ float64) {
	n.phaser.SetRate(n.params.Get(phaserParamRate))
	n.phaser.SetDepth(n.params.Get(phaserParamDepth))
	n.phaser.SetFeedback(n.params.Get(phaserParamFeedback))
	n.phaser.SetMix(n.params.Get(phaserParamMix))

	in := inputs[0]
	out := outputs[0]
	frames := len(out) / 2
	for i := 0; i < frames; i++ {
		l, r := n.phaser.ProcessStereo(in[i*2], in[i*2+1])
		out[i*2] = l
		out[i*2+1] = r
	}
}

func (n *Phaser) Reset() { n.phaser.Reset() }
func (n *Phaser) Clone() graph.Node {
	c := NewPhaser(n.sampleRate)
	for _, info := range n.params.List() {
		c.params.Set(info.ID, n.params.Get(info.ID))
	}
	return c
}

const (
	tremoloParamRate = iota
	tremoloParamDepth
)

// Tremolo modulates amplitude at a low rate.
type Tremolo struct {
	Base
	trem       *modulation.Tremolo
	sampleRate float64
}

func NewTremolo(sampleRate float64) *Tremolo {
	return &Tremolo{
		Base: newBase("tremolo", graph.CategoryModulation,
			[]graph.Port{{Name: "in", Kind: graph.Audio}},
			[]graph.Port{{Name: "out", Kind: graph.Audio}},
			[]graph.ParamInfo{
				{ID: tremoloParamRate, Name: "rate", Min: 0.1, Max: 20, Default: 4, Unit: graph.UnitHz},
				{ID: tremoloParamDepth, Name: "depth", Min: 0, Max: 1, Default: 0.5, Unit: graph.UnitPercent},
			}),
		trem:       modulation.NewTremolo(sampleRate),
		sampleRate: sampleRate,
	}
}

func (n *Tremolo) Process(inputs []graph.Buffer, outputs []graph.Buffer, _ [][]graph.MIDIEvent, _ [][]graph.MIDIEvent, _ float64) {
	n.trem.SetRate(n.params.Get(tremoloParamRate))
	n.trem.SetDepth(n.params.Get(tremoloParamDepth))

	in := inputs[0]
	out := outputs[0]
	frames := len(out) / 2
	for i := 0; i < frames; i++ {
		l, r := n.trem.ProcessStereo(in[i*2], in[i*2+1])
		out[i*2] = l
		out[i*2+1] = r
	}
}

func (n *Tremolo) Reset() { n.trem.Reset() }
func (n *Tremolo) Clone() graph.Node {
	c := NewTremolo(n.sampleRate)
	for _, info := range n.params.List() {
		c.params.Set(info.ID, n.params.Get(info.ID))
	}
	return c
}

const (
	compParamThreshold = iota
	compParamRatio
	compParamAttack
	compParamRelease
	compParamMakeup
)

// Compressor reduces dynamic range above a threshold.
type Compressor struct {
	Base
	comp                *dynamics.Compressor
	inL, inR, outL, outR []float32
	sampleRate          float64
}

func NewCompressor(sampleRate float64) *Compressor {
	return &Compressor{
		Base: newBase("compressor", graph.CategoryDynamics,
			[]graph.Port{{Name: "in", Kind: graph.Audio}},
			[]graph.Port{{Name: "out", Kind: graph.Audio}},
			[]graph.ParamInfo{
				{ID: compParamThreshold, Name: "threshold_db", Min: -60, Max: 0, Default: -18, Unit: graph.UnitDB},
				{ID: compParamRatio, Name: "ratio", Min: 1, Max: 20, Default: 4, Unit: graph.UnitRaw},
				{ID: compParamAttack, Name: "attack", Min: 0.0001, Max: 1, Default: 0.01, Unit: graph.UnitSeconds},
				{ID: compParamRelease, Name: "release", Min: 0.001, Max: 2, Default: 0.1, Unit: graph.UnitSeconds},
				{ID: compParamMakeup, Name: "makeup_db", Min: 0, Max: 24, Default: 0, Unit: graph.UnitDB},
			}),
		comp:       dynamics.NewCompressor(sampleRate),
		sampleRate: sampleRate,
	}
}

func (n *Compressor) Process(inputs []graph.Buffer, outputs []graph.Buffer, _ [][]graph.MIDIEvent, _ [][]graph.MIDIEvent, _ float64) {
	n.comp.SetThreshold(n.params.Get(compParamThreshold))
	n.comp.SetRatio(n.params.Get(compParamRatio))
	n.comp.SetAttack(n.params.Get(compParamAttack))
	n.comp.SetRelease(n.params.Get(compParamRelease))
	n.comp.SetMakeupGain(n.params.Get(compParamMakeup))

	in := inputs[0]
	out := outputs[0]
	frames := len(out) / 2
	if cap(n.inL) < frames {
		n.inL = make([]float32, frames)
		n.inR = make([]float32, frames)
		n.outL = make([]float32, frames)
		n.outR = make([]float32, frames)
	}
	n.inL, n.inR, n.outL, n.outR = n.inL[:frames], n.inR[:frames], n.outL[:frames], n.outR[:frames]
	for i := 0; i < frames; i++ {
		n.inL[i] = in[i*2]
		n.inR[i] = in[i*2+1]
	}
	n.comp.ProcessStereo(n.inL, n.inR, n.outL, n.outR)
	for i := 0; i < frames; i++ {
		out[i*2] = n.outL[i]
		out[i*2+1] = n.outR[i]
	}
}

func (n *Compressor) Reset() { n.comp.Reset() }
func (n *Compressor) Clone() graph.Node {
	c := NewCompressor(n.sampleRate)
	for _, info := range n.params.List() {
		c.params.Set(info.ID, n.params.Get(info.ID))
	}
	return c
}

const (
	expParamThreshold = iota
	expParamRatio
	expParamAttack
	expParamRelease
	expParamRange
)

// Expander widens dynamic range below a threshold, the inverse of a
// compressor.
type Expander struct {
	Base
	exp                  *dynamics.Expander
	inL, inR, outL, outR []float32
	sampleRate           float64
}

func NewExpander(sampleRate float64) *Expander {
	return &Expander{
		Base: newBase("expander", graph.CategoryDynamics,
			[]graph.Port{{Name: "in", Kind: graph.Audio}},
			[]graph.Port{{Name: "out", Kind: graph.Audio}},
			[]graph.ParamInfo{
				{ID: expParamThreshold, Name: "threshold_db", Min: -60, Max: 0, Default: -40, Unit: graph.UnitDB},
				{ID: expParamRatio, Name: "ratio", Min: 1, Max: 20, Default: 2, Unit: graph.UnitRaw},
				{ID: expParamAttack, Name: "attack", Min: 0.0001, Max: 1, Default: 0.01, Unit: graph.UnitSeconds},
				{ID: expParamRelease, Name: "release", Min: 0.001, Max: 2, Default: 0.1, Unit: graph.UnitSeconds},
				{ID: expParamRange, Name: "range_db", Min: -80, Max: 0, Default: -40, Unit: graph.UnitDB},
			}),
		exp:        dynamics.NewExpander(sampleRate),
		sampleRate: sampleRate,
	}
}

func (n *Expander) Process(inputs []graph.Buffer, outputs []graph.Buffer, _ [][]graph.MIDIEvent, _ [][]graph.MIDIEvent, _ float64) {
	n.exp.SetThreshold(n.params.Get(expParamThreshold))
	n.exp.SetRatio(n.params.Get(expParamRatio))
	n.exp.SetAttack(n.params.Get(expParamAttack))
	n.exp.SetRelease(n.params.Get(expParamRelease))
	n.exp.SetRange(n.params.Get(expParamRange))

	in := inputs[0]
	out := outputs[0]
	frames := len(out) / 2
	if cap(n.inL) < frames {
		n.inL = make([]float32, frames)
		n.inR = make([]float32, frames)
		n.outL = make([]float32, frames)
		n.outR = make([]float32, frames)
	}
	n.inL, n.inR, n.outL, n.outR = n.inL[:frames], n.inR[:frames], n.outL[:frames], n.outR[:frames]
	for i := 0; i < frames; i++ {
		n.inL[i] = in[i*2]
		n.inR[i] = in[i*2+1]
	}
	n.exp.ProcessStereo(n.inL, n.inR, n.outL, n.outR)
	for i := 0; i < frames; i++ {
		out[i*2] = n.outL[i]
		out[i*2+1] = n.outR[i]
	}
}

func (n *Expander) Reset() { n.exp.Reset() }
func (n *Expander) Clone() graph.Node {
	c := NewExpander(n.sampleRate)
	for _, info := range n.params.List() {
		c.params.Set(info.ID, n.params.Get(info.ID))
	}
	return c
}

const (
	gateParamThreshold = iota
	gateParamAttack
	gateParamHold
	gateParamRelease
)

// Gate silences the signal below a threshold.
type Gate struct {
	Base
	gate                 *dynamics.Gate
	inL, inR, outL, outR []float32
	sampleRate           float64
}

func NewGate(sampleRate float64) *Gate {
	return &Gate{
		Base: newBase("gate", graph.CategoryDynamics,
			[]graph.Port{{Name: "in", Kind: graph.Audio}},
			[]graph.Port{{Name: "out", Kind: graph.Audio}},
			[]graph.ParamInfo{
				{ID: gateParamThreshold, Name: "threshold_db", Min: -80, Max: 0, Default: -50, Unit: graph.UnitDB},
				{ID: gateParamAttack, Name: "attack", Min: 0.0001, Max: 1, Default: 0.001, Unit: graph.UnitSeconds},
				{ID: gateParamHold, Name: "hold", Min: 0, Max: 2, Default: 0.05, Unit: graph.UnitSeconds},
				{ID: gateParamRelease, Name: "release", Min: 0.001, Max: 2, Default: 0.15, Unit: graph.UnitSeconds},
			}),
		gate:       dynamics.NewGate(sampleRate),
		sampleRate: sampleRate,
	}
}

func (n *Gate) Process(inputs []graph.Buffer, outputs []graph.Buffer, _ [][]graph.MIDIEvent, _ [][]graph.MIDIEvent, _ float64) {
	n.gate.SetThreshold(n.params.Get(gateParamThreshold))
	n.gate.SetAttack(n.params.Get(gateParamAttack))
	n.gate.SetHold(n.params.Get(gateParamHold))
	n.gate.SetRelease(n.params.Get(gateParamRelease))

	in := inputs[0]
	out := outputs[0]
	frames := len(out) / 2
	if cap(n.inL) < frames {
		n.inL = make([]float32, frames)
		n.inR = make([]float32, frames)
		n.outL = make([]float32, frames)
		n.outR = make([]float32, frames)
	}
	n.inL, n.inR, n.outL, n.outR = n.inL[:frames], n.inR[:frames], n.outL[:frames], n.outR[:frames]
	for i := 0; i < frames; i++ {
		n.inL[i] = in[i*2]
		n.inR[i] = in[i*2+1]
	}
	n.gate.ProcessStereo(n.inL, n.inR, n.outL, n.outR)
	for i := 0; i < frames; i++ {
		out[i*2] = n.outL[i]
		out[i*2+1] = n.outR[i]
	}
}

func (n *Gate) Reset() { n.gate.Reset() }
func (n *Gate) Clone() graph.Node {
	c := NewGate(n.sampleRate)
	for _, info := range n.params.List() {
		c.params.Set(info.ID, n.params.Get(info.ID))
	}
	return c
}

const (
	reverbParamRoomSize = iota
	reverbParamDamping
	reverbParamWet
)

// Reverb wraps the Freeverb algorithm (the classic Schroeder/Moorer
// comb+allpass topology tuned for plate/room character).
type Reverb struct {
	Base
	verb *reverb.Freeverb
}

func NewReverb(sampleRate float64) *Reverb {
	return &Reverb{
		Base: newBase("reverb", graph.CategoryUtility,
			[]graph.Port{{Name: "in", Kind: graph.Audio}},
			[]graph.Port{{Name: "out", Kind: graph.Audio}},
			[]graph.ParamInfo{
				{ID: reverbParamRoomSize, Name: "room_size", Min: 0, Max: 1, Default: 0.5, Unit: graph.UnitPercent},
				{ID: reverbParamDamping, Name: "damping", Min: 0, Max: 1, Default: 0.5, Unit: graph.UnitPercent},
				{ID: reverbParamWet, Name: "wet", Min: 0, Max: 1, Default: 0.3, Unit: graph.UnitPercent},
			}),
		verb: reverb.NewFreeverb(sampleRate),
	}
}

func (n *Reverb) Process(inputs []graph.Buffer, outputs []graph.Buffer, _ [][]graph.MIDIEvent, _ [][]graph.MIDIEvent, _ float64) {
	n.verb.SetRoomSize(n.params.Get(reverbParamRoomSize))
	n.verb.SetDamping(n.params.Get(reverbParamDamping))
	n.verb.SetWetLevel(n.params.Get(reverbParamWet))

	in := inputs[0]
	out := outputs[0]
	frames := len(out) / 2
	for i := 0; i < frames; i++ {
		l, r := n.verb.ProcessStereo(in[i*2], in[i*2+1])
		out[i*2] = l
		out[i*2+1] = r
	}
}

func (n *Reverb) Reset() { n.verb.Reset() }
func (n *Reverb) Clone() graph.Node {
	c := NewReverb(44100)
	for _, info := range n.params.List() {
		c.params.Set(info.ID, n.params.Get(info.ID))
	}
	return c
}

// DCBlocker removes any DC offset accumulated by earlier nodes in a
// chain (asymmetric waveshaping, sample-and-hold glitches).
type DCBlocker struct {
	Base
	blocker *utility.DCBlocker
}

func NewDCBlocker(sampleRate float64) *DCBlocker {
	return &DCBlocker{
		Base: newBase("dc_blocker", graph.CategoryUtility,
			[]graph.Port{{Name: "in", Kind: graph.Audio}},
			[]graph.Port{{Name: "out", Kind: graph.Audio}}, nil),
		blocker: utility.NewDCBlocker(2, 20, sampleRate),
	}
}

func (n *DCBlocker) Process(inputs []graph.Buffer, outputs []graph.Buffer, _ [][]graph.MIDIEvent, _ [][]graph.MIDIEvent, _ float64) {
	in := inputs[0]
	out := outputs[0]
	frames := len(out) / 2
	for i := 0; i < frames; i++ {
		out[i*2] = n.blocker.Process(in[i*2], 0)
		out[i*2+1] = n.blocker.Process(in[i*2+1], 1)
	}
}

func (n *DCBlocker) Reset() { n.blocker.Reset() }
func (n *DCBlocker) Clone() graph.Node { return NewDCBlocker(44100) }
