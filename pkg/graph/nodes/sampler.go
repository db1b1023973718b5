package nodes

import "github.com/justyntemme/lightningbeam-daw/pkg/graph"

// SampleData is one decoded sample held directly by a sampler node (as
// opposed to the project-level audio pool, which tracks timeline clips).
// Loaded from a preset's embedded base64 data or file path.
type SampleData struct {
	Data       []float32 // interleaved
	Channels   int
	SampleRate int
}

func (s *SampleData) frames() int {
	if s == nil || s.Channels == 0 {
		return 0
	}
	return len(s.Data) / s.Channels
}

func (s *SampleData) at(frame, channel int) float32 {
	if frame < 0 || frame >= s.frames() {
		return 0
	}
	ch := channel
	if s.Channels == 1 {
		ch = 0
	} else if ch >= s.Channels {
		ch = s.Channels - 1
	}
	return s.Data[frame*s.Channels+ch]
}

const (
	samplerParamGain = iota
)

// SimpleSampler plays a single sample one-shot on note-on, at its native
// pitch (no key tracking): the sample_data.simple_sampler preset variant
// carries only a file/embedded source, no key-range or root-key fields.
type SimpleSampler struct {
	Base
	sample   *SampleData
	pos      float64
	velocity float32
	playing  bool
}

// NewSimpleSampler builds a sampler around sample, which may be nil (the
// node then renders silence until SetSample is called by the preset
// loader).
func NewSimpleSampler(sample *SampleData) *SimpleSampler {
	return &SimpleSampler{
		Base: newBase("simple_sampler", graph.CategoryGenerator, nil,
			[]graph.Port{{Name: "out", Kind: graph.Audio}},
			[]graph.ParamInfo{{ID: samplerParamGain, Name: "gain", Min: 0, Max: 2, Default: 1, Unit: graph.UnitPercent}}),
		sample: sample,
	}
}

// SetSample installs or replaces the held sample; called by the preset
// loader after decoding sample_data.
func (n *SimpleSampler) SetSample(s *SampleData) { n.sample = s }

// Sample returns the held sample, for preset serialisation. May be nil.
func (n *SimpleSampler) Sample() *SampleData { return n.sample }

func (n *SimpleSampler) HandleMIDI(ev graph.MIDIEvent) {
	status := ev.Status & 0xF0
	if status == 0x90 && ev.Data2 > 0 {
		n.pos = 0
		n.velocity = float32(ev.Data2) / 127.0
		n.playing = true
	} else if status == 0x80 || (status == 0x90 && ev.Data2 == 0) {
		n.playing = false
	}
}

func (n *SimpleSampler) Process(_ []graph.Buffer, outputs []graph.Buffer, _, _ [][]graph.MIDIEvent, sampleRate float64) {
	out := outputs[0]
	gain := float32(n.params.Get(samplerParamGain)) * n.velocity
	frames := len(out) / 2
	if n.sample == nil || n.sample.SampleRate == 0 {
		for i := range out {
			out[i] = 0
		}
		return
	}
	ratio := float64(n.sample.SampleRate) / sampleRate
	for i := 0; i < frames; i++ {
		if !n.playing || int(n.pos) >= n.sample.frames() {
			out[i*2] = 0
			out[i*2+1] = 0
			continue
		}
		frame := int(n.pos)
		out[i*2] = n.sample.at(frame, 0) * gain
		out[i*2+1] = n.sample.at(frame, 1) * gain
		n.pos += ratio
		if int(n.pos) >= n.sample.frames() {
			n.playing = false
		}
	}
}

func (n *SimpleSampler) Reset() { n.pos = 0; n.playing = false; n.velocity = 0 }
func (n *SimpleSampler) Clone() graph.Node {
	c := NewSimpleSampler(n.sample)
	c.params.Set(samplerParamGain, n.params.Get(samplerParamGain))
	return c
}

// LoopMode selects how a multi-sampler layer behaves once it reaches its
// loop_end point.
type LoopMode int

const (
	LoopOneShot LoopMode = iota
	LoopForward
	LoopPingPong
)

// Layer is one key/velocity zone of a multi-sampler.
type Layer struct {
	Sample      *SampleData
	KeyMin      byte
	KeyMax      byte
	RootKey     byte
	VelocityMin byte
	VelocityMax byte
	LoopStart   int
	LoopEnd     int // 0 means "no loop end set"; treated as sample end
	LoopMode    LoopMode
}

type multiVoice struct {
	layer    *Layer
	pos      float64
	velocity float32
	playing  bool
}

// MultiSampler selects a layer by key and velocity range on note-on, plays
// it pitch-shifted relative to the layer's root key, and loops it per the
// layer's loop_mode.
type MultiSampler struct {
	Base
	layers     []Layer
	voice      multiVoice
	pitchRatio float64
}

func NewMultiSampler(layers []Layer) *MultiSampler {
	return &MultiSampler{
		Base: newBase("multi_sampler", graph.CategoryGenerator, nil,
			[]graph.Port{{Name: "out", Kind: graph.Audio}},
			[]graph.ParamInfo{{ID: samplerParamGain, Name: "gain", Min: 0, Max: 2, Default: 1, Unit: graph.UnitPercent}}),
		layers: layers,
	}
}

func (n *MultiSampler) SetLayers(layers []Layer) { n.layers = layers }

// Layers returns the sampler's key/velocity zones, for preset serialisation.
func (n *MultiSampler) Layers() []Layer { return n.layers }

func (n *MultiSampler) findLayer(note, velocity byte) *Layer {
	for i := range n.layers {
		l := &n.layers[i]
		if note >= l.KeyMin && note <= l.KeyMax && velocity >= l.VelocityMin && velocity <= l.VelocityMax {
			return l
		}
	}
	return nil
}

func (n *MultiSampler) HandleMIDI(ev graph.MIDIEvent) {
	status := ev.Status & 0xF0
	if status == 0x90 && ev.Data2 > 0 {
		l := n.findLayer(ev.Data1, ev.Data2)
		if l == nil {
			return
		}
		n.voice = multiVoice{layer: l, pos: 0, velocity: float32(ev.Data2) / 127.0, playing: true}
		n.pitchRatio = pow2(float64(int(ev.Data1)-int(l.RootKey)) / 12.0)
	} else if status == 0x80 || (status == 0x90 && ev.Data2 == 0) {
		if n.voice.layer != nil {
			n.voice.playing = false
		}
	}
}

func pow2(x float64) float64 {
	// cubic polynomial approximation of 2^x for the layer's pitch ratio;
	// other note math in the engine uses math.Exp2 / math.Pow.
	if x >= 0 {
		whole := int(x)
		frac := x - float64(whole)
		fracPow := 1.0 + frac*(0.693147+frac*(0.240227+frac*0.055504))
		return float64(uint64(1)<<uint(whole)) * fracPow
	}
	return 1.0 / pow2(-x)
}

func (n *MultiSampler) Process(_ []graph.Buffer, outputs []graph.Buffer, _, _ [][]graph.MIDIEvent, sampleRate float64) {
	out := outputs[0]
	gain := float32(n.params.Get(samplerParamGain))
	frames := len(out) / 2

	v := &n.voice
	if v.layer == nil || v.layer.Sample == nil {
		for i := range out {
			out[i] = 0
		}
		return
	}
	s := v.layer.Sample
	loopEnd := v.layer.LoopEnd
	if loopEnd <= 0 || loopEnd > s.frames() {
		loopEnd = s.frames()
	}
	srcRatio := float64(s.SampleRate) / sampleRate * n.pitchRatio

	for i := 0; i < frames; i++ {
		if !v.playing {
			out[i*2] = 0
			out[i*2+1] = 0
			continue
		}
		frame := int(v.pos)
		if frame >= loopEnd {
			switch v.layer.LoopMode {
			case LoopForward:
				v.pos = float64(v.layer.LoopStart)
				frame = v.layer.LoopStart
			case LoopPingPong:
				srcRatio = -srcRatio
				v.pos = float64(loopEnd) - 1
				frame = int(v.pos)
			default:
				v.playing = false
				out[i*2] = 0
				out[i*2+1] = 0
				continue
			}
		}
		if frame < v.layer.LoopStart && srcRatio < 0 {
			srcRatio = -srcRatio
			v.pos = float64(v.layer.LoopStart)
			frame = v.layer.LoopStart
		}
		out[i*2] = s.at(frame, 0) * gain * v.velocity
		out[i*2+1] = s.at(frame, 1) * gain * v.velocity
		v.pos += srcRatio
	}
}

func (n *MultiSampler) Reset() { n.voice = multiVoice{} }
func (n *MultiSampler) Clone() graph.Node {
	c := NewMultiSampler(n.layers)
	c.params.Set(samplerParamGain, n.params.Get(samplerParamGain))
	return c
}
