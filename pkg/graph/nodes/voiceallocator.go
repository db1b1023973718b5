package nodes

import "github.com/justyntemme/lightningbeam-daw/pkg/graph"

// VoiceBuilder constructs one independent voice sub-graph: a fresh
// graph.Graph wired from oscillator/filter/envelope nodes through a
// TemplateIn source and a TemplateOut tap, with its output node set to
// the TemplateOut. Called once per voice at construction and again on
// Clone.
type VoiceBuilder func(sampleRate float64) (g *graph.Graph, in *TemplateIn, out *TemplateOut)

type voiceSlot struct {
	g           *graph.Graph
	in          *TemplateIn
	out         *TemplateOut
	note        byte
	held        bool
	triggeredAt uint64
	releasedAt  uint64
}

// VoiceAllocator is the compound node backing instrument polyphony: it
// owns a fixed pool of cloned voice sub-graphs and dispatches incoming
// note events to them. Allocation order: reuse a never-triggered voice
// first, then the voice released longest ago (LRU of release time), and
// only steal a still-held voice - the longest-held one - when every
// voice is busy.
type VoiceAllocator struct {
	Base
	build      VoiceBuilder
	voices     []*voiceSlot
	noteVoice  map[byte]int
	clock      uint64
	sampleRate float64
	blockSize  int
}

func NewVoiceAllocator(sampleRate float64, voiceCount int, build VoiceBuilder) *VoiceAllocator {
	va := &VoiceAllocator{
		Base: newBase("voice_allocator", graph.CategoryCompound, nil,
			[]graph.Port{{Name: "out", Kind: graph.Audio}}, nil),
		build:      build,
		noteVoice:  make(map[byte]int),
		sampleRate: sampleRate,
	}
	for i := 0; i < voiceCount; i++ {
		va.voices = append(va.voices, va.newSlot())
	}
	return va
}

func (n *VoiceAllocator) newSlot() *voiceSlot {
	g, in, out := n.build(n.sampleRate)
	return &voiceSlot{g: g, in: in, out: out}
}

// HandleMIDI implements graph.MIDIHandler so the allocator can be
// registered as a MIDI target node.
func (n *VoiceAllocator) HandleMIDI(ev graph.MIDIEvent) {
	status := ev.Status & 0xF0
	switch {
	case status == 0x90 && ev.Data2 > 0:
		n.noteOn(ev.Data1, ev.Data2)
	case status == 0x80 || (status == 0x90 && ev.Data2 == 0):
		n.noteOff(ev.Data1)
	}
}

func (n *VoiceAllocator) noteOn(note, velocity byte) {
	n.clock++
	if idx, ok := n.noteVoice[note]; ok {
		n.trigger(idx, note, velocity)
		return
	}
	idx := n.allocate()
	if idx == -1 {
		return
	}
	n.trigger(idx, note, velocity)
}

func (n *VoiceAllocator) trigger(idx int, note, velocity byte) {
	v := n.voices[idx]
	if v.held && v.note != note {
		delete(n.noteVoice, v.note)
	}
	v.note = note
	v.held = true
	v.triggeredAt = n.clock
	v.releasedAt = 0
	v.in.Trigger(note, velocity)
	n.noteVoice[note] = idx
}

func (n *VoiceAllocator) noteOff(note byte) {
	idx, ok := n.noteVoice[note]
	if !ok {
		return
	}
	v := n.voices[idx]
	v.held = false
	v.releasedAt = n.clock
	v.in.Release()
	delete(n.noteVoice, note)
}

func (n *VoiceAllocator) allocate() int {
	for i, v := range n.voices {
		if v.triggeredAt == 0 {
			return i
		}
	}
	best := -1
	var bestReleased uint64 = ^uint64(0)
	for i, v := range n.voices {
		if !v.held && v.releasedAt < bestReleased {
			best = i
			bestReleased = v.releasedAt
		}
	}
	if best != -1 {
		return best
	}
	// every voice held: steal the longest-held one (FIFO stealing)
	var oldest uint64 = ^uint64(0)
	for i, v := range n.voices {
		if v.triggeredAt < oldest {
			oldest = v.triggeredAt
			best = i
		}
	}
	if best != -1 {
		delete(n.noteVoice, n.voices[best].note)
	}
	return best
}

// AllNotesOff releases every voice and clears the note lookup, used by the
// engine on stop, seek, and loop-region wrap to avoid stuck notes. Voice
// output is not cut off: each voice's template sees its gate drop.
func (n *VoiceAllocator) AllNotesOff() {
	for _, v := range n.voices {
		v.held = false
		v.in.Release()
	}
	n.noteVoice = make(map[byte]int)
}

func (n *VoiceAllocator) Process(_ []graph.Buffer, outputs []graph.Buffer, _ [][]graph.MIDIEvent, _ [][]graph.MIDIEvent, sampleRate float64) {
	out := outputs[0]
	frames := len(out) / 2
	if frames != n.blockSize {
		n.blockSize = frames
		for _, v := range n.voices {
			v.g.SetBlockSize(frames)
		}
	}
	for i := range out {
		out[i] = 0
	}
	for _, v := range n.voices {
		buf := v.g.Process(sampleRate, nil)
		for i := 0; i < len(out) && i < len(buf); i++ {
			out[i] += buf[i]
		}
	}
}

func (n *VoiceAllocator) Reset() {
	for _, v := range n.voices {
		v.g.Reset()
		v.held = false
		v.triggeredAt = 0
		v.releasedAt = 0
	}
	n.noteVoice = make(map[byte]int)
	n.clock = 0
}

func (n *VoiceAllocator) Clone() graph.Node {
	return NewVoiceAllocator(n.sampleRate, len(n.voices), n.build)
}

// VoiceCount returns the size of the fixed voice pool.
func (n *VoiceAllocator) VoiceCount() int {
	return len(n.voices)
}

// TemplateGraph returns the sub-graph backing one voice, for preset
// serialisation; every voice in the pool shares the same shape.
func (n *VoiceAllocator) TemplateGraph() *graph.Graph {
	if len(n.voices) == 0 {
		return nil
	}
	return n.voices[0].g
}
