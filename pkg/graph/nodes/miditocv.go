package nodes

import "github.com/justyntemme/lightningbeam-daw/pkg/graph"

const midiCVParamGlide = iota

// MidiToCV converts the last-held note from a MIDI input into pitch (CV,
// V/Oct), gate, and velocity CV outputs. V/Oct is (note-69)/12, i.e. 0V at
// A4 — the single convention this whole module standardises on, matching
// the oscillator node's V/Oct input.
type MidiToCV struct {
	Base
	heldNotes []byte
	pitch     float32
	gate      float32
	velocity  float32
}

func NewMidiToCV() *MidiToCV {
	return &MidiToCV{Base: newBase("midi_to_cv", graph.CategoryMIDI,
		[]graph.Port{{Name: "midi_in", Kind: graph.MIDI}},
		[]graph.Port{
			{Name: "pitch", Kind: graph.CV},
			{Name: "gate", Kind: graph.CV},
			{Name: "velocity", Kind: graph.CV},
		},
		[]graph.ParamInfo{{ID: midiCVParamGlide, Name: "glide", Min: 0, Max: 1, Default: 0, Unit: graph.UnitSeconds}})}
}

func (n *MidiToCV) Process(_ []graph.Buffer, outputs []graph.Buffer, midiInputs [][]graph.MIDIEvent, _ [][]graph.MIDIEvent, _ float64) {
	for _, ev := range midiInputs[0] {
		status := ev.Status & 0xF0
		switch {
		case status == 0x90 && ev.Data2 > 0: // note on
			n.heldNotes = append(n.heldNotes, ev.Data1)
			n.noteChanged(ev.Data1, ev.Data2)
		case status == 0x80 || (status == 0x90 && ev.Data2 == 0): // note off
			n.removeNote(ev.Data1)
			if len(n.heldNotes) > 0 {
				n.noteChanged(n.heldNotes[len(n.heldNotes)-1], 100)
			} else {
				n.gate = 0
			}
		}
	}

	pitch, gate, vel := outputs[0], outputs[1], outputs[2]
	for i := range pitch {
		pitch[i] = n.pitch
		gate[i] = n.gate
		vel[i] = n.velocity
	}
}

func (n *MidiToCV) noteChanged(note, velocity byte) {
	n.pitch = float32(int(note)-69) / 12.0
	n.gate = 1
	n.velocity = float32(velocity) / 127.0
}

func (n *MidiToCV) removeNote(note byte) {
	for i, held := range n.heldNotes {
		if held == note {
			n.heldNotes = append(n.heldNotes[:i], n.heldNotes[i+1:]...)
			return
		}
	}
}

func (n *MidiToCV) Reset() {
	n.heldNotes = n.heldNotes[:0]
	n.pitch, n.gate, n.velocity = 0, 0, 0
}
func (n *MidiToCV) Clone() graph.Node { return NewMidiToCV() }

// AudioToCV follows the absolute value of an audio-rate signal into a CV
// envelope, letting audio drive modulation targets (e.g. sidechain CV).
type AudioToCV struct {
	Base
	env float32
}

const audioCVParamSmoothing = iota

func NewAudioToCV() *AudioToCV {
	return &AudioToCV{Base: newBase("audio_to_cv", graph.CategoryUtility,
		[]graph.Port{{Name: "in", Kind: graph.Audio}},
		[]graph.Port{{Name: "out", Kind: graph.CV}},
		[]graph.ParamInfo{{ID: audioCVParamSmoothing, Name: "smoothing", Min: 0, Max: 0.999, Default: 0.9, Unit: graph.UnitRaw}})}
}

func (n *AudioToCV) Process(inputs []graph.Buffer, outputs []graph.Buffer, _ [][]graph.MIDIEvent, _ [][]graph.MIDIEvent, _ float64) {
	in := inputs[0]
	out := outputs[0]
	k := float32(n.params.Get(audioCVParamSmoothing))
	for i := range out {
		l := in[i*2]
		if l < 0 {
			l = -l
		}
		r := in[i*2+1]
		if r < 0 {
			r = -r
		}
		mag := l
		if r > mag {
			mag = r
		}
		n.env = k*n.env + (1-k)*mag
		out[i] = n.env
	}
}

func (n *AudioToCV) Reset()            { n.env = 0 }
func (n *AudioToCV) Clone() graph.Node { return NewAudioToCV() }
