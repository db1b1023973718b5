// Package midiclip stores MIDI clip content (timestamped note/CC events)
// referenced by MIDI tracks, mirroring the audio pool's write-once,
// stable-index design for the same reason: content must be readable from
// the audio thread without locking.
package midiclip

import "fmt"

// ID identifies a clip within a Pool. 0 means "no clip".
type ID uint32

// Event is one MIDI message scheduled at an offset, in seconds, from the
// start of its clip.
type Event struct {
	OffsetSecs float64
	Status     byte
	Data1      byte
	Data2      byte
}

// Clip is an immutable (post-construction) sequence of MIDI events plus
// its nominal duration. Tracks clone Events when scheduling them into a
// block's external MIDI delivery map; the Clip itself is never mutated
// after being added to a Pool.
type Clip struct {
	ID       ID
	Name     string
	Duration float64
	Events   []Event
}

// Pool holds every MIDI clip in a project, keyed by a monotonically
// increasing ID. Mutating operations (Add/Remove/Duplicate) run on the
// controller thread only; Get is safe to call from the audio thread
// because clips are never mutated in place.
type Pool struct {
	clips  map[ID]*Clip
	nextID ID
}

// New creates an empty clip pool. IDs start at 1 so 0 can mean "no clip".
func New() *Pool {
	return &Pool{clips: make(map[ID]*Clip), nextID: 1}
}

// Add stores a new clip built from events/duration/name and returns its
// freshly allocated ID.
func (p *Pool) Add(events []Event, duration float64, name string) ID {
	id := p.nextID
	p.nextID++
	p.clips[id] = &Clip{ID: id, Name: name, Duration: duration, Events: events}
	return id
}

// AddExisting inserts a clip with a pre-assigned ID (project load), and
// advances nextID past it to avoid future collisions.
func (p *Pool) AddExisting(clip *Clip) {
	if clip.ID >= p.nextID {
		p.nextID = clip.ID + 1
	}
	p.clips[clip.ID] = clip
}

// Get returns the clip for id, or nil if not present.
func (p *Pool) Get(id ID) *Clip {
	return p.clips[id]
}

// Remove deletes a clip from the pool.
func (p *Pool) Remove(id ID) {
	delete(p.clips, id)
}

// Duplicate clones a clip under a new ID with "(copy)" appended to its
// name, returning the new ID, or 0 if id does not exist.
func (p *Pool) Duplicate(id ID) ID {
	src, ok := p.clips[id]
	if !ok {
		return 0
	}
	newID := p.nextID
	p.nextID++
	events := append([]Event(nil), src.Events...)
	p.clips[newID] = &Clip{
		ID:       newID,
		Name:     fmt.Sprintf("%s (copy)", src.Name),
		Duration: src.Duration,
		Events:   events,
	}
	return newID
}

// IDs returns every clip ID currently in the pool, unordered.
func (p *Pool) IDs() []ID {
	ids := make([]ID, 0, len(p.clips))
	for id := range p.clips {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of clips in the pool.
func (p *Pool) Len() int { return len(p.clips) }
