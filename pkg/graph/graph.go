package graph

import "fmt"

// Connection is a typed edge (src_node, src_port) -> (dst_node, dst_port).
type Connection struct {
	SrcNode, SrcPort int
	DstNode, DstPort int
}

// ConnectError is returned by Connect when a connection is rejected. It
// carries enough detail for the controller to report why.
type ConnectError struct {
	Kind     string // "out_of_range", "type_mismatch", "cycle"
	Expected Kind
	Got      Kind
}

func (e *ConnectError) Error() string {
	switch e.Kind {
	case "type_mismatch":
		return fmt.Sprintf("connect: type mismatch, expected=%s got=%s", e.Expected, e.Got)
	case "cycle":
		return "connect: would create a cycle"
	default:
		return "connect: port out of range"
	}
}

type nodeEntry struct {
	node       Node
	inputBufs  []Buffer
	outputBufs []Buffer
	midiIn     [][]MIDIEvent
	midiOut    [][]MIDIEvent
}

// Graph holds nodes with stable indices, typed connections between them,
// a cached topological order, and per-port buffers. Graph is a
// controller-context and audio-context shared structure: connection
// topology changes happen on the controller side (delivered as a command
// that swaps a pointer), while Process runs on the audio thread.
type Graph struct {
	nodes   map[int]*nodeEntry
	nextID  int
	conns   []Connection
	order   []int
	dirty   bool
	output  int
	hasOut  bool
	targets map[int]bool

	blockSize  int
	sampleRate float64
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:   make(map[int]*nodeEntry),
		targets: make(map[int]bool),
		dirty:   true,
	}
}

// AddNode inserts a node and returns its stable index.
func (g *Graph) AddNode(n Node) int {
	id := g.nextID
	g.nextID++
	g.nodes[id] = &nodeEntry{node: n}
	g.dirty = true
	g.ensureBuffers(id)
	return id
}

// RemoveNode deletes a node and every connection touching it.
func (g *Graph) RemoveNode(id int) {
	if _, ok := g.nodes[id]; !ok {
		return
	}
	delete(g.nodes, id)
	delete(g.targets, id)
	kept := g.conns[:0]
	for _, c := range g.conns {
		if c.SrcNode != id && c.DstNode != id {
			kept = append(kept, c)
		}
	}
	g.conns = kept
	if g.hasOut && g.output == id {
		g.hasOut = false
	}
	g.dirty = true
}

// Node returns the node at id, or nil.
func (g *Graph) Node(id int) Node {
	if e, ok := g.nodes[id]; ok {
		return e.node
	}
	return nil
}

// SetOutputNode designates the node whose output is the graph's output.
func (g *Graph) SetOutputNode(id int) {
	g.output = id
	g.hasOut = true
}

// OutputNode returns the designated output node's id, or false if none
// has been set yet.
func (g *Graph) OutputNode() (int, bool) {
	return g.output, g.hasOut
}

// SetMIDITarget marks/unmarks a node as a recipient of externally
// submitted MIDI events (MIDI-input boundary, voice-allocator, etc).
func (g *Graph) SetMIDITarget(id int, isTarget bool) {
	if isTarget {
		g.targets[id] = true
	} else {
		delete(g.targets, id)
	}
}

// MIDITargets returns the current set of MIDI-target node indices.
func (g *Graph) MIDITargets() []int {
	out := make([]int, 0, len(g.targets))
	for id := range g.targets {
		out = append(out, id)
	}
	return out
}

// Connect validates and records a connection. One connection per input
// port: connecting again to an occupied input port replaces the previous
// connection from that input's perspective (last writer wins, per the
// node contract's "only the latest is used" rule for gather).
func (g *Graph) Connect(srcNode, srcPort, dstNode, dstPort int) error {
	srcEntry, ok := g.nodes[srcNode]
	if !ok {
		return &ConnectError{Kind: "out_of_range"}
	}
	dstEntry, ok := g.nodes[dstNode]
	if !ok {
		return &ConnectError{Kind: "out_of_range"}
	}
	srcPorts := srcEntry.node.OutputPorts()
	dstPorts := dstEntry.node.InputPorts()
	if srcPort < 0 || srcPort >= len(srcPorts) || dstPort < 0 || dstPort >= len(dstPorts) {
		return &ConnectError{Kind: "out_of_range"}
	}
	sk := srcPorts[srcPort].Kind
	dk := dstPorts[dstPort].Kind
	if sk != dk {
		return &ConnectError{Kind: "type_mismatch", Expected: dk, Got: sk}
	}

	candidate := append(append([]Connection{}, g.conns...), Connection{srcNode, srcPort, dstNode, dstPort})
	if hasCycle(g.nodes, candidate) {
		return &ConnectError{Kind: "cycle"}
	}

	// Replace any existing connection into this exact input port.
	filtered := g.conns[:0]
	for _, c := range g.conns {
		if c.DstNode == dstNode && c.DstPort == dstPort {
			continue
		}
		filtered = append(filtered, c)
	}
	g.conns = append(filtered, Connection{srcNode, srcPort, dstNode, dstPort})
	g.dirty = true
	return nil
}

// Disconnect removes a specific connection, if present.
func (g *Graph) Disconnect(srcNode, srcPort, dstNode, dstPort int) {
	kept := g.conns[:0]
	for _, c := range g.conns {
		if c == (Connection{srcNode, srcPort, dstNode, dstPort}) {
			continue
		}
		kept = append(kept, c)
	}
	g.conns = kept
	g.dirty = true
}

func hasCycle(nodes map[int]*nodeEntry, conns []Connection) bool {
	adj := make(map[int][]int, len(nodes))
	for id := range nodes {
		adj[id] = nil
	}
	for _, c := range conns {
		adj[c.SrcNode] = append(adj[c.SrcNode], c.DstNode)
	}
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[int]int, len(nodes))
	var visit func(int) bool
	visit = func(n int) bool {
		color[n] = gray
		for _, next := range adj[n] {
			switch color[next] {
			case gray:
				return true
			case white:
				if visit(next) {
					return true
				}
			}
		}
		color[n] = black
		return false
	}
	for id := range nodes {
		if color[id] == white {
			if visit(id) {
				return true
			}
		}
	}
	return false
}

// topoSort recomputes the cached order: a linearisation such that every
// connection's source appears before its destination.
func (g *Graph) topoSort() {
	indeg := make(map[int]int, len(g.nodes))
	adj := make(map[int][]int, len(g.nodes))
	for id := range g.nodes {
		indeg[id] = 0
	}
	for _, c := range g.conns {
		adj[c.SrcNode] = append(adj[c.SrcNode], c.DstNode)
		indeg[c.DstNode]++
	}

	var queue []int
	for id := range g.nodes {
		if indeg[id] == 0 {
			queue = append(queue, id)
		}
	}
	order := make([]int, 0, len(g.nodes))
	for len(queue) > 0 {
		// ascending index among the ready set, deterministic execution order
		minIdx := 0
		for i := 1; i < len(queue); i++ {
			if queue[i] < queue[minIdx] {
				minIdx = i
			}
		}
		n := queue[minIdx]
		queue = append(queue[:minIdx], queue[minIdx+1:]...)
		order = append(order, n)
		for _, next := range adj[n] {
			indeg[next]--
			if indeg[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	g.order = order
	g.dirty = false
}

// Order returns the cached topological order, recomputing it first if the
// node or connection set changed since the last call.
func (g *Graph) Order() []int {
	if g.dirty {
		g.topoSort()
	}
	return g.order
}

func (g *Graph) ensureBuffers(id int) {
	e := g.nodes[id]
	ins := e.node.InputPorts()
	outs := e.node.OutputPorts()
	e.inputBufs = make([]Buffer, len(ins))
	e.midiIn = make([][]MIDIEvent, len(ins))
	e.outputBufs = make([]Buffer, len(outs))
	e.midiOut = make([][]MIDIEvent, len(outs))
	frames := g.blockSize
	for i, p := range ins {
		if p.Kind != MIDI {
			e.inputBufs[i] = make(Buffer, FramesFor(p.Kind, frames))
		}
	}
	for i, p := range outs {
		if p.Kind != MIDI {
			e.outputBufs[i] = make(Buffer, FramesFor(p.Kind, frames))
		}
	}
}

// SetBlockSize reallocates every node's port buffers for a new block
// size. Not realtime-safe; call only from the controller before the
// audio thread starts reading this graph (e.g. on device (re)configure).
func (g *Graph) SetBlockSize(blockSize int) {
	g.blockSize = blockSize
	for id := range g.nodes {
		g.ensureBuffers(id)
	}
}

// externalMIDI maps node id -> events to deliver this block, for nodes
// that are MIDI targets fed from outside the graph (MIDI-input boundary,
// voice-allocator note routing).
type externalMIDI = map[int][]MIDIEvent

// Process runs exactly one block through the graph in topological order
// and returns the designated output node's first output buffer (or nil
// if no output node is set). Each node scans the whole connection list
// for its inputs, so a call costs O(nodes * connections); the first call
// after a topology change recomputes the cached order, which allocates.
func (g *Graph) Process(sampleRate float64, ext externalMIDI) Buffer {
	order := g.Order()

	for _, id := range order {
		e := g.nodes[id]

		// Gather inputs from upstream edge buffers.
		for _, c := range g.conns {
			if c.DstNode != id {
				continue
			}
			srcEntry := g.nodes[c.SrcNode]
			dstPorts := e.node.InputPorts()
			if c.DstPort >= len(dstPorts) {
				continue
			}
			if dstPorts[c.DstPort].Kind == MIDI {
				e.midiIn[c.DstPort] = srcEntry.midiOut[c.SrcPort]
			} else {
				copy(e.inputBufs[c.DstPort], srcEntry.outputBufs[c.SrcPort])
			}
		}

		// Deliver externally submitted MIDI to target nodes.
		if g.targets[id] {
			if events, ok := ext[id]; ok {
				if h, ok := e.node.(MIDIHandler); ok {
					for _, ev := range events {
						h.HandleMIDI(ev)
					}
				}
			}
		}

		// Clear MIDI outputs before process populates them.
		for i := range e.midiOut {
			e.midiOut[i] = e.midiOut[i][:0]
		}

		e.node.Process(e.inputBufs, e.outputBufs, e.midiIn, e.midiOut, sampleRate)
	}

	if !g.hasOut {
		return nil
	}
	outEntry, ok := g.nodes[g.output]
	if !ok || len(outEntry.outputBufs) == 0 {
		return nil
	}
	return outEntry.outputBufs[0]
}

// NodeIDs returns every node index currently in the graph, unordered.
func (g *Graph) NodeIDs() []int {
	ids := make([]int, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	return ids
}

// ConnectionList returns a copy of the current connection set.
func (g *Graph) ConnectionList() []Connection {
	return append([]Connection(nil), g.conns...)
}

// Reset clears every node's internal state without touching topology.
func (g *Graph) Reset() {
	for _, e := range g.nodes {
		e.node.Reset()
	}
}
