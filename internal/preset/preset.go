// Package preset implements the JSON preset format: {metadata, nodes,
// connections, midi_targets, output_node}, with base64-embedded sample
// data and unknown-field round-tripping so presets saved by a newer
// version of the engine still load cleanly in an older one.
package preset

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/justyntemme/lightningbeam-daw/internal/decode"
	"github.com/justyntemme/lightningbeam-daw/pkg/graph"
	"github.com/justyntemme/lightningbeam-daw/pkg/graph/nodes"
)

// Document is the top-level preset file.
type Document struct {
	Metadata    map[string]json.RawMessage `json:"metadata,omitempty"`
	Nodes       []NodeDoc                  `json:"nodes"`
	Connections []ConnectionDoc            `json:"connections"`
	MidiTargets []int                      `json:"midi_targets,omitempty"`
	OutputNode  int                        `json:"output_node"`

	extra map[string]json.RawMessage
}

// ConnectionDoc is one typed edge in the preset's connection list.
type ConnectionDoc struct {
	SrcNode int `json:"src_node"`
	SrcPort int `json:"src_port"`
	DstNode int `json:"dst_node"`
	DstPort int `json:"dst_port"`
}

// NodeDoc is one node entry. VoiceCount and Stages are supplements beyond
// the base spec, needed to serialise the voice_allocator and effect_chain
// compound node kinds; they are parsed but ignored for every other
// node_type.
type NodeDoc struct {
	ID         int                `json:"id"`
	NodeType   string             `json:"node_type"`
	Parameters map[string]float64 `json:"parameters,omitempty"`
	Position   [2]float64         `json:"position"`

	TemplateGraph *Document      `json:"template_graph,omitempty"`
	SampleData    *SampleDataDoc `json:"sample_data,omitempty"`

	VoiceCount int       `json:"voice_count,omitempty"`
	Stages     []NodeDoc `json:"stages,omitempty"`

	extra map[string]json.RawMessage
}

// SampleDataDoc is the sample_data variant attached to a sampler node.
// simple_sampler populates FilePath/EmbeddedData; multi_sampler populates
// Layers.
type SampleDataDoc struct {
	FilePath     *string          `json:"file_path,omitempty"`
	EmbeddedData *EmbeddedDataDoc `json:"embedded_data,omitempty"`
	Layers       []LayerDoc       `json:"layers,omitempty"`
}

// EmbeddedDataDoc is base64-encoded little-endian f32 sample content.
type EmbeddedDataDoc struct {
	DataBase64 string `json:"data_base64"`
	SampleRate int    `json:"sample_rate"`
}

// LayerDoc is one multi_sampler key/velocity zone.
type LayerDoc struct {
	FilePath     *string          `json:"file_path,omitempty"`
	EmbeddedData *EmbeddedDataDoc `json:"embedded_data,omitempty"`
	KeyMin       byte             `json:"key_min"`
	KeyMax       byte             `json:"key_max"`
	RootKey      byte             `json:"root_key"`
	VelocityMin  byte             `json:"velocity_min"`
	VelocityMax  byte             `json:"velocity_max"`
	LoopStart    *int             `json:"loop_start,omitempty"`
	LoopEnd      *int             `json:"loop_end,omitempty"`
	LoopMode     string           `json:"loop_mode,omitempty"` // "one_shot" | "loop" | "ping_pong", default "one_shot"
}

const defaultVoiceCount = 8

// UnmarshalJSON parses known fields via the embedded type and stashes
// everything else so Marshal can put it back, satisfying the round-trip
// requirement for fields this version of the engine doesn't know about.
func (d *Document) UnmarshalJSON(data []byte) error {
	type alias Document
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*d = Document(a)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, k := range []string{"metadata", "nodes", "connections", "midi_targets", "output_node"} {
		delete(raw, k)
	}
	d.extra = raw
	return nil
}

// MarshalJSON re-emits known fields plus whatever unknown top-level
// fields were captured on unmarshal.
func (d *Document) MarshalJSON() ([]byte, error) {
	type alias Document
	b, err := json.Marshal(alias(*d))
	if err != nil {
		return nil, err
	}
	return mergeExtra(b, d.extra)
}

func (n *NodeDoc) UnmarshalJSON(data []byte) error {
	type alias NodeDoc
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*n = NodeDoc(a)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, k := range []string{"id", "node_type", "parameters", "position", "template_graph", "sample_data", "voice_count", "stages"} {
		delete(raw, k)
	}
	n.extra = raw
	return nil
}

func (n *NodeDoc) MarshalJSON() ([]byte, error) {
	type alias NodeDoc
	b, err := json.Marshal(alias(*n))
	if err != nil {
		return nil, err
	}
	return mergeExtra(b, n.extra)
}

func mergeExtra(marshaled []byte, extra map[string]json.RawMessage) ([]byte, error) {
	if len(extra) == 0 {
		return marshaled, nil
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(marshaled, &merged); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, exists := merged[k]; !exists {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// Load parses a preset document and builds a graph.Graph at sampleRate.
func Load(data []byte, sampleRate float64) (*graph.Graph, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("preset: %w", err)
	}
	return buildGraph(&doc, sampleRate)
}

func buildGraph(doc *Document, sampleRate float64) (*graph.Graph, error) {
	g := graph.New()
	idMap := make(map[int]int, len(doc.Nodes))

	for _, nd := range doc.Nodes {
		n, err := buildNode(&nd, sampleRate)
		if err != nil {
			return nil, fmt.Errorf("preset: node %d (%s): %w", nd.ID, nd.NodeType, err)
		}
		idx := g.AddNode(n)
		idMap[nd.ID] = idx
	}

	for _, c := range doc.Connections {
		src, ok1 := idMap[c.SrcNode]
		dst, ok2 := idMap[c.DstNode]
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("preset: connection references unknown node id")
		}
		if err := g.Connect(src, c.SrcPort, dst, c.DstPort); err != nil {
			return nil, fmt.Errorf("preset: connect %d->%d: %w", c.SrcNode, c.DstNode, err)
		}
	}

	for _, midID := range doc.MidiTargets {
		if idx, ok := idMap[midID]; ok {
			g.SetMIDITarget(idx, true)
		}
	}

	if outIdx, ok := idMap[doc.OutputNode]; ok {
		g.SetOutputNode(outIdx)
	}

	return g, nil
}

func buildNode(nd *NodeDoc, sampleRate float64) (graph.Node, error) {
	switch nd.NodeType {
	case "voice_allocator":
		return buildVoiceAllocator(nd, sampleRate)
	case "effect_chain":
		return buildEffectChain(nd, sampleRate)
	case "simple_sampler":
		n := nodes.NewSimpleSampler(nil)
		if nd.SampleData != nil {
			s, err := loadSampleData(nd.SampleData.FilePath, nd.SampleData.EmbeddedData)
			if err != nil {
				return nil, err
			}
			n.SetSample(s)
		}
		applyParams(n.Params(), nd.Parameters)
		return n, nil
	case "multi_sampler":
		n := nodes.NewMultiSampler(nil)
		if nd.SampleData != nil {
			layers, err := buildLayers(nd.SampleData.Layers)
			if err != nil {
				return nil, err
			}
			n.SetLayers(layers)
		}
		applyParams(n.Params(), nd.Parameters)
		return n, nil
	default:
		n, ok := nodes.New(nd.NodeType, sampleRate)
		if !ok {
			return nil, fmt.Errorf("unknown node_type %q", nd.NodeType)
		}
		applyParams(n.Params(), nd.Parameters)
		return n, nil
	}
}

func buildVoiceAllocator(nd *NodeDoc, sampleRate float64) (graph.Node, error) {
	if nd.TemplateGraph == nil {
		return nil, fmt.Errorf("voice_allocator requires template_graph")
	}
	voiceCount := nd.VoiceCount
	if voiceCount <= 0 {
		voiceCount = defaultVoiceCount
	}
	templateDoc := nd.TemplateGraph

	build := func(sr float64) (*graph.Graph, *nodes.TemplateIn, *nodes.TemplateOut) {
		g, _ := buildGraph(templateDoc, sr)
		var in *nodes.TemplateIn
		var out *nodes.TemplateOut
		for _, id := range g.NodeIDs() {
			switch t := g.Node(id).(type) {
			case *nodes.TemplateIn:
				in = t
			case *nodes.TemplateOut:
				out = t
			}
		}
		return g, in, out
	}
	n := nodes.NewVoiceAllocator(sampleRate, voiceCount, build)
	applyParams(n.Params(), nd.Parameters)
	return n, nil
}

func buildEffectChain(nd *NodeDoc, sampleRate float64) (graph.Node, error) {
	stages := make([]graph.Node, 0, len(nd.Stages))
	for i := range nd.Stages {
		s, err := buildNode(&nd.Stages[i], sampleRate)
		if err != nil {
			return nil, err
		}
		stages = append(stages, s)
	}
	n := nodes.NewEffectChain(stages...)
	applyParams(n.Params(), nd.Parameters)
	return n, nil
}

func applyParams(ps *graph.ParamSet, params map[string]float64) {
	for k, v := range params {
		id, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		ps.Set(id, v)
	}
}

func loadSampleData(filePath *string, embedded *EmbeddedDataDoc) (*nodes.SampleData, error) {
	if embedded != nil {
		raw, err := base64.StdEncoding.DecodeString(embedded.DataBase64)
		if err != nil {
			return nil, fmt.Errorf("decode embedded_data: %w", err)
		}
		if len(raw)%4 != 0 {
			return nil, fmt.Errorf("embedded_data: length %d not a multiple of 4", len(raw))
		}
		data := make([]float32, len(raw)/4)
		for i := range data {
			bits := binary.LittleEndian.Uint32(raw[i*4:])
			data[i] = math.Float32frombits(bits)
		}
		// embedded_data carries no channel count field in the preset
		// format; treated as mono, matching the one-shot/zone sample
		// content sample-library exports typically ship as.
		return &nodes.SampleData{Data: data, Channels: 1, SampleRate: embedded.SampleRate}, nil
	}
	if filePath != nil {
		s, err := decode.LoadWAV(*filePath)
		if err != nil {
			return nil, err
		}
		return &nodes.SampleData{Data: s.Data, Channels: s.Channels, SampleRate: s.SampleRate}, nil
	}
	return nil, fmt.Errorf("sample_data has neither file_path nor embedded_data")
}

func buildLayers(docs []LayerDoc) ([]nodes.Layer, error) {
	layers := make([]nodes.Layer, 0, len(docs))
	for _, ld := range docs {
		s, err := loadSampleData(ld.FilePath, ld.EmbeddedData)
		if err != nil {
			return nil, err
		}
		loopStart := 0
		if ld.LoopStart != nil {
			loopStart = *ld.LoopStart
		}
		loopEnd := 0
		if ld.LoopEnd != nil {
			loopEnd = *ld.LoopEnd
		}
		mode := nodes.LoopOneShot
		switch ld.LoopMode {
		case "loop":
			mode = nodes.LoopForward
		case "ping_pong":
			mode = nodes.LoopPingPong
		}
		layers = append(layers, nodes.Layer{
			Sample: s, KeyMin: ld.KeyMin, KeyMax: ld.KeyMax, RootKey: ld.RootKey,
			VelocityMin: ld.VelocityMin, VelocityMax: ld.VelocityMax,
			LoopStart: loopStart, LoopEnd: loopEnd, LoopMode: mode,
		})
	}
	return layers, nil
}

// Save dehydrates a live graph back into a preset document, the mirror
// of Load. Node positions aren't tracked anywhere on graph.Node, so every
// saved node's position comes back as [0, 0]; a project format layered on
// top of presets would need to track canvas layout separately.
func Save(g *graph.Graph) ([]byte, error) {
	doc, err := dehydrateGraph(g)
	if err != nil {
		return nil, fmt.Errorf("preset: %w", err)
	}
	return json.MarshalIndent(doc, "", "  ")
}

func dehydrateGraph(g *graph.Graph) (*Document, error) {
	ids := g.NodeIDs()
	sort.Ints(ids)

	doc := &Document{
		MidiTargets: g.MIDITargets(),
	}
	sort.Ints(doc.MidiTargets)

	for _, id := range ids {
		nd, err := dehydrateNode(id, g.Node(id))
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", id, err)
		}
		doc.Nodes = append(doc.Nodes, nd)
	}

	for _, c := range g.ConnectionList() {
		doc.Connections = append(doc.Connections, ConnectionDoc{
			SrcNode: c.SrcNode, SrcPort: c.SrcPort,
			DstNode: c.DstNode, DstPort: c.DstPort,
		})
	}

	if outID, ok := g.OutputNode(); ok {
		doc.OutputNode = outID
	}

	return doc, nil
}

func dehydrateNode(id int, n graph.Node) (NodeDoc, error) {
	nd := NodeDoc{
		ID:         id,
		NodeType:   n.NodeType(),
		Parameters: dehydrateParams(n.Params()),
	}

	switch t := n.(type) {
	case *nodes.VoiceAllocator:
		templateDoc, err := dehydrateGraph(t.TemplateGraph())
		if err != nil {
			return NodeDoc{}, fmt.Errorf("voice_allocator template: %w", err)
		}
		nd.TemplateGraph = templateDoc
		nd.VoiceCount = t.VoiceCount()
	case *nodes.EffectChain:
		for i, stage := range t.Stages() {
			sd, err := dehydrateNode(i, stage)
			if err != nil {
				return NodeDoc{}, fmt.Errorf("effect_chain stage %d: %w", i, err)
			}
			nd.Stages = append(nd.Stages, sd)
		}
	case *nodes.SimpleSampler:
		if s := t.Sample(); s != nil {
			nd.SampleData = &SampleDataDoc{EmbeddedData: dehydrateSampleData(s)}
		}
	case *nodes.MultiSampler:
		if layers := t.Layers(); len(layers) > 0 {
			nd.SampleData = &SampleDataDoc{Layers: dehydrateLayers(layers)}
		}
	}

	return nd, nil
}

func dehydrateParams(ps *graph.ParamSet) map[string]float64 {
	infos := ps.List()
	if len(infos) == 0 {
		return nil
	}
	params := make(map[string]float64, len(infos))
	for _, info := range infos {
		params[strconv.Itoa(info.ID)] = ps.Get(info.ID)
	}
	return params
}

func dehydrateSampleData(s *nodes.SampleData) *EmbeddedDataDoc {
	raw := make([]byte, len(s.Data)*4)
	for i, f := range s.Data {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(f))
	}
	return &EmbeddedDataDoc{
		DataBase64: base64.StdEncoding.EncodeToString(raw),
		SampleRate: s.SampleRate,
	}
}

func dehydrateLayers(layers []nodes.Layer) []LayerDoc {
	docs := make([]LayerDoc, 0, len(layers))
	for _, l := range layers {
		mode := "one_shot"
		switch l.LoopMode {
		case nodes.LoopForward:
			mode = "loop"
		case nodes.LoopPingPong:
			mode = "ping_pong"
		}
		var sampleDoc *EmbeddedDataDoc
		if l.Sample != nil {
			sampleDoc = dehydrateSampleData(l.Sample)
		}
		loopStart, loopEnd := l.LoopStart, l.LoopEnd
		docs = append(docs, LayerDoc{
			EmbeddedData: sampleDoc,
			KeyMin:       l.KeyMin, KeyMax: l.KeyMax, RootKey: l.RootKey,
			VelocityMin: l.VelocityMin, VelocityMax: l.VelocityMax,
			LoopStart: &loopStart, LoopEnd: &loopEnd, LoopMode: mode,
		})
	}
	return docs
}
