// Package nodes implements the concrete leaf and compound node kinds that
// populate a graph.Graph, wrapping the DSP primitives in pkg/dsp/* behind
// the uniform graph.Node contract.
package nodes

import "github.com/justyntemme/lightningbeam-daw/pkg/graph"

// Base provides the static, rarely-varying parts of the Node contract
// (type tag, category, port lists, parameter set) so concrete nodes only
// need to implement Process, Reset, and Clone.
type Base struct {
	nodeType string
	category graph.Category
	inputs   []graph.Port
	outputs  []graph.Port
	params   *graph.ParamSet
}

func newBase(nodeType string, category graph.Category, inputs, outputs []graph.Port, paramInfos []graph.ParamInfo) Base {
	return Base{
		nodeType: nodeType,
		category: category,
		inputs:   inputs,
		outputs:  outputs,
		params:   graph.NewParamSet(paramInfos),
	}
}

func (b *Base) NodeType() string          { return b.nodeType }
func (b *Base) Category() graph.Category  { return b.category }
func (b *Base) InputPorts() []graph.Port  { return b.inputs }
func (b *Base) OutputPorts() []graph.Port { return b.outputs }
func (b *Base) Params() *graph.ParamSet   { return b.params }
