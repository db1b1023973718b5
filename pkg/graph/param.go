package graph

import (
	"sync/atomic"
	"unsafe"
)

// AtomicParam is a lock-free plain-value parameter cell. A graph node
// parameter is read and written in its own plain units directly; there is
// no normalised 0-1 representation.
type AtomicParam struct {
	info ParamInfo
	bits uint64
}

// NewAtomicParam creates a parameter initialised to its documented default.
func NewAtomicParam(info ParamInfo) *AtomicParam {
	p := &AtomicParam{info: info}
	p.Set(info.Default)
	return p
}

// Info returns the static parameter metadata.
func (p *AtomicParam) Info() ParamInfo { return p.info }

// Get returns the current value. Safe to call from the audio thread.
func (p *AtomicParam) Get() float64 {
	bits := atomic.LoadUint64(&p.bits)
	return *(*float64)(unsafe.Pointer(&bits))
}

// Set clamps v to [Min, Max] and stores it. Safe to call from the audio
// thread or the controller.
func (p *AtomicParam) Set(v float64) {
	if v < p.info.Min {
		v = p.info.Min
	} else if v > p.info.Max {
		v = p.info.Max
	}
	atomic.StoreUint64(&p.bits, *(*uint64)(unsafe.Pointer(&v)))
}

// ParamSet is the mutable collection of a node's parameters, keyed by ID.
type ParamSet struct {
	order []int
	byID  map[int]*AtomicParam
}

// NewParamSet builds a ParamSet from a parameter info list, one
// AtomicParam per entry, in the order given.
func NewParamSet(infos []ParamInfo) *ParamSet {
	ps := &ParamSet{byID: make(map[int]*AtomicParam, len(infos))}
	for _, info := range infos {
		ps.order = append(ps.order, info.ID)
		ps.byID[info.ID] = NewAtomicParam(info)
	}
	return ps
}

// Get returns the parameter's value, or 0 if id is unknown.
func (ps *ParamSet) Get(id int) float64 {
	if p, ok := ps.byID[id]; ok {
		return p.Get()
	}
	return 0
}

// Set stores a value for id. No-op if id is unknown.
func (ps *ParamSet) Set(id int, v float64) {
	if p, ok := ps.byID[id]; ok {
		p.Set(v)
	}
}

// List returns the parameter infos in declaration order.
func (ps *ParamSet) List() []ParamInfo {
	infos := make([]ParamInfo, 0, len(ps.order))
	for _, id := range ps.order {
		infos = append(infos, ps.byID[id].Info())
	}
	return infos
}
