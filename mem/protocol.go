// Package mem defines the messages that travel between the first-level cache
// pipeline, the load-miss queue, and the second-level cache.
package mem

import (
	"github.com/raulbehl/nyuzisim/sim"
)

var missReqByteOverhead = 12
var loadReqByteOverhead = 16
var rspByteOverhead = 4

// A CoreID identifies one core on the chip.
type CoreID int

// A UnitID identifies one requesting unit within a core.
type UnitID int

// The units of a core that can request data from the second-level cache.
const (
	UnitDataCache UnitID = iota
	UnitInstructionCache
	UnitStoreBuffer
)

// A MissReq reports a load miss from the first-level cache pipeline to the
// load-miss queue. The address is at cache-line granularity.
type MissReq struct {
	sim.MsgMeta

	Address      uint64
	Way          int
	Strand       int
	Synchronized bool
}

// Meta returns the meta data of the message.
func (r *MissReq) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// Clone returns a copy of the message with a different ID.
func (r *MissReq) Clone() sim.Msg {
	cloneMsg := *r
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// MissReqBuilder can build miss requests.
type MissReqBuilder struct {
	src, dst     sim.RemotePort
	address      uint64
	way          int
	strand       int
	synchronized bool
}

// WithSrc sets the source of the request to build.
func (b MissReqBuilder) WithSrc(src sim.RemotePort) MissReqBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the request to build.
func (b MissReqBuilder) WithDst(dst sim.RemotePort) MissReqBuilder {
	b.dst = dst
	return b
}

// WithAddress sets the cache-line address of the request to build.
func (b MissReqBuilder) WithAddress(address uint64) MissReqBuilder {
	b.address = address
	return b
}

// WithWay sets the target way of the request to build.
func (b MissReqBuilder) WithWay(way int) MissReqBuilder {
	b.way = way
	return b
}

// WithStrand sets the requesting strand of the request to build.
func (b MissReqBuilder) WithStrand(strand int) MissReqBuilder {
	b.strand = strand
	return b
}

// Synchronized marks the request to build as a synchronized load.
func (b MissReqBuilder) Synchronized() MissReqBuilder {
	b.synchronized = true
	return b
}

// Build creates a new MissReq.
func (b MissReqBuilder) Build() *MissReq {
	r := &MissReq{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.TrafficBytes = missReqByteOverhead
	r.Address = b.address
	r.Way = b.way
	r.Strand = b.strand
	r.Synchronized = b.synchronized

	return r
}

// A WakeupRsp carries the set of strands whose loads just completed back to
// the first-level cache pipeline. It is only meaningful on the cycle it is
// delivered.
type WakeupRsp struct {
	sim.MsgMeta

	Strands StrandSet
}

// Meta returns the meta data of the message.
func (r *WakeupRsp) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// Clone returns a copy of the message with a different ID.
func (r *WakeupRsp) Clone() sim.Msg {
	cloneMsg := *r
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// WakeupRspBuilder can build wakeup responses.
type WakeupRspBuilder struct {
	src, dst sim.RemotePort
	strands  StrandSet
}

// WithSrc sets the source of the response to build.
func (b WakeupRspBuilder) WithSrc(src sim.RemotePort) WakeupRspBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the response to build.
func (b WakeupRspBuilder) WithDst(dst sim.RemotePort) WakeupRspBuilder {
	b.dst = dst
	return b
}

// WithStrands sets the strands to wake up.
func (b WakeupRspBuilder) WithStrands(strands StrandSet) WakeupRspBuilder {
	b.strands = strands
	return b
}

// Build creates a new WakeupRsp.
func (b WakeupRspBuilder) Build() *WakeupRsp {
	r := &WakeupRsp{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.TrafficBytes = rspByteOverhead
	r.Strands = b.strands

	return r
}

// A LoadReq asks the second-level cache to fetch one cache line. The strand
// field correlates the eventual response with the miss-queue entry that
// issued the request.
type LoadReq struct {
	sim.MsgMeta

	Address      uint64
	Way          int
	Strand       int
	Synchronized bool
	Core         CoreID
	Unit         UnitID
}

// Meta returns the meta data of the message.
func (r *LoadReq) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// Clone returns a copy of the message with a different ID.
func (r *LoadReq) Clone() sim.Msg {
	cloneMsg := *r
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// LoadReqBuilder can build load requests to the second-level cache.
type LoadReqBuilder struct {
	src, dst     sim.RemotePort
	address      uint64
	way          int
	strand       int
	synchronized bool
	core         CoreID
	unit         UnitID
}

// WithSrc sets the source of the request to build.
func (b LoadReqBuilder) WithSrc(src sim.RemotePort) LoadReqBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the request to build.
func (b LoadReqBuilder) WithDst(dst sim.RemotePort) LoadReqBuilder {
	b.dst = dst
	return b
}

// WithAddress sets the cache-line address of the request to build.
func (b LoadReqBuilder) WithAddress(address uint64) LoadReqBuilder {
	b.address = address
	return b
}

// WithWay sets the way that the fetched line will land in.
func (b LoadReqBuilder) WithWay(way int) LoadReqBuilder {
	b.way = way
	return b
}

// WithStrand sets the strand correlation tag of the request to build.
func (b LoadReqBuilder) WithStrand(strand int) LoadReqBuilder {
	b.strand = strand
	return b
}

// Synchronized marks the request to build as a synchronized load.
func (b LoadReqBuilder) Synchronized() LoadReqBuilder {
	b.synchronized = true
	return b
}

// WithCore sets the requesting core of the request to build.
func (b LoadReqBuilder) WithCore(core CoreID) LoadReqBuilder {
	b.core = core
	return b
}

// WithUnit sets the requesting unit of the request to build.
func (b LoadReqBuilder) WithUnit(unit UnitID) LoadReqBuilder {
	b.unit = unit
	return b
}

// Build creates a new LoadReq.
func (b LoadReqBuilder) Build() *LoadReq {
	r := &LoadReq{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.TrafficBytes = loadReqByteOverhead
	r.Address = b.address
	r.Way = b.way
	r.Strand = b.strand
	r.Synchronized = b.synchronized
	r.Core = b.core
	r.Unit = b.unit

	return r
}

// A DataReadyRsp is the second-level cache's answer to a LoadReq. The strand
// tag routes the response back to the miss-queue entry.
type DataReadyRsp struct {
	sim.MsgMeta

	RespondTo string
	Strand    int
}

// Meta returns the meta data of the message.
func (r *DataReadyRsp) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// Clone returns a copy of the message with a different ID.
func (r *DataReadyRsp) Clone() sim.Msg {
	cloneMsg := *r
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// GetRspTo returns the ID of the request that the response responds to.
func (r *DataReadyRsp) GetRspTo() string {
	return r.RespondTo
}

// DataReadyRspBuilder can build data-ready responses.
type DataReadyRspBuilder struct {
	src, dst sim.RemotePort
	rspTo    string
	strand   int
}

// WithSrc sets the source of the response to build.
func (b DataReadyRspBuilder) WithSrc(src sim.RemotePort) DataReadyRspBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the response to build.
func (b DataReadyRspBuilder) WithDst(dst sim.RemotePort) DataReadyRspBuilder {
	b.dst = dst
	return b
}

// WithRspTo sets the ID of the request that the response to build responds to.
func (b DataReadyRspBuilder) WithRspTo(id string) DataReadyRspBuilder {
	b.rspTo = id
	return b
}

// WithStrand sets the strand correlation tag of the response to build.
func (b DataReadyRspBuilder) WithStrand(strand int) DataReadyRspBuilder {
	b.strand = strand
	return b
}

// Build creates a new DataReadyRsp.
func (b DataReadyRspBuilder) Build() *DataReadyRsp {
	r := &DataReadyRsp{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.TrafficBytes = rspByteOverhead
	r.RespondTo = b.rspTo
	r.Strand = b.strand

	return r
}
