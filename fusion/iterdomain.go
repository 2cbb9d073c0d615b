// Copyright 2024-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fusion

import (
	"fmt"

	"github.com/gomlx/exceptions"
)

// IterType classifies what an axis of a TensorView iterates over.
type IterType int

//go:generate go tool enumer -type=IterType -trimprefix=Iter -output=gen_itertype_enumer.go iterdomain.go
const (
	// IterIteration is a plain data axis.
	IterIteration IterType = iota

	// IterReduction marks an axis being reduced away by the defining
	// expression. Reduction axes exist only on the output of a ReductionOp
	// or MmaOp; downstream consumers do not see them.
	IterReduction

	// IterBroadcast marks a size-1 axis that aligns with a concrete axis of
	// another operand.
	IterBroadcast
)

// ParallelType is the hardware resource an axis is bound to. Unbound axes are
// ParallelSerial.
type ParallelType int

//go:generate go tool enumer -type=ParallelType -trimprefix=Parallel -output=gen_paralleltype_enumer.go iterdomain.go
const (
	ParallelSerial ParallelType = iota
	ParallelBIDx
	ParallelBIDy
	ParallelBIDz
	ParallelTIDx
	ParallelTIDy
	ParallelTIDz
	ParallelVectorize
	ParallelUnroll
	ParallelUnswitch
	ParallelMisalignedVectorize
)

// IsThreadDim reports whether p binds an axis to threads within a block.
func (p ParallelType) IsThreadDim() bool {
	return p == ParallelTIDx || p == ParallelTIDy || p == ParallelTIDz
}

// IsBlockDim reports whether p binds an axis to blocks of the grid.
func (p ParallelType) IsBlockDim() bool {
	return p == ParallelBIDx || p == ParallelBIDy || p == ParallelBIDz
}

// MemorySpace is where a TensorView is materialized. The zero value is
// MemoryLocal: freshly created intermediates live in registers until a
// scheduler decides otherwise.
type MemorySpace int

//go:generate go tool enumer -type=MemorySpace -trimprefix=Memory -output=gen_memoryspace_enumer.go iterdomain.go
const (
	MemoryLocal MemorySpace = iota
	MemoryShared
	MemoryGlobal
)

// IterDomain is one axis of a TensorView: an extent plus iteration kind and
// parallel binding. IterDomains are never shared between TensorViews -- each
// operand owns private clones -- but their extents (*Val) may be shared.
//
// Axis ids are unique within a Fusion and stable for the life of the axis;
// transform records reference axes by id.
type IterDomain struct {
	id       int
	extent   *Val
	iterType IterType
	parallel ParallelType
	rfactor  bool

	// padToWarp > 0 requests the extent be padded to a multiple of this many
	// threads when the axis is bound to TIDx.
	padToWarp int64
}

func (f *Fusion) newIterDomain(extent *Val, iterType IterType) *IterDomain {
	d := &IterDomain{id: f.nextAxisID, extent: extent, iterType: iterType}
	f.nextAxisID++
	return d
}

// cloneAxis copies d's extent and iteration kind into a fresh axis. Parallel
// binding, rfactor marks and padding do not carry over.
func (f *Fusion) cloneAxis(d *IterDomain) *IterDomain {
	return f.newIterDomain(d.extent, d.iterType)
}

// ID returns the fusion-unique id of this axis.
func (d *IterDomain) ID() int { return d.id }

// Extent returns the symbolic size of the axis.
func (d *IterDomain) Extent() *Val { return d.extent }

// IterType returns the iteration kind of the axis.
func (d *IterDomain) IterType() IterType { return d.iterType }

// IsIteration reports whether this is a plain data axis.
func (d *IterDomain) IsIteration() bool { return d.iterType == IterIteration }

// IsReduction reports whether this axis is reduced by its operand's
// definition.
func (d *IterDomain) IsReduction() bool { return d.iterType == IterReduction }

// IsBroadcast reports whether this is a broadcast axis.
func (d *IterDomain) IsBroadcast() bool { return d.iterType == IterBroadcast }

// IsTrivialReduction reports whether this is a reduction over a single
// element, which no scheduler needs to parallelize or stage.
func (d *IterDomain) IsTrivialReduction() bool {
	return d.iterType == IterReduction && d.extent.IsConst() && d.extent.ConstValue() == 1
}

// ParallelType returns the hardware binding of the axis.
func (d *IterDomain) ParallelType() ParallelType { return d.parallel }

// Parallelize binds the axis to the given hardware resource.
func (d *IterDomain) Parallelize(p ParallelType) { d.parallel = p }

// IsRFactor reports whether the axis belongs to an rfactor domain, i.e. it
// was produced by transforms later frozen into the operand's logical shape.
func (d *IterDomain) IsRFactor() bool { return d.rfactor }

// PadToMultipleOfWarp requests that the extent be padded up to a multiple of
// warpSize threads when bound to TIDx. Used by warp-reduction schedules.
func (d *IterDomain) PadToMultipleOfWarp(warpSize int64) {
	if warpSize <= 0 {
		exceptions.Panicf("IterDomain.PadToMultipleOfWarp: warp size %d must be positive", warpSize)
	}
	d.padToWarp = warpSize
}

// HasPaddingToWarp reports whether warp padding was requested on this axis.
func (d *IterDomain) HasPaddingToWarp() bool { return d.padToWarp > 0 }

// PaddedWarpMultiple returns the requested warp multiple, or 0 when none.
func (d *IterDomain) PaddedWarpMultiple() int64 { return d.padToWarp }

// String renders the axis as e.g. "i12{1024}", with prefix r for reductions,
// b for broadcasts, and the parallel binding appended when bound.
func (d *IterDomain) String() string {
	prefix := "i"
	switch d.iterType {
	case IterReduction:
		prefix = "r"
	case IterBroadcast:
		prefix = "b"
	}
	s := fmt.Sprintf("%s%d{%s}", prefix, d.id, d.extent)
	if d.parallel != ParallelSerial {
		s += ":" + d.parallel.String()
	}
	return s
}
