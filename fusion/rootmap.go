// Copyright 2024-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fusion

import (
	"fmt"

	"github.com/gomlx/exceptions"
)

// MapProducerToConsumer maps producer MaybeRFactor axes to consumer Root
// axes through the expression defining consumer. Producer reduction axes are
// left out -- consumers never see them -- except that a reduction's own
// output maps its reduced axes back to the axes they reduce. Broadcast axes
// map to the concrete axes they align with.
func MapProducerToConsumer(producer, consumer *TensorView) map[*IterDomain]*IterDomain {
	f := producer.fusion
	def := f.definition[consumer]
	if def == nil {
		exceptions.Panicf("fusion.MapProducerToConsumer: %s has no definition", consumer.Name())
	}
	isProducer := false
	for _, in := range def.Inputs() {
		if in == producer {
			isProducer = true
		}
	}
	if !isProducer {
		exceptions.Panicf("fusion.MapProducerToConsumer: %s is not a producer of %s",
			producer.Name(), consumer.Name())
	}
	pAxes := NoReductions(producer.MaybeRFactor())
	cAxes := consumer.root
	if bop, isBroadcastOp := def.(*BroadcastOp); isBroadcastOp {
		kept := make([]*IterDomain, 0, len(pAxes))
		for ii, isB := range bop.isBroadcastDim {
			if !isB {
				kept = append(kept, consumer.root[ii])
			}
		}
		cAxes = kept
	}
	if len(pAxes) != len(cAxes) {
		exceptions.Panicf("fusion.MapProducerToConsumer: %s and %s do not align (%d vs %d axes)",
			producer.Name(), consumer.Name(), len(pAxes), len(cAxes))
	}
	p2c := make(map[*IterDomain]*IterDomain, len(pAxes))
	for ii := range pAxes {
		p2c[pAxes[ii]] = cAxes[ii]
	}
	return p2c
}

// MapConsumerToProducer is the inverse of MapProducerToConsumer.
func MapConsumerToProducer(consumer, producer *TensorView) map[*IterDomain]*IterDomain {
	p2c := MapProducerToConsumer(producer, consumer)
	c2p := make(map[*IterDomain]*IterDomain, len(p2c))
	for p, c := range p2c {
		c2p[c] = p
	}
	return c2p
}

// RootClasses groups the root and rfactor axes of every operand of a fusion
// into equivalence classes of axes indexing the same extent, built from the
// pairwise producer/consumer maps of every expression.
//
// The classes reflect the fusion at construction time; rebuild after adding
// expressions or caches.
type RootClasses struct {
	parent map[*IterDomain]*IterDomain
	exact  bool
}

// ExactRootClasses builds equivalence classes where broadcast axes never
// join the concrete axes they align with.
func ExactRootClasses(f *Fusion) *RootClasses {
	return newRootClasses(f, true)
}

// PermissiveRootClasses builds equivalence classes where broadcast axes join
// the concrete axes they align with.
func PermissiveRootClasses(f *Fusion) *RootClasses {
	return newRootClasses(f, false)
}

func newRootClasses(f *Fusion, exact bool) *RootClasses {
	rc := &RootClasses{parent: make(map[*IterDomain]*IterDomain), exact: exact}
	for _, tv := range f.tvs {
		for _, d := range tv.root {
			rc.parent[d] = d
		}
		for _, d := range tv.rfactor {
			rc.parent[d] = d
		}
	}
	for _, e := range f.exprs {
		for _, consumer := range e.Outputs() {
			for _, producer := range e.Inputs() {
				for p, c := range MapProducerToConsumer(producer, consumer) {
					if exact && p.IsBroadcast() != c.IsBroadcast() {
						continue
					}
					rc.union(p, c)
				}
			}
		}
	}
	return rc
}

func (rc *RootClasses) find(d *IterDomain) *IterDomain {
	p, known := rc.parent[d]
	if !known {
		rc.parent[d] = d
		return d
	}
	if p == d {
		return d
	}
	root := rc.find(p)
	rc.parent[d] = root
	return root
}

// union links the classes of a and b, keeping the axis with the smallest id
// as representative so classes are deterministic.
func (rc *RootClasses) union(a, b *IterDomain) {
	ra, rb := rc.find(a), rc.find(b)
	if ra == rb {
		return
	}
	if rb.id < ra.id {
		ra, rb = rb, ra
	}
	rc.parent[rb] = ra
}

// AreMapped reports whether two root/rfactor axes index the same extent.
func (rc *RootClasses) AreMapped(a, b *IterDomain) bool {
	return rc.find(a) == rc.find(b)
}

// Representative returns the canonical axis of d's class: the mapped axis
// with the smallest id.
func (rc *RootClasses) Representative(d *IterDomain) *IterDomain {
	return rc.find(d)
}

// LeafDescriptors computes a structural descriptor for each of tv's current
// leaf axes, keyed by axis id. Two leaf axes -- of different operands -- with
// equal descriptors were derived from equivalent root axes by the same
// transforms, so they iterate the same way. Axes whose derivation mixes in
// untracked axes get no descriptor.
func (rc *RootClasses) LeafDescriptors(tv *TensorView) map[int]string {
	desc := make(map[int]string, len(tv.leaf))
	for _, d := range tv.MaybeRFactor() {
		desc[d.id] = fmt.Sprintf("r%d", rc.find(d).id)
	}
	for _, rec := range tv.history[tv.rfactorRecords:] {
		switch rec.Kind {
		case TransformSplit:
			in, known := desc[rec.In]
			if !known {
				continue
			}
			desc[rec.Outer] = fmt.Sprintf("so(%s,%d)", in, rec.Factor)
			desc[rec.Inner] = fmt.Sprintf("si(%s,%d)", in, rec.Factor)
		case TransformMerge:
			outer, knownOuter := desc[rec.Outer]
			inner, knownInner := desc[rec.Inner]
			if !knownOuter || !knownInner {
				continue
			}
			desc[rec.Out] = fmt.Sprintf("m(%s,%s)", outer, inner)
		}
	}
	leafDesc := make(map[int]string, len(tv.leaf))
	for _, d := range tv.leaf {
		if s, known := desc[d.id]; known {
			leafDesc[d.id] = s
		}
	}
	return leafDesc
}

// ProjectViewToRoot walks a view operand's frozen records backward, mapping
// an rfactor-side axis to the root axis holding its innermost elements.
// Returns nil when those elements do not trace to a single root axis: the
// axis is the outer part of a split, or absorbs another axis by merge.
func ProjectViewToRoot(tv *TensorView, d *IterDomain) *IterDomain {
	cur := d
	recs := tv.history[:tv.rfactorRecords]
	for ii := len(recs) - 1; ii >= 0; ii-- {
		rec := recs[ii]
		switch rec.Kind {
		case TransformSplit:
			if cur.id == rec.Inner {
				cur = tv.axisByID(rec.In)
			} else if cur.id == rec.Outer {
				return nil
			}
		case TransformMerge:
			if cur.id == rec.Out {
				cur = tv.axisByID(rec.Inner)
			}
		}
	}
	return cur
}

// ProjectViewToRFactor walks a view operand's frozen records forward,
// mapping a root axis to the rfactor-side axis holding its innermost
// elements. Returns nil when the axis becomes the outer operand of a merge.
func ProjectViewToRFactor(tv *TensorView, d *IterDomain) *IterDomain {
	cur := d
	for _, rec := range tv.history[:tv.rfactorRecords] {
		switch rec.Kind {
		case TransformSplit:
			if cur.id == rec.In {
				cur = tv.axisByID(rec.Inner)
			}
		case TransformMerge:
			if cur.id == rec.Inner {
				cur = tv.axisByID(rec.Out)
			} else if cur.id == rec.Outer {
				return nil
			}
		}
	}
	return cur
}
