// Copyright 2024-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fusion

// closure walks the operand graph from seeds through next (producers or
// consumers) and returns every operand reached, seeds included.
func (f *Fusion) closure(seeds []*TensorView, next func(*TensorView) []*TensorView) map[*TensorView]bool {
	visited := make(map[*TensorView]bool, len(seeds))
	queue := make([]*TensorView, 0, len(seeds))
	for _, tv := range seeds {
		if !visited[tv] {
			visited[tv] = true
			queue = append(queue, tv)
		}
	}
	for len(queue) > 0 {
		tv := queue[0]
		queue = queue[1:]
		for _, other := range next(tv) {
			if !visited[other] {
				visited[other] = true
				queue = append(queue, other)
			}
		}
	}
	return visited
}

// AncestorsOf returns every operand the given ones transitively depend on,
// excluding the given operands themselves, in creation order.
func (f *Fusion) AncestorsOf(tvs ...*TensorView) []*TensorView {
	closed := f.closure(tvs, f.ProducersOf)
	for _, tv := range tvs {
		delete(closed, tv)
	}
	return f.inCreationOrder(closed)
}

// DependentsOf returns every operand transitively depending on one of the
// given ones, excluding the given operands themselves, in creation order.
func (f *Fusion) DependentsOf(tvs ...*TensorView) []*TensorView {
	closed := f.closure(tvs, f.ConsumersOf)
	for _, tv := range tvs {
		delete(closed, tv)
	}
	return f.inCreationOrder(closed)
}

// TensorViewsBetween returns the operands on any dependency path from one of
// from to one of to, endpoints included, in creation order. Operands
// reachable from from but not reaching to (or vice versa) are left out.
func (f *Fusion) TensorViewsBetween(from, to []*TensorView) []*TensorView {
	forward := f.closure(from, f.ConsumersOf)
	backward := f.closure(to, f.ProducersOf)
	var result []*TensorView
	for _, tv := range f.tvs {
		if forward[tv] && backward[tv] {
			result = append(result, tv)
		}
	}
	return result
}

func (f *Fusion) inCreationOrder(members map[*TensorView]bool) []*TensorView {
	var result []*TensorView
	for _, tv := range f.tvs {
		if members[tv] {
			result = append(result, tv)
		}
	}
	return result
}
