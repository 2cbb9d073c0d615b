// Copyright 2024-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package scheduler implements the analyses and scheduling primitives the
// kernel schedulers are built from: canonical reshaping of reduction
// operands, reduction and persistent-buffer sizing, vectorization analysis,
// transform and parallel-type propagation, inlining and caching support.
//
// The analyses operate on a fusion.Fusion plus a RuntimeInfo binding the
// input extents of one concrete invocation. Analyses that are queried
// repeatedly while a heuristic searches the schedule space memoize their
// results in a caller-owned HeuristicSummary.
//
// Functions here panic (see github.com/gomlx/exceptions) when handed a
// malformed or unsupported fusion -- those are contract violations by the
// calling scheduler -- and return errors only for data-dependent failures,
// like an extent no binding was provided for.
package scheduler

// Hardware limits of the scheduling model, sized for the NVidia GPUs the
// generated kernels target.
const (
	// RegisterFileSize is the register budget in bytes the schedulers let
	// persistent buffers occupy: half of an SM's 256KiB register file, the
	// other half left for intermediates and indexing.
	RegisterFileSize = int64(256*1024) / 2

	// XGridLimit is the maximum grid size along x.
	XGridLimit = int64(1)<<31 - 1

	// YGridLimit and ZGridLimit are the maximum grid sizes along y and z.
	YGridLimit = int64(65535)
	ZGridLimit = int64(65535)

	// ZBlockLimit is the maximum block size along z.
	ZBlockLimit = int64(64)
)

// LastPow2 returns the largest power of two less than or equal to n, and 1
// for n < 2.
func LastPow2(n int64) int64 {
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return max(int64(1), n-(n>>1))
}

// SafeDiv divides x by y, clamping the result up to 1 so the quotient can be
// used as a loop extent or divisor.
func SafeDiv(x, y int64) int64 {
	return max(x/y, int64(1))
}
