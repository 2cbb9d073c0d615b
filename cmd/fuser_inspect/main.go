// Copyright 2024-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// fuser_inspect prints the scheduler analyses for a few canned fusions, one
// report per flag. It is a debugging aid: it shows what the heuristics see
// (reduction properties, persistent buffers, broadcast multiples, tiling)
// without attaching a debugger to a compilation.
//
// Usage:
//
//	fuser_inspect -properties    # Row reduction properties.
//	fuser_inspect -persistence   # Persistent buffers of a scaled softmax.
//	fuser_inspect -broadcast     # Broadcast multiples of a mixed-precision fusion.
//	fuser_inspect -matmul        # Hierarchical tiling of a half-precision matmul.
//	fuser_inspect -all
package main

import (
	"flag"
	"os"

	"k8s.io/klog/v2"
)

var (
	flagProperties = flag.Bool("properties", false,
		"Print the reduction properties of a [1024, 64] row reduction.")
	flagPersistence = flag.Bool("persistence", false,
		"Print the persistent buffer analysis of a scaled softmax.")
	flagBroadcast = flag.Bool("broadcast", false,
		"Print the broadcast multiples of a mixed-precision pointwise fusion.")
	flagMatmul = flag.Bool("matmul", false,
		"Print the tiling schedule of a half-precision matmul.")
	flagAll = flag.Bool("all", false, "Print every report.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if len(flag.Args()) > 0 {
		klog.Errorf("Unexpected arguments %q: reports are selected with flags, see fuser_inspect -help.", flag.Args())
		os.Exit(1)
	}
	if *flagAll {
		*flagProperties, *flagPersistence, *flagBroadcast, *flagMatmul = true, true, true, true
	}
	if !*flagProperties && !*flagPersistence && !*flagBroadcast && !*flagMatmul {
		klog.Errorf("No report selected, see fuser_inspect -help for the available ones.")
		os.Exit(1)
	}

	if *flagProperties {
		reportProperties()
	}
	if *flagPersistence {
		reportPersistence()
	}
	if *flagBroadcast {
		reportBroadcast()
	}
	if *flagMatmul {
		reportMatmul()
	}
}
