// Copyright 2026 go-exblas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command exdot reports the kernel selected for this machine and runs a
// reproducibility self-check: the same generated dot product computed with
// every expansion depth from MinExpansionSize to MaxExpansionSize must
// produce one byte pattern.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"runtime"

	"golang.org/x/sys/cpu"

	"github.com/riakymch/go-exblas/exblas"
)

func main() {
	n := flag.Int("n", 1<<20, "vector length")
	seed := flag.Int64("seed", 1, "input generator seed")
	flag.Parse()

	fmt.Printf("kernel:    %s\n", exblas.CurrentKernel())
	fmt.Printf("cpus:      %d\n", runtime.GOMAXPROCS(0))
	if runtime.GOARCH == "amd64" {
		fmt.Printf("fma3:      %v\n", cpu.X86.HasFMA)
		fmt.Printf("avx2:      %v\n", cpu.X86.HasAVX2)
	}

	rng := rand.New(rand.NewSource(*seed))
	x := make([]float64, *n)
	y := make([]float64, *n)
	for i := range x {
		x[i] = rng.NormFloat64() * 1e8
		y[i] = rng.NormFloat64() * 1e-8
	}

	ref := exblas.NewSuperacc()
	exblas.ExDot(*n, exblas.Slice(x), exblas.Slice(y), ref)
	fmt.Printf("result:    %.17g\n", exblas.Round(append([]int64(nil), ref...)))

	ok := true
	for depth := exblas.MinExpansionSize; depth <= exblas.MaxExpansionSize; depth++ {
		acc := exblas.NewSuperacc()
		exblas.ExDotFPE(*n, exblas.Slice(x), exblas.Slice(y), acc, depth)
		for i := range ref {
			if acc[i] != ref[i] {
				fmt.Printf("MISMATCH:  depth %d, bin %d: %d != %d\n", depth, i, acc[i], ref[i])
				ok = false
			}
		}
	}
	if !ok {
		os.Exit(1)
	}
	fmt.Println("reproducible: bins identical across all expansion depths")
}
