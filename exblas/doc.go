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

// Package exblas computes bitwise-reproducible, rounding-error-free dot
// products of binary64 vectors on shared-memory multiprocessors.
//
// The result of a dot product is not returned as a float64 but as a
// superaccumulator: a long fixed-point number stored as BinCount signed
// 64-bit bins, wide enough to hold any sum of binary64 products without
// loss. Because the superaccumulator is exact, addition into it is
// associative, and the same inputs produce byte-identical bins on any
// machine, with any number of workers, under any scheduling.
//
// Basic usage:
//
//	import "github.com/riakymch/go-exblas/exblas"
//
//	x := []float64{1e100, 1.0, -1e100}
//	y := []float64{1, 1, 1}
//
//	acc := exblas.NewSuperacc()
//	exblas.ExDot(len(x), exblas.Slice(x), exblas.Slice(y), acc)
//	fmt.Println(exblas.Round(acc)) // 1, exactly
//
// Inputs are Operands: Slice adapts a []float32 or []float64 (float32
// elements are widened on load), Scalar broadcasts one value across all
// indices. ExDot3 computes the triple product Σ xᵢ·wᵢ·yᵢ.
//
// Internally each worker coalesces products through a small floating-point
// expansion cache using error-free transforms (TwoSum, TwoProdFMA) before
// spilling into its superaccumulator; worker accumulators are then merged
// by a deterministic binary reduction tree. The batched kernel processes 8
// lanes at a time and is selected at startup when the CPU has hardware FMA
// (see CurrentKernel); the scalar kernel produces bit-identical bins, so
// the choice never affects results. Set EXBLAS_NO_SIMD=1 to force the
// scalar kernel.
package exblas
