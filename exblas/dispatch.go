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

package exblas

import (
	"os"
	"strconv"
)

// Kernel identifies the per-worker kernel selected at startup. Both kernels
// produce bit-identical superaccumulators; the selection only affects
// throughput.
type Kernel int

const (
	// KernelScalar iterates element by element.
	KernelScalar Kernel = iota

	// KernelBatch iterates in lane batches of 8; preferred on CPUs with
	// hardware fused multiply-add.
	KernelBatch
)

// String returns a human-readable name for the kernel.
func (k Kernel) String() string {
	switch k {
	case KernelScalar:
		return "scalar"
	case KernelBatch:
		return "batch"
	default:
		return "unknown"
	}
}

// currentKernel is the kernel for this runtime, set by init() in
// dispatch_*.go files.
var currentKernel Kernel

// CurrentKernel returns the kernel selected for this runtime.
func CurrentKernel() Kernel {
	return currentKernel
}

// noSimdEnv reports whether EXBLAS_NO_SIMD is set to a true value, or to any
// value strconv.ParseBool rejects, forcing the scalar kernel.
func noSimdEnv() bool {
	v := os.Getenv("EXBLAS_NO_SIMD")
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	return err != nil || b
}
