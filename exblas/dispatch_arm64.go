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

//go:build arm64

package exblas

import "golang.org/x/sys/cpu"

func init() {
	if noSimdEnv() {
		currentKernel = KernelScalar
		return
	}
	// ARMv8-A always has fused multiply-add; the cpu check is kept for
	// consistency with exotic cores.
	if cpu.ARM64.HasASIMD || cpu.ARM64.HasFP {
		currentKernel = KernelBatch
	} else {
		currentKernel = KernelScalar
	}
}
