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

//go:build !exblas_exact3

package exblas

// Triple-product kernels. Each element contributes fl(fl(a*b)*c): one
// rounding per multiply. The per-lane products are therefore not exact, but
// they are identical on every conforming machine, so the sum stays
// reproducible. Build with -tags exblas_exact3 for the fully error-free
// variant.

func dot3KernelBatch[A, B, C Operand](cache *vecExpansion, a A, b B, c C, l, r, n int, last bool) {
	for i := l; i < r; i += laneWidth {
		x1 := mulAdd8(a.load8(i), b.load8(i), vec8{})
		x2 := mulAdd8(x1, c.load8(i), vec8{})
		cache.Accumulate(x2)
	}
	if last && r != n {
		x1 := mulAdd8(a.load8Partial(r, n-r), b.load8Partial(r, n-r), vec8{})
		x2 := mulAdd8(x1, c.load8Partial(r, n-r), vec8{})
		cache.Accumulate(x2)
	}
}

func dot3KernelScalar[A, B, C Operand](cache *expansion, a A, b B, c C, l, r int) {
	for i := l; i < r; i++ {
		x1 := a.At(i) * b.At(i)
		x2 := x1 * c.At(i)
		cache.Accumulate(x2)
	}
}
