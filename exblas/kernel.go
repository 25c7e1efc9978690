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

// Per-worker kernels. The batched kernel walks its range in lane batches of
// 8 and feeds the expansion cache lanewise; the scalar kernel walks element
// by element. TwoProdFMA is lane-local and the cascade order inside a cache
// slot is fixed, so both kernels produce bit-identical superaccumulators
// for the same range.

// dotKernelBatch accumulates products a[i]*b[i] for i in [l, r) stepping by
// laneWidth; l and r must be multiples of laneWidth. The last worker also
// handles the tail [r, n) with a zero-filled partial batch.
func dotKernelBatch[A, B Operand](cache *vecExpansion, a A, b B, l, r, n int, last bool) {
	for i := l; i < r; i += laneWidth {
		p, e := twoProdFMA8(a.load8(i), b.load8(i))
		cache.Accumulate(p)
		cache.Accumulate(e)
	}
	if last && r != n {
		p, e := twoProdFMA8(a.load8Partial(r, n-r), b.load8Partial(r, n-r))
		cache.Accumulate(p)
		cache.Accumulate(e)
	}
}

// dotKernelScalar accumulates products a[i]*b[i] for i in [l, r).
func dotKernelScalar[A, B Operand](cache *expansion, a A, b B, l, r int) {
	for i := l; i < r; i++ {
		p, e := TwoProdFMA(a.At(i), b.At(i))
		cache.Accumulate(p)
		cache.Accumulate(e)
	}
}
