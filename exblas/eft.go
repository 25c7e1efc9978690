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

import "math"

// Error-free transforms. Each represents an exact binary64 operation as a
// rounded result plus a rounding-error term that is itself a binary64.

// TwoSum returns (s, e) with s = fl(a+b) and a + b = s + e exactly, for any
// finite a and b (Knuth's branch-free two-sum).
func TwoSum(a, b float64) (s, e float64) {
	s = a + b
	z := s - a
	e = (a - (s - z)) + (b - z)
	return s, e
}

// TwoProdFMA returns (p, e) with p = fl(a·b) and a·b = p + e exactly, using
// one multiply and one fused multiply-add.
//
// When the product is not finite (an operand is Inf or NaN, or the product
// overflows), the error term is meaningless and is returned as zero; p
// alone carries the special value into the accumulation pipeline.
func TwoProdFMA(a, b float64) (p, e float64) {
	p = a * b
	if math.IsInf(p, 0) || math.IsNaN(p) {
		return p, 0
	}
	e = math.FMA(a, b, -p)
	return p, e
}
