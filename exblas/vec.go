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

// laneWidth is the number of binary64 lanes a batch carries. It is frozen
// at 8 on every architecture: reproducibility pins the lane grouping, so a
// wider or narrower hardware vector must not change how elements are
// batched.
const laneWidth = 8

// vec8 is the fixed-width lane batch the kernels operate on. All operations
// are lanewise; there is no cross-lane reduction anywhere in the pipeline.
type vec8 [laneWidth]float64

func set8(v float64) vec8 {
	var b vec8
	for k := range b {
		b[k] = v
	}
	return b
}

// mulAdd8 computes a*b+c lanewise with a single rounding per lane.
func mulAdd8(a, b, c vec8) vec8 {
	var r vec8
	for k := range r {
		r[k] = math.FMA(a[k], b[k], c[k])
	}
	return r
}

// twoSum8 is TwoSum applied lanewise.
func twoSum8(a, b vec8) (s, e vec8) {
	for k := range s {
		s[k], e[k] = TwoSum(a[k], b[k])
	}
	return s, e
}

// twoProdFMA8 is TwoProdFMA applied lanewise.
func twoProdFMA8(a, b vec8) (p, e vec8) {
	for k := range p {
		p[k], e[k] = TwoProdFMA(a[k], b[k])
	}
	return p, e
}

func anyNonzero8(v vec8) bool {
	for k := range v {
		if v[k] != 0 {
			return true
		}
	}
	return false
}

func anyNonFinite8(v vec8) bool {
	for k := range v {
		if math.IsInf(v[k], 0) || math.IsNaN(v[k]) {
			return true
		}
	}
	return false
}
