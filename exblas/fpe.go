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

// Expansion cache depth. A deeper cache coalesces more updates before
// touching the superaccumulator at the cost of more work per element.
const (
	MinExpansionSize     = 3
	MaxExpansionSize     = 8
	DefaultExpansionSize = 8
)

// expansion is a per-worker floating-point expansion: an unevaluated sum of
// up to MaxExpansionSize binary64 components of decreasing magnitude, used
// as a front cache for a superaccumulator. Slot k holds a component
// strictly smaller in magnitude than slot k-1, up to the rounding artifacts
// the two-sum cascade removes.
type expansion struct {
	a        [MaxExpansionSize]float64
	size     int
	superacc []int64
}

func newExpansion(superacc []int64, size int) *expansion {
	return &expansion{size: size, superacc: superacc}
}

// Accumulate folds x into the expansion through a two-sum cascade: each
// slot keeps the high part and the low part carries into the next slot.
// Whatever falls off the end spills into the superaccumulator. The cascade
// short-circuits once the carry becomes zero.
func (e *expansion) Accumulate(x float64) {
	if math.IsInf(x, 0) || math.IsNaN(x) {
		// The cascade would turn Inf into NaN; route specials straight to
		// the superaccumulator, which saturates.
		AccumulateDouble(e.superacc, x)
		return
	}
	for i := 0; i < e.size; i++ {
		var low float64
		e.a[i], low = TwoSum(e.a[i], x)
		x = low
		if i != 0 && x == 0 {
			return
		}
	}
	AccumulateDouble(e.superacc, x)
}

// Flush spills every slot into the superaccumulator and zeroes the cache.
// Must run before the superaccumulator is normalized or merged.
func (e *expansion) Flush() {
	for i := 0; i < e.size; i++ {
		AccumulateDouble(e.superacc, e.a[i])
		e.a[i] = 0
	}
}

// vecExpansion is the lane-batched expansion used by the batched kernel:
// the same cascade, applied lanewise to 8 independent lanes per slot. Lanes
// never interact; spilling accumulates each lane separately, so once
// normalized the bins it produces are identical to feeding the lanes through
// a scalar expansion (the unnormalized bins may differ).
type vecExpansion struct {
	a        [MaxExpansionSize]vec8
	size     int
	superacc []int64
}

func newVecExpansion(superacc []int64, size int) *vecExpansion {
	return &vecExpansion{size: size, superacc: superacc}
}

// Accumulate folds a lane batch into the expansion.
func (e *vecExpansion) Accumulate(x vec8) {
	if anyNonFinite8(x) {
		e.spill(x)
		return
	}
	for i := 0; i < e.size; i++ {
		var low vec8
		e.a[i], low = twoSum8(e.a[i], x)
		x = low
		if i != 0 && !anyNonzero8(x) {
			return
		}
	}
	e.spill(x)
}

func (e *vecExpansion) spill(x vec8) {
	for _, v := range x {
		AccumulateDouble(e.superacc, v)
	}
}

// Flush spills every slot into the superaccumulator and zeroes the cache.
func (e *vecExpansion) Flush() {
	for i := 0; i < e.size; i++ {
		e.spill(e.a[i])
		e.a[i] = vec8{}
	}
}
