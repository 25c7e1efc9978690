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

// Superaccumulator layout. A superaccumulator is a []int64 of BinCount
// bins; bin i covers binary digits [digitWidth*(i-radixBin),
// digitWidth*(i-radixBin+1)) of the accumulated value. Adjacent bins
// overlap through the carry-save headroom of an int64, so a bin may hold a
// value temporarily outside the canonical range; Normalize restores every
// bin below IMax to [0, 2^digitWidth) and leaves the sign in bin IMax.
const (
	// BinCount is the number of 64-bit bins in a superaccumulator.
	BinCount = 39

	// IMin and IMax delimit the active bin range.
	IMin = 0
	IMax = BinCount - 1

	// digitWidth is the number of binary digits per bin.
	digitWidth = 52

	// carryBits is the carry-save headroom: an int64 wraparound during bin
	// addition corresponds to a carry of 2^carryBits digit units into the
	// next bin.
	carryBits = 64 - digitWidth

	// radixBin is the bin holding the units digit. Bins below it are
	// fractional. The placement puts the leading digit word of the largest
	// finite binary64 (exponent 1023) exactly in bin IMax; the floor of the
	// representable range is 2^(-radixBin*digitWidth).
	radixBin = 19
)

// deltaScale rescales the remainder of a digit word extraction by one bin.
const deltaScale = 0x1p52

// Non-finite inputs saturate the superaccumulator: bin IMax is overwritten
// with a sentinel far outside any value a finite accumulation can put
// there (a normalized top bin stays below 2^53). Sentinel decoding is
// tolerant of small finite perturbations, and Normalize rewrites the
// canonical form, so saturated accumulators remain byte-identical across
// worker counts.
const (
	satPosInf = int64(1) << 57
	satNegInf = -satPosInf
	satNaN    = int64(1) << 60
)

// special-value classes, ordered as a join lattice:
// finite < posInf/negInf < NaN, and posInf joined with negInf is NaN.
const (
	classFinite = 0
	classPosInf = 1
	classNegInf = -1
	classNaN    = 2
)

// NewSuperacc returns a zeroed superaccumulator of BinCount bins,
// representing exactly zero.
func NewSuperacc() []int64 {
	return make([]int64, BinCount)
}

// exponent returns the unbiased binary exponent of x. Subnormals report
// -1023, which routes their digit words to the bottom of the bin range.
func exponent(x float64) int {
	return int((math.Float64bits(x)>>digitWidth)&0x7ff) - 1023
}

// xadd adds x into *p and reports the old value and whether the signed
// addition wrapped around.
func xadd(p *int64, x int64) (old int64, overflow bool) {
	old = *p
	next := old + x
	overflow = (old > 0 && x > 0 && next <= 0) || (old < 0 && x < 0 && next >= 0)
	*p = next
	return old, overflow
}

// AddWord adds a signed digit word to bin i without normalizing. Wraparound
// is propagated as a carry into higher bins, so no information is lost as
// long as the flush discipline of the expansion cache keeps bins from
// wrapping more than once between normalizations. Carries beyond IMax are
// dropped.
func AddWord(acc []int64, i int, x int64) {
	old, overflow := xadd(&acc[i], x)
	carry := x
	for overflow {
		// The wrapped bin lost 2^64 = 2^carryBits digit units of the next
		// bin; the sign of the lost amount is the sign of the operands.
		carry = (old + carry) >> digitWidth
		var carrybit int64
		if old > 0 {
			carrybit = 1 << carryBits
		} else {
			carrybit = -1 << carryBits
		}
		xadd(&acc[i], -(carry << digitWidth))
		carry += carrybit

		i++
		if i > IMax {
			return
		}
		old, overflow = xadd(&acc[i], carry)
	}
}

// AccumulateDouble splits x by its exponent into digit words and adds them
// to the corresponding bins, walking downward until the remainder is
// exhausted. Non-finite x saturates the accumulator. Digits below bin IMin
// are dropped.
func AccumulateDouble(acc []int64, x float64) {
	if x == 0 {
		return
	}
	if math.IsNaN(x) {
		saturate(acc, classNaN)
		return
	}
	if math.IsInf(x, 0) {
		if x > 0 {
			saturate(acc, classPosInf)
		} else {
			saturate(acc, classNegInf)
		}
		return
	}
	expWord := exponent(x) / digitWidth
	xscaled := math.Ldexp(x, -digitWidth*expWord)
	for i := expWord + radixBin; xscaled != 0 && i >= IMin; i-- {
		xrounded := math.RoundToEven(xscaled)
		AddWord(acc, i, int64(xrounded))
		xscaled -= xrounded
		xscaled *= deltaScale
	}
}

// Normalize sweeps the dirty bin range [imin, imax], propagating carries so
// that every swept bin below the top lies in [0, 2^digitWidth). A carry
// left over at imax keeps propagating into higher bins, so the touched
// range may widen upward; on return newImin and newImax mark the range
// actually touched, and the top touched bin keeps the high part and the
// sign. The negative flag is the sign of the final carry; it is the sign of
// the whole value when the sweep reaches IMax. Normalizing a normalized
// range changes nothing.
//
// A saturated accumulator is rewritten to its canonical form instead: all
// bins zero except the sentinel in bin IMax.
func Normalize(acc []int64, imin, imax int) (newImin, newImax int, negative bool) {
	if class := specialClass(acc); class != classFinite {
		for i := IMin; i < IMax; i++ {
			acc[i] = 0
		}
		acc[IMax] = sentinel(class)
		return IMin, IMax, class == classNegInf
	}
	if imax > IMax {
		imax = IMax
	}
	carry := acc[imin] >> digitWidth
	acc[imin] -= carry << digitWidth
	i := imin + 1
	for ; i <= imax; i++ {
		acc[i] += carry
		c := acc[i] >> digitWidth
		acc[i] -= c << digitWidth
		carry = c
	}
	// A leftover carry widens the touched range upward.
	for carry != 0 && i < BinCount {
		acc[i] += carry
		c := acc[i] >> digitWidth
		acc[i] -= c << digitWidth
		carry = c
		i++
	}
	imax = i - 1
	// Do not cancel the last carry; the top touched bin keeps the high
	// part and the sign.
	acc[imax] += carry << digitWidth
	return imin, imax, carry < 0
}

// Merge adds src into dst bin-wise. Both operands should be normalized; the
// result may be left unnormalized. If either side is saturated, dst becomes
// the canonical saturated form of the joined special classes.
func Merge(dst, src []int64) {
	cd, cs := specialClass(dst), specialClass(src)
	if cd != classFinite || cs != classFinite {
		for i := IMin; i < IMax; i++ {
			dst[i] = 0
		}
		dst[IMax] = sentinel(joinSpecial(cd, cs))
		return
	}
	for i := IMin; i <= IMax; i++ {
		dst[i] += src[i]
	}
}

func saturate(acc []int64, class int) {
	acc[IMax] = sentinel(joinSpecial(specialClass(acc), class))
}

func sentinel(class int) int64 {
	switch class {
	case classPosInf:
		return satPosInf
	case classNegInf:
		return satNegInf
	default:
		return satNaN
	}
}

// specialClass decodes the saturation state of acc. The thresholds leave
// room for finite digit words added after saturation.
func specialClass(acc []int64) int {
	switch v := acc[IMax]; {
	case v >= satNaN>>1:
		return classNaN
	case v >= satPosInf>>2:
		return classPosInf
	case v <= satNegInf>>2:
		return classNegInf
	default:
		return classFinite
	}
}

func joinSpecial(a, b int) int {
	switch {
	case a == classFinite:
		return b
	case b == classFinite:
		return a
	case a == b:
		return a
	default:
		// NaN joined with anything, or opposite infinities.
		return classNaN
	}
}
