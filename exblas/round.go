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
	"math"
	"math/bits"
)

// Round converts a superaccumulator to the binary64 nearest to its exact
// value, ties to even. A finite accumulator is normalized in place as a side
// effect; a saturated one is left as it is and rounds to ±Inf or NaN.
//
// The digit words are exact, so the correctly-rounded result only needs the
// leading 53 bits of the magnitude, the round bit, and a sticky flag for
// everything below; all of it is read off the words with integer
// arithmetic.
func Round(acc []int64) float64 {
	switch specialClass(acc) {
	case classNaN:
		return math.NaN()
	case classPosInf:
		return math.Inf(1)
	case classNegInf:
		return math.Inf(-1)
	}
	_, _, negative := Normalize(acc, IMin, IMax)

	// Exact magnitude digits, base 2^digitWidth, top word full-width.
	const mask = 1<<digitWidth - 1
	var mag [BinCount]uint64
	if negative {
		for j := IMin; j < IMax; j++ {
			mag[j] = uint64(^acc[j]) & mask
		}
		mag[IMax] = uint64(^acc[IMax])
		for j := IMin; j <= IMax; j++ {
			mag[j]++
			if j < IMax && mag[j] > mask {
				mag[j] = 0
				continue
			}
			break
		}
	} else {
		for j := IMin; j <= IMax; j++ {
			mag[j] = uint64(acc[j])
		}
	}

	i := IMax
	for i >= IMin && mag[i] == 0 {
		i--
	}
	if i < IMin {
		return 0
	}
	h := mag[i]
	if i == IMax && h >= 1<<(digitWidth+1) {
		// Leading digit alone is at least 2^(53+52*19), far beyond binary64.
		if negative {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}
	if i == IMin {
		// Nothing below the leading word; h is at most 2^52 and exact.
		r := math.Ldexp(float64(h), (i-radixBin)*digitWidth)
		if negative {
			return -r
		}
		return r
	}

	var n1, n2 uint64
	sticky := false
	n1 = mag[i-1]
	if i-2 >= IMin {
		n2 = mag[i-2]
		for j := IMin; j < i-2; j++ {
			if mag[j] != 0 {
				sticky = true
				break
			}
		}
	}

	// Assemble the top 54 bits of h || n1 || n2: 53 result bits plus the
	// round bit. The leading word has k significant bits, so the window
	// never reaches past the third word.
	k := bits.Len64(h)
	need := 54 - k
	var mant uint64
	if need <= digitWidth {
		mant = h<<need | n1>>(digitWidth-need)
		sticky = sticky || n1&(1<<(digitWidth-need)-1) != 0 || n2 != 0
	} else {
		rem := need - digitWidth
		mant = h<<need | n1<<rem | n2>>(digitWidth-rem)
		sticky = sticky || n2&(1<<(digitWidth-rem)-1) != 0
	}

	keep := mant >> 1
	if mant&1 == 1 && (sticky || keep&1 == 1) {
		keep++
	}
	// Exponent of the magnitude's leading bit, then shift down past the
	// 53 kept bits.
	exp := (i-radixBin)*digitWidth + k - 1 - 53
	r := math.Ldexp(float64(keep), exp+1)
	if negative {
		return -r
	}
	return r
}
