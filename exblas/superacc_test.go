package exblas

import (
	"math"
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAccumulateRoundTrip(t *testing.T) {
	values := []float64{
		0, 1, -1, 0.5, -0.5, 1.5, 2.75, -2.75,
		0x1p52, 0x1p53, 0x1p53 + 2, -0x1p60,
		1e16, -1e16, 1e100, -1e100, 1e-100, 1e-290,
		0x1.fffffffffffffp1023, // largest finite
		0x1p-988,               // floor of the bin range
	}
	for _, v := range values {
		acc := NewSuperacc()
		AccumulateDouble(acc, v)
		if got := Round(acc); got != v {
			t.Errorf("Round(accumulate %g) = %g, want %g", v, got, v)
		}
	}
}

func TestAccumulateExactSum(t *testing.T) {
	cases := []struct {
		values []float64
		want   float64
	}{
		{[]float64{1e16, 1, -1e16}, 1},
		{[]float64{1e100, 1, -1e100}, 1},
		{[]float64{0.1, 0.1, 0.1, -0.3}, roundBig(0.1, 0.1, 0.1, -0.3)},
		{[]float64{1, 0x1p-53, 0x1p-53}, 1 + 0x1p-52},
		{[]float64{0x1p52, 0x1p52}, 0x1p53},
	}
	for _, c := range cases {
		acc := NewSuperacc()
		for _, v := range c.values {
			AccumulateDouble(acc, v)
		}
		if got := Round(acc); got != c.want {
			t.Errorf("Round(accumulate %v) = %g, want %g", c.values, got, c.want)
		}
	}
}

// roundBig is the correctly-rounded sum of vs, computed without rounding
// error through math/big.
func roundBig(vs ...float64) float64 {
	sum := new(big.Float).SetPrec(4096)
	term := new(big.Float).SetPrec(4096)
	for _, v := range vs {
		sum.Add(sum, term.SetFloat64(v))
	}
	f, _ := sum.Float64()
	return f
}

func TestNormalizeCanonical(t *testing.T) {
	acc := NewSuperacc()
	for _, v := range []float64{1e30, -1e-30, 12345.678, -1e300, 0x1p-500} {
		AccumulateDouble(acc, v)
	}
	Normalize(acc, IMin, IMax)
	for i := IMin; i < IMax; i++ {
		if acc[i] < 0 || acc[i] >= 1<<digitWidth {
			t.Errorf("bin %d = %d, outside [0, 2^52) after Normalize", i, acc[i])
		}
	}

	// Idempotent: a second sweep changes nothing.
	before := append([]int64(nil), acc...)
	Normalize(acc, IMin, IMax)
	if diff := cmp.Diff(before, acc); diff != "" {
		t.Errorf("Normalize not idempotent (-first +second):\n%s", diff)
	}
}

func TestNormalizePartialRange(t *testing.T) {
	// A sweep over a partial dirty range must canonicalize it and widen
	// upward when a carry escapes.
	acc := NewSuperacc()
	AddWord(acc, 10, 3<<digitWidth|5)
	imin, imax, _ := Normalize(acc, 10, 10)
	if imin != 10 || imax != 11 {
		t.Errorf("touched range = [%d, %d], want [10, 11]", imin, imax)
	}
	if acc[10] != 5 || acc[11] != 3 {
		t.Errorf("bins [10,11] = [%d,%d], want [5,3]", acc[10], acc[11])
	}

	// Bins outside the dirty range are left alone.
	acc2 := NewSuperacc()
	acc2[20] = 3 << digitWidth
	AddWord(acc2, 10, 1<<digitWidth|9)
	Normalize(acc2, 10, 12)
	if acc2[20] != 3<<digitWidth {
		t.Errorf("bin 20 = %d, changed by a sweep of [10, 12]", acc2[20])
	}
	if acc2[10] != 9 || acc2[11] != 1 {
		t.Errorf("bins [10,11] = [%d,%d], want [9,1]", acc2[10], acc2[11])
	}

	// Idempotent on the touched range.
	before := append([]int64(nil), acc...)
	Normalize(acc, imin, imax)
	if diff := cmp.Diff(before, acc); diff != "" {
		t.Errorf("partial Normalize not idempotent (-first +second):\n%s", diff)
	}
}

func TestNormalizeSign(t *testing.T) {
	acc := NewSuperacc()
	AccumulateDouble(acc, -42.5)
	_, _, negative := Normalize(acc, IMin, IMax)
	if !negative {
		t.Error("Normalize: negative = false for value -42.5")
	}
	if acc[IMax] >= 0 {
		t.Errorf("bin IMax = %d, want negative sign carrier", acc[IMax])
	}
}

func TestMergeCommutative(t *testing.T) {
	mk := func(vs ...float64) []int64 {
		acc := NewSuperacc()
		for _, v := range vs {
			AccumulateDouble(acc, v)
		}
		Normalize(acc, IMin, IMax)
		return acc
	}
	a := mk(1e100, 3.5, -7e-40)
	b := mk(-1e100, 2.25, 1e20)

	ab := append([]int64(nil), a...)
	Merge(ab, b)
	Normalize(ab, IMin, IMax)

	ba := append([]int64(nil), b...)
	Merge(ba, a)
	Normalize(ba, IMin, IMax)

	if diff := cmp.Diff(ab, ba); diff != "" {
		t.Errorf("Merge not commutative up to normalization (-ab +ba):\n%s", diff)
	}
}

func TestMergeAssociative(t *testing.T) {
	mk := func(vs ...float64) []int64 {
		acc := NewSuperacc()
		for _, v := range vs {
			AccumulateDouble(acc, v)
		}
		Normalize(acc, IMin, IMax)
		return acc
	}
	a := mk(1.5, 1e80)
	b := mk(-1e80, 0x1p-70)
	c := mk(-1.25, 42)

	left := append([]int64(nil), a...)
	Merge(left, b)
	Normalize(left, IMin, IMax)
	Merge(left, c)
	Normalize(left, IMin, IMax)

	bc := append([]int64(nil), b...)
	Merge(bc, c)
	Normalize(bc, IMin, IMax)
	right := append([]int64(nil), a...)
	Merge(right, bc)
	Normalize(right, IMin, IMax)

	if diff := cmp.Diff(left, right); diff != "" {
		t.Errorf("Merge not associative up to normalization (-left +right):\n%s", diff)
	}
}

func TestAddWordCarry(t *testing.T) {
	// Two half-range words into the units bin force the wraparound carry
	// path; the value must survive intact.
	acc := NewSuperacc()
	AddWord(acc, radixBin, 1<<62)
	AddWord(acc, radixBin, 1<<62)
	if got, want := Round(acc), math.Ldexp(1, 63); got != want {
		t.Errorf("Round after carry wrap = %g, want %g", got, want)
	}
}

func TestSuperaccBinContents(t *testing.T) {
	// 2^53 + 1 is not representable in binary64, but the superaccumulator
	// holds it exactly: digit word 2 in the bin above the units bin, word 1
	// in the units bin.
	acc := NewSuperacc()
	AccumulateDouble(acc, 0x1p53)
	AccumulateDouble(acc, 1)
	Normalize(acc, IMin, IMax)
	if acc[radixBin+1] != 2 || acc[radixBin] != 1 {
		t.Errorf("bins [%d,%d] = [%d,%d], want [2,1]",
			radixBin+1, radixBin, acc[radixBin+1], acc[radixBin])
	}
	if got := Round(acc); got != 0x1p53 {
		t.Errorf("Round(2^53+1) = %g, want %g (ties to even)", got, 0x1p53)
	}
}
