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
	"runtime"
	"sync"
	"sync/atomic"
)

// minWorkerGrain is the minimum number of elements per worker before an
// extra worker is spawned. Always a multiple of the lane width.
const minWorkerGrain = 256

// readySlot is a per-worker readiness counter padded to a cache line so
// neighbouring workers never share one. Worker t is the only writer of slot
// t; the parent merging it reads the counter with acquire semantics through
// the atomic load.
type readySlot struct {
	level atomic.Int32
	_     [60]byte
}

// ExDot computes the exact dot product Σ x[i]*y[i] for i in [0, n) into
// superacc, which must hold at least BinCount bins; its previous contents
// are ignored and overwritten. The resulting bins depend only on n and the
// inputs: worker count, scheduling and kernel choice never change them.
//
// Panics if n is negative or superacc is shorter than BinCount.
func ExDot[A, B Operand](n int, x A, y B, superacc []int64) {
	ExDotFPE(n, x, y, superacc, DefaultExpansionSize)
}

// ExDotFPE is ExDot with an explicit expansion cache depth in
// [MinExpansionSize, MaxExpansionSize].
func ExDotFPE[A, B Operand](n int, x A, y B, superacc []int64, nbfpe int) {
	exDotFPE(n, x, y, superacc, nbfpe, workerCount(n))
}

// ExDot3 computes Σ x[i]*w[i]*y[i] for i in [0, n) into superacc. The
// per-element triple product is rounded once per multiply (see kernel3.go),
// so the result is reproducible but not the exact real-number product.
func ExDot3[A, B, C Operand](n int, x A, y B, w C, superacc []int64) {
	ExDot3FPE(n, x, y, w, superacc, DefaultExpansionSize)
}

// ExDot3FPE is ExDot3 with an explicit expansion cache depth.
func ExDot3FPE[A, B, C Operand](n int, x A, y B, w C, superacc []int64, nbfpe int) {
	exDot3FPE(n, x, y, w, superacc, nbfpe, workerCount(n))
}

func checkArgs(n int, superacc []int64, nbfpe int) {
	if n < 0 {
		panic("exblas: negative vector length")
	}
	if len(superacc) < BinCount {
		panic("exblas: superaccumulator shorter than BinCount")
	}
	if nbfpe < MinExpansionSize || nbfpe > MaxExpansionSize {
		panic("exblas: expansion size out of range")
	}
}

// workerCount picks the number of workers: one per logical CPU, but never
// more than one per minWorkerGrain elements.
func workerCount(n int) int {
	t := runtime.GOMAXPROCS(0)
	if g := (n + minWorkerGrain - 1) / minWorkerGrain; g < t {
		t = g
	}
	if t < 1 {
		t = 1
	}
	return t
}

func exDotFPE[A, B Operand](n int, a A, b B, superacc []int64, nbfpe, tnum int) {
	checkArgs(n, superacc, nbfpe)
	clearBins(superacc)
	if n == 0 {
		return
	}
	acc := make([]int64, tnum*BinCount)
	ready := make([]readySlot, tnum)
	batch := CurrentKernel() == KernelBatch

	var wg sync.WaitGroup
	for tid := 0; tid < tnum; tid++ {
		wg.Add(1)
		go func(tid int) {
			defer wg.Done()
			myacc := acc[tid*BinCount : (tid+1)*BinCount]
			if batch {
				cache := newVecExpansion(myacc, nbfpe)
				l, r := laneRange(tid, tnum, n)
				dotKernelBatch(cache, a, b, l, r, n, tid+1 == tnum)
				cache.Flush()
			} else {
				cache := newExpansion(myacc, nbfpe)
				l, r := scalarRange(tid, tnum, n)
				dotKernelScalar(cache, a, b, l, r)
				cache.Flush()
			}
			Normalize(myacc, IMin, IMax)
			reduction(tid, tnum, ready, acc)
		}(tid)
	}
	wg.Wait()

	Normalize(acc[:BinCount], IMin, IMax)
	copy(superacc[:BinCount], acc[:BinCount])
}

func exDot3FPE[A, B, C Operand](n int, a A, b B, c C, superacc []int64, nbfpe, tnum int) {
	checkArgs(n, superacc, nbfpe)
	clearBins(superacc)
	if n == 0 {
		return
	}
	acc := make([]int64, tnum*BinCount)
	ready := make([]readySlot, tnum)
	batch := CurrentKernel() == KernelBatch

	var wg sync.WaitGroup
	for tid := 0; tid < tnum; tid++ {
		wg.Add(1)
		go func(tid int) {
			defer wg.Done()
			myacc := acc[tid*BinCount : (tid+1)*BinCount]
			if batch {
				cache := newVecExpansion(myacc, nbfpe)
				l, r := laneRange(tid, tnum, n)
				dot3KernelBatch(cache, a, b, c, l, r, n, tid+1 == tnum)
				cache.Flush()
			} else {
				cache := newExpansion(myacc, nbfpe)
				l, r := scalarRange(tid, tnum, n)
				dot3KernelScalar(cache, a, b, c, l, r)
				cache.Flush()
			}
			Normalize(myacc, IMin, IMax)
			reduction(tid, tnum, ready, acc)
		}(tid)
	}
	wg.Wait()

	Normalize(acc[:BinCount], IMin, IMax)
	copy(superacc[:BinCount], acc[:BinCount])
}

func clearBins(superacc []int64) {
	for i := range superacc[:BinCount] {
		superacc[i] = 0
	}
}

// laneRange splits [0, n) for the batched kernel: worker boundaries round
// down to a multiple of the lane width, and the last worker picks up the
// unaligned tail.
func laneRange(tid, tnum, n int) (l, r int) {
	l = int(int64(tid)*int64(n)/int64(tnum)) &^ (laneWidth - 1)
	r = int(int64(tid+1)*int64(n)/int64(tnum)) &^ (laneWidth - 1)
	return l, r
}

// scalarRange splits [0, n) element-wise.
func scalarRange(tid, tnum, n int) (l, r int) {
	l = int(int64(tid) * int64(n) / int64(tnum))
	r = int(int64(tid+1) * int64(n) / int64(tnum))
	return l, r
}

// reduction merges the per-worker superaccumulators with a binary tree of
// ceil(log2 tnum) levels. The tree shape depends only on worker indices, so
// the merge order is deterministic; and bin-wise merging of normalized
// accumulators is exact integer addition, so the final value does not
// depend on the worker count either.
//
// Every worker publishes "ready for level s" by raising its counter; the
// worker with the lower index of each pair waits for its sibling and merges
// the sibling's accumulator into its own. Counter raises are atomic
// increments (release) and the wait is an atomic load (acquire), which
// orders the merge after the sibling's last write.
func reduction(tid, tnum int, ready []readySlot, acc []int64) {
	for s := 1; 1<<(s-1) < tnum; s++ {
		ready[tid].level.Add(1)
		if tid%(1<<s) == 0 {
			tid2 := tid | 1<<(s-1)
			if tid2 < tnum {
				reductionStep(s, acc[tid*BinCount:(tid+1)*BinCount],
					acc[tid2*BinCount:(tid2+1)*BinCount], &ready[tid2])
			}
		}
	}
}

// reductionStep waits for the sibling to reach level s, then folds its
// accumulator into acc1.
func reductionStep(s int, acc1, acc2 []int64, ready *readySlot) {
	for ready.level.Load() < int32(s) {
		// Workers can outnumber Ps, so the relaxation hint must be a yield
		// rather than a pause.
		runtime.Gosched()
	}
	Normalize(acc1, IMin, IMax)
	Normalize(acc2, IMin, IMax)
	Merge(acc1, acc2)
}
