package sched

import (
	"sync"
	"testing"

	"go.viam.com/test"
)

func TestParallelForRangeVisitsEveryIndexExactlyOnce(t *testing.T) {
	const n = 997 // prime, deliberately not a multiple of GOMAXPROCS
	var mu sync.Mutex
	seen := make(map[int]int, n)

	parallelForRange(n, func(i int) {
		mu.Lock()
		seen[i]++
		mu.Unlock()
	})

	test.That(t, len(seen), test.ShouldEqual, n)
	for i := 0; i < n; i++ {
		test.That(t, seen[i], test.ShouldEqual, 1)
	}
}

func TestParallelForRangeEmptyIsNoOp(t *testing.T) {
	called := false
	parallelForRange(0, func(i int) { called = true })
	test.That(t, called, test.ShouldBeFalse)
}

func TestParallelForEachPixelVisitsEveryPixelExactlyOnce(t *testing.T) {
	const w, h = 37, 23
	var mu sync.Mutex
	seen := make(map[[2]int]int, w*h)

	parallelForEachPixel(w, h, func(x, y int) {
		mu.Lock()
		seen[[2]int{x, y}]++
		mu.Unlock()
	})

	test.That(t, len(seen), test.ShouldEqual, w*h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			test.That(t, seen[[2]int{x, y}], test.ShouldEqual, 1)
		}
	}
}
