package sched

import (
	"runtime"
	"sync"

	"go.viam.com/utils"
)

// parallelForRange splits [0, n) into runtime.GOMAXPROCS(0) contiguous
// chunks and runs f over each chunk's indices on its own goroutine,
// adapted from the teacher's ParallelForEachPixel chunk-split (every worker
// owns a contiguous half-open range, the last absorbing any remainder) but
// collapsed to one dimension for a flat candidate-pair index range instead
// of an image.Point grid.
func parallelForRange(n int, f func(i int)) {
	if n == 0 {
		return
	}
	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	chunk := n / workers

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if w == workers-1 {
			end = n
		}
		s, e := start, end
		utils.PanicCapturingGo(func() {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		})
	}
	wg.Wait()
}

// parallelForEachPixel divides a width x height image into workers x
// workers blocks (one goroutine per block) and calls f for every pixel in
// its block, directly adapted from the teacher's
// rdk/utils/parallel.go:ParallelForEachPixel -- same block-grid shape, same
// reliance on PanicCapturingGo per block, generalized away from its
// image.Point parameter since this module doesn't otherwise depend on the
// image package.
func parallelForEachPixel(width, height int, f func(x, y int)) {
	procs := runtime.GOMAXPROCS(0)

	var wg sync.WaitGroup
	wg.Add(procs * procs)
	for i := 0; i < procs; i++ {
		startX := i * (width / procs)
		endX := (i + 1) * (width / procs)
		if i == procs-1 {
			endX = width
		}
		for j := 0; j < procs; j++ {
			startY := j * (height / procs)
			endY := (j + 1) * (height / procs)
			if j == procs-1 {
				endY = height
			}
			sx, ex, sy, ey := startX, endX, startY, endY
			utils.PanicCapturingGo(func() {
				defer wg.Done()
				for x := sx; x < ex; x++ {
					for y := sy; y < ey; y++ {
						f(x, y)
					}
				}
			})
		}
	}
	wg.Wait()
}
