// Package parallel provides chunked parallel loops for the CPU backend.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // run loops on multiple goroutines
	NumWorkers   int  // goroutine count
	MinChunkSize int  // smallest n worth parallelizing
}

// DefaultConfig sizes the worker pool to the machine.
func DefaultConfig() Config {
	workers := runtime.NumCPU()
	return Config{
		Enabled:      workers > 1,
		NumWorkers:   workers,
		MinChunkSize: 256, // vertex and edge loops are cheap per item
	}
}

// For executes f(i) for i in [0, n). Small ranges and disabled configs
// run sequentially. f must not write to state shared across indices.
func For(n int, f func(i int), cfg Config) {
	if !cfg.Enabled || n < cfg.MinChunkSize {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	chunk := (n + cfg.NumWorkers - 1) / cfg.NumWorkers
	if chunk < cfg.MinChunkSize {
		chunk = cfg.MinChunkSize
	}

	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				f(i)
			}
		}(lo, hi)
	}
	wg.Wait()
}

// ForVertices iterates a vertices*channels grid, the common pattern of
// per-channel work in steerable feature tensors.
func ForVertices(vertices, channels int, f func(v, c int), cfg Config) {
	For(vertices*channels, func(k int) {
		f(k/channels, k%channels)
	}, cfg)
}
