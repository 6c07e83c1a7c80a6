// Package parallel provides the bounded-concurrency loop used for batch
// evaluation fan-out.
package parallel

import "runtime"
import "sync"

import "github.com/klauspost/cpuid/v2"

// Cores reports the logical core count detected by cpuid, falling back to
// the runtime when detection yields nothing.
func Cores() int {
	if n := cpuid.CPU.LogicalCores; n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// ForEach executes a for loop with a limited number of concurrent goroutines.
// Each goroutine processes one integer, from 0 to length. A non-positive
// limit means one worker per logical core.
func ForEach(length, limit int, body func(i int)) {
	if limit <= 0 {
		limit = Cores()
	}
	if length <= 0 {
		return // No iterations to perform
	}

	sem := make(chan struct{}, limit) // Semaphore with buffer size 'limit'
	var wg sync.WaitGroup
	wg.Add(length)

	for i := 0; i < length; i++ {
		i := i            // Capture loop variable
		sem <- struct{}{} // Acquire semaphore
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }() // Release semaphore after function exits

			body(i)
		}(i)
	}

	wg.Wait() // Wait for all goroutines to finish
}
