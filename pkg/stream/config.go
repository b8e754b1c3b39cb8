package stream

import "runtime"

// ============================================================================
// SYSTEM CONFIGURATION
// ============================================================================

// DefaultFlatMapConcurrency bounds the number of asynchronous inner streams a
// FlatMap keeps subscribed at the same time.
const DefaultFlatMapConcurrency = 256

// DefaultQueueCapacity is the initial capacity of the queues that park values
// inside combining operators. Queues grow beyond it on demand.
const DefaultQueueCapacity = 32

// sanitizeDOP ensures the Degree of Parallelism (dop) is a valid positive integer.
//
// If dop is less than or equal to 0, it defaults to the number of logical CPUs available (GOMAXPROCS).
//
// Parameters:
//   dop: The requested degree of parallelism.
//
// Returns:
//   int: The sanitized degree of parallelism.
func sanitizeDOP(dop int) int {
	if dop <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return dop
}
