package queue

import (
	"sync"
)

// Queue is the interface for parking values between a producer and the
// operator that consumes them.
type Queue[T any] interface {
	// Offer adds an item to the queue. Returns false if the queue is closed.
	Offer(item T) bool
	// Poll removes an item from the queue. Returns item and true if found, or zero and false if empty.
	Poll() (T, bool)
	// Len returns the number of buffered items.
	Len() int
	// Close marks the queue as closed.
	Close()
	// IsClosed returns true if the queue is closed and empty.
	IsClosed() bool
	// Clear drops every buffered item.
	Clear()
}

var _ Queue[int] = (*RingBuffer[int])(nil)

// RingBuffer is an unbounded FIFO queue backed by a power-of-two ring that
// doubles when full. It is safe for concurrent use.
type RingBuffer[T any] struct {
	mu     sync.Mutex
	head   uint64
	tail   uint64
	mask   uint64
	buffer []T
	closed bool
}

// NewRingBuffer creates a new RingBuffer with the given initial capacity.
// Capacity is rounded up to the next power of 2.
func NewRingBuffer[T any](capacity int) *RingBuffer[T] {
	capacity = roundUpPow2(capacity)
	return &RingBuffer[T]{
		buffer: make([]T, capacity),
		mask:   uint64(capacity - 1),
	}
}

// See: https://graphics.stanford.edu/~seander/bithacks.html#RoundUpPowerOf2
func roundUpPow2(capacity int) int {
	if capacity < 2 {
		return 2
	}
	capacity--
	capacity |= capacity >> 1
	capacity |= capacity >> 2
	capacity |= capacity >> 4
	capacity |= capacity >> 8
	capacity |= capacity >> 16
	capacity |= capacity >> 32
	capacity++
	return capacity
}

// Offer appends an item, growing the ring if needed.
// Returns false if the queue has been closed.
func (rb *RingBuffer[T]) Offer(item T) bool {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if rb.closed {
		return false
	}
	if rb.tail-rb.head > rb.mask {
		rb.grow()
	}

	rb.buffer[rb.tail&rb.mask] = item
	rb.tail++
	return true
}

// grow doubles the ring, compacting live items to the front. Caller holds mu.
func (rb *RingBuffer[T]) grow() {
	n := rb.tail - rb.head
	next := make([]T, len(rb.buffer)*2)
	for i := uint64(0); i < n; i++ {
		next[i] = rb.buffer[(rb.head+i)&rb.mask]
	}
	rb.buffer = next
	rb.mask = uint64(len(next) - 1)
	rb.head = 0
	rb.tail = n
}

// Poll removes the oldest item.
// Returns false if the queue is empty.
func (rb *RingBuffer[T]) Poll() (T, bool) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	var zero T
	if rb.head == rb.tail {
		return zero, false // Empty
	}

	item := rb.buffer[rb.head&rb.mask]
	// Help GC by nil-ing out the slot if T is a pointer
	rb.buffer[rb.head&rb.mask] = zero
	rb.head++
	return item, true
}

func (rb *RingBuffer[T]) Len() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return int(rb.tail - rb.head)
}

// capacity returns the current ring size.
func (rb *RingBuffer[T]) capacity() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return len(rb.buffer)
}

func (rb *RingBuffer[T]) Close() {
	rb.mu.Lock()
	rb.closed = true
	rb.mu.Unlock()
}

func (rb *RingBuffer[T]) IsClosed() bool {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.closed && rb.head == rb.tail
}

// Clear drops every buffered item.
func (rb *RingBuffer[T]) Clear() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	clear(rb.buffer)
	rb.head, rb.tail = 0, 0
}
