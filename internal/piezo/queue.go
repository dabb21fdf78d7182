package piezo

import (
	"errors"
	"sync/atomic"
)

// DefaultQueueLen is the slot count of the sample ring. One slot is always
// reserved so that head == tail can only ever mean empty, never full.
const DefaultQueueLen = 32

var (
	// ErrInvalidPayloadSize is returned when a payload is not a whole
	// number of encoded samples.
	ErrInvalidPayloadSize = errors.New("piezo: payload size not a multiple of the sample size")
	// ErrInsufficientCapacity is returned when admitting the payload would
	// take the reserved slot.
	ErrInsufficientCapacity = errors.New("piezo: not enough free slots in the sample queue")
)

// sampleQueue is a single-producer single-consumer ring of samples.
// The producer owns tail, the sequencer owns head. Each side publishes its
// index atomically only after the slots it guards are fully written, so the
// producer and the sequencer can run on different goroutines without a lock.
// Multiple producers must be serialized by the caller; Driver.Enqueue does
// that.
type sampleQueue struct {
	slots []Sample
	head  atomic.Uint32 // next slot to consume, written only by the sequencer
	tail  atomic.Uint32 // next slot to fill, written only by the producer
}

func newSampleQueue(n int) *sampleQueue {
	if n < 2 {
		panic("piezo: sample queue needs at least two slots")
	}
	return &sampleQueue{slots: make([]Sample, n)}
}

// free reports the number of free slots, counting the reserved one: an
// empty queue reports the full slot count, and at most free()-1 samples can
// actually be admitted.
func (q *sampleQueue) free() int {
	n := uint32(len(q.slots))
	occupied := (q.tail.Load() + n - q.head.Load()) % n
	return int(n - occupied)
}

func (q *sampleQueue) len() int {
	n := uint32(len(q.slots))
	return int((q.tail.Load() + n - q.head.Load()) % n)
}

// enqueue admits a payload of encoded samples. On any error the queue is
// left untouched; a zero-length payload is accepted as a no-op.
func (q *sampleQueue) enqueue(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if len(data)%SampleSize != 0 {
		return ErrInvalidPayloadSize
	}

	k := len(data) / SampleSize
	if k >= q.free() {
		return ErrInsufficientCapacity
	}

	n := uint32(len(q.slots))
	tail := q.tail.Load()
	for i := 0; i < k; i++ {
		q.slots[(tail+uint32(i))%n] = decodeSample(data[i*SampleSize:])
	}
	// Publish the new tail only after every slot is written.
	q.tail.Store((tail + uint32(k)) % n)
	return nil
}

// pop removes and returns the sample at the head of the queue.
// Called only by the sequencer.
func (q *sampleQueue) pop() (Sample, bool) {
	head := q.head.Load()
	if head == q.tail.Load() {
		return Sample{}, false
	}
	s := q.slots[head]
	q.head.Store((head + 1) % uint32(len(q.slots)))
	return s, true
}
