package batch

// queue buffers descriptors accumulated between batch executions.
// Insertion order is call order; the order only matters for pool sizing,
// since a batch dispatches every entry concurrently.
//
// The queue itself is not goroutine safe — the owning Client serialises
// access with its own mutex.
type queue struct {
	items []*Descriptor
}

// push appends a descriptor.
func (q *queue) push(d *Descriptor) {
	q.items = append(q.items, d)
}

// drain removes and returns every pending descriptor. The returned slice is
// owned by the caller; the queue is empty afterwards.
func (q *queue) drain() []*Descriptor {
	items := q.items
	q.items = nil
	return items
}

// clear discards all pending descriptors. Idempotent.
func (q *queue) clear() {
	q.items = nil
}

func (q *queue) len() int {
	return len(q.items)
}
