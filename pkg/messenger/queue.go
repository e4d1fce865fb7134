package messenger

import "github.com/openauto/prodigy-core/pkg/frame"

// sendUnit is the set of wire frames produced by one Send call. They
// are queued and drained together so a fragmented message's pieces
// never interleave with another message's on the wire.
type sendUnit struct {
	frames []frame.Frame
}

// sendQueue is a FIFO of pending sendUnits with one carve-out: units
// destined for the Input channel prepend instead of appending, so
// latency-sensitive input events jump ahead of whatever else is queued
// (audio buffers, UI updates) while preserving relative order among
// themselves and among the rest of the queue.
type sendQueue struct {
	items []sendUnit
}

func (q *sendQueue) enqueue(unit sendUnit, priority bool) {
	if priority {
		q.items = append([]sendUnit{unit}, q.items...)
		return
	}
	q.items = append(q.items, unit)
}

func (q *sendQueue) empty() bool {
	return len(q.items) == 0
}

func (q *sendQueue) pop() (sendUnit, bool) {
	if len(q.items) == 0 {
		return sendUnit{}, false
	}
	unit := q.items[0]
	q.items = q.items[1:]
	return unit, true
}
