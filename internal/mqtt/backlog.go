package mqtt

// outbound is a formatted message waiting for the broker.
type outbound struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// backlog holds messages published while the broker is unreachable, oldest
// first, up to a fixed capacity. A retained message replaces any earlier
// retained message on the same topic, since the broker only keeps the last.
// Not safe for concurrent use; caller must synchronize.
type backlog struct {
	msgs     []outbound
	capacity int
	dropped  int // messages discarded since the last drain
}

func newBacklog(capacity int) *backlog {
	return &backlog{
		msgs:     make([]outbound, 0, capacity),
		capacity: capacity,
	}
}

// push queues msg, discarding the oldest message when full. It reports true
// for the first discard after a drain.
func (b *backlog) push(msg outbound) (firstDrop bool) {
	if msg.retained {
		b.removeRetained(msg.topic)
	}
	if len(b.msgs) == b.capacity {
		copy(b.msgs, b.msgs[1:])
		b.msgs = b.msgs[:len(b.msgs)-1]
		b.dropped++
		firstDrop = b.dropped == 1
	}
	b.msgs = append(b.msgs, msg)
	return firstDrop
}

func (b *backlog) removeRetained(topic string) {
	kept := b.msgs[:0]
	for _, m := range b.msgs {
		if m.retained && m.topic == topic {
			continue
		}
		kept = append(kept, m)
	}
	b.msgs = kept
}

// drain empties the backlog, returning the queued messages in publish order
// and how many were discarded while they waited.
func (b *backlog) drain() (msgs []outbound, dropped int) {
	if len(b.msgs) == 0 && b.dropped == 0 {
		return nil, 0
	}
	msgs = make([]outbound, len(b.msgs))
	copy(msgs, b.msgs)
	dropped = b.dropped

	b.msgs = b.msgs[:0]
	b.dropped = 0
	return msgs, dropped
}

func (b *backlog) len() int {
	return len(b.msgs)
}
