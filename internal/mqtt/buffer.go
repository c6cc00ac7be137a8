package mqtt

import "log"

// bufferedMsg stores a serialized MQTT message for replay after reconnection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// ringBuffer is a fixed-capacity FIFO that keeps the newest messages while
// disconnected. Not safe for concurrent use; RealPublisher holds its mutex.
type ringBuffer struct {
	buf     []bufferedMsg
	start   int // index of the oldest message
	count   int
	dropped int // messages overwritten since the last drain
}

func newRingBuffer(capacity int) *ringBuffer {
	return &ringBuffer{buf: make([]bufferedMsg, capacity)}
}

func (r *ringBuffer) push(msg bufferedMsg) {
	capacity := len(r.buf)
	if r.count < capacity {
		r.buf[(r.start+r.count)%capacity] = msg
		r.count++
		return
	}

	if r.dropped == 0 {
		log.Printf("mqtt: buffer full (%d messages), dropping oldest", capacity)
	}
	r.dropped++
	r.buf[r.start] = msg
	r.start = (r.start + 1) % capacity
}

// drainAll returns buffered messages oldest first and empties the buffer.
func (r *ringBuffer) drainAll() []bufferedMsg {
	if r.count == 0 {
		return nil
	}
	if r.dropped > 0 {
		log.Printf("mqtt: %d buffered messages were dropped while disconnected", r.dropped)
	}

	out := make([]bufferedMsg, r.count)
	for i := range out {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}

	r.start, r.count, r.dropped = 0, 0, 0
	return out
}

func (r *ringBuffer) len() int {
	return r.count
}
