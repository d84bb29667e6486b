// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package reqstream

import (
	"code.hybscloud.com/iox"
	"code.hybscloud.com/lfq"
)

// FrameSink accepts fully encoded outbound frames. Push transfers
// ownership of the buffer to the sink. The order of pushes on one
// sink is the protocol order the peer observes.
type FrameSink interface {
	Push(frame *Buffer)
}

// QueueSink is a bounded single-producer single-consumer frame queue
// between a requester and its connection writer. Push waits past a
// full ring with adaptive backoff; Poll is non-blocking and returns
// iox.ErrWouldBlock when the ring is empty.
type QueueSink struct {
	q lfq.SPSC[*Buffer]
}

// NewQueueSink creates a QueueSink with the given ring capacity.
func NewQueueSink(capacity int) *QueueSink {
	s := &QueueSink{}
	s.q.Init(capacity)
	return s
}

// Push enqueues frame, waiting on a full ring with iox.Backoff.
func (s *QueueSink) Push(frame *Buffer) {
	var bo iox.Backoff
	for s.q.Enqueue(&frame) != nil {
		bo.Wait()
	}
}

// Poll dequeues the next frame. Returns iox.ErrWouldBlock when empty.
func (s *QueueSink) Poll() (*Buffer, error) {
	return s.q.Dequeue()
}
