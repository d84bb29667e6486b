// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package reqstream

import "sync"

// Stream is the inbound surface a connection demultiplexer drives:
// responder signals plus the fragment path.
type Stream interface {
	Subscriber
	ReceiveFragment(frag *Buffer, last, hasMetadata bool)
}

// Registry tracks live streams by id on behalf of a connection. An
// entry exists exactly from the initial request frame being pushed
// until the stream's terminal transition.
type Registry interface {
	Put(streamID uint32, s Stream)
	Remove(streamID uint32)
}

// StreamMap is the default Registry: a mutex-guarded map. Demultiplex
// lookups and terminal removals are short critical sections; streams
// of one connection share a single StreamMap.
type StreamMap struct {
	mu sync.Mutex
	m  map[uint32]Stream
}

// NewStreamMap creates an empty StreamMap.
func NewStreamMap() *StreamMap {
	return &StreamMap{m: make(map[uint32]Stream)}
}

// Put registers s under streamID.
func (r *StreamMap) Put(streamID uint32, s Stream) {
	r.mu.Lock()
	r.m[streamID] = s
	r.mu.Unlock()
}

// Remove drops the entry for streamID, if any.
func (r *StreamMap) Remove(streamID uint32) {
	r.mu.Lock()
	delete(r.m, streamID)
	r.mu.Unlock()
}

// Load returns the stream registered under streamID.
func (r *StreamMap) Load(streamID uint32) (Stream, bool) {
	r.mu.Lock()
	s, ok := r.m[streamID]
	r.mu.Unlock()
	return s, ok
}

// Len returns the number of live entries.
func (r *StreamMap) Len() int {
	r.mu.Lock()
	n := len(r.m)
	r.mu.Unlock()
	return n
}
