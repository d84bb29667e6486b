// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package reqstream_test

import (
	"sync"
	"testing"

	"code.hybscloud.com/reqstream"
)

// recordSink captures pushed frames under a mutex so race tests can
// push from multiple goroutines and inspect afterwards.
type recordSink struct {
	mu     sync.Mutex
	frames []*reqstream.Buffer
}

func (s *recordSink) Push(frame *reqstream.Buffer) {
	s.mu.Lock()
	s.frames = append(s.frames, frame)
	s.mu.Unlock()
}

// take returns a snapshot of the captured frame bodies in push order.
func (s *recordSink) take() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.frames))
	for i, f := range s.frames {
		out[i] = f.Bytes()
	}
	return out
}

// recordSubscriber captures downstream signals under a mutex.
type recordSubscriber struct {
	mu        sync.Mutex
	payloads  []*reqstream.Payload
	completed int
	errs      []error
}

func (s *recordSubscriber) OnNext(p *reqstream.Payload) {
	s.mu.Lock()
	s.payloads = append(s.payloads, p)
	s.mu.Unlock()
}

func (s *recordSubscriber) OnComplete() {
	s.mu.Lock()
	s.completed++
	s.mu.Unlock()
}

func (s *recordSubscriber) OnError(err error) {
	s.mu.Lock()
	s.errs = append(s.errs, err)
	s.mu.Unlock()
}

// terminals counts every terminal signal the subscriber saw.
func (s *recordSubscriber) terminals() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed + len(s.errs)
}

func (s *recordSubscriber) received() []*reqstream.Payload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*reqstream.Payload(nil), s.payloads...)
}

// newStream builds a requester over a recording sink with its own
// registry, for frame-level and registry-lifetime assertions.
func newStream(tb testing.TB, p *reqstream.Payload, opts ...reqstream.Option) (*reqstream.RequestStream, *recordSink, *recordSubscriber, *reqstream.StreamMap) {
	tb.Helper()
	sink := &recordSink{}
	reg := reqstream.NewStreamMap()
	opts = append(opts, reqstream.WithRegistry(reg))
	rs := reqstream.New(p, sink, opts...)
	return rs, sink, &recordSubscriber{}, reg
}

// fragBody encodes the body of an inbound fragment: an optional
// length-prefixed metadata section followed by data, the shape
// ReceiveFragment consumes.
func fragBody(metadata, data []byte, withMetadata bool) []byte {
	if !withMetadata {
		return append([]byte(nil), data...)
	}
	b := make([]byte, 0, 3+len(metadata)+len(data))
	b = append(b, byte(len(metadata)>>16), byte(len(metadata)>>8), byte(len(metadata)))
	b = append(b, metadata...)
	return append(b, data...)
}
