// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package reqstream

// Availability gates the first demand of a stream: the one-time send
// path consults it before allocating a stream id. A non-nil error
// fails the stream with that error before anything reaches the wire.
type Availability interface {
	CheckAvailable() error
}

// AvailabilityFunc adapts a function to Availability.
type AvailabilityFunc func() error

// CheckAvailable implements Availability.
func (f AvailabilityFunc) CheckAvailable() error { return f() }

var alwaysAvailable = AvailabilityFunc(func() error { return nil })

// PayloadDecoder builds the consumer payload from reassembled
// metadata and data. metadata is nil when no fragment carried a
// metadata section.
type PayloadDecoder func(data, metadata []byte) *Payload

// Option configures a RequestStream.
type Option func(*options)

type options struct {
	mtu      int
	avail    Availability
	ids      *StreamIDs
	registry Registry
	decode   PayloadDecoder
}

func defaultOptions() options {
	return options{
		avail:  alwaysAvailable,
		decode: NewPayload,
	}
}

// WithFragmentation enables outbound payload splitting with the given
// size budget per frame, length prefix included. mtu must be at least
// 64; zero leaves fragmentation disabled.
func WithFragmentation(mtu int) Option {
	return func(o *options) { o.mtu = mtu }
}

// WithAvailability installs the first-demand availability gate.
func WithAvailability(a Availability) Option {
	return func(o *options) { o.avail = a }
}

// WithStreamIDs shares a stream id allocator across requesters.
func WithStreamIDs(ids *StreamIDs) Option {
	return func(o *options) { o.ids = ids }
}

// WithRegistry shares a live-stream registry across requesters.
func WithRegistry(r Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithDecoder installs the reassembled-payload decoder.
func WithDecoder(d PayloadDecoder) Option {
	return func(o *options) { o.decode = d }
}
