// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package reqstream

import "code.hybscloud.com/atomix"

// Subscriber consumes the responder side of a stream. OnNext delivers
// payloads in arrival order; exactly one of OnComplete or OnError
// follows, at most once, across all racing signal sources.
type Subscriber interface {
	OnNext(p *Payload)
	OnComplete()
	OnError(err error)
}

// RequestStream is a client-side requester for one stream: it emits
// the initial request frame on first demand, accounts demand with
// saturating arithmetic, reassembles inbound fragments, and guarantees
// leak-free exactly-once termination. All methods are safe for
// concurrent use; the whole lifecycle is driven by compare-and-swap
// on a single packed word.
type RequestStream struct {
	state atomix.Uint64

	payload *Payload
	sub     Subscriber

	streamID uint32
	asm      assembly

	mtu      int
	avail    Availability
	ids      *StreamIDs
	registry Registry
	sink     FrameSink
	decode   PayloadDecoder
}

// New creates a requester that will send payload on sink once demand
// arrives. The requester takes ownership of the caller's payload
// reference. Panics on a nil sink or an unusable fragmentation size.
func New(payload *Payload, sink FrameSink, opts ...Option) *RequestStream {
	if payload == nil {
		panic("reqstream: nil payload")
	}
	if sink == nil {
		panic("reqstream: nil sink")
	}
	cfg := defaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.mtu != 0 && cfg.mtu < minMTU {
		panic("reqstream: fragmentation mtu below minimum")
	}
	if cfg.ids == nil {
		cfg.ids = &StreamIDs{}
	}
	if cfg.registry == nil {
		cfg.registry = NewStreamMap()
	}
	r := &RequestStream{
		payload:  payload,
		sub:      nil,
		mtu:      cfg.mtu,
		avail:    cfg.avail,
		ids:      cfg.ids,
		registry: cfg.registry,
		sink:     sink,
		decode:   cfg.decode,
	}
	r.state.Store(stateUnsubscribed)
	return r
}

// Subscribe attaches the single consumer. Every call after the first
// returns ErrSingleSubscriber without side effects. An already-freed
// request payload fails the stream immediately: the consumer gets
// ErrReleased and the word goes terminal without passing through the
// subscribed state.
func (r *RequestStream) Subscribe(s Subscriber) error {
	if s == nil {
		panic("reqstream: nil subscriber")
	}
	for {
		if r.state.Load() != stateUnsubscribed {
			return ErrSingleSubscriber
		}
		if r.payload.RefCnt() <= 0 {
			if !r.state.CompareAndSwap(stateUnsubscribed, stateTerminated) {
				continue
			}
			s.OnError(ErrReleased)
			return nil
		}
		if !r.state.CompareAndSwap(stateUnsubscribed, stateSubscribed) {
			continue
		}
		r.sub = s
		return nil
	}
}

// Request adds demand. Non-positive n is a no-op, as is any call
// before Subscribe or after a terminal transition. The first positive
// request claims the one-time send path; on later calls whichever
// goroutine observes settled-to-zero demand becomes the emitter of
// the next request-n frame. Demand at or above the wire cap saturates
// the counter permanently.
func (r *RequestStream) Request(n int64) {
	if n <= 0 {
		return
	}
	for {
		s := r.state.Load()
		switch {
		case isTerminal(s) || s == stateUnsubscribed:
			return
		case s == stateSubscribed:
			claimed := satAdd(0, n)
			if !r.state.CompareAndSwap(s, claimed) {
				continue
			}
			r.sendFirst(claimed)
			return
		default:
			d := demand(s)
			nd := satAdd(d, n)
			if nd == d {
				return
			}
			if !r.state.CompareAndSwap(s, nd|stateFlags(s)) {
				continue
			}
			if d == 0 {
				r.sink.Push(encodeRequestN(r.streamID, uint32(nd)))
				r.drain(nd, false)
			}
			return
		}
	}
}

// sendFirst runs the one-time path of the claiming goroutine:
// availability gate, payload liveness re-check, oversize check,
// stream id allocation, registry insertion, initial frame emission,
// request payload release, then demand settling. The claimer owns
// the request payload from the claim onward; terminal winners over
// an active word never touch it.
func (r *RequestStream) sendFirst(claimed uint64) {
	if isTerminal(r.state.Load()) {
		_ = r.payload.Release()
		return
	}
	if err := r.avail.CheckAvailable(); err != nil {
		_ = r.payload.Release()
		if r.terminate(stateTerminated) {
			r.signalError(err)
		}
		return
	}
	p := r.payload
	if p.RefCnt() <= 0 {
		if r.terminate(stateTerminated) {
			r.signalError(ErrReleased)
		}
		return
	}
	if r.mtu == 0 && requestStreamLength(p) > maxFrameLength {
		_ = p.Release()
		if r.terminate(stateTerminated) {
			r.signalError(ErrTooLong)
		}
		return
	}
	id := r.ids.Next()
	r.streamID = id
	r.registry.Put(id, r)
	if r.mtu == 0 {
		r.sink.Push(encodeRequestStream(id, uint32(claimed), p.Metadata(), p.Data(), p.HasMetadata(), false))
	} else {
		sp := newSplitter(r.mtu, id, uint32(claimed), p)
		for {
			frame, more := sp.next()
			r.sink.Push(frame)
			if !more {
				break
			}
		}
	}
	_ = p.Release()
	r.drain(claimed, true)
}

// drain settles claimed demand against the word and announces any
// surplus that accumulated while a frame was in flight. pending is
// the amount already on the wire but not yet subtracted. first marks
// the call right after the initial frame: until the settle publishes
// flagSent, a terminal winner could not see the send, so the claimer
// owes the registry removal and, for cancellation, the cancel frame.
func (r *RequestStream) drain(pending uint64, first bool) {
	published := false
	for {
		s := r.state.Load()
		if isTerminal(s) {
			if first && !published {
				r.registry.Remove(r.streamID)
				if s == stateCancelled {
					r.sink.Push(encodeCancel(r.streamID))
				}
			}
			return
		}
		d, fl := demand(s), stateFlags(s)
		if d == demandMax {
			// Saturated: announce the cap once, pin the counter.
			if pending != demandMax {
				r.sink.Push(encodeRequestN(r.streamID, uint32(demandMax)))
				pending = demandMax
			}
			if fl&flagSent != 0 {
				return
			}
			if !r.state.CompareAndSwap(s, demandMax|fl|flagSent) {
				continue
			}
			return
		}
		rem := d - pending
		if !r.state.CompareAndSwap(s, rem|fl|flagSent) {
			continue
		}
		published = true
		if rem == 0 {
			return
		}
		r.sink.Push(encodeRequestN(r.streamID, uint32(rem)))
		pending = rem
	}
}

// Cancel terminates the stream from the consumer side. Idempotent;
// loses cleanly against any other terminal signal. When the initial
// frame is already on the wire the winner emits a cancel frame and
// drops the registry entry; against an in-flight first send the
// claimer emits the cancel after its request frame, so the wire never
// sees a cancel without its stream.
func (r *RequestStream) Cancel() {
	r.terminate(stateCancelled)
}

// OnComplete delivers the responder's completion signal.
func (r *RequestStream) OnComplete() {
	if r.terminate(stateTerminated) {
		if s := r.sub; s != nil {
			s.OnComplete()
		}
	}
}

// OnError delivers the responder's error signal.
func (r *RequestStream) OnError(err error) {
	if r.terminate(stateTerminated) {
		r.signalError(err)
	}
}

// OnNext delivers an already-assembled responder payload. After a
// terminal transition the payload is released instead.
func (r *RequestStream) OnNext(p *Payload) {
	s := r.state.Load()
	if isTerminal(s) || s == stateUnsubscribed {
		_ = p.Release()
		return
	}
	if sub := r.sub; sub != nil {
		sub.OnNext(p)
	}
}

// ReceiveFragment accumulates one inbound fragment, taking ownership
// of frag. On the terminal fragment the accumulated sections are
// assembled and delivered unless a terminal transition won meanwhile.
// The busy bit hands accumulator ownership to the receiving goroutine
// for the duration of the append, so a racing terminal winner frees
// the accumulator exactly once: either the winner does (reassemble
// set, busy clear) or the receiver does on its way out.
func (r *RequestStream) ReceiveFragment(frag *Buffer, last, hasMetadata bool) {
	for {
		s := r.state.Load()
		if !isActive(s) {
			_ = frag.Release()
			return
		}
		if r.state.CompareAndSwap(s, s|flagReassemble|flagBusy) {
			break
		}
	}
	r.asm.add(frag, hasMetadata)
	if !last {
		for {
			s := r.state.Load()
			if isTerminal(s) {
				// The terminal winner saw busy and left the
				// accumulator to us.
				r.asm.release()
				return
			}
			if r.state.CompareAndSwap(s, s&^flagBusy) {
				return
			}
		}
	}
	p := r.asm.assemble(r.decode)
	for {
		s := r.state.Load()
		if isTerminal(s) {
			_ = p.Release()
			return
		}
		if r.state.CompareAndSwap(s, s&^(flagReassemble|flagBusy)) {
			break
		}
	}
	if sub := r.sub; sub != nil {
		sub.OnNext(p)
	}
}

// terminate moves the word to the terminal value to and performs the
// cleanup the winner owes for the state it displaced. Reports whether
// this call won; losers must not signal downstream.
func (r *RequestStream) terminate(to uint64) bool {
	for {
		s := r.state.Load()
		if isTerminal(s) {
			return false
		}
		if !r.state.CompareAndSwap(s, to) {
			continue
		}
		switch s {
		case stateUnsubscribed, stateSubscribed:
			// No claimer exists yet: the request payload is ours.
			_ = r.payload.Release()
		default:
			fl := stateFlags(s)
			if fl&flagReassemble != 0 && fl&flagBusy == 0 {
				r.asm.release()
			}
			if fl&flagSent != 0 {
				r.registry.Remove(r.streamID)
				if to == stateCancelled {
					r.sink.Push(encodeCancel(r.streamID))
				}
			}
		}
		return true
	}
}

func (r *RequestStream) signalError(err error) {
	if s := r.sub; s != nil {
		s.OnError(err)
	}
}
