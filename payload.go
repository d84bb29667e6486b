// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package reqstream

import "code.hybscloud.com/atomix"

// Payload is a reference-counted data+metadata pair, the unit both of
// the outbound request and of inbound delivery. Same ownership rules
// as Buffer: created with one reference, freed at zero, not revivable.
type Payload struct {
	refs        atomix.Int32
	data        []byte
	metadata    []byte
	hasMetadata bool
}

// NewPayload builds a payload over data and metadata. A nil metadata
// slice means no metadata section at all; an empty non-nil slice is a
// present, zero-length section.
func NewPayload(data, metadata []byte) *Payload {
	p := &Payload{data: data, metadata: metadata, hasMetadata: metadata != nil}
	p.refs.Store(1)
	return p
}

// Data returns the data part. Valid only while a reference is held.
func (p *Payload) Data() []byte { return p.data }

// Metadata returns the metadata part, nil when absent.
func (p *Payload) Metadata() []byte { return p.metadata }

// HasMetadata reports whether the payload carries a metadata section.
func (p *Payload) HasMetadata() bool { return p.hasMetadata }

// RefCnt returns the current reference count.
func (p *Payload) RefCnt() int32 { return p.refs.Load() }

// Retain acquires one reference. Fails with ErrReleased after zero.
func (p *Payload) Retain() error {
	for {
		n := p.refs.Load()
		if n <= 0 {
			return ErrReleased
		}
		if p.refs.CompareAndSwap(n, n+1) {
			return nil
		}
	}
}

// Release drops one reference. Fails with ErrReleased at zero.
func (p *Payload) Release() error {
	for {
		n := p.refs.Load()
		if n <= 0 {
			return ErrReleased
		}
		if p.refs.CompareAndSwap(n, n-1) {
			return nil
		}
	}
}
