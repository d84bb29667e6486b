// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package reqstream

import "code.hybscloud.com/atomix"

// Buffer is a reference-counted byte slice: an encoded outbound frame
// or the body of an inbound fragment. A new Buffer starts with one
// reference owned by the creator. Once the count reaches zero the
// buffer is freed and every further Retain or Release fails with
// ErrReleased.
type Buffer struct {
	refs atomix.Int32
	b    []byte
}

// NewBuffer wraps b in a Buffer with reference count one.
func NewBuffer(b []byte) *Buffer {
	buf := &Buffer{b: b}
	buf.refs.Store(1)
	return buf
}

// Bytes returns the underlying slice. Valid only while a reference
// is held.
func (b *Buffer) Bytes() []byte { return b.b }

// RefCnt returns the current reference count.
func (b *Buffer) RefCnt() int32 { return b.refs.Load() }

// Retain acquires one reference. Fails with ErrReleased after the
// count has reached zero; a freed buffer cannot be revived.
func (b *Buffer) Retain() error {
	for {
		n := b.refs.Load()
		if n <= 0 {
			return ErrReleased
		}
		if b.refs.CompareAndSwap(n, n+1) {
			return nil
		}
	}
}

// Release drops one reference. Fails with ErrReleased when the count
// is already zero, so racing releasers over-free at most by error
// return, never by going negative.
func (b *Buffer) Release() error {
	for {
		n := b.refs.Load()
		if n <= 0 {
			return ErrReleased
		}
		if b.refs.CompareAndSwap(n, n-1) {
			return nil
		}
	}
}
