// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package reqstream

// minMTU is the smallest usable fragmentation size budget. Below this
// a frame budget could not fit a header, the initial demand word, a
// metadata length prefix and at least some payload.
const minMTU = 64

// splitter slices one oversized request payload into an initial
// request-stream frame plus payload continuation frames, each fitting
// the mtu budget. The budget covers the 3-byte length field the
// transport prepends, so a frame body never exceeds mtu-3 bytes.
// Metadata is consumed before data; every fragment that still carries
// metadata has its own length-prefixed metadata section.
type splitter struct {
	streamID uint32
	initialN uint32
	mtu      int
	metadata []byte
	data     []byte
	// metaLeft doubles as "metadata section still owed": it stays
	// set until the section has been emitted at least once, so a
	// zero-length metadata section is not silently dropped.
	metaLeft bool
	first    bool
}

func newSplitter(mtu int, streamID, initialN uint32, p *Payload) splitter {
	return splitter{
		streamID: streamID,
		initialN: initialN,
		mtu:      mtu,
		metadata: p.Metadata(),
		data:     p.Data(),
		metaLeft: p.HasMetadata(),
		first:    true,
	}
}

// next encodes the next fragment. more reports whether further
// fragments follow; the encoded frame carries FlagFollows iff more.
func (s *splitter) next() (frame *Buffer, more bool) {
	avail := s.mtu - frameLengthFieldSize - frameHeaderSize
	if s.first {
		avail -= initialRequestNSize
	}
	var meta []byte
	withMeta := false
	if s.metaLeft {
		withMeta = true
		avail -= metadataLengthFieldSize
		take := min(avail, len(s.metadata))
		meta, s.metadata = s.metadata[:take], s.metadata[take:]
		avail -= take
		if len(s.metadata) == 0 {
			s.metaLeft = false
		}
	}
	take := min(avail, len(s.data))
	var data []byte
	data, s.data = s.data[:take], s.data[take:]
	more = s.metaLeft || len(s.data) > 0
	if s.first {
		s.first = false
		return encodeRequestStream(s.streamID, s.initialN, meta, data, withMeta, more), more
	}
	return encodePayloadFragment(s.streamID, meta, data, withMeta, more), more
}
