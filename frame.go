// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package reqstream

import "encoding/binary"

// FrameType identifies a protocol frame.
type FrameType uint8

const (
	FrameTypeRequestStream FrameType = 0x06
	FrameTypeRequestN      FrameType = 0x08
	FrameTypeCancel        FrameType = 0x09
	FrameTypePayload       FrameType = 0x0A
)

// Frame flags, low ten bits of the header's second word.
const (
	FlagMetadata uint16 = 1 << 8
	FlagFollows  uint16 = 1 << 7
	FlagComplete uint16 = 1 << 6
	FlagNext     uint16 = 1 << 5
)

const (
	// frameLengthFieldSize is the transport's length prefix. It is
	// not part of the encoded buffer but counts against the
	// fragmentation size budget.
	frameLengthFieldSize = 3

	// frameHeaderSize is u32 stream id plus u16 type|flags.
	frameHeaderSize = 6

	// initialRequestNSize is the u32 initial demand of a
	// request-stream frame.
	initialRequestNSize = 4

	// metadataLengthFieldSize prefixes a metadata section.
	metadataLengthFieldSize = 3

	// maxFrameLength is the largest encoded frame the transport's
	// 24-bit length field can carry.
	maxFrameLength = 1<<24 - 1

	// maxStreamID keeps stream ids within 31 bits; bit 31 of the
	// header word is reserved.
	maxStreamID = 1<<31 - 1
)

func putUint24(b []byte, v int) {
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}

func getUint24(b []byte) int {
	return int(b[0])<<16 | int(b[1])<<8 | int(b[2])
}

func putHeader(b []byte, streamID uint32, t FrameType, flags uint16) {
	binary.BigEndian.PutUint32(b, streamID&maxStreamID)
	binary.BigEndian.PutUint16(b[4:], uint16(t)<<10|flags&(1<<10-1))
}

// FrameStreamID decodes the stream id of an encoded frame.
func FrameStreamID(frame []byte) uint32 {
	return binary.BigEndian.Uint32(frame) & maxStreamID
}

// FrameTypeOf decodes the frame type of an encoded frame.
func FrameTypeOf(frame []byte) FrameType {
	return FrameType(binary.BigEndian.Uint16(frame[4:]) >> 10)
}

// FrameFlags decodes the flag bits of an encoded frame.
func FrameFlags(frame []byte) uint16 {
	return binary.BigEndian.Uint16(frame[4:]) & (1<<10 - 1)
}

// FrameRequestN decodes the demand count of a request-stream or
// request-n frame.
func FrameRequestN(frame []byte) uint32 {
	return binary.BigEndian.Uint32(frame[frameHeaderSize:])
}

func frameBodyOffset(frame []byte) int {
	if FrameTypeOf(frame) == FrameTypeRequestStream {
		return frameHeaderSize + initialRequestNSize
	}
	return frameHeaderSize
}

// FrameMetadata decodes the metadata section of an encoded
// request-stream or payload frame. ok is false when the frame carries
// no metadata section.
func FrameMetadata(frame []byte) (metadata []byte, ok bool) {
	if FrameFlags(frame)&FlagMetadata == 0 {
		return nil, false
	}
	off := frameBodyOffset(frame)
	n := getUint24(frame[off:])
	off += metadataLengthFieldSize
	return frame[off : off+n], true
}

// FrameData decodes the data section of an encoded request-stream or
// payload frame.
func FrameData(frame []byte) []byte {
	off := frameBodyOffset(frame)
	if FrameFlags(frame)&FlagMetadata != 0 {
		off += metadataLengthFieldSize + getUint24(frame[off:])
	}
	return frame[off:]
}

// requestStreamLength is the encoded size of an unfragmented
// request-stream frame for p, excluding the transport length prefix.
func requestStreamLength(p *Payload) int {
	n := frameHeaderSize + initialRequestNSize + len(p.Data())
	if p.HasMetadata() {
		n += metadataLengthFieldSize + len(p.Metadata())
	}
	return n
}

func encodeRequestStream(streamID, initialN uint32, metadata, data []byte, hasMetadata, follows bool) *Buffer {
	flags := uint16(0)
	size := frameHeaderSize + initialRequestNSize + len(data)
	if hasMetadata {
		flags |= FlagMetadata
		size += metadataLengthFieldSize + len(metadata)
	}
	if follows {
		flags |= FlagFollows
	}
	b := make([]byte, size)
	putHeader(b, streamID, FrameTypeRequestStream, flags)
	binary.BigEndian.PutUint32(b[frameHeaderSize:], initialN)
	off := frameHeaderSize + initialRequestNSize
	if hasMetadata {
		putUint24(b[off:], len(metadata))
		off += metadataLengthFieldSize
		off += copy(b[off:], metadata)
	}
	copy(b[off:], data)
	return NewBuffer(b)
}

func encodePayloadFragment(streamID uint32, metadata, data []byte, hasMetadata, follows bool) *Buffer {
	flags := FlagNext
	size := frameHeaderSize + len(data)
	if hasMetadata {
		flags |= FlagMetadata
		size += metadataLengthFieldSize + len(metadata)
	}
	if follows {
		flags |= FlagFollows
	}
	b := make([]byte, size)
	putHeader(b, streamID, FrameTypePayload, flags)
	off := frameHeaderSize
	if hasMetadata {
		putUint24(b[off:], len(metadata))
		off += metadataLengthFieldSize
		off += copy(b[off:], metadata)
	}
	copy(b[off:], data)
	return NewBuffer(b)
}

func encodeRequestN(streamID, n uint32) *Buffer {
	b := make([]byte, frameHeaderSize+4)
	putHeader(b, streamID, FrameTypeRequestN, 0)
	binary.BigEndian.PutUint32(b[frameHeaderSize:], n)
	return NewBuffer(b)
}

func encodeCancel(streamID uint32) *Buffer {
	b := make([]byte, frameHeaderSize)
	putHeader(b, streamID, FrameTypeCancel, 0)
	return NewBuffer(b)
}
