// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package reqstream

// assembly accumulates inbound fragment bodies until the terminal
// fragment arrives. Ownership follows the state word: the receiving
// goroutine holds it while flagBusy is set; a terminal winner that
// observes flagReassemble without flagBusy releases it instead.
type assembly struct {
	parts []fragPart
}

type fragPart struct {
	buf         *Buffer
	hasMetadata bool
}

// add takes ownership of frag.
func (a *assembly) add(frag *Buffer, hasMetadata bool) {
	a.parts = append(a.parts, fragPart{buf: frag, hasMetadata: hasMetadata})
}

// assemble concatenates the metadata and data sections of all parts,
// releases the fragment buffers, and builds the consumer payload via
// decode. The caller still owns the word-level reassembly flags.
func (a *assembly) assemble(decode PayloadDecoder) *Payload {
	var metadata, data []byte
	hasMetadata := false
	for _, part := range a.parts {
		body := part.buf.Bytes()
		if part.hasMetadata {
			hasMetadata = true
			n := getUint24(body)
			metadata = append(metadata, body[metadataLengthFieldSize:metadataLengthFieldSize+n]...)
			body = body[metadataLengthFieldSize+n:]
		}
		data = append(data, body...)
		_ = part.buf.Release()
	}
	a.parts = nil
	if !hasMetadata {
		metadata = nil
	} else if metadata == nil {
		metadata = []byte{}
	}
	return decode(data, metadata)
}

// release frees all accumulated fragments without assembling.
func (a *assembly) release() {
	for _, part := range a.parts {
		_ = part.buf.Release()
	}
	a.parts = nil
}
