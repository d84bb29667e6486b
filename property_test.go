// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package reqstream_test

import (
	"bytes"
	"testing"
	"testing/quick"

	"code.hybscloud.com/reqstream"
)

// TestPropertyDemandConservation proves that for any sequence of
// positive requests below the saturation point, the demand announced
// on the wire (initial n plus all request-n frames) equals exactly
// the demand requested: nothing lost, nothing double-counted.
func TestPropertyDemandConservation(t *testing.T) {
	propertyConserved := func(requests []uint16) bool {
		p := reqstream.NewPayload([]byte("d"), nil)
		sink := &recordSink{}
		rs := reqstream.New(p, sink)
		if err := rs.Subscribe(&recordSubscriber{}); err != nil {
			return false
		}
		var want uint64
		for _, n := range requests {
			if n == 0 {
				continue
			}
			rs.Request(int64(n))
			want += uint64(n)
		}
		var got uint64
		for _, f := range sink.take() {
			got += uint64(reqstream.FrameRequestN(f))
		}
		return got == want
	}
	if err := quick.Check(propertyConserved, nil); err != nil {
		t.Error(err)
	}
}

// TestPropertyFragmentationRoundTrip proves that for arbitrary
// payloads and frame size budgets, splitting and reconcatenating the
// fragment sections reproduces the payload exactly, with every frame
// within budget and the follows flag on all but the last.
func TestPropertyFragmentationRoundTrip(t *testing.T) {
	propertyRoundTrip := func(metadata, data []byte, mtuSeed uint8) bool {
		mtu := 64 + int(mtuSeed)%64
		frames := fragmentFrames(t, metadata, data, mtu)
		if len(frames) == 0 {
			return false
		}
		for i, f := range frames {
			if len(f) > mtu-3 {
				return false
			}
			follows := reqstream.FrameFlags(f)&reqstream.FlagFollows != 0
			if follows != (i < len(frames)-1) {
				return false
			}
		}
		gotMeta, gotData, hasMeta := reconstruct(frames)
		if hasMeta != (metadata != nil) {
			return false
		}
		return bytes.Equal(gotMeta, metadata) && bytes.Equal(gotData, data)
	}
	if err := quick.Check(propertyRoundTrip, nil); err != nil {
		t.Error(err)
	}
}

// TestPropertyReassemblyRoundTrip proves that a payload split at
// arbitrary fragment boundaries is reassembled intact by the inbound
// path.
func TestPropertyReassemblyRoundTrip(t *testing.T) {
	propertyReassemble := func(data []byte, cuts uint8) bool {
		p := reqstream.NewPayload([]byte("req"), nil)
		rs, _, sub, _ := newStream(t, p)
		if err := rs.Subscribe(sub); err != nil {
			return false
		}
		rs.Request(1)

		step := int(cuts)%7 + 1
		rest := data
		for len(rest) > step {
			rs.ReceiveFragment(reqstream.NewBuffer(fragBody(nil, rest[:step], false)), false, false)
			rest = rest[step:]
		}
		rs.ReceiveFragment(reqstream.NewBuffer(fragBody(nil, rest, false)), true, false)

		got := sub.received()
		return len(got) == 1 && bytes.Equal(got[0].Data(), data)
	}
	if err := quick.Check(propertyReassemble, nil); err != nil {
		t.Error(err)
	}
}
