// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package reqstream

// The whole stream lifecycle lives in one 64-bit word so that every
// transition is a single compare-and-swap.
//
// Sentinel states carry bit 63. Terminal states additionally carry
// bit 62. A word with bit 63 clear is an active streaming state: its
// low 31 bits hold outstanding demand and bits 31..33 hold ownership
// flags. Terminal is absorbing: no CAS ever leaves it.
const (
	// demandMask covers the outstanding-demand counter.
	demandMask uint64 = 1<<31 - 1

	// demandMax is the saturation value. It equals the largest
	// request count representable on the wire; once reached the
	// counter is pinned and no further demand frames are sent.
	demandMax = demandMask

	// flagReassemble marks that a fragment accumulator exists.
	flagReassemble uint64 = 1 << 31
	// flagSent marks that the initial request frame was pushed,
	// i.e. a stream id is allocated and the registry entry is live.
	flagSent uint64 = 1 << 32
	// flagBusy marks that a receiving goroutine currently owns the
	// accumulator. A terminal winner must not free it while set.
	flagBusy uint64 = 1 << 33

	terminalBit uint64 = 1 << 62
	sentinelBit uint64 = 1 << 63

	stateUnsubscribed = sentinelBit
	stateSubscribed   = sentinelBit | 1
	stateTerminated   = sentinelBit | terminalBit
	stateCancelled    = sentinelBit | terminalBit | 1
)

func isTerminal(s uint64) bool { return s&terminalBit != 0 }

func isActive(s uint64) bool { return s&sentinelBit == 0 }

func demand(s uint64) uint64 { return s & demandMask }

func stateFlags(s uint64) uint64 {
	return s & (flagReassemble | flagSent | flagBusy)
}

// satAdd adds n (n > 0) to the demand counter, saturating at demandMax.
// Saturation is sticky: once pinned the counter never moves again.
func satAdd(d uint64, n int64) uint64 {
	if d == demandMax {
		return demandMax
	}
	if nd := d + uint64(n); nd < demandMax {
		return nd
	}
	return demandMax
}
