// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package reqstream implements the client side of a request-stream
// interaction over a multiplexed binary framing protocol.
//
// A [RequestStream] drives one stream: it emits the initial request
// frame on first demand, accounts outstanding demand with saturating
// arithmetic, reassembles fragmented responder payloads, and
// guarantees exactly-once leak-free termination under concurrent use.
//
// # Architecture
//
//   - State: the whole lifecycle lives in one packed word
//     ([code.hybscloud.com/atomix] Uint64); every transition is a
//     single compare-and-swap, no locks on the demand or signal paths.
//   - Buffers: [Buffer] and [Payload] are reference counted; every
//     terminal interleaving releases owned buffers exactly once.
//   - Emission: encoded frames go to a [FrameSink]. [QueueSink] is a
//     bounded lock-free SPSC ring via [code.hybscloud.com/lfq];
//     its Poll returns [code.hybscloud.com/iox.ErrWouldBlock] when
//     empty, for integration with a connection writer loop.
//
// # Lifecycle
//
//   - [RequestStream.Subscribe] attaches the single consumer.
//   - [RequestStream.Request] adds demand. The first positive request
//     sends the request-stream frame (fragmented when configured via
//     [WithFragmentation]); later demand is announced with request-n
//     frames, never losing or double-counting concurrent additions.
//   - [RequestStream.Cancel], [RequestStream.OnComplete] and
//     [RequestStream.OnError] race for the terminal transition;
//     exactly one signal reaches the consumer.
//   - [RequestStream.ReceiveFragment] and [RequestStream.OnNext] are
//     the inbound path a connection demultiplexer drives, looked up
//     through a [Registry].
//
// # Example
//
//	sink := reqstream.NewQueueSink(16)
//	rs := reqstream.New(reqstream.NewPayload(data, metadata), sink)
//	_ = rs.Subscribe(consumer)
//	rs.Request(8)
//	for {
//		frame, err := sink.Poll()
//		if err != nil {
//			break // ErrWouldBlock: nothing pending
//		}
//		writeToConn(frame)
//	}
package reqstream
