// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package reqstream

import "errors"

var (
	// ErrReleased reports a retain or release on a buffer whose
	// reference count already reached zero, or a request made with
	// an already-freed payload.
	ErrReleased = errors.New("reqstream: buffer already released")

	// ErrSingleSubscriber reports a second Subscribe call.
	// A RequestStream delivers to exactly one consumer.
	ErrSingleSubscriber = errors.New("reqstream: allows only a single subscriber")

	// ErrTooLong reports a request payload that does not fit the
	// 24-bit frame length field while fragmentation is disabled.
	ErrTooLong = errors.New("reqstream: payload exceeds maximum frame length")
)
