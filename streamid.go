// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package reqstream

import "code.hybscloud.com/atomix"

// StreamIDs allocates client-side stream identifiers: the odd sequence
// 1, 3, 5, ... within 31 bits. Id 0 is reserved for the connection.
// One StreamIDs is shared by all requesters of a connection.
type StreamIDs struct {
	c atomix.Uint32
}

// Next returns the next stream id.
func (s *StreamIDs) Next() uint32 {
	return (s.c.Add(1)*2 - 1) & maxStreamID
}
