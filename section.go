// Copyright (c) 2024 The dynarm authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dynarm

// section owns one growable word buffer per code region.  The buffer holds
// interleaved batch headers, link-chain words, label offset estimates and
// precomputed immediate fragments.  It is mutated only by Put (append, chain
// patching) and read-only during Link and Encode.
type section struct {
	buf   []int32 // Stream records; addressed by position index.
	final []int32 // Resolved label offsets, parallel to buf; filled by Link.
	pos   int32   // Biased write position (section index in the high byte).
	ofs   int32   // Byte offset estimate; upper bound until Link runs.
}

// reserve guarantees headroom for one Put batch.  Growth is geometric and
// copies the old contents, so previously issued positions stay valid; link
// chains thread through these words and must not observe the reallocation.
func (sec *section) reserve() {
	idx := int(posIdx(sec.pos))
	if idx+maxSecPos <= len(sec.buf) {
		return
	}
	n := len(sec.buf)*2 + 2*maxSecPos
	buf := make([]int32, n)
	copy(buf, sec.buf)
	sec.buf = buf
}

// reset prepares the section for a new assembly session without releasing
// buffer capacity.
func (sec *section) reset(index int) {
	sec.pos = secPos(index)
	sec.ofs = 0
}
