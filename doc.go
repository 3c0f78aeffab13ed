// Copyright (c) 2024 The dynarm authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dynarm assembles pre-encoded AArch64 instruction templates into
// relocated machine code at run time.
//
// The input is an action list: a flat array of tagged 32-bit words produced
// ahead of time by a template generator.  Words whose high 16 bits fall
// outside the action vocabulary are literal instruction words; the rest
// direct the encoder to patch immediate fields, record label definitions,
// reserve relocation sites, insert alignment padding, or switch between
// output sections.
//
// Code is produced in three passes over the recorded streams:
//
//	s := dynarm.NewState(1)
//	s.Setup(actions)
//	s.Put(tmplLoad, 42)          // Pass 1, repeated per fragment.
//	s.Put(tmplRet)
//	size, err := s.Link()        // Pass 2, once.
//	buf := make([]byte, size)
//	err = s.Encode(buf)          // Pass 3, once.
//
// Pass 1 appends encoded words and link records to growable section
// buffers.  Pass 2 resolves alignment padding and assigns every section and
// label its final byte offset.  Pass 3 patches relocation displacements and
// writes the finished instruction words into the destination buffer, which
// can then be mapped executable and entered directly.
//
// A State is not safe for concurrent use.  Independent States share nothing
// except immutable lookup tables and may be used from separate goroutines.
package dynarm
