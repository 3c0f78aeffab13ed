// Copyright (c) 2024 The dynarm authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dynarm

// Action kinds occupy the high 16 bits of an action word; the low 16 bits
// carry an inline parameter.  A word whose high half is ActMax or greater is
// a literal instruction word.
const (
	ActStop = iota // End of batch.
	ActSection
	ActEsc
	ActRelExt

	// Actions from here on reserve a section buffer position.
	ActAlign
	ActRelLG
	ActLabelLG

	// Actions from here on also consume a caller argument.
	ActRelPC
	ActLabelPC
	ActImm        // Plain bit field: shift, width, scale, signedness inline.
	ActImmAddrOff // Load/store offset, scaled or unscaled fallback.
	ActImmNSR     // Logical bitmask immediate (N:immr:imms).
	ActImmLSB     // Bitfield immr, 0..31 or 0..63.
	ActImmWidth1  // Bitfield imms below immr (BFI form).
	ActImmWidth2  // Bitfield imms at or above immr (BFXIL form).
	ActImmShift   // Shift amount as immr/imms pair.
	ActImmMov     // Wide, inverted-wide or bitmask move immediate.
	ActImmTBN     // Test-bit number, 0..63.
	ActImmA2H     // 8-bit vector immediate, abc:defgh split.
	ActImmA2H64   // 64-bit byte-mask vector immediate.
	ActImmA2HFP   // Vector floating-point immediate.
	ActImm8FP     // Scalar floating-point immediate.
	ActImmHLM     // Vector element index h:l:m.
	ActImmQSS     // Vector element index q:s:s.
	ActImmHB      // Fractional bits / vector shift, immh:immb.
	ActImmScale   // Fixed-point scale, 1..32 or 1..64.

	ActMax
)

// Relocation addressing modes, held in bits 15:12 of relocation actions.
// Each mode has its own displacement range and alignment rule.
const (
	RelModePage   = 0x0000 // ADRP: page-aligned, ±4G.
	RelModeByte   = 0x1000 // ADR: byte displacement, ±1M.
	RelModeWord14 = 0x2000 // TBZ/TBNZ: word-aligned, ±32K.
	RelModeWord19 = 0x3000 // B.cond/CBZ: word-aligned, ±1M.
	RelModeWord26 = 0x4000 // B/BL: word-aligned, ±128M.
)

// Maximum number of section buffer positions a single Put may reserve.
const maxSecPos = 25

// Buffer positions are biased: the high 8 bits hold the section index, the
// low 24 bits the word index into that section's buffer.  Label slots store
// a position negated to mark the label defined, so the section index must
// stay below 128 to keep the sign bit free.  Link chains store these
// positions, so they must survive buffer growth; everything addresses
// buffers by position, never by slice identity.
const posIndexMask = 0x00ffffff

func posIdx(p int32) int32 { return p & posIndexMask }
func posSec(p int32) int32 { return p >> 24 }
func secPos(sec int) int32 { return int32(sec) << 24 }
