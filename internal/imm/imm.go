// Copyright (c) 2024 The dynarm authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package imm computes bit-packed encodings for the structured AArch64
// immediate operand classes: logical bitmask immediates, wide and
// inverted-wide move immediates, byte-mask vector immediates and packed
// 8-bit floating-point constants.  All functions are pure; the only state
// is a pair of lookup tables built once per process and read-only after.
package imm

import (
	"sort"
	"sync"
)

// A logical bitmask immediate is a run of ones rotated within its element
// size and replicated to fill the operand width.  The representable set is
// finite: 1302 values at 32 bits, 5334 at 64.  Both tables map the
// materialized value to the N:immr:imms field encoding (N at bit 22, immr
// at 16, imms at 10) and are queried by binary search.
type entry struct {
	val uint64
	enc uint32
}

var (
	tablesOnce sync.Once
	table32    []entry
	table64    []entry
)

func buildTables() {
	table32 = make([]entry, 0, 1302)
	table64 = make([]entry, 0, 5334)

	// Element sizes 2..32 are shared between the 32- and 64-bit tables;
	// the imms high bits identify the element size.
	for lg := 1; lg <= 5; lg++ {
		esize := uint(1) << uint(lg)
		immsBase := uint32(^((1 << uint(lg+1)) - 1) & 0x3f)
		for s := uint(1); s < esize; s++ {
			run := uint64(1)<<s - 1
			for r := uint(0); r < esize; r++ {
				elem := run
				if r > 0 {
					elem = run>>r | (run&(uint64(1)<<r-1))<<(esize-r)
				}
				var v32, v64 uint64
				for sh := uint(0); sh < 32; sh += esize {
					v32 |= elem << sh
				}
				for sh := uint(0); sh < 64; sh += esize {
					v64 |= elem << sh
				}
				enc := (immsBase|uint32(s-1))<<10 | uint32(r)<<16
				table32 = append(table32, entry{v32, enc})
				table64 = append(table64, entry{v64, enc})
			}
		}
	}

	// Element size 64 exists only in the 64-bit table and is flagged by N.
	for s := uint(1); s < 64; s++ {
		run := uint64(1)<<s - 1
		for r := uint(0); r < 64; r++ {
			v := run
			if r > 0 {
				v = run>>r | (run&(uint64(1)<<r-1))<<(64-r)
			}
			enc := uint32(0x400000) | uint32(s-1)<<10 | uint32(r)<<16
			table64 = append(table64, entry{v, enc})
		}
	}

	sort.Slice(table32, func(i, j int) bool { return table32[i].val < table32[j].val })
	sort.Slice(table64, func(i, j int) bool { return table64[i].val < table64[j].val })
}

// Logical returns the N:immr:imms encoding of a logical bitmask immediate,
// or false if the value is not in the representable set.
func Logical(v uint64, is64 bool) (uint32, bool) {
	tablesOnce.Do(buildTables)
	t := table32
	if is64 {
		t = table64
	}
	i := sort.Search(len(t), func(i int) bool { return t[i].val >= v })
	if i < len(t) && t[i].val == v {
		return t[i].enc, true
	}
	return 0, false
}

// wide accepts values with exactly one non-zero aligned 16-bit lane and
// returns the imm16:hw encoding (imm16 at bit 5, hw at 21).  Zero encodes
// as lane 0.
func wide(v uint64, is64 bool) (uint32, bool) {
	if v == 0 {
		return 0, true
	}
	lanes := uint(2)
	if is64 {
		lanes = 4
	}
	m := uint64(0xffff)
	for i := uint(0); i < lanes; i++ {
		if v&m != 0 && v&^m == 0 {
			return uint32(v>>(i*16))<<5 | uint32(i)<<21, true
		}
		m <<= 16
	}
	return 0, false
}

// Move opcode bases OR'ed with the selected immediate encoding.
const (
	MovZ   = 0x52800000 // MOVZ: one lane set, others cleared.
	MovN   = 0x12800000 // MOVN: complement has one lane set.
	MovOrr = 0x32000000 // ORR from the zero register: bitmask fallback.
)

// Move selects a single-instruction move-immediate encoding for v: MOVZ if
// exactly one 16-bit lane is non-zero, MOVN if the complement has that
// property, otherwise an ORR bitmask immediate.  The 32-bit values
// 0xffff0000 and 0x0000ffff are excluded from the MOVN form; they collide
// with the bitmask encoding.  Only the low 32 bits of v are significant
// when is64 is false.
func Move(v uint64, is64 bool) (uint32, bool) {
	if !is64 {
		v &= 0xffffffff
	}
	if enc, ok := wide(v, is64); ok {
		return enc | MovZ, true
	}
	inv := ^v
	if !is64 {
		inv &= 0xffffffff
	}
	if enc, ok := wide(inv, is64); ok {
		if is64 || (v != 0xffff0000 && v != 0x0000ffff) {
			return enc | MovN, true
		}
	}
	if enc, ok := Logical(v, is64); ok {
		return enc | MovOrr, true
	}
	return 0, false
}

// ByteMask accepts 64-bit values whose every byte is 0x00 or 0xff and
// returns the abc:defgh encoding of the byte-selection mask (abc at bit 16,
// defgh at 5).
func ByteMask(v uint64) (uint32, bool) {
	var e uint32
	for i := uint(0); i < 8; i++ {
		switch b := v >> (i * 8) & 0xff; b {
		case 0xff:
			e |= 1 << i
		case 0x00:
		default:
			return 0, false
		}
	}
	return e>>5<<16 | (e&0x1f)<<5, true
}

// Float8 packs an IEEE 754 double (given as its bit pattern) into the
// canonical 8-bit a:b:c:d:efgh immediate.  Only values whose exponent is a
// short run of identical high bits and whose significand fits four bits are
// representable; everything else is rejected.
func Float8(bits uint64) (uint32, bool) {
	e := uint32(bits >> 52 & 0x7ff)
	if bits&(uint64(1)<<48-1) != 0 {
		return 0, false
	}
	switch {
	case e&0x400 != 0 && e&0x3fc == 0:
	case e&0x400 == 0 && e&0x3fc == 0x3fc:
	default:
		return 0, false
	}
	s := uint32(bits >> 63)
	sig := uint32(bits >> 48 & 0xf)
	// The b bit holds the inverted exponent MSB; the expansion rule
	// reconstructs the exponent as NOT(b):Replicate(b):c:d.
	return s<<7 | (e>>10&1^1)<<6 | (e&3)<<4 | sig, true
}
