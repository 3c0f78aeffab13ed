// Copyright (c) 2024 The dynarm authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dynarm

import (
	"encoding/binary"
)

// Alignment padding must be executable, so it is a real no-op word.
const nopWord = 0xd503201f

// Encode runs pass 3: it walks the recorded streams once more with final
// offsets available, patches every relocation site with its validated
// displacement, and writes the finished little-endian instruction words
// into dst.  dst must be exactly the size returned by Link.
//
// The section streams are read-only during this pass; the only output
// besides dst is the caller's global label table.
func (s *State) Encode(dst []byte) error {
	if s.status != StatusOK {
		return s.status.Err()
	}
	if !s.linked || len(dst) != int(s.codesize) {
		return StatusPhase.Err()
	}

	cp := int32(0)
	for si := range s.sections {
		sec := &s.sections[si]
		b := sec.buf
		pos := int32(0)
		last := posIdx(sec.pos)

		for pos != last {
			p := int(b[pos])
			pos++
		walk:
			for {
				ins := s.actions[p]
				p++
				act := ins >> 16

				if act >= ActMax {
					putWord(dst, cp, ins)
					cp += 4
					continue
				}

				switch act {
				case ActStop, ActSection:
					break walk

				case ActEsc:
					putWord(dst, cp, s.actions[p])
					p++
					cp += 4

				case ActRelExt:
					var disp int32
					if s.Extern != nil {
						disp = s.Extern(int(ins&2047), cp-4, ins&2048 == 0)
					}
					if !patchRel(dst, cp-4, ins, disp) {
						return (StatusRangeRel | Status(p-1)).Err()
					}

				case ActAlign:
					pos++ // Skip the pass-1 estimate; pad off the real cursor.
					for cp&int32(ins&255) != 0 {
						putWord(dst, cp, nopWord)
						cp += 4
					}

				case ActRelLG, ActRelPC:
					v := b[pos]
					pos++
					if v <= 0 {
						kind := StatusUndefGlobal
						if act == ActRelPC {
							kind = StatusUndefPC
						}
						return (kind | Status(p-1)).Err()
					}
					target := s.sections[posSec(v)].final[posIdx(v)]
					if !patchRel(dst, cp-4, ins, target-(cp-4)) {
						return (StatusRangeRel | Status(p-1)).Err()
					}

				case ActLabelLG:
					v := sec.final[pos]
					pos++
					if g := int(ins&2047) - 2*numLocalLabels; g >= 0 && g < len(s.globals) {
						s.globals[g] = v
					}

				case ActLabelPC:
					pos++

				case ActImmAddrOff:
					n := b[pos]
					pos++
					w := getWord(dst, cp-4)
					if n&1 != 0 {
						w &^= 1 << 24 // Flip the site to the unscaled form.
					}
					w |= uint32(n &^ 1)
					putWord(dst, cp-4, w)

				default:
					// Immediate fragment precomputed by pass 1.
					n := b[pos]
					pos++
					putWord(dst, cp-4, getWord(dst, cp-4)|uint32(n))
				}
			}
		}
	}

	// The cursor must land exactly on the linked size; anything else is an
	// internal phase error, not a recoverable condition.
	if cp != s.codesize {
		return StatusPhase.Err()
	}
	return nil
}

// patchRel validates a displacement against the site's addressing mode and
// ORs the shifted bits into the reserved word at byte offset `at`.  The
// displacement is relative to the site's own instruction address.
func patchRel(dst []byte, at int32, ins uint32, n int32) bool {
	w := getWord(dst, at)

	switch ins & 0xf000 {
	case RelModePage: // imm21 across [30:29] and [23:5], units of 4K.
		n1 := n >> 12
		if n&0xfff != 0 || n1 <= -0x100000 || n1 >= 0x100000 {
			return false
		}
		w |= uint32(n1&3)<<29 | uint32(n1>>2&0x7ffff)<<5

	case RelModeByte: // imm21 across [30:29] and [23:5], byte units.
		if n <= -0x100000 || n >= 0x100000 {
			return false
		}
		w |= uint32(n&3)<<29 | uint32(n>>2&0x7ffff)<<5

	case RelModeWord14: // imm14 at [18:5].
		if n&3 != 0 || n <= -0x8000 || n >= 0x8000 {
			return false
		}
		w |= uint32(n>>2&0x3fff) << 5

	case RelModeWord19: // imm19 at [23:5].
		if n&3 != 0 || n <= -0x100000 || n >= 0x100000 {
			return false
		}
		w |= uint32(n>>2&0x7ffff) << 5

	default: // imm26 at [25:0].
		if n&3 != 0 || n <= -0x8000000 || n >= 0x8000000 {
			return false
		}
		w |= uint32(n>>2) & 0x03ffffff
	}

	putWord(dst, at, w)
	return true
}

func getWord(dst []byte, at int32) uint32 {
	return binary.LittleEndian.Uint32(dst[at:])
}

func putWord(dst []byte, at int32, w uint32) {
	binary.LittleEndian.PutUint32(dst[at:], w)
}
