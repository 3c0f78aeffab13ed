// Copyright (c) 2024 The dynarm authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dynarm

import (
	"github.com/jitkit/dynarm/internal/imm"
)

// Put runs pass 1 for one action-list batch starting at the given offset:
// it appends encoded words and link records to the active section and
// returns at the batch's stop or section-switch marker.  Arguments are
// consumed in order, one per action that needs a runtime value.
//
// Failures are sticky: the first one is recorded with its action-list
// offset and later calls become no-ops until the next Setup.
func (s *State) Put(start int, args ...int64) {
	if s.status != StatusOK {
		return
	}
	if s.linked {
		// Emitting into an already linked session would invalidate the
		// resolved offsets; a fresh Setup is required.
		s.fail(StatusPhase, start)
		return
	}

	sec := s.sec
	sec.reserve()
	b := sec.buf
	bias := sec.pos &^ posIndexMask
	i := posIdx(sec.pos)
	ofs := sec.ofs
	argi := 0

	// Batch header: the action-list offset, so later passes can replay.
	b[i] = int32(start)
	i++

	p := start
loop:
	for {
		ins := s.actions[p]
		p++
		act := ins >> 16

		if act >= ActMax {
			// Literal instruction word.
			ofs += 4
			continue
		}

		var l int64
		if act >= ActRelPC {
			if argi >= len(args) {
				s.fail(StatusPhase, p-1)
				return
			}
			l = args[argi]
			argi++
		}
		n := int32(l)

		switch act {
		case ActStop:
			break loop

		case ActSection:
			sn := int(ins & 255)
			if sn >= len(s.sections) {
				s.fail(StatusRangeSection, p-1)
				return
			}
			s.sec = &s.sections[sn]
			break loop

		case ActEsc:
			p++
			ofs += 4

		case ActRelExt:
			// Site is patched through the Extern hook in pass 3.

		case ActAlign:
			// Worst-case estimate; pass 2 shrinks it to the real padding.
			ofs += int32(ins & 255)
			b[i] = ofs
			i++

		case ActRelLG:
			v := int32(ins & 2047)
			if v >= numLocalLabels {
				// Backward local reference or global reference.
				slot := v - numLocalLabels
				if int(slot) >= len(s.lglabels) {
					s.fail(StatusRangeGlobal, p-1)
					return
				}
				if slot < numLocalLabels && s.lglabels[slot] >= 0 {
					// Backward reference to an undefined local.
					s.fail(StatusRangeGlobal, p-1)
					return
				}
				i = s.putRel(&s.lglabels[slot], b, bias, i)
			} else {
				// Forward local reference: always waits for the next
				// definition, even if the label is currently defined.
				head := s.lglabels[v]
				if head < 0 {
					head = 0
				}
				b[i] = head
				s.lglabels[v] = bias | i
				i++
			}

		case ActRelPC:
			if l < 0 || int(l) >= len(s.pclabels) {
				s.fail(StatusRangePC, p-1)
				return
			}
			i = s.putRel(&s.pclabels[n], b, bias, i)

		case ActLabelLG:
			slot := int32(ins&2047) - numLocalLabels
			if slot < 1 || int(slot) >= len(s.lglabels) {
				s.fail(StatusRangeGlobal, p-1)
				return
			}
			i = s.putLabel(&s.lglabels[slot], b, bias, i, ofs)

		case ActLabelPC:
			if l < 0 || int(l) >= len(s.pclabels) {
				s.fail(StatusRangePC, p-1)
				return
			}
			i = s.putLabel(&s.pclabels[n], b, bias, i, ofs)

		case ActImm:
			scale := ins >> 10 & 31
			bits := ins >> 5 & 31
			shift := ins & 31
			if n&(int32(1)<<scale-1) != 0 {
				s.fail(StatusRangeImm, p-1)
				return
			}
			if ins&0x8000 != 0 {
				if (n+int32(1)<<(bits-1))>>bits != 0 {
					s.fail(StatusRangeImm, p-1)
					return
				}
			} else if n>>bits != 0 {
				s.fail(StatusRangeImm, p-1)
				return
			}
			b[i] = (n >> scale & (int32(1)<<bits - 1)) << shift
			i++

		case ActImmAddrOff:
			scale := ins >> 10 & 31
			switch {
			case (n >= -256 && n < 0) || (n >= 0 && n <= 255 && n&(int32(1)<<scale-1) != 0):
				// Unscaled fallback form; pass 3 clears the scaled-form bit.
				b[i] = 1 | (n&0x1ff)<<12
			case n >= 0 && n&(int32(1)<<scale-1) == 0 && n>>scale <= 0xfff:
				b[i] = n >> scale << 10
			default:
				s.fail(StatusRangeImm, p-1)
				return
			}
			i++

		case ActImmNSR:
			if ins&0xffff > 1 {
				s.fail(StatusRangeImm, p-1)
				return
			}
			enc, ok := imm.Logical(uint64(l), ins&1 != 0)
			if !ok {
				s.fail(StatusRangeImm, p-1)
				return
			}
			b[i] = int32(enc)
			i++

		case ActImmLSB:
			max := immMax(ins)
			if n < 0 || n > max {
				s.fail(StatusRangeImm, p-1)
				return
			}
			b[i] = -n & max << 16
			i++

		case ActImmWidth1:
			// imms strictly below the immr fragment encoded just before.
			max := immMax(ins)
			if n-1 < 0 || n-1 >= b[i-1]>>16 {
				s.fail(StatusRangeImm, p-1)
				return
			}
			b[i] = (n - 1) & max << 10
			i++

		case ActImmWidth2:
			// imms at or above the preceding immr fragment.
			max := immMax(ins)
			immr := b[i-1] >> 16
			imms := immr + n - 1
			if imms < immr || imms > max {
				s.fail(StatusRangeImm, p-1)
				return
			}
			b[i] = imms & max << 10
			i++

		case ActImmShift:
			max := immMax(ins)
			if n < 0 || n > max {
				s.fail(StatusRangeImm, p-1)
				return
			}
			b[i] = -n&max<<16 | (max-n)&max<<10
			i++

		case ActImmMov:
			if ins&0xffff > 1 {
				s.fail(StatusRangeImm, p-1)
				return
			}
			enc, ok := imm.Move(uint64(l), ins&1 != 0)
			if !ok {
				s.fail(StatusRangeImm, p-1)
				return
			}
			b[i] = int32(enc)
			i++

		case ActImmTBN:
			ok := ins&1 != 0 && n >= 32 && n <= 63 ||
				ins&1 == 0 && n >= 0 && n <= 31
			if ins&0xffff > 1 || !ok {
				s.fail(StatusRangeImm, p-1)
				return
			}
			b[i] = n & 0x1f << 19
			i++

		case ActImmA2H:
			if n < 0 || n > 255 {
				s.fail(StatusRangeImm, p-1)
				return
			}
			b[i] = n>>5<<16 | n&0x1f<<5
			i++

		case ActImmA2H64:
			enc, ok := imm.ByteMask(uint64(l))
			if !ok {
				s.fail(StatusRangeImm, p-1)
				return
			}
			b[i] = int32(enc)
			i++

		case ActImmA2HFP:
			f8, ok := imm.Float8(uint64(l))
			if !ok {
				s.fail(StatusRangeImm, p-1)
				return
			}
			b[i] = int32(f8>>7<<18 | f8>>6&1<<17 | f8>>5&1<<16 | f8>>4&1<<9 | f8&0xf<<5)
			i++

		case ActImm8FP:
			f8, ok := imm.Float8(uint64(l))
			if !ok {
				s.fail(StatusRangeImm, p-1)
				return
			}
			b[i] = int32(f8>>7<<20 | f8>>6&1<<19 | f8>>4&3<<17 | f8&0xf<<13)
			i++

		case ActImmHLM:
			bits := ins & 0xffff
			if bits < 1 || bits > 3 || n < 0 || n >= int32(1)<<bits {
				s.fail(StatusRangeImm, p-1)
				return
			}
			switch bits {
			case 3:
				b[i] = n>>2&1<<11 | n&3<<20
			case 2:
				b[i] = n>>1&1<<11 | n&1<<21
			case 1:
				b[i] = n & 1 << 11
			}
			i++

		case ActImmQSS:
			bits := ins & 0xffff
			if bits < 1 || bits > 4 || n < 0 || n >= int32(1)<<bits {
				s.fail(StatusRangeImm, p-1)
				return
			}
			switch bits {
			case 4:
				b[i] = n>>3&1<<30 | n&7<<10
			case 3:
				b[i] = n>>2&1<<30 | n&3<<11
			case 2:
				b[i] = n>>1&1<<30 | n&1<<12
			case 1:
				b[i] = n & 1 << 30
			}
			i++

		case ActImmHB:
			bits := ins & 0xffff
			if bits < 3 || bits > 6 || n < 1 || n > int32(1)<<bits {
				s.fail(StatusRangeImm, p-1)
				return
			}
			max := int32(1) << bits
			b[i] = (max - n) & (max - 1) << 16
			i++

		case ActImmScale:
			if ins&0xffff > 1 {
				s.fail(StatusRangeImm, p-1)
				return
			}
			max := int32(32)
			if ins&1 != 0 {
				max = 64
			}
			if n < 1 || n > max {
				s.fail(StatusRangeImm, p-1)
				return
			}
			b[i] = (max - n) & (max - 1) << 10
			i++
		}
	}

	sec.pos = bias | i
	sec.ofs = ofs
}

// immMax decodes the common 32/64-bit operand width flag.
func immMax(ins uint32) int32 {
	if ins&1 != 0 {
		return 63
	}
	return 31
}

// putRel records one relocation site.  A defined label stores its position
// directly; an undefined one links the site into the forward-reference
// chain anchored at the label slot.
func (s *State) putRel(slot *int32, b []int32, bias, i int32) int32 {
	if v := *slot; v < 0 {
		b[i] = -v
	} else {
		b[i] = v
		*slot = bias | i
	}
	return i + 1
}

// putLabel defines a label at the current offset estimate: the pending
// forward-reference chain is collapsed, patching every waiting site with
// the label's position, and the slot flips to the defined (negative) form.
func (s *State) putLabel(slot *int32, b []int32, bias, i, ofs int32) int32 {
	for v := *slot; v > 0; {
		next := *s.slot(v)
		*s.slot(v) = bias | i
		v = next
	}
	*slot = -(bias | i)
	b[i] = ofs
	return i + 1
}
