// Copyright (c) 2024 The dynarm authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dynarm

// Link runs pass 2 after all code for the session has been emitted: it
// verifies that every referenced label has been defined, replaces the
// worst-case alignment estimates with the real padding, and assigns every
// section and label its final byte offset in the combined output.  It
// returns the total code size the destination buffer must have.
//
// Link does not modify the section streams; resolved label offsets live in
// a side table.  Calling it again on an unmodified State recomputes the
// same result.
func (s *State) Link() (int, error) {
	if s.status != StatusOK {
		return 0, s.status.Err()
	}

	// A surviving chain means the label was referenced but never defined.
	// Globals may alternatively be external, but externs use their own
	// action kind and never touch these slots.
	for pc, v := range s.pclabels {
		if v > 0 {
			return 0, (StatusUndefPC | Status(pc)).Err()
		}
	}
	for idx := 1; idx < len(s.lglabels); idx++ {
		if s.lglabels[idx] > 0 {
			return 0, (StatusUndefGlobal | Status(idx)).Err()
		}
	}

	// Sections are laid out back to back in declared order.  ofs carries
	// the absolute adjustment for label estimates: the final sizes of all
	// preceding sections minus the alignment shrink seen so far.
	ofs := int32(0)
	for si := range s.sections {
		sec := &s.sections[si]
		if len(sec.final) < len(sec.buf) {
			sec.final = make([]int32, len(sec.buf))
		}
		b := sec.buf
		adj := ofs
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
					continue
				}
				switch act {
				case ActStop, ActSection:
					break walk
				case ActEsc:
					p++
				case ActRelExt:
				case ActAlign:
					// Pass 1 assumed full padding; subtract the overshoot
					// now that the absolute offset is known.
					adj -= (b[pos] + adj) & int32(ins&255)
					pos++
				case ActRelLG, ActRelPC:
					pos++
				case ActLabelLG, ActLabelPC:
					sec.final[pos] = b[pos] + adj
					pos++
				default:
					// Immediate fragment.
					pos++
				}
			}
		}
		ofs = adj + sec.ofs
	}

	s.codesize = ofs
	s.linked = true
	return int(ofs), nil
}
