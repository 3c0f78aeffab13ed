// Copyright (c) 2024 The dynarm authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dynarm

// Label slots hold 0 (unused), a positive buffer position (head of the
// forward-reference chain waiting for the label), or a negated buffer
// position (label defined there).  Local labels occupy slots 1-9 of the
// local/global table; globals start at slot 10.
const numLocalLabels = 10

// State holds all per-assembly state: section buffers, label tables, the
// active action list and a sticky status code.  A State may be reused for
// independent emissions by calling Setup between them.
type State struct {
	actions  []uint32
	lglabels []int32 // Local (1-9) and global (10+) label slots.
	pclabels []int32 // PC label slots.
	globals  []int32 // Caller's table of global label offsets; see SetupGlobals.
	sections []section
	sec      *section // Active section.
	codesize int32    // Total size of all sections; valid after Link.
	linked   bool
	status   Status

	// Extern resolves external relocation displacements during Encode.
	// It receives the extern index from the action word, the byte offset of
	// the site's instruction word within the output, and whether the site is
	// PC-relative.  A nil hook patches a zero displacement.
	Extern func(idx int, siteOffset int32, pcRelative bool) int32
}

// NewState creates an encoder with a fixed number of sections.  The section
// count is bounded by the position encoding: the section index lives in the
// high byte of a biased position whose sign bit flags a defined label, so
// indexes above 127 would be misread as chain heads.
func NewState(maxSection int) *State {
	if maxSection < 1 || maxSection > 128 {
		panic("dynarm: section count out of range")
	}
	s := &State{
		lglabels: make([]int32, numLocalLabels),
		sections: make([]section, maxSection),
	}
	for i := range s.sections {
		s.sections[i].reset(i)
	}
	s.sec = &s.sections[0]
	return s
}

// Setup binds the action list and resets the State for a new assembly
// session.  Section buffers and label tables keep their capacity.
func (s *State) Setup(actions []uint32) {
	s.actions = actions
	s.status = StatusOK
	s.linked = false
	s.codesize = 0
	s.sec = &s.sections[0]
	for i := range s.lglabels {
		s.lglabels[i] = 0
	}
	for i := range s.pclabels {
		s.pclabels[i] = 0
	}
	for i := range s.sections {
		s.sections[i].reset(i)
	}
}

// SetupGlobals registers the table that Encode fills with the final byte
// offsets of defined global labels.  Global label g lands in table[g].
// Must be called before Setup.
func (s *State) SetupGlobals(table []int32) {
	s.globals = table
	if need := numLocalLabels + len(table); need > len(s.lglabels) {
		lg := make([]int32, need)
		copy(lg, s.lglabels)
		s.lglabels = lg
	}
}

// GrowPC ensures capacity for maxpc PC labels.  May be called after Setup.
func (s *State) GrowPC(maxpc int) {
	if maxpc <= len(s.pclabels) {
		return
	}
	pc := make([]int32, maxpc)
	copy(pc, s.pclabels)
	s.pclabels = pc
}

// Free releases buffer memory.  The State must not be used afterwards
// without a fresh Setup.
func (s *State) Free() {
	for i := range s.sections {
		s.sections[i].buf = nil
		s.sections[i].final = nil
	}
	s.pclabels = nil
	s.lglabels = make([]int32, numLocalLabels)
	s.actions = nil
}

// Status returns the sticky status code.  The first failure recorded by Put
// wins; subsequent Puts are no-ops until the next Setup.
func (s *State) Status() Status { return s.status }

// CheckStep verifies encoder consistency between logical emission steps:
// local labels referenced during the step must have been defined, and, if
// secmatch is non-negative, the active section must be the expected one.
// Local label slots are cleared afterwards; their scope is one step.
func (s *State) CheckStep(secmatch int) error {
	if s.status == StatusOK {
		for i := 1; i < numLocalLabels; i++ {
			if s.lglabels[i] > 0 {
				s.status = StatusUndefGlobal | Status(i)
				break
			}
			s.lglabels[i] = 0
		}
	}
	if s.status == StatusOK && secmatch >= 0 && s.sec != &s.sections[secmatch] {
		n := 0
		for i := range s.sections {
			if s.sec == &s.sections[i] {
				n = i
				break
			}
		}
		s.status = StatusMatchSection | Status(n)
	}
	return s.status.Err()
}

// PCLabel returns the byte offset of a PC label: exact after Link, the
// pass-1 estimate before it.  Returns -1 if the label is referenced but
// undefined, -2 if it is unused or out of range.
func (s *State) PCLabel(pc int) int32 {
	if pc >= 0 && pc < len(s.pclabels) {
		p := s.pclabels[pc]
		if p < 0 {
			sec := &s.sections[posSec(-p)]
			if s.linked {
				return sec.final[posIdx(-p)]
			}
			return sec.buf[posIdx(-p)]
		}
		if p > 0 {
			return -1
		}
	}
	return -2
}

// slot returns the buffer word at a biased position.  Chains cross section
// boundaries, so this must go through the owning section.
func (s *State) slot(p int32) *int32 {
	return &s.sections[posSec(p)].buf[posIdx(p)]
}

// fail records the first failure with the offending action-list offset.
func (s *State) fail(kind Status, actionOffset int) {
	if s.status == StatusOK {
		s.status = kind | Status(actionOffset)
	}
}
