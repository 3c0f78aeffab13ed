// Copyright (c) 2024 The dynarm authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ins

import (
	"github.com/jitkit/dynarm"
)

// List accumulates an action stream, one terminated group of words per
// instruction template.  The zero value is an empty list.
type List struct {
	words []uint32
}

// Actions returns the accumulated stream, ready for State.Setup.
func (l *List) Actions() []uint32 { return l.words }

// Begin starts a new template and returns its start offset, the value
// later passed to State.Put.
func (l *List) Begin() int { return len(l.words) }

// Word appends a raw action word.
func (l *List) Word(w uint32) { l.words = append(l.words, w) }

// Ins appends a literal instruction word, escaping it when its high half
// would otherwise be read as an action.
func (l *List) Ins(w uint32) {
	if w>>16 < dynarm.ActMax {
		l.words = append(l.words, Esc())
	}
	l.words = append(l.words, w)
}

// Stop terminates the current template.
func (l *List) Stop() { l.Word(Stop()) }

// Switch terminates the current template and makes section n active.
func (l *List) Switch(n int) { l.Word(Section(n)) }
