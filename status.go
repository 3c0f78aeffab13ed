// Copyright (c) 2024 The dynarm authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dynarm

import (
	"fmt"
)

// Status is an encoder status code.  The high byte selects the failure kind;
// the low 24 bits carry the offending action-list offset or label index, so
// a failure can be mapped back to the directive that caused it.
type Status uint32

const (
	StatusOK           Status = 0x00000000
	StatusNoMem        Status = 0x01000000
	StatusPhase        Status = 0x02000000
	StatusMatchSection Status = 0x03000000
	StatusRangeImm     Status = 0x11000000
	StatusRangeSection Status = 0x12000000
	StatusRangeGlobal  Status = 0x13000000
	StatusRangePC      Status = 0x14000000
	StatusRangeRel     Status = 0x15000000
	StatusUndefGlobal  Status = 0x21000000
	StatusUndefPC      Status = 0x22000000
)

// Kind strips the payload, leaving only the failure kind.
func (s Status) Kind() Status { return s & 0xff000000 }

// Payload returns the action-list offset or label index embedded in s.
func (s Status) Payload() int { return int(s & 0x00ffffff) }

// Err returns nil for StatusOK and an error describing s otherwise.
func (s Status) Err() error {
	if s == StatusOK {
		return nil
	}
	return codeError(s)
}

func (s Status) String() string {
	switch s.Kind() {
	case StatusOK:
		return "ok"
	case StatusNoMem:
		return "out of memory"
	case StatusPhase:
		return fmt.Sprintf("phase error at action %d", s.Payload())
	case StatusMatchSection:
		return fmt.Sprintf("unexpected active section %d", s.Payload())
	case StatusRangeImm:
		return fmt.Sprintf("immediate out of range at action %d", s.Payload())
	case StatusRangeSection:
		return fmt.Sprintf("section index out of range at action %d", s.Payload())
	case StatusRangeGlobal:
		return fmt.Sprintf("local/global label out of range at action %d", s.Payload())
	case StatusRangePC:
		return fmt.Sprintf("pc label out of range at action %d", s.Payload())
	case StatusRangeRel:
		return fmt.Sprintf("relocation displacement out of range at action %d", s.Payload())
	case StatusUndefGlobal:
		return fmt.Sprintf("undefined local/global label %d", s.Payload())
	case StatusUndefPC:
		return fmt.Sprintf("undefined pc label %d", s.Payload())
	default:
		return fmt.Sprintf("status %#08x", uint32(s))
	}
}

// codeError wraps a nonzero Status as an error.
type codeError Status

func (e codeError) Error() string     { return "dynarm: " + Status(e).String() }
func (e codeError) Status() Status    { return Status(e) }
func (e codeError) CodeError() string { return Status(e).String() }
