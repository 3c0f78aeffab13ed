// Copyright (c) 2024 The dynarm authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ins

// Base encodings of the instructions the templates in this repository use.
// Operand fields are OR'ed in by the helpers below or patched at run time
// through the engine's immediate and relocation actions.
const (
	NOP = 0xd503201f
	RET = 0xd65f03c0
	BRK = 0xd4200000

	// Branches
	B     = 0x14000000
	BL    = 0x94000000
	Bcond = 0x54000000
	CBZw  = 0x34000000
	CBZx  = 0xb4000000
	CBNZw = 0x35000000
	CBNZx = 0xb5000000
	TBZ   = 0x36000000
	TBNZ  = 0x37000000

	// Address generation
	ADR  = 0x10000000
	ADRP = 0x90000000

	// Move wide (immediate); the engine's move action supplies the whole
	// opcode, so templates using it emit only sf and the register.
	MOVZw = 0x52800000
	MOVZx = 0xd2800000
	MOVNw = 0x12800000
	MOVNx = 0x92800000
	MOVKw = 0x72800000
	MOVKx = 0xf2800000

	// Logical (immediate)
	ANDiw = 0x12000000
	ANDix = 0x92000000
	ORRiw = 0x32000000
	ORRix = 0xb2000000
	EORiw = 0x52000000
	EORix = 0xd2000000

	// Add/subtract (immediate)
	ADDiw  = 0x11000000
	ADDix  = 0x91000000
	SUBiw  = 0x51000000
	SUBix  = 0xd1000000
	SUBSix = 0xf1000000

	// Bitfield
	UBFMw = 0x53000000
	UBFMx = 0xd3400000

	// Load/store register (unsigned immediate)
	LDRx = 0xf9400000
	STRx = 0xf9000000
	LDRw = 0xb9400000
	STRw = 0xb9000000

	// Floating-point move (scalar immediate)
	FMOVs = 0x1e201000
	FMOVd = 0x1e601000
)

// Condition codes for Bcond.
const (
	EQ = iota
	NE
	HS
	LO
	MI
	PL
	VS
	VC
	HI
	LS
	GE
	LT
	GT
	LE
	AL
)

func Rd(r uint32) uint32   { return r }
func Rt(r uint32) uint32   { return r }
func Rn(r uint32) uint32   { return r << 5 }
func Rm(r uint32) uint32   { return r << 16 }
func Cond(c uint32) uint32 { return c }
