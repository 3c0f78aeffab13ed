// Copyright (c) 2024 The dynarm authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ins composes action streams for the dynarm encoding engine.  A
// template generator would normally emit these streams at build time; this
// package provides the same vocabulary as typed constructors, plus the base
// instruction encodings the repository's templates are built from.
package ins

import (
	"github.com/jitkit/dynarm"
)

// Local labels are numbered 1-9 and scoped to one emission step; global
// labels are numbered from 0 and live for the whole session.
const (
	localBias  = 10
	globalBias = 20
)

func Stop() uint32         { return dynarm.ActStop << 16 }
func Section(n int) uint32 { return dynarm.ActSection<<16 | uint32(n)&255 }
func Esc() uint32          { return dynarm.ActEsc << 16 }

// Align pads the stream to an n-byte boundary; n must be a power of two.
func Align(n int) uint32 { return dynarm.ActAlign<<16 | uint32(n-1)&255 }

// RelLocalFwd references the next definition of local label l; RelLocalBack
// references the previous one, which must already exist.  mode selects the
// relocation addressing mode of the site.
func RelLocalFwd(l int, mode uint32) uint32 {
	return dynarm.ActRelLG<<16 | mode | uint32(l)
}

func RelLocalBack(l int, mode uint32) uint32 {
	return dynarm.ActRelLG<<16 | mode | uint32(l+localBias)
}

func RelGlobal(g int, mode uint32) uint32 {
	return dynarm.ActRelLG<<16 | mode | uint32(g+globalBias)
}

// RelExt references a symbol outside the assembly, resolved through the
// State's Extern hook during the final pass.
func RelExt(idx int, mode uint32, pcRelative bool) uint32 {
	w := dynarm.ActRelExt<<16 | mode | uint32(idx)&0x7ff
	if !pcRelative {
		w |= 0x800
	}
	return w
}

// RelPC references a PC label; the label index is a runtime argument.
func RelPC(mode uint32) uint32 { return dynarm.ActRelPC<<16 | mode }

func LabelLocal(l int) uint32  { return dynarm.ActLabelLG<<16 | uint32(l+localBias) }
func LabelGlobal(g int) uint32 { return dynarm.ActLabelLG<<16 | uint32(g+globalBias) }
func LabelPC() uint32          { return dynarm.ActLabelPC << 16 }

// Imm patches a plain immediate field: the argument is shifted right by
// scale, must fit in the given number of bits (signed or unsigned), and is
// placed at the given bit offset of the instruction word.
func Imm(shift, bits, scale uint32, signed bool) uint32 {
	w := dynarm.ActImm<<16 | shift | bits<<5 | scale<<10
	if signed {
		w |= 0x8000
	}
	return w
}

// AddrOff patches a load/store offset scaled by 1<<scale bytes, falling
// back to the unscaled-offset form for small negative or unaligned values.
func AddrOff(scale uint32) uint32 { return dynarm.ActImmAddrOff<<16 | scale<<10 }

func sf(is64 bool) uint32 {
	if is64 {
		return 1
	}
	return 0
}

func NSR(is64 bool) uint32    { return dynarm.ActImmNSR<<16 | sf(is64) }
func LSB(is64 bool) uint32    { return dynarm.ActImmLSB<<16 | sf(is64) }
func Width1(is64 bool) uint32 { return dynarm.ActImmWidth1<<16 | sf(is64) }
func Width2(is64 bool) uint32 { return dynarm.ActImmWidth2<<16 | sf(is64) }
func Shift(is64 bool) uint32  { return dynarm.ActImmShift<<16 | sf(is64) }
func Mov(is64 bool) uint32    { return dynarm.ActImmMov<<16 | sf(is64) }
func TBN(is64 bool) uint32    { return dynarm.ActImmTBN<<16 | sf(is64) }
func Scale(is64 bool) uint32  { return dynarm.ActImmScale<<16 | sf(is64) }

func A2H() uint32   { return dynarm.ActImmA2H << 16 }
func A2H64() uint32 { return dynarm.ActImmA2H64 << 16 }
func A2HFP() uint32 { return dynarm.ActImmA2HFP << 16 }
func FP8() uint32   { return dynarm.ActImm8FP << 16 }

func HLM(bits int) uint32 { return dynarm.ActImmHLM<<16 | uint32(bits) }
func QSS(bits int) uint32 { return dynarm.ActImmQSS<<16 | uint32(bits) }
func HB(bits int) uint32  { return dynarm.ActImmHB<<16 | uint32(bits) }
