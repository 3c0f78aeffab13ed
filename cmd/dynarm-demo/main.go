// Copyright (c) 2024 The dynarm authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// dynarm-demo assembles a small function around a runtime constant and
// prints the machine code it produced.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/arch/arm64/arm64asm"

	"github.com/jitkit/dynarm"
	"github.com/jitkit/dynarm/ins"
)

func main() {
	log.SetFlags(0)

	value := flag.Int64("value", 42, "constant loaded by the assembled function")
	flag.Parse()
	if flag.NArg() != 0 {
		flag.Usage()
		os.Exit(2)
	}

	code, err := assemble(*value)
	if err != nil {
		log.Fatal(err)
	}

	for off := 0; off < len(code); off += 4 {
		text := "?"
		if inst, err := arm64asm.Decode(code[off:]); err == nil {
			text = inst.String()
		}
		fmt.Printf("%4x:\t%02x %02x %02x %02x\t%s\n",
			off, code[off], code[off+1], code[off+2], code[off+3], text)
	}
}

// assemble emits a function that loads value, branches over a trap and
// returns value+1.
func assemble(value int64) ([]byte, error) {
	var al ins.List

	mov := al.Begin()
	al.Ins(1<<31 | ins.Rd(0))
	al.Word(ins.Mov(true))
	al.Stop()

	skip := al.Begin()
	al.Ins(ins.B)
	al.Word(ins.RelLocalFwd(1, dynarm.RelModeWord26))
	al.Stop()

	trap := al.Begin()
	al.Ins(ins.BRK)
	al.Stop()

	def := al.Begin()
	al.Word(ins.LabelLocal(1))
	al.Stop()

	inc := al.Begin()
	al.Ins(ins.ADDix | ins.Rd(0) | ins.Rn(0))
	al.Word(ins.Imm(10, 12, 0, false))
	al.Stop()

	ret := al.Begin()
	al.Ins(ins.RET)
	al.Stop()

	s := dynarm.NewState(1)
	s.Setup(al.Actions())
	s.Put(mov, value)
	s.Put(skip)
	s.Put(trap)
	s.Put(def)
	s.Put(inc, 1)
	s.Put(ret)
	if err := s.CheckStep(-1); err != nil {
		return nil, errors.Wrap(err, "emit")
	}

	size, err := s.Link()
	if err != nil {
		return nil, errors.Wrap(err, "link")
	}
	code := make([]byte, size)
	if err := s.Encode(code); err != nil {
		return nil, errors.Wrap(err, "encode")
	}
	return code, nil
}
