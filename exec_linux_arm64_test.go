// Copyright (c) 2024 The dynarm authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux && arm64

package dynarm_test

import (
	"os"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/jitkit/dynarm"
	"github.com/jitkit/dynarm/ins"
)

// TestExecute assembles a function returning a constant and calls it.
func TestExecute(t *testing.T) {
	var al ins.List
	mov := al.Begin()
	al.Ins(1<<31 | ins.Rd(0))
	al.Word(ins.Mov(true))
	al.Stop()
	ret := al.Begin()
	al.Ins(ins.RET)
	al.Stop()

	s := dynarm.NewState(1)
	s.Setup(al.Actions())
	s.Put(mov, 42)
	s.Put(ret)

	buf := make([]byte, link(t, s))
	require.NoError(t, s.Encode(buf))

	code, err := unix.Mmap(-1, 0, os.Getpagesize(), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	require.NoError(t, err)
	defer unix.Munmap(code)

	copy(code, buf)
	require.NoError(t, unix.Mprotect(code, unix.PROT_READ|unix.PROT_EXEC))

	entry := unsafe.Pointer(&code[0])
	fn := *(*func() uint64)(unsafe.Pointer(&entry))
	require.Equal(t, uint64(42), fn())
}
