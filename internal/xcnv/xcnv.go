// Copyright 2023 The go-sdw Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package xcnv provides tools to convert decoded SoundWire frame
// streams to/from LCIO files.
package xcnv // import "github.com/go-sdw/swan/internal/xcnv"

import (
	"github.com/go-sdw/swan/sdw"
)

// Collection name the frames are stored under in LCIO events.
const collection = "SWFrames"

const frameI32s = 7

func i32sFrom(f sdw.Frame) []int32 {
	return []int32{
		int32(f.Start >> 32), int32(f.Start),
		int32(f.End >> 32), int32(f.End),
		int32(f.Ctrl >> 32), int32(f.Ctrl),
		int32(f.Flags),
	}
}

func frameFrom(raw []int32) sdw.Frame {
	_ = raw[frameI32s-1]
	return sdw.Frame{
		Start: uint64(uint32(raw[0]))<<32 | uint64(uint32(raw[1])),
		End:   uint64(uint32(raw[2]))<<32 | uint64(uint32(raw[3])),
		Ctrl:  uint64(uint32(raw[4]))<<32 | uint64(uint32(raw[5])),
		Flags: uint8(raw[6]),
	}
}
