// Copyright 2023 The go-sdw Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sdw

// DynamicSyncSequenceFrames is the number of frames in one full
// dynamic sync sequence: one seed frame plus 15 generated values.
const DynamicSyncSequenceFrames = 16

// dynamicSyncTable maps a dynamic sync value to the next value in the
// sequence. Entry 0 is never used because the generator would get
// stuck on it.
var dynamicSyncTable = [16]uint8{
	0, 2, 4, 6, 9, 11, 13, 15, 1, 3, 5, 7, 8, 10, 12, 14,
}

// DynamicSyncGenerator steps through the 15-cycle permutation of
// nonzero 4-bit dynamic sync values. Callers must seed it with
// SetValue before the first Next.
type DynamicSyncGenerator struct {
	value uint8
}

func (g *DynamicSyncGenerator) SetValue(v uint8) { g.value = v & 15 }

func (g *DynamicSyncGenerator) Value() uint8 { return g.value }

// Next advances the generator and returns the new value.
func (g *DynamicSyncGenerator) Next() uint8 {
	g.value = dynamicSyncTable[g.value]
	return g.value
}
