// Copyright 2023 The go-sdw Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sdw

// Frame flag bits.
const (
	FlagParityBad     = 1 << 0 // captured parity disagrees with PAR
	FlagSyncLoss      = 1 << 1 // static or dynamic sync check failed
	FlagDuplicatePing = 1 << 2 // PING repeating the previous PING status
)

// Frame is one decoded SoundWire frame.
type Frame struct {
	Start uint64 // sample number of the first bit (inclusive)
	End   uint64 // sample number of the last bit (inclusive)
	Ctrl  uint64 // 48-bit control word, row 0 in bit 47
	Flags uint8
}

// ControlWord returns the frame's control word for field access.
func (f Frame) ControlWord() ControlWord {
	return ControlWordFromValue(f.Ctrl)
}
