// Copyright 2023 The go-sdw Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bitstream reconstructs the SoundWire bitstream from the raw
// clock and data channels of a capture.
package bitstream // import "github.com/go-sdw/swan/bitstream"

// BitState is the level of a logic channel at a given sample.
type BitState uint8

const (
	BitLow BitState = iota
	BitHigh
)

func (st BitState) String() string {
	if st == BitHigh {
		return "high"
	}
	return "low"
}

// Invert returns the opposite level.
func (st BitState) Invert() BitState {
	if st == BitHigh {
		return BitLow
	}
	return BitHigh
}

// SampleSource walks one logic channel of a capture. Sample numbers
// are monotonically increasing; a source only moves forward.
type SampleSource interface {
	// AdvanceToNextEdge positions the cursor on the next transition
	// of the channel.
	AdvanceToNextEdge()

	// SampleNumber returns the current cursor position in sample
	// units.
	SampleNumber() uint64

	// AdvanceToAbsPosition repositions the cursor to the given
	// sample number, which must not be before the current one.
	AdvanceToAbsPosition(sample uint64)

	// BitState returns the channel level at the current cursor.
	BitState() BitState
}
