// Copyright 2023 The go-sdw Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package capture

import (
	"math"

	"github.com/go-sdw/swan/bitstream"
)

// ChannelData exposes a digital channel as a bitstream.SampleSource.
// Transition instants are quantised to integer sample numbers at the
// given sample rate, with sample 0 at the capture begin instant.
type ChannelData struct {
	trans  []uint64
	idx    int
	sample uint64
	state  bitstream.BitState

	// Exhausted, when non-nil, is called once when the channel runs
	// out of transitions. Afterwards the cursor holds its last
	// position and level; callers typically cancel the decode.
	Exhausted func()
}

// NewChannelData wraps ch, sampled at rate samples per second.
func NewChannelData(ch *DigitalChannel, rate float64) *ChannelData {
	cd := &ChannelData{
		trans: make([]uint64, len(ch.Transitions)),
		state: ch.InitialState,
	}
	for i, t := range ch.Transitions {
		cd.trans[i] = uint64(math.Round((t - ch.Begin) * rate))
	}
	return cd
}

// AdvanceToNextEdge positions the cursor on the next transition.
func (cd *ChannelData) AdvanceToNextEdge() {
	if cd.idx >= len(cd.trans) {
		if cd.Exhausted != nil {
			cd.Exhausted()
			cd.Exhausted = nil
		}
		return
	}

	cd.sample = cd.trans[cd.idx]
	cd.idx++
	cd.state = cd.state.Invert()
}

// SampleNumber returns the current cursor position.
func (cd *ChannelData) SampleNumber() uint64 { return cd.sample }

// AdvanceToAbsPosition moves the cursor to the given sample number,
// tracking the channel level across any transitions passed over.
func (cd *ChannelData) AdvanceToAbsPosition(sample uint64) {
	for cd.idx < len(cd.trans) && cd.trans[cd.idx] <= sample {
		cd.idx++
		cd.state = cd.state.Invert()
	}
	cd.sample = sample
}

// BitState returns the channel level at the current cursor.
func (cd *ChannelData) BitState() bitstream.BitState { return cd.state }

var _ bitstream.SampleSource = (*ChannelData)(nil)
