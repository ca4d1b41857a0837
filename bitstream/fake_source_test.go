// Copyright 2023 The go-sdw Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bitstream

// fakeChannel is an in-memory SampleSource over a list of transition
// sample numbers, in the manner of a recorded capture channel.
type fakeChannel struct {
	trans  []uint64
	idx    int
	sample uint64
	state  BitState
}

func newFakeChannel(initial BitState, trans []uint64) *fakeChannel {
	return &fakeChannel{trans: trans, state: initial}
}

func (ch *fakeChannel) AdvanceToNextEdge() {
	if ch.idx >= len(ch.trans) {
		// Out of recorded data; hold position.
		return
	}
	ch.sample = ch.trans[ch.idx]
	ch.idx++
	ch.state = ch.state.Invert()
}

func (ch *fakeChannel) SampleNumber() uint64 { return ch.sample }

func (ch *fakeChannel) AdvanceToAbsPosition(sample uint64) {
	for ch.idx < len(ch.trans) && ch.trans[ch.idx] <= sample {
		ch.idx++
		ch.state = ch.state.Invert()
	}
	ch.sample = sample
}

func (ch *fakeChannel) BitState() BitState { return ch.state }

var _ SampleSource = (*fakeChannel)(nil)

// clockEvery returns n clock transitions spaced delta samples apart,
// starting at start.
func clockEvery(start, delta uint64, n int) []uint64 {
	trans := make([]uint64, n)
	for i := range trans {
		trans[i] = start + uint64(i)*delta
	}
	return trans
}
