// Copyright 2023 The go-sdw Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package analyzer

import (
	"github.com/go-sdw/swan/bitstream"
	"github.com/go-sdw/swan/sdw"
)

// fakeChannel is an in-memory SampleSource over a list of transition
// sample numbers.
type fakeChannel struct {
	trans  []uint64
	idx    int
	sample uint64
	state  bitstream.BitState
}

func newFakeChannel(initial bitstream.BitState, trans []uint64) *fakeChannel {
	return &fakeChannel{trans: trans, state: initial}
}

func (ch *fakeChannel) AdvanceToNextEdge() {
	if ch.idx >= len(ch.trans) {
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

func (ch *fakeChannel) BitState() bitstream.BitState { return ch.state }

var _ bitstream.SampleSource = (*fakeChannel)(nil)

// frameGen synthesizes the clock and data channels of a capture
// carrying SoundWire frames: one clock edge per bit, NRZI-encoded
// data, and control words whose PAR bit is computed from the actual
// level stream the way a peripheral would.
type frameGen struct {
	level  bitstream.BitState
	parity bool // odd count of high levels since the last parity capture

	clock []uint64
	data  []uint64

	sample uint64
}

func newFrameGen() *frameGen {
	return &frameGen{level: bitstream.BitLow, sample: 1}
}

func (g *frameGen) channels() (clock, data *fakeChannel) {
	return newFakeChannel(bitstream.BitLow, g.clock),
		newFakeChannel(bitstream.BitLow, g.data)
}

func (g *frameGen) emitBit(b bool) {
	g.clock = append(g.clock, g.sample)
	if b {
		g.level = g.level.Invert()
		g.data = append(g.data, g.sample)
	}
	if g.level == bitstream.BitHigh {
		g.parity = !g.parity
	}
	g.sample++
}

// emitIdle emits n decoded zeros.
func (g *frameGen) emitIdle(n int) {
	for i := 0; i < n; i++ {
		g.emitBit(false)
	}
}

// emitFrame emits one rows×columns frame carrying ctrl in column 0,
// with the PAR row replaced by the parity actually accumulated on the
// wire. It returns the control word as transmitted.
func (g *frameGen) emitFrame(ctrl uint64, rows, columns int) uint64 {
	const parBit = uint64(1) << (sdw.CtrlWordLastRow - sdw.CtrlPARRow)

	var parity bool
	for row := 0; row < rows; row++ {
		for col := 0; col < columns; col++ {
			var bit bool
			if col == 0 && row <= sdw.CtrlWordLastRow {
				if row == sdw.CtrlPARRow {
					bit = parity
				} else {
					bit = ctrl>>uint(sdw.CtrlWordLastRow-row)&1 != 0
				}
			}

			g.emitBit(bit)

			if col == 0 && row == sdw.CtrlPARRow-1 {
				parity = g.parity
				g.parity = false
			}
		}
	}

	ctrl &^= parBit
	if parity {
		ctrl |= parBit
	}
	return ctrl
}

// emitFrameBadParity emits a frame whose PAR row is inverted on the
// wire.
func (g *frameGen) emitFrameBadParity(ctrl uint64, rows, columns int) uint64 {
	const parBit = uint64(1) << (sdw.CtrlWordLastRow - sdw.CtrlPARRow)

	var parity bool
	for row := 0; row < rows; row++ {
		for col := 0; col < columns; col++ {
			var bit bool
			if col == 0 && row <= sdw.CtrlWordLastRow {
				if row == sdw.CtrlPARRow {
					bit = !parity
				} else {
					bit = ctrl>>uint(sdw.CtrlWordLastRow-row)&1 != 0
				}
			}

			g.emitBit(bit)

			if col == 0 && row == sdw.CtrlPARRow-1 {
				parity = g.parity
				g.parity = false
			}
		}
	}

	ctrl &^= parBit
	if !parity {
		ctrl |= parBit
	}
	return ctrl
}

// ctrlSpec holds the fields of a control word template; word builds
// the 48-bit value.
type ctrlSpec struct {
	op      sdw.OpCode
	dynSync uint8
	preq    bool
	ssp     bool
	stat    uint32 // 24-bit peripheral status (PING)
	regAddr uint16 // register address (READ/WRITE)
	regData uint8  // register data (WRITE)
	ack     bool
	nak     bool
	badSync bool // corrupt the static sync value
}

func (cs ctrlSpec) word() uint64 {
	bits := make([]bool, sdw.CtrlWordLastRow+1)
	place := func(firstRow, numRows int, v uint64) {
		for i := 0; i < numRows; i++ {
			bits[firstRow+i] = v>>uint(numRows-1-i)&1 != 0
		}
	}

	place(0, 1, b2u(cs.preq))
	place(1, 3, uint64(cs.op))
	sync := uint64(sdw.StaticSyncVal)
	if cs.badSync {
		sync ^= 0x10
	}
	place(sdw.CtrlStaticSyncRow, sdw.CtrlStaticSyncNumRows, sync)
	place(41, 4, uint64(cs.dynSync))
	place(46, 1, b2u(cs.nak))
	place(47, 1, b2u(cs.ack))

	switch cs.op {
	case sdw.OpPing:
		place(5, 1, b2u(cs.ssp))
		place(8, 16, uint64(cs.stat>>8))
		place(33, 8, uint64(cs.stat&0xff))
	case sdw.OpRead, sdw.OpWrite:
		place(8, 16, uint64(cs.regAddr))
		place(33, 8, uint64(cs.regData))
	}

	var value uint64
	for i, b := range bits {
		if b {
			value |= 1 << uint(sdw.CtrlWordLastRow-i)
		}
	}
	return value
}

func b2u(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// emitSequence emits n frames with a valid dynamic sync sequence
// seeded at seed, all PING words, and returns the transmitted control
// words.
func (g *frameGen) emitSequence(seed uint8, n, rows, columns int) []uint64 {
	var gen sdw.DynamicSyncGenerator
	gen.SetValue(seed)

	words := make([]uint64, 0, n)
	value := seed
	for i := 0; i < n; i++ {
		w := g.emitFrame(ctrlSpec{op: sdw.OpPing, dynSync: value}.word(), rows, columns)
		words = append(words, w)
		value = gen.Next()
	}
	return words
}
