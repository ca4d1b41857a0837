// Copyright 2023 The go-sdw Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bitstream

import (
	"math"

	"github.com/go-sdw/swan/sdw"
)

// invalidHistoryIndex marks that the next bit comes from the live
// source, not from history.
const invalidHistoryIndex = math.MaxInt

// Decoder reconstructs NRZI-decoded bits from a clock and a data
// channel. It keeps a running parity over data line levels, watches
// for bus-reset toggle runs, and can rewind to a previously taken
// Mark by replaying its history buffer. It is not safe for concurrent
// use; a single consumer drives it.
type Decoder struct {
	clock SampleSource
	data  SampleSource

	// OnBusReset, when non-nil, is called with the first and last
	// sample of every run of 4096 decoded ones.
	OnBusReset func(start, end uint64)

	sample          uint64
	onesStartSample uint64
	onesCount       uint32
	parityIsOdd     bool
	lastLevel       BitState
	nextHistoryRead int
	collectHistory  bool

	history []uint16
}

// Mark is a snapshot of the decoder position and state. Restoring a
// mark replays bits from the decoder's history buffer; a mark is
// invalidated when the history is cleared.
type Mark struct {
	lastLevel       BitState
	parityIsOdd     bool
	sample          uint64
	nextHistoryRead int
}

// NewDecoder returns a decoder reading from the given clock and data
// channels.
func NewDecoder(clock, data SampleSource) *Decoder {
	return &Decoder{
		clock:           clock,
		data:            data,
		lastLevel:       data.BitState(),
		nextHistoryRead: invalidHistoryIndex,

		// A typical initial sequence is 4096 bits of bus reset then
		// 16 frames of sync sequence. Reserve space so appends do
		// not reallocate.
		history: make([]uint16, 0,
			sdw.BusResetOnesCount+sdw.MaxRows*sdw.MaxColumns*sdw.DynamicSyncSequenceFrames),
	}
}

func (dec *Decoder) invalidateHistoryRead() {
	dec.nextHistoryRead = invalidHistoryIndex
}

// NextBit advances the decoder by one clock edge and returns the
// decoded bit: NRZI signals a 1 by a change of level, a 0 by no
// change.
func (dec *Decoder) NextBit() bool {
	var level BitState

	// Sync search needs to go back to past data but the sample
	// sources only go forward. If the decoder has been rewound to a
	// mark, fetch bits from the history buffer until it runs out.
	if dec.nextHistoryRead < len(dec.history) {
		var delta uint64
		level, delta = dec.nextBitFromHistory()
		dec.sample += delta
	} else {
		dec.clock.AdvanceToNextEdge()
		sample := dec.clock.SampleNumber()
		dec.data.AdvanceToAbsPosition(sample)
		level = dec.data.BitState()

		if dec.collectHistory {
			dec.appendBitToHistory(level, sample-dec.sample)
		}

		dec.sample = sample

		// A run of 4096 data line toggles is a bus reset.
		if level != dec.lastLevel {
			switch dec.onesCount {
			case 0:
				dec.onesStartSample = dec.sample
				dec.onesCount++
			case sdw.BusResetOnesCount - 1:
				// Seen 4095 already so this is the 4096th and final.
				if dec.OnBusReset != nil {
					dec.OnBusReset(dec.onesStartSample, dec.sample)
				}
				dec.onesCount = 0
			default:
				dec.onesCount++
			}
		} else {
			dec.onesCount = 0
		}
	}

	decoded := level != dec.lastLevel
	dec.lastLevel = level

	// Parity counts the number of high levels, not the number of
	// decoded ones: NRZI decoding loses the polarity of the final
	// bit otherwise.
	if level == BitHigh {
		dec.parityIsOdd = !dec.parityIsOdd
	}

	return decoded
}

// SkipBits discards n bits.
func (dec *Decoder) SkipBits(n uint64) {
	for ; n > 0; n-- {
		dec.NextBit()
	}
}

// SampleNumber returns the sample number of the most recent clock
// edge.
func (dec *Decoder) SampleNumber() uint64 { return dec.sample }

// ParityIsOdd reports the running parity accumulator.
func (dec *Decoder) ParityIsOdd() bool { return dec.parityIsOdd }

// ResetParity zeroes the parity accumulator.
func (dec *Decoder) ResetParity() { dec.parityIsOdd = false }

// ContiguousOnesCount returns the length of the current decoded-ones
// run.
func (dec *Decoder) ContiguousOnesCount() uint32 { return dec.onesCount }

// CollectHistory enables or disables history capture. Enabling
// discards any history before the current position. Disabling keeps
// the captured history, so marks into it stay valid.
func (dec *Decoder) CollectHistory(enable bool) {
	if enable {
		dec.DiscardHistoryBeforeCurrentPosition()
	}
	dec.collectHistory = enable
}

// DiscardHistoryBeforeCurrentPosition drops history that has already
// been consumed. Discarding the front of the buffer would be expensive
// and would invalidate outstanding marks unpredictably, so the buffer
// is only cleared when it is entirely obsolete; clearing invalidates
// all marks.
func (dec *Decoder) DiscardHistoryBeforeCurrentPosition() {
	if len(dec.history) == 0 {
		return
	}

	if dec.nextHistoryRead >= len(dec.history) {
		dec.history = dec.history[:0]
		dec.invalidateHistoryRead()
	}
}

// Mark snapshots the current position and state.
func (dec *Decoder) Mark() Mark {
	nextHistoryRead := dec.nextHistoryRead

	// Unless the decoder has been rewound, the next bit comes from
	// the live stream. Clamp the saved index to the end of history so
	// that after a restore it either points at a bit that has been
	// captured since, or still points beyond the end.
	if nextHistoryRead >= len(dec.history) {
		nextHistoryRead = len(dec.history)
	}

	return Mark{
		lastLevel:       dec.lastLevel,
		parityIsOdd:     dec.parityIsOdd,
		sample:          dec.sample,
		nextHistoryRead: nextHistoryRead,
	}
}

// SetToMark rewinds the decoder to a previously taken mark.
func (dec *Decoder) SetToMark(m Mark) {
	dec.lastLevel = m.lastLevel
	dec.parityIsOdd = m.parityIsOdd
	dec.sample = m.sample
	dec.nextHistoryRead = m.nextHistoryRead

	// If the mark was taken at the live tail and no bits have been
	// captured since, it still (correctly) points beyond history.
	// Invalidate it so that appending does not bring the index into
	// range.
	if dec.nextHistoryRead >= len(dec.history) {
		dec.invalidateHistoryRead()
	}
}
