// Copyright 2023 The go-sdw Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bitstream

import (
	"fmt"
	"testing"
)

func TestHistoryRoundTrip(t *testing.T) {
	for _, level := range []BitState{BitLow, BitHigh} {
		for _, delta := range []uint64{
			0, 1, 2, 100, 250,
			historyDeltaMask,     // largest single entry
			historyDeltaMask + 1, // first chained delta
			1 << 20,
			1<<28 - 1,
			1 << 42,
			1<<56 - 1,
		} {
			t.Run(fmt.Sprintf("%v-%d", level, delta), func(t *testing.T) {
				dec := new(Decoder)
				dec.appendBitToHistory(level, delta)

				if got := dec.history[len(dec.history)-1]; got&historyDeltaOverflow != 0 {
					t.Fatalf("chain does not end on a terminal entry: 0x%04x", got)
				}
				for _, ent := range dec.history {
					high := ent&historyBitHighFlag != 0
					if high != (level == BitHigh) {
						t.Fatalf("level flag mismatch in entry 0x%04x", ent)
					}
				}

				dec.nextHistoryRead = 0
				gotLevel, gotDelta := dec.nextBitFromHistory()
				if gotLevel != level {
					t.Fatalf("invalid level: got=%v, want=%v", gotLevel, level)
				}
				if gotDelta != delta {
					t.Fatalf("invalid delta: got=%d, want=%d", gotDelta, delta)
				}
				if dec.nextHistoryRead != invalidHistoryIndex {
					t.Fatalf("read index not invalidated at end of history")
				}
			})
		}
	}
}

func TestHistoryChainSizes(t *testing.T) {
	for _, tc := range []struct {
		delta uint64
		n     int
	}{
		{0, 1},
		{historyDeltaMask, 1},
		{historyDeltaMask + 1, 2},
		{1<<28 - 1, 2},
		{1 << 28, 3},
		{1<<42 - 1, 3},
		{1 << 42, 4},
	} {
		t.Run(fmt.Sprintf("%d", tc.delta), func(t *testing.T) {
			dec := new(Decoder)
			dec.appendBitToHistory(BitHigh, tc.delta)
			if got, want := len(dec.history), tc.n; got != want {
				t.Fatalf("invalid chain length: got=%d, want=%d", got, want)
			}
		})
	}
}

func TestHistoryMixedChains(t *testing.T) {
	type bit struct {
		level BitState
		delta uint64
	}

	bits := []bit{
		{BitHigh, 2},
		{BitLow, 2},
		{BitHigh, 1 << 30}, // a clock gap
		{BitHigh, 2},
		{BitLow, historyDeltaMask + 1},
		{BitLow, 0},
	}

	dec := new(Decoder)
	for _, b := range bits {
		dec.appendBitToHistory(b.level, b.delta)
	}

	dec.nextHistoryRead = 0
	for i, b := range bits {
		level, delta := dec.nextBitFromHistory()
		if level != b.level || delta != b.delta {
			t.Fatalf("bit %d: got=(%v,%d), want=(%v,%d)", i, level, delta, b.level, b.delta)
		}
	}
	if dec.nextHistoryRead != invalidHistoryIndex {
		t.Fatalf("read index not invalidated after replaying everything")
	}
}
