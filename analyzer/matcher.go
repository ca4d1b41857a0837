// Copyright 2023 The go-sdw Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package analyzer

import "github.com/go-sdw/swan/sdw"

// The 8 static sync bits are in column 0. The maximum number of
// columns is 16 so a full static sync word cannot cover more than
// 8*16 = 128 bits. The matcher keeps a 128-bit sliding window as two
// 64-bit words; the mask marks the bits the sync pattern lands on for
// the configured column stride and the match holds the pattern spread
// over those bits.
type staticSyncMatcher struct {
	accHigh, accLow     uint64
	maskHigh, maskLow   uint64
	matchHigh, matchLow uint64
}

// reset clears the window and rebuilds mask and match for the given
// column count. For example with 4 columns the 8 sync bits occupy
// every 4th bit of the bitstream and only those bits are compared.
func (m *staticSyncMatcher) reset(columns int) {
	m.accHigh, m.accLow = 0, 0
	m.maskHigh, m.maskLow = 0, 0
	m.matchHigh, m.matchLow = 0, 0

	// The last transmitted sync bit lands at window bit 0, earlier
	// ones every stride below it.
	for i := 0; i < sdw.CtrlStaticSyncNumRows; i++ {
		pos := uint(i * columns)
		if pos < 64 {
			m.maskLow |= 1 << pos
			if sdw.StaticSyncVal>>uint(i)&1 != 0 {
				m.matchLow |= 1 << pos
			}
		} else {
			m.maskHigh |= 1 << (pos - 64)
			if sdw.StaticSyncVal>>uint(i)&1 != 0 {
				m.matchHigh |= 1 << (pos - 64)
			}
		}
	}
}

// pushBit shifts the window by one and reports whether the tail of the
// bitstream now matches the static sync pattern.
func (m *staticSyncMatcher) pushBit(isOne bool) bool {
	if m.maskHigh == 0 {
		// A 64-bit window is enough to find the match.
		m.accLow <<= 1
		if isOne {
			m.accLow |= 1
		}
		return m.accLow&m.maskLow == m.matchLow
	}

	m.accHigh = m.accHigh<<1 | m.accLow>>63
	m.accLow <<= 1
	if isOne {
		m.accLow |= 1
	}
	return m.accLow&m.maskLow == m.matchLow &&
		m.accHigh&m.maskHigh == m.matchHigh
}
