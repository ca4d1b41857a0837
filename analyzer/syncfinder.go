// Copyright 2023 The go-sdw Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package analyzer

import (
	"context"

	"golang.org/x/xerrors"

	"github.com/go-sdw/swan/bitstream"
	"github.com/go-sdw/swan/sdw"
)

// Row number of the last bit of the static sync word.
const lastStaticSyncRow = sdw.CtrlStaticSyncRow + sdw.CtrlStaticSyncNumRows - 1

// Sliding search window width.
const searchWindowBits = 4096

// SyncFinder locates SoundWire frame boundaries in a decoded
// bitstream: a windowed scan for the static sync pattern, then
// validation of each candidate by replaying a full dynamic sync
// sequence of frames.
type SyncFinder struct {
	dec     *bitstream.Decoder
	rows    int
	columns int
}

// NewSyncFinder returns a finder driving dec. The decoder must be
// collecting history so candidates can be rewound.
func NewSyncFinder(dec *bitstream.Decoder) *SyncFinder {
	return &SyncFinder{dec: dec}
}

// Rows returns the row count of the last found sync.
func (sf *SyncFinder) Rows() int { return sf.rows }

// Columns returns the column count of the last found sync.
func (sf *SyncFinder) Columns() int { return sf.columns }

// FindSync searches for frame sync and returns with the decoder
// positioned at the start of the first complete frame. A zero hint
// iterates the full candidate set; a nonzero hint restricts the search
// to that single value. The search runs until a sync is found or ctx
// is cancelled.
func (sf *SyncFinder) FindSync(ctx context.Context, rows, columns int) error {
	var matcher staticSyncMatcher

	rowsList := sdw.FrameShapeRows
	columnsList := sdw.FrameShapeColumns
	if rows != 0 {
		rowsList = []int{rows}
	}
	if columns != 0 {
		columnsList = []int{columns}
	}

	for {
		searchStartMark := sf.dec.Mark()

		for _, cols := range columnsList {
			matcher.reset(cols)

			// Limit the static sync scan to the search window plus
			// one frame before trying another column count. This
			// avoids scanning to the end of the capture on a wrong
			// column count, and avoids locking onto a much later
			// sync when an earlier one exists at a different count.
			// The extra frame covers a sync word straddling the
			// window end.
			maxBits := uint64(searchWindowBits + sdw.TotalBitsInFrame(sdw.MaxRows, cols))
			for matchedBitOffset := uint64(0); matchedBitOffset < maxBits; matchedBitOffset++ {
				if matcher.pushBit(sf.dec.NextBit()) {
					if sf.testIfSyncIsReal(rowsList, cols, matchedBitOffset, searchStartMark) {
						return nil
					}
				}
			}

			// No sync. Rewind and try a different column count.
			sf.dec.SetToMark(searchStartMark)

			if err := ctx.Err(); err != nil {
				return xerrors.Errorf("analyzer: sync search interrupted: %w", err)
			}
		}

		// No column count matched, wind on to the next window. A
		// static sync could straddle the end of the chunk searched,
		// so the extra frame scanned above is not skipped.
		sf.dec.SkipBits(searchWindowBits)
	}
}

// testIfSyncIsReal validates a static sync hit. The matcher fires
// immediately after the last static sync bit has been read; for each
// candidate row count the decoder is aligned on a frame start and the
// following frames are checked for a complete dynamic sync sequence.
func (sf *SyncFinder) testIfSyncIsReal(rowsList []int, columns int, matchedBitOffset uint64, searchStartMark bitstream.Mark) bool {
	lastStaticSyncBitOffset := uint64(sdw.BitOffsetInFrame(columns, lastStaticSyncRow, 0))

	// Position to restart the frame sequence search from if this
	// candidate does not work out.
	seqSearchRestartMark := sf.dec.Mark()

	for _, rows := range rowsList {
		if rows == 0 {
			// Reserved slot in the shape table.
			continue
		}

		// Are there enough bits before the static sync word to form
		// a full frame? If not, skip on to where the next frame
		// should start.
		if matchedBitOffset >= lastStaticSyncBitOffset {
			sf.dec.SetToMark(searchStartMark)
			sf.dec.SkipBits(matchedBitOffset - lastStaticSyncBitOffset)
		} else {
			sf.dec.SkipBits(uint64(sdw.TotalBitsInFrame(rows, columns)) - lastStaticSyncBitOffset)
		}

		if sf.checkSync(rows, columns) > sdw.DynamicSyncSequenceFrames-1 {
			sf.rows = rows
			sf.columns = columns
			return true
		}

		// No frame sequence here. Rewind and try another row count.
		sf.dec.SetToMark(seqSearchRestartMark)
	}

	return false
}

// checkSync returns the number of valid frames found from the current
// position, up to the dynamic sync sequence length. The decoder
// position is unchanged on return.
func (sf *SyncFinder) checkSync(rows, columns int) int {
	var frame sdw.FrameReader
	frame.SetShape(rows, columns)
	startMark := sf.dec.Mark()

	// The first frame cannot be validated, there is no previous
	// parity or sync info to compare against. It only seeds the
	// dynamic sync sequence.
	var state sdw.FrameState
	for {
		state = frame.PushBit(sf.dec.NextBit())
		if state == sdw.CaptureParity {
			// Restart parity accumulation so it is valid for the
			// next frame.
			sf.dec.ResetParity()
		}
		if state == sdw.FrameComplete {
			break
		}
	}

	// The dynamic sync can never be 0.
	if frame.ControlWord().DynamicSync() == 0 {
		sf.dec.SetToMark(startMark)
		return 0
	}

	var dynamicSync sdw.DynamicSyncGenerator
	dynamicSync.SetValue(frame.ControlWord().DynamicSync())

	framesOk := 1 // the seed frame

	for i := 0; i < sdw.DynamicSyncSequenceFrames-1; i++ {
		// A shape change takes effect on the frame after the one
		// announcing it.
		if frame.ControlWord().IsFrameShapeChange() {
			r, c := frame.ControlWord().NewShape()
			if r != 0 {
				rows, columns = r, c
				frame.SetShape(rows, columns)
			}
		}

		frame.Reset()

		var parityIsOdd bool
		for {
			state = frame.PushBit(sf.dec.NextBit())
			if state == sdw.CaptureParity {
				parityIsOdd = sf.dec.ParityIsOdd()
				sf.dec.ResetParity()
			}
			if state == sdw.FrameComplete {
				break
			}
		}

		expect := dynamicSync.Next()
		ctrl := frame.ControlWord()
		if ctrl.Par() != parityIsOdd ||
			ctrl.StaticSync() != sdw.StaticSyncVal ||
			ctrl.DynamicSync() != expect {
			// Not a valid frame, give up.
			sf.dec.SetToMark(startMark)
			return framesOk
		}
		framesOk++
	}

	sf.dec.SetToMark(startMark)

	return framesOk
}
