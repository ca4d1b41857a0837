// Copyright 2023 The go-sdw Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package analyzer drives the SoundWire decoding pipeline: it finds
// frame sync in a decoded bitstream, walks frames, verifies parity and
// sync integrity and emits decoded frames to a results sink.
package analyzer // import "github.com/go-sdw/swan/analyzer"

import (
	"context"
	"io"
	"log"

	"golang.org/x/xerrors"

	"github.com/go-sdw/swan/bitstream"
	"github.com/go-sdw/swan/sdw"
)

// ResultsSink receives the decoded output stream.
type ResultsSink interface {
	// AddFrame emits one decoded frame.
	AddFrame(f sdw.Frame)

	// NotifyBusReset reports a bus reset covering the given samples.
	NotifyBusReset(start, end uint64)

	// NotifyShapeChange reports the frame shape in effect from the
	// given sample on.
	NotifyShapeChange(sample uint64, rows, columns int)

	// ReportProgress reports how far decoding has advanced.
	ReportProgress(sample uint64)
}

// Config holds the decode options.
type Config struct {
	Rows    int // frame rows, 0 for automatic detection
	Columns int // frame columns, 0 for automatic detection

	// SuppressDuplicatePings flags consecutive PING frames that
	// repeat the previous PING's status so table sinks can skip
	// them. Flagged frames are still emitted.
	SuppressDuplicatePings bool
}

// Analyzer is the top-level decode driver.
type Analyzer struct {
	dec  *bitstream.Decoder
	sink ResultsSink
	cfg  Config
	msg  *log.Logger
}

// New returns an analyzer decoding from dec into sink. msg may be nil.
func New(dec *bitstream.Decoder, sink ResultsSink, cfg Config, msg *log.Logger) *Analyzer {
	if msg == nil {
		msg = log.New(io.Discard, "", 0)
	}
	return &Analyzer{dec: dec, sink: sink, cfg: cfg, msg: msg}
}

// Run decodes frames until ctx is cancelled. Recoverable protocol
// conditions (bad parity, lost sync, bus reset, invalid shape change)
// are reported through frame flags and sink notifications; only
// cancellation ends the run.
func (an *Analyzer) Run(ctx context.Context) error {
	an.dec.OnBusReset = an.sink.NotifyBusReset

	// Advance one bit to establish an initial data line state.
	an.dec.NextBit()

	// The sync finder needs to rewind, so the decoder must be
	// collecting history.
	an.dec.CollectHistory(true)

	var (
		finder      = NewSyncFinder(an.dec)
		frameReader sdw.FrameReader
		dynamicSync sdw.DynamicSyncGenerator

		inSync       = false
		isFirstFrame = true
		parityIsOdd  bool

		lastPing    sdw.ControlWord
		hasLastPing bool

		f         sdw.Frame
		startMark = an.dec.Mark()
	)

	for {
		if err := ctx.Err(); err != nil {
			return xerrors.Errorf("analyzer: decode interrupted: %w", err)
		}

		if !inSync {
			// Resume the search from the last known-good position.
			an.dec.SetToMark(startMark)
			err := finder.FindSync(ctx, an.cfg.Rows, an.cfg.Columns)
			if err != nil {
				return err
			}

			rows, columns := finder.Rows(), finder.Columns()
			an.sink.NotifyShapeChange(an.dec.SampleNumber(), rows, columns)
			frameReader.SetShape(rows, columns)
			inSync = true
			isFirstFrame = true
			hasLastPing = false

			// A good frame follows; history before this point is
			// no longer needed.
			an.dec.DiscardHistoryBeforeCurrentPosition()
			startMark = an.dec.Mark()
			continue
		}

		bit := an.dec.NextBit()
		sample := an.dec.SampleNumber()

		switch frameReader.PushBit(bit) {
		case sdw.FrameStart:
			f.Start = sample

		case sdw.NeedMoreBits:

		case sdw.CaptureParity:
			parityIsOdd = an.dec.ParityIsOdd()
			an.dec.ResetParity()

		case sdw.FrameComplete:
			ctrl := *frameReader.ControlWord()
			f.End = sample
			f.Ctrl = ctrl.Value()
			f.Flags = 0

			if isFirstFrame {
				// The first frame cannot be validated: parity
				// includes the end of the previous frame and there
				// is no previous dynamic sync. It seeds the
				// sequence.
				dynamicSync.SetValue(ctrl.DynamicSync())
			} else {
				if ctrl.Par() != parityIsOdd {
					f.Flags |= sdw.FlagParityBad
				}
				if ctrl.StaticSync() != sdw.StaticSyncVal ||
					ctrl.DynamicSync() != dynamicSync.Next() {
					f.Flags |= sdw.FlagSyncLoss
				}
			}

			if an.cfg.SuppressDuplicatePings && ctrl.OpCode() == sdw.OpPing {
				if hasLastPing && ctrl.IsPingSameAs(lastPing) {
					f.Flags |= sdw.FlagDuplicatePing
				}
				lastPing = ctrl
				hasLastPing = true
			}

			an.sink.AddFrame(f)
			frameReader.Reset()

			if f.Flags&sdw.FlagSyncLoss != 0 {
				// Restart the sync search from the last committed
				// mark.
				inSync = false
				an.sink.ReportProgress(sample)
				continue
			}

			isFirstFrame = false

			if ctrl.IsFrameShapeChange() {
				rows, columns := ctrl.NewShape()
				if rows == 0 {
					an.msg.Printf("ignoring reserved frame shape (data=0x%02x) at sample %d",
						ctrl.DataValue(), sample)
				} else {
					frameReader.SetShape(rows, columns)
					an.sink.NotifyShapeChange(sample, rows, columns)
				}
			}

			// This frame is decoded, earlier history can be
			// discarded to save memory. Collection stays enabled in
			// case sync is lost on a later frame and the search has
			// to rewind.
			an.dec.DiscardHistoryBeforeCurrentPosition()
			startMark = an.dec.Mark()
		}

		an.sink.ReportProgress(sample)
	}
}
