// Copyright 2023 The go-sdw Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sdw

// FrameState is the progress report of a FrameReader after a bit has
// been pushed.
type FrameState uint8

const (
	FrameStart FrameState = iota
	NeedMoreBits
	CaptureParity
	FrameComplete
)

func (st FrameState) String() string {
	switch st {
	case FrameStart:
		return "frame-start"
	case NeedMoreBits:
		return "need-more-bits"
	case CaptureParity:
		return "capture-parity"
	case FrameComplete:
		return "frame-complete"
	}
	return "invalid"
}

// FrameReader walks the rows×columns bit grid of one frame, collecting
// the column-0 control word and reporting frame boundaries and the
// parity capture point.
type FrameReader struct {
	ctrl    ControlWord
	state   FrameState
	rows    int
	columns int
	row     int
	col     int
}

// SetShape resets the reader and installs new frame dimensions.
func (r *FrameReader) SetShape(rows, columns int) {
	r.Reset()
	r.rows = rows
	r.columns = columns
}

// Reset prepares the reader for the next frame, keeping the shape.
func (r *FrameReader) Reset() {
	r.ctrl.Reset()
	r.row = 0
	r.col = 0
	r.state = FrameStart
}

func (r *FrameReader) Rows() int    { return r.rows }
func (r *FrameReader) Columns() int { return r.columns }

// ControlWord gives access to the (possibly partial) control word of
// the frame being read.
func (r *FrameReader) ControlWord() *ControlWord { return &r.ctrl }

// PushBit advances the reader by one bit. Once a frame is complete
// further pushes are no-ops until Reset.
func (r *FrameReader) PushBit(isOne bool) FrameState {
	ret := r.state

	switch r.state {
	case FrameStart:
		r.state = NeedMoreBits
	case FrameComplete:
		return r.state
	}

	if r.col == 0 {
		if r.row <= CtrlWordLastRow {
			r.ctrl.PushBit(isOne)
		}

		// Parity covers the bus up to the first bit of the row
		// before the PAR bit.
		if r.row == CtrlPARRow-1 {
			ret = CaptureParity
		}
	}

	if r.col++; r.col == r.columns {
		r.col = 0
		if r.row++; r.row == r.rows {
			r.state = FrameComplete
			ret = FrameComplete
		}
	}

	return ret
}
