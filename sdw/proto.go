// Copyright 2023 The go-sdw Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sdw holds the SoundWire wire-protocol definitions: frame
// shapes, control word layout and sync constants.
package sdw // import "github.com/go-sdw/swan/sdw"

const (
	MaxRows    = 256
	MaxColumns = 16
)

// Control word bit positions in transmission order, counting the
// first frame row from 0.
const (
	CtrlWordLastRow = 47

	ctrlPREQRow            = 0
	ctrlOpCodeRow          = 1
	ctrlOpCodeNumRows      = 3
	CtrlStaticSyncRow      = 24
	CtrlStaticSyncNumRows  = 8
	ctrlPhySyncRow         = 32
	ctrlDynamicSyncRow     = 41
	ctrlDynamicSyncNumRows = 4
	CtrlPARRow             = 45
	ctrlNAKRow             = 46
	ctrlACKRow             = 47
)

// PING command control word rows.
const (
	pingSSPRow          = 5
	pingBREQRow         = 6
	pingBRELRow         = 7
	pingStat4_11Row     = 8
	pingStat4_11NumRows = 16
	pingStat0_3Row      = 33
	pingStat0_3NumRows  = 8
)

// Read/Write command control word rows.
const (
	devAddrRow     = 4
	devAddrNumRows = 4
	regAddrRow     = 8
	regAddrNumRows = 16
	regDataRow     = 33
	regDataNumRows = 8
)

// OpCode is the command opcode of a control word.
type OpCode uint8

const (
	OpPing  OpCode = 0
	OpRead  OpCode = 2
	OpWrite OpCode = 3
)

func (op OpCode) String() string {
	switch op {
	case OpPing:
		return "PING"
	case OpRead:
		return "READ"
	case OpWrite:
		return "WRITE"
	}
	return "RSVD"
}

// PingStat is the 2-bit status a peripheral reports in a PING frame.
type PingStat uint8

const (
	StatNotPresent PingStat = 0
	StatOK         PingStat = 1
	StatAlert      PingStat = 2
)

func (st PingStat) String() string {
	switch st {
	case StatNotPresent:
		return "not-present"
	case StatOK:
		return "ok"
	case StatAlert:
		return "alert"
	}
	return "reserved"
}

// StaticSyncVal is the static sync value in reconstructed order
// (first row is MSB).
const StaticSyncVal = 0xb1

// BusResetOnesCount is the number of consecutive decoded ones that
// signal a bus reset.
const BusResetOnesCount = 4096

// Registers controlling the frame shape.
const (
	RegAddrScpFrameCtrl0 = 0x60
	RegAddrScpFrameCtrl1 = 0x70
)

// FrameShapeRows lists the possible rows counts indexed by the
// enumeration in the ScpFrameCtrl registers. Slot value 0 is reserved.
var FrameShapeRows = []int{
	48, 50, 60, 64, 75, 80, 125, 147, 96, 100, 120, 128, 150, 169, 250, 0,
	192, 200, 240, 256, 72, 144, 90, 180,
}

// FrameShapeColumns lists the possible columns counts indexed by the
// enumeration in the ScpFrameCtrl registers.
var FrameShapeColumns = []int{2, 4, 6, 8, 10, 12, 14, 16}

// TotalBitsInFrame returns the size in bits of a rows×columns frame.
func TotalBitsInFrame(rows, columns int) int { return rows * columns }

// BitOffsetInFrame returns the bit position of (row,column) within a
// frame with the given number of columns.
func BitOffsetInFrame(columns, row, column int) int { return row*columns + column }
