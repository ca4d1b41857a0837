// Copyright 2023 The go-sdw Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sdw

import "testing"

// setField places v into the control word rows [firstRow, firstRow+numRows).
func setField(value uint64, firstRow, numRows int, v uint64) uint64 {
	return value | v<<fieldShift(firstRow, numRows)
}

func TestControlWordPushBit(t *testing.T) {
	for _, tc := range []struct {
		name string
		bits [CtrlWordLastRow + 1]uint8
		want uint64
	}{
		{
			name: "all-zeros",
			want: 0,
		},
		{
			name: "row0-only",
			bits: func() (bits [48]uint8) { bits[0] = 1; return }(),
			want: 1 << 47,
		},
		{
			name: "row47-only",
			bits: func() (bits [48]uint8) { bits[47] = 1; return }(),
			want: 1,
		},
		{
			name: "alternating",
			bits: func() (bits [48]uint8) {
				for i := 0; i < 48; i += 2 {
					bits[i] = 1
				}
				return
			}(),
			want: 0xaaaa_aaaa_aaaa,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			w := NewControlWord()
			var want uint64
			for i, b := range tc.bits {
				w.PushBit(b != 0)
				if b != 0 {
					want |= 1 << uint(47-i)
				}
			}
			if got := w.Value(); got != tc.want {
				t.Fatalf("invalid value: got=0x%012x, want=0x%012x", got, tc.want)
			}
			if got := w.Value(); got != want {
				t.Fatalf("bits do not sum MSB-first: got=0x%012x, want=0x%012x", got, want)
			}
		})
	}
}

func TestControlWordSkipBits(t *testing.T) {
	w := NewControlWord()
	w.PushBit(true) // row 0
	w.SkipBits(46)
	w.PushBit(true) // row 47

	if got, want := w.Value(), uint64(1<<47|1); got != want {
		t.Fatalf("invalid value: got=0x%012x, want=0x%012x", got, want)
	}
}

func TestControlWordFields(t *testing.T) {
	var v uint64
	v = setField(v, ctrlPREQRow, 1, 1)
	v = setField(v, ctrlOpCodeRow, ctrlOpCodeNumRows, uint64(OpWrite))
	v = setField(v, devAddrRow, devAddrNumRows, 0xa)
	v = setField(v, regAddrRow, regAddrNumRows, 0x1234)
	v = setField(v, CtrlStaticSyncRow, CtrlStaticSyncNumRows, StaticSyncVal)
	v = setField(v, ctrlPhySyncRow, 1, 1)
	v = setField(v, regDataRow, regDataNumRows, 0x5a)
	v = setField(v, ctrlDynamicSyncRow, ctrlDynamicSyncNumRows, 0xc)
	v = setField(v, CtrlPARRow, 1, 1)
	v = setField(v, ctrlNAKRow, 1, 0)
	v = setField(v, ctrlACKRow, 1, 1)

	w := ControlWordFromValue(v)

	if !w.Preq() {
		t.Errorf("invalid PREQ: got=false, want=true")
	}
	if got, want := w.OpCode(), OpWrite; got != want {
		t.Errorf("invalid opcode: got=%v, want=%v", got, want)
	}
	if got, want := w.DeviceAddress(), uint8(0xa); got != want {
		t.Errorf("invalid device address: got=0x%x, want=0x%x", got, want)
	}
	if got, want := w.RegisterAddress(), uint16(0x1234); got != want {
		t.Errorf("invalid register address: got=0x%x, want=0x%x", got, want)
	}
	if got, want := w.StaticSync(), uint8(StaticSyncVal); got != want {
		t.Errorf("invalid static sync: got=0x%x, want=0x%x", got, want)
	}
	if !w.PhySync() {
		t.Errorf("invalid PHY sync: got=false, want=true")
	}
	if got, want := w.DataValue(), uint8(0x5a); got != want {
		t.Errorf("invalid data value: got=0x%x, want=0x%x", got, want)
	}
	if got, want := w.DynamicSync(), uint8(0xc); got != want {
		t.Errorf("invalid dynamic sync: got=0x%x, want=0x%x", got, want)
	}
	if !w.Par() {
		t.Errorf("invalid PAR: got=false, want=true")
	}
	if w.Nak() {
		t.Errorf("invalid NAK: got=true, want=false")
	}
	if !w.Ack() {
		t.Errorf("invalid ACK: got=false, want=true")
	}
}

func TestControlWordPeripheralStat(t *testing.T) {
	var v uint64
	v = setField(v, pingStat4_11Row, pingStat4_11NumRows, 0xbead)
	v = setField(v, pingStat0_3Row, pingStat0_3NumRows, 0x66)

	w := ControlWordFromValue(v)

	if got, want := w.PeripheralStat(), uint32(0xbead66); got != want {
		t.Fatalf("invalid peripheral stat: got=0x%06x, want=0x%06x", got, want)
	}

	// device 0 status sits in the two least significant bits.
	if got, want := w.DeviceStat(0), StatAlert; got != want {
		t.Errorf("invalid device 0 stat: got=%v, want=%v", got, want)
	}
	if got, want := w.DeviceStat(1), StatOK; got != want {
		t.Errorf("invalid device 1 stat: got=%v, want=%v", got, want)
	}
	// device 4 status starts the stat4_11 field.
	if got, want := w.DeviceStat(4), StatOK; got != want {
		t.Errorf("invalid device 4 stat: got=%v, want=%v", got, want)
	}
	if got, want := w.DeviceStat(11), StatAlert; got != want {
		t.Errorf("invalid device 11 stat: got=%v, want=%v", got, want)
	}
}

func TestControlWordIsPingSameAs(t *testing.T) {
	var base uint64
	base = setField(base, ctrlOpCodeRow, ctrlOpCodeNumRows, uint64(OpPing))
	base = setField(base, pingStat4_11Row, pingStat4_11NumRows, 0x1234)
	base = setField(base, pingStat0_3Row, pingStat0_3NumRows, 0x56)
	base = setField(base, ctrlACKRow, 1, 1)

	w := ControlWordFromValue(base)

	// Differing SSP is not a difference.
	ssp := ControlWordFromValue(setField(base, pingSSPRow, 1, 1))
	if !w.IsPingSameAs(ssp) {
		t.Errorf("pings differing only by SSP should compare equal")
	}

	// Differing status is.
	stat := ControlWordFromValue(setField(base&^pingStat0_3Mask, pingStat0_3Row, pingStat0_3NumRows, 0x57))
	if w.IsPingSameAs(stat) {
		t.Errorf("pings with different status should not compare equal")
	}

	// Differing NAK is.
	nak := ControlWordFromValue(setField(base, ctrlNAKRow, 1, 1))
	if w.IsPingSameAs(nak) {
		t.Errorf("pings with different NAK should not compare equal")
	}

	// Differing PREQ is.
	preq := ControlWordFromValue(setField(base, ctrlPREQRow, 1, 1))
	if w.IsPingSameAs(preq) {
		t.Errorf("pings with different PREQ should not compare equal")
	}
}

func TestControlWordFrameShapeChange(t *testing.T) {
	mkWrite := func(reg uint16, data uint8) ControlWord {
		var v uint64
		v = setField(v, ctrlOpCodeRow, ctrlOpCodeNumRows, uint64(OpWrite))
		v = setField(v, regAddrRow, regAddrNumRows, uint64(reg))
		v = setField(v, regDataRow, regDataNumRows, uint64(data))
		return ControlWordFromValue(v)
	}

	for _, tc := range []struct {
		name     string
		w        ControlWord
		isChange bool
		rows     int
		columns  int
	}{
		{
			name:     "frame-ctrl0-48x2",
			w:        mkWrite(RegAddrScpFrameCtrl0, 0x00),
			isChange: true,
			rows:     48,
			columns:  2,
		},
		{
			name:     "frame-ctrl1-reserved-rows",
			w:        mkWrite(RegAddrScpFrameCtrl1, 0xff),
			isChange: true,
			rows:     0,
			columns:  16,
		},
		{
			name:     "frame-ctrl0-96x8",
			w:        mkWrite(RegAddrScpFrameCtrl0, 8<<3|3),
			isChange: true,
			rows:     96,
			columns:  8,
		},
		{
			name:     "reserved-slot-15",
			w:        mkWrite(RegAddrScpFrameCtrl0, 15<<3),
			isChange: true,
			rows:     0,
			columns:  2,
		},
		{
			name:     "other-register",
			w:        mkWrite(0x50, 0x00),
			isChange: false,
		},
		{
			name: "read-not-a-change",
			w: ControlWordFromValue(setField(setField(0,
				ctrlOpCodeRow, ctrlOpCodeNumRows, uint64(OpRead)),
				regAddrRow, regAddrNumRows, RegAddrScpFrameCtrl0)),
			isChange: false,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got, want := tc.w.IsFrameShapeChange(), tc.isChange; got != want {
				t.Fatalf("invalid shape-change: got=%v, want=%v", got, want)
			}
			if !tc.isChange {
				return
			}
			rows, columns := tc.w.NewShape()
			if rows != tc.rows || columns != tc.columns {
				t.Fatalf("invalid shape: got=%dx%d, want=%dx%d", rows, columns, tc.rows, tc.columns)
			}
		})
	}
}
