// Copyright 2023 The go-sdw Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sdw

func fieldShift(firstRow, numRows int) uint {
	return uint(CtrlWordLastRow - firstRow - numRows + 1)
}

func fieldMask(firstRow, numRows int) uint64 {
	return ((1 << uint(numRows)) - 1) << fieldShift(firstRow, numRows)
}

var (
	ctrlPREQMask         = fieldMask(ctrlPREQRow, 1)
	ctrlOpCodeMask       = fieldMask(ctrlOpCodeRow, ctrlOpCodeNumRows)
	ctrlOpCodeShift      = fieldShift(ctrlOpCodeRow, ctrlOpCodeNumRows)
	ctrlStaticSyncMask   = fieldMask(CtrlStaticSyncRow, CtrlStaticSyncNumRows)
	ctrlStaticSyncShift  = fieldShift(CtrlStaticSyncRow, CtrlStaticSyncNumRows)
	ctrlPhySyncMask      = fieldMask(ctrlPhySyncRow, 1)
	ctrlDynamicSyncMask  = fieldMask(ctrlDynamicSyncRow, ctrlDynamicSyncNumRows)
	ctrlDynamicSyncShift = fieldShift(ctrlDynamicSyncRow, ctrlDynamicSyncNumRows)
	ctrlPARMask          = fieldMask(CtrlPARRow, 1)
	ctrlNAKMask          = fieldMask(ctrlNAKRow, 1)
	ctrlACKMask          = fieldMask(ctrlACKRow, 1)

	pingSSPMask       = fieldMask(pingSSPRow, 1)
	pingBREQMask      = fieldMask(pingBREQRow, 1)
	pingBRELMask      = fieldMask(pingBRELRow, 1)
	pingStat4_11Mask  = fieldMask(pingStat4_11Row, pingStat4_11NumRows)
	pingStat4_11Shift = fieldShift(pingStat4_11Row, pingStat4_11NumRows)
	pingStat0_3Mask   = fieldMask(pingStat0_3Row, pingStat0_3NumRows)
	pingStat0_3Shift  = fieldShift(pingStat0_3Row, pingStat0_3NumRows)

	devAddrMask  = fieldMask(devAddrRow, devAddrNumRows)
	devAddrShift = fieldShift(devAddrRow, devAddrNumRows)
	regAddrMask  = fieldMask(regAddrRow, regAddrNumRows)
	regAddrShift = fieldShift(regAddrRow, regAddrNumRows)
	regDataMask  = fieldMask(regDataRow, regDataNumRows)
	regDataShift = fieldShift(regDataRow, regDataNumRows)
)

// ControlWord accumulates the 48 column-0 bits of a frame and decodes
// the named control word fields.
//
// Bits are transmitted MSB first. They are pushed into their final
// position in the word rather than shifted through, so that fields can
// be read from a partially-constructed word.
type ControlWord struct {
	value uint64
	mask  uint64 // position the next pushed bit lands on
}

// NewControlWord returns a control word ready to accept row 0.
func NewControlWord() ControlWord {
	return ControlWord{mask: 1 << CtrlWordLastRow}
}

// ControlWordFromValue wraps an already-assembled 48-bit value.
func ControlWordFromValue(v uint64) ControlWord {
	return ControlWord{value: v}
}

func (w *ControlWord) Reset() {
	w.value = 0
	w.mask = 1 << CtrlWordLastRow
}

func (w *ControlWord) PushBit(isOne bool) {
	if isOne {
		w.value |= w.mask
	}
	w.mask >>= 1
}

// SkipBits skips over bits that are not available in the bitstream so
// that subsequent bits still land on their correct rows.
func (w *ControlWord) SkipBits(n int) {
	w.mask >>= uint(n)
}

func (w *ControlWord) SetValue(v uint64) { w.value = v }

func (w ControlWord) Value() uint64 { return w.value }

func (w ControlWord) Preq() bool { return w.value&ctrlPREQMask != 0 }
func (w ControlWord) Par() bool  { return w.value&ctrlPARMask != 0 }
func (w ControlWord) Nak() bool  { return w.value&ctrlNAKMask != 0 }
func (w ControlWord) Ack() bool  { return w.value&ctrlACKMask != 0 }

func (w ControlWord) OpCode() OpCode {
	return OpCode((w.value & ctrlOpCodeMask) >> ctrlOpCodeShift)
}

func (w ControlWord) StaticSync() uint8 {
	return uint8((w.value & ctrlStaticSyncMask) >> ctrlStaticSyncShift)
}

func (w ControlWord) PhySync() bool { return w.value&ctrlPhySyncMask != 0 }

func (w ControlWord) DynamicSync() uint8 {
	return uint8((w.value & ctrlDynamicSyncMask) >> ctrlDynamicSyncShift)
}

// PING words.

func (w ControlWord) Ssp() bool  { return w.value&pingSSPMask != 0 }
func (w ControlWord) Breq() bool { return w.value&pingBREQMask != 0 }
func (w ControlWord) Brel() bool { return w.value&pingBRELMask != 0 }

// PeripheralStat returns the 24 peripheral status bits of a PING word,
// device 0 status in the two least significant bits.
func (w ControlWord) PeripheralStat() uint32 {
	return uint32((w.value&pingStat4_11Mask)>>pingStat4_11Shift)<<8 |
		uint32((w.value&pingStat0_3Mask)>>pingStat0_3Shift)
}

// DeviceStat returns the reported status of peripheral device dev
// (0-11) from a PING word.
func (w ControlWord) DeviceStat(dev int) PingStat {
	return PingStat(w.PeripheralStat() >> uint(2*dev) & 3)
}

// Read/Write words.

func (w ControlWord) DeviceAddress() uint8 {
	return uint8((w.value & devAddrMask) >> devAddrShift)
}

func (w ControlWord) RegisterAddress() uint16 {
	return uint16((w.value & regAddrMask) >> regAddrShift)
}

func (w ControlWord) DataValue() uint8 {
	return uint8((w.value & regDataMask) >> regDataShift)
}

// IsPingSameAs reports whether two PING words carry the same peripheral
// status and error flags. The SSP flag state is not counted as a
// difference, so start-of-superframe pings can be folded into the
// preceding ping when building tables.
func (w ControlWord) IsPingSameAs(other ControlWord) bool {
	return w.PeripheralStat() == other.PeripheralStat() &&
		w.Preq() == other.Preq() &&
		w.Ack() == other.Ack() &&
		w.Nak() == other.Nak()
}

// IsFrameShapeChange reports whether the word is a write to one of the
// ScpFrameCtrl registers.
func (w ControlWord) IsFrameShapeChange() bool {
	if w.OpCode() != OpWrite {
		return false
	}
	addr := w.RegisterAddress()
	return addr == RegAddrScpFrameCtrl0 || addr == RegAddrScpFrameCtrl1
}

// NewShape decodes the frame shape advertised by a ScpFrameCtrl write.
// A reserved rows slot decodes to rows=0 and must be rejected by the
// caller.
func (w ControlWord) NewShape() (rows, columns int) {
	data := int(w.DataValue())

	if i := data >> 3; i < len(FrameShapeRows) {
		rows = FrameShapeRows[i]
	}
	columns = FrameShapeColumns[data&7]

	return rows, columns
}
