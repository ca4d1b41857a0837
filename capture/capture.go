// Copyright 2023 The go-sdw Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package capture reads exported logic-analyzer digital captures and
// presents their channels as sample sources.
package capture // import "github.com/go-sdw/swan/capture"

import (
	"encoding/binary"
	"io"
	"math"

	"golang.org/x/xerrors"

	"github.com/go-sdw/swan/bitstream"
	"github.com/go-sdw/swan/internal/mmap"
)

// Digital binary export layout (all little-endian): an 8-byte magic,
// version and channel-type words, the initial channel state, the
// capture begin/end instants in seconds, a u64 transition count, and
// one float64 transition instant per edge.
const magic = "<SALEAE>"

const (
	typeDigital = 0
	typeAnalog  = 1
)

// DigitalChannel is one digital channel of a capture.
type DigitalChannel struct {
	InitialState bitstream.BitState
	Begin        float64 // capture start, seconds
	End          float64 // capture end, seconds
	Transitions  []float64
}

// Decoder reads (and validates) one digital channel from an
// underlying capture export.
type Decoder struct {
	r   io.Reader
	buf []byte
	err error
}

// NewDecoder creates a decoder that reads a digital channel from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		r:   r,
		buf: make([]byte, 8),
	}
}

func (dec *Decoder) Decode(ch *DigitalChannel) error {
	dec.read(dec.buf[:8])
	if dec.err != nil {
		return xerrors.Errorf("capture: could not read file identifier: %w", dec.err)
	}
	if got := string(dec.buf[:8]); got != magic {
		return xerrors.Errorf("capture: invalid file identifier (got=%q)", got)
	}

	version := dec.readU32()
	if dec.err != nil {
		return xerrors.Errorf("capture: could not read file version: %w", dec.err)
	}
	if version != 0 {
		return xerrors.Errorf("capture: unknown file version (got=%d)", version)
	}

	ctype := dec.readU32()
	if dec.err != nil {
		return xerrors.Errorf("capture: could not read channel type: %w", dec.err)
	}
	switch ctype {
	case typeDigital: // ok
	case typeAnalog:
		return xerrors.Errorf("capture: file contains an analog channel")
	default:
		return xerrors.Errorf("capture: invalid channel type (got=%d)", ctype)
	}

	state := dec.readU32()
	if dec.err != nil {
		return xerrors.Errorf("capture: could not read initial state: %w", dec.err)
	}
	ch.InitialState = bitstream.BitLow
	if state != 0 {
		ch.InitialState = bitstream.BitHigh
	}

	ch.Begin = dec.readF64()
	ch.End = dec.readF64()
	n := dec.readU64()
	if dec.err != nil {
		return xerrors.Errorf("capture: could not read channel header: %w", dec.err)
	}

	ch.Transitions = make([]float64, 0, n)
	for i := uint64(0); i < n; i++ {
		t := dec.readF64()
		if dec.err != nil {
			if xerrors.Is(dec.err, io.EOF) {
				dec.err = io.ErrUnexpectedEOF
			}
			return xerrors.Errorf("capture: could not read transition %d/%d: %w", i+1, n, dec.err)
		}
		ch.Transitions = append(ch.Transitions, t)
	}

	return dec.err
}

func (dec *Decoder) read(p []byte) {
	if dec.err != nil {
		return
	}
	_, dec.err = io.ReadFull(dec.r, p)
}

func (dec *Decoder) readU32() uint32 {
	const n = 4
	dec.read(dec.buf[:n])
	if dec.err != nil {
		return 0
	}
	return binary.LittleEndian.Uint32(dec.buf[:n])
}

func (dec *Decoder) readU64() uint64 {
	const n = 8
	dec.read(dec.buf[:n])
	if dec.err != nil {
		return 0
	}
	return binary.LittleEndian.Uint64(dec.buf[:n])
}

func (dec *Decoder) readF64() float64 {
	return math.Float64frombits(dec.readU64())
}

// ReadFile reads the named digital channel export. The file is
// memory-mapped; captures can run to hundreds of megabytes.
func ReadFile(name string) (*DigitalChannel, error) {
	h, err := mmap.Open(name)
	if err != nil {
		return nil, xerrors.Errorf("capture: could not map %q: %w", name, err)
	}
	defer h.Close()

	var ch DigitalChannel
	err = NewDecoder(io.NewSectionReader(h, 0, int64(h.Len()))).Decode(&ch)
	if err != nil {
		return nil, xerrors.Errorf("capture: could not decode %q: %w", name, err)
	}

	return &ch, nil
}
