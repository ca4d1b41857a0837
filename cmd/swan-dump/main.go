// Copyright 2023 The go-sdw Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// swan-dump decodes SoundWire captures and displays frames.
//
// Usage: swan-dump [OPTIONS] DIR1 [DIR2 [DIR3 ...]]
//
// Each directory holds the digital channel exports of one capture:
// clock.bin and data.bin.
//
// Example:
//
//  $> swan-dump -rate=500e6 ./testdata/capture-001
//  == frame shape 48x2 from sample 1041 ==
//         1042         1137 PING  stat=000001 ssp=false preq=false ack=true  nak=false dsync=5
//         1138         1233 WRITE dev=01 reg=0x0060 data=0x08 ack=true  nak=false dsync=b
//  [...]
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/go-sdw/swan/analyzer"
	"github.com/go-sdw/swan/bitstream"
	"github.com/go-sdw/swan/capture"
	"github.com/go-sdw/swan/sdw"
)

func main() {
	log.SetPrefix("swan-dump: ")
	log.SetFlags(0)

	var (
		rate  = flag.Float64("rate", 500e6, "capture sample rate (samples/s)")
		rows  = flag.Int("rows", 0, "frame rows hint (0=auto)")
		cols  = flag.Int("cols", 0, "frame columns hint (0=auto)")
		pings = flag.Bool("suppress-pings", false, "suppress duplicate PING frames from the table")
		nmax  = flag.Int("n", 0, "maximum number of frames to decode (0=all)")
	)

	flag.Usage = func() {
		fmt.Printf(`swan-dump decodes SoundWire captures and displays frames.

Usage: swan-dump [OPTIONS] DIR1 [DIR2 [DIR3 ...]]

Each directory holds the digital channel exports of one capture:
clock.bin and data.bin.

Example:

 $> swan-dump -rate=500e6 ./testdata/capture-001
 == frame shape 48x2 from sample 1041 ==
        1042         1137 PING  stat=000001 ssp=false preq=false ack=true  nak=false dsync=5
        1138         1233 WRITE dev=01 reg=0x0060 data=0x08 ack=true  nak=false dsync=b
 [...]

options:
`)
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		log.Fatalf("missing path to input capture directory")
	}

	cfg := analyzer.Config{
		Rows:                   *rows,
		Columns:                *cols,
		SuppressDuplicatePings: *pings,
	}

	var (
		grp  errgroup.Group
		bufs = make([]bytes.Buffer, flag.NArg())
	)
	for i, dir := range flag.Args() {
		i, dir := i, dir
		grp.Go(func() error {
			return process(&bufs[i], dir, *rate, cfg, *nmax)
		})
	}

	err := grp.Wait()
	for i := range bufs {
		_, _ = io.Copy(os.Stdout, &bufs[i])
	}
	if err != nil {
		log.Fatalf("could not dump captures: %+v", err)
	}
}

func process(w io.Writer, dir string, rate float64, cfg analyzer.Config, nmax int) error {
	clk, err := capture.ReadFile(filepath.Join(dir, "clock.bin"))
	if err != nil {
		return fmt.Errorf("could not read clock channel: %w", err)
	}
	dat, err := capture.ReadFile(filepath.Join(dir, "data.bin"))
	if err != nil {
		return fmt.Errorf("could not read data channel: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := capture.NewChannelData(clk, rate)
	data := capture.NewChannelData(dat, rate)
	clock.Exhausted = cancel

	dec := bitstream.NewDecoder(clock, data)
	sink := &tableSink{
		w:        w,
		suppress: cfg.SuppressDuplicatePings,
		nmax:     nmax,
		cancel:   cancel,
	}

	err = analyzer.New(dec, sink, cfg, log.Default()).Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("could not decode capture %q: %w", dir, err)
	}

	return nil
}

// tableSink renders decoded frames as a fixed-width table.
type tableSink struct {
	w        io.Writer
	suppress bool
	nmax     int
	n        int
	cancel   context.CancelFunc
}

func (s *tableSink) AddFrame(f sdw.Frame) {
	s.n++
	if s.nmax > 0 && s.n >= s.nmax {
		s.cancel()
	}
	if s.suppress && f.Flags&sdw.FlagDuplicatePing != 0 {
		return
	}
	printFrame(s.w, f)
}

func (s *tableSink) NotifyBusReset(start, end uint64) {
	fmt.Fprintf(s.w, "== bus reset samples [%d, %d] ==\n", start, end)
}

func (s *tableSink) NotifyShapeChange(sample uint64, rows, columns int) {
	fmt.Fprintf(s.w, "== frame shape %dx%d from sample %d ==\n", rows, columns, sample)
}

func (s *tableSink) ReportProgress(sample uint64) {}

func printFrame(w io.Writer, f sdw.Frame) {
	ctrl := f.ControlWord()

	var flags string
	if f.Flags&sdw.FlagParityBad != 0 {
		flags += " PAR!"
	}
	if f.Flags&sdw.FlagSyncLoss != 0 {
		flags += " SYNC!"
	}

	switch op := ctrl.OpCode(); op {
	case sdw.OpPing:
		fmt.Fprintf(w, "%12d %12d %-5s stat=%06x ssp=%-5v preq=%-5v ack=%-5v nak=%-5v dsync=%x%s\n",
			f.Start, f.End, op,
			ctrl.PeripheralStat(), ctrl.Ssp(), ctrl.Preq(), ctrl.Ack(), ctrl.Nak(),
			ctrl.DynamicSync(), flags,
		)
	default:
		fmt.Fprintf(w, "%12d %12d %-5s dev=%02d reg=0x%04x data=0x%02x ack=%-5v nak=%-5v dsync=%x%s\n",
			f.Start, f.End, op,
			ctrl.DeviceAddress(), ctrl.RegisterAddress(), ctrl.DataValue(),
			ctrl.Ack(), ctrl.Nak(),
			ctrl.DynamicSync(), flags,
		)
	}
}
