// Copyright 2023 The go-sdw Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command swan2lcio decodes a SoundWire capture to an LCIO file.
package main // import "github.com/go-sdw/swan/cmd/swan2lcio"

import (
	"compress/flate"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"go-hep.org/x/hep/lcio"

	"github.com/go-sdw/swan/analyzer"
	"github.com/go-sdw/swan/bitstream"
	"github.com/go-sdw/swan/capture"
	"github.com/go-sdw/swan/internal/xcnv"
	"github.com/go-sdw/swan/sdw"
)

var (
	msg = log.New(os.Stdout, "swan2lcio: ", 0)
)

func main() {
	var (
		oname = flag.String("o", "out.lcio", "path to output LCIO file")
		compr = flag.Int("lvl", flate.DefaultCompression, "compression level for output LCIO file")
		run   = flag.Int("run", 0, "run number for the output LCIO file")
		rate  = flag.Float64("rate", 500e6, "capture sample rate (samples/s)")
		rows  = flag.Int("rows", 0, "frame rows hint (0=auto)")
		cols  = flag.Int("cols", 0, "frame columns hint (0=auto)")
	)

	flag.Usage = func() {
		fmt.Printf(`Usage: swan2lcio [OPTIONS] capture-dir

ex:
 $> swan2lcio -o out.lcio -lvl=9 -run=42 ./capture-001

options:
`)
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		msg.Fatalf("missing input capture directory")
	}

	if *oname == "" {
		flag.Usage()
		msg.Fatalf("invalid output LCIO file name")
	}

	err := process(*oname, *compr, int32(*run), flag.Arg(0), *rate, analyzer.Config{
		Rows:    *rows,
		Columns: *cols,
	})
	if err != nil {
		msg.Fatalf("could not convert capture: %+v", err)
	}
}

func process(oname string, lvl int, run int32, dir string, rate float64, cfg analyzer.Config) error {
	frames, shape, err := decode(dir, rate, cfg)
	if err != nil {
		return fmt.Errorf("could not decode capture %q: %w", dir, err)
	}

	w, err := lcio.Create(oname)
	if err != nil {
		return fmt.Errorf("could not create output LCIO file: %w", err)
	}
	defer w.Close()

	w.SetCompressionLevel(lvl)

	err = xcnv.SWAN2LCIO(w, frames, run, shape[0], shape[1], msg)
	if err != nil {
		return fmt.Errorf("could not convert frames to LCIO: %w", err)
	}

	err = w.Close()
	if err != nil {
		return fmt.Errorf("could not close output LCIO file: %w", err)
	}

	return nil
}

func decode(dir string, rate float64, cfg analyzer.Config) ([]sdw.Frame, [2]int, error) {
	clk, err := capture.ReadFile(filepath.Join(dir, "clock.bin"))
	if err != nil {
		return nil, [2]int{}, fmt.Errorf("could not read clock channel: %w", err)
	}
	dat, err := capture.ReadFile(filepath.Join(dir, "data.bin"))
	if err != nil {
		return nil, [2]int{}, fmt.Errorf("could not read data channel: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := capture.NewChannelData(clk, rate)
	data := capture.NewChannelData(dat, rate)
	clock.Exhausted = cancel

	dec := bitstream.NewDecoder(clock, data)
	sink := &collectSink{}

	err = analyzer.New(dec, sink, cfg, msg).Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return nil, [2]int{}, err
	}

	return sink.frames, sink.shape, nil
}

// collectSink gathers all decoded frames in memory.
type collectSink struct {
	frames []sdw.Frame
	shape  [2]int
}

func (s *collectSink) AddFrame(f sdw.Frame) { s.frames = append(s.frames, f) }

func (s *collectSink) NotifyBusReset(start, end uint64) {
	msg.Printf("bus reset samples [%d, %d]", start, end)
}

func (s *collectSink) NotifyShapeChange(sample uint64, rows, columns int) {
	s.shape = [2]int{rows, columns}
}

func (s *collectSink) ReportProgress(sample uint64) {}
