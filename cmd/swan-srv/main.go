// Copyright 2023 The go-sdw Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command swan-srv starts a TDAQ server decoding a SoundWire capture
// and publishing frames on its /frames output stream.
package main // import "github.com/go-sdw/swan/cmd/swan-srv"

import (
	"context"
	"encoding/binary"
	"errors"
	"log"
	"os"
	"path/filepath"

	"github.com/go-daq/tdaq"
	"github.com/go-daq/tdaq/flags"

	"github.com/go-sdw/swan/analyzer"
	"github.com/go-sdw/swan/bitstream"
	"github.com/go-sdw/swan/capture"
	"github.com/go-sdw/swan/sdw"
)

func main() {
	cmd := flags.New()

	dev := swanSrv{
		dir:  cmd.Args[0],
		rate: 500e6,
	}

	srv := tdaq.New(cmd, os.Stdout)
	srv.CmdHandle("/config", dev.OnConfig)
	srv.CmdHandle("/init", dev.OnInit)
	srv.CmdHandle("/reset", dev.OnReset)
	srv.CmdHandle("/start", dev.OnStart)
	srv.CmdHandle("/stop", dev.OnStop)
	srv.CmdHandle("/quit", dev.OnQuit)

	srv.OutputHandle("/frames", dev.frames)

	srv.RunHandle(dev.run)

	err := srv.Run(context.Background())
	if err != nil {
		log.Panicf("error: %+v", err)
	}
}

// frameSize is the wire size of one frame record on /frames:
// start, end and control word as u64, then a flags byte.
const frameSize = 25

type swanSrv struct {
	dir  string
	rate float64
	cfg  analyzer.Config

	n    int
	data chan []byte
}

func (dev *swanSrv) OnConfig(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /config command...")
	return nil
}

func (dev *swanSrv) OnInit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /init command...")
	dev.data = make(chan []byte, 1024)
	dev.n = 0
	return nil
}

func (dev *swanSrv) OnReset(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /reset command...")
	dev.data = make(chan []byte, 1024)
	dev.n = 0
	return nil
}

func (dev *swanSrv) OnStart(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /start command...")
	return nil
}

func (dev *swanSrv) OnStop(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /stop command... -> n=%d", dev.n)
	return nil
}

func (dev *swanSrv) OnQuit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /quit command...")
	return nil
}

func (dev *swanSrv) frames(ctx tdaq.Context, dst *tdaq.Frame) error {
	select {
	case <-ctx.Ctx.Done():
		dst.Body = nil
		return nil
	case data := <-dev.data:
		dst.Body = data
	}
	return nil
}

func (dev *swanSrv) run(ctx tdaq.Context) error {
	clk, err := capture.ReadFile(filepath.Join(dev.dir, "clock.bin"))
	if err != nil {
		ctx.Msg.Errorf("could not read clock channel: %+v", err)
		return err
	}
	dat, err := capture.ReadFile(filepath.Join(dev.dir, "data.bin"))
	if err != nil {
		ctx.Msg.Errorf("could not read data channel: %+v", err)
		return err
	}

	rctx, cancel := context.WithCancel(ctx.Ctx)
	defer cancel()

	clock := capture.NewChannelData(clk, dev.rate)
	data := capture.NewChannelData(dat, dev.rate)
	clock.Exhausted = cancel

	dec := bitstream.NewDecoder(clock, data)
	sink := &streamSink{dev: dev, ctx: ctx}

	err = analyzer.New(dec, sink, dev.cfg, nil).Run(rctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		ctx.Msg.Errorf("could not decode capture: %+v", err)
		return err
	}

	ctx.Msg.Infof("decoded %d frames", dev.n)
	return nil
}

// streamSink publishes decoded frames on the /frames output channel.
type streamSink struct {
	dev *swanSrv
	ctx tdaq.Context
}

func (s *streamSink) AddFrame(f sdw.Frame) {
	buf := make([]byte, frameSize)
	binary.LittleEndian.PutUint64(buf[0:8], f.Start)
	binary.LittleEndian.PutUint64(buf[8:16], f.End)
	binary.LittleEndian.PutUint64(buf[16:24], f.Ctrl)
	buf[24] = f.Flags

	select {
	case s.dev.data <- buf:
		s.dev.n++
	default:
		// drop the frame rather than stall the decode loop.
	}
}

func (s *streamSink) NotifyBusReset(start, end uint64) {
	s.ctx.Msg.Infof("bus reset samples [%d, %d]", start, end)
}

func (s *streamSink) NotifyShapeChange(sample uint64, rows, columns int) {
	s.ctx.Msg.Infof("frame shape %dx%d from sample %d", rows, columns, sample)
}

func (s *streamSink) ReportProgress(sample uint64) {}
