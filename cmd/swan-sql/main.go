// Copyright 2023 The go-sdw Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/go-sdw/swan/framedb"
	"github.com/go-sdw/swan/sdw"
	_ "github.com/go-sql-driver/mysql"
)

const (
	dbname = "swansrv"
)

func main() {
	log.SetPrefix("swan-sql: ")
	log.SetFlags(0)

	var (
		session = flag.Int64("session", 0, "decode session to inspect (0=last)")
	)

	flag.Parse()

	db, err := framedb.Open(dbname)
	if err != nil {
		log.Fatalf("could not open swan db: %+v", err)
	}
	defer db.Close()

	err = doQuery(db, *session)
	if err != nil {
		log.Fatalf("could not do query: %+v", err)
	}
}

func doQuery(db *framedb.DB, session int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if session == 0 {
		v, err := db.LastSessionID(ctx)
		if err != nil {
			return fmt.Errorf("could not get last session id: %w", err)
		}
		session = v
		log.Printf("session: %d", session)
	}

	info, err := db.Session(ctx, session)
	if err != nil {
		return fmt.Errorf("could not get session %d: %w", session, err)
	}
	log.Printf("capture: %q (%dx%d)", info.Capture, info.Rows, info.Columns)

	frames, err := db.FlaggedFrames(ctx, session)
	if err != nil {
		return fmt.Errorf("could not get flagged frames of session %d: %w", session, err)
	}

	log.Printf("flagged frames: %d", len(frames))
	for _, row := range frames {
		f := row.Frame()
		ctrl := f.ControlWord()

		var flags string
		if f.Flags&sdw.FlagParityBad != 0 {
			flags += " PAR!"
		}
		if f.Flags&sdw.FlagSyncLoss != 0 {
			flags += " SYNC!"
		}

		log.Printf("  %12d %12d %-5s dsync=%x%s",
			f.Start, f.End, ctrl.OpCode(), ctrl.DynamicSync(), flags,
		)
	}

	return nil
}
