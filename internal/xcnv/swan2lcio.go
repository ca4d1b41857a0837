// Copyright 2023 The go-sdw Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xcnv

import (
	"fmt"
	"log"

	"go-hep.org/x/hep/lcio"

	"github.com/go-sdw/swan/sdw"
)

// SWAN2LCIO writes a decoded frame stream to an LCIO file, one event
// per frame.
func SWAN2LCIO(w *lcio.Writer, frames []sdw.Frame, run int32, rows, columns int, msg *log.Logger) error {
	err := w.WriteRunHeader(&lcio.RunHeader{
		RunNumber: run,
		Detector:  "SoundWire",
		Descr:     "",
		Params: lcio.Params{
			Ints: map[string][]int32{
				"Rows":    {int32(rows)},
				"Columns": {int32(columns)},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("could not write run header: %w", err)
	}

	for i, f := range frames {
		if i%100 == 0 {
			msg.Printf("processing frame %d...", i)
		}

		raw := &lcio.GenericObject{
			Data: []lcio.GenericObjectData{
				{I32s: i32sFrom(f)},
			},
		}

		evt := lcio.Event{
			RunNumber:   run,
			EventNumber: int32(i),
			TimeStamp:   int64(f.Start),
			Detector:    "SoundWire",
		}
		evt.Add(collection, raw)

		err = w.WriteEvent(&evt)
		if err != nil {
			return fmt.Errorf("could not write frame event %d: %w", i, err)
		}
	}

	return nil
}
