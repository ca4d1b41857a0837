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

// LCIO2SWAN reads decoded frames back from an LCIO file.
func LCIO2SWAN(r *lcio.Reader, msg *log.Logger) ([]sdw.Frame, error) {
	var frames []sdw.Frame

	i := 0
	for r.Next() {
		if i%100 == 0 {
			msg.Printf("processing evt %d...", i)
		}
		evt := r.Event()
		obj, ok := evt.Get(collection).(*lcio.GenericObject)
		if !ok || len(obj.Data) == 0 {
			return nil, fmt.Errorf("could not find %q collection in evt %d", collection, i)
		}

		raw := obj.Data[0].I32s
		if len(raw) < frameI32s {
			return nil, fmt.Errorf("truncated frame payload in evt %d (got=%d words)", i, len(raw))
		}

		frames = append(frames, frameFrom(raw))
		i++
	}

	return frames, nil
}
