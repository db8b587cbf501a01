// Package gradient paints the test pattern shmpaper presents.
package gradient

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Pixel returns the opaque ARGB8888 colour at (x, y) of a width x height
// image.
func Pixel(x, y, width, height uint32) uint32 {
	const a = 0xff
	r := min((width-x)*0xff/width, (height-y)*0xff/height)
	g := min(x*0xff/width, (height-y)*0xff/height)
	b := min((width-x)*0xff/width, y*0xff/height)
	return a<<24 | r<<16 | g<<8 | b
}

// Fill paints pix, which holds rows of stride bytes, in native byte order
// as wl_shm expects.
func Fill(pix []byte, width, height, stride int) error {
	if width <= 0 || height <= 0 {
		return errors.Errorf("gradient: invalid size %dx%d", width, height)
	}
	if stride < width*4 {
		return errors.Errorf("gradient: stride %d shorter than %d pixels", stride, width)
	}
	if len(pix) < stride*(height-1)+width*4 {
		return errors.Errorf("gradient: %d bytes cannot hold %dx%d at stride %d", len(pix), width, height, stride)
	}
	w, h := uint32(width), uint32(height)
	for y := uint32(0); y < h; y++ {
		row := pix[int(y)*stride:]
		for x := uint32(0); x < w; x++ {
			binary.NativeEndian.PutUint32(row[x*4:], Pixel(x, y, w, h))
		}
	}
	return nil
}
