package gradient

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPixelCorners(t *testing.T) {
	const w, h = 320, 240
	assert.Equal(t, uint32(0xffff0000), Pixel(0, 0, w, h), "top left")
	assert.Equal(t, uint32(0xff00fe00), Pixel(w-1, 0, w, h), "top right")
	assert.Equal(t, uint32(0xff0100fd), Pixel(0, h-1, w, h), "bottom left")
	assert.Equal(t, uint32(0xff000100), Pixel(w-1, h-1, w, h), "bottom right")

	for y := uint32(0); y < h; y += 17 {
		for x := uint32(0); x < w; x += 13 {
			assert.Equal(t, uint32(0xff), Pixel(x, y, w, h)>>24, "opaque at %d,%d", x, y)
		}
	}
}

func TestFill(t *testing.T) {
	const w, h = 4, 3
	stride := w*4 + 8
	pix := make([]byte, stride*h)
	require.NoError(t, Fill(pix, w, h, stride))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			got := binary.NativeEndian.Uint32(pix[y*stride+x*4:])
			assert.Equal(t, Pixel(uint32(x), uint32(y), w, h), got)
		}
		assert.Equal(t, make([]byte, 8), pix[y*stride+w*4:(y+1)*stride], "row padding untouched")
	}
}

func TestFillRejectsShortBuffer(t *testing.T) {
	assert.Error(t, Fill(make([]byte, 10), 4, 4, 16))
	assert.Error(t, Fill(make([]byte, 64), 4, 4, 8))
	assert.Error(t, Fill(nil, 0, 4, 16))
}
