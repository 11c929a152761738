package utils

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeJPEG(t *testing.T, data []byte) image.Image {
	t.Helper()

	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func TestResizeImage(t *testing.T) {
	src := pngBytes(t, 200, 100)

	tests := []struct {
		name     string
		maxWidth int
		wantW    int
		wantH    int
	}{
		{"downscale keeps aspect ratio", 100, 100, 50},
		{"no resize when smaller", 400, 200, 100},
		{"no resize when disabled", 0, 200, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ResizeImage(src, tt.maxWidth, 85)
			require.NoError(t, err)

			img := decodeJPEG(t, out)
			assert.Equal(t, tt.wantW, img.Bounds().Dx())
			assert.Equal(t, tt.wantH, img.Bounds().Dy())
		})
	}
}

func TestResizeImage_InvalidData(t *testing.T) {
	_, err := ResizeImage([]byte("not an image"), 100, 85)
	assert.ErrorContains(t, err, "decode image")
}

func TestJPEGDataURI(t *testing.T) {
	uri := JPEGDataURI([]byte{0xff, 0xd8, 0xff})

	require.True(t, strings.HasPrefix(uri, "data:image/jpeg;base64,"))
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/jpeg;base64,"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, raw)
}
