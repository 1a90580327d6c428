package imaging

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestContainResizePNGLetterboxesTransparent(t *testing.T) {
	src := encodePNG(t, solid(600, 300, color.RGBA{R: 255, A: 255}))

	res, err := ContainResize(src, Options{Width: 300, Height: 300})
	require.NoError(t, err)
	assert.Equal(t, "image/png", res.ContentType)

	out, err := png.Decode(bytes.NewReader(res.Data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 300, 300), out.Bounds())

	_, _, _, top := out.At(150, 10).RGBA()
	assert.Zero(t, top, "padding above a wide image should be transparent")

	r, _, _, a := out.At(150, 150).RGBA()
	assert.NotZero(t, a)
	assert.NotZero(t, r)
}

func TestContainResizeJPEGPadsBlack(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, solid(100, 400, color.White), nil))

	res, err := ContainResize(buf.Bytes(), Options{Width: 300, Height: 300, JPEGQuality: 90})
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", res.ContentType)

	out, err := jpeg.Decode(bytes.NewReader(res.Data))
	require.NoError(t, err)
	assert.Equal(t, 300, out.Bounds().Dx())

	r, g, b, _ := out.At(5, 150).RGBA()
	assert.Less(t, r, uint32(0x2000))
	assert.Less(t, g, uint32(0x2000))
	assert.Less(t, b, uint32(0x2000))
}

func TestContainResizeGIF(t *testing.T) {
	var buf bytes.Buffer
	pal := color.Palette{color.Black, color.White}
	src := image.NewPaletted(image.Rect(0, 0, 40, 20), pal)
	require.NoError(t, gif.Encode(&buf, src, nil))

	res, err := ContainResize(buf.Bytes(), Options{Width: 300, Height: 300})
	require.NoError(t, err)
	assert.Equal(t, "image/gif", res.ContentType)

	out, err := gif.Decode(bytes.NewReader(res.Data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 300, 300), out.Bounds())
}

func TestContainResizeRejectsGarbage(t *testing.T) {
	_, err := ContainResize([]byte("definitely not an image"), Options{Width: 300, Height: 300})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = ContainResize(nil, Options{})
	assert.Error(t, err)
}

// pngHeader returns a PNG signature and IHDR chunk declaring w x h. It is
// enough for image.DecodeConfig but carries no pixel data.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 0 // grayscale

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestContainResizeRejectsHugeDimensions(t *testing.T) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(pngHeader(16000, 16000)))
	require.NoError(t, err)
	require.Equal(t, "png", format)
	require.Equal(t, 16000, cfg.Width)

	_, err = ContainResize(pngHeader(16000, 16000), Options{Width: 300, Height: 300})
	assert.ErrorIs(t, err, ErrTooManyPixels)
}

func TestContainResizeHonoursMaxPixels(t *testing.T) {
	src := encodePNG(t, image.NewGray(image.Rect(0, 0, 200, 100)))

	_, err := ContainResize(src, Options{Width: 300, Height: 300, MaxPixels: 10_000})
	assert.ErrorIs(t, err, ErrTooManyPixels)

	_, err = ContainResize(src, Options{Width: 300, Height: 300, MaxPixels: 20_000})
	assert.NoError(t, err)
}

func TestFitRect(t *testing.T) {
	assert.Equal(t, image.Rect(0, 75, 300, 225), fitRect(image.Rect(0, 0, 600, 300), 300, 300))
	assert.Equal(t, image.Rect(75, 0, 225, 300), fitRect(image.Rect(0, 0, 100, 200), 300, 300))
	assert.Equal(t, image.Rect(0, 0, 300, 300), fitRect(image.Rect(0, 0, 10, 10), 300, 300))
}
