package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/jpeg"
	"image/png"
	"math"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	FormatJPEG = "jpeg"
	FormatPNG  = "png"
	FormatGIF  = "gif"
	FormatWebP = "webp"
)

// DefaultMaxPixels bounds the decoded size of an upload (40 megapixels).
const DefaultMaxPixels = 40_000_000

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrTooManyPixels     = errors.New("image dimensions exceed the pixel limit")
)

type Options struct {
	Width       int
	Height      int
	JPEGQuality int
	// MaxPixels caps width*height of the source; DefaultMaxPixels when <= 0.
	MaxPixels int64
}

// Result is an encoded image ready for upload.
type Result struct {
	Data        []byte
	ContentType string
	Format      string
	Width       int
	Height      int
}

// ContainResize scales src to fit inside Width x Height keeping its aspect
// ratio and centres it on a canvas of exactly that size. The canvas is
// transparent for formats with alpha and black for JPEG.
func ContainResize(src []byte, opts Options) (*Result, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", opts.Width, opts.Height)
	}

	if err := checkDimensions(src, opts.MaxPixels); err != nil {
		return nil, err
	}

	img, format, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, ErrUnsupportedFormat
		}
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, errors.New("image has no pixels")
	}

	canvas := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	if format == FormatJPEG {
		draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	}
	draw.CatmullRom.Scale(canvas, fitRect(bounds, opts.Width, opts.Height), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	result := &Result{Width: opts.Width, Height: opts.Height}
	switch format {
	case FormatJPEG:
		quality := opts.JPEGQuality
		if quality <= 0 || quality > 100 {
			quality = jpeg.DefaultQuality
		}
		err = jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: quality})
		result.Format, result.ContentType = FormatJPEG, "image/jpeg"
	case FormatGIF:
		err = gif.Encode(&buf, toPaletted(canvas), nil)
		result.Format, result.ContentType = FormatGIF, "image/gif"
	case FormatPNG, FormatWebP:
		err = png.Encode(&buf, canvas)
		result.Format, result.ContentType = FormatPNG, "image/png"
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", result.Format, err)
	}

	result.Data = buf.Bytes()
	return result, nil
}

// checkDimensions reads only the header so oversized images are rejected
// before any pixel buffer is allocated.
func checkDimensions(src []byte, maxPixels int64) error {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(src))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return ErrUnsupportedFormat
		}
		return fmt.Errorf("decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return errors.New("image has no pixels")
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return fmt.Errorf("%w: %dx%d", ErrTooManyPixels, cfg.Width, cfg.Height)
	}
	return nil
}

func fitRect(src image.Rectangle, width, height int) image.Rectangle {
	sw, sh := float64(src.Dx()), float64(src.Dy())
	scale := math.Min(float64(width)/sw, float64(height)/sh)

	w := max(1, int(math.Round(sw*scale)))
	h := max(1, int(math.Round(sh*scale)))
	x := (width - w) / 2
	y := (height - h) / 2
	return image.Rect(x, y, x+w, y+h)
}

// toPaletted keeps the padding transparent by reserving a palette slot for it.
func toPaletted(src *image.RGBA) *image.Paletted {
	pal := make(color.Palette, 0, len(palette.WebSafe)+1)
	pal = append(pal, color.Transparent)
	pal = append(pal, palette.WebSafe...)

	dst := image.NewPaletted(src.Bounds(), pal)
	draw.FloydSteinberg.Draw(dst, src.Bounds(), src, image.Point{})
	return dst
}
