// Package cover finds recipe cover photos on disk and turns them into small
// inline JPEG data URIs.
package cover

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/image/draw"
)

const (
	// DefaultMaxEdge bounds the longer side of a compressed cover in pixels.
	DefaultMaxEdge = 600
	// DefaultQuality is the JPEG quality used for re-encoding.
	DefaultQuality = 70
	// DataURIPrefix is prepended to the base64 payload.
	DataURIPrefix = "data:image/jpeg;base64,"
	// Ext is the extension cover files must carry.
	Ext = ".jpg"
)

// Options controls compression. Zero values fall back to the defaults.
type Options struct {
	MaxEdge int
	Quality int
}

func (o Options) withDefaults() Options {
	if o.MaxEdge <= 0 {
		o.MaxEdge = DefaultMaxEdge
	}
	if o.Quality <= 0 {
		o.Quality = DefaultQuality
	}
	return o
}

// Processor looks up covers named "<recipe name>.jpg" in one directory.
type Processor struct {
	dir    string
	opts   Options
	logger *zap.Logger
}

// NewProcessor creates a processor for dir. A nil logger discards output.
func NewProcessor(dir string, opts Options, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		dir:    dir,
		opts:   opts.withDefaults(),
		logger: logger,
	}
}

// Dir returns the directory covers are read from.
func (p *Processor) Dir() string { return p.dir }

// FindAndCompress returns the compressed cover for recipeName as a data URI.
// A missing directory, a missing file and any decode or encode failure all
// report false; none of them is an error for the caller.
func (p *Processor) FindAndCompress(recipeName string) (string, bool) {
	if info, err := os.Stat(p.dir); err != nil || !info.IsDir() {
		return "", false
	}
	if recipeName == "" || strings.ContainsAny(recipeName, `/\`) {
		return "", false
	}

	path := filepath.Join(p.dir, recipeName+Ext)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}

	data, err := p.compressFile(path)
	if err != nil {
		p.logger.Warn("cover processing failed",
			zap.String("path", path),
			zap.Error(err),
		)
		return "", false
	}

	p.logger.Info("cover compressed",
		zap.String("recipe", recipeName),
		zap.Int64("original_kb", info.Size()/1024),
		zap.Int("compressed_kb", len(data)/1024),
	)

	return EncodeDataURI(data), true
}

func (p *Processor) compressFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Compress(f, p.opts)
}

// Compress decodes an image, flattens it to RGB, shrinks it so neither side
// exceeds MaxEdge and re-encodes it as JPEG. Smaller images are never
// upscaled. Alpha is dropped and the stored colours are kept.
func Compress(r io.Reader, opts Options) ([]byte, error) {
	opts = opts.withDefaults()

	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	img := Resize(toRGB(src), opts.MaxEdge)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: opts.Quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// Resize scales img down so its longer side equals maxEdge, keeping the
// aspect ratio. Images already within bounds are returned as is.
func Resize(img image.Image, maxEdge int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxEdge && h <= maxEdge {
		return img
	}

	ratio := min(float64(maxEdge)/float64(w), float64(maxEdge)/float64(h))
	nw := max(int(float64(w)*ratio), 1)
	nh := max(int(float64(h)*ratio), 1)

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// toRGB drops the alpha channel of palette and alpha images. Stored colour
// values are kept as they are; nothing is composited onto a background.
func toRGB(img image.Image) image.Image {
	switch src := img.(type) {
	case *image.Paletted:
		pal := make(color.Palette, len(src.Palette))
		for i, c := range src.Palette {
			n := color.NRGBAModel.Convert(c).(color.NRGBA)
			n.A = 0xff
			pal[i] = n
		}
		return &image.Paletted{Pix: src.Pix, Stride: src.Stride, Rect: src.Rect, Palette: pal}
	case *image.NRGBA:
		return opaque(src.Bounds(), func(x, y int) color.RGBA {
			c := src.NRGBAAt(x, y)
			return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
		})
	case *image.NRGBA64:
		return opaque(src.Bounds(), func(x, y int) color.RGBA {
			c := src.NRGBA64At(x, y)
			return color.RGBA{R: uint8(c.R >> 8), G: uint8(c.G >> 8), B: uint8(c.B >> 8), A: 0xff}
		})
	case *image.RGBA, *image.RGBA64:
		// premultiplied; fully transparent pixels have no colour left to keep
		return opaque(src.Bounds(), func(x, y int) color.RGBA {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
		})
	default:
		return img
	}
}

func opaque(b image.Rectangle, at func(x, y int) color.RGBA) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.SetRGBA(x-b.Min.X, y-b.Min.Y, at(x, y))
		}
	}
	return dst
}

// EncodeDataURI wraps JPEG bytes in a data URI.
func EncodeDataURI(data []byte) string {
	return DataURIPrefix + base64.StdEncoding.EncodeToString(data)
}
