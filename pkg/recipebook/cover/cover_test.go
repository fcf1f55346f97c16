package cover

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 80, A: 128})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func decodeDataURI(t *testing.T, uri string) image.Image {
	t.Helper()
	if !strings.HasPrefix(uri, DataURIPrefix) {
		t.Fatalf("Missing data URI prefix: %.40s", uri)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, DataURIPrefix))
	if err != nil {
		t.Fatalf("base64: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Result is not a JPEG: %v", err)
	}
	return img
}

func TestFindAndCompressDownscalesWide(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "煎蛋.jpg"), 1200, 800)

	uri, found := NewProcessor(dir, Options{}, nil).FindAndCompress("煎蛋")
	if !found {
		t.Fatal("Cover should be found")
	}

	b := decodeDataURI(t, uri).Bounds()
	if b.Dx() != 600 || b.Dy() != 400 {
		t.Errorf("Expected 600x400, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestFindAndCompressDownscalesTall(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "面.jpg"), 500, 1500)

	uri, found := NewProcessor(dir, Options{MaxEdge: 300}, nil).FindAndCompress("面")
	if !found {
		t.Fatal("Cover should be found")
	}

	b := decodeDataURI(t, uri).Bounds()
	if b.Dx() != 100 || b.Dy() != 300 {
		t.Errorf("Expected 100x300, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestFindAndCompressDoesNotUpscale(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "small.jpg"), 120, 90)

	uri, found := NewProcessor(dir, Options{}, nil).FindAndCompress("small")
	if !found {
		t.Fatal("Cover should be found")
	}

	b := decodeDataURI(t, uri).Bounds()
	if b.Dx() != 120 || b.Dy() != 90 {
		t.Errorf("Expected 120x90, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestFindAndCompressPalettedImage(t *testing.T) {
	dir := t.TempDir()
	img := image.NewPaletted(image.Rect(0, 0, 40, 40), color.Palette{color.Black, color.White, color.Transparent})
	var buf bytes.Buffer
	if err := gif.Encode(&buf, img, nil); err != nil {
		t.Fatalf("gif.Encode: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "gif.jpg"), buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	uri, found := NewProcessor(dir, Options{}, nil).FindAndCompress("gif")
	if !found {
		t.Fatal("Paletted cover should be converted and found")
	}
	decodeDataURI(t, uri)
}

func TestFindAndCompressMissing(t *testing.T) {
	dir := t.TempDir()

	if uri, found := NewProcessor(dir, Options{}, nil).FindAndCompress("不存在"); found || uri != "" {
		t.Errorf("Missing file should not be found, got %q", uri)
	}
	if _, found := NewProcessor(filepath.Join(dir, "nope"), Options{}, nil).FindAndCompress("x"); found {
		t.Error("Missing directory should not be found")
	}
}

func TestFindAndCompressCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "坏图.jpg"), []byte("not an image"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, found := NewProcessor(dir, Options{}, nil).FindAndCompress("坏图"); found {
		t.Error("Corrupt cover should be treated as not found")
	}
}

func TestFindAndCompressRejectsPathNames(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	writePNG(t, filepath.Join(sub, "a.jpg"), 10, 10)

	if _, found := NewProcessor(dir, Options{}, nil).FindAndCompress("sub/a"); found {
		t.Error("Names containing separators should not resolve into subdirectories")
	}
}

func TestCompressQualityAffectsSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "q.jpg")
	writePNG(t, path, 400, 400)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	low, err := Compress(bytes.NewReader(data), Options{Quality: 10})
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	high, err := Compress(bytes.NewReader(data), Options{Quality: 95})
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if len(low) >= len(high) {
		t.Errorf("Quality 10 (%d bytes) should be smaller than quality 95 (%d bytes)", len(low), len(high))
	}
}

func TestResizeKeepsSmallImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 600, 600))
	if got := Resize(img, 600); got != image.Image(img) {
		t.Error("Image at the limit should be returned unchanged")
	}
}

func rgbAt(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func TestToRGBKeepsStoredColours(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 200, G: 50, B: 50, A: 0})
	src.SetNRGBA(1, 0, color.NRGBA{R: 200, G: 50, B: 50, A: 128})

	got := toRGB(src)
	want := color.RGBA{R: 200, G: 50, B: 50, A: 0xff}
	for x := 0; x < 2; x++ {
		if c := rgbAt(got, x, 0); c != want {
			t.Errorf("Pixel %d: got %v, want %v", x, c, want)
		}
	}
}

func TestToRGBWide(t *testing.T) {
	src := image.NewNRGBA64(image.Rect(5, 5, 6, 6))
	src.SetNRGBA64(5, 5, color.NRGBA64{R: 0xc800, G: 0x3200, B: 0x3200, A: 0})

	got := toRGB(src)
	if b := got.Bounds(); b.Dx() != 1 || b.Dy() != 1 {
		t.Fatalf("Expected 1x1 image, got %v", b)
	}
	if c := rgbAt(got, 0, 0); c != (color.RGBA{R: 200, G: 50, B: 50, A: 0xff}) {
		t.Errorf("got %v, want 200,50,50", c)
	}
}

func TestToRGBPalette(t *testing.T) {
	src := image.NewPaletted(image.Rect(0, 0, 1, 1), color.Palette{color.NRGBA{R: 10, G: 20, B: 30, A: 0}})

	got := toRGB(src)
	if c := rgbAt(got, 0, 0); c != (color.RGBA{R: 10, G: 20, B: 30, A: 0xff}) {
		t.Errorf("got %v, want 10,20,30 opaque", c)
	}
	if _, _, _, a := src.Palette[0].RGBA(); a != 0 {
		t.Error("Source palette should not be modified")
	}
}

func TestCompressTranslucentKeepsColour(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for i := 0; i < len(src.Pix); i += 4 {
		copy(src.Pix[i:], []uint8{200, 50, 50, 128})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}

	data, err := Compress(&buf, Options{})
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("jpeg.Decode: %v", err)
	}

	c := rgbAt(img, 16, 16)
	near := func(got, want uint8) bool { return max(got, want)-min(got, want) <= 10 }
	if !near(c.R, 200) || !near(c.G, 50) || !near(c.B, 50) {
		t.Errorf("Decoded pixel %v, want about 200,50,50", c)
	}
}
