package main

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Andrej220/go-utils/thumbq"
	"github.com/Andrej220/go-utils/thumbq/resize"
)

func TestToRGBDropsAlphaAndOffsetsBounds(t *testing.T) {
	img := image.NewNRGBA(image.Rect(5, 5, 7, 6))
	img.Set(5, 5, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	img.Set(6, 5, color.NRGBA{R: 200, G: 100, B: 50, A: 255})

	got := toRGB(img)
	if got.width != 2 || got.height != 1 {
		t.Fatalf("expected 2x1, got %dx%d", got.width, got.height)
	}
	want := []byte{10, 20, 30, 200, 100, 50}
	for i := range want {
		if got.buf.Pix[i] != want[i] {
			t.Fatalf("pix[%d] = %d, want %d", i, got.buf.Pix[i], want[i])
		}
	}

	back := fromRGB(got.buf.Pix, 2, 1)
	if c := back.RGBAAt(1, 0); c != (color.RGBA{R: 200, G: 100, B: 50, A: 255}) {
		t.Fatalf("unexpected pixel after fromRGB: %v", c)
	}
}

func TestAbsPathAndOutputPath(t *testing.T) {
	if absPath("a.png") != absPath("./a.png") {
		t.Fatalf("expected equal keys, got %q and %q", absPath("a.png"), absPath("./a.png"))
	}
	if p := outputPath("out", "/x/y/photo.jpeg"); p != filepath.Join("out", "photo.thumb.png") {
		t.Fatalf("unexpected output path %q", p)
	}
}

func writeGray(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	if err := writePNG(path, img); err != nil {
		t.Fatalf("write source: %v", err)
	}
}

func TestSubmitAllCoalescesRepeatedFile(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.png")
	repeated := filepath.Join(dir, "repeated.png")
	writeGray(t, first, 4, 4)
	writeGray(t, repeated, 4, 4)

	release := make(chan struct{})
	m := &thumbq.AtomicMetrics{}
	s := thumbq.New(t.Context(), m, thumbq.Options{
		Resize: func(src []byte, srcW, srcH int, dst []byte, dstW, dstH int) {
			<-release
			resize.Bilinear(src, srcW, srcH, dst, dstW, dstH)
		},
	})
	defer s.Close()

	// first holds the worker, so repeated is still queued when listed again
	n := submitAll(t.Context(), s, []string{first, repeated, repeated, filepath.Join(dir, "missing.png")}, 2, dir)
	if n != 3 {
		t.Fatalf("expected 3 accepted submissions, got %d", n)
	}
	if m.Coalesced() != 1 {
		t.Fatalf("expected the repeat to coalesce, coalesced=%d", m.Coalesced())
	}

	close(release)
	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()
	if err := waitSettled(ctx, m, uint64(n)); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if m.Delivered() != 2 {
		t.Fatalf("expected 2 deliveries, got %d", m.Delivered())
	}
	for _, name := range []string{"first.thumb.png", "repeated.thumb.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("missing thumbnail %s: %v", name, err)
		}
	}
}

func TestExecuteWritesThumbnail(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "wide.png")

	writeGray(t, src, 40, 20)

	out := filepath.Join(dir, "thumbs")
	if err := Execute([]string{"thumbq", "--height", "10", "--out", out, src, src}); err != nil {
		t.Fatalf("execute: %v", err)
	}

	f, err := os.Open(filepath.Join(out, "wide.thumb.png"))
	if err != nil {
		t.Fatalf("open thumbnail: %v", err)
	}
	defer f.Close()
	thumb, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	if b := thumb.Bounds(); b.Dx() != 20 || b.Dy() != 10 {
		t.Fatalf("expected 20x10 thumbnail, got %dx%d", b.Dx(), b.Dy())
	}
}
