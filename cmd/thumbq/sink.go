package main

import (
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"

	lg "github.com/Andrej220/go-utils/zlog"

	"github.com/Andrej220/go-utils/thumbq"
)

type rgbImage struct {
	buf    *thumbq.Buffer
	width  int
	height int
}

func loadRGB(path string) (rgbImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return rgbImage{}, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return rgbImage{}, err
	}
	return toRGB(img), nil
}

// toRGB flattens img into packed RGB8, dropping alpha.
func toRGB(img image.Image) rgbImage {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := make([]byte, 0, w*h*thumbq.BytesPerPixel)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			pix = append(pix, byte(r>>8), byte(g>>8), byte(bl>>8))
		}
	}
	return rgbImage{buf: &thumbq.Buffer{Pix: pix}, width: w, height: h}
}

// fromRGB wraps packed RGB8 into an opaque RGBA image for encoding.
func fromRGB(pix []byte, w, h int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	for i, j := 0, 0; i+2 < len(pix) && j+3 < len(out.Pix); i, j = i+3, j+4 {
		out.Pix[j] = pix[i]
		out.Pix[j+1] = pix[i+1]
		out.Pix[j+2] = pix[i+2]
		out.Pix[j+3] = 0xff
	}
	return out
}

// fileSink writes each delivered thumbnail as a PNG file.
type fileSink struct {
	path string
	ctx  context.Context
}

func (s *fileSink) Deliver(pix []byte, w, h int) {
	logger := lg.FromContext(s.ctx)
	if err := writePNG(s.path, fromRGB(pix, w, h)); err != nil {
		logger.Error("write thumbnail", lg.String("path", s.path), lg.Any("error", err))
		return
	}
	logger.Info("thumbnail written",
		lg.String("path", s.path),
		lg.Int("width", w),
		lg.Int("height", h),
	)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
