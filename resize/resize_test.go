package resize

import (
	"bytes"
	"math"
	"testing"
)

func solid(w, h int, r, g, b byte) []byte {
	buf := make([]byte, w*h*bpp)
	for i := 0; i < len(buf); i += bpp {
		buf[i], buf[i+1], buf[i+2] = r, g, b
	}
	return buf
}

func TestSolidColorSurvives(t *testing.T) {
	cases := []struct {
		name       string
		srcW, srcH int
		dstW, dstH int
	}{
		{"down", 100, 50, 50, 25},
		{"up", 3, 2, 7, 5},
		{"mixed", 10, 2, 4, 6},
		{"same", 8, 8, 8, 8},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := solid(tc.srcW, tc.srcH, 10, 200, 77)
			dst := make([]byte, tc.dstW*tc.dstH*bpp)
			Bilinear(src, tc.srcW, tc.srcH, dst, tc.dstW, tc.dstH)

			want := solid(tc.dstW, tc.dstH, 10, 200, 77)
			if !bytes.Equal(dst, want) {
				t.Fatalf("solid color changed: got % x", dst[:bpp])
			}
		})
	}
}

func TestBoxAveragesBlock(t *testing.T) {
	src := []byte{
		0, 0, 0, 100, 100, 100,
		200, 200, 200, 100, 100, 100,
	}
	dst := make([]byte, bpp)
	Box(src, 2, 2, dst, 1, 1)

	if dst[0] != 100 || dst[1] != 100 || dst[2] != 100 {
		t.Fatalf("expected average 100, got %v", dst)
	}
}

func TestBilinearUpscaleStaysBetweenEndpoints(t *testing.T) {
	src := []byte{0, 0, 0, 255, 255, 255}
	dst := make([]byte, 6*bpp)
	Bilinear(src, 2, 1, dst, 6, 1)

	prev := -1
	for x := 0; x < 6; x++ {
		v := int(dst[x*bpp])
		if v < prev {
			t.Fatalf("not monotonic at %d: %d < %d", x, v, prev)
		}
		prev = v
	}
	if dst[0] != 0 || dst[5*bpp] != 255 {
		t.Fatalf("endpoints changed: first=%d last=%d", dst[0], dst[5*bpp])
	}
}

func TestInvalidDimensionsLeaveDstUntouched(t *testing.T) {
	src := solid(4, 4, 1, 2, 3)
	dst := []byte{9, 9, 9}

	Bilinear(src, 4, 0, dst, 1, 1)
	Bilinear(src, 4, 4, dst, 0, 1)
	Bilinear(src[:5], 4, 4, dst, 1, 1)

	// lengths that wrap around int
	Bilinear(src, math.MaxInt/2, 4, dst, 1, 1)
	Box(src, 4, 4, dst, math.MaxInt/2, 4)

	if !bytes.Equal(dst, []byte{9, 9, 9}) {
		t.Fatalf("dst modified: %v", dst)
	}
}
