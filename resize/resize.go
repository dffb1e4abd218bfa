// Package resize scales packed RGB8 pixel buffers.
//
// The functions match thumbq.ResizeFunc and are safe to call concurrently
// on distinct destination buffers. Non-positive dimensions, or dimensions
// whose buffer length would overflow an int, leave dst untouched.
package resize

import "math"

const bpp = 3

// Bilinear scales src (srcW x srcH) into dst (dstW x dstH).
//
// When both dimensions shrink it averages the source area behind each
// destination pixel (see Box). Otherwise it interpolates between the four
// nearest source pixels.
func Bilinear(src []byte, srcW, srcH int, dst []byte, dstW, dstH int) {
	if !valid(src, srcW, srcH, dst, dstW, dstH) {
		return
	}
	if dstW <= srcW && dstH <= srcH {
		box(src, srcW, srcH, dst, dstW, dstH)
		return
	}
	interpolate(src, srcW, srcH, dst, dstW, dstH)
}

// Box scales src into dst by averaging, for each destination pixel, the
// block of source pixels it covers. Every destination pixel covers at
// least one source pixel, so Box also upscales, as nearest neighbour.
func Box(src []byte, srcW, srcH int, dst []byte, dstW, dstH int) {
	if !valid(src, srcW, srcH, dst, dstW, dstH) {
		return
	}
	box(src, srcW, srcH, dst, dstW, dstH)
}

func valid(src []byte, srcW, srcH int, dst []byte, dstW, dstH int) bool {
	if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
		return false
	}
	if srcW > math.MaxInt/bpp/srcH || dstW > math.MaxInt/bpp/dstH {
		return false
	}
	return len(src) >= srcW*srcH*bpp && len(dst) >= dstW*dstH*bpp
}

func box(src []byte, srcW, srcH int, dst []byte, dstW, dstH int) {
	for y := 0; y < dstH; y++ {
		y0 := y * srcH / dstH
		y1 := max((y+1)*srcH/dstH, y0+1)
		for x := 0; x < dstW; x++ {
			x0 := x * srcW / dstW
			x1 := max((x+1)*srcW/dstW, x0+1)

			var r, g, b, n int
			for sy := y0; sy < y1; sy++ {
				row := sy * srcW * bpp
				for sx := x0; sx < x1; sx++ {
					i := row + sx*bpp
					r += int(src[i])
					g += int(src[i+1])
					b += int(src[i+2])
					n++
				}
			}

			o := (y*dstW + x) * bpp
			dst[o] = byte((r + n/2) / n)
			dst[o+1] = byte((g + n/2) / n)
			dst[o+2] = byte((b + n/2) / n)
		}
	}
}

// interpolate samples at destination pixel centres mapped into source
// space, in 8.8 fixed point.
func interpolate(src []byte, srcW, srcH int, dst []byte, dstW, dstH int) {
	for y := 0; y < dstH; y++ {
		y0, y1, wy := axis(y, srcH, dstH)
		for x := 0; x < dstW; x++ {
			x0, x1, wx := axis(x, srcW, dstW)

			p00 := (y0*srcW + x0) * bpp
			p01 := (y0*srcW + x1) * bpp
			p10 := (y1*srcW + x0) * bpp
			p11 := (y1*srcW + x1) * bpp
			o := (y*dstW + x) * bpp
			for c := 0; c < bpp; c++ {
				top := int(src[p00+c])*(256-wx) + int(src[p01+c])*wx
				bot := int(src[p10+c])*(256-wx) + int(src[p11+c])*wx
				dst[o+c] = byte((top*(256-wy) + bot*wy + 1<<15) >> 16)
			}
		}
	}
}

// axis maps destination index d onto the two neighbouring source indices
// and the weight of the second one, out of 256.
func axis(d, srcN, dstN int) (int, int, int) {
	f := (2*d+1)*srcN*256/(2*dstN) - 128
	if f < 0 {
		f = 0
	}
	i0 := f >> 8
	if i0 >= srcN-1 {
		return srcN - 1, srcN - 1, 0
	}
	return i0, i0 + 1, f & 0xff
}
