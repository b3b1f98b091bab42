package vision

import (
	"image"
	"image/color"
	"math"
	"sort"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

const inkThreshold = 128 // gray values below this count as ink

// Preprocess normalizes a raw page for recognition: grayscale, median
// denoise, histogram equalization, adaptive binarization and deskew.
func Preprocess(src image.Image) *image.Gray {
	gray := Grayscale(src)
	denoised := medianFilter(gray)
	enhanced := equalize(denoised)
	binary := AdaptiveThreshold(enhanced, 15, 2, false)
	return deskew(binary)
}

func Grayscale(src image.Image) *image.Gray {
	if g, ok := src.(*image.Gray); ok {
		return g
	}
	bounds := src.Bounds()
	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, src, bounds.Min, draw.Src)
	return gray
}

// medianFilter applies a 3x3 median, enough to knock out salt-and-pepper
// speckle from scans without eating thin strokes.
func medianFilter(src *image.Gray) *image.Gray {
	bounds := src.Bounds()
	out := image.NewGray(bounds)
	var window [9]uint8

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			n := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					px, py := x+dx, y+dy
					if px < bounds.Min.X || px >= bounds.Max.X || py < bounds.Min.Y || py >= bounds.Max.Y {
						continue
					}
					window[n] = src.GrayAt(px, py).Y
					n++
				}
			}
			sort.Slice(window[:n], func(i, j int) bool { return window[i] < window[j] })
			out.SetGray(x, y, color.Gray{Y: window[n/2]})
		}
	}
	return out
}

// equalize stretches the gray histogram over the full range to lift contrast
// on washed-out scans.
func equalize(src *image.Gray) *image.Gray {
	bounds := src.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return src
	}

	var hist [256]int
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			hist[src.GrayAt(x, y).Y]++
		}
	}

	var lut [256]uint8
	cum := 0
	for i := 0; i < 256; i++ {
		cum += hist[i]
		lut[i] = uint8(math.Round(float64(cum) * 255.0 / float64(total)))
	}

	out := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			out.SetGray(x, y, color.Gray{Y: lut[src.GrayAt(x, y).Y]})
		}
	}
	return out
}

// AdaptiveThreshold binarizes against the mean of a local window minus a
// constant bias. With invert=false ink stays black on white; with invert=true
// the output is an ink mask (ink = 255).
func AdaptiveThreshold(src *image.Gray, window, bias int, invert bool) *image.Gray {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := image.NewGray(bounds)
	if w == 0 || h == 0 {
		return out
	}

	// Summed-area table for O(1) window means.
	integral := make([]int64, (w+1)*(h+1))
	stride := w + 1
	for y := 0; y < h; y++ {
		var rowSum int64
		for x := 0; x < w; x++ {
			rowSum += int64(src.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
			integral[(y+1)*stride+x+1] = integral[y*stride+x+1] + rowSum
		}
	}

	half := window / 2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			x0, y0 := max(0, x-half), max(0, y-half)
			x1, y1 := min(w-1, x+half), min(h-1, y+half)
			area := int64((x1 - x0 + 1) * (y1 - y0 + 1))
			sum := integral[(y1+1)*stride+x1+1] - integral[y0*stride+x1+1] -
				integral[(y1+1)*stride+x0] + integral[y0*stride+x0]
			mean := sum / area

			dark := int64(src.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y) < mean-int64(bias)
			v := uint8(255)
			if dark != invert {
				v = 0
			}
			out.SetGray(bounds.Min.X+x, bounds.Min.Y+y, color.Gray{Y: v})
		}
	}
	return out
}

// Invert flips a binary image in place-copy fashion.
func Invert(src *image.Gray) *image.Gray {
	bounds := src.Bounds()
	out := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			out.SetGray(x, y, color.Gray{Y: 255 - src.GrayAt(x, y).Y})
		}
	}
	return out
}

// Crop copies a rectangular region into a fresh image anchored at (0,0).
func Crop(src *image.Gray, rect image.Rectangle) *image.Gray {
	rect = rect.Intersect(src.Bounds())
	out := image.NewGray(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(out, out.Bounds(), src, rect.Min, draw.Src)
	return out
}

// deskew estimates the dominant skew from the second-order moments of the ink
// distribution and rotates the page upright. Nearly straight pages pass
// through untouched.
func deskew(src *image.Gray) *image.Gray {
	angle := skewAngle(src)
	if math.Abs(angle) < 0.5 || math.Abs(angle) > 45 {
		return src
	}
	return rotate(src, -angle)
}

func skewAngle(src *image.Gray) float64 {
	bounds := src.Bounds()
	var n, sumX, sumY float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if src.GrayAt(x, y).Y < inkThreshold {
				n++
				sumX += float64(x)
				sumY += float64(y)
			}
		}
	}
	if n < 64 {
		return 0
	}

	meanX, meanY := sumX/n, sumY/n
	var mu11, mu20, mu02 float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if src.GrayAt(x, y).Y < inkThreshold {
				dx, dy := float64(x)-meanX, float64(y)-meanY
				mu11 += dx * dy
				mu20 += dx * dx
				mu02 += dy * dy
			}
		}
	}
	if mu20 == mu02 {
		return 0
	}

	theta := 0.5 * math.Atan2(2*mu11, mu20-mu02)
	return theta * 180 / math.Pi
}

func rotate(src *image.Gray, degrees float64) *image.Gray {
	bounds := src.Bounds()
	out := image.NewGray(bounds)
	// White page background for the revealed corners.
	for i := range out.Pix {
		out.Pix[i] = 255
	}

	rad := degrees * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	cx := float64(bounds.Min.X+bounds.Max.X) / 2
	cy := float64(bounds.Min.Y+bounds.Max.Y) / 2

	draw.CatmullRom.Transform(out, f64.Aff3{
		cos, -sin, cx - cos*cx + sin*cy,
		sin, cos, cy - sin*cx - cos*cy,
	}, src, bounds, draw.Src, nil)
	return out
}
