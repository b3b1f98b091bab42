package vision

import "image"

// OpenHorizontal keeps only runs of mask pixels at least length wide. Erosion
// followed by dilation with a 1×length kernel, the standard trick for pulling
// ruled table lines out of a page.
func OpenHorizontal(mask *image.Gray, length int) *image.Gray {
	return dilateRuns(erodeRuns(mask, length, true), length, true)
}

// OpenVertical is the 90° counterpart of OpenHorizontal.
func OpenVertical(mask *image.Gray, length int) *image.Gray {
	return dilateRuns(erodeRuns(mask, length, false), length, false)
}

// Union merges two masks; a pixel is set if either input sets it.
func Union(a, b *image.Gray) *image.Gray {
	bounds := a.Bounds()
	out := image.NewGray(bounds)
	for i := range a.Pix {
		if a.Pix[i] > 0 || b.Pix[i] > 0 {
			out.Pix[i] = 255
		}
	}
	return out
}

func erodeRuns(mask *image.Gray, length int, horizontal bool) *image.Gray {
	bounds := mask.Bounds()
	out := image.NewGray(bounds)
	half := length / 2

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			keep := true
			for k := -half; k <= half && keep; k++ {
				px, py := x, y
				if horizontal {
					px += k
				} else {
					py += k
				}
				if px < bounds.Min.X || px >= bounds.Max.X || py < bounds.Min.Y || py >= bounds.Max.Y ||
					mask.GrayAt(px, py).Y == 0 {
					keep = false
				}
			}
			if keep {
				out.SetGray(x, y, grayOn)
			}
		}
	}
	return out
}

func dilateRuns(mask *image.Gray, length int, horizontal bool) *image.Gray {
	bounds := mask.Bounds()
	out := image.NewGray(bounds)
	half := length / 2

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if mask.GrayAt(x, y).Y == 0 {
				continue
			}
			for k := -half; k <= half; k++ {
				px, py := x, y
				if horizontal {
					px += k
				} else {
					py += k
				}
				if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
					out.SetGray(px, py, grayOn)
				}
			}
		}
	}
	return out
}
