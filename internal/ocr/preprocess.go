package ocr

import (
	"image"
	"image/color"
	"sort"

	"golang.org/x/image/draw"
)

// Preprocessing pipeline for scanned pages before OCR: grayscale, upscale to
// a minimum width, median denoise, binarize, sharpen, then contrast and
// brightness boosts. Two binarization variants are produced per page since
// adaptive and global thresholding win on different scan qualities.

const (
	adaptiveWindow = 15
	adaptiveBias   = 5
	contrastFactor = 3.0
	brightnessGain = 1.3
)

// PreparePage returns the candidate images for one page: adaptive-threshold
// and global-threshold variants of the cleaned-up grayscale page.
func PreparePage(img image.Image, minWidth int) []*image.Gray {
	base := toGray(img)
	base = upscale(base, minWidth)
	base = medianDenoise(base)

	variants := []*image.Gray{
		adaptiveThreshold(base, adaptiveWindow, adaptiveBias),
		globalThreshold(base),
	}
	for i, v := range variants {
		v = sharpen(v)
		v = adjustContrast(v, contrastFactor)
		variants[i] = adjustBrightness(v, brightnessGain)
	}
	return variants
}

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// upscale enlarges the page when it is narrower than minWidth. Small scans
// lose too much glyph detail for Tesseract otherwise.
func upscale(g *image.Gray, minWidth int) *image.Gray {
	w, h := g.Bounds().Dx(), g.Bounds().Dy()
	if minWidth <= 0 || w == 0 || w >= minWidth {
		return g
	}
	scale := float64(minWidth) / float64(w)
	out := image.NewGray(image.Rect(0, 0, minWidth, int(float64(h)*scale)))
	draw.CatmullRom.Scale(out, out.Bounds(), g, g.Bounds(), draw.Over, nil)
	return out
}

// medianDenoise replaces each pixel with the median of its 3x3 neighborhood.
func medianDenoise(g *image.Gray) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	var window [9]int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			n := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					px, py := x+dx, y+dy
					if px < 0 || py < 0 || px >= w || py >= h {
						continue
					}
					window[n] = int(g.GrayAt(px, py).Y)
					n++
				}
			}
			vals := window[:n]
			sort.Ints(vals)
			out.SetGray(x, y, grayVal(vals[n/2]))
		}
	}
	return out
}

// adaptiveThreshold binarizes against the local mean of a window centered on
// each pixel, offset by bias. Robust to uneven lighting across a scan.
func adaptiveThreshold(g *image.Gray, window, bias int) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))

	// Integral image for O(1) window sums.
	integral := make([]int64, (w+1)*(h+1))
	for y := 0; y < h; y++ {
		var rowSum int64
		for x := 0; x < w; x++ {
			rowSum += int64(g.GrayAt(x, y).Y)
			integral[(y+1)*(w+1)+x+1] = integral[y*(w+1)+x+1] + rowSum
		}
	}

	half := window / 2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			x0, y0 := max(0, x-half), max(0, y-half)
			x1, y1 := min(w-1, x+half), min(h-1, y+half)
			count := int64((x1 - x0 + 1) * (y1 - y0 + 1))
			sum := integral[(y1+1)*(w+1)+x1+1] - integral[y0*(w+1)+x1+1] -
				integral[(y1+1)*(w+1)+x0] + integral[y0*(w+1)+x0]
			mean := sum / count
			if int64(g.GrayAt(x, y).Y) > mean-int64(bias) {
				out.SetGray(x, y, grayVal(255))
			} else {
				out.SetGray(x, y, grayVal(0))
			}
		}
	}
	return out
}

// globalThreshold binarizes with Otsu's method.
func globalThreshold(g *image.Gray) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()

	var hist [256]int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			hist[g.GrayAt(x, y).Y]++
		}
	}

	total := w * h
	var sumAll float64
	for i, c := range hist {
		sumAll += float64(i * c)
	}

	threshold := 127
	var sumBack float64
	var weightBack int
	var bestVar float64
	for t := 0; t < 256; t++ {
		weightBack += hist[t]
		if weightBack == 0 {
			continue
		}
		weightFore := total - weightBack
		if weightFore == 0 {
			break
		}
		sumBack += float64(t * hist[t])
		meanBack := sumBack / float64(weightBack)
		meanFore := (sumAll - sumBack) / float64(weightFore)
		between := float64(weightBack) * float64(weightFore) * (meanBack - meanFore) * (meanBack - meanFore)
		if between > bestVar {
			bestVar = between
			threshold = t
		}
	}

	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if int(g.GrayAt(x, y).Y) > threshold {
				out.SetGray(x, y, grayVal(255))
			} else {
				out.SetGray(x, y, grayVal(0))
			}
		}
	}
	return out
}

// sharpen applies a 3x3 edge-enhancing convolution (center 9, neighbors -1).
func sharpen(g *image.Gray) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			acc := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					px, py := clampInt(x+dx, 0, w-1), clampInt(y+dy, 0, h-1)
					v := int(g.GrayAt(px, py).Y)
					if dx == 0 && dy == 0 {
						acc += 9 * v
					} else {
						acc -= v
					}
				}
			}
			out.SetGray(x, y, grayVal(acc))
		}
	}
	return out
}

func adjustContrast(g *image.Gray, factor float64) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := float64(g.GrayAt(x, y).Y)
			out.SetGray(x, y, grayVal(int((v-128)*factor+128)))
		}
	}
	return out
}

func adjustBrightness(g *image.Gray, gain float64) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.SetGray(x, y, grayVal(int(float64(g.GrayAt(x, y).Y)*gain)))
		}
	}
	return out
}

// rotate90 turns the page clockwise, used to catch vertical text layouts.
func rotate90(g *image.Gray) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, h, w))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.SetGray(h-1-y, x, g.GrayAt(x, y))
		}
	}
	return out
}

func grayVal(v int) color.Gray {
	return color.Gray{Y: uint8(clampInt(v, 0, 255))}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
