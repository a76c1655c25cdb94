package ocr

import (
	"image"
	"testing"
)

func fillGray(w, h int, v uint8) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for i := range g.Pix {
		g.Pix[i] = v
	}
	return g
}

func TestPreparePageVariants(t *testing.T) {
	img := fillGray(40, 30, 200)
	variants := PreparePage(img, 0)

	if len(variants) != 2 {
		t.Fatalf("got %d variants, want 2", len(variants))
	}
	for i, v := range variants {
		b := v.Bounds()
		if b.Dx() != 40 || b.Dy() != 30 {
			t.Errorf("variant %d has bounds %v, want 40x30", i, b)
		}
	}
}

func TestUpscale(t *testing.T) {
	tests := []struct {
		name     string
		w, h     int
		minWidth int
		wantW    int
		wantH    int
	}{
		{"below minimum", 100, 50, 400, 400, 200},
		{"already wide enough", 500, 300, 400, 500, 300},
		{"disabled", 100, 50, 0, 100, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := upscale(fillGray(tt.w, tt.h, 128), tt.minWidth)
			b := out.Bounds()
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("bounds = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestGlobalThresholdSeparatesInkFromPaper(t *testing.T) {
	// Dark square on a light background.
	g := fillGray(20, 20, 230)
	for y := 5; y < 15; y++ {
		for x := 5; x < 15; x++ {
			g.SetGray(x, y, grayVal(20))
		}
	}

	out := globalThreshold(g)
	if got := out.GrayAt(10, 10).Y; got != 0 {
		t.Errorf("ink pixel = %d, want 0", got)
	}
	if got := out.GrayAt(0, 0).Y; got != 255 {
		t.Errorf("paper pixel = %d, want 255", got)
	}
}

func TestAdaptiveThresholdUnevenLighting(t *testing.T) {
	// Horizontal lighting gradient with one dark glyph on each side.
	g := image.NewGray(image.Rect(0, 0, 60, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 60; x++ {
			g.SetGray(x, y, grayVal(100+2*x))
		}
	}
	g.SetGray(5, 10, grayVal(10))
	g.SetGray(55, 10, grayVal(100))

	out := adaptiveThreshold(g, adaptiveWindow, adaptiveBias)
	if got := out.GrayAt(5, 10).Y; got != 0 {
		t.Errorf("dark-side glyph = %d, want 0", got)
	}
	if got := out.GrayAt(55, 10).Y; got != 0 {
		t.Errorf("bright-side glyph = %d, want 0", got)
	}
	if got := out.GrayAt(30, 5).Y; got != 255 {
		t.Errorf("background = %d, want 255", got)
	}
}

func TestRotate90(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 3, 2))
	g.SetGray(0, 0, grayVal(255)) // top-left

	out := rotate90(g)
	b := out.Bounds()
	if b.Dx() != 2 || b.Dy() != 3 {
		t.Fatalf("bounds = %dx%d, want 2x3", b.Dx(), b.Dy())
	}
	// Clockwise rotation moves top-left to top-right.
	if got := out.GrayAt(1, 0).Y; got != 255 {
		t.Errorf("rotated pixel at (1,0) = %d, want 255", got)
	}
}

func TestClampInt(t *testing.T) {
	tests := []struct {
		v, lo, hi, want int
	}{
		{-5, 0, 255, 0},
		{300, 0, 255, 255},
		{128, 0, 255, 128},
	}
	for _, tt := range tests {
		if got := clampInt(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("clampInt(%d) = %d, want %d", tt.v, got, tt.want)
		}
	}
}
