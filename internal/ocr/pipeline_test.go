package ocr

import (
	"context"
	"image"
	"testing"
)

func TestSelectBest(t *testing.T) {
	tests := []struct {
		name       string
		candidates []Candidate
		wantText   string
		wantOK     bool
	}{
		{
			name:   "empty",
			wantOK: false,
		},
		{
			name: "highest confidence wins",
			candidates: []Candidate{
				{Text: "low", Confidence: 40, PSM: 6},
				{Text: "high", Confidence: 85, PSM: 11},
				{Text: "mid", Confidence: 60, PSM: 4},
			},
			wantText: "high",
			wantOK:   true,
		},
		{
			name: "tie prefers default psm",
			candidates: []Candidate{
				{Text: "sparse", Confidence: 70, PSM: 11},
				{Text: "uniform", Confidence: 70, PSM: DefaultPSM},
			},
			wantText: "uniform",
			wantOK:   true,
		},
		{
			name: "tie prefers unrotated",
			candidates: []Candidate{
				{Text: "rotated", Confidence: 70, PSM: DefaultPSM, Rotated: true},
				{Text: "upright", Confidence: 70, PSM: DefaultPSM},
			},
			wantText: "upright",
			wantOK:   true,
		},
		{
			name: "rotated wins on confidence",
			candidates: []Candidate{
				{Text: "upright", Confidence: 30, PSM: DefaultPSM},
				{Text: "rotated", Confidence: 90, PSM: DefaultPSM, Rotated: true},
			},
			wantText: "rotated",
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			best, ok := SelectBest(tt.candidates)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && best.Text != tt.wantText {
				t.Errorf("best.Text = %q, want %q", best.Text, tt.wantText)
			}
		})
	}
}

// fakeEngine records requested PSMs and returns canned candidates.
type fakeEngine struct {
	byPSM map[int]Candidate
	calls int
}

func (f *fakeEngine) Recognize(_ context.Context, _ image.Image, psm int) (Candidate, error) {
	f.calls++
	c := f.byPSM[psm]
	c.PSM = psm
	return c, nil
}

func TestRecognizePagePicksAcrossPasses(t *testing.T) {
	engine := &fakeEngine{byPSM: map[int]Candidate{
		6:  {Text: "uniform", Confidence: 55},
		4:  {Text: "columns", Confidence: 80},
		11: {Text: "sparse", Confidence: 20},
		5:  {Text: "vertical", Confidence: 10},
	}}
	r := NewRecognizer(engine, 0)

	img := image.NewGray(image.Rect(0, 0, 20, 20))
	got := r.RecognizePage(context.Background(), img)
	if got != "columns" {
		t.Errorf("RecognizePage = %q, want %q", got, "columns")
	}
	// 2 variants x 4 PSMs plus one rotated pass per variant.
	if engine.calls != 10 {
		t.Errorf("engine ran %d passes, want 10", engine.calls)
	}
}

func TestRecognizePageAllFailed(t *testing.T) {
	engine := &fakeEngine{byPSM: map[int]Candidate{}}
	r := NewRecognizer(engine, 0)

	img := image.NewGray(image.Rect(0, 0, 10, 10))
	if got := r.RecognizePage(context.Background(), img); got != "" {
		t.Errorf("RecognizePage = %q, want empty", got)
	}
}
