package ocr

import (
	"context"
	"image"

	"github.com/rs/zerolog/log"
)

// Page-segmentation modes tried on every page. 6 (uniform block) is the
// default; 4 covers column layouts, 11 sparse text, 5 vertical blocks.
const DefaultPSM = 6

var candidatePSMs = []int{DefaultPSM, 4, 11, 5}

// Recognizer turns one rendered page into text by generating preprocessing
// variants, running the engine once per (variant, segmentation mode) pair
// plus a rotated pass for vertical layouts, and keeping the
// highest-confidence candidate.
type Recognizer struct {
	engine   Engine
	minWidth int
}

func NewRecognizer(engine Engine, minWidth int) *Recognizer {
	return &Recognizer{engine: engine, minWidth: minWidth}
}

// RecognizePage returns the best candidate's text for the page, or "" when
// every pass fails. A failed page is never an error: ingestion continues
// with whatever the other pages yielded.
func (r *Recognizer) RecognizePage(ctx context.Context, img image.Image) string {
	var candidates []Candidate
	for _, variant := range PreparePage(img, r.minWidth) {
		for _, psm := range candidatePSMs {
			cand, err := r.engine.Recognize(ctx, variant, psm)
			if err != nil {
				log.Debug().Err(err).Int("psm", psm).Msg("ocr pass failed")
				continue
			}
			candidates = append(candidates, cand)
		}

		rotated, err := r.engine.Recognize(ctx, rotate90(variant), DefaultPSM)
		if err != nil {
			log.Debug().Err(err).Msg("rotated ocr pass failed")
			continue
		}
		rotated.Rotated = true
		candidates = append(candidates, rotated)
	}

	best, ok := SelectBest(candidates)
	if !ok {
		return ""
	}
	return best.Text
}

// SelectBest picks the candidate with the highest confidence. On a tie the
// default segmentation mode wins, and an unrotated pass beats a rotated one.
func SelectBest(candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		switch {
		case c.Confidence > best.Confidence:
			best = c
		case c.Confidence == best.Confidence && preference(c) > preference(best):
			best = c
		}
	}
	return best, true
}

func preference(c Candidate) int {
	p := 0
	if c.PSM == DefaultPSM {
		p += 2
	}
	if !c.Rotated {
		p++
	}
	return p
}
