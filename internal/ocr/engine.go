package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// Candidate is one OCR attempt's outcome: the recognized text and the mean
// word confidence Tesseract reported for it. Candidates are intermediate
// values only; callers keep the winner's text and discard the rest.
type Candidate struct {
	Text       string
	Confidence float64
	PSM        int
	Rotated    bool
}

// Engine runs one OCR pass over a page image with a given page-segmentation
// mode.
type Engine interface {
	Recognize(ctx context.Context, img image.Image, psm int) (Candidate, error)
}

// Tesseract invokes the tesseract binary and parses its TSV output to get
// per-word confidences.
type Tesseract struct {
	Path      string
	Languages string
}

func NewTesseract(path, languages string) *Tesseract {
	if path == "" {
		path = "tesseract"
	}
	if languages == "" {
		languages = "kor+eng"
	}
	return &Tesseract{Path: path, Languages: languages}
}

// Available reports whether the tesseract binary can be executed.
func (t *Tesseract) Available() bool {
	return exec.Command(t.Path, "--version").Run() == nil
}

func (t *Tesseract) Recognize(ctx context.Context, img image.Image, psm int) (Candidate, error) {
	tmp, err := os.CreateTemp("", "pdfqa-ocr-*.png")
	if err != nil {
		return Candidate{}, fmt.Errorf("create ocr temp file failed: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		return Candidate{}, fmt.Errorf("encode ocr page image failed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Candidate{}, fmt.Errorf("close ocr temp file failed: %w", err)
	}

	cmd := exec.CommandContext(ctx, t.Path,
		tmp.Name(), "stdout",
		"--oem", "3",
		"--psm", strconv.Itoa(psm),
		"-l", t.Languages,
		"tsv",
	)
	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf
	if err := cmd.Run(); err != nil {
		return Candidate{}, fmt.Errorf("tesseract psm %d failed: %w: %s", psm, err, strings.TrimSpace(errBuf.String()))
	}

	text, conf := parseTSV(out.String())
	return Candidate{Text: text, Confidence: conf, PSM: psm}, nil
}

// parseTSV extracts word-level rows (level 5) from Tesseract TSV output,
// reassembling lines and averaging word confidences.
func parseTSV(tsv string) (string, float64) {
	var b strings.Builder
	var confSum float64
	var words int
	lastLine := ""

	for i, row := range strings.Split(tsv, "\n") {
		if i == 0 {
			continue // header
		}
		cols := strings.Split(row, "\t")
		if len(cols) < 12 || cols[0] != "5" {
			continue
		}
		word := strings.TrimSpace(cols[11])
		if word == "" {
			continue
		}
		conf, err := strconv.ParseFloat(cols[10], 64)
		if err != nil || conf < 0 {
			continue
		}

		// block_num, par_num, line_num identify the output line.
		lineKey := cols[2] + ":" + cols[3] + ":" + cols[4]
		if b.Len() > 0 {
			if lineKey == lastLine {
				b.WriteByte(' ')
			} else {
				b.WriteByte('\n')
			}
		}
		lastLine = lineKey
		b.WriteString(word)
		confSum += conf
		words++
	}

	if words == 0 {
		return "", 0
	}
	return b.String(), confSum / float64(words)
}
