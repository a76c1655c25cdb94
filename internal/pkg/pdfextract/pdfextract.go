package pdfextract

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/ledongthuc/pdf"
)

// Document is an opened PDF ready for per-page text extraction.
type Document struct {
	path   string
	file   *os.File
	reader *pdf.Reader
}

func Open(path string) (*Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf failed: %w", err)
	}
	return &Document{path: path, file: f, reader: r}, nil
}

func (d *Document) Close() error {
	return d.file.Close()
}

func (d *Document) NumPages() int {
	return d.reader.NumPage()
}

// PageText extracts the text layer of page n (1-based). Returns empty text
// and nil error for pages without an extractable layer.
func (d *Document) PageText(n int) (string, error) {
	page := d.reader.Page(n)
	if page.V.IsNull() {
		return "", nil
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("extract page %d text failed: %w", n, err)
	}
	return text, nil
}

// RenderPage rasterizes page n (1-based) to a grayscale-friendly PNG using
// pdftoppm. Poppler is an external tool, so a missing binary or a render
// failure is reported to the caller, who treats the page as empty.
func (d *Document) RenderPage(ctx context.Context, n, dpi int) (image.Image, error) {
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		return nil, fmt.Errorf("pdftoppm not found: %w", err)
	}
	if dpi <= 0 {
		dpi = 200
	}

	tmpDir, err := os.MkdirTemp("", "pdfqa-render-*")
	if err != nil {
		return nil, fmt.Errorf("create render temp dir failed: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-png",
		"-r", strconv.Itoa(dpi),
		"-f", strconv.Itoa(n),
		"-l", strconv.Itoa(n),
		d.path, prefix,
	)
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("render page %d failed: %w", n, err)
	}

	// pdftoppm zero-pads the page suffix, so glob instead of guessing it.
	matches, err := filepath.Glob(prefix + "*.png")
	if err != nil || len(matches) == 0 {
		return nil, fmt.Errorf("render page %d produced no image", n)
	}

	f, err := os.Open(matches[0])
	if err != nil {
		return nil, fmt.Errorf("open rendered page failed: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode rendered page failed: %w", err)
	}
	return img, nil
}
