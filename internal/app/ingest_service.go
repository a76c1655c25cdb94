package app

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"pdfqa/internal/model"
	"pdfqa/internal/pkg/chunk"
	"pdfqa/internal/pkg/normalize"
	"pdfqa/internal/pkg/pdfextract"
	"pdfqa/internal/vectorstore"
)

const embeddingBatchSize = 10 // OpenAI-compatible providers often limit batch size

// pageMarker separates per-page text in the joined document. It is plain
// whitespace to the tokenizer, so chunk text reads across page breaks.
const pageMarker = "\f"

// PageReader exposes one opened PDF: embedded text plus rendered images
// for pages that need OCR.
type PageReader interface {
	NumPages() int
	PageText(n int) (string, error)
	RenderPage(ctx context.Context, n, dpi int) (image.Image, error)
	Close() error
}

// PageRecognizer runs OCR over one rendered page.
type PageRecognizer interface {
	RecognizePage(ctx context.Context, img image.Image) string
}

// DocumentRecorder writes one upload registry row.
type DocumentRecorder interface {
	Create(doc *model.Document) error
}

type IngestService struct {
	store      vectorstore.Store
	embedder   Embedder
	recognizer PageRecognizer
	normalizer *normalize.Normalizer
	chunker    *chunk.Chunker
	docRepo    DocumentRecorder

	minPageTextChars int
	renderDPI        int

	openDocument func(path string) (PageReader, error)
}

func NewIngestService(
	store vectorstore.Store,
	embedder Embedder,
	recognizer PageRecognizer,
	normalizer *normalize.Normalizer,
	chunker *chunk.Chunker,
	docRepo DocumentRecorder,
	minPageTextChars int,
	renderDPI int,
) *IngestService {
	return &IngestService{
		store:            store,
		embedder:         embedder,
		recognizer:       recognizer,
		normalizer:       normalizer,
		chunker:          chunker,
		docRepo:          docRepo,
		minPageTextChars: minPageTextChars,
		renderDPI:        renderDPI,
		openDocument: func(path string) (PageReader, error) {
			return pdfextract.Open(path)
		},
	}
}

// IngestInput identifies a PDF already saved to local disk.
type IngestInput struct {
	Path     string
	Filename string
}

// IngestResult reports what the upload produced.
type IngestResult struct {
	Message         string `json:"message"`
	ChunksProcessed int    `json:"chunks_processed"`
	PageCount       int    `json:"-"`
	OCRPages        int    `json:"-"`
}

// Ingest extracts text from every page, falls back to OCR on pages with
// too little embedded text, normalizes and chunks the result, embeds the
// chunks, and replaces the vector index contents with them.
func (s *IngestService) Ingest(ctx context.Context, input IngestInput) (*IngestResult, error) {
	if strings.TrimSpace(input.Path) == "" {
		return nil, ErrInvalidInput
	}

	doc, err := s.openDocument(input.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}
	defer doc.Close()

	pages, ocrPages := s.extractPages(ctx, doc)
	if len(pages) == 0 {
		return nil, ErrUnreadableDocument
	}

	chunks := s.chunker.Split(strings.Join(pages, pageMarker))
	if len(chunks) == 0 {
		return nil, ErrEmptyDocument
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	embeddings, err := s.embedAll(ctx, texts)
	if err != nil {
		return nil, err
	}

	slug := docSlug(input.Filename)
	records := make([]vectorstore.Record, len(chunks))
	for i := range chunks {
		records[i] = vectorstore.Record{
			ChunkID: fmt.Sprintf("%s:chunk_%d", slug, chunks[i].Index),
			Text:    chunks[i].Text,
			Vector:  embeddings[i],
		}
	}

	// Each upload replaces the previous document's index contents.
	if err := s.store.Clear(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if err := s.store.Upsert(ctx, records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	if s.docRepo != nil {
		row := &model.Document{
			Filename:   input.Filename,
			PageCount:  doc.NumPages(),
			OCRPages:   ocrPages,
			ChunkCount: len(records),
		}
		if err := s.docRepo.Create(row); err != nil {
			log.Warn().Err(err).Str("filename", input.Filename).Msg("record upload failed")
		}
	}

	return &IngestResult{
		Message:         fmt.Sprintf("PDF '%s' processed successfully", input.Filename),
		ChunksProcessed: len(records),
		PageCount:       doc.NumPages(),
		OCRPages:        ocrPages,
	}, nil
}

// extractPages returns normalized non-empty page texts in page order and
// the number of pages that went through OCR. Per-page failures are logged
// and skipped so one bad page never sinks the upload.
func (s *IngestService) extractPages(ctx context.Context, doc PageReader) ([]string, int) {
	var pages []string
	ocrPages := 0

	for n := 1; n <= doc.NumPages(); n++ {
		text, err := doc.PageText(n)
		if err != nil {
			log.Debug().Err(err).Int("page", n).Msg("page text extraction failed")
			text = ""
		}

		if utf8.RuneCountInString(strings.TrimSpace(text)) < s.minPageTextChars && s.recognizer != nil {
			if recognized, ok := s.ocrPage(ctx, doc, n); ok {
				text = recognized
				ocrPages++
			}
		}

		normalized := s.normalizer.Apply(text)
		if normalized == "" {
			continue
		}
		pages = append(pages, normalized)
	}

	return pages, ocrPages
}

func (s *IngestService) ocrPage(ctx context.Context, doc PageReader, n int) (string, bool) {
	img, err := doc.RenderPage(ctx, n, s.renderDPI)
	if err != nil {
		log.Debug().Err(err).Int("page", n).Msg("page render failed")
		return "", false
	}
	recognized := s.recognizer.RecognizePage(ctx, img)
	if strings.TrimSpace(recognized) == "" {
		return "", false
	}
	return recognized, true
}

func (s *IngestService) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	var embeddings [][]float32
	for i := 0; i < len(texts); i += embeddingBatchSize {
		end := i + embeddingBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := s.embedder.EmbedBatch(ctx, texts[i:end])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
		}
		embeddings = append(embeddings, batch...)
	}
	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: embedding count mismatch", ErrServiceUnavailable)
	}
	return embeddings, nil
}

// docSlug derives a stable chunk ID prefix from the uploaded filename.
func docSlug(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	var b strings.Builder
	for _, r := range base {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case b.Len() > 0 && !strings.HasSuffix(b.String(), "-"):
			b.WriteRune('-')
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "document"
	}
	return slug
}
