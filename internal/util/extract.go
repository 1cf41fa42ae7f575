package util

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"os/exec"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// PDFs with less embedded text than this are OCRed.
const minEmbeddedText = 100

var ErrUnsupportedFileType = errors.New("unsupported file type")

// ExtractResumeText returns the plain text of an uploaded resume. PDFs are
// read through their text layer, with OCR for scanned documents.
func ExtractResumeText(ctx context.Context, filename string, data []byte, log *zap.Logger) (string, error) {
	if log == nil {
		log = zap.NewNop()
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return extractPDF(ctx, data, log)
	case ".txt", ".md":
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%s is not valid UTF-8 text", filename)
		}
		text := strings.TrimSpace(string(data))
		if text == "" {
			return "", fmt.Errorf("%s is empty", filename)
		}
		return text, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, filepath.Ext(filename))
	}
}

func extractPDF(ctx context.Context, data []byte, log *zap.Logger) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var text strings.Builder
	for n := 0; n < doc.NumPage(); n++ {
		page, err := doc.Text(n)
		if err != nil {
			log.Warn("pdf text extraction failed", zap.Int("page", n+1), zap.Error(err))
			continue
		}
		text.WriteString(strings.TrimSpace(page))
		text.WriteString("\n\n")
	}

	result := strings.TrimSpace(text.String())
	if len(result) >= minEmbeddedText {
		return result, nil
	}
	log.Info("pdf has little embedded text, falling back to OCR", zap.Int("chars", len(result)), zap.Int("pages", doc.NumPage()))
	return extractPDFOCR(ctx, doc, log)
}

// extractPDFOCR renders every page and runs it through tesseract.
func extractPDFOCR(ctx context.Context, doc *fitz.Document, log *zap.Logger) (string, error) {
	if err := checkTesseract(ctx); err != nil {
		return "", fmt.Errorf("tesseract check failed: %w", err)
	}

	var fullText bytes.Buffer
	var lastErr error
	for n := 0; n < doc.NumPage(); n++ {
		img, err := doc.Image(n)
		if err != nil {
			lastErr = fmt.Errorf("page %d: failed to render image: %w", n+1, err)
			log.Warn("ocr page skipped", zap.Error(lastErr))
			continue
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			lastErr = fmt.Errorf("page %d: failed to encode PNG: %w", n+1, err)
			log.Warn("ocr page skipped", zap.Error(lastErr))
			continue
		}

		cmd := exec.CommandContext(ctx, "tesseract", "stdin", "stdout", "-l", "eng")
		cmd.Stdin = &buf
		out, err := cmd.Output()
		if err != nil {
			lastErr = fmt.Errorf("page %d: tesseract error: %w", n+1, err)
			log.Warn("ocr page skipped", zap.Error(lastErr))
			continue
		}

		if pageText := strings.TrimSpace(string(out)); pageText != "" {
			fullText.WriteString(pageText)
			fullText.WriteString("\n\n")
		}
	}

	result := strings.TrimSpace(fullText.String())
	if result == "" {
		if lastErr != nil {
			return "", fmt.Errorf("failed to extract text via OCR: %w", lastErr)
		}
		return "", fmt.Errorf("no text extracted from PDF")
	}
	log.Debug("ocr finished", zap.Int("chars", len(result)))
	return result, nil
}

func checkTesseract(ctx context.Context) error {
	out, err := exec.CommandContext(ctx, "tesseract", "--version").CombinedOutput()
	if err != nil {
		return fmt.Errorf("tesseract not found or not executable: %w", err)
	}
	if len(out) == 0 {
		return fmt.Errorf("tesseract returned no version information")
	}
	return nil
}
