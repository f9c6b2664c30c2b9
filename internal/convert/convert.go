// Package convert turns rendered .docx documents into PDF with an external
// office engine.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"resume-tailor/internal/shared/telemetry"
	"resume-tailor/internal/shared/tempfile"
)

// ErrConversion wraps every engine failure. Callers never retry it.
var ErrConversion = errors.New("document conversion failed")

const defaultTimeout = 120 * time.Second

// Converter produces a portable rendition of a word-processor document.
type Converter interface {
	Convert(ctx context.Context, docx []byte) ([]byte, error)
}

// Soffice converts through LibreOffice in headless mode.
type Soffice struct {
	Binary  string
	Timeout time.Duration
	TempDir string
}

// NewSoffice returns a converter for binary, defaulting to "soffice" on PATH.
func NewSoffice(binary string, timeout time.Duration, tempDir string) *Soffice {
	return &Soffice{Binary: binary, Timeout: timeout, TempDir: tempDir}
}

// Convert writes docx to a private temp directory, runs the engine, and
// returns the produced PDF after checking it parses with at least one page.
func (s *Soffice) Convert(ctx context.Context, docx []byte) ([]byte, error) {
	if len(docx) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrConversion)
	}
	bin := strings.TrimSpace(s.Binary)
	if bin == "" {
		bin = "soffice"
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	scope, err := tempfile.New(s.TempDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConversion, err)
	}
	defer scope.Close()

	input, err := scope.WriteFile("resume.docx", docx)
	if err != nil {
		return nil, fmt.Errorf("%w: stage input: %v", ErrConversion, err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(ctx, bin, "--headless", "--convert-to", "pdf", "--outdir", scope.Dir(), input)
	// soffice locks its user profile; each run gets its own under the scope.
	cmd.Env = append(os.Environ(), "HOME="+scope.Dir())
	cmd.WaitDelay = 5 * time.Second
	output, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("%w: timed out after %s", ErrConversion, timeout)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v: %s", ErrConversion, filepath.Base(bin), err, clip(output))
	}

	outPath := strings.TrimSuffix(input, filepath.Ext(input)) + ".pdf"
	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("%w: output missing: %v", ErrConversion, err)
	}
	if err := verifyPDF(data); err != nil {
		return nil, err
	}

	telemetry.Info("convert.complete", map[string]any{
		"duration_ms": time.Since(start).Milliseconds(),
		"bytes":       len(data),
	})
	return data, nil
}

// verifyPDF rejects output that does not parse as a PDF with pages.
func verifyPDF(data []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: unreadable pdf: %v", ErrConversion, r)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("%w: unreadable pdf: %v", ErrConversion, err)
	}
	if reader.NumPage() < 1 {
		return fmt.Errorf("%w: pdf has no pages", ErrConversion)
	}
	return nil
}

func clip(output []byte) string {
	s := strings.TrimSpace(string(output))
	if len(s) > 300 {
		return s[:300] + "..."
	}
	return s
}
