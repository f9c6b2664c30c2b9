package extract

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

var pdfSignature = []byte("%PDF-")

// Document extracts text from either a .docx or a PDF upload. Other inputs
// yield the Unsupported sentinel like Extract.
func Document(data []byte) (string, error) {
	if bytes.HasPrefix(data, pdfSignature) {
		return PDF(data)
	}
	return Extract(data)
}

// PDF returns the plain text layer of a PDF, whitespace-collapsed.
func PDF(data []byte) (text string, err error) {
	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: parse pdf: %v", ErrExtraction, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: open pdf: %v", ErrExtraction, err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: read pdf text: %v", ErrExtraction, err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("%w: read pdf text: %v", ErrExtraction, err)
	}
	return normalize(buf.String()), nil
}
