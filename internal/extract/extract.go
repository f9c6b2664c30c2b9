// Package extract pulls plain text out of word-processor (.docx) documents.
package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Unsupported is returned as text, with a nil error, for inputs that are not
// zip-based word-processor documents.
const Unsupported = "[unsupported document format]"

// ErrExtraction reports a document that looked like an archive but could not be read.
var ErrExtraction = errors.New("document extraction failed")

const documentPart = "word/document.xml"

var (
	zipSignature = []byte("PK\x03\x04")
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	spacePattern = regexp.MustCompile(`\s+`)
)

// Extract returns the document body as a single whitespace-collapsed line.
// data is never modified.
func Extract(data []byte) (string, error) {
	if !bytes.HasPrefix(data, zipSignature) {
		return Unsupported, nil
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: open archive: %v", ErrExtraction, err)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		name := strings.ReplaceAll(f.Name, "\\", "/")
		if name == documentPart {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("%w: %s not found", ErrExtraction, documentPart)
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %v", ErrExtraction, documentPart, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", ErrExtraction, documentPart, err)
	}

	return normalize(stripDocxXML(raw)), nil
}

// IsUnsupported reports whether text is the unsupported-format sentinel.
func IsUnsupported(text string) bool {
	return text == Unsupported
}

// Usable reports whether text carries real résumé content.
func Usable(text string) bool {
	return strings.TrimSpace(text) != "" && !IsUnsupported(text)
}

// stripDocxXML concatenates character data, separating paragraphs, tabs and
// breaks with spaces. Malformed XML falls back to a tag-stripping regexp.
func stripDocxXML(raw []byte) string {
	decoder := xml.NewDecoder(bytes.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return tagPattern.ReplaceAllString(string(raw), " ")
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.Write(t)
		case xml.StartElement:
			if t.Name.Local == "tab" || t.Name.Local == "br" || t.Name.Local == "cr" {
				buf.WriteByte(' ')
			}
		case xml.EndElement:
			if t.Name.Local == "p" {
				buf.WriteByte(' ')
			}
		}
	}
	return buf.String()
}

func normalize(text string) string {
	text = strings.NewReplacer("<", "", ">", "").Replace(text)
	return strings.TrimSpace(spacePattern.ReplaceAllString(text, " "))
}
