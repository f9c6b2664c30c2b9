// Package render merges structured résumé content into a .docx template.
package render

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"resume-tailor/internal/shared/telemetry"
	"resume-tailor/resume/model"
)

var (
	// ErrTemplateUnavailable reports a template reference that could not be
	// fetched or is not a readable word-processor archive.
	ErrTemplateUnavailable = errors.New("template unavailable")
	// ErrTemplateRender reports invalid placeholder syntax or a loop over a
	// field the content does not provide.
	ErrTemplateRender = errors.New("template render failed")

	errNoPlaceholders = errors.New("template has no placeholders")
)

const documentPart = "word/document.xml"

// TemplateFetcher resolves a template reference to archive bytes.
type TemplateFetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// Renderer produces .docx bytes from content and an optional template.
type Renderer struct {
	Fetch TemplateFetcher
}

// New returns a Renderer that loads templates through fetch.
func New(fetch TemplateFetcher) *Renderer {
	return &Renderer{Fetch: fetch}
}

// Render substitutes content into the template named by templateRef, or into
// the built-in template when templateRef is empty.
func (r *Renderer) Render(ctx context.Context, content model.Content, templateRef string) ([]byte, error) {
	data := content.TemplateData()
	ref := strings.TrimSpace(templateRef)
	if ref == "" {
		return renderArchive(synthesizedTemplate(), data)
	}

	if r.Fetch == nil {
		return nil, fmt.Errorf("%w: no template fetcher configured", ErrTemplateUnavailable)
	}
	base, err := r.Fetch.Fetch(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateUnavailable, err)
	}

	out, err := renderArchive(base, data)
	if errors.Is(err, errNoPlaceholders) {
		telemetry.Warn("render.template_fallback", map[string]any{
			"template": ref,
			"reason":   "no placeholders",
		})
		return renderArchive(synthesizedTemplate(), data)
	}
	return out, err
}

func renderArchive(base []byte, data map[string]any) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(base), int64(len(base)))
	if err != nil {
		return nil, fmt.Errorf("%w: open archive: %v", ErrTemplateUnavailable, err)
	}

	var docFile *zip.File
	for _, f := range reader.File {
		if normalizeZipName(f.Name) == documentPart {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, fmt.Errorf("%w: %s not found", ErrTemplateUnavailable, documentPart)
	}

	raw, err := readZipFile(docFile)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrTemplateUnavailable, documentPart, err)
	}
	rendered, err := renderDocumentXML(string(raw), data)
	if err != nil {
		return nil, err
	}

	var output bytes.Buffer
	writer := zip.NewWriter(&output)
	for _, f := range reader.File {
		if f == docFile {
			if err := writeZipFile(writer, f, rendered); err != nil {
				return nil, fmt.Errorf("write %s: %w", documentPart, err)
			}
			continue
		}
		if err := writer.Copy(f); err != nil {
			return nil, fmt.Errorf("copy %s: %w", f.Name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return output.Bytes(), nil
}

func renderDocumentXML(xmlText string, data map[string]any) ([]byte, error) {
	doc, err := parseXMLDocument(xmlText)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrTemplateUnavailable, documentPart, err)
	}
	body := findBodyNode(doc.root)
	if body == nil {
		return nil, fmt.Errorf("%w: %s has no body", ErrTemplateUnavailable, documentPart)
	}

	found, err := containsPlaceholders(body)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errNoPlaceholders
	}

	if err := renderContainer(body, scope{data: data}); err != nil {
		return nil, err
	}
	out, err := doc.encode()
	if err != nil {
		return nil, fmt.Errorf("%w: encode %s: %v", ErrTemplateRender, documentPart, err)
	}
	return out, nil
}

func containsPlaceholders(body *xmlNode) (bool, error) {
	for _, p := range paragraphs(body) {
		tags, err := lexTags(paragraphText(p))
		if err != nil {
			return true, err
		}
		if hasPlaceholders(tags) {
			return true, nil
		}
	}
	return false, nil
}

func readZipFile(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func writeZipFile(writer *zip.Writer, source *zip.File, content []byte) error {
	header := &zip.FileHeader{
		Name:     normalizeZipName(source.Name),
		Method:   source.Method,
		Modified: source.Modified,
	}
	dst, err := writer.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = dst.Write(content)
	return err
}

func normalizeZipName(name string) string {
	return strings.ReplaceAll(name, "\\", "/")
}
