package render

import (
	"archive/zip"
	"bytes"
	"strconv"
	"strings"
	"sync"
)

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`

const packageRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`

const documentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`

// templateLine is one paragraph of the built-in template.
type templateLine struct {
	text    string
	bold    bool
	size    int // half-points; 0 keeps the default
	heading bool
}

var builtinLines = []templateLine{
	{text: "{name}", bold: true, size: 32},
	{text: "{title}", size: 24},
	{text: "{email} | {phone}"},
	{text: "Summary", bold: true, heading: true},
	{text: "{summary}"},
	{text: "Experience", bold: true, heading: true},
	{text: "{#experience}{.}{/experience}"},
	{text: "Education", bold: true, heading: true},
	{text: "{education}"},
	{text: "Skills", bold: true, heading: true},
	{text: "{skills}"},
}

var (
	builtinOnce  sync.Once
	builtinBytes []byte
)

// synthesizedTemplate returns the minimal archive used when no template is
// configured or the configured one carries no placeholders.
func synthesizedTemplate() []byte {
	builtinOnce.Do(func() {
		builtinBytes = buildArchive(map[string]string{
			"[Content_Types].xml":          contentTypesXML,
			"_rels/.rels":                  packageRelsXML,
			"word/_rels/document.xml.rels": documentRelsXML,
			documentPart:                   builtinDocumentXML(),
		})
	})
	return builtinBytes
}

func builtinDocumentXML() string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<w:document xmlns:w="` + wmlNamespace + `" xmlns:r="` + relNamespace + `"><w:body>`)
	for _, line := range builtinLines {
		b.WriteString(`<w:p>`)
		if line.heading {
			b.WriteString(`<w:pPr><w:spacing w:before="240" w:after="60"/></w:pPr>`)
		}
		b.WriteString(`<w:r>`)
		if line.bold || line.size > 0 {
			b.WriteString(`<w:rPr>`)
			if line.bold {
				b.WriteString(`<w:b/>`)
			}
			if line.size > 0 {
				b.WriteString(`<w:sz w:val="` + strconv.Itoa(line.size) + `"/>`)
			}
			b.WriteString(`</w:rPr>`)
		}
		b.WriteString(`<w:t xml:space="preserve">` + line.text + `</w:t></w:r></w:p>`)
	}
	b.WriteString(`<w:sectPr><w:pgSz w:w="12240" w:h="15840"/><w:pgMar w:top="1080" w:right="1080" w:bottom="1080" w:left="1080" w:header="720" w:footer="720" w:gutter="0"/></w:sectPr>`)
	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

// buildArchive writes parts in a stable order with [Content_Types].xml first.
func buildArchive(parts map[string]string) []byte {
	order := []string{"[Content_Types].xml", "_rels/.rels", "word/_rels/document.xml.rels", documentPart}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range order {
		body, ok := parts[name]
		if !ok {
			continue
		}
		w, err := zw.Create(name)
		if err != nil {
			panic(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			panic(err)
		}
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
