package render

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"resume-tailor/internal/extract"
	"resume-tailor/resume/model"
)

type mapFetcher map[string][]byte

func (m mapFetcher) Fetch(_ context.Context, ref string) ([]byte, error) {
	data, ok := m[ref]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

func sampleContent() model.Content {
	return model.Content{
		Name:    "Ada Lovelace",
		Title:   "Senior Go Engineer",
		Email:   "ada@example.com",
		Summary: "Backend engineer with 5 years building Go services on Kubernetes.",
		Experience: []model.ExperienceGroup{
			{Bullets: []string{"Built gRPC gateways serving 20k rps.", "Migrated batch jobs to Kubernetes."}},
			{Bullets: []string{"Maintained PostgreSQL schemas."}},
		},
		Skills: []model.Skill{
			model.ParseSkill("Languages: Go, SQL"),
			model.ParseSkill("Platforms: Kubernetes, AWS"),
		},
		Education: "BSc Mathematics",
	}
}

func TestRenderBuiltinRoundTrip(t *testing.T) {
	content := sampleContent()
	out, err := New(nil).Render(context.Background(), content, "")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	text, err := extract.Extract(out)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	assertContains(t, text, content.Summary)
	for _, bullet := range content.Bullets() {
		assertContains(t, text, bullet)
	}
	assertContains(t, text, "Kubernetes")
	assertContains(t, text, "Ada Lovelace")
	assertNotContains(t, text, "{")
}

func TestRenderExperienceOneParagraphPerBullet(t *testing.T) {
	out, err := New(nil).Render(context.Background(), sampleContent(), "")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	documentXML := readDocumentXML(t, out)
	for _, bullet := range sampleContent().Bullets() {
		if got := strings.Count(documentXML, bullet+"</w:t></w:r></w:p>"); got != 1 {
			t.Fatalf("expected bullet %q to end its own paragraph once, got %d", bullet, got)
		}
	}
}

func TestRenderMultilineScalarUsesBreaks(t *testing.T) {
	out, err := New(nil).Render(context.Background(), sampleContent(), "")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	documentXML := readDocumentXML(t, out)
	assertContains(t, documentXML, "Languages: Go, SQL</w:t><w:br></w:br><w:t")
	assertContains(t, documentXML, "Platforms: Kubernetes, AWS")
}

func TestRenderEmptyExperienceDropsLoopParagraph(t *testing.T) {
	content := sampleContent()
	content.Experience = nil
	out, err := New(nil).Render(context.Background(), content, "")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	documentXML := readDocumentXML(t, out)
	assertNotContains(t, documentXML, "experience}")
	assertContains(t, documentXML, "Education")
}

func TestRenderFetchedTemplate(t *testing.T) {
	styles := `<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><!-- keep me --></w:styles>`
	doc := documentXML(
		// Placeholder split across runs, as Word saves it after editing.
		`<w:p><w:r><w:rPr><w:b/></w:rPr><w:t>{na</w:t></w:r><w:r><w:t>me}</w:t></w:r></w:p>`,
		para("Contact: {email}{unknown}"),
		para("{#experience}"),
		para("• {.}"),
		para("{/experience}"),
		para("Skills: {#skillList}{.}; {/skillList}"),
	)
	template := buildDocx(t, doc, map[string]string{"word/styles.xml": styles})

	r := New(mapFetcher{"templates/t1.docx": template})
	out, err := r.Render(context.Background(), sampleContent(), "templates/t1.docx")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	documentXML := readDocumentXML(t, out)
	assertContains(t, documentXML, "<w:b></w:b>")
	assertContains(t, documentXML, ">Ada Lovelace<")
	assertContains(t, documentXML, "Contact: ada@example.com<")
	assertContains(t, documentXML, "• Built gRPC gateways serving 20k rps.")
	assertContains(t, documentXML, "• Maintained PostgreSQL schemas.")
	assertContains(t, documentXML, "Skills: Languages: Go, SQL; Platforms: Kubernetes, AWS; ")
	assertNotContains(t, documentXML, "{")

	if got := readPart(t, out, "word/styles.xml"); got != styles {
		t.Fatalf("expected styles part preserved, got %q", got)
	}
}

func TestRenderLoopWithSurroundingText(t *testing.T) {
	doc := documentXML(
		para("Highlights {#experience}"),
		para("- {.}"),
		para("{/experience} end of list"),
	)
	r := New(mapFetcher{"t": buildDocx(t, doc, nil)})
	out, err := r.Render(context.Background(), sampleContent(), "t")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	text, err := extract.Extract(out)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	want := "Highlights - Built gRPC gateways serving 20k rps. - Migrated batch jobs to Kubernetes. - Maintained PostgreSQL schemas. end of list"
	if text != want {
		t.Fatalf("unexpected text:\n got %q\nwant %q", text, want)
	}
}

func TestRenderFallsBackWithoutPlaceholders(t *testing.T) {
	doc := documentXML(para("Just a letterhead"))
	r := New(mapFetcher{"plain": buildDocx(t, doc, nil)})
	out, err := r.Render(context.Background(), sampleContent(), "plain")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	text, err := extract.Extract(out)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	assertContains(t, text, sampleContent().Summary)
	assertNotContains(t, text, "letterhead")
}

func TestRenderTemplateErrors(t *testing.T) {
	cases := map[string][]string{
		"unclosed loop":       {para("{#experience}"), para("{.}")},
		"mismatched close":    {para("{#experience}{.}{/skills}")},
		"stray close":         {para("{/experience}")},
		"empty open":          {para("{#}")},
		"blank close":         {para("{/ }")},
		"unterminated open":   {para("{#experience")},
		"item outside loop":   {para("{.}")},
		"loop over unknown":   {para("{#projects}{.}{/projects}")},
		"close in other cell": {para("{#experience}"), `<w:tbl><w:tr><w:tc>` + para("{/experience}") + `</w:tc></w:tr></w:tbl>`},
	}
	for name, paras := range cases {
		t.Run(name, func(t *testing.T) {
			r := New(mapFetcher{"bad": buildDocx(t, documentXML(paras...), nil)})
			_, err := r.Render(context.Background(), sampleContent(), "bad")
			if !errors.Is(err, ErrTemplateRender) {
				t.Fatalf("expected ErrTemplateRender, got %v", err)
			}
		})
	}
}

func TestRenderTemplateUnavailable(t *testing.T) {
	r := New(mapFetcher{"not-a-zip": []byte("hello")})

	if _, err := r.Render(context.Background(), sampleContent(), "missing"); !errors.Is(err, ErrTemplateUnavailable) {
		t.Fatalf("expected ErrTemplateUnavailable for missing ref, got %v", err)
	}
	if _, err := r.Render(context.Background(), sampleContent(), "not-a-zip"); !errors.Is(err, ErrTemplateUnavailable) {
		t.Fatalf("expected ErrTemplateUnavailable for non-archive, got %v", err)
	}
	if _, err := New(nil).Render(context.Background(), sampleContent(), "anything"); !errors.Is(err, ErrTemplateUnavailable) {
		t.Fatalf("expected ErrTemplateUnavailable without fetcher, got %v", err)
	}
}

func TestLexTags(t *testing.T) {
	tags, err := lexTags("Hi {name}, {#a}{.}{/a} {not closed")
	if err != nil {
		t.Fatalf("lex failed: %v", err)
	}
	kinds := []tagKind{tagText, tagField, tagText, tagOpen, tagItem, tagClose, tagText}
	if len(tags) != len(kinds) {
		t.Fatalf("expected %d tags, got %d: %#v", len(kinds), len(tags), tags)
	}
	for i, k := range kinds {
		if tags[i].kind != k {
			t.Fatalf("tag %d: expected kind %d, got %d", i, k, tags[i].kind)
		}
	}
	if tags[6].raw != " {not closed" {
		t.Fatalf("expected literal tail, got %q", tags[6].raw)
	}
}

func para(text string) string {
	return `<w:p><w:r><w:t xml:space="preserve">` + text + `</w:t></w:r></w:p>`
}

func documentXML(paras ...string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
		`<w:document xmlns:w="` + wmlNamespace + `"><w:body>` + strings.Join(paras, "") + `<w:sectPr/></w:body></w:document>`
}

func buildDocx(t *testing.T, document string, extra map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	write := func(name, body string) {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write("[Content_Types].xml", contentTypesXML)
	write(documentPart, document)
	for name, body := range extra {
		write(name, body)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func readPart(t *testing.T, docx []byte, name string) string {
	t.Helper()
	reader, err := zip.NewReader(bytes.NewReader(docx), int64(len(docx)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	for _, f := range reader.File {
		if f.Name == name {
			data, err := readZipFile(f)
			if err != nil {
				t.Fatalf("read %s: %v", name, err)
			}
			return string(data)
		}
	}
	t.Fatalf("%s not found", name)
	return ""
}

func readDocumentXML(t *testing.T, docx []byte) string {
	return readPart(t, docx, documentPart)
}

func assertContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected %q to contain %q", haystack, needle)
	}
}

func assertNotContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if strings.Contains(haystack, needle) {
		t.Fatalf("expected %q not to contain %q", haystack, needle)
	}
}
