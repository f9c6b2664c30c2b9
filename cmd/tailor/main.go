// Command tailor runs the generation pipeline on local files without a
// database or object store, for prompt and template debugging:
//
//	go run ./cmd/tailor -resume cv.docx -job jd.txt -out out/resume.docx -pdf
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"resume-tailor/internal/bootstrap"
	"resume-tailor/internal/convert"
	"resume-tailor/internal/extract"
	"resume-tailor/internal/llm"
	"resume-tailor/internal/shared/config"
	"resume-tailor/internal/shared/telemetry"
	"resume-tailor/resume/render"
)

type fileFetcher struct{}

func (fileFetcher) Fetch(_ context.Context, ref string) ([]byte, error) {
	return os.ReadFile(ref)
}

func main() {
	cfg := config.Load()

	resumePath := flag.String("resume", "", "path to the source resume (docx or pdf)")
	jobPath := flag.String("job", "", "path to a text file holding the job description")
	outPath := flag.String("out", "./out/resume.docx", "output path for the generated docx")
	templatePath := flag.String("template", "", "optional docx template")
	withPDF := flag.Bool("pdf", false, "also convert the output to pdf")
	flag.Parse()

	telemetry.Init(cfg.Env)
	defer telemetry.Sync()

	if strings.TrimSpace(*resumePath) == "" || strings.TrimSpace(*jobPath) == "" {
		exitErr("-resume and -job are required")
	}

	ctx := context.Background()
	resumeBytes, err := os.ReadFile(*resumePath)
	if err != nil {
		exitErr(fmt.Sprintf("read resume: %v", err))
	}
	jobBytes, err := os.ReadFile(*jobPath)
	if err != nil {
		exitErr(fmt.Sprintf("read job description: %v", err))
	}

	text, err := extract.Document(resumeBytes)
	if err != nil {
		exitErr(fmt.Sprintf("extract resume text: %v", err))
	}
	if !extract.Usable(text) {
		exitErr("resume has no extractable text")
	}

	completer, err := bootstrap.NewCompleter(ctx, cfg)
	if err != nil {
		exitErr(err.Error())
	}
	content, err := llm.NewRewriter(completer).Rewrite(ctx, string(jobBytes), text)
	if err != nil {
		exitErr(fmt.Sprintf("rewrite: %v", err))
	}

	docx, err := render.New(fileFetcher{}).Render(ctx, content, *templatePath)
	if err != nil {
		exitErr(fmt.Sprintf("render: %v", err))
	}
	if err := writeOutputs(*outPath, content, docx); err != nil {
		exitErr(fmt.Sprintf("write: %v", err))
	}
	fmt.Printf("OK: wrote %s\n", *outPath)

	if !*withPDF {
		return
	}
	pdf, err := convert.NewSoffice(cfg.SofficeBin, cfg.ConvertTimeout, cfg.TempDir).Convert(ctx, docx)
	if err != nil {
		exitErr(fmt.Sprintf("convert: %v", err))
	}
	pdfPath := strings.TrimSuffix(*outPath, filepath.Ext(*outPath)) + ".pdf"
	if err := os.WriteFile(pdfPath, pdf, 0o644); err != nil {
		exitErr(fmt.Sprintf("write pdf: %v", err))
	}
	fmt.Printf("OK: wrote %s\n", pdfPath)
}

// writeOutputs stores the document and the structured content next to it.
func writeOutputs(outPath string, content any, docx []byte) error {
	dir := filepath.Dir(outPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(outPath, docx, 0o644); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return err
	}
	contentPath := strings.TrimSuffix(outPath, filepath.Ext(outPath)) + ".json"
	return os.WriteFile(contentPath, payload, 0o644)
}

func exitErr(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
