package resumes

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-tailor/internal/developers"
	"resume-tailor/internal/extract"
	"resume-tailor/internal/llm"
	"resume-tailor/internal/shared/metrics"
	"resume-tailor/internal/shared/storage/object"
	"resume-tailor/internal/shared/telemetry"
	"resume-tailor/internal/shared/tempfile"
	"resume-tailor/internal/shared/util"
	"resume-tailor/resume/model"
)

const (
	docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	pdfContentType  = "application/pdf"
)

// State is one stage of a generation run.
type State int

const (
	StateValidate State = iota
	StateExtractOrRead
	StateRewrite
	StateRender
	StateConvert
	StatePersist
	StateCleanup
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateValidate:
		return "validate"
	case StateExtractOrRead:
		return "extract_or_read"
	case StateRewrite:
		return "rewrite"
	case StateRender:
		return "render"
	case StateConvert:
		return "convert"
	case StatePersist:
		return "persist"
	case StateCleanup:
		return "cleanup"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// next is the transition function. Convert only runs for portable output.
func next(s State, portable bool) State {
	switch s {
	case StateValidate:
		return StateExtractOrRead
	case StateExtractOrRead:
		return StateRewrite
	case StateRewrite:
		return StateRender
	case StateRender:
		if portable {
			return StateConvert
		}
		return StatePersist
	case StateConvert:
		return StatePersist
	case StatePersist:
		return StateCleanup
	case StateCleanup:
		return StateDone
	default:
		return StateFailed
	}
}

// run carries the state of one generation request between stages.
type run struct {
	req      GenerateRequest
	dev      developers.Developer
	title    string
	skills   string
	text     string
	content  model.Content
	scope    *tempfile.Scope
	docxPath string
	pdfPath  string
	uploaded []object.Artifact
	resume   Resume
}

func (r *run) portable() bool {
	return r.req.Format == FormatPortable
}

func (r *run) close() {
	if r.scope != nil {
		_ = r.scope.Close()
	}
}

// GenerateResume runs the pipeline once. Any failure aborts the request and no
// record is created; artifacts already uploaded by the run are deleted best-effort.
func (s *Service) GenerateResume(ctx context.Context, req GenerateRequest) (Resume, error) {
	metrics.IncGenerationStarted()
	started := time.Now()

	r := &run{req: req}
	defer r.close()

	state := StateValidate
	for state != StateDone {
		stageStart := time.Now()
		if err := s.step(ctx, r, state); err != nil {
			s.abort(ctx, r, state, err)
			return Resume{}, err
		}
		telemetry.Info("pipeline.stage", map[string]any{
			"stage":        state.String(),
			"developer_id": req.DeveloperID,
			"duration_ms":  time.Since(stageStart).Milliseconds(),
		})
		state = next(state, r.portable())
	}

	metrics.IncGenerationCompleted()
	metrics.ObserveGenerationDurationMs(float64(time.Since(started).Milliseconds()))
	return r.resume, nil
}

func (s *Service) step(ctx context.Context, r *run, state State) error {
	switch state {
	case StateValidate:
		return s.validate(ctx, r)
	case StateExtractOrRead:
		return s.readSource(ctx, r)
	case StateRewrite:
		return s.rewrite(ctx, r)
	case StateRender:
		return s.render(ctx, r)
	case StateConvert:
		return s.convert(ctx, r)
	case StatePersist:
		return s.persist(ctx, r)
	case StateCleanup:
		r.close()
		return nil
	default:
		return fmt.Errorf("unexpected pipeline state %s", state)
	}
}

func (s *Service) abort(ctx context.Context, r *run, state State, err error) {
	metrics.IncStageFailure(state.String())
	metrics.IncGenerationFailed()
	class := Classify(err)
	fields := map[string]any{
		"stage":        state.String(),
		"developer_id": r.req.DeveloperID,
		"class":        class.String(),
		"err":          err,
	}
	if class == ClassInternal || class == ClassExternal {
		telemetry.Error("pipeline.failed", fields)
	} else {
		telemetry.Warn("pipeline.failed", fields)
	}
	s.discard(ctx, r.uploaded)
	r.uploaded = nil
}

func (s *Service) validate(ctx context.Context, r *run) error {
	r.req.JobDescription = strings.TrimSpace(r.req.JobDescription)
	if r.req.JobDescription == "" {
		return fmt.Errorf("%w: job description is required", ErrInvalidInput)
	}
	if strings.TrimSpace(r.req.DeveloperID) == "" {
		return fmt.Errorf("%w: developer id is required", ErrInvalidInput)
	}
	switch r.req.Format {
	case "":
		r.req.Format = FormatDocument
	case FormatDocument, FormatPortable:
	default:
		return fmt.Errorf("%w: unsupported format %q", ErrInvalidInput, r.req.Format)
	}
	if r.portable() && s.Converter == nil {
		return fmt.Errorf("%w: portable output is not configured", ErrInvalidInput)
	}

	dev, err := s.Developers.GetByID(ctx, r.req.DeveloperID)
	if errors.Is(err, developers.ErrNotFound) {
		return ErrDeveloperNotFound
	}
	if err != nil {
		return err
	}
	if r.req.UserID != "" && dev.UserID != r.req.UserID {
		return ErrDeveloperNotFound
	}
	r.dev = dev
	return nil
}

// readSource prefers the stored information and falls back to extracting the
// developer's résumé file. No usable text stops the run before the rewrite.
func (s *Service) readSource(ctx context.Context, r *run) error {
	if extract.Usable(r.dev.Information) {
		r.text = r.dev.Information
		return nil
	}
	if strings.TrimSpace(r.dev.Link) == "" || s.Fetch == nil {
		return llm.ErrEmptyInput
	}
	data, err := s.Fetch.Fetch(ctx, r.dev.Link)
	if err != nil {
		return fmt.Errorf("fetch developer resume: %w", err)
	}
	text, err := extract.Document(data)
	if err != nil {
		return err
	}
	if !extract.Usable(text) {
		return llm.ErrEmptyInput
	}
	r.text = text
	return nil
}

func (s *Service) rewrite(ctx context.Context, r *run) error {
	r.title = strings.TrimSpace(r.req.Title)
	r.skills = strings.TrimSpace(r.req.Skills)
	if r.title == "" || r.skills == "" {
		ts := s.Rewriter.ExtractTitleAndSkills(ctx, r.req.JobDescription)
		if r.title == "" {
			r.title = ts.Title
		}
		if r.skills == "" {
			r.skills = ts.Skills
		}
	}

	content, err := s.Rewriter.Rewrite(ctx, r.req.JobDescription, r.text)
	if err != nil {
		return err
	}
	if strings.TrimSpace(content.Name) == "" {
		content.Name = r.dev.Name
	}
	if strings.TrimSpace(content.Title) == "" {
		content.Title = r.title
	}
	r.content = content
	return nil
}

func (s *Service) render(ctx context.Context, r *run) error {
	data, err := s.Renderer.Render(ctx, r.content, templateRef(r.dev.Link))
	if err != nil {
		return err
	}
	scope, err := tempfile.New(s.TempDir)
	if err != nil {
		return err
	}
	r.scope = scope
	r.docxPath, err = scope.WriteFile("resume.docx", data)
	return err
}

func (s *Service) convert(ctx context.Context, r *run) error {
	docx, err := os.ReadFile(r.docxPath)
	if err != nil {
		return fmt.Errorf("read rendered document: %w", err)
	}
	pdf, err := s.Converter.Convert(ctx, docx)
	metrics.IncConversion(err == nil)
	if err != nil {
		return err
	}
	r.pdfPath, err = r.scope.WriteFile("resume.pdf", pdf)
	return err
}

// persist uploads the artifacts and creates the record last.
func (s *Service) persist(ctx context.Context, r *run) error {
	base := object.BuildPath("resumes", r.dev.ID, util.UniqueName("resume"))

	docx, err := s.uploadFile(ctx, r.docxPath, base+".docx", docxContentType)
	if err != nil {
		return err
	}
	r.uploaded = append(r.uploaded, docx)

	now := s.now()
	resume := Resume{
		ID:          uuid.NewString(),
		DeveloperID: r.dev.ID,
		JobID:       strings.TrimSpace(r.req.JobID),
		Title:       r.title,
		Skills:      r.skills,
		ResumeURL:   docx.PublicURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if r.pdfPath != "" {
		pdf, err := s.uploadFile(ctx, r.pdfPath, base+".pdf", pdfContentType)
		if err != nil {
			return err
		}
		r.uploaded = append(r.uploaded, pdf)
		resume.PDFURL = pdf.PublicURL
	}

	if err := s.Repo.Create(ctx, resume); err != nil {
		return fmt.Errorf("save resume: %w", err)
	}
	r.uploaded = nil
	r.resume = resume
	return nil
}

func (s *Service) uploadFile(ctx context.Context, localPath, storagePath, contentType string) (object.Artifact, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return object.Artifact{}, fmt.Errorf("open %s: %w", filepath.Base(localPath), err)
	}
	defer f.Close()
	return s.Store.Upload(ctx, storagePath, f, contentType)
}

// discard deletes artifacts from a failed run. Failures are logged only.
func (s *Service) discard(ctx context.Context, artifacts []object.Artifact) {
	for _, a := range artifacts {
		if err := s.Store.Delete(context.WithoutCancel(ctx), a.StoragePath); err != nil {
			telemetry.Warn("pipeline.discard_failed", map[string]any{"path": a.StoragePath, "err": err})
		}
	}
}

// templateRef returns link when it names a .docx document usable as a template.
func templateRef(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	p := link
	if u, err := url.Parse(link); err == nil && u.Path != "" {
		p = u.Path
	}
	if strings.EqualFold(path.Ext(p), ".docx") {
		return link
	}
	return ""
}
