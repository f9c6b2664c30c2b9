package resumes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"resume-tailor/internal/convert"
	"resume-tailor/internal/developers"
	"resume-tailor/internal/llm"
	"resume-tailor/internal/shared/lock"
	"resume-tailor/internal/shared/metrics"
	"resume-tailor/internal/shared/storage/object"
	"resume-tailor/internal/shared/telemetry"
	"resume-tailor/internal/shared/util"
	"resume-tailor/resume/model"
)

// DeveloperReader is the slice of the developers store the pipeline needs.
type DeveloperReader interface {
	GetByID(ctx context.Context, id string) (developers.Developer, error)
	ListByUser(ctx context.Context, userID string) ([]developers.Developer, error)
}

// ContentRewriter produces structured content from résumé text.
type ContentRewriter interface {
	Rewrite(ctx context.Context, jobDescription, originalText string) (model.Content, error)
	ExtractTitleAndSkills(ctx context.Context, jobDescription string) llm.TitleSkills
}

// DocumentRenderer merges content into a template archive.
type DocumentRenderer interface {
	Render(ctx context.Context, content model.Content, templateRef string) ([]byte, error)
}

// Fetcher resolves a stored document reference to its bytes.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// Service orchestrates résumé generation and exposes the stored records.
type Service struct {
	Repo       Repo
	Developers DeveloperReader
	Rewriter   ContentRewriter
	Renderer   DocumentRenderer
	Converter  convert.Converter
	Store      object.ObjectStore
	Fetch      Fetcher
	Locker     lock.Locker
	TempDir    string
	Now        func() time.Time

	lockOnce  sync.Once
	localLock lock.Locker
}

// Listed is a résumé with the name of the developer it was generated for.
type Listed struct {
	Resume
	DeveloperName string
}

// EnsurePortable attaches a PDF rendition to an existing record. A record that
// already has one is returned unchanged without touching the store or engine.
func (s *Service) EnsurePortable(ctx context.Context, id string) (Resume, error) {
	resume, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Resume{}, err
	}
	if resume.HasPDF() {
		telemetry.Info("portable.skip", map[string]any{"resume_id": id})
		return resume, nil
	}
	if s.Converter == nil {
		return Resume{}, fmt.Errorf("%w: no converter configured", convert.ErrConversion)
	}

	release, err := s.locker().Acquire(ctx, "resume:"+id)
	if err != nil {
		return Resume{}, fmt.Errorf("lock resume %s: %w", id, err)
	}
	defer release()

	// Another holder may have finished while we waited.
	resume, err = s.Repo.GetByID(ctx, id)
	if err != nil {
		return Resume{}, err
	}
	if resume.HasPDF() {
		telemetry.Info("portable.skip", map[string]any{"resume_id": id})
		return resume, nil
	}

	docx, err := s.Fetch.Fetch(ctx, resume.ResumeURL)
	if err != nil {
		return Resume{}, fmt.Errorf("fetch resume document: %w", err)
	}
	pdf, err := s.Converter.Convert(ctx, docx)
	metrics.IncConversion(err == nil)
	if err != nil {
		return Resume{}, err
	}

	storagePath := object.BuildPath("resumes", resume.DeveloperID, util.UniqueName("resume")+".pdf")
	artifact, err := s.Store.Upload(ctx, storagePath, bytes.NewReader(pdf), pdfContentType)
	if err != nil {
		return Resume{}, err
	}

	now := s.now()
	won, err := s.Repo.AttachPDF(ctx, id, artifact.PublicURL, now)
	if err != nil {
		s.discard(ctx, []object.Artifact{artifact})
		return Resume{}, err
	}
	if !won {
		s.discard(ctx, []object.Artifact{artifact})
		telemetry.Info("portable.superseded", map[string]any{"resume_id": id})
		return s.Repo.GetByID(ctx, id)
	}

	resume.PDFURL = artifact.PublicURL
	resume.UpdatedAt = now
	return resume, nil
}

// Get returns a résumé whose developer belongs to userID.
func (s *Service) Get(ctx context.Context, userID, id string) (Resume, error) {
	if strings.TrimSpace(id) == "" {
		return Resume{}, fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	resume, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Resume{}, err
	}
	if _, err := s.ownedDeveloper(ctx, userID, resume.DeveloperID); err != nil {
		if errors.Is(err, ErrDeveloperNotFound) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, err
	}
	return resume, nil
}

// List returns every résumé of the user's developers, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]Listed, error) {
	devs, err := s.Developers.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	var out []Listed
	for _, dev := range devs {
		items, err := s.Repo.ListByDeveloper(ctx, dev.ID)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			out = append(out, Listed{Resume: item, DeveloperName: dev.Name})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// ListByDeveloper returns one developer's résumés, newest first.
func (s *Service) ListByDeveloper(ctx context.Context, userID, developerID string) ([]Resume, error) {
	if _, err := s.ownedDeveloper(ctx, userID, developerID); err != nil {
		return nil, err
	}
	return s.Repo.ListByDeveloper(ctx, developerID)
}

func (s *Service) ownedDeveloper(ctx context.Context, userID, developerID string) (developers.Developer, error) {
	dev, err := s.Developers.GetByID(ctx, developerID)
	if errors.Is(err, developers.ErrNotFound) {
		return developers.Developer{}, ErrDeveloperNotFound
	}
	if err != nil {
		return developers.Developer{}, err
	}
	if userID != "" && dev.UserID != userID {
		return developers.Developer{}, ErrDeveloperNotFound
	}
	return dev, nil
}

func (s *Service) locker() lock.Locker {
	if s.Locker != nil {
		return s.Locker
	}
	s.lockOnce.Do(func() {
		s.localLock = lock.NewMemoryLocker()
	})
	return s.localLock
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
