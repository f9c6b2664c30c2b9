package developers

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-tailor/internal/extract"
	"resume-tailor/internal/shared/storage/object"
	"resume-tailor/internal/shared/telemetry"
	"resume-tailor/internal/shared/util"
)

const defaultMaxUploadBytes = 5 << 20

var allowedExtensions = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// Upload is a résumé file attached to a create or update request.
type Upload struct {
	FileName string
	Data     []byte
}

// Input carries the writable fields. Nil pointers leave a field unchanged on update.
type Input struct {
	Name        *string
	Link        *string
	Information *string
	File        *Upload
}

// Service contains business logic for developers.
type Service struct {
	Repo           Repo
	Store          object.ObjectStore
	MaxUploadBytes int64
	Now            func() time.Time
}

// Create stores a new developer, uploading and extracting the résumé file when present.
func (s *Service) Create(ctx context.Context, userID string, in Input) (Developer, error) {
	if userID == "" {
		return Developer{}, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return Developer{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	now := s.now()
	dev := Developer{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.apply(ctx, &dev, in); err != nil {
		return Developer{}, err
	}
	if err := s.Repo.Create(ctx, dev); err != nil {
		return Developer{}, err
	}
	return dev, nil
}

// Update changes the supplied fields of a developer owned by userID.
func (s *Service) Update(ctx context.Context, userID, id string, in Input) (Developer, error) {
	dev, err := s.Get(ctx, userID, id)
	if err != nil {
		return Developer{}, err
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return Developer{}, fmt.Errorf("%w: name cannot be blank", ErrInvalidInput)
	}
	if err := s.apply(ctx, &dev, in); err != nil {
		return Developer{}, err
	}
	dev.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, dev); err != nil {
		return Developer{}, err
	}
	return dev, nil
}

// Get returns a developer owned by userID. Other users' developers read as not found.
func (s *Service) Get(ctx context.Context, userID, id string) (Developer, error) {
	if strings.TrimSpace(id) == "" {
		return Developer{}, fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	dev, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Developer{}, err
	}
	if dev.UserID != userID {
		return Developer{}, ErrNotFound
	}
	return dev, nil
}

// List returns the user's developers ordered by name.
func (s *Service) List(ctx context.Context, userID string) ([]Developer, error) {
	return s.Repo.ListByUser(ctx, userID)
}

func (s *Service) apply(ctx context.Context, dev *Developer, in Input) error {
	if in.Name != nil {
		dev.Name = strings.TrimSpace(*in.Name)
	}
	if in.Link != nil {
		dev.Link = strings.TrimSpace(*in.Link)
	}
	if in.Information != nil {
		dev.Information = strings.TrimSpace(*in.Information)
	}
	if in.File == nil {
		return nil
	}

	link, text, err := s.storeResume(ctx, dev.UserID, *in.File)
	if err != nil {
		return err
	}
	dev.Link = link
	if in.Information == nil && extract.Usable(text) {
		dev.Information = text
	}
	return nil
}

// storeResume uploads the file and returns its public URL and extracted text.
// Extraction failures leave the text empty; the upload still stands.
func (s *Service) storeResume(ctx context.Context, userID string, file Upload) (string, string, error) {
	name, err := util.SanitizeFileName(file.FileName)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	contentType, ok := allowedExtensions[strings.ToLower(filepath.Ext(name))]
	if !ok {
		return "", "", fmt.Errorf("%w: resume must be a pdf, doc or docx file", ErrInvalidInput)
	}
	limit := s.MaxUploadBytes
	if limit <= 0 {
		limit = defaultMaxUploadBytes
	}
	if len(file.Data) == 0 {
		return "", "", fmt.Errorf("%w: resume file is empty", ErrInvalidInput)
	}
	if int64(len(file.Data)) > limit {
		return "", "", fmt.Errorf("%w: resume file exceeds %d bytes", ErrInvalidInput, limit)
	}

	storagePath := object.BuildPath("developers", util.HashUserKey(userID), util.UniqueName(name))
	artifact, err := s.Store.Upload(ctx, storagePath, bytes.NewReader(file.Data), contentType)
	if err != nil {
		return "", "", err
	}

	text, err := extract.Document(file.Data)
	if err != nil {
		telemetry.Warn("developer.extract_failed", map[string]any{"path": storagePath, "err": err})
		text = ""
	}
	return artifact.PublicURL, text, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
