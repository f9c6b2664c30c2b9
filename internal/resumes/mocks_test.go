package resumes

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"resume-tailor/internal/llm"
	"resume-tailor/internal/shared/storage/object"
	"resume-tailor/resume/model"
)

type mockRewriter struct{ mock.Mock }

func (m *mockRewriter) Rewrite(ctx context.Context, jobDescription, originalText string) (model.Content, error) {
	args := m.Called(ctx, jobDescription, originalText)
	return args.Get(0).(model.Content), args.Error(1)
}

func (m *mockRewriter) ExtractTitleAndSkills(ctx context.Context, jobDescription string) llm.TitleSkills {
	return m.Called(ctx, jobDescription).Get(0).(llm.TitleSkills)
}

type mockRenderer struct{ mock.Mock }

func (m *mockRenderer) Render(ctx context.Context, content model.Content, templateRef string) ([]byte, error) {
	args := m.Called(ctx, content, templateRef)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

type mockConverter struct{ mock.Mock }

func (m *mockConverter) Convert(ctx context.Context, docx []byte) ([]byte, error) {
	args := m.Called(ctx, docx)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

type mockFetcher struct{ mock.Mock }

func (m *mockFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	args := m.Called(ctx, ref)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

type mockStore struct{ mock.Mock }

func (m *mockStore) Upload(ctx context.Context, storagePath string, r io.Reader, contentType string) (object.Artifact, error) {
	args := m.Called(ctx, storagePath, r, contentType)
	if fn, ok := args.Get(0).(func(string) object.Artifact); ok {
		return fn(storagePath), args.Error(1)
	}
	return args.Get(0).(object.Artifact), args.Error(1)
}

func (m *mockStore) Open(ctx context.Context, storagePath string) (io.ReadCloser, error) {
	args := m.Called(ctx, storagePath)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Error(1)
}

func (m *mockStore) Delete(ctx context.Context, storagePath string) error {
	return m.Called(ctx, storagePath).Error(0)
}

func (m *mockStore) PathFromURL(publicURL string) (string, bool) {
	args := m.Called(publicURL)
	return args.String(0), args.Bool(1)
}

// artifactAt mimics a store that serves uploads under a public host.
func artifactAt(storagePath string) object.Artifact {
	return object.Artifact{PublicURL: "https://files.example/" + storagePath, StoragePath: storagePath}
}
