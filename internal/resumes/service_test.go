package resumes

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"resume-tailor/internal/convert"
	"resume-tailor/internal/developers"
	"resume-tailor/internal/shared/storage/object"
	"resume-tailor/internal/shared/storage/object/local"
)

func seedResume(t *testing.T, f *fixture, pdfURL string) Resume {
	t.Helper()
	dev := f.addDeveloper(t, developers.Developer{Information: "5 years backend development"})
	created := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	resume := Resume{
		ID:          "res-1",
		DeveloperID: dev.ID,
		Title:       "Senior Go Engineer",
		Skills:      "Go, Kubernetes",
		ResumeURL:   "https://files.example/resumes/dev-1/resume.docx",
		PDFURL:      pdfURL,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	require.NoError(t, f.repo.Create(context.Background(), resume))
	return resume
}

func TestEnsurePortableSkipsExistingPDF(t *testing.T) {
	f := newFixture(t)
	seeded := seedResume(t, f, "https://files.example/resumes/dev-1/resume.pdf")

	first, err := f.svc.EnsurePortable(context.Background(), seeded.ID)
	require.NoError(t, err)
	second, err := f.svc.EnsurePortable(context.Background(), seeded.ID)
	require.NoError(t, err)

	assert.Equal(t, seeded, first)
	assert.Equal(t, first, second)
	f.fetch.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
	f.converter.AssertNotCalled(t, "Convert", mock.Anything, mock.Anything)
	f.store.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEnsurePortableConvertsAndAttaches(t *testing.T) {
	f := newFixture(t)
	seeded := seedResume(t, f, "")
	f.fetch.On("Fetch", mock.Anything, seeded.ResumeURL).Return([]byte("docx-bytes"), nil).Once()
	f.converter.On("Convert", mock.Anything, []byte("docx-bytes")).Return([]byte("%PDF-1.4"), nil).Once()
	f.store.On("Upload", mock.Anything, isExt(".pdf"), mock.Anything, pdfContentType).Return(artifactAt, nil).Once()

	got, err := f.svc.EnsurePortable(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, got.PDFURL)
	assert.True(t, got.UpdatedAt.After(seeded.UpdatedAt))

	stored, err := f.repo.GetByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, got.PDFURL, stored.PDFURL)

	again, err := f.svc.EnsurePortable(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, got.PDFURL, again.PDFURL)
	f.converter.AssertNumberOfCalls(t, "Convert", 1)
}

func TestEnsurePortableUnknownRecord(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.EnsurePortable(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestEnsurePortableConversionFailureLeavesRecord(t *testing.T) {
	f := newFixture(t)
	seeded := seedResume(t, f, "")
	f.fetch.On("Fetch", mock.Anything, seeded.ResumeURL).Return([]byte("docx-bytes"), nil)
	f.converter.On("Convert", mock.Anything, mock.Anything).Return(nil, convert.ErrConversion)

	_, err := f.svc.EnsurePortable(context.Background(), seeded.ID)
	require.ErrorIs(t, err, convert.ErrConversion)

	stored, err := f.repo.GetByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.PDFURL)
	f.store.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// racingRepo serves a stale record without a PDF on the first two reads, as
// if another caller attached one between the re-read and the update.
type racingRepo struct {
	*MemoryRepo
	stale Resume
	reads *int32
}

func (r racingRepo) GetByID(ctx context.Context, id string) (Resume, error) {
	if atomic.AddInt32(r.reads, 1) <= 2 {
		return r.stale, nil
	}
	return r.MemoryRepo.GetByID(ctx, id)
}

func TestEnsurePortableLoserDiscardsUpload(t *testing.T) {
	f := newFixture(t)
	seeded := seedResume(t, f, "")
	const winner = "https://files.example/winner.pdf"
	won, err := f.repo.AttachPDF(context.Background(), seeded.ID, winner, time.Now())
	require.NoError(t, err)
	require.True(t, won)

	var reads int32
	f.svc.Repo = racingRepo{MemoryRepo: f.repo, stale: seeded, reads: &reads}
	f.fetch.On("Fetch", mock.Anything, seeded.ResumeURL).Return([]byte("docx-bytes"), nil)
	f.converter.On("Convert", mock.Anything, mock.Anything).Return([]byte("%PDF-1.4"), nil)

	var uploaded string
	f.store.On("Upload", mock.Anything, isExt(".pdf"), mock.Anything, pdfContentType).
		Run(func(args mock.Arguments) { uploaded = args.String(1) }).
		Return(artifactAt, nil)
	f.store.On("Delete", mock.Anything, mock.Anything).Return(nil)

	got, err := f.svc.EnsurePortable(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, winner, got.PDFURL)
	f.store.AssertCalled(t, "Delete", mock.Anything, uploaded)
}

func TestEnsurePortableConcurrentCallsConvertOnce(t *testing.T) {
	f := newFixture(t)
	seeded := seedResume(t, f, "")

	store := local.New(t.TempDir(), "http://localhost:8080/files")
	f.svc.Store = store

	var conversions int32
	f.svc.Converter = convertFunc(func(ctx context.Context, docx []byte) ([]byte, error) {
		atomic.AddInt32(&conversions, 1)
		time.Sleep(20 * time.Millisecond)
		return []byte("%PDF-1.4"), nil
	})
	f.fetch.On("Fetch", mock.Anything, seeded.ResumeURL).Return([]byte("docx-bytes"), nil)

	const callers = 8
	results := make([]Resume, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := f.svc.EnsurePortable(context.Background(), seeded.ID)
			assert.NoError(t, err)
			results[i] = got
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&conversions))
	for _, r := range results {
		assert.Equal(t, results[0].PDFURL, r.PDFURL)
	}
	path, ok := store.PathFromURL(results[0].PDFURL)
	require.True(t, ok)
	data, err := object.Download(context.Background(), store, path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
}

type convertFunc func(ctx context.Context, docx []byte) ([]byte, error)

func (f convertFunc) Convert(ctx context.Context, docx []byte) ([]byte, error) {
	return f(ctx, docx)
}

func TestGetHidesOtherUsersResume(t *testing.T) {
	f := newFixture(t)
	seeded := seedResume(t, f, "")

	got, err := f.svc.Get(context.Background(), "user-1", seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, got.ID)

	_, err = f.svc.Get(context.Background(), "user-2", seeded.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListMergesDevelopersNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.addDeveloper(t, developers.Developer{ID: "dev-a", Name: "Ada"})
	b := f.addDeveloper(t, developers.Developer{ID: "dev-b", Name: "Grace"})
	f.addDeveloper(t, developers.Developer{ID: "dev-c", UserID: "user-2"})

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, f.repo.Create(ctx, Resume{ID: "r1", DeveloperID: a.ID, CreatedAt: base}))
	require.NoError(t, f.repo.Create(ctx, Resume{ID: "r2", DeveloperID: b.ID, CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, f.repo.Create(ctx, Resume{ID: "r3", DeveloperID: a.ID, CreatedAt: base.Add(2 * time.Hour)}))
	require.NoError(t, f.repo.Create(ctx, Resume{ID: "r4", DeveloperID: "dev-c", CreatedAt: base.Add(3 * time.Hour)}))

	list, err := f.svc.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "r3", list[0].ID)
	assert.Equal(t, "Ada", list[0].DeveloperName)
	assert.Equal(t, "r2", list[1].ID)
	assert.Equal(t, "Grace", list[1].DeveloperName)
	assert.Equal(t, "r1", list[2].ID)

	_, err = f.svc.ListByDeveloper(ctx, "user-1", "dev-c")
	require.ErrorIs(t, err, ErrDeveloperNotFound)
}
