package resumes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"resume-tailor/internal/bootstrap"
	"resume-tailor/internal/extract"
	"resume-tailor/internal/llm"
	"resume-tailor/internal/resumes"
	"resume-tailor/internal/shared/auth"
	"resume-tailor/internal/shared/config"
	"resume-tailor/internal/shared/storage/object"
)

const rewriteReply = `{
  "title": "Senior Go Engineer",
  "summary": "Backend engineer with 5 years building Go services on Kubernetes.",
  "experience": [["Built gRPC services handling 20k rps.", "Ran Kubernetes clusters across three regions."]],
  "skills": ["Backend: Go, gRPC", "Cloud: Kubernetes, AWS"]
}`

// fakeCompleter answers the title prompt and the rewrite prompt.
func fakeCompleter() llm.Completer {
	return llm.CompleterFunc(func(ctx context.Context, p llm.Prompt) (string, error) {
		if strings.Contains(p.System, "job description analyzer") {
			return `{"title":"Senior Go Engineer","skills":"Go, Kubernetes, gRPC"}`, nil
		}
		return rewriteReply, nil
	})
}

func newTestApp(t *testing.T) (*bootstrap.App, string) {
	t.Helper()
	cfg := config.Config{
		Env:             "dev",
		ObjectStoreType: "local",
		LocalStoreDir:   t.TempDir(),
		PublicBaseURL:   "http://localhost:8080",
		TempDir:         t.TempDir(),
		JWTTTL:          time.Hour,
	}
	app, err := bootstrap.BuildWith(cfg, bootstrap.Overrides{Completer: fakeCompleter()})
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	t.Cleanup(app.Close)

	signer, err := auth.NewSigner("", time.Hour, false)
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	token, err := signer.Sign(auth.Claims{Sub: "user-1", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return app, token
}

func doJSON(t *testing.T, app *bootstrap.App, token, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	return resp
}

func createDeveloper(t *testing.T, app *bootstrap.App, token string) string {
	t.Helper()
	resp := doJSON(t, app, token, http.MethodPost, "/api/v1/developers", map[string]string{
		"name":        "Ada Lovelace",
		"information": "5 years backend development with Go and PostgreSQL at two startups.",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create developer: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var dev struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &dev); err != nil {
		t.Fatalf("decode developer: %v", err)
	}
	return dev.ID
}

func TestGenerateDocumentEndToEnd(t *testing.T) {
	app, token := newTestApp(t)
	devID := createDeveloper(t, app, token)

	resp := doJSON(t, app, token, http.MethodPost, "/api/v1/resumes/generate", map[string]string{
		"jobDescription": "Senior Go Engineer, Kubernetes, gRPC",
		"developerId":    devID,
		"docType":        "docx",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var got resumes.ResumeResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.DeveloperID != devID || got.Title != "Senior Go Engineer" {
		t.Fatalf("unexpected record: %+v", got)
	}
	if !strings.Contains(got.Skills, "Kubernetes") {
		t.Fatalf("expected skills to mention Kubernetes, got %q", got.Skills)
	}
	if got.PDFURL != nil {
		t.Fatalf("expected no pdf url, got %q", *got.PDFURL)
	}

	data, err := object.NewFetcher(app.Store).Fetch(context.Background(), got.ResumeURL)
	if err != nil {
		t.Fatalf("fetch generated document: %v", err)
	}
	text, err := extract.Extract(data)
	if err != nil {
		t.Fatalf("extract generated document: %v", err)
	}
	for _, want := range []string{"Ada Lovelace", "Kubernetes", "Built gRPC services handling 20k rps."} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected generated text to contain %q, got %q", want, text)
		}
	}

	list := doJSON(t, app, token, http.MethodGet, "/api/v1/resumes", nil)
	if list.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", list.Code)
	}
	var items []resumes.ResumeResponse
	if err := json.Unmarshal(list.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(items) != 1 || items[0].Developer == nil {
		t.Fatalf("expected one listed resume with developer, got %s", list.Body.String())
	}

	fetched := doJSON(t, app, token, http.MethodGet, "/api/v1/resumes/"+got.ID, nil)
	if fetched.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", fetched.Code)
	}
}

func TestGenerateUnknownDeveloper(t *testing.T) {
	app, token := newTestApp(t)

	resp := doJSON(t, app, token, http.MethodPost, "/api/v1/resumes/generate", map[string]string{
		"jobDescription": "Senior Go Engineer",
		"developerId":    "7f1f3c1e-9a4b-4a53-8d8e-2d3a7c1b9e10",
	})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), `"not_found"`) {
		t.Fatalf("expected not_found code, got %s", resp.Body.String())
	}
}

func TestGenerateRejectsBadRequests(t *testing.T) {
	app, token := newTestApp(t)
	devID := createDeveloper(t, app, token)

	cases := map[string]map[string]string{
		"bad doc type":      {"jobDescription": "Go", "developerId": devID, "docType": "rtf"},
		"blank jd":          {"jobDescription": "   ", "developerId": devID},
		"non uuid":          {"jobDescription": "Go", "developerId": "dev-1"},
		"missing jd":        {"developerId": devID},
		"missing developer": {"jobDescription": "Go"},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			resp := doJSON(t, app, token, http.MethodPost, "/api/v1/resumes/generate", body)
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", resp.Code, resp.Body.String())
			}
		})
	}
}

func TestGenerateRequiresToken(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doJSON(t, app, "", http.MethodPost, "/api/v1/resumes/generate", map[string]string{"jobDescription": "Go"})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestGetOtherUsersResumeIsNotFound(t *testing.T) {
	app, token := newTestApp(t)
	devID := createDeveloper(t, app, token)

	resp := doJSON(t, app, token, http.MethodPost, "/api/v1/resumes/generate", map[string]string{
		"jobDescription": "Senior Go Engineer, Kubernetes, gRPC",
		"developerId":    devID,
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var got resumes.ResumeResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}

	signer, _ := auth.NewSigner("", time.Hour, false)
	other, _ := signer.Sign(auth.Claims{Sub: "user-2"})
	for _, path := range []string{"/api/v1/resumes/" + got.ID, "/api/v1/resumes/developer/" + devID} {
		if r := doJSON(t, app, other, http.MethodGet, path, nil); r.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, r.Code)
		}
	}
	if r := doJSON(t, app, other, http.MethodPost, "/api/v1/resumes/"+got.ID+"/pdf", nil); r.Code != http.StatusNotFound {
		t.Fatalf("pdf: expected 404, got %d", r.Code)
	}
}
