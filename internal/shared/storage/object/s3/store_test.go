package s3

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "user/file.pdf", want: "user/file.pdf"},
		{name: "simple prefix", prefix: "root", key: "user/file.pdf", want: "root/user/file.pdf"},
		{name: "prefix trailing slash", prefix: "root/", key: "user/file.pdf", want: "root/user/file.pdf"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/user/file.pdf", want: "root/user/file.pdf"},
		{name: "nested prefix", prefix: "root/sub", key: "user/file.pdf", want: "root/sub/user/file.pdf"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

func TestPublicBase(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name, explicit, endpoint, region, want string
	}{
		{name: "explicit wins", explicit: "https://cdn.example/", endpoint: "http://minio:9000", region: "eu-west-1", want: "https://cdn.example"},
		{name: "endpoint path style", endpoint: "http://minio:9000", want: "http://minio:9000/resumes"},
		{name: "regional", region: "eu-west-1", want: "https://resumes.s3.eu-west-1.amazonaws.com"},
		{name: "us-east-1", region: "us-east-1", want: "https://resumes.s3.amazonaws.com"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := publicBase(tt.explicit, tt.endpoint, "resumes", tt.region); got != tt.want {
				t.Fatalf("publicBase = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUploadAgainstS3CompatibleEndpoint(t *testing.T) {
	var gotMethod, gotPath, gotACL, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotACL = r.Header.Get("X-Amz-Acl")
		gotType = r.Header.Get("Content-Type")
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store, err := New(context.Background(), Options{
		Region:          "us-east-1",
		Bucket:          "resumes",
		Prefix:          "prod",
		Endpoint:        srv.URL,
		AccessKeyID:     "test",
		SecretAccessKey: "test",
		HTTPClient:      srv.Client(),
	})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	art, err := store.Upload(context.Background(), "resumes/dev-1/cv.pdf", strings.NewReader("%PDF-1.4"), "application/pdf")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/resumes/prod/resumes/dev-1/cv.pdf" {
		t.Fatalf("unexpected request %s %s", gotMethod, gotPath)
	}
	if gotACL != "public-read" {
		t.Fatalf("expected public-read ACL, got %q", gotACL)
	}
	if gotType != "application/pdf" {
		t.Fatalf("unexpected content type %q", gotType)
	}
	if art.PublicURL != srv.URL+"/resumes/prod/resumes/dev-1/cv.pdf" {
		t.Fatalf("unexpected public url %q", art.PublicURL)
	}
	if p, ok := store.PathFromURL(art.PublicURL); !ok || p != "resumes/dev-1/cv.pdf" {
		t.Fatalf("PathFromURL = %q, %v", p, ok)
	}
}
