package util

import (
	"strings"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "plain", in: "resume.docx", want: "resume.docx"},
		{name: "separators", in: " a/b\\c.docx ", want: "a_b_c.docx"},
		{name: "traversal", in: "../etc/passwd", wantErr: true},
		{name: "blank", in: "   ", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeFileName(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q want %q", got, tt.want)
			}
		})
	}
}

func TestUniqueNameDiffers(t *testing.T) {
	a := UniqueName("cv.docx")
	b := UniqueName("cv.docx")
	if a == b {
		t.Fatalf("expected distinct names, got %q twice", a)
	}
	if !strings.HasSuffix(a, "-cv.docx") {
		t.Fatalf("expected name suffix, got %q", a)
	}
}
