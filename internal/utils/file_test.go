package utils

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestGetFileExtension(t *testing.T) {
	tests := map[string]string{
		"photo.JPG":        "jpg",
		"dir/image.webp":   "webp",
		"noext":            "",
		"archive.tar.gz":   "gz",
		"/tmp/x.y/picture": "",
	}
	for in, want := range tests {
		if got := GetFileExtension(in); got != want {
			t.Errorf("GetFileExtension(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsImageFile(t *testing.T) {
	for _, name := range []string{"a.png", "b.JPEG", "c.webp"} {
		if !IsImageFile(name) {
			t.Errorf("%s should be an image", name)
		}
	}
	for _, name := range []string{"a.txt", "targets.json", "noext"} {
		if IsImageFile(name) {
			t.Errorf("%s should not be an image", name)
		}
	}
}

func TestGenerateOutputFilename(t *testing.T) {
	tests := []struct {
		in, dir, suffix, format, want string
	}{
		{"photos/beach.jpg", "out", "_redacted", "png", filepath.Join("out", "beach_redacted.png")},
		{"beach.jpg", "out", "", "", filepath.Join("out", "beach.jpg")},
		{"noext", ".", "_r", "", filepath.Join(".", "noext_r.png")},
	}
	for _, tt := range tests {
		if got := GenerateOutputFilename(tt.in, tt.dir, tt.suffix, tt.format); got != tt.want {
			t.Errorf("GenerateOutputFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestListImageFiles(t *testing.T) {
	dir := t.TempDir()
	os.MkdirAll(filepath.Join(dir, "sub"), 0755)
	for _, name := range []string{"a.png", "b.txt", filepath.Join("sub", "c.jpg")} {
		os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644)
	}

	files, err := ListImageFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(files)
	if len(files) != 2 || filepath.Base(files[0]) != "a.png" || filepath.Base(files[1]) != "c.jpg" {
		t.Errorf("files = %v", files)
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.png")
	os.WriteFile(file, make([]byte, 2048), 0644)

	if !FileExists(file) || FileExists(dir) || FileExists(filepath.Join(dir, "missing")) {
		t.Error("FileExists mismatch")
	}
	if !DirExists(dir) || DirExists(file) {
		t.Error("DirExists mismatch")
	}
	if got := FileSize(file); got != "2.0 KiB" {
		t.Errorf("FileSize = %q", got)
	}
	if got := FileSize(filepath.Join(dir, "missing")); got != "?" {
		t.Errorf("FileSize(missing) = %q", got)
	}
	if err := EnsureDir(filepath.Join(dir, "a", "b")); err != nil || !DirExists(filepath.Join(dir, "a", "b")) {
		t.Errorf("EnsureDir failed: %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	if got := SanitizeFilename(` a:b*c?.`); got != "a_b_c_" {
		t.Errorf("SanitizeFilename = %q", got)
	}
}

func TestFormatFileSize(t *testing.T) {
	tests := map[int64]string{
		0:       "0 B",
		512:     "512 B",
		1536:    "1.5 KiB",
		5 << 20: "5.0 MiB",
		-1:      "0 B",
	}
	for in, want := range tests {
		if got := FormatFileSize(in); got != want {
			t.Errorf("FormatFileSize(%d) = %q, want %q", in, got, want)
		}
	}
}
