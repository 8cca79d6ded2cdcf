package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func makeZip(t *testing.T, names ...string) string {
	t.Helper()

	zipPath := filepath.Join(t.TempDir(), "test.zip")
	zipFile, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}
	w := zip.NewWriter(zipFile)
	for _, name := range names {
		if name[len(name)-1] == '/' {
			hdr := &zip.FileHeader{Name: name}
			hdr.SetMode(os.ModeDir | 0755)
			if _, err := w.CreateHeader(hdr); err != nil {
				t.Fatalf("Failed to create directory %s: %v", name, err)
			}
			continue
		}
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("Failed to create file %s in zip: %v", name, err)
		}
		if _, err := fw.Write([]byte("content of " + name)); err != nil {
			t.Fatalf("Failed to write content for %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close zip writer: %v", err)
	}
	zipFile.Close()
	return zipPath
}

func TestWalk(t *testing.T) {
	zipPath := makeZip(t,
		"templates/",
		"templates/index.html",
		"templates/parts/nav.html",
		"src/app.js",
		"src/app.css",
		"README.md",
	)

	tests := []struct {
		name    string
		pattern string
		want    []string
	}{
		{name: "everything", pattern: "", want: []string{"README.md", "src/app.css", "src/app.js", "templates/index.html", "templates/parts/nav.html"}},
		{name: "single level", pattern: "templates/*.html", want: []string{"templates/index.html"}},
		{name: "any depth", pattern: "**.html", want: []string{"templates/index.html", "templates/parts/nav.html"}},
		{name: "alternatives", pattern: "src/*.{js,ts}", want: []string{"src/app.js"}},
		{name: "no match", pattern: "nonexistent/*", want: nil},
		{name: "case sensitive", pattern: "readme.md", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var visited []string
			err := Walk(zipPath, tt.pattern, func(archive string, file *zip.File) error {
				if archive != zipPath {
					t.Errorf("archive = %s, want %s", archive, zipPath)
				}
				visited = append(visited, file.Name)
				return nil
			})
			if err != nil {
				t.Fatalf("Walk() error = %v", err)
			}
			sort.Strings(visited)
			if diff := cmp.Diff(tt.want, visited); diff != "" {
				t.Errorf("visited mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWalk_BadPattern(t *testing.T) {
	zipPath := makeZip(t, "a.html")
	if err := Walk(zipPath, "[", func(string, *zip.File) error { return nil }); err == nil {
		t.Error("Expected error for bad pattern")
	}
}

func TestWalk_InvalidArchive(t *testing.T) {
	t.Run("nonexistent file", func(t *testing.T) {
		err := Walk("/nonexistent/file.zip", "", func(archive string, file *zip.File) error {
			return nil
		})
		if err == nil {
			t.Error("Expected error for nonexistent file")
		}
	})

	t.Run("invalid zip file", func(t *testing.T) {
		invalidZip := filepath.Join(t.TempDir(), "invalid.zip")
		if err := os.WriteFile(invalidZip, []byte("not a zip file"), 0644); err != nil {
			t.Fatalf("Failed to create invalid zip: %v", err)
		}
		err := Walk(invalidZip, "", func(archive string, file *zip.File) error {
			return nil
		})
		if err == nil {
			t.Error("Expected error for invalid zip file")
		}
	})

	t.Run("unsafe entry", func(t *testing.T) {
		zipPath := makeZip(t, "ok.html", "../evil.html")
		err := Walk(zipPath, "", func(archive string, file *zip.File) error {
			return nil
		})
		if err == nil {
			t.Error("Expected error for path traversal entry")
		}
	})
}

func TestWalk_EarlyTermination(t *testing.T) {
	zipPath := makeZip(t, "files/0.txt", "files/1.txt", "files/2.txt", "files/3.txt")

	var visited int
	stopErr := errors.New("stop walking")
	err := Walk(zipPath, "files/*", func(archive string, file *zip.File) error {
		visited++
		if visited == 2 {
			return stopErr
		}
		return nil
	})

	if !errors.Is(err, stopErr) {
		t.Errorf("Walk() error = %v, want %v", err, stopErr)
	}
	if visited != 2 {
		t.Errorf("visited %d files, want 2 (early termination)", visited)
	}
}

func TestWalk_FileContent(t *testing.T) {
	zipPath := makeZip(t, "test.txt")

	err := Walk(zipPath, "*.txt", func(archive string, file *zip.File) error {
		rc, err := file.Open()
		if err != nil {
			return err
		}
		defer rc.Close()

		buf := new(bytes.Buffer)
		if _, err := buf.ReadFrom(rc); err != nil {
			return err
		}
		if want := "content of test.txt"; buf.String() != want {
			t.Errorf("content = %s, want %s", buf.String(), want)
		}
		return nil
	})
	if err != nil {
		t.Errorf("Walk() error = %v", err)
	}
}

func TestIsSafePath(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"a/b.html", true},
		{"a..b/c", true},
		{"../x", false},
		{"a/../../x", false},
		{"/etc/passwd", false},
		{`\windows`, false},
	}
	for _, tt := range tests {
		if got := isSafePath(tt.name); got != tt.want {
			t.Errorf("isSafePath(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
