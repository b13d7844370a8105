package finder

import (
	"os"
	"path/filepath"
	"testing"
)

// writeFile creates a file (and its parents) under root with dummy content
func writeFile(t *testing.T, root string, rel string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("// stub\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFindSourceFiles_FiltersAndSorts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/app.ts")
	writeFile(t, root, "src/util.py")
	writeFile(t, root, "lib/core.go")
	writeFile(t, root, "README.md")
	writeFile(t, root, "notes.txt")

	files, err := FindSourceFiles(root, Options{})
	if err != nil {
		t.Fatalf("FindSourceFiles() error = %v", err)
	}

	if len(files) != 3 {
		t.Fatalf("Expected 3 source files, got %d: %v", len(files), files)
	}
	// Sorted order: lib/core.go < src/app.ts < src/util.py
	wantOrder := []string{"lib/core.go", "src/app.ts", "src/util.py"}
	for i, want := range wantOrder {
		if filepath.ToSlash(files[i]) != filepath.ToSlash(filepath.Join(root, want)) {
			t.Errorf("files[%d] = %s, want suffix %s", i, files[i], want)
		}
	}
}

func TestFindSourceFiles_IgnoresDefaultDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/app.ts")
	writeFile(t, root, "node_modules/lodash/index.js")
	writeFile(t, root, "dist/bundle.js")
	writeFile(t, root, "__pycache__/cached.py")

	files, err := FindSourceFiles(root, Options{})
	if err != nil {
		t.Fatalf("FindSourceFiles() error = %v", err)
	}

	if len(files) != 1 {
		t.Fatalf("Expected only src/app.ts, got %v", files)
	}
}

func TestFindSourceFiles_IncludeExclude(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/api/handler.ts")
	writeFile(t, root, "src/api/handler.test.ts")
	writeFile(t, root, "src/cli/main.ts")

	tests := []struct {
		name string
		opts Options
		want int
	}{
		{"include api", Options{Include: []string{"api"}}, 2},
		{"exclude tests", Options{Exclude: []string{".test."}}, 2},
		{"include api exclude tests", Options{Include: []string{"api"}, Exclude: []string{".test."}}, 1},
		{"include misses everything", Options{Include: []string{"nonexistent"}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := FindSourceFiles(root, tt.opts)
			if err != nil {
				t.Fatalf("FindSourceFiles() error = %v", err)
			}
			if len(files) != tt.want {
				t.Errorf("Expected %d files, got %d: %v", tt.want, len(files), files)
			}
		})
	}
}

func TestFindSourceFiles_CustomExtensions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.ts")
	writeFile(t, root, "b.go")

	files, err := FindSourceFiles(root, Options{Extensions: []string{".go"}})
	if err != nil {
		t.Fatalf("FindSourceFiles() error = %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "b.go" {
		t.Errorf("Expected only b.go, got %v", files)
	}
}
