package stdlib_test

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

const modulePath = "github.com/comalice/tickfsm/"

// The engine leaves stay stdlib-only; third-party deps live in the
// inspection, config and production layers.
var stdlibOnly = []string{"primitives", "queue", "timers"}

func isStdlib(path string) bool {
	first, _, _ := strings.Cut(path, "/")
	return !strings.Contains(first, ".")
}

func TestStdlibOnlyCore(t *testing.T) {
	for _, dir := range stdlibOnly {
		files, err := filepath.Glob(filepath.Join(dir, "*.go"))
		if err != nil {
			t.Fatal(err)
		}
		if len(files) == 0 {
			t.Fatalf("no sources in %s", dir)
		}
		for _, file := range files {
			if strings.HasSuffix(file, "_test.go") {
				continue
			}
			src, err := os.ReadFile(file)
			if err != nil {
				t.Fatal(err)
			}
			f, err := parser.ParseFile(token.NewFileSet(), file, src, parser.ImportsOnly)
			if err != nil {
				t.Fatalf("parse %s: %v", file, err)
			}
			for _, imp := range f.Imports {
				path, _ := strconv.Unquote(imp.Path.Value)
				if isStdlib(path) || strings.HasPrefix(path, modulePath+"internal/") {
					continue
				}
				t.Errorf("%s imports non-stdlib package %s", file, path)
			}
		}
	}
}

// core must not depend on the adapters built on top of it.
func TestCoreLayering(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("core", "*.go"))
	if err != nil {
		t.Fatal(err)
	}
	for _, file := range files {
		if strings.HasSuffix(file, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(token.NewFileSet(), file, nil, parser.ImportsOnly)
		if err != nil {
			t.Fatalf("parse %s: %v", file, err)
		}
		for _, imp := range f.Imports {
			path, _ := strconv.Unquote(imp.Path.Value)
			for _, upper := range []string{"production", "extensibility", "config"} {
				if path == modulePath+"internal/"+upper {
					t.Errorf("%s imports %s", file, path)
				}
			}
		}
	}
}
