package internalcheck

import (
	"fmt"
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// TestCGOConfinedToInternal enforces the package layout rule from
// internal/cgo's doc: all cgo lives in internal/cgo, nowhere else. Everything
// outside it talks to libffi through that package's Go surface only.
func TestCGOConfinedToInternal(t *testing.T) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles,
	}

	pkgs, err := packages.Load(cfg, "github.com/coinbase/libffi-go/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}

	var findings []string

	for _, pkg := range pkgs {
		if strings.HasSuffix(pkg.PkgPath, "/internal/cgo") {
			continue
		}

		for _, file := range pkg.GoFiles {
			fset := token.NewFileSet()
			f, err := parser.ParseFile(fset, file, nil, parser.ImportsOnly)
			if err != nil {
				t.Fatalf("parse %s: %v", file, err)
			}

			for _, imp := range f.Imports {
				if imp.Path.Value == `"C"` {
					pos := fset.Position(imp.Pos())
					findings = append(findings, fmt.Sprintf("%s: import \"C\" outside internal/cgo", pos))
				}
			}
		}
	}

	if len(findings) > 0 {
		t.Fatalf("cgo confinement violation:\n%s", strings.Join(findings, "\n"))
	}
}

// TestInternalCgoImportedOnlyByFFI keeps the dependency arrow pointing one
// way: only pkg/ffi and its subpackages may import the bindings package.
func TestInternalCgoImportedOnlyByFFI(t *testing.T) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedImports,
	}

	pkgs, err := packages.Load(cfg, "github.com/coinbase/libffi-go/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}

	const bindings = "github.com/coinbase/libffi-go/internal/cgo"
	var findings []string

	for _, pkg := range pkgs {
		if pkg.PkgPath == bindings {
			continue
		}
		if _, ok := pkg.Imports[bindings]; !ok {
			continue
		}
		if !strings.HasPrefix(pkg.PkgPath, "github.com/coinbase/libffi-go/pkg/ffi") {
			findings = append(findings, fmt.Sprintf("%s imports %s", pkg.PkgPath, bindings))
		}
	}

	if len(findings) > 0 {
		t.Fatalf("bindings layering violation:\n%s", strings.Join(findings, "\n"))
	}
}
