// Package docstring reads documentation comments from Go source so that
// services can be documented without repeating their comments.
package docstring

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"strings"

	"golang.org/x/tools/go/packages"
)

// Extract loads the packages matching patterns from the current directory.
// See ExtractDir.
func Extract(ctx context.Context, patterns ...string) (map[string]string, error) {
	return ExtractDir(ctx, "", patterns...)
}

// ExtractDir loads the packages matching patterns, resolved relative to
// dir, and returns the doc comments of their named types and methods.
// Types are keyed "pkgPath.Type" and methods "pkgPath.Type/Method", the
// form expected by docs.DocServiceBuilder.DocStrings.
func ExtractDir(ctx context.Context, dir string, patterns ...string) (map[string]string, error) {
	if len(patterns) == 0 {
		patterns = []string{"."}
	}
	cfg := &packages.Config{
		Context: ctx,
		Mode:    packages.NeedName | packages.NeedFiles | packages.NeedSyntax,
		Dir:     dir,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("docstring: load packages: %w", err)
	}

	var errs []error
	packages.Visit(pkgs, nil, func(p *packages.Package) {
		for _, e := range p.Errors {
			errs = append(errs, e)
		}
	})
	if len(errs) > 0 {
		return nil, fmt.Errorf("docstring: %w", errors.Join(errs...))
	}

	out := make(map[string]string)
	for _, p := range pkgs {
		for _, f := range p.Syntax {
			collect(out, p.PkgPath, f)
		}
	}
	return out, nil
}

func collect(out map[string]string, pkgPath string, f *ast.File) {
	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			for _, spec := range d.Specs {
				ts := spec.(*ast.TypeSpec)
				doc := ts.Doc
				if doc == nil && len(d.Specs) == 1 {
					doc = d.Doc
				}
				put(out, pkgPath+"."+ts.Name.Name, doc)
			}
		case *ast.FuncDecl:
			if d.Recv == nil || len(d.Recv.List) == 0 {
				continue
			}
			if recv := receiverName(d.Recv.List[0].Type); recv != "" {
				put(out, pkgPath+"."+recv+"/"+d.Name.Name, d.Doc)
			}
		}
	}
}

func put(out map[string]string, key string, cg *ast.CommentGroup) {
	if cg == nil {
		return
	}
	if text := strings.TrimSpace(cg.Text()); text != "" {
		out[key] = text
	}
}

// receiverName returns the base type name of a receiver expression such as
// "*Service" or "Box[T]".
func receiverName(expr ast.Expr) string {
	for {
		switch e := expr.(type) {
		case *ast.StarExpr:
			expr = e.X
		case *ast.IndexExpr:
			expr = e.X
		case *ast.IndexListExpr:
			expr = e.X
		case *ast.ParenExpr:
			expr = e.X
		case *ast.Ident:
			return e.Name
		default:
			return ""
		}
	}
}
