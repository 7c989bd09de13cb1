package model

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"strings"

	"golang.org/x/tools/go/packages"
)

// LoadDir loads the Go package(s) for a directory.
func LoadDir(dir string) ([]*packages.Package, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedSyntax | packages.NeedTypes | packages.NeedTypesInfo | packages.NeedDeps | packages.NeedFiles | packages.NeedCompiledGoFiles,
		Dir:  dir,
	}
	pkgs, err := packages.Load(cfg, "./")
	if err != nil {
		return nil, err
	}
	var result []*packages.Package
	for _, p := range pkgs {
		if len(p.Errors) > 0 {
			return nil, p.Errors[0]
		}
		result = append(result, p)
	}
	return result, nil
}

// ClassFor adapts a named type from a loaded package into the source model.
// Interface types yield abstract member sets; struct types yield their full
// (declared plus promoted) pointer method set and the New<Name> constructor
// function when one is declared. Interceptor bindings come from
// proxygen:binding directive comments on the type declaration; every foreign
// package a signature mentions is recorded on the class so the generated
// file can import it.
func ClassFor(pkg *packages.Package, typeName string) (*Class, error) {
	scope := pkg.Types.Scope()
	obj := scope.Lookup(typeName)
	if obj == nil {
		return nil, fmt.Errorf("type %s not found in package %s", typeName, pkg.Name)
	}
	named, ok := obj.Type().(*types.Named)
	if !ok {
		return nil, fmt.Errorf("%s is not a named type", typeName)
	}

	cls := &Class{
		PackagePath: pkg.Types.Path(),
		PackageName: pkg.Name,
		Name:        typeName,
		Bindings:    bindingDirectives(pkg, typeName),
	}

	qualify := func(p *types.Package) string {
		if p == nil || p.Path() == pkg.Types.Path() {
			return ""
		}
		if cls.Imports == nil {
			cls.Imports = map[string]string{}
		}
		cls.Imports[p.Name()] = p.Path()
		return p.Name()
	}

	if iface, ok := named.Underlying().(*types.Interface); ok {
		cls.IsInterface = true
		for i := 0; i < iface.NumMethods(); i++ {
			fn := iface.Method(i)
			if !fn.Exported() {
				continue
			}
			m := methodFrom(fn, qualify)
			m.Abstract = true
			m.Owning = cls
			cls.Methods = append(cls.Methods, m)
		}
		return cls, nil
	}

	ms := types.NewMethodSet(types.NewPointer(named))
	for i := 0; i < ms.Len(); i++ {
		sel := ms.At(i)
		fn, ok := sel.Obj().(*types.Func)
		if !ok || !fn.Exported() {
			continue
		}
		m := methodFrom(fn, qualify)
		m.Depth = len(sel.Index()) - 1
		m.Owning = cls
		cls.Methods = append(cls.Methods, m)
	}

	if ctor, ok := scope.Lookup("New" + typeName).(*types.Func); ok {
		c := methodFrom(ctor, qualify)
		c.Owning = cls
		cls.Constructor = c
	}
	return cls, nil
}

// methodFrom builds a model method from a typed function object. For
// methods promoted out of an instantiated generic embedding, the generic
// type names come from the declaration-site (origin) signature.
func methodFrom(fn *types.Func, qualify types.Qualifier) *Method {
	sig := fn.Type().(*types.Signature)
	m := &Method{Name: fn.Name()}

	var originSig *types.Signature
	if origin := fn.Origin(); origin != nil && origin != fn {
		originSig = origin.Type().(*types.Signature)
	}

	for i := 0; i < sig.Params().Len(); i++ {
		p := sig.Params().At(i)
		name := p.Name()
		if name == "" {
			name = fmt.Sprintf("p%d", i)
		}
		ref := TypeRef{Name: types.TypeString(p.Type(), qualify), Interface: types.IsInterface(p.Type())}
		if originSig != nil && i < originSig.Params().Len() {
			if g := types.TypeString(originSig.Params().At(i).Type(), qualify); g != ref.Name {
				ref.Generic = g
			}
		}
		m.Params = append(m.Params, Param{Name: name, Type: ref})
	}
	for i := 0; i < sig.Results().Len(); i++ {
		r := sig.Results().At(i)
		ref := TypeRef{Name: types.TypeString(r.Type(), qualify), Interface: types.IsInterface(r.Type())}
		if originSig != nil && i < originSig.Results().Len() {
			if g := types.TypeString(originSig.Results().At(i).Type(), qualify); g != ref.Name {
				ref.Generic = g
			}
		}
		m.Results = append(m.Results, ref)
	}
	return m
}

// bindingDirectives collects the names carried by proxygen:binding directive
// comments on the declaration of typeName. Each directive lists one or more
// space-separated binding names.
func bindingDirectives(pkg *packages.Package, typeName string) []string {
	var names []string
	collect := func(cg *ast.CommentGroup) {
		if cg == nil {
			return
		}
		for _, c := range cg.List {
			rest, ok := strings.CutPrefix(c.Text, "//proxygen:binding")
			if !ok {
				continue
			}
			names = append(names, strings.Fields(rest)...)
		}
	}
	for _, file := range pkg.Syntax {
		for _, decl := range file.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}
			for _, s := range gd.Specs {
				ts, ok := s.(*ast.TypeSpec)
				if !ok || ts.Name.Name != typeName {
					continue
				}
				collect(gd.Doc)
				collect(ts.Doc)
			}
		}
	}
	return names
}
