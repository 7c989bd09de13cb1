package proxy

import (
	"strings"
	"unicode/utf8"

	"github.com/dave/jennifer/jen"
)

// typeExpr renders a type name from the source model. The model spells
// foreign types package-qualified (time.Duration), so each qualified
// identifier whose package the Spec knows is routed through the file's
// import tracking; everything else passes through verbatim. Without this,
// a signature crossing packages would render a file that never imports
// the packages it references.
func (w *Writer) typeExpr(name string) *jen.Statement {
	s := jen.Empty()
	var raw strings.Builder
	flush := func() {
		if raw.Len() > 0 {
			s.Id(raw.String())
			raw.Reset()
		}
	}
	for i := 0; i < len(name); {
		if !isIdentStart(name[i]) {
			raw.WriteByte(name[i])
			i++
			continue
		}
		j := i + 1
		for j < len(name) && isIdentPart(name[j]) {
			j++
		}
		ident := name[i:j]
		path, known := w.spec.Imports[ident]
		if known && j+1 < len(name) && name[j] == '.' && isIdentStart(name[j+1]) {
			k := j + 2
			for k < len(name) && isIdentPart(name[k]) {
				k++
			}
			flush()
			s.Qual(path, name[j+1:k])
			i = k
			continue
		}
		raw.WriteString(ident)
		i = j
	}
	flush()
	return s
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= utf8.RuneSelf
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
