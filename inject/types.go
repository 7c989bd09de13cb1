// Package inject defines the bean-side contract shared by the proxygen
// generator, the code it emits, and the runtime that hosts generated proxies:
// type arguments, qualifiers, resolution contexts, bean lookup, and
// reflection-free executable method handles.
package inject

import "strings"

// Argument describes a lookup type: a fully qualified type name plus any
// generic type arguments. Generated constructors build Arguments to resolve
// the proxy target and its methods.
type Argument struct {
	TypeName      string
	TypeArguments []Argument
}

// ArgumentOf builds an Argument for a type name with optional type arguments.
func ArgumentOf(typeName string, typeArguments ...Argument) Argument {
	return Argument{TypeName: typeName, TypeArguments: typeArguments}
}

// String renders the argument in Go type-argument notation, e.g.
// "example.Repository[example.User]".
func (a Argument) String() string {
	if len(a.TypeArguments) == 0 {
		return a.TypeName
	}
	parts := make([]string, len(a.TypeArguments))
	for i, ta := range a.TypeArguments {
		parts[i] = ta.String()
	}
	return a.TypeName + "[" + strings.Join(parts, ", ") + "]"
}

// Qualifier narrows a bean lookup to a subset of candidates. Implementations
// must have a stable key: two qualifiers with the same key select the same
// candidates.
type Qualifier interface {
	QualifierKey() string
}

type namedQualifier string

func (q namedQualifier) QualifierKey() string { return string(q) }

// Named returns a Qualifier selecting beans registered under the given name.
func Named(name string) Qualifier { return namedQualifier(name) }

func qualifierKey(q Qualifier) string {
	if q == nil {
		return ""
	}
	return q.QualifierKey()
}

// ResolutionContext is a per-injection snapshot of the state needed to
// resolve a dependency. Lazy proxies retain a copy at construction time and
// spend it on first access; a context must not be reused after that.
type ResolutionContext interface {
	// Copy returns an independent snapshot safe to retain past the current
	// resolution.
	Copy() ResolutionContext
}
