// Package model is the frontend-independent source model the proxy writer
// consumes: class identity, method signatures, parameter lists, return
// types, and the precomputed override relationship. The writer treats this
// package as read-only input; it never derives type information itself.
package model

// TypeRef names a type as seen at a use site. Name is the erased (fully
// substituted) type name; Generic is the declaration-site name when the use
// site flows through a type parameter, empty when the two coincide.
type TypeRef struct {
	Name    string
	Generic string

	// Interface marks an interface-typed use site. Only interface-typed
	// values can be narrowed by a type assertion in generated code.
	Interface bool
}

// GenericName returns the declaration-site name, falling back to Name.
func (t TypeRef) GenericName() string {
	if t.Generic == "" {
		return t.Name
	}
	return t.Generic
}

// Param is a single method parameter.
type Param struct {
	Name string
	Type TypeRef
}

// Method describes a method or constructor declaration.
type Method struct {
	Name    string
	Params  []Param
	Results []TypeRef

	// Abstract marks a declaration without a body (an interface method).
	Abstract bool
	// Default marks an interface method that carries a concrete default
	// body.
	Default bool
	// Depth is the embedding depth the declaration was promoted from:
	// 0 for a declaration on the type itself.
	Depth int

	// Owning is the type whose member set this declaration belongs to.
	Owning *Class
}

// IsVoid reports whether the method declares no results.
func (m *Method) IsVoid() bool { return len(m.Results) == 0 }

// ParamTypeNames returns the erased parameter type names in order.
func (m *Method) ParamTypeNames() []string {
	out := make([]string, len(m.Params))
	for i, p := range m.Params {
		out[i] = p.Type.Name
	}
	return out
}

// ResultTypeNames returns the erased result type names in order.
func (m *Method) ResultTypeNames() []string {
	out := make([]string, len(m.Results))
	for i, r := range m.Results {
		out[i] = r.Name
	}
	return out
}

// Class describes a named type: an interface or a concrete struct type with
// its member set and, for concrete types, its declared constructor function.
type Class struct {
	PackagePath string
	PackageName string
	Name        string
	IsInterface bool

	// Methods is the full member set, declared and promoted.
	Methods []*Method

	// Constructor is the declared constructor (the New<Name> function), nil
	// when the type has none.
	Constructor *Method

	// Bindings are interceptor-binding names attached to the type
	// declaration through proxygen:binding directive comments.
	Bindings []string

	// Imports maps the package names appearing in qualified signature type
	// names to their import paths.
	Imports map[string]string
}

// QualifiedName is the package-qualified type name.
func (c *Class) QualifiedName() string {
	if c.PackageName == "" {
		return c.Name
	}
	return c.PackageName + "." + c.Name
}

// Oracle supplies the precomputed override relationship between two
// declarations. Deriving it requires full hierarchy and substitution
// knowledge, which lives in the frontend, not here.
type Oracle interface {
	// Overrides reports whether declaration a overrides declaration b.
	Overrides(a, b *Method) bool
}

// OverrideOf scans the class member set for a more specific declaration
// overriding m, per the oracle. Returns nil when none exists.
func (c *Class) OverrideOf(m *Method, oracle Oracle) *Method {
	for _, candidate := range c.Methods {
		if candidate == m || candidate.Name != m.Name {
			continue
		}
		if oracle.Overrides(candidate, m) {
			return candidate
		}
	}
	return nil
}

// EmbeddingOracle is the default override oracle for Go member sets: a
// declaration overrides another when it shadows it from a shallower
// embedding depth.
type EmbeddingOracle struct{}

// Overrides implements Oracle.
func (EmbeddingOracle) Overrides(a, b *Method) bool {
	return a.Name == b.Name && a.Depth < b.Depth
}
