// Package proxy generates proxy types at compile time: for a target type it
// synthesizes a new type that routes selected method calls through an
// interceptor chain before reaching the real implementation. The generated
// source depends only on the aop and inject runtime packages and performs no
// reflection on any call path.
package proxy

// ProxySuffix is the fixed suffix appended to the target's simple name to
// form the generated type name. The runtime relies on this naming.
const ProxySuffix = "Intercepted"

// Spec is the identity and strategy selection for one generated proxy.
type Spec struct {
	// PackagePath and PackageName locate the package the proxy is generated
	// into (the target's package).
	PackagePath string
	PackageName string

	// Name is the target's simple type name.
	Name string

	// IsInterface marks an interface target. ImplementInterface controls
	// whether the generated type implements that interface itself.
	IsInterface        bool
	ImplementInterface bool

	// AdditionalInterfaces are extra interfaces the generated type must
	// implement, named as they are written in the target package.
	AdditionalInterfaces []string

	// Imports maps the package names appearing in qualified signature type
	// names (time in time.Duration) to their import paths, so every emitted
	// signature pulls its foreign packages into the generated file's import
	// block.
	Imports map[string]string

	// ProxyTarget wraps a separately resolved target instance rather than
	// intercepting the type itself. HotSwap, Lazy and CacheLazyTarget
	// refine how that instance is obtained and held; they are only
	// meaningful when ProxyTarget is set, and CacheLazyTarget only when
	// Lazy is.
	ProxyTarget     bool
	HotSwap         bool
	Lazy            bool
	CacheLazyTarget bool
}

// normalize applies the flag implications: the refinement flags are dropped
// without their prerequisite.
func (s Spec) normalize() Spec {
	if !s.ProxyTarget {
		s.HotSwap = false
		s.Lazy = false
	}
	if !s.Lazy {
		s.CacheLazyTarget = false
	}
	return s
}

// ProxyName is the generated type name.
func (s Spec) ProxyName() string { return s.Name + ProxySuffix }

// QualifiedName is the package-qualified target type name, as recorded in
// the generated marker methods and used for bean lookups.
func (s Spec) QualifiedName() string {
	if s.PackageName == "" {
		return s.Name
	}
	return s.PackageName + "." + s.Name
}

// TargetFieldType is the type the target field (and Swap signature) uses:
// the interface itself for interface targets, a pointer for struct targets.
func (s Spec) TargetFieldType() string {
	if s.IsInterface {
		return s.Name
	}
	return "*" + s.Name
}
