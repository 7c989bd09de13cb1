package proxy

import (
	"bytes"
	"os"

	"github.com/dave/jennifer/jen"
	"github.com/sirupsen/logrus"

	"github.com/veldt/proxygen/internal/model"
)

// Writer accumulates the shape of one proxy type across the visitation
// phase and renders the complete source file at Finalize. A Writer is
// single-use and not safe for concurrent visitation.
type Writer struct {
	spec           Spec
	strategy       targetStrategy
	isIntroduction bool
	oracle         model.Oracle

	// parent is the enclosing bean's metadata writer when the proxy is
	// generated alongside an existing definition; nil for standalone
	// proxies. Structural metadata routes to the parent when present.
	parent   *BeanMetadataWriter
	metadata *BeanMetadataWriter

	bindings  *bindingSet
	registry  *methodRegistry
	delegates []*delegateMethod

	// deferred holds injection-point visits replayed into the metadata
	// writer at Finalize, after the synthesized constructor is recorded.
	deferred []func()

	declaredConstructor *model.Method
	defaultConstructor  bool
	visitedConstructor  bool

	finalized bool
	source    string

	command string
	version string

	log *logrus.Entry
}

// NewWriter builds a writer for around advice over a concrete or interface
// target. An interface target always proxies the bean it stands for, so the
// proxy-target flag is forced on and the interface itself is implemented.
func NewWriter(parent *BeanMetadataWriter, spec Spec, oracle model.Oracle, bindings ...Binding) *Writer {
	spec.ProxyTarget = spec.ProxyTarget || spec.IsInterface
	spec.ImplementInterface = spec.IsInterface
	return newWriter(parent, spec, oracle, false, bindings)
}

// NewIntroductionWriter builds a writer for introduction advice: abstract
// declarations are satisfied by interceptors instead of a separate target,
// so all proxy-target refinements are inapplicable and dropped.
func NewIntroductionWriter(spec Spec, oracle model.Oracle, bindings ...Binding) (*Writer, error) {
	spec.ImplementInterface = spec.IsInterface
	if !spec.ImplementInterface && len(spec.AdditionalInterfaces) == 0 {
		return nil, ErrNoInterfaces
	}
	spec.ProxyTarget = false
	spec.HotSwap = false
	spec.Lazy = false
	spec.CacheLazyTarget = false
	return newWriter(nil, spec, oracle, true, bindings), nil
}

func newWriter(parent *BeanMetadataWriter, spec Spec, oracle model.Oracle, introduction bool, bindings []Binding) *Writer {
	spec = spec.normalize()
	if oracle == nil {
		oracle = model.EmbeddingOracle{}
	}
	w := &Writer{
		spec:           spec,
		strategy:       strategyFor(spec),
		isIntroduction: introduction,
		oracle:         oracle,
		parent:         parent,
		metadata:       NewBeanMetadataWriter(spec.ProxyName()),
		bindings:       newBindingSet(),
		registry:       newMethodRegistry(),
		log: logrus.WithFields(logrus.Fields{
			"type":  spec.QualifiedName(),
			"proxy": spec.ProxyName(),
		}),
	}
	for _, b := range bindings {
		w.bindings.add(b)
	}
	return w
}

// ProxyTarget reports whether the generated proxy dispatches to a separate
// target instance.
func (w *Writer) ProxyTarget() bool { return w.spec.ProxyTarget }

// ProxyName is the generated type's name.
func (w *Writer) ProxyName() string { return w.spec.ProxyName() }

// ProxyMethodCount is the number of distinct proxied operations registered
// so far.
func (w *Writer) ProxyMethodCount() int { return w.registry.count() }

// Metadata exposes the writer's own bean-metadata recorder.
func (w *Writer) Metadata() *BeanMetadataWriter { return w.metadata }

// metadataTarget is where structural metadata lands: the parent definition
// when one encloses this proxy, otherwise the proxy's own.
func (w *Writer) metadataTarget() *BeanMetadataWriter {
	if w.parent != nil {
		return w.parent
	}
	return w.metadata
}

// SetProvenance records the invoking command and tool version for the
// generated file header.
func (w *Writer) SetProvenance(command, version string) {
	w.command = command
	w.version = version
}

// VisitInterceptorBinding records an interceptor binding carried by the
// target declaration. Duplicate and empty bindings are dropped.
func (w *Writer) VisitInterceptorBinding(bindings ...Binding) {
	for _, b := range bindings {
		w.bindings.add(b)
	}
}

// VisitConstructor records the target's declared constructor. The generated
// constructor keeps its parameters and appends the injected infrastructure
// parameters after them.
func (w *Writer) VisitConstructor(ctor *model.Method) error {
	if w.finalized {
		return ErrFinalized
	}
	w.declaredConstructor = ctor
	w.defaultConstructor = false
	w.visitedConstructor = true
	return nil
}

// VisitDefaultConstructor records that the target constructs from its zero
// value.
func (w *Writer) VisitDefaultConstructor() error {
	if w.finalized {
		return ErrFinalized
	}
	w.declaredConstructor = nil
	w.defaultConstructor = true
	w.visitedConstructor = true
	return nil
}

// VisitAroundMethod registers one declaration for interception. Repeat
// visits with the same erased signature collapse onto the first
// registration. A declaration shadowed by a more specific one in the same
// member set is recorded as a plain delegate instead of an interception
// slot, unless the two erase to the same signature, in which case the more
// specific declaration simply takes the slot.
func (w *Writer) VisitAroundMethod(declaring *model.Class, m *model.Method) error {
	if w.finalized {
		return ErrFinalized
	}
	if overriddenBy := declaring.OverrideOf(m, w.oracle); overriddenBy != nil {
		visitedKey := erasedKey(m.Name, m.ParamTypeNames())
		overriddenKey := erasedKey(overriddenBy.Name, genericParamNames(m))
		if visitedKey != overriddenKey {
			w.delegates = append(w.delegates, &delegateMethod{visited: m, overriddenBy: overriddenBy})
			return nil
		}
	}

	ref, added := w.registry.register(newMethodRef(declaring, m))
	if !added {
		return nil
	}
	if !w.spec.ProxyTarget && !w.spec.IsInterface && (!m.Abstract || m.Default) {
		ref.bridgeName = bridgePrefix + m.Name
	}
	ref.methodIndex = w.metadataTarget().VisitExecutableMethod(declaring, m, w.spec.ProxyName(), ref.bridgeName)
	return nil
}

// VisitIntroductionMethod registers one declaration under introduction
// advice. Concrete declarations mixed into an otherwise abstract target are
// still registered; the resolution entry point distinguishes them at
// construction time.
func (w *Writer) VisitIntroductionMethod(declaring *model.Class, m *model.Method) error {
	return w.VisitAroundMethod(declaring, m)
}

// VisitFieldInjectionPoint defers a field injection-point record until
// Finalize.
func (w *Writer) VisitFieldInjectionPoint(declaring *model.Class, name, typeName string) error {
	if w.finalized {
		return ErrFinalized
	}
	w.deferred = append(w.deferred, func() {
		w.metadata.VisitFieldInjectionPoint(declaring, name, typeName)
	})
	return nil
}

// VisitMethodInjectionPoint defers a method injection-point record until
// Finalize.
func (w *Writer) VisitMethodInjectionPoint(declaring *model.Class, m *model.Method) error {
	if w.finalized {
		return ErrFinalized
	}
	w.deferred = append(w.deferred, func() {
		w.metadata.VisitMethodInjectionPoint(declaring, m)
	})
	return nil
}

// VisitPostConstructMethod defers a post-construct record until Finalize.
func (w *Writer) VisitPostConstructMethod(declaring *model.Class, m *model.Method) error {
	if w.finalized {
		return ErrFinalized
	}
	w.deferred = append(w.deferred, func() {
		w.metadata.VisitPostConstructMethod(declaring, m)
	})
	return nil
}

// VisitPreDestroyMethod defers a pre-destroy record until Finalize.
func (w *Writer) VisitPreDestroyMethod(declaring *model.Class, m *model.Method) error {
	if w.finalized {
		return ErrFinalized
	}
	w.deferred = append(w.deferred, func() {
		w.metadata.VisitPreDestroyMethod(declaring, m)
	})
	return nil
}

// Finalize seals the writer: synthesizes the constructor metadata, replays
// the deferred injection-point visits, copies inherited lifecycle visits
// forward when dispatch stays on the proxy itself, and renders the
// complete generated source.
func (w *Writer) Finalize() error {
	if w.finalized {
		return ErrFinalized
	}
	if !w.visitedConstructor {
		return ErrNoConstructor
	}
	w.finalized = true

	if w.parent != nil && !w.spec.ProxyTarget {
		for _, visit := range w.parent.PostConstructVisits() {
			w.metadata.VisitPostConstructMethod(visit.Declaring, visit.Method)
		}
	}

	w.metadata.VisitConstructor(w.newConstructorModel())
	for _, replay := range w.deferred {
		replay()
	}
	w.deferred = nil

	f := jen.NewFilePathName(w.spec.PackagePath, w.spec.PackageName)
	for name, path := range w.spec.Imports {
		f.ImportName(path, name)
	}
	header := "Code generated by proxygen"
	if w.version != "" {
		header += " " + w.version
	}
	f.HeaderComment(header + ". DO NOT EDIT.")
	if w.command != "" {
		f.HeaderComment("Command: " + w.command)
	}

	w.emitStruct(f)
	w.emitConformance(f)
	w.emitConstructor(f)
	w.emitTargetAccessors(f)
	w.emitMarkers(f)
	for _, ref := range w.registry.all() {
		w.emitOverride(f, ref)
	}
	for _, d := range w.delegates {
		if w.registry.has(d.visited.Name) {
			continue
		}
		w.emitDelegate(f, d)
	}
	w.emitBridges(f)
	if !w.spec.ProxyTarget && w.registry.count() > 0 {
		w.emitExecutableMethodsDefinition(f)
	}

	if err := w.metadata.Finalize(); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return err
	}
	w.source = buf.String()

	w.log.WithFields(logrus.Fields{
		"strategy": w.strategy.String(),
		"methods":  w.registry.count(),
	}).Debug("proxy finalized")
	return nil
}

// emitStruct writes the proxy type declaration: the embedded base for
// concrete targets, the structural interception tables, and the target
// strategy's own fields.
func (w *Writer) emitStruct(f *jen.File) {
	var fields []jen.Code
	if !w.spec.IsInterface {
		fields = append(fields, jen.Id(w.spec.Name))
	}
	fields = append(fields,
		jen.Id(fieldInterceptors).Index().Index().Qual(aopPkg, "Interceptor"),
		jen.Id(fieldProxyMethods).Index().Qual(injectPkg, "ExecutableMethod"),
	)
	fields = append(fields, w.targetFields()...)

	f.Commentf("// %s intercepts %s.", w.spec.ProxyName(), w.spec.QualifiedName())
	f.Type().Id(w.spec.ProxyName()).Struct(fields...)
}

// emitConformance writes compile-time interface assertions for the marker
// contracts and every interface the proxy stands in for.
func (w *Writer) emitConformance(f *jen.File) {
	proxyPtr := jen.Parens(jen.Op("*").Id(w.spec.ProxyName())).Call(jen.Nil())

	var asserts []jen.Code
	add := func(t *jen.Statement) {
		asserts = append(asserts, jen.Id("_").Add(t).Op("=").Add(proxyPtr.Clone()))
	}

	if w.isIntroduction {
		add(jen.Qual(aopPkg, "Introduced"))
	} else {
		add(jen.Qual(aopPkg, "Intercepted"))
	}
	switch w.strategy {
	case strategyHotSwap:
		add(jen.Qual(aopPkg, "HotSwappableInterceptedProxy").Index(w.typeExpr(w.spec.TargetFieldType())))
	case strategyEager, strategyLazyCached:
		add(jen.Qual(aopPkg, "TargetCachingProxy"))
	case strategyLazy:
		add(jen.Qual(aopPkg, "InterceptedProxy"))
	}
	if w.spec.ImplementInterface && w.spec.IsInterface {
		add(jen.Id(w.spec.Name))
	}
	for _, iface := range w.spec.AdditionalInterfaces {
		add(w.typeExpr(iface))
	}

	f.Var().Defs(asserts...)
}

// emitMarkers writes the marker-contract methods that identify the value
// as a generated proxy at runtime.
func (w *Writer) emitMarkers(f *jen.File) {
	proxyName := w.spec.ProxyName()
	recv := jen.Id(receiver).Op("*").Id(proxyName)

	f.Comment("// InterceptedType names the declaration this proxy was generated for.")
	f.Func().Params(recv.Clone()).Id("InterceptedType").Params().String().Block(
		jen.Return(jen.Lit(w.spec.QualifiedName())),
	)

	if w.isIntroduction {
		ifaces := make([]jen.Code, 0, 1+len(w.spec.AdditionalInterfaces))
		if w.spec.ImplementInterface {
			ifaces = append(ifaces, jen.Lit(w.spec.QualifiedName()))
		}
		for _, iface := range w.spec.AdditionalInterfaces {
			ifaces = append(ifaces, jen.Lit(iface))
		}
		f.Comment("// IntroducedInterfaces lists the interfaces satisfied by interception alone.")
		f.Func().Params(recv.Clone()).Id("IntroducedInterfaces").Params().Index().String().Block(
			jen.Return(jen.Index().String().Values(ifaces...)),
		)
	}
}

// Render returns the generated source. Finalize must have run.
func (w *Writer) Render() (string, error) {
	if !w.finalized {
		return "", ErrNotFinalized
	}
	return w.source, nil
}

// WriteTo renders the generated source to path in a single write, so a
// failed run never leaves a partial artifact behind.
func (w *Writer) WriteTo(path string) error {
	src, err := w.Render()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(src), 0o644)
}
