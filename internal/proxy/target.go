package proxy

import "github.com/dave/jennifer/jen"

// Generated identifier names. The runtime contract depends on the method
// names; the field names are private to the generated type.
const (
	fieldInterceptors      = "interceptors"
	fieldProxyMethods      = "proxyMethods"
	fieldBeanLocator       = "beanLocator"
	fieldBeanQualifier     = "beanQualifier"
	fieldTarget            = "target"
	fieldTargetLock        = "targetLock"
	fieldTargetMu          = "targetMu"
	fieldResolutionContext = "resolutionContext"

	receiver     = "p"
	bridgePrefix = "access"
)

const (
	aopPkg    = "github.com/veldt/proxygen/aop"
	injectPkg = "github.com/veldt/proxygen/inject"
)

// targetStrategy is how the wrapped instance is obtained and held. Chosen
// once from the Spec flags; the strategies are mutually exclusive.
type targetStrategy int

const (
	// strategyNone: the target itself is not proxied; proxied methods are
	// satisfied by the co-generated executable-method definition.
	strategyNone targetStrategy = iota
	// strategyEager: resolved once during construction into a final field.
	strategyEager
	// strategyHotSwap: eager, but the field is guarded by a read/write
	// lock and may be replaced through Swap.
	strategyHotSwap
	// strategyLazy: re-resolved from a retained resolution-context
	// snapshot on every access. No field, no lock.
	strategyLazy
	// strategyLazyCached: resolved on first access under double-checked
	// locking, then cached.
	strategyLazyCached
)

func strategyFor(spec Spec) targetStrategy {
	switch {
	case !spec.ProxyTarget:
		return strategyNone
	case spec.CacheLazyTarget:
		return strategyLazyCached
	case spec.Lazy:
		return strategyLazy
	case spec.HotSwap:
		return strategyHotSwap
	default:
		return strategyEager
	}
}

func (s targetStrategy) String() string {
	switch s {
	case strategyNone:
		return "none"
	case strategyEager:
		return "eager"
	case strategyHotSwap:
		return "hotswap"
	case strategyLazy:
		return "lazy"
	case strategyLazyCached:
		return "lazy-cached"
	}
	return "unknown"
}

// holdsTarget reports whether a target field exists to probe.
func (s targetStrategy) holdsTarget() bool {
	return s == strategyEager || s == strategyHotSwap || s == strategyLazyCached
}

// targetFields declares the strategy's fields, in the order the strategy
// requires them.
func (w *Writer) targetFields() []jen.Code {
	var fields []jen.Code
	if w.strategy == strategyNone {
		return fields
	}
	fields = append(fields,
		jen.Id(fieldBeanLocator).Qual(injectPkg, "BeanLocator"),
		jen.Id(fieldBeanQualifier).Qual(injectPkg, "Qualifier"),
	)
	switch w.strategy {
	case strategyEager:
		fields = append(fields, jen.Id(fieldTarget).Add(w.typeExpr(w.spec.TargetFieldType())))
	case strategyHotSwap:
		fields = append(fields,
			jen.Id(fieldTarget).Add(w.typeExpr(w.spec.TargetFieldType())),
			jen.Id(fieldTargetLock).Qual("sync", "RWMutex"),
		)
	case strategyLazy:
		fields = append(fields, jen.Id(fieldResolutionContext).Qual(injectPkg, "ResolutionContext"))
	case strategyLazyCached:
		fields = append(fields,
			jen.Id(fieldTarget).Qual("sync/atomic", "Value"),
			jen.Id(fieldTargetMu).Qual("sync", "Mutex"),
			jen.Id(fieldResolutionContext).Qual(injectPkg, "ResolutionContext"),
		)
	}
	return fields
}

// lookupArgument builds the inject.ArgumentOf(...) expression for the
// target type.
func (w *Writer) lookupArgument() *jen.Statement {
	return jen.Qual(injectPkg, "ArgumentOf").Call(jen.Lit(w.spec.QualifiedName()))
}

// emitTargetConstructorInit appends the strategy's construction-time
// initialization: immediate resolution for the eager strategies, snapshot
// retention for the lazy ones.
func (w *Writer) emitTargetConstructorInit(stmts *[]jen.Code) {
	switch w.strategy {
	case strategyEager, strategyHotSwap:
		*stmts = append(*stmts,
			jen.List(jen.Id("resolvedTarget"), jen.Err()).Op(":=").Id("beanContext").Dot("ProxyTargetBean").Call(
				jen.Id("resolutionContext"), w.lookupArgument(), jen.Id("qualifier"),
			),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
			jen.Id(receiver).Dot(fieldTarget).Op("=").Id("resolvedTarget").Assert(w.typeExpr(w.spec.TargetFieldType())),
		)
	case strategyLazy, strategyLazyCached:
		*stmts = append(*stmts,
			jen.Id(receiver).Dot(fieldResolutionContext).Op("=").Id("resolutionContext").Dot("Copy").Call(),
		)
	}
}

// resolveLazyTarget builds the re-resolution statements shared by the two
// lazy accessors. The locator field holds the bean context; the cast
// recovers the context interface the resolution call lives on.
func (w *Writer) resolveLazyTarget() []jen.Code {
	return []jen.Code{
		jen.List(jen.Id("resolvedTarget"), jen.Err()).Op(":=").Id(receiver).Dot(fieldBeanLocator).Assert(jen.Qual(injectPkg, "BeanContext")).Dot("ProxyTargetBean").Call(
			jen.Id(receiver).Dot(fieldResolutionContext), w.lookupArgument(), jen.Id(receiver).Dot(fieldBeanQualifier),
		),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Panic(jen.Err())),
	}
}

// emitTargetAccessors writes InterceptedTarget and, where the strategy
// carries them, HasCachedInterceptedTarget and Swap.
func (w *Writer) emitTargetAccessors(f *jen.File) {
	if w.strategy == strategyNone {
		return
	}
	proxyName := w.spec.ProxyName()
	recv := jen.Id(receiver).Op("*").Id(proxyName)

	f.Comment("// InterceptedTarget returns the wrapped instance.")
	switch w.strategy {
	case strategyEager:
		f.Func().Params(recv.Clone()).Id("InterceptedTarget").Params().Any().Block(
			jen.Return(jen.Id(receiver).Dot(fieldTarget)),
		)
	case strategyHotSwap:
		f.Func().Params(recv.Clone()).Id("InterceptedTarget").Params().Any().Block(
			jen.Id(receiver).Dot(fieldTargetLock).Dot("RLock").Call(),
			jen.Defer().Id(receiver).Dot(fieldTargetLock).Dot("RUnlock").Call(),
			jen.Return(jen.Id(receiver).Dot(fieldTarget)),
		)
	case strategyLazy:
		body := w.resolveLazyTarget()
		body = append(body, jen.Return(jen.Id("resolvedTarget")))
		f.Func().Params(recv.Clone()).Id("InterceptedTarget").Params().Any().Block(body...)
	case strategyLazyCached:
		// Double-checked: racy first read, re-check under the lock, then
		// resolve, store, and drop the single-use resolution context.
		body := []jen.Code{
			jen.If(jen.Id("cached").Op(":=").Id(receiver).Dot(fieldTarget).Dot("Load").Call(), jen.Id("cached").Op("!=").Nil()).Block(
				jen.Return(jen.Id("cached")),
			),
			jen.Id(receiver).Dot(fieldTargetMu).Dot("Lock").Call(),
			jen.Defer().Id(receiver).Dot(fieldTargetMu).Dot("Unlock").Call(),
			jen.If(jen.Id("cached").Op(":=").Id(receiver).Dot(fieldTarget).Dot("Load").Call(), jen.Id("cached").Op("!=").Nil()).Block(
				jen.Return(jen.Id("cached")),
			),
		}
		body = append(body, w.resolveLazyTarget()...)
		body = append(body,
			jen.Id(receiver).Dot(fieldTarget).Dot("Store").Call(jen.Id("resolvedTarget")),
			jen.Id(receiver).Dot(fieldResolutionContext).Op("=").Nil(),
			jen.Return(jen.Id("resolvedTarget")),
		)
		f.Func().Params(recv.Clone()).Id("InterceptedTarget").Params().Any().Block(body...)
	}

	if w.strategy.holdsTarget() {
		f.Comment("// HasCachedInterceptedTarget reports whether the target is resolved and stored.")
		switch w.strategy {
		case strategyHotSwap:
			f.Func().Params(recv.Clone()).Id("HasCachedInterceptedTarget").Params().Bool().Block(
				jen.Id(receiver).Dot(fieldTargetLock).Dot("RLock").Call(),
				jen.Defer().Id(receiver).Dot(fieldTargetLock).Dot("RUnlock").Call(),
				jen.Return(jen.Id(receiver).Dot(fieldTarget).Op("!=").Nil()),
			)
		case strategyLazyCached:
			f.Func().Params(recv.Clone()).Id("HasCachedInterceptedTarget").Params().Bool().Block(
				jen.Return(jen.Id(receiver).Dot(fieldTarget).Dot("Load").Call().Op("!=").Nil()),
			)
		default:
			f.Func().Params(recv.Clone()).Id("HasCachedInterceptedTarget").Params().Bool().Block(
				jen.Return(jen.Id(receiver).Dot(fieldTarget).Op("!=").Nil()),
			)
		}
	}

	if w.strategy == strategyHotSwap {
		targetType := w.spec.TargetFieldType()
		f.Comment("// Swap replaces the wrapped target and returns the previous value.")
		f.Func().Params(recv.Clone()).Id("Swap").Params(jen.Id("newTarget").Add(w.typeExpr(targetType))).Add(w.typeExpr(targetType)).Block(
			jen.Id(receiver).Dot(fieldTargetLock).Dot("Lock").Call(),
			jen.Defer().Id(receiver).Dot(fieldTargetLock).Dot("Unlock").Call(),
			jen.Id("previous").Op(":=").Id(receiver).Dot(fieldTarget),
			jen.Id(receiver).Dot(fieldTarget).Op("=").Id("newTarget"),
			jen.Return(jen.Id("previous")),
		)
	}
}
