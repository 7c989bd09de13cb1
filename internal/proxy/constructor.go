package proxy

import (
	"strconv"

	"github.com/dave/jennifer/jen"

	"github.com/veldt/proxygen/internal/model"
)

// Injected trailing parameter names. Their positions are fixed: original
// parameter count + 0..3.
const (
	paramResolutionContext = "resolutionContext"
	paramBeanContext       = "beanContext"
	paramQualifier         = "qualifier"
	paramInterceptors      = "interceptors"
)

// newConstructorModel is the synthesized constructor descriptor delegated to
// the bean-metadata writer: the declared constructor's parameters followed
// by the four injected infrastructure parameters.
func (w *Writer) newConstructorModel() *model.Method {
	ctor := &model.Method{Name: "New" + w.spec.ProxyName()}
	if w.declaredConstructor != nil {
		ctor.Params = append(ctor.Params, w.declaredConstructor.Params...)
	}
	ctor.Params = append(ctor.Params,
		model.Param{Name: paramResolutionContext, Type: model.TypeRef{Name: "inject.ResolutionContext"}},
		model.Param{Name: paramBeanContext, Type: model.TypeRef{Name: "inject.BeanContext"}},
		model.Param{Name: paramQualifier, Type: model.TypeRef{Name: "inject.Qualifier"}},
		model.Param{Name: paramInterceptors, Type: model.TypeRef{Name: "[]aop.InterceptorRegistration"}},
	)
	ctor.Results = append(ctor.Results,
		model.TypeRef{Name: "*" + w.spec.ProxyName()},
		model.TypeRef{Name: "error"},
	)
	return ctor
}

// emitConstructor writes the New<Proxy> function: super-call analog,
// locator/qualifier assignment, target-strategy initialization, structural
// table allocation, and per-method executable-method and interceptor-array
// population.
func (w *Writer) emitConstructor(f *jen.File) {
	proxyName := w.spec.ProxyName()

	var params []jen.Code
	var origParams []model.Param
	if w.declaredConstructor != nil {
		origParams = w.declaredConstructor.Params
	}
	for _, p := range origParams {
		params = append(params, jen.Id(p.Name).Add(w.typeExpr(p.Type.Name)))
	}
	params = append(params,
		jen.Id(paramResolutionContext).Qual(injectPkg, "ResolutionContext"),
		jen.Id(paramBeanContext).Qual(injectPkg, "BeanContext"),
		jen.Id(paramQualifier).Qual(injectPkg, "Qualifier"),
		jen.Id(paramInterceptors).Index().Qual(aopPkg, "InterceptorRegistration"),
	)

	var stmts []jen.Code
	stmts = append(stmts, w.emitSuperCall()...)

	if w.spec.ProxyTarget {
		stmts = append(stmts,
			jen.Id(receiver).Dot(fieldBeanLocator).Op("=").Id(paramBeanContext),
			jen.Id(receiver).Dot(fieldBeanQualifier).Op("=").Id(paramQualifier),
		)
		w.emitTargetConstructorInit(&stmts)
	}

	count := w.registry.count()
	stmts = append(stmts,
		jen.Id(receiver).Dot(fieldProxyMethods).Op("=").Make(jen.Index().Qual(injectPkg, "ExecutableMethod"), jen.Lit(count)),
		jen.Id(receiver).Dot(fieldInterceptors).Op("=").Make(jen.Index().Index().Qual(aopPkg, "Interceptor"), jen.Lit(count)),
	)

	if w.spec.ProxyTarget {
		w.emitLocatorMethodInit(&stmts)
	} else if count > 0 {
		w.emitDefinitionMethodInit(&stmts)
	}

	stmts = append(stmts, jen.Return(jen.Id(receiver), jen.Nil()))

	f.Commentf("// New%s wires the generated proxy over %s.", proxyName, w.spec.QualifiedName())
	f.Func().Id("New"+proxyName).Params(params...).Params(jen.Op("*").Id(proxyName), jen.Error()).Block(stmts...)
}

// emitSuperCall initializes the proxy value. Concrete targets run the
// declared constructor with the original argument subset and embed the
// result; interface targets and default constructors start from the zero
// value.
func (w *Writer) emitSuperCall() []jen.Code {
	proxyName := w.spec.ProxyName()
	if w.spec.IsInterface || w.declaredConstructor == nil || w.defaultConstructor {
		return []jen.Code{jen.Id(receiver).Op(":=").Op("&").Id(proxyName).Values()}
	}

	ctor := w.declaredConstructor
	args := make([]jen.Code, len(ctor.Params))
	for i, p := range ctor.Params {
		args[i] = jen.Id(p.Name)
	}
	call := jen.Id("New" + w.spec.Name).Call(args...)

	var stmts []jen.Code
	returnsErr := len(ctor.Results) > 1 && ctor.Results[len(ctor.Results)-1].Name == "error"
	if returnsErr {
		stmts = append(stmts,
			jen.List(jen.Id("base"), jen.Err()).Op(":=").Add(call),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
		)
	} else {
		stmts = append(stmts, jen.Id("base").Op(":=").Add(call))
	}

	embedded := jen.Id("base")
	if len(ctor.Results) > 0 && ctor.Results[0].Name == "*"+w.spec.Name {
		embedded = jen.Op("*").Id("base")
	}
	stmts = append(stmts, jen.Id(receiver).Op(":=").Op("&").Id(proxyName).Values(jen.Dict{
		jen.Id(w.spec.Name): embedded,
	}))
	return stmts
}

// emitLocatorMethodInit populates the structural tables by looking each
// proxied method up on the bean-metadata locator, then resolving its bound
// interceptor array.
func (w *Writer) emitLocatorMethodInit(stmts *[]jen.Code) {
	for _, ref := range w.registry.all() {
		methodVar := jen.Id(ref.localName())
		paramTypes := make([]jen.Code, len(ref.paramTypes))
		for i, t := range ref.paramTypes {
			paramTypes[i] = jen.Lit(t)
		}
		*stmts = append(*stmts,
			jen.List(methodVar.Clone(), jen.Err()).Op(":=").Id(paramBeanContext).Dot("ProxyTargetMethod").Call(
				w.lookupArgument(), jen.Id(paramQualifier), jen.Lit(ref.name), jen.Index().String().Values(paramTypes...),
			),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
			jen.Id(receiver).Dot(fieldProxyMethods).Index(jen.Lit(ref.index)).Op("=").Add(methodVar.Clone()),
			jen.Id(receiver).Dot(fieldInterceptors).Index(jen.Lit(ref.index)).Op("=").Qual(aopPkg, w.resolveEntryPoint(ref)).Call(
				jen.Id(paramBeanContext), methodVar.Clone(), jen.Id(paramInterceptors),
			),
		)
	}
}

// emitDefinitionMethodInit populates the structural tables from the
// co-generated executable-methods definition, by bean-metadata index.
func (w *Writer) emitDefinitionMethodInit(stmts *[]jen.Code) {
	defName := w.spec.ProxyName() + "Methods"
	*stmts = append(*stmts,
		jen.Id("executableMethods").Op(":=").Id("New"+defName).Call(jen.Id(receiver)),
	)
	for _, ref := range w.registry.all() {
		*stmts = append(*stmts,
			jen.Id(receiver).Dot(fieldProxyMethods).Index(jen.Lit(ref.index)).Op("=").Id("executableMethods").Dot("MethodAt").Call(jen.Lit(ref.methodIndex)),
			jen.Id(receiver).Dot(fieldInterceptors).Index(jen.Lit(ref.index)).Op("=").Qual(aopPkg, w.resolveEntryPoint(ref)).Call(
				jen.Id(paramBeanContext), jen.Id(receiver).Dot(fieldProxyMethods).Index(jen.Lit(ref.index)), jen.Id(paramInterceptors),
			),
		)
	}
}

// resolveEntryPoint picks the interceptor-resolution rule: introduction
// style for abstract or interface-only declarations under introduction
// advice, around style otherwise.
func (w *Writer) resolveEntryPoint(ref *methodRef) string {
	if w.isIntroduction && ref.method != nil && ref.method.Abstract && !ref.method.Default {
		return "ResolveIntroductionInterceptors"
	}
	return "ResolveAroundInterceptors"
}

// localName is the constructor-local variable holding the resolved handle.
func (r *methodRef) localName() string {
	return "method" + strconv.Itoa(r.index)
}
