package proxy

import (
	"strconv"

	"github.com/dave/jennifer/jen"

	"github.com/veldt/proxygen/internal/model"
)

// delegateMethod records a visited declaration that was shadowed by a more
// specific one and must forward to it instead of being intercepted.
type delegateMethod struct {
	visited      *model.Method
	overriddenBy *model.Method
}

// chainTarget is the expression passed as the chain's dispatch target: nil
// for a method satisfied by introduction advice alone, the receiver itself
// when the target is not proxied, the field for the plain eager strategy,
// and the accessor wherever the field needs guarding or resolution.
func (w *Writer) chainTarget(ref *methodRef) *jen.Statement {
	if w.isIntroduction && ref.method.Abstract && !ref.method.Default {
		return jen.Nil()
	}
	switch w.strategy {
	case strategyNone:
		return jen.Id(receiver)
	case strategyEager:
		return jen.Id(receiver).Dot(fieldTarget)
	default:
		return jen.Id(receiver).Dot("InterceptedTarget").Call()
	}
}

func (w *Writer) resultTypes(f *jen.Statement, results []model.TypeRef) {
	switch len(results) {
	case 0:
	case 1:
		f.Add(w.typeExpr(results[0].Name))
	default:
		items := make([]jen.Code, len(results))
		for i, r := range results {
			items[i] = w.typeExpr(r.Name)
		}
		f.Params(items...)
	}
}

// emitOverride writes the intercepting method body for one registry slot:
// load both structural tables at the assigned index, build the chain with
// the boxed arguments, drive it, and unbox the results.
func (w *Writer) emitOverride(f *jen.File, ref *methodRef) {
	m := ref.method
	recv := jen.Id(receiver).Op("*").Id(w.spec.ProxyName())

	params := make([]jen.Code, len(m.Params))
	for i, p := range m.Params {
		params[i] = jen.Id(p.Name).Add(w.typeExpr(p.Type.Name))
	}

	var boxedArgs jen.Code = jen.Nil()
	if len(m.Params) > 0 {
		items := make([]jen.Code, len(m.Params))
		for i, p := range m.Params {
			items[i] = jen.Id(p.Name)
		}
		boxedArgs = jen.Index().Any().Values(items...)
	}

	stmts := []jen.Code{
		jen.Id("executableMethod").Op(":=").Id(receiver).Dot(fieldProxyMethods).Index(jen.Lit(ref.index)),
		jen.Id("boundInterceptors").Op(":=").Id(receiver).Dot(fieldInterceptors).Index(jen.Lit(ref.index)),
		jen.Id("chain").Op(":=").Qual(aopPkg, "NewMethodInterceptorChain").Call(
			jen.Id("boundInterceptors"), w.chainTarget(ref), jen.Id("executableMethod"), boxedArgs,
		),
	}

	if m.IsVoid() {
		stmts = append(stmts, jen.Id("chain").Dot("Proceed").Call())
	} else {
		stmts = append(stmts, jen.Id("results").Op(":=").Id("chain").Dot("Proceed").Call())
		rets := make([]jen.Code, len(m.Results))
		for i, r := range m.Results {
			rets[i] = jen.Qual(aopPkg, "Unbox").Index(w.typeExpr(r.Name)).Call(jen.Id("results"), jen.Lit(i))
		}
		stmts = append(stmts, jen.Return(rets...))
	}

	sig := f.Func().Params(recv).Id(m.Name).Params(params...)
	w.resultTypes(sig, m.Results)
	sig.Block(stmts...)
}

// emitDelegate writes the minimal forwarding body for a shadowed method:
// narrow each interface-typed argument to the more specific declaration's
// parameter type and invoke that declaration on the embedded base, bypassing
// interception. Concrete-typed arguments forward as written: a type
// assertion is only legal on an interface value.
func (w *Writer) emitDelegate(f *jen.File, d *delegateMethod) {
	m := d.visited
	recv := jen.Id(receiver).Op("*").Id(w.spec.ProxyName())

	params := make([]jen.Code, len(m.Params))
	args := make([]jen.Code, len(m.Params))
	for i, p := range m.Params {
		params[i] = jen.Id(p.Name).Add(w.typeExpr(p.Type.Name))
		arg := jen.Id(p.Name)
		if i < len(d.overriddenBy.Params) && d.overriddenBy.Params[i].Type.Name != p.Type.Name && p.Type.Interface {
			arg = arg.Assert(w.typeExpr(d.overriddenBy.Params[i].Type.Name))
		}
		args[i] = arg
	}

	call := jen.Id(receiver).Dot(w.spec.Name).Dot(d.overriddenBy.Name).Call(args...)
	var body jen.Code = call
	if !m.IsVoid() {
		body = jen.Return(call)
	}

	sig := f.Func().Params(recv).Id(m.Name).Params(params...)
	w.resultTypes(sig, m.Results)
	sig.Block(body)
}

// emitBridges writes one access bridge per registered method that carries a
// concrete body, invoking the embedded base's implementation directly so
// the executable-method definition can reach it without re-entering the
// proxy's own override.
func (w *Writer) emitBridges(f *jen.File) {
	for _, ref := range w.registry.all() {
		if ref.bridgeName == "" {
			continue
		}
		m := ref.method
		recv := jen.Id(receiver).Op("*").Id(w.spec.ProxyName())

		params := make([]jen.Code, len(m.Params))
		args := make([]jen.Code, len(m.Params))
		for i, p := range m.Params {
			params[i] = jen.Id(p.Name).Add(w.typeExpr(p.Type.Name))
			args[i] = jen.Id(p.Name)
		}
		call := jen.Id(receiver).Dot(w.spec.Name).Dot(m.Name).Call(args...)
		var body jen.Code = call
		if !m.IsVoid() {
			body = jen.Return(call)
		}
		sig := f.Func().Params(recv).Id(ref.bridgeName).Params(params...)
		w.resultTypes(sig, m.Results)
		sig.Block(body)
	}
}

// emitExecutableMethodsDefinition writes the co-generated definition backing
// the structural tables when the target itself is not proxied. Entry order
// follows the bean-metadata writer's executable-method indices.
func (w *Writer) emitExecutableMethodsDefinition(f *jen.File) {
	defName := w.spec.ProxyName() + "Methods"
	proxyName := w.spec.ProxyName()

	f.Commentf("// %s is the executable-method table for %s, indexed by the", defName, proxyName)
	f.Comment("// bean-metadata method indices.")
	f.Type().Id(defName).Struct(
		jen.Id("methods").Index().Qual(injectPkg, "ExecutableMethod"),
	)

	bindings := w.bindings.names()
	bindingItems := make([]jen.Code, len(bindings))
	for i, b := range bindings {
		bindingItems[i] = jen.Lit(b)
	}

	var entries []jen.Code
	for _, rec := range w.metadataTarget().executables {
		m := rec.method
		paramItems := make([]jen.Code, len(m.Params))
		for i, p := range m.Params {
			paramItems[i] = jen.Lit(p.Type.Name)
		}
		resultItems := make([]jen.Code, len(m.Results))
		for i, r := range m.Results {
			resultItems[i] = jen.Lit(r.Name)
		}

		var invoker jen.Code = jen.Nil()
		if rec.bridgeMethod != "" {
			callArgs := make([]jen.Code, len(m.Params))
			for i, p := range m.Params {
				callArgs[i] = jen.Qual(aopPkg, "Unbox").Index(w.typeExpr(p.Type.Name)).Call(jen.Id("args"), jen.Lit(i))
			}
			call := jen.Id("instance").Assert(jen.Op("*").Id(proxyName)).Dot(rec.bridgeMethod).Call(callArgs...)

			var bodyStmts []jen.Code
			switch len(m.Results) {
			case 0:
				bodyStmts = []jen.Code{call, jen.Return(jen.Nil())}
			case 1:
				bodyStmts = []jen.Code{jen.Return(jen.Index().Any().Values(call))}
			default:
				outs := make([]jen.Code, len(m.Results))
				boxed := make([]jen.Code, len(m.Results))
				for i := range m.Results {
					name := "out" + strconv.Itoa(i)
					outs[i] = jen.Id(name)
					boxed[i] = jen.Id(name)
				}
				bodyStmts = []jen.Code{
					jen.List(outs...).Op(":=").Add(call),
					jen.Return(jen.Index().Any().Values(boxed...)),
				}
			}
			invoker = jen.Func().Params(jen.Id("instance").Any(), jen.Id("args").Index().Any()).Index().Any().Block(bodyStmts...)
		}

		entries = append(entries, jen.Qual(injectPkg, "NewExecutableMethod").Call(
			jen.Lit(m.Name),
			jen.Index().String().Values(paramItems...),
			jen.Index().String().Values(resultItems...),
			jen.Index().String().Values(bindingItems...),
			invoker,
		))
	}

	f.Commentf("// New%s builds the table bound to one proxy instance.", defName)
	f.Func().Id("New"+defName).Params(jen.Id("proxy").Op("*").Id(proxyName)).Op("*").Id(defName).Block(
		jen.Return(jen.Op("&").Id(defName).Values(jen.Dict{
			jen.Id("methods"): jen.Index().Qual(injectPkg, "ExecutableMethod").Values(entries...),
		})),
	)

	f.Comment("// MethodAt returns the executable method at a bean-metadata index.")
	f.Func().Params(jen.Id("d").Op("*").Id(defName)).Id("MethodAt").Params(jen.Id("index").Int()).Qual(injectPkg, "ExecutableMethod").Block(
		jen.Return(jen.Id("d").Dot("methods").Index(jen.Id("index"))),
	)
}
