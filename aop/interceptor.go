// Package aop is the runtime half of the proxygen contract: the interceptor
// and invocation-context interfaces generated proxies call into, the method
// interceptor chain, the marker interfaces generated types conform to, and
// the two static interceptor-resolution entry points used by generated
// constructors.
package aop

import "github.com/veldt/proxygen/inject"

// Interceptor is a cross-cutting handler invoked around a proxied method
// call. An interceptor either produces the result itself or calls
// ctx.Proceed to continue down the chain.
type Interceptor interface {
	Intercept(ctx InvocationContext) []any
}

// InterceptorFunc adapts a function to the Interceptor interface.
type InterceptorFunc func(ctx InvocationContext) []any

// Intercept implements Interceptor.
func (f InterceptorFunc) Intercept(ctx InvocationContext) []any { return f(ctx) }

// InvocationContext is the view of an in-flight proxied call handed to each
// interceptor.
type InvocationContext interface {
	// Method is the executable method handle for the intercepted operation.
	Method() inject.ExecutableMethod
	// Target is the instance the call ultimately dispatches to. Nil for
	// introduction proxies.
	Target() any
	// Arguments are the boxed call arguments, one entry per parameter.
	Arguments() []any
	// Proceed continues the chain, ending in the real invocation, and
	// returns one boxed value per result.
	Proceed() []any
}

// InterceptorRegistration is a raw, unresolved interceptor as injected into a
// generated constructor: the interceptor itself, its position in the chain,
// and the binding names it serves. An empty Bindings list matches every
// method.
type InterceptorRegistration struct {
	Interceptor Interceptor
	Order       int
	Bindings    []string
}
