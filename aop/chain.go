package aop

import (
	"errors"
	"fmt"
	"sort"

	"github.com/veldt/proxygen/inject"
)

// ErrNoTargetInvocable reports a chain that ran out of interceptors with no
// target to invoke. It only occurs on a misconfigured introduction proxy
// where no bound interceptor produced a result.
var ErrNoTargetInvocable = errors.New("aop: interceptor chain exhausted with no invocable target")

// ErrBoxedValueMismatch reports a boxed slot whose dynamic type does not
// match the type declared at its position. It only occurs when an
// interceptor returns a value of the wrong shape.
var ErrBoxedValueMismatch = errors.New("aop: boxed value does not match the declared type")

// MethodInterceptorChain drives a single proxied call through its bound
// interceptors and finally into the real invocation. A chain value is built
// per call by the generated method body and must not be reused.
type MethodInterceptorChain struct {
	interceptors []Interceptor
	target       any
	method       inject.ExecutableMethod
	args         []any
	pos          int
}

// NewMethodInterceptorChain builds a chain for one invocation. target may be
// nil for introduction proxies. args holds one boxed value per parameter and
// may be nil for a zero-arity method.
func NewMethodInterceptorChain(interceptors []Interceptor, target any, method inject.ExecutableMethod, args []any) *MethodInterceptorChain {
	return &MethodInterceptorChain{interceptors: interceptors, target: target, method: method, args: args}
}

// Method implements InvocationContext.
func (c *MethodInterceptorChain) Method() inject.ExecutableMethod { return c.method }

// Target implements InvocationContext.
func (c *MethodInterceptorChain) Target() any { return c.target }

// Arguments implements InvocationContext.
func (c *MethodInterceptorChain) Arguments() []any { return c.args }

// Proceed advances to the next interceptor, or performs the real invocation
// once the chain is exhausted. Panics with ErrNoTargetInvocable if there is
// neither a next interceptor nor a target.
func (c *MethodInterceptorChain) Proceed() []any {
	if c.pos < len(c.interceptors) {
		next := c.interceptors[c.pos]
		c.pos++
		return next.Intercept(c)
	}
	if c.target == nil {
		panic(ErrNoTargetInvocable)
	}
	return c.method.Invoke(c.target, c.args)
}

// ResolveAroundInterceptors selects and orders the interceptors bound to a
// concrete method. Registrations whose bindings intersect the method's
// bindings (or that declare no bindings) participate; ordering is stable by
// Order.
func ResolveAroundInterceptors(ctx inject.BeanContext, method inject.ExecutableMethod, registrations []InterceptorRegistration) []Interceptor {
	return resolveInterceptors(method, registrations)
}

// ResolveIntroductionInterceptors selects and orders the interceptors bound
// to an abstract or interface-only method. The selection rule matches the
// around case; the distinction exists so the runtime can treat an unmatched
// introduction method as a configuration error at call time rather than
// delegating to a target that does not exist.
func ResolveIntroductionInterceptors(ctx inject.BeanContext, method inject.ExecutableMethod, registrations []InterceptorRegistration) []Interceptor {
	return resolveInterceptors(method, registrations)
}

func resolveInterceptors(method inject.ExecutableMethod, registrations []InterceptorRegistration) []Interceptor {
	matched := make([]InterceptorRegistration, 0, len(registrations))
	for _, reg := range registrations {
		if reg.Interceptor == nil {
			continue
		}
		if bindingsMatch(reg.Bindings, method.Bindings()) {
			matched = append(matched, reg)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Order < matched[j].Order })
	out := make([]Interceptor, len(matched))
	for i, reg := range matched {
		out[i] = reg.Interceptor
	}
	return out
}

func bindingsMatch(offered, required []string) bool {
	if len(offered) == 0 || len(required) == 0 {
		return true
	}
	for _, o := range offered {
		for _, r := range required {
			if o == r {
				return true
			}
		}
	}
	return false
}

// Unbox converts one slot of a boxed value array back to its declared type,
// tolerating a nil entry and an index past the end of the slice. A non-nil
// slot of the wrong dynamic type panics with ErrBoxedValueMismatch rather
// than degrading to the zero value. Generated code uses Unbox both to unbox
// chain results into return values and to unbox the argument array inside
// executable-method invokers.
func Unbox[T any](values []any, i int) T {
	var zero T
	if i >= len(values) || values[i] == nil {
		return zero
	}
	v, ok := values[i].(T)
	if !ok {
		panic(fmt.Errorf("%w: slot %d holds %T", ErrBoxedValueMismatch, i, values[i]))
	}
	return v
}
