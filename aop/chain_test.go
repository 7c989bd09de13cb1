package aop

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/veldt/proxygen/inject"
)

func echoMethod(bindings []string) inject.ExecutableMethod {
	return inject.NewExecutableMethod("Echo", []string{"string"}, []string{"string"}, bindings, func(instance any, args []any) []any {
		return []any{Unbox[string](args, 0)}
	})
}

func TestMethodInterceptorChain(t *testing.T) {
	t.Run("exhausted chain invokes the target", func(t *testing.T) {
		chain := NewMethodInterceptorChain(nil, struct{}{}, echoMethod(nil), []any{"hi"})
		require.Equal(t, []any{"hi"}, chain.Proceed())
	})

	t.Run("interceptors run in order around the invocation", func(t *testing.T) {
		var trace []string
		wrap := func(label string) Interceptor {
			return InterceptorFunc(func(ctx InvocationContext) []any {
				trace = append(trace, label+" in")
				results := ctx.Proceed()
				trace = append(trace, label+" out")
				return results
			})
		}
		chain := NewMethodInterceptorChain([]Interceptor{wrap("a"), wrap("b")}, struct{}{}, echoMethod(nil), []any{"hi"})
		require.Equal(t, []any{"hi"}, chain.Proceed())
		require.Equal(t, []string{"a in", "b in", "b out", "a out"}, trace)
	})

	t.Run("nil target panics the canonical error when exhausted", func(t *testing.T) {
		chain := NewMethodInterceptorChain(nil, nil, echoMethod(nil), nil)
		require.PanicsWithValue(t, ErrNoTargetInvocable, func() { chain.Proceed() })
	})

	t.Run("context exposes method, target and arguments", func(t *testing.T) {
		target := &struct{ n int }{}
		var seen InvocationContext
		observer := InterceptorFunc(func(ctx InvocationContext) []any {
			seen = ctx
			return ctx.Proceed()
		})
		chain := NewMethodInterceptorChain([]Interceptor{observer}, target, echoMethod(nil), []any{"x"})
		chain.Proceed()
		require.Equal(t, "Echo", seen.Method().MethodName())
		require.Same(t, target, seen.Target())
		require.Equal(t, []any{"x"}, seen.Arguments())
	})
}

func TestResolveInterceptors(t *testing.T) {
	mark := func(label string, out *[]string) Interceptor {
		return InterceptorFunc(func(ctx InvocationContext) []any {
			*out = append(*out, label)
			return ctx.Proceed()
		})
	}

	t.Run("ordering is ascending and stable", func(t *testing.T) {
		var trace []string
		resolved := ResolveAroundInterceptors(nil, echoMethod(nil), []InterceptorRegistration{
			{Interceptor: mark("late", &trace), Order: 10},
			{Interceptor: mark("early", &trace), Order: -10},
			{Interceptor: mark("mid-1", &trace), Order: 0},
			{Interceptor: mark("mid-2", &trace), Order: 0},
		})
		chain := NewMethodInterceptorChain(resolved, struct{}{}, echoMethod(nil), []any{"x"})
		chain.Proceed()
		require.Equal(t, []string{"early", "mid-1", "mid-2", "late"}, trace)
	})

	t.Run("bindings filter registrations", func(t *testing.T) {
		var trace []string
		method := echoMethod([]string{"tx"})
		resolved := ResolveAroundInterceptors(nil, method, []InterceptorRegistration{
			{Interceptor: mark("tx", &trace), Bindings: []string{"tx"}},
			{Interceptor: mark("cache", &trace), Bindings: []string{"cache"}},
			{Interceptor: mark("global", &trace)},
		})
		require.Len(t, resolved, 2)
		chain := NewMethodInterceptorChain(resolved, struct{}{}, method, []any{"x"})
		chain.Proceed()
		require.Equal(t, []string{"tx", "global"}, trace)
	})

	t.Run("nil interceptors are dropped", func(t *testing.T) {
		resolved := ResolveIntroductionInterceptors(nil, echoMethod(nil), []InterceptorRegistration{{Interceptor: nil}})
		require.Empty(t, resolved)
	})
}

func TestUnbox(t *testing.T) {
	t.Run("tolerates nil slots and short slices", func(t *testing.T) {
		require.Equal(t, "v", Unbox[string]([]any{"v"}, 0))
		require.Equal(t, "", Unbox[string]([]any{nil}, 0))
		require.Equal(t, 0, Unbox[int](nil, 0))
		require.Equal(t, 0, Unbox[int]([]any{1}, 5))
	})

	t.Run("mismatched dynamic type panics", func(t *testing.T) {
		require.PanicsWithError(t, "aop: boxed value does not match the declared type: slot 0 holds string", func() {
			Unbox[int]([]any{"not an int"}, 0)
		})
	})
}
