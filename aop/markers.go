package aop

// Marker interfaces conformed to by generated proxy types. Each strategy
// implements exactly one most-specific marker: Introduced for introduction
// proxies, Intercepted alone when the target is not proxied,
// InterceptedProxy when it is, and HotSwappableInterceptedProxy under
// hotswap. The bean context's proxy-unwrapping logic and the interceptor
// resolver dispatch on these.

// Intercepted marks a generated type that routes selected calls through an
// interceptor chain.
type Intercepted interface {
	// InterceptedType reports the fully qualified name of the type the
	// proxy stands in for.
	InterceptedType() string
}

// Introduced marks a proxy whose method behavior is supplied entirely by
// interceptors, with no pre-existing implementation.
type Introduced interface {
	Intercepted

	// IntroducedInterfaces reports the interfaces the proxy introduces.
	IntroducedInterfaces() []string
}

// InterceptedProxy marks a proxy that wraps a resolved target instance.
type InterceptedProxy interface {
	Intercepted

	// InterceptedTarget returns the wrapped instance.
	InterceptedTarget() any
}

// TargetCachingProxy is implemented by proxies that hold (or may hold) a
// resolved target in a field. Lazy proxies without caching do not implement
// it: they re-resolve on every access and have nothing to probe.
type TargetCachingProxy interface {
	InterceptedProxy

	// HasCachedInterceptedTarget reports whether the target has been
	// resolved and stored.
	HasCachedInterceptedTarget() bool
}

// HotSwappableInterceptedProxy additionally allows the wrapped target to be
// replaced atomically after construction.
type HotSwappableInterceptedProxy[T any] interface {
	TargetCachingProxy

	// Swap replaces the wrapped target and returns the previous value.
	// Atomic with respect to concurrent InterceptedTarget readers.
	Swap(newTarget T) T
}
