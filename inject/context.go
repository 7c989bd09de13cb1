package inject

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrNoSuchBean is returned when no bean is registered for the requested
	// argument and qualifier.
	ErrNoSuchBean = errors.New("inject: no such bean")

	// ErrNoSuchMethod is returned when a proxy-target method lookup finds no
	// registered handle.
	ErrNoSuchMethod = errors.New("inject: no such method")
)

// BeanLocator resolves a typed, qualified bean instance.
type BeanLocator interface {
	Bean(arg Argument, qualifier Qualifier) (any, error)
}

// BeanContext is the context surface generated proxy constructors depend on:
// bean lookup, proxy-target resolution against a retained resolution
// context, and method-handle lookup by name and parameter types.
type BeanContext interface {
	BeanLocator

	// ProxyTargetBean resolves the instance a proxy wraps. ctx may be nil
	// for eager resolution during construction.
	ProxyTargetBean(ctx ResolutionContext, arg Argument, qualifier Qualifier) (any, error)

	// ProxyTargetMethod resolves an executable method handle on the proxy
	// target by name and erased parameter types.
	ProxyTargetMethod(arg Argument, qualifier Qualifier, name string, paramTypes []string) (ExecutableMethod, error)
}

// Provider constructs a bean instance for a resolution.
type Provider func(ctx ResolutionContext) any

type beanKey struct {
	typeName  string
	qualifier string
}

type methodKey struct {
	typeName  string
	signature string
}

// DefaultBeanContext is a small in-memory bean registry. It is read-mostly:
// registration happens during setup, resolution afterwards from any
// goroutine.
type DefaultBeanContext struct {
	mu      sync.RWMutex
	beans   map[beanKey]Provider
	methods map[methodKey]ExecutableMethod
}

// NewDefaultBeanContext returns an empty registry.
func NewDefaultBeanContext() *DefaultBeanContext {
	return &DefaultBeanContext{
		beans:   make(map[beanKey]Provider),
		methods: make(map[methodKey]ExecutableMethod),
	}
}

// RegisterBean stores a provider under a type argument and qualifier and
// returns the context for chaining.
func (c *DefaultBeanContext) RegisterBean(arg Argument, qualifier Qualifier, provider Provider) *DefaultBeanContext {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.beans[beanKey{arg.String(), qualifierKey(qualifier)}] = provider
	return c
}

// RegisterMethod stores an executable method handle for a target type and
// returns the context for chaining.
func (c *DefaultBeanContext) RegisterMethod(arg Argument, method ExecutableMethod) *DefaultBeanContext {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.methods[methodKey{arg.String(), methodSignature(method.MethodName(), method.ParameterTypes())}] = method
	return c
}

// Bean implements BeanLocator. Lookup falls back to the unqualified
// registration when a qualified one is absent.
func (c *DefaultBeanContext) Bean(arg Argument, qualifier Qualifier) (any, error) {
	c.mu.RLock()
	provider, ok := c.beans[beanKey{arg.String(), qualifierKey(qualifier)}]
	if !ok && qualifier != nil {
		provider, ok = c.beans[beanKey{arg.String(), ""}]
	}
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s (qualifier %q)", ErrNoSuchBean, arg, qualifierKey(qualifier))
	}
	return provider(nil), nil
}

// ProxyTargetBean implements BeanContext.
func (c *DefaultBeanContext) ProxyTargetBean(ctx ResolutionContext, arg Argument, qualifier Qualifier) (any, error) {
	c.mu.RLock()
	provider, ok := c.beans[beanKey{arg.String(), qualifierKey(qualifier)}]
	if !ok && qualifier != nil {
		provider, ok = c.beans[beanKey{arg.String(), ""}]
	}
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: proxy target %s (qualifier %q)", ErrNoSuchBean, arg, qualifierKey(qualifier))
	}
	return provider(ctx), nil
}

// ProxyTargetMethod implements BeanContext.
func (c *DefaultBeanContext) ProxyTargetMethod(arg Argument, qualifier Qualifier, name string, paramTypes []string) (ExecutableMethod, error) {
	c.mu.RLock()
	method, ok := c.methods[methodKey{arg.String(), methodSignature(name, paramTypes)}]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrNoSuchMethod, arg, methodSignature(name, paramTypes))
	}
	return method, nil
}

func methodSignature(name string, paramTypes []string) string {
	sig := name + "("
	for i, p := range paramTypes {
		if i > 0 {
			sig += ", "
		}
		sig += p
	}
	return sig + ")"
}

// SnapshotContext is a trivial ResolutionContext carrying an opaque state
// value. Copy returns a shallow duplicate.
type SnapshotContext struct {
	State any
}

// NewResolutionContext returns a SnapshotContext wrapping state.
func NewResolutionContext(state any) *SnapshotContext { return &SnapshotContext{State: state} }

// Copy implements ResolutionContext.
func (s *SnapshotContext) Copy() ResolutionContext {
	if s == nil {
		return nil
	}
	dup := *s
	return &dup
}
