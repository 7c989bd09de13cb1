package inject

// ExecutableMethod is a build-time-registered handle describing a callable
// method. Generated proxies store one handle per proxied method and the
// interceptor chain invokes the real implementation through it, so no call
// path uses reflection.
type ExecutableMethod interface {
	// MethodName is the declared method name.
	MethodName() string
	// ParameterTypes are the erased parameter type names, in order.
	ParameterTypes() []string
	// ReturnTypes are the erased result type names, in order. Empty for a
	// void method.
	ReturnTypes() []string
	// Bindings are the interceptor-binding names attached to the method's
	// declaration. Used by interceptor resolution.
	Bindings() []string
	// Invoke calls the method on instance with one boxed value per
	// parameter and returns one boxed value per result.
	Invoke(instance any, args []any) []any
}

// InvokerFunc adapts a closure into the invocation half of an
// ExecutableMethod.
type InvokerFunc func(instance any, args []any) []any

type executableMethod struct {
	name     string
	params   []string
	returns  []string
	bindings []string
	invoke   InvokerFunc
}

// NewExecutableMethod builds an ExecutableMethod from its signature
// description and an invoker. A nil invoker is valid for methods that are
// never invoked directly (introduction methods handled entirely by
// interceptors); calling Invoke on such a handle panics.
func NewExecutableMethod(name string, paramTypes, returnTypes, bindings []string, invoke InvokerFunc) ExecutableMethod {
	return &executableMethod{name: name, params: paramTypes, returns: returnTypes, bindings: bindings, invoke: invoke}
}

func (m *executableMethod) MethodName() string       { return m.name }
func (m *executableMethod) ParameterTypes() []string { return m.params }
func (m *executableMethod) ReturnTypes() []string    { return m.returns }
func (m *executableMethod) Bindings() []string       { return m.bindings }

func (m *executableMethod) Invoke(instance any, args []any) []any {
	if m.invoke == nil {
		panic("inject: executable method " + m.name + " has no invoker")
	}
	return m.invoke(instance, args)
}
