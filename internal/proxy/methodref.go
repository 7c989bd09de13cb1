package proxy

import (
	"strings"

	"github.com/veldt/proxygen/internal/model"
)

// methodRef dedupes proxied methods by structural signature. Two visits with
// the same name, erased parameter types and erased return types describe the
// same proxied operation and collapse to one slot; equality never considers
// the assigned indices.
type methodRef struct {
	name        string
	paramTypes  []string
	returnTypes []string

	// index is the slot in the generated structural tables; methodIndex is
	// the slot in the bean-metadata writer's executable-method table. Both
	// are assigned once, on first registration.
	index       int
	methodIndex int

	method    *model.Method
	declaring *model.Class

	// bridgeName is set when the registration produced an access bridge
	// (self-interception over a concrete body).
	bridgeName string
}

func (r *methodRef) key() string {
	return r.name + "(" + strings.Join(r.paramTypes, ",") + ")(" + strings.Join(r.returnTypes, ",") + ")"
}

func newMethodRef(declaring *model.Class, m *model.Method) *methodRef {
	return &methodRef{
		name:        m.Name,
		paramTypes:  m.ParamTypeNames(),
		returnTypes: m.ResultTypeNames(),
		method:      m,
		declaring:   declaring,
	}
}

// methodRegistry assigns dense indices 0..n-1 to registered refs.
type methodRegistry struct {
	order []*methodRef
	keys  map[string]*methodRef
}

func newMethodRegistry() *methodRegistry {
	return &methodRegistry{keys: make(map[string]*methodRef)}
}

// register stores ref unless an equal ref exists; it returns the canonical
// ref for the key and whether ref was newly added.
func (r *methodRegistry) register(ref *methodRef) (*methodRef, bool) {
	key := ref.key()
	if existing, ok := r.keys[key]; ok {
		return existing, false
	}
	ref.index = len(r.order)
	r.order = append(r.order, ref)
	r.keys[key] = ref
	return ref, true
}

func (r *methodRegistry) count() int { return len(r.order) }

// has reports whether any registered slot already claims the method name.
// Unlike key equality this is a pure name check: a slot and a delegate with
// the same name cannot coexist on one generated type.
func (r *methodRegistry) has(name string) bool {
	for _, ref := range r.order {
		if ref.name == name {
			return true
		}
	}
	return false
}

func (r *methodRegistry) all() []*methodRef { return r.order }

// erasedKey is the name-plus-parameter signature used to decide whether an
// overriding declaration is the same proxied operation as the one visited.
func erasedKey(name string, paramTypes []string) string {
	return name + "(" + strings.Join(paramTypes, ",") + ")"
}

// genericParamNames renders the visited method's parameters with their
// declared generic form, falling back to the erased name where no generic
// substitution applies.
func genericParamNames(m *model.Method) []string {
	out := make([]string, len(m.Params))
	for i, p := range m.Params {
		out[i] = p.Type.GenericName()
	}
	return out
}
