package proxy

import (
	"github.com/veldt/proxygen/internal/model"
)

// MethodVisit records one method-level injection-point visit so it can be
// replayed, or copied forward to a child writer, at finalize time.
type MethodVisit struct {
	Declaring *model.Class
	Method    *model.Method
}

// FieldVisit records one field injection point.
type FieldVisit struct {
	Declaring *model.Class
	Name      string
	TypeName  string
}

type executableRecord struct {
	declaring    *model.Class
	method       *model.Method
	bridgeClass  string
	bridgeMethod string
}

// BeanMetadataWriter is the delegated bean-metadata recorder. The proxy
// writer forwards everything that is not interception to it: the executable
// method table (whose indices the proxied-method registry bridges to), the
// synthesized constructor, and injection points and lifecycle hooks. It is
// deliberately a recorder; serializing full bean metadata belongs to the
// surrounding toolchain, which consumes these records.
type BeanMetadataWriter struct {
	typeName string

	executables []executableRecord
	keys        map[string]int

	constructor      *model.Method
	fieldInjections  []FieldVisit
	methodInjections []MethodVisit
	postConstructs   []MethodVisit
	preDestroys      []MethodVisit

	finalized bool
}

// NewBeanMetadataWriter returns a recorder for the named bean type.
func NewBeanMetadataWriter(typeName string) *BeanMetadataWriter {
	return &BeanMetadataWriter{typeName: typeName, keys: make(map[string]int)}
}

// TypeName is the bean type this writer records metadata for.
func (w *BeanMetadataWriter) TypeName() string { return w.typeName }

// VisitExecutableMethod records a method in the executable-method table and
// returns its index. Revisiting a structurally identical method returns the
// existing index. bridgeClass and bridgeMethod identify the generated access
// bridge, when one exists.
func (w *BeanMetadataWriter) VisitExecutableMethod(declaring *model.Class, m *model.Method, bridgeClass, bridgeMethod string) int {
	ref := newMethodRef(declaring, m)
	if idx, ok := w.keys[ref.key()]; ok {
		return idx
	}
	idx := len(w.executables)
	w.keys[ref.key()] = idx
	w.executables = append(w.executables, executableRecord{declaring: declaring, method: m, bridgeClass: bridgeClass, bridgeMethod: bridgeMethod})
	return idx
}

// ExecutableCount is the current executable-method table size.
func (w *BeanMetadataWriter) ExecutableCount() int { return len(w.executables) }

// IsAbstract reports whether the method at index has no concrete body.
func (w *BeanMetadataWriter) IsAbstract(index int) bool {
	return w.executables[index].method.Abstract && !w.executables[index].method.Default
}

// VisitConstructor records the constructor used to instantiate the bean.
func (w *BeanMetadataWriter) VisitConstructor(m *model.Method) { w.constructor = m }

// Constructor returns the recorded constructor, nil when none was visited.
func (w *BeanMetadataWriter) Constructor() *model.Method { return w.constructor }

// VisitFieldInjectionPoint records a field injection point.
func (w *BeanMetadataWriter) VisitFieldInjectionPoint(declaring *model.Class, name, typeName string) {
	w.fieldInjections = append(w.fieldInjections, FieldVisit{Declaring: declaring, Name: name, TypeName: typeName})
}

// VisitMethodInjectionPoint records a method injection point.
func (w *BeanMetadataWriter) VisitMethodInjectionPoint(declaring *model.Class, m *model.Method) {
	w.methodInjections = append(w.methodInjections, MethodVisit{Declaring: declaring, Method: m})
}

// VisitPostConstructMethod records a post-construct lifecycle hook.
func (w *BeanMetadataWriter) VisitPostConstructMethod(declaring *model.Class, m *model.Method) {
	w.postConstructs = append(w.postConstructs, MethodVisit{Declaring: declaring, Method: m})
}

// VisitPreDestroyMethod records a pre-destroy lifecycle hook.
func (w *BeanMetadataWriter) VisitPreDestroyMethod(declaring *model.Class, m *model.Method) {
	w.preDestroys = append(w.preDestroys, MethodVisit{Declaring: declaring, Method: m})
}

// PostConstructVisits returns the recorded post-construct visits, in order.
// A child proxy writer copies these forward when proxying without
// introduction.
func (w *BeanMetadataWriter) PostConstructVisits() []MethodVisit { return w.postConstructs }

// FieldInjections returns the recorded field injection points, in order.
func (w *BeanMetadataWriter) FieldInjections() []FieldVisit { return w.fieldInjections }

// MethodInjections returns the recorded method injection points, in order.
func (w *BeanMetadataWriter) MethodInjections() []MethodVisit { return w.methodInjections }

// PreDestroyVisits returns the recorded pre-destroy visits, in order.
func (w *BeanMetadataWriter) PreDestroyVisits() []MethodVisit { return w.preDestroys }

// Finalize seals the recorder. Called by the proxy writer at the end of its
// own finalization; sealing twice is an error.
func (w *BeanMetadataWriter) Finalize() error {
	if w.finalized {
		return ErrFinalized
	}
	w.finalized = true
	return nil
}
