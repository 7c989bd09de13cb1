package proxy

import (
	"sort"
	"strings"
)

// Binding is one interceptor-binding declaration applicable to the proxy: an
// annotation-derived name plus optional member values.
type Binding struct {
	Name    string
	Members map[string]string
}

func (b Binding) canonical() string {
	if len(b.Members) == 0 {
		return b.Name
	}
	keys := make([]string, 0, len(b.Members))
	for k := range b.Members {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	sb.WriteString(b.Name)
	sb.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(b.Members[k])
	}
	sb.WriteByte('}')
	return sb.String()
}

// bindingSet accumulates bindings in insertion order. Ordering carries no
// meaning but must be stable so repeated generation produces identical
// output.
type bindingSet struct {
	order []Binding
	seen  map[string]struct{}
}

func newBindingSet(values ...Binding) *bindingSet {
	s := &bindingSet{seen: make(map[string]struct{})}
	s.add(values...)
	return s
}

// add inserts bindings that carry a name, skipping duplicates.
func (s *bindingSet) add(values ...Binding) {
	for _, v := range values {
		if v.Name == "" {
			continue
		}
		key := v.canonical()
		if _, ok := s.seen[key]; ok {
			continue
		}
		s.seen[key] = struct{}{}
		s.order = append(s.order, v)
	}
}

// names returns the binding names in insertion order.
func (s *bindingSet) names() []string {
	out := make([]string, len(s.order))
	for i, b := range s.order {
		out[i] = b.Name
	}
	return out
}
