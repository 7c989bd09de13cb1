package proxy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/veldt/proxygen/internal/model"
)

func widgetClass() *model.Class {
	cls := &model.Class{PackagePath: "example.com/widgets", PackageName: "widgets", Name: "Widget"}
	cls.Methods = []*model.Method{
		{Name: "Ping", Results: []model.TypeRef{{Name: "string"}}, Owning: cls},
		{Name: "Tag", Params: []model.Param{{Name: "label", Type: model.TypeRef{Name: "string"}}}, Owning: cls},
	}
	cls.Constructor = &model.Method{
		Name:    "NewWidget",
		Params:  []model.Param{{Name: "label", Type: model.TypeRef{Name: "string"}}},
		Results: []model.TypeRef{{Name: "*Widget"}},
		Owning:  cls,
	}
	return cls
}

func widgetSpec() Spec {
	return Spec{PackagePath: "example.com/widgets", PackageName: "widgets", Name: "Widget"}
}

func finalizedSource(t *testing.T, w *Writer, cls *model.Class) string {
	t.Helper()
	require.NoError(t, w.VisitConstructor(cls.Constructor))
	for _, m := range cls.Methods {
		require.NoError(t, w.VisitAroundMethod(cls, m))
	}
	require.NoError(t, w.Finalize())
	src, err := w.Render()
	require.NoError(t, err)
	return src
}

func TestWriterRegistration(t *testing.T) {
	t.Run("repeat visits with the same signature collapse to one slot", func(t *testing.T) {
		cls := widgetClass()
		w := NewWriter(nil, widgetSpec(), nil)
		require.NoError(t, w.VisitAroundMethod(cls, cls.Methods[0]))
		require.NoError(t, w.VisitAroundMethod(cls, cls.Methods[0]))
		require.Equal(t, 1, w.ProxyMethodCount())
	})

	t.Run("distinct signatures with the same name get distinct slots", func(t *testing.T) {
		cls := &model.Class{PackageName: "widgets", Name: "Widget"}
		a := &model.Method{Name: "Ping", Params: []model.Param{{Name: "n", Type: model.TypeRef{Name: "int"}}}, Owning: cls}
		b := &model.Method{Name: "Ping", Params: []model.Param{{Name: "s", Type: model.TypeRef{Name: "string"}}}, Owning: cls}
		cls.Methods = []*model.Method{a, b}
		w := NewWriter(nil, Spec{PackageName: "widgets", Name: "Widget"}, nil)
		require.NoError(t, w.VisitAroundMethod(cls, a))
		require.NoError(t, w.VisitAroundMethod(cls, b))
		require.Equal(t, 2, w.ProxyMethodCount())
	})

	t.Run("differing result types are distinct operations", func(t *testing.T) {
		cls := &model.Class{PackageName: "widgets", Name: "Widget"}
		a := &model.Method{Name: "Value", Results: []model.TypeRef{{Name: "int"}}, Owning: cls}
		b := &model.Method{Name: "Value", Results: []model.TypeRef{{Name: "string"}}, Owning: cls}
		cls.Methods = []*model.Method{a, b}
		w := NewWriter(nil, Spec{PackageName: "widgets", Name: "Widget"}, nil)
		require.NoError(t, w.VisitAroundMethod(cls, a))
		require.NoError(t, w.VisitAroundMethod(cls, b))
		require.Equal(t, 2, w.ProxyMethodCount())
	})

	t.Run("shadowed promoted declaration is forwarded, not intercepted", func(t *testing.T) {
		cls := &model.Class{PackageName: "widgets", Name: "Widget"}
		shallow := &model.Method{
			Name:   "Describe",
			Params: []model.Param{{Name: "v", Type: model.TypeRef{Name: "string"}}},
			Depth:  0,
			Owning: cls,
		}
		deep := &model.Method{
			Name:   "Describe",
			Params: []model.Param{{Name: "v", Type: model.TypeRef{Name: "any", Generic: "T", Interface: true}}},
			Depth:  1,
			Owning: cls,
		}
		cls.Methods = []*model.Method{shallow, deep}

		w := NewWriter(nil, Spec{PackageName: "widgets", Name: "Widget"}, nil)
		require.NoError(t, w.VisitDefaultConstructor())
		require.NoError(t, w.VisitAroundMethod(cls, deep))
		require.Equal(t, 0, w.ProxyMethodCount())
		require.NoError(t, w.Finalize())
		src, err := w.Render()
		require.NoError(t, err)
		require.Contains(t, src, "p.Widget.Describe(v.(string))")
	})

	t.Run("concrete shadowed parameters forward without narrowing", func(t *testing.T) {
		cls := &model.Class{PackageName: "widgets", Name: "Widget"}
		shallow := &model.Method{
			Name:   "Describe",
			Params: []model.Param{{Name: "v", Type: model.TypeRef{Name: "string"}}},
			Depth:  0,
			Owning: cls,
		}
		deep := &model.Method{
			Name:   "Describe",
			Params: []model.Param{{Name: "v", Type: model.TypeRef{Name: "Label", Generic: "T"}}},
			Depth:  1,
			Owning: cls,
		}
		cls.Methods = []*model.Method{shallow, deep}

		w := NewWriter(nil, Spec{PackageName: "widgets", Name: "Widget"}, nil)
		require.NoError(t, w.VisitDefaultConstructor())
		require.NoError(t, w.VisitAroundMethod(cls, deep))
		require.NoError(t, w.Finalize())
		src, err := w.Render()
		require.NoError(t, err)
		require.Contains(t, src, "p.Widget.Describe(v)")
		require.NotContains(t, src, "v.(")
	})
}

func TestWriterLifecycle(t *testing.T) {
	t.Run("finalize without a constructor fails", func(t *testing.T) {
		w := NewWriter(nil, widgetSpec(), nil)
		require.ErrorIs(t, w.Finalize(), ErrNoConstructor)
	})

	t.Run("render before finalize fails", func(t *testing.T) {
		w := NewWriter(nil, widgetSpec(), nil)
		_, err := w.Render()
		require.ErrorIs(t, err, ErrNotFinalized)
	})

	t.Run("second finalize fails", func(t *testing.T) {
		w := NewWriter(nil, widgetSpec(), nil)
		require.NoError(t, w.VisitDefaultConstructor())
		require.NoError(t, w.Finalize())
		require.ErrorIs(t, w.Finalize(), ErrFinalized)
	})

	t.Run("visits after finalize fail", func(t *testing.T) {
		cls := widgetClass()
		w := NewWriter(nil, widgetSpec(), nil)
		require.NoError(t, w.VisitDefaultConstructor())
		require.NoError(t, w.Finalize())
		require.ErrorIs(t, w.VisitAroundMethod(cls, cls.Methods[0]), ErrFinalized)
		require.ErrorIs(t, w.VisitConstructor(cls.Constructor), ErrFinalized)
	})

	t.Run("introduction over a plain type needs at least one interface", func(t *testing.T) {
		_, err := NewIntroductionWriter(widgetSpec(), nil)
		require.ErrorIs(t, err, ErrNoInterfaces)
	})

	t.Run("introduction over an interface needs nothing extra", func(t *testing.T) {
		spec := widgetSpec()
		spec.IsInterface = true
		_, err := NewIntroductionWriter(spec, nil)
		require.NoError(t, err)
	})
}

func TestWriterStrategies(t *testing.T) {
	t.Run("refinement flags without their prerequisite are dropped", func(t *testing.T) {
		require.Equal(t, strategyNone, strategyFor(Spec{HotSwap: true}.normalize()))
		require.Equal(t, strategyNone, strategyFor(Spec{Lazy: true}.normalize()))
		require.Equal(t, strategyEager, strategyFor(Spec{ProxyTarget: true, CacheLazyTarget: true}.normalize()))
	})

	t.Run("lazy takes precedence over hotswap", func(t *testing.T) {
		s := Spec{ProxyTarget: true, HotSwap: true, Lazy: true}.normalize()
		require.Equal(t, strategyLazy, strategyFor(s))
	})

	t.Run("interface targets always proxy a separate bean", func(t *testing.T) {
		spec := widgetSpec()
		spec.IsInterface = true
		w := NewWriter(nil, spec, nil)
		require.True(t, w.ProxyTarget())
		require.Equal(t, strategyEager, w.strategy)
	})

	t.Run("hotswap emits a typed swap method", func(t *testing.T) {
		spec := widgetSpec()
		spec.ProxyTarget = true
		spec.HotSwap = true
		src := finalizedSource(t, NewWriter(nil, spec, nil), widgetClass())
		require.Contains(t, src, "func (p *WidgetIntercepted) Swap(newTarget *Widget) *Widget")
		require.Contains(t, src, "HasCachedInterceptedTarget")
	})

	t.Run("plain lazy has no cache probe", func(t *testing.T) {
		spec := widgetSpec()
		spec.ProxyTarget = true
		spec.Lazy = true
		src := finalizedSource(t, NewWriter(nil, spec, nil), widgetClass())
		require.Contains(t, src, "InterceptedTarget")
		require.NotContains(t, src, "HasCachedInterceptedTarget")
		require.NotContains(t, src, "Swap(")
	})

	t.Run("lazy cached resolves under double-checked locking", func(t *testing.T) {
		spec := widgetSpec()
		spec.ProxyTarget = true
		spec.Lazy = true
		spec.CacheLazyTarget = true
		src := finalizedSource(t, NewWriter(nil, spec, nil), widgetClass())
		require.Contains(t, src, "p.target.Load()")
		require.Contains(t, src, "p.targetMu.Lock()")
		require.Contains(t, src, "p.target.Store(resolvedTarget)")
		require.Contains(t, src, "HasCachedInterceptedTarget")
	})
}

func TestWriterRendering(t *testing.T) {
	t.Run("self proxy embeds the base and bridges concrete bodies", func(t *testing.T) {
		src := finalizedSource(t, NewWriter(nil, widgetSpec(), nil), widgetClass())
		require.Contains(t, src, "type WidgetIntercepted struct")
		require.Contains(t, src, "base := NewWidget(label)")
		require.Contains(t, src, "func (p *WidgetIntercepted) accessPing() string")
		require.Contains(t, src, "return p.Widget.Ping()")
		require.Contains(t, src, "NewWidgetInterceptedMethods")
	})

	t.Run("void methods drive the chain without returning", func(t *testing.T) {
		src := finalizedSource(t, NewWriter(nil, widgetSpec(), nil), widgetClass())
		require.Contains(t, src, "func (p *WidgetIntercepted) Tag(label string) {")
		require.Contains(t, src, "results := chain.Proceed()", "value-returning sibling still unboxes")
	})

	t.Run("proxy target dispatches to the resolved bean", func(t *testing.T) {
		spec := widgetSpec()
		spec.ProxyTarget = true
		src := finalizedSource(t, NewWriter(nil, spec, nil), widgetClass())
		require.Contains(t, src, `beanContext.ProxyTargetBean(resolutionContext, inject.ArgumentOf("widgets.Widget"), qualifier)`)
		require.Contains(t, src, `beanContext.ProxyTargetMethod(inject.ArgumentOf("widgets.Widget"), qualifier, "Ping", []string{})`)
		require.NotContains(t, src, "accessPing", "proxied targets need no self bridges")
	})

	t.Run("introduction methods carry a nil chain target", func(t *testing.T) {
		cls := &model.Class{PackageName: "widgets", Name: "Sizer", IsInterface: true}
		size := &model.Method{Name: "Size", Results: []model.TypeRef{{Name: "int"}}, Abstract: true, Owning: cls}
		cls.Methods = []*model.Method{size}
		spec := Spec{PackageName: "widgets", Name: "Sizer", IsInterface: true}

		w, err := NewIntroductionWriter(spec, nil)
		require.NoError(t, err)
		require.NoError(t, w.VisitDefaultConstructor())
		require.NoError(t, w.VisitIntroductionMethod(cls, size))
		require.NoError(t, w.Finalize())
		src, err := w.Render()
		require.NoError(t, err)

		require.Contains(t, src, "aop.NewMethodInterceptorChain(boundInterceptors, nil, executableMethod, nil)")
		require.Contains(t, src, "aop.ResolveIntroductionInterceptors")
		require.Contains(t, src, "IntroducedInterfaces")
		require.Contains(t, src, "_ Sizer")
	})

	t.Run("foreign signature types import their packages", func(t *testing.T) {
		cls := &model.Class{PackageName: "timers", Name: "Timer"}
		after := &model.Method{
			Name:    "After",
			Params:  []model.Param{{Name: "d", Type: model.TypeRef{Name: "time.Duration"}}},
			Results: []model.TypeRef{{Name: "time.Duration"}},
			Owning:  cls,
		}
		windows := &model.Method{
			Name:    "Windows",
			Params:  []model.Param{{Name: "ws", Type: model.TypeRef{Name: "map[string]time.Duration"}}},
			Results: []model.TypeRef{{Name: "[]time.Duration"}},
			Owning:  cls,
		}
		cls.Methods = []*model.Method{after, windows}
		spec := Spec{PackageName: "timers", Name: "Timer", Imports: map[string]string{"time": "time"}}

		w := NewWriter(nil, spec, nil)
		require.NoError(t, w.VisitDefaultConstructor())
		require.NoError(t, w.VisitAroundMethod(cls, after))
		require.NoError(t, w.VisitAroundMethod(cls, windows))
		require.NoError(t, w.Finalize())
		src, err := w.Render()
		require.NoError(t, err)

		require.Contains(t, src, `"time"`)
		require.Contains(t, src, "func (p *TimerIntercepted) After(d time.Duration) time.Duration")
		require.Contains(t, src, "func (p *TimerIntercepted) Windows(ws map[string]time.Duration) []time.Duration")
		require.Contains(t, src, "aop.Unbox[time.Duration](results, 0)")
	})

	t.Run("provenance lands in the file header", func(t *testing.T) {
		w := NewWriter(nil, widgetSpec(), nil)
		w.SetProvenance("proxygen -type=Widget", "v1.2.3")
		src := finalizedSource(t, w, widgetClass())
		require.Contains(t, src, "Code generated by proxygen v1.2.3. DO NOT EDIT.")
		require.Contains(t, src, "Command: proxygen -type=Widget")
	})
}

func TestWriterMetadata(t *testing.T) {
	t.Run("lifecycle visits replay into metadata at finalize", func(t *testing.T) {
		cls := widgetClass()
		w := NewWriter(nil, widgetSpec(), nil)
		require.NoError(t, w.VisitDefaultConstructor())
		require.NoError(t, w.VisitPostConstructMethod(cls, cls.Methods[0]))
		require.Empty(t, w.Metadata().PostConstructVisits(), "deferred until finalize")
		require.NoError(t, w.Finalize())
		require.Len(t, w.Metadata().PostConstructVisits(), 1)
	})

	t.Run("parent post-construct visits carry over for self proxies", func(t *testing.T) {
		cls := widgetClass()
		parent := NewBeanMetadataWriter("WidgetDefinition")
		parent.VisitPostConstructMethod(cls, cls.Methods[0])

		w := NewWriter(parent, widgetSpec(), nil)
		require.NoError(t, w.VisitDefaultConstructor())
		require.NoError(t, w.Finalize())
		require.Len(t, w.Metadata().PostConstructVisits(), 1)
	})

	t.Run("parent visits do not carry over when a target bean exists", func(t *testing.T) {
		cls := widgetClass()
		parent := NewBeanMetadataWriter("WidgetDefinition")
		parent.VisitPostConstructMethod(cls, cls.Methods[0])

		spec := widgetSpec()
		spec.ProxyTarget = true
		w := NewWriter(parent, spec, nil)
		require.NoError(t, w.VisitDefaultConstructor())
		require.NoError(t, w.Finalize())
		require.Empty(t, w.Metadata().PostConstructVisits())
	})

	t.Run("executable methods route to the parent when present", func(t *testing.T) {
		cls := widgetClass()
		parent := NewBeanMetadataWriter("WidgetDefinition")
		w := NewWriter(parent, widgetSpec(), nil)
		require.NoError(t, w.VisitAroundMethod(cls, cls.Methods[0]))
		require.Equal(t, 1, parent.ExecutableCount())
		require.Equal(t, 0, w.Metadata().ExecutableCount())
	})

	t.Run("synthesized constructor appends the injected parameters", func(t *testing.T) {
		w := NewWriter(nil, widgetSpec(), nil)
		require.NoError(t, w.VisitConstructor(widgetClass().Constructor))
		require.NoError(t, w.Finalize())
		ctor := w.Metadata().Constructor()
		require.NotNil(t, ctor)
		require.Equal(t, []string{"string", "inject.ResolutionContext", "inject.BeanContext", "inject.Qualifier", "[]aop.InterceptorRegistration"}, ctor.ParamTypeNames())
	})
}

func TestBindingSet(t *testing.T) {
	t.Run("duplicates and empty names are dropped, order is stable", func(t *testing.T) {
		s := newBindingSet(
			Binding{Name: "tx"},
			Binding{Name: ""},
			Binding{Name: "cache", Members: map[string]string{"ttl": "30s"}},
			Binding{Name: "tx"},
			Binding{Name: "cache", Members: map[string]string{"ttl": "30s"}},
		)
		require.Equal(t, []string{"tx", "cache"}, s.names())
	})

	t.Run("members distinguish otherwise equal bindings", func(t *testing.T) {
		s := newBindingSet(
			Binding{Name: "cache", Members: map[string]string{"ttl": "30s"}},
			Binding{Name: "cache", Members: map[string]string{"ttl": "60s"}},
		)
		require.Equal(t, []string{"cache", "cache"}, s.names())
	})
}
