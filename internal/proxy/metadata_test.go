package proxy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/veldt/proxygen/internal/model"
)

func TestBeanMetadataWriter(t *testing.T) {
	cls := &model.Class{PackageName: "widgets", Name: "Widget"}
	ping := &model.Method{Name: "Ping", Results: []model.TypeRef{{Name: "string"}}, Owning: cls}
	size := &model.Method{Name: "Size", Results: []model.TypeRef{{Name: "int"}}, Abstract: true, Owning: cls}

	t.Run("repeat executable visits return the original index", func(t *testing.T) {
		w := NewBeanMetadataWriter("WidgetIntercepted")
		first := w.VisitExecutableMethod(cls, ping, "WidgetIntercepted", "accessPing")
		second := w.VisitExecutableMethod(cls, ping, "WidgetIntercepted", "accessPing")
		require.Equal(t, first, second)
		require.Equal(t, 1, w.ExecutableCount())
	})

	t.Run("abstractness is visible per index", func(t *testing.T) {
		w := NewBeanMetadataWriter("WidgetIntercepted")
		i := w.VisitExecutableMethod(cls, ping, "WidgetIntercepted", "accessPing")
		j := w.VisitExecutableMethod(cls, size, "WidgetIntercepted", "")
		require.False(t, w.IsAbstract(i))
		require.True(t, w.IsAbstract(j))
	})

	t.Run("finalize is one-shot", func(t *testing.T) {
		w := NewBeanMetadataWriter("WidgetIntercepted")
		require.NoError(t, w.Finalize())
		require.ErrorIs(t, w.Finalize(), ErrFinalized)
	})

	t.Run("injection and lifecycle visits are recorded in order", func(t *testing.T) {
		w := NewBeanMetadataWriter("WidgetIntercepted")
		w.VisitFieldInjectionPoint(cls, "logger", "*logrus.Entry")
		w.VisitMethodInjectionPoint(cls, ping)
		w.VisitPostConstructMethod(cls, ping)
		w.VisitPreDestroyMethod(cls, ping)
		require.Len(t, w.FieldInjections(), 1)
		require.Len(t, w.MethodInjections(), 1)
		require.Len(t, w.PostConstructVisits(), 1)
		require.Len(t, w.PreDestroyVisits(), 1)
		require.Equal(t, "logger", w.FieldInjections()[0].Name)
	})
}
