package widgets

type Base struct{}

func (b *Base) Describe() string { return "base" }

func (b *Base) Close() {}

type Widget struct {
	Base
	Label string
}

func NewWidget(label string) *Widget {
	return &Widget{Label: label}
}

func (w *Widget) Describe() string { return w.Label }

func (w *Widget) Resize(width int, height int) (int, int) { return width, height }

func (w *Widget) hidden() {}

type Sizer interface {
	Size() int
	Grow(by int) int
}
